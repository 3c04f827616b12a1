package port

import (
	"reflect"
	"testing"
)

func TestParseSpec_Valid(t *testing.T) {
	cases := map[string][]uint16{
		"22":              {22},
		"22,80":           {22, 80},
		"80,22":           {22, 80},
		"22,22,80":        {22, 80},
		"1-3":             {1, 2, 3},
		" 443 , 8-9 ":     {8, 9, 443},
		"22,80,8000-8002": {22, 80, 8000, 8001, 8002},
		"5-5":             {5},
	}
	for spec, want := range cases {
		t.Run(spec, func(t *testing.T) {
			got, err := ParseSpec(spec)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !reflect.DeepEqual(got, want) {
				t.Fatalf("got %v want %v", got, want)
			}
		})
	}
}

func TestParseSpec_Invalid(t *testing.T) {
	cases := []string{
		"0",
		"65536",
		"10-1",
		"abc",
		"22,",
		"1-70000",
		"1-2-3",
		",",
	}
	for _, spec := range cases {
		t.Run(spec, func(t *testing.T) {
			if _, err := ParseSpec(spec); err == nil {
				t.Fatalf("expected error for spec %q", spec)
			}
		})
	}
}

func TestParseSpec_Presets(t *testing.T) {
	cases := []struct {
		spec        string
		count       int
		first, last uint16
	}{
		{PresetDefault, 1000, 1, 65389},
		{PresetFast, 100, 7, 49157},
		{PresetAll, 65535, 1, 65535},
		{"ALL", 65535, 1, 65535},
	}
	for _, tc := range cases {
		t.Run(tc.spec, func(t *testing.T) {
			got, err := ParseSpec(tc.spec)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(got) != tc.count {
				t.Fatalf("got %d ports want %d", len(got), tc.count)
			}
			if got[0] != tc.first || got[len(got)-1] != tc.last {
				t.Fatalf("bounds %d..%d want %d..%d", got[0], got[len(got)-1], tc.first, tc.last)
			}
			for i := 1; i < len(got); i++ {
				if got[i] <= got[i-1] {
					t.Fatalf("not strictly ascending at %d: %d after %d", i, got[i], got[i-1])
				}
			}
		})
	}
}
