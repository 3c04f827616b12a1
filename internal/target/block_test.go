package target

import (
	"net/netip"
	"testing"
)

func TestParseBlock(t *testing.T) {
	cases := []struct {
		in       string
		hostOnly bool
		want     string
		n        int
		first    string
		last     string
	}{
		{"192.168.1.0/30", false, "192.168.1.0/30", 4, "192.168.1.0", "192.168.1.3"},
		{"192.168.1.7/30", false, "192.168.1.4/30", 4, "192.168.1.4", "192.168.1.7"},
		{"192.168.1.0/30", true, "192.168.1.0/30", 3, "192.168.1.0", "192.168.1.2"},
		{"10.0.0.5", true, "10.0.0.5/32", 1, "10.0.0.5", "10.0.0.5"},
		{"10.0.0.4/31", true, "10.0.0.4/31", 2, "10.0.0.4", "10.0.0.5"},
		{"255.255.255.254/31", false, "255.255.255.254/31", 2, "255.255.255.254", "255.255.255.255"},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			b, err := ParseBlock(tc.in, tc.hostOnly)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if b.String() != tc.want {
				t.Fatalf("prefix %s want %s", b, tc.want)
			}
			addrs := b.Slice()
			if len(addrs) != tc.n || b.Len() != tc.n {
				t.Fatalf("got %d addrs (Len %d) want %d", len(addrs), b.Len(), tc.n)
			}
			if addrs[0].String() != tc.first || addrs[len(addrs)-1].String() != tc.last {
				t.Fatalf("range %s..%s want %s..%s", addrs[0], addrs[len(addrs)-1], tc.first, tc.last)
			}
			for i := 1; i < len(addrs); i++ {
				if addrs[i].Compare(addrs[i-1]) <= 0 {
					t.Fatalf("not ascending at %d", i)
				}
			}
		})
	}
}

func TestParseBlock_Invalid(t *testing.T) {
	for _, in := range []string{"", "10.0.0.0/33", "not-an-ip", "fe80::/64", "::1"} {
		t.Run(in, func(t *testing.T) {
			if _, err := ParseBlock(in, false); err == nil {
				t.Fatalf("expected error for %q", in)
			}
		})
	}
}

func TestBlock_AddrsStopsEarly(t *testing.T) {
	b, err := NewBlock(netip.MustParsePrefix("10.1.0.0/16"), false)
	if err != nil {
		t.Fatal(err)
	}
	n := 0
	for range b.Addrs() {
		n++
		if n == 5 {
			break
		}
	}
	if n != 5 {
		t.Fatalf("iterated %d", n)
	}
	if got := b.Broadcast().String(); got != "10.1.255.255" {
		t.Fatalf("broadcast %s", got)
	}
}
