package netutil

import (
	"errors"
	"net/netip"
	"testing"
)

func TestContaining(t *testing.T) {
	prefixes := []netip.Prefix{
		netip.MustParsePrefix("10.0.0.5/8"),
		netip.MustParsePrefix("192.168.1.10/24"),
	}
	cases := []struct {
		addr string
		want string
		ok   bool
	}{
		{"192.168.1.200", "192.168.1.10/24", true},
		{"10.20.30.40", "10.0.0.5/8", true},
		{"172.16.0.1", "", false},
	}
	for _, tc := range cases {
		t.Run(tc.addr, func(t *testing.T) {
			p, ok := Containing(prefixes, netip.MustParseAddr(tc.addr))
			if ok != tc.ok {
				t.Fatalf("ok=%v want %v", ok, tc.ok)
			}
			if ok && p.String() != tc.want {
				t.Fatalf("got %s want %s", p, tc.want)
			}
		})
	}
}

func TestForTarget_NoInterface(t *testing.T) {
	// TEST-NET-3 不会出现在本机网卡上
	_, err := ForTarget(netip.MustParseAddr("203.0.113.77"))
	if !errors.Is(err, ErrNoInterface) {
		t.Fatalf("expected ErrNoInterface, got %v", err)
	}
}

func TestByName_Unknown(t *testing.T) {
	if _, err := ByName("no-such-iface0"); err == nil {
		t.Fatal("expected error for unknown interface")
	}
}
