package app

import (
	"context"
	"errors"
	"fmt"
	"net/netip"
	"testing"

	"SweepGo/internal/config"
	"SweepGo/internal/netutil"
	"SweepGo/internal/portscan"
)

func TestExitCode(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"ok", nil, ExitOK},
		{"config", &config.ConfigError{Field: "ports", Err: errors.New("bad")}, ExitConfig},
		{"no live hosts", portscan.ErrNoLiveHosts, ExitNoLiveHosts},
		{"privilege", fmt.Errorf("capture: %w", netutil.ErrNeedPrivilege), ExitPrivilege},
		{"interrupted", fmt.Errorf("port scan: %w", context.Canceled), ExitInterrupted},
		{"transmission", &portscan.TransmissionError{Target: netip.MustParseAddr("10.0.0.1"), Err: errors.New("x")}, ExitFailure},
		{"other", errors.New("disk full"), ExitFailure},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ExitCode(tc.err); got != tc.want {
				t.Fatalf("got %d want %d", got, tc.want)
			}
		})
	}
}
