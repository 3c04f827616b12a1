package portscan

import (
	"context"
	"errors"
	"net/netip"
	"reflect"
	"sync/atomic"
	"testing"
	"time"

	"SweepGo/internal/target"
)

// fakeProber 按预设集合回答存活与否
type fakeProber struct {
	live  map[netip.Addr]bool
	fail  netip.Addr
	calls atomic.Int64
}

func (p *fakeProber) Probe(ctx context.Context, addr netip.Addr, _ time.Duration) (LiveHost, bool, error) {
	p.calls.Add(1)
	if err := ctx.Err(); err != nil {
		return LiveHost{}, false, err
	}
	if addr == p.fail {
		return LiveHost{}, false, &TransmissionError{Target: addr, Err: errors.New("no link")}
	}
	if p.live[addr] {
		return LiveHost{Addr: addr}, true, nil
	}
	return LiveHost{}, false, nil
}

func addrSet(ss ...string) map[netip.Addr]bool {
	m := make(map[netip.Addr]bool, len(ss))
	for _, s := range ss {
		m[netip.MustParseAddr(s)] = true
	}
	return m
}

func mustBlock(t *testing.T, s string) target.Block {
	t.Helper()
	b, err := target.ParseBlock(s, false)
	if err != nil {
		t.Fatal(err)
	}
	return b
}

func TestSweeper_Sweep(t *testing.T) {
	live := addrSet("10.0.0.2", "10.0.0.10", "10.0.0.33")
	for _, workers := range []int{1, 8} {
		p := &fakeProber{live: live}
		rec := &recorder{}
		s := &Sweeper{Prober: p, Concurrency: workers, Sink: rec}

		hosts, err := s.Sweep(context.Background(), mustBlock(t, "10.0.0.0/26"), time.Millisecond)
		if err != nil {
			t.Fatalf("workers=%d: %v", workers, err)
		}
		got := Addrs(hosts)
		want := []netip.Addr{
			netip.MustParseAddr("10.0.0.2"),
			netip.MustParseAddr("10.0.0.10"),
			netip.MustParseAddr("10.0.0.33"),
		}
		if !reflect.DeepEqual(got, want) {
			t.Fatalf("workers=%d: got %v want %v", workers, got, want)
		}
		if n := p.calls.Load(); n != 64 {
			t.Fatalf("workers=%d: probed %d addresses, want 64", workers, n)
		}
		if pct := rec.percents(); len(pct) != 10 || pct[9] != 100 {
			t.Fatalf("workers=%d: progress %v", workers, pct)
		}
		for _, e := range rec.events {
			if e.Phase != PhaseDiscovery {
				t.Fatalf("phase %s", e.Phase)
			}
		}
	}
}

func TestSweeper_SingleAddressBlock(t *testing.T) {
	cases := map[string]int{"10.0.0.7": 1, "10.0.0.8": 0}
	for addr, want := range cases {
		s := &Sweeper{Prober: &fakeProber{live: addrSet("10.0.0.7")}}
		hosts, err := s.Sweep(context.Background(), mustBlock(t, addr+"/32"), time.Millisecond)
		if err != nil {
			t.Fatalf("%s: %v", addr, err)
		}
		if len(hosts) != want {
			t.Fatalf("%s: got %d hosts want %d", addr, len(hosts), want)
		}
	}
}

func TestSweeper_EmptyResultIsNotAnError(t *testing.T) {
	s := &Sweeper{Prober: &fakeProber{}, Concurrency: 4}
	hosts, err := s.Sweep(context.Background(), mustBlock(t, "192.168.5.0/28"), time.Millisecond)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if hosts == nil || len(hosts) != 0 {
		t.Fatalf("want empty non-nil slice, got %#v", hosts)
	}
}

func TestSweeper_TransmissionErrorAborts(t *testing.T) {
	p := &fakeProber{live: addrSet("10.0.0.1"), fail: netip.MustParseAddr("10.0.0.5")}
	s := &Sweeper{Prober: p, Concurrency: 1}
	hosts, err := s.Sweep(context.Background(), mustBlock(t, "10.0.0.0/24"), time.Millisecond)
	var te *TransmissionError
	if !errors.As(err, &te) {
		t.Fatalf("expected TransmissionError, got %v", err)
	}
	if hosts != nil {
		t.Fatalf("no hosts expected on failure, got %v", hosts)
	}
	if n := p.calls.Load(); n >= 256 {
		t.Fatalf("sweep kept probing after fatal error (%d calls)", n)
	}
}

func TestSweeper_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s := &Sweeper{Prober: &fakeProber{}, Concurrency: 2}
	if _, err := s.Sweep(ctx, mustBlock(t, "10.0.0.0/24"), time.Millisecond); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
