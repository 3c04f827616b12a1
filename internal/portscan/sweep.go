package portscan

import (
	"context"
	"net/netip"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"SweepGo/internal/target"
)

// Sweeper 依次探测地址块内每个地址，收集存活主机。
type Sweeper struct {
	Prober      HostProber
	Concurrency int
	Sink        ProgressSink
	Log         *zap.Logger
}

// Sweep 返回按地址升序排列的存活主机，结果只取决于每个地址的探测结论。
// Concurrency <= 1 时严格串行；任何发包错误都会中止整个发现阶段。
// 结果为空时不返回错误，是否终止由调用方决定。
func (s *Sweeper) Sweep(ctx context.Context, block target.Block, timeout time.Duration) ([]LiveHost, error) {
	log := s.Log
	if log == nil {
		log = zap.NewNop()
	}
	log = log.With(zap.String("component", "sweep"))

	addrs := block.Slice()
	tracker := NewTracker(PhaseDiscovery, len(addrs), s.Sink)
	found := make([]*LiveHost, len(addrs))

	limit := s.Concurrency
	if limit < 1 {
		limit = 1
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	log.Info("discovery started", zap.Stringer("block", block.Prefix()), zap.Int("addresses", len(addrs)))
	for i, addr := range addrs {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			host, live, err := s.Prober.Probe(gctx, addr, timeout)
			if err != nil {
				return err
			}
			if live {
				found[i] = &host
			}
			tracker.Step()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	hosts := make([]LiveHost, 0, len(addrs))
	for _, h := range found {
		if h != nil {
			hosts = append(hosts, *h)
		}
	}
	log.Info("discovery finished", zap.Int("live", len(hosts)))
	return hosts, nil
}

// Addrs 取出存活主机的地址列表。
func Addrs(hosts []LiveHost) []netip.Addr {
	out := make([]netip.Addr, len(hosts))
	for i, h := range hosts {
		out[i] = h.Addr
	}
	return out
}
