package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"SweepGo/internal/config"
	"SweepGo/internal/portscan"
	"SweepGo/internal/report"
)

// Pipeline 串联一次完整扫描：发现存活主机 -> 端口分类 -> 写出报告。
type Pipeline struct {
	Prober     portscan.HostProber
	Classifier portscan.PortClassifier
	Sink       portscan.ProgressSink
	Log        *zap.Logger
	// Write 为空时使用 report.Write
	Write func(path string, r portscan.Report) error
}

// Result 一次运行的产物
type Result struct {
	Hosts  []portscan.LiveHost
	Report portscan.Report
	Output string
}

// Run 执行扫描。没有存活主机时返回 portscan.ErrNoLiveHosts，
// 此时不会进入端口扫描，也不会写报告文件。
func (p *Pipeline) Run(ctx context.Context, plan *config.Plan) (*Result, error) {
	log := p.Log
	if log == nil {
		log = zap.NewNop()
	}
	write := p.Write
	if write == nil {
		write = report.Write
	}

	sweeper := &portscan.Sweeper{
		Prober:      p.Prober,
		Concurrency: plan.Workers,
		Sink:        p.Sink,
		Log:         log,
	}
	hosts, err := sweeper.Sweep(ctx, plan.Block, plan.Timeout)
	if err != nil {
		return nil, fmt.Errorf("host discovery: %w", err)
	}
	res := &Result{Hosts: hosts}
	if len(hosts) == 0 {
		log.Info("no live hosts", zap.Stringer("block", plan.Block.Prefix()))
		return res, portscan.ErrNoLiveHosts
	}

	coord := &portscan.Coordinator{
		Classifier: p.Classifier,
		Workers:    plan.Workers,
		Sink:       p.Sink,
		Log:        log,
	}
	rep, err := coord.ScanAll(ctx, hosts, plan.Ports, plan.Timeout)
	if err != nil {
		return nil, fmt.Errorf("port scan: %w", err)
	}
	res.Report = rep

	if err := write(plan.Output, rep); err != nil {
		return nil, fmt.Errorf("write report: %w", err)
	}
	res.Output = plan.Output
	log.Info("report written", zap.String("path", plan.Output), zap.Int("rows", len(rep)))
	return res, nil
}
