package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/projectdiscovery/goflags"
	"go.uber.org/zap"

	"SweepGo/internal/app"
	"SweepGo/internal/capture"
	"SweepGo/internal/config"
	"SweepGo/internal/logging"
	"SweepGo/internal/netutil"
	"SweepGo/internal/portscan"
)

func main() {
	cfg := config.Load()

	flagSet := goflags.NewFlagSet()
	flagSet.SetDescription("sweepGo 对一个 IPv4 网段做 ARP 主机发现，再对存活主机做 SYN 端口扫描，结果写入 CSV。")
	flagSet.CreateGroup("input", "Input",
		flagSet.StringVarP(&cfg.Target, "target", "n", "", "目标网段 (CIDR, 如 192.168.1.0/24)"),
		flagSet.StringVarP(&cfg.Ports, "port", "p", "", "端口: 22,80,8000-8100；F=常用100；-/all=全部；留空=常用1000"),
		flagSet.BoolVar(&cfg.HostOnly, "host-only", false, "跳过网段广播地址"),
	)
	flagSet.CreateGroup("tuning", "Tuning",
		flagSet.StringVarP(&cfg.Timeout, "timeout", "t", cfg.Timeout, "单次探测超时 (秒, 或 500ms 这类写法)"),
		flagSet.StringVarP(&cfg.Iface, "interface", "i", cfg.Iface, "发包网卡，留空则按网段自动选择"),
		flagSet.IntVarP(&cfg.Workers, "concurrency", "c", cfg.Workers, "并发数"),
		flagSet.IntVar(&cfg.Inflight, "inflight", cfg.Inflight, "同时等待应答的探测包上限"),
	)
	flagSet.CreateGroup("output", "Output",
		flagSet.StringVarP(&cfg.Output, "output", "o", cfg.Output, "CSV 报告路径"),
		flagSet.BoolVarP(&cfg.Verbose, "verbose", "v", false, "输出调试日志"),
		flagSet.BoolVar(&cfg.Silent, "silent", false, "不显示进度"),
	)
	if err := flagSet.Parse(); err != nil {
		color.Red("[-]参数解析失败: %v", err)
		os.Exit(app.ExitConfig)
	}

	os.Exit(run(cfg))
}

func run(cfg *config.Config) int {
	plan, err := cfg.Validate()
	if err != nil {
		color.Red("[-]%v", err)
		return app.ExitCode(err)
	}

	log := logging.New(cfg.Verbose)
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if ok, err := netutil.CanOpenRawSocket(); err != nil || !ok {
		if err == nil {
			err = netutil.ErrNeedPrivilege
		}
		color.Red("[-]%v (try sudo or CAP_NET_RAW)", err)
		return app.ExitPrivilege
	}

	iface, err := pickInterface(plan)
	if err != nil {
		color.Red("[-]%v", err)
		return app.ExitFailure
	}
	handle, err := capture.Open(iface.Name)
	if err != nil {
		color.Red("[-]%v", err)
		return app.ExitFailure
	}
	defer handle.Close()

	wire := portscan.NewWire(handle, portscan.Endpoint{IP: iface.IP, MAC: iface.MAC}, int64(plan.Inflight), log)
	wireCtx, stopWire := context.WithCancel(ctx)
	wireDone := make(chan error, 1)
	go func() { wireDone <- wire.Run(wireCtx) }()
	defer func() {
		stopWire()
		if err := <-wireDone; err != nil && !errors.Is(err, context.Canceled) {
			log.Warn("receive loop stopped", zap.Error(err))
		}
	}()

	color.Cyan("--- 开始扫描 %s [%d 个端口] ---", plan.Block, len(plan.Ports))
	color.Cyan("--- 网卡: %s (%s) | 并发数: %d | 超时: %s ---", iface.Name, iface.IP, plan.Workers, plan.Timeout)
	start := time.Now()

	p := &app.Pipeline{
		Prober:     portscan.NewArpProber(wire, log),
		Classifier: portscan.NewSynScanner(wire, log),
		Sink:       newSink(cfg.Silent),
		Log:        logging.Component(log, "pipeline"),
	}
	res, err := p.Run(ctx, plan)
	switch {
	case errors.Is(err, portscan.ErrNoLiveHosts):
		color.Yellow("[!]%s 内没有存活主机，未生成报告", plan.Block)
		return app.ExitNoLiveHosts
	case errors.Is(err, context.Canceled):
		color.Red("[-]扫描被中断，未生成报告")
		return app.ExitInterrupted
	case err != nil:
		color.Red("[-]%v", err)
		return app.ExitCode(err)
	}

	fmt.Println("============================")
	color.Green("[+]存活主机: %d", len(res.Hosts))
	for _, h := range res.Hosts {
		fmt.Printf("    %-15s %s\n", h.Addr, h.MAC)
	}
	color.Green("[+]Open: %d | Closed: %d | Filtered: %d",
		res.Report.Count(portscan.StateOpen),
		res.Report.Count(portscan.StateClosed),
		res.Report.Count(portscan.StateFiltered))
	color.Cyan("[+]扫描完成!耗时: %s，报告已写入 %s", time.Since(start).Round(time.Millisecond), res.Output)
	return app.ExitOK
}

// pickInterface 优先使用指定网卡，否则找与网段直连的网卡。
func pickInterface(plan *config.Plan) (netutil.Interface, error) {
	if plan.Iface != "" {
		return netutil.ByName(plan.Iface)
	}
	return netutil.ForTarget(plan.Block.Base())
}
