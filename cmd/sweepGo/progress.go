package main

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"

	"SweepGo/internal/portscan"
)

var phaseLabel = map[portscan.Phase]string{
	portscan.PhaseDiscovery: "[cyan][主机发现][reset]",
	portscan.PhaseScanning:  "[cyan][端口扫描][reset]",
}

// barSink 在终端上为每个阶段画一条进度条。
type barSink struct {
	mu    sync.Mutex
	out   io.Writer
	phase portscan.Phase
	bar   *progressbar.ProgressBar
}

func (s *barSink) Progress(e portscan.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.bar == nil || s.phase != e.Phase {
		if s.bar != nil {
			_ = s.bar.Finish()
			fmt.Fprintln(s.out)
		}
		s.phase = e.Phase
		s.bar = progressbar.NewOptions(100,
			progressbar.OptionSetWriter(s.out),
			progressbar.OptionEnableColorCodes(true),
			progressbar.OptionShowBytes(false),
			progressbar.OptionSetWidth(30),
			progressbar.OptionSetDescription(phaseLabel[e.Phase]),
			progressbar.OptionSetTheme(progressbar.Theme{
				Saucer:        "[green]=[reset]",
				SaucerHead:    "[green]>[reset]",
				SaucerPadding: " ",
				BarStart:      "[",
				BarEnd:        "]",
			}),
		)
	}
	_ = s.bar.Set(e.Percent)
	if e.Percent == 100 {
		_ = s.bar.Finish()
		fmt.Fprintln(s.out)
		s.bar = nil
	}
}

// lineSink 非终端输出时每个边界打印一行
type lineSink struct {
	mu  sync.Mutex
	out io.Writer
}

func (s *lineSink) Progress(e portscan.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	color.New(color.FgCyan).Fprintf(s.out, "[*] %s %3d%% (%d/%d)\n", e.Phase, e.Percent, e.Done, e.Total)
}

// newSink 根据 silent 和 stderr 是否为终端选择进度输出方式。
func newSink(silent bool) portscan.ProgressSink {
	if silent {
		return portscan.SinkFunc(func(portscan.Event) {})
	}
	fd := os.Stderr.Fd()
	if isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd) {
		return &barSink{out: os.Stderr}
	}
	return &lineSink{out: os.Stderr}
}
