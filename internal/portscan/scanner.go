package portscan

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"
)

// Coordinator 对 (存活主机 × 端口) 的每个组合调用 PortClassifier。
type Coordinator struct {
	Classifier PortClassifier
	Workers    int
	Sink       ProgressSink
	Log        *zap.Logger
}

// ScanAll 以端口为外层、主机为内层生成探测任务，交给协程池执行。
// 进度按已完成的端口数上报；全部任务结束后才按主机地址数值升序做稳定排序，
// 同一主机的记录保持端口优先的插入顺序。
// 单个端口无应答不会中止扫描，发包失败或 ctx 取消则返回错误且不产生报告。
func (c *Coordinator) ScanAll(ctx context.Context, hosts []LiveHost, ports []uint16, timeout time.Duration) (Report, error) {
	log := c.Log
	if log == nil {
		log = zap.NewNop()
	}
	log = log.With(zap.String("component", "coordinator"))
	if len(hosts) == 0 || len(ports) == 0 {
		return Report{}, nil
	}

	workers := c.Workers
	if workers < 1 {
		workers = 1
	}
	pool, err := ants.NewPool(workers)
	if err != nil {
		return nil, fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	scanCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		wg       sync.WaitGroup
		once     sync.Once
		firstErr error
	)
	fail := func(err error) {
		once.Do(func() {
			firstErr = err
			cancel()
		})
	}

	// 按 (端口序号, 主机序号) 定位，每个槽位只被一个任务写入
	results := make([]Classification, len(ports)*len(hosts))
	remaining := make([]atomic.Int64, len(ports))
	tracker := NewTracker(PhaseScanning, len(ports), c.Sink)

	log.Info("scan started", zap.Int("hosts", len(hosts)), zap.Int("ports", len(ports)), zap.Int("workers", workers))
	start := time.Now()

submit:
	for pi, port := range ports {
		remaining[pi].Store(int64(len(hosts)))
		for hi, host := range hosts {
			if scanCtx.Err() != nil {
				break submit
			}
			slot := pi*len(hosts) + hi
			wg.Add(1)
			task := func() {
				defer wg.Done()
				if scanCtx.Err() != nil {
					return
				}
				res, err := c.Classifier.Classify(scanCtx, host, port, timeout)
				if err != nil {
					fail(err)
					return
				}
				results[slot] = res
				if remaining[pi].Add(-1) == 0 {
					tracker.Step()
				}
			}
			if err := pool.Submit(task); err != nil {
				wg.Done()
				fail(fmt.Errorf("submit probe: %w", err))
				break submit
			}
		}
	}
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	report := Report(results)
	slices.SortStableFunc(report, func(a, b Classification) int {
		return a.Host.Compare(b.Host)
	})
	log.Info("scan finished", zap.Int("records", len(report)), zap.Duration("elapsed", time.Since(start)))
	return report, nil
}
