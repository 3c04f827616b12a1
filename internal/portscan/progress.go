package portscan

import "sync"

// Event 进度事件，Percent 为已跨过的 10% 边界 (10, 20, ..., 100)。
type Event struct {
	Phase   Phase
	Percent int
	Done    int
	Total   int
}

// ProgressSink 接收进度事件，无需确认。
type ProgressSink interface {
	Progress(Event)
}

// SinkFunc 将普通函数适配为 ProgressSink
type SinkFunc func(Event)

func (f SinkFunc) Progress(e Event) { f(e) }

// Tracker 按完成计数跟踪进度，每个 10% 边界最多上报一次且单调递增。
// 并发调用 Step 是安全的，上报在锁内完成，保证顺序。
type Tracker struct {
	mu    sync.Mutex
	phase Phase
	total int
	done  int
	last  int
	sink  ProgressSink
}

func NewTracker(phase Phase, total int, sink ProgressSink) *Tracker {
	return &Tracker{phase: phase, total: total, sink: sink}
}

// Step 记录一个单位完成。
func (t *Tracker) Step() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.total <= 0 || t.done >= t.total {
		return
	}
	t.done++
	boundary := t.done * 100 / t.total / 10 * 10
	if boundary <= t.last {
		return
	}
	t.last = boundary
	if t.sink != nil {
		t.sink.Progress(Event{Phase: t.phase, Percent: boundary, Done: t.done, Total: t.total})
	}
}

// Done 返回已完成的计数。
func (t *Tracker) Done() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.done
}
