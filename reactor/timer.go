// File: reactor/timer.go
// Author: momentics <momentics@gmail.com>
//
// Timer handles backed by a deadline-ordered min-heap.

package reactor

import (
	"container/heap"
	"time"

	"github.com/momentics/hioload-aio/api"
)

type timerEntry struct {
	handle *api.TimerHandle
	when   time.Time
	repeat time.Duration
	cb     api.TimerCallback
	seq    uint64 // FIFO among equal deadlines
	index  int    // position in the heap, -1 when disarmed
}

// timerHeap is a min-heap of armed timers.
type timerHeap []*timerEntry

func (h timerHeap) Len() int { return len(h) }
func (h timerHeap) Less(i, j int) bool {
	if h[i].when.Equal(h[j].when) {
		return h[i].seq < h[j].seq
	}
	return h[i].when.Before(h[j].when)
}
func (h timerHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *timerHeap) Push(x any) {
	e := x.(*timerEntry)
	e.index = len(*h)
	*h = append(*h, e)
}

func (h *timerHeap) Pop() any {
	old := *h
	n := len(old)
	e := old[n-1]
	old[n-1] = nil
	e.index = -1
	*h = old[:n-1]
	return e
}

func (h *timerHeap) push(e *timerEntry) { heap.Push(h, e) }
func (h *timerHeap) fix(e *timerEntry)  { heap.Fix(h, e.index) }
func (h *timerHeap) remove(e *timerEntry) {
	if e.index >= 0 {
		heap.Remove(h, e.index)
	}
}

// NewTimerHandle allocates an inactive timer handle.
func (l *Loop) NewTimerHandle() *api.TimerHandle {
	h := &api.TimerHandle{}
	l.mu.Lock()
	l.handles[h] = &timerEntry{handle: h, index: -1}
	l.mu.Unlock()
	return h
}

// StartTimer arms h to fire after timeout, then every repeat if repeat > 0.
// Starting an armed handle reschedules it.
func (l *Loop) StartTimer(h *api.TimerHandle, timeout, repeat time.Duration, cb api.TimerCallback) error {
	const op = "timer start"
	if cb == nil || timeout < 0 || repeat < 0 {
		return api.NewSubmissionError(op, api.CodeInval, api.ErrInvalidArgument)
	}
	if l.closed.Load() {
		return api.NewSubmissionError(op, api.CodeCanceled, api.ErrLoopClosed)
	}

	l.mu.Lock()
	e, ok := l.handles[h]
	if !ok {
		l.mu.Unlock()
		return api.NewSubmissionError(op, api.CodeInval, api.ErrInvalidArgument)
	}
	l.timers.remove(e)
	l.seq++
	e.when = l.Now().Add(timeout)
	e.repeat = repeat
	e.cb = cb
	e.seq = l.seq
	l.timers.push(e)
	l.mu.Unlock()

	l.signal()
	return nil
}

// StopTimer disarms h; a disarmed handle is left untouched.
func (l *Loop) StopTimer(h *api.TimerHandle) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	e, ok := l.handles[h]
	if !ok {
		return api.NewSubmissionError("timer stop", api.CodeInval, api.ErrInvalidArgument)
	}
	l.timers.remove(e)
	return nil
}

// CloseTimerHandle disarms and frees h. Closing an unknown or already closed
// handle panics.
func (l *Loop) CloseTimerHandle(h *api.TimerHandle) {
	l.mu.Lock()
	e, ok := l.handles[h]
	if ok {
		l.timers.remove(e)
		delete(l.handles, h)
	}
	l.mu.Unlock()
	if !ok {
		panic("reactor: close of unknown or closed timer handle")
	}
}
