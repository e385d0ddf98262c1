// File: reactor/loop.go
//
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Run drives the loop: expired timers first, then queued completions and
// posted tasks in batches, then a blocking wait for the next deadline or wake
// signal. The loop returns once nothing keeps it alive.

package reactor

import (
	"context"
	"time"

	"github.com/momentics/hioload-aio/api"
)

// Run dispatches callbacks on the calling goroutine until Stop is called, ctx
// is done, or no armed timer, in-flight request or queued task remains.
func (l *Loop) Run(ctx context.Context) error {
	if l.closed.Load() {
		return api.ErrLoopClosed
	}
	if !l.running.CompareAndSwap(false, true) {
		return ErrLoopAlreadyRunning
	}
	defer l.running.Store(false)
	l.stopReq.Store(false)

	l.log.Debug("reactor loop started", "workers", l.cfg.Workers, "batch", l.cfg.BatchSize)
	defer l.log.Debug("reactor loop exited")

	// Reusable wait timer, initially stopped.
	wait := time.NewTimer(time.Hour)
	if !wait.Stop() {
		<-wait.C
	}

	for {
		l.runDueTimers()
		l.drainIncoming()
		l.dispatchBatch()

		if l.stopReq.Load() {
			return nil
		}

		deadline, hasTimer, alive := l.nextWakeup()
		if !alive {
			return nil
		}
		if l.pending.Length() > 0 {
			continue
		}

		var timerC <-chan time.Time
		if hasTimer {
			d := time.Until(deadline)
			if d <= 0 {
				continue
			}
			wait.Reset(d)
			timerC = wait.C
		}

		select {
		case <-ctx.Done():
			stopTimer(wait)
			return ctx.Err()
		case <-l.wake:
			stopTimer(wait)
		case <-timerC:
		}
	}
}

// Stop makes Run return after the current batch. Safe from any goroutine,
// including from inside a callback.
func (l *Loop) Stop() {
	l.stopReq.Store(true)
	l.signal()
}

// Post schedules fn to run on the loop goroutine. The loop stays alive until
// fn ran.
func (l *Loop) Post(fn func()) error {
	if fn == nil {
		return api.ErrInvalidArgument
	}
	if l.closed.Load() {
		return api.ErrLoopClosed
	}
	l.enqueue(fn)
	return nil
}

func (l *Loop) enqueue(fn func()) {
	l.mu.Lock()
	l.incoming.Add(fn)
	l.tasks++
	l.mu.Unlock()
	l.signal()
}

func (l *Loop) drainIncoming() {
	l.mu.Lock()
	for l.incoming.Length() > 0 {
		l.pending.Add(l.incoming.Remove())
	}
	l.mu.Unlock()
}

func (l *Loop) dispatchBatch() {
	for i := 0; i < l.cfg.BatchSize && l.pending.Length() > 0; i++ {
		fn := l.pending.Remove().(func())
		fn()
		l.mu.Lock()
		l.tasks--
		l.mu.Unlock()
	}
}

func (l *Loop) runDueTimers() {
	now := l.Now()
	for {
		l.mu.Lock()
		if len(l.timers) == 0 || l.timers[0].when.After(now) {
			l.mu.Unlock()
			return
		}
		e := l.timers[0]
		if e.repeat > 0 {
			// re-armed before the callback so StopTimer inside it wins
			l.seq++
			e.when = now.Add(e.repeat)
			e.seq = l.seq
			l.timers.fix(e)
		} else {
			l.timers.remove(e)
		}
		h, cb := e.handle, e.cb
		l.mu.Unlock()

		cb(h)
	}
}

func (l *Loop) nextWakeup() (deadline time.Time, hasTimer, alive bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.timers) > 0 {
		deadline, hasTimer = l.timers[0].when, true
	}
	alive = hasTimer || l.inflight > 0 || l.tasks > 0
	return deadline, hasTimer, alive
}

func stopTimer(t *time.Timer) {
	if !t.Stop() {
		select {
		case <-t.C:
		default:
		}
	}
}
