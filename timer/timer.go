// File: timer/timer.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Timer is a Paused/Running/Stopped/Ended state machine over a reactor timer
// handle. The handle's Data field carries a box handle to the Timer so the
// untyped reactor callback can recover it.
//
// A Timer is not safe for concurrent use. Call its methods on the loop
// goroutine, or before the loop runs.

package timer

import (
	"fmt"
	"time"

	"github.com/momentics/hioload-aio/api"
	"github.com/momentics/hioload-aio/box"
	"github.com/momentics/hioload-aio/control"
	"github.com/momentics/hioload-aio/internal/logging"
)

// Option customizes a Timer.
type Option func(*Timer)

// WithLogger sets the timer logger.
func WithLogger(log logging.Logger) Option {
	return func(t *Timer) { t.log = log }
}

// WithMetrics sets the metrics collector.
func WithMetrics(c control.Collector) Option {
	return func(t *Timer) { t.metrics = c }
}

// Timer delivers ticks from a reactor.
type Timer struct {
	loop     api.Reactor
	mode     Mode
	interval time.Duration
	state    State
	onTick   func()

	handle *api.TimerHandle
	token  box.Handle

	due       time.Time     // next expected tick while Running
	remaining time.Duration // frozen time to the next tick while Stopped
	fired     bool          // one-shot already delivered

	log     logging.Logger
	metrics control.Collector
}

// New creates a Paused timer. No reactor resources are held until Start.
func New(loop api.Reactor, mode Mode, interval time.Duration, opts ...Option) *Timer {
	t := &Timer{
		loop:     loop,
		mode:     mode,
		interval: interval,
		state:    Paused,
	}
	for _, opt := range opts {
		opt(t)
	}
	if t.log == nil {
		t.log = logging.NewNopLogger()
	}
	if t.metrics == nil {
		t.metrics = control.NopCollector{}
	}
	t.log = t.log.With("component", "timer", "mode", mode.String())
	return t
}

// State returns the current state.
func (t *Timer) State() State { return t.state }

// Mode returns the delivery mode.
func (t *Timer) Mode() Mode { return t.mode }

// Start arms the timer: Paused -> Running. onTick runs on the loop goroutine.
// When the reactor rejects the timer it stays Paused and holds no resources.
func (t *Timer) Start(onTick func()) error {
	if t.state != Paused {
		return &StateError{Op: "start", State: t.state}
	}
	if onTick == nil || t.interval < 0 || (t.mode == Repeating && t.interval == 0) {
		return fmt.Errorf("timer start: %w", api.ErrInvalidArgument)
	}

	t.handle = t.loop.NewTimerHandle()
	t.token = box.New(t)
	t.handle.Data = uintptr(t.token)
	t.onTick = onTick
	if err := t.arm(t.interval); err != nil {
		t.release()
		t.onTick = nil
		return err
	}
	t.state = Running
	t.log.Debug("timer started", "interval", t.interval)
	return nil
}

// Stop disarms the timer and freezes the time left until the next tick:
// Running -> Stopped.
func (t *Timer) Stop() error {
	if t.state != Running {
		return &StateError{Op: "stop", State: t.state}
	}
	if err := t.loop.StopTimer(t.handle); err != nil {
		return err
	}
	t.remaining = 0
	if !t.fired {
		if left := t.due.Sub(t.loop.Now()); left > 0 {
			t.remaining = left
		}
	}
	t.state = Stopped
	t.log.Debug("timer stopped", "remaining", t.remaining)
	return nil
}

// Resume re-arms a stopped timer with the frozen remaining time for the first
// tick and the regular interval afterwards: Stopped -> Running. A one-shot
// timer that already fired is not re-armed.
func (t *Timer) Resume() error {
	if t.state != Stopped {
		return &StateError{Op: "resume", State: t.state}
	}
	if !t.fired {
		if err := t.arm(t.remaining); err != nil {
			return err
		}
	}
	t.state = Running
	t.log.Debug("timer resumed", "remaining", t.remaining)
	return nil
}

// End releases the timer permanently. Calling End again is a no-op.
func (t *Timer) End() {
	if t.state == Ended {
		return
	}
	if t.handle != nil {
		_ = t.loop.StopTimer(t.handle)
		t.release()
	}
	t.onTick = nil
	t.state = Ended
	t.log.Debug("timer ended")
}

func (t *Timer) arm(first time.Duration) error {
	var repeat time.Duration
	if t.mode == Repeating {
		repeat = t.interval
	}
	if err := t.loop.StartTimer(t.handle, first, repeat, onTimerTick); err != nil {
		return err
	}
	t.due = t.loop.Now().Add(first)
	return nil
}

// release closes the reactor handle and discards the box.
func (t *Timer) release() {
	t.loop.CloseTimerHandle(t.handle)
	box.Discard(t.token)
	t.handle = nil
	t.token = 0
}

// onTimerTick is the reactor callback shared by all timers.
func onTimerTick(h *api.TimerHandle) {
	t := box.Peek[*Timer](box.Handle(h.Data))
	if t.state != Running {
		return
	}
	if t.mode == OneShot {
		t.fired = true
	} else {
		t.due = t.loop.Now().Add(t.interval)
	}
	t.metrics.TimerTicked(t.mode.String())
	t.onTick()
}
