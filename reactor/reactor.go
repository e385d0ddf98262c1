// File: reactor/reactor.go
// Author: momentics <momentics@gmail.com>
//
// Loop construction, configuration and resource accounting.

package reactor

import (
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/eapache/queue"

	"github.com/momentics/hioload-aio/api"
	"github.com/momentics/hioload-aio/internal/logging"
)

// Config holds loop tuning parameters.
type Config struct {
	// Workers is the number of goroutines executing blocking file I/O.
	// Non-positive means runtime.NumCPU().
	Workers int
	// BatchSize caps callbacks dispatched before timers are checked again.
	BatchSize int
	// PinWorkers binds each I/O worker to its own CPU where supported.
	PinWorkers bool
}

// DefaultConfig returns a working default configuration.
func DefaultConfig() Config {
	return Config{
		Workers:   4,
		BatchSize: 64,
	}
}

// Option customizes a Loop.
type Option func(*Loop)

// WithFileIO replaces the system file I/O backend.
func WithFileIO(f FileIO) Option {
	return func(l *Loop) { l.fileIO = f }
}

// WithLogger sets the loop logger.
func WithLogger(log logging.Logger) Option {
	return func(l *Loop) { l.log = log }
}

// Stats is a snapshot of resources held by a Loop.
type Stats struct {
	LiveFsRequests     int // allocated and not yet released
	InflightFsRequests int // submitted, completion not yet delivered
	OpenTimers         int // allocated and not yet closed
	ActiveTimers       int // armed
	PendingTasks       int // completions and posted tasks waiting for dispatch
}

// Loop is a single-threaded reactor implementing api.Reactor.
//
// Registration methods may be called from any goroutine; callbacks always run
// on the goroutine executing Run.
type Loop struct {
	cfg    Config
	fileIO FileIO
	log    logging.Logger
	pool   *workerPool

	mu       sync.Mutex
	timers   timerHeap
	handles  map[*api.TimerHandle]*timerEntry
	requests map[*api.FsRequest]bool // true while in flight
	inflight int
	incoming *queue.Queue // func(), guarded by mu
	tasks    int          // enqueued and not yet run
	seq      uint64

	pending *queue.Queue // func(), loop goroutine only

	wake      chan struct{}
	running   atomic.Bool
	stopReq   atomic.Bool
	closed    atomic.Bool
	closeOnce sync.Once
}

var _ api.Reactor = (*Loop)(nil)

// New creates a Loop and starts its I/O workers.
func New(cfg Config, opts ...Option) (*Loop, error) {
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.NumCPU()
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultConfig().BatchSize
	}
	l := &Loop{
		cfg:      cfg,
		handles:  make(map[*api.TimerHandle]*timerEntry),
		requests: make(map[*api.FsRequest]bool),
		incoming: queue.New(),
		pending:  queue.New(),
		wake:     make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.log == nil {
		l.log = logging.NewNopLogger()
	}
	if l.fileIO == nil {
		l.fileIO = SystemFileIO()
	}
	l.pool = newWorkerPool(cfg.Workers, cfg.PinWorkers, l.log)
	return l, nil
}

// Now returns the loop clock.
func (l *Loop) Now() time.Time {
	return time.Now()
}

// Stats returns a snapshot of held resources.
func (l *Loop) Stats() Stats {
	l.mu.Lock()
	defer l.mu.Unlock()
	return Stats{
		LiveFsRequests:     len(l.requests),
		InflightFsRequests: l.inflight,
		OpenTimers:         len(l.handles),
		ActiveTimers:       len(l.timers),
		PendingTasks:       l.tasks,
	}
}

// Close stops the I/O workers and rejects further submissions.
// It fails with ErrLoopRunning while Run is active and with ErrLoopBusy
// while writes or queued completions are outstanding; Run drains them.
func (l *Loop) Close() error {
	if l.running.Load() {
		return ErrLoopRunning
	}
	l.mu.Lock()
	busy := l.inflight > 0 || l.tasks > 0
	l.mu.Unlock()
	if busy {
		return ErrLoopBusy
	}
	l.closeOnce.Do(func() {
		l.closed.Store(true)
		l.pool.close()
		l.log.Debug("reactor loop closed")
	})
	return nil
}

// signal wakes a blocked Run.
func (l *Loop) signal() {
	select {
	case l.wake <- struct{}{}:
	default:
	}
}
