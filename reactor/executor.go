// File: reactor/executor.go
//
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// workerPool runs blocking file I/O off the loop goroutine. Jobs come from a
// shared queue; close waits until every worker has exited.

package reactor

import (
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/momentics/hioload-aio/affinity"
	"github.com/momentics/hioload-aio/api"
	"github.com/momentics/hioload-aio/internal/logging"
)

type workerPool struct {
	jobs    chan func()
	closeCh chan struct{}
	closed  atomic.Bool
	wg      sync.WaitGroup
	pin     bool
	log     logging.Logger
}

func newWorkerPool(numWorkers int, pin bool, log logging.Logger) *workerPool {
	p := &workerPool{
		jobs:    make(chan func(), numWorkers*4),
		closeCh: make(chan struct{}),
		pin:     pin,
		log:     log,
	}
	for i := 0; i < numWorkers; i++ {
		p.wg.Add(1)
		go p.run(i)
	}
	return p
}

// submit enqueues job, blocking while the queue is full.
func (p *workerPool) submit(job func()) error {
	if p.closed.Load() {
		return api.ErrLoopClosed
	}
	select {
	case p.jobs <- job:
		return nil
	case <-p.closeCh:
		return api.ErrLoopClosed
	}
}

func (p *workerPool) close() {
	if p.closed.CompareAndSwap(false, true) {
		close(p.closeCh)
		p.wg.Wait()
	}
}

func (p *workerPool) run(id int) {
	defer p.wg.Done()
	if p.pin {
		defer runtime.UnlockOSThread()
		if err := affinity.Pin(id); err != nil {
			p.log.Warn("worker not pinned", "worker", id, "error", err)
		}
	}
	for {
		select {
		case <-p.closeCh:
			return
		case job := <-p.jobs:
			p.safeExecute(id, job)
		}
	}
}

func (p *workerPool) safeExecute(id int, job func()) {
	defer func() {
		if r := recover(); r != nil {
			p.log.Error("worker job panicked", "worker", id, "panic", r)
		}
	}()
	job()
}
