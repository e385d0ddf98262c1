// control/debug.go
// Author: momentics <momentics@gmail.com>
//
// Named state snapshots for leak inspection: reactor resource counts, boxes
// that were never reclaimed and the CPU count workers are pinned across.

package control

import (
	"runtime"
	"sync"

	"github.com/samber/lo"

	"github.com/momentics/hioload-aio/box"
	"github.com/momentics/hioload-aio/reactor"
)

// DebugProbes maps a name to a function sampled on every DumpState. Samplers
// run on the caller's goroutine, so they must only read state that is safe
// to read off the loop (Loop.Stats, box.Live).
type DebugProbes struct {
	mu     sync.RWMutex
	probes map[string]func() any
}

// NewDebugProbes returns an empty registry.
func NewDebugProbes() *DebugProbes {
	return &DebugProbes{
		probes: make(map[string]func() any),
	}
}

// RegisterProbe adds fn under name, replacing any sampler already there.
func (dp *DebugProbes) RegisterProbe(name string, fn func() any) {
	dp.mu.Lock()
	defer dp.mu.Unlock()
	dp.probes[name] = fn
}

// DumpState samples every registered function once.
func (dp *DebugProbes) DumpState() map[string]any {
	dp.mu.RLock()
	defer dp.mu.RUnlock()
	return lo.MapValues(dp.probes, func(fn func() any, _ string) any { return fn() })
}

// RegisterLoopProbes registers "reactor.stats" (a reactor.Stats snapshot),
// "box.live" (unreclaimed boxes; nonzero after every writer and timer
// finished means a leak) and "platform.cpus".
func RegisterLoopProbes(dp *DebugProbes, loop *reactor.Loop) {
	dp.RegisterProbe("reactor.stats", func() any { return loop.Stats() })
	dp.RegisterProbe("box.live", func() any { return box.Live() })
	dp.RegisterProbe("platform.cpus", func() any { return runtime.NumCPU() })
}
