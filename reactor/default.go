// File: reactor/default.go
// Author: momentics <momentics@gmail.com>
//
// Process-wide default loop. It is explicit state: it must be created with
// InitDefault before Default is used and torn down with ShutdownDefault.
// Components never reach for it implicitly; callers pass it to constructors.

package reactor

import "sync"

var (
	defaultMu   sync.Mutex
	defaultLoop *Loop
)

// InitDefault creates the default loop.
func InitDefault(cfg Config, opts ...Option) error {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultLoop != nil {
		return ErrDefaultInitialized
	}
	l, err := New(cfg, opts...)
	if err != nil {
		return err
	}
	defaultLoop = l
	return nil
}

// Default returns the default loop. It panics if InitDefault was not called.
func Default() *Loop {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultLoop == nil {
		panic(ErrDefaultNotInitialized)
	}
	return defaultLoop
}

// ShutdownDefault closes the default loop and forgets it.
func ShutdownDefault() error {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultLoop == nil {
		return ErrDefaultNotInitialized
	}
	if err := defaultLoop.Close(); err != nil {
		return err
	}
	defaultLoop = nil
	return nil
}
