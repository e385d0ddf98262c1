// File: api/reactor.go
// Author: momentics <momentics@gmail.com>
//
// Defines the callback-style contract of the event reactor consumed by the
// timer and file writer packages. Requests and handles carry one opaque
// pointer-sized token each; the reactor hands it back unchanged.

package api

import "time"

// FsCallback is invoked on the loop goroutine once a file request completes.
type FsCallback func(req *FsRequest)

// TimerCallback is invoked on the loop goroutine on every timer expiry.
type TimerCallback func(h *TimerHandle)

// FsRequest is the per-operation scratch state of a file request.
// It is allocated by Reactor.NewFsRequest and must be returned with
// Reactor.ReleaseFsRequest exactly once.
type FsRequest struct {
	// Data is an opaque application value, usually a box handle.
	Data uintptr

	// Fd and Offset describe the submitted operation.
	Fd     int
	Offset int64

	// Result follows write(2): negative error code, 0, or bytes written.
	// Valid inside the completion callback only.
	Result int
}

// TimerHandle is a reactor timer registration. It is allocated by
// Reactor.NewTimerHandle and must be closed with Reactor.CloseTimerHandle.
type TimerHandle struct {
	// Data is an opaque application value, usually a box handle.
	Data uintptr
}

// Reactor defines the single-threaded event loop operations needed by the
// core. All callbacks run on the loop goroutine and never concurrently.
type Reactor interface {
	// NewFsRequest allocates request scratch state.
	NewFsRequest() *FsRequest

	// SubmitWrite issues a positional write of buf at offset. On rejection an
	// error is returned and cb is never invoked.
	SubmitWrite(req *FsRequest, fd int, buf []byte, offset int64, cb FsCallback) error

	// ReleaseFsRequest frees request scratch state.
	ReleaseFsRequest(req *FsRequest)

	// NewTimerHandle allocates an inactive timer handle.
	NewTimerHandle() *TimerHandle

	// StartTimer arms h to fire after timeout and then every repeat
	// (repeat == 0 means once). Re-arming an active handle reschedules it.
	StartTimer(h *TimerHandle, timeout, repeat time.Duration, cb TimerCallback) error

	// StopTimer disarms h. Stopping an inactive handle is a no-op.
	StopTimer(h *TimerHandle) error

	// CloseTimerHandle disarms and frees h.
	CloseTimerHandle(h *TimerHandle)

	// Now returns the loop clock.
	Now() time.Time
}
