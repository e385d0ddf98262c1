// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Error definitions for the reactor loop.

package reactor

import "errors"

var (
	// ErrLoopAlreadyRunning is returned when Run is called on a running loop.
	ErrLoopAlreadyRunning = errors.New("reactor: loop is already running")

	// ErrLoopRunning is returned by Close while Run is active.
	ErrLoopRunning = errors.New("reactor: loop is running")

	// ErrLoopBusy is returned by Close while write requests are in flight or
	// completions are still queued for the loop.
	ErrLoopBusy = errors.New("reactor: loop has pending requests")

	// ErrDefaultNotInitialized is returned when the default loop is used before InitDefault.
	ErrDefaultNotInitialized = errors.New("reactor: default loop not initialized")

	// ErrDefaultInitialized is returned by a second InitDefault.
	ErrDefaultInitialized = errors.New("reactor: default loop already initialized")
)
