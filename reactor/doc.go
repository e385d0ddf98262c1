// Copyright (c) 2025
// Author: momentics <momentics@gmail.com>

// Package reactor provides the single-goroutine event loop behind hioload-aio.
//
// A Loop multiplexes timers and positional file writes. Blocking writes run on
// a small worker pool; their completions are handed back to the loop and every
// callback (write completion, timer tick, posted task) runs on the goroutine
// executing Run, one at a time. Requests and timer handles carry an opaque
// Data token that is returned unchanged to the callback.
package reactor
