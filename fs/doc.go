// Package fs
// Author: momentics <momentics@gmail.com>
//
// Incremental positional file writes on top of api.Reactor.
//
// A FileWriter submits one request at a time and keeps resubmitting the
// unwritten tail until the payload is written, the descriptor reports no
// progress, or an error occurs. Exactly one WriteResult is delivered per
// Write, on the loop goroutine.
package fs
