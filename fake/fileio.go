// Package fake
// Author: momentics <momentics@gmail.com>
//
// Fake implementations for testing and development.
// Provides predictable, controllable behavior for the reactor file backend.

package fake

import (
	"sync"
	"syscall"
)

// WriteCall records one Pwrite invocation.
type WriteCall struct {
	Fd     int
	Offset int64
	Data   []byte
}

// FileIO is a scripted reactor.FileIO. Each Pwrite consumes the next scripted
// result: a positive value is the number of bytes reported written (clamped to
// the request length), zero reports no progress, a negative value is returned
// as the errno -result. Once the script is exhausted every call succeeds in
// full. Written bytes are applied to an in-memory file image.
type FileIO struct {
	mu      sync.Mutex
	results []int
	calls   []WriteCall
	image   []byte
}

// NewFileIO creates a FileIO replaying results.
func NewFileIO(results ...int) *FileIO {
	return &FileIO{results: results}
}

// Pwrite implements reactor.FileIO.
func (f *FileIO) Pwrite(fd int, p []byte, offset int64) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	data := make([]byte, len(p))
	copy(data, p)
	f.calls = append(f.calls, WriteCall{Fd: fd, Offset: offset, Data: data})

	n := len(p)
	if len(f.results) > 0 {
		n = f.results[0]
		f.results = f.results[1:]
	}
	if n < 0 {
		return -1, syscall.Errno(-n)
	}
	if n > len(p) {
		n = len(p)
	}
	f.apply(p[:n], offset)
	return n, nil
}

func (f *FileIO) apply(p []byte, offset int64) {
	end := int(offset) + len(p)
	if end > len(f.image) {
		grown := make([]byte, end)
		copy(grown, f.image)
		f.image = grown
	}
	copy(f.image[offset:], p)
}

// Calls returns a copy of the recorded invocations.
func (f *FileIO) Calls() []WriteCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]WriteCall, len(f.calls))
	copy(out, f.calls)
	return out
}

// Offsets returns the offset of every recorded invocation.
func (f *FileIO) Offsets() []int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]int64, 0, len(f.calls))
	for _, c := range f.calls {
		out = append(out, c.Offset)
	}
	return out
}

// Image returns a copy of the bytes written so far.
func (f *FileIO) Image() []byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]byte, len(f.image))
	copy(out, f.image)
	return out
}
