// File: box/box.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Package box moves an owned Go value behind an opaque pointer-sized handle so
// it can travel through the reactor's untyped Data fields, and reclaims it
// later with its static type restored.
//
// Every handle must be reclaimed with Take or released with Discard exactly
// once. Misuse (double take, unknown handle, wrong type) panics: it is a
// programming error, the same class of defect as a double free at a C
// boundary, and must surface in tests instead of being handled at runtime.
package box

import (
	"fmt"
	"sync"
	"sync/atomic"
)

// Handle identifies a live box. The zero Handle is never issued.
type Handle uintptr

var (
	mu    sync.Mutex
	cells = make(map[Handle]any)
	next  atomic.Uintptr
)

// New moves v into a new box and returns its handle.
func New(v any) Handle {
	h := Handle(next.Add(1))
	mu.Lock()
	cells[h] = v
	mu.Unlock()
	return h
}

// Take returns the boxed value and releases the box. The handle must not be
// used afterwards.
func Take[T any](h Handle) T {
	mu.Lock()
	v, ok := cells[h]
	if ok {
		delete(cells, h)
	}
	mu.Unlock()
	if !ok {
		panic(fmt.Sprintf("box: take of invalid or released handle %#x", uintptr(h)))
	}
	return cast[T](h, v)
}

// Peek returns the boxed value without releasing the box. The value is only
// guaranteed to stay owned by the box until the current callback returns.
func Peek[T any](h Handle) T {
	mu.Lock()
	v, ok := cells[h]
	mu.Unlock()
	if !ok {
		panic(fmt.Sprintf("box: peek of invalid or released handle %#x", uintptr(h)))
	}
	return cast[T](h, v)
}

// Discard releases the box without returning its value.
func Discard(h Handle) {
	mu.Lock()
	_, ok := cells[h]
	delete(cells, h)
	mu.Unlock()
	if !ok {
		panic(fmt.Sprintf("box: discard of invalid or released handle %#x", uintptr(h)))
	}
}

// Live returns the number of boxes not yet taken or discarded.
func Live() int {
	mu.Lock()
	defer mu.Unlock()
	return len(cells)
}

func cast[T any](h Handle, v any) T {
	t, ok := v.(T)
	if !ok {
		var zero T
		panic(fmt.Sprintf("box: handle %#x holds %T, not %T", uintptr(h), v, zero))
	}
	return t
}
