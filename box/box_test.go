package box

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type payload struct {
	name  string
	count int
}

func TestTakeReturnsBoxedValue(t *testing.T) {
	p := &payload{name: "ctx", count: 3}
	h := New(p)
	require.NotZero(t, h)

	got := Take[*payload](h)
	assert.Same(t, p, got)
}

func TestPeekKeepsOwnership(t *testing.T) {
	h := New(&payload{count: 1})

	Peek[*payload](h).count++
	Peek[*payload](h).count++

	got := Take[*payload](h)
	assert.Equal(t, 3, got.count)
}

func TestHandlesAreUnique(t *testing.T) {
	a := New(1)
	b := New(1)
	assert.NotEqual(t, a, b)
	Discard(a)
	Discard(b)
}

func TestDoubleTakePanics(t *testing.T) {
	h := New("once")
	Take[string](h)
	assert.Panics(t, func() { Take[string](h) })
	assert.Panics(t, func() { Peek[string](h) })
	assert.Panics(t, func() { Discard(h) })
}

func TestZeroHandlePanics(t *testing.T) {
	assert.Panics(t, func() { Take[int](0) })
}

func TestTypeMismatchPanics(t *testing.T) {
	h := New(42)
	assert.Panics(t, func() { Peek[string](h) })
	// a failed peek must not release the box
	assert.Equal(t, 42, Take[int](h))
}

func TestLiveTracksOutstandingBoxes(t *testing.T) {
	before := Live()
	h1 := New(1)
	h2 := New(2)
	assert.Equal(t, before+2, Live())

	Take[int](h1)
	Discard(h2)
	assert.Equal(t, before, Live())
}
