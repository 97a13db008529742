// File: slab/slab_test.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package slab_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/momentics/hioload-echo/slab"
)

func TestInsertGet(t *testing.T) {
	s := slab.New[string](4)

	a := s.Insert("a")
	b := s.Insert("b")
	require.NotEqual(t, a, b)

	va, ok := s.Get(a)
	require.True(t, ok)
	assert.Equal(t, "a", *va)

	vb, ok := s.Get(b)
	require.True(t, ok)
	assert.Equal(t, "b", *vb)
}

func TestGetReturnsPointerForMutation(t *testing.T) {
	s := slab.New[int](2)
	idx := s.Insert(1)

	v, ok := s.Get(idx)
	require.True(t, ok)
	*v = 42

	v2, ok := s.Get(idx)
	require.True(t, ok)
	assert.Equal(t, 42, *v2)
}

func TestReuseBeforeGrow(t *testing.T) {
	s := slab.New[int](8)

	var idxs []int
	for i := 0; i < 8; i++ {
		idxs = append(idxs, s.Insert(i))
	}
	highWater := s.Len()

	// Free an arbitrary subset.
	freed := map[int]bool{idxs[1]: true, idxs[4]: true, idxs[6]: true}
	for idx := range freed {
		s.Free(idx)
	}

	// The next three inserts must land exactly on the freed indices,
	// before any index past the original high-water mark is allocated.
	reused := map[int]bool{}
	for i := 0; i < 3; i++ {
		idx := s.Insert(100 + i)
		assert.Less(t, idx, highWater)
		reused[idx] = true
	}
	assert.Equal(t, freed, reused)
	assert.Equal(t, highWater, s.Len())

	// Table is full again; the next insert grows.
	assert.Equal(t, highWater, s.Insert(200))
}

func TestLowestFreedIndexFirst(t *testing.T) {
	s := slab.New[int](4)
	for i := 0; i < 4; i++ {
		s.Insert(i)
	}
	s.Free(3)
	s.Free(0)

	assert.Equal(t, 0, s.Insert(10))
	assert.Equal(t, 3, s.Insert(11))
}

func TestOccupancy(t *testing.T) {
	s := slab.New[int](4)
	idx := s.Insert(7)

	_, ok := s.Get(idx)
	assert.True(t, ok)

	s.Free(idx)
	_, ok = s.Get(idx)
	assert.False(t, ok, "freed slot must read as absent")

	idx2 := s.Insert(8)
	require.Equal(t, idx, idx2)
	v, ok := s.Get(idx2)
	require.True(t, ok)
	assert.Equal(t, 8, *v)
}

func TestOutOfRangePanics(t *testing.T) {
	s := slab.New[int](4)
	s.Insert(1)

	assert.Panics(t, func() { s.Get(99) })
}

func TestGrowthAcrossWordBoundary(t *testing.T) {
	s := slab.New[int](1)

	// Push well past one 64-bit bitmap word.
	for i := 0; i < 130; i++ {
		require.Equal(t, i, s.Insert(i))
	}
	for i := 0; i < 130; i++ {
		v, ok := s.Get(i)
		require.True(t, ok)
		assert.Equal(t, i, *v)
	}

	s.Free(64) // first bit of the second word
	assert.Equal(t, 64, s.Insert(-1))
}
