// File: slab/slab.go
// Package slab implements index-stable storage with freelist reuse.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package slab

import "math/bits"

const wordBits = 64

// Slab is a growable arena tracked by an occupancy bitmap. Freed slots are
// reused by the next Insert before the backing array grows, so an index
// handed out once stays valid for the lifetime of the entry it names.
//
// Slab is not safe for concurrent use; every instance is owned by exactly
// one event loop.
type Slab[T any] struct {
	items  []T
	bitmap []uint64
}

// New allocates a slab pre-sized for capacity entries. The slab still grows
// beyond capacity on demand; capacity only sizes the initial allocations.
func New[T any](capacity int) *Slab[T] {
	return &Slab[T]{
		items:  make([]T, 0, capacity),
		bitmap: make([]uint64, capacity/wordBits+1),
	}
}

// Insert stores v and returns its index. The lowest freed index is reused
// first; only when no freed slot exists does the backing array grow.
func (s *Slab[T]) Insert(v T) int {
	idx, ok := s.firstFree()
	if ok {
		s.items[idx] = v
	} else {
		idx = len(s.items)
		s.items = append(s.items, v)
		if idx == len(s.bitmap)*wordBits {
			s.bitmap = append(s.bitmap, 0)
		}
	}
	word, bit := idx/wordBits, idx%wordBits
	s.bitmap[word] |= 1 << bit
	return idx
}

// Get returns a pointer to the entry at idx, or ok=false if the slot has
// been freed and not reinserted. Indexing past the allocated length is a
// programming error and panics.
func (s *Slab[T]) Get(idx int) (*T, bool) {
	_ = s.items[idx]
	word, bit := idx/wordBits, idx%wordBits
	if s.bitmap[word]&(1<<bit) == 0 {
		return nil, false
	}
	return &s.items[idx], true
}

// Free clears the occupancy bit for idx. The stored value is not wiped; the
// slot becomes eligible for the next Insert. Freeing an already-free index
// is undefined and must not happen in correct usage.
func (s *Slab[T]) Free(idx int) {
	word, bit := idx/wordBits, idx%wordBits
	s.bitmap[word] &^= 1 << bit
}

// Len returns the high-water mark of the backing array, occupied or not.
func (s *Slab[T]) Len() int {
	return len(s.items)
}

// firstFree scans the bitmap word-by-word for the lowest clear bit. A clear
// bit past the end of the backing array is not a real slot; since bit
// indices only increase across words, the scan stops there and reports that
// the array must grow instead.
func (s *Slab[T]) firstFree() (int, bool) {
	for w, bm := range s.bitmap {
		if bm == ^uint64(0) {
			continue
		}
		idx := w*wordBits + bits.TrailingZeros64(^bm)
		if idx < len(s.items) {
			return idx, true
		}
		return 0, false
	}
	return 0, false
}
