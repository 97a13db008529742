//go:build linux
// +build linux

// File: uring/ring_linux_test.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package uring

import (
	"testing"
	"unsafe"
)

func TestABISizes(t *testing.T) {
	if sz := unsafe.Sizeof(sqe{}); sz != 64 {
		t.Errorf("sqe size = %d, want 64", sz)
	}
	if sz := unsafe.Sizeof(cqe{}); sz != 16 {
		t.Errorf("cqe size = %d, want 16", sz)
	}
	if sz := unsafe.Sizeof(uringParams{}); sz != 120 {
		t.Errorf("params size = %d, want 120", sz)
	}
}

func TestNewRejectsBadEntries(t *testing.T) {
	for _, entries := range []uint32{0, 3, 6, 100} {
		if _, err := New(entries); err != ErrBadEntries {
			t.Errorf("New(%d) error = %v, want ErrBadEntries", entries, err)
		}
	}
}

func TestNewAndClose(t *testing.T) {
	r, err := New(4)
	if err != nil {
		t.Fatalf("New(4) error: %v", err)
	}
	if r.SQEntries() != 4 {
		t.Errorf("SQEntries = %d, want 4", r.SQEntries())
	}
	if r.CQEntries() < 4 {
		t.Errorf("CQEntries = %d, want >= 4", r.CQEntries())
	}
	if err := r.Close(); err != nil {
		t.Errorf("Close error: %v", err)
	}
}

func TestPushReportsFullQueue(t *testing.T) {
	r, err := New(2)
	if err != nil {
		t.Fatalf("New(2) error: %v", err)
	}
	defer r.Close()

	// Pushes are userspace-only until submitted, so the fd is never touched.
	if !r.PushAccept(-1, 0) {
		t.Fatal("first push rejected on empty queue")
	}
	if !r.PushAccept(-1, 0) {
		t.Fatal("second push rejected with one slot left")
	}
	if r.PushAccept(-1, 0) {
		t.Error("third push accepted on a full 2-entry queue")
	}
}

func TestDrainEmptyCQ(t *testing.T) {
	r, err := New(2)
	if err != nil {
		t.Fatalf("New(2) error: %v", err)
	}
	defer r.Close()

	out := make([]CQEvent, r.CQEntries())
	if n := r.DrainCQ(out); n != 0 {
		t.Errorf("DrainCQ on idle ring = %d, want 0", n)
	}
}
