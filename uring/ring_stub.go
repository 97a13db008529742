//go:build !linux
// +build !linux

// File: uring/ring_stub.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Stub ring for platforms without io_uring.

package uring

// Ring is a placeholder on non-Linux platforms; New always fails.
type Ring struct{}

// New reports io_uring as unavailable.
func New(entries uint32) (*Ring, error) {
	return nil, ErrNotSupported
}

func (r *Ring) SQEntries() uint32 { return 0 }
func (r *Ring) CQEntries() uint32 { return 0 }

func (r *Ring) PushAccept(fd int, userData uint64) bool { return false }
func (r *Ring) PushPollIn(fd int, userData uint64) bool { return false }
func (r *Ring) PushRecv(fd int, buf []byte, userData uint64) bool { return false }
func (r *Ring) PushSend(fd int, buf []byte, userData uint64) bool { return false }

func (r *Ring) SubmitAndWait(waitNr uint32) error { return ErrNotSupported }
func (r *Ring) DrainCQ(out []CQEvent) int { return 0 }
func (r *Ring) Close() error { return nil }
