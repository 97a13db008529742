// File: uring/uring.go
// Package uring is a minimal io_uring binding for single-threaded
// completion-based network I/O.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// The binding exposes the raw submission/completion protocol: operations are
// enqueued on the submission queue tagged with an opaque user-data value,
// published to the kernel with a single blocking submit-and-wait call, and
// reaped from the completion queue in arrival order. Correlating a completed
// result back to application state via its user-data tag is the caller's job.

package uring

import "errors"

var (
	// ErrBusy reports transient submission backpressure (EBUSY/EAGAIN from
	// io_uring_enter). Completions should be drained and the submission
	// retried on the next cycle.
	ErrBusy = errors.New("io_uring submission busy")

	// ErrNotSupported indicates io_uring is unavailable on this platform.
	ErrNotSupported = errors.New("io_uring not supported on this platform")

	// ErrBadEntries indicates a ring size that is zero or not a power of two.
	ErrBadEntries = errors.New("ring entries must be a power of two")
)

// CQEvent is one reaped completion: the user-data tag of the submission it
// answers, and the operation's result (non-negative count, or a negated
// errno).
type CQEvent struct {
	UserData uint64
	Res      int32
	Flags    uint32
}
