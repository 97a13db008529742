// File: server/optype.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Per-handle operation state for the echo connection lifecycle.

package server

// opKind tags the in-flight operation a handle is waiting on.
type opKind uint8

const (
	opAccept opKind = iota
	opPoll
	opRead
	opWrite
)

func (k opKind) String() string {
	switch k {
	case opAccept:
		return "accept"
	case opPoll:
		return "poll"
	case opRead:
		return "read"
	case opWrite:
		return "write"
	default:
		return "unknown"
	}
}

// opState is the variant stored per handle in the slab. One connection is
// exactly one handle whose state mutates in place through
// poll -> read -> write -> poll until EOF or error tears it down.
//
//	opAccept: no per-instance data; shared sentinel handle.
//	opPoll:   fd waiting to become readable.
//	opRead:   receive in flight on fd into buf.
//	opWrite:  send in flight on fd; buf[off:n] still unacknowledged.
type opState struct {
	kind opKind
	fd   int
	buf  []byte
	off  int
	n    int
}
