//go:build linux
// +build linux

// File: uring/uring_types.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// io_uring ABI constants and structures shared by the Linux ring binding.

package uring

import (
	"fmt"
	"unsafe"
)

const (
	IORING_OP_POLL_ADD = 6
	IORING_OP_ACCEPT   = 13
	IORING_OP_SEND     = 26
	IORING_OP_RECV     = 27

	IORING_ENTER_GETEVENTS = 1 << 0

	IORING_OFF_SQ_RING = 0
	IORING_OFF_CQ_RING = 0x8000000
	IORING_OFF_SQES    = 0x10000000

	// POLLIN for the poll32_events SQE field.
	POLLIN = 0x1

	sqeSize    = 64 // struct io_uring_sqe, kernel ABI
	cqeSize    = 16 // struct io_uring_cqe, kernel ABI
	paramsSize = 120
)

// sqringOffsets mirrors struct io_sqring_offsets.
type sqringOffsets struct {
	head        uint32
	tail        uint32
	ringMask    uint32
	ringEntries uint32
	flags       uint32
	dropped     uint32
	array       uint32
	resv1       uint32
	userAddr    uint64
}

// cqringOffsets mirrors struct io_cqring_offsets.
type cqringOffsets struct {
	head        uint32
	tail        uint32
	ringMask    uint32
	ringEntries uint32
	overflow    uint32
	cqes        uint32
	flags       uint32
	resv1       uint32
	userAddr    uint64
}

// uringParams mirrors struct io_uring_params, filled in by io_uring_setup.
type uringParams struct {
	sqEntries    uint32
	cqEntries    uint32
	flags        uint32
	sqThreadCPU  uint32
	sqThreadIdle uint32
	features     uint32
	wqFD         uint32
	resv         [3]uint32
	sqOff        sqringOffsets
	cqOff        cqringOffsets
}

// sqe mirrors struct io_uring_sqe. opFlags is the kernel's per-opcode union
// (rw_flags / poll32_events / msg_flags / accept_flags).
type sqe struct {
	opcode      uint8
	flags       uint8
	ioprio      uint16
	fd          int32
	off         uint64
	addr        uint64
	len         uint32
	opFlags     uint32
	userData    uint64
	bufIndex    uint16
	personality uint16
	spliceFDIn  int32
	addr3       uint64
	_pad        uint64
}

// cqe mirrors struct io_uring_cqe.
type cqe struct {
	userData uint64
	res      int32
	flags    uint32
}

func init() {
	if sz := unsafe.Sizeof(sqe{}); sz != sqeSize {
		panic(fmt.Sprintf("io_uring SQE size mismatch: expected %d, got %d", sqeSize, sz))
	}
	if sz := unsafe.Sizeof(cqe{}); sz != cqeSize {
		panic(fmt.Sprintf("io_uring CQE size mismatch: expected %d, got %d", cqeSize, sz))
	}
	if sz := unsafe.Sizeof(uringParams{}); sz != paramsSize {
		panic(fmt.Sprintf("io_uring params size mismatch: expected %d, got %d", paramsSize, sz))
	}
}
