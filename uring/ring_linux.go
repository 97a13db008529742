//go:build linux
// +build linux

// File: uring/ring_linux.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Linux io_uring ring: setup, submission-side pushes, blocking
// submit-and-wait, completion draining.

package uring

import (
	"fmt"
	"sync/atomic"
	"unsafe"

	"golang.org/x/sys/unix"
)

// Ring owns one io_uring instance: the ring fd, the mmapped SQ/CQ ring
// metadata, and the SQE array. All methods must be called from a single
// goroutine; the kernel is the only other party touching the shared memory,
// which is why the head/tail exchanges below are atomic.
type Ring struct {
	fd int

	sqHead    *uint32
	sqTail    *uint32
	sqMask    uint32
	sqEntries uint32
	sqArray   []uint32
	sqes      []sqe

	cqHead    *uint32
	cqTail    *uint32
	cqMask    uint32
	cqEntries uint32
	cqes      []cqe

	sqRing []byte
	cqRing []byte
	sqeMem []byte

	// pending counts SQEs queued since the last successful submit.
	pending uint32
}

// New creates an io_uring instance with the given number of SQ entries.
// entries must be a power of two; the kernel sizes the CQ at twice that.
func New(entries uint32) (*Ring, error) {
	if entries == 0 || entries&(entries-1) != 0 {
		return nil, ErrBadEntries
	}

	var params uringParams
	fd, _, errno := unix.Syscall(unix.SYS_IO_URING_SETUP,
		uintptr(entries), uintptr(unsafe.Pointer(&params)), 0)
	if errno != 0 {
		return nil, fmt.Errorf("io_uring_setup: %w", errno)
	}

	r := &Ring{
		fd:        int(fd),
		sqEntries: params.sqEntries,
		cqEntries: params.cqEntries,
	}

	sqRingSize := int(params.sqOff.array) + int(params.sqEntries)*4
	cqRingSize := int(params.cqOff.cqes) + int(params.cqEntries)*cqeSize
	sqeMemSize := int(params.sqEntries) * sqeSize

	var err error
	r.sqRing, err = unix.Mmap(r.fd, IORING_OFF_SQ_RING, sqRingSize,
		unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED|unix.MAP_POPULATE)
	if err != nil {
		unix.Close(r.fd)
		return nil, fmt.Errorf("mmap SQ ring: %w", err)
	}
	r.cqRing, err = unix.Mmap(r.fd, IORING_OFF_CQ_RING, cqRingSize,
		unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED|unix.MAP_POPULATE)
	if err != nil {
		unix.Munmap(r.sqRing)
		unix.Close(r.fd)
		return nil, fmt.Errorf("mmap CQ ring: %w", err)
	}
	r.sqeMem, err = unix.Mmap(r.fd, IORING_OFF_SQES, sqeMemSize,
		unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED|unix.MAP_POPULATE)
	if err != nil {
		unix.Munmap(r.cqRing)
		unix.Munmap(r.sqRing)
		unix.Close(r.fd)
		return nil, fmt.Errorf("mmap SQE array: %w", err)
	}

	r.sqHead = (*uint32)(unsafe.Pointer(&r.sqRing[params.sqOff.head]))
	r.sqTail = (*uint32)(unsafe.Pointer(&r.sqRing[params.sqOff.tail]))
	r.sqMask = *(*uint32)(unsafe.Pointer(&r.sqRing[params.sqOff.ringMask]))
	r.sqArray = unsafe.Slice(
		(*uint32)(unsafe.Pointer(&r.sqRing[params.sqOff.array])), params.sqEntries)
	r.sqes = unsafe.Slice(
		(*sqe)(unsafe.Pointer(&r.sqeMem[0])), params.sqEntries)

	r.cqHead = (*uint32)(unsafe.Pointer(&r.cqRing[params.cqOff.head]))
	r.cqTail = (*uint32)(unsafe.Pointer(&r.cqRing[params.cqOff.tail]))
	r.cqMask = *(*uint32)(unsafe.Pointer(&r.cqRing[params.cqOff.ringMask]))
	r.cqes = unsafe.Slice(
		(*cqe)(unsafe.Pointer(&r.cqRing[params.cqOff.cqes])), params.cqEntries)

	return r, nil
}

// SQEntries returns the submission queue depth.
func (r *Ring) SQEntries() uint32 { return r.sqEntries }

// CQEntries returns the completion queue depth, the natural size for a
// DrainCQ buffer.
func (r *Ring) CQEntries() uint32 { return r.cqEntries }

// push writes one SQE at the ring tail. Returns false when the submission
// queue is full; the caller decides whether the operation is dropped,
// backlogged, or retried via credits.
func (r *Ring) push(e *sqe) bool {
	head := atomic.LoadUint32(r.sqHead)
	tail := *r.sqTail
	if tail-head >= r.sqEntries {
		return false
	}
	idx := tail & r.sqMask
	r.sqes[idx] = *e
	r.sqArray[idx] = idx
	atomic.StoreUint32(r.sqTail, tail+1)
	r.pending++
	return true
}

// PushAccept enqueues an accept on the listening descriptor fd. The peer
// address is not collected; the completion result is the connected
// descriptor.
func (r *Ring) PushAccept(fd int, userData uint64) bool {
	return r.push(&sqe{
		opcode:   IORING_OP_ACCEPT,
		fd:       int32(fd),
		userData: userData,
	})
}

// PushPollIn enqueues a one-shot readability poll on fd.
func (r *Ring) PushPollIn(fd int, userData uint64) bool {
	return r.push(&sqe{
		opcode:   IORING_OP_POLL_ADD,
		fd:       int32(fd),
		opFlags:  POLLIN,
		userData: userData,
	})
}

// PushRecv enqueues a receive on fd into buf. The caller must keep buf
// reachable until the completion for userData is reaped.
func (r *Ring) PushRecv(fd int, buf []byte, userData uint64) bool {
	return r.push(&sqe{
		opcode:   IORING_OP_RECV,
		fd:       int32(fd),
		addr:     uint64(uintptr(unsafe.Pointer(&buf[0]))),
		len:      uint32(len(buf)),
		userData: userData,
	})
}

// PushSend enqueues a send of buf on fd. The caller must keep buf reachable
// until the completion for userData is reaped.
func (r *Ring) PushSend(fd int, buf []byte, userData uint64) bool {
	return r.push(&sqe{
		opcode:   IORING_OP_SEND,
		fd:       int32(fd),
		addr:     uint64(uintptr(unsafe.Pointer(&buf[0]))),
		len:      uint32(len(buf)),
		userData: userData,
	})
}

// SubmitAndWait publishes all queued SQEs and blocks until at least waitNr
// completions are available. EBUSY and EAGAIN surface as ErrBusy: queued
// SQEs stay pending and are resubmitted on the next call once completions
// have been reaped. EINTR is retried in place.
func (r *Ring) SubmitAndWait(waitNr uint32) error {
	for {
		consumed, _, errno := unix.Syscall6(unix.SYS_IO_URING_ENTER,
			uintptr(r.fd), uintptr(r.pending), uintptr(waitNr),
			IORING_ENTER_GETEVENTS, 0, 0)
		switch errno {
		case 0:
			r.pending -= uint32(consumed)
			return nil
		case unix.EINTR:
			continue
		case unix.EBUSY, unix.EAGAIN:
			return ErrBusy
		default:
			return fmt.Errorf("io_uring_enter: %w", errno)
		}
	}
}

// DrainCQ copies available completions into out in arrival order, advances
// the CQ head past them, and returns the count. A return of zero means the
// completion queue is empty.
func (r *Ring) DrainCQ(out []CQEvent) int {
	head := *r.cqHead
	tail := atomic.LoadUint32(r.cqTail)
	n := 0
	for head != tail && n < len(out) {
		c := &r.cqes[head&r.cqMask]
		out[n] = CQEvent{UserData: c.userData, Res: c.res, Flags: c.flags}
		head++
		n++
	}
	if n > 0 {
		atomic.StoreUint32(r.cqHead, head)
	}
	return n
}

// Close unmaps the ring memory and closes the ring descriptor. In-flight
// operations are abandoned.
func (r *Ring) Close() error {
	if r.sqeMem != nil {
		unix.Munmap(r.sqeMem)
		r.sqeMem = nil
	}
	if r.cqRing != nil {
		unix.Munmap(r.cqRing)
		r.cqRing = nil
	}
	if r.sqRing != nil {
		unix.Munmap(r.sqRing)
		r.sqRing = nil
	}
	return unix.Close(r.fd)
}
