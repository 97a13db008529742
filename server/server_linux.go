//go:build linux
// +build linux

// File: server/server_linux.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Single-step echo server core: accept refill, blocking submit, completion
// dispatch over the per-handle operation state.

package server

import (
	"errors"
	"fmt"
	"os"

	"github.com/eapache/queue"
	"github.com/rs/zerolog"
	"golang.org/x/sys/unix"

	"github.com/momentics/hioload-echo/slab"
	"github.com/momentics/hioload-echo/uring"
)

// acceptToken is the shared user-data tag for every accept submission. Slot
// 0 of the slab is reserved for it at construction and never freed. Accept
// completions carry no per-instance state (the new descriptor arrives in the
// completion result), so one sentinel serves any number of outstanding
// accepts.
const acceptToken = 0

// pendingOp is a per-connection submission that hit a full submission queue,
// parked until the next Tick drains completions and frees SQ slots.
type pendingOp struct {
	kind     opKind
	fd       int
	buf      []byte
	userData uint64
}

// EchoServer echoes every byte received on accepted connections. It owns a
// listening socket, one io_uring instance sized at twice the configured
// capacity, and a slab correlating completion tags to connection state.
// All state is confined to the goroutine calling Tick; there is no locking.
type EchoServer struct {
	cfg      *Config
	log      zerolog.Logger
	ring     *uring.Ring
	ops      *slab.Slab[opState]
	backlog  *queue.Queue
	cq       []uring.CQEvent
	listenFD int
	port     int

	// credits counts accept submissions not yet enqueued on the ring.
	// Decremented per successful accept push, incremented per processed
	// accept completion, bounded by cfg.Capacity.
	credits uint32
}

// New binds the listening socket and creates the ring. Setup failures are
// fatal and propagate to the caller.
func New(cfg *Config, opts ...Option) (*EchoServer, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	ring, err := uring.New(cfg.Capacity * 2)
	if err != nil {
		return nil, fmt.Errorf("ring create: %w", err)
	}

	listenFD, port, err := newListener(cfg.Host, cfg.Port)
	if err != nil {
		ring.Close()
		return nil, err
	}

	s := &EchoServer{
		cfg:      cfg,
		log:      zerolog.New(os.Stderr).With().Timestamp().Int("port", port).Logger(),
		ring:     ring,
		ops:      slab.New[opState](int(cfg.Capacity) * 2),
		backlog:  queue.New(),
		cq:       make([]uring.CQEvent, ring.CQEntries()),
		listenFD: listenFD,
		port:     port,
		credits:  cfg.Capacity,
	}
	s.ops.Insert(opState{kind: opAccept}) // reserves slot acceptToken
	for _, o := range opts {
		o(s)
	}
	return s, nil
}

// Port returns the bound listening port.
func (s *EchoServer) Port() int { return s.port }

// Credits returns the number of accept submissions not yet enqueued, i.e.
// how many connections the server is entitled to accept but currently
// is not.
func (s *EchoServer) Credits() uint32 { return s.credits }

// Tick performs one iteration: refill accepts, submit and block until at
// least one completion is ready, then drain and dispatch every available
// completion in arrival order. Transient submission backpressure (EBUSY) is
// swallowed; any other submission error is fatal and returned.
func (s *EchoServer) Tick() error {
	s.flushBacklog()
	s.pushAccepts()

	if err := s.ring.SubmitAndWait(1); err != nil {
		if !errors.Is(err, uring.ErrBusy) {
			return fmt.Errorf("submit: %w", err)
		}
		// Busy: queued entries stay pending; drain what already completed.
	}

	for {
		n := s.ring.DrainCQ(s.cq)
		if n == 0 {
			return nil
		}
		for _, ev := range s.cq[:n] {
			s.handle(ev)
		}
	}
}

// pushAccepts tops up accept submissions while credit remains. A full
// submission queue ends the loop silently; pending connections wait in the
// kernel backlog and the retained credits retry on the next Tick.
func (s *EchoServer) pushAccepts() {
	for s.credits > 0 {
		if !s.ring.PushAccept(s.listenFD, acceptToken) {
			break
		}
		s.credits--
	}
}

// handle advances one connection by one completed operation.
func (s *EchoServer) handle(ev uring.CQEvent) {
	token := int(ev.UserData)

	if ev.Res < 0 {
		s.fail(token, unix.Errno(-ev.Res))
		return
	}

	st, ok := s.ops.Get(token)
	if !ok {
		s.log.Warn().Int("token", token).Msg("completion for unregistered handle")
		return
	}

	switch st.kind {
	case opAccept:
		connFD := int(ev.Res)
		conn := s.ops.Insert(opState{kind: opPoll, fd: connFD})
		s.submit(pendingOp{kind: opPoll, fd: connFD, userData: uint64(conn)})
		s.credits++

	case opPoll:
		st.kind = opRead
		st.buf = make([]byte, s.cfg.ReadBufferSize)
		s.submit(pendingOp{kind: opRead, fd: st.fd, buf: st.buf, userData: ev.UserData})

	case opRead:
		if ev.Res == 0 {
			s.log.Debug().Int("token", token).Int("fd", st.fd).Msg("peer closed connection")
			unix.Close(st.fd)
			s.ops.Free(token)
			return
		}
		st.kind = opWrite
		st.off = 0
		st.n = int(ev.Res)
		s.submit(pendingOp{kind: opWrite, fd: st.fd, buf: st.buf[:st.n], userData: ev.UserData})

	case opWrite:
		st.off += int(ev.Res)
		if st.off >= st.n {
			st.kind = opPoll
			st.buf = nil
			s.submit(pendingOp{kind: opPoll, fd: st.fd, userData: ev.UserData})
			return
		}
		// Partial send: resume from the unsent remainder.
		s.submit(pendingOp{kind: opWrite, fd: st.fd, buf: st.buf[st.off:st.n], userData: ev.UserData})
	}
}

// fail tears down the connection behind token after a negative completion
// result. Connection resets are an ordinary disconnect and not worth a
// diagnostic. An accept failure has no descriptor and no per-connection
// handle; the sentinel stays registered.
func (s *EchoServer) fail(token int, errno unix.Errno) {
	if errno != unix.ECONNRESET {
		s.log.Warn().Int("token", token).Err(errno).Msg("operation failed")
	}

	if token == acceptToken {
		return
	}
	st, ok := s.ops.Get(token)
	if !ok {
		s.log.Warn().Int("token", token).Msg("error completion for unregistered handle")
		return
	}
	unix.Close(st.fd)
	s.ops.Free(token)
}

// submit pushes a per-connection operation, parking it on the backlog when
// the submission queue is full.
func (s *EchoServer) submit(op pendingOp) {
	if !s.pushOp(op) {
		s.backlog.Add(op)
	}
}

func (s *EchoServer) pushOp(op pendingOp) bool {
	switch op.kind {
	case opRead:
		return s.ring.PushRecv(op.fd, op.buf, op.userData)
	case opWrite:
		return s.ring.PushSend(op.fd, op.buf, op.userData)
	default:
		return s.ring.PushPollIn(op.fd, op.userData)
	}
}

// flushBacklog replays parked submissions in FIFO order until the backlog
// empties or the submission queue fills again.
func (s *EchoServer) flushBacklog() {
	for s.backlog.Length() > 0 {
		op := s.backlog.Peek().(pendingOp)
		if !s.pushOp(op) {
			return
		}
		s.backlog.Remove()
	}
}

// Close releases the ring and the listening socket. Descriptors of live
// connections are abandoned; Close is meant for process teardown.
func (s *EchoServer) Close() error {
	err := s.ring.Close()
	if cerr := unix.Close(s.listenFD); err == nil {
		err = cerr
	}
	return err
}
