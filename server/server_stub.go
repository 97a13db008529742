//go:build !linux
// +build !linux

// File: server/server_stub.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Stub server for platforms without io_uring.

package server

import (
	"github.com/rs/zerolog"

	"github.com/momentics/hioload-echo/uring"
)

// EchoServer is a placeholder on non-Linux platforms; New always fails.
type EchoServer struct {
	cfg *Config
	log zerolog.Logger
}

// New reports io_uring as unavailable.
func New(cfg *Config, opts ...Option) (*EchoServer, error) {
	return nil, uring.ErrNotSupported
}

func (s *EchoServer) Port() int { return 0 }
func (s *EchoServer) Credits() uint32 { return 0 }
func (s *EchoServer) Tick() error { return uring.ErrNotSupported }
func (s *EchoServer) Close() error { return nil }
