// File: server/options.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package server

import "github.com/rs/zerolog"

// Option customizes server initialization.
type Option func(*EchoServer)

// WithLogger replaces the default stderr logger.
func WithLogger(log zerolog.Logger) Option {
	return func(s *EchoServer) {
		s.log = log
	}
}

// WithReadBufferSize overrides the per-connection receive buffer size.
func WithReadBufferSize(n int) Option {
	return func(s *EchoServer) {
		s.cfg.ReadBufferSize = n
	}
}
