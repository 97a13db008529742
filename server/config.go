// File: server/config.go
// Package server implements a single-threaded TCP echo server driven by an
// io_uring completion ring.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package server

import "errors"

var (
	// ErrBadCapacity indicates a connection capacity that is zero or not a
	// power of two. Capacity sizes the submission ring at 2x its value.
	ErrBadCapacity = errors.New("capacity must be a power of two")
)

// Config holds all server-side configuration parameters.
type Config struct {
	Host           string // IPv4 bind address
	Port           int    // TCP listen port; 0 picks an ephemeral port
	Capacity       uint32 // max concurrently outstanding accepts, power of two
	ReadBufferSize int    // size of each per-connection receive buffer
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Host:           "0.0.0.0",
		Port:           6969,
		Capacity:       2,
		ReadBufferSize: 4096,
	}
}

func (c *Config) validate() error {
	if c.Capacity == 0 || c.Capacity&(c.Capacity-1) != 0 {
		return ErrBadCapacity
	}
	return nil
}
