//go:build linux
// +build linux

// File: server/listen_linux.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Raw listening socket setup for the io_uring accept path.

package server

import (
	"fmt"
	"net"

	"golang.org/x/sys/unix"
)

// newListener binds a TCP listening socket and returns its descriptor and
// the actual bound port (meaningful when cfg asks for port 0).
func newListener(host string, port int) (int, int, error) {
	fd, err := unix.Socket(unix.AF_INET, unix.SOCK_STREAM, 0)
	if err != nil {
		return -1, 0, fmt.Errorf("socket create: %w", err)
	}
	if err := unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEADDR, 1); err != nil {
		unix.Close(fd)
		return -1, 0, fmt.Errorf("setsockopt SO_REUSEADDR: %w", err)
	}

	sa := &unix.SockaddrInet4{Port: port}
	if ip := net.ParseIP(host); ip != nil {
		copy(sa.Addr[:], ip.To4())
	}
	if err := unix.Bind(fd, sa); err != nil {
		unix.Close(fd)
		return -1, 0, fmt.Errorf("bind %s:%d: %w", host, port, err)
	}
	if err := unix.Listen(fd, unix.SOMAXCONN); err != nil {
		unix.Close(fd)
		return -1, 0, fmt.Errorf("listen: %w", err)
	}

	bound, err := unix.Getsockname(fd)
	if err != nil {
		unix.Close(fd)
		return -1, 0, fmt.Errorf("getsockname: %w", err)
	}
	return fd, bound.(*unix.SockaddrInet4).Port, nil
}
