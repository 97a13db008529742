// File: cmd/echoserver/main.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Echo server driver. Spawns one fully isolated server instance per
// consecutive listening port; instances share no ring, slab or descriptor
// state, only the console logger.

package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/momentics/hioload-echo/server"
)

func main() {
	port := flag.Int("port", 6969, "base TCP listen port")
	instances := flag.Int("instances", 2, "independent server instances on consecutive ports")
	capacity := flag.Uint("capacity", 2, "outstanding accepts per instance (power of two)")
	bufSize := flag.Int("bufsize", 4096, "per-connection receive buffer size")
	flag.Parse()

	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	var g errgroup.Group
	for i := 0; i < *instances; i++ {
		p := *port + i
		g.Go(func() error {
			srv, err := server.New(&server.Config{
				Host:           "0.0.0.0",
				Port:           p,
				Capacity:       uint32(*capacity),
				ReadBufferSize: *bufSize,
			}, server.WithLogger(log.With().Int("port", p).Logger()))
			if err != nil {
				return fmt.Errorf("instance on port %d: %w", p, err)
			}
			defer srv.Close()

			log.Info().Int("port", p).Msg("echo server listening")
			for {
				if err := srv.Tick(); err != nil {
					return fmt.Errorf("instance on port %d: %w", p, err)
				}
			}
		})
	}
	if err := g.Wait(); err != nil {
		log.Fatal().Err(err).Msg("server terminated")
	}
}
