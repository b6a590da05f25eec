// Package tcp accepts line-protocol clients over TCP.
package tcp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// ConnHandler serves one accepted stream and closes it. session.Handler satisfies it.
type ConnHandler interface {
	Serve(ctx context.Context, conn io.ReadWriteCloser, remote string)
}

// ConnHandlerFunc adapts a function to ConnHandler.
type ConnHandlerFunc func(ctx context.Context, conn io.ReadWriteCloser, remote string)

// Serve calls f.
func (f ConnHandlerFunc) Serve(ctx context.Context, conn io.ReadWriteCloser, remote string) {
	f(ctx, conn, remote)
}

// Server runs an accept loop and hands every connection to its own goroutine.
type Server struct {
	addr    string
	handler ConnHandler
	log     *zerolog.Logger

	mu sync.Mutex
	ln net.Listener
	wg sync.WaitGroup
}

// NewServer builds a server for addr.
func NewServer(addr string, handler ConnHandler, logger *zerolog.Logger) *Server {
	return &Server{addr: addr, handler: handler, log: logger}
}

// ListenAndServe listens on the configured address and serves until ctx is done.
func (s *Server) ListenAndServe(ctx context.Context) error {
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", s.addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts on ln until ctx is done or ln is closed. It closes ln,
// cancels the context handed to every connection and waits for their
// goroutines before returning.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.mu.Lock()
	s.ln = ln
	s.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	stop := context.AfterFunc(ctx, func() { _ = ln.Close() })
	defer stop()
	defer s.wg.Wait()
	defer cancel()
	defer ln.Close()

	s.log.Info().Str("addr", ln.Addr().String()).Msg("tcp listener started")

	var backoff time.Duration
	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				s.log.Info().Msg("tcp listener stopped")
				return nil
			}

			// Accept failures such as EMFILE are usually transient.
			backoff = nextBackoff(backoff)
			s.log.Warn().Err(err).Dur("retry_in", backoff).Msg("accept error")
			select {
			case <-time.After(backoff):
				continue
			case <-ctx.Done():
				return nil
			}
		}
		backoff = 0

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.handler.Serve(ctx, conn, conn.RemoteAddr().String())
		}()
	}
}

// Addr returns the bound address once serving has started.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ln == nil {
		return nil
	}
	return s.ln.Addr()
}

func nextBackoff(d time.Duration) time.Duration {
	if d == 0 {
		return 5 * time.Millisecond
	}
	d *= 2
	if d > time.Second {
		d = time.Second
	}
	return d
}
