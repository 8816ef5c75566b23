// Package server implements the collector service: a single accept loop
// that hands every connection to its own goroutine. A handler reads one
// frame, decodes it, and writes it to the shared display sink.
//
// Per connection: Accepted → Reading → Decoded → Displayed → Closed, or
// Reading → Failed(ShortRead) → Closed. Handlers are not tracked; the loop
// never waits for them.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/Guliveer/syslens/internal/config"
	"github.com/Guliveer/syslens/internal/display"
	"github.com/Guliveer/syslens/internal/protocol"
)

const (
	minAcceptBackoff = 5 * time.Millisecond
	maxAcceptBackoff = time.Second
)

// Server accepts agent connections and displays their snapshots.
type Server struct {
	cfg     config.CollectorConfig
	sink    *display.Sink
	metrics *Metrics
	logger  *zap.Logger

	// slots bounds concurrent handlers; nil when unbounded.
	slots *semaphore.Weighted
}

// New creates a collector server. A nil metrics gets a fresh private set.
func New(cfg config.CollectorConfig, sink *display.Sink, metrics *Metrics, logger *zap.Logger) *Server {
	if metrics == nil {
		metrics = NewMetrics()
	}
	s := &Server{
		cfg:     cfg,
		sink:    sink,
		metrics: metrics,
		logger:  logger.Named("server"),
	}
	if cfg.MaxConnections > 0 {
		s.slots = semaphore.NewWeighted(int64(cfg.MaxConnections))
	}
	return s
}

// Metrics returns the server's metrics.
func (s *Server) Metrics() *Metrics {
	return s.metrics
}

// ListenAndServe binds the configured address and runs Serve.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := Listen(s.cfg)
	if err != nil {
		return err
	}
	s.logger.Info("Server listening, waiting for clients",
		zap.String("addr", ln.Addr().String()),
		zap.Int("backlog", s.cfg.Backlog))
	return s.Serve(ctx, ln)
}

// Serve runs the accept loop on ln until ctx is cancelled, at which point
// ln is closed and Serve returns nil. In-flight handlers are left to finish
// on their own. Failed accepts are logged and retried after a short
// backoff; they never stop the loop.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	defer ln.Close()
	stop := context.AfterFunc(ctx, func() { ln.Close() })
	defer stop()

	var backoff time.Duration
	for {
		if s.slots != nil {
			if err := s.slots.Acquire(ctx, 1); err != nil {
				return nil
			}
		}

		conn, err := ln.Accept()
		if err != nil {
			s.release()
			if ctx.Err() != nil {
				return nil
			}
			if errors.Is(err, net.ErrClosed) {
				return fmt.Errorf("accept: %w", err)
			}

			s.metrics.acceptErrors.Inc()
			backoff = nextBackoff(backoff)
			s.logger.Error("Accept failed",
				zap.Error(err),
				zap.Duration("retry_in", backoff))

			select {
			case <-ctx.Done():
				return nil
			case <-time.After(backoff):
			}
			continue
		}
		backoff = 0

		s.metrics.accepted.Inc()
		go s.handle(conn)
	}
}

// handle owns conn for its whole lifetime and closes it on every path.
func (s *Server) handle(conn net.Conn) {
	logger := s.logger.With(
		zap.String("conn", uuid.NewString()),
		zap.String("remote", conn.RemoteAddr().String()))

	s.metrics.activeHandlers.Inc()
	defer func() {
		if err := conn.Close(); err != nil {
			logger.Debug("Close failed", zap.Error(err))
		}
		s.metrics.activeHandlers.Dec()
		s.release()
	}()

	if timeout := s.cfg.ReadTimeout.Duration; timeout > 0 {
		if err := conn.SetReadDeadline(time.Now().Add(timeout)); err != nil {
			logger.Warn("Failed to set read deadline", zap.Error(err))
		}
	}

	snap, err := protocol.Decode(conn)
	if err != nil {
		if errors.Is(err, protocol.ErrShortRead) {
			s.metrics.shortReads.Inc()
			logger.Warn("Peer closed before a full frame", zap.Error(err))
		} else {
			s.metrics.readErrors.Inc()
			logger.Error("Failed to read frame", zap.Error(err))
		}
		return
	}
	s.metrics.decoded.Inc()

	if err := s.sink.Display(snap); err != nil {
		s.metrics.displayErrors.Inc()
		logger.Error("Failed to display snapshot", zap.Error(err))
		return
	}
	logger.Debug("Snapshot displayed")
}

func (s *Server) release() {
	if s.slots != nil {
		s.slots.Release(1)
	}
}

// nextBackoff doubles the previous delay within [minAcceptBackoff, maxAcceptBackoff].
func nextBackoff(prev time.Duration) time.Duration {
	if prev == 0 {
		return minAcceptBackoff
	}
	if next := prev * 2; next < maxAcceptBackoff {
		return next
	}
	return maxAcceptBackoff
}
