// Package sender delivers a single snapshot to a collector. Each Send opens
// one TCP connection, samples the provider, writes one frame and closes the
// connection. There is no retry.
package sender

import (
	"context"
	"errors"
	"fmt"
	"net"

	"go.uber.org/zap"

	"github.com/Guliveer/syslens/internal/config"
	"github.com/Guliveer/syslens/internal/models"
	"github.com/Guliveer/syslens/internal/protocol"
	"github.com/Guliveer/syslens/internal/provider"
)

// Sender pushes one frame per call to a fixed destination.
type Sender struct {
	addr   string
	dialer net.Dialer
	logger *zap.Logger
}

// New creates a Sender targeting cfg's destination address.
func New(cfg config.AgentConfig, logger *zap.Logger) *Sender {
	return &Sender{
		addr:   cfg.DestinationAddr(),
		logger: logger.Named("sender"),
	}
}

// Send connects, samples p, and writes the encoded snapshot. A dial failure
// is returned as *ConnectionError and p is never called. The connection is
// closed exactly once on every path after a successful dial. The sampled
// snapshot is returned even when the write fails.
func (s *Sender) Send(ctx context.Context, p provider.Provider) (snap models.Snapshot, err error) {
	conn, err := s.dialer.DialContext(ctx, "tcp", s.addr)
	if err != nil {
		return models.Snapshot{}, &ConnectionError{Addr: s.addr, Err: err}
	}
	defer func() {
		if cerr := conn.Close(); cerr != nil {
			s.logger.Warn("Failed to close connection", zap.Error(cerr))
			if err == nil {
				err = fmt.Errorf("close connection: %w", cerr)
			}
		}
	}()

	s.logger.Debug("Connected", zap.String("addr", s.addr))

	snap = p.Snapshot(ctx)
	if missing := snap.Missing(); len(missing) > 0 {
		s.logger.Warn("Metrics not collected, sending sentinel values",
			zap.Strings("metrics", missing))
	}

	if err := protocol.Encode(conn, snap); err != nil {
		return snap, err
	}

	s.logger.Debug("Frame sent",
		zap.Float64("cpu_load", snap.CPULoad),
		zap.Int64("mem_available_mb", snap.MemAvailable),
		zap.Int64("processes_active", snap.ProcessesActive))
	return snap, nil
}

// ConnectionError indicates the outbound connection could not be
// established.
type ConnectionError struct {
	Addr string
	Err  error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("connect to %s: %v", e.Addr, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// IsConnectionError reports whether err is, or wraps, a ConnectionError.
func IsConnectionError(err error) bool {
	var ce *ConnectionError
	return errors.As(err, &ce)
}
