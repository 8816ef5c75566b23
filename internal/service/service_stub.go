//go:build !windows

// Package service runs the collector as a foreground process on platforms
// without a service control manager; init systems supervise it directly.
package service

import (
	"context"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
)

// CollectorService runs a blocking function until SIGINT or SIGTERM.
type CollectorService struct {
	logger *zap.Logger
	runFn  func(ctx context.Context) error
}

// New creates a service wrapper around runFn. runFn must return once its
// context is cancelled.
func New(logger *zap.Logger, runFn func(ctx context.Context) error) *CollectorService {
	return &CollectorService{
		logger: logger.Named("service"),
		runFn:  runFn,
	}
}

// IsWindowsService always returns false on non-Windows platforms.
func IsWindowsService() bool {
	return false
}

// Run executes runFn with a context cancelled on SIGINT or SIGTERM.
func (s *CollectorService) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return s.RunContext(ctx)
}

// RunContext executes runFn with ctx and logs the signal-driven stop.
func (s *CollectorService) RunContext(ctx context.Context) error {
	err := s.runFn(ctx)
	if ctx.Err() != nil {
		s.logger.Info("Received shutdown signal")
	}
	return err
}
