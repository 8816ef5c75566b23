//go:build windows

// Package service runs the collector either under the Windows service
// control manager or, from a terminal, as a foreground process.
package service

import (
	"context"
	"os"
	"os/signal"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sys/windows/svc"
)

const (
	serviceName = "SyslensCollector"
	stopTimeout = 5 * time.Second
)

// CollectorService adapts a blocking run function to the SCM lifecycle.
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

// IsWindowsService checks if the process is running as a Windows service.
func IsWindowsService() bool {
	isService, err := svc.IsWindowsService()
	if err != nil {
		return false
	}
	return isService
}

// Run enters the SCM control loop when started by the SCM, otherwise runs
// in the foreground until interrupted.
func (s *CollectorService) Run() error {
	if IsWindowsService() {
		return svc.Run(serviceName, s)
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return s.runFn(ctx)
}

// Execute implements svc.Handler.
func (s *CollectorService) Execute(args []string, r <-chan svc.ChangeRequest, changes chan<- svc.Status) (ssec bool, errno uint32) {
	changes <- svc.Status{State: svc.StartPending}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- s.runFn(ctx) }()

	changes <- svc.Status{
		State:   svc.Running,
		Accepts: svc.AcceptStop | svc.AcceptShutdown,
	}
	s.logger.Info("Windows service started")

	for {
		select {
		case err := <-done:
			if err != nil {
				s.logger.Error("Collector stopped unexpectedly", zap.Error(err))
				return false, 1
			}
			return false, 0
		case c := <-r:
			switch c.Cmd {
			case svc.Interrogate:
				changes <- c.CurrentStatus
			case svc.Stop, svc.Shutdown:
				s.logger.Info("Windows service stopping")
				changes <- svc.Status{State: svc.StopPending}
				cancel()
				select {
				case <-done:
				case <-time.After(stopTimeout):
					s.logger.Warn("Collector did not stop in time")
				}
				return false, 0
			default:
				s.logger.Warn("Unexpected service control request",
					zap.Uint32("cmd", uint32(c.Cmd)))
			}
		}
	}
}
