// Package main is the entry point for the Syslens collector. It listens for
// agent connections and prints every snapshot it receives to stdout.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Guliveer/syslens/internal/config"
	"github.com/Guliveer/syslens/internal/display"
	"github.com/Guliveer/syslens/internal/logging"
	"github.com/Guliveer/syslens/internal/server"
	"github.com/Guliveer/syslens/internal/service"
	"github.com/Guliveer/syslens/internal/status"
)

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes the collector with the given arguments and returns the
// process exit status. Snapshots are displayed on stdout.
func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("syslens-collector", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "Path to configuration file (default: search standard locations)")
	port := fs.Int("port", 0, "Listening port (overrides config)")
	logLevel := fs.String("log-level", "", "Log level: debug, info, warn, error")
	writeConfig := fs.String("write-config", "", "Write the effective configuration to this path and exit")
	showVersion := fs.Bool("version", false, "Show version and exit")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 1
	}

	if *showVersion {
		fmt.Fprintf(stdout, "syslens-collector %s\n", version)
		return 0
	}

	cli := config.CLIOverrides{CollectorPort: *port, LogLevel: *logLevel}
	var (
		cfg *config.Config
		err error
	)
	if *configPath != "" {
		cfg, err = config.LoadLayered(cli, *configPath)
	} else {
		cfg, err = config.LoadLayered(cli)
	}
	if err != nil {
		fmt.Fprintf(stderr, "Failed to load config: %v\n", err)
		return 1
	}

	if *writeConfig != "" {
		if err := config.WriteConfig(cfg, *writeConfig); err != nil {
			fmt.Fprintf(stderr, "Failed to write config: %v\n", err)
			return 1
		}
		return 0
	}

	if err := cfg.ValidateCollector(); err != nil {
		fmt.Fprintf(stderr, "Invalid configuration: %v\n", err)
		return 1
	}

	logger, err := logging.New(cfg.Logging)
	if err != nil {
		fmt.Fprintf(stderr, "Failed to initialize logging: %v\n", err)
		return 1
	}
	defer logger.Sync()

	logger.Info("Starting Syslens collector",
		zap.String("version", version),
		zap.String("listen", cfg.Collector.ListenAddr()))

	// The sink and metrics are created once and shared by every handler.
	metrics := server.NewMetrics()
	srv := server.New(cfg.Collector, display.NewSink(stdout), metrics, logger)

	svc := service.New(logger, func(ctx context.Context) error {
		return runCollector(ctx, cfg, srv, metrics, logger)
	})
	if err := svc.Run(); err != nil {
		logger.Error("Collector failed", zap.Error(err))
		return 1
	}

	logger.Info("Collector stopped")
	return 0
}

// runCollector serves agent connections and, when configured, the status
// endpoint. It returns when ctx is cancelled or either server fails.
func runCollector(ctx context.Context, cfg *config.Config, srv *server.Server, metrics *server.Metrics, logger *zap.Logger) error {
	if cfg.Collector.StatusAddress == "" {
		return srv.ListenAndServe(ctx)
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.ListenAndServe(ctx)
	})
	g.Go(func() error {
		return status.New(cfg.Collector.StatusAddress, metrics.Handler(), logger).Run(ctx)
	})
	return g.Wait()
}
