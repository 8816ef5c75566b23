// Package main is the entry point for the Syslens agent. It samples the
// local host once, pushes the snapshot to a collector over a single TCP
// connection, and exits.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"go.uber.org/zap"

	"github.com/Guliveer/syslens/internal/config"
	"github.com/Guliveer/syslens/internal/logging"
	"github.com/Guliveer/syslens/internal/provider"
	"github.com/Guliveer/syslens/internal/sender"
)

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes the agent with the given arguments and returns the process
// exit status.
func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("syslens-agent", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "Path to configuration file (default: search standard locations)")
	logLevel := fs.String("log-level", "", "Log level: debug, info, warn, error")
	showVersion := fs.Bool("version", false, "Show version and exit")
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: %s [flags] <ip_address> <port>\n", fs.Name())
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 1
	}

	if *showVersion {
		fmt.Fprintf(stdout, "syslens-agent %s\n", version)
		return 0
	}

	if fs.NArg() < 2 {
		fs.Usage()
		return 1
	}
	port, err := strconv.Atoi(fs.Arg(1))
	if err != nil {
		fmt.Fprintf(stderr, "Invalid port %q\n", fs.Arg(1))
		fs.Usage()
		return 1
	}

	cli := config.CLIOverrides{
		Address:  fs.Arg(0),
		Port:     port,
		LogLevel: *logLevel,
	}
	var cfg *config.Config
	if *configPath != "" {
		cfg, err = config.LoadLayered(cli, *configPath)
	} else {
		cfg, err = config.LoadLayered(cli)
	}
	if err != nil {
		fmt.Fprintf(stderr, "Failed to load config: %v\n", err)
		return 1
	}
	if err := cfg.ValidateAgent(); err != nil {
		fmt.Fprintf(stderr, "Invalid configuration: %v\n", err)
		return 1
	}

	logger, err := logging.New(cfg.Logging)
	if err != nil {
		fmt.Fprintf(stderr, "Failed to initialize logging: %v\n", err)
		return 1
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	snd := sender.New(cfg.Agent, logger)
	snap, err := snd.Send(ctx, provider.NewSystem(cfg.Agent.SampleWindow.Duration, logger))
	if err != nil {
		logger.Error("Send failed",
			zap.String("addr", cfg.Agent.DestinationAddr()),
			zap.Error(err))
		if sender.IsConnectionError(err) {
			fmt.Fprintln(stderr, "Connection Failed. Did you start the server first?")
		} else {
			fmt.Fprintf(stderr, "Failed to send snapshot: %v\n", err)
		}
		return 1
	}

	logger.Info("Snapshot sent",
		zap.String("addr", cfg.Agent.DestinationAddr()),
		zap.Stringer("snapshot", snap))
	fmt.Fprintln(stdout, "Message sent!")
	return 0
}
