package main

import (
	"bytes"
	"net"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Guliveer/syslens/internal/config"
)

// isolate clears the collector's environment overrides and points run at a
// config path that does not exist.
func isolate(t *testing.T) []string {
	t.Helper()
	for _, env := range []string{"SYSLENS_LOG_LEVEL", "SYSLENS_COLLECTOR_PORT", "SYSLENS_STATUS_ADDRESS"} {
		t.Setenv(env, "")
	}
	return []string{
		"-config", filepath.Join(t.TempDir(), "absent.yaml"),
		"-log-level", "error",
	}
}

func TestRun_Version(t *testing.T) {
	var stdout, stderr bytes.Buffer

	assert.Equal(t, 0, run([]string{"-version"}, &stdout, &stderr))
	assert.Equal(t, "syslens-collector "+version+"\n", stdout.String())
}

func TestRun_UnknownFlag(t *testing.T) {
	var stdout, stderr bytes.Buffer

	assert.Equal(t, 1, run([]string{"-bogus"}, &stdout, &stderr))
	assert.Contains(t, stderr.String(), "flag provided but not defined: -bogus")
}

func TestRun_WriteConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "syslens.yaml")
	args := append(isolate(t), "-port", "9099", "-write-config", path)

	var stdout, stderr bytes.Buffer
	require.Equal(t, 0, run(args, &stdout, &stderr), stderr.String())

	cfg, err := config.LoadLayered(config.CLIOverrides{}, path)
	require.NoError(t, err)
	assert.Equal(t, 9099, cfg.Collector.Port)
	assert.Equal(t, "error", cfg.Logging.Level)
	assert.Equal(t, 3, cfg.Collector.Backlog)
}

func TestRun_InvalidPort(t *testing.T) {
	args := append(isolate(t), "-port", "70000")

	var stdout, stderr bytes.Buffer
	assert.Equal(t, 1, run(args, &stdout, &stderr))
	assert.Contains(t, stderr.String(), "Invalid configuration")
	assert.Empty(t, stdout.String())
}

func TestRun_AddressInUse(t *testing.T) {
	ln, err := net.Listen("tcp", "0.0.0.0:0")
	require.NoError(t, err)
	defer ln.Close()

	port := ln.Addr().(*net.TCPAddr).Port
	args := append(isolate(t), "-port", strconv.Itoa(port))

	var stdout, stderr bytes.Buffer
	assert.Equal(t, 1, run(args, &stdout, &stderr))
	assert.Empty(t, stdout.String())
}
