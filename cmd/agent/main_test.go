package main

import (
	"bytes"
	"io"
	"net"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Guliveer/syslens/internal/protocol"
)

// noConfig returns flags that keep run away from any config file or
// environment override on the test machine.
func noConfig(t *testing.T) []string {
	t.Helper()
	for _, env := range []string{"SYSLENS_LOG_LEVEL", "SYSLENS_SAMPLE_WINDOW"} {
		t.Setenv(env, "")
	}
	return []string{
		"-config", filepath.Join(t.TempDir(), "absent.yaml"),
		"-log-level", "error",
	}
}

func TestRun_UsageErrors(t *testing.T) {
	tests := []struct {
		name       string
		args       []string
		wantStderr []string
	}{
		{
			name:       "no arguments",
			args:       nil,
			wantStderr: []string{"Usage: syslens-agent [flags] <ip_address> <port>"},
		},
		{
			name:       "host only",
			args:       []string{"127.0.0.1"},
			wantStderr: []string{"Usage: syslens-agent [flags] <ip_address> <port>"},
		},
		{
			name:       "non-numeric port",
			args:       []string{"127.0.0.1", "http"},
			wantStderr: []string{`Invalid port "http"`, "Usage: syslens-agent"},
		},
		{
			name:       "unknown flag",
			args:       []string{"-bogus", "127.0.0.1", "8080"},
			wantStderr: []string{"flag provided but not defined: -bogus"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			code := run(tt.args, &stdout, &stderr)

			assert.Equal(t, 1, code)
			assert.Empty(t, stdout.String())
			for _, want := range tt.wantStderr {
				assert.Contains(t, stderr.String(), want)
			}
		})
	}
}

func TestRun_InvalidPort(t *testing.T) {
	var stdout, stderr bytes.Buffer
	args := append(noConfig(t), "127.0.0.1", "70000")

	assert.Equal(t, 1, run(args, &stdout, &stderr))
	assert.Contains(t, stderr.String(), "Invalid configuration")
}

func TestRun_Version(t *testing.T) {
	var stdout, stderr bytes.Buffer

	assert.Equal(t, 0, run([]string{"-version"}, &stdout, &stderr))
	assert.Equal(t, "syslens-agent "+version+"\n", stdout.String())
}

func TestRun_ConnectionFailed(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := ln.Addr().(*net.TCPAddr).Port
	require.NoError(t, ln.Close())

	var stdout, stderr bytes.Buffer
	args := append(noConfig(t), "127.0.0.1", strconv.Itoa(port))

	assert.Equal(t, 1, run(args, &stdout, &stderr))
	assert.Contains(t, stderr.String(), "Connection Failed. Did you start the server first?")
	assert.Empty(t, stdout.String())
}

func TestRun_SendsOneFrame(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	received := make(chan []byte, 1)
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		_ = conn.SetReadDeadline(time.Now().Add(10 * time.Second))
		data, _ := io.ReadAll(conn)
		received <- data
	}()

	var stdout, stderr bytes.Buffer
	port := ln.Addr().(*net.TCPAddr).Port
	args := append(noConfig(t), "127.0.0.1", strconv.Itoa(port))

	require.Equal(t, 0, run(args, &stdout, &stderr), stderr.String())
	assert.Equal(t, "Message sent!\n", stdout.String())

	select {
	case data := <-received:
		assert.Len(t, data, protocol.FrameSize)
	case <-time.After(10 * time.Second):
		t.Fatal("collector side never saw the frame")
	}
}
