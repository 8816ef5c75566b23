//go:build !unix

package server

import (
	"net"

	"github.com/Guliveer/syslens/internal/config"
)

// Listen binds the collector's listening socket. The backlog setting is
// not applied on this platform.
func Listen(cfg config.CollectorConfig) (net.Listener, error) {
	return listenDefault(cfg)
}
