package server

import (
	"context"
	"net"

	"github.com/Guliveer/syslens/internal/config"
)

// listenDefault binds through the standard library; the OS chooses the
// backlog.
func listenDefault(cfg config.CollectorConfig) (net.Listener, error) {
	var lc net.ListenConfig
	return lc.Listen(context.Background(), "tcp", cfg.ListenAddr())
}
