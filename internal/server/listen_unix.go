//go:build unix

package server

import (
	"fmt"
	"net"
	"os"

	"golang.org/x/sys/unix"

	"github.com/Guliveer/syslens/internal/config"
)

// Listen binds the collector's IPv4 listening socket with the configured
// backlog. Addresses that are not IPv4 literals go through the standard
// library instead.
func Listen(cfg config.CollectorConfig) (net.Listener, error) {
	ip := net.IPv4zero
	if cfg.ListenAddress != "" {
		ip = net.ParseIP(cfg.ListenAddress)
	}
	ip4 := ip.To4()
	if ip4 == nil {
		return listenDefault(cfg)
	}

	fd, err := unix.Socket(unix.AF_INET, unix.SOCK_STREAM, 0)
	if err != nil {
		return nil, os.NewSyscallError("socket", err)
	}
	unix.CloseOnExec(fd)

	sa := &unix.SockaddrInet4{Port: cfg.Port}
	copy(sa.Addr[:], ip4)

	if err := bindAndListen(fd, sa, cfg.Backlog); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("listen on %s: %w", cfg.ListenAddr(), err)
	}

	// FileListener dups the descriptor; our copy is closed with f.
	f := os.NewFile(uintptr(fd), "syslens-listener")
	defer f.Close()

	ln, err := net.FileListener(f)
	if err != nil {
		return nil, fmt.Errorf("wrap listener: %w", err)
	}
	return ln, nil
}

func bindAndListen(fd int, sa unix.Sockaddr, backlog int) error {
	if err := unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEADDR, 1); err != nil {
		return os.NewSyscallError("setsockopt", err)
	}
	if err := unix.Bind(fd, sa); err != nil {
		return os.NewSyscallError("bind", err)
	}
	if err := unix.Listen(fd, backlog); err != nil {
		return os.NewSyscallError("listen", err)
	}
	return nil
}
