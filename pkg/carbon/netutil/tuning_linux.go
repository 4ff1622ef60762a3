//go:build linux

package netutil

import "syscall"

const (
	tcpQuickAck    = 12
	tcpDeferAccept = 9
)

func applyPlatformConnOptions(fd int, cfg Config) {
	if cfg.QuickAck {
		_ = syscall.SetsockoptInt(fd, syscall.IPPROTO_TCP, tcpQuickAck, 1)
	}
}

func applyPlatformListenerOptions(fd int, cfg Config) error {
	if !cfg.DeferAccept {
		return nil
	}
	return syscall.SetsockoptInt(fd, syscall.IPPROTO_TCP, tcpDeferAccept, 5)
}
