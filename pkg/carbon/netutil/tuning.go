// Package netutil applies socket tuning to accepted connections and the
// listening socket. Kept on raw syscall rather than golang.org/x/sys,
// following the same precedent the teacher's own socket package set.
package netutil

import (
	"net"
	"syscall"
)

// Config holds socket tuning knobs. Zero value means "leave system
// defaults in place" for the buffer-size fields.
type Config struct {
	NoDelay     bool // TCP_NODELAY: disable Nagle's algorithm
	RecvBuffer  int  // SO_RCVBUF, 0 = system default
	SendBuffer  int  // SO_SNDBUF, 0 = system default
	KeepAlive   bool // SO_KEEPALIVE
	QuickAck    bool // TCP_QUICKACK, Linux only
	DeferAccept bool // TCP_DEFER_ACCEPT, Linux only, listener-side
}

// DefaultConfig returns sane defaults for an HTTP/1.1 server: Nagle
// disabled (request/response framing is latency sensitive), modest
// buffers, keepalive on.
func DefaultConfig() Config {
	return Config{
		NoDelay:     true,
		RecvBuffer:  256 * 1024,
		SendBuffer:  256 * 1024,
		KeepAlive:   true,
		QuickAck:    true,
		DeferAccept: true,
	}
}

// Apply tunes an accepted connection. Non-TCP connections (e.g. in unit
// tests, net.Pipe) are left untouched.
func Apply(conn net.Conn, cfg Config) error {
	tcpConn, ok := conn.(*net.TCPConn)
	if !ok {
		return nil
	}
	raw, err := tcpConn.SyscallConn()
	if err != nil {
		return err
	}
	var lastErr error
	ctrlErr := raw.Control(func(fd uintptr) {
		if cfg.NoDelay {
			if err := syscall.SetsockoptInt(int(fd), syscall.IPPROTO_TCP, syscall.TCP_NODELAY, 1); err != nil {
				lastErr = err
				return
			}
		}
		if cfg.RecvBuffer > 0 {
			_ = syscall.SetsockoptInt(int(fd), syscall.SOL_SOCKET, syscall.SO_RCVBUF, cfg.RecvBuffer)
		}
		if cfg.SendBuffer > 0 {
			_ = syscall.SetsockoptInt(int(fd), syscall.SOL_SOCKET, syscall.SO_SNDBUF, cfg.SendBuffer)
		}
		if cfg.KeepAlive {
			_ = syscall.SetsockoptInt(int(fd), syscall.SOL_SOCKET, syscall.SO_KEEPALIVE, 1)
		}
		applyPlatformConnOptions(int(fd), cfg)
	})
	if ctrlErr != nil {
		return ctrlErr
	}
	return lastErr
}

// ApplyListener tunes the listening socket itself (e.g. TCP_DEFER_ACCEPT),
// which must be set before Accept is called.
func ApplyListener(l net.Listener, cfg Config) error {
	tcpListener, ok := l.(*net.TCPListener)
	if !ok {
		return nil
	}
	file, err := tcpListener.File()
	if err != nil {
		return err
	}
	defer file.Close()
	return applyPlatformListenerOptions(int(file.Fd()), cfg)
}
