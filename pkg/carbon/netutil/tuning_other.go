//go:build !linux

package netutil

// Platform-specific socket options (TCP_QUICKACK, TCP_DEFER_ACCEPT) are
// Linux-only extensions; everywhere else, tuning is limited to what
// tuning.go already applies via plain syscall.SetsockoptInt.
func applyPlatformConnOptions(fd int, cfg Config) {}

func applyPlatformListenerOptions(fd int, cfg Config) error { return nil }
