package netutil

import (
	"net"
	"path/filepath"
	"testing"
)

func TestApplyNonTCPConnIsNoOp(t *testing.T) {
	server, client := net.Pipe()
	defer server.Close()
	defer client.Close()

	if err := Apply(server, DefaultConfig()); err != nil {
		t.Fatalf("Apply on a non-TCP conn should be a no-op, got error: %v", err)
	}
}

func TestApplyListenerNonTCPIsNoOp(t *testing.T) {
	sockPath := filepath.Join(t.TempDir(), "netutil-test.sock")
	ln, err := net.Listen("unix", sockPath)
	if err != nil {
		t.Skipf("unix sockets unavailable: %v", err)
	}
	defer ln.Close()

	if err := ApplyListener(ln, DefaultConfig()); err != nil {
		t.Fatalf("ApplyListener on a non-TCP listener should be a no-op, got error: %v", err)
	}
}

func TestApplyTCPConn(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Skipf("tcp unavailable in this sandbox: %v", err)
	}
	defer ln.Close()

	acceptErr := make(chan error, 1)
	var accepted net.Conn
	go func() {
		c, err := ln.Accept()
		accepted = c
		acceptErr <- err
	}()

	client, err := net.Dial("tcp", ln.Addr().String())
	if err != nil {
		t.Fatalf("Dial error: %v", err)
	}
	defer client.Close()

	if err := <-acceptErr; err != nil {
		t.Fatalf("Accept error: %v", err)
	}
	defer accepted.Close()

	if err := Apply(accepted, DefaultConfig()); err != nil {
		t.Fatalf("Apply on a real TCP conn failed: %v", err)
	}
}

func TestApplyListenerTCP(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Skipf("tcp unavailable in this sandbox: %v", err)
	}
	defer ln.Close()

	if err := ApplyListener(ln, DefaultConfig()); err != nil {
		t.Fatalf("ApplyListener on a real TCP listener failed: %v", err)
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if !cfg.NoDelay || !cfg.KeepAlive || !cfg.QuickAck || !cfg.DeferAccept {
		t.Fatalf("DefaultConfig() = %+v, want all bools true", cfg)
	}
	if cfg.RecvBuffer != 256*1024 || cfg.SendBuffer != 256*1024 {
		t.Fatalf("DefaultConfig() buffer sizes = %d/%d, want 256KiB each", cfg.RecvBuffer, cfg.SendBuffer)
	}
}
