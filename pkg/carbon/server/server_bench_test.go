package server

import (
	"fmt"
	"net"
	"testing"
	"time"

	"github.com/hxyulin/carbon-http-server/pkg/carbon/http11"
)

func BenchmarkServerSimpleGET(b *testing.B) {
	cfg := DefaultConfig()
	srv := New(cfg, echoRouter())

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		b.Skipf("tcp unavailable in this sandbox: %v", err)
	}
	defer ln.Close()

	addr := ln.Addr().String()
	go srv.Serve(ln)
	defer srv.Close()

	time.Sleep(50 * time.Millisecond)

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		conn, err := net.Dial("tcp", addr)
		if err != nil {
			b.Fatal(err)
		}
		fmt.Fprintf(conn, "GET / HTTP/1.1\r\nHost: localhost\r\nConnection: close\r\n\r\n")
		buf := make([]byte, 1024)
		if _, err := conn.Read(buf); err != nil {
			b.Fatal(err)
		}
		conn.Close()
	}
}

func BenchmarkServerKeepAlive(b *testing.B) {
	cfg := DefaultConfig()
	srv := New(cfg, http11.RouterFunc(func(req *http11.Request) (*http11.Response, error) {
		return http11.NewResponse(http11.StatusOK).WithBody([]byte("OK")).Build(), nil
	}))

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		b.Skipf("tcp unavailable in this sandbox: %v", err)
	}
	defer ln.Close()

	addr := ln.Addr().String()
	go srv.Serve(ln)
	defer srv.Close()

	time.Sleep(50 * time.Millisecond)

	conn, err := net.Dial("tcp", addr)
	if err != nil {
		b.Fatal(err)
	}
	defer conn.Close()

	b.ResetTimer()
	b.ReportAllocs()

	buf := make([]byte, 1024)
	for i := 0; i < b.N; i++ {
		fmt.Fprintf(conn, "GET / HTTP/1.1\r\nHost: localhost\r\n\r\n")
		if _, err := conn.Read(buf); err != nil {
			b.Fatal(err)
		}
	}
}
