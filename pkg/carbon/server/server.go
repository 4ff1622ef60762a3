// Package server supplies the listening-socket bootstrap and accept loop
// around the http11 codec and connection loop — the part spec.md treats
// as an external collaborator, specified only by the interface it hands
// accepted streams to.
package server

import (
	"context"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/hxyulin/carbon-http-server/pkg/carbon/http11"
	"github.com/hxyulin/carbon-http-server/pkg/carbon/netutil"
)

// Config holds the address and limits a Server needs; the router is passed
// to New separately. The codec limits (request-line size, header budgets,
// timeouts, ...) live in Codec as an http11.HttpServerConfig.
type Config struct {
	Addr  string
	Codec http11.HttpServerConfig

	// MaxConcurrentConnections bounds how many connections may be served
	// at once; 0 means unlimited.
	MaxConcurrentConnections int

	Socket netutil.Config
	Logger *logrus.Logger
}

// DefaultConfig mirrors the teacher's Config/DefaultConfig convention.
func DefaultConfig() Config {
	return Config{
		Addr:   ":8080",
		Codec:  http11.DefaultConfig(),
		Socket: netutil.DefaultConfig(),
	}
}

// Stats tracks ambient, cheap-to-collect server counters — not part of
// the spec's correctness invariants, but present in the teacher and
// useful to any operator of the library.
type Stats struct {
	TotalConnections  atomic.Uint64
	ActiveConnections atomic.Int64
	TotalRequests     atomic.Uint64
	ConnectionErrors  atomic.Uint64
	RequestErrors     atomic.Uint64
	StartTime         time.Time
}

func (s *Stats) Duration() time.Duration { return time.Since(s.StartTime) }

// Server accepts connections on a listener and dispatches each to its own
// http11.Connection, one goroutine per connection, per the concurrency
// model's "one task per accepted connection".
type Server struct {
	cfg    Config
	router http11.Router
	log    *logrus.Logger
	stats  Stats

	mu       sync.Mutex
	listener net.Listener
	conns    map[*http11.Connection]struct{}
	connSem  chan struct{}

	shutdown atomic.Bool
	done     chan struct{}
	wg       sync.WaitGroup
}

// New builds a Server for router using cfg. A nil Logger falls back to
// logrus.StandardLogger().
func New(cfg Config, router http11.Router) *Server {
	if cfg.Addr == "" {
		cfg.Addr = ":8080"
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.StandardLogger()
	}
	s := &Server{
		cfg:    cfg,
		router: router,
		log:    cfg.Logger,
		done:   make(chan struct{}),
		conns:  make(map[*http11.Connection]struct{}),
	}
	s.stats.StartTime = time.Now()
	if cfg.MaxConcurrentConnections > 0 {
		s.connSem = make(chan struct{}, cfg.MaxConcurrentConnections)
	}
	return s
}

// ListenAndServe binds cfg.Addr and serves until Shutdown/Close or a
// fatal accept error.
func (s *Server) ListenAndServe() error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return err
	}
	if err := netutil.ApplyListener(ln, s.cfg.Socket); err != nil {
		s.log.WithError(err).Warn("server: listener socket tuning failed, continuing with defaults")
	}
	return s.Serve(ln)
}

// Serve runs the accept loop on an already-bound listener.
func (s *Server) Serve(l net.Listener) error {
	s.mu.Lock()
	s.listener = l
	s.mu.Unlock()
	defer l.Close()

	for {
		if s.shutdown.Load() {
			return nil
		}

		if s.connSem != nil {
			select {
			case s.connSem <- struct{}{}:
			case <-s.done:
				return nil
			}
		}

		conn, err := l.Accept()
		if err != nil {
			if s.shutdown.Load() {
				return nil
			}
			s.stats.ConnectionErrors.Add(1)
			if s.connSem != nil {
				<-s.connSem
			}
			s.log.WithError(err).Warn("server: accept failed")
			continue
		}

		if err := netutil.Apply(conn, s.cfg.Socket); err != nil {
			s.log.WithError(err).Debug("server: connection socket tuning failed")
		}

		s.stats.TotalConnections.Add(1)
		s.wg.Add(1)
		go s.handleConnection(conn)
	}
}

func (s *Server) handleConnection(netConn net.Conn) {
	defer s.wg.Done()
	if s.connSem != nil {
		defer func() { <-s.connSem }()
	}

	conn := http11.NewConnection(netConn, s.cfg.Codec, s.router, s.log)
	s.trackConnection(conn)
	defer s.untrackConnection(conn)

	s.stats.ActiveConnections.Add(1)
	defer s.stats.ActiveConnections.Add(-1)

	err := conn.Serve()
	s.stats.TotalRequests.Add(uint64(conn.RequestCount()))
	if err != nil {
		s.stats.RequestErrors.Add(1)
		s.log.WithError(err).Debug("server: connection ended")
	}
}

func (s *Server) trackConnection(c *http11.Connection) {
	s.mu.Lock()
	s.conns[c] = struct{}{}
	s.mu.Unlock()
}

func (s *Server) untrackConnection(c *http11.Connection) {
	s.mu.Lock()
	delete(s.conns, c)
	s.mu.Unlock()
}

// Shutdown stops accepting new connections and waits for in-flight ones
// to finish on their own; if ctx expires first, every connection still
// tracked is closed forcibly. Connections are not signalled to stop: one
// idle in keep-alive keeps waiting for its next request until its
// keep-alive timeout passes or ctx expires.
func (s *Server) Shutdown(ctx context.Context) error {
	if !s.shutdown.CompareAndSwap(false, true) {
		return nil
	}
	s.mu.Lock()
	if s.listener != nil {
		s.listener.Close()
	}
	s.mu.Unlock()
	close(s.done)

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		s.closeAll()
		return ctx.Err()
	}
}

// Close forces immediate shutdown, closing every tracked connection.
func (s *Server) Close() error {
	if !s.shutdown.CompareAndSwap(false, true) {
		return nil
	}
	s.mu.Lock()
	if s.listener != nil {
		s.listener.Close()
	}
	s.mu.Unlock()
	close(s.done)
	s.closeAll()
	s.wg.Wait()
	return nil
}

func (s *Server) closeAll() {
	s.mu.Lock()
	conns := make([]*http11.Connection, 0, len(s.conns))
	for c := range s.conns {
		conns = append(conns, c)
	}
	s.mu.Unlock()
	for _, c := range conns {
		_ = c.Close()
	}
}

// StatsSnapshot returns the server's current counters.
func (s *Server) StatsSnapshot() *Stats { return &s.stats }
