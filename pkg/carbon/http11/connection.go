package http11

import (
	"io"
	"net"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
)

// ConnectionState mirrors the teacher's lock-free connection state
// machine, extended with nothing new: New -> Active -> Idle, repeating,
// until Closed.
type ConnectionState int32

const (
	StateNew ConnectionState = iota
	StateActive
	StateIdle
	StateClosed
)

func (s ConnectionState) String() string {
	switch s {
	case StateNew:
		return "new"
	case StateActive:
		return "active"
	case StateIdle:
		return "idle"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Connection is the per-connection state machine (component F): it owns
// one Reader/Serializer pair, parses and dispatches requests one at a
// time — never pipelined — and applies the keep-alive/close policy from
// §4.F between requests.
type Connection struct {
	conn   net.Conn
	reader *Reader
	writer *Serializer
	parser *Parser
	router Router
	cfg    HttpServerConfig
	log    *logrus.Entry

	state    atomic.Int32
	requests atomic.Int64
	lastUse  atomic.Int64
	closed   atomic.Bool
}

// NewConnection builds a Connection over an already-accepted stream. log
// may be nil, in which case logrus.StandardLogger() is used, matching the
// ambient-stack's nil-safe-default policy.
func NewConnection(conn net.Conn, cfg HttpServerConfig, router Router, log *logrus.Logger) *Connection {
	if log == nil {
		log = logrus.StandardLogger()
	}
	c := &Connection{
		conn:   conn,
		reader: NewReader(conn),
		writer: NewSerializer(conn),
		parser: NewParser(cfg),
		router: router,
		cfg:    cfg,
		log: log.WithFields(logrus.Fields{
			"remote_addr": conn.RemoteAddr().String(),
		}),
	}
	c.state.Store(int32(StateNew))
	c.lastUse.Store(time.Now().UnixNano())
	return c
}

func (c *Connection) State() ConnectionState { return ConnectionState(c.state.Load()) }

func (c *Connection) setState(s ConnectionState) {
	c.state.Store(int32(s))
	c.lastUse.Store(time.Now().UnixNano())
}

// RequestCount returns how many requests have completed on this
// connection so far.
func (c *Connection) RequestCount() int64 { return c.requests.Load() }

// IdleTime reports how long the connection has been idle; zero while a
// request is being actively processed.
func (c *Connection) IdleTime() time.Duration {
	if c.State() == StateActive {
		return 0
	}
	return time.Since(time.Unix(0, c.lastUse.Load()))
}

// Serve repeats parse-dispatch-serialize until a close condition is
// reached, per §4.F and §5's ordering guarantee: request N's response is
// fully flushed before request N+1's head is parsed.
func (c *Connection) Serve() error {
	defer c.cleanup()

	for {
		if c.closed.Load() {
			return nil
		}

		if c.reader.Buffered() == 0 {
			if err := c.conn.SetReadDeadline(idleDeadline(c.cfg.KeepAliveTimeout)); err != nil {
				return err
			}
			n, err := c.reader.Fill()
			if n == 0 {
				if err == io.EOF || isTimeout(err) {
					return nil
				}
				return err
			}
		}

		c.setState(StateActive)
		if err := c.conn.SetReadDeadline(idleDeadline(c.cfg.HeaderReadTimeout)); err != nil {
			return err
		}

		req, perr := c.parser.Parse(c.reader, c.conn.RemoteAddr().String(), func() error {
			return c.conn.SetReadDeadline(idleDeadline(c.cfg.RequestBodyTimeout))
		})
		if perr != nil {
			c.log.WithFields(logrus.Fields{
				"error_kind": perr.Kind.String(),
				"status":     int(perr.StatusCode()),
			}).Warn("http11: request parse failed")
			c.writeErrorResponse(perr)
			return perr
		}

		c.requests.Add(1)
		resp, err := c.router.Route(req)
		if err != nil {
			resp = NewResponse(StatusInternalServerError).Build()
			resp.Header.Set(bConnection, bClose)
			c.log.WithError(err).Error("http11: router error")
		}

		shouldClose := req.Close || resp.Header.ConnectionHasToken(bClose) || err != nil

		if writeErr := c.writer.WriteResponse(resp); writeErr != nil {
			ReleaseRequest(req)
			return writeErr
		}
		ReleaseRequest(req)

		if shouldClose {
			c.shutdownWrite()
			return nil
		}
		c.setState(StateIdle)
	}
}

func idleDeadline(d time.Duration) time.Time {
	if d <= 0 {
		return time.Time{}
	}
	return time.Now().Add(d)
}

func isTimeout(err error) bool {
	ne, ok := err.(net.Error)
	return ok && ne.Timeout()
}

// writeErrorResponse synthesises a best-effort error response for a fatal
// parse error, per §7: Connection: close, empty body, I/O failures
// swallowed.
func (c *Connection) writeErrorResponse(perr *ParseError) {
	resp := NewResponse(perr.StatusCode()).Build()
	resp.Header.Set(bConnection, bClose)
	_ = c.writer.WriteResponse(resp)
	c.shutdownWrite()
}

func (c *Connection) shutdownWrite() {
	if tc, ok := c.conn.(interface{ CloseWrite() error }); ok {
		_ = tc.CloseWrite()
	}
}

// Close forcibly closes the underlying connection.
func (c *Connection) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}
	c.setState(StateClosed)
	return c.conn.Close()
}

func (c *Connection) cleanup() {
	c.reader.Release()
	_ = c.conn.Close()
}
