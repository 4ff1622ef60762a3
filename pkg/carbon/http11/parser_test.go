package http11

import (
	"strings"
	"testing"
)

func testConfig() HttpServerConfig {
	cfg := DefaultConfig()
	return cfg
}

func parseRequest(t *testing.T, raw string, cfg HttpServerConfig) (*Request, *ParseError) {
	t.Helper()
	r := NewReader(strings.NewReader(raw))
	t.Cleanup(r.Release)
	p := NewParser(cfg)
	return p.Parse(r, "127.0.0.1:1234", nil)
}

func TestParseSimpleGET(t *testing.T) {
	req, perr := parseRequest(t, "GET /hello?x=1 HTTP/1.1\r\nHost: example.com\r\n\r\n", testConfig())
	if perr != nil {
		t.Fatalf("unexpected error: %v", perr)
	}
	defer ReleaseRequest(req)

	if req.Method.String() != "GET" {
		t.Fatalf("Method = %q", req.Method.String())
	}
	if req.Path() != "/hello" {
		t.Fatalf("Path() = %q", req.Path())
	}
	if req.Query() != "x=1" {
		t.Fatalf("Query() = %q", req.Query())
	}
	if req.Version != Version11 {
		t.Fatalf("Version = %v", req.Version)
	}
	if req.Body.Kind != BodyNone {
		t.Fatalf("Body.Kind = %v, want BodyNone", req.Body.Kind)
	}
	host, ok := req.Header.Host()
	if !ok || string(host.Host) != "example.com" {
		t.Fatalf("Host = %v, ok=%v", host, ok)
	}
}

func TestParsePOSTWithFixedLengthBody(t *testing.T) {
	raw := "POST /submit HTTP/1.1\r\nHost: example.com\r\nContent-Length: 5\r\n\r\nhello"
	req, perr := parseRequest(t, raw, testConfig())
	if perr != nil {
		t.Fatalf("unexpected error: %v", perr)
	}
	defer ReleaseRequest(req)

	if req.Body.Kind != BodyFull {
		t.Fatalf("Body.Kind = %v, want BodyFull", req.Body.Kind)
	}
	if string(req.Body.Data) != "hello" {
		t.Fatalf("Body.Data = %q", req.Body.Data)
	}
}

func TestParsePOSTWithChunkedBody(t *testing.T) {
	raw := "POST /submit HTTP/1.1\r\nHost: example.com\r\nTransfer-Encoding: chunked\r\n\r\n4\r\ndata\r\n0\r\n\r\n"
	req, perr := parseRequest(t, raw, testConfig())
	if perr != nil {
		t.Fatalf("unexpected error: %v", perr)
	}
	defer ReleaseRequest(req)

	if req.Body.Kind != BodyFull || string(req.Body.Data) != "data" {
		t.Fatalf("Body = %+v", req.Body)
	}
}

func TestParseMissingHostRejected(t *testing.T) {
	raw := "GET / HTTP/1.1\r\n\r\n"
	_, perr := parseRequest(t, raw, testConfig())
	if perr == nil {
		t.Fatal("expected error for missing Host")
	}
	if perr.Kind != KindMissingRequiredHeader {
		t.Fatalf("Kind = %v, want KindMissingRequiredHeader", perr.Kind)
	}
}

func TestParseDuplicateHostRejected(t *testing.T) {
	raw := "GET / HTTP/1.1\r\nHost: a.com\r\nHost: b.com\r\n\r\n"
	_, perr := parseRequest(t, raw, testConfig())
	if perr == nil {
		t.Fatal("expected error for duplicate Host")
	}
	if perr.Kind != KindDuplicateHeader {
		t.Fatalf("Kind = %v, want KindDuplicateHeader", perr.Kind)
	}
}

func TestParseConflictingTransferEncodingAndContentLength(t *testing.T) {
	raw := "POST / HTTP/1.1\r\nHost: a.com\r\nTransfer-Encoding: chunked\r\nContent-Length: 5\r\n\r\n0\r\n\r\n"
	_, perr := parseRequest(t, raw, testConfig())
	if perr == nil {
		t.Fatal("expected error for CL/TE smuggling attempt")
	}
	if perr.Kind != KindConflictingContentLength {
		t.Fatalf("Kind = %v, want KindConflictingContentLength", perr.Kind)
	}
}

func TestParseDuplicateContentLengthMismatch(t *testing.T) {
	raw := "POST / HTTP/1.1\r\nHost: a.com\r\nContent-Length: 5\r\nContent-Length: 6\r\n\r\nhello!"
	_, perr := parseRequest(t, raw, testConfig())
	if perr == nil {
		t.Fatal("expected error for conflicting duplicate Content-Length")
	}
	if perr.Kind != KindConflictingContentLength {
		t.Fatalf("Kind = %v, want KindConflictingContentLength", perr.Kind)
	}
}

func TestParseDuplicateContentLengthIdenticalAccepted(t *testing.T) {
	raw := "POST / HTTP/1.1\r\nHost: a.com\r\nContent-Length: 5\r\nContent-Length: 5\r\n\r\nhello"
	req, perr := parseRequest(t, raw, testConfig())
	if perr != nil {
		t.Fatalf("unexpected error: %v", perr)
	}
	defer ReleaseRequest(req)
	if string(req.Body.Data) != "hello" {
		t.Fatalf("Body.Data = %q", req.Body.Data)
	}
}

func TestParseInvalidTransferEncodingNotChunkedLast(t *testing.T) {
	raw := "POST / HTTP/1.1\r\nHost: a.com\r\nTransfer-Encoding: chunked, gzip\r\n\r\n"
	_, perr := parseRequest(t, raw, testConfig())
	if perr == nil {
		t.Fatal("expected error")
	}
	if perr.Kind != KindInvalidTransferEncoding {
		t.Fatalf("Kind = %v, want KindInvalidTransferEncoding", perr.Kind)
	}
}

func TestParseRejectsObsoleteLineFolding(t *testing.T) {
	raw := "GET / HTTP/1.1\r\nHost: a.com\r\n Folded: value\r\n\r\n"
	_, perr := parseRequest(t, raw, testConfig())
	if perr == nil {
		t.Fatal("expected error for leading-OWS continuation line")
	}
	if perr.Kind != KindMalformedHeaderLine {
		t.Fatalf("Kind = %v, want KindMalformedHeaderLine", perr.Kind)
	}
}

func TestParseRejectsInvalidHeaderName(t *testing.T) {
	raw := "GET / HTTP/1.1\r\nHost: a.com\r\nBad Name: value\r\n\r\n"
	_, perr := parseRequest(t, raw, testConfig())
	if perr == nil {
		t.Fatal("expected error for header name containing a space")
	}
	if perr.Kind != KindInvalidHeaderName {
		t.Fatalf("Kind = %v, want KindInvalidHeaderName", perr.Kind)
	}
}

func TestParseRejectsUnsupportedVersion(t *testing.T) {
	raw := "GET / HTTP/2.0\r\nHost: a.com\r\n\r\n"
	_, perr := parseRequest(t, raw, testConfig())
	if perr == nil {
		t.Fatal("expected error")
	}
	if perr.Kind != KindVersionNotSupported {
		t.Fatalf("Kind = %v, want KindVersionNotSupported", perr.Kind)
	}
	if perr.StatusCode() != StatusHTTPVersionNotSupported {
		t.Fatalf("StatusCode = %v", perr.StatusCode())
	}
}

func TestParseEnforcesMaxRequestLineBytes(t *testing.T) {
	cfg := testConfig()
	cfg.MaxRequestLineBytes = 16
	raw := "GET /this-path-is-too-long-for-the-configured-limit HTTP/1.1\r\nHost: a.com\r\n\r\n"
	_, perr := parseRequest(t, raw, cfg)
	if perr == nil {
		t.Fatal("expected TooLarge error")
	}
	if perr.Kind != KindTooLarge || perr.What != LimitRequestLineBytes {
		t.Fatalf("perr = %+v, want TooLarge/RequestLineBytes", perr)
	}
	if perr.StatusCode() != StatusRequestHeaderFieldsTooLarge {
		t.Fatalf("StatusCode = %v", perr.StatusCode())
	}
}

func TestParseEnforcesMaxHeaderCount(t *testing.T) {
	cfg := testConfig()
	cfg.MaxHeaderCount = 2
	raw := "GET / HTTP/1.1\r\nHost: a.com\r\nX-One: 1\r\nX-Two: 2\r\n\r\n"
	_, perr := parseRequest(t, raw, cfg)
	if perr == nil {
		t.Fatal("expected TooLarge error")
	}
	if perr.Kind != KindTooLarge || perr.What != LimitHeaderCount {
		t.Fatalf("perr = %+v, want TooLarge/HeaderCount", perr)
	}
}

func TestParseEnforcesMaxBodyBytes(t *testing.T) {
	cfg := testConfig()
	cfg.MaxBodyBytes = 3
	raw := "POST / HTTP/1.1\r\nHost: a.com\r\nContent-Length: 5\r\n\r\nhello"
	_, perr := parseRequest(t, raw, cfg)
	if perr == nil {
		t.Fatal("expected TooLarge error")
	}
	if perr.Kind != KindTooLarge || perr.What != LimitBodyBytes {
		t.Fatalf("perr = %+v, want TooLarge/BodyBytes", perr)
	}
	if perr.StatusCode() != StatusPayloadTooLarge {
		t.Fatalf("StatusCode = %v", perr.StatusCode())
	}
}

func TestParseIncompleteMessageAtEOF(t *testing.T) {
	raw := "GET / HTTP/1.1\r\nHost: a.com\r\n"
	_, perr := parseRequest(t, raw, testConfig())
	if perr == nil {
		t.Fatal("expected error: stream ended before the blank line terminating headers")
	}
	if perr.Kind != KindIncompleteMessage {
		t.Fatalf("Kind = %v, want KindIncompleteMessage", perr.Kind)
	}
}

func TestApplyPreDispatchCloseHTTP10WithoutKeepAlive(t *testing.T) {
	raw := "GET / HTTP/1.0\r\nHost: a.com\r\n\r\n"
	req, perr := parseRequest(t, raw, testConfig())
	if perr != nil {
		t.Fatalf("unexpected error: %v", perr)
	}
	defer ReleaseRequest(req)
	if !req.Close {
		t.Fatal("HTTP/1.0 without Connection: keep-alive must close")
	}
}

func TestApplyPreDispatchCloseHTTP10WithKeepAlive(t *testing.T) {
	raw := "GET / HTTP/1.0\r\nHost: a.com\r\nConnection: keep-alive\r\n\r\n"
	req, perr := parseRequest(t, raw, testConfig())
	if perr != nil {
		t.Fatalf("unexpected error: %v", perr)
	}
	defer ReleaseRequest(req)
	if req.Close {
		t.Fatal("HTTP/1.0 with Connection: keep-alive must not close")
	}
}

func TestApplyPreDispatchCloseExplicit(t *testing.T) {
	raw := "GET / HTTP/1.1\r\nHost: a.com\r\nConnection: close\r\n\r\n"
	req, perr := parseRequest(t, raw, testConfig())
	if perr != nil {
		t.Fatalf("unexpected error: %v", perr)
	}
	defer ReleaseRequest(req)
	if !req.Close {
		t.Fatal("explicit Connection: close must be honoured")
	}
}

func TestOnHeadParsedCallbackInvokedBeforeBody(t *testing.T) {
	raw := "POST / HTTP/1.1\r\nHost: a.com\r\nContent-Length: 5\r\n\r\nhello"
	r := NewReader(strings.NewReader(raw))
	defer r.Release()
	p := NewParser(testConfig())

	var called bool
	req, perr := p.Parse(r, "127.0.0.1:1234", func() error {
		called = true
		return nil
	})
	if perr != nil {
		t.Fatalf("unexpected error: %v", perr)
	}
	defer ReleaseRequest(req)
	if !called {
		t.Fatal("onHeadParsed callback was never invoked")
	}
}

func TestOnHeadParsedCallbackErrorSurfacesAsIOError(t *testing.T) {
	raw := "POST / HTTP/1.1\r\nHost: a.com\r\nContent-Length: 5\r\n\r\nhello"
	r := NewReader(strings.NewReader(raw))
	defer r.Release()
	p := NewParser(testConfig())

	_, perr := p.Parse(r, "127.0.0.1:1234", func() error {
		return errConnectionClosed
	})
	if perr == nil {
		t.Fatal("expected error")
	}
	if perr.Kind != KindIO {
		t.Fatalf("Kind = %v, want KindIO", perr.Kind)
	}
}
