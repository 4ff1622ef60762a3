package http11

// Parser drives one request through the three ordered phases described in
// the component design: start line, headers, body. A Parser holds only its
// configuration, so one Parser serves every request on a connection.
type Parser struct {
	cfg HttpServerConfig
}

// NewParser builds a Parser bound to cfg's limits.
func NewParser(cfg HttpServerConfig) *Parser {
	return &Parser{cfg: cfg}
}

// Parse reads exactly one request from r. On success the returned Request
// owns a frozen head-bytes buffer; the caller must hand the request back
// with ReleaseRequest once the response referencing any echoed bytes has
// been flushed.
func (p *Parser) Parse(r *Reader, remote string, onHeadParsed func() error) (*Request, *ParseError) {
	req := getRequest()
	req.Remote = remote

	headEnd, perr := p.scanHead(r)
	if perr != nil {
		putRequest(req)
		return nil, perr
	}
	head := r.SplitTo(headEnd)
	req.head = head

	lineEnd, perr := p.parseStartLine(req, head)
	if perr != nil {
		putRequest(req)
		return nil, perr
	}
	if perr := p.parseHeaders(req, head[lineEnd:]); perr != nil {
		putRequest(req)
		return nil, perr
	}
	if perr := p.validateFraming(req); perr != nil {
		putRequest(req)
		return nil, perr
	}
	if onHeadParsed != nil {
		if err := onHeadParsed(); err != nil {
			putRequest(req)
			return nil, newIOError(LocationBody, 0, err)
		}
	}
	if perr := p.readBody(req, r); perr != nil {
		putRequest(req)
		return nil, perr
	}
	p.applyPreDispatchClose(req)
	return req, nil
}

// scanHead scans lines from r, enforcing max_request_line_bytes on the
// first line and max_header_line_bytes/max_header_bytes_total on the
// rest, until the blank line terminating headers is found. It returns the
// total byte length of the head region (request line + headers + the
// final CRLF), without retaining any line contents — those are re-parsed
// against the frozen copy afterward so that no borrowed slice can be
// invalidated by a later buffer growth.
func (p *Parser) scanHead(r *Reader) (int, *ParseError) {
	_, err := r.NextLine(p.cfg.MaxRequestLineBytes)
	if err != nil {
		return 0, scanIOError(err, LocationStartLine, p.cfg.MaxRequestLineBytes, LimitRequestLineBytes)
	}
	startLineEnd := r.Consumed()

	headerBytes := 0
	count := 0
	for {
		line, err := r.NextLine(p.cfg.MaxHeaderLineBytes)
		if err != nil {
			return 0, scanIOError(err, LocationHeaders, p.cfg.MaxHeaderLineBytes, LimitHeaderLineBytes)
		}
		consumed := r.Consumed() - startLineEnd - headerBytes
		headerBytes += consumed
		if p.cfg.MaxHeaderBytesTotal > 0 && headerBytes > p.cfg.MaxHeaderBytesTotal {
			return 0, newTooLargeError(LocationHeaders, headerBytes, LimitHeaderBytesTotal, int64(p.cfg.MaxHeaderBytesTotal), int64(headerBytes))
		}
		if isEmptyLine(line) {
			break
		}
		count++
		if p.cfg.MaxHeaderCount > 0 && count > p.cfg.MaxHeaderCount {
			return 0, newTooLargeError(LocationHeaders, headerBytes, LimitHeaderCount, int64(p.cfg.MaxHeaderCount), int64(count))
		}
	}
	return r.Consumed(), nil
}

func scanIOError(err error, loc Location, limit int, what LimitKind) *ParseError {
	if err == errLineTooLarge {
		return newTooLargeError(loc, 0, what, int64(limit), int64(limit)+1)
	}
	return newParseError(KindIncompleteMessage, loc, 0)
}

// parseStartLine parses "method SP target SP HTTP-version CRLF" from the
// frozen head buffer. It returns the byte offset of the first header
// line (i.e. just past the start line's terminator).
func (p *Parser) parseStartLine(req *Request, head []byte) (int, *ParseError) {
	nl := indexByte(head, '\n')
	if nl < 0 {
		return 0, newParseError(KindMalformedHeaderLine, LocationStartLine, 0)
	}
	lineEnd := nl
	if lineEnd > 0 && head[lineEnd-1] == '\r' {
		lineEnd--
	}
	line := head[:lineEnd]

	methodTok, rest, ok := nextWord(line)
	if !ok {
		return 0, newParseError(KindInvalidMethod, LocationStartLine, 0)
	}
	m, ok := parseMethod(methodTok)
	if !ok {
		return 0, newParseError(KindInvalidMethod, LocationStartLine, 0)
	}
	req.Method = m

	targetTok, versionTok, ok := nextWord(rest)
	if !ok {
		return 0, newParseError(KindInvalidTarget, LocationStartLine, len(methodTok)+1)
	}
	target, ok := parseRequestTarget(targetTok)
	if !ok {
		return 0, newParseError(KindInvalidTarget, LocationStartLine, len(methodTok)+1)
	}
	req.Target = target

	if p.cfg.MaxPathBytes > 0 && target.Form == TargetOrigin && len(target.Path) > p.cfg.MaxPathBytes {
		return 0, newTooLargeError(LocationStartLine, 0, LimitPathBytes, int64(p.cfg.MaxPathBytes), int64(len(target.Path)))
	}
	if p.cfg.MaxQueryBytes > 0 && target.Form == TargetOrigin && len(target.Query) > p.cfg.MaxQueryBytes {
		return 0, newTooLargeError(LocationStartLine, 0, LimitQueryBytes, int64(p.cfg.MaxQueryBytes), int64(len(target.Query)))
	}

	// versionTok must be exactly the version token with no further SP, i.e.
	// nextWord must fail to find another separator (excess trailing
	// content is a malformed request line).
	if _, _, more := nextWord(versionTok); more {
		return 0, newParseError(KindInvalidVersion, LocationStartLine, 0)
	}
	v, perr := parseVersion(versionTok)
	if perr != nil {
		return 0, perr
	}
	req.Version = v

	return nl + 1, nil
}

func indexByte(b []byte, c byte) int {
	for i := range b {
		if b[i] == c {
			return i
		}
	}
	return -1
}

// parseHeaders parses field-lines from the tail of the frozen head buffer
// (everything after the start line) up to its terminating blank line.
func (p *Parser) parseHeaders(req *Request, rest []byte) *ParseError {
	off := 0
	for {
		nl := indexByte(rest[off:], '\n')
		if nl < 0 {
			return newParseError(KindMalformedHeaderLine, LocationHeaders, off)
		}
		lineEnd := off + nl
		start := off
		off = lineEnd + 1
		if lineEnd > start && rest[lineEnd-1] == '\r' {
			lineEnd--
		}
		line := rest[start:lineEnd]
		if isEmptyLine(line) {
			break
		}
		if isOWS(line[0]) {
			return newParseError(KindMalformedHeaderLine, LocationHeaders, start)
		}
		name, value, ok := nextUntil(line, ':')
		if !ok {
			return newParseError(KindMalformedHeaderLine, LocationHeaders, start)
		}
		if len(name) == 0 {
			return newParseError(KindInvalidHeaderName, LocationHeaders, start)
		}
		for _, c := range name {
			if !isTChar(c) {
				return newParseError(KindInvalidHeaderName, LocationHeaders, start)
			}
		}
		for _, c := range value {
			if c == '\r' || c == '\n' {
				return newParseError(KindInvalidHeaderValue, LocationHeaders, start)
			}
		}
		trimmed := trim(value)
		req.Header.Add(name, trimmed)
	}
	return p.checkDuplicateSingletons(req)
}

func (p *Parser) checkDuplicateSingletons(req *Request) *ParseError {
	if req.Header.Count(bHost) > 1 {
		return newParseError(KindDuplicateHeader, LocationHeaders, 0)
	}
	if idx := req.Header.findID(HeaderContentType); idx >= 0 && req.Header.entries[idx].value.Count() > 1 {
		return newParseError(KindDuplicateHeader, LocationHeaders, 0)
	}
	return nil
}

// validateFraming applies the post-header validation the spec fixes:
// mandatory Host, and the strict Content-Length/Transfer-Encoding
// resolution order from RFC 9112 §6.3.
func (p *Parser) validateFraming(req *Request) *ParseError {
	if !req.Header.Has(bHost) {
		return newParseError(KindMissingRequiredHeader, LocationHeaders, 0)
	}

	hasTE := req.Header.Has(bTransferEncoding)
	hasCL := req.Header.Has(bContentLength)

	if hasTE {
		chunked, perr := req.Header.IsChunkedTransferEncoding()
		if perr != nil {
			return perr
		}
		if !chunked {
			return newParseError(KindInvalidTransferEncoding, LocationHeaders, 0)
		}
		if hasCL {
			return newParseError(KindConflictingContentLength, LocationHeaders, 0)
		}
		return nil
	}

	if hasCL {
		segs := req.Header.GetAll(bContentLength)
		first := segs[0]
		for _, s := range segs[1:] {
			if !bytesEqual(trim(s), trim(first)) {
				return newParseError(KindConflictingContentLength, LocationHeaders, 0)
			}
		}
		if _, ok := parseUint(trim(first)); !ok {
			return newParseError(KindInvalidContentLength, LocationHeaders, 0)
		}
	}
	return nil
}

// readBody executes Phase 3: fixed-length, chunked, or absent framing.
func (p *Parser) readBody(req *Request, r *Reader) *ParseError {
	if req.Header.Has(bTransferEncoding) {
		data, perr := decodeChunkedBody(r, p.cfg.MaxChunkSizeBytes, p.cfg.MaxBodyBytes, p.cfg.MaxTrailerBytesTotal)
		if perr != nil {
			return perr
		}
		if len(data) == 0 {
			req.Body = Body{Kind: BodyNone}
		} else {
			req.Body = Body{Kind: BodyFull, Data: data}
		}
		return nil
	}

	n, present, perr := req.Header.ContentLengthValue()
	if perr != nil {
		return perr
	}
	if !present || n == 0 {
		req.Body = Body{Kind: BodyNone}
		return nil
	}
	if p.cfg.MaxBodyBytes > 0 && n > p.cfg.MaxBodyBytes {
		return newTooLargeError(LocationBody, 0, LimitBodyBytes, p.cfg.MaxBodyBytes, n)
	}
	buf := make([]byte, n)
	if _, err := readFull(r, buf); err != nil {
		return chunkedIOError(err)
	}
	req.Body = Body{Kind: BodyFull, Data: buf}
	return nil
}

func readFull(r *Reader, buf []byte) (int, error) {
	total := 0
	for total < len(buf) {
		n, err := r.Read(buf[total:])
		total += n
		if err != nil {
			return total, err
		}
		if n == 0 {
			return total, errIncompleteMessage
		}
	}
	return total, nil
}

// applyPreDispatchClose sets req.Close when the client's own framing
// already determines the connection must close after this response:
// an explicit Connection: close, or HTTP/1.0 without Connection:
// keep-alive.
func (p *Parser) applyPreDispatchClose(req *Request) {
	if req.Header.ConnectionHasToken(bClose) {
		req.Close = true
		return
	}
	if !req.Version.AtLeast11() && !req.Header.ConnectionHasToken(bKeepAlive) {
		req.Close = true
	}
}
