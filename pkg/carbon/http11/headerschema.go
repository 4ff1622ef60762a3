package http11

// Component H: typed accessors layered on top of the raw Header map for
// the handful of headers the connection loop and parser must interpret
// semantically rather than pass through opaquely.

var (
	bHost             = []byte("Host")
	bConnection       = []byte("Connection")
	bContentLength    = []byte("Content-Length")
	bTransferEncoding = []byte("Transfer-Encoding")
	bChunked          = []byte("chunked")
	bClose            = []byte("close")
	bKeepAlive        = []byte("keep-alive")
	bUpgrade          = []byte("upgrade")
)

// HostInfo is the parsed form of a Host header value: uri-host [":" port].
type HostInfo struct {
	Host      []byte
	Port      []byte // nil if no port was present
	IsIPv6    bool
}

// parseHostValue validates uri-host[:port]. IP-literal (bracketed IPv6 or
// IPvFuture), IPv4 dotted-quad, and reg-name forms are all accepted
// syntactically; the core does not resolve or further validate the host.
func parseHostValue(v []byte) (HostInfo, bool) {
	if len(v) == 0 {
		return HostInfo{}, false
	}
	if v[0] == '[' {
		end := -1
		for i := 1; i < len(v); i++ {
			if v[i] == ']' {
				end = i
				break
			}
		}
		if end < 0 {
			return HostInfo{}, false
		}
		info := HostInfo{Host: v[:end+1], IsIPv6: true}
		rest := v[end+1:]
		if len(rest) == 0 {
			return info, true
		}
		if rest[0] != ':' {
			return HostInfo{}, false
		}
		port := rest[1:]
		if !allDigits(port) {
			return HostInfo{}, false
		}
		info.Port = port
		return info, true
	}
	// reg-name or IPv4: split on last ':' since IPv6 without brackets is
	// already excluded.
	for i := len(v) - 1; i >= 0; i-- {
		if v[i] == ':' {
			host, port := v[:i], v[i+1:]
			if len(host) == 0 || !allDigits(port) {
				return HostInfo{}, false
			}
			return HostInfo{Host: host, Port: port}, true
		}
	}
	return HostInfo{Host: v}, true
}

func allDigits(b []byte) bool {
	if len(b) == 0 {
		return false
	}
	for _, c := range b {
		if !isDigit(c) {
			return false
		}
	}
	return true
}

// Host returns the parsed Host header, or false if it is absent or
// malformed. The parser is responsible for enforcing the "exactly one
// occurrence" and "mandatory for HTTP/1.1" invariants; this accessor just
// parses the value.
func (h *Header) Host() (HostInfo, bool) {
	v := h.Get(bHost)
	if v == nil {
		return HostInfo{}, false
	}
	return parseHostValue(v)
}

// ContentLengthValue parses the Content-Length header. present is false
// if the header is absent. Only the first field line's value is parsed:
// repeated Content-Length field lines are read as that one value, and a
// single field line holding a comma-separated list (e.g. "5, 5") is not
// split and fails as InvalidContentLength. Differing values across field
// lines are the caller's responsibility to detect via Header.Count plus
// comparing raw segments, since that decision carries framing-security
// weight (ConflictingContentLength) and belongs in the parser, not here.
func (h *Header) ContentLengthValue() (n int64, present bool, err *ParseError) {
	segs := h.GetAll(bContentLength)
	if segs == nil {
		return 0, false, nil
	}
	n, ok := parseUint(trim(segs[0]))
	if !ok {
		return 0, true, newParseError(KindInvalidContentLength, LocationHeaders, 0)
	}
	return n, true, nil
}

func parseUint(b []byte) (int64, bool) {
	if len(b) == 0 || len(b) > 19 {
		return 0, false
	}
	var n int64
	for _, c := range b {
		if !isDigit(c) {
			return 0, false
		}
		n = n*10 + int64(c-'0')
	}
	return n, true
}

// TransferEncodingTokens splits the Transfer-Encoding value into its
// comma-separated tokens (OWS trimmed around commas).
func (h *Header) TransferEncodingTokens() [][]byte {
	v := h.Get(bTransferEncoding)
	if v == nil {
		return nil
	}
	return splitTokenList(v)
}

// IsChunkedTransferEncoding reports whether Transfer-Encoding is present with chunked as
// its final (and, per this core's strict policy, only meaningful) coding.
func (h *Header) IsChunkedTransferEncoding() (chunked bool, err *ParseError) {
	toks := h.TransferEncodingTokens()
	if len(toks) == 0 {
		return false, nil
	}
	last := toks[len(toks)-1]
	if !equalFold(last, bChunked) {
		return false, newParseError(KindInvalidTransferEncoding, LocationHeaders, 0)
	}
	return true, nil
}

// ConnectionTokens splits the Connection header into its comma-separated
// tokens.
func (h *Header) ConnectionTokens() [][]byte {
	v := h.Get(bConnection)
	if v == nil {
		return nil
	}
	return splitTokenList(v)
}

func (h *Header) ConnectionHasToken(tok []byte) bool {
	for _, t := range h.ConnectionTokens() {
		if equalFold(t, tok) {
			return true
		}
	}
	return false
}

func splitTokenList(v []byte) [][]byte {
	var toks [][]byte
	start := 0
	for i := 0; i <= len(v); i++ {
		if i == len(v) || v[i] == ',' {
			tok := trim(v[start:i])
			if len(tok) > 0 {
				toks = append(toks, tok)
			}
			start = i + 1
		}
	}
	return toks
}
