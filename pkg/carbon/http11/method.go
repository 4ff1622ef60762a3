package http11

// Method IDs, kept numeric for the same reason the teacher keeps them
// numeric: O(1) dispatch without string comparison on the hot path.
const (
	MethodUnknown uint8 = iota
	MethodGET
	MethodPOST
	MethodPUT
	MethodDELETE
	MethodPATCH
	MethodHEAD
	MethodOPTIONS
	MethodCONNECT
	MethodTRACE
	methodCustom
)

var builtinMethodBytes = [...][]byte{
	MethodGET:     []byte("GET"),
	MethodPOST:    []byte("POST"),
	MethodPUT:     []byte("PUT"),
	MethodDELETE:  []byte("DELETE"),
	MethodPATCH:   []byte("PATCH"),
	MethodHEAD:    []byte("HEAD"),
	MethodOPTIONS: []byte("OPTIONS"),
	MethodCONNECT: []byte("CONNECT"),
	MethodTRACE:   []byte("TRACE"),
}

// Method is either one of the nine built-in tokens or a custom tchar-only
// token. Comparison against a built-in is case-sensitive: only the
// canonical uppercase spelling matches.
type Method struct {
	id  uint8
	raw []byte
}

// parseMethod validates tok against the builtin table, falling back to
// tchar validation for extension methods.
func parseMethod(tok []byte) (Method, bool) {
	if len(tok) == 0 {
		return Method{}, false
	}
	for id := MethodGET; id <= MethodTRACE; id++ {
		if bytesEqual(tok, builtinMethodBytes[id]) {
			return Method{id: id, raw: builtinMethodBytes[id]}, true
		}
	}
	for _, c := range tok {
		if !isTChar(c) {
			return Method{}, false
		}
	}
	return Method{id: methodCustom, raw: tok}, true
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// String returns the method token, e.g. "GET" or "PURGE".
func (m Method) String() string { return string(m.raw) }

// Bytes returns the method token as a borrowed view into the request's
// head buffer.
func (m Method) Bytes() []byte { return m.raw }

// IsBuiltin reports whether m is one of the nine RFC-defined methods.
func (m Method) IsBuiltin() bool { return m.id != MethodUnknown && m.id != methodCustom }

// ID returns the numeric method ID for fast switch dispatch; custom
// methods all share methodCustom, so callers that need to distinguish
// extension methods must compare Bytes().
func (m Method) ID() uint8 { return m.id }

func (m Method) IsSafe() bool {
	switch m.id {
	case MethodGET, MethodHEAD, MethodOPTIONS, MethodTRACE:
		return true
	default:
		return false
	}
}
