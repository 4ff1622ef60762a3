package http11

// HeaderID tags the fixed set of header names the core has typed
// knowledge of. Everything else is HeaderCustom, matched by raw bytes.
type HeaderID uint8

const (
	HeaderCustom HeaderID = iota
	HeaderHost
	HeaderConnection
	HeaderContentLength
	HeaderTransferEncoding
	HeaderContentType
	HeaderContentLocation
	HeaderSetCookie
	HeaderDate
	HeaderTrailer
)

var canonicalHeaderName = [...]string{
	HeaderCustom:           "",
	HeaderHost:             "Host",
	HeaderConnection:       "Connection",
	HeaderContentLength:    "Content-Length",
	HeaderTransferEncoding: "Transfer-Encoding",
	HeaderContentType:      "Content-Type",
	HeaderContentLocation:  "Content-Location",
	HeaderSetCookie:        "Set-Cookie",
	HeaderDate:             "Date",
	HeaderTrailer:          "Trailer",
}

// classifyHeaderName matches name case-insensitively against the builtin
// table, falling back to HeaderCustom.
func classifyHeaderName(name []byte) HeaderID {
	for id := HeaderHost; id <= HeaderTrailer; id++ {
		if equalFold(name, []byte(canonicalHeaderName[id])) {
			return id
		}
	}
	return HeaderCustom
}

// HeaderName is a two-armed tagged variant: a builtin enum member, or a
// raw custom token. Equality is always case-insensitive.
type HeaderName struct {
	ID  HeaderID
	Raw []byte
}

func (n HeaderName) String() string {
	if n.ID != HeaderCustom {
		return canonicalHeaderName[n.ID]
	}
	return string(n.Raw)
}

func (n HeaderName) Equal(other []byte) bool {
	if n.ID != HeaderCustom {
		return equalFold(other, []byte(canonicalHeaderName[n.ID]))
	}
	return equalFold(n.Raw, other)
}

// HeaderValue is an ordered sequence of raw byte segments: one per
// occurrence of the header on the wire. Join concatenates them with
// ", " per §3, the sole exception being Set-Cookie which the serializer
// emits once per segment instead of joining.
type HeaderValue struct {
	segments [][]byte
}

func (v *HeaderValue) append(seg []byte) {
	v.segments = append(v.segments, seg)
}

// Join concatenates all segments with ", ", per RFC 9110 §5.3.
func (v HeaderValue) Join() []byte {
	switch len(v.segments) {
	case 0:
		return nil
	case 1:
		return v.segments[0]
	}
	n := 0
	for _, s := range v.segments {
		n += len(s)
	}
	n += 2 * (len(v.segments) - 1)
	out := make([]byte, 0, n)
	for i, s := range v.segments {
		if i > 0 {
			out = append(out, ',', ' ')
		}
		out = append(out, s...)
	}
	return out
}

// Segments returns the raw per-occurrence values in wire order.
func (v HeaderValue) Segments() [][]byte { return v.segments }

func (v HeaderValue) Count() int { return len(v.segments) }

type headerEntry struct {
	name  HeaderName
	value HeaderValue
}

// Header is an insertion-ordered HeaderMap. Iteration order is
// deterministic within a process (insertion order) so serialization tests
// are stable, as the data model requires. Lookup is linear scan, the same
// texture the teacher uses for its fixed-size header array, just over a
// growable slice.
type Header struct {
	entries []headerEntry
}

func (h *Header) find(name []byte) int {
	for i := range h.entries {
		if h.entries[i].name.Equal(name) {
			return i
		}
	}
	return -1
}

func (h *Header) findID(id HeaderID) int {
	if id == HeaderCustom {
		return -1
	}
	for i := range h.entries {
		if h.entries[i].name.ID == id {
			return i
		}
	}
	return -1
}

// Add appends a new occurrence of name, creating the entry if this is the
// first occurrence. name and value are expected to be views into the
// frozen head buffer (or, for responses, caller-owned bytes).
func (h *Header) Add(name, value []byte) {
	if idx := h.find(name); idx >= 0 {
		h.entries[idx].value.append(value)
		return
	}
	h.entries = append(h.entries, headerEntry{
		name:  HeaderName{ID: classifyHeaderName(name), Raw: name},
		value: HeaderValue{segments: [][]byte{value}},
	})
}

// Set replaces all occurrences of name with a single value.
func (h *Header) Set(name, value []byte) {
	if idx := h.find(name); idx >= 0 {
		h.entries[idx].value = HeaderValue{segments: [][]byte{value}}
		return
	}
	h.Add(name, value)
}

// Get returns the joined value for name, or nil if absent.
func (h *Header) Get(name []byte) []byte {
	if idx := h.find(name); idx >= 0 {
		return h.entries[idx].value.Join()
	}
	return nil
}

// GetAll returns the raw per-occurrence segments for name.
func (h *Header) GetAll(name []byte) [][]byte {
	if idx := h.find(name); idx >= 0 {
		return h.entries[idx].value.Segments()
	}
	return nil
}

func (h *Header) Has(name []byte) bool { return h.find(name) >= 0 }

// Count returns the number of distinct occurrences (wire lines) of name,
// used by the parser to detect duplicate singleton headers.
func (h *Header) Count(name []byte) int {
	if idx := h.find(name); idx >= 0 {
		return h.entries[idx].value.Count()
	}
	return 0
}

func (h *Header) Del(name []byte) {
	if idx := h.find(name); idx >= 0 {
		h.entries = append(h.entries[:idx], h.entries[idx+1:]...)
	}
}

// Len returns the number of distinct header names (not occurrences).
func (h *Header) Len() int { return len(h.entries) }

// VisitAll calls fn for every header name in insertion order. Stops early
// if fn returns false.
func (h *Header) VisitAll(fn func(name HeaderName, value HeaderValue) bool) {
	for _, e := range h.entries {
		if !fn(e.name, e.value) {
			return
		}
	}
}

// Reset clears the header map for reuse from a pool.
func (h *Header) Reset() {
	h.entries = h.entries[:0]
}
