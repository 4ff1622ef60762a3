package http11

import (
	"bytes"
	"errors"
	"io"

	"github.com/valyala/bytebufferpool"

	"github.com/hxyulin/carbon-http-server/pkg/carbon/bufpool"
)

const (
	readerScratchSize = 4096
	readerInitialCap  = 8 * 1024
)

// Reader owns an expandable byte buffer and a cursor into it. Bytes
// before the cursor have been consumed by the parser; bytes at or after
// are unparsed. Reader itself implements io.Reader, draining already
// buffered bytes first and falling through to the transport, so the
// fixed-length body reader in parser.go and the chunked decoder in
// chunked.go can treat it as an ordinary stream.
type Reader struct {
	src     io.Reader
	bb      *bytebufferpool.ByteBuffer
	cursor  int
	scratch []byte
}

// NewReader wraps src with an initial ~8KiB capacity buffer, matching the
// size policy in the component design.
func NewReader(src io.Reader) *Reader {
	bb := bufpool.Get()
	if cap(bb.B) < readerInitialCap {
		bb.B = make([]byte, 0, readerInitialCap)
	}
	return &Reader{
		src:     src,
		bb:      bb,
		scratch: make([]byte, readerScratchSize),
	}
}

// Reset rebinds the reader to a new transport and clears buffered state,
// for pooled reuse across connections.
func (r *Reader) Reset(src io.Reader) {
	r.src = src
	r.bb.Reset()
	r.cursor = 0
}

// Release returns the internal buffer to the pool. The Reader must not be
// used afterward.
func (r *Reader) Release() {
	bufpool.Put(r.bb)
	r.bb = nil
}

// Consumed returns the number of bytes scanned past the cursor since the
// last SplitTo, i.e. how far into the current head region we are.
func (r *Reader) Consumed() int { return r.cursor }

// Buffered reports how many already-read bytes remain unconsumed.
func (r *Reader) Buffered() int { return len(r.bb.B) - r.cursor }

// GetLine returns a borrowed view of the next CRLF- or LF-terminated line
// at or after the cursor, with the cursor advanced past the terminator.
// ok is false if no '\n' is present yet in the buffered region.
func (r *Reader) GetLine() (line []byte, ok bool) {
	rel := bytes.IndexByte(r.bb.B[r.cursor:], '\n')
	if rel < 0 {
		return nil, false
	}
	lf := r.cursor + rel
	end := lf
	if end > r.cursor && r.bb.B[end-1] == '\r' {
		end--
	}
	line = r.bb.B[r.cursor:end]
	r.cursor = lf + 1
	return line, true
}

// Fill reads more bytes from the transport and appends them to the
// buffer. It reports end-of-stream as (0, nil) or (0, io.EOF) depending on
// what the transport returns, distinct from a genuine I/O error.
func (r *Reader) Fill() (int, error) {
	n, err := r.src.Read(r.scratch)
	if n > 0 {
		r.bb.Write(r.scratch[:n])
	}
	return n, err
}

// NextLine blocks (refilling from the transport as needed) until a full
// line is available at the cursor, the line exceeds maxLineBytes (0
// disables the check), or the stream ends. This is the primitive both
// Phase 1 (start line) and Phase 2 (header lines) scanning use, with the
// limit enforced inline as bytes stream in rather than after the fact.
func (r *Reader) NextLine(maxLineBytes int) ([]byte, error) {
	for {
		if line, ok := r.GetLine(); ok {
			if maxLineBytes > 0 && len(line) > maxLineBytes {
				return nil, errLineTooLarge
			}
			return line, nil
		}
		if maxLineBytes > 0 && len(r.bb.B)-r.cursor > maxLineBytes {
			return nil, errLineTooLarge
		}
		n, err := r.Fill()
		if n == 0 {
			if err == nil {
				err = io.EOF
			}
			return nil, err
		}
	}
}

// SplitTo moves the first n bytes of the buffer out as an immutable
// frozen copy and resets the working buffer to hold only what follows
// (e.g. the start of a pipelined next request, or body bytes already
// read speculatively). Used once Phase 2 finds the blank line terminating
// headers, to freeze the head bytes before any header interpretation.
func (r *Reader) SplitTo(n int) []byte {
	head := make([]byte, n)
	copy(head, r.bb.B[:n])
	rest := append([]byte(nil), r.bb.B[n:]...)
	r.bb.Reset()
	r.bb.Write(rest)
	r.cursor -= n
	if r.cursor < 0 {
		r.cursor = 0
	}
	return head
}

// Read implements io.Reader, draining buffered-but-unconsumed bytes
// before reading from the transport directly. This lets fixed-length and
// chunked body decoding treat the Reader as a plain stream.
func (r *Reader) Read(p []byte) (int, error) {
	if r.cursor < len(r.bb.B) {
		n := copy(p, r.bb.B[r.cursor:])
		r.cursor += n
		return n, nil
	}
	return r.src.Read(p)
}

var errLineTooLarge = errors.New("http11: line exceeds configured limit")
