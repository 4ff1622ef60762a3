package http11

import (
	"bytes"
	"errors"
	"io"

	"github.com/valyala/bytebufferpool"

	"github.com/hxyulin/carbon-http-server/pkg/carbon/bufpool"
)

var errChunkedFraming = errors.New("http11: chunk not terminated by CRLF")

// decodeChunkedBody drains a chunked transfer-coded body (RFC 9112 §7.1)
// from r, honouring maxChunkSize and maxBodyBytes (0 = unlimited) and
// discarding any trailer section bounded by maxTrailerBytes. Chunk
// extensions are parsed only far enough to be skipped — their content is
// never interpreted, which forecloses the extension-based smuggling
// vector the teacher's ChunkedReader also guards against.
func decodeChunkedBody(r *Reader, maxChunkSize int64, maxBodyBytes int64, maxTrailerBytes int) ([]byte, *ParseError) {
	acc := bufpool.Get()
	defer bufpool.Put(acc)

	var total int64
	for {
		line, err := r.NextLine(0)
		if err != nil {
			return nil, chunkedIOError(err)
		}
		size, perr := parseChunkSizeLine(line, maxChunkSize)
		if perr != nil {
			return nil, perr
		}
		if size == 0 {
			if perr := discardTrailers(r, maxTrailerBytes); perr != nil {
				return nil, perr
			}
			break
		}
		if maxBodyBytes > 0 && total+size > maxBodyBytes {
			return nil, newTooLargeError(LocationBody, int(total), LimitBodyBytes, maxBodyBytes, total+size)
		}
		if err := readChunkData(r, acc, size); err != nil {
			return nil, chunkedIOError(err)
		}
		total += size
		if err := expectCRLF(r); err != nil {
			return nil, newParseError(KindChunkCrlfMissing, LocationBody, int(total))
		}
	}

	out := make([]byte, len(acc.B))
	copy(out, acc.B)
	return out, nil
}

func chunkedIOError(err error) *ParseError {
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		return newParseError(KindIncompleteMessage, LocationBody, 0)
	}
	return newIOError(LocationBody, 0, err)
}

// parseChunkSizeLine parses "hex-size [; extensions]" per RFC 9112 §7.1.1.
// Extension parameters are validated against tchar, then discarded wholesale
// — their content is never interpreted, only bounded.
func parseChunkSizeLine(line []byte, maxChunkSize int64) (int64, *ParseError) {
	sizePart := line
	if idx := bytes.IndexByte(line, ';'); idx >= 0 {
		sizePart = line[:idx]
		if perr := validateChunkExtensions(line[idx+1:]); perr != nil {
			return 0, perr
		}
	}
	if len(sizePart) == 0 {
		return 0, newParseError(KindChunkSizeInvalid, LocationBody, 0)
	}
	var size int64
	for _, c := range sizePart {
		v, ok := hexNibble(c)
		if !ok {
			return 0, newParseError(KindChunkSizeInvalid, LocationBody, 0)
		}
		size = size*16 + int64(v)
		if maxChunkSize > 0 && size > maxChunkSize {
			return 0, newTooLargeError(LocationBody, 0, LimitChunkSizeBytes, maxChunkSize, size)
		}
	}
	return size, nil
}

// validateChunkExtensions checks the bytes following the chunk-size's first
// ";" against tchar, permitting ";", "=", and OWS as the chunk-ext grammar's
// own structural separators (RFC 9112 §7.1.1 chunk-ext-name "=" chunk-ext-val).
// Anything else — a bare CR/LF, a control byte — is rejected rather than
// silently discarded.
func validateChunkExtensions(ext []byte) *ParseError {
	for _, c := range ext {
		switch c {
		case ';', '=', ' ', '\t':
			continue
		}
		if !isTChar(c) {
			return newParseError(KindChunkExtensionsInvalid, LocationBody, 0)
		}
	}
	return nil
}

func readChunkData(r *Reader, acc *bytebufferpool.ByteBuffer, size int64) error {
	n, err := io.CopyN(acc, r, size)
	if err != nil {
		if err == io.EOF {
			return io.ErrUnexpectedEOF
		}
		return err
	}
	if n != size {
		return io.ErrUnexpectedEOF
	}
	return nil
}

func expectCRLF(r *Reader) error {
	var buf [2]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return err
	}
	if buf[0] != '\r' || buf[1] != '\n' {
		return errChunkedFraming
	}
	return nil
}

// discardTrailers reads and ignores trailer field-lines up to the blank
// line terminator, subject to maxTrailerBytes, per the core's discard
// policy for trailers (spec design notes: trailer exposure to the router
// is an open question resolved as discard).
func discardTrailers(r *Reader, maxTrailerBytes int) *ParseError {
	var total int
	for {
		line, err := r.NextLine(0)
		if err != nil {
			return chunkedIOError(err)
		}
		if isEmptyLine(line) {
			return nil
		}
		total += len(line) + 2
		if maxTrailerBytes > 0 && total > maxTrailerBytes {
			return newTooLargeError(LocationTrailers, total, LimitTrailerBytesTotal, int64(maxTrailerBytes), int64(total))
		}
	}
}
