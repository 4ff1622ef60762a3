package http11

import "errors"

// ErrMalformedPercentEncoding is returned by URLDecode when a "%" isn't
// followed by two hex digits.
var ErrMalformedPercentEncoding = errors.New("http11: malformed percent-encoding")

const hexCharsUpper = "0123456789ABCDEF"

// isUnreserved reports whether b is an RFC 3986 unreserved character, the
// only bytes URLEncode leaves untouched.
func isUnreserved(b byte) bool {
	switch {
	case b >= 'A' && b <= 'Z', b >= 'a' && b <= 'z', b >= '0' && b <= '9':
		return true
	}
	switch b {
	case '-', '.', '_', '~':
		return true
	}
	return false
}

// URLEncode percent-encodes every byte of input that isn't RFC 3986
// unreserved, using uppercase hex ("%FF", never "%ff"). This is a standalone
// utility, not invoked by the parser or serializer — request-target bytes
// are passed through opaquely (§6); callers that need decoded path/query
// values call URLDecode explicitly.
func URLEncode(input []byte) []byte {
	out := make([]byte, 0, len(input))
	for _, b := range input {
		if isUnreserved(b) {
			out = append(out, b)
			continue
		}
		out = append(out, '%', hexCharsUpper[b>>4], hexCharsUpper[b&0xF])
	}
	return out
}

// URLDecode reverses URLEncode: "%HH" triples become the byte HH, every
// other byte passes through unchanged. "+" is never treated as a space —
// that's an application/x-www-form-urlencoded convention, not RFC 3986.
func URLDecode(input []byte) ([]byte, error) {
	out := make([]byte, 0, len(input))
	i := 0
	for i < len(input) {
		if input[i] != '%' {
			out = append(out, input[i])
			i++
			continue
		}
		if i+2 >= len(input) {
			return nil, ErrMalformedPercentEncoding
		}
		hi, ok := hexNibble(input[i+1])
		if !ok {
			return nil, ErrMalformedPercentEncoding
		}
		lo, ok := hexNibble(input[i+2])
		if !ok {
			return nil, ErrMalformedPercentEncoding
		}
		out = append(out, hi<<4|lo)
		i += 3
	}
	return out, nil
}
