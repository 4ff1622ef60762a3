package http11

// Byte-scanner primitives. These operate on borrowed slices only — nothing
// here allocates, and nothing here looks past a single line.

// isTChar reports whether b is a token character per RFC 9110 §5.6.2:
// alphanumerics plus "!#$%&'*+-.^_`|~".
func isTChar(b byte) bool {
	switch {
	case b >= 'a' && b <= 'z', b >= 'A' && b <= 'Z', b >= '0' && b <= '9':
		return true
	}
	switch b {
	case '!', '#', '$', '%', '&', '\'', '*', '+', '-', '.', '^', '_', '`', '|', '~':
		return true
	}
	return false
}

// isVChar reports whether b is a visible ASCII character (0x21-0x7E).
func isVChar(b byte) bool {
	return b >= 0x21 && b <= 0x7E
}

// isOWS reports whether b is optional-whitespace (SP or HTAB).
func isOWS(b byte) bool {
	return b == ' ' || b == '\t'
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

func isAlpha(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

// hexNibble converts an ASCII hex digit to its value. ok is false for
// anything else.
func hexNibble(b byte) (v byte, ok bool) {
	switch {
	case b >= '0' && b <= '9':
		return b - '0', true
	case b >= 'a' && b <= 'f':
		return b - 'a' + 10, true
	case b >= 'A' && b <= 'F':
		return b - 'A' + 10, true
	}
	return 0, false
}

func toLower(b byte) byte {
	if b >= 'A' && b <= 'Z' {
		return b + ('a' - 'A')
	}
	return b
}

// equalFold does a case-insensitive ASCII byte comparison without
// allocating, independent of bytes.EqualFold's unicode machinery.
func equalFold(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if toLower(a[i]) != toLower(b[i]) {
			return false
		}
	}
	return true
}

// trim returns line with leading and trailing SP/HTAB stripped.
func trim(line []byte) []byte {
	start := 0
	for start < len(line) && isOWS(line[start]) {
		start++
	}
	end := len(line)
	for end > start && isOWS(line[end-1]) {
		end--
	}
	return line[start:end]
}

// nextWord consumes up to the next SP or HTAB. ok is false if no such byte
// is present in line.
func nextWord(line []byte) (word, rest []byte, ok bool) {
	for i := 0; i < len(line); i++ {
		if line[i] == ' ' || line[i] == '\t' {
			return line[:i], line[i+1:], true
		}
	}
	return nil, line, false
}

// nextUntil consumes up to the next occurrence of delim. ok is false if
// delim does not appear in line.
func nextUntil(line []byte, delim byte) (part, rest []byte, ok bool) {
	for i := 0; i < len(line); i++ {
		if line[i] == delim {
			return line[:i], line[i+1:], true
		}
	}
	return nil, line, false
}

func isEmptyLine(line []byte) bool {
	return len(line) == 0
}
