package http11

import "fmt"

// HttpVersion is a (major, minor) pair. The core fixes the recognised set
// to 1.0 and 1.1 per the open-question resolution in the design notes:
// anything else is rejected as VersionNotSupported rather than accepted
// with undefined semantics.
type HttpVersion struct {
	Major uint8
	Minor uint8
}

var (
	Version10 = HttpVersion{Major: 1, Minor: 0}
	Version11 = HttpVersion{Major: 1, Minor: 1}
)

// parseVersion parses an exact "HTTP/" DIGIT "." DIGIT token (8 bytes, no
// surrounding whitespace). The caller is responsible for having already
// isolated this token from the rest of the start line.
func parseVersion(tok []byte) (HttpVersion, *ParseError) {
	if len(tok) != 8 || tok[0] != 'H' || tok[1] != 'T' || tok[2] != 'T' || tok[3] != 'P' || tok[4] != '/' || tok[6] != '.' {
		return HttpVersion{}, newParseError(KindInvalidVersion, LocationStartLine, 0)
	}
	if !isDigit(tok[5]) || !isDigit(tok[7]) {
		return HttpVersion{}, newParseError(KindInvalidVersion, LocationStartLine, 0)
	}
	v := HttpVersion{Major: tok[5] - '0', Minor: tok[7] - '0'}
	if v == Version10 || v == Version11 {
		return v, nil
	}
	return v, newParseError(KindVersionNotSupported, LocationStartLine, 0)
}

// String renders the canonical "HTTP/major.minor" form.
func (v HttpVersion) String() string {
	return fmt.Sprintf("HTTP/%d.%d", v.Major, v.Minor)
}

// AtLeast11 reports whether v is 1.1 or newer within the recognised set.
func (v HttpVersion) AtLeast11() bool {
	return v.Major > 1 || (v.Major == 1 && v.Minor >= 1)
}
