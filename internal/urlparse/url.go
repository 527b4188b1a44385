// Package urlparse parses a request target into its RFC 3986 components.
// Parsing is a recursive descent through seven ordered stages -- scheme,
// hier-part, host, port, path, query, fragment -- each stage consuming a
// prefix of what's left and handing the remainder to the next. A stage that
// finds nothing of its own just passes the whole remainder along; only a
// host that starts with "[" fails outright, when its IPv6 literal has no
// closing bracket or is not a valid address.
package urlparse

import (
	"net/netip"
	"strings"

	"httpd/internal/httperr"
)

// URL holds the decoded components of a request target. Fields are empty
// when the corresponding component was absent, never nil vs empty-string
// distinguished.
type URL struct {
	Scheme   string
	Userinfo string
	Host     string
	Port     string
	Path     string
	Query    string
	Fragment string
}

func isSubdelim(c byte) bool {
	switch c {
	case '!', '$', '&', '\'', '(', ')', '*', '+', ',', ';', '=':
		return true
	}
	return false
}

func isHexDigit(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

func isAlpha(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isAlnum(c byte) bool { return isAlpha(c) || isDigit(c) }

// parseScheme returns the length of the scheme in a leading "scheme:"
// prefix (the colon not counted), or 0 if s doesn't start with one.
func parseScheme(s string) int {
	if len(s) == 0 || !isAlpha(s[0]) {
		return 0
	}
	pos := 1
	for pos < len(s) && (isAlnum(s[pos]) || s[pos] == '+' || s[pos] == '-' || s[pos] == '.') {
		pos++
	}
	if pos < len(s) && s[pos] == ':' {
		return pos
	}
	return 0
}

// parseUserinfo returns the length of the userinfo in a leading
// "userinfo@" prefix (the "@" not counted), or 0.
func parseUserinfo(s string) int {
	pos := 0
	for pos < len(s) {
		c := s[pos]
		switch {
		case isAlnum(c) || c == '-' || c == '.' || c == '_' || c == '~':
			pos++
		case c == '%' && pos+2 < len(s) && isHexDigit(s[pos+1]) && isHexDigit(s[pos+2]):
			pos += 3
		case isSubdelim(c) || c == ':':
			pos++
		default:
			goto done
		}
	}
done:
	if pos < len(s) && s[pos] == '@' {
		return pos
	}
	return 0
}

// parseIPv4 returns the length of a leading dotted-decimal IPv4 literal
// that net/netip accepts, or 0.
func parseIPv4(s string) int {
	pos := 0
	for pos < len(s) && (isDigit(s[pos]) || s[pos] == '.') {
		pos++
	}
	if pos == 0 {
		return 0
	}
	addr, err := netip.ParseAddr(s[:pos])
	if err != nil || !addr.Is4() {
		return 0
	}
	return pos
}

// parseIPv6 returns the length of the literal inside a leading "[...]", not
// counting the brackets, or -1 if the literal inside the brackets is
// malformed (the caller treats that as a hard parse failure: once "[" has
// committed us to an IPv6 literal there's no fallback).
func parseIPv6(s string) int {
	pos := strings.IndexByte(s, ']')
	if pos <= 0 {
		return -1
	}
	if _, err := netip.ParseAddr(s[:pos]); err != nil {
		return -1
	}
	return pos
}

// parseRegname returns the length of a leading reg-name (possibly empty).
func parseRegname(s string) int {
	pos := 0
	for pos < len(s) {
		c := s[pos]
		switch {
		case isAlnum(c) || c == '-' || c == '.' || c == '_' || c == '~':
			pos++
		case c == '%' && pos+2 < len(s) && isHexDigit(s[pos+1]) && isHexDigit(s[pos+2]):
			pos += 3
		case isSubdelim(c):
			pos++
		default:
			return pos
		}
	}
	return pos
}

// parsePort returns the length of a leading ":digits" prefix (the colon
// included), or 0.
func parsePort(s string) int {
	if len(s) == 0 || s[0] != ':' {
		return 0
	}
	pos := 1
	for pos < len(s) && isDigit(s[pos]) {
		pos++
	}
	return pos
}

// parsePath returns the length of a leading path prefix (possibly empty).
func parsePath(s string) int {
	pos := 0
	for pos < len(s) {
		c := s[pos]
		switch {
		case isAlnum(c) || c == '-' || c == '.' || c == '_' || c == '~':
			pos++
		case c == '%' && pos+2 < len(s) && isHexDigit(s[pos+1]) && isHexDigit(s[pos+2]):
			pos += 3
		case isSubdelim(c) || c == ':' || c == '@' || c == '/':
			pos++
		default:
			return pos
		}
	}
	return pos
}

// parseQueryOrFragment returns the length of a leading "?..." or "#..."
// prefix (the marker included), given the expected leading marker byte.
func parseQueryOrFragment(s string, marker byte) int {
	if len(s) == 0 || s[0] != marker {
		return 0
	}
	pos := 1
	for pos < len(s) {
		c := s[pos]
		switch {
		case isAlnum(c) || c == '-' || c == '.' || c == '_' || c == '~':
			pos++
		case c == '%' && pos+2 < len(s) && isHexDigit(s[pos+1]) && isHexDigit(s[pos+2]):
			pos += 3
		case isSubdelim(c) || c == ':' || c == '@' || c == '/' || c == '?':
			pos++
		default:
			return pos
		}
	}
	return pos
}

// Parse decodes s into its URL components.
func Parse(s string) (URL, error) {
	var u URL

	if n := parseScheme(s); n > 0 {
		u.Scheme = s[:n]
		s = s[n+1:]
	}

	if len(s) >= 2 && s[0] == '/' && s[1] == '/' {
		s = s[2:]
		if n := parseUserinfo(s); n > 0 {
			u.Userinfo = s[:n]
			s = s[n+1:]
		}

		switch {
		case len(s) > 0 && s[0] == '[':
			n := parseIPv6(s[1:])
			if n < 0 {
				return URL{}, httperr.ErrFailedParse
			}
			u.Host = s[1 : 1+n]
			s = s[1+n+1:]
		default:
			if n := parseIPv4(s); n > 0 {
				u.Host = s[:n]
				s = s[n:]
			} else {
				n := parseRegname(s)
				u.Host = s[:n]
				s = s[n:]
			}
		}
	}

	if n := parsePort(s); n > 0 {
		u.Port = s[1:n]
		s = s[n:]
	}

	if n := parsePath(s); n > 0 {
		u.Path = s[:n]
		s = s[n:]
	}

	if n := parseQueryOrFragment(s, '?'); n > 0 {
		u.Query = s[1:n]
		s = s[n:]
	}

	if n := parseQueryOrFragment(s, '#'); n > 0 {
		u.Fragment = s[1:n]
		s = s[n:]
	}

	return u, nil
}
