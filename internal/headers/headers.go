// Package headers implements an ordered, duplicate-preserving HTTP header
// list: insertion order survives, a name may occur more than once, and
// merging repeated values (as a comma-joined list, say) is left to whoever
// reads the header back out.
package headers

import (
	"bytes"
	"errors"
	"strings"
)

var (
	ErrMalformedHeaderLine = errors.New("malformed header-line")
	ErrHeaderLineTooLong   = errors.New("header line too long")

	separator = []byte("\r\n")
)

// Per-line cap; enforce a total cap at a higher layer.
const maxHeaderLine = 8 * 1024 // 8 KiB

// Header is a single name/value pair as it appeared on the wire. Name is
// stored lowercased; Value is trimmed of leading/trailing OWS.
type Header struct {
	Name  string
	Value string
}

// Headers is an ordered sequence of Header. Construct with NewHeaders; the
// zero value is also ready to use.
type Headers struct {
	list []Header
}

func NewHeaders() Headers { return Headers{} }

// Len reports the number of header occurrences, duplicates included.
func (h Headers) Len() int { return len(h.list) }

// List returns the header occurrences in wire order. The caller must not
// mutate the returned slice.
func (h Headers) List() []Header { return h.list }

// Get returns the value of the first occurrence of name, or "" if absent.
func (h Headers) Get(name string) string {
	name = strings.ToLower(name)
	for _, e := range h.list {
		if e.Name == name {
			return e.Value
		}
	}
	return ""
}

// GetAll returns the values of every occurrence of name, in wire order.
func (h Headers) GetAll(name string) []string {
	name = strings.ToLower(name)
	var out []string
	for _, e := range h.list {
		if e.Name == name {
			out = append(out, e.Value)
		}
	}
	return out
}

// Has reports whether name occurs at least once.
func (h Headers) Has(name string) bool {
	name = strings.ToLower(name)
	for _, e := range h.list {
		if e.Name == name {
			return true
		}
	}
	return false
}

// Delete removes every occurrence of name.
func (h *Headers) Delete(name string) {
	name = strings.ToLower(name)
	kept := h.list[:0]
	for _, e := range h.list {
		if e.Name != name {
			kept = append(kept, e)
		}
	}
	h.list = kept
}

// Add appends a new occurrence of name, preserving any existing ones.
func (h *Headers) Add(name, value string) {
	h.list = append(h.list, Header{Name: strings.ToLower(name), Value: value})
}

// Set is Add; kept as the name most callers reach for, since
// "set a header" more often means "record an occurrence" than "replace".
func (h *Headers) Set(name, value string) {
	h.Add(name, value)
}

// Override replaces every existing occurrence of name with a single new
// one, preserving the position of the first occurrence if any existed.
func (h *Headers) Override(name, value string) {
	name = strings.ToLower(name)
	found := false
	newList := make([]Header, 0, len(h.list)+1)
	for _, e := range h.list {
		if e.Name == name {
			if !found {
				newList = append(newList, Header{Name: name, Value: value})
				found = true
			}
			continue
		}
		newList = append(newList, e)
	}
	if !found {
		newList = append(newList, Header{Name: name, Value: value})
	}
	h.list = newList
}

// Parse consumes as many complete header lines as are present in data,
// stopping at (and consuming) the blank line that terminates the header
// block. It returns the number of bytes consumed and whether the block is
// complete; on a malformed line or an over-long line it returns an error
// and n == 0, since a partially-parsed header block can't be resumed.
//
// Used when a caller already has the whole header block buffered; a
// caller reading one line at a time off a streaming source (such as
// httpparse.Parser, which can't assume the full block ever sits in memory
// at once) calls ParseLine directly instead.
func (h *Headers) Parse(data []byte) (n int, done bool, err error) {
	off := 0
	for {
		idx := bytes.Index(data[off:], separator)
		if idx == -1 {
			if len(data)-off > maxHeaderLine {
				return 0, false, ErrHeaderLineTooLong
			}
			return off, false, nil // need more bytes
		}
		if idx > maxHeaderLine {
			return 0, false, ErrHeaderLineTooLong
		}

		line := data[off : off+idx]
		off += idx + len(separator)

		if len(line) == 0 {
			return off, true, nil
		}

		name, val, err := ParseLine(line)
		if err != nil {
			return 0, false, err
		}
		h.Add(name, val)
	}
}

// ParseLine validates and splits one header line (no CRLF/LF terminator)
// into its lowercased name and trimmed value. It rejects obsolete line
// folding (a line starting with SP/HTAB), a missing or leading colon, and
// a name containing anything outside the RFC 7230 token character set.
func ParseLine(line []byte) (name, value string, err error) {
	if len(line) == 0 {
		return "", "", ErrMalformedHeaderLine
	}
	if line[0] == ' ' || line[0] == '\t' {
		return "", "", ErrMalformedHeaderLine
	}

	colon := bytes.IndexByte(line, ':')
	if colon <= 0 {
		return "", "", ErrMalformedHeaderLine
	}

	nameRaw := line[:colon]
	if bytes.ContainsAny(nameRaw, " \t") {
		return "", "", ErrMalformedHeaderLine
	}
	if !isTokenTable(nameRaw) {
		return "", "", ErrMalformedHeaderLine
	}

	val := strings.Trim(string(line[colon+1:]), " \t")
	return strings.ToLower(string(nameRaw)), val, nil
}

var allowed [256]bool

func init() {
	for c := byte('0'); c <= '9'; c++ {
		allowed[c] = true
	}
	for c := byte('A'); c <= 'Z'; c++ {
		allowed[c] = true
	}
	for c := byte('a'); c <= 'z'; c++ {
		allowed[c] = true
	}
	for _, c := range []byte("!#$%&'*+-.^_`|~") {
		allowed[c] = true
	}
}

func isTokenTable(b []byte) bool {
	if len(b) == 0 {
		return false
	}
	for _, c := range b {
		if c > 127 || !allowed[c] {
			return false
		}
	}
	return true
}
