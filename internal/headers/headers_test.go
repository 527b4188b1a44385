package headers

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestHeadersParsing(t *testing.T) {
	// Valid single header
	h := NewHeaders()
	data := []byte("host: localhost:42069\r\n\r\n")
	n, done, err := h.Parse(data)
	require.NoError(t, err)
	assert.Equal(t, "localhost:42069", h.Get("host"))
	assert.Equal(t, len(data), n)
	assert.True(t, done)

	// Invalid spacing before colon
	h = NewHeaders()
	data = []byte("       Host : localhost:42069       \r\n\r\n")
	n, done, err = h.Parse(data)
	require.Error(t, err)
	assert.Equal(t, 0, n)
	assert.False(t, done)

	// Repeated headers are preserved in order, not merged
	h = NewHeaders()
	data = []byte("host: localhost:42069\r\nX-Person: some1   \r\nX-Person: some2   \r\nX-Person: some3   \r\n\r\n")
	n, done, err = h.Parse(data)
	require.NoError(t, err)
	assert.Equal(t, "localhost:42069", h.Get("host"))
	assert.Equal(t, "some1", h.Get("x-person")) // Get returns the first occurrence
	assert.Equal(t, []string{"some1", "some2", "some3"}, h.GetAll("x-person"))
	assert.Equal(t, len(data), n)
	assert.True(t, done)

	// Valid, two lines + terminator, case-insensitive lookup
	data = []byte("Host: localhost:42069\r\nXforward: somethingdddd   \r\n\r\n")
	h = NewHeaders()
	n, done, err = h.Parse(data)
	require.NoError(t, err)
	require.True(t, done)
	assert.Equal(t, len(data), n)
	assert.Equal(t, "localhost:42069", h.Get("Host"))
	assert.Equal(t, "somethingdddd", h.Get("XForward"))

	// Space before colon => invalid
	_, _, err = NewHeaders().Parse([]byte("Host : localhost\r\n\r\n"))
	require.Error(t, err)

	// Long line without CRLF => ErrHeaderLineTooLong
	big := bytes.Repeat([]byte("A"), maxHeaderLine+1)
	_, _, err = NewHeaders().Parse(append(big, 'B'))
	require.ErrorIs(t, err, ErrHeaderLineTooLong)

	// Duplicate header => both occurrences kept, in wire order
	h = NewHeaders()
	n, done, err = h.Parse([]byte("Vary: accept\r\nVary: encoding\r\n\r\n"))
	require.NoError(t, err)
	assert.True(t, done)
	assert.Equal(t, []string{"accept", "encoding"}, h.GetAll("Vary"))
}

func TestHeadersOverrideReplacesAllOccurrences(t *testing.T) {
	h := NewHeaders()
	h.Add("x-trace", "a")
	h.Add("x-trace", "b")
	h.Add("content-type", "text/plain")

	h.Override("x-trace", "final")

	assert.Equal(t, []string{"final"}, h.GetAll("x-trace"))
	assert.Equal(t, 2, h.Len())
}

func TestHeadersOverrideAddsWhenAbsent(t *testing.T) {
	h := NewHeaders()
	h.Override("content-length", "0")
	assert.Equal(t, "0", h.Get("content-length"))
}

func TestHeadersDeleteRemovesAllOccurrences(t *testing.T) {
	h := NewHeaders()
	h.Add("x-trace", "a")
	h.Add("x-trace", "b")
	h.Delete("x-trace")
	assert.False(t, h.Has("x-trace"))
	assert.Equal(t, 0, h.Len())
}

func TestParseLineLowercasesNameAndTrimsValue(t *testing.T) {
	name, value, err := ParseLine([]byte("X-Forwarded-For:  10.0.0.1  "))
	require.NoError(t, err)
	assert.Equal(t, "x-forwarded-for", name)
	assert.Equal(t, "10.0.0.1", value)
}

func TestParseLineRejectsFoldedLine(t *testing.T) {
	_, _, err := ParseLine([]byte(" folded: value"))
	assert.ErrorIs(t, err, ErrMalformedHeaderLine)
}

func TestHeadersListPreservesWireOrder(t *testing.T) {
	h := NewHeaders()
	_, _, err := h.Parse([]byte("b: 2\r\na: 1\r\n\r\n"))
	require.NoError(t, err)
	require.Equal(t, 2, h.Len())
	assert.Equal(t, "b", h.List()[0].Name)
	assert.Equal(t, "a", h.List()[1].Name)
}
