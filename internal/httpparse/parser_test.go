package httpparse

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"httpd/internal/httperr"
	"httpd/internal/ioreader"
)

func newTestParser(t *testing.T, msg string) *Parser {
	t.Helper()
	r := ioreader.New(strings.NewReader(msg), 64, "test")
	t.Cleanup(r.Close)
	return NewParser(r, DefaultLimits)
}

func TestParseStartLineGet(t *testing.T) {
	p := newTestParser(t, "GET /foo/bar HTTP/1.1\r\nHost: x\r\n\r\n")
	require.NoError(t, p.ParseStartLine())
	assert.Equal(t, MethodGet, p.Method)
	assert.Equal(t, "/foo/bar", p.URI)
	assert.Equal(t, Version{Major: 1, Minor: 1}, p.Version)
	assert.Equal(t, StageHeaders, p.Stage())
}

func TestParseStartLineWrongStage(t *testing.T) {
	p := newTestParser(t, "GET / HTTP/1.1\r\n\r\n")
	require.NoError(t, p.ParseStartLine())
	err := p.ParseStartLine()
	assert.ErrorIs(t, err, httperr.ErrWrongStage)
}

func TestParseStartLineMalformed(t *testing.T) {
	p := newTestParser(t, "GET /foo\r\n\r\n")
	err := p.ParseStartLine()
	require.Error(t, err)
}

func TestParseHeadersNoBody(t *testing.T) {
	p := newTestParser(t, "GET / HTTP/1.1\r\nHost: example.com\r\nX-A: 1\r\n\r\n")
	require.NoError(t, p.ParseStartLine())
	require.NoError(t, p.ParseHeaders())
	assert.Equal(t, "example.com", p.Headers.Get("host"))
	assert.Equal(t, "1", p.Headers.Get("x-a"))
	assert.Equal(t, StageBody, p.Stage())
	assert.False(t, p.IsFinished())

	n, err := p.StreamBody(make([]byte, 4))
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.True(t, p.IsFinished())
}

func TestParseHeadersMalformedContentLengthIsIgnored(t *testing.T) {
	p := newTestParser(t, "GET / HTTP/1.1\r\nContent-Length: bogus\r\n\r\n")
	require.NoError(t, p.ParseStartLine())
	require.NoError(t, p.ParseHeaders())
	assert.Equal(t, int64(0), p.ContentLength)
	assert.Equal(t, "bogus", p.Headers.Get("content-length"))
	assert.Equal(t, StageBody, p.Stage())
}

func TestParseHeadersWithBody(t *testing.T) {
	body := "hello world"
	msg := "POST /x HTTP/1.1\r\nContent-Length: 11\r\n\r\n" + body
	p := newTestParser(t, msg)
	require.NoError(t, p.ParseStartLine())
	require.NoError(t, p.ParseHeaders())
	assert.Equal(t, int64(11), p.ContentLength)
	assert.Equal(t, StageBody, p.Stage())

	buf := make([]byte, 4)
	var got []byte
	for !p.IsFinished() {
		n, err := p.StreamBody(buf)
		require.NoError(t, err)
		got = append(got, buf[:n]...)
	}
	assert.Equal(t, body, string(got))
	assert.True(t, p.IsFinished())
}

func TestParseHeadersMalformedLine(t *testing.T) {
	p := newTestParser(t, "GET / HTTP/1.1\r\nBadHeaderLine\r\n\r\n")
	require.NoError(t, p.ParseStartLine())
	err := p.ParseHeaders()
	require.Error(t, err)
}
