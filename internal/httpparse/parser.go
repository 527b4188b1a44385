// Package httpparse implements the staged HTTP/1.1 message parser: a
// request is read in order through a start-line stage, a headers stage and
// a body stage, each of which must run to completion before the next can
// start. Every parse call is blocking -- it reads from the underlying
// Reader as needed and returns once it has a full stage's worth of data or
// an error.
package httpparse

import (
	"strconv"
	"strings"

	"go.uber.org/zap"

	"httpd/internal/headers"
	"httpd/internal/httperr"
	"httpd/internal/httplog"
	"httpd/internal/ioreader"
)

// Stage is the parser's current position in the request lifecycle. Stages
// only ever move forward.
type Stage int

const (
	StageStartLine Stage = iota
	StageHeaders
	StageBody
	StageDone
)

// Version is the HTTP version named on the request line.
type Version struct {
	Major, Minor int
}

// Limits bounds how much the parser will buffer before giving up, so a
// client can't force unbounded memory growth with a line that never ends.
type Limits struct {
	MaxMethodLen int
	MaxURILen    int
	MaxLineLen   int // headers and the version token
}

// DefaultLimits matches the capacities the rest of the engine defaults to.
var DefaultLimits = Limits{MaxMethodLen: 16, MaxURILen: 8192, MaxLineLen: 8192}

// Parser drives a Reader through the request-line/headers/body stages.
// A Parser must not be used from more than one goroutine.
type Parser struct {
	r      *ioreader.Reader
	limits Limits
	stage  Stage

	Method  Method
	URI     string
	Version Version
	Headers headers.Headers

	ContentLength int64

	lastReaderPos   int64
	bodyStartOffset int64 // -1 until the body stage has read its first byte
	lastReadCount   int64
}

// NewParser wraps r with a request parser. limits bounds line lengths;
// pass DefaultLimits when the caller has no specific requirement.
func NewParser(r *ioreader.Reader, limits Limits) *Parser {
	return &Parser{
		r:               r,
		limits:          limits,
		Headers:         headers.NewHeaders(),
		bodyStartOffset: -1,
	}
}

// Stage returns the parser's current stage.
func (p *Parser) Stage() Stage { return p.stage }

// IsFinished reports whether the parser has reached StageDone.
func (p *Parser) IsFinished() bool { return p.stage >= StageDone }

// LastRead returns the number of bytes the most recent stage call consumed
// from the underlying Reader.
func (p *Parser) LastRead() int64 { return p.lastReadCount }

// TotalRead returns the total number of bytes consumed since construction.
func (p *Parser) TotalRead() int64 { return p.r.TotalConsumed() }

// BodySize returns the number of body bytes read so far.
func (p *Parser) BodySize() int64 {
	if p.bodyStartOffset == -1 {
		return 0
	}
	return p.r.TotalConsumed() - p.bodyStartOffset
}

func advanceStage(p *Parser) {
	if p.stage < StageDone {
		p.stage++
	}
}

// receiveLine reads one CRLF- or LF-terminated line, the terminator
// included, blocking on the Reader as needed. maxLen bounds the line
// including its terminator.
func receiveLine(r *ioreader.Reader, maxLen int) ([]byte, error) {
	var line []byte
	for {
		if r.Buffered() == 0 {
			if err := r.Prefetch(maxLen); err != nil {
				return nil, err
			}
			if r.Buffered() == 0 {
				continue
			}
		}

		n := r.Buffered()
		for i := 0; i < n; i++ {
			c := r.At(i)
			if c != '\r' && c != '\n' {
				continue
			}
			chunk := make([]byte, i+1)
			r.ConsumeN(chunk, i+1)
			line = append(line, chunk...)

			if c == '\r' {
				if err := r.Prefetch(1); err != nil && err != httperr.ErrEOF {
					return nil, err
				}
				if r.Buffered() > 0 && r.At(0) == '\n' {
					b := make([]byte, 1)
					r.ConsumeN(b, 1)
					line = append(line, b...)
				}
			}

			if len(line) > maxLen {
				return nil, httperr.ErrURLTooLong
			}
			return line, nil
		}

		chunk := make([]byte, n)
		r.ConsumeN(chunk, n)
		line = append(line, chunk...)
		if len(line) > maxLen {
			return nil, httperr.ErrURLTooLong
		}
	}
}

func trimCRLF(line []byte) []byte {
	line = trimSuffixByte(line, '\n')
	line = trimSuffixByte(line, '\r')
	return line
}

func trimSuffixByte(b []byte, c byte) []byte {
	if len(b) > 0 && b[len(b)-1] == c {
		return b[:len(b)-1]
	}
	return b
}

func parseVersion(s string) (Version, bool) {
	const prefix = "HTTP/"
	if !strings.HasPrefix(s, prefix) {
		return Version{}, false
	}
	s = s[len(prefix):]
	dot := strings.IndexByte(s, '.')
	if dot < 0 {
		return Version{}, false
	}
	maj, err := strconv.Atoi(s[:dot])
	if err != nil {
		return Version{}, false
	}
	min, err := strconv.Atoi(s[dot+1:])
	if err != nil {
		return Version{}, false
	}
	return Version{Major: maj, Minor: min}, true
}

// ParseStartLine parses the request line (method, request-target, HTTP
// version). The parser must be at StageStartLine.
func (p *Parser) ParseStartLine() error {
	if p.stage != StageStartLine {
		return httperr.ErrWrongStage
	}
	p.lastReaderPos = p.r.TotalConsumed()

	line, err := receiveLine(p.r, p.limits.MaxLineLen)
	if err != nil {
		return err
	}
	p.lastReadCount = p.r.TotalConsumed() - p.lastReaderPos

	defer advanceStage(p)

	text := string(trimCRLF(line))
	fields := strings.Fields(text)
	if len(fields) != 3 {
		return httperr.ErrFailedParse
	}
	methodTok, uriTok, versionTok := fields[0], fields[1], fields[2]

	if len(methodTok) == 0 || len(methodTok) > p.limits.MaxMethodLen {
		return httperr.ErrFailedParse
	}
	if len(uriTok) > p.limits.MaxURILen {
		return httperr.ErrURLTooLong
	}

	version, ok := parseVersion(versionTok)
	if !ok {
		return httperr.ErrFailedParse
	}

	p.Method = MethodFromString(methodTok)
	p.URI = uriTok
	p.Version = version
	return nil
}

// ParseHeaders parses the header block, stopping at (and consuming) the
// blank line that terminates it. The parser must be at StageHeaders.
func (p *Parser) ParseHeaders() error {
	if p.stage != StageHeaders {
		return httperr.ErrWrongStage
	}
	defer advanceStage(p)
	p.lastReaderPos = p.r.TotalConsumed()

	for {
		line, err := receiveLine(p.r, p.limits.MaxLineLen)
		if err != nil {
			return err
		}

		trimmed := trimCRLF(line)
		if len(trimmed) == 0 {
			break
		}

		name, value, parseErr := headers.ParseLine(trimmed)
		if parseErr != nil {
			return httperr.ErrFailedParse
		}

		if name == "content-length" {
			n, convErr := strconv.ParseInt(value, 10, 64)
			if convErr != nil {
				httplog.Get().Warn("failed to parse Content-Length",
					zap.String("conn_id", p.r.ID()), zap.String("value", value))
			} else {
				p.ContentLength = n
			}
		}

		p.Headers.Add(name, value)
	}

	p.lastReadCount = p.r.TotalConsumed() - p.lastReaderPos
	return nil
}

// StreamBody reads up to len(chunk) bytes of body into chunk. The parser
// must be at StageBody; it advances to StageDone once Content-Length bytes
// have been read.
func (p *Parser) StreamBody(chunk []byte) (int, error) {
	if p.stage != StageBody {
		return 0, httperr.ErrWrongStage
	}
	if p.ContentLength == 0 {
		advanceStage(p)
		return 0, nil
	}

	if p.bodyStartOffset == -1 {
		p.bodyStartOffset = p.r.TotalConsumed()
	}

	remaining := p.ContentLength - p.BodySize()
	toRead := int64(len(chunk))
	if remaining < toRead {
		toRead = remaining
	}

	before := p.r.TotalConsumed()
	if err := p.r.ReadN(chunk[:toRead], int(toRead)); err != nil {
		return 0, err
	}
	p.lastReadCount = p.r.TotalConsumed() - before

	if p.BodySize() == p.ContentLength {
		advanceStage(p)
	}
	return int(toRead), nil
}

// ParseStatusLine would parse a response status line ("HTTP/1.1 200 OK").
// This engine only ever parses requests, so it's unimplemented; a client
// built on top of httpparse would need to fill this in.
func (p *Parser) ParseStatusLine() error {
	return httperr.ErrNotImplemented
}
