// Package request implements the Request facade handed to handlers: the
// parsed method, URL, headers and path captures of one HTTP/1.1 request,
// plus streaming access to its body. A Request is built from a
// httpparse.Parser that has already run its start-line and headers
// stages; the facade itself only drives the body stage, on demand.
package request

import (
	"httpd/internal/headers"
	"httpd/internal/httperr"
	"httpd/internal/httpparse"
	"httpd/internal/path"
	"httpd/internal/urlparse"
)

// Request is the per-connection view a handler receives. Fields are
// populated once, before the handler runs; ReadBodyChunk is the only
// method a handler calls repeatedly.
type Request struct {
	Method  httpparse.Method
	Version httpparse.Version
	URL     urlparse.URL
	Headers headers.Headers

	ContentLength int64
	RemoteAddr    string

	pathComponents []string
	pathCaptures   [][]string

	parser *httpparse.Parser
}

// FromParser builds a Request from a parser that has completed its
// start-line and headers stages. remoteAddr is the formatted peer address
// (see httpsock); it carries no protocol meaning but is surfaced to
// handlers and logging.
func FromParser(p *httpparse.Parser, remoteAddr string) (*Request, error) {
	u, err := urlparse.Parse(p.URI)
	if err != nil {
		return nil, httperr.Wrap(err, "parsing request-target")
	}

	return &Request{
		Method:         p.Method,
		Version:        p.Version,
		URL:            u,
		Headers:        p.Headers,
		ContentLength:  p.ContentLength,
		RemoteAddr:     remoteAddr,
		pathComponents: path.Split(u.Path),
		parser:         p,
	}, nil
}

// PathComponents returns the request path split into components, the same
// way a registered pattern is.
func (r *Request) PathComponents() []string { return r.pathComponents }

// SetPathCaptures is called by the router once it has matched a pattern,
// recording which path components each of the pattern's wildcards bound.
func (r *Request) SetPathCaptures(caps [][]string) { r.pathCaptures = caps }

// PathVar returns the path components captured by the pos'th wildcard in
// the pattern that routed this request. Returns nil if the pattern has no
// wildcard at that position or the request hasn't been routed yet.
func (r *Request) PathVar(pos int) []string {
	if pos < 0 || pos >= len(r.pathCaptures) {
		return nil
	}
	return r.pathCaptures[pos]
}

// ReadBodyChunk reads up to len(chunk) bytes of the request body into
// chunk. It returns httperr.ErrCont while more body remains to be read,
// and nil once the body has been fully consumed (chunk may still have
// been partially filled on that final call).
func (r *Request) ReadBodyChunk(chunk []byte) (int, error) {
	if r.parser.IsFinished() {
		return 0, nil
	}

	n, err := r.parser.StreamBody(chunk)
	if err != nil {
		return n, err
	}
	if r.parser.IsFinished() {
		return n, nil
	}
	return n, httperr.ErrCont
}
