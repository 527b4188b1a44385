// Package response implements the Response facade handed to handlers: a
// connection-bound writer with an idempotent Send -- calling it twice, or
// writing a body chunk before calling it, logs a warning and is otherwise
// a no-op rather than an error, since a handler's control flow shouldn't
// have to thread a write error through every response call.
package response

import (
	"fmt"
	"io"
	"strconv"

	"go.uber.org/zap"

	"httpd/internal/headers"
	"httpd/internal/httperr"
	"httpd/internal/httplog"
	"httpd/internal/httpparse"
)

const httpVersion = "HTTP/1.1"

// Writer composes and sends one HTTP/1.1 response over a connection.
type Writer struct {
	conn    io.Writer
	peer    string
	Status  httpparse.Status
	Headers headers.Headers

	sent bool
}

// NewWriter returns a Writer bound to conn. peer is the formatted peer
// address, used only to make warning log lines actionable.
func NewWriter(conn io.Writer, peer string) *Writer {
	return &Writer{conn: conn, peer: peer, Status: httpparse.StatusOK, Headers: headers.NewHeaders()}
}

// Send writes the status line and headers, and marks the response sent.
// contentLength is written as Content-Length regardless of any value set
// in w.Headers (which is stripped of any prior Content-Length first).
// A second call to Send is ignored, with a warning logged, since sending
// a status line twice on the same connection can't be recovered from.
func (w *Writer) Send(status httpparse.Status, contentLength int) error {
	if w.sent {
		httplog.Get().Warn("duplicate call to Send ignored",
			zap.String("peer", w.peer), zap.Int("status", int(status)))
		return nil
	}

	w.Status = status
	w.Headers.Override("content-length", strconv.Itoa(contentLength))

	if _, err := fmt.Fprintf(w.conn, "%s %d %s\r\n", httpVersion, int(status), status.Reason()); err != nil {
		return httperr.Wrap(httperr.ErrFailedWrite, err.Error())
	}

	for _, h := range w.Headers.List() {
		if _, err := fmt.Fprintf(w.conn, "%s: %s\r\n", canonicalHeaderName(h.Name), h.Value); err != nil {
			return httperr.Wrap(httperr.ErrFailedWrite, err.Error())
		}
	}
	if _, err := io.WriteString(w.conn, "\r\n"); err != nil {
		return httperr.Wrap(httperr.ErrFailedWrite, err.Error())
	}

	w.sent = true
	return nil
}

// WriteBodyChunk writes a chunk of the response body. Calling it before
// Send logs a warning and is a no-op, mirroring Send's idempotency story:
// a misused response shouldn't crash a handler mid-flight.
func (w *Writer) WriteBodyChunk(chunk []byte) (int, error) {
	if !w.sent {
		httplog.Get().Warn("body chunk written before Send; ignoring",
			zap.String("peer", w.peer))
		return 0, nil
	}

	n, err := w.conn.Write(chunk)
	if err != nil {
		return n, httperr.Wrap(httperr.ErrFailedWrite, err.Error())
	}
	return n, nil
}

// canonicalHeaderName renders a lowercased header name in its conventional
// Title-Case wire form, e.g. "content-type" -> "Content-Type".
func canonicalHeaderName(name string) string {
	out := []byte(name)
	upperNext := true
	for i, c := range out {
		if c == '-' {
			upperNext = true
			continue
		}
		if upperNext && c >= 'a' && c <= 'z' {
			out[i] = c - ('a' - 'A')
		}
		upperNext = false
	}
	return string(out)
}
