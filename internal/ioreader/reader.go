// Package ioreader implements a buffered, blocking, single-owner adapter
// between a byte-stream descriptor and a parser. It owns a byte buffer with
// a fixed capacity and exposes peek, consume and prefetch primitives; it
// never shares state across concurrent callers and never yields to a
// scheduler — every suspension point is a blocking Read on the underlying
// descriptor.
package ioreader

import (
	"io"

	"httpd/internal/httperr"
)

// Reader is the Byte Reader. A Reader must not be used from more than one
// goroutine, and must not be used after Close.
type Reader struct {
	buf   *buffer
	src   io.Reader
	id    string
	nread int64
}

// New wraps src (typically a net.Conn) with a Byte Reader of the given
// buffer capacity. id identifies the descriptor for logging/metrics; it
// carries no protocol meaning.
func New(src io.Reader, capacity int, id string) *Reader {
	return &Reader{buf: newBuffer(capacity), src: src, id: id}
}

// Close releases the Reader's buffer back to its pool. The Reader must not
// be used afterwards.
func (r *Reader) Close() {
	r.buf.release()
}

// ID returns the descriptor identifier the Reader was constructed with.
func (r *Reader) ID() string { return r.id }

// TotalConsumed returns the number of bytes consumed (by ReadN/ConsumeN)
// since construction. Peeked-but-unconsumed bytes don't count.
func (r *Reader) TotalConsumed() int64 { return r.nread }

// Buffered returns the number of bytes currently sitting in the buffer,
// unread. Useful for line-scanning callers that want to work directly
// against what's already arrived before prefetching more.
func (r *Reader) Buffered() int { return r.buf.len() }

// At returns the i'th buffered-but-unread byte. Precondition: i < Buffered().
func (r *Reader) At(i int) byte { return r.buf.at(i) }

// Prefetch ensures up to n bytes are buffered, reading from the descriptor
// to fill free space as needed. It returns nil if any bytes are now
// buffered (even fewer than n — partial progress collapses into success),
// httperr.ErrEOF if the descriptor cleanly closed with an empty buffer, or
// httperr.ErrFailedRead on a transport failure.
func (r *Reader) Prefetch(n int) error {
	if r.buf.len() >= n {
		return nil
	}
	if n > r.buf.cap {
		n = r.buf.cap
	}

	r.buf.compact()
	if r.buf.free() == 0 {
		// Buffer is full of unread bytes already (n was clamped to cap);
		// nothing more to fetch.
		return nil
	}

	read, err := r.src.Read(r.buf.data[r.buf.count:r.buf.cap])
	if read > 0 {
		r.buf.count += read
		return nil
	}
	if err == io.EOF {
		if r.buf.len() == 0 {
			return httperr.ErrEOF
		}
		return nil
	}
	if err != nil {
		return httperr.Wrap(httperr.ErrFailedRead, err.Error())
	}
	return nil
}

// PeekN copies the next n buffered bytes into dst without consuming them.
// Returns httperr.ErrOOB if fewer than n bytes are currently buffered; it
// never itself triggers a read — call Prefetch first.
func (r *Reader) PeekN(dst []byte, n int) error {
	if r.buf.len() < n {
		return httperr.ErrOOB
	}
	r.buf.copyOut(dst, n)
	return nil
}

// ReadN copies and consumes exactly n bytes into dst, calling Prefetch as
// needed. Fails with httperr.ErrEOF if the stream ends before n bytes have
// arrived.
func (r *Reader) ReadN(dst []byte, n int) error {
	read := 0
	for read < n {
		want := n - read
		if err := r.Prefetch(want); err != nil {
			return err
		}
		take := r.buf.len()
		if take > want {
			take = want
		}
		if take == 0 {
			return httperr.ErrEOF
		}
		if dst != nil {
			r.buf.advance(dst[read:read+take], take)
		} else {
			r.buf.advance(nil, take)
		}
		read += take
		r.nread += int64(take)
	}
	return nil
}

// ConsumeN advances the logical read position by n, optionally copying the
// skipped bytes into dst. Precondition: n bytes are already buffered
// (callers arrange this via Prefetch/Buffered).
func (r *Reader) ConsumeN(dst []byte, n int) {
	r.buf.advance(dst, n)
	r.nread += int64(n)
}
