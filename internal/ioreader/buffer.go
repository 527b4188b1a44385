package ioreader

import "github.com/valyala/bytebufferpool"

// bufferPool leases the backing arrays for every Buffer in the process.
// Capacity varies per Reader (a 64-byte reader exercises line reassembly
// differently than a 64KiB one) so the pool just hands back whatever
// backing array it has and we grow it in place if it's too small; the
// pool still avoids a fresh allocation on the common path where readers
// are opened and closed at the same capacity over and over.
var bufferPool bytebufferpool.Pool

// buffer is a byte sequence with a fixed capacity, a logical read position
// and a valid-byte count. Invariant: cap > 0; pos <= count; data[pos:count]
// is valid and unread.
type buffer struct {
	pooled *bytebufferpool.ByteBuffer
	data   []byte
	cap    int
	pos    int
	count  int
}

func newBuffer(capacity int) *buffer {
	if capacity <= 0 {
		panic("ioreader: buffer capacity must be positive")
	}
	pb := bufferPool.Get()
	if cap(pb.B) < capacity {
		pb.B = make([]byte, capacity)
	}
	pb.B = pb.B[:capacity]
	return &buffer{pooled: pb, data: pb.B, cap: capacity}
}

// release returns the backing array to the pool. The buffer must not be
// used afterwards.
func (b *buffer) release() {
	b.pooled.Reset()
	bufferPool.Put(b.pooled)
}

// len reports the number of unread, buffered bytes.
func (b *buffer) len() int { return b.count - b.pos }

// free reports the number of bytes of spare capacity past count.
func (b *buffer) free() int { return b.cap - b.count }

// at returns the i'th unread byte (0-indexed from pos).
func (b *buffer) at(i int) byte { return b.data[b.pos+i] }

// compact slides unread bytes down to offset 0, reclaiming the space
// consumed bytes occupied.
func (b *buffer) compact() {
	if b.pos == 0 {
		return
	}
	n := copy(b.data, b.data[b.pos:b.count])
	b.count = n
	b.pos = 0
}

// copyOut copies the next n unread bytes into dst without consuming them.
// Precondition: n <= b.len().
func (b *buffer) copyOut(dst []byte, n int) {
	copy(dst, b.data[b.pos:b.pos+n])
}

// advance moves pos forward by n, optionally copying the skipped bytes
// into dst first. Precondition: n <= b.len().
func (b *buffer) advance(dst []byte, n int) {
	if dst != nil {
		b.copyOut(dst, n)
	}
	b.pos += n
}
