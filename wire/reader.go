package wire

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Reader is a cursor over one in-memory byte slice. It never reads past the
// end of the buffer; the first failure sticks and later reads become no-ops
// returning zero values.
type Reader struct {
	buf []byte
	pos int
	err error
}

// NewReader creates a Reader positioned at the start of buf.
func NewReader(buf []byte) *Reader {
	return &Reader{buf: buf}
}

// Err returns the first error encountered, if any.
func (r *Reader) Err() error { return r.err }

// Pos returns the current byte offset.
func (r *Reader) Pos() int { return r.pos }

// Remaining returns the number of unread bytes.
func (r *Reader) Remaining() int { return len(r.buf) - r.pos }

// setError records the first non-nil error.
func (r *Reader) setError(err error) {
	if r.err == nil && err != nil {
		r.err = err
	}
}

// take consumes exactly n bytes, or fails with ErrInsufficientData.
func (r *Reader) take(n int) []byte {
	if r.err != nil {
		return nil
	}
	if r.Remaining() < n {
		r.setError(fmt.Errorf("%w: need %d bytes, have %d", ErrInsufficientData, n, r.Remaining()))
		return nil
	}
	b := r.buf[r.pos : r.pos+n]
	r.pos += n
	return b
}

// Uint32 reads a 32-bit unsigned integer, little-endian.
func (r *Reader) Uint32() uint32 {
	b := r.take(4)
	if r.err != nil {
		return 0
	}
	return binary.LittleEndian.Uint32(b)
}

// Int32 reads a 32-bit signed integer, little-endian.
func (r *Reader) Int32() int32 {
	return int32(r.Uint32())
}

// Int64 reads a 64-bit signed integer, little-endian.
func (r *Reader) Int64() int64 {
	b := r.take(8)
	if r.err != nil {
		return 0
	}
	return int64(binary.LittleEndian.Uint64(b))
}

// Double reads a 64-bit IEEE-754 float, little-endian.
func (r *Reader) Double() float64 {
	b := r.take(8)
	if r.err != nil {
		return 0
	}
	return math.Float64frombits(binary.LittleEndian.Uint64(b))
}

// Bool reads a boolean magic id. Any other value fails with an
// UnexpectedConstructorError.
func (r *Reader) Bool() bool {
	id := r.Uint32()
	if r.err != nil {
		return false
	}
	switch id {
	case BoolTrueID:
		return true
	case BoolFalseID:
		return false
	default:
		r.setError(&UnexpectedConstructorError{ID: id})
		return false
	}
}

// Bytes reads a length-prefixed blob, consuming its zero padding.
// The returned slice is a copy and remains valid after further reads.
func (r *Reader) Bytes() []byte {
	if r.err != nil {
		return nil
	}
	first := r.take(1)
	if r.err != nil {
		return nil
	}

	var n, header int
	if first[0] != longLenMarker {
		n = int(first[0])
		header = 1
	} else {
		lb := r.take(3)
		if r.err != nil {
			return nil
		}
		n = int(lb[0]) | int(lb[1])<<8 | int(lb[2])<<16
		header = 4
	}

	payload := r.take(n)
	if r.err != nil {
		return nil
	}
	r.take(blobPadding(header + n))
	if r.err != nil {
		return nil
	}

	out := make([]byte, n)
	copy(out, payload)
	return out
}

// String reads a blob-encoded UTF-8 string.
func (r *Reader) String() string {
	return string(r.Bytes())
}

// Int128 reads exactly 16 raw bytes.
func (r *Reader) Int128() []byte {
	return r.fixed(Int128Len)
}

// Int256 reads exactly 32 raw bytes.
func (r *Reader) Int256() []byte {
	return r.fixed(Int256Len)
}

func (r *Reader) fixed(size int) []byte {
	b := r.take(size)
	if r.err != nil {
		return nil
	}
	out := make([]byte, size)
	copy(out, b)
	return out
}

// VectorHeader reads the boxed-sequence marker and returns the item count.
// A marker mismatch fails with an UnexpectedConstructorError; a negative
// count fails with ErrInvalidLength.
func (r *Reader) VectorHeader() int {
	id := r.Uint32()
	if r.err != nil {
		return 0
	}
	if id != VectorID {
		r.setError(&UnexpectedConstructorError{ID: id})
		return 0
	}
	return r.BareVectorHeader()
}

// BareVectorHeader reads only the item count, with no marker.
func (r *Reader) BareVectorHeader() int {
	n := r.Int32()
	if r.err != nil {
		return 0
	}
	if n < 0 {
		r.setError(fmt.Errorf("%w: negative sequence count %d", ErrInvalidLength, n))
		return 0
	}
	return int(n)
}

// Raw consumes exactly n bytes verbatim, returning a copy.
func (r *Reader) Raw(n int) []byte {
	return r.fixed(n)
}

// Rest consumes and returns all remaining bytes.
func (r *Reader) Rest() []byte {
	return r.fixed(r.Remaining())
}
