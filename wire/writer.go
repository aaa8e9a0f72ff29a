package wire

import (
	"encoding/binary"
	"fmt"
	"math"
)

var zeroPad [4]byte

// Writer appends TL-encoded values to an in-memory buffer.
// It tracks the first error; subsequent writes become no-ops.
type Writer struct {
	buf []byte
	err error
}

// NewWriter creates an empty Writer.
func NewWriter() *Writer {
	return &Writer{}
}

// NewWriterSize creates a Writer with pre-allocated capacity.
func NewWriterSize(capacity int) *Writer {
	return &Writer{buf: make([]byte, 0, capacity)}
}

// Err returns the first error encountered, if any.
func (w *Writer) Err() error { return w.err }

// Len returns the number of bytes written so far.
func (w *Writer) Len() int { return len(w.buf) }

// Bytes returns a view of the written data. The slice is only valid until
// the next write.
func (w *Writer) Bytes() []byte { return w.buf }

// Result returns the written data and the final error state.
func (w *Writer) Result() ([]byte, error) {
	if w.err != nil {
		return nil, w.err
	}
	return w.buf, nil
}

// Reset allows the underlying buffer to be reused.
func (w *Writer) Reset() {
	w.buf = w.buf[:0]
	w.err = nil
}

// setError records the first non-nil error.
func (w *Writer) setError(err error) {
	if w.err == nil && err != nil {
		w.err = err
	}
}

// PutUint32 writes a 32-bit unsigned integer, little-endian.
func (w *Writer) PutUint32(v uint32) {
	if w.err != nil {
		return
	}
	w.buf = binary.LittleEndian.AppendUint32(w.buf, v)
}

// PutInt32 writes a 32-bit signed integer, little-endian.
func (w *Writer) PutInt32(v int32) {
	w.PutUint32(uint32(v))
}

// PutInt64 writes a 64-bit signed integer, little-endian.
func (w *Writer) PutInt64(v int64) {
	if w.err != nil {
		return
	}
	w.buf = binary.LittleEndian.AppendUint64(w.buf, uint64(v))
}

// PutDouble writes a 64-bit IEEE-754 float, little-endian.
func (w *Writer) PutDouble(v float64) {
	if w.err != nil {
		return
	}
	w.buf = binary.LittleEndian.AppendUint64(w.buf, math.Float64bits(v))
}

// PutBool writes the boolean magic id.
func (w *Writer) PutBool(v bool) {
	if v {
		w.PutUint32(BoolTrueID)
	} else {
		w.PutUint32(BoolFalseID)
	}
}

// PutBytes writes a length-prefixed blob, zero-padded so the whole encoding
// is a multiple of 4 bytes.
func (w *Writer) PutBytes(b []byte) {
	if w.err != nil {
		return
	}
	n := len(b)
	header := 1
	switch {
	case n <= maxShortLen:
		w.buf = append(w.buf, byte(n))
	case n <= maxBlobLen:
		w.buf = append(w.buf, longLenMarker, byte(n), byte(n>>8), byte(n>>16))
		header = 4
	default:
		w.setError(fmt.Errorf("%w: %d bytes", ErrBlobTooLarge, n))
		return
	}
	w.buf = append(w.buf, b...)
	w.buf = append(w.buf, zeroPad[:blobPadding(header+n)]...)
}

// PutString writes a UTF-8 string, blob-encoded.
func (w *Writer) PutString(s string) {
	w.PutBytes([]byte(s))
}

// PutInt128 writes exactly 16 raw bytes. Any other input length fails.
func (w *Writer) PutInt128(b []byte) {
	w.putFixed(b, Int128Len)
}

// PutInt256 writes exactly 32 raw bytes. Any other input length fails.
func (w *Writer) PutInt256(b []byte) {
	w.putFixed(b, Int256Len)
}

func (w *Writer) putFixed(b []byte, size int) {
	if w.err != nil {
		return
	}
	if len(b) != size {
		w.setError(fmt.Errorf("%w: want %d bytes, got %d", ErrInvalidFixedLength, size, len(b)))
		return
	}
	w.buf = append(w.buf, b...)
}

// PutVectorHeader writes the boxed-sequence marker and the item count.
// The items themselves follow, each encoded by its own rule.
func (w *Writer) PutVectorHeader(n int) {
	w.PutUint32(VectorID)
	w.PutInt32(int32(n))
}

// PutBareVectorHeader writes only the item count, with no marker.
func (w *Writer) PutBareVectorHeader(n int) {
	w.PutInt32(int32(n))
}

// PutRaw appends bytes verbatim, with no framing. Used for pre-serialized
// payloads such as generic call arguments.
func (w *Writer) PutRaw(b []byte) {
	if w.err != nil {
		return
	}
	w.buf = append(w.buf, b...)
}
