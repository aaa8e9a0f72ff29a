package wire

import (
	"errors"
	"fmt"
)

var (
	// ErrInsufficientData indicates a read needed more bytes than remain in
	// the buffer.
	ErrInsufficientData = errors.New("wire: insufficient data")

	// ErrInvalidFixedLength indicates an encode was given a fixed-size blob
	// of the wrong length.
	ErrInvalidFixedLength = errors.New("wire: invalid fixed-size blob length")

	// ErrBlobTooLarge indicates a blob whose length exceeds the 3-byte
	// length form.
	ErrBlobTooLarge = errors.New("wire: blob exceeds maximum encodable length")

	// ErrInvalidLength indicates a decoded length that cannot be satisfied,
	// such as a negative sequence count.
	ErrInvalidLength = errors.New("wire: invalid length")
)

// UnexpectedConstructorError reports a fixed-format read (boolean, boxed
// sequence marker, gzip envelope) that saw an unrecognized magic id.
type UnexpectedConstructorError struct {
	ID uint32
}

func (e *UnexpectedConstructorError) Error() string {
	return fmt.Sprintf("wire: unexpected constructor id %#010x", e.ID)
}
