// Package wire implements the TL binary wire format: little-endian
// integers and floats, magic-id booleans, length-prefixed padded blobs,
// fixed-size blobs, and boxed/bare sequences.
//
// Writer and Reader follow a sticky-error model: the first failure is
// recorded and every later operation becomes a no-op, so a whole encode or
// decode sequence can run unconditionally and be checked once at the end.
// Each Writer or Reader is owned by a single call for its duration; there
// is no shared state between instances, so independent encode/decode calls
// may run concurrently.
package wire

import "golang.org/x/exp/constraints"

// Wire-format constructor ids.
const (
	// BoolTrueID and BoolFalseID are the magic ids encoding booleans.
	BoolTrueID  uint32 = 0x997275B5
	BoolFalseID uint32 = 0xBC799737

	// VectorID is the marker of a boxed sequence.
	VectorID uint32 = 0x1CB5C415

	// GzipPackedID is the envelope id of a gzip-compressed payload.
	GzipPackedID uint32 = 0x3072CFA1
)

// Fixed-size blob widths in bytes.
const (
	Int128Len = 16
	Int256Len = 32
)

// longLenMarker switches a blob header to the 3-byte length form.
const longLenMarker = 0xFE

// maxShortLen is the largest blob length encodable in the one-byte form.
const maxShortLen = 253

// maxBlobLen is the largest blob length encodable at all (3-byte length).
const maxBlobLen = 1<<24 - 1

// Roundup rounds n up to the nearest multiple of align.
func Roundup[T constraints.Integer](n, align T) T { return (n + (align - 1)) &^ (align - 1) }

// blobPadding returns the zero-padding after a blob whose header and payload
// together span total bytes, aligning the whole encoding to 4 bytes.
func blobPadding(total int) int { return Roundup(total, 4) - total }
