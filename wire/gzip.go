package wire

import (
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zlib"
)

// PackGzip wraps payload in a gzip_packed envelope: the envelope id
// followed by the blob-encoded compressed payload.
func PackGzip(payload []byte) ([]byte, error) {
	var compressed bytes.Buffer
	zw := gzip.NewWriter(&compressed)
	if _, err := zw.Write(payload); err != nil {
		return nil, fmt.Errorf("wire: compressing payload: %w", err)
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("wire: compressing payload: %w", err)
	}

	w := NewWriterSize(8 + compressed.Len())
	w.PutUint32(GzipPackedID)
	w.PutBytes(compressed.Bytes())
	return w.Result()
}

// UnpackGzip unwraps a gzip_packed envelope and inflates its payload.
// Some peers send zlib streams inside the envelope, so inflation falls back
// to zlib when the payload carries no gzip header.
func UnpackGzip(data []byte) ([]byte, error) {
	r := NewReader(data)
	id := r.Uint32()
	if err := r.Err(); err != nil {
		return nil, err
	}
	if id != GzipPackedID {
		return nil, &UnexpectedConstructorError{ID: id}
	}
	packed := r.Bytes()
	if err := r.Err(); err != nil {
		return nil, err
	}
	return inflate(packed)
}

// IsGzipPacked reports whether data begins with the gzip_packed envelope id.
func IsGzipPacked(data []byte) bool {
	if len(data) < 4 {
		return false
	}
	return NewReader(data).Uint32() == GzipPackedID
}

// inflate decompresses an envelope payload. The fallback to zlib applies
// only when the payload carries no gzip header; a gzip stream that fails
// mid-read is an error, not a zlib candidate.
func inflate(packed []byte) ([]byte, error) {
	if gr, err := gzip.NewReader(bytes.NewReader(packed)); err == nil {
		defer gr.Close()
		out, err := io.ReadAll(gr)
		if err != nil {
			return nil, fmt.Errorf("wire: inflating payload: %w", err)
		}
		return out, nil
	}
	zr, err := zlib.NewReader(bytes.NewReader(packed))
	if err != nil {
		return nil, fmt.Errorf("wire: inflating payload: %w", err)
	}
	defer zr.Close()
	out, err := io.ReadAll(zr)
	if err != nil {
		return nil, fmt.Errorf("wire: inflating payload: %w", err)
	}
	return out, nil
}
