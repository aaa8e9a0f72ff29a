package wire

import "sync"

// writerPool reuses Writers for short-lived encode bursts. Pooling keeps
// the append buffers warm and reduces GC pressure when many small values
// are encoded in sequence.
var writerPool = sync.Pool{
	New: func() any {
		// A 4KB default avoids re-allocation for common record sizes.
		return NewWriterSize(4096)
	},
}

// GetWriter returns a reset Writer from the pool.
func GetWriter() *Writer {
	w := writerPool.Get().(*Writer)
	w.Reset()
	return w
}

// PutWriter returns a Writer to the pool. The caller must not retain the
// slice returned by Bytes or Result after this call.
func PutWriter(w *Writer) {
	writerPool.Put(w)
}
