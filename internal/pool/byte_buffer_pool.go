// Package pool provides a reusable growable byte buffer, pooled via
// sync.Pool, backing the parser engine's internal stream buffer.
//
// The buffer grows with every Feed call and shrinks by a consumed prefix on
// every drain, an append/grow/reslice access pattern suited to repeated
// allocation-free reuse across a long-lived stream.
package pool

import "sync"

// StreamBufferDefaultSize is the initial capacity of a buffer obtained from
// the default stream pool: generous enough to hold a handful of small CESR
// frames without reallocating.
const (
	StreamBufferDefaultSize  = 1024 * 4  // 4KiB
	StreamBufferMaxThreshold = 1024 * 64 // 64KiB
)

// ByteBuffer is a growable byte slice wrapper supporting the access pattern
// the parser's feed/drain loop needs: appending new chunks, and discarding
// a consumed prefix without losing the backing array.
type ByteBuffer struct {
	// B is the underlying byte slice.
	B []byte
}

// NewByteBuffer creates a new ByteBuffer with the specified default size.
func NewByteBuffer(defaultSize int) *ByteBuffer {
	return &ByteBuffer{
		B: make([]byte, 0, defaultSize),
	}
}

// Bytes returns the buffer's unconsumed content.
func (bb *ByteBuffer) Bytes() []byte {
	return bb.B
}

// Reset resets the buffer to be empty, but retains the allocated memory for reuse.
func (bb *ByteBuffer) Reset() {
	bb.B = bb.B[:0]
}

// Len returns the length of the buffer.
func (bb *ByteBuffer) Len() int {
	return len(bb.B)
}

// Cap returns the capacity of the buffer.
func (bb *ByteBuffer) Cap() int {
	return cap(bb.B)
}

// Grow grows the buffer to ensure it can hold requiredBytes more bytes
// without reallocating. If the buffer has sufficient capacity, Grow does
// nothing.
//
// The growth strategy: for small buffers, grow by StreamBufferDefaultSize to
// minimize reallocations; for larger buffers, grow by 25% of current
// capacity to balance memory usage and reallocation cost.
func (bb *ByteBuffer) Grow(requiredBytes int) {
	available := cap(bb.B) - len(bb.B)
	if available >= requiredBytes {
		return
	}

	growBy := StreamBufferDefaultSize
	if cap(bb.B) > 4*StreamBufferDefaultSize {
		growBy = cap(bb.B) / 4
	}
	if growBy < requiredBytes {
		growBy = requiredBytes
	}

	newBuf := make([]byte, len(bb.B), len(bb.B)+growBy)
	copy(newBuf, bb.B)
	bb.B = newBuf
}

// Append appends data to the buffer, growing it as needed.
func (bb *ByteBuffer) Append(data []byte) {
	bb.Grow(len(data))
	bb.B = append(bb.B, data...)
}

// Discard drops the first n consumed bytes of the buffer, shifting the
// remainder to the front of the backing array so the buffer keeps its
// capacity instead of being reallocated on every feed/drain cycle.
func (bb *ByteBuffer) Discard(n int) {
	if n <= 0 {
		return
	}
	if n >= len(bb.B) {
		bb.Reset()
		return
	}

	copy(bb.B, bb.B[n:])
	bb.B = bb.B[:len(bb.B)-n]
}

// ByteBufferPool is a pool of ByteBuffers to minimize allocations.
//
// It uses sync.Pool internally to manage the buffers. The pool can be
// configured with a maximum size threshold to avoid retaining overly large
// buffers that could lead to memory bloat.
type ByteBufferPool struct {
	pool         sync.Pool
	maxThreshold int // Optional maximum size threshold for buffers
}

// NewByteBufferPool creates a new ByteBufferPool with buffers of the specified default size.
func NewByteBufferPool(defaultSize int, maxThreshold int) *ByteBufferPool {
	return &ByteBufferPool{
		pool: sync.Pool{
			New: func() any {
				return NewByteBuffer(defaultSize)
			},
		},
		maxThreshold: maxThreshold,
	}
}

// Get retrieves a ByteBuffer from the pool.
func (bbp *ByteBufferPool) Get() *ByteBuffer {
	bb, _ := bbp.pool.Get().(*ByteBuffer)

	return bb
}

// Put returns a ByteBuffer to the pool for reuse.
func (bbp *ByteBufferPool) Put(bb *ByteBuffer) {
	if bb == nil {
		return
	}

	if bbp.maxThreshold > 0 && cap(bb.B) > bbp.maxThreshold {
		// Discard overly large buffers to prevent memory bloat
		return
	}

	bb.Reset()
	bbp.pool.Put(bb)
}

var defaultStreamPool = NewByteBufferPool(StreamBufferDefaultSize, StreamBufferMaxThreshold)

// GetStreamBuffer retrieves a ByteBuffer from the default stream pool.
func GetStreamBuffer() *ByteBuffer {
	return defaultStreamPool.Get()
}

// PutStreamBuffer returns a ByteBuffer to the default stream pool.
func PutStreamBuffer(bb *ByteBuffer) {
	defaultStreamPool.Put(bb)
}
