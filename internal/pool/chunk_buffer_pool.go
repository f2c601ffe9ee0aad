// Package pool provides a sync.Pool-backed byte buffer for chunk-sized
// scratch allocations (the compressed-width intermediate buffer every
// EncodeChunk/DecodeChunk call needs), avoiding a fresh allocation per
// chunk in the common case of repeatedly encoding/decoding same-shaped
// chunks from one array variable.
package pool

import "sync"

// ChunkBufferDefaultSize and ChunkBufferMaxThreshold bound the pool:
// buffers start small and are discarded, rather than retained, once they
// grow past the threshold, so one unusually large chunk doesn't pin that
// memory in the pool forever.
const (
	ChunkBufferDefaultSize  = 64 * 1024
	ChunkBufferMaxThreshold = 4 * 1024 * 1024
)

// ByteBuffer is a reusable, growable byte slice.
type ByteBuffer struct {
	B []byte
}

// NewByteBuffer creates a ByteBuffer with the given starting capacity.
func NewByteBuffer(defaultSize int) *ByteBuffer {
	return &ByteBuffer{B: make([]byte, 0, defaultSize)}
}

// Reset empties the buffer, retaining its backing array.
func (bb *ByteBuffer) Reset() {
	bb.B = bb.B[:0]
}

// Grow ensures the buffer can hold n bytes, reallocating if necessary.
func (bb *ByteBuffer) Grow(n int) {
	if cap(bb.B) >= n {
		bb.B = bb.B[:n]
		return
	}
	newBuf := make([]byte, n)
	copy(newBuf, bb.B)
	bb.B = newBuf
}

// ChunkBufferPool is a pool of ByteBuffers sized for chunk-level scratch
// allocations.
type ChunkBufferPool struct {
	pool         sync.Pool
	maxThreshold int
}

// NewChunkBufferPool creates a pool whose buffers start at defaultSize
// and are discarded once grown past maxThreshold.
func NewChunkBufferPool(defaultSize, maxThreshold int) *ChunkBufferPool {
	return &ChunkBufferPool{
		pool: sync.Pool{
			New: func() any { return NewByteBuffer(defaultSize) },
		},
		maxThreshold: maxThreshold,
	}
}

// Get retrieves a ByteBuffer from the pool.
func (p *ChunkBufferPool) Get() *ByteBuffer {
	bb, _ := p.pool.Get().(*ByteBuffer)
	return bb
}

// Put returns a ByteBuffer to the pool for reuse, discarding it instead
// if it has grown past maxThreshold.
func (p *ChunkBufferPool) Put(bb *ByteBuffer) {
	if bb == nil {
		return
	}
	if p.maxThreshold > 0 && cap(bb.B) > p.maxThreshold {
		return
	}
	bb.Reset()
	p.pool.Put(bb)
}

var defaultPool = NewChunkBufferPool(ChunkBufferDefaultSize, ChunkBufferMaxThreshold)

// Get retrieves a ByteBuffer from the default chunk buffer pool.
func Get() *ByteBuffer { return defaultPool.Get() }

// Put returns a ByteBuffer to the default chunk buffer pool.
func Put(bb *ByteBuffer) { defaultPool.Put(bb) }
