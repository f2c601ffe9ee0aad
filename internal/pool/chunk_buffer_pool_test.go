package pool

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestByteBufferGrow(t *testing.T) {
	bb := NewByteBuffer(4)
	bb.Grow(2)
	require.Len(t, bb.B, 2)

	bb.Grow(100)
	require.Len(t, bb.B, 100)
}

func TestByteBufferReset(t *testing.T) {
	bb := NewByteBuffer(8)
	bb.Grow(8)
	bb.Reset()
	require.Empty(t, bb.B)
}

func TestChunkBufferPoolGetPut(t *testing.T) {
	p := NewChunkBufferPool(16, 1024)
	bb := p.Get()
	require.NotNil(t, bb)
	bb.Grow(16)
	p.Put(bb)

	bb2 := p.Get()
	require.NotNil(t, bb2)
}

func TestChunkBufferPoolDiscardsOversizedBuffers(t *testing.T) {
	p := NewChunkBufferPool(16, 32)
	bb := p.Get()
	bb.Grow(1000) // exceeds maxThreshold
	p.Put(bb)     // should be discarded, not retained

	bb2 := p.Get()
	require.NotNil(t, bb2)
	require.Less(t, cap(bb2.B), 1000)
}

func TestPackageLevelDefaultPool(t *testing.T) {
	bb := Get()
	require.NotNil(t, bb)
	bb.Grow(64)
	Put(bb)
}
