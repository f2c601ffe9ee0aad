// Package lut implements the v3 look-up table codec: n_chunks+1 monotone
// non-decreasing u64 byte offsets, bitpacked in fixed blocks of
// ChunkCount entries. Every block is probed for its natural encoded
// length, then all blocks are padded to the longest one found (L) so a
// block's start offset in the compressed stream is a simple multiply —
// the tradeoff the format makes to allow random access into the LUT
// without decoding every earlier block first.
package lut

import (
	"github.com/gridcube/omfile/endian"
	"github.com/gridcube/omfile/errs"
	"github.com/gridcube/omfile/internal/bitpack"
)

// ChunkCount is the number of LUT entries packed per block.
const ChunkCount = 64

// BlockCount returns the number of blocks needed for n LUT entries
// (n_chunks+1 offsets).
func BlockCount(n int) int {
	return (n + ChunkCount - 1) / ChunkCount
}

// BufferSize returns the byte size of the compressed LUT for the given
// offsets: the longest individual block's encoded length times the block
// count, the layout Encode writes.
func BufferSize(offsets []uint64) int {
	nBlocks := BlockCount(len(offsets))
	maxLen := 0
	scratch := make([]byte, bitpack.MaxEncodedSize(ChunkCount, 8))
	for i := 0; i < nBlocks; i++ {
		start := i * ChunkCount
		end := start + ChunkCount
		if end > len(offsets) {
			end = len(offsets)
		}
		n, err := encodeBlock(offsets[start:end], scratch)
		if err == nil && n > maxLen {
			maxLen = n
		}
	}
	return maxLen * nBlocks
}

// Encode bitpacks offsets into dst, padding every block to the uniform
// block length implied by BufferSize(offsets). dst must be at least that
// long.
func Encode(offsets []uint64, dst []byte) error {
	nBlocks := BlockCount(len(offsets))
	if nBlocks == 0 {
		return nil
	}
	blockLen := BufferSize(offsets) / nBlocks
	for i := 0; i < nBlocks; i++ {
		start := i * ChunkCount
		end := start + ChunkCount
		if end > len(offsets) {
			end = len(offsets)
		}
		blockDst := dst[i*blockLen : (i+1)*blockLen]
		n, err := encodeBlock(offsets[start:end], blockDst)
		if err != nil {
			return err
		}
		for j := n; j < blockLen; j++ {
			blockDst[j] = 0
		}
	}
	return nil
}

// DecodeBlock decodes count entries (at most ChunkCount) from one
// compressed LUT block, blockData, into dst and returns how many were
// written.
func DecodeBlock(blockData []byte, count int, dst []uint64) (int, error) {
	if count > ChunkCount {
		count = ChunkCount
	}
	raw := make([]byte, count*8)
	if _, err := bitpack.DecodeDelta(8, blockData, count, raw); err != nil {
		return 0, err
	}
	for i := 0; i < count; i++ {
		dst[i] = endian.Engine.Uint64(raw[i*8:])
	}
	return count, nil
}

// Decode decodes a full compressed LUT of n entries laid out in
// uniform-length blocks, returning the n offsets.
func Decode(src []byte, n int) ([]uint64, error) {
	nBlocks := BlockCount(n)
	if nBlocks == 0 {
		return nil, nil
	}
	if len(src)%nBlocks != 0 {
		return nil, errs.ErrOutOfBoundRead
	}
	blockLen := len(src) / nBlocks
	out := make([]uint64, n)
	for i := 0; i < nBlocks; i++ {
		start := i * ChunkCount
		end := start + ChunkCount
		if end > n {
			end = n
		}
		if (i+1)*blockLen > len(src) {
			return nil, errs.ErrOutOfBoundRead
		}
		if _, err := DecodeBlock(src[i*blockLen:(i+1)*blockLen], end-start, out[start:end]); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func encodeBlock(offsets []uint64, dst []byte) (int, error) {
	raw := make([]byte, len(offsets)*8)
	for i, v := range offsets {
		endian.Engine.PutUint64(raw[i*8:], v)
	}
	return bitpack.EncodeDelta(8, raw, len(offsets), dst)
}
