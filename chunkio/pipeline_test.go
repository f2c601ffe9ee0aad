package chunkio

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gridcube/omfile/endian"
	"github.com/gridcube/omfile/errs"
	"github.com/gridcube/omfile/format"
	"github.com/gridcube/omfile/planner"
)

// a 4x4 uint8 array, row-major 0..15, chunked 2x2.
func sampleCube() (dims, chunks []uint64, src []byte) {
	dims = []uint64{4, 4}
	chunks = []uint64{2, 2}
	src = make([]byte, 16)
	for i := range src {
		src[i] = byte(i)
	}
	return
}

func TestEncodeDecodeAllRoundTrip(t *testing.T) {
	dims, chunks, src := sampleCube()

	enc, err := NewEncoder(dims, chunks, format.DataTypeUint8Array, format.CompressionNone)
	require.NoError(t, err)
	dst := make([]byte, len(src)+64)
	offsets, err := enc.EncodeAll(src, dst)
	require.NoError(t, err)
	require.Equal(t, 5, len(offsets)) // 4 chunks -> n_chunks+1 cumulative offsets
	require.Equal(t, uint64(0), offsets[0])

	total := offsets[len(offsets)-1]

	dec, err := NewDecoder(dims, chunks, format.DataTypeUint8Array, format.CompressionNone)
	require.NoError(t, err)
	lookup := func(idx uint64) (uint64, error) { return offsets[idx], nil }

	decoded := make([]byte, len(src))
	r := planner.DataRead{Offset: 0, Count: total, ChunkIndex: planner.Range{Lower: 0, Upper: 4}}
	consumed, err := dec.DecodeChunks(r, dst[:total], []uint64{0, 0}, dims, []uint64{0, 0}, dims, decoded, lookup)
	require.NoError(t, err)
	require.Equal(t, int(total), consumed)
	require.Equal(t, src, decoded)
}

func TestEncodeDecodeSubCubeAlignedChunk(t *testing.T) {
	dims, chunks, src := sampleCube()
	readOffset := []uint64{0, 0}
	readCount := []uint64{2, 2}
	// the top-left chunk of src: rows 0-1, cols 0-1 -> values 0,1,4,5
	want := []byte{0, 1, 4, 5}

	enc, err := NewEncoder(dims, chunks, format.DataTypeUint8Array, format.CompressionNone)
	require.NoError(t, err)
	dst := make([]byte, 64)
	offsets, err := enc.EncodeSubCube(readOffset, readCount, []uint64{0, 0}, readCount, want, dst)
	require.NoError(t, err)
	require.Equal(t, 2, len(offsets)) // one chunk touched

	dec, err := NewDecoder(dims, chunks, format.DataTypeUint8Array, format.CompressionNone)
	require.NoError(t, err)
	lookup := func(idx uint64) (uint64, error) { return offsets[idx], nil }
	total := offsets[len(offsets)-1]

	decoded := make([]byte, 4)
	r := planner.DataRead{Offset: 0, Count: total, ChunkIndex: planner.Range{Lower: 0, Upper: 1}}
	_, err = dec.DecodeChunks(r, dst[:total], readOffset, readCount, []uint64{0, 0}, readCount, decoded, lookup)
	require.NoError(t, err)
	require.Equal(t, want, decoded)

	_ = src // full array unused in this sub-cube scenario
}

// TestDecodeRequestLegacyFlatLUT drives the full planner-coalesced path
// (NextIndexRead/NextDataRead) against a synthetic file laid out the way a
// legacy (v1/v2) variable stores its LUT: n_chunks raw u64 cumulative end
// offsets, immediately followed by the chunk payload.
func TestDecodeRequestLegacyFlatLUT(t *testing.T) {
	dims, chunks, src := sampleCube()

	enc, err := NewEncoder(dims, chunks, format.DataTypeUint8Array, format.CompressionNone)
	require.NoError(t, err)
	data := make([]byte, 64)
	offsets, err := enc.EncodeAll(src, data)
	require.NoError(t, err)
	total := offsets[len(offsets)-1]
	data = data[:total]

	lutStart := uint64(0)
	dataBase := lutStart + uint64(len(offsets)-1)*8
	file := make([]byte, dataBase+total)
	for i, off := range offsets[1:] {
		endian.Engine.PutUint64(file[lutStart+uint64(i)*8:], off)
	}
	copy(file[dataBase:], data)

	fetch := func(offset, count uint64) ([]byte, error) {
		if offset+count > uint64(len(file)) {
			return nil, errs.ErrOutOfBoundRead
		}
		return file[offset : offset+count], nil
	}

	cfg := planner.Config{
		Dimensions:           dims,
		Chunks:               chunks,
		ReadOffset:           []uint64{0, 0},
		ReadCount:            dims,
		LUTChunkElementCount: 1,
		LUTChunkLength:       1, // <=1 signals legacy flat LUT to planner.NextIndexRead
		LUTStart:             lutStart,
		IOSizeMerge:          1 << 20,
		IOSizeMax:            1 << 20,
	}

	dec, err := NewDecoder(dims, chunks, format.DataTypeUint8Array, format.CompressionNone)
	require.NoError(t, err)

	decoded := make([]byte, len(src))
	err = dec.DecodeRequest(cfg, fetch, []uint64{0, 0}, dims, decoded)
	require.NoError(t, err)
	require.Equal(t, src, decoded)
}

func TestNewEncoderRejectsInvalidDimensions(t *testing.T) {
	_, err := NewEncoder([]uint64{4}, []uint64{2, 2}, format.DataTypeUint8Array, format.CompressionNone)
	require.ErrorIs(t, err, errs.ErrInvalidDimensions)

	_, err = NewEncoder([]uint64{0, 4}, []uint64{2, 2}, format.DataTypeUint8Array, format.CompressionNone)
	require.ErrorIs(t, err, errs.ErrInvalidDimensions)
}

func TestNewEncoderRejectsInvalidChunkDimensions(t *testing.T) {
	_, err := NewEncoder([]uint64{4, 4}, []uint64{0, 2}, format.DataTypeUint8Array, format.CompressionNone)
	require.ErrorIs(t, err, errs.ErrInvalidChunkDimensions)

	_, err = NewEncoder([]uint64{4, 4}, []uint64{8, 2}, format.DataTypeUint8Array, format.CompressionNone)
	require.ErrorIs(t, err, errs.ErrInvalidChunkDimensions)
}

func TestEncodeSubCubeRejectsInvalidReadWindow(t *testing.T) {
	dims, chunks, _ := sampleCube()
	enc, err := NewEncoder(dims, chunks, format.DataTypeUint8Array, format.CompressionNone)
	require.NoError(t, err)

	dst := make([]byte, 64)
	_, err = enc.EncodeSubCube([]uint64{5, 0}, []uint64{1, 1}, []uint64{0, 0}, []uint64{1, 1}, make([]byte, 1), dst)
	require.ErrorIs(t, err, errs.ErrInvalidReadOffset)

	_, err = enc.EncodeSubCube([]uint64{0, 0}, []uint64{4, 5}, []uint64{0, 0}, []uint64{4, 5}, make([]byte, 20), dst)
	require.ErrorIs(t, err, errs.ErrInvalidReadCount)
}

func TestEncodeSubCubeRejectsInvalidCubeOffset(t *testing.T) {
	dims, chunks, _ := sampleCube()
	enc, err := NewEncoder(dims, chunks, format.DataTypeUint8Array, format.CompressionNone)
	require.NoError(t, err)

	dst := make([]byte, 64)
	_, err = enc.EncodeSubCube([]uint64{0, 0}, []uint64{2, 2}, []uint64{3, 3}, []uint64{2, 2}, make([]byte, 4), dst)
	require.ErrorIs(t, err, errs.ErrInvalidCubeOffset)
}
