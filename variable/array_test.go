package variable

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gridcube/omfile/format"
)

func TestWriteParseArrayRoundTrip(t *testing.T) {
	name := "temperature_2m"
	dimensions := []uint64{100, 200}
	chunks := []uint64{10, 20}
	childSizes := []uint64{8, 16}
	childOffsets := []uint64{0, 8}

	size := WriteArraySize(uint16(len(name)), uint32(len(childSizes)), uint64(len(dimensions)))
	dst := make([]byte, size)
	err := WriteArray(dst, format.DataTypeFloatArray, format.CompressionPForDelta2DInt16, name,
		childSizes, childOffsets, dimensions, chunks, 20, 0, 1234, 5678)
	require.NoError(t, err)

	a, err := ParseArray(dst)
	require.NoError(t, err)
	require.Equal(t, format.DataTypeFloatArray, a.DataType)
	require.Equal(t, format.CompressionPForDelta2DInt16, a.Compression)
	require.Equal(t, uint16(len(name)), a.NameSize)
	require.Equal(t, uint32(len(childSizes)), a.ChildCount)
	require.Equal(t, uint64(1234), a.LUTSize)
	require.Equal(t, uint64(5678), a.LUTOffset)
	require.InDelta(t, float32(20), a.ScaleFactor, 1e-6)
	require.InDelta(t, float32(0), a.AddOffset, 1e-6)
	require.Equal(t, len(dimensions), a.DimensionCount())
	require.Equal(t, dimensions, a.Dimensions())
	require.Equal(t, chunks, a.Chunks())
	require.Equal(t, []byte(name), a.Name())

	dir, ok := a.Children(0, uint32(len(childSizes)))
	require.True(t, ok)
	require.Equal(t, childSizes, dir.Sizes)
	require.Equal(t, childOffsets, dir.Offsets)
}

func TestArrayChildrenOutOfRange(t *testing.T) {
	dst := make([]byte, WriteArraySize(0, 1, 1))
	require.NoError(t, WriteArray(dst, format.DataTypeInt8Array, format.CompressionNone, "",
		[]uint64{4}, []uint64{0}, []uint64{10}, []uint64{5}, 1, 0, 0, 0))

	a, err := ParseArray(dst)
	require.NoError(t, err)
	_, ok := a.Children(0, 2)
	require.False(t, ok)
}

func TestParseArrayTooShort(t *testing.T) {
	_, err := ParseArray(make([]byte, 10))
	require.Error(t, err)
}

func TestChildrenHelperDispatchesArray(t *testing.T) {
	dst := make([]byte, WriteArraySize(0, 1, 1))
	require.NoError(t, WriteArray(dst, format.DataTypeInt8Array, format.CompressionNone, "",
		[]uint64{4}, []uint64{16}, []uint64{10}, []uint64{5}, 1, 0, 0, 0))

	dir, err := Children(dst)
	require.NoError(t, err)
	require.Equal(t, []uint64{4}, dir.Sizes)
	require.Equal(t, []uint64{16}, dir.Offsets)
}
