package variable

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gridcube/omfile/errs"
	"github.com/gridcube/omfile/format"
)

func TestDetectMemoryLayoutLegacy(t *testing.T) {
	data := make([]byte, legacyHeaderSize)
	data[0], data[1], data[2] = 'O', 'M', 2
	layout, err := DetectMemoryLayout(data)
	require.NoError(t, err)
	require.Equal(t, MemoryLayoutLegacy, layout)
}

func TestDetectMemoryLayoutArray(t *testing.T) {
	data := make([]byte, v3HeaderSize)
	data[0] = byte(format.DataTypeFloatArray)
	layout, err := DetectMemoryLayout(data)
	require.NoError(t, err)
	require.Equal(t, MemoryLayoutArray, layout)
}

func TestDetectMemoryLayoutScalar(t *testing.T) {
	data := make([]byte, v3HeaderSize)
	data[0] = byte(format.DataTypeFloat)
	layout, err := DetectMemoryLayout(data)
	require.NoError(t, err)
	require.Equal(t, MemoryLayoutScalar, layout)
}

func TestDetectMemoryLayoutTooShort(t *testing.T) {
	_, err := DetectMemoryLayout([]byte{'O', 'M'})
	require.ErrorIs(t, err, errs.ErrInvalidHeaderSize)
}

func TestDetectMemoryLayoutUnrecognizedTag(t *testing.T) {
	data := make([]byte, v3HeaderSize)
	data[0] = 200
	_, err := DetectMemoryLayout(data)
	require.ErrorIs(t, err, errs.ErrInvalidMemoryLayout)
}

func TestParseLegacyV2RoundTrip(t *testing.T) {
	dim := [2]uint64{100, 200}
	chunk := [2]uint64{10, 20}
	dst := make([]byte, legacyHeaderSize)
	require.NoError(t, WriteLegacy(dst, format.CompressionPForDelta2D, 1.5, dim, chunk))

	l, err := ParseLegacy(dst)
	require.NoError(t, err)
	require.Equal(t, uint8(2), l.Version)
	require.Equal(t, format.CompressionPForDelta2D, l.Compression)
	require.InDelta(t, float32(1.5), l.ScaleFactor, 1e-6)
	require.Equal(t, dim, l.Dim)
	require.Equal(t, chunk, l.Chunk)
}

func TestParseLegacyV1CoercesCompression(t *testing.T) {
	dst := make([]byte, legacyHeaderSize)
	dst[0], dst[1], dst[2] = 'O', 'M', 1
	dst[3] = 0xFF // v1 carries no explicit compression tag

	l, err := ParseLegacy(dst)
	require.NoError(t, err)
	require.Equal(t, uint8(1), l.Version)
	require.Equal(t, format.CompressionPForDelta2DInt16, l.Compression)
}

func TestParseLegacyRejectsBadMagic(t *testing.T) {
	dst := make([]byte, legacyHeaderSize)
	dst[0], dst[1], dst[2] = 'X', 'M', 2
	_, err := ParseLegacy(dst)
	require.ErrorIs(t, err, errs.ErrNotAnOmFile)
}

func TestParseLegacyTooShort(t *testing.T) {
	_, err := ParseLegacy(make([]byte, 10))
	require.ErrorIs(t, err, errs.ErrInvalidHeaderSize)
}
