package variable

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gridcube/omfile/errs"
	"github.com/gridcube/omfile/format"
)

func TestWriteParseScalarStringRoundTrip(t *testing.T) {
	name := "unit"
	value := "meters"

	size, err := ScalarSize(uint16(len(name)), 0, format.DataTypeString, uint64(len(value)))
	require.NoError(t, err)
	// sizeof(scalar_header) + 0 children + 8-byte length prefix + string
	// bytes + name bytes.
	require.Equal(t, v3HeaderSize+0+8+len(value)+len(name), size)

	dst := make([]byte, size)
	require.NoError(t, WriteScalar(dst, name, nil, nil, format.DataTypeString, []byte(value)))

	s, err := ParseScalar(dst)
	require.NoError(t, err)
	require.Equal(t, format.DataTypeString, s.DataType)
	require.Equal(t, uint16(len(name)), s.NameSize)
	require.Equal(t, uint32(0), s.ChildCount)

	got, err := s.String()
	require.NoError(t, err)
	require.Equal(t, value, string(got))

	gotName, err := s.Name()
	require.NoError(t, err)
	require.Equal(t, name, string(gotName))
}

func TestWriteParseScalarFloatRoundTrip(t *testing.T) {
	name := "missing_value"
	value := make([]byte, 4)
	binary.LittleEndian.PutUint32(value, math.Float32bits(3.5))

	size, err := ScalarSize(uint16(len(name)), 0, format.DataTypeFloat, 0)
	require.NoError(t, err)
	dst := make([]byte, size)
	require.NoError(t, WriteScalar(dst, name, nil, nil, format.DataTypeFloat, value))

	s, err := ParseScalar(dst)
	require.NoError(t, err)
	got, err := s.Value()
	require.NoError(t, err)
	require.Equal(t, value, got)

	gotName, err := s.Name()
	require.NoError(t, err)
	require.Equal(t, name, string(gotName))
}

func TestScalarValueRejectsString(t *testing.T) {
	name := "unit"
	value := "m"
	size, err := ScalarSize(uint16(len(name)), 0, format.DataTypeString, uint64(len(value)))
	require.NoError(t, err)
	dst := make([]byte, size)
	require.NoError(t, WriteScalar(dst, name, nil, nil, format.DataTypeString, []byte(value)))

	s, err := ParseScalar(dst)
	require.NoError(t, err)
	_, err = s.String()
	require.NoError(t, err)

	// Value() on a string scalar would misinterpret the length prefix as
	// a fixed-width scalar; scalarWidth rejects DataTypeString outright.
	_, err = s.Value()
	require.ErrorIs(t, err, errs.ErrInvalidDataType)
}

func TestScalarWithChildren(t *testing.T) {
	name := "root"
	childSizes := []uint64{10, 20}
	childOffsets := []uint64{100, 110}

	size, err := ScalarSize(uint16(len(name)), uint32(len(childSizes)), format.DataTypeNone, 0)
	require.NoError(t, err)
	dst := make([]byte, size)
	require.NoError(t, WriteScalar(dst, name, childSizes, childOffsets, format.DataTypeNone, nil))

	s, err := ParseScalar(dst)
	require.NoError(t, err)
	require.Equal(t, uint32(2), s.ChildCount)

	dir, ok := s.Children(0, 2)
	require.True(t, ok)
	require.Equal(t, childSizes, dir.Sizes)
	require.Equal(t, childOffsets, dir.Offsets)

	gotName, err := s.Name()
	require.NoError(t, err)
	require.Equal(t, name, string(gotName))
}
