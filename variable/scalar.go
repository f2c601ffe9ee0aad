package variable

import (
	"github.com/gridcube/omfile/endian"
	"github.com/gridcube/omfile/errs"
	"github.com/gridcube/omfile/format"
)

// Scalar is the parsed view of a v3 scalar variable record. Compression is
// always CompressionNone for scalars.
type Scalar struct {
	DataType   format.DataType
	NameSize   uint16
	ChildCount uint32

	data           []byte
	childrenOffset int
}

// ParseScalar parses a v3 scalar record. data must start at the record's
// first byte and extend at least through the name.
func ParseScalar(data []byte) (*Scalar, error) {
	if len(data) < v3HeaderSize {
		return nil, errs.ErrInvalidHeaderSize
	}
	s := &Scalar{
		DataType:   format.DataType(data[0]),
		NameSize:   endian.Engine.Uint16(data[2:4]),
		ChildCount: endian.Engine.Uint32(data[4:8]),
		data:       data,
	}
	s.childrenOffset = v3HeaderSize
	return s, nil
}

func (s *Scalar) valueOffset() int {
	return s.childrenOffset + 16*int(s.ChildCount)
}

// Children resolves child range [offset, offset+count) into (size, offset)
// pairs. Returns false if the range exceeds ChildCount.
func (s *Scalar) Children(offset, count uint32) (Directory, bool) {
	return getChildren(s.data, s.childrenOffset, s.ChildCount, offset, count)
}

// Value returns the raw scalar value bytes, valid only for non-string
// scalar types; call String for DataTypeString.
func (s *Scalar) Value() ([]byte, error) {
	off := s.valueOffset()
	width, err := scalarWidth(s.DataType)
	if err != nil {
		return nil, err
	}
	if off+width > len(s.data) {
		return nil, errs.ErrOutOfBoundRead
	}
	return s.data[off : off+width], nil
}

// String returns the string value for a DataTypeString scalar: a u64
// length prefix followed by that many bytes.
func (s *Scalar) String() ([]byte, error) {
	if s.DataType != format.DataTypeString {
		return nil, errs.ErrInvalidDataType
	}
	off := s.valueOffset()
	if off+8 > len(s.data) {
		return nil, errs.ErrOutOfBoundRead
	}
	n := endian.Engine.Uint64(s.data[off : off+8])
	start := off + 8
	end := start + int(n)
	if end > len(s.data) {
		return nil, errs.ErrOutOfBoundRead
	}
	return s.data[start:end], nil
}

// Name returns the variable's name bytes, located after the value (or
// after the string payload for DataTypeString scalars).
func (s *Scalar) Name() ([]byte, error) {
	off := s.valueOffset()
	switch s.DataType {
	case format.DataTypeNone:
		// no value bytes
	case format.DataTypeString:
		if off+8 > len(s.data) {
			return nil, errs.ErrOutOfBoundRead
		}
		n := endian.Engine.Uint64(s.data[off : off+8])
		off += 8 + int(n)
	default:
		width, err := scalarWidth(s.DataType)
		if err != nil {
			return nil, err
		}
		off += width
	}
	end := off + int(s.NameSize)
	if end > len(s.data) {
		return nil, errs.ErrOutOfBoundRead
	}
	return s.data[off:end], nil
}

func scalarWidth(dt format.DataType) (int, error) {
	switch dt {
	case format.DataTypeNone:
		return 0, nil
	case format.DataTypeInt8, format.DataTypeUint8:
		return 1, nil
	case format.DataTypeInt16, format.DataTypeUint16:
		return 2, nil
	case format.DataTypeInt32, format.DataTypeUint32, format.DataTypeFloat:
		return 4, nil
	case format.DataTypeInt64, format.DataTypeUint64, format.DataTypeDouble:
		return 8, nil
	default:
		return 0, errs.ErrInvalidDataType
	}
}

// ScalarSize returns the byte size of a v3 scalar record for the given
// name length, child count, data type, and (for DataTypeString) string
// length.
func ScalarSize(nameSize uint16, childCount uint32, dataType format.DataType, stringSize uint64) (int, error) {
	base := v3HeaderSize + int(nameSize) + int(childCount)*16
	if dataType == format.DataTypeString {
		return base + 8 + int(stringSize), nil
	}
	width, err := scalarWidth(dataType)
	if err != nil {
		return 0, err
	}
	return base + width, nil
}

// WriteScalar serializes a v3 scalar record into dst. value holds the raw
// little-endian bytes of the scalar value (ignored for DataTypeNone); for
// DataTypeString, value holds the string bytes themselves (the length
// prefix is written automatically).
func WriteScalar(dst []byte, name string, childSizes, childOffsets []uint64, dataType format.DataType, value []byte) error {
	childCount := len(childSizes)
	stringSize := uint64(0)
	if dataType == format.DataTypeString {
		stringSize = uint64(len(value))
	}
	need, err := ScalarSize(uint16(len(name)), uint32(childCount), dataType, stringSize)
	if err != nil {
		return err
	}
	if len(dst) < need {
		return errs.ErrBufferTooSmall
	}

	dst[0] = byte(dataType)
	dst[1] = byte(format.CompressionNone)
	endian.Engine.PutUint16(dst[2:4], uint16(len(name)))
	endian.Engine.PutUint32(dst[4:8], uint32(childCount))

	writeChildren(dst[v3HeaderSize:], childSizes, childOffsets)

	valueOff := v3HeaderSize + 16*childCount
	valueSize := 0
	switch dataType {
	case format.DataTypeNone:
		valueSize = 0
	case format.DataTypeString:
		endian.Engine.PutUint64(dst[valueOff:valueOff+8], stringSize)
		copy(dst[valueOff+8:valueOff+8+len(value)], value)
		valueSize = 8 + len(value)
	default:
		width, err := scalarWidth(dataType)
		if err != nil {
			return err
		}
		copy(dst[valueOff:valueOff+width], value)
		valueSize = width
	}

	nameOff := valueOff + valueSize
	copy(dst[nameOff:nameOff+len(name)], name)
	return nil
}
