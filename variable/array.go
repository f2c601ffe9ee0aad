package variable

import (
	"github.com/gridcube/omfile/endian"
	"github.com/gridcube/omfile/errs"
	"github.com/gridcube/omfile/format"
)

// Array is the parsed view of a v3 numeric-array variable record.
type Array struct {
	DataType    format.DataType
	Compression format.Compression
	NameSize    uint16
	ChildCount  uint32
	LUTSize     uint64
	LUTOffset   uint64
	ScaleFactor float32
	AddOffset   float32

	data           []byte // the full record, retained for sub-slice lookups
	childrenOffset int
	dimensionCount int
}

// ParseArray parses a v3 numeric-array record. data must start at the
// record's first byte and extend at least through the name.
func ParseArray(data []byte) (*Array, error) {
	if len(data) < v3ArrayMetaSize {
		return nil, errs.ErrInvalidHeaderSize
	}
	a := &Array{
		DataType:    format.DataType(data[0]),
		Compression: format.Compression(data[1]),
		NameSize:    endian.Engine.Uint16(data[2:4]),
		ChildCount:  endian.Engine.Uint32(data[4:8]),
		LUTSize:     endian.Engine.Uint64(data[8:16]),
		LUTOffset:   endian.Engine.Uint64(data[16:24]),
	}
	dimensionCount := endian.Engine.Uint64(data[24:32])
	a.ScaleFactor = float32FromBits(endian.Engine.Uint32(data[32:36]))
	a.AddOffset = float32FromBits(endian.Engine.Uint32(data[36:40]))
	a.dimensionCount = int(dimensionCount)
	a.childrenOffset = v3ArrayMetaSize
	a.data = data

	need := a.childrenOffset + 16*int(a.ChildCount) + 16*a.dimensionCount + int(a.NameSize)
	if len(data) < need {
		return nil, errs.ErrOutOfBoundRead
	}
	return a, nil
}

// DimensionCount returns the number of dimensions in the array.
func (a *Array) DimensionCount() int { return a.dimensionCount }

func (a *Array) dimensionsOffset() int {
	return a.childrenOffset + 16*int(a.ChildCount)
}

func (a *Array) chunksOffset() int {
	return a.dimensionsOffset() + 8*a.dimensionCount
}

func (a *Array) nameOffset() int {
	return a.chunksOffset() + 8*a.dimensionCount
}

// Dimensions returns the array's dimension sizes.
func (a *Array) Dimensions() []uint64 {
	return readU64Slice(a.data, a.dimensionsOffset(), a.dimensionCount)
}

// Chunks returns the array's chunk sizes.
func (a *Array) Chunks() []uint64 {
	return readU64Slice(a.data, a.chunksOffset(), a.dimensionCount)
}

// Name returns the variable's name. The returned bytes are not NUL-terminated.
func (a *Array) Name() []byte {
	off := a.nameOffset()
	return a.data[off : off+int(a.NameSize)]
}

// ChildCountValue returns the number of children.
func (a *Array) ChildCountValue() uint32 { return a.ChildCount }

// Children resolves child range [offset, offset+count) into (size, offset)
// pairs. Returns false if the range exceeds ChildCount.
func (a *Array) Children(offset, count uint32) (Directory, bool) {
	return getChildren(a.data, a.childrenOffset, a.ChildCount, offset, count)
}

func readU64Slice(data []byte, offset, count int) []uint64 {
	out := make([]uint64, count)
	for i := 0; i < count; i++ {
		out[i] = endian.Engine.Uint64(data[offset+8*i : offset+8*i+8])
	}
	return out
}

// Directory is a resolved children lookup: Sizes[i]/Offsets[i] describe the
// i-th child's byte span.
type Directory struct {
	Sizes   []uint64
	Offsets []uint64
}

func getChildren(data []byte, childrenOffset int, totalCount uint32, offset, count uint32) (Directory, bool) {
	if offset+count > totalCount {
		return Directory{}, false
	}
	sizesBase := childrenOffset
	offsetsBase := childrenOffset + 8*int(totalCount)
	dir := Directory{
		Sizes:   make([]uint64, count),
		Offsets: make([]uint64, count),
	}
	for i := uint32(0); i < count; i++ {
		dir.Sizes[i] = endian.Engine.Uint64(data[sizesBase+8*int(offset+i) : sizesBase+8*int(offset+i)+8])
		dir.Offsets[i] = endian.Engine.Uint64(data[offsetsBase+8*int(offset+i) : offsetsBase+8*int(offset+i)+8])
	}
	return dir, true
}

// Children is a convenience wrapper around ParseArray/ParseScalar's
// Children accessor that resolves every child in one call, for the common
// case where a caller wants the whole directory rather than a sub-range.
func Children(data []byte) (Directory, error) {
	layout, err := DetectMemoryLayout(data)
	if err != nil {
		return Directory{}, err
	}
	switch layout {
	case MemoryLayoutLegacy:
		return Directory{}, nil
	case MemoryLayoutArray:
		a, err := ParseArray(data)
		if err != nil {
			return Directory{}, err
		}
		dir, ok := a.Children(0, a.ChildCount)
		if !ok {
			return Directory{}, errs.ErrOutOfBoundRead
		}
		return dir, nil
	default:
		s, err := ParseScalar(data)
		if err != nil {
			return Directory{}, err
		}
		dir, ok := s.Children(0, s.ChildCount)
		if !ok {
			return Directory{}, errs.ErrOutOfBoundRead
		}
		return dir, nil
	}
}

// WriteArraySize returns the total byte size of a v3 numeric-array record:
// fixed metadata, children, dimensions and chunks, plus nameSize name bytes.
func WriteArraySize(nameSize uint16, childCount uint32, dimensionCount uint64) int {
	return v3ArrayMetaSize + 16*int(childCount) + 16*int(dimensionCount) + int(nameSize)
}

// WriteArray serializes a v3 numeric-array record into dst.
func WriteArray(dst []byte, dataType format.DataType, compression format.Compression, name string,
	childSizes, childOffsets []uint64, dimensions, chunks []uint64,
	scaleFactor, addOffset float32, lutSize, lutOffset uint64) error {
	childCount := len(childSizes)
	dimensionCount := len(dimensions)
	need := WriteArraySize(uint16(len(name)), uint32(childCount), uint64(dimensionCount))
	if len(dst) < need {
		return errs.ErrBufferTooSmall
	}

	dst[0] = byte(dataType)
	dst[1] = byte(compression)
	endian.Engine.PutUint16(dst[2:4], uint16(len(name)))
	endian.Engine.PutUint32(dst[4:8], uint32(childCount))
	endian.Engine.PutUint64(dst[8:16], lutSize)
	endian.Engine.PutUint64(dst[16:24], lutOffset)
	endian.Engine.PutUint64(dst[24:32], uint64(dimensionCount))
	endian.Engine.PutUint32(dst[32:36], float32Bits(scaleFactor))
	endian.Engine.PutUint32(dst[36:40], float32Bits(addOffset))

	writeChildren(dst[v3ArrayMetaSize:], childSizes, childOffsets)

	dimOff := v3ArrayMetaSize + 16*childCount
	chunkOff := dimOff + 8*dimensionCount
	for i := 0; i < dimensionCount; i++ {
		endian.Engine.PutUint64(dst[dimOff+8*i:dimOff+8*i+8], dimensions[i])
		endian.Engine.PutUint64(dst[chunkOff+8*i:chunkOff+8*i+8], chunks[i])
	}

	nameOff := chunkOff + 8*dimensionCount
	copy(dst[nameOff:nameOff+len(name)], name)
	return nil
}

func writeChildren(dst []byte, sizes, offsets []uint64) {
	n := len(sizes)
	for i := 0; i < n; i++ {
		endian.Engine.PutUint64(dst[8*i:8*i+8], sizes[i])
		endian.Engine.PutUint64(dst[8*(n+i):8*(n+i)+8], offsets[i])
	}
}
