// Package variable parses and serializes self-describing variable records:
// the legacy 40-byte header (v1/v2), the v3 numeric-array record, and the
// v3 scalar record. All read operations work on a borrowed byte slice; the
// caller guarantees it stays valid for the lifetime of the returned struct.
package variable

import (
	"github.com/gridcube/omfile/endian"
	"github.com/gridcube/omfile/errs"
	"github.com/gridcube/omfile/format"
)

// MemoryLayout identifies which of the three on-disk shapes a variable
// record uses.
type MemoryLayout uint8

const (
	MemoryLayoutLegacy MemoryLayout = 0
	MemoryLayoutArray  MemoryLayout = 1
	MemoryLayoutScalar MemoryLayout = 3
)

const (
	legacyHeaderSize = 40
	v3HeaderSize     = 8  // data_type, compression_type, name_size, children_count
	v3ArrayMetaSize  = 40 // v3HeaderSize + lut_size + lut_offset + dimension_count + scale + offset
)

// DetectMemoryLayout probes the leading bytes of a variable record and
// reports which of the three memory layouts it uses. It reads at most the
// first 8 bytes of data.
func DetectMemoryLayout(data []byte) (MemoryLayout, error) {
	if len(data) < 3 {
		return 0, errs.ErrInvalidHeaderSize
	}
	if data[0] == 'O' && data[1] == 'M' && (data[2] == 1 || data[2] == 2) {
		return MemoryLayoutLegacy, nil
	}
	if len(data) < v3HeaderSize {
		return 0, errs.ErrInvalidHeaderSize
	}
	dataType := format.DataType(data[0])
	if dataType >= format.DataTypeInt8Array && dataType <= format.DataTypeDoubleArray {
		return MemoryLayoutArray, nil
	}
	if dataType > format.DataTypeStringArray {
		return 0, errs.ErrInvalidMemoryLayout
	}
	return MemoryLayoutScalar, nil
}

// Legacy is the parsed view of a v1/v2 header. Dim and Chunk are always
// length 2: these files predate arbitrary dimension counts.
type Legacy struct {
	Version     uint8
	Compression format.Compression
	ScaleFactor float32
	Dim         [2]uint64
	Chunk       [2]uint64
}

// ParseLegacy parses the fixed 40-byte legacy header. Version 1 carries no
// explicit compression tag and is coerced to CompressionPForDelta2DInt16,
// matching the original format's implicit default.
func ParseLegacy(data []byte) (*Legacy, error) {
	if len(data) < legacyHeaderSize {
		return nil, errs.ErrInvalidHeaderSize
	}
	if data[0] != 'O' || data[1] != 'M' {
		return nil, errs.ErrNotAnOmFile
	}
	version := data[2]
	if version != 1 && version != 2 {
		return nil, errs.ErrNotAnOmFile
	}
	compression := format.Compression(data[3])
	if version == 1 {
		compression = format.CompressionPForDelta2DInt16
	}
	l := &Legacy{
		Version:     version,
		Compression: compression,
		ScaleFactor: float32FromBits(endian.Engine.Uint32(data[4:8])),
	}
	l.Dim[0] = endian.Engine.Uint64(data[8:16])
	l.Dim[1] = endian.Engine.Uint64(data[16:24])
	l.Chunk[0] = endian.Engine.Uint64(data[24:32])
	l.Chunk[1] = endian.Engine.Uint64(data[32:40])
	return l, nil
}

// WriteLegacy serializes a legacy v2 header into dst, which must be at
// least legacyHeaderSize bytes. Legacy v1 files are never written by this
// module; only v2 (explicit compression tag) is supported on encode.
func WriteLegacy(dst []byte, compression format.Compression, scaleFactor float32, dim, chunk [2]uint64) error {
	if len(dst) < legacyHeaderSize {
		return errs.ErrBufferTooSmall
	}
	dst[0], dst[1], dst[2], dst[3] = 'O', 'M', 2, byte(compression)
	endian.Engine.PutUint32(dst[4:8], float32Bits(scaleFactor))
	endian.Engine.PutUint64(dst[8:16], dim[0])
	endian.Engine.PutUint64(dst[16:24], dim[1])
	endian.Engine.PutUint64(dst[24:32], chunk[0])
	endian.Engine.PutUint64(dst[32:40], chunk[1])
	return nil
}
