// Package format defines the data-type and compression-type enumerations
// shared by every layer of the columnar array format, plus the per-type
// byte-width tables the codecs use to size buffers.
package format

import "github.com/gridcube/omfile/errs"

// DataType identifies the scalar or array element type stored in a variable.
type DataType uint8

const (
	DataTypeNone   DataType = 0
	DataTypeInt8   DataType = 1
	DataTypeUint8  DataType = 2
	DataTypeInt16  DataType = 3
	DataTypeUint16 DataType = 4
	DataTypeInt32  DataType = 5
	DataTypeUint32 DataType = 6
	DataTypeInt64  DataType = 7
	DataTypeUint64 DataType = 8
	DataTypeFloat  DataType = 9
	DataTypeDouble DataType = 10
	DataTypeString DataType = 11

	DataTypeInt8Array   DataType = 12
	DataTypeUint8Array  DataType = 13
	DataTypeInt16Array  DataType = 14
	DataTypeUint16Array DataType = 15
	DataTypeInt32Array  DataType = 16
	DataTypeUint32Array DataType = 17
	DataTypeInt64Array  DataType = 18
	DataTypeUint64Array DataType = 19
	DataTypeFloatArray  DataType = 20
	DataTypeDoubleArray DataType = 21
	DataTypeStringArray DataType = 22
)

func (d DataType) String() string {
	switch d {
	case DataTypeNone:
		return "None"
	case DataTypeInt8:
		return "Int8"
	case DataTypeUint8:
		return "Uint8"
	case DataTypeInt16:
		return "Int16"
	case DataTypeUint16:
		return "Uint16"
	case DataTypeInt32:
		return "Int32"
	case DataTypeUint32:
		return "Uint32"
	case DataTypeInt64:
		return "Int64"
	case DataTypeUint64:
		return "Uint64"
	case DataTypeFloat:
		return "Float"
	case DataTypeDouble:
		return "Double"
	case DataTypeString:
		return "String"
	case DataTypeInt8Array:
		return "Int8Array"
	case DataTypeUint8Array:
		return "Uint8Array"
	case DataTypeInt16Array:
		return "Int16Array"
	case DataTypeUint16Array:
		return "Uint16Array"
	case DataTypeInt32Array:
		return "Int32Array"
	case DataTypeUint32Array:
		return "Uint32Array"
	case DataTypeInt64Array:
		return "Int64Array"
	case DataTypeUint64Array:
		return "Uint64Array"
	case DataTypeFloatArray:
		return "FloatArray"
	case DataTypeDoubleArray:
		return "DoubleArray"
	case DataTypeStringArray:
		return "StringArray"
	default:
		return "Unknown"
	}
}

// IsArray reports whether d is one of the *Array variants.
func (d DataType) IsArray() bool {
	return d >= DataTypeInt8Array && d <= DataTypeStringArray
}

// Compression identifies the entropy-coding scheme applied to a chunk's
// element stream.
type Compression uint8

const (
	// CompressionPForDelta2DInt16 scales floats to int16 and bitpacks the
	// 2-D delta residuals. Lossy.
	CompressionPForDelta2DInt16 Compression = 0
	// CompressionFPXXor2D applies a row-wise XOR filter then a lossless
	// bit-packed entropy coder. Applies to float and double arrays only.
	CompressionFPXXor2D Compression = 1
	// CompressionPForDelta2D scales floats/doubles to int32/int64 (lossy)
	// and bitpacks the 2-D delta residuals; integer arrays are kept at
	// their native width without scaling, losslessly.
	CompressionPForDelta2D Compression = 2
	// CompressionPForDelta2DInt16Logarithmic is CompressionPForDelta2DInt16
	// with a log10(1+x) transform applied before scaling.
	CompressionPForDelta2DInt16Logarithmic Compression = 3
	// CompressionNone stores raw element bytes without any entropy coding.
	CompressionNone Compression = 4
)

func (c Compression) String() string {
	switch c {
	case CompressionPForDelta2DInt16:
		return "PForDelta2DInt16"
	case CompressionFPXXor2D:
		return "FPXXor2D"
	case CompressionPForDelta2D:
		return "PForDelta2D"
	case CompressionPForDelta2DInt16Logarithmic:
		return "PForDelta2DInt16Logarithmic"
	case CompressionNone:
		return "None"
	default:
		return "Unknown"
	}
}

// BytesPerElement returns the in-memory (uncompressed) element width for an
// array data type. It returns an error for scalar types and DataTypeString,
// neither of which participate in chunked arrays.
func BytesPerElement(dt DataType) (uint8, error) {
	switch dt {
	case DataTypeInt8Array, DataTypeUint8Array:
		return 1, nil
	case DataTypeInt16Array, DataTypeUint16Array:
		return 2, nil
	case DataTypeInt32Array, DataTypeUint32Array, DataTypeFloatArray:
		return 4, nil
	case DataTypeInt64Array, DataTypeUint64Array, DataTypeDoubleArray:
		return 8, nil
	case DataTypeStringArray:
		return 0, errs.ErrInvalidDataType
	default:
		return 0, errs.ErrInvalidDataType
	}
}

// BytesPerElementCompressed returns the on-disk element width produced by
// compression c applied to array data type dt, before entropy-coding
// bitpacking (i.e. the width the filter and scale stages operate on).
func BytesPerElementCompressed(dt DataType, c Compression) (uint8, error) {
	switch c {
	case CompressionPForDelta2DInt16, CompressionPForDelta2DInt16Logarithmic:
		if dt != DataTypeFloatArray {
			return 0, errs.ErrInvalidDataType
		}
		return 2, nil
	case CompressionFPXXor2D:
		if dt != DataTypeFloatArray && dt != DataTypeDoubleArray {
			return 0, errs.ErrInvalidDataType
		}
		return BytesPerElement(dt)
	case CompressionPForDelta2D:
		return BytesPerElement(dt)
	case CompressionNone:
		return BytesPerElement(dt)
	default:
		return 0, errs.ErrInvalidCompressionType
	}
}
