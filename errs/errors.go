// Package errs defines the sentinel errors returned across the module.
// Callers should compare with errors.Is, never string-match Error().
package errs

import "errors"

var (
	// ErrInvalidCompressionType is returned when a Compression value is not
	// one of the defined constants, or is not valid for the data type it was
	// paired with.
	ErrInvalidCompressionType = errors.New("omfile: invalid compression type")

	// ErrInvalidDataType is returned when a DataType value is not one of the
	// defined constants, or is not valid in the context it was used (e.g. a
	// scalar type where an array type is required).
	ErrInvalidDataType = errors.New("omfile: invalid data type")

	// ErrOutOfBoundRead is returned when decoding data would read past the
	// bounds of a buffer — always indicates a corrupted or truncated file.
	ErrOutOfBoundRead = errors.New("omfile: corrupted data: out-of-bound read")

	// ErrNotAnOmFile is returned when a buffer does not carry a recognized
	// magic number / version combination.
	ErrNotAnOmFile = errors.New("omfile: not an om file")

	// ErrDeflatedSizeMismatch is returned when the compressed bytes consumed
	// by a data read's chunks do not match the byte count the read plan
	// expected.
	ErrDeflatedSizeMismatch = errors.New("omfile: corrupted data: deflated size does not match")

	// ErrInvalidDimensions is returned when a variable's dimension count is
	// zero, or its dimensions/chunk-dimensions slices have mismatched
	// lengths.
	ErrInvalidDimensions = errors.New("omfile: invalid dimensions")

	// ErrInvalidChunkDimensions is returned when a chunk dimension is zero
	// or exceeds its corresponding array dimension in an invalid way.
	ErrInvalidChunkDimensions = errors.New("omfile: invalid chunk dimensions")

	// ErrInvalidReadOffset is returned when a requested read offset lies
	// outside a variable's dimensions.
	ErrInvalidReadOffset = errors.New("omfile: invalid read offset")

	// ErrInvalidReadCount is returned when a requested read count is zero or
	// extends past a variable's dimensions.
	ErrInvalidReadCount = errors.New("omfile: invalid read count")

	// ErrInvalidCubeOffset is returned when an output cube offset/dimensions
	// pairing cannot hold the requested read.
	ErrInvalidCubeOffset = errors.New("omfile: invalid cube offset")

	// ErrInvalidHeaderSize is returned when a fixed-size header region is
	// shorter than required.
	ErrInvalidHeaderSize = errors.New("omfile: invalid header size")

	// ErrInvalidMemoryLayout is returned when a variable record's magic /
	// type tag does not match any of the legacy, array, or scalar layouts.
	ErrInvalidMemoryLayout = errors.New("omfile: invalid variable memory layout")

	// ErrBufferTooSmall is returned when a caller-supplied output buffer is
	// smaller than the size a Decode/Encode call requires.
	ErrBufferTooSmall = errors.New("omfile: destination buffer too small")
)
