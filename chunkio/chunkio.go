// Package chunkio implements the per-chunk encode/decode pipeline: scale
// conversion, the 2-D delta/XOR filter, and entropy coding, composed in
// the order the wire format requires (encode: scale -> filter -> entropy;
// decode: entropy -> filter -> scale). A ChunkCodec is immutable once
// built via NewChunkCodec and reused across every chunk of one array
// variable.
package chunkio

import (
	"github.com/gridcube/omfile/endian"
	"github.com/gridcube/omfile/errs"
	"github.com/gridcube/omfile/filter"
	"github.com/gridcube/omfile/format"
	"github.com/gridcube/omfile/internal/bitpack"
	"github.com/gridcube/omfile/internal/fpx"
	"github.com/gridcube/omfile/internal/options"
	"github.com/gridcube/omfile/internal/pool"
	"github.com/gridcube/omfile/scale"
)

// ChunkCodec encodes and decodes chunks for one array variable's data
// type, compression scheme, and scale parameters.
type ChunkCodec struct {
	dataType    format.DataType
	compression format.Compression
	scaleFactor float32
	addOffset   float32

	nativeWidth     int
	compressedWidth int
}

// ChunkCodecOption configures a ChunkCodec at construction time.
type ChunkCodecOption = options.Option[*ChunkCodec]

// WithScale sets the linear scale factor and additive offset used by the
// lossy integer compression schemes. Ignored by CompressionFPXXor2D and
// CompressionNone, which never convert the element type.
func WithScale(scaleFactor, addOffset float32) ChunkCodecOption {
	return options.NoError(func(c *ChunkCodec) {
		c.scaleFactor = scaleFactor
		c.addOffset = addOffset
	})
}

// NewChunkCodec builds a ChunkCodec for dataType compressed with
// compression.
func NewChunkCodec(dataType format.DataType, compression format.Compression, opts ...ChunkCodecOption) (*ChunkCodec, error) {
	nativeWidth, err := format.BytesPerElement(dataType)
	if err != nil {
		return nil, err
	}
	compressedWidth, err := format.BytesPerElementCompressed(dataType, compression)
	if err != nil {
		return nil, err
	}
	c := &ChunkCodec{
		dataType:        dataType,
		compression:     compression,
		scaleFactor:     1,
		nativeWidth:     int(nativeWidth),
		compressedWidth: int(compressedWidth),
	}
	if err := options.Apply(c, opts...); err != nil {
		return nil, err
	}
	return c, nil
}

// MaxEncodedSize returns the worst-case entropy-coded byte size for n
// elements.
func (c *ChunkCodec) MaxEncodedSize(n int) int {
	if c.compression == format.CompressionNone {
		return n * c.nativeWidth
	}
	if c.compression == format.CompressionFPXXor2D {
		return n * (c.compressedWidth + 2)
	}
	return bitpack.MaxEncodedSize(n, c.compressedWidth)
}

// EncodeChunk encodes n native-width elements from src (rows x lengthLast
// in row-major order) into dst, returning the number of bytes written.
func (c *ChunkCodec) EncodeChunk(rows, lengthLast int, src []byte, dst []byte) (int, error) {
	n := rows * lengthLast

	if c.compression == format.CompressionNone {
		m := n * c.nativeWidth
		copy(dst[:m], src[:m])
		return m, nil
	}

	scratch := pool.Get()
	defer pool.Put(scratch)
	scratch.Grow(n * c.compressedWidth)
	buf := scratch.B

	if c.compression == format.CompressionFPXXor2D {
		copy(buf, src[:n*c.compressedWidth])
		if err := filter.EncodeXOR(c.dataType, rows, lengthLast, buf); err != nil {
			return 0, err
		}
		switch c.compressedWidth {
		case 4:
			values := bytesToU64(buf, 4, n)
			return writeFPX(32, values, dst)
		case 8:
			values := bytesToU64(buf, 8, n)
			return writeFPX(64, values, dst)
		default:
			return 0, errs.ErrInvalidDataType
		}
	}

	if err := c.scaleEncode(n, src, buf); err != nil {
		return 0, err
	}

	signed := true
	switch c.compression {
	case format.CompressionPForDelta2DInt16, format.CompressionPForDelta2DInt16Logarithmic:
		if err := filter.EncodeInt(c.compressedWidth, rows, lengthLast, buf); err != nil {
			return 0, err
		}
	case format.CompressionPForDelta2D:
		if err := filter.EncodeInt(c.compressedWidth, rows, lengthLast, buf); err != nil {
			return 0, err
		}
		signed = isSignedDataType(c.dataType)
	default:
		return 0, errs.ErrInvalidCompressionType
	}

	if signed {
		return bitpack.EncodeZigzag(c.compressedWidth, buf, n, dst)
	}
	return bitpack.EncodeDelta(c.compressedWidth, buf, n, dst)
}

// DecodeChunk is the inverse of EncodeChunk: it decodes n native-width
// elements from src into dst.
func (c *ChunkCodec) DecodeChunk(rows, lengthLast int, src []byte, dst []byte) error {
	n := rows * lengthLast

	if c.compression == format.CompressionNone {
		m := n * c.nativeWidth
		copy(dst[:m], src[:m])
		return nil
	}

	if c.compression == format.CompressionFPXXor2D {
		var values []uint64
		var err error
		switch c.compressedWidth {
		case 4:
			values, err = readFPX(32, src, n)
		case 8:
			values, err = readFPX(64, src, n)
		default:
			return errs.ErrInvalidDataType
		}
		if err != nil {
			return err
		}
		buf := u64ToBytes(values, c.compressedWidth)
		if err := filter.DecodeXOR(c.dataType, rows, lengthLast, buf); err != nil {
			return err
		}
		copy(dst[:n*c.compressedWidth], buf)
		return nil
	}

	signed := true
	if c.compression == format.CompressionPForDelta2D {
		signed = isSignedDataType(c.dataType)
	}

	scratch := pool.Get()
	defer pool.Put(scratch)
	scratch.Grow(n * c.compressedWidth)
	buf := scratch.B
	var err error
	if signed {
		_, err = bitpack.DecodeZigzag(c.compressedWidth, src, n, buf)
	} else {
		_, err = bitpack.DecodeDelta(c.compressedWidth, src, n, buf)
	}
	if err != nil {
		return err
	}

	if err := filter.DecodeInt(c.compressedWidth, rows, lengthLast, buf); err != nil {
		return err
	}

	return c.scaleDecode(n, buf, dst)
}

func (c *ChunkCodec) scaleEncode(n int, src, dst []byte) error {
	switch c.compression {
	case format.CompressionPForDelta2DInt16:
		scale.EncodeFloatToInt16(n, c.scaleFactor, c.addOffset, src, dst)
		return nil
	case format.CompressionPForDelta2DInt16Logarithmic:
		scale.EncodeFloatToInt16Log10(n, c.scaleFactor, src, dst)
		return nil
	case format.CompressionPForDelta2D:
		switch c.dataType {
		case format.DataTypeFloatArray:
			scale.EncodeFloatToInt32(n, c.scaleFactor, c.addOffset, src, dst)
			return nil
		case format.DataTypeDoubleArray:
			scale.EncodeDoubleToInt64(n, c.scaleFactor, c.addOffset, src, dst)
			return nil
		default:
			return scale.Copy(c.compressedWidth, n, src, dst)
		}
	default:
		return errs.ErrInvalidCompressionType
	}
}

func (c *ChunkCodec) scaleDecode(n int, src, dst []byte) error {
	switch c.compression {
	case format.CompressionPForDelta2DInt16:
		scale.DecodeInt16ToFloat(n, c.scaleFactor, c.addOffset, src, dst)
		return nil
	case format.CompressionPForDelta2DInt16Logarithmic:
		scale.DecodeInt16ToFloatLog10(n, c.scaleFactor, src, dst)
		return nil
	case format.CompressionPForDelta2D:
		switch c.dataType {
		case format.DataTypeFloatArray:
			scale.DecodeInt32ToFloat(n, c.scaleFactor, c.addOffset, src, dst)
			return nil
		case format.DataTypeDoubleArray:
			scale.DecodeInt64ToDouble(n, c.scaleFactor, c.addOffset, src, dst)
			return nil
		default:
			return scale.Copy(c.compressedWidth, n, src, dst)
		}
	default:
		return errs.ErrInvalidCompressionType
	}
}

func isSignedDataType(dt format.DataType) bool {
	switch dt {
	case format.DataTypeInt8Array, format.DataTypeInt16Array, format.DataTypeInt32Array, format.DataTypeInt64Array,
		format.DataTypeFloatArray, format.DataTypeDoubleArray:
		return true
	default:
		return false
	}
}

func writeFPX(width int, values []uint64, dst []byte) (int, error) {
	out, err := fpx.Encode(width, values, dst[:0])
	if err != nil {
		return 0, err
	}
	copy(dst, out)
	return len(out), nil
}

func readFPX(width int, src []byte, n int) ([]uint64, error) {
	values := make([]uint64, n)
	if err := fpx.Decode(width, src, n, values); err != nil {
		return nil, err
	}
	return values, nil
}

func bytesToU64(buf []byte, width, n int) []uint64 {
	out := make([]uint64, n)
	for i := 0; i < n; i++ {
		switch width {
		case 4:
			out[i] = uint64(endian.Engine.Uint32(buf[i*4:]))
		case 8:
			out[i] = endian.Engine.Uint64(buf[i*8:])
		}
	}
	return out
}

func u64ToBytes(values []uint64, width int) []byte {
	out := make([]byte, len(values)*width)
	for i, v := range values {
		switch width {
		case 4:
			endian.Engine.PutUint32(out[i*4:], uint32(v))
		case 8:
			endian.Engine.PutUint64(out[i*8:], v)
		}
	}
	return out
}
