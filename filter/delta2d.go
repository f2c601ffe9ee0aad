// Package filter implements the row-wise 2-D delta and XOR filters applied
// to a chunk's compressed-width byte buffer before entropy coding (encode)
// or after entropy decoding (decode). Every filter mutates its buffer in
// place, viewing it as a rows×lengthLast matrix in row-major order.
package filter

import (
	"github.com/gridcube/omfile/endian"
	"github.com/gridcube/omfile/errs"
	"github.com/gridcube/omfile/format"
)

// EncodeInt applies the forward delta filter for the given element width
// (1, 2, 4, or 8 bytes) to buf, which holds rows*lengthLast signed
// integers packed at that width, little-endian.
func EncodeInt(width int, rows, lengthLast int, buf []byte) error {
	switch width {
	case 1:
		encodeDelta8(rows, lengthLast, buf)
	case 2:
		encodeDelta16(rows, lengthLast, buf)
	case 4:
		encodeDelta32(rows, lengthLast, buf)
	case 8:
		encodeDelta64(rows, lengthLast, buf)
	default:
		return errs.ErrInvalidDataType
	}
	return nil
}

// DecodeInt applies the inverse (prefix-sum) delta filter.
func DecodeInt(width int, rows, lengthLast int, buf []byte) error {
	switch width {
	case 1:
		decodeDelta8(rows, lengthLast, buf)
	case 2:
		decodeDelta16(rows, lengthLast, buf)
	case 4:
		decodeDelta32(rows, lengthLast, buf)
	case 8:
		decodeDelta64(rows, lengthLast, buf)
	default:
		return errs.ErrInvalidDataType
	}
	return nil
}

// EncodeXOR applies the forward XOR filter for float32/float64 arrays.
func EncodeXOR(dt format.DataType, rows, lengthLast int, buf []byte) error {
	switch dt {
	case format.DataTypeFloatArray:
		encodeXOR32(rows, lengthLast, buf)
	case format.DataTypeDoubleArray:
		encodeXOR64(rows, lengthLast, buf)
	default:
		return errs.ErrInvalidDataType
	}
	return nil
}

// DecodeXOR applies the inverse XOR filter for float32/float64 arrays,
// restoring rows top-down so each row is XORed with the already restored
// row above it.
func DecodeXOR(dt format.DataType, rows, lengthLast int, buf []byte) error {
	switch dt {
	case format.DataTypeFloatArray:
		for r := 1; r < rows; r++ {
			encodeXOR32(2, lengthLast, buf[(r-1)*lengthLast*4:])
		}
	case format.DataTypeDoubleArray:
		for r := 1; r < rows; r++ {
			encodeXOR64(2, lengthLast, buf[(r-1)*lengthLast*8:])
		}
	default:
		return errs.ErrInvalidDataType
	}
	return nil
}

func encodeDelta8(rows, lengthLast int, buf []byte) {
	for r := rows - 1; r >= 1; r-- {
		for c := 0; c < lengthLast; c++ {
			i := r*lengthLast + c
			buf[i] = buf[i] - buf[i-lengthLast]
		}
	}
}

func decodeDelta8(rows, lengthLast int, buf []byte) {
	for r := 1; r < rows; r++ {
		for c := 0; c < lengthLast; c++ {
			i := r*lengthLast + c
			buf[i] = buf[i] + buf[i-lengthLast]
		}
	}
}

func encodeDelta16(rows, lengthLast int, buf []byte) {
	for r := rows - 1; r >= 1; r-- {
		for c := 0; c < lengthLast; c++ {
			i := (r*lengthLast + c) * 2
			j := i - lengthLast*2
			v := int16(endian.Engine.Uint16(buf[i:])) - int16(endian.Engine.Uint16(buf[j:]))
			endian.Engine.PutUint16(buf[i:], uint16(v))
		}
	}
}

func decodeDelta16(rows, lengthLast int, buf []byte) {
	for r := 1; r < rows; r++ {
		for c := 0; c < lengthLast; c++ {
			i := (r*lengthLast + c) * 2
			j := i - lengthLast*2
			v := int16(endian.Engine.Uint16(buf[i:])) + int16(endian.Engine.Uint16(buf[j:]))
			endian.Engine.PutUint16(buf[i:], uint16(v))
		}
	}
}

func encodeDelta32(rows, lengthLast int, buf []byte) {
	for r := rows - 1; r >= 1; r-- {
		for c := 0; c < lengthLast; c++ {
			i := (r*lengthLast + c) * 4
			j := i - lengthLast*4
			v := int32(endian.Engine.Uint32(buf[i:])) - int32(endian.Engine.Uint32(buf[j:]))
			endian.Engine.PutUint32(buf[i:], uint32(v))
		}
	}
}

func decodeDelta32(rows, lengthLast int, buf []byte) {
	for r := 1; r < rows; r++ {
		for c := 0; c < lengthLast; c++ {
			i := (r*lengthLast + c) * 4
			j := i - lengthLast*4
			v := int32(endian.Engine.Uint32(buf[i:])) + int32(endian.Engine.Uint32(buf[j:]))
			endian.Engine.PutUint32(buf[i:], uint32(v))
		}
	}
}

func encodeDelta64(rows, lengthLast int, buf []byte) {
	for r := rows - 1; r >= 1; r-- {
		for c := 0; c < lengthLast; c++ {
			i := (r*lengthLast + c) * 8
			j := i - lengthLast*8
			v := int64(endian.Engine.Uint64(buf[i:])) - int64(endian.Engine.Uint64(buf[j:]))
			endian.Engine.PutUint64(buf[i:], uint64(v))
		}
	}
}

func decodeDelta64(rows, lengthLast int, buf []byte) {
	for r := 1; r < rows; r++ {
		for c := 0; c < lengthLast; c++ {
			i := (r*lengthLast + c) * 8
			j := i - lengthLast*8
			v := int64(endian.Engine.Uint64(buf[i:])) + int64(endian.Engine.Uint64(buf[j:]))
			endian.Engine.PutUint64(buf[i:], uint64(v))
		}
	}
}

func encodeXOR32(rows, lengthLast int, buf []byte) {
	for r := rows - 1; r >= 1; r-- {
		for c := 0; c < lengthLast; c++ {
			i := (r*lengthLast + c) * 4
			j := i - lengthLast*4
			v := endian.Engine.Uint32(buf[i:]) ^ endian.Engine.Uint32(buf[j:])
			endian.Engine.PutUint32(buf[i:], v)
		}
	}
}

func encodeXOR64(rows, lengthLast int, buf []byte) {
	for r := rows - 1; r >= 1; r-- {
		for c := 0; c < lengthLast; c++ {
			i := (r*lengthLast + c) * 8
			j := i - lengthLast*8
			v := endian.Engine.Uint64(buf[i:]) ^ endian.Engine.Uint64(buf[j:])
			endian.Engine.PutUint64(buf[i:], v)
		}
	}
}
