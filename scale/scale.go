// Package scale implements the linear scale/offset type-conversion copy
// routines applied between a chunk's decoded physical type (the source
// array's DataType) and its compressed-width integer representation, one
// pair of routines per (compression, type) combination.
//
// Every encode routine reserves the maximum value of its target integer
// width as a NaN sentinel. The reference implementation clamps scaled
// values to the full signed range, which lets a legitimately large finite
// value collide with that sentinel; this package clamps to TypeMax-1
// instead so the sentinel stays unambiguous.
package scale

import (
	"encoding/binary"
	"math"

	"github.com/gridcube/omfile/errs"
)

// EncodeFloatToInt16 scales n float32 values from src into n int16 values
// in dst using value*scale+offset, rounding and clamping to
// [MinInt16, MaxInt16-1]; NaN maps to MaxInt16.
func EncodeFloatToInt16(n int, scaleFactor, addOffset float32, src, dst []byte) {
	for i := 0; i < n; i++ {
		val := math.Float32frombits(binary.LittleEndian.Uint32(src[i*4:]))
		var out int16
		if math.IsNaN(float64(val)) {
			out = math.MaxInt16
		} else {
			scaled := val*scaleFactor + addOffset
			clamped := clampFloat32(scaled, math.MinInt16, math.MaxInt16-1)
			out = int16(clamped)
		}
		binary.LittleEndian.PutUint16(dst[i*2:], uint16(out))
	}
}

// DecodeInt16ToFloat converts n int16 values back to float32 using
// value/scale - offset; MaxInt16 maps to NaN. This undoes
// EncodeFloatToInt16 (up to rounding) only when addOffset is 0.
func DecodeInt16ToFloat(n int, scaleFactor, addOffset float32, src, dst []byte) {
	for i := 0; i < n; i++ {
		val := int16(binary.LittleEndian.Uint16(src[i*2:]))
		var out float32
		if val == math.MaxInt16 {
			out = float32(math.NaN())
		} else {
			out = float32(val)/scaleFactor - addOffset
		}
		binary.LittleEndian.PutUint32(dst[i*4:], math.Float32bits(out))
	}
}

// EncodeFloatToInt16Log10 is EncodeFloatToInt16's log10 variant: scaled =
// log10(1+val) * scale, with no additive offset term.
func EncodeFloatToInt16Log10(n int, scaleFactor float32, src, dst []byte) {
	for i := 0; i < n; i++ {
		val := math.Float32frombits(binary.LittleEndian.Uint32(src[i*4:]))
		var out int16
		if math.IsNaN(float64(val)) {
			out = math.MaxInt16
		} else {
			scaled := float32(math.Log10(1+float64(val))) * scaleFactor
			clamped := clampFloat32(scaled, math.MinInt16, math.MaxInt16-1)
			out = int16(clamped)
		}
		binary.LittleEndian.PutUint16(dst[i*2:], uint16(out))
	}
}

// DecodeInt16ToFloatLog10 is the inverse of EncodeFloatToInt16Log10.
func DecodeInt16ToFloatLog10(n int, scaleFactor float32, src, dst []byte) {
	for i := 0; i < n; i++ {
		val := int16(binary.LittleEndian.Uint16(src[i*2:]))
		var out float32
		if val == math.MaxInt16 {
			out = float32(math.NaN())
		} else {
			out = float32(math.Pow(10, float64(val)/float64(scaleFactor))) - 1
		}
		binary.LittleEndian.PutUint32(dst[i*4:], math.Float32bits(out))
	}
}

// EncodeFloatToInt32 scales n float32 values into n int32 values.
func EncodeFloatToInt32(n int, scaleFactor, addOffset float32, src, dst []byte) {
	for i := 0; i < n; i++ {
		val := math.Float32frombits(binary.LittleEndian.Uint32(src[i*4:]))
		var out int32
		if math.IsNaN(float64(val)) {
			out = math.MaxInt32
		} else {
			scaled := val*scaleFactor + addOffset
			clamped := clampFloat32(scaled, math.MinInt32, math.MaxInt32-1)
			out = int32(clamped)
		}
		binary.LittleEndian.PutUint32(dst[i*4:], uint32(out))
	}
}

// DecodeInt32ToFloat converts n int32 values back to float32 using
// value/scale - offset; MaxInt32 maps to NaN. This undoes
// EncodeFloatToInt32 (up to rounding) only when addOffset is 0.
func DecodeInt32ToFloat(n int, scaleFactor, addOffset float32, src, dst []byte) {
	for i := 0; i < n; i++ {
		val := int32(binary.LittleEndian.Uint32(src[i*4:]))
		var out float32
		if val == math.MaxInt32 {
			out = float32(math.NaN())
		} else {
			out = float32(val)/scaleFactor - addOffset
		}
		binary.LittleEndian.PutUint32(dst[i*4:], math.Float32bits(out))
	}
}

// EncodeDoubleToInt64 scales n float64 values into n int64 values; scale
// and offset remain float32 per the wire format's stored field width, but
// arithmetic happens in float64.
func EncodeDoubleToInt64(n int, scaleFactor, addOffset float32, src, dst []byte) {
	scale64 := float64(scaleFactor)
	offset64 := float64(addOffset)
	for i := 0; i < n; i++ {
		val := math.Float64frombits(binary.LittleEndian.Uint64(src[i*8:]))
		var out int64
		if math.IsNaN(val) {
			out = math.MaxInt64
		} else {
			scaled := val*scale64 + offset64
			clamped := clampFloat64(scaled, math.MinInt64, math.MaxInt64-1)
			out = int64(clamped)
		}
		binary.LittleEndian.PutUint64(dst[i*8:], uint64(out))
	}
}

// DecodeInt64ToDouble converts n int64 values back to float64 using
// value/scale - offset; MaxInt64 maps to NaN. This undoes
// EncodeDoubleToInt64 (up to rounding) only when addOffset is 0.
func DecodeInt64ToDouble(n int, scaleFactor, addOffset float32, src, dst []byte) {
	scale64 := float64(scaleFactor)
	offset64 := float64(addOffset)
	for i := 0; i < n; i++ {
		val := int64(binary.LittleEndian.Uint64(src[i*8:]))
		var out float64
		if val == math.MaxInt64 {
			out = math.NaN()
		} else {
			out = float64(val)/scale64 - offset64
		}
		binary.LittleEndian.PutUint64(dst[i*8:], math.Float64bits(out))
	}
}

// Copy passthrough-copies n elements of the given byte width with no
// scaling, for CompressionPForDelta2D on non-float array types.
func Copy(width, n int, src, dst []byte) error {
	switch width {
	case 1, 2, 4, 8:
		copy(dst[:n*width], src[:n*width])
		return nil
	default:
		return errs.ErrInvalidDataType
	}
}

func clampFloat32(v float32, lo, hi float64) float64 {
	r := math.Round(float64(v))
	if r < lo {
		return lo
	}
	if r > hi {
		return hi
	}
	return r
}

func clampFloat64(v, lo, hi float64) float64 {
	r := math.Round(v)
	if r < lo {
		return lo
	}
	if r > hi {
		return hi
	}
	return r
}
