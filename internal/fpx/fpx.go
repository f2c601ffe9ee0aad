// Package fpx implements the lossless XOR-with-previous-value float
// entropy coder used for CompressionFPXXor2D, generalized from the
// teacher's float64-only Gorilla bit-packer to operate on both float32 and
// float64 element streams via an explicit width parameter.
//
// Layout: the first value is stored raw at the given width. Each
// subsequent value is XORed with its predecessor; an all-zero XOR costs a
// single bit, otherwise a leading/trailing-zero "meaningful window" is
// bit-packed, reusing the previous window when it still covers the new
// value's nonzero bits.
package fpx

import (
	"math"
	"math/bits"

	"github.com/gridcube/omfile/errs"
)

type bitWriter struct {
	buf      []byte
	bitBuf   uint64
	bitCount int
}

func (w *bitWriter) writeBit(b uint64) {
	w.writeBits(b, 1)
}

func (w *bitWriter) writeBits(value uint64, n int) {
	if n == 0 {
		return
	}
	if n < 64 {
		value &= (uint64(1) << uint(n)) - 1
	}
	available := 64 - w.bitCount
	if n <= available {
		w.bitBuf = (w.bitBuf << uint(n)) | value
		w.bitCount += n
		if w.bitCount == 64 {
			w.flush()
		}
		return
	}
	high := n - available
	w.bitBuf = (w.bitBuf << uint(available)) | (value >> uint(high))
	w.bitCount = 64
	w.flush()
	w.bitBuf = value & ((uint64(1) << uint(high)) - 1)
	w.bitCount = high
}

func (w *bitWriter) flush() {
	if w.bitCount == 0 {
		return
	}
	n := (w.bitCount + 7) / 8
	aligned := w.bitBuf << uint(64-w.bitCount)
	for i := 0; i < n; i++ {
		w.buf = append(w.buf, byte(aligned>>uint(56-i*8)))
	}
	w.bitBuf = 0
	w.bitCount = 0
}

type bitReader struct {
	data     []byte
	bytePos  int
	bitBuf   uint64
	bitCount int
}

func (r *bitReader) fill() bool {
	if r.bytePos >= len(r.data) {
		return false
	}
	avail := len(r.data) - r.bytePos
	n := 8
	if n > avail {
		n = avail
	}
	var v uint64
	for i := 0; i < n; i++ {
		v = (v << 8) | uint64(r.data[r.bytePos])
		r.bytePos++
	}
	v <<= uint(8 * (8 - n))
	r.bitBuf = v
	r.bitCount = n * 8
	return true
}

func (r *bitReader) readBit() (uint64, bool) {
	return r.readBits(1)
}

func (r *bitReader) readBits(n int) (uint64, bool) {
	if n == 0 {
		return 0, true
	}
	if n <= r.bitCount {
		shift := 64 - n
		v := r.bitBuf >> uint(shift)
		r.bitBuf <<= uint(n)
		r.bitCount -= n
		return v, true
	}
	var result uint64
	first := true
	for n > 0 {
		if r.bitCount == 0 {
			if !r.fill() {
				return 0, false
			}
		}
		take := n
		if take > r.bitCount {
			take = r.bitCount
		}
		shift := 64 - take
		chunk := r.bitBuf >> uint(shift)
		if first {
			result = chunk
			first = false
		} else {
			result = (result << uint(take)) | chunk
		}
		r.bitBuf <<= uint(take)
		r.bitCount -= take
		n -= take
	}
	return result, true
}

func windowBits(width int) int {
	return bits.Len(uint(width - 1))
}

// Encode XOR-entropy-codes n values of the given bit width (32 or 64,
// float32/float64 bit patterns respectively) from src, appending the
// encoded bytes to dst and returning the extended slice.
func Encode(width int, src []uint64, dst []byte) ([]byte, error) {
	if width != 32 && width != 64 {
		return nil, errs.ErrInvalidDataType
	}
	if len(src) == 0 {
		return dst, nil
	}
	w := &bitWriter{buf: dst}
	w.writeBits(src[0], width)

	wb := windowBits(width)
	prev := src[0]
	prevTrailing, prevSize := 0, 0
	haveBlock := false

	for i := 1; i < len(src); i++ {
		v := src[i]
		xor := v ^ prev
		prev = v
		if xor == 0 {
			w.writeBit(0)
			continue
		}
		w.writeBit(1)
		leading := width - bits.Len64(xor)
		trailing := bits.TrailingZeros64(xor)
		if trailing >= width {
			trailing = width - 1
		}
		if haveBlock && leading >= width-prevSize-prevTrailing && trailing >= prevTrailing {
			w.writeBit(0)
			w.writeBits(xor>>uint(prevTrailing), prevSize)
			continue
		}
		size := width - leading - trailing
		w.writeBit(1)
		w.writeBits(uint64(leading), wb)
		w.writeBits(uint64(size-1), wb)
		w.writeBits(xor>>uint(trailing), size)
		prevTrailing = trailing
		prevSize = size
		haveBlock = true
	}
	w.flush()
	return w.buf, nil
}

// Decode is the inverse of Encode: it reads n values of the given bit
// width from src into dst.
func Decode(width int, src []byte, n int, dst []uint64) error {
	if width != 32 && width != 64 {
		return errs.ErrInvalidDataType
	}
	if n == 0 {
		return nil
	}
	r := &bitReader{data: src}
	first, ok := r.readBits(width)
	if !ok {
		return errs.ErrOutOfBoundRead
	}
	dst[0] = first
	prev := first

	wb := windowBits(width)
	prevTrailing, prevSize := 0, 0
	haveBlock := false

	for i := 1; i < n; i++ {
		bit, ok := r.readBit()
		if !ok {
			return errs.ErrOutOfBoundRead
		}
		if bit == 0 {
			dst[i] = prev
			continue
		}
		reuse, ok := r.readBit()
		if !ok {
			return errs.ErrOutOfBoundRead
		}
		var trailing, size int
		if reuse == 0 {
			if !haveBlock {
				return errs.ErrOutOfBoundRead
			}
			trailing, size = prevTrailing, prevSize
		} else {
			leadingU, ok := r.readBits(wb)
			if !ok {
				return errs.ErrOutOfBoundRead
			}
			sizeU, ok := r.readBits(wb)
			if !ok {
				return errs.ErrOutOfBoundRead
			}
			size = int(sizeU) + 1
			trailing = width - int(leadingU) - size
			if trailing < 0 || size < 1 || size > width {
				return errs.ErrOutOfBoundRead
			}
			prevTrailing, prevSize = trailing, size
			haveBlock = true
		}
		meaningful, ok := r.readBits(size)
		if !ok {
			return errs.ErrOutOfBoundRead
		}
		prev ^= meaningful << uint(trailing)
		dst[i] = prev
	}
	return nil
}

// EncodeFloat32/EncodeFloat64 and DecodeFloat32/DecodeFloat64 are thin
// wrappers converting to/from the raw bit representation Encode/Decode
// operate on.
func EncodeFloat32(values []float32, dst []byte) ([]byte, error) {
	bitsSlice := make([]uint64, len(values))
	for i, v := range values {
		bitsSlice[i] = uint64(math.Float32bits(v))
	}
	return Encode(32, bitsSlice, dst)
}

func EncodeFloat64(values []float64, dst []byte) ([]byte, error) {
	bitsSlice := make([]uint64, len(values))
	for i, v := range values {
		bitsSlice[i] = math.Float64bits(v)
	}
	return Encode(64, bitsSlice, dst)
}

func DecodeFloat32(src []byte, n int, dst []float32) error {
	bitsSlice := make([]uint64, n)
	if err := Decode(32, src, n, bitsSlice); err != nil {
		return err
	}
	for i, b := range bitsSlice {
		dst[i] = math.Float32frombits(uint32(b))
	}
	return nil
}

func DecodeFloat64(src []byte, n int, dst []float64) error {
	bitsSlice := make([]uint64, n)
	if err := Decode(64, src, n, bitsSlice); err != nil {
		return err
	}
	for i, b := range bitsSlice {
		dst[i] = math.Float64frombits(b)
	}
	return nil
}
