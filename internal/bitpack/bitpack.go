// Package bitpack implements the integer entropy-coding family this format
// uses for bitpacked residuals and the LUT: a zigzag variant for signed
// values (2-D delta-filter residuals), and a delta variant for unsigned
// values (unsigned integer array residuals and the monotone LUT).
//
// Values are packed in fixed blocks of BlockSize elements. Each block
// carries a one-byte bit-width header followed by that many elements
// packed at the minimum width needed to hold the block, LSB-first. This is
// a narrowed FastPFOR-style layout: whole-chunk runs only, no per-block
// exception patch table, because the values this format feeds it never
// need one (NaN already has a reserved sentinel at the scale stage).
package bitpack

import (
	"math/bits"

	"github.com/gridcube/omfile/endian"
	"github.com/gridcube/omfile/errs"
)

// BlockSize is the number of elements packed per block.
const BlockSize = 256

// MaxEncodedSize returns the worst-case byte count EncodeZigzag/EncodeDelta
// may write for n elements of the given byte width, per the buffer-bound
// formula ceil(n/256) + (n+32)*width.
func MaxEncodedSize(n, width int) int {
	return (n+255)/256 + (n+32)*width
}

type bitWriter struct {
	buf []byte
	pos int // bit position
}

func newBitWriter(dst []byte) *bitWriter {
	return &bitWriter{buf: dst}
}

func (w *bitWriter) writeBits(v uint64, width int) {
	for width > 0 {
		byteIdx := w.pos / 8
		bitOff := w.pos % 8
		room := 8 - bitOff
		n := width
		if n > room {
			n = room
		}
		mask := uint64(1)<<uint(n) - 1
		w.buf[byteIdx] |= byte((v&mask)<<uint(bitOff)) & 0xFF
		v >>= uint(n)
		width -= n
		w.pos += n
	}
}

func (w *bitWriter) bytesWritten() int {
	return (w.pos + 7) / 8
}

type bitReader struct {
	buf []byte
	pos int
}

func newBitReader(src []byte) *bitReader {
	return &bitReader{buf: src}
}

func (r *bitReader) readBits(width int) uint64 {
	var v uint64
	var shift uint
	for width > 0 {
		byteIdx := r.pos / 8
		bitOff := r.pos % 8
		room := 8 - bitOff
		n := width
		if n > room {
			n = room
		}
		mask := uint64(1)<<uint(n) - 1
		chunk := (uint64(r.buf[byteIdx]) >> uint(bitOff)) & mask
		v |= chunk << shift
		shift += uint(n)
		width -= n
		r.pos += n
	}
	return v
}

func zigzag(v int64) uint64 {
	return uint64((v << 1) ^ (v >> 63))
}

func unzigzag(u uint64) int64 {
	return int64(u>>1) ^ -int64(u&1)
}

func readSigned(buf []byte, idx, width int) int64 {
	switch width {
	case 1:
		return int64(int8(buf[idx]))
	case 2:
		return int64(int16(endian.Engine.Uint16(buf[idx*2:])))
	case 4:
		return int64(int32(endian.Engine.Uint32(buf[idx*4:])))
	case 8:
		return int64(endian.Engine.Uint64(buf[idx*8:]))
	default:
		panic("bitpack: invalid width")
	}
}

func writeSigned(buf []byte, idx, width int, v int64) {
	switch width {
	case 1:
		buf[idx] = byte(v)
	case 2:
		endian.Engine.PutUint16(buf[idx*2:], uint16(v))
	case 4:
		endian.Engine.PutUint32(buf[idx*4:], uint32(v))
	case 8:
		endian.Engine.PutUint64(buf[idx*8:], uint64(v))
	default:
		panic("bitpack: invalid width")
	}
}

func readUnsigned(buf []byte, idx, width int) uint64 {
	switch width {
	case 1:
		return uint64(buf[idx])
	case 2:
		return uint64(endian.Engine.Uint16(buf[idx*2:]))
	case 4:
		return uint64(endian.Engine.Uint32(buf[idx*4:]))
	case 8:
		return endian.Engine.Uint64(buf[idx*8:])
	default:
		panic("bitpack: invalid width")
	}
}

func writeUnsigned(buf []byte, idx, width int, v uint64) {
	switch width {
	case 1:
		buf[idx] = byte(v)
	case 2:
		endian.Engine.PutUint16(buf[idx*2:], uint16(v))
	case 4:
		endian.Engine.PutUint32(buf[idx*4:], uint32(v))
	case 8:
		endian.Engine.PutUint64(buf[idx*8:], v)
	default:
		panic("bitpack: invalid width")
	}
}

// EncodeZigzag bitpacks n signed residuals (packed at byte width `width` in
// src, little-endian) using the zigzag transform. dst must be at least
// MaxEncodedSize(n, width) bytes; EncodeZigzag returns the number of bytes
// actually written.
func EncodeZigzag(width int, src []byte, n int, dst []byte) (int, error) {
	if width != 1 && width != 2 && width != 4 && width != 8 {
		return 0, errs.ErrInvalidDataType
	}
	return encodeBlocks(n, dst, func(i int) uint64 {
		return zigzag(readSigned(src, i, width))
	})
}

// DecodeZigzag is the inverse of EncodeZigzag. dst receives n signed values
// packed at byte width `width`, little-endian.
func DecodeZigzag(width int, src []byte, n int, dst []byte) (int, error) {
	if width != 1 && width != 2 && width != 4 && width != 8 {
		return 0, errs.ErrInvalidDataType
	}
	return decodeBlocks(n, src, func(i int, u uint64) {
		writeSigned(dst, i, width, unzigzag(u))
	})
}

// EncodeDelta bitpacks n unsigned values (packed at byte width `width` in
// src, little-endian) as the difference from the previous in-block
// element, taken modulo the element width; the first element of each
// block is stored as-is. This is the variant used for the LUT and the
// UINT*_ARRAY compressed paths, where consecutive values are typically
// close together and a delta needs far fewer bits than the raw value.
func EncodeDelta(width int, src []byte, n int, dst []byte) (int, error) {
	if width != 1 && width != 2 && width != 4 && width != 8 {
		return 0, errs.ErrInvalidDataType
	}
	mask := ^uint64(0)
	if width < 8 {
		mask = uint64(1)<<(8*uint(width)) - 1
	}
	return encodeBlocksDelta(n, mask, dst, func(i int) uint64 {
		return readUnsigned(src, i, width)
	})
}

// DecodeDelta is the inverse of EncodeDelta.
func DecodeDelta(width int, src []byte, n int, dst []byte) (int, error) {
	if width != 1 && width != 2 && width != 4 && width != 8 {
		return 0, errs.ErrInvalidDataType
	}
	prev := uint64(0)
	return decodeBlocks(n, src, func(i int, u uint64) {
		if i%BlockSize == 0 {
			prev = u
		} else {
			prev += u
		}
		writeUnsigned(dst, i, width, prev)
	})
}

// encodeBlocksDelta mirrors encodeBlocks but bitpacks the per-block delta
// sequence (first element plain, every later element the difference from
// its predecessor, masked to the element width) instead of the raw values,
// so the bit-width header reflects the spread between neighbours rather
// than the largest absolute value in the block.
func encodeBlocksDelta(n int, mask uint64, dst []byte, at func(i int) uint64) (int, error) {
	pos := 0
	deltas := make([]uint64, BlockSize)
	for base := 0; base < n; base += BlockSize {
		count := BlockSize
		if base+count > n {
			count = n - base
		}
		prev := uint64(0)
		maxV := uint64(0)
		for i := 0; i < count; i++ {
			v := at(base + i)
			if i == 0 {
				deltas[i] = v
			} else {
				deltas[i] = (v - prev) & mask
			}
			prev = v
			if deltas[i] > maxV {
				maxV = deltas[i]
			}
		}
		bitWidth := bits.Len64(maxV)
		if pos >= len(dst) {
			return 0, errs.ErrBufferTooSmall
		}
		dst[pos] = byte(bitWidth)
		pos++
		w := newBitWriter(dst[pos:])
		for i := 0; i < count; i++ {
			w.writeBits(deltas[i], bitWidth)
		}
		pos += w.bytesWritten()
	}
	return pos, nil
}

func encodeBlocks(n int, dst []byte, at func(i int) uint64) (int, error) {
	pos := 0
	for base := 0; base < n; base += BlockSize {
		count := BlockSize
		if base+count > n {
			count = n - base
		}
		maxV := uint64(0)
		for i := 0; i < count; i++ {
			if v := at(base + i); v > maxV {
				maxV = v
			}
		}
		bitWidth := bits.Len64(maxV)
		if pos >= len(dst) {
			return 0, errs.ErrBufferTooSmall
		}
		dst[pos] = byte(bitWidth)
		pos++
		w := newBitWriter(dst[pos:])
		for i := 0; i < count; i++ {
			w.writeBits(at(base+i), bitWidth)
		}
		pos += w.bytesWritten()
	}
	return pos, nil
}

func decodeBlocks(n int, src []byte, put func(i int, v uint64)) (int, error) {
	pos := 0
	for base := 0; base < n; base += BlockSize {
		count := BlockSize
		if base+count > n {
			count = n - base
		}
		if pos >= len(src) {
			return 0, errs.ErrOutOfBoundRead
		}
		bitWidth := int(src[pos])
		pos++
		r := newBitReader(src[pos:])
		for i := 0; i < count; i++ {
			put(base+i, r.readBits(bitWidth))
		}
		pos += (r.pos + 7) / 8
	}
	return pos, nil
}
