// Package endian provides byte order utilities for parsing and serializing
// the fixed-width fields used throughout the array file's binary layouts.
//
// It combines ByteOrder and AppendByteOrder into a single EndianEngine
// interface so callers get both random-access Put/Uint64-style decoding and
// allocation-light Append-style encoding from one value.
//
// The on-disk format is always little-endian; Engine is that byte order,
// and GetBigEndianEngine returns the opposite order for callers that want
// to compare against it.
package endian

import (
	"encoding/binary"
	"unsafe"
)

// EndianEngine combines ByteOrder and AppendByteOrder interfaces from encoding/binary
// into a single interface for convenient byte order operations.
//
// binary.LittleEndian and binary.BigEndian both satisfy this interface.
type EndianEngine interface {
	binary.ByteOrder
	binary.AppendByteOrder
}

// Engine is the byte order used by every on-disk layout in this module.
var Engine EndianEngine = binary.LittleEndian

// CheckEndianness uses a fixed integer value to determine the host's byte order.
func CheckEndianness() binary.ByteOrder {
	var i uint16 = 0x0100

	b := (*[2]byte)(unsafe.Pointer(&i))

	if b[0] == 0x01 {
		return binary.BigEndian
	}

	return binary.LittleEndian
}

func IsNativeLittleEndian() bool {
	return CheckEndianness() == binary.LittleEndian
}

// GetLittleEndianEngine returns the little-endian engine used by this format.
func GetLittleEndianEngine() EndianEngine {
	return binary.LittleEndian
}

// GetBigEndianEngine returns the big-endian engine. No codec in this module
// uses it; every on-disk layout is little-endian.
func GetBigEndianEngine() EndianEngine {
	return binary.BigEndian
}
