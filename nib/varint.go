package nib

import (
	nbin "github.com/wippyai/nib-archive/nib/internal/binary"
)

// Varint encoding/decoding for the archive's counts, offsets and indices.
//
// Integers are split into 7-bit groups, least significant group first. The
// high bit is set on the last byte of a sequence and clear on every byte
// before it, the opposite of LEB128:
//
//	0   -> 80
//	127 -> ff
//	128 -> 00 81
//	300 -> 2c 82

// MaxVarintLen is the longest varint encoding of a uint64.
const MaxVarintLen = nbin.MaxVarintLen

// ReadVarint decodes the varint that starts at data[pos]. It returns the
// value and the number of bytes consumed. It fails with a truncated error if
// data ends before the terminal byte, and with a varint_overflow error if the
// value does not fit in 64 bits.
func ReadVarint(data []byte, pos int) (uint64, int, error) {
	return nbin.DecodeVarint(data, pos)
}

// AppendVarint appends the minimal encoding of v to dst.
func AppendVarint(dst []byte, v uint64) []byte {
	return nbin.AppendVarint(dst, v)
}

// EncodeVarint returns the minimal encoding of v.
func EncodeVarint(v uint64) []byte {
	return nbin.AppendVarint(make([]byte, 0, varintLen(v)), v)
}

// VarintLen returns the length of the minimal encoding of v.
func VarintLen(v uint64) int {
	return varintLen(v)
}

func varintLen(v uint64) int {
	return nbin.VarintLen(v)
}
