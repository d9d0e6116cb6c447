package binary

import (
	"encoding/binary"

	"github.com/wippyai/nib-archive/errors"
)

// MaxVarintLen is the longest varint encoding of a uint64.
const MaxVarintLen = 10

// Reader reads NIB Archive primitives from a byte slice with position tracking.
type Reader struct {
	data []byte
	pos  int
}

// NewReader creates a new Reader over data, positioned at 0.
func NewReader(data []byte) *Reader {
	return &Reader{data: data}
}

// Position returns the current byte position.
func (r *Reader) Position() int {
	return r.pos
}

// Len returns the total length of the underlying buffer.
func (r *Reader) Len() int {
	return len(r.data)
}

// Remaining returns the number of unread bytes.
func (r *Reader) Remaining() int {
	return len(r.data) - r.pos
}

// Reset seeks to the given absolute position.
func (r *Reader) Reset(pos int) error {
	if pos < 0 || pos > len(r.data) {
		return errors.New(errors.PhaseDecode, errors.KindBadOffset).
			At(pos).
			Detail("seek past end of %d-byte buffer", len(r.data)).
			Build()
	}
	r.pos = pos
	return nil
}

// ReadByte reads a single byte and advances the position.
func (r *Reader) ReadByte() (byte, error) {
	if r.pos >= len(r.data) {
		return 0, errors.Truncated(errors.PhaseDecode, r.pos, 1, 0)
	}
	b := r.data[r.pos]
	r.pos++
	return b, nil
}

// ReadBytes reads exactly n bytes. The result aliases the underlying buffer.
func (r *Reader) ReadBytes(n int) ([]byte, error) {
	if n < 0 || n > r.Remaining() {
		return nil, errors.Truncated(errors.PhaseDecode, r.pos, n, r.Remaining())
	}
	b := r.data[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}

// ReadVarint reads a NIB varint: 7-bit groups, least significant first,
// with the high bit set only on the final byte.
func (r *Reader) ReadVarint() (uint64, error) {
	v, n, err := DecodeVarint(r.data, r.pos)
	if err != nil {
		return 0, err
	}
	r.pos += n
	return v, nil
}

// ReadU16LE reads a little-endian uint16.
func (r *Reader) ReadU16LE() (uint16, error) {
	buf, err := r.ReadBytes(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(buf), nil
}

// ReadU32LE reads a little-endian uint32 (fixed 4 bytes).
func (r *Reader) ReadU32LE() (uint32, error) {
	buf, err := r.ReadBytes(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(buf), nil
}

// ReadU64LE reads a little-endian uint64 (fixed 8 bytes).
func (r *Reader) ReadU64LE() (uint64, error) {
	buf, err := r.ReadBytes(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(buf), nil
}

// ReadRemaining reads all remaining bytes.
func (r *Reader) ReadRemaining() []byte {
	b := r.data[r.pos:]
	r.pos = len(r.data)
	return b
}

// DecodeVarint decodes the varint starting at data[pos] and returns the
// value and the number of bytes consumed.
func DecodeVarint(data []byte, pos int) (uint64, int, error) {
	var result uint64
	var shift uint
	for i := pos; ; i++ {
		if i >= len(data) {
			return 0, 0, errors.New(errors.PhaseDecode, errors.KindTruncated).
				At(pos).
				Detail("varint not terminated before end of input").
				Build()
		}
		b := data[i]
		group := uint64(b & 0x7f)
		if shift > 63 || (shift == 63 && group > 1) {
			return 0, 0, errors.VarintOverflow(errors.PhaseDecode, pos)
		}
		result |= group << shift
		if b&0x80 != 0 {
			return result, i - pos + 1, nil
		}
		shift += 7
	}
}
