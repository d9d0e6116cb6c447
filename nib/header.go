package nib

import (
	"encoding/binary"

	"github.com/wippyai/nib-archive/errors"
	nbin "github.com/wippyai/nib-archive/nib/internal/binary"
)

// ParseHeader reads the fixed preamble at the start of data. It checks the
// magic tag and sizes but not the table offsets; Decode does that.
func ParseHeader(data []byte) (Header, error) {
	if len(data) < len(Magic) {
		return Header{}, errors.Truncated(errors.PhaseDecode, 0, HeaderSize, len(data))
	}
	if string(data[:len(Magic)]) != Magic {
		return Header{}, errors.New(errors.PhaseDecode, errors.KindBadMagic).
			At(0).
			Entity(errors.EntityHeader, -1).
			Value(data[:len(Magic)]).
			Detail("expected %q, got %q", Magic, data[:len(Magic)]).
			Build()
	}
	if len(data) < HeaderSize {
		return Header{}, errors.Truncated(errors.PhaseDecode, len(Magic), HeaderSize-len(Magic), len(data)-len(Magic))
	}

	r := nbin.NewReader(data[:HeaderSize])
	if err := r.Reset(len(Magic)); err != nil {
		return Header{}, err
	}

	// Every field is a fixed uint32 and the length is already checked.
	var fields [10]uint32
	for i := range fields {
		fields[i], _ = r.ReadU32LE()
	}

	return Header{
		FormatVersion: fields[0],
		CoderVersion:  fields[1],
		Objects:       Table{Count: fields[2], Offset: fields[3]},
		Keys:          Table{Count: fields[4], Offset: fields[5]},
		Values:        Table{Count: fields[6], Offset: fields[7]},
		ClassNames:    Table{Count: fields[8], Offset: fields[9]},
	}, nil
}

// AppendTo appends the encoded header to dst.
func (h Header) AppendTo(dst []byte) []byte {
	dst = append(dst, Magic...)
	for _, v := range [...]uint32{
		h.FormatVersion,
		h.CoderVersion,
		h.Objects.Count, h.Objects.Offset,
		h.Keys.Count, h.Keys.Offset,
		h.Values.Count, h.Values.Offset,
		h.ClassNames.Count, h.ClassNames.Offset,
	} {
		dst = binary.LittleEndian.AppendUint32(dst, v)
	}
	return dst
}

// Encode returns the HeaderSize-byte encoding of h.
func (h Header) Encode() []byte {
	return h.AppendTo(make([]byte, 0, HeaderSize))
}

type tableRef struct {
	entity errors.Entity
	Table
}

// tables returns the four tables in header field order.
func (h Header) tables() [4]tableRef {
	return [4]tableRef{
		{errors.EntityObject, h.Objects},
		{errors.EntityKey, h.Keys},
		{errors.EntityValue, h.Values},
		{errors.EntityClassName, h.ClassNames},
	}
}

// checkOffsets verifies every table starts inside the buffer, and every
// non-empty table starts after the header.
func (h Header) checkOffsets(size int) error {
	for _, t := range h.tables() {
		off := int64(t.Offset)
		if off > int64(size) || (t.Count > 0 && off < int64(HeaderSize)) {
			return errors.New(errors.PhaseDecode, errors.KindBadOffset).
				At(int(t.Offset)).
				Entity(t.entity, -1).
				Field("offset").
				Value(t.Offset).
				Detail("table offset outside [%d, %d]", HeaderSize, size).
				Build()
		}
	}
	return nil
}
