package nib

import (
	"math"

	"go.uber.org/zap"

	"github.com/wippyai/nib-archive/errors"
	nbin "github.com/wippyai/nib-archive/nib/internal/binary"
)

// Encode serializes a into the on-disk layout: header, then the object, key,
// value and class-name tables back to back, then a's trailing bytes.
//
// The archive is validated first; if validation fails nothing is returned.
func Encode(a *Archive) ([]byte, error) {
	return a.Encode()
}

// Encode serializes the archive. See the package-level Encode.
func (a *Archive) Encode() ([]byte, error) {
	if err := a.Validate(); err != nil {
		return nil, errors.WithPhase(err, errors.PhaseEncode)
	}

	objects := a.encodeObjects()
	keys := a.encodeKeys()
	values := a.encodeValues()
	classNames := a.encodeClassNames()

	total := uint64(HeaderSize) + uint64(objects.Len()) + uint64(keys.Len()) +
		uint64(values.Len()) + uint64(classNames.Len())
	if total > math.MaxUint32 {
		return nil, errors.New(errors.PhaseEncode, errors.KindTooLarge).
			Value(total).
			Detail("tables need %d bytes; offsets are 32-bit", total).
			Build()
	}
	for _, n := range [...]int{len(a.Objects), len(a.Keys), len(a.Values), len(a.ClassNames)} {
		if uint64(n) > math.MaxUint32 {
			return nil, errors.New(errors.PhaseEncode, errors.KindTooLarge).
				Value(n).
				Detail("table has %d entries; counts are 32-bit", n).
				Build()
		}
	}

	h := a.layout(objects.Len(), keys.Len(), values.Len())

	out := make([]byte, 0, int(total)+len(a.Trailing))
	out = h.AppendTo(out)
	out = append(out, objects.Bytes()...)
	out = append(out, keys.Bytes()...)
	out = append(out, values.Bytes()...)
	out = append(out, classNames.Bytes()...)
	out = append(out, a.Trailing...)

	Logger().Debug("encoded archive",
		zap.Int("objects", len(a.Objects)),
		zap.Int("keys", len(a.Keys)),
		zap.Int("values", len(a.Values)),
		zap.Int("class_names", len(a.ClassNames)),
		zap.Int("trailing", len(a.Trailing)),
		zap.Int("size", len(out)))

	return out, nil
}

// Header computes the header Encode would write for the archive in its
// current state.
func (a *Archive) Header() Header {
	return a.layout(
		a.encodeObjects().Len(),
		a.encodeKeys().Len(),
		a.encodeValues().Len(),
	)
}

// layout places the tables back to back after the header, in the order
// object, key, value, class name.
func (a *Archive) layout(objectsLen, keysLen, valuesLen int) Header {
	objectsOff := uint32(HeaderSize)
	keysOff := objectsOff + uint32(objectsLen)
	valuesOff := keysOff + uint32(keysLen)
	classNamesOff := valuesOff + uint32(valuesLen)

	return Header{
		FormatVersion: a.FormatVersion,
		CoderVersion:  a.CoderVersion,
		Objects:       Table{Count: uint32(len(a.Objects)), Offset: objectsOff},
		Keys:          Table{Count: uint32(len(a.Keys)), Offset: keysOff},
		Values:        Table{Count: uint32(len(a.Values)), Offset: valuesOff},
		ClassNames:    Table{Count: uint32(len(a.ClassNames)), Offset: classNamesOff},
	}
}

func (a *Archive) encodeObjects() *nbin.Writer {
	w := nbin.NewWriter()
	for _, obj := range a.Objects {
		w.WriteVarint(uint64(obj.Class))
		w.WriteVarint(uint64(obj.Start))
		w.WriteVarint(obj.Count)
	}
	return w
}

func (a *Archive) encodeKeys() *nbin.Writer {
	w := nbin.NewWriter()
	for _, key := range a.Keys {
		w.WriteVarint(uint64(len(key)))
		w.WriteString(key)
	}
	return w
}

func (a *Archive) encodeValues() *nbin.Writer {
	w := nbin.NewWriter()
	for _, v := range a.Values {
		writeValue(w, v)
	}
	return w
}

func writeValue(w *nbin.Writer, v Value) {
	w.WriteVarint(uint64(v.Key))
	w.Byte(byte(v.Type))

	switch v.Type {
	case TypeInt8:
		w.Byte(byte(v.Num))
	case TypeInt16:
		w.WriteU16LE(uint16(v.Num))
	case TypeInt32, TypeFloat32, TypeObjectRef:
		w.WriteU32LE(uint32(v.Num))
	case TypeInt64, TypeFloat64:
		w.WriteU64LE(v.Num)
	case TypeData:
		w.WriteVarint(uint64(len(v.Data)))
		w.WriteBytes(v.Data)
	}
}

func (a *Archive) encodeClassNames() *nbin.Writer {
	w := nbin.NewWriter()
	for _, cn := range a.ClassNames {
		length := uint64(len(cn.Name))
		if !cn.Unterminated {
			length++
		}
		w.WriteVarint(length)
		w.WriteVarint(uint64(len(cn.Extras)))
		for _, extra := range cn.Extras {
			w.WriteU32LE(uint32(extra))
		}
		w.WriteString(cn.Name)
		if !cn.Unterminated {
			w.Byte(0)
		}
	}
	return w
}
