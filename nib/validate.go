package nib

import (
	"fmt"
	"strings"

	"github.com/wippyai/nib-archive/errors"
)

// Validate checks every cross-reference between the archive's tables and
// returns the first violation:
//   - an object's class name index is in range
//   - an object's value run ends inside the value table
//   - a value's key index is in range
//   - a value's payload fits its tag
//   - an object-reference value points at an existing object
//   - an unterminated class name does not end in NUL
func (a *Archive) Validate() error {
	if err := a.validateObjects(); err != nil {
		return err
	}
	if err := a.validateValues(); err != nil {
		return err
	}
	if err := a.validateClassNames(); err != nil {
		return err
	}
	return nil
}

func (a *Archive) validateObjects() error {
	numClasses := uint64(len(a.ClassNames))
	numValues := uint64(len(a.Values))

	for i, obj := range a.Objects {
		if uint64(obj.Class) >= numClasses {
			return errors.IndexOutOfRange(errors.PhaseValidate, errors.EntityObject, i,
				"class_name_index", uint64(obj.Class), len(a.ClassNames))
		}
		if uint64(obj.Start) > numValues {
			return errors.IndexOutOfRange(errors.PhaseValidate, errors.EntityObject, i,
				"value_index", uint64(obj.Start), len(a.Values))
		}
		if obj.Count > numValues-uint64(obj.Start) {
			e := errors.IndexOutOfRange(errors.PhaseValidate, errors.EntityObject, i,
				"value_count", obj.Count, len(a.Values))
			e.Detail = fmt.Sprintf("values [%d, +%d) exceed value table of length %d", obj.Start, obj.Count, numValues)
			return e
		}
	}
	return nil
}

func (a *Archive) validateValues() error {
	numKeys := uint64(len(a.Keys))
	numObjects := uint64(len(a.Objects))

	for i, v := range a.Values {
		if uint64(v.Key) >= numKeys {
			return errors.IndexOutOfRange(errors.PhaseValidate, errors.EntityValue, i,
				"key_index", uint64(v.Key), len(a.Keys))
		}
		if !v.Type.Valid() {
			return errors.New(errors.PhaseValidate, errors.KindUnknownValueTag).
				Entity(errors.EntityValue, i).
				Value(byte(v.Type)).
				Detail("unknown value type 0x%02x", byte(v.Type)).
				Build()
		}
		if err := validatePayload(i, v); err != nil {
			return err
		}
		if ref, ok := v.ObjectRef(); ok && uint64(ref) >= numObjects {
			return errors.IndexOutOfRange(errors.PhaseValidate, errors.EntityValue, i,
				"object_ref", uint64(ref), len(a.Objects))
		}
	}
	return nil
}

// validatePayload rejects values whose Num or Data the tag cannot carry.
func validatePayload(i int, v Value) error {
	invalid := func(field string, value any, format string, args ...any) error {
		return errors.New(errors.PhaseValidate, errors.KindInvalidInput).
			Entity(errors.EntityValue, i).
			Field(field).
			Value(value).
			Detail(format, args...).
			Build()
	}

	if v.Type != TypeData && v.Data != nil {
		return invalid("data", len(v.Data), "%s value carries %d data bytes", v.Type, len(v.Data))
	}
	size := v.Type.PayloadSize()
	if size < 0 {
		size = 0
	}
	if size < 8 && v.Num>>(8*size) != 0 {
		return invalid("payload", v.Num, "0x%x does not fit the %d-byte %s payload", v.Num, size, v.Type)
	}
	return nil
}

func (a *Archive) validateClassNames() error {
	for i, cn := range a.ClassNames {
		if cn.Unterminated && strings.HasSuffix(cn.Name, "\x00") {
			return errors.New(errors.PhaseValidate, errors.KindInvalidInput).
				Entity(errors.EntityClassName, i).
				Field("name").
				Detail("unterminated class name %q ends in NUL", cn.Name).
				Build()
		}
	}
	return nil
}
