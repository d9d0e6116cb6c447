package export

import (
	"math"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/wippyai/nib-archive/errors"
	"github.com/wippyai/nib-archive/nib"
)

// Flat builds the class-keyed projection {class: {key: value}}.
//
// Integers and floats become numbers, booleans and nil map directly, data
// becomes a string when it is valid UTF-8 and an array of byte values
// otherwise. Object references are skipped. When several objects share a
// class, the last one wins. Non-finite floats have no number form and fail
// the projection.
func Flat(a *nib.Archive) (map[string]map[string]any, error) {
	if err := a.Validate(); err != nil {
		return nil, errors.WithPhase(err, errors.PhaseExport)
	}

	out := make(map[string]map[string]any, len(a.ClassNames))
	for i, obj := range a.All() {
		values, err := a.ObjectValues(i)
		if err != nil {
			return nil, errors.WithPhase(err, errors.PhaseExport)
		}

		props := make(map[string]any, len(values))
		for _, v := range values {
			key := a.Keys[v.Key]
			switch v.Type {
			case nib.TypeObjectRef:
				nib.Logger().Debug("skipping object reference",
					zap.Uint64("object", uint64(i)),
					zap.String("key", key),
					zap.Uint64("ref", v.Num))
				continue
			case nib.TypeFloat32, nib.TypeFloat64:
				f, _ := v.Float()
				if math.IsNaN(f) || math.IsInf(f, 0) {
					return nil, errors.New(errors.PhaseExport, errors.KindInvalidInput).
						Entity(errors.EntityObject, int(i)).
						Field(key).
						Value(f).
						Detail("float %v has no number form", f).
						Build()
				}
				props[key] = f
			case nib.TypeData:
				props[key] = flatData(v.Data)
			default:
				props[key] = v.Interface()
			}
		}
		out[a.ClassNames[obj.Class].Name] = props
	}
	return out, nil
}

func flatData(b []byte) any {
	if utf8.Valid(b) {
		return string(b)
	}
	n := make([]int, len(b))
	for i, c := range b {
		n[i] = int(c)
	}
	return n
}
