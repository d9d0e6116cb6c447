package export

import (
	"math"
	"unicode/utf8"

	"github.com/wippyai/nib-archive/errors"
	"github.com/wippyai/nib-archive/nib"
)

// Document is the ordered projection of an archive.
type Document struct {
	FormatVersion uint32   `json:"format_version" yaml:"format_version" msgpack:"format_version"`
	CoderVersion  uint32   `json:"coder_version" yaml:"coder_version" msgpack:"coder_version"`
	Objects       []Object `json:"objects" yaml:"objects" msgpack:"objects"`
	Trailing      []byte   `json:"trailing,omitempty" yaml:"trailing,omitempty" msgpack:"trailing,omitempty"`
	Warnings      []string `json:"warnings,omitempty" yaml:"warnings,omitempty" msgpack:"warnings,omitempty"`
}

// Object is one entry of the object table with its class and values
// resolved.
type Object struct {
	Index  uint64     `json:"index" yaml:"index" msgpack:"index"`
	Class  string     `json:"class" yaml:"class" msgpack:"class"`
	Extras []int32    `json:"extras,omitempty" yaml:"extras,omitempty" msgpack:"extras,omitempty"`
	Values []Property `json:"values" yaml:"values" msgpack:"values"`
}

// Property is a value with its key name resolved.
//
// Value holds int64 for integers, float64 for finite floats, a string for
// non-finite floats ("NaN", "+Inf", "-Inf"), bool, nil, Ref for object
// references and, for data, a string when the bytes are valid UTF-8 or
// []byte otherwise.
type Property struct {
	Key   string `json:"key" yaml:"key" msgpack:"key"`
	Type  string `json:"type" yaml:"type" msgpack:"type"`
	Value any    `json:"value" yaml:"value" msgpack:"value"`
}

// Ref points at another object of the same document by index.
type Ref struct {
	Object uint64 `json:"$ref" yaml:"$ref" msgpack:"$ref"`
}

// Project builds the ordered projection of a. The archive is validated
// first; a dangling reference is reported as an export error.
func Project(a *nib.Archive) (*Document, error) {
	if err := a.Validate(); err != nil {
		return nil, errors.WithPhase(err, errors.PhaseExport)
	}

	doc := &Document{
		FormatVersion: a.FormatVersion,
		CoderVersion:  a.CoderVersion,
		Objects:       make([]Object, 0, len(a.Objects)),
		Trailing:      a.Trailing,
	}
	for _, w := range a.Warnings {
		doc.Warnings = append(doc.Warnings, w.Error())
	}

	for i, obj := range a.All() {
		class := a.ClassNames[obj.Class]
		values, err := a.ObjectValues(i)
		if err != nil {
			return nil, errors.WithPhase(err, errors.PhaseExport)
		}

		out := Object{
			Index:  uint64(i),
			Class:  class.Name,
			Extras: class.Extras,
			Values: make([]Property, 0, len(values)),
		}
		for _, v := range values {
			out.Values = append(out.Values, Property{
				Key:   a.Keys[v.Key],
				Type:  v.Type.String(),
				Value: documentValue(v),
			})
		}
		doc.Objects = append(doc.Objects, out)
	}
	return doc, nil
}

func documentValue(v nib.Value) any {
	switch v.Type {
	case nib.TypeFloat32, nib.TypeFloat64:
		f, _ := v.Float()
		switch {
		case math.IsNaN(f):
			return "NaN"
		case math.IsInf(f, 1):
			return "+Inf"
		case math.IsInf(f, -1):
			return "-Inf"
		}
		return f
	case nib.TypeObjectRef:
		ref, _ := v.ObjectRef()
		return Ref{Object: uint64(ref)}
	case nib.TypeData:
		return dataValue(v.Data)
	}
	return v.Interface()
}

// dataValue returns b as a string when it is valid UTF-8.
func dataValue(b []byte) any {
	if utf8.Valid(b) {
		return string(b)
	}
	return b
}
