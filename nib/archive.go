package nib

import (
	"bytes"
	"iter"
	"slices"

	"github.com/wippyai/nib-archive/errors"
)

// Archive is the in-memory form of a NIB archive. It owns its four tables;
// entries refer to each other by index only.
//
// Mutation methods append and never rewrite indices held by existing
// entries. Append class names and keys before the objects and values that
// reference them. Dangling references are reported by Validate and Encode,
// not by the mutation methods.
type Archive struct {
	FormatVersion uint32
	CoderVersion  uint32

	Objects    []Object
	Keys       []string
	Values     []Value
	ClassNames []ClassName

	// Trailing holds bytes found after the last table entry. They are
	// written back verbatim by Encode. Nil for archives built in memory.
	Trailing []byte

	// Warnings lists recoverable inconsistencies found while decoding,
	// such as names that are not valid UTF-8.
	Warnings []*errors.Error
}

// New creates an empty archive with the default version markers.
func New() *Archive {
	return &Archive{
		FormatVersion: DefaultFormatVersion,
		CoderVersion:  DefaultCoderVersion,
	}
}

// Object returns the object at i.
func (a *Archive) Object(i ObjectIndex) (Object, error) {
	if uint64(i) >= uint64(len(a.Objects)) {
		return Object{}, lookupError(errors.EntityObject, uint64(i), len(a.Objects))
	}
	return a.Objects[i], nil
}

// ClassName returns the class name at i.
func (a *Archive) ClassName(i ClassNameIndex) (ClassName, error) {
	if uint64(i) >= uint64(len(a.ClassNames)) {
		return ClassName{}, lookupError(errors.EntityClassName, uint64(i), len(a.ClassNames))
	}
	return a.ClassNames[i], nil
}

// Key returns the key name at i.
func (a *Archive) Key(i KeyIndex) (string, error) {
	if uint64(i) >= uint64(len(a.Keys)) {
		return "", lookupError(errors.EntityKey, uint64(i), len(a.Keys))
	}
	return a.Keys[i], nil
}

// Value returns the value at i.
func (a *Archive) Value(i ValueIndex) (Value, error) {
	if uint64(i) >= uint64(len(a.Values)) {
		return Value{}, lookupError(errors.EntityValue, uint64(i), len(a.Values))
	}
	return a.Values[i], nil
}

// ObjectClass resolves the class name of object i.
func (a *Archive) ObjectClass(i ObjectIndex) (ClassName, error) {
	obj, err := a.Object(i)
	if err != nil {
		return ClassName{}, err
	}
	return a.ClassName(obj.Class)
}

// ObjectValues returns the values of object i. The slice aliases the
// archive's value table.
func (a *Archive) ObjectValues(i ObjectIndex) ([]Value, error) {
	obj, err := a.Object(i)
	if err != nil {
		return nil, err
	}
	total := uint64(len(a.Values))
	if uint64(obj.Start) > total || obj.Count > total-uint64(obj.Start) {
		return nil, errors.IndexOutOfRange(errors.PhaseValidate, errors.EntityObject, int(i), "value_range",
			uint64(obj.Start)+obj.Count, len(a.Values))
	}
	return a.Values[obj.Start:obj.End():obj.End()], nil
}

// ValueKey resolves the key name of v.
func (a *Archive) ValueKey(v Value) (string, error) {
	return a.Key(v.Key)
}

// ResolveRef returns the object an object-reference value points at.
func (a *Archive) ResolveRef(v Value) (Object, error) {
	ref, ok := v.ObjectRef()
	if !ok {
		return Object{}, errors.New(errors.PhaseValidate, errors.KindInvalidInput).
			Entity(errors.EntityValue, -1).
			Detail("value of type %s is not an object reference", v.Type).
			Build()
	}
	return a.Object(ref)
}

// Lookup returns the first value of object i whose key name equals key.
func (a *Archive) Lookup(i ObjectIndex, key string) (Value, bool) {
	values, err := a.ObjectValues(i)
	if err != nil {
		return Value{}, false
	}
	for _, v := range values {
		if uint64(v.Key) < uint64(len(a.Keys)) && a.Keys[v.Key] == key {
			return v, true
		}
	}
	return Value{}, false
}

// All iterates over the objects in table order.
func (a *Archive) All() iter.Seq2[ObjectIndex, Object] {
	return func(yield func(ObjectIndex, Object) bool) {
		for i, obj := range a.Objects {
			if !yield(ObjectIndex(i), obj) {
				return
			}
		}
	}
}

// FindClass returns the index of the first class name equal to name.
func (a *Archive) FindClass(name string) (ClassNameIndex, bool) {
	i := slices.IndexFunc(a.ClassNames, func(c ClassName) bool { return c.Name == name })
	if i < 0 {
		return 0, false
	}
	return ClassNameIndex(i), true
}

// FindKey returns the index of the first key equal to name.
func (a *Archive) FindKey(name string) (KeyIndex, bool) {
	i := slices.Index(a.Keys, name)
	if i < 0 {
		return 0, false
	}
	return KeyIndex(i), true
}

// AddClassName appends a class name and returns its index.
func (a *Archive) AddClassName(name string, extras ...int32) ClassNameIndex {
	a.ClassNames = append(a.ClassNames, ClassName{Name: name, Extras: extras})
	return ClassNameIndex(len(a.ClassNames) - 1)
}

// AddKey appends a key and returns its index.
func (a *Archive) AddKey(name string) KeyIndex {
	a.Keys = append(a.Keys, name)
	return KeyIndex(len(a.Keys) - 1)
}

// AddValue appends a value and returns its index.
func (a *Archive) AddValue(v Value) ValueIndex {
	a.Values = append(a.Values, v)
	return ValueIndex(len(a.Values) - 1)
}

// AddObject appends an object over an existing run of values and returns
// its index.
func (a *Archive) AddObject(class ClassNameIndex, start ValueIndex, count uint64) ObjectIndex {
	a.Objects = append(a.Objects, Object{Class: class, Start: start, Count: count})
	return ObjectIndex(len(a.Objects) - 1)
}

// AddObjectWithValues appends values to the end of the value table, then an
// object that covers exactly those values.
func (a *Archive) AddObjectWithValues(class ClassNameIndex, values ...Value) ObjectIndex {
	start := ValueIndex(len(a.Values))
	a.Values = append(a.Values, values...)
	return a.AddObject(class, start, uint64(len(values)))
}

// Clone returns a deep copy of a that shares no memory with it.
func (a *Archive) Clone() *Archive {
	c := &Archive{
		FormatVersion: a.FormatVersion,
		CoderVersion:  a.CoderVersion,
		Objects:       slices.Clone(a.Objects),
		Keys:          slices.Clone(a.Keys),
		Values:        slices.Clone(a.Values),
		ClassNames:    slices.Clone(a.ClassNames),
		Trailing:      bytes.Clone(a.Trailing),
		Warnings:      slices.Clone(a.Warnings),
	}
	for i := range c.Values {
		c.Values[i].Data = bytes.Clone(c.Values[i].Data)
	}
	for i := range c.ClassNames {
		c.ClassNames[i].Extras = slices.Clone(c.ClassNames[i].Extras)
	}
	return c
}

func lookupError(entity errors.Entity, index uint64, limit int) *errors.Error {
	return errors.New(errors.PhaseValidate, errors.KindIndexOutOfRange).
		Entity(entity, -1).
		Value(index).
		Detail("index %d out of range (length %d)", index, limit).
		Build()
}
