package nib

import (
	"fmt"
	"math"
)

// Value is an entry of the value table: a key and a tagged payload.
//
// Fixed-width payloads (integers, floats and object references) are kept as
// their raw little-endian bits in Num so they re-encode bit for bit. Data
// holds the payload of TypeData values. Use the constructors and accessors
// rather than filling Num by hand.
type Value struct {
	Key  KeyIndex
	Type ValueType
	Num  uint64
	Data []byte
}

// Int8 creates an int8 value.
func Int8(key KeyIndex, v int8) Value {
	return Value{Key: key, Type: TypeInt8, Num: uint64(uint8(v))}
}

// Int16 creates an int16 value.
func Int16(key KeyIndex, v int16) Value {
	return Value{Key: key, Type: TypeInt16, Num: uint64(uint16(v))}
}

// Int32 creates an int32 value.
func Int32(key KeyIndex, v int32) Value {
	return Value{Key: key, Type: TypeInt32, Num: uint64(uint32(v))}
}

// Int64 creates an int64 value.
func Int64(key KeyIndex, v int64) Value {
	return Value{Key: key, Type: TypeInt64, Num: uint64(v)}
}

// Bool creates a boolean value. Booleans have no payload; the tag carries it.
func Bool(key KeyIndex, v bool) Value {
	if v {
		return Value{Key: key, Type: TypeTrue}
	}
	return Value{Key: key, Type: TypeFalse}
}

// Float32 creates a float32 value.
func Float32(key KeyIndex, v float32) Value {
	return Value{Key: key, Type: TypeFloat32, Num: uint64(math.Float32bits(v))}
}

// Float64 creates a float64 value.
func Float64(key KeyIndex, v float64) Value {
	return Value{Key: key, Type: TypeFloat64, Num: math.Float64bits(v)}
}

// Data creates an opaque byte blob value.
func Data(key KeyIndex, b []byte) Value {
	return Value{Key: key, Type: TypeData, Data: b}
}

// Nil creates a nil value.
func Nil(key KeyIndex) Value {
	return Value{Key: key, Type: TypeNil}
}

// ObjectRef creates a reference to another object of the same archive.
func ObjectRef(key KeyIndex, obj ObjectIndex) Value {
	return Value{Key: key, Type: TypeObjectRef, Num: uint64(obj)}
}

// Int returns the sign-extended integer payload and whether v is an integer.
func (v Value) Int() (int64, bool) {
	switch v.Type {
	case TypeInt8:
		return int64(int8(v.Num)), true
	case TypeInt16:
		return int64(int16(v.Num)), true
	case TypeInt32:
		return int64(int32(v.Num)), true
	case TypeInt64:
		return int64(v.Num), true
	}
	return 0, false
}

// Float returns the floating-point payload and whether v is a float.
func (v Value) Float() (float64, bool) {
	switch v.Type {
	case TypeFloat32:
		return float64(math.Float32frombits(uint32(v.Num))), true
	case TypeFloat64:
		return math.Float64frombits(v.Num), true
	}
	return 0, false
}

// Bool returns the boolean payload and whether v is a boolean.
func (v Value) Bool() (bool, bool) {
	switch v.Type {
	case TypeTrue:
		return true, true
	case TypeFalse:
		return false, true
	}
	return false, false
}

// ObjectRef returns the referenced object and whether v is a reference.
func (v Value) ObjectRef() (ObjectIndex, bool) {
	if v.Type != TypeObjectRef {
		return 0, false
	}
	return ObjectIndex(v.Num), true
}

// IsNil reports whether v is the nil marker.
func (v Value) IsNil() bool {
	return v.Type == TypeNil
}

// Interface returns the payload as a plain Go value: int64, float64, bool,
// []byte, nil or ObjectIndex.
func (v Value) Interface() any {
	if i, ok := v.Int(); ok {
		return i
	}
	if f, ok := v.Float(); ok {
		return f
	}
	if b, ok := v.Bool(); ok {
		return b
	}
	if ref, ok := v.ObjectRef(); ok {
		return ref
	}
	if v.Type == TypeData {
		return v.Data
	}
	return nil
}

// String formats the payload for display.
func (v Value) String() string {
	switch v.Type {
	case TypeData:
		return fmt.Sprintf("data(%d bytes)", len(v.Data))
	case TypeNil:
		return "nil"
	case TypeObjectRef:
		return fmt.Sprintf("@%d", v.Num)
	case TypeFloat32:
		f, _ := v.Float()
		return fmt.Sprintf("%gf", f)
	}
	if v.Type.Valid() {
		return fmt.Sprint(v.Interface())
	}
	return fmt.Sprintf("<tag 0x%02x>", byte(v.Type))
}
