package nib

// Magic is the literal tag every archive starts with. It has no terminator.
const Magic = "NIBArchive"

// HeaderSize is the size of the fixed preamble: the magic tag, two version
// markers and four (count, offset) pairs, all little-endian uint32.
const HeaderSize = len(Magic) + 2*4 + 4*2*4

// Version markers written into fresh archives. Decoded archives keep
// whatever values they were read with.
const (
	DefaultFormatVersion uint32 = 1
	DefaultCoderVersion  uint32 = 9
)

// ValueType is the one-byte tag that selects a Value's payload shape.
type ValueType byte

// Value type tags.
const (
	TypeInt8      ValueType = 0x00
	TypeInt16     ValueType = 0x01
	TypeInt32     ValueType = 0x02
	TypeInt64     ValueType = 0x03
	TypeFalse     ValueType = 0x04
	TypeTrue      ValueType = 0x05
	TypeFloat32   ValueType = 0x06
	TypeFloat64   ValueType = 0x07
	TypeData      ValueType = 0x08
	TypeNil       ValueType = 0x09
	TypeObjectRef ValueType = 0x0a
)

// Valid reports whether t is a defined tag.
func (t ValueType) Valid() bool {
	return t <= TypeObjectRef
}

// PayloadSize returns the fixed payload width for t, or -1 for
// variable-length payloads and undefined tags.
func (t ValueType) PayloadSize() int {
	switch t {
	case TypeInt8:
		return 1
	case TypeInt16:
		return 2
	case TypeInt32, TypeFloat32, TypeObjectRef:
		return 4
	case TypeInt64, TypeFloat64:
		return 8
	case TypeFalse, TypeTrue, TypeNil:
		return 0
	default:
		return -1
	}
}

// String returns the tag name.
func (t ValueType) String() string {
	switch t {
	case TypeInt8:
		return "int8"
	case TypeInt16:
		return "int16"
	case TypeInt32:
		return "int32"
	case TypeInt64:
		return "int64"
	case TypeFalse, TypeTrue:
		return "bool"
	case TypeFloat32:
		return "float32"
	case TypeFloat64:
		return "float64"
	case TypeData:
		return "data"
	case TypeNil:
		return "nil"
	case TypeObjectRef:
		return "object"
	default:
		return "unknown"
	}
}
