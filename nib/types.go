package nib

// Index types address entries of the four tables. They are only meaningful
// relative to the Archive that owns the tables.
type (
	ObjectIndex    uint64
	KeyIndex       uint64
	ValueIndex     uint64
	ClassNameIndex uint64
)

// ClassName is an entry of the class-name table.
type ClassName struct {
	// Name holds the raw name bytes without the NUL terminator. It is not
	// guaranteed to be valid UTF-8.
	Name string

	// Extras is an opaque list of class-name indices stored next to the
	// name. Reference producers use it for fallback classes; the codec
	// preserves it without interpreting it.
	Extras []int32

	// Unterminated is set when the stored name had no trailing NUL.
	Unterminated bool
}

// Object is an entry of the object table: a class and a contiguous run of
// values.
type Object struct {
	Class ClassNameIndex
	Start ValueIndex
	Count uint64
}

// End returns the index one past the object's last value.
func (o Object) End() ValueIndex {
	return o.Start + ValueIndex(o.Count)
}

// Table locates one table inside an encoded archive.
type Table struct {
	Count  uint32
	Offset uint32
}

// Header is the fixed preamble of an encoded archive.
type Header struct {
	FormatVersion uint32
	CoderVersion  uint32
	Objects       Table
	Keys          Table
	Values        Table
	ClassNames    Table
}
