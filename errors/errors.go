package errors

import (
	"fmt"
	"strconv"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseDecode   Phase = "decode"   // bytes to archive
	PhaseEncode   Phase = "encode"   // archive to bytes
	PhaseValidate Phase = "validate" // cross-reference checks
	PhaseLoad     Phase = "load"     // file and config loading
	PhaseExport   Phase = "export"   // projections
)

// Kind categorizes the error
type Kind string

const (
	KindBadMagic        Kind = "bad_magic"
	KindTruncated       Kind = "truncated"
	KindVarintOverflow  Kind = "varint_overflow"
	KindUnknownValueTag Kind = "unknown_value_tag"
	KindIndexOutOfRange Kind = "index_out_of_range"
	KindInvalidUTF8     Kind = "invalid_utf8"
	KindBadOffset       Kind = "bad_offset"
	KindTooLarge        Kind = "too_large"
	KindInvalidInput    Kind = "invalid_input"
	KindUnsupported     Kind = "unsupported"
)

// Entity names the archive table an error refers to.
type Entity string

const (
	EntityHeader    Entity = "header"
	EntityObject    Entity = "object"
	EntityKey       Entity = "key"
	EntityValue     Entity = "value"
	EntityClassName Entity = "class_name"
)

// NoOffset marks errors that do not point at a byte position.
const NoOffset = -1

// Error is the structured error type used by the codec.
type Error struct {
	Value  any
	Cause  error
	Phase  Phase
	Kind   Kind
	Entity Entity
	Field  string
	Detail string
	Index  int
	Offset int
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	if e.Phase != "" {
		b.WriteByte('[')
		b.WriteString(string(e.Phase))
		b.WriteString("] ")
	}
	b.WriteString(string(e.Kind))

	if e.Offset >= 0 {
		b.WriteString(" at offset ")
		b.WriteString(strconv.Itoa(e.Offset))
	}

	if e.Entity != "" {
		b.WriteString(" in ")
		b.WriteString(string(e.Entity))
		if e.Index >= 0 {
			b.WriteByte(' ')
			b.WriteString(strconv.Itoa(e.Index))
		}
		if e.Field != "" {
			b.WriteByte('.')
			b.WriteString(e.Field)
		}
	}

	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error.
// A target with an empty Phase matches any phase.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Phase != "" && t.Phase != e.Phase {
		return false
	}
	return e.Kind == t.Kind
}

// Sentinels for errors.Is checks. They match by Kind in any phase.
var (
	ErrBadMagic        = &Error{Kind: KindBadMagic, Index: -1, Offset: NoOffset}
	ErrTruncated       = &Error{Kind: KindTruncated, Index: -1, Offset: NoOffset}
	ErrVarintOverflow  = &Error{Kind: KindVarintOverflow, Index: -1, Offset: NoOffset}
	ErrUnknownValueTag = &Error{Kind: KindUnknownValueTag, Index: -1, Offset: NoOffset}
	ErrIndexOutOfRange = &Error{Kind: KindIndexOutOfRange, Index: -1, Offset: NoOffset}
	ErrInvalidUTF8     = &Error{Kind: KindInvalidUTF8, Index: -1, Offset: NoOffset}
	ErrBadOffset       = &Error{Kind: KindBadOffset, Index: -1, Offset: NoOffset}
	ErrTooLarge        = &Error{Kind: KindTooLarge, Index: -1, Offset: NoOffset}
)

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase:  phase,
			Kind:   kind,
			Index:  -1,
			Offset: NoOffset,
		},
	}
}

// At sets the byte offset the error refers to
func (b *Builder) At(offset int) *Builder {
	b.err.Offset = offset
	return b
}

// Entity sets the table entry the error refers to
func (b *Builder) Entity(entity Entity, index int) *Builder {
	b.err.Entity = entity
	b.err.Index = index
	return b
}

// Field sets the offending field name
func (b *Builder) Field(name string) *Builder {
	b.err.Field = name
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

// Truncated creates an error for input that ends before a field completes.
func Truncated(phase Phase, offset, need, have int) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindTruncated,
		Index:  -1,
		Offset: offset,
		Detail: fmt.Sprintf("need %d bytes, %d available", need, have),
	}
}

// VarintOverflow creates an error for a varint wider than 64 bits.
func VarintOverflow(phase Phase, offset int) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindVarintOverflow,
		Index:  -1,
		Offset: offset,
		Detail: "value exceeds 64 bits",
	}
}

// IndexOutOfRange creates an error for a cross-reference past the end of its target table.
func IndexOutOfRange(phase Phase, entity Entity, index int, field string, value uint64, limit int) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindIndexOutOfRange,
		Entity: entity,
		Index:  index,
		Field:  field,
		Offset: NoOffset,
		Value:  value,
		Detail: fmt.Sprintf("index %d out of range (length %d)", value, limit),
	}
}

// InvalidUTF8 creates an invalid UTF-8 error
func InvalidUTF8(phase Phase, entity Entity, index, offset int, data []byte) *Error {
	preview := data
	if len(preview) > 32 {
		preview = preview[:32]
	}
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidUTF8,
		Entity: entity,
		Index:  index,
		Offset: offset,
		Detail: fmt.Sprintf("invalid UTF-8 sequence: %x", preview),
	}
}

// InvalidInput creates an invalid input error
func InvalidInput(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidInput,
		Index:  -1,
		Offset: NoOffset,
		Detail: detail,
	}
}

// Unsupported creates an unsupported operation error
func Unsupported(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnsupported,
		Index:  -1,
		Offset: NoOffset,
		Detail: what,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Index:  -1,
		Offset: NoOffset,
		Detail: detail,
		Cause:  cause,
	}
}

// Load creates a file loading error
func Load(detail string, cause error) *Error {
	return &Error{
		Phase:  PhaseLoad,
		Kind:   KindInvalidInput,
		Index:  -1,
		Offset: NoOffset,
		Detail: detail,
		Cause:  cause,
	}
}

// WithPhase returns a copy of err tagged with phase. Non-*Error values pass through.
func WithPhase(err error, phase Phase) error {
	e, ok := err.(*Error)
	if !ok {
		return err
	}
	c := *e
	c.Phase = phase
	return &c
}
