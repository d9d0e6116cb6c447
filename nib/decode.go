package nib

import (
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/wippyai/nib-archive/errors"
	nbin "github.com/wippyai/nib-archive/nib/internal/binary"
)

// DecodeOption configures Decode.
type DecodeOption func(*decodeOptions)

type decodeOptions struct {
	log        *zap.Logger
	strictUTF8 bool
}

// WithLogger routes decode diagnostics to l instead of the package logger.
func WithLogger(l *zap.Logger) DecodeOption {
	return func(o *decodeOptions) {
		o.log = l
	}
}

// WithStrictUTF8 makes names that are not valid UTF-8 a fatal error instead
// of a warning.
func WithStrictUTF8() DecodeOption {
	return func(o *decodeOptions) {
		o.strictUTF8 = true
	}
}

// Minimum encoded entry sizes, used to bound preallocation against hostile
// counts.
const (
	minObjectSize    = 3
	minKeySize       = 1
	minValueSize     = 2
	minClassNameSize = 2
)

type decoder struct {
	r        *nbin.Reader
	log      *zap.Logger
	strict   bool
	maxEnd   int
	warnings []*errors.Error
}

// Decode parses an encoded archive. The returned archive does not alias data.
//
// Each table is read from its declared offset; tables need not be adjacent or
// in any particular order. Bytes after the furthest table entry are kept in
// Archive.Trailing. On any error no archive is returned.
func Decode(data []byte, opts ...DecodeOption) (*Archive, error) {
	o := decodeOptions{log: Logger()}
	for _, opt := range opts {
		opt(&o)
	}

	h, err := ParseHeader(data)
	if err != nil {
		return nil, err
	}
	if err := h.checkOffsets(len(data)); err != nil {
		return nil, err
	}

	d := &decoder{
		r:      nbin.NewReader(data),
		log:    o.log,
		strict: o.strictUTF8,
		maxEnd: HeaderSize,
	}

	a := &Archive{
		FormatVersion: h.FormatVersion,
		CoderVersion:  h.CoderVersion,
	}

	if a.Objects, err = decodeTable(d, h.Objects, errors.EntityObject, minObjectSize, d.readObject); err != nil {
		return nil, err
	}
	if a.Keys, err = decodeTable(d, h.Keys, errors.EntityKey, minKeySize, d.readKey); err != nil {
		return nil, err
	}
	if a.Values, err = decodeTable(d, h.Values, errors.EntityValue, minValueSize, d.readValue); err != nil {
		return nil, err
	}
	if a.ClassNames, err = decodeTable(d, h.ClassNames, errors.EntityClassName, minClassNameSize, d.readClassName); err != nil {
		return nil, err
	}

	if err := a.Validate(); err != nil {
		return nil, errors.WithPhase(err, errors.PhaseDecode)
	}

	if d.maxEnd < len(data) {
		if err := d.r.Reset(d.maxEnd); err != nil {
			return nil, err
		}
		a.Trailing = clone(d.r.ReadRemaining())
		d.log.Debug("captured trailing bytes",
			zap.Int("offset", d.maxEnd),
			zap.Int("length", len(a.Trailing)))
	}
	a.Warnings = d.warnings

	return a, nil
}

// decodeTable reads t.Count entries starting at t.Offset.
func decodeTable[T any](d *decoder, t Table, entity errors.Entity, minSize int,
	read func(index int) (T, error)) ([]T, error) {
	if t.Count == 0 {
		return nil, nil
	}
	if err := d.r.Reset(int(t.Offset)); err != nil {
		return nil, err
	}

	capacity := int(t.Count)
	if limit := d.r.Remaining()/minSize + 1; capacity > limit {
		capacity = limit
	}
	entries := make([]T, 0, capacity)

	for i := 0; i < int(t.Count); i++ {
		entry, err := read(i)
		if err != nil {
			return nil, inEntity(err, entity, i)
		}
		entries = append(entries, entry)
	}

	end := d.r.Position()
	if end > d.maxEnd {
		d.maxEnd = end
	}
	d.log.Debug("decoded table",
		zap.String("table", string(entity)),
		zap.Uint32("count", t.Count),
		zap.Uint32("offset", t.Offset),
		zap.Int("end", end))
	return entries, nil
}

func (d *decoder) readObject(int) (Object, error) {
	class, err := d.r.ReadVarint()
	if err != nil {
		return Object{}, field(err, "class_name_index")
	}
	start, err := d.r.ReadVarint()
	if err != nil {
		return Object{}, field(err, "value_index")
	}
	count, err := d.r.ReadVarint()
	if err != nil {
		return Object{}, field(err, "value_count")
	}
	return Object{Class: ClassNameIndex(class), Start: ValueIndex(start), Count: count}, nil
}

func (d *decoder) readKey(index int) (string, error) {
	return d.readName(errors.EntityKey, index)
}

func (d *decoder) readName(entity errors.Entity, index int) (string, error) {
	length, err := d.r.ReadVarint()
	if err != nil {
		return "", field(err, "length")
	}
	pos := d.r.Position()
	if length > uint64(d.r.Remaining()) {
		return "", errors.Truncated(errors.PhaseDecode, pos, clampInt(length), d.r.Remaining())
	}
	b, err := d.r.ReadBytes(int(length))
	if err != nil {
		return "", field(err, "name")
	}
	if err := d.checkText(entity, index, pos, b); err != nil {
		return "", err
	}
	return string(b), nil
}

func (d *decoder) readValue(int) (Value, error) {
	key, err := d.r.ReadVarint()
	if err != nil {
		return Value{}, field(err, "key_index")
	}
	tagPos := d.r.Position()
	tag, err := d.r.ReadByte()
	if err != nil {
		return Value{}, field(err, "type")
	}

	v := Value{Key: KeyIndex(key), Type: ValueType(tag)}
	switch v.Type {
	case TypeInt8:
		var b byte
		b, err = d.r.ReadByte()
		v.Num = uint64(b)
	case TypeInt16:
		var n uint16
		n, err = d.r.ReadU16LE()
		v.Num = uint64(n)
	case TypeInt32, TypeFloat32, TypeObjectRef:
		var n uint32
		n, err = d.r.ReadU32LE()
		v.Num = uint64(n)
	case TypeInt64, TypeFloat64:
		v.Num, err = d.r.ReadU64LE()
	case TypeFalse, TypeTrue, TypeNil:
	case TypeData:
		var length uint64
		length, err = d.r.ReadVarint()
		if err != nil {
			return Value{}, field(err, "length")
		}
		if length > uint64(d.r.Remaining()) {
			return Value{}, errors.Truncated(errors.PhaseDecode, d.r.Position(), clampInt(length), d.r.Remaining())
		}
		var b []byte
		b, err = d.r.ReadBytes(int(length))
		v.Data = clone(b)
	default:
		return Value{}, errors.New(errors.PhaseDecode, errors.KindUnknownValueTag).
			At(tagPos).
			Field("type").
			Value(tag).
			Detail("unknown value type 0x%02x", tag).
			Build()
	}
	if err != nil {
		return Value{}, field(err, "payload")
	}
	return v, nil
}

func (d *decoder) readClassName(index int) (ClassName, error) {
	length, err := d.r.ReadVarint()
	if err != nil {
		return ClassName{}, field(err, "length")
	}
	extraCount, err := d.r.ReadVarint()
	if err != nil {
		return ClassName{}, field(err, "extra_count")
	}
	if extraCount > uint64(d.r.Remaining()/4) {
		return ClassName{}, field(errors.Truncated(errors.PhaseDecode, d.r.Position(),
			clampInt(extraCount*4), d.r.Remaining()), "extras")
	}

	var extras []int32
	if extraCount > 0 {
		extras = make([]int32, extraCount)
		for i := range extras {
			n, _ := d.r.ReadU32LE()
			extras[i] = int32(n)
		}
	}

	pos := d.r.Position()
	if length > uint64(d.r.Remaining()) {
		return ClassName{}, field(errors.Truncated(errors.PhaseDecode, pos, clampInt(length), d.r.Remaining()), "name")
	}
	b, _ := d.r.ReadBytes(int(length))

	cn := ClassName{Extras: extras}
	if n := len(b); n > 0 && b[n-1] == 0 {
		b = b[:n-1]
	} else {
		cn.Unterminated = true
	}
	if err := d.checkText(errors.EntityClassName, index, pos, b); err != nil {
		return ClassName{}, err
	}
	cn.Name = string(b)
	return cn, nil
}

// checkText records a warning for names that are not valid UTF-8, or fails
// in strict mode. The raw bytes are kept either way.
func (d *decoder) checkText(entity errors.Entity, index, pos int, b []byte) error {
	if utf8.Valid(b) {
		return nil
	}
	w := errors.InvalidUTF8(errors.PhaseDecode, entity, index, pos, b)
	if d.strict {
		return w
	}
	d.log.Warn("name is not valid UTF-8",
		zap.String("table", string(entity)),
		zap.Int("index", index),
		zap.Int("offset", pos))
	d.warnings = append(d.warnings, w)
	return nil
}

// inEntity attaches the table entry to a decode error raised by a reader.
func inEntity(err error, entity errors.Entity, index int) error {
	e, ok := err.(*errors.Error)
	if !ok || e.Entity != "" {
		return err
	}
	c := *e
	c.Entity = entity
	c.Index = index
	return &c
}

// field attaches the field being read to a decode error.
func field(err error, name string) error {
	e, ok := err.(*errors.Error)
	if !ok || e.Field != "" {
		return err
	}
	c := *e
	c.Field = name
	return &c
}

func clampInt(v uint64) int {
	const maxInt = int(^uint(0) >> 1)
	if v > uint64(maxInt) {
		return maxInt
	}
	return int(v)
}

// clone copies b, returning nil for empty input.
func clone(b []byte) []byte {
	if len(b) == 0 {
		return nil
	}
	c := make([]byte, len(b))
	copy(c, b)
	return c
}
