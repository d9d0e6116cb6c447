package nib_test

import (
	"bytes"
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"

	nerrors "github.com/wippyai/nib-archive/errors"
	"github.com/wippyai/nib-archive/nib"
)

func TestEncodeEmpty(t *testing.T) {
	data := mustEncode(t, nib.New())
	if len(data) != nib.HeaderSize {
		t.Fatalf("empty archive: %d bytes, want %d", len(data), nib.HeaderSize)
	}

	h, err := nib.ParseHeader(data)
	if err != nil {
		t.Fatal(err)
	}
	want := nib.Header{
		FormatVersion: nib.DefaultFormatVersion,
		CoderVersion:  nib.DefaultCoderVersion,
		Objects:       nib.Table{Offset: 50},
		Keys:          nib.Table{Offset: 50},
		Values:        nib.Table{Offset: 50},
		ClassNames:    nib.Table{Offset: 50},
	}
	if h != want {
		t.Errorf("header: got %+v, want %+v", h, want)
	}
}

func TestEncodeLayout(t *testing.T) {
	a := sampleArchive()
	data := mustEncode(t, a)

	h, err := nib.ParseHeader(data)
	if err != nil {
		t.Fatal(err)
	}
	if h != a.Header() {
		t.Errorf("Header() = %+v, encoded %+v", a.Header(), h)
	}

	if h.Objects.Offset != uint32(nib.HeaderSize) {
		t.Errorf("objects should start right after the header, got %d", h.Objects.Offset)
	}
	if !(h.Objects.Offset <= h.Keys.Offset && h.Keys.Offset <= h.Values.Offset && h.Values.Offset <= h.ClassNames.Offset) {
		t.Errorf("tables out of order: %+v", h)
	}
	counts := []uint32{h.Objects.Count, h.Keys.Count, h.Values.Count, h.ClassNames.Count}
	want := []uint32{uint32(len(a.Objects)), uint32(len(a.Keys)), uint32(len(a.Values)), uint32(len(a.ClassNames))}
	if diff := cmp.Diff(want, counts); diff != "" {
		t.Errorf("counts (-want +got):\n%s", diff)
	}

	// The first object (class 0, start 0, count 4) is the first thing after
	// the header.
	if got := data[nib.HeaderSize : nib.HeaderSize+3]; !bytes.Equal(got, []byte{0x80, 0x80, 0x84}) {
		t.Errorf("first object entry: got %x", got)
	}
}

func TestEncodeRoundTrip(t *testing.T) {
	archives := map[string]*nib.Archive{
		"sample": sampleArchive(),
		"empty":  nib.New(),
		"trailing": func() *nib.Archive {
			a := sampleArchive()
			a.Trailing = []byte{0xca, 0xfe}
			return a
		}(),
		"versions": func() *nib.Archive {
			a := nib.New()
			a.FormatVersion = 0xdeadbeef
			a.CoderVersion = 0
			return a
		}(),
		"large indices": func() *nib.Archive {
			a := nib.New()
			for i := range 300 {
				a.AddClassName("C")
				a.AddKey(string(rune('a' + i%26)))
			}
			a.AddObjectWithValues(299, nib.Nil(299), nib.Data(200, bytes.Repeat([]byte{1}, 200)))
			return a
		}(),
	}

	for name, a := range archives {
		t.Run(name, func(t *testing.T) {
			data := mustEncode(t, a)
			got := mustDecode(t, data)
			if diff := cmp.Diff(a, got, archiveOpts); diff != "" {
				t.Fatalf("decode(encode(a)) differs (-want +got):\n%s", diff)
			}
			if again := mustEncode(t, got); !bytes.Equal(again, data) {
				t.Error("second encode is not byte identical")
			}
		})
	}
}

func TestEncodePreservesFloatBits(t *testing.T) {
	a := nib.New()
	k := a.AddKey("f")
	c := a.AddClassName("F")

	nan32 := nib.Value{Key: k, Type: nib.TypeFloat32, Num: 0x7fc00001}
	nan64 := nib.Value{Key: k, Type: nib.TypeFloat64, Num: 0x7ff8000000000001}
	negZero := nib.Float64(k, math.Copysign(0, -1))
	a.AddObjectWithValues(c, nan32, nan64, negZero)

	got := mustDecode(t, mustEncode(t, a))
	for i, want := range []uint64{0x7fc00001, 0x7ff8000000000001, 1 << 63} {
		if got.Values[i].Num != want {
			t.Errorf("value %d bits: got %#x, want %#x", i, got.Values[i].Num, want)
		}
	}
}

func TestEncodeRejectsInvalid(t *testing.T) {
	tests := []struct {
		name  string
		build func() *nib.Archive
		field string
	}{
		{
			name: "dangling object ref",
			build: func() *nib.Archive {
				a := nib.New()
				c := a.AddClassName("A")
				k := a.AddKey("k")
				a.AddObjectWithValues(c, nib.ObjectRef(k, 5))
				return a
			},
			field: "object_ref",
		},
		{
			name: "dangling key",
			build: func() *nib.Archive {
				a := nib.New()
				c := a.AddClassName("A")
				a.AddObjectWithValues(c, nib.Nil(3))
				return a
			},
			field: "key_index",
		},
		{
			name: "dangling class",
			build: func() *nib.Archive {
				a := nib.New()
				a.AddObject(0, 0, 0)
				return a
			},
			field: "class_name_index",
		},
		{
			name: "value run past end",
			build: func() *nib.Archive {
				a := nib.New()
				c := a.AddClassName("A")
				a.AddObject(c, 0, 1)
				return a
			},
			field: "value_count",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := tt.build().Encode()
			if data != nil {
				t.Error("bytes returned alongside error")
			}
			var e *nerrors.Error
			if !errors.As(err, &e) {
				t.Fatalf("expected *errors.Error, got %v", err)
			}
			if e.Phase != nerrors.PhaseEncode || e.Kind != nerrors.KindIndexOutOfRange || e.Field != tt.field {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestEncodeRejectsUnknownType(t *testing.T) {
	a := nib.New()
	k := a.AddKey("k")
	a.AddValue(nib.Value{Key: k, Type: 0x0b})

	_, err := nib.Encode(a)
	if !errors.Is(err, nerrors.ErrUnknownValueTag) {
		t.Errorf("expected unknown value tag, got %v", err)
	}
}

func TestEncodeRejectsUnrepresentable(t *testing.T) {
	tests := []struct {
		name   string
		value  nib.Value
		field  string
		entity nerrors.Entity
	}{
		{"int8 wider than a byte", nib.Value{Type: nib.TypeInt8, Num: 300}, "payload", nerrors.EntityValue},
		{"int16 wider than two bytes", nib.Value{Type: nib.TypeInt16, Num: 0x10000}, "payload", nerrors.EntityValue},
		{"int32 wider than four bytes", nib.Value{Type: nib.TypeInt32, Num: 1 << 32}, "payload", nerrors.EntityValue},
		{"float32 wider than four bytes", nib.Value{Type: nib.TypeFloat32, Num: 0x1_7fc00000}, "payload", nerrors.EntityValue},
		{"object ref wider than four bytes", nib.Value{Type: nib.TypeObjectRef, Num: 1 << 40}, "payload", nerrors.EntityValue},
		{"true with payload", nib.Value{Type: nib.TypeTrue, Num: 7}, "payload", nerrors.EntityValue},
		{"false with payload", nib.Value{Type: nib.TypeFalse, Num: 1}, "payload", nerrors.EntityValue},
		{"nil with payload", nib.Value{Type: nib.TypeNil, Num: 1}, "payload", nerrors.EntityValue},
		{"data with number", nib.Value{Type: nib.TypeData, Num: 1, Data: []byte("x")}, "payload", nerrors.EntityValue},
		{"nil with data", nib.Value{Type: nib.TypeNil, Data: []byte{1, 2}}, "data", nerrors.EntityValue},
		{"int64 with data", nib.Value{Type: nib.TypeInt64, Data: []byte{}}, "data", nerrors.EntityValue},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := nib.New()
			c := a.AddClassName("A")
			v := tt.value
			v.Key = a.AddKey("k")
			a.AddObjectWithValues(c, v)

			data, err := a.Encode()
			if data != nil {
				t.Error("bytes returned alongside error")
			}
			var e *nerrors.Error
			if !errors.As(err, &e) {
				t.Fatalf("expected *errors.Error, got %v", err)
			}
			if e.Phase != nerrors.PhaseEncode || e.Kind != nerrors.KindInvalidInput ||
				e.Entity != tt.entity || e.Index != 0 || e.Field != tt.field {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}

	t.Run("unterminated class name ending in NUL", func(t *testing.T) {
		a := nib.New()
		a.ClassNames = append(a.ClassNames, nib.ClassName{Name: "A\x00", Unterminated: true})
		a.AddObject(0, 0, 0)

		_, err := a.Encode()
		var e *nerrors.Error
		if !errors.As(err, &e) {
			t.Fatalf("expected *errors.Error, got %v", err)
		}
		if e.Phase != nerrors.PhaseEncode || e.Kind != nerrors.KindInvalidInput ||
			e.Entity != nerrors.EntityClassName || e.Field != "name" {
			t.Errorf("unexpected error: %v", err)
		}
	})
}

func TestEncodeAcceptsFullWidthPayloads(t *testing.T) {
	a := nib.New()
	c := a.AddClassName("A")
	k := a.AddKey("k")
	a.AddObjectWithValues(c,
		nib.Value{Key: k, Type: nib.TypeInt8, Num: 0xff},
		nib.Value{Key: k, Type: nib.TypeInt16, Num: 0xffff},
		nib.Value{Key: k, Type: nib.TypeInt32, Num: 0xffffffff},
		nib.Value{Key: k, Type: nib.TypeInt64, Num: math.MaxUint64},
		nib.Data(k, nil),
	)
	a.ClassNames = append(a.ClassNames, nib.ClassName{Name: "B\x00", Unterminated: false})

	got := mustDecode(t, mustEncode(t, a))
	if diff := cmp.Diff(a.Values, got.Values); diff != "" {
		t.Errorf("values (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(a.ClassNames, got.ClassNames); diff != "" {
		t.Errorf("class names (-want +got):\n%s", diff)
	}
}

func TestEncodeDoesNotMutate(t *testing.T) {
	a := sampleArchive()
	before := a.Clone()
	mustEncode(t, a)
	if diff := cmp.Diff(before, a, archiveOpts); diff != "" {
		t.Errorf("Encode mutated the archive:\n%s", diff)
	}
}
