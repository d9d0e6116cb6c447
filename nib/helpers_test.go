package nib_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/wippyai/nib-archive/nib"
)

// Header slots, in header field order.
const (
	slotObjects = iota
	slotKeys
	slotValues
	slotClassNames
)

var standardOrder = [4]int{slotObjects, slotKeys, slotValues, slotClassNames}

type rawTable struct {
	count uint32
	data  []byte
}

// buildRaw lays the tables out back to back in the given physical order,
// records their offsets in the header and appends tail.
func buildRaw(tables [4]rawTable, order [4]int, tail []byte) []byte {
	var offsets [4]uint32
	var body []byte
	for _, slot := range order {
		offsets[slot] = uint32(nib.HeaderSize + len(body))
		body = append(body, tables[slot].data...)
	}
	h := nib.Header{
		FormatVersion: 1,
		CoderVersion:  9,
		Objects:       nib.Table{Count: tables[slotObjects].count, Offset: offsets[slotObjects]},
		Keys:          nib.Table{Count: tables[slotKeys].count, Offset: offsets[slotKeys]},
		Values:        nib.Table{Count: tables[slotValues].count, Offset: offsets[slotValues]},
		ClassNames:    nib.Table{Count: tables[slotClassNames].count, Offset: offsets[slotClassNames]},
	}
	out := h.Encode()
	out = append(out, body...)
	return append(out, tail...)
}

func cat(parts ...[]byte) []byte {
	var out []byte
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

// archiveOpts compares archives structurally, ignoring decode diagnostics.
var archiveOpts = cmp.Options{
	cmpopts.IgnoreFields(nib.Archive{}, "Warnings"),
	cmpopts.EquateEmpty(),
}

func mustEncode(t *testing.T, a *nib.Archive) []byte {
	t.Helper()
	data, err := a.Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	return data
}

func mustDecode(t *testing.T, data []byte, opts ...nib.DecodeOption) *nib.Archive {
	t.Helper()
	a, err := nib.Decode(data, opts...)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	return a
}

// sampleArchive builds a small window hierarchy exercising every value type.
func sampleArchive() *nib.Archive {
	a := nib.New()

	window := a.AddClassName("NSWindow")
	view := a.AddClassName("NSView", 0)
	button := a.AddClassName("NSButton", 1, 0)

	title := a.AddKey("title")
	frame := a.AddKey("frame")
	hidden := a.AddKey("hidden")
	tag := a.AddKey("tag")
	alpha := a.AddKey("alpha")
	scale := a.AddKey("scale")
	parent := a.AddKey("parent")
	state := a.AddKey("state")
	level := a.AddKey("level")
	id := a.AddKey("identifier")
	opaque := a.AddKey("opaque")
	menu := a.AddKey("menu")

	a.AddObjectWithValues(window,
		nib.Data(title, []byte("Main Window")),
		nib.Data(frame, []byte{0x00, 0x01, 0xfe, 0xff}),
		nib.Int64(id, -1<<40),
		nib.Bool(opaque, true),
	)
	a.AddObjectWithValues(view,
		nib.ObjectRef(parent, 0),
		nib.Bool(hidden, false),
		nib.Float32(alpha, 0.5),
		nib.Float64(scale, 2.25),
		nib.Int16(level, -300),
	)
	a.AddObjectWithValues(button,
		nib.ObjectRef(parent, 1),
		nib.Int8(state, -1),
		nib.Int32(tag, 70000),
		nib.Nil(menu),
	)
	return a
}
