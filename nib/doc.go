// Package nib decodes and encodes NIB Archive files, the table-based
// container used for compiled interface descriptions (.nib).
//
// # Layout
//
// An archive is a 50-byte header followed by four tables:
//
//	[0..10)   "NIBArchive"
//	[10..14)  format version   (opaque, preserved)
//	[14..18)  coder version    (opaque, preserved)
//	[18..26)  object count, object table offset
//	[26..34)  key count, key table offset
//	[34..42)  value count, value table offset
//	[42..50)  class name count, class name table offset
//	[50..)    tables, then any trailing bytes
//
// All fixed-width fields are little-endian. Counts, lengths and indices
// inside the tables use the archive's varint (see ReadVarint).
//
// # Decoding
//
//	data, _ := os.ReadFile("MainMenu.nib")
//	archive, err := nib.Decode(data)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Decoding is all-or-nothing: any structural error returns a nil archive.
// Names that are not valid UTF-8 are kept byte for byte and reported in
// Archive.Warnings. Bytes after the last table entry are kept in
// Archive.Trailing.
//
// # Inspecting
//
//	for i, obj := range archive.All() {
//	    class, _ := archive.ClassName(obj.Class)
//	    values, _ := archive.ObjectValues(i)
//	    fmt.Println(class.Name, len(values))
//	}
//
// # Building
//
// Append class names and keys before the objects and values that use them:
//
//	a := nib.New()
//	view := a.AddClassName("NSView")
//	hidden := a.AddKey("hidden")
//	a.AddObjectWithValues(view, nib.Bool(hidden, true))
//	data, err := a.Encode()
//
// # Encoding
//
// Encode validates every cross-reference, recomputes counts and offsets and
// lays the tables out in object, key, value, class-name order. Re-encoding a
// decoded archive that was produced the same way reproduces the input bytes,
// trailing bytes included.
package nib
