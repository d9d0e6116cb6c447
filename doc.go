// Package nibarchive reads and writes NIB Archive files, the compiled
// interface container (.nib) made of a fixed header and four
// cross-referencing tables.
//
// # Architecture Overview
//
// The module is organized into packages with distinct responsibilities:
//
//	nibarchive/          Root package with file-level helpers and digests
//	├── nib/             Archive model, decoder, encoder and validator
//	├── export/          JSON, YAML, CBOR and MessagePack projections
//	├── config/          YAML configuration for the command
//	├── errors/          Structured error types for debugging
//	└── cmd/nibarchive/  Command-line tool (tojson, export, info, ...)
//
// # Quick Start
//
// Open an archive, inspect it and write it back:
//
//	a, err := nibarchive.Open("MainMenu.nib")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	for i, obj := range a.All() {
//	    class, _ := a.ClassName(obj.Class)
//	    fmt.Println(i, class.Name)
//	}
//
//	if err := nibarchive.Save("copy.nib", a); err != nil {
//	    log.Fatal(err)
//	}
//
// # Fidelity
//
// Decoding keeps everything needed to reproduce the input: raw payload bits,
// class-name extras, names that are not valid UTF-8 and bytes after the last
// table. Encoding an archive decoded from a file in the standard table order
// gives back the same bytes.
//
// # Error Handling
//
// Errors are *errors.Error values carrying the phase, the kind, the table
// entry and the byte offset involved:
//
//	a, err := nibarchive.Open(path)
//	if errors.Is(err, errors.ErrTruncated) {
//	    // file cut short
//	}
package nibarchive
