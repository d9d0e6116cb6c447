// Package export renders decoded NIB archives into interchange formats.
//
// Two projections are available:
//
//   - Project builds a Document that keeps every object in table order with
//     its class, extras and typed values. Object references survive as
//     {"$ref": n} entries. Nothing is lost except the byte layout.
//   - Flat builds the class-keyed map the nibarchive tojson command has
//     always written: {class: {key: value}}. Object references are dropped
//     and later objects replace earlier ones of the same class.
//
// Either projection can be written as JSON, YAML, CBOR or MessagePack with
// Marshal. Diff compares two archives through their YAML Document form.
package export
