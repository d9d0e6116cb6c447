// Package errors provides structured error types for the NIB Archive codec.
//
// Errors are categorized by Phase (decode, encode, validate, ...) and Kind
// (bad_magic, truncated, index_out_of_range, ...). Each Error carries enough
// context to locate the malformed data: the byte offset, the table entity and
// its index, and the offending field and value.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseDecode, errors.KindUnknownValueTag).
//		At(118).
//		Entity(errors.EntityValue, 4).
//		Value(byte(0x0b)).
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.Truncated(errors.PhaseDecode, 42, 4, 1)
//	err := errors.IndexOutOfRange(errors.PhaseValidate, errors.EntityValue, 3, "key_index", 7, 7)
//
// Sentinels such as ErrTruncated match any error of the same Kind through
// the standard errors.Is.
package errors
