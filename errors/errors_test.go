package errors

import (
	"errors"
	"strings"
	"testing"
)

func TestError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		contains []string
	}{
		{
			name: "full error",
			err: New(PhaseValidate, KindIndexOutOfRange).
				Entity(EntityValue, 3).
				Field("key_index").
				Detail("index 7 out of range (length 7)").
				Build(),
			contains: []string{"[validate]", "index_out_of_range", "value 3.key_index", "length 7"},
		},
		{
			name:     "minimal error",
			err:      New(PhaseDecode, KindBadMagic).Build(),
			contains: []string{"[decode]", "bad_magic"},
		},
		{
			name:     "offset",
			err:      Truncated(PhaseDecode, 57, 4, 1),
			contains: []string{"truncated at offset 57", "need 4 bytes, 1 available"},
		},
		{
			name:     "error with cause",
			err:      Load("read input.nib", errors.New("no such file")),
			contains: []string{"[load]", "read input.nib", "caused by", "no such file"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tt.err.Error()
			for _, s := range tt.contains {
				if !strings.Contains(msg, s) {
					t.Errorf("error message %q does not contain %q", msg, s)
				}
			}
		})
	}
}

func TestError_NoOffsetOmitted(t *testing.T) {
	msg := InvalidInput(PhaseExport, "unknown format").Error()
	if strings.Contains(msg, "offset") {
		t.Errorf("message %q should not mention an offset", msg)
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := Wrap(PhaseEncode, KindTooLarge, cause, "archive too large")

	if !errors.Is(err.Unwrap(), cause) {
		t.Error("Unwrap did not return cause")
	}
	if !errors.Is(err, cause) {
		t.Error("errors.Is did not find cause through chain")
	}
}

func TestError_Is(t *testing.T) {
	err := VarintOverflow(PhaseDecode, 12)

	if !errors.Is(err, ErrVarintOverflow) {
		t.Error("sentinel should match any phase")
	}
	if errors.Is(err, ErrTruncated) {
		t.Error("different kind should not match")
	}
	if !errors.Is(err, &Error{Phase: PhaseDecode, Kind: KindVarintOverflow}) {
		t.Error("same phase and kind should match")
	}
	if errors.Is(err, &Error{Phase: PhaseEncode, Kind: KindVarintOverflow}) {
		t.Error("different phase should not match")
	}
	if errors.Is(err, errors.New("varint_overflow")) {
		t.Error("plain errors should not match")
	}
}

func TestError_As(t *testing.T) {
	var wrapped error = IndexOutOfRange(PhaseValidate, EntityObject, 2, "class_name_index", 5, 1)

	var e *Error
	if !errors.As(wrapped, &e) {
		t.Fatal("errors.As failed")
	}
	if e.Entity != EntityObject || e.Index != 2 || e.Value != uint64(5) {
		t.Errorf("unexpected context: %+v", e)
	}
}

func TestWithPhase(t *testing.T) {
	orig := IndexOutOfRange(PhaseValidate, EntityValue, 0, "key_index", 1, 1)
	got := WithPhase(orig, PhaseEncode).(*Error)

	if got.Phase != PhaseEncode {
		t.Errorf("Phase = %s, want encode", got.Phase)
	}
	if orig.Phase != PhaseValidate {
		t.Error("WithPhase mutated the original")
	}

	plain := errors.New("plain")
	if WithPhase(plain, PhaseEncode) != plain {
		t.Error("non-structured errors should pass through")
	}
}

func TestInvalidUTF8_Preview(t *testing.T) {
	data := make([]byte, 64)
	for i := range data {
		data[i] = 0xff
	}
	err := InvalidUTF8(PhaseDecode, EntityKey, 1, 80, data)
	if strings.Count(err.Detail, "ff") != 32 {
		t.Errorf("preview should be capped at 32 bytes: %s", err.Detail)
	}
}
