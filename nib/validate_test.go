package nib_test

import (
	"errors"
	"strings"
	"testing"

	nerrors "github.com/wippyai/nib-archive/errors"
	"github.com/wippyai/nib-archive/nib"
)

func TestValidateSample(t *testing.T) {
	if err := sampleArchive().Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestValidateFirstViolationWins(t *testing.T) {
	a := sampleArchive()
	a.Objects[1].Class = 9
	a.Values[0].Key = 99

	err := a.Validate()
	var e *nerrors.Error
	if !errors.As(err, &e) {
		t.Fatalf("expected *errors.Error, got %v", err)
	}
	if e.Phase != nerrors.PhaseValidate || e.Entity != nerrors.EntityObject || e.Index != 1 {
		t.Errorf("objects are checked before values: %v", err)
	}
}

func TestValidateEmptyRunAtEnd(t *testing.T) {
	a := sampleArchive()
	c, _ := a.FindClass("NSView")
	a.AddObject(c, nib.ValueIndex(len(a.Values)), 0)
	if err := a.Validate(); err != nil {
		t.Errorf("an empty run at the end of the value table is valid: %v", err)
	}

	a.AddObject(c, nib.ValueIndex(len(a.Values)+1), 0)
	if err := a.Validate(); !errors.Is(err, nerrors.ErrIndexOutOfRange) {
		t.Errorf("start past the end: %v", err)
	}
}

func TestValidateMessage(t *testing.T) {
	a := sampleArchive()
	a.Values[5] = nib.ObjectRef(a.Values[5].Key, 40)

	err := a.Validate()
	if err == nil {
		t.Fatal("dangling reference accepted")
	}
	for _, want := range []string{"[validate]", "index_out_of_range", "value 5", "object_ref", "40"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("message %q missing %q", err.Error(), want)
		}
	}
}
