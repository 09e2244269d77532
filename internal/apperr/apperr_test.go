package apperr

import (
	"errors"
	"fmt"
	"testing"
)

var errSample = Conflict("slot_unavailable", "slot is no longer available")

func TestIsMatchesWrappedSentinel(t *testing.T) {
	err := fmt.Errorf("book: %w", errSample.Wrap(errors.New("23P01")))

	if !errors.Is(err, errSample) {
		t.Fatal("expected wrapped copy to match sentinel")
	}
	if KindOf(err) != KindConflict {
		t.Errorf("expected conflict kind, got %s", KindOf(err))
	}
	if errors.Is(err, NotFound("slot_unavailable", "")) {
		t.Error("kinds differ, must not match")
	}
}

func TestKindOfPlainError(t *testing.T) {
	if KindOf(errors.New("boom")) != KindInternal {
		t.Error("plain errors are internal")
	}
}

func TestValidationError(t *testing.T) {
	var v ValidationError
	if v.Err() != nil {
		t.Fatal("empty validation must not produce an error")
	}

	v.Add("reason", "reason is required")
	v.Add("phone", "phone is invalid")
	v.Add("reason", "overwritten?")

	err := v.Err()
	if KindOf(err) != KindValidation {
		t.Fatalf("expected validation kind, got %v", err)
	}
	var e *Error
	if !errors.As(err, &e) {
		t.Fatal("expected *Error")
	}
	if e.Fields["reason"] != "reason is required" {
		t.Errorf("first message per field wins, got %q", e.Fields["reason"])
	}
	if e.Message != "invalid phone, reason" {
		t.Errorf("unexpected message %q", e.Message)
	}
}
