package apperr

import (
	"errors"
	"fmt"
	"testing"
)

func TestIsMatchesKindAndCode(t *testing.T) {
	sentinel := New(StateConflict, "Exhausted", "coupon usage limit reached")
	wrapped := fmt.Errorf("validate: %w", sentinel.WithMessage("coupon %s exhausted", "ABC"))

	if !errors.Is(wrapped, sentinel) {
		t.Fatalf("expected wrapped copy to match sentinel")
	}
	if errors.Is(wrapped, New(StateConflict, "Expired", "")) {
		t.Fatalf("different code must not match")
	}
	if KindOf(wrapped) != StateConflict {
		t.Fatalf("KindOf = %v, want StateConflict", KindOf(wrapped))
	}
}

func TestUnclassifiedIsInternal(t *testing.T) {
	err := errors.New("boom")
	if KindOf(err) != InternalError {
		t.Fatalf("KindOf = %v, want InternalError", KindOf(err))
	}
	ae := As(err)
	if ae.Code != "InternalError" || !errors.Is(ae, err) {
		t.Fatalf("As should wrap unclassified error, got %+v", ae)
	}
}
