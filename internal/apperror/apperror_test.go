package apperror

import (
	"errors"
	"fmt"
	"testing"
)

func TestKindOfWrapped(t *testing.T) {
	base := Validation("cpf", "CPF inválido")
	wrapped := fmt.Errorf("create student: %w", base)

	if got := KindOf(wrapped); got != KindValidation {
		t.Fatalf("KindOf = %v, want validation", got)
	}
	ae, ok := As(wrapped)
	if !ok || ae.Field != "cpf" {
		t.Fatalf("As = %+v, %v", ae, ok)
	}
	if !Is(wrapped, KindValidation) || Is(wrapped, KindNotFound) {
		t.Error("Is mismatched")
	}
}

func TestUnclassifiedIsInternal(t *testing.T) {
	if got := KindOf(errors.New("boom")); got != KindInternal {
		t.Errorf("KindOf = %v, want internal", got)
	}
	if Is(nil, KindInternal) {
		t.Error("nil error must not match any kind")
	}
}

func TestInternalUnwrap(t *testing.T) {
	cause := errors.New("connection reset")
	err := Internal(cause, "list students")
	if !errors.Is(err, cause) {
		t.Error("Internal must wrap its cause")
	}
	if err.Error() != "list students: connection reset" {
		t.Errorf("Error() = %q", err.Error())
	}
}
