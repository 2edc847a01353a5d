package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestKindSurvivesWrapping(t *testing.T) {
	err := fmt.Errorf("entry delete: %w", ErrAccessDenied)

	if !errors.Is(err, ErrAccessDenied) {
		t.Fatal("errors.Is lost the sentinel")
	}
	if KindOf(err) != Forbidden {
		t.Fatalf("KindOf = %v, want Forbidden", KindOf(err))
	}
	if got := Status(KindOf(err)); got != http.StatusForbidden {
		t.Fatalf("Status = %d", got)
	}
	if Message(err) != "Access denied" {
		t.Fatalf("Message = %q", Message(err))
	}
}

func TestInternalErrorsStayGeneric(t *testing.T) {
	err := errors.New("pq: relation \"users\" does not exist")
	if KindOf(err) != Internal {
		t.Fatal("plain error should be Internal")
	}
	if Message(err) == err.Error() {
		t.Fatal("driver text leaked to user message")
	}
	if Status(Internal) != http.StatusInternalServerError {
		t.Fatal("Internal should map to 500")
	}
}
