package apperr

import (
	"errors"
	"fmt"
	"testing"
)

func TestIs_MatchesByKind(t *testing.T) {
	err := fmt.Errorf("delete holding: %w", NotFound("holding %s not found", "h1"))
	if !errors.Is(err, ErrNotFound) { t.Fatalf("expected NotFound match") }
	if errors.Is(err, ErrConflict) { t.Fatalf("unexpected Conflict match") }
	if KindOf(err) != KindNotFound { t.Fatalf("kind=%s", KindOf(err)) }
	if Message(err) != "holding h1 not found" { t.Fatalf("message=%q", Message(err)) }
}

func TestInternal_HidesCause(t *testing.T) {
	err := Internal(errors.New("disk I/O error at /var/db"))
	if Message(err) != "internal error" { t.Fatalf("message leaks cause: %q", Message(err)) }
	if !errors.Is(err, ErrInternal) { t.Fatalf("expected internal kind") }
	if KindOf(errors.New("boom")) != KindInternal { t.Fatalf("foreign errors are internal") }
}
