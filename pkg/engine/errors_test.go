package engine

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestRunErrorKindMatching(t *testing.T) {
	cause := errors.New("connection reset")
	err := NewCloneError(cause).WithURI("https://example.com/repo.git")

	if !IsKind(err, KindClone) {
		t.Error("expected clone kind to match")
	}
	if IsKind(err, KindAction) {
		t.Error("did not expect action kind to match")
	}
	if Kind(err) != KindClone {
		t.Errorf("expected kind %s, got %s", KindClone, Kind(err))
	}
	if !errors.Is(err, cause) {
		t.Error("expected unwrapping to reach the cause")
	}
}

func TestRunErrorSurvivesWrapping(t *testing.T) {
	err := fmt.Errorf("run failed: %w", NewSelectionError(errors.New("bad token")))

	if !IsKind(err, KindSelection) {
		t.Error("expected selection kind through fmt.Errorf wrapping")
	}
	var runErr *RunError
	if !errors.As(err, &runErr) {
		t.Fatal("expected errors.As to find the RunError")
	}
	if runErr.Kind != KindSelection {
		t.Errorf("expected kind %s, got %s", KindSelection, runErr.Kind)
	}
}

func TestRunErrorMessageIncludesURI(t *testing.T) {
	err := NewActionError(errors.New("exit code 2")).WithURI("git@host:org/repo.git")
	if !strings.Contains(err.Error(), "git@host:org/repo.git") {
		t.Errorf("expected URI in message, got %q", err.Error())
	}
	if !strings.Contains(err.Error(), string(KindAction)) {
		t.Errorf("expected kind in message, got %q", err.Error())
	}
}

func TestKindOfPlainError(t *testing.T) {
	if Kind(errors.New("plain")) != "" {
		t.Error("expected empty kind for plain errors")
	}
	if IsKind(nil, KindClone) {
		t.Error("expected nil to match no kind")
	}
}

func TestAlwaysFatalKinds(t *testing.T) {
	fatal := []ErrorKind{KindDirectoryNotEmpty, KindSelection}
	for _, kind := range fatal {
		if !kind.alwaysFatal() {
			t.Errorf("expected %s to be fatal regardless of policy", kind)
		}
	}
	perRepo := []ErrorKind{KindCredential, KindClone, KindAction, KindCleanup}
	for _, kind := range perRepo {
		if kind.alwaysFatal() {
			t.Errorf("expected %s to follow the failure policy", kind)
		}
	}
}
