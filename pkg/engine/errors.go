package engine

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a run error by the phase or collaborator that
// produced it. The kind drives the failure policy: selection and
// directory conflicts are always fatal, cleanup failures never are, and
// everything else depends on the run's strict/lenient setting.
type ErrorKind string

const (
	// KindDirectoryNotEmpty indicates the working directory could not be
	// brought to a fresh state before the run.
	KindDirectoryNotEmpty ErrorKind = "directory-not-empty"

	// KindSelection indicates the repository selector failed to produce
	// a URI list.
	KindSelection ErrorKind = "selection"

	// KindCredential indicates credentials could not be attached to a
	// clone operation.
	KindCredential ErrorKind = "credential"

	// KindClone indicates a repository could not be materialized.
	KindClone ErrorKind = "clone"

	// KindAction indicates an action failed against a repository.
	KindAction ErrorKind = "action"

	// KindCleanup indicates best-effort cleanup failed. Never fatal.
	KindCleanup ErrorKind = "cleanup"
)

// RunError is a classified error raised during a run. It carries the
// originating repository URI when the failure is scoped to one.
type RunError struct {
	Kind    ErrorKind
	Message string
	URI     string
	Err     error
}

// Error implements the error interface.
func (e *RunError) Error() string {
	if e.URI != "" {
		return fmt.Sprintf("[%s] %s (repository=%s): %v", e.Kind, e.Message, e.URI, e.Err)
	}
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Kind, e.Message)
}

// Unwrap returns the underlying cause.
func (e *RunError) Unwrap() error {
	return e.Err
}

// Is matches run errors by kind, so errors.Is(err, &RunError{Kind: KindClone})
// works across wrapping.
func (e *RunError) Is(target error) bool {
	t, ok := target.(*RunError)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// WithURI adds repository context to the error.
func (e *RunError) WithURI(uri string) *RunError {
	e.URI = uri
	return e
}

func newRunError(kind ErrorKind, message string, err error) *RunError {
	return &RunError{Kind: kind, Message: message, Err: err}
}

// NewSelectionError wraps a selector failure.
func NewSelectionError(err error) *RunError {
	return newRunError(KindSelection, "failed to resolve repository URIs", err)
}

// NewCredentialError wraps a credential attachment failure.
func NewCredentialError(err error) *RunError {
	return newRunError(KindCredential, "failed to attach credentials", err)
}

// NewCloneError wraps a materialization failure.
func NewCloneError(err error) *RunError {
	return newRunError(KindClone, "failed to clone repository", err)
}

// NewActionError wraps an action execution failure.
func NewActionError(err error) *RunError {
	return newRunError(KindAction, "action failed", err)
}

// Kind returns the classification of err, or the empty kind when err is
// not a RunError.
func Kind(err error) ErrorKind {
	var e *RunError
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// IsKind reports whether err is a RunError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	return Kind(err) == kind
}

// alwaysFatal reports whether errors of this kind abort the run even in
// lenient mode. These occur before any per-repository work exists, so
// there is nothing to continue past.
func (k ErrorKind) alwaysFatal() bool {
	return k == KindDirectoryNotEmpty || k == KindSelection
}
