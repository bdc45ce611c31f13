package engine

import "time"

// RunStatus summarizes the overall outcome of a run.
type RunStatus string

const (
	// RunStatusSucceeded indicates every repository was materialized and
	// every action phase completed without error.
	RunStatusSucceeded RunStatus = "succeeded"

	// RunStatusPartial indicates the run completed under the lenient
	// policy with some per-repository failures recorded.
	RunStatusPartial RunStatus = "partial"

	// RunStatusFailed indicates the run aborted with a fatal error.
	RunStatusFailed RunStatus = "failed"
)

// Slot is the per-repository state of a run: its URI, the ordinal that
// names its working subdirectory, and either an open handle or the
// error that prevented materialization. Action failures recorded under
// the lenient policy accumulate on the slot as well.
type Slot struct {
	// URI is the repository location the slot was created for.
	URI string

	// Ordinal is the 1-based position used to name the subdirectory.
	Ordinal int

	// Dir is the subdirectory the repository was cloned into.
	Dir string

	// Repo is the open handle, or nil when materialization failed.
	Repo Repo

	// CloneErr is the terminal materialization failure, when any.
	CloneErr error

	// ActionErrs collects action failures recorded under the lenient
	// policy, in the order they occurred.
	ActionErrs []error
}

// Failed reports whether the repository could not be materialized.
func (s *Slot) Failed() bool {
	return s.Repo == nil
}

// Errs returns every error recorded against the slot.
func (s *Slot) Errs() []error {
	if s.CloneErr == nil {
		return s.ActionErrs
	}
	return append([]error{s.CloneErr}, s.ActionErrs...)
}

// Result is the outcome of one run. Under the lenient policy the run
// itself reports success while per-repository errors remain inspectable
// here, so callers are not limited to scraping status messages.
type Result struct {
	// RunID uniquely identifies the run.
	RunID string

	// Status is the overall outcome.
	Status RunStatus

	// Slots maps each repository URI to its final per-repository state.
	// Duplicate URIs in the selection collapse to one slot.
	Slots map[string]*Slot

	// StepsTotal is the number of progress steps the run accounted for.
	StepsTotal int

	// Duration is the wall-clock time the run took.
	Duration time.Duration
}

// Errs returns all recorded per-repository errors keyed by URI. Empty
// for fully successful runs.
func (r *Result) Errs() map[string][]error {
	out := make(map[string][]error)
	for uri, slot := range r.Slots {
		if errs := slot.Errs(); len(errs) > 0 {
			out[uri] = errs
		}
	}
	return out
}
