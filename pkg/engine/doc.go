// Package engine is the core of gitfleet: it fans a caller-supplied
// action out over a set of git repositories. A run resolves repository
// URIs through a Selector, clones each into an ordinal-named
// subdirectory of the working directory, applies the primary Action to
// every working copy, optionally applies a finalization Action in a
// second pass, and removes everything afterwards when cleanup is
// requested.
//
// The failure policy is chosen once per run: strict aborts the whole
// run on the first error, lenient records per-repository errors on the
// Result and continues. Progress is reported to a StatusListener as
// discrete fractions, one step per materialization or action attempt.
//
// Clones and actions may block for the duration of a network call or
// an external process; the engine imposes no timeout of its own beyond
// honoring context cancellation in its collaborators.
package engine
