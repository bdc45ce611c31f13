package engine

import (
	"context"

	"github.com/gitfleet/gitfleet/pkg/gitrepo"
)

// Selector produces the list of repository URIs a run operates on.
// Implementations range from static lists to code-hosting API queries;
// the engine only consumes the result.
type Selector interface {
	// URIs returns the repository URIs to operate on.
	URIs(ctx context.Context) ([]string, error)
}

// SelectorFunc adapts a plain function to the Selector interface.
type SelectorFunc func(ctx context.Context) ([]string, error)

// URIs implements Selector.
func (f SelectorFunc) URIs(ctx context.Context) ([]string, error) {
	return f(ctx)
}

// Repo is an open handle to a materialized repository working copy. The
// engine opens one per successfully cloned repository and closes each
// exactly once after all action phases have run.
type Repo interface {
	// Dir returns the working tree path.
	Dir() string

	// Env returns extra environment that operations against the
	// repository should carry (credential scratch wiring and the like).
	Env() []string

	// Close releases resources held by the handle. Must be idempotent.
	Close() error
}

// VCS materializes repositories. The engine delegates all
// version-control work here; the default implementation shells out to
// the git binary via the gitrepo package.
type VCS interface {
	Clone(ctx context.Context, cc *gitrepo.CloneCommand) (Repo, error)
}

// Credentials attaches authentication material to a pending clone.
type Credentials interface {
	Apply(cc *gitrepo.CloneCommand) error
}

// Action performs arbitrary work against one materialized repository.
type Action interface {
	Apply(ctx context.Context, repo Repo) error
}

// ActionFunc adapts a plain function to the Action interface.
type ActionFunc func(ctx context.Context, repo Repo) error

// Apply implements Action.
func (f ActionFunc) Apply(ctx context.Context, repo Repo) error {
	return f(ctx, repo)
}

// StatusListener receives discrete progress fractions and
// human-readable messages as a run advances. Implementations must be
// cheap; the engine calls them synchronously from the run loop.
type StatusListener interface {
	// OnProgress reports overall run completion in the range 0.0 to 1.0.
	OnProgress(fraction float64)

	// OnMessage reports a human-readable status message.
	OnMessage(msg string)
}

// NopListener is a StatusListener that discards everything.
type NopListener struct{}

// OnProgress implements StatusListener.
func (NopListener) OnProgress(float64) {}

// OnMessage implements StatusListener.
func (NopListener) OnMessage(string) {}

// gitVCS is the default VCS backed by the git binary.
type gitVCS struct{}

func (gitVCS) Clone(ctx context.Context, cc *gitrepo.CloneCommand) (Repo, error) {
	return gitrepo.Clone(ctx, cc)
}

// nopCredentials leaves the clone untouched.
type nopCredentials struct{}

func (nopCredentials) Apply(*gitrepo.CloneCommand) error { return nil }
