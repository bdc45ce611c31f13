// Package gitrepo materializes and manipulates git working copies by
// shelling out to the git binary. It implements no wire protocol of its
// own; authentication and transport are whatever the installed git
// supports, steered through configuration and environment injected by
// the caller.
package gitrepo

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
)

// CloneCommand describes a pending clone. Credential providers mutate it
// before execution to attach configuration, environment, and scratch
// files that must live as long as the resulting working copy.
type CloneCommand struct {
	// URI is the remote repository location, in any form git accepts.
	URI string

	// Dir is the target directory for the working copy.
	Dir string

	config  []string
	env     []string
	scratch []string
}

// NewCloneCommand creates a clone command for the given remote and
// target directory.
func NewCloneCommand(uri, dir string) *CloneCommand {
	return &CloneCommand{URI: uri, Dir: dir}
}

// AddConfig attaches a git configuration value (git -c key=value) that
// applies to the clone and is carried forward on the resulting handle.
func (c *CloneCommand) AddConfig(key, value string) {
	c.config = append(c.config, fmt.Sprintf("%s=%s", key, value))
}

// AddEnv attaches an environment variable to the clone process and to
// every subsequent git invocation against the working copy.
func (c *CloneCommand) AddEnv(key, value string) {
	c.env = append(c.env, fmt.Sprintf("%s=%s", key, value))
}

// AddScratchFile registers a file that was created on behalf of this
// clone (credential material, generated ssh config) and must be removed
// when the repository handle is closed.
func (c *CloneCommand) AddScratchFile(path string) {
	c.scratch = append(c.scratch, path)
}

// Config returns the accumulated git configuration pairs.
func (c *CloneCommand) Config() []string {
	return c.config
}

// Env returns the accumulated extra environment.
func (c *CloneCommand) Env() []string {
	return c.env
}

// Repo is an open handle to a local git working copy.
type Repo struct {
	dir     string
	config  []string
	env     []string
	scratch []string

	closeOnce sync.Once
	closeErr  error
}

// Clone executes the clone command and returns an open handle to the
// resulting working copy. On failure the command's scratch files are
// removed and the captured git stderr is folded into the error.
func Clone(ctx context.Context, cc *CloneCommand) (*Repo, error) {
	args := make([]string, 0, 4+2*len(cc.config))
	for _, kv := range cc.config {
		args = append(args, "-c", kv)
	}
	args = append(args, "clone", "--", cc.URI, cc.Dir)

	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Env = append(os.Environ(), cc.env...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		removeAll(cc.scratch)
		return nil, fmt.Errorf("git clone %s: %w: %s", cc.URI, err, strings.TrimSpace(stderr.String()))
	}

	return &Repo{
		dir:     cc.Dir,
		config:  cc.config,
		env:     cc.env,
		scratch: cc.scratch,
	}, nil
}

// Open returns a handle to an existing working copy at dir.
func Open(dir string) (*Repo, error) {
	info, err := os.Stat(filepath.Join(dir, ".git"))
	if err != nil {
		return nil, fmt.Errorf("open repository %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("open repository %s: .git is not a directory", dir)
	}
	return &Repo{dir: dir}, nil
}

// Dir returns the working tree path.
func (r *Repo) Dir() string {
	return r.dir
}

// Env returns the extra environment that git operations and external
// commands run against this repository should carry.
func (r *Repo) Env() []string {
	return r.env
}

// Close releases resources held on behalf of the repository. It is safe
// to call more than once; only the first call does work.
func (r *Repo) Close() error {
	r.closeOnce.Do(func() {
		r.closeErr = removeAll(r.scratch)
	})
	return r.closeErr
}

// CurrentBranch reports the branch the working copy has checked out.
func (r *Repo) CurrentBranch(ctx context.Context) (string, error) {
	out, err := r.run(ctx, "branch", "--show-current")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// Head reports the commit hash at HEAD.
func (r *Repo) Head(ctx context.Context) (string, error) {
	out, err := r.run(ctx, "rev-parse", "HEAD")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// IsClean reports whether the working tree has no uncommitted changes.
func (r *Repo) IsClean(ctx context.Context) (bool, error) {
	out, err := r.run(ctx, "status", "--porcelain")
	if err != nil {
		return false, err
	}
	return strings.TrimSpace(out) == "", nil
}

func (r *Repo) run(ctx context.Context, args ...string) (string, error) {
	full := make([]string, 0, len(args)+2*len(r.config))
	for _, kv := range r.config {
		full = append(full, "-c", kv)
	}
	full = append(full, args...)

	cmd := exec.CommandContext(ctx, "git", full...)
	cmd.Dir = r.dir
	cmd.Env = append(os.Environ(), r.env...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("git %s: %w: %s", strings.Join(args, " "), err, strings.TrimSpace(stderr.String()))
	}
	return stdout.String(), nil
}

func removeAll(paths []string) error {
	var firstErr error
	for _, p := range paths {
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
