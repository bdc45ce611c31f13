// Package actions provides the standard actions applied to
// materialized repositories. The main one runs an external command in
// the repository's working tree.
package actions

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/gitfleet/gitfleet/pkg/engine"
)

// Environment variables exposed to commands run by Command.
const (
	// EnvInvokeDir is the directory the gitfleet process was invoked
	// from.
	EnvInvokeDir = "GITFLEET_INVOKE_DIR"

	// EnvWorkingDir is the run's working directory, which contains all
	// repositories.
	EnvWorkingDir = "GITFLEET_WORKING_DIR"
)

// Command returns an action that runs an external command with the
// repository's working tree as its current directory, inheriting the
// parent's standard streams. A non-zero exit code is a failure. The
// child sees EnvInvokeDir and EnvWorkingDir in its environment, plus
// whatever repository-scoped environment the clone carried.
func Command(argv ...string) (engine.Action, error) {
	if len(argv) == 0 || argv[0] == "" {
		return nil, fmt.Errorf("no command was given")
	}
	invokeDir, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("cannot determine invocation directory: %w", err)
	}
	fixed := make([]string, len(argv))
	copy(fixed, argv)
	return &commandAction{argv: fixed, invokeDir: invokeDir}, nil
}

type commandAction struct {
	argv      []string
	invokeDir string
}

func (a *commandAction) Apply(ctx context.Context, repo engine.Repo) error {
	workingDir, err := filepath.Abs(filepath.Dir(repo.Dir()))
	if err != nil {
		return fmt.Errorf("cannot resolve working directory: %w", err)
	}

	cmd := exec.CommandContext(ctx, a.argv[0], a.argv[1:]...)
	cmd.Dir = repo.Dir()
	cmd.Env = append(os.Environ(), repo.Env()...)
	cmd.Env = append(cmd.Env,
		EnvInvokeDir+"="+a.invokeDir,
		EnvWorkingDir+"="+workingDir,
	)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return fmt.Errorf("command exited with code %d", exitErr.ExitCode())
		}
		return fmt.Errorf("command failed to run: %w", err)
	}
	return nil
}
