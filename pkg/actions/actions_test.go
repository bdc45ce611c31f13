package actions

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

type fakeRepo struct {
	dir string
	env []string
}

func (r *fakeRepo) Dir() string   { return r.dir }
func (r *fakeRepo) Env() []string { return r.env }
func (r *fakeRepo) Close() error  { return nil }

func requireShell(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
}

func TestCommandRunsInWorkingTree(t *testing.T) {
	requireShell(t)
	workingDir := t.TempDir()
	repoDir := filepath.Join(workingDir, "1")
	if err := os.MkdirAll(repoDir, 0o755); err != nil {
		t.Fatal(err)
	}

	action, err := Command("sh", "-c", "pwd > cwd.txt")
	if err != nil {
		t.Fatalf("Command failed: %v", err)
	}
	if err := action.Apply(context.Background(), &fakeRepo{dir: repoDir}); err != nil {
		t.Fatalf("Apply failed: %v", err)
	}

	out, err := os.ReadFile(filepath.Join(repoDir, "cwd.txt"))
	if err != nil {
		t.Fatalf("expected the command to run inside the repository: %v", err)
	}
	got, err := filepath.EvalSymlinks(strings.TrimSpace(string(out)))
	if err != nil {
		t.Fatal(err)
	}
	want, err := filepath.EvalSymlinks(repoDir)
	if err != nil {
		t.Fatal(err)
	}
	if got != want {
		t.Errorf("expected cwd %s, got %s", want, got)
	}
}

func TestCommandExposesRunEnvironment(t *testing.T) {
	requireShell(t)
	workingDir := t.TempDir()
	repoDir := filepath.Join(workingDir, "1")
	if err := os.MkdirAll(repoDir, 0o755); err != nil {
		t.Fatal(err)
	}

	action, err := Command("sh", "-c",
		"printf '%s\\n%s\\n%s\\n' \"$GITFLEET_INVOKE_DIR\" \"$GITFLEET_WORKING_DIR\" \"$REPO_EXTRA\" > env.txt")
	if err != nil {
		t.Fatalf("Command failed: %v", err)
	}
	repo := &fakeRepo{dir: repoDir, env: []string{"REPO_EXTRA=from-clone"}}
	if err := action.Apply(context.Background(), repo); err != nil {
		t.Fatalf("Apply failed: %v", err)
	}

	out, err := os.ReadFile(filepath.Join(repoDir, "env.txt"))
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 env lines, got %v", lines)
	}
	invokeDir, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if lines[0] != invokeDir {
		t.Errorf("expected %s=%s, got %s", EnvInvokeDir, invokeDir, lines[0])
	}
	wantWorking, err := filepath.Abs(workingDir)
	if err != nil {
		t.Fatal(err)
	}
	if lines[1] != wantWorking {
		t.Errorf("expected %s=%s, got %s", EnvWorkingDir, wantWorking, lines[1])
	}
	if lines[2] != "from-clone" {
		t.Errorf("expected repository-scoped env to pass through, got %s", lines[2])
	}
}

func TestCommandNonZeroExitIsFailure(t *testing.T) {
	requireShell(t)
	action, err := Command("sh", "-c", "exit 3")
	if err != nil {
		t.Fatalf("Command failed: %v", err)
	}
	err = action.Apply(context.Background(), &fakeRepo{dir: t.TempDir()})
	if err == nil {
		t.Fatal("expected a non-zero exit to fail")
	}
	if !strings.Contains(err.Error(), "3") {
		t.Errorf("expected the exit code in the error, got %q", err.Error())
	}
}

func TestCommandRejectsEmptyArgv(t *testing.T) {
	if _, err := Command(); err == nil {
		t.Error("expected empty argv to be rejected")
	}
	if _, err := Command(""); err == nil {
		t.Error("expected empty command name to be rejected")
	}
}
