package gitrepo

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

func requireGit(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git binary not available")
	}
}

// newSourceRepo creates a local repository with one commit and returns
// its path, usable as a clone URI.
func newSourceRepo(t *testing.T) string {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "source")
	git(t, "", "init", "--initial-branch=main", dir)
	if err := os.WriteFile(filepath.Join(dir, "README.md"), []byte("fleet test\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	git(t, dir, "add", ".")
	git(t, dir, "-c", "user.name=test", "-c", "user.email=test@localhost", "commit", "-m", "initial commit")
	return dir
}

func git(t *testing.T, dir string, args ...string) string {
	t.Helper()
	cmd := exec.Command("git", args...)
	if dir != "" {
		cmd.Dir = dir
	}
	var out, errOut bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errOut
	if err := cmd.Run(); err != nil {
		t.Fatalf("git %v: %v: %s", args, err, errOut.String())
	}
	return out.String()
}

func TestCloneAndInspect(t *testing.T) {
	requireGit(t)
	source := newSourceRepo(t)
	target := filepath.Join(t.TempDir(), "clone")

	repo, err := Clone(context.Background(), NewCloneCommand(source, target))
	if err != nil {
		t.Fatalf("Clone failed: %v", err)
	}
	defer repo.Close()

	if repo.Dir() != target {
		t.Errorf("expected dir %s, got %s", target, repo.Dir())
	}
	if _, err := os.Stat(filepath.Join(target, "README.md")); err != nil {
		t.Errorf("expected cloned file to exist: %v", err)
	}

	branch, err := repo.CurrentBranch(context.Background())
	if err != nil {
		t.Fatalf("CurrentBranch failed: %v", err)
	}
	if branch != "main" {
		t.Errorf("expected branch main, got %q", branch)
	}

	clean, err := repo.IsClean(context.Background())
	if err != nil {
		t.Fatalf("IsClean failed: %v", err)
	}
	if !clean {
		t.Error("expected fresh clone to be clean")
	}

	head, err := repo.Head(context.Background())
	if err != nil {
		t.Fatalf("Head failed: %v", err)
	}
	if len(head) < 7 {
		t.Errorf("expected a commit hash, got %q", head)
	}
}

func TestCloneFailureIncludesStderr(t *testing.T) {
	requireGit(t)
	target := filepath.Join(t.TempDir(), "clone")

	_, err := Clone(context.Background(), NewCloneCommand(filepath.Join(t.TempDir(), "no-such-repo"), target))
	if err == nil {
		t.Fatal("expected clone of a missing repository to fail")
	}
	if !strings.Contains(err.Error(), "git clone") {
		t.Errorf("expected error to name the operation, got %q", err.Error())
	}
}

func TestCloneFailureRemovesScratchFiles(t *testing.T) {
	requireGit(t)
	target := filepath.Join(t.TempDir(), "clone")
	scratch := filepath.Join(t.TempDir(), "scratch.credentials")
	if err := os.WriteFile(scratch, []byte("secret"), 0o600); err != nil {
		t.Fatal(err)
	}

	cc := NewCloneCommand(filepath.Join(t.TempDir(), "no-such-repo"), target)
	cc.AddScratchFile(scratch)
	if _, err := Clone(context.Background(), cc); err == nil {
		t.Fatal("expected clone to fail")
	}
	if _, err := os.Stat(scratch); !os.IsNotExist(err) {
		t.Errorf("expected scratch file removed on clone failure, stat err: %v", err)
	}
}

func TestOpenExistingWorkingCopy(t *testing.T) {
	requireGit(t)
	source := newSourceRepo(t)

	repo, err := Open(source)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer repo.Close()
	if repo.Dir() != source {
		t.Errorf("expected dir %s, got %s", source, repo.Dir())
	}
}

func TestOpenRejectsNonRepository(t *testing.T) {
	if _, err := Open(t.TempDir()); err == nil {
		t.Error("expected opening a plain directory to fail")
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	requireGit(t)
	source := newSourceRepo(t)
	target := filepath.Join(t.TempDir(), "clone")

	scratch := filepath.Join(t.TempDir(), "scratch.credentials")
	if err := os.WriteFile(scratch, []byte("secret"), 0o600); err != nil {
		t.Fatal(err)
	}
	cc := NewCloneCommand(source, target)
	cc.AddScratchFile(scratch)

	repo, err := Clone(context.Background(), cc)
	if err != nil {
		t.Fatalf("Clone failed: %v", err)
	}
	if err := repo.Close(); err != nil {
		t.Fatalf("first Close failed: %v", err)
	}
	if _, err := os.Stat(scratch); !os.IsNotExist(err) {
		t.Errorf("expected scratch file removed on close, stat err: %v", err)
	}
	if err := repo.Close(); err != nil {
		t.Errorf("second Close should be a no-op, got %v", err)
	}
}

func TestCloneCommandAccumulators(t *testing.T) {
	cc := NewCloneCommand("https://example.com/repo.git", "/tmp/1")
	cc.AddConfig("credential.helper", "store --file=/tmp/1.credentials")
	cc.AddEnv("GIT_TERMINAL_PROMPT", "0")

	if len(cc.Config()) != 1 || !strings.HasPrefix(cc.Config()[0], "credential.helper=") {
		t.Errorf("unexpected config: %v", cc.Config())
	}
	if len(cc.Env()) != 1 || cc.Env()[0] != "GIT_TERMINAL_PROMPT=0" {
		t.Errorf("unexpected env: %v", cc.Env())
	}
}
