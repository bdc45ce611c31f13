package engine

import (
	"fmt"
	"os"
	"path/filepath"
)

// workDir owns the root directory of one run. Prepare brings it to a
// fresh empty state, removing leftovers from prior runs rather than
// merging into them. Cleanup removes the whole tree best-effort.
type workDir struct {
	path string
}

// Prepare deletes any pre-existing contents at the path and recreates
// the directory fresh. A path that exists but cannot be cleared is a
// directory-not-empty conflict, which is always fatal.
func (w workDir) Prepare() error {
	if w.path == "" || w.path == string(os.PathSeparator) {
		return newRunError(KindDirectoryNotEmpty, fmt.Sprintf("refusing to use %q as working directory", w.path), nil)
	}
	if _, err := os.Stat(w.path); err == nil {
		if err := os.RemoveAll(w.path); err != nil {
			return newRunError(KindDirectoryNotEmpty, "working directory has contents that could not be removed", err)
		}
	} else if !os.IsNotExist(err) {
		return newRunError(KindDirectoryNotEmpty, "working directory is not usable", err)
	}
	if err := os.MkdirAll(w.path, 0o755); err != nil {
		return newRunError(KindDirectoryNotEmpty, "could not create working directory", err)
	}
	return nil
}

// Remove deletes the directory tree post-order, children before parent,
// tolerating individual failures so cleanup stays best-effort. Every
// failed deletion is reported through onErr; the first is also returned
// as a cleanup-kind error for the caller to log.
func (w workDir) Remove(onErr func(path string, err error)) error {
	if onErr == nil {
		onErr = func(string, error) {}
	}
	var firstErr error
	record := func(path string, err error) {
		onErr(path, err)
		if firstErr == nil {
			firstErr = newRunError(KindCleanup, fmt.Sprintf("could not remove %s", path), err)
		}
	}
	deleteTree(w.path, record)
	return firstErr
}

// deleteTree removes path recursively. Unreadable directories and
// undeletable entries are reported and skipped.
func deleteTree(path string, onErr func(path string, err error)) {
	info, err := os.Lstat(path)
	if err != nil {
		if !os.IsNotExist(err) {
			onErr(path, err)
		}
		return
	}
	if info.IsDir() {
		entries, err := os.ReadDir(path)
		if err != nil {
			onErr(path, err)
			return
		}
		for _, entry := range entries {
			deleteTree(filepath.Join(path, entry.Name()), onErr)
		}
	}
	if err := os.Remove(path); err != nil {
		onErr(path, err)
	}
}
