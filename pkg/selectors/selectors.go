// Package selectors provides the standard ways of producing the list
// of repository URIs a run operates on: static lists, newline-delimited
// files, standard input, and the GitHub API.
package selectors

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
)

// Selector produces a list of repository URIs.
type Selector interface {
	URIs(ctx context.Context) ([]string, error)
}

// Func adapts a plain function to the Selector interface.
type Func func(ctx context.Context) ([]string, error)

// URIs implements Selector.
func (f Func) URIs(ctx context.Context) ([]string, error) {
	return f(ctx)
}

// FromList returns a selector over a fixed set of URIs.
func FromList(uris ...string) Selector {
	fixed := make([]string, len(uris))
	copy(fixed, uris)
	return Func(func(context.Context) ([]string, error) {
		out := make([]string, len(fixed))
		copy(out, fixed)
		return out, nil
	})
}

// FromFiles returns a selector that reads newline-delimited URIs from
// the given files, in order, skipping blank lines. The paths are
// validated eagerly so a bad path fails at construction rather than
// mid-run.
func FromFiles(paths ...string) (Selector, error) {
	if len(paths) == 0 {
		return nil, fmt.Errorf("no selector files were given")
	}
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("selector file %s is not usable: %w", path, err)
		}
		if !info.Mode().IsRegular() {
			return nil, fmt.Errorf("selector file %s is not a regular file", path)
		}
	}
	fixed := make([]string, len(paths))
	copy(fixed, paths)
	return Func(func(context.Context) ([]string, error) {
		var uris []string
		for _, path := range fixed {
			f, err := os.Open(path)
			if err != nil {
				return nil, fmt.Errorf("cannot open selector file %s: %w", path, err)
			}
			lines, err := readLines(f)
			f.Close()
			if err != nil {
				return nil, fmt.Errorf("cannot read selector file %s: %w", path, err)
			}
			uris = append(uris, lines...)
		}
		return uris, nil
	}), nil
}

// FromReader returns a selector that reads newline-delimited URIs from
// r, skipping blank lines. The reader is consumed on first use.
func FromReader(r io.Reader) Selector {
	return Func(func(context.Context) ([]string, error) {
		return readLines(r)
	})
}

// FromStdin returns a selector that reads newline-delimited URIs from
// standard input.
func FromStdin() Selector {
	return FromReader(os.Stdin)
}

func readLines(r io.Reader) ([]string, error) {
	var lines []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			lines = append(lines, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}
