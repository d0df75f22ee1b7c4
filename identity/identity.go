// Copyright 2025 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package identity resolves the version tag recorded with every
// benchmark run: the abbreviated commit of the measured source tree.
package identity

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	git "github.com/go-git/go-git/v5"
)

// TagLen is the length of a version tag.
const TagLen = 7

// DefaultFallbackFile is the file consulted when Dir is not inside a
// git work tree.
const DefaultFallbackFile = "current_commit.txt"

// A Resolver finds the version tag of a source tree.
type Resolver struct {
	// Dir is a directory inside the work tree. Parent directories
	// are searched for .git. The empty string means the current
	// directory.
	Dir string

	// FallbackFile is read when Dir is not in a repository. Its
	// first line holds the commit. A relative path is resolved
	// against Dir. The empty string means DefaultFallbackFile.
	FallbackFile string
}

// Lookup returns the first TagLen characters of the HEAD commit, or of
// the first line of the fallback file. It fails only if neither source
// yields a commit.
func (r *Resolver) Lookup() (string, error) {
	dir := r.Dir
	if dir == "" {
		dir = "."
	}
	hash, vcsErr := headHash(dir)
	if vcsErr == nil {
		return abbrev(hash), nil
	}

	file := r.FallbackFile
	if file == "" {
		file = DefaultFallbackFile
	}
	if !filepath.IsAbs(file) {
		file = filepath.Join(dir, file)
	}
	hash, fileErr := firstLine(file)
	if fileErr == nil {
		return abbrev(hash), nil
	}
	return "", fmt.Errorf("no version tag: %w", errors.Join(vcsErr, fileErr))
}

// Tag is like Lookup, but returns "" instead of an error.
func (r *Resolver) Tag() string {
	tag, err := r.Lookup()
	if err != nil {
		return ""
	}
	return tag
}

func headHash(dir string) (string, error) {
	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return "", fmt.Errorf("%s: %w", dir, err)
	}
	head, err := repo.Head()
	if err != nil {
		return "", fmt.Errorf("%s: HEAD: %w", dir, err)
	}
	return head.Hash().String(), nil
}

func firstLine(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	sc := bufio.NewScanner(f)
	if !sc.Scan() {
		if err := sc.Err(); err != nil {
			return "", fmt.Errorf("%s: %w", path, err)
		}
		return "", fmt.Errorf("%s: empty file", path)
	}
	line := strings.TrimSpace(sc.Text())
	if line == "" {
		return "", fmt.Errorf("%s: empty first line", path)
	}
	return line, nil
}

func abbrev(hash string) string {
	if len(hash) > TagLen {
		return hash[:TagLen]
	}
	return hash
}
