// Copyright 2025 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package publish copies result tables and charts to shared storage.
package publish

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"
)

// An FS is a place objects can be written to.
type FS interface {
	// NewWriter returns a Writer for the object name. The object
	// exists only once the Writer is closed without error.
	NewWriter(ctx context.Context, name string, metadata map[string]string) (Writer, error)
}

// A Writer writes one object.
type Writer interface {
	io.Writer
	io.Closer
	// CloseWithError abandons the object.
	CloseWithError(error) error
}

// MemFS is an in-memory FS.
type MemFS struct {
	mu      sync.Mutex
	content map[string]*memFile
}

type memFile struct {
	metadata map[string]string
	content  []byte
}

// NewMemFS returns an empty MemFS.
func NewMemFS() *MemFS {
	return &MemFS{content: make(map[string]*memFile)}
}

// NewWriter implements FS.
func (fs *MemFS) NewWriter(_ context.Context, name string, metadata map[string]string) (Writer, error) {
	m := make(map[string]string)
	for k, v := range metadata {
		m[k] = v
	}
	return &memWriter{fs: fs, name: name, metadata: m}, nil
}

// Files returns the names of the objects in fs, sorted.
func (fs *MemFS) Files() []string {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	var files []string
	for f := range fs.content {
		files = append(files, f)
	}
	sort.Strings(files)
	return files
}

// Object returns the content and metadata of name.
func (fs *MemFS) Object(name string) ([]byte, map[string]string, bool) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	f, ok := fs.content[name]
	if !ok {
		return nil, nil, false
	}
	return f.content, f.metadata, true
}

type memWriter struct {
	fs       *MemFS
	name     string
	metadata map[string]string
	bytes.Buffer
}

func (w *memWriter) Close() error {
	w.fs.mu.Lock()
	defer w.fs.mu.Unlock()
	w.fs.content[w.name] = &memFile{w.metadata, w.Bytes()}
	return nil
}

func (w *memWriter) CloseWithError(error) error {
	return nil
}

// DirFS is an FS rooted at a local directory. Metadata is discarded.
type DirFS string

// NewWriter implements FS. Objects are written to a temporary file and
// renamed into place on Close.
func (d DirFS) NewWriter(_ context.Context, name string, _ map[string]string) (Writer, error) {
	path := filepath.Join(string(d), filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	f, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return nil, err
	}
	return &dirWriter{File: f, path: path}, nil
}

type dirWriter struct {
	*os.File
	path string
}

func (w *dirWriter) Close() error {
	err := w.File.Close()
	if err == nil {
		err = os.Chmod(w.Name(), 0o644)
	}
	if err == nil {
		return os.Rename(w.Name(), w.path)
	}
	os.Remove(w.Name())
	return err
}

func (w *dirWriter) CloseWithError(error) error {
	return errors.Join(w.File.Close(), os.Remove(w.Name()))
}
