// Copyright 2025 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package publish

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strconv"

	"github.com/dvstar/dvbench/resultstore"
)

// Object names the destination of one published file.
type Object struct {
	// Prefix is prepended to every object name, separated by "/".
	Prefix string
	// Version is recorded in the object metadata.
	Version string
}

// Name returns the object name for the local file path.
func (o Object) Name(file string) string {
	base := filepath.Base(file)
	if o.Prefix == "" {
		return base
	}
	return path.Join(o.Prefix, base)
}

// File copies the local file at path into fs and returns the object
// name. Result tables (".csv") are validated first, and their row count
// and header width are recorded as metadata.
func File(ctx context.Context, fs FS, o Object, file string) (string, error) {
	meta := map[string]string{}
	if o.Version != "" {
		meta["version"] = o.Version
	}
	if filepath.Ext(file) == ".csv" {
		t, err := resultstore.Load(file)
		if err != nil {
			return "", err
		}
		meta["rows"] = strconv.Itoa(len(t.Rows))
		meta["columns"] = strconv.Itoa(len(t.Header))
	}

	f, err := os.Open(file)
	if err != nil {
		return "", err
	}
	defer f.Close()

	name := o.Name(file)
	w, err := fs.NewWriter(ctx, name, meta)
	if err != nil {
		return "", fmt.Errorf("%s: %w", name, err)
	}
	if _, err := io.Copy(w, f); err != nil {
		w.CloseWithError(err)
		return "", fmt.Errorf("%s: %w", name, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("%s: %w", name, err)
	}
	return name, nil
}

// Files publishes every file in order, stopping at the first error.
func Files(ctx context.Context, fs FS, o Object, files ...string) ([]string, error) {
	var names []string
	for _, file := range files {
		name, err := File(ctx, fs, o, file)
		if err != nil {
			return names, err
		}
		names = append(names, name)
	}
	return names, nil
}
