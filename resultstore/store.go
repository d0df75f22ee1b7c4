// Copyright 2025 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package resultstore persists records as rows of a CSV result table
// whose header is fixed by the first record ever appended.
//
// Every append reads the whole file, checks the incoming record against
// the stored header and rewrites the file through a temporary file in
// the same directory, so a failed append leaves the previous content in
// place. There is no locking: callers must not append to the same path
// from more than one process at a time.
package resultstore

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/dvstar/dvbench/record"
)

// A Policy decides what happens when a record's columns differ from the
// stored header.
type Policy int

const (
	// Strict rejects a record unless its column names equal the
	// header in both set and order.
	Strict Policy = iota

	// Union widens the header with the record's new columns,
	// appended in record order. Existing rows get "" in the new
	// columns, and the record gets "" in header columns it lacks.
	// Existing column order never changes.
	Union
)

func (p Policy) String() string {
	switch p {
	case Strict:
		return "strict"
	case Union:
		return "union"
	}
	return fmt.Sprintf("Policy(%d)", int(p))
}

// ParsePolicy parses the String form of a Policy. The empty string is
// Strict.
func ParsePolicy(s string) (Policy, error) {
	switch s {
	case "strict", "":
		return Strict, nil
	case "union":
		return Union, nil
	}
	return 0, fmt.Errorf("unknown schema policy %q", s)
}

// ErrDuplicate is returned when a record repeats a column name.
var ErrDuplicate = errors.New("duplicate column name")

// A SchemaError reports a record whose columns do not match the header
// of the table it was appended to under the Strict policy.
type SchemaError struct {
	Path string

	// Missing are header columns absent from the record.
	Missing []string
	// Extra are record columns absent from the header.
	Extra []string
	// Reordered is set when both have the same columns in a
	// different order.
	Reordered bool
}

func (e *SchemaError) Error() string {
	var parts []string
	if len(e.Missing) > 0 {
		parts = append(parts, "missing "+strings.Join(e.Missing, ","))
	}
	if len(e.Extra) > 0 {
		parts = append(parts, "extra "+strings.Join(e.Extra, ","))
	}
	if e.Reordered {
		parts = append(parts, "columns reordered")
	}
	return fmt.Sprintf("%s: record does not match header: %s", e.Path, strings.Join(parts, "; "))
}

// A Store appends records to the table at Path.
type Store struct {
	Path   string
	Policy Policy
}

// Append adds rec as a new row of the table. If the file does not
// exist (or is empty) it is created with rec's column names as header.
func (s *Store) Append(rec *record.Record) error {
	if dups := rec.Duplicates(); len(dups) > 0 {
		return fmt.Errorf("%s: %w: %s", s.Path, ErrDuplicate, strings.Join(dups, ","))
	}

	t, err := Load(s.Path)
	if errors.Is(err, fs.ErrNotExist) {
		t, err = new(Table), nil
	}
	if err != nil {
		return err
	}

	if len(t.Header) == 0 {
		t.Header = rec.Names()
		t.Rows = [][]string{rec.Values()}
		return writeFile(s.Path, t)
	}

	switch s.Policy {
	case Strict:
		if err := checkStrict(s.Path, t.Header, rec.Names()); err != nil {
			return err
		}
		t.Rows = append(t.Rows, rec.Values())
	case Union:
		mergeUnion(t, rec)
	default:
		return fmt.Errorf("unknown schema policy %v", s.Policy)
	}
	return writeFile(s.Path, t)
}

func checkStrict(path string, header, names []string) error {
	if equal(header, names) {
		return nil
	}
	inHeader := make(map[string]bool, len(header))
	for _, h := range header {
		inHeader[h] = true
	}
	inRecord := make(map[string]bool, len(names))
	for _, n := range names {
		inRecord[n] = true
	}
	e := &SchemaError{Path: path}
	for _, h := range header {
		if !inRecord[h] {
			e.Missing = append(e.Missing, h)
		}
	}
	for _, n := range names {
		if !inHeader[n] {
			e.Extra = append(e.Extra, n)
		}
	}
	e.Reordered = len(e.Missing) == 0 && len(e.Extra) == 0
	return e
}

// mergeUnion widens t's header with rec's new columns and appends rec
// aligned to the header.
func mergeUnion(t *Table, rec *record.Record) {
	pos := make(map[string]int, len(t.Header))
	for i, h := range t.Header {
		if _, ok := pos[h]; !ok {
			pos[h] = i
		}
	}
	for _, c := range rec.Columns {
		if _, ok := pos[c.Name]; !ok {
			pos[c.Name] = len(t.Header)
			t.Header = append(t.Header, c.Name)
		}
	}
	for i, row := range t.Rows {
		for len(row) < len(t.Header) {
			row = append(row, "")
		}
		t.Rows[i] = row
	}
	row := make([]string, len(t.Header))
	for _, c := range rec.Columns {
		row[pos[c.Name]] = c.Value
	}
	t.Rows = append(t.Rows, row)
}

// writeFile replaces the file at path with t. The new content is
// written to a temporary file in the same directory and renamed over
// path.
func writeFile(path string, t *Table) (err error) {
	dir, base := filepath.Split(path)
	if dir == "" {
		dir = "."
	}
	f, err := os.CreateTemp(dir, "."+base+".*.tmp")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			f.Close()
			os.Remove(f.Name())
		}
	}()
	if err := t.Write(f); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	if err := f.Sync(); err != nil {
		return err
	}
	if err := f.Chmod(0o644); err != nil {
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(f.Name(), path)
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
