// Copyright 2025 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package resultstore

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
)

// A Table is the content of a result file: a header row and data rows
// of the same width. Every cell is an opaque string; numbers are not
// reparsed on read.
type Table struct {
	Header []string
	Rows   [][]string
}

// ReadTable reads a CSV table from r. An empty input yields an empty
// Table with no header.
func ReadTable(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	// Rows must all be as wide as the header.
	cr.FieldsPerRecord = 0
	cr.ReuseRecord = false
	all, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	t := new(Table)
	if len(all) == 0 {
		return t, nil
	}
	t.Header, t.Rows = all[0], all[1:]
	return t, nil
}

// Load reads the table stored at path. If path does not exist, the
// returned error satisfies errors.Is(err, fs.ErrNotExist).
func Load(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	t, err := ReadTable(f)
	if err != nil {
		var pe *csv.ParseError
		if errors.As(err, &pe) {
			return nil, fmt.Errorf("%s:%d: %w", path, pe.Line, pe.Err)
		}
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

// Write writes t to w as CSV, header first.
func (t *Table) Write(w io.Writer) error {
	cw := csv.NewWriter(w)
	if len(t.Header) > 0 {
		if err := cw.Write(t.Header); err != nil {
			return err
		}
	}
	if err := cw.WriteAll(t.Rows); err != nil {
		return err
	}
	return cw.Error()
}

// Column returns the index of the first header column called name, or
// -1.
func (t *Table) Column(name string) int {
	for i, h := range t.Header {
		if h == name {
			return i
		}
	}
	return -1
}

// Get returns the cell of row i in column name, or "" if there is no
// such column.
func (t *Table) Get(i int, name string) string {
	c := t.Column(name)
	if c < 0 || c >= len(t.Rows[i]) {
		return ""
	}
	return t.Rows[i][c]
}

// Filter returns a table with the same header containing the rows for
// which keep returns true.
func (t *Table) Filter(keep func(row int) bool) *Table {
	out := &Table{Header: t.Header}
	for i, row := range t.Rows {
		if keep(i) {
			out.Rows = append(out.Rows, row)
		}
	}
	return out
}
