// Copyright 2025 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package texttab lays out plain-text tables with aligned columns.
package texttab

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"unicode/utf8"
)

// Table accumulates cells row by row and lays them out when formatted.
//
// Row, Col, Cell and Span return the Table so calls can be chained.
type Table struct {
	cells []cell
	cols  int

	shrink map[int]bool

	row, col int
}

type cell struct {
	row, col, span int
	value          string
	margin         string
	align          align
}

// A CellOption modifies a single cell.
type CellOption func(c *cell)

// LeftMargin sets the text printed before a cell. Cells default to one
// space, or none in the first column.
func LeftMargin(m string) CellOption {
	return func(c *cell) { c.margin = m }
}

var (
	Left   CellOption = func(c *cell) { c.align = alignLeft }
	Center CellOption = func(c *cell) { c.align = alignCenter }
	Right  CellOption = func(c *cell) { c.align = alignRight }
)

type align int

const (
	alignLeft align = iota
	alignCenter
	alignRight
)

// pad returns s padded on the left to sit in a column of width w.
func (a align) pad(s string, w int) string {
	n := utf8.RuneCountInString(s)
	switch a {
	case alignCenter:
		return strings.Repeat(" ", max((w-n)/2, 0)) + s
	case alignRight:
		return strings.Repeat(" ", max(w-n, 0)) + s
	}
	return s
}

// Row starts a new row.
func (t *Table) Row() *Table {
	if len(t.cells) > 0 {
		t.row++
	}
	t.col = 0
	return t
}

// Col moves to column col of the current row. It panics if col is to
// the left of the current column.
func (t *Table) Col(col int) *Table {
	if col < t.col {
		panic(fmt.Sprintf("cannot move from column %d to earlier column %d", t.col, col))
	}
	t.col = col
	return t
}

// Cell adds a one-column cell at the current position.
func (t *Table) Cell(value string, opts ...CellOption) *Table {
	return t.Span(1, value, opts...)
}

// Span adds a cell covering cols columns at the current position.
func (t *Table) Span(cols int, value string, opts ...CellOption) *Table {
	margin := " "
	if t.col == 0 || value == "" {
		margin = ""
	}
	c := cell{t.row, t.col, cols, value, margin, alignLeft}
	for _, o := range opts {
		o(&c)
	}
	t.cells = append(t.cells, c)
	t.col += cols
	t.cols = max(t.cols, t.col)
	return t
}

// SetShrink marks col as a column that spanning cells never widen.
func (t *Table) SetShrink(col int, shrink bool) {
	if t.shrink == nil {
		t.shrink = make(map[int]bool)
	}
	t.shrink[col] = shrink
}

// widths computes each column's width, including its left margin.
func (t *Table) widths() (margins, ws []int) {
	margins = make([]int, t.cols)
	for _, c := range t.cells {
		margins[c.col] = max(margins[c.col], utf8.RuneCountInString(c.margin))
	}

	// Narrow cells first, so spans only grow what they must.
	cells := append([]cell(nil), t.cells...)
	sort.SliceStable(cells, func(i, j int) bool { return cells[i].span < cells[j].span })

	ws = make([]int, t.cols)
	var grow []int
	for _, c := range cells {
		need := utf8.RuneCountInString(c.value) + margins[c.col]
		if c.span == 1 {
			ws[c.col] = max(ws[c.col], need)
			continue
		}

		have := 0
		for col := c.col; col < c.col+c.span; col++ {
			have += ws[col]
		}
		if have >= need {
			continue
		}

		// Spread the missing width over the growable columns,
		// widest first, so that columns already above the
		// running average give their excess to the others.
		grow = grow[:0]
		for col := c.col; col < c.col+c.span; col++ {
			if t.shrink[col] {
				need -= ws[col]
			} else {
				grow = append(grow, col)
			}
		}
		sort.Slice(grow, func(i, j int) bool { return ws[grow[i]] > ws[grow[j]] })
		left := len(grow)
		for _, col := range grow {
			avg := (need + left - 1) / left
			ws[col] = max(ws[col], avg)
			need -= ws[col]
			left--
		}
	}
	return margins, ws
}

// Format writes the laid-out table to w. Rows end in "\n" and carry no
// trailing spaces.
func (t *Table) Format(w io.Writer) error {
	margins, ws := t.widths()
	offs := make([]int, t.cols+1)
	for i, cw := range ws {
		offs[i+1] = offs[i] + cw
	}

	cells := append([]cell(nil), t.cells...)
	sort.SliceStable(cells, func(i, j int) bool {
		if cells[i].row != cells[j].row {
			return cells[i].row < cells[j].row
		}
		return cells[i].col < cells[j].col
	})

	var b strings.Builder
	row, off := 0, 0
	for _, c := range cells {
		if strings.TrimSpace(c.value) == "" && strings.TrimSpace(c.margin) == "" {
			continue
		}
		for ; row < c.row; row++ {
			b.WriteByte('\n')
			off = 0
		}
		b.WriteString(strings.Repeat(" ", offs[c.col]-off))
		b.WriteString(fmt.Sprintf("%*s", margins[c.col], c.margin))
		off = offs[c.col] + margins[c.col]

		s := c.align.pad(c.value, offs[c.col+c.span]-off)
		b.WriteString(s)
		off += utf8.RuneCountInString(s)
	}
	if len(cells) > 0 {
		b.WriteByte('\n')
	}
	_, err := io.WriteString(w, b.String())
	return err
}
