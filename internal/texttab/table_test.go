// Copyright 2025 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package texttab

import (
	"strings"
	"testing"
)

func TestPad(t *testing.T) {
	for _, test := range []struct {
		s    string
		a    align
		w    int
		want string
	}{
		{"1.2", alignLeft, 10, "1.2"},
		{"1.2", alignCenter, 10, "   1.2"},
		{"1.2", alignCenter, 11, "    1.2"},
		{"1.2", alignRight, 10, "       1.2"},
		{"±", alignRight, 4, "   ±"},
		{"│", alignCenter, 3, " │"},
	} {
		if got := test.a.pad(test.s, test.w); got != test.want {
			t.Errorf("pad(%q, %d) = %q, want %q", test.s, test.w, got, test.want)
		}
	}
}

func TestFormat(t *testing.T) {
	for _, test := range []struct {
		name  string
		build func(tab *Table)
		want  string
	}{
		{
			"plain",
			func(tab *Table) {
				tab.Row().Cell("vector").Cell("small").Cell("1")
				tab.Row().Cell("combo").Cell("large").Cell("8")
			},
			"vector small 1\ncombo  large 8\n",
		},
		{
			"no trailing space",
			func(tab *Table) {
				tab.Row().Cell("a").Cell("b").Cell("c")
				tab.Row().Cell("long").Cell("e").Cell("long")
			},
			"a    b c\nlong e long\n",
		},
		{
			"alignment",
			func(tab *Table) {
				tab.Row().Cell("a", Left).Cell("b", Center).Cell("c", Right)
				tab.Row().Cell("xxx").Cell("xxx").Cell("xxx")
			},
			"a    b    c\nxxx xxx xxx\n",
		},
		{
			"margins",
			func(tab *Table) {
				tab.Row().Cell("a").Cell("b", LeftMargin("  "))
				tab.Row().Cell("c").Cell("d")
				tab.Row().Cell("e").Cell("f", LeftMargin("|"))
			},
			"a  b\nc  d\ne |f\n",
		},
		{
			"skipped column",
			func(tab *Table) {
				tab.Row().Cell("a").Col(2).Cell("c")
				tab.Row().Cell("d").Cell("e").Cell("f")
			},
			"a   c\nd e f\n",
		},
		{
			"short row",
			func(tab *Table) {
				tab.Row().Cell("a")
				tab.Row().Cell("d").Cell("e").Cell("f")
			},
			"a\nd e f\n",
		},
		{
			"blank rows",
			func(tab *Table) {
				tab.Row().Cell("a")
				tab.Row()
				tab.Row()
				tab.Row().Cell("b")
			},
			"a\n\n\nb\n",
		},
		{
			"span fits",
			func(tab *Table) {
				tab.Row().Cell("a").Cell("b")
				tab.Row().Span(2, "abc")
			},
			"a b\nabc\n",
		},
		{
			"span widens cells",
			func(tab *Table) {
				tab.Row().Cell("a").Cell("b")
				tab.Row().Span(2, "abcdefg")
			},
			"a   b\nabcdefg\n",
		},
		{
			"cells widen span",
			func(tab *Table) {
				tab.Row().Cell("abc").Cell("def")
				tab.Row().Span(2, "a", Right)
			},
			"abc def\n      a\n",
		},
		{
			"span covered by wide cell",
			func(tab *Table) {
				tab.Row().Cell("a").Cell("def")
				tab.Row().Span(2, "abdef", Right)
			},
			"a def\nabdef\n",
		},
		{
			"span widens narrow cell",
			func(tab *Table) {
				tab.Row().Cell("a").Cell("def")
				tab.Row().Span(2, "abcdef", Right)
			},
			"a  def\nabcdef\n",
		},
		{
			"span with margin",
			func(tab *Table) {
				tab.Row().Cell("a").Cell("b", LeftMargin("  ")).Cell("x")
				tab.Row().Span(2, "a__b").Cell("x")
			},
			"a  b x\na__b x\n",
		},
		{
			"shrink",
			func(tab *Table) {
				tab.Row().Span(2, "abcdef")
				tab.Row().Cell("a").Cell("bc")
				tab.Row().Cell("x").Cell("y")
				tab.SetShrink(1, true)
			},
			"abcdef\na   bc\nx   y\n",
		},
	} {
		t.Run(test.name, func(t *testing.T) {
			var tab Table
			test.build(&tab)
			var got strings.Builder
			if err := tab.Format(&got); err != nil {
				t.Fatal(err)
			}
			if got.String() != test.want {
				t.Errorf("want:\n%sgot:\n%s", test.want, got.String())
			}
		})
	}
}
