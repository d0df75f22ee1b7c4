// Copyright 2025 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package perfstat

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// A Sample is one counter observation from the body of a report.
type Sample struct {
	// Name is the sanitized counter name, such as "branch_misses".
	Name string

	// Value is the derived figure printed after '#': a percentage,
	// a ratio or a rate, depending on the counter.
	Value float64

	// Count is the raw event count, truncated to an integer. For
	// counters measured in milliseconds (task-clock) it is the
	// number of whole milliseconds.
	Count int64

	// Unit is "msec" for counters perf reports as a duration and ""
	// for plain event counts.
	Unit string

	// Divergence is the relative standard deviation, in percent,
	// across repeated runs. It is only meaningful if HasDivergence
	// is set, which happens in Repeated mode.
	Divergence    float64
	HasDivergence bool
}

const msecUnit = "msec"

var (
	errNoHash       = errors.New("missing '#' separator")
	errNoLabel      = errors.New("cannot split count from counter name")
	errNoDerived    = errors.New("missing derived value after '#'")
	errNoDivergence = errors.New("missing ( +- N% ) divergence")
)

// ParseCounterLine splits one counter line of a perf stat report into
// a Sample. The line has the shape
//
//	<count> [msec] <name>   # <derived> [...] [( +- <divergence>% )]
//
// In Repeated mode the parenthesized relative deviation is required.
func ParseCounterLine(line string, mode Mode) (Sample, error) {
	var s Sample

	left, right, ok := strings.Cut(line, "#")
	if !ok {
		return s, errNoHash
	}
	left = strings.TrimSpace(left)

	// Split count from label.
	var count, label string
	if i := strings.Index(left, msecUnit); i >= 0 {
		count, label = left[:i], left[i+len(msecUnit):]
		s.Unit = msecUnit
	} else {
		count, label, ok = splitWide(left)
		if !ok {
			return s, errNoLabel
		}
	}
	s.Name = sanitizeName(label)
	if s.Name == "" {
		return s, errNoLabel
	}

	// Derived value.
	derived, _ := splitField(strings.TrimLeftFunc(right, unicode.IsSpace))
	if derived == "" || derived == "(" {
		return s, errNoDerived
	}
	v, err := ParseFloat(derived)
	if err != nil {
		return s, fmt.Errorf("derived value: %w", err)
	}
	s.Value = v

	if mode == Repeated {
		d, err := parseDivergence(right)
		if err != nil {
			return s, err
		}
		s.Divergence, s.HasDivergence = d, true
	}

	// Raw count.
	if s.Unit == msecUnit {
		s.Count, err = ParseCount(count)
	} else {
		s.Count, err = ParseEventCount(count)
	}
	if err != nil {
		return s, fmt.Errorf("count: %w", err)
	}
	return s, nil
}

// parseDivergence extracts N from the "( +- N% )" segment of a derived
// field. Column padding sometimes leaves the first parenthesized
// segment empty, in which case the last one on the line is used.
func parseDivergence(derived string) (float64, error) {
	seg := parenSegment(derived, strings.Index(derived, "("))
	if seg == "" {
		seg = parenSegment(derived, strings.LastIndex(derived, "("))
	}
	if seg == "" {
		return 0, errNoDivergence
	}
	d, err := ParseFloat(seg)
	if err != nil {
		return 0, fmt.Errorf("divergence: %w", err)
	}
	return d, nil
}

// parenSegment returns the text between the '(' at open and the next
// ')', with any "+-" marker and surrounding space removed.
func parenSegment(s string, open int) string {
	if open < 0 {
		return ""
	}
	seg := s[open+1:]
	if end := strings.IndexByte(seg, ')'); end >= 0 {
		seg = seg[:end]
	}
	seg = strings.TrimSpace(seg)
	seg = strings.TrimPrefix(seg, "+-")
	return strings.TrimSpace(seg)
}

// sanitizeName turns a perf event label into a column name: the
// user-mode marker is dropped and hyphens become underscores.
func sanitizeName(label string) string {
	label = strings.TrimSpace(label)
	label = strings.TrimSuffix(label, ":u")
	label = strings.TrimSpace(label)
	return strings.ReplaceAll(label, "-", "_")
}

// splitWide splits s at the first run of two or more whitespace
// characters. A single space (or narrow no-break space) inside a
// grouped number does not split.
func splitWide(s string) (head, tail string, ok bool) {
	run, start := 0, 0
	for i, r := range s {
		if unicode.IsSpace(r) {
			if run == 0 {
				start = i
			}
			run++
			continue
		}
		if run >= 2 {
			return s[:start], s[i:], true
		}
		run = 0
	}
	return s, "", false
}

// splitField returns the first whitespace-delimited field of s and the
// rest of s after the whitespace that follows it.
func splitField(s string) (field, rest string) {
	for i, r := range s {
		if unicode.IsSpace(r) {
			field = s[:i]
			rest = strings.TrimLeftFunc(s[i+utf8.RuneLen(r):], unicode.IsSpace)
			return
		}
	}
	return s, ""
}
