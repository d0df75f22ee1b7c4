// Copyright 2025 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package perfstat parses the report "perf stat" writes to its error
// stream into counter samples and a wall-clock summary.
//
// A report looks like
//
//	 Performance counter stats for './build/dist -p data/small':
//
//	          1 234,56 msec task-clock:u          #    0,998 CPUs utilized
//	       123 456      branch-misses:u           #    2,50% of all branches
//	             ...
//
//	       1,237095210 seconds time elapsed
//
//	       1,203341000 seconds user
//	       0,030083000 seconds sys
//
// Numbers use the locale perf ran under; this package understands
// decimal commas and narrow no-break-space digit grouping (see
// ParseFloat). When perf runs with -r N, every counter line carries a
// "( +- N% )" relative deviation and the elapsed line becomes
// "<mean> +- <stddev> seconds time elapsed". Which form to expect is
// selected by Mode; it is a property of how perf was invoked.
package perfstat

import (
	"fmt"
	"io"
	"strings"
)

// Mode selects between the single-run and repeated-run report forms.
type Mode int

const (
	// Single is a report of one run: no deviations are printed.
	Single Mode = iota
	// Repeated is a report of "perf stat -r N": every value carries
	// a relative standard deviation.
	Repeated
)

func (m Mode) String() string {
	switch m {
	case Single:
		return "single"
	case Repeated:
		return "repeated"
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// Layout selects how the counter and timing regions of a report are
// located.
type Layout int

const (
	// Structural classifies every line by its grammar. Lines before
	// the "Performance counter stats" header are the measured
	// program's own output and are skipped. Exactly one elapsed time
	// line must be present.
	Structural Layout = iota

	// Positional locates regions by fixed line offsets, as older
	// tables were produced: counters are lines [3:-8] (Single) or
	// [3:-4] (Repeated) and timing is lines [-8:-3] (Single) or line
	// [-3] (Repeated), with negative offsets counted from the end
	// of the text split on newlines. Any stray line in those windows
	// is consumed as data.
	Positional
)

func (l Layout) String() string {
	switch l {
	case Structural:
		return "structural"
	case Positional:
		return "positional"
	}
	return fmt.Sprintf("Layout(%d)", int(l))
}

// ParseMode parses the String form of a Mode.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "single", "":
		return Single, nil
	case "repeated":
		return Repeated, nil
	}
	return 0, fmt.Errorf("unknown report mode %q", s)
}

// ParseLayout parses the String form of a Layout.
func ParseLayout(s string) (Layout, error) {
	switch s {
	case "structural", "":
		return Structural, nil
	case "positional":
		return Positional, nil
	}
	return 0, fmt.Errorf("unknown report layout %q", s)
}

// Options configures Parse.
type Options struct {
	Mode   Mode
	Layout Layout

	// FileName is used in error messages; it is purely diagnostic.
	FileName string
}

// A Report is a parsed perf stat report.
type Report struct {
	Mode    Mode
	Samples []Sample
	Summary Summary
}

// A SyntaxError reports a line of a report that could not be parsed.
type SyntaxError struct {
	FileName string
	Line     int // 1-based; 0 if the error is not tied to a line
	Msg      string
	Err      error
}

func (e *SyntaxError) Pos() (fileName string, line int) {
	return e.FileName, e.Line
}

func (e *SyntaxError) Error() string {
	msg := e.Msg
	if e.Err != nil {
		if msg == "" {
			msg = e.Err.Error()
		} else {
			msg += ": " + e.Err.Error()
		}
	}
	return fmt.Sprintf("%s:%d: %s", e.FileName, e.Line, msg)
}

func (e *SyntaxError) Unwrap() error {
	return e.Err
}

const headerMarker = "Performance counter stats for"

// Parse reads an entire perf stat report from r.
//
// Any malformed counter or timing line fails the whole report; Parse
// never returns a partial Report.
func Parse(r io.Reader, opts Options) (*Report, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return ParseString(string(data), opts)
}

// ParseString is like Parse, but reads the report from text.
func ParseString(text string, opts Options) (*Report, error) {
	p := parser{
		opts:  opts,
		lines: strings.Split(text, "\n"),
		rep:   &Report{Mode: opts.Mode},
	}
	if p.opts.FileName == "" {
		p.opts.FileName = "<stderr>"
	}
	for i, l := range p.lines {
		p.lines[i] = strings.TrimSuffix(l, "\r")
	}
	var err error
	switch opts.Layout {
	case Structural:
		err = p.structural()
	case Positional:
		err = p.positional()
	default:
		err = fmt.Errorf("unknown layout %v", opts.Layout)
	}
	if err != nil {
		return nil, err
	}
	return p.rep, nil
}

type parser struct {
	opts  Options
	lines []string
	rep   *Report
}

func (p *parser) errorf(line int, err error, format string, args ...interface{}) *SyntaxError {
	return &SyntaxError{p.opts.FileName, line + 1, fmt.Sprintf(format, args...), err}
}

func (p *parser) structural() error {
	start := 0
	for i, line := range p.lines {
		if strings.Contains(line, headerMarker) {
			start = i + 1
			break
		}
	}

	elapsed := -1
	for i := start; i < len(p.lines); i++ {
		line := p.lines[i]
		if strings.TrimSpace(line) == "" {
			continue
		}
		if isElapsedLine(line) {
			if elapsed >= 0 {
				return p.errorf(i, nil, "second elapsed time line (first on line %d)", elapsed+1)
			}
			sum, err := ParseElapsedLine(line, p.opts.Mode)
			if err != nil {
				return p.errorf(i, err, "")
			}
			p.rep.Summary.Elapsed = sum.Elapsed
			p.rep.Summary.ElapsedDivergence = sum.ElapsedDivergence
			p.rep.Summary.HasDivergence = sum.HasDivergence
			elapsed = i
			continue
		}
		if kind, secs, err := parseCPUTimeLine(line); err != nil {
			return p.errorf(i, err, "cpu time")
		} else if kind != "" {
			p.setCPUTime(kind, secs)
			continue
		}
		if elapsed >= 0 {
			// Trailing notes such as "Some events weren't counted".
			continue
		}
		s, err := ParseCounterLine(line, p.opts.Mode)
		if err != nil {
			return p.errorf(i, err, "counter line")
		}
		p.rep.Samples = append(p.rep.Samples, s)
	}
	if elapsed < 0 {
		return &SyntaxError{p.opts.FileName, len(p.lines), "", ErrNoElapsed}
	}
	return nil
}

func (p *parser) positional() error {
	var cStart, cEnd int
	switch p.opts.Mode {
	case Single:
		cStart, cEnd = window(len(p.lines), 3, -8)
	case Repeated:
		cStart, cEnd = window(len(p.lines), 3, -4)
	default:
		return fmt.Errorf("unknown mode %v", p.opts.Mode)
	}
	for i := cStart; i < cEnd; i++ {
		s, err := ParseCounterLine(p.lines[i], p.opts.Mode)
		if err != nil {
			return p.errorf(i, err, "counter line")
		}
		p.rep.Samples = append(p.rep.Samples, s)
	}

	if p.opts.Mode == Repeated {
		i := len(p.lines) - 3
		if i < 0 {
			return &SyntaxError{p.opts.FileName, 0, "", ErrNoElapsed}
		}
		sum, err := ParseElapsedLine(p.lines[i], Repeated)
		if err != nil {
			return p.errorf(i, err, "")
		}
		p.rep.Summary = sum
		return nil
	}

	tStart, tEnd := window(len(p.lines), -8, -3)
	found := false
	for i := tStart; i < tEnd; i++ {
		line := p.lines[i]
		if strings.TrimSpace(line) == "" {
			continue
		}
		if kind, secs, err := parseCPUTimeLine(line); err != nil {
			return p.errorf(i, err, "cpu time")
		} else if kind != "" {
			p.setCPUTime(kind, secs)
			continue
		}
		sum, err := ParseElapsedLine(line, Single)
		if err != nil {
			return p.errorf(i, err, "")
		}
		if found {
			return p.errorf(i, nil, "second elapsed time line")
		}
		p.rep.Summary.Elapsed = sum.Elapsed
		found = true
	}
	if !found {
		return &SyntaxError{p.opts.FileName, tEnd, "", ErrNoElapsed}
	}
	return nil
}

func (p *parser) setCPUTime(kind string, secs float64) {
	switch kind {
	case "user":
		p.rep.Summary.User = secs
	case "sys":
		p.rep.Summary.Sys = secs
	}
}

// window resolves a [start:end] slice expression over n items, where
// negative bounds count from the end, clamping to [0, n].
func window(n, start, end int) (int, int) {
	clamp := func(i int) int {
		if i < 0 {
			i += n
		}
		if i < 0 {
			return 0
		}
		if i > n {
			return n
		}
		return i
	}
	start, end = clamp(start), clamp(end)
	if end < start {
		end = start
	}
	return start, end
}
