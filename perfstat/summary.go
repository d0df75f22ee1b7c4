// Copyright 2025 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package perfstat

import (
	"errors"
	"fmt"
	"strings"
)

// A Summary is the wall-clock timing block at the end of a report.
type Summary struct {
	// Elapsed is the wall-clock time in seconds. In Repeated mode
	// it is the mean over all runs.
	Elapsed float64

	// ElapsedDivergence is the standard deviation of Elapsed, in
	// seconds. It is only set in Repeated mode.
	ElapsedDivergence float64
	HasDivergence     bool

	// User and Sys are the "seconds user" and "seconds sys" lines
	// perf prints after a single run. They are zero when absent.
	User, Sys float64
}

// ErrNoElapsed is returned when a report has no elapsed-time line.
var ErrNoElapsed = errors.New("no elapsed time line")

const elapsedMarker = "seconds time elapsed"

// isElapsedLine reports whether line is the wall-clock summary line in
// either single-run or repeated-run form.
func isElapsedLine(line string) bool {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false
	}
	return fields[len(fields)-1] == "elapsed" || strings.Contains(line, elapsedMarker)
}

// ParseElapsedLine extracts the elapsed time from a timing line.
//
// In Single mode the line's last field must be "elapsed" and its first
// field is the time in seconds. In Repeated mode the line reads
// "<mean> +- <stddev> seconds time elapsed ..." and both numbers are
// returned.
func ParseElapsedLine(line string, mode Mode) (Summary, error) {
	var sum Summary
	switch mode {
	case Single:
		fields := strings.Fields(line)
		if len(fields) < 2 || fields[len(fields)-1] != "elapsed" {
			return sum, fmt.Errorf("not an elapsed time line: %q", strings.TrimSpace(line))
		}
		v, err := ParseFloat(fields[0])
		if err != nil {
			return sum, fmt.Errorf("elapsed time: %w", err)
		}
		sum.Elapsed = v
	case Repeated:
		mean, dev, ok := strings.Cut(line, "+-")
		if !ok || !strings.Contains(dev, elapsedMarker) {
			return sum, fmt.Errorf("not a repeated elapsed time line: %q", strings.TrimSpace(line))
		}
		meanTok, _ := splitField(strings.TrimSpace(mean))
		devTok, _ := splitField(strings.TrimSpace(dev))
		v, err := ParseFloat(meanTok)
		if err != nil {
			return sum, fmt.Errorf("elapsed time: %w", err)
		}
		d, err := ParseFloat(devTok)
		if err != nil {
			return sum, fmt.Errorf("elapsed time deviation: %w", err)
		}
		sum.Elapsed, sum.ElapsedDivergence, sum.HasDivergence = v, d, true
	default:
		return sum, fmt.Errorf("unknown mode %v", mode)
	}
	return sum, nil
}

// parseCPUTimeLine recognizes "<secs> seconds user" and
// "<secs> seconds sys". kind is "" if line is neither.
func parseCPUTimeLine(line string) (kind string, secs float64, err error) {
	fields := strings.Fields(line)
	if len(fields) != 3 || fields[1] != "seconds" {
		return "", 0, nil
	}
	switch fields[2] {
	case "user", "sys":
	default:
		return "", 0, nil
	}
	secs, err = ParseFloat(fields[0])
	return fields[2], secs, err
}
