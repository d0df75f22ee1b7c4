// Copyright 2025 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package benchmath

import "fmt"

// AssumeExact assumes a value does not vary between runs, such as the
// instruction count of a deterministic program. The summary is the
// most frequent value, with the sample range as its interval, and any
// variation is reported as a warning. Any two samples are considered
// different.
var AssumeExact Assumption = assumeExact{}

type assumeExact struct{}

func (assumeExact) SummaryLabel() string { return "exact" }

func (assumeExact) Summary(s *Sample, confidence float64) Summary {
	lo, hi := s.Values[0], s.Values[len(s.Values)-1]
	sum := Summary{Center: mode(s.Values), Lo: lo, Hi: hi, Confidence: 1}
	if lo != hi {
		sum.Warnings = []error{fmt.Errorf("exact distribution expected, but values range from %v to %v", lo, hi)}
	}
	return sum
}

func (assumeExact) Compare(s1, s2 *Sample) Comparison {
	return Comparison{N1: len(s1.Values), N2: len(s2.Values)}
}

// mode returns the most frequent of the sorted values xs. Ties go to
// the smallest value.
func mode(xs []float64) float64 {
	best, bestN := xs[0], 0
	for i := 0; i < len(xs); {
		j := i
		for j < len(xs) && xs[j] == xs[i] {
			j++
		}
		if j-i > bestN {
			best, bestN = xs[i], j-i
		}
		i = j
	}
	return best
}
