// Copyright 2025 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package benchmath

import (
	"fmt"
	"math"

	"github.com/aclements/go-moremath/mathx"
)

// An Assumption is a distributional assumption about a Sample. It
// decides the summary statistic and the comparison test.
type Assumption interface {
	// SummaryLabel names the summary statistic, such as "median".
	SummaryLabel() string

	// Summary returns the summary statistic of s with a confidence
	// interval at level confidence, in [0, 1].
	Summary(s *Sample, confidence float64) Summary

	// Compare tests whether s1 and s2 come from the same
	// distribution.
	Compare(s1, s2 *Sample) Comparison
}

// A Summary is the center of a Sample and a confidence interval around
// it.
type Summary struct {
	Center float64
	Lo, Hi float64

	// Confidence is the achieved level of [Lo, Hi]. It is at least
	// the requested level, or 1 when the interval is unbounded.
	Confidence float64

	Warnings []error
}

// PctRangeString returns the half-width of the confidence interval as a
// percentage of the center, as in "3%". It returns "∞" for an unbounded
// interval and "?" when the interval crosses zero.
func (s Summary) PctRangeString() string {
	if math.IsInf(s.Lo, 0) || math.IsInf(s.Hi, 0) {
		return "∞"
	}
	sign := mathx.Sign(s.Center)
	if sign != mathx.Sign(s.Lo) || sign != mathx.Sign(s.Hi) {
		return "?"
	}
	if s.Center == 0 {
		// Lo and Hi are zero too.
		return "0%"
	}
	v := math.Max(s.Hi/s.Center-1, 1-s.Lo/s.Center)
	return fmt.Sprintf("%.0f%%", 100*v)
}

// A Comparison is the outcome of testing whether two samples come from
// the same distribution.
type Comparison struct {
	// P is the p-value of the test. P is 0 for an exact result.
	P float64

	N1, N2 int

	// Alpha is the significance level. The samples differ if
	// P < Alpha.
	Alpha float64

	Warnings []error
}

// String returns "p=0.PPP n=N1+N2", omitting p for exact results and
// writing n=N once when both samples have N values.
func (c Comparison) String() string {
	var p string
	if c.P != 0 {
		p = fmt.Sprintf("p=%0.3f ", c.P)
	}
	if c.N1 == c.N2 {
		return fmt.Sprintf("%sn=%d", p, c.N1)
	}
	return fmt.Sprintf("%sn=%d+%d", p, c.N1, c.N2)
}

// FormatDelta returns the relative change from old to new, the centers
// of the two compared samples, as a signed percentage. It returns "~"
// if the difference is not significant and "?" if old is zero.
func (c Comparison) FormatDelta(old, new float64) string {
	switch {
	case c.P > c.Alpha:
		return "~"
	case old == new:
		return "0.00%"
	case old == 0:
		return "?"
	}
	return fmt.Sprintf("%+.2f%%", (new/old-1)*100)
}
