// Copyright 2025 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package benchmath

import (
	"errors"
	"math"

	"github.com/aclements/go-moremath/stats"
)

// AssumeNormal assumes values are normally distributed. It fits rows
// recorded with perf stat -r, each of which is already the mean of
// several runs. The summary is the mean with a Student's t interval and
// comparisons use Welch's t-test.
var AssumeNormal Assumption = assumeNormal{}

type assumeNormal struct{}

var errOneValue = errors.New("need >= 2 samples for a mean confidence interval")

func (assumeNormal) SummaryLabel() string { return "mean" }

func (assumeNormal) Summary(s *Sample, confidence float64) Summary {
	if len(s.Values) < 2 {
		return Summary{
			Center:     s.Values[0],
			Lo:         math.Inf(-1),
			Hi:         math.Inf(1),
			Confidence: 1,
			Warnings:   []error{errOneValue},
		}
	}
	mean, lo, hi := s.sample().MeanCI(confidence)
	return Summary{Center: mean, Lo: lo, Hi: hi, Confidence: confidence}
}

func (assumeNormal) Compare(s1, s2 *Sample) Comparison {
	cmp := Comparison{N1: len(s1.Values), N2: len(s2.Values), Alpha: s1.Thresholds.CompareAlpha}
	res, err := stats.TwoSampleWelchTTest(s1.sample(), s2.sample(), stats.LocationDiffers)
	if err != nil {
		// No evidence of a difference.
		cmp.P = 1
		cmp.Warnings = []error{err}
		return cmp
	}
	cmp.P = res.P
	return cmp
}
