// Copyright 2025 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package benchmath

import (
	"fmt"
	"math"

	"github.com/aclements/go-moremath/mathx"
	"github.com/aclements/go-moremath/stats"
)

// AssumeNothing is a non-parametric Assumption. The summary statistic
// is the sample median with an order-statistic confidence interval, and
// comparisons use the Mann-Whitney U-test.
//
// This is the right assumption for wall-clock times and counter values
// of runs on a shared machine, which are rarely normal.
var AssumeNothing Assumption = assumeNothing{}

type assumeNothing struct{}

// maxMedianSamples is the largest sample size medianSamples considers.
const maxMedianSamples = 50

// maxUTestSamples is the largest sample size uTestSamples considers.
const maxUTestSamples = 10

func (assumeNothing) SummaryLabel() string {
	return "median"
}

func (assumeNothing) Summary(s *Sample, confidence float64) Summary {
	median := s.sample().Quantile(0.5)

	lo, hi, actual, ok := medianCI(s.Values, confidence)
	if !ok {
		op, n := medianSamples(confidence)
		return Summary{
			Center:     median,
			Lo:         math.Inf(-1),
			Hi:         math.Inf(1),
			Confidence: 1,
			Warnings:   []error{fmt.Errorf("need %s %d samples for confidence interval at level %v", op, n, confidence)},
		}
	}
	return Summary{Center: median, Lo: lo, Hi: hi, Confidence: actual}
}

// medianCI returns the narrowest interval [xs[k], xs[n-1-k]] of the
// sorted values xs that contains the population median with
// probability at least confidence.
func medianCI(xs []float64, confidence float64) (lo, hi, actual float64, ok bool) {
	n := len(xs)
	if n < 2 || confidence >= 1 {
		return 0, 0, 0, false
	}
	d := stats.BinomialDist{N: n, P: 0.5}
	best, tail := -1, 0.0
	for k := 0; k < n/2; k++ {
		// tail is the probability that at most k values fall
		// below the median.
		tail += d.PMF(float64(k))
		cov := 1 - 2*tail
		if cov < confidence {
			break
		}
		best, actual = k, cov
	}
	if best < 0 {
		return 0, 0, 0, false
	}
	return xs[best], xs[n-1-best], actual, true
}

// medianSamples returns the minimum sample size needed to compute a
// median confidence interval at the given confidence level, as
// ">=" N or, if N exceeds maxMedianSamples, ">" maxMedianSamples.
func medianSamples(confidence float64) (op string, n int) {
	for n := 2; n <= maxMedianSamples; n++ {
		d := stats.BinomialDist{N: n, P: 0.5}
		if 1-(d.PMF(0)+d.PMF(float64(d.N))) >= confidence && confidence < 1 {
			return ">=", n
		}
	}
	return ">", maxMedianSamples
}

func (assumeNothing) Compare(s1, s2 *Sample) Comparison {
	cmp := Comparison{N1: len(s1.Values), N2: len(s2.Values), Alpha: s1.Thresholds.CompareAlpha}

	if allEqual(s1.Values, s2.Values) {
		cmp.P = 1
		cmp.Warnings = []error{stats.ErrSamplesEqual}
		return cmp
	}

	res, err := stats.MannWhitneyUTest(s1.Values, s2.Values, stats.LocationDiffers)
	if err != nil {
		// The U-test failed. Report as if there's no
		// significant difference, along with the error.
		cmp.P = 1
		cmp.Warnings = []error{err}
		return cmp
	}
	cmp.P = res.P

	if cmp.P >= cmp.Alpha {
		op, n := uTestSamples(cmp.Alpha)
		if (op == ">=" && (cmp.N1 < n || cmp.N2 < n)) || (op == ">" && (cmp.N1 <= n || cmp.N2 <= n)) {
			cmp.Warnings = append(cmp.Warnings, fmt.Errorf("need %s %d samples to detect a difference at alpha level %v", op, n, cmp.Alpha))
		}
	}
	return cmp
}

// uTestSamples returns the minimum size of two equal-size samples for
// which the U-test can reach a P-value below alpha. The smallest
// P-value of two fully separated samples of size n is 2/C(2n, n).
func uTestSamples(alpha float64) (op string, n int) {
	for n := 1; n <= maxUTestSamples; n++ {
		if 2/mathx.Choose(2*n, n) <= alpha {
			return ">=", n
		}
	}
	return ">", maxUTestSamples
}

func allEqual(a, b []float64) bool {
	v := a[0]
	for _, xs := range [][]float64{a, b} {
		for _, x := range xs {
			if x != v {
				return false
			}
		}
	}
	return true
}
