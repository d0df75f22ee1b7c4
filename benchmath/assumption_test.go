// Copyright 2025 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package benchmath

import (
	"fmt"
	"math"
	"testing"
)

func TestMedianSamples(t *testing.T) {
	for _, test := range []struct {
		confidence float64
		op         string
		n          int
	}{
		{0.95, ">=", 6}, // tails at n=6: 2/64
		{0.99, ">=", 8}, // tails at n=8: 2/256
		{1, ">", maxMedianSamples},
		{0, ">=", 2}, // an interval needs two values
	} {
		op, n := medianSamples(test.confidence)
		if op != test.op || n != test.n {
			t.Errorf("medianSamples(%v) = %s %d, want %s %d", test.confidence, op, n, test.op, test.n)
		}
	}
}

func TestUTestSamples(t *testing.T) {
	for _, test := range []struct {
		alpha float64
		op    string
		n     int
	}{
		{1, ">=", 1},
		{0.05, ">=", 4},
		{0.01, ">=", 5},
		{1e-50, ">", maxUTestSamples},
		{0, ">", maxUTestSamples},
	} {
		op, n := uTestSamples(test.alpha)
		if op != test.op || n != test.n {
			t.Errorf("uTestSamples(%v) = %s %d, want %s %d", test.alpha, op, n, test.op, test.n)
		}
	}
}

func TestSummary(t *testing.T) {
	inf := math.Inf(1)
	// Six elapsed times with one run disturbed by another process.
	elapsed := []float64{1.22, 9.9, 1.21, 1.24, 1.25, 1.23}

	for _, test := range []struct {
		name       string
		a          Assumption
		values     []float64
		confidence float64
		want       Summary
		warnings   []string
	}{
		{
			"median", AssumeNothing, elapsed, 0.95,
			Summary{Center: 1.235, Lo: 1.21, Hi: 9.9, Confidence: 1 - 2.0/64},
			nil,
		},
		{
			"median too few for 99%", AssumeNothing, elapsed, 0.99,
			Summary{Center: 1.235, Lo: -inf, Hi: inf, Confidence: 1},
			[]string{"need >= 8 samples for confidence interval at level 0.99"},
		},
		{
			"median at 100%", AssumeNothing, elapsed, 1,
			Summary{Center: 1.235, Lo: -inf, Hi: inf, Confidence: 1},
			[]string{"need > 50 samples for confidence interval at level 1"},
		},
		{
			"median of two", AssumeNothing, []float64{2, 1}, 0,
			Summary{Center: 1.5, Lo: 1, Hi: 2, Confidence: 0.5},
			nil,
		},
		{
			"median of one", AssumeNothing, []float64{1}, 0.95,
			Summary{Center: 1, Lo: -inf, Hi: inf, Confidence: 1},
			[]string{"need >= 6 samples for confidence interval at level 0.95"},
		},
		{
			"mean", AssumeNormal, []float64{-8, 2, 3, 4, 5, 6}, 0.95,
			Summary{Center: 2, Lo: -3.351092806089359, Hi: 7.351092806089359, Confidence: 0.95},
			nil,
		},
		{
			"mean of one", AssumeNormal, []float64{1.5}, 0.95,
			Summary{Center: 1.5, Lo: -inf, Hi: inf, Confidence: 1},
			[]string{"need >= 2 samples for a mean confidence interval"},
		},
		{
			"exact", AssumeExact, []float64{4938240, 4938240, 4938240}, 0.95,
			Summary{Center: 4938240, Lo: 4938240, Hi: 4938240, Confidence: 1},
			nil,
		},
		{
			"exact varies", AssumeExact, []float64{3, 2, 1, 2}, 0.95,
			Summary{Center: 2, Lo: 1, Hi: 3, Confidence: 1},
			[]string{"exact distribution expected, but values range from 1 to 3"},
		},
		{
			"exact tie", AssumeExact, []float64{2, 1, 2, 1}, 0.95,
			Summary{Center: 1, Lo: 1, Hi: 2, Confidence: 1},
			[]string{"exact distribution expected, but values range from 1 to 2"},
		},
	} {
		t.Run(test.name, func(t *testing.T) {
			s := NewSample(append([]float64(nil), test.values...), &DefaultThresholds)
			checkSummary(t, test.a.Summary(s, test.confidence), test.want, test.warnings...)
		})
	}
}

func TestCompareNothing(t *testing.T) {
	thr := DefaultThresholds
	a := AssumeNothing
	cmp := func(xs, ys []float64) Comparison {
		return a.Compare(NewSample(xs, &thr), NewSample(ys, &thr))
	}

	checkComparison(t, cmp([]float64{-1, -1, -1}, []float64{1, 1, 1}),
		Comparison{P: 0.1, N1: 3, N2: 3, Alpha: 0.05},
		"need >= 4 samples to detect a difference at alpha level 0.05")
	checkComparison(t, cmp([]float64{-1, -1, -1, -1}, []float64{1, 1, 1, 1}),
		Comparison{P: 0.02857142857142857, N1: 4, N2: 4, Alpha: 0.05})
	checkComparison(t, cmp([]float64{1, -1, -1, -1}, []float64{-1, 1, 1, 1}),
		Comparison{P: 0.4857142857142857, N1: 4, N2: 4, Alpha: 0.05})
	checkComparison(t, cmp([]float64{1, 1, 1, 1}, []float64{1, 1, 1, 1}),
		Comparison{P: 1, N1: 4, N2: 4, Alpha: 0.05},
		"all samples are equal")
}

func TestCompareNormal(t *testing.T) {
	s1 := NewSample([]float64{1.00, 1.10, 0.90, 1.05, 0.95}, &DefaultThresholds)
	s2 := NewSample([]float64{2.00, 2.10, 1.90, 2.05, 1.95}, &DefaultThresholds)
	c := AssumeNormal.Compare(s1, s2)
	if c.P >= 0.05 || c.Alpha != 0.05 || len(c.Warnings) != 0 {
		t.Errorf("got %#v, want a significant difference", c)
	}
	if got := c.FormatDelta(1, 2); got != "+100.00%" {
		t.Errorf("FormatDelta = %s", got)
	}
}

func TestCompareExact(t *testing.T) {
	s := NewSample([]float64{5}, &DefaultThresholds)
	c := AssumeExact.Compare(s, s)
	if c.P != 0 || c.String() != "n=1" {
		t.Errorf("got %v", c)
	}
}

func aeq(x, y float64) bool {
	if math.IsInf(x, 0) || math.IsInf(y, 0) {
		return x == y
	}
	if x < 0 && y < 0 {
		x, y = -x, -y
	}
	// Equal to 8 digits.
	const factor = 1 - 1e-7
	return x*factor <= y && y*factor <= x
}

func checkSummary(t *testing.T, got, want Summary, warnings ...string) {
	t.Helper()
	for _, w := range warnings {
		want.Warnings = append(want.Warnings, fmt.Errorf("%s", w))
	}
	if !aeq(got.Center, want.Center) || !aeq(got.Lo, want.Lo) || !aeq(got.Hi, want.Hi) ||
		got.Confidence != want.Confidence || !errorsEq(got.Warnings, want.Warnings) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func checkComparison(t *testing.T, got, want Comparison, warnings ...string) {
	t.Helper()
	for _, w := range warnings {
		want.Warnings = append(want.Warnings, fmt.Errorf("%s", w))
	}
	if !aeq(got.P, want.P) || got.N1 != want.N1 || got.N2 != want.N2 || got.Alpha != want.Alpha ||
		!errorsEq(got.Warnings, want.Warnings) {
		t.Errorf("got %#v, want %#v", got, want)
	}
}

func errorsEq(a, b []error) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Error() != b[i].Error() {
			return false
		}
	}
	return true
}
