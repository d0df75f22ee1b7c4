// Copyright 2025 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package benchmath computes statistics over the repeated runs stored
// in a result table, such as the elapsed times of every run of one
// implementation on one bucket.
//
// Callers state a distributional assumption instead of picking a
// statistical test: AssumeNothing (median and U-test), AssumeNormal
// (mean and t-test) or AssumeExact (values that must not vary, such as
// instruction counts of a deterministic build).
//
// Results carry warnings as an []error. They do not prevent analysis
// and should be shown next to the numbers they qualify.
package benchmath

import (
	"errors"
	"fmt"
	"sort"
	"strconv"

	"github.com/aclements/go-moremath/stats"
)

// A Sample is the set of values one column takes over the runs of one
// configuration.
type Sample struct {
	// Values is sorted in ascending order.
	Values []float64

	Thresholds *Thresholds

	// Warnings are problems with the sample itself, such as cells
	// that were skipped.
	Warnings []error
}

// NewSample returns a Sample of values. It sorts values in place.
func NewSample(values []float64, t *Thresholds) *Sample {
	sort.Float64s(values)
	return &Sample{Values: values, Thresholds: t}
}

// errNoValues is returned by ParseSample for a column with no values.
var errNoValues = errors.New("no values")

// ParseSample constructs a Sample from the text cells of one table
// column. Empty cells, which a widened table uses for runs that did
// not record the column, are skipped.
func ParseSample(cells []string, t *Thresholds) (*Sample, error) {
	values := make([]float64, 0, len(cells))
	skipped := 0
	for _, c := range cells {
		if c == "" {
			skipped++
			continue
		}
		v, err := strconv.ParseFloat(c, 64)
		if err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	if len(values) == 0 {
		return nil, errNoValues
	}
	s := NewSample(values, t)
	if skipped > 0 {
		s.Warnings = append(s.Warnings, fmt.Errorf("%d of %d runs did not record this value", skipped, len(cells)))
	}
	return s, nil
}

func (s *Sample) sample() stats.Sample {
	return stats.Sample{Xs: s.Values, Sorted: true}
}

// Thresholds holds the levels statistical tests decide at. Start from
// DefaultThresholds.
type Thresholds struct {
	// CompareAlpha is the significance level of Assumption.Compare.
	CompareAlpha float64
}

// DefaultThresholds compare at the 5% level.
var DefaultThresholds = Thresholds{
	CompareAlpha: 0.05,
}
