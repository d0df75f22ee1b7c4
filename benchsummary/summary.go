// Copyright 2025 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package benchsummary groups the rows of a result table by identity
// columns and summarizes the metric columns of each group.
package benchsummary

import (
	"fmt"
	"strings"

	"github.com/dvstar/dvbench/benchmath"
	"github.com/dvstar/dvbench/resultstore"
)

// Options configures Summarize.
type Options struct {
	// Keys are the columns whose values identify a group, such as
	// implementation, bucket and cores.
	Keys []string

	// Metrics are the columns to summarize. If empty, only
	// elapsed_time is summarized.
	Metrics []string

	// Assumption is the distributional assumption for every metric.
	// Nil means benchmath.AssumeNothing.
	Assumption benchmath.Assumption

	// Confidence is the confidence level of summary intervals. Zero
	// means 0.95.
	Confidence float64

	// BaseKey and BaseValue select baseline groups. A group is
	// compared with the baseline group whose key values are equal
	// except for column BaseKey, which has value BaseValue. No
	// comparison is made if BaseKey is empty.
	BaseKey   string
	BaseValue string
}

// DefaultKeys are the identity columns that distinguish configurations.
var DefaultKeys = []string{"implementation", "bucket", "cores"}

// A Group is the set of rows sharing one combination of key values.
type Group struct {
	Key     []string // values of Options.Keys, in order
	Rows    int
	Metrics []*Metric // parallel to Options.Metrics
}

// A Metric is the summary of one column over a group.
type Metric struct {
	Name    string
	Sample  *benchmath.Sample
	Summary benchmath.Summary

	// Base and Comparison are set if the group has a baseline that
	// also recorded this metric.
	Base       *Metric
	Comparison *benchmath.Comparison

	// Err is set if the column could not be read, for example
	// because no row of the group recorded it.
	Err error
}

func (o *Options) defaults() {
	if len(o.Keys) == 0 {
		o.Keys = DefaultKeys
	}
	if len(o.Metrics) == 0 {
		o.Metrics = []string{"elapsed_time"}
	}
	if o.Assumption == nil {
		o.Assumption = benchmath.AssumeNothing
	}
	if o.Confidence == 0 {
		o.Confidence = 0.95
	}
}

// Summarize groups the rows of t and summarizes every metric. Groups are
// returned in order of first appearance. Missing key or metric columns
// are an error.
func Summarize(t *resultstore.Table, opts Options) ([]*Group, error) {
	opts.defaults()
	keyCols, err := columns(t, opts.Keys)
	if err != nil {
		return nil, err
	}
	metricCols, err := columns(t, opts.Metrics)
	if err != nil {
		return nil, err
	}

	var groups []*Group
	rowsOf := make(map[string][]int)
	for i, row := range t.Rows {
		key := make([]string, len(keyCols))
		for k, c := range keyCols {
			key[k] = row[c]
		}
		id := strings.Join(key, "\x00")
		if _, ok := rowsOf[id]; !ok {
			groups = append(groups, &Group{Key: key})
		}
		rowsOf[id] = append(rowsOf[id], i)
	}

	thr := benchmath.DefaultThresholds
	byID := make(map[string]*Group, len(groups))
	for _, g := range groups {
		id := strings.Join(g.Key, "\x00")
		byID[id] = g
		rows := rowsOf[id]
		g.Rows = len(rows)
		for m, c := range metricCols {
			cells := make([]string, len(rows))
			for i, r := range rows {
				cells[i] = t.Rows[r][c]
			}
			met := &Metric{Name: opts.Metrics[m]}
			met.Sample, met.Err = benchmath.ParseSample(cells, &thr)
			if met.Err != nil {
				met.Err = fmt.Errorf("%s: %w", met.Name, met.Err)
			} else {
				met.Summary = opts.Assumption.Summary(met.Sample, opts.Confidence)
			}
			g.Metrics = append(g.Metrics, met)
		}
	}

	if opts.BaseKey == "" {
		return groups, nil
	}
	bk := -1
	for i, k := range opts.Keys {
		if k == opts.BaseKey {
			bk = i
		}
	}
	if bk < 0 {
		return nil, fmt.Errorf("baseline column %q is not a key", opts.BaseKey)
	}
	for _, g := range groups {
		if g.Key[bk] == opts.BaseValue {
			continue
		}
		baseKey := append([]string(nil), g.Key...)
		baseKey[bk] = opts.BaseValue
		base := byID[strings.Join(baseKey, "\x00")]
		if base == nil {
			continue
		}
		for m, met := range g.Metrics {
			bm := base.Metrics[m]
			if met.Err != nil || bm.Err != nil {
				continue
			}
			c := opts.Assumption.Compare(bm.Sample, met.Sample)
			met.Base, met.Comparison = bm, &c
		}
	}
	return groups, nil
}

func columns(t *resultstore.Table, names []string) ([]int, error) {
	cols := make([]int, len(names))
	for i, n := range names {
		cols[i] = t.Column(n)
		if cols[i] < 0 {
			return nil, fmt.Errorf("no column %q", n)
		}
	}
	return cols, nil
}
