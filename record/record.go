// Copyright 2025 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package record turns a parsed perf stat report and the context of the
// run that produced it into one ordered row of named values.
package record

import (
	"strconv"

	"github.com/dvstar/dvbench/perfstat"
)

// Identity describes what was measured: which build of which
// implementation ran on which inputs with how many cores.
type Identity struct {
	// Version is the 7-character commit of the measured tree, or ""
	// if it could not be determined.
	Version string

	// Implementation is the container or implementation label, such
	// as "sorted-vector" or "reference".
	Implementation string

	// Bucket is the dataset-size tier, such as "small".
	Bucket string

	// Build parameters of the input trees.
	Threshold float64
	MinCount  int
	MaxDepth  int

	Cores int

	// InitSize is the container initialization size. It produces a
	// column only when set.
	InitSize *int
}

// Identity column names, in record order.
const (
	ColVersion        = "version"
	ColImplementation = "implementation"
	ColBucket         = "bucket"
	ColThreshold      = "threshold"
	ColMinCount       = "min_count"
	ColMaxDepth       = "max_depth"
	ColCores          = "cores"
	ColInitSize       = "init_size"

	ColElapsed           = "elapsed_time"
	ColElapsedDivergence = "elapsed_time_divergence"
)

// Suffixes appended to a counter name for its raw count and its
// relative deviation.
const (
	CountSuffix      = "_count"
	DivergenceSuffix = "_divergence"
)

// A Column is one named cell of a Record. Values are kept as text, the
// way they are stored.
type Column struct {
	Name  string
	Value string
}

// A Record is an ordered sequence of columns. Names are not required to
// be unique; see Duplicates.
type Record struct {
	Columns []Column
}

// Add appends a column to r.
func (r *Record) Add(name, value string) {
	r.Columns = append(r.Columns, Column{name, value})
}

// Len returns the number of columns in r.
func (r *Record) Len() int {
	return len(r.Columns)
}

// Names returns the column names of r in order.
func (r *Record) Names() []string {
	out := make([]string, len(r.Columns))
	for i, c := range r.Columns {
		out[i] = c.Name
	}
	return out
}

// Values returns the column values of r in order.
func (r *Record) Values() []string {
	out := make([]string, len(r.Columns))
	for i, c := range r.Columns {
		out[i] = c.Value
	}
	return out
}

// Get returns the value of the first column called name.
func (r *Record) Get(name string) (string, bool) {
	for _, c := range r.Columns {
		if c.Name == name {
			return c.Value, true
		}
	}
	return "", false
}

// Duplicates returns the names that occur more than once in r, in the
// order of their second occurrence.
func (r *Record) Duplicates() []string {
	seen := make(map[string]int, len(r.Columns))
	var dups []string
	for _, c := range r.Columns {
		seen[c.Name]++
		if seen[c.Name] == 2 {
			dups = append(dups, c.Name)
		}
	}
	return dups
}

// Build composes the record of one measured run. The identity columns
// come first, then for each sample in report order its value, count and
// (in repeated mode) divergence, then the elapsed time. Samples with
// the same name produce repeated columns.
func Build(id Identity, rep *perfstat.Report) *Record {
	r := &Record{Columns: make([]Column, 0, 8+3*len(rep.Samples)+2)}
	r.Add(ColVersion, id.Version)
	r.Add(ColImplementation, id.Implementation)
	r.Add(ColBucket, id.Bucket)
	r.Add(ColThreshold, formatFloat(id.Threshold))
	r.Add(ColMinCount, strconv.Itoa(id.MinCount))
	r.Add(ColMaxDepth, strconv.Itoa(id.MaxDepth))
	r.Add(ColCores, strconv.Itoa(id.Cores))
	if id.InitSize != nil {
		r.Add(ColInitSize, strconv.Itoa(*id.InitSize))
	}

	for _, s := range rep.Samples {
		r.Add(s.Name, formatFloat(s.Value))
		r.Add(s.Name+CountSuffix, strconv.FormatInt(s.Count, 10))
		if s.HasDivergence {
			r.Add(s.Name+DivergenceSuffix, formatFloat(s.Divergence))
		}
	}

	r.Add(ColElapsed, formatFloat(rep.Summary.Elapsed))
	if rep.Summary.HasDivergence {
		r.Add(ColElapsedDivergence, formatFloat(rep.Summary.ElapsedDivergence))
	}
	return r
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
