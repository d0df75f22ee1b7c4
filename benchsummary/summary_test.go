// Copyright 2025 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package benchsummary

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dvstar/dvbench/resultstore"
)

func sweepTable(t *testing.T) *resultstore.Table {
	t.Helper()
	const data = `implementation,bucket,cores,elapsed_time,cycles
reference,small,1,0.9,100
reference,small,1,1.1,100
sorted-vector,small,1,0.45,
reference,small,1,1.0,100
sorted-vector,small,1,0.55,
sorted-vector,small,1,0.5,
reference,small,1,1.05,100
sorted-vector,small,1,0.525,
reference,small,1,0.95,100
sorted-vector,small,1,0.475,
reference,small,1,1.0,100
sorted-vector,small,1,0.5,
hashmap,small,1,2,
`
	tab, err := resultstore.ReadTable(strings.NewReader(data))
	require.NoError(t, err)
	return tab
}

func TestSummarize(t *testing.T) {
	groups, err := Summarize(sweepTable(t), Options{
		Metrics:   []string{"elapsed_time"},
		BaseKey:   "implementation",
		BaseValue: "reference",
	})
	require.NoError(t, err)
	require.Len(t, groups, 3)

	ref, sv, hm := groups[0], groups[1], groups[2]
	assert.Equal(t, []string{"reference", "small", "1"}, ref.Key)
	assert.Equal(t, []string{"sorted-vector", "small", "1"}, sv.Key)
	assert.Equal(t, 6, ref.Rows)
	assert.Equal(t, 1, hm.Rows)

	assert.InDelta(t, 1.0, ref.Metrics[0].Summary.Center, 1e-12)
	assert.InDelta(t, 0.5, sv.Metrics[0].Summary.Center, 1e-12)
	assert.Nil(t, ref.Metrics[0].Comparison, "baseline compared with itself")

	cmp := sv.Metrics[0].Comparison
	require.NotNil(t, cmp)
	assert.Less(t, cmp.P, 0.05)
	assert.Equal(t, "-50.00%", cmp.FormatDelta(sv.Metrics[0].Base.Summary.Center, sv.Metrics[0].Summary.Center))

	// A single run has no confidence interval.
	assert.NotEmpty(t, hm.Metrics[0].Summary.Warnings)
}

func TestSummarizeNullFilled(t *testing.T) {
	groups, err := Summarize(sweepTable(t), Options{Metrics: []string{"cycles"}})
	require.NoError(t, err)
	assert.NoError(t, groups[0].Metrics[0].Err)
	assert.ErrorContains(t, groups[1].Metrics[0].Err, "cycles: no values")
}

func TestSummarizeMissingColumn(t *testing.T) {
	_, err := Summarize(sweepTable(t), Options{Metrics: []string{"instructions"}})
	assert.ErrorContains(t, err, `no column "instructions"`)

	_, err = Summarize(sweepTable(t), Options{Keys: []string{"version"}})
	assert.Error(t, err)

	_, err = Summarize(sweepTable(t), Options{BaseKey: "threshold"})
	assert.ErrorContains(t, err, "not a key")
}

func TestFormat(t *testing.T) {
	opts := Options{BaseKey: "implementation", BaseValue: "reference"}
	groups, err := Summarize(sweepTable(t), opts)
	require.NoError(t, err)

	var buf strings.Builder
	require.NoError(t, Format(&buf, opts, groups))
	out := buf.String()
	lines := strings.Split(out, "\n")

	assert.Contains(t, lines[0], "elapsed_time (sec)")
	assert.Contains(t, lines[0], "vs reference")
	assert.True(t, strings.HasPrefix(lines[1], "reference "), "%q", lines[1])
	assert.Contains(t, lines[2], "-50.00%")
	assert.Contains(t, out, "warning: hashmap/small/1: elapsed_time: need >= 6 samples")
	for _, l := range lines {
		assert.Equal(t, strings.TrimRight(l, " "), l, "trailing space")
	}
}

func TestWriteCSV(t *testing.T) {
	opts := Options{Metrics: []string{"elapsed_time", "cycles"}}
	groups, err := Summarize(sweepTable(t), opts)
	require.NoError(t, err)

	var buf strings.Builder
	require.NoError(t, WriteCSV(&buf, opts, groups))
	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "implementation,bucket,cores,n,elapsed_time,elapsed_time_lo,elapsed_time_hi,cycles,cycles_lo,cycles_hi", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "reference,small,1,6,1,0.9,1.1,100,100,100"), lines[1])
	assert.True(t, strings.HasSuffix(lines[2], ",,,"), lines[2])
}

func TestUnit(t *testing.T) {
	assert.Equal(t, "sec", Unit("elapsed_time"))
	assert.Equal(t, "sec", Unit("task_clock_count"))
	assert.Equal(t, "", Unit("branch_misses"))
}
