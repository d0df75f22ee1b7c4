// Copyright 2025 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package benchsummary

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/dvstar/dvbench/benchunit"
	"github.com/dvstar/dvbench/internal/texttab"
)

// metricUnits gives the unit of metric columns whose values are not
// plain ratios or counts.
var metricUnits = map[string]string{
	"elapsed_time":            "sec",
	"elapsed_time_divergence": "sec",
	"task_clock_count":        "msec",
}

// Unit returns the unit of a metric column, tidied to base units, or ""
// for dimensionless columns.
func Unit(metric string) string {
	u, ok := metricUnits[metric]
	if !ok {
		return ""
	}
	_, u = benchunit.Tidy(1, u)
	return u
}

func tidy(metric string, v float64) float64 {
	if u, ok := metricUnits[metric]; ok {
		v, _ = benchunit.Tidy(v, u)
	}
	return v
}

// Format writes groups as an aligned text table. Each metric gets a
// center column, its confidence range and, when a baseline exists, the
// change against it.
func Format(w io.Writer, opts Options, groups []*Group) error {
	opts.defaults()
	var tab texttab.Table

	tab.Row()
	for _, k := range opts.Keys {
		tab.Cell(k)
	}
	tab.Cell("n", texttab.Right)
	for _, m := range opts.Metrics {
		title := m
		if u := Unit(m); u != "" {
			title += " (" + u + ")"
		}
		tab.Span(2, title, texttab.Center, texttab.LeftMargin(" │ "))
		if opts.BaseKey != "" {
			tab.Span(2, "vs "+opts.BaseValue)
		}
	}

	// All groups of one metric share a scale so they line up.
	scalers := make([]benchunit.Scaler, len(opts.Metrics))
	for m, name := range opts.Metrics {
		var vals []float64
		for _, g := range groups {
			if met := g.Metrics[m]; met.Err == nil {
				vals = append(vals, tidy(name, met.Summary.Center))
			}
		}
		scalers[m] = benchunit.CommonScale(vals)
	}

	var warnings []error
	for _, g := range groups {
		tab.Row()
		for _, k := range g.Key {
			tab.Cell(k)
		}
		tab.Cell(strconv.Itoa(g.Rows), texttab.Right)
		for m, met := range g.Metrics {
			if met.Err != nil {
				tab.Span(2, "?", texttab.Right, texttab.LeftMargin(" │ "))
				warnings = append(warnings, fmt.Errorf("%s: %w", keyString(g.Key), met.Err))
			} else {
				c := tidy(met.Name, met.Summary.Center)
				tab.Cell(scalers[m].Format(c), texttab.Right, texttab.LeftMargin(" │ "))
				tab.Cell("± "+met.Summary.PctRangeString(), texttab.Left)
				for _, ws := range [][]error{met.Sample.Warnings, met.Summary.Warnings} {
					for _, wrn := range ws {
						warnings = append(warnings, fmt.Errorf("%s: %s: %w", keyString(g.Key), met.Name, wrn))
					}
				}
			}
			if opts.BaseKey == "" {
				continue
			}
			if met.Comparison == nil {
				tab.Span(2, "")
				continue
			}
			cmp := met.Comparison
			tab.Cell(cmp.FormatDelta(met.Base.Summary.Center, met.Summary.Center), texttab.Right)
			tab.Cell("("+cmp.String()+")", texttab.Left)
			for _, wrn := range cmp.Warnings {
				warnings = append(warnings, fmt.Errorf("%s: %s: %w", keyString(g.Key), met.Name, wrn))
			}
		}
	}
	if err := tab.Format(w); err != nil {
		return err
	}
	for _, wrn := range warnings {
		if _, err := fmt.Fprintf(w, "warning: %v\n", wrn); err != nil {
			return err
		}
	}
	return nil
}

// WriteCSV writes groups as CSV with unscaled values, one row per group
// and center, lo and hi columns per metric.
func WriteCSV(w io.Writer, opts Options, groups []*Group) error {
	opts.defaults()
	cw := csv.NewWriter(w)
	header := append([]string(nil), opts.Keys...)
	header = append(header, "n")
	for _, m := range opts.Metrics {
		header = append(header, m, m+"_lo", m+"_hi")
		if opts.BaseKey != "" {
			header = append(header, m+"_delta", m+"_p")
		}
	}
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, g := range groups {
		row := append([]string(nil), g.Key...)
		row = append(row, strconv.Itoa(g.Rows))
		for _, met := range g.Metrics {
			if met.Err != nil {
				row = append(row, "", "", "")
			} else {
				s := met.Summary
				row = append(row, benchunit.NoOpScaler.Format(s.Center), benchunit.NoOpScaler.Format(s.Lo), benchunit.NoOpScaler.Format(s.Hi))
			}
			if opts.BaseKey == "" {
				continue
			}
			if met.Comparison == nil {
				row = append(row, "", "")
				continue
			}
			row = append(row, met.Comparison.FormatDelta(met.Base.Summary.Center, met.Summary.Center),
				benchunit.NoOpScaler.Format(met.Comparison.P))
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func keyString(key []string) string {
	s := ""
	for i, k := range key {
		if i > 0 {
			s += "/"
		}
		s += k
	}
	return s
}
