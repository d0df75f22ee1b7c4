// Copyright 2025 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dvstar/dvbench/benchmath"
	"github.com/dvstar/dvbench/benchplot"
	"github.com/dvstar/dvbench/benchsummary"
	"github.com/dvstar/dvbench/resultstore"
)

// filterFlag restricts a table to rows whose columns have given values,
// as in --filter bucket=small --filter cores=4.
type filterFlag []string

func (f filterFlag) apply(t *resultstore.Table) (*resultstore.Table, error) {
	for _, kv := range f {
		k, v, ok := strings.Cut(kv, "=")
		if !ok {
			return nil, fmt.Errorf("bad filter %q: want column=value", kv)
		}
		if t.Column(k) < 0 {
			return nil, fmt.Errorf("bad filter %q: no column %q", kv, k)
		}
		src := t
		t = src.Filter(func(row int) bool { return src.Get(row, k) == v })
	}
	return t, nil
}

// loadTable reads the configured table, or file if it is not empty.
func (a *app) loadTable(file string, filters filterFlag) (*resultstore.Table, error) {
	if file == "" {
		cfg, err := a.config()
		if err != nil {
			return nil, err
		}
		file = cfg.Path(cfg.Table)
	}
	t, err := resultstore.Load(file)
	if err != nil {
		return nil, err
	}
	return filters.apply(t)
}

func parseAssumption(s string) (benchmath.Assumption, error) {
	switch s {
	case "nothing", "":
		return benchmath.AssumeNothing, nil
	case "normal":
		return benchmath.AssumeNormal, nil
	case "exact":
		return benchmath.AssumeExact, nil
	}
	return nil, fmt.Errorf("unknown assumption %q: want nothing, normal or exact", s)
}

func (a *app) summaryCmd() *cobra.Command {
	var (
		opts       benchsummary.Options
		assumption string
		base       string
		csv        bool
		filters    []string
	)
	cmd := &cobra.Command{
		Use:   "summary [table]",
		Short: "Summarize the table by configuration",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var file string
			if len(args) == 1 {
				file = args[0]
			}
			t, err := a.loadTable(file, filters)
			if err != nil {
				return err
			}
			if opts.Assumption, err = parseAssumption(assumption); err != nil {
				return err
			}
			if base != "" {
				k, v, ok := strings.Cut(base, "=")
				if !ok {
					return fmt.Errorf("bad base %q: want column=value", base)
				}
				opts.BaseKey, opts.BaseValue = k, v
			}
			groups, err := benchsummary.Summarize(t, opts)
			if err != nil {
				return err
			}
			if csv {
				return benchsummary.WriteCSV(cmd.OutOrStdout(), opts, groups)
			}
			return benchsummary.Format(cmd.OutOrStdout(), opts, groups)
		},
	}
	f := cmd.Flags()
	f.StringSliceVar(&opts.Keys, "keys", benchsummary.DefaultKeys, "columns that identify a configuration")
	f.StringSliceVar(&opts.Metrics, "metrics", []string{"elapsed_time"}, "columns to summarize")
	f.StringVar(&assumption, "assume", "nothing", "distribution assumption: nothing, normal or exact")
	f.Float64Var(&opts.Confidence, "confidence", 0.95, "confidence level of intervals")
	f.StringVar(&base, "base", "", "compare with the baseline `column=value`, as in cores=1")
	f.BoolVar(&csv, "csv", false, "write CSV instead of a text table")
	f.StringArrayVar(&filters, "filter", nil, "only use rows where `column=value`")
	return cmd
}

func (a *app) plotCmd() *cobra.Command {
	var (
		opts    benchplot.Options
		out     string
		filters []string
	)
	cmd := &cobra.Command{
		Use:   "plot [table]",
		Short: "Chart a metric of the table as a PNG image",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var file string
			if len(args) == 1 {
				file = args[0]
			}
			t, err := a.loadTable(file, filters)
			if err != nil {
				return err
			}
			if opts.Title == "" {
				opts.Title = fmt.Sprintf("%s by %s", opts.Y, opts.X)
			}
			w, err := os.Create(out)
			if err != nil {
				return err
			}
			if err := benchplot.Chart(w, t, opts); err != nil {
				w.Close()
				os.Remove(out)
				return err
			}
			if err := w.Close(); err != nil {
				return err
			}
			a.log.WithField("file", out).Info("Wrote chart")
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&opts.X, "x", "cores", "sweep column")
	f.StringVar(&opts.Y, "y", "elapsed_time", "metric column")
	f.StringVar(&opts.Series, "series", "implementation", "column that splits rows into lines")
	f.StringVar(&opts.Title, "title", "", "chart title")
	f.BoolVar(&opts.LogY, "log-y", false, "use a logarithmic Y axis")
	f.StringVarP(&out, "output", "o", "chart.png", "output `file`")
	f.StringArrayVar(&filters, "filter", nil, "only use rows where `column=value`")
	return cmd
}
