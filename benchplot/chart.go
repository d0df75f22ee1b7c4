// Copyright 2025 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package benchplot draws static charts of a metric against a sweep
// axis, one line per series.
package benchplot

import (
	"fmt"
	"image/color"
	"io"
	"math"
	"sort"
	"strconv"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/dvstar/dvbench/benchmath"
	"github.com/dvstar/dvbench/benchsummary"
	"github.com/dvstar/dvbench/resultstore"
)

// Options configures Chart.
type Options struct {
	// X is the sweep column, such as "cores" or "bucket". If every
	// value parses as a number the axis is numeric, otherwise values
	// are placed in order of first appearance.
	X string
	// Y is the metric column.
	Y string
	// Series splits rows into lines, such as "implementation".
	Series string

	Title string
	LogY  bool

	// Width and Height are in centimeters. Zero means 20 by 12.
	Width, Height float64
	DPI           int
}

// A Point is the summary of the Y column over the rows of one series at
// one X value.
type Point struct {
	X         string
	Center    float64
	Lo, Hi    float64
	Confident bool // Lo and Hi are finite
}

// A Series is one line of a chart.
type Series struct {
	Name   string
	Points []Point
}

// Collect summarizes t into series, in order of first appearance.
func Collect(t *resultstore.Table, opts Options) ([]*Series, error) {
	groups, err := benchsummary.Summarize(t, benchsummary.Options{
		Keys:       []string{opts.Series, opts.X},
		Metrics:    []string{opts.Y},
		Assumption: benchmath.AssumeNothing,
	})
	if err != nil {
		return nil, err
	}
	var out []*Series
	byName := make(map[string]*Series)
	for _, g := range groups {
		m := g.Metrics[0]
		if m.Err != nil {
			continue
		}
		s := byName[g.Key[0]]
		if s == nil {
			s = &Series{Name: g.Key[0]}
			byName[s.Name] = s
			out = append(out, s)
		}
		sum := m.Summary
		s.Points = append(s.Points, Point{
			X:         g.Key[1],
			Center:    sum.Center,
			Lo:        sum.Lo,
			Hi:        sum.Hi,
			Confident: !math.IsInf(sum.Lo, 0) && !math.IsInf(sum.Hi, 0),
		})
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no values of %q to plot", opts.Y)
	}
	return out, nil
}

// errorPoints adapts a series to plotter.YErrorBars.
type errorPoints struct {
	plotter.XYs
	plotter.YErrors
}

func (e errorPoints) Len() int { return len(e.XYs) }

// Plot builds the chart of series.
func Plot(series []*Series, opts Options) (*plot.Plot, error) {
	// Map X values to positions.
	var xs []string
	seen := make(map[string]bool)
	numeric := true
	for _, s := range series {
		for _, p := range s.Points {
			if !seen[p.X] {
				seen[p.X] = true
				xs = append(xs, p.X)
				if _, err := strconv.ParseFloat(p.X, 64); err != nil {
					numeric = false
				}
			}
		}
	}
	pos := make(map[string]float64, len(xs))
	for i, x := range xs {
		if numeric {
			pos[x], _ = strconv.ParseFloat(x, 64)
		} else {
			pos[x] = float64(i)
		}
	}

	pl := plot.New()
	pl.Title.Text = opts.Title
	if pl.Title.Text == "" {
		pl.Title.Text = opts.Y + " by " + opts.X
	}
	pl.X.Label.Text = opts.X
	pl.Y.Label.Text = opts.Y
	if u := benchsummary.Unit(opts.Y); u != "" {
		pl.Y.Label.Text += " (" + u + ")"
	}
	if opts.LogY {
		pl.Y.Scale = plot.LogScale{}
		pl.Y.Tick.Marker = plot.LogTicks{}
	}
	grid := plotter.NewGrid()
	grid.Vertical.Color = nil
	pl.Add(grid)

	for i, s := range series {
		pts := append([]Point(nil), s.Points...)
		sort.SliceStable(pts, func(a, b int) bool { return pos[pts[a].X] < pos[pts[b].X] })

		var ep errorPoints
		for _, p := range pts {
			ep.XYs = append(ep.XYs, plotter.XY{X: pos[p.X], Y: p.Center})
			lo, hi := 0.0, 0.0
			if p.Confident {
				lo, hi = p.Center-p.Lo, p.Hi-p.Center
			}
			ep.YErrors = append(ep.YErrors, struct{ Low, High float64 }{lo, hi})
		}

		line, points, err := plotter.NewLinePoints(ep.XYs)
		if err != nil {
			return nil, fmt.Errorf("series %s: %w", s.Name, err)
		}
		clr := plotutil.Color(i)
		line.LineStyle.Color = clr
		line.LineStyle.Width = vg.Points(1.5)
		points.GlyphStyle.Color = clr
		points.GlyphStyle.Shape = plotutil.Shape(i)
		points.GlyphStyle.Radius = vg.Points(3)

		bars, err := plotter.NewYErrorBars(ep)
		if err != nil {
			return nil, fmt.Errorf("series %s: %w", s.Name, err)
		}
		bars.LineStyle.Color = clr

		pl.Add(line, points, bars)
		pl.Legend.Add(s.Name, line, points)
	}
	if !numeric {
		pl.NominalX(xs...)
	}
	pl.Legend.Top = true
	return pl, nil
}

// WritePNG renders pl as a PNG image to w.
func WritePNG(w io.Writer, pl *plot.Plot, opts Options) error {
	width, height := opts.Width, opts.Height
	if width == 0 {
		width = 20
	}
	if height == 0 {
		height = 12
	}
	dpi := opts.DPI
	if dpi == 0 {
		dpi = 150
	}
	can := vgimg.PngCanvas{Canvas: vgimg.NewWith(
		vgimg.UseWH(vg.Length(width)*vg.Centimeter, vg.Length(height)*vg.Centimeter),
		vgimg.UseDPI(dpi),
		vgimg.UseBackgroundColor(color.White))}
	pl.Draw(draw.New(can))
	_, err := can.WriteTo(w)
	return err
}

// Chart summarizes t and writes the chart as a PNG image to w.
func Chart(w io.Writer, t *resultstore.Table, opts Options) error {
	series, err := Collect(t, opts)
	if err != nil {
		return err
	}
	pl, err := Plot(series, opts)
	if err != nil {
		return err
	}
	return WritePNG(w, pl, opts)
}
