// Copyright 2025 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package metrics counts the runs of a benchmark campaign in Prometheus
// form, for the node exporter's textfile collector.
package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// Outcomes of a measured run.
const (
	OutcomeOK          = "ok"
	OutcomeRunFailed   = "run_failed"   // the subject or perf exited with an error
	OutcomeParseFailed = "parse_failed" // the report could not be parsed
	OutcomeStoreFailed = "store_failed" // the record could not be appended
)

// Metrics holds the collectors of one campaign. Each Metrics has its own
// registry, so several can coexist in one process.
type Metrics struct {
	Registry *prometheus.Registry

	RunsTotal      *prometheus.CounterVec
	ElapsedSeconds *prometheus.GaugeVec
	LastRun        prometheus.Gauge
}

// New creates and registers the campaign collectors.
func New() *Metrics {
	m := &Metrics{Registry: prometheus.NewRegistry()}

	m.RunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dvbench_runs_total",
			Help: "Measured runs by implementation and outcome.",
		},
		[]string{"implementation", "outcome"},
	)
	m.ElapsedSeconds = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "dvbench_elapsed_seconds",
			Help: "Wall-clock time of the latest successful run of a configuration.",
		},
		[]string{"implementation", "bucket", "cores"},
	)
	m.LastRun = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "dvbench_last_run_timestamp_seconds",
			Help: "Unix time of the latest finished run.",
		},
	)
	m.Registry.MustRegister(m.RunsTotal, m.ElapsedSeconds, m.LastRun)
	return m
}

// ObserveRun records the outcome of one run. elapsed is only used when
// outcome is OutcomeOK.
func (m *Metrics) ObserveRun(implementation, bucket string, cores int, outcome string, elapsed float64) {
	m.RunsTotal.WithLabelValues(implementation, outcome).Inc()
	if outcome == OutcomeOK {
		m.ElapsedSeconds.WithLabelValues(implementation, bucket, strconv.Itoa(cores)).Set(elapsed)
	}
	m.LastRun.SetToCurrentTime()
}

// WriteTextfile writes the current values to path in the text
// exposition format. The file is replaced atomically.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.Registry)
}
