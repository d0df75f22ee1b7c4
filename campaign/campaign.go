// Copyright 2025 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package campaign drives benchmark campaigns: it builds input trees,
// runs an implementation under perf stat and records the parsed report
// in the result table.
//
// Runs are strictly sequential. Nothing here is safe for concurrent use.
package campaign

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/dvstar/dvbench/identity"
	"github.com/dvstar/dvbench/metrics"
	"github.com/dvstar/dvbench/perfstat"
	"github.com/dvstar/dvbench/record"
	"github.com/dvstar/dvbench/resultstore"
	"github.com/dvstar/dvbench/storage/db"
)

// A Campaign measures jobs and appends their records to one table.
type Campaign struct {
	Config  Config
	Runner  Runner
	Log     log.FieldLogger
	Store   *resultstore.Store
	DB      *db.DB           // nil unless Config.DBDriver is set
	Metrics *metrics.Metrics // always set

	// Version is the version tag recorded with every run. It is
	// resolved once by New.
	Version string
}

// New validates cfg and prepares a campaign. If cfg names a database it
// is opened; Close releases it.
func New(cfg Config, r Runner, logger log.FieldLogger) (*Campaign, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	// Commands run with Root as their working directory, so paths
	// joined onto a relative Root would resolve twice.
	if cfg.Root != "" {
		root, err := filepath.Abs(cfg.Root)
		if err != nil {
			return nil, err
		}
		cfg.Root = root
	}
	if logger == nil {
		logger = log.StandardLogger()
	}
	c := &Campaign{
		Config:  cfg,
		Runner:  r,
		Log:     logger,
		Store:   &resultstore.Store{Path: cfg.Path(cfg.Table), Policy: cfg.Policy},
		Metrics: metrics.New(),
	}

	res := &identity.Resolver{Dir: cfg.Root, FallbackFile: cfg.CommitFile}
	tag, err := res.Lookup()
	if err != nil {
		logger.WithError(err).Warn("No version tag; recording runs without one")
	}
	c.Version = tag

	if cfg.DBDriver != "" {
		c.DB, err = db.OpenSQL(cfg.DBDriver, cfg.DBSource)
		if err != nil {
			return nil, fmt.Errorf("open %s database: %w", cfg.DBDriver, err)
		}
	}
	if dir := filepath.Dir(c.Store.Path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			c.Close()
			return nil, err
		}
	}
	return c, nil
}

// Close releases the database, if any.
func (c *Campaign) Close() error {
	if c.DB == nil {
		return nil
	}
	return c.DB.Close()
}

// BuildInputs builds one tree per FASTA file of fastaDir into outDir with
// the parameters of bucket and returns the paths of the trees, in file
// name order.
func (c *Campaign) BuildInputs(ctx context.Context, fastaDir, outDir, bucket string) ([]string, error) {
	p, err := LookupBucket(bucket)
	if err != nil {
		return nil, err
	}
	fastaDir, outDir = c.Config.Path(fastaDir), c.Config.Path(outDir)
	entries, err := os.ReadDir(fastaDir)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, err
	}

	var names []string
	for _, e := range entries {
		if e.Type().IsRegular() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	var built []string
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return built, err
		}
		out := filepath.Join(outDir, BintreeName(name, p))
		args := []string{
			"--mode", "build",
			"--threshold", strconv.FormatFloat(p.Threshold, 'f', -1, 64),
			"--min-count", strconv.Itoa(p.MinCount),
			"--max-depth", strconv.Itoa(p.MaxDepth),
			"--fasta-path", filepath.Join(fastaDir, name),
			"--out-path", out,
		}
		l := c.Log.WithFields(log.Fields{"bucket": bucket, "genome": name})
		l.Debug("Building tree")
		if stderr, err := c.Runner.Run(ctx, c.Config.Path(c.Config.DvstarBinary), args...); err != nil {
			l.WithError(err).WithField("stderr", stderr).Error("Tree build failed")
			return built, fmt.Errorf("build %s: %w", name, err)
		}
		built = append(built, out)
	}
	c.Log.WithFields(log.Fields{"bucket": bucket, "trees": len(built)}).Info("Built input trees")
	return built, nil
}

// A Job is one measured invocation.
type Job struct {
	// Implementation is a container name, or Reference for the
	// reference tool.
	Implementation string
	Bucket         string
	Cores          int

	// Distance is the reference tool's distance function.
	Distance string
	// SetSize limits the reference tool to the first SetSize trees.
	// Zero means all of them.
	SetSize int

	// InitSize, if set, is recorded with the run.
	InitSize *int
}

func (j Job) fields() log.Fields {
	return log.Fields{"implementation": j.Implementation, "bucket": j.Bucket, "cores": j.Cores}
}

// subject returns the measured command line of j.
func (c *Campaign) subject(j Job) (string, []string, error) {
	dataset := c.Config.Path(filepath.Join(c.Config.DataDir, j.Bucket))
	bg := strconv.Itoa(c.Config.Background)
	if j.Implementation == Reference {
		if !ValidDistance(j.Distance) {
			return "", nil, fmt.Errorf("unknown distance function %q", j.Distance)
		}
		setSize := j.SetSize
		if setSize == 0 {
			setSize = -1
		}
		return c.Config.Path(c.Config.ReferenceBinary), []string{
			"-p", dataset,
			"-n", j.Distance,
			"-a", strconv.Itoa(setSize),
			"-b", bg,
		}, nil
	}
	if !ValidImplementation(j.Implementation) {
		return "", nil, fmt.Errorf("unknown implementation %q", j.Implementation)
	}
	if j.Cores < 1 {
		return "", nil, fmt.Errorf("invalid core count %d", j.Cores)
	}
	return c.Config.Path(c.Config.Binary), []string{
		"-p", dataset,
		"-s", dataset,
		"-v", j.Implementation,
		"-n", strconv.Itoa(j.Cores),
		"-b", bg,
	}, nil
}

// perfArgs returns the perf stat arguments that measure name with args.
func (c *Campaign) perfArgs(name string, args []string) []string {
	out := []string{"stat", "-e", strings.Join(c.Config.Events, ",")}
	if c.Config.Repeat > 1 {
		out = append(out, "-r", strconv.Itoa(c.Config.Repeat))
	}
	out = append(out, "--", name)
	return append(out, args...)
}

// Measure runs j under perf stat and appends its record. If the run
// fails or its report cannot be parsed, the raw report is logged and
// nothing is appended.
func (c *Campaign) Measure(ctx context.Context, j Job) (*record.Record, error) {
	l := c.Log.WithFields(j.fields())
	if _, err := LookupBucket(j.Bucket); err != nil {
		return nil, err
	}
	name, args, err := c.subject(j)
	if err != nil {
		return nil, err
	}

	l.Debug("Running")
	stderr, err := c.Runner.Run(ctx, c.Config.PerfPath, c.perfArgs(name, args)...)
	if err != nil {
		l.WithError(err).WithField("report", stderr).Error("Run failed")
		c.observe(j, metrics.OutcomeRunFailed, 0)
		return nil, err
	}

	rep, err := perfstat.ParseString(stderr, perfstat.Options{
		Mode:     c.Config.Mode(),
		Layout:   c.Config.Layout,
		FileName: j.Implementation + "/" + j.Bucket,
	})
	if err != nil {
		l.WithError(err).WithField("report", stderr).Error("Cannot parse perf report")
		c.observe(j, metrics.OutcomeParseFailed, 0)
		return nil, err
	}

	rec := record.Build(c.identity(j), rep)
	if err := c.Store.Append(rec); err != nil {
		l.WithError(err).Error("Cannot append record")
		c.observe(j, metrics.OutcomeStoreFailed, 0)
		return nil, err
	}
	if c.DB != nil {
		id, err := c.DB.InsertRecord(ctx, rec)
		if err != nil {
			// The table is the record of truth; a failed
			// mirror is reported but does not fail the run.
			l.WithError(err).Warn("Cannot mirror record to database")
		} else {
			l = l.WithField("run_id", id)
		}
	}
	c.observe(j, metrics.OutcomeOK, rep.Summary.Elapsed)
	l.WithField("elapsed", rep.Summary.Elapsed).Info("Recorded run")
	return rec, nil
}

func (c *Campaign) identity(j Job) record.Identity {
	p := Buckets[j.Bucket]
	return record.Identity{
		Version:        c.Version,
		Implementation: j.Implementation,
		Bucket:         j.Bucket,
		Threshold:      p.Threshold,
		MinCount:       p.MinCount,
		MaxDepth:       p.MaxDepth,
		Cores:          j.Cores,
		InitSize:       j.InitSize,
	}
}

func (c *Campaign) observe(j Job, outcome string, elapsed float64) {
	c.Metrics.ObserveRun(j.Implementation, j.Bucket, j.Cores, outcome, elapsed)
	if c.Config.MetricsFile == "" {
		return
	}
	if err := c.Metrics.WriteTextfile(c.Config.Path(c.Config.MetricsFile)); err != nil {
		c.Log.WithError(err).Warn("Cannot write metrics file")
	}
}

// A Sweep is the cartesian product of its buckets, core counts and
// implementations, run in that nesting order.
type Sweep struct {
	Buckets         []string
	Cores           []int
	Implementations []string
	Distance        string
	SetSize         int
	InitSize        *int

	// KeepGoing continues after a failed job. The failures are
	// returned together at the end.
	KeepGoing bool
}

// Jobs expands s into jobs. The reference tool does not take a core
// count, so it runs once per bucket with Cores 1.
func (s *Sweep) Jobs() []Job {
	var jobs []Job
	for _, b := range s.Buckets {
		refDone := false
		for _, n := range s.Cores {
			for _, impl := range s.Implementations {
				j := Job{Implementation: impl, Bucket: b, Cores: n, Distance: s.Distance, SetSize: s.SetSize, InitSize: s.InitSize}
				if impl == Reference {
					if refDone {
						continue
					}
					refDone = true
					j.Cores = 1
				}
				jobs = append(jobs, j)
			}
		}
	}
	return jobs
}

// Sweep measures every job of s in order and returns the records that
// were appended.
func (c *Campaign) Sweep(ctx context.Context, s Sweep) ([]*record.Record, error) {
	jobs := s.Jobs()
	c.Log.WithField("jobs", len(jobs)).Info("Starting sweep")
	var recs []*record.Record
	var errs []error
	for i, j := range jobs {
		if err := ctx.Err(); err != nil {
			return recs, err
		}
		c.Log.WithFields(j.fields()).Infof("Job %d/%d", i+1, len(jobs))
		rec, err := c.Measure(ctx, j)
		if err != nil {
			err = fmt.Errorf("%s/%s/%d: %w", j.Implementation, j.Bucket, j.Cores, err)
			if !s.KeepGoing {
				return recs, err
			}
			errs = append(errs, err)
			continue
		}
		recs = append(recs, rec)
	}
	return recs, errors.Join(errs...)
}
