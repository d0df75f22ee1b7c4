// Copyright 2025 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package campaign

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dvstar/dvbench/perfstat"
	"github.com/dvstar/dvbench/resultstore"
)

// DefaultEvents are the counters recorded for every run.
var DefaultEvents = []string{
	"branch-misses",
	"branches",
	"task-clock",
	"cycles",
	"instructions",
	"cache-references",
	"cache-misses",
}

// Config is everything a campaign needs to locate its tools and its
// outputs. Relative paths are resolved against Root.
type Config struct {
	Root string

	PerfPath string   // perf executable
	Events   []string // counters passed to perf stat -e
	// Repeat is the perf stat -r count. Values above 1 produce
	// repeated-run reports with deviations.
	Repeat int

	Binary          string // the implementation under test
	ReferenceBinary string // the reference calculate-distances tool
	DvstarBinary    string // builds input trees from FASTA files

	DataDir string // holds one directory of trees per bucket

	Table  string // result table
	Layout perfstat.Layout
	Policy resultstore.Policy

	// DBDriver and DBSource optionally mirror every record into a
	// SQL database. Both empty disables the mirror.
	DBDriver string
	DBSource string

	// MetricsFile, if set, receives Prometheus metrics after every
	// run.
	MetricsFile string

	// Background is the background model order passed to the
	// implementations.
	Background int

	// CommitFile is the fallback for version tags outside a git
	// work tree.
	CommitFile string
}

// DefaultConfig returns the layout of a dvstar checkout rooted at root.
func DefaultConfig(root string) Config {
	return Config{
		Root:            root,
		PerfPath:        "perf",
		Events:          append([]string(nil), DefaultEvents...),
		Binary:          "build/dist",
		ReferenceBinary: "submodules/PstClassifierSeqan/build/src/calculate-distances",
		DvstarBinary:    "build/dvstar",
		DataDir:         "data",
		Table:           "tmp/benchmarks/results.csv",
		Layout:          perfstat.Structural,
		Policy:          resultstore.Strict,
		CommitFile:      "current_commit.txt",
	}
}

// Path resolves p against c.Root.
func (c *Config) Path(p string) string {
	if p == "" || filepath.IsAbs(p) || c.Root == "" {
		return p
	}
	return filepath.Join(c.Root, p)
}

// Mode returns the report form perf produces for c.Repeat.
func (c *Config) Mode() perfstat.Mode {
	if c.Repeat > 1 {
		return perfstat.Repeated
	}
	return perfstat.Single
}

// Validate reports configuration errors.
func (c *Config) Validate() error {
	var errs []error
	if c.PerfPath == "" {
		errs = append(errs, errors.New("no perf executable"))
	}
	if len(c.Events) == 0 {
		errs = append(errs, errors.New("no perf events"))
	}
	if c.Repeat < 0 {
		errs = append(errs, fmt.Errorf("negative repeat count %d", c.Repeat))
	}
	if c.Table == "" {
		errs = append(errs, errors.New("no result table"))
	}
	if (c.DBDriver == "") != (c.DBSource == "") {
		errs = append(errs, errors.New("database driver and source must be set together"))
	}
	return errors.Join(errs...)
}

// BuildParams are the tree construction parameters of a bucket.
type BuildParams struct {
	Threshold float64
	MinCount  int
	MaxDepth  int
}

// Buckets maps each dataset-size tier to its build parameters. It is
// the only source of build parameters; they are never recovered from
// file names.
var Buckets = map[string]BuildParams{
	"small":  {Threshold: 3.9075, MinCount: 10, MaxDepth: 9},
	"medium": {Threshold: 3.9075, MinCount: 100, MaxDepth: 12},
	"large":  {Threshold: 3.9075, MinCount: 1000, MaxDepth: 15},
}

// BucketNames lists the buckets from smallest to largest.
var BucketNames = []string{"small", "medium", "large"}

// LookupBucket returns the build parameters of bucket.
func LookupBucket(bucket string) (BuildParams, error) {
	p, ok := Buckets[bucket]
	if !ok {
		return BuildParams{}, fmt.Errorf("unknown bucket %q (want one of %s)", bucket, strings.Join(BucketNames, ", "))
	}
	return p, nil
}

// Containers are the tree containers of the implementation under test.
var Containers = []string{"vector", "indexing", "sorted-vector", "b-tree", "hashmap", "combo"}

// Reference is the implementation label of the reference tool.
const Reference = "reference"

// DistanceFunctions are the distance functions of the reference tool.
var DistanceFunctions = []string{
	"d2", "d2star", "dvstar", "nearest-dvstar", "penalized-dvstar",
	"kl", "kl-both", "nll", "nll-background", "cv", "cv-estimation",
}

// ValidImplementation reports whether impl is a container or Reference.
func ValidImplementation(impl string) bool {
	return impl == Reference || contains(Containers, impl)
}

// ValidDistance reports whether fn is a known distance function.
func ValidDistance(fn string) bool {
	return contains(DistanceFunctions, fn)
}

// BintreeName returns the file name of the tree built from genome with
// parameters p: the genome's base name without extension followed by
// the parameters, as in "NC_001.fa" -> "NC_001_3.9075_10_9.bintree".
func BintreeName(genome string, p BuildParams) string {
	base := filepath.Base(genome)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	return fmt.Sprintf("%s_%s_%d_%d.bintree", stem, strconv.FormatFloat(p.Threshold, 'f', -1, 64), p.MinCount, p.MaxDepth)
}

func contains(list []string, s string) bool {
	for _, x := range list {
		if x == s {
			return true
		}
	}
	return false
}
