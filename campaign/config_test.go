// Copyright 2025 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package campaign

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dvstar/dvbench/perfstat"
)

func TestBintreeName(t *testing.T) {
	p := Buckets["large"]
	assert.Equal(t, "NC_001_3.9075_1000_15.bintree", BintreeName("/data/fasta/NC_001.fa", p))
	assert.Equal(t, "genome.v2_3.9075_1000_15.bintree", BintreeName("genome.v2.fasta", p))
}

func TestLookupBucket(t *testing.T) {
	for _, b := range BucketNames {
		_, err := LookupBucket(b)
		assert.NoError(t, err, b)
	}
	_, err := LookupBucket("Small")
	assert.ErrorContains(t, err, "small, medium, large")
}

func TestConfigMode(t *testing.T) {
	var c Config
	for repeat, want := range map[int]perfstat.Mode{0: perfstat.Single, 1: perfstat.Single, 2: perfstat.Repeated} {
		c.Repeat = repeat
		assert.Equal(t, want, c.Mode(), "repeat %d", repeat)
	}
}

func TestConfigPath(t *testing.T) {
	c := Config{Root: "/src/dvstar"}
	assert.Equal(t, "/src/dvstar/build/dist", c.Path("build/dist"))
	assert.Equal(t, "/usr/bin/perf", c.Path("/usr/bin/perf"))
	assert.Equal(t, "", c.Path(""))
}

func TestValid(t *testing.T) {
	assert.True(t, ValidImplementation("combo"))
	assert.True(t, ValidImplementation(Reference))
	assert.False(t, ValidImplementation("list"))
	assert.True(t, ValidDistance("penalized-dvstar"))
	assert.False(t, ValidDistance("euclidean"))
}
