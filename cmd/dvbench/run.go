// Copyright 2025 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/dvstar/dvbench/campaign"
	"github.com/dvstar/dvbench/identity"
	"github.com/dvstar/dvbench/perfstat"
	"github.com/dvstar/dvbench/record"
	"github.com/dvstar/dvbench/resultstore"
)

// jobFlags are the flags that describe one measured configuration.
type jobFlags struct {
	impl     string
	bucket   string
	cores    int
	distance string
	setSize  int
	initSize int
}

func (f *jobFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.impl, "impl", "sorted-vector", "container, or \"reference\" for the reference tool")
	cmd.Flags().StringVar(&f.bucket, "bucket", "small", "dataset bucket")
	cmd.Flags().IntVar(&f.cores, "cores", 1, "number of cores")
	cmd.Flags().StringVar(&f.distance, "distance", "dvstar", "distance function of the reference tool")
	cmd.Flags().IntVar(&f.setSize, "set-size", 0, "number of trees the reference tool reads (0 for all)")
	cmd.Flags().IntVar(&f.initSize, "init-size", -1, "record an initial container size (negative to omit)")
}

func (f *jobFlags) initSizePtr() *int {
	if f.initSize < 0 {
		return nil
	}
	n := f.initSize
	return &n
}

func (f *jobFlags) job() campaign.Job {
	return campaign.Job{
		Implementation: f.impl,
		Bucket:         f.bucket,
		Cores:          f.cores,
		Distance:       f.distance,
		SetSize:        f.setSize,
		InitSize:       f.initSizePtr(),
	}
}

func signalContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(cmd.Context(), os.Interrupt)
}

func (a *app) buildCmd() *cobra.Command {
	var fasta, out, bucket string
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build input trees for a bucket from FASTA files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.campaign()
			if err != nil {
				return err
			}
			defer c.Close()
			if out == "" {
				out = filepath.Join(c.Config.DataDir, bucket)
			}
			ctx, cancel := signalContext(cmd)
			defer cancel()
			trees, err := c.BuildInputs(ctx, fasta, out, bucket)
			for _, t := range trees {
				fmt.Fprintln(cmd.OutOrStdout(), t)
			}
			return err
		},
	}
	cmd.Flags().StringVar(&fasta, "fasta", "data/fasta", "directory of FASTA files")
	cmd.Flags().StringVar(&out, "out", "", "output directory (default <data-dir>/<bucket>)")
	cmd.Flags().StringVar(&bucket, "bucket", "small", "bucket whose build parameters to use")
	return cmd
}

func (a *app) statCmd() *cobra.Command {
	var jf jobFlags
	cmd := &cobra.Command{
		Use:   "stat",
		Short: "Measure one implementation and append the record",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.campaign()
			if err != nil {
				return err
			}
			defer c.Close()
			ctx, cancel := signalContext(cmd)
			defer cancel()
			_, err = c.Measure(ctx, jf.job())
			return err
		},
	}
	jf.register(cmd)
	return cmd
}

func (a *app) sweepCmd() *cobra.Command {
	var (
		s        campaign.Sweep
		initSize int
	)
	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Measure every combination of buckets, cores and implementations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if initSize >= 0 {
				s.InitSize = &initSize
			}
			c, err := a.campaign()
			if err != nil {
				return err
			}
			defer c.Close()
			ctx, cancel := signalContext(cmd)
			defer cancel()
			recs, err := c.Sweep(ctx, s)
			a.log.WithField("records", len(recs)).Info("Sweep finished")
			return err
		},
	}
	f := cmd.Flags()
	f.StringSliceVar(&s.Buckets, "buckets", campaign.BucketNames, "buckets to measure")
	f.IntSliceVar(&s.Cores, "cores", []int{1, 2, 4, 8}, "core counts to measure")
	f.StringSliceVar(&s.Implementations, "impl", campaign.Containers, "implementations to measure")
	f.StringVar(&s.Distance, "distance", "dvstar", "distance function of the reference tool")
	f.IntVar(&s.SetSize, "set-size", 0, "number of trees the reference tool reads (0 for all)")
	f.IntVar(&initSize, "init-size", -1, "record an initial container size (negative to omit)")
	f.BoolVarP(&s.KeepGoing, "keep-going", "k", false, "continue after a failed run")
	return cmd
}

func (a *app) ingestCmd() *cobra.Command {
	var (
		jf   jobFlags
		mode string
	)
	cmd := &cobra.Command{
		Use:   "ingest report...",
		Short: "Parse saved perf stat reports into the table",
		Long: `Ingest parses files holding the standard error of perf stat and
appends one record per file, using the identity given by the flags.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.config()
			if err != nil {
				return err
			}
			m := cfg.Mode()
			if mode != "" {
				if m, err = perfstat.ParseMode(mode); err != nil {
					return err
				}
			}
			p, err := campaign.LookupBucket(jf.bucket)
			if err != nil {
				return err
			}
			if !campaign.ValidImplementation(jf.impl) {
				return fmt.Errorf("unknown implementation %q", jf.impl)
			}
			res := &identity.Resolver{Dir: cfg.Root, FallbackFile: cfg.CommitFile}
			id := record.Identity{
				Version:        res.Tag(),
				Implementation: jf.impl,
				Bucket:         jf.bucket,
				Threshold:      p.Threshold,
				MinCount:       p.MinCount,
				MaxDepth:       p.MaxDepth,
				Cores:          jf.cores,
				InitSize:       jf.initSizePtr(),
			}
			store := &resultstore.Store{Path: cfg.Path(cfg.Table), Policy: cfg.Policy}
			if err := os.MkdirAll(filepath.Dir(store.Path), 0o755); err != nil {
				return err
			}
			for _, file := range args {
				f, err := os.Open(file)
				if err != nil {
					return err
				}
				rep, err := perfstat.Parse(f, perfstat.Options{Mode: m, Layout: cfg.Layout, FileName: file})
				f.Close()
				if err != nil {
					return err
				}
				if err := store.Append(record.Build(id, rep)); err != nil {
					return err
				}
				a.log.WithField("file", file).Debug("Ingested report")
			}
			return nil
		},
	}
	jf.register(cmd)
	cmd.Flags().StringVar(&mode, "mode", "", "report form: single or repeated (default from --repeat)")
	return cmd
}
