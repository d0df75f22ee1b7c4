// Copyright 2025 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Dvbench measures the dvstar distance tools under perf stat and keeps
// the results in a CSV table.
//
// Usage:
//
//	dvbench [flags] command [args]
//
// The commands are:
//
//	build     build input trees for a bucket from FASTA files
//	stat      measure one implementation and append the record
//	sweep     measure every combination of buckets, cores and implementations
//	ingest    parse saved perf stat reports into the table
//	summary   summarize the table by configuration
//	plot      chart a metric of the table
//	publish   copy tables and charts to a bucket or directory
//	version   print the version tag
//
// Flags may also be set in dvbench.yaml, in the environment as
// DVBENCH_<FLAG> (with "-" spelled "_"), or in a .env file.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/dvstar/dvbench/campaign"
	"github.com/dvstar/dvbench/perfstat"
	"github.com/dvstar/dvbench/resultstore"
	_ "github.com/dvstar/dvbench/storage/db/sqlite3"
	_ "github.com/go-sql-driver/mysql"
)

var exit = os.Exit

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "dvbench: %v\n", err)
		exit(1)
	}
}

// app is the state shared by all commands.
type app struct {
	v   *viper.Viper
	log *log.Logger

	// runner is nil outside tests; commands then use an ExecRunner.
	runner campaign.Runner
}

func newRootCmd() *cobra.Command {
	return newApp(nil).rootCmd()
}

func newApp(r campaign.Runner) *app {
	return &app{v: viper.New(), log: log.New(), runner: r}
}

func (a *app) rootCmd() *cobra.Command {
	var cfgFile string
	root := &cobra.Command{
		Use:           "dvbench",
		Short:         "Benchmark the dvstar distance tools under perf stat",
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.initConfig(cfgFile)
		},
	}
	root.SetErr(os.Stderr)

	def := campaign.DefaultConfig("")
	pf := root.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "read configuration from `file` (default ./dvbench.yaml)")
	pf.BoolP("verbose", "v", false, "print debug log messages")
	pf.String("root", ".", "dvstar checkout that relative paths are resolved against")
	pf.String("perf", def.PerfPath, "perf executable")
	pf.StringSlice("events", def.Events, "perf events to record")
	pf.Int("repeat", 0, "perf stat -r `count`; above 1 records deviations")
	pf.String("binary", def.Binary, "implementation under test")
	pf.String("reference-binary", def.ReferenceBinary, "reference calculate-distances tool")
	pf.String("dvstar-binary", def.DvstarBinary, "tree builder")
	pf.String("data-dir", def.DataDir, "directory holding one tree directory per bucket")
	pf.String("table", def.Table, "result table")
	pf.String("layout", def.Layout.String(), "report layout: structural or positional")
	pf.String("policy", def.Policy.String(), "schema policy: strict or union")
	pf.String("db-driver", "", "mirror records into a sqlite3 or mysql database")
	pf.String("db-source", "", "database data source name")
	pf.String("metrics-file", "", "write Prometheus metrics to `file` after every run")
	pf.Int("background", 0, "background model order")
	pf.String("commit-file", def.CommitFile, "version fallback outside a git work tree")
	pf.VisitAll(func(f *pflag.Flag) {
		if f.Name != "config" {
			a.v.BindPFlag(f.Name, f)
		}
	})

	root.AddCommand(
		a.buildCmd(),
		a.statCmd(),
		a.sweepCmd(),
		a.ingestCmd(),
		a.summaryCmd(),
		a.plotCmd(),
		a.publishCmd(),
		a.versionCmd(),
	)
	return root
}

// initConfig loads .env, the configuration file and the environment.
func (a *app) initConfig(cfgFile string) error {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("loading .env: %w", err)
	}

	if cfgFile != "" {
		a.v.SetConfigFile(cfgFile)
	} else {
		a.v.AddConfigPath(".")
		a.v.SetConfigType("yaml")
		a.v.SetConfigName("dvbench")
	}
	a.v.SetEnvPrefix("DVBENCH")
	a.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	a.v.AutomaticEnv()

	if err := a.v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || cfgFile != "" {
			return err
		}
	}

	a.log.SetOutput(os.Stderr)
	a.log.SetFormatter(&log.TextFormatter{DisableTimestamp: true})
	if a.v.GetBool("verbose") {
		a.log.SetLevel(log.DebugLevel)
	}
	if f := a.v.ConfigFileUsed(); f != "" {
		a.log.WithField("file", f).Debug("Using config file")
	}
	return nil
}

// config assembles the campaign configuration from flags, file and
// environment.
func (a *app) config() (campaign.Config, error) {
	root, err := filepath.Abs(a.v.GetString("root"))
	if err != nil {
		return campaign.Config{}, err
	}
	cfg := campaign.DefaultConfig(root)
	cfg.PerfPath = a.v.GetString("perf")
	cfg.Events = a.v.GetStringSlice("events")
	cfg.Repeat = a.v.GetInt("repeat")
	cfg.Binary = a.v.GetString("binary")
	cfg.ReferenceBinary = a.v.GetString("reference-binary")
	cfg.DvstarBinary = a.v.GetString("dvstar-binary")
	cfg.DataDir = a.v.GetString("data-dir")
	cfg.Table = a.v.GetString("table")
	cfg.DBDriver = a.v.GetString("db-driver")
	cfg.DBSource = a.v.GetString("db-source")
	cfg.MetricsFile = a.v.GetString("metrics-file")
	cfg.Background = a.v.GetInt("background")
	cfg.CommitFile = a.v.GetString("commit-file")

	if cfg.Layout, err = perfstat.ParseLayout(a.v.GetString("layout")); err != nil {
		return cfg, err
	}
	if cfg.Policy, err = resultstore.ParsePolicy(a.v.GetString("policy")); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// campaign opens a campaign for the current configuration. The caller
// must Close it.
func (a *app) campaign() (*campaign.Campaign, error) {
	cfg, err := a.config()
	if err != nil {
		return nil, err
	}
	r := a.runner
	if r == nil {
		r = &campaign.ExecRunner{Dir: cfg.Root, Stdout: os.Stdout}
	}
	return campaign.New(cfg, r, a.log)
}
