// Copyright 2025 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/dvstar/dvbench/identity"
)

func (a *app) versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version tag runs are recorded with",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.config()
			if err != nil {
				return err
			}
			tag, err := (&identity.Resolver{Dir: cfg.Root, FallbackFile: cfg.CommitFile}).Lookup()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), tag)
			if bi, ok := debug.ReadBuildInfo(); ok {
				a.log.WithField("go", bi.GoVersion).WithField("module", bi.Main.Version).Debug("dvbench build")
			}
			return nil
		},
	}
}
