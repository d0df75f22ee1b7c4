// Copyright 2025 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dvstar/dvbench/identity"
	"github.com/dvstar/dvbench/publish"
	"github.com/dvstar/dvbench/publish/gcs"
)

func (a *app) publishCmd() *cobra.Command {
	var (
		bucket, dir, creds string
		obj                publish.Object
	)
	cmd := &cobra.Command{
		Use:   "publish file...",
		Short: "Copy tables and charts to a GCS bucket or a directory",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if (bucket == "") == (dir == "") {
				return fmt.Errorf("exactly one of --bucket and --dir is required")
			}
			cfg, err := a.config()
			if err != nil {
				return err
			}
			if obj.Version == "" {
				obj.Version = (&identity.Resolver{Dir: cfg.Root, FallbackFile: cfg.CommitFile}).Tag()
			}

			ctx, cancel := signalContext(cmd)
			defer cancel()
			var fs publish.FS = publish.DirFS(dir)
			if bucket != "" {
				opts, err := gcs.ClientOptions(ctx, creds)
				if err != nil {
					return err
				}
				gfs, err := gcs.NewFS(ctx, bucket, opts...)
				if err != nil {
					return err
				}
				defer gfs.Close()
				fs = gfs
			}
			names, err := publish.Files(ctx, fs, obj, args...)
			for _, n := range names {
				fmt.Fprintln(cmd.OutOrStdout(), n)
			}
			return err
		},
	}
	f := cmd.Flags()
	f.StringVar(&bucket, "bucket", "", "Cloud Storage bucket")
	f.StringVar(&dir, "dir", "", "local directory")
	f.StringVar(&creds, "credentials", "", "service account key `file` (default application credentials)")
	f.StringVar(&obj.Prefix, "prefix", "", "object name prefix")
	f.StringVar(&obj.Version, "version", "", "version recorded with the objects (default the current tag)")
	return cmd
}
