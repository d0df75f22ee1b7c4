// Copyright 2025 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package gcs implements the publish.FS interface using Google Cloud Storage.
package gcs

import (
	"context"
	"strings"

	"cloud.google.com/go/storage"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"

	"github.com/dvstar/dvbench/publish"
)

// FS is a publish.FS backed by a Google Cloud Storage bucket.
type FS struct {
	client *storage.Client
	bucket *storage.BucketHandle
}

var _ publish.FS = (*FS)(nil)

// NewFS constructs an FS that writes to the provided bucket. The
// caller must Close it.
func NewFS(ctx context.Context, bucketName string, opts ...option.ClientOption) (*FS, error) {
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, err
	}
	return &FS{client, client.Bucket(bucketName)}, nil
}

// Close releases the storage client.
func (fs *FS) Close() error {
	return fs.client.Close()
}

func (fs *FS) NewWriter(ctx context.Context, name string, metadata map[string]string) (publish.Writer, error) {
	w := fs.bucket.Object(name).NewWriter(ctx)
	w.Metadata = metadata
	if strings.HasSuffix(name, ".csv") {
		w.ContentType = "text/csv"
	}
	return w, nil
}

// ClientOptions returns the options that authenticate a client. A
// non-empty credentialsFile names a service account key; otherwise the
// application default credentials are used.
func ClientOptions(ctx context.Context, credentialsFile string) ([]option.ClientOption, error) {
	if credentialsFile != "" {
		return []option.ClientOption{option.WithCredentialsFile(credentialsFile)}, nil
	}
	ts, err := google.DefaultTokenSource(ctx, storage.ScopeReadWrite)
	if err != nil {
		return nil, err
	}
	return []option.ClientOption{option.WithTokenSource(ts)}, nil
}
