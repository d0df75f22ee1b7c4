// Copyright 2025 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package dbtest opens throwaway result databases for tests.
package dbtest

import (
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"flag"
	"fmt"
	"testing"

	_ "github.com/GoogleCloudPlatform/cloudsql-proxy/proxy/dialers/mysql"

	"github.com/dvstar/dvbench/storage/db"
	_ "github.com/dvstar/dvbench/storage/db/sqlite3"
)

var (
	cloud    = flag.Bool("cloud", false, "run database tests against Cloud SQL instead of in-memory SQLite")
	cloudsql = flag.String("cloudsql", "dvbench:europe-north1:results", "Cloud SQL `instance` for -cloud")
)

// cloudDSN creates a database with a random name on the -cloudsql
// instance and drops it when t finishes.
func cloudDSN(t *testing.T) string {
	t.Helper()
	var suffix [6]byte
	if _, err := rand.Read(suffix[:]); err != nil {
		t.Fatal(err)
	}
	name := "dvbench_test_" + hex.EncodeToString(suffix[:])
	server := fmt.Sprintf("root:@cloudsql(%s)/", *cloudsql)

	admin, err := sql.Open("mysql", server)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := admin.Exec("CREATE DATABASE `" + name + "`"); err != nil {
		admin.Close()
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if _, err := admin.Exec("DROP DATABASE `" + name + "`"); err != nil {
			t.Error(err)
		}
		admin.Close()
	})
	t.Logf("using Cloud SQL database %s", name)
	return server + name
}

// NewDB returns an empty results database that is closed when t
// finishes: in-memory SQLite by default, or a fresh Cloud SQL
// database with -cloud.
func NewDB(t *testing.T) *db.DB {
	t.Helper()
	driver, dsn := "sqlite3", ":memory:"
	if *cloud {
		driver, dsn = "mysql", cloudDSN(t)
	}
	d, err := db.OpenSQL(driver, dsn)
	if err != nil {
		t.Fatalf("open %s database: %v", driver, err)
	}
	t.Cleanup(func() { d.Close() })

	n, err := d.CountRuns()
	if err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Fatalf("new database has %d runs, want 0", n)
	}
	return d
}
