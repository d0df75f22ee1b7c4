// Copyright 2025 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package db_test

import (
	"context"
	"reflect"
	"testing"
	"time"

	"github.com/dvstar/dvbench/record"
	. "github.com/dvstar/dvbench/storage/db"
	"github.com/dvstar/dvbench/storage/db/dbtest"
)

func mkRecord(cols ...string) *record.Record {
	r := new(record.Record)
	for i := 0; i+1 < len(cols); i += 2 {
		r.Add(cols[i], cols[i+1])
	}
	return r
}

// TestInsertRecord verifies that records come back with their columns
// in order, including repeated names.
func TestInsertRecord(t *testing.T) {
	ctx := context.Background()
	db := dbtest.NewDB(t)

	defer SetNow(time.Time{})
	SetNow(time.Unix(86400, 0))

	recs := []*record.Record{
		mkRecord("version", "abc1234", "implementation", "sorted-vector", "cycles", "2.801", "elapsed_time", "1.2"),
		mkRecord("version", "", "implementation", "hashmap", "cycles", "1", "cycles", "2"),
	}
	var ids []int64
	for _, r := range recs {
		id, err := db.InsertRecord(ctx, r)
		if err != nil {
			t.Fatalf("InsertRecord: %v", err)
		}
		ids = append(ids, id)
	}
	if ids[0] == ids[1] {
		t.Errorf("InsertRecord returned the same ID twice: %v", ids)
	}

	n, err := db.CountRuns()
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Errorf("CountRuns = %d, want 2", n)
	}

	runs, err := db.Runs(ctx)
	if err != nil {
		t.Fatalf("Runs: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("got %d runs, want 2", len(runs))
	}
	for i, run := range runs {
		if run.ID != ids[i] {
			t.Errorf("run %d: ID = %d, want %d", i, run.ID, ids[i])
		}
		if !run.Created.Equal(time.Unix(86400, 0)) {
			t.Errorf("run %d: Created = %v", i, run.Created)
		}
		if !reflect.DeepEqual(run.Record.Columns, recs[i].Columns) {
			t.Errorf("run %d: columns = %v, want %v", i, run.Record.Columns, recs[i].Columns)
		}
	}
}

func TestRunsWhere(t *testing.T) {
	ctx := context.Background()
	db := dbtest.NewDB(t)

	for _, impl := range []string{"vector", "b-tree", "vector", "combo"} {
		if _, err := db.InsertRecord(ctx, mkRecord("implementation", impl, "elapsed_time", "1")); err != nil {
			t.Fatal(err)
		}
	}
	runs, err := db.RunsWhere(ctx, "implementation", "vector")
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 2 {
		t.Fatalf("got %d runs, want 2", len(runs))
	}
	for _, run := range runs {
		if v, _ := run.Record.Get("implementation"); v != "vector" {
			t.Errorf("run %d: implementation = %q", run.ID, v)
		}
		if run.Record.Len() != 2 {
			t.Errorf("run %d: %d columns, want 2", run.ID, run.Record.Len())
		}
	}
}

func TestDeleteRun(t *testing.T) {
	ctx := context.Background()
	db := dbtest.NewDB(t)

	id, err := db.InsertRecord(ctx, mkRecord("a", "1", "b", "2"))
	if err != nil {
		t.Fatal(err)
	}
	if err := db.DeleteRun(ctx, id); err != nil {
		t.Fatalf("DeleteRun: %v", err)
	}
	if err := db.DeleteRun(ctx, id); err == nil {
		t.Errorf("second DeleteRun succeeded")
	}
	var cols int
	if err := DBSQL(db).QueryRow("SELECT COUNT(*) FROM RunColumns").Scan(&cols); err != nil {
		t.Fatal(err)
	}
	if cols != 0 {
		t.Errorf("%d orphaned columns", cols)
	}
}

func TestInsertEmptyRecord(t *testing.T) {
	ctx := context.Background()
	db := dbtest.NewDB(t)

	if _, err := db.InsertRecord(ctx, new(record.Record)); err != nil {
		t.Fatal(err)
	}
	runs, err := db.Runs(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 1 || runs[0].Record.Len() != 0 {
		t.Errorf("runs = %+v", runs)
	}
}
