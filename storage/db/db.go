// Copyright 2025 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package db mirrors benchmark records into a SQL database so that runs
// from many tables and machines can be queried together.
package db

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"strings"
	"text/template"
	"time"

	"github.com/dvstar/dvbench/record"
)

// DB is a high-level interface to a results database. It's safe for
// concurrent use by multiple goroutines.
type DB struct {
	sql *sql.DB // underlying database connection
	// prepared statements
	insertRun    *sql.Stmt
	insertColumn *sql.Stmt
}

// OpenSQL creates a DB backed by a SQL database. The parameters are
// the same as the parameters for sql.Open. Only mysql and sqlite3 are
// explicitly supported; other database engines will receive MySQL
// query syntax which may or may not be compatible.
func OpenSQL(driverName, dataSourceName string) (*DB, error) {
	db, err := sql.Open(driverName, dataSourceName)
	if err != nil {
		return nil, err
	}
	if hook := openHooks[driverName]; hook != nil {
		if err := hook(db); err != nil {
			db.Close()
			return nil, err
		}
	}
	d := &DB{sql: db}
	if err := d.createTables(driverName); err != nil {
		db.Close()
		return nil, err
	}
	if err := d.prepareStatements(); err != nil {
		db.Close()
		return nil, err
	}
	return d, nil
}

var openHooks = make(map[string]func(*sql.DB) error)

// RegisterOpenHook registers a hook to be called after opening a connection to driverName.
// This is used by the sqlite3 package to configure the connection pool.
// It must be called from an init function.
func RegisterOpenHook(driverName string, hook func(*sql.DB) error) {
	openHooks[driverName] = hook
}

// createTmpl is the template used to prepare the CREATE statements
// for the database. It is evaluated with . as a map containing one
// entry whose key is the driver name.
var createTmpl = template.Must(template.New("create").Parse(`
CREATE TABLE IF NOT EXISTS Runs (
	RunID {{if .sqlite3}}INTEGER PRIMARY KEY AUTOINCREMENT{{else}}SERIAL PRIMARY KEY AUTO_INCREMENT{{end}},
	Created VARCHAR(32)
);
CREATE TABLE IF NOT EXISTS RunColumns (
	RunID BIGINT UNSIGNED,
	Position INTEGER,
	Name VARCHAR(255),
	Value VARCHAR(8192),
	PRIMARY KEY (RunID, Position),
{{if not .sqlite3}}
	Index (Name(100), Value(100)),
{{end}}
	FOREIGN KEY (RunID) REFERENCES Runs(RunID) ON UPDATE CASCADE ON DELETE CASCADE
);
{{if .sqlite3}}
CREATE INDEX IF NOT EXISTS RunColumnsNameValue ON RunColumns(Name, Value);
{{end}}
`))

// createTables creates any missing tables on the connection in
// db.sql. driverName is the same driver name passed to sql.Open and
// is used to select the correct syntax.
func (db *DB) createTables(driverName string) error {
	var buf bytes.Buffer
	if err := createTmpl.Execute(&buf, map[string]bool{driverName: true}); err != nil {
		return err
	}
	for _, q := range strings.Split(buf.String(), ";") {
		if strings.TrimSpace(q) == "" {
			continue
		}
		if _, err := db.sql.Exec(q); err != nil {
			return fmt.Errorf("create table: %v", err)
		}
	}
	return nil
}

// prepareStatements calls db.sql.Prepare on reusable SQL statements.
func (db *DB) prepareStatements() error {
	var err error
	db.insertRun, err = db.sql.Prepare("INSERT INTO Runs(Created) VALUES (?)")
	if err != nil {
		return err
	}
	db.insertColumn, err = db.sql.Prepare("INSERT INTO RunColumns(RunID, Position, Name, Value) VALUES (?, ?, ?, ?)")
	if err != nil {
		return err
	}
	return nil
}

// now is a hook for testing
var now = time.Now

// InsertRecord stores rec as a new run and returns its ID. The run and
// all of its columns are written in one transaction.
func (db *DB) InsertRecord(ctx context.Context, rec *record.Record) (runID int64, err error) {
	tx, err := db.sql.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		} else {
			err = tx.Commit()
		}
	}()
	res, err := tx.StmtContext(ctx, db.insertRun).ExecContext(ctx, now().UTC().Format(time.RFC3339))
	if err != nil {
		return 0, err
	}
	runID, err = res.LastInsertId()
	if err != nil {
		return 0, err
	}
	ins := tx.StmtContext(ctx, db.insertColumn)
	for i, c := range rec.Columns {
		if _, err := ins.ExecContext(ctx, runID, i, c.Name, c.Value); err != nil {
			return 0, err
		}
	}
	return runID, nil
}

// A Run is a stored record and the metadata of its insertion.
type Run struct {
	ID      int64
	Created time.Time
	Record  *record.Record
}

// Runs returns every stored run in insertion order.
func (db *DB) Runs(ctx context.Context) ([]*Run, error) {
	return db.queryRuns(ctx, "SELECT r.RunID, r.Created, c.Name, c.Value FROM Runs r LEFT JOIN RunColumns c ON r.RunID = c.RunID ORDER BY r.RunID, c.Position")
}

// RunsWhere returns the runs that have a column called name with the
// given value, in insertion order.
func (db *DB) RunsWhere(ctx context.Context, name, value string) ([]*Run, error) {
	return db.queryRuns(ctx,
		"SELECT r.RunID, r.Created, c.Name, c.Value FROM Runs r LEFT JOIN RunColumns c ON r.RunID = c.RunID"+
			" WHERE r.RunID IN (SELECT RunID FROM RunColumns WHERE Name = ? AND Value = ?) ORDER BY r.RunID, c.Position",
		name, value)
}

func (db *DB) queryRuns(ctx context.Context, query string, args ...interface{}) ([]*Run, error) {
	rows, err := db.sql.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var runs []*Run
	var cur *Run
	for rows.Next() {
		var (
			id          int64
			created     string
			name, value sql.NullString
		)
		if err := rows.Scan(&id, &created, &name, &value); err != nil {
			return nil, err
		}
		if cur == nil || cur.ID != id {
			t, err := time.Parse(time.RFC3339, created)
			if err != nil {
				return nil, fmt.Errorf("run %d: created: %v", id, err)
			}
			cur = &Run{ID: id, Created: t, Record: new(record.Record)}
			runs = append(runs, cur)
		}
		if name.Valid {
			cur.Record.Add(name.String, value.String)
		}
	}
	return runs, rows.Err()
}

// CountRuns returns the number of runs stored in the database.
func (db *DB) CountRuns() (int, error) {
	var n int
	err := db.sql.QueryRow("SELECT COUNT(*) FROM Runs").Scan(&n)
	return n, err
}

// DeleteRun removes a run and its columns.
func (db *DB) DeleteRun(ctx context.Context, runID int64) error {
	// sqlite only cascades when foreign keys are enabled.
	tx, err := db.sql.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM RunColumns WHERE RunID = ?", runID); err != nil {
		tx.Rollback()
		return err
	}
	res, err := tx.ExecContext(ctx, "DELETE FROM Runs WHERE RunID = ?", runID)
	if err != nil {
		tx.Rollback()
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		tx.Rollback()
		return fmt.Errorf("run %d not found", runID)
	}
	return tx.Commit()
}

// Close closes the database connections, releasing any open resources.
func (db *DB) Close() error {
	if err := db.insertRun.Close(); err != nil {
		return err
	}
	if err := db.insertColumn.Close(); err != nil {
		return err
	}
	return db.sql.Close()
}
