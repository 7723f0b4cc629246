// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package db stores imported series stores in a SQL database.
//
// Every import gets a random ID. The samples of a series are kept as
// one snappy-compressed JSON blob per series.
package db

import (
	"bytes"
	"context"
	"database/sql"
	"strings"
	"text/template"
	"time"

	"github.com/golang/snappy"
	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"

	"github.com/socperf/socperf/series"
	"github.com/socperf/socperf/seriesfmt"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ErrNotFound is returned when an import does not exist.
var ErrNotFound = errors.New("import not found")

// DB is a high-level interface to a database of imports. It's safe
// for concurrent use by multiple goroutines.
type DB struct {
	sql *sql.DB // underlying database connection
	// prepared statements
	insertImport *sql.Stmt
	insertSeries *sql.Stmt
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
			return nil, err
		}
	}
	if driverName == "sqlite3" && strings.Contains(dataSourceName, ":memory:") {
		// Every connection to :memory: opens a new database.
		db.SetMaxOpenConns(1)
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

// Open opens a database named as "driver:dsn", for example
// "sqlite3:perf.db" or "mysql:user@tcp(host)/perf".
func Open(name string) (*DB, error) {
	driver, dsn, ok := strings.Cut(name, ":")
	if !ok || driver == "" {
		return nil, errors.Errorf("database %q: want driver:dsn", name)
	}
	return OpenSQL(driver, dsn)
}

var openHooks = make(map[string]func(*sql.DB) error)

// RegisterOpenHook registers a hook to be called after opening a connection to driverName.
// This is used by the sqlite3 package to register a ConnectHook.
// It must be called from an init function.
func RegisterOpenHook(driverName string, hook func(*sql.DB) error) {
	openHooks[driverName] = hook
}

// createTmpl is the template used to prepare the CREATE statements
// for the database. It is evaluated with . as a map containing one
// entry whose key is the driver name.
var createTmpl = template.Must(template.New("create").Parse(`
CREATE TABLE IF NOT EXISTS Imports (
	ImportID VARCHAR(36) PRIMARY KEY,
	Created BIGINT,
	Label VARCHAR(255)
);
CREATE TABLE IF NOT EXISTS Series (
	ImportID VARCHAR(36),
	Name VARCHAR(255),
	Unit VARCHAR(32),
	Better VARCHAR(8),
	Samples BIGINT,
	Content {{if .sqlite3}}BLOB{{else}}LONGBLOB{{end}},
	PRIMARY KEY (ImportID, Name),
	FOREIGN KEY (ImportID) REFERENCES Imports(ImportID) ON UPDATE CASCADE ON DELETE CASCADE
);
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
			return errors.Wrap(err, "create table")
		}
	}
	return nil
}

// prepareStatements calls db.sql.Prepare on reusable SQL statements.
func (db *DB) prepareStatements() error {
	var err error
	db.insertImport, err = db.sql.Prepare("INSERT INTO Imports(ImportID, Created, Label) VALUES (?, ?, ?)")
	if err != nil {
		return err
	}
	db.insertSeries, err = db.sql.Prepare("INSERT INTO Series(ImportID, Name, Unit, Better, Samples, Content) VALUES (?, ?, ?, ?, ?, ?)")
	if err != nil {
		return err
	}
	return nil
}

// now is time.Now, replaced in tests.
var now = time.Now

// An Import is a set of series stored under one ID.
type Import struct {
	ID      string
	Label   string
	Created time.Time

	db *DB
}

// NewImport records a new import with the given label.
func (db *DB) NewImport(ctx context.Context, label string) (*Import, error) {
	imp := &Import{
		ID:      uuid.New().String(),
		Label:   label,
		Created: now(),
		db:      db,
	}
	if _, err := db.insertImport.ExecContext(ctx, imp.ID, imp.Created.UnixNano(), label); err != nil {
		return nil, err
	}
	return imp, nil
}

// encode returns the blob stored for s.
func encode(s *series.TimeSeries) ([]byte, error) {
	js, err := json.Marshal(seriesfmt.NewRecord("", s))
	if err != nil {
		return nil, err
	}
	return snappy.Encode(nil, js), nil
}

func decode(blob []byte) (*series.TimeSeries, error) {
	js, err := snappy.Decode(nil, blob)
	if err != nil {
		return nil, err
	}
	var rec seriesfmt.Record
	if err := json.Unmarshal(js, &rec); err != nil {
		return nil, err
	}
	return rec.Series()
}

// InsertStore stores every series of st in a single transaction.
func (imp *Import) InsertStore(ctx context.Context, st *series.Store) (err error) {
	tx, err := imp.db.sql.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		} else {
			err = tx.Commit()
		}
	}()
	stmt := tx.StmtContext(ctx, imp.db.insertSeries)
	for _, name := range st.Keys() {
		s, _ := st.Lookup(name)
		blob, err := encode(s)
		if err != nil {
			return errors.Wrapf(err, "series %s", name)
		}
		if _, err := stmt.ExecContext(ctx, imp.ID, name, s.Unit(), s.Better().String(), s.Count(), blob); err != nil {
			return errors.Wrapf(err, "series %s", name)
		}
	}
	return nil
}

// LoadStore reads back the series of the import with the given ID.
func (db *DB) LoadStore(ctx context.Context, id string) (*series.Store, error) {
	var n int
	if err := db.sql.QueryRowContext(ctx, "SELECT COUNT(*) FROM Imports WHERE ImportID = ?", id).Scan(&n); err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, errors.Wrap(ErrNotFound, id)
	}
	rows, err := db.sql.QueryContext(ctx, "SELECT Name, Content FROM Series WHERE ImportID = ? ORDER BY Name", id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	st := series.NewStore()
	for rows.Next() {
		var name string
		var blob []byte
		if err := rows.Scan(&name, &blob); err != nil {
			return nil, err
		}
		s, err := decode(blob)
		if err != nil {
			return nil, errors.Wrapf(err, "series %s", name)
		}
		st.Set(name, s)
	}
	return st, rows.Err()
}

// An ImportInfo summarizes a stored import.
type ImportInfo struct {
	ID      string
	Label   string
	Created time.Time
	Series  int
}

// ListImports returns all imports, newest first.
func (db *DB) ListImports(ctx context.Context) ([]ImportInfo, error) {
	rows, err := db.sql.QueryContext(ctx, `
SELECT i.ImportID, i.Label, i.Created, COUNT(s.Name)
FROM Imports i LEFT JOIN Series s ON s.ImportID = i.ImportID
GROUP BY i.ImportID, i.Label, i.Created
ORDER BY i.Created DESC, i.ImportID`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []ImportInfo
	for rows.Next() {
		var info ImportInfo
		var created int64
		if err := rows.Scan(&info.ID, &info.Label, &created, &info.Series); err != nil {
			return nil, err
		}
		info.Created = time.Unix(0, created)
		out = append(out, info)
	}
	return out, rows.Err()
}

// CountImports returns the number of stored imports.
func (db *DB) CountImports(ctx context.Context) (int, error) {
	var n int
	err := db.sql.QueryRowContext(ctx, "SELECT COUNT(*) FROM Imports").Scan(&n)
	return n, err
}

// DeleteImport removes an import and its series.
func (db *DB) DeleteImport(ctx context.Context, id string) (err error) {
	tx, err := db.sql.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		} else {
			err = tx.Commit()
		}
	}()
	if _, err := tx.ExecContext(ctx, "DELETE FROM Series WHERE ImportID = ?", id); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, "DELETE FROM Imports WHERE ImportID = ?", id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return errors.Wrap(ErrNotFound, id)
	}
	return nil
}

// Close closes the database connections, releasing any open resources.
func (db *DB) Close() error {
	if err := db.insertImport.Close(); err != nil {
		return err
	}
	if err := db.insertSeries.Close(); err != nil {
		return err
	}
	return db.sql.Close()
}
