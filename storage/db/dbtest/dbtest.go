// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package dbtest opens throwaway databases for tests.
package dbtest

import (
	"context"
	"flag"
	"testing"

	_ "github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/require"

	"github.com/socperf/socperf/storage/db"
	_ "github.com/socperf/socperf/storage/db/sqlite3"
)

var mysqlDSN = flag.String("mysql", "", "run tests against this empty MySQL database instead of in-memory SQLite")

// NewDB makes a connection to a testing database, either in-memory
// sqlite3 or MySQL depending on the -mysql flag. The database is
// closed when the test ends.
func NewDB(t *testing.T) *db.DB {
	t.Helper()
	driverName, dataSourceName := "sqlite3", ":memory:"
	if *mysqlDSN != "" {
		driverName, dataSourceName = "mysql", *mysqlDSN
	}
	d, err := db.OpenSQL(driverName, dataSourceName)
	require.NoError(t, err, "open database")
	t.Cleanup(func() { d.Close() })

	// Make sure the database really is empty.
	n, err := d.CountImports(context.Background())
	require.NoError(t, err)
	require.Zero(t, n, "found rows in Imports")
	return d
}
