// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package db_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/socperf/socperf/series"
	. "github.com/socperf/socperf/storage/db"
	"github.com/socperf/socperf/storage/db/dbtest"
)

func testStore(t *testing.T) *series.Store {
	t.Helper()
	st := series.NewStore()
	bw, err := series.FromSamples([]int64{1700000000123456789, 1700000001123456789}, []float64{1.5, 2.25}, "MB/s", series.Higher)
	require.NoError(t, err)
	st.Set("ddr.monitor.sum_read_bw", bw)
	cpu, err := series.FromSamples(nil, []float64{40, 60}, "%", series.Lower)
	require.NoError(t, err)
	st.Set("a720.PNC.cpu_utilization", cpu)
	return st
}

func TestEncode(t *testing.T) {
	s, _ := testStore(t).Lookup("ddr.monitor.sum_read_bw")
	blob, err := Encode(s)
	require.NoError(t, err)
	got, err := Decode(blob)
	require.NoError(t, err)
	assert.Equal(t, s.RawTimestamps(), got.RawTimestamps())
	assert.Equal(t, s.Data(), got.Data())
	assert.Equal(t, s.Unit(), got.Unit())

	_, err = Decode([]byte("not snappy"))
	assert.Error(t, err)
}

func TestStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	d := dbtest.NewDB(t)

	imp, err := d.NewImport(ctx, "run1")
	require.NoError(t, err)
	_, err = uuid.Parse(imp.ID)
	assert.NoError(t, err)

	st := testStore(t)
	require.NoError(t, imp.InsertStore(ctx, st))

	got, err := d.LoadStore(ctx, imp.ID)
	require.NoError(t, err)
	require.Equal(t, st.Keys(), got.Keys())
	st.Each(func(name string, want *series.TimeSeries) {
		s, _ := got.Lookup(name)
		assert.Equal(t, want.Unit(), s.Unit(), name)
		assert.Equal(t, want.Better(), s.Better(), name)
		assert.Equal(t, want.RawTimestamps(), s.RawTimestamps(), name)
		assert.Equal(t, want.Data(), s.Data(), name)
	})

	// Inserting the same names twice fails and rolls back.
	err = imp.InsertStore(ctx, st)
	assert.Error(t, err)
	got, err = d.LoadStore(ctx, imp.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Len())
}

func TestListAndDelete(t *testing.T) {
	ctx := context.Background()
	d := dbtest.NewDB(t)
	defer SetNow(time.Time{})

	SetNow(time.Unix(100, 0))
	a, err := d.NewImport(ctx, "a")
	require.NoError(t, err)
	require.NoError(t, a.InsertStore(ctx, testStore(t)))

	SetNow(time.Unix(200, 0))
	b, err := d.NewImport(ctx, "b")
	require.NoError(t, err)

	infos, err := d.ListImports(ctx)
	require.NoError(t, err)
	require.Len(t, infos, 2)
	assert.Equal(t, ImportInfo{ID: b.ID, Label: "b", Created: time.Unix(200, 0), Series: 0}, infos[0])
	assert.Equal(t, "a", infos[1].Label)
	assert.Equal(t, 2, infos[1].Series)

	require.NoError(t, d.DeleteImport(ctx, a.ID))
	n, err := d.CountImports(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	_, err = d.LoadStore(ctx, a.ID)
	assert.True(t, errors.Is(err, ErrNotFound), "got %v", err)
	assert.True(t, errors.Is(d.DeleteImport(ctx, a.ID), ErrNotFound))
}

func TestOpen(t *testing.T) {
	d, err := Open("sqlite3::memory:")
	require.NoError(t, err)
	require.NoError(t, d.Close())

	_, err = Open("nodriver")
	assert.Error(t, err)
	_, err = Open("nosuchdriver:x")
	assert.Error(t, err)
}
