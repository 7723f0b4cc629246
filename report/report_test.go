// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package report

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/socperf/socperf/series"
	"github.com/socperf/socperf/units"
)

func testStore(t *testing.T) *series.Store {
	t.Helper()
	st := series.NewStore()
	bw, err := series.FromSamples([]int64{1, 2, 3}, []float64{1, 2, 3}, units.MBps, series.Higher)
	require.NoError(t, err)
	st.Set("ddr.monitor.sum_read_bw", bw)
	cpu, err := series.FromSamples(nil, []float64{40, 60}, units.Pct, series.Lower)
	require.NoError(t, err)
	st.Set("a720.PNC.cpu_utilization", cpu)
	return st
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, testStore(t), Window{}))
	want := `Name,Avg,Best,Worst,Std,Count
a720.PNC.cpu_utilization,50.00%,40.00%,60.00%,10.00%,2
ddr.monitor.sum_read_bw,2.00,3.00,1.00,0.82,3
`
	assert.Equal(t, want, buf.String())
}

func TestWindow(t *testing.T) {
	rows := Summarize(testStore(t), Window{Start: 2, End: 4})
	require.Len(t, rows, 2)

	// Unindexed series are selected by position; nothing lies in
	// [2, 4), so the whole series is summarized.
	assert.Equal(t, 2, rows[0].Count)
	assert.Equal(t, 50.0, rows[0].Average)

	assert.Equal(t, "ddr.monitor.sum_read_bw", rows[1].Name)
	assert.Equal(t, 2, rows[1].Count)
	assert.Equal(t, 2.5, rows[1].Average)
	assert.Equal(t, 2.0, rows[1].Worst)
}

func TestWriteTable(t *testing.T) {
	st := testStore(t)
	big, err := series.FromSamples(nil, []float64{1234.5}, units.FPS, series.Higher)
	require.NoError(t, err)
	st.Set("big", big)
	kb, err := series.FromSamples(nil, []float64{1536 * 1024, 512 * 1024}, "KB/s", series.Higher)
	require.NoError(t, err)
	st.Set("kb", kb)

	var buf bytes.Buffer
	WriteTable(&buf, st, Window{})
	out := buf.String()
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 6, out) // header, separator, four rows
	assert.Contains(t, lines[0], "Name")
	assert.Contains(t, lines[0], "Count")
	assert.Contains(t, out, "1,234.50")
	assert.Contains(t, out, "a720.PNC.cpu_utilization")

	// 1024 MB/s on average: shown in GB/s.
	kbRow := lines[5]
	assert.True(t, strings.HasPrefix(strings.TrimSpace(kbRow), "kb"), kbRow)
	assert.Contains(t, kbRow, "GB/s")
	assert.Contains(t, kbRow, "1.00")
	assert.Contains(t, kbRow, "1.50")
	assert.Contains(t, kbRow, "0.50")
	assert.NotContains(t, kbRow, "KB/s")
}
