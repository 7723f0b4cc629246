// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package chart

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/socperf/socperf/config"
	"github.com/socperf/socperf/series"
)

var pngMagic = []byte("\x89PNG\r\n\x1a\n")

func testStore(t *testing.T) *series.Store {
	t.Helper()
	st := series.NewStore()
	bw, err := series.FromSamples([]int64{1e9, 2e9, 3e9, 4e9}, []float64{10, 20, 30, 40}, "MB/s", series.Higher)
	require.NoError(t, err)
	st.Set("ddr.monitor.sum_read_bw", bw)
	fps, err := series.FromSamples(nil, []float64{30, 29.5}, "fps", series.Higher)
	require.NoError(t, err)
	st.Set("bpu.0.yolo.fps", fps)
	st.Set("empty", series.New("fps", series.Higher))
	return st
}

func TestMovingAverage(t *testing.T) {
	assert.Equal(t, []float64{2, 3, 6, 9}, MovingAverage([]float64{2, 4, 8, 10}, 2))
	assert.Equal(t, []float64{3, 6, 9}, MovingAverage([]float64{3, 9, 15}, 5))
	assert.Equal(t, []float64{1, 2}, MovingAverage([]float64{1, 2}, 0))
	assert.Empty(t, MovingAverage(nil, 3))
}

func TestXValues(t *testing.T) {
	st := testStore(t)
	s, _ := st.Lookup("ddr.monitor.sum_read_bw")
	assert.Equal(t, []float64{0, 1, 2, 3}, xValues(s))
	s, _ = st.Lookup("bpu.0.yolo.fps")
	assert.Equal(t, []float64{0, 1}, xValues(s))
	assert.Equal(t, []string{"0", "1"}, xLabels(s))
}

func TestWritePNG(t *testing.T) {
	st := testStore(t)
	s, _ := st.Lookup("ddr.monitor.sum_read_bw")
	for name, cfg := range map[string]config.PlotConfig{
		"plain":   {},
		"marker":  {Marker: true},
		"average": {MovingAverageWindow: 2},
		"hidden":  {MovingAverageWindow: 2, HideOriginalSeries: true},
	} {
		t.Run(name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, WritePNG(&buf, "ddr.monitor.sum_read_bw", s, cfg))
			assert.True(t, bytes.HasPrefix(buf.Bytes(), pngMagic))
		})
	}

	e, _ := st.Lookup("empty")
	assert.Error(t, WritePNG(&bytes.Buffer{}, "empty", e, config.PlotConfig{}))
}

func TestSavePNGs(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "png")
	n, err := SavePNGs(dir, testStore(t), config.PlotConfig{})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	data, err := os.ReadFile(filepath.Join(dir, "bpu.0.yolo.fps.png"))
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, pngMagic))
	assert.NoFileExists(t, filepath.Join(dir, "empty.png"))
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "a720.PNC.monitor.total_bw(r+w).png", FileName("a720.PNC.monitor.total_bw(r+w)"))
	assert.Equal(t, "a_b_c.png", FileName("a/b c"))
}

func TestWriteHTML(t *testing.T) {
	var buf bytes.Buffer
	cfg := config.PlotConfig{MovingAverageWindow: 3}
	require.NoError(t, WriteHTML(&buf, "run1", testStore(t), cfg))
	out := buf.String()
	assert.Contains(t, out, "<title>run1</title>")
	assert.Contains(t, out, "ddr.monitor.sum_read_bw")
	assert.Contains(t, out, "bpu.0.yolo.fps")
	assert.Contains(t, out, "moving average")

	path := filepath.Join(t.TempDir(), "index.html")
	require.NoError(t, SaveHTML(path, "run1", testStore(t), config.PlotConfig{}))
	assert.FileExists(t, path)
}
