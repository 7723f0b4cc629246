// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package csvimport

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/socperf/socperf/series"
	"github.com/socperf/socperf/units"
)

const ppmf = `time,ddr_rd,ddr_wr
0,100,50
500,120.5,
1000,90,70
`

func TestImport(t *testing.T) {
	imp := NewImporter(2 * time.Second)
	require.NoError(t, imp.Import(strings.NewReader(ppmf), "/logs/run1.ppmf.csv"))

	st := imp.Store()
	require.Equal(t, []string{"run1.ddr_rd", "run1.ddr_wr"}, st.Keys())

	rd, _ := st.Lookup("run1.ddr_rd")
	assert.Equal(t, []int64{2e9, 2.5e9, 3e9}, rd.RawTimestamps())
	assert.Equal(t, []float64{100, 120.5, 90}, rd.Data())
	assert.Equal(t, units.MBps, rd.Unit())
	assert.Equal(t, series.Higher, rd.Better())

	wr, _ := st.Lookup("run1.ddr_wr")
	assert.True(t, math.IsNaN(wr.Data()[1]))
}

func TestImportFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "soc.csv")
	require.NoError(t, os.WriteFile(path, []byte(ppmf), 0o644))

	imp := NewImporter(0)
	require.NoError(t, imp.ImportFile(path))
	assert.True(t, imp.Store().Has("soc.ddr_rd"))

	assert.Error(t, imp.ImportFile(filepath.Join(t.TempDir(), "missing.csv")))
}

func TestImportErrors(t *testing.T) {
	imp := NewImporter(0)
	err := imp.Import(strings.NewReader("time\n0\n"), "a.csv")
	assert.True(t, errors.Is(err, ErrTooFewColumns))

	err = imp.Import(strings.NewReader(""), "a.csv")
	assert.True(t, errors.Is(err, ErrTooFewColumns))

	err = imp.Import(strings.NewReader("time,x\nnow,1\n"), "a.csv")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "a.csv:2")

	err = imp.Import(strings.NewReader("time,x\n0,1,2\n"), "a.csv")
	assert.Error(t, err)
}

func TestPrefix(t *testing.T) {
	assert.Equal(t, "run1", Prefix("/a/b/run1.ppmf.csv"))
	assert.Equal(t, "noext", Prefix("noext"))
}
