// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeTemp(t *testing.T, name, data string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
	return path
}

const transcript = "10:00:00 TX> start RX>\n" +
	"10:00:01 RX> [1000000]BPU model[resnet50] fps[30]\n" +
	"10:00:02 RX> read_bw[100].write_bw[200]\n"

var storedRe = regexp.MustCompile(`stored import (\S+)`)

func TestImportAndShow(t *testing.T) {
	logPath := writeTemp(t, "console.log", transcript)
	dir := filepath.Join(t.TempDir(), "out")
	dbName := "sqlite3:" + filepath.Join(t.TempDir(), "perf.db")

	out, err := run(t, "import", "--no-plots", "--json", "-o", dir, "--db", dbName, "--label", "nightly", logPath)
	require.NoError(t, err, out)
	assert.Contains(t, out, "bpu.0.resnet50.fps")
	for _, f := range []string{seriesFile, jsonFile, summaryFile} {
		assert.FileExists(t, filepath.Join(dir, f))
	}
	assert.NoDirExists(t, filepath.Join(dir, pngDir))

	m := storedRe.FindStringSubmatch(out)
	require.NotNil(t, m, out)
	id := m[1]

	for _, f := range []string{seriesFile, jsonFile} {
		out, err = run(t, "show", filepath.Join(dir, f))
		require.NoError(t, err, out)
		assert.Contains(t, out, "bpu.0.resnet50.fps", f)
	}

	out, err = run(t, "db", "--db", dbName, "list")
	require.NoError(t, err, out)
	assert.Contains(t, out, id)
	assert.Contains(t, out, "nightly")

	out, err = run(t, "db", "--db", dbName, "load", id)
	require.NoError(t, err, out)
	assert.Contains(t, out, "bpu.0.resnet50.fps")

	out, err = run(t, "db", "--db", dbName, "delete", id)
	require.NoError(t, err, out)
	_, err = run(t, "db", "--db", dbName, "load", id)
	assert.Error(t, err)
}

func TestImportMissing(t *testing.T) {
	_, err := run(t, "import", filepath.Join(t.TempDir(), "missing.log"))
	assert.Error(t, err)
}

func TestCSVPlots(t *testing.T) {
	path := writeTemp(t, "soc.ppmf.csv", "time,ddr_rd,ddr_wr\n0,100,50\n500,120,60\n1000,90,70\n")
	dir := filepath.Join(t.TempDir(), "out")
	out, err := run(t, "csv", "-o", dir, path)
	require.NoError(t, err, out)
	assert.Contains(t, out, "soc.ddr_rd")
	assert.FileExists(t, filepath.Join(dir, pngDir, "soc.ddr_rd.png"))
	assert.FileExists(t, filepath.Join(dir, htmlFile))
}

func TestBW(t *testing.T) {
	path := writeTemp(t, "bw.csv", "1.0,64,MB,cas_count_read,1000000000\n1.0,16,MB,cas_count_write,1000000000\n")
	out, err := run(t, "bw", "--type", "perf", "--unit", "MB", path)
	require.NoError(t, err, out)
	assert.Contains(t, out, "bw.read")
	assert.Contains(t, out, "bw.write")

	_, err = run(t, "bw", "--type", "zip", path)
	assert.Error(t, err)
}

func TestParseTime(t *testing.T) {
	ns, err := parseTime("1700000000000000000")
	require.NoError(t, err)
	assert.Equal(t, int64(1700000000000000000), ns)

	ns, err = parseTime("2023-11-14T22:13:20Z")
	require.NoError(t, err)
	assert.Equal(t, int64(1700000000000000000), ns)

	ns, err = parseTime("")
	require.NoError(t, err)
	assert.Zero(t, ns)

	_, err = parseTime("yesterday")
	assert.Error(t, err)

	o := outputOptions{from: "20", to: "10"}
	_, err = o.window()
	assert.Error(t, err)
}
