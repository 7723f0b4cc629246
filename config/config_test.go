// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package config

import (
	"go/ast"
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "socperf.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, 2, cfg.Importer.MpstatWarmup)
	assert.True(t, cfg.Importer.Monitor.WithChannelBW)
	assert.False(t, cfg.Importer.Monitor.WithLimitReq)
	assert.Equal(t, []string{"CLPEAK", "PNC"}, cfg.Importer.Linux.CPUs.Names())
	assert.Equal(t, CPUGroup{8, 9, 10, 11}, cfg.Importer.Linux.CPUs["CLPEAK"])

	// Default must hand out independent values.
	Default().Importer.Linux.CPUs["PNC"] = nil
	assert.Len(t, Default().Importer.Linux.CPUs["PNC"], 8)
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
bus:
  beat_size: 64
importer:
  print_log: true
  perf:
    with_raw_counter: true
  linux:
    cpus:
      BIG: "4|5|6|7"
      LITTLE: [0, 1]
log:
  level: debug
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 64.0, cfg.Bus.BeatSize)
	assert.True(t, cfg.Importer.PrintLog)
	assert.True(t, cfg.Importer.Perf.WithRawCounter)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, CPUGroups{"BIG": {4, 5, 6, 7}, "LITTLE": {0, 1}}, cfg.Importer.Linux.CPUs)

	// Unset fields keep their defaults.
	assert.Equal(t, 2, cfg.Importer.MpstatWarmup)
	assert.True(t, cfg.Importer.Monitor.WithChannelBW)
	assert.Equal(t, 64, cfg.Log.MaxSizeMB)
}

func TestLoadEmpty(t *testing.T) {
	cfg, err := Load(writeConfig(t, ""))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadErrors(t *testing.T) {
	for name, body := range map[string]string{
		"unknown field": "bus: {width: 3}\n",
		"bad core id":   "importer: {linux: {cpus: {PNC: \"0|x\"}}}\n",
		"bad group":     "importer: {linux: {cpus: {PNC: {a: 1}}}}\n",
		"negative":      "importer: {mpstat_warmup: -1}\n",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeConfig(t, body))
			assert.Error(t, err)
		})
	}

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestParseCPUGroup(t *testing.T) {
	g, err := ParseCPUGroup("0| 1 |2|")
	require.NoError(t, err)
	assert.Equal(t, CPUGroup{0, 1, 2}, g)
}

// Every exported identifier of config.go carries a doc comment.
func TestExportedDocs(t *testing.T) {
	f, err := parser.ParseFile(token.NewFileSet(), "config.go", nil, parser.ParseComments)
	require.NoError(t, err)
	for _, decl := range f.Decls {
		switch d := decl.(type) {
		case *ast.GenDecl:
			for _, spec := range d.Specs {
				ts, ok := spec.(*ast.TypeSpec)
				if !ok || !ts.Name.IsExported() {
					continue
				}
				assert.True(t, d.Doc != nil || ts.Doc != nil, "type %s has no doc comment", ts.Name)
			}
		case *ast.FuncDecl:
			if d.Name.IsExported() {
				assert.NotNil(t, d.Doc, "func %s has no doc comment", d.Name)
			}
		}
	}
}
