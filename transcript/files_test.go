// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package transcript

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFiles(t *testing.T) {
	dir := t.TempDir()
	write := func(name, data string) string {
		p := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(p, []byte(data), 0o644))
		return p
	}
	write("a.log", "TX> RX>\nRX> [1]one\\n\nRX> dangling")
	write("b.log", "two\nthree\n")
	write("skip.txt", "ignored\n")

	f := &Files{Paths: []string{filepath.Join(dir, "*.log")}}
	defer f.Close()

	got := map[string][]string{}
	for f.Next() {
		for f.Scan() {
			got[filepath.Base(f.Path())] = append(got[filepath.Base(f.Path())], f.Line().Text)
		}
	}
	require.NoError(t, f.Err())
	assert.Equal(t, map[string][]string{
		// The dangling fragment is flushed at the end of its own file.
		"a.log": {"one", "dangling"},
		"b.log": {"two", "three"},
	}, got)
}

func TestFilesMissing(t *testing.T) {
	f := &Files{Paths: []string{filepath.Join(t.TempDir(), "nope.log")}}
	assert.False(t, f.Next())
	assert.Error(t, f.Err())
}
