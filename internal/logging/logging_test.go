// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package logging

import (
	"os"
	"path/filepath"
	"testing"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/socperf/socperf/config"
)

func TestSetupLevel(t *testing.T) {
	defer log.SetOutput(os.Stderr)

	c, err := Setup(config.LogConfig{Level: "warn"}, false)
	require.NoError(t, err)
	assert.NoError(t, c.Close())
	assert.Equal(t, log.WarnLevel, log.GetLevel())

	_, err = Setup(config.LogConfig{Level: "warn"}, true)
	require.NoError(t, err)
	assert.Equal(t, log.DebugLevel, log.GetLevel())

	_, err = Setup(config.LogConfig{Level: "chatty"}, false)
	assert.Error(t, err)
}

func TestSetupFile(t *testing.T) {
	defer log.SetOutput(os.Stderr)

	path := filepath.Join(t.TempDir(), "logs", "socperf.log")
	c, err := Setup(config.LogConfig{Level: "info", File: path, MaxSizeMB: 1}, false)
	require.NoError(t, err)
	log.Info("hello from the importer")
	require.NoError(t, c.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "hello from the importer")
}
