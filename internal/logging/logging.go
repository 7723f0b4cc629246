// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package logging configures the process-wide logrus logger.
package logging

import (
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/socperf/socperf/config"
)

const timestampFormat = "2006-01-02 15:04:05"

// Setup applies cfg to the standard logrus logger. Output goes to
// stderr unless cfg.File is set, in which case it goes to a rotated
// file. debug forces the debug level.
//
// The returned closer releases the log file, if any.
func Setup(cfg config.LogConfig, debug bool) (io.Closer, error) {
	customFormatter := new(log.TextFormatter)
	customFormatter.TimestampFormat = timestampFormat
	customFormatter.FullTimestamp = true
	log.SetFormatter(customFormatter)

	level := log.InfoLevel
	if cfg.Level != "" {
		l, err := log.ParseLevel(cfg.Level)
		if err != nil {
			return nil, errors.Wrap(err, "log level")
		}
		level = l
	}
	if debug {
		level = log.DebugLevel
	}
	log.SetLevel(level)

	if cfg.File == "" {
		log.SetOutput(os.Stderr)
		return nopCloser{}, nil
	}
	if dir := filepath.Dir(cfg.File); dir != "" {
		if err := os.MkdirAll(dir, 0o764); err != nil {
			return nil, errors.Wrapf(err, "failed to make log directory %s", dir)
		}
	}
	lj := &lumberjack.Logger{
		Filename:   cfg.File,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: 10,
		MaxAge:     7, //days
	}
	log.SetOutput(lj)
	return lj, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
