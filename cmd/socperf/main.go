// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Socperf turns the transcripts of SoC performance tests into time
// series, derives aggregate series from them and summarizes, plots or
// stores the result.
//
// Usage:
//
//	socperf import [flags] transcript...
//	socperf show [flags] series.txt...
//	socperf csv [flags] file.csv...
//	socperf bw [flags] dump
//	socperf db list|load|delete
//
// Every command reads an optional YAML configuration given with
// -config. See "socperf help <command>" for the flags of a command.
package main

import (
	"os"

	log "github.com/sirupsen/logrus"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		log.Error(err)
		os.Exit(1)
	}
}
