// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/socperf/socperf/config"
	"github.com/socperf/socperf/internal/logging"
)

// globals holds the state shared by all subcommands.
type globals struct {
	configPath string
	debug      bool

	cfg    *config.Config
	logger io.Closer
}

// setup loads the configuration and configures logging.
func (g *globals) setup() error {
	g.cfg = config.Default()
	if g.configPath != "" {
		cfg, err := config.Load(g.configPath)
		if err != nil {
			return err
		}
		g.cfg = cfg
	}
	logger, err := logging.Setup(g.cfg.Log, g.debug)
	if err != nil {
		return err
	}
	g.logger = logger
	return nil
}

func (g *globals) close() error {
	if g.logger == nil {
		return nil
	}
	return g.logger.Close()
}

func newRootCmd() *cobra.Command {
	g := new(globals)
	root := &cobra.Command{
		Use:   "socperf",
		Short: "Extract and summarize SoC performance series",
		Long: `socperf reads the console transcripts of SoC scenario tests and
extracts the performance figures printed by the bandwidth monitors,
perf, mpstat and the accelerator test programs into time series.

Commands:
  import   Import transcripts and derive aggregate series
  show     Summarize previously written series files
  csv      Import PPMF bandwidth CSV files
  bw       Decode a binary or perf bandwidth dump
  db       Manage imports stored in a database`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return g.setup()
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return g.close()
		},
	}
	root.PersistentFlags().StringVarP(&g.configPath, "config", "c", "", "YAML configuration `file`")
	root.PersistentFlags().BoolVar(&g.debug, "debug", false, "enable debug logging")

	root.AddCommand(
		newImportCmd(g),
		newShowCmd(g),
		newCSVCmd(g),
		newBWCmd(g),
		newDBCmd(g),
	)
	return root
}
