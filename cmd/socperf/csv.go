// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/socperf/socperf/csvimport"
)

func newCSVCmd(g *globals) *cobra.Command {
	var (
		out    outputOptions
		offset time.Duration
	)
	cmd := &cobra.Command{
		Use:   "csv [flags] file.csv...",
		Short: "Import PPMF bandwidth CSV files",
		Long: `Csv imports the bandwidth CSV files written by the PPMF tool. The first
column is a timestamp in milliseconds; every other column becomes a
series named after the file and the column, in MB/s.

Example:
  socperf csv --offset 8h ddr.ppmf.csv`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			imp := csvimport.NewImporter(offset)
			for _, path := range args {
				if err := imp.ImportFile(path); err != nil {
					return err
				}
			}
			return out.emit(cmd.Context(), cmd.OutOrStdout(), imp.Store(), filepath.Base(args[0]), g.cfg)
		},
	}
	out.addFlags(cmd)
	out.addStoreFlags(cmd)
	cmd.Flags().DurationVar(&offset, "offset", 0, "add `duration` to every timestamp")
	return cmd
}
