// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/socperf/socperf/aggregate"
	"github.com/socperf/socperf/series"
	"github.com/socperf/socperf/seriesfmt"
)

// readSeriesFile reads a series file in the text format, or in JSON if
// its name ends in ".json".
func readSeriesFile(path string) (*series.Store, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	if strings.EqualFold(filepath.Ext(path), ".json") {
		st, err := seriesfmt.ReadJSON(f)
		return st, errors.Wrap(err, path)
	}
	return seriesfmt.ReadStore(f, path)
}

func newShowCmd(g *globals) *cobra.Command {
	var (
		out    outputOptions
		prefix bool
		derive bool
	)
	cmd := &cobra.Command{
		Use:   "show [flags] series.txt...",
		Short: "Summarize previously written series files",
		Long: `Show reads series files written by import (text or JSON) and prints
the summary of every series. When several files are given, a series
in a later file replaces the one of the same name in an earlier file,
unless -prefix is set.

Example:
  socperf show out/series.txt
  socperf show --prefix --from 2024-03-01T10:00:00Z run1.txt run2.txt`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st := series.NewStore()
			for _, path := range args {
				one, err := readSeriesFile(path)
				if err != nil {
					return err
				}
				p := ""
				if prefix {
					p = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
				}
				st.Merge(p, one)
			}
			if derive {
				aggregate.Run(st, g.cfg)
			}
			return out.emit(cmd.Context(), cmd.OutOrStdout(), st, filepath.Base(args[0]), g.cfg)
		},
	}
	out.addFlags(cmd)
	out.addStoreFlags(cmd)
	cmd.Flags().BoolVar(&prefix, "prefix", false, "prefix series names with the base name of their file")
	cmd.Flags().BoolVar(&derive, "aggregate", false, "derive the aggregate series")
	return cmd
}
