// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"path/filepath"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/socperf/socperf/aggregate"
	"github.com/socperf/socperf/scenario"
)

func newImportCmd(g *globals) *cobra.Command {
	var (
		out         outputOptions
		offset      time.Duration
		noAggregate bool
	)
	cmd := &cobra.Command{
		Use:   "import [flags] transcript...",
		Short: "Import transcripts and derive aggregate series",
		Long: `Import reads one or more scenario test transcripts, which may be given
as glob patterns, extracts their performance series and derives the
aggregate series (bus totals, DDR sums, CPU group utilization).

A transcript that cannot be imported is reported and skipped; the
series of the others are still written, but the command fails.

Example:
  socperf import -o out/ console-*.log
  socperf import --db sqlite3:perf.db --label nightly console.log`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			imp := scenario.NewImporter(g.cfg, scenario.Options{Offset: offset})
			importErr := imp.ImportFiles(args)
			st := imp.Store()
			if importErr != nil && st.Len() == 0 {
				return importErr
			}

			stats := imp.Stats()
			log.WithFields(log.Fields{
				"files":   stats.Files,
				"lines":   stats.Lines,
				"matched": stats.Matched,
				"failed":  stats.Failed,
				"series":  st.Len(),
			}).Info("import done")
			if errs := imp.LineErrors(); len(errs) > 0 {
				fmt.Fprintf(cmd.ErrOrStderr(), "%d line(s) could not be parsed:\n", len(errs))
				for _, le := range errs {
					fmt.Fprintf(cmd.ErrOrStderr(), "\t%v\n", le)
				}
			}

			if !noAggregate {
				aggregate.Run(st, g.cfg)
			}
			title := filepath.Base(args[0])
			if err := out.emit(cmd.Context(), cmd.OutOrStdout(), st, title, g.cfg); err != nil {
				return err
			}
			return importErr
		},
	}
	out.addFlags(cmd)
	out.addStoreFlags(cmd)
	cmd.Flags().DurationVar(&offset, "offset", 0, "add `duration` to every timestamp")
	cmd.Flags().BoolVar(&noAggregate, "no-aggregate", false, "skip the derived series")
	return cmd
}
