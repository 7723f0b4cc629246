// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/socperf/socperf/bwdump"
)

func newBWCmd(g *globals) *cobra.Command {
	var (
		out  outputOptions
		kind string
		opts bwdump.Options
	)
	cmd := &cobra.Command{
		Use:   "bw [flags] dump",
		Short: "Decode a binary or perf bandwidth dump",
		Long: `Bw decodes a DDR bandwidth dump into a read and a write series.

With --type chip (the default) the dump is the binary file written by
the on-chip bandwidth counter. A dump recorded without header needs
--no-header together with --interval-ms and --start-ns. With --type
perf the dump is the CSV written by the perf bandwidth script.

Example:
  socperf bw --unit MB bw.bin
  socperf bw --type perf -o out/ bw.csv`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			var d *bwdump.Dump
			switch kind {
			case "chip":
				d, err = bwdump.ReadChip(f, opts)
			case "perf":
				d, err = bwdump.ReadPerf(f, opts)
			default:
				return errors.Errorf("unknown dump type %q: want chip or perf", kind)
			}
			if err != nil {
				return errors.Wrap(err, args[0])
			}
			if kind == "chip" {
				h := d.Header
				log.WithFields(log.Fields{
					"start":    time.Unix(0, int64(h.StartNs)).UTC().Format(time.RFC3339Nano),
					"interval": humanize.Comma(int64(h.IntervalMs)) + "ms",
					"samples":  humanize.Comma(int64(h.Count)),
				}).Info("decoded chip dump")
			}
			return out.emit(cmd.Context(), cmd.OutOrStdout(), d.Store(), filepath.Base(args[0]), g.cfg)
		},
	}
	out.addFlags(cmd)
	out.addStoreFlags(cmd)
	cmd.Flags().StringVarP(&kind, "type", "t", "chip", "dump `type`: chip or perf")
	cmd.Flags().StringVarP(&opts.Unit, "unit", "u", "GB", "byte `prefix` of the bandwidth, such as MB for MB/s")
	cmd.Flags().BoolVar(&opts.NoHeader, "no-header", false, "the chip dump has no header")
	cmd.Flags().Uint64Var(&opts.IntervalMs, "interval-ms", 1, "sampling interval of a dump without header")
	cmd.Flags().Uint64Var(&opts.StartNs, "start-ns", 0, "start time of a dump without header, in Unix ns")
	return cmd
}
