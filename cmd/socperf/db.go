// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/socperf/socperf/storage/db"
)

func newDBCmd(g *globals) *cobra.Command {
	var dbName string
	cmd := &cobra.Command{
		Use:   "db",
		Short: "Manage imports stored in a database",
		Long: `The db commands list, load and delete the imports stored with --db.

Example:
  socperf db --db sqlite3:perf.db list
  socperf db --db sqlite3:perf.db load -o out/ 1b4e28ba-2fa1-11d2-883f-0016d3cca427`,
	}
	cmd.PersistentFlags().StringVar(&dbName, "db", "sqlite3:socperf.db", "database `driver:dsn`")

	open := func() (*db.DB, error) {
		return db.Open(dbName)
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List stored imports, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := open()
			if err != nil {
				return err
			}
			defer d.Close()
			infos, err := d.ListImports(cmd.Context())
			if err != nil {
				return err
			}
			table := tablewriter.NewWriter(cmd.OutOrStdout())
			table.SetHeader([]string{"ID", "Label", "Created", "Series"})
			table.SetAutoFormatHeaders(false)
			table.SetBorder(false)
			for _, info := range infos {
				table.Append([]string{info.ID, info.Label, humanize.Time(info.Created), humanize.Comma(int64(info.Series))})
			}
			table.Render()
			return nil
		},
	}

	var out outputOptions
	load := &cobra.Command{
		Use:   "load [flags] id",
		Short: "Summarize a stored import",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := open()
			if err != nil {
				return err
			}
			defer d.Close()
			st, err := d.LoadStore(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return out.emit(cmd.Context(), cmd.OutOrStdout(), st, args[0], g.cfg)
		},
	}
	out.addFlags(load)

	del := &cobra.Command{
		Use:   "delete id...",
		Short: "Delete stored imports",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := open()
			if err != nil {
				return err
			}
			defer d.Close()
			for _, id := range args {
				if err := d.DeleteImport(cmd.Context(), id); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", id)
			}
			return nil
		},
	}

	cmd.AddCommand(list, load, del)
	return cmd
}
