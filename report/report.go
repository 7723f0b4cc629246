// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package report prints summaries of the series of a store.
package report

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"

	"github.com/socperf/socperf/series"
	"github.com/socperf/socperf/units"
)

// A Window selects the samples with timestamps in [Start, End). The
// zero Window selects every sample.
type Window struct {
	Start, End int64
}

// A Row summarizes one series.
type Row struct {
	Name string
	Unit string
	series.Summary
}

// Summarize returns one row per series of st, in name order.
func Summarize(st *series.Store, win Window) []Row {
	rows := make([]Row, 0, st.Len())
	st.Each(func(name string, s *series.TimeSeries) {
		rows = append(rows, Row{
			Name:    name,
			Unit:    s.Unit(),
			Summary: s.Slice(win.Start, win.End).Summarize(),
		})
	})
	return rows
}

// csvHeader is the header of the summary CSV read by the spreadsheet
// templates.
var csvHeader = []string{"Name", "Avg", "Best", "Worst", "Std", "Count"}

// WriteCSV writes the summary of st as CSV. Values of percentage series
// carry a "%" suffix.
func WriteCSV(w io.Writer, st *series.Store, win Window) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, r := range Summarize(st, win) {
		f := func(v float64) string {
			if r.Unit == units.Pct {
				return fmt.Sprintf("%.2f%%", v)
			}
			return fmt.Sprintf("%.2f", v)
		}
		rec := []string{r.Name, f(r.Average), f(r.Best), f(r.Worst), f(r.StdDev), fmt.Sprint(r.Count)}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteTable writes the summary of st as an aligned text table. Unlike
// WriteCSV, it rescales byte rates to a readable prefix.
func WriteTable(w io.Writer, st *series.Store, win Window) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Name", "Unit", "Avg", "Best", "Worst", "Std", "Count"})
	table.SetAutoFormatHeaders(false)
	table.SetBorder(false)
	table.SetColumnAlignment([]int{
		tablewriter.ALIGN_LEFT, tablewriter.ALIGN_LEFT,
		tablewriter.ALIGN_RIGHT, tablewriter.ALIGN_RIGHT, tablewriter.ALIGN_RIGHT,
		tablewriter.ALIGN_RIGHT, tablewriter.ALIGN_RIGHT,
	})
	for _, r := range Summarize(st, win) {
		// Byte rates are shown in the prefix that suits their average.
		f, unit := units.TidyBytes(r.Average, r.Unit)
		table.Append([]string{
			r.Name,
			unit,
			num(r.Average * f),
			num(r.Best * f),
			num(r.Worst * f),
			num(r.StdDev * f),
			humanize.Comma(int64(r.Count)),
		})
	}
	table.Render()
}

func num(v float64) string {
	return humanize.FormatFloat("#,###.##", v)
}
