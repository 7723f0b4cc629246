// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package chart

import (
	"io"
	"os"
	"strconv"
	"time"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/socperf/socperf/config"
	"github.com/socperf/socperf/series"
)

// xLabels returns the category labels of s: wall clock times for a
// timestamped series, sample positions otherwise.
func xLabels(s *series.TimeSeries) []string {
	ts := s.Timestamps()
	labels := make([]string, len(ts))
	for i, t := range ts {
		if s.Indexed() {
			labels[i] = time.Unix(0, t).UTC().Format("15:04:05.000")
		} else {
			labels[i] = strconv.FormatInt(t, 10)
		}
	}
	return labels
}

func lineData(data []float64) []opts.LineData {
	out := make([]opts.LineData, len(data))
	for i, v := range data {
		out[i] = opts.LineData{Value: v}
	}
	return out
}

// lineChart builds the interactive chart of one series.
func lineChart(name string, s *series.TimeSeries, cfg config.PlotConfig) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: name, Subtitle: s.Unit()}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithXAxisOpts(opts.XAxis{Type: "category", AxisLabel: &opts.AxisLabel{Rotate: 45}}),
		charts.WithYAxisOpts(opts.YAxis{Type: "value", Name: s.Unit()}),
		charts.WithDataZoomOpts(opts.DataZoom{Type: "slider", Start: 0, End: 100}),
		charts.WithInitializationOpts(opts.Initialization{Width: "100%", Height: "400px"}),
	)
	line.SetXAxis(xLabels(s))

	data := s.Data()
	showAvg := cfg.MovingAverageWindow > 1
	if !showAvg || !cfg.HideOriginalSeries {
		line.AddSeries(name, lineData(data),
			charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(cfg.Marker)}),
		)
	}
	if showAvg {
		line.AddSeries("moving average", lineData(MovingAverage(data, cfg.MovingAverageWindow)),
			charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(false), Smooth: opts.Bool(true)}),
		)
	}
	return line
}

// WriteHTML writes a page with one chart per non-empty series of st.
func WriteHTML(w io.Writer, title string, st *series.Store, cfg config.PlotConfig) error {
	page := components.NewPage()
	page.SetPageTitle(title)
	st.Each(func(name string, s *series.TimeSeries) {
		if s.Count() > 0 {
			page.AddCharts(lineChart(name, s, cfg))
		}
	})
	return page.Render(w)
}

// SaveHTML writes the page of WriteHTML to path.
func SaveHTML(path, title string, st *series.Store, cfg config.PlotConfig) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteHTML(f, title, st, cfg); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
