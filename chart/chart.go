// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package chart draws the series of a store as PNG images and as an
// interactive HTML page.
package chart

import (
	"image/color"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"github.com/socperf/socperf/config"
	"github.com/socperf/socperf/series"
)

const (
	pngWidth  = 15 * vg.Inch
	pngHeight = 7 * vg.Inch
)

// MovingAverage returns the trailing mean of data over window samples.
// The first window-1 results average over the samples seen so far. A
// window below 2 returns a copy of data.
func MovingAverage(data []float64, window int) []float64 {
	out := make([]float64, len(data))
	if window < 2 {
		copy(out, data)
		return out
	}
	var sum float64
	for i, v := range data {
		sum += v
		n := i + 1
		if i >= window {
			sum -= data[i-window]
			n = window
		}
		out[i] = sum / float64(n)
	}
	return out
}

// xValues returns the horizontal coordinates of s: seconds since the
// first sample, or sample positions for an unindexed series.
func xValues(s *series.TimeSeries) []float64 {
	ts := s.Timestamps()
	xs := make([]float64, len(ts))
	if !s.Indexed() {
		for i, t := range ts {
			xs[i] = float64(t)
		}
		return xs
	}
	for i, t := range ts {
		xs[i] = float64(t-ts[0]) / 1e9
	}
	return xs
}

func xys(xs, ys []float64) plotter.XYs {
	pts := make(plotter.XYs, len(ys))
	for i := range ys {
		pts[i] = plotter.XY{X: xs[i], Y: ys[i]}
	}
	return pts
}

// newPlot builds the plot of one series.
func newPlot(name string, s *series.TimeSeries, cfg config.PlotConfig) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = name
	p.X.Label.Text = "Time (s)"
	if !s.Indexed() {
		p.X.Label.Text = "Sample"
	}
	p.Y.Label.Text = s.Unit()
	p.Add(plotter.NewGrid())

	xs := xValues(s)
	data := s.Data()
	showAvg := cfg.MovingAverageWindow > 1
	if !showAvg || !cfg.HideOriginalSeries {
		line, err := plotter.NewLine(xys(xs, data))
		if err != nil {
			return nil, err
		}
		line.Color = plotutil.Color(0)
		p.Add(line)
		p.Legend.Add(s.Unit(), line)
		if cfg.Marker {
			sc, err := plotter.NewScatter(xys(xs, data))
			if err != nil {
				return nil, err
			}
			sc.GlyphStyle.Color = plotutil.Color(0)
			sc.GlyphStyle.Radius = vg.Points(1.5)
			p.Add(sc)
		}
	}
	if showAvg {
		avg, err := plotter.NewLine(xys(xs, MovingAverage(data, cfg.MovingAverageWindow)))
		if err != nil {
			return nil, err
		}
		avg.Color = color.NRGBA{0xFF, 0, 0, 0xFF}
		p.Add(avg)
		p.Legend.Add("moving average", avg)
	}
	p.Legend.Top = true
	return p, nil
}

// WritePNG draws s as a PNG image to w.
func WritePNG(w io.Writer, name string, s *series.TimeSeries, cfg config.PlotConfig) error {
	if s.Count() == 0 {
		return errors.Errorf("series %s is empty", name)
	}
	p, err := newPlot(name, s, cfg)
	if err != nil {
		return errors.Wrapf(err, "plotting %s", name)
	}
	wt, err := p.WriterTo(pngWidth, pngHeight, "png")
	if err != nil {
		return err
	}
	_, err = wt.WriteTo(w)
	return err
}

var fileNameReplacer = strings.NewReplacer("/", "_", " ", "_", ":", "_")

// FileName returns the base name of the image file of the named series.
func FileName(name string) string {
	return fileNameReplacer.Replace(name) + ".png"
}

// SavePNGs writes one image per non-empty series of st into dir and
// returns the number of files written.
func SavePNGs(dir string, st *series.Store, cfg config.PlotConfig) (int, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, err
	}
	n := 0
	for _, name := range st.Keys() {
		s, _ := st.Lookup(name)
		if s.Count() == 0 {
			log.Debugf("chart: skipping empty series %s", name)
			continue
		}
		if err := savePNG(filepath.Join(dir, FileName(name)), name, s, cfg); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

func savePNG(path, name string, s *series.TimeSeries, cfg config.PlotConfig) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WritePNG(f, name, s, cfg); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
