// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/socperf/socperf/chart"
	"github.com/socperf/socperf/config"
	"github.com/socperf/socperf/report"
	"github.com/socperf/socperf/series"
	"github.com/socperf/socperf/seriesfmt"
	"github.com/socperf/socperf/storage/db"
	_ "github.com/socperf/socperf/storage/db/sqlite3"
)

// Names of the files written into an output directory.
const (
	seriesFile  = "series.txt"
	jsonFile    = "series.json"
	summaryFile = "summary.csv"
	pngDir      = "png"
	htmlFile    = "index.html"
)

// outputOptions are the flags shared by the commands that produce a
// store.
type outputOptions struct {
	dir     string
	json    bool
	noPlots bool
	from    string
	to      string
	dbName  string
	label   string
}

func (o *outputOptions) addFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&o.dir, "output", "o", "", "write series, summary and plots into `dir`")
	cmd.Flags().BoolVar(&o.json, "json", false, "also write the series as JSON")
	cmd.Flags().BoolVar(&o.noPlots, "no-plots", false, "do not draw PNG and HTML plots")
	cmd.Flags().StringVar(&o.from, "from", "", "summarize samples at or after `time` (RFC 3339 or Unix ns)")
	cmd.Flags().StringVar(&o.to, "to", "", "summarize samples before `time` (RFC 3339 or Unix ns)")
}

// addStoreFlags adds the flags that save the result in a database.
func (o *outputOptions) addStoreFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.dbName, "db", "", "store the result in database `driver:dsn`")
	cmd.Flags().StringVar(&o.label, "label", "", "label of the stored import")
}

// parseTime parses a window bound. The empty string is 0.
func parseTime(s string) (int64, error) {
	if s == "" {
		return 0, nil
	}
	if ns, err := strconv.ParseInt(s, 10, 64); err == nil {
		return ns, nil
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return 0, errors.Errorf("bad time %q: want RFC 3339 or Unix nanoseconds", s)
	}
	return t.UnixNano(), nil
}

func (o *outputOptions) window() (report.Window, error) {
	var win report.Window
	var err error
	if win.Start, err = parseTime(o.from); err != nil {
		return win, err
	}
	if win.End, err = parseTime(o.to); err != nil {
		return win, err
	}
	if win.End != 0 && win.End <= win.Start {
		return win, errors.New("empty summary window: -to must be after -from")
	}
	return win, nil
}

// emit prints the summary table of st to w and writes whatever else
// the options ask for. title names the page of interactive plots and
// is the default import label.
func (o *outputOptions) emit(ctx context.Context, w io.Writer, st *series.Store, title string, cfg *config.Config) error {
	win, err := o.window()
	if err != nil {
		return err
	}
	if st.Len() == 0 {
		log.Warn("no series found")
	}
	if o.dir != "" {
		if err := o.writeDir(st, title, win, cfg); err != nil {
			return err
		}
	}
	if o.dbName != "" {
		label := o.label
		if label == "" {
			label = title
		}
		id, err := storeImport(ctx, o.dbName, label, st)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "stored import %s\n", id)
	}
	report.WriteTable(w, st, win)
	return nil
}

func (o *outputOptions) writeDir(st *series.Store, title string, win report.Window, cfg *config.Config) error {
	if err := os.MkdirAll(o.dir, 0o755); err != nil {
		return err
	}
	if err := writeFile(filepath.Join(o.dir, seriesFile), func(w io.Writer) error {
		return seriesfmt.NewWriter(w, "").WriteStore(st)
	}); err != nil {
		return err
	}
	if o.json {
		if err := writeFile(filepath.Join(o.dir, jsonFile), func(w io.Writer) error {
			return seriesfmt.WriteJSON(w, st)
		}); err != nil {
			return err
		}
	}
	if err := writeFile(filepath.Join(o.dir, summaryFile), func(w io.Writer) error {
		return report.WriteCSV(w, st, win)
	}); err != nil {
		return err
	}
	if o.noPlots {
		return nil
	}
	n, err := chart.SavePNGs(filepath.Join(o.dir, pngDir), st, cfg.Plot)
	if err != nil {
		return err
	}
	log.Infof("wrote %d plots to %s", n, filepath.Join(o.dir, pngDir))
	return chart.SaveHTML(filepath.Join(o.dir, htmlFile), title, st, cfg.Plot)
}

// writeFile creates path and fills it with write.
func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return errors.Wrapf(err, "writing %s", path)
	}
	return f.Close()
}

// storeImport saves st as a new import and returns its ID.
func storeImport(ctx context.Context, dbName, label string, st *series.Store) (string, error) {
	d, err := db.Open(dbName)
	if err != nil {
		return "", err
	}
	defer d.Close()
	imp, err := d.NewImport(ctx, label)
	if err != nil {
		return "", err
	}
	if err := imp.InsertStore(ctx, st); err != nil {
		return "", err
	}
	return imp.ID, nil
}
