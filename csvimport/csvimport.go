// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package csvimport imports the CSV files written by the PPMF
// bandwidth sampler.
//
// The first column holds the sample time in milliseconds. Every other
// column is one bandwidth series in MB/s, named after the file and the
// column header.
package csvimport

import (
	"encoding/csv"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/socperf/socperf/series"
	"github.com/socperf/socperf/units"
)

// ErrTooFewColumns is returned for a file without any data column.
var ErrTooFewColumns = errors.New("CSV needs a timestamp column and at least one data column")

// An Importer accumulates the series of several CSV files.
type Importer struct {
	// Offset is added to every timestamp.
	Offset time.Duration

	store *series.Store
}

// NewImporter returns an Importer with an empty store.
func NewImporter(offset time.Duration) *Importer {
	return &Importer{Offset: offset, store: series.NewStore()}
}

// Store returns the accumulated series.
func (imp *Importer) Store() *series.Store { return imp.store }

// ImportFile imports the CSV file at path.
func (imp *Importer) ImportFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return imp.Import(f, path)
}

// Prefix returns the series name prefix for the file at path: its base
// name up to the first dot.
func Prefix(path string) string {
	base := filepath.Base(path)
	if i := strings.IndexByte(base, '.'); i >= 0 {
		base = base[:i]
	}
	return base
}

// Import reads CSV data from r. name supplies the series prefix, see
// Prefix. Series of the same name are replaced.
func (imp *Importer) Import(r io.Reader, name string) error {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	header, err := cr.Read()
	if err == io.EOF {
		return errors.Wrap(ErrTooFewColumns, name)
	}
	if err != nil {
		return errors.Wrap(err, name)
	}
	if len(header) < 2 {
		return errors.Wrap(ErrTooFewColumns, name)
	}

	var ts []int64
	cols := make([][]float64, len(header)-1)
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return errors.Wrap(err, name)
		}
		line, _ := cr.FieldPos(0)
		ms, err := strconv.ParseFloat(strings.TrimSpace(rec[0]), 64)
		if err != nil {
			return errors.Wrapf(err, "%s:%d: timestamp", name, line)
		}
		ts = append(ts, int64(math.Round(ms*float64(time.Millisecond)))+int64(imp.Offset))
		for i := range cols {
			cols[i] = append(cols[i], cell(rec[i+1]))
		}
	}

	prefix := Prefix(name)
	for i, col := range cols {
		key := prefix + "." + strings.TrimSpace(header[i+1])
		s, err := series.FromSamples(ts, col, units.MBps, series.Higher)
		if err != nil {
			return err
		}
		imp.store.Set(key, s)
	}
	log.Debugf("csvimport: %s: %d series of %d samples", name, len(cols), len(ts))
	return nil
}

// cell parses one data cell. Empty or malformed cells become NaN.
func cell(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return math.NaN()
	}
	return v
}
