// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package scenario extracts time series from the transcripts of SoC
// scenario tests.
//
// Every logical line of a transcript is offered to an ordered list of
// recognizers. The first recognizer whose pattern matches consumes the
// line; a few recognizers let later ones see the same line. Recognizers
// share a small amount of state, such as the current BPU model or the
// open bandwidth-monitor block, which is scoped to one transcript.
// Series accumulate across transcripts imported into one Importer.
package scenario

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/socperf/socperf/config"
	"github.com/socperf/socperf/series"
	"github.com/socperf/socperf/transcript"
)

// Options control an Importer.
type Options struct {
	// Offset is added to every timestamp.
	Offset time.Duration
}

// Stats counts what an Importer has seen.
type Stats struct {
	Files   int // transcripts imported
	Lines   int // logical lines
	Matched int // lines consumed by a recognizer
	Failed  int // lines that matched but could not be parsed
}

// An Importer accumulates the series of one or more transcripts.
type Importer struct {
	cfg   *config.Config
	opts  Options
	store *series.Store
	stats Stats
	errs  []*LineError
}

// NewImporter returns an Importer with an empty store. A nil cfg means
// config.Default().
func NewImporter(cfg *config.Config, opts Options) *Importer {
	if cfg == nil {
		cfg = config.Default()
	}
	return &Importer{cfg: cfg, opts: opts, store: series.NewStore()}
}

// Store returns the accumulated series. Callers must treat it as
// read-only while imports are in progress.
func (imp *Importer) Store() *series.Store {
	return imp.store
}

// Stats returns the counters accumulated so far.
func (imp *Importer) Stats() Stats {
	return imp.stats
}

// LineErrors returns the lines that matched a recognizer but could not
// be parsed, in import order.
func (imp *Importer) LineErrors() []*LineError {
	return imp.errs
}

// ImportFile imports the transcript at path.
func (imp *Importer) ImportFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrap(err, "open transcript")
	}
	defer f.Close()
	return imp.Import(f, path)
}

// Import imports one transcript read from r. name identifies the
// transcript in diagnostics.
//
// Lines that fail to parse are logged and skipped. Import returns an
// error only for I/O errors and for a *FatalError, in which case the
// observations of the lines before the failure are kept.
func (imp *Importer) Import(r io.Reader, name string) error {
	return imp.run(transcript.NewReader(r, name))
}

// ImportFiles imports every transcript named by paths, which may be
// glob patterns. A transcript that fails does not stop the others;
// ImportFiles returns the first error after trying them all.
func (imp *Importer) ImportFiles(paths []string) error {
	files := &transcript.Files{Paths: paths}
	defer files.Close()

	var first error
	failed := 0
	for files.Next() {
		log.Infof("Importing from %s", files.Path())
		if err := imp.run(files.Reader()); err != nil {
			log.WithError(err).Errorf("import of %s failed", files.Path())
			failed++
			if first == nil {
				first = err
			}
		}
	}
	if err := files.Err(); err != nil {
		return err
	}
	if first != nil {
		return errors.Wrapf(first, "%d transcript(s) failed, first", failed)
	}
	return nil
}

func (imp *Importer) run(r *transcript.Reader) error {
	imp.stats.Files++
	p := newParser(imp, r.FileName())
	for r.Scan() {
		line := r.Line()
		imp.stats.Lines++
		if imp.cfg.Importer.PrintLog {
			log.Infof("%s:%d: %s", r.FileName(), line.Number, line.Text)
		}
		matched, err := p.dispatch(line)
		if matched {
			imp.stats.Matched++
		}
		if err == nil {
			continue
		}
		if isFatal(err) {
			var fe *FatalError
			if errors.As(err, &fe) {
				fe.Path, fe.Line = r.FileName(), line.Number
				return fe
			}
			return errors.Wrapf(err, "%s:%d", r.FileName(), line.Number)
		}
		imp.stats.Failed++
		le := &LineError{
			Path:      r.FileName(),
			Line:      line.Number,
			Timestamp: p.lastTs,
			Text:      line.Text,
			Err:       err,
		}
		imp.errs = append(imp.errs, le)
		log.WithFields(log.Fields{
			"path":      le.Path,
			"line":      le.Line,
			"timestamp": fmtTimestamp(le.Timestamp),
			"content":   le.Text,
		}).Warnf("failed to parse line: %v", err)
	}
	if err := r.Err(); err != nil {
		return err
	}
	if r.Mode() == transcript.Framed {
		log.Debugf("%s: %d unframed lines, %d noise fragments", r.FileName(), r.Skipped(), r.Dropped())
	}
	return nil
}

func fmtTimestamp(ts int64) string {
	if ts == series.NoTimestamp {
		return "none"
	}
	return fmt.Sprint(ts)
}
