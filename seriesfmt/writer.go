// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package seriesfmt reads and writes the series text format.
//
// A file is a sequence of blocks, one per series:
//
//	series: ddr.monitor.sum_read_bw
//	unit: MB/s
//	better: Better.HIGHER
//	timestamp: [1000000000,2000000000]
//	data: [1.5,2.25]
//	series end
//
// An unindexed series is written with "timestamp: None". Round
// tripping a store through the format is lossless.
package seriesfmt

import (
	"bytes"
	"fmt"
	"io"
	"strconv"

	"github.com/socperf/socperf/series"
)

// A Writer writes series blocks.
type Writer struct {
	w      io.Writer
	buf    bytes.Buffer
	prefix string
}

// NewWriter returns a writer that writes series blocks to w. If prefix
// is not empty, every series name is written as prefix + "." + name.
func NewWriter(w io.Writer, prefix string) *Writer {
	return &Writer{w: w, prefix: prefix}
}

// Write writes one series block.
func (w *Writer) Write(name string, s *series.TimeSeries) error {
	if w.prefix != "" {
		name = w.prefix + "." + name
	}
	fmt.Fprintf(&w.buf, "series: %s\n", name)
	fmt.Fprintf(&w.buf, "unit: %s\n", s.Unit())
	// The qualified form keeps the files readable by the older
	// viewers.
	fmt.Fprintf(&w.buf, "better: Better.%s\n", s.Better())
	w.buf.WriteString("timestamp: ")
	if s.Indexed() {
		w.buf.WriteByte('[')
		for i, ts := range s.RawTimestamps() {
			if i > 0 {
				w.buf.WriteByte(',')
			}
			w.buf.WriteString(strconv.FormatInt(ts, 10))
		}
		w.buf.WriteByte(']')
	} else {
		w.buf.WriteString("None")
	}
	w.buf.WriteString("\ndata: [")
	for i, v := range s.Data() {
		if i > 0 {
			w.buf.WriteByte(',')
		}
		w.buf.WriteString(strconv.FormatFloat(v, 'g', -1, 64))
	}
	w.buf.WriteString("]\nseries end\n")

	// Write to the buffer can't fail.
	_, err := w.w.Write(w.buf.Bytes())
	w.buf.Reset()
	return err
}

// WriteStore writes every series of st in name order.
func (w *Writer) WriteStore(st *series.Store) error {
	for _, name := range st.Keys() {
		s, _ := st.Lookup(name)
		if err := w.Write(name, s); err != nil {
			return err
		}
	}
	return nil
}
