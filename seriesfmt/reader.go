// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package seriesfmt

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/socperf/socperf/series"
)

// A Reader reads series blocks. Its API is modeled on bufio.Scanner.
type Reader struct {
	s        *bufio.Scanner
	fileName string
	line     int
	err      error

	name string
	cur  *series.TimeSeries
}

// A SyntaxError reports a malformed series block.
type SyntaxError struct {
	FileName string
	Line     int
	Msg      string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%s:%d: %s", e.FileName, e.Line, e.Msg)
}

// NewReader returns a reader of the series blocks in r. fileName is
// used in error messages.
func NewReader(r io.Reader, fileName string) *Reader {
	if fileName == "" {
		fileName = "<unknown>"
	}
	s := bufio.NewScanner(r)
	s.Buffer(nil, 64<<20)
	return &Reader{s: s, fileName: fileName}
}

// block collects the fields of the block being read.
type block struct {
	name, unit, better string
	ts, data           string
	hasTs, hasData     bool
}

// Scan advances to the next complete block and reports whether one was
// read. Lines outside of a recognized field are ignored. Scan stops at
// the first malformed block; Err reports it.
func (r *Reader) Scan() bool {
	if r.err != nil {
		return false
	}
	var b block
	for r.s.Scan() {
		r.line++
		line := r.s.Text()
		switch {
		case strings.HasPrefix(line, "series end"):
			s, err := b.build()
			if err != nil {
				r.err = &SyntaxError{r.fileName, r.line, err.Error()}
				return false
			}
			r.name, r.cur = b.name, s
			return true
		case strings.HasPrefix(line, "series:"):
			b = block{name: strings.TrimSpace(line[len("series:"):])}
		case strings.HasPrefix(line, "unit:"):
			b.unit = strings.TrimSpace(line[len("unit:"):])
		case strings.HasPrefix(line, "better:"):
			b.better = strings.TrimSpace(line[len("better:"):])
		case strings.HasPrefix(line, "timestamp:"):
			b.ts, b.hasTs = strings.TrimSpace(line[len("timestamp:"):]), true
		case strings.HasPrefix(line, "data:"):
			b.data, b.hasData = strings.TrimSpace(line[len("data:"):]), true
		}
	}
	r.err = r.s.Err()
	return false
}

func (b *block) build() (*series.TimeSeries, error) {
	if b.name == "" {
		return nil, errors.New("series end without series name")
	}
	if !b.hasData {
		return nil, errors.Errorf("series %s has no data", b.name)
	}
	better, err := series.ParseBetter(b.better)
	if err != nil {
		return nil, errors.Wrapf(err, "series %s", b.name)
	}
	data, err := parseFloats(b.data)
	if err != nil {
		return nil, errors.Wrapf(err, "series %s data", b.name)
	}
	var ts []int64
	if b.hasTs && b.ts != "None" {
		ts, err = parseInts(b.ts)
		if err != nil {
			return nil, errors.Wrapf(err, "series %s timestamp", b.name)
		}
	}
	s, err := series.FromSamples(ts, data, b.unit, better)
	return s, errors.Wrapf(err, "series %s", b.name)
}

// fields splits a bracketed list such as "[1.,2.5,3]" or "(1, 2,)".
func fields(s string) []string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 && (s[0] == '[' && s[len(s)-1] == ']' || s[0] == '(' && s[len(s)-1] == ')') {
		s = s[1 : len(s)-1]
	}
	var out []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}

func parseFloats(s string) ([]float64, error) {
	var out []float64
	for _, f := range fields(s) {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// parseInts parses timestamps. Integers are parsed exactly; float
// notation such as "1.e+09" is rounded.
func parseInts(s string) ([]int64, error) {
	var out []int64
	for _, f := range fields(s) {
		v, err := strconv.ParseInt(f, 10, 64)
		if err != nil {
			fv, ferr := strconv.ParseFloat(f, 64)
			if ferr != nil {
				return nil, err
			}
			v = int64(math.Round(fv))
		}
		out = append(out, v)
	}
	return out, nil
}

// Name returns the name of the series read by the last Scan.
func (r *Reader) Name() string { return r.name }

// Series returns the series read by the last Scan.
func (r *Reader) Series() *series.TimeSeries { return r.cur }

// Err returns the first error encountered by the Reader.
func (r *Reader) Err() error { return r.err }

// ReadStore reads every block of r into a new store. Later blocks
// replace earlier blocks of the same name.
func ReadStore(r io.Reader, fileName string) (*series.Store, error) {
	st := series.NewStore()
	rd := NewReader(r, fileName)
	for rd.Scan() {
		st.Set(rd.Name(), rd.Series())
	}
	return st, rd.Err()
}
