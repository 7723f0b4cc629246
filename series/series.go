// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package series provides the time series type produced by the
// transcript importers, and the store that maps series names to
// series.
//
// A TimeSeries is either timestamped, in which case every sample
// carries a timestamp in nanoseconds, or unindexed, in which case
// samples are implicitly indexed by position. A series never mixes
// the two.
package series

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/pkg/errors"
)

// NoTimestamp marks an observation that carries no timestamp.
const NoTimestamp int64 = math.MinInt64

var (
	// ErrMissingTimestamp is returned when a timestamped series
	// receives a sample without a timestamp.
	ErrMissingTimestamp = errors.New("series is timestamped but sample has no timestamp")

	// ErrLengthMismatch is returned when timestamps and samples
	// are supplied in different quantities.
	ErrLengthMismatch = errors.New("timestamp and data must have the same length")
)

// Better indicates whether higher or lower values of a series are
// preferable.
type Better int

const (
	Higher Better = iota + 1
	Lower
)

func (b Better) String() string {
	switch b {
	case Higher:
		return "HIGHER"
	case Lower:
		return "LOWER"
	}
	return fmt.Sprintf("Better(%d)", int(b))
}

// ParseBetter parses the String form of a Better. It also accepts the
// qualified "Better.HIGHER" form written by older tools.
func ParseBetter(s string) (Better, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "Better.")
	switch strings.ToUpper(s) {
	case "HIGHER":
		return Higher, nil
	case "LOWER":
		return Lower, nil
	}
	return 0, errors.Errorf("unknown better direction %q", s)
}

// A TimeSeries is an append-only sequence of samples with an optional
// parallel sequence of timestamps in nanoseconds.
type TimeSeries struct {
	unit   string
	better Better

	// timestamps is either empty or exactly as long as data.
	timestamps []int64
	data       []float64
}

// New returns an empty series with the given unit and direction.
func New(unit string, better Better) *TimeSeries {
	return &TimeSeries{unit: unit, better: better}
}

// FromSamples reconstructs a series from its serialized fields.
// timestamps may be empty for an unindexed series. The slices are
// copied.
func FromSamples(timestamps []int64, data []float64, unit string, better Better) (*TimeSeries, error) {
	if len(timestamps) != 0 && len(timestamps) != len(data) {
		return nil, errors.Wrapf(ErrLengthMismatch, "%d timestamps, %d samples", len(timestamps), len(data))
	}
	s := New(unit, better)
	s.timestamps = append([]int64(nil), timestamps...)
	s.data = append([]float64(nil), data...)
	return s, nil
}

// AddOne appends one sample. ts may be NoTimestamp.
//
// Once a series holds timestamped samples, every later sample must
// carry a timestamp; otherwise AddOne returns ErrMissingTimestamp and
// leaves the series unchanged. A series whose first samples had no
// timestamp stays unindexed and ignores later timestamps.
func (s *TimeSeries) AddOne(ts int64, v float64) error {
	if ts == NoTimestamp {
		if len(s.timestamps) > 0 {
			return errors.Wrapf(ErrMissingTimestamp, "series has %d timestamps", len(s.timestamps))
		}
		s.data = append(s.data, v)
		return nil
	}
	if len(s.timestamps) == len(s.data) {
		s.timestamps = append(s.timestamps, ts)
	}
	s.data = append(s.data, v)
	return nil
}

// Add appends a batch of samples. timestamps must be nil or exactly as
// long as data, and follows the same rules as AddOne.
func (s *TimeSeries) Add(timestamps []int64, data []float64) error {
	if timestamps == nil {
		if len(s.timestamps) > 0 && len(data) > 0 {
			return errors.Wrapf(ErrMissingTimestamp, "batch of %d samples", len(data))
		}
		s.data = append(s.data, data...)
		return nil
	}
	if len(timestamps) != len(data) {
		return errors.Wrapf(ErrLengthMismatch, "%d timestamps, %d samples", len(timestamps), len(data))
	}
	if len(s.timestamps) == len(s.data) {
		s.timestamps = append(s.timestamps, timestamps...)
	}
	s.data = append(s.data, data...)
	return nil
}

// Count returns the number of samples.
func (s *TimeSeries) Count() int { return len(s.data) }

// Indexed reports whether the series carries timestamps.
func (s *TimeSeries) Indexed() bool { return len(s.timestamps) > 0 }

func (s *TimeSeries) Unit() string   { return s.unit }
func (s *TimeSeries) Better() Better { return s.better }

// Data returns a copy of the samples.
func (s *TimeSeries) Data() []float64 {
	return append([]float64(nil), s.data...)
}

// Timestamps returns a copy of the timestamps. For an unindexed series
// it returns the sample positions 0, 1, ..., Count()-1.
func (s *TimeSeries) Timestamps() []int64 {
	if s.Indexed() {
		return append([]int64(nil), s.timestamps...)
	}
	pos := make([]int64, len(s.data))
	for i := range pos {
		pos[i] = int64(i)
	}
	return pos
}

// RawTimestamps returns a copy of the stored timestamps, which is
// empty for an unindexed series.
func (s *TimeSeries) RawTimestamps() []int64 {
	return append([]int64(nil), s.timestamps...)
}

// Clone returns a deep copy of s.
func (s *TimeSeries) Clone() *TimeSeries {
	c, _ := FromSamples(s.timestamps, s.data, s.unit, s.better)
	return c
}

// Slice returns the samples whose timestamps fall in [startNs, endNs).
// Bounds are located by binary search as with a sorted "left" search.
//
// If startNs == endNs, or if the bounds select no samples, Slice
// returns the full series rather than an empty one. Existing viewers
// rely on this.
func (s *TimeSeries) Slice(startNs, endNs int64) *TimeSeries {
	if startNs == endNs || len(s.data) == 0 {
		return s.Clone()
	}
	ts := s.Timestamps()
	lo := sort.Search(len(ts), func(i int) bool { return ts[i] >= startNs })
	hi := sort.Search(len(ts), func(i int) bool { return ts[i] >= endNs })
	if hi > len(ts) {
		hi = len(ts)
	}
	if hi <= lo {
		return s.Clone()
	}
	out := New(s.unit, s.better)
	if s.Indexed() {
		out.timestamps = append(out.timestamps, s.timestamps[lo:hi]...)
	}
	out.data = append(out.data, s.data[lo:hi]...)
	return out
}
