// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package aggregate derives series from other series of a store by
// matching their names.
//
// Derived series never replace the series they are built from, except
// where a rule explicitly drops its sources. Sample arrays of unequal
// length are combined by zero-padding the shorter one.
package aggregate

import (
	"regexp"

	"github.com/pkg/errors"

	"github.com/socperf/socperf/series"
)

// ErrShapeMismatch is returned when two series that must be combined
// sample by sample have different timestamps.
var ErrShapeMismatch = errors.New("series timestamps differ")

// PadAndAdd returns the element-wise sum of a and b, treating the
// missing tail of the shorter slice as zeros.
func PadAndAdd(a, b []float64) []float64 {
	if len(a) < len(b) {
		a, b = b, a
	}
	out := make([]float64, len(a))
	copy(out, a)
	for i, v := range b {
		out[i] += v
	}
	return out
}

// fold sums the named series of st. The result takes the unit of the
// first series. Its timestamps are those of the first series if they
// cover the folded length, else those of the first series that does,
// else the result is unindexed.
func fold(st *series.Store, names []string) (*series.TimeSeries, error) {
	var sum []float64
	for _, name := range names {
		s, _ := st.Lookup(name)
		sum = PadAndAdd(sum, s.Data())
	}
	first, _ := st.Lookup(names[0])
	var ts []int64
	for _, name := range names {
		s, _ := st.Lookup(name)
		if s.Indexed() && s.Count() == len(sum) {
			ts = s.RawTimestamps()
			break
		}
	}
	return series.FromSamples(ts, sum, first.Unit(), series.Higher)
}

// Sum stores the sum of every series whose name matches re as newName
// and returns the number of series folded. Nothing happens if newName
// exists already or nothing matches.
func Sum(st *series.Store, re *regexp.Regexp, newName string) int {
	return SumFunc(st, re.MatchString, newName)
}

// SumFunc is like Sum but selects series with match.
func SumFunc(st *series.Store, match func(name string) bool, newName string) int {
	if st.Has(newName) {
		return 0
	}
	names := st.MatchFunc(match)
	if len(names) == 0 {
		return 0
	}
	s, err := fold(st, names)
	if err != nil {
		return 0
	}
	st.Set(newName, s)
	return len(names)
}

// Avg is like Sum but divides the result by the number of series
// folded.
func Avg(st *series.Store, re *regexp.Regexp, newName string) int {
	return AvgFunc(st, re.MatchString, newName)
}

// AvgFunc is like Avg but selects series with match.
func AvgFunc(st *series.Store, match func(name string) bool, newName string) int {
	n := SumFunc(st, match, newName)
	if n > 1 {
		s, _ := st.Lookup(newName)
		st.Set(newName, scale(s, 1/float64(n)))
	}
	return n
}

func scale(s *series.TimeSeries, f float64) *series.TimeSeries {
	data := s.Data()
	for i := range data {
		data[i] *= f
	}
	out, _ := series.FromSamples(s.RawTimestamps(), data, s.Unit(), s.Better())
	return out
}

// AddSeries stores a+b as dest. It reports whether both operands exist.
// An existing dest is left alone.
func AddSeries(st *series.Store, a, b, dest string) bool {
	return combine(st, a, b, dest, 1)
}

// MinusSeries stores a-b as dest. It reports whether both operands
// exist. An existing dest is left alone.
func MinusSeries(st *series.Store, a, b, dest string) bool {
	return combine(st, a, b, dest, -1)
}

func combine(st *series.Store, a, b, dest string, sign float64) bool {
	sa, ok := st.Lookup(a)
	if !ok {
		return false
	}
	sb, ok := st.Lookup(b)
	if !ok {
		return false
	}
	if st.Has(dest) {
		return true
	}
	bd := sb.Data()
	for i := range bd {
		bd[i] *= sign
	}
	sum := PadAndAdd(sa.Data(), bd)
	var ts []int64
	switch {
	case sa.Indexed() && sa.Count() == len(sum):
		ts = sa.RawTimestamps()
	case sb.Indexed() && sb.Count() == len(sum):
		ts = sb.RawTimestamps()
	}
	s, err := series.FromSamples(ts, sum, sa.Unit(), series.Higher)
	if err != nil {
		return false
	}
	st.Set(dest, s)
	return true
}

// Multiply stores the sample-by-sample product of a and b as dest. The
// operands must have identical timestamps; otherwise Multiply returns
// ErrShapeMismatch and leaves the store unchanged.
func Multiply(st *series.Store, a, b, dest string) error {
	sa, ok := st.Lookup(a)
	if !ok {
		return errors.Errorf("no series %s", a)
	}
	sb, ok := st.Lookup(b)
	if !ok {
		return errors.Errorf("no series %s", b)
	}
	if !sameShape(sa, sb) {
		return errors.Wrapf(ErrShapeMismatch, "%s has %d samples, %s has %d", a, sa.Count(), b, sb.Count())
	}
	ad, bd := sa.Data(), sb.Data()
	for i := range ad {
		ad[i] *= bd[i]
	}
	s, err := series.FromSamples(sa.RawTimestamps(), ad, sa.Unit(), sa.Better())
	if err != nil {
		return err
	}
	st.Set(dest, s)
	return nil
}

func sameShape(a, b *series.TimeSeries) bool {
	if a.Count() != b.Count() || a.Indexed() != b.Indexed() {
		return false
	}
	at, bt := a.RawTimestamps(), b.RawTimestamps()
	for i := range at {
		if at[i] != bt[i] {
			return false
		}
	}
	return true
}
