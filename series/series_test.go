// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package series

import (
	"math"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddOneTimestamped(t *testing.T) {
	s := New("MB/s", Higher)
	for i, v := range []float64{10, 20, 30} {
		require.NoError(t, s.AddOne(int64(100*(i+1)), v))
		require.Equal(t, s.Count(), len(s.RawTimestamps()))
	}
	assert.True(t, s.Indexed())
	assert.Equal(t, []int64{100, 200, 300}, s.Timestamps())
	assert.Equal(t, []float64{10, 20, 30}, s.Data())
}

func TestAddOneMissingTimestamp(t *testing.T) {
	s := New("fps", Higher)
	require.NoError(t, s.AddOne(5, 1))
	err := s.AddOne(NoTimestamp, 2)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMissingTimestamp))
	// The failed sample is not recorded.
	assert.Equal(t, 1, s.Count())
	assert.Equal(t, []int64{5}, s.RawTimestamps())
}

func TestAddOneUnindexed(t *testing.T) {
	s := New("%", Lower)
	require.NoError(t, s.AddOne(NoTimestamp, 1))
	require.NoError(t, s.AddOne(NoTimestamp, 2))
	// A series that started without timestamps stays unindexed.
	require.NoError(t, s.AddOne(77, 3))
	assert.False(t, s.Indexed())
	assert.Equal(t, []int64{0, 1, 2}, s.Timestamps())
	assert.Empty(t, s.RawTimestamps())
}

func TestAddBatch(t *testing.T) {
	s := New("ns", Lower)
	require.NoError(t, s.Add([]int64{1, 2}, []float64{3, 4}))
	err := s.Add([]int64{3}, []float64{5, 6})
	assert.True(t, errors.Is(err, ErrLengthMismatch))
	err = s.Add(nil, []float64{7})
	assert.True(t, errors.Is(err, ErrMissingTimestamp))
	assert.Equal(t, 2, s.Count())
}

func TestFromSamples(t *testing.T) {
	s, err := FromSamples([]int64{1, 2, 3}, []float64{4, 5, 6}, "KB/s", Higher)
	require.NoError(t, err)
	assert.Equal(t, "KB/s", s.Unit())
	assert.Equal(t, Higher, s.Better())
	assert.Equal(t, 3, s.Count())

	s, err = FromSamples(nil, []float64{1}, "count", Lower)
	require.NoError(t, err)
	assert.False(t, s.Indexed())

	_, err = FromSamples([]int64{1}, []float64{1, 2}, "count", Lower)
	assert.True(t, errors.Is(err, ErrLengthMismatch))
}

func TestStats(t *testing.T) {
	s, err := FromSamples(nil, []float64{2, 4, 4, 4, 5, 5, 7, 9}, "MB/s", Higher)
	require.NoError(t, err)
	assert.InDelta(t, 5, s.Average(), 1e-12)
	assert.Equal(t, 2.0, s.Min())
	assert.Equal(t, 9.0, s.Max())
	assert.Equal(t, 9.0, s.Best())
	assert.Equal(t, 2.0, s.Worst())
	assert.InDelta(t, 2, s.StdDev(), 1e-12)
	assert.InDelta(t, 4.5, s.Median(), 1e-12)

	low, err := FromSamples(nil, []float64{3, 1, 2}, "ns", Lower)
	require.NoError(t, err)
	assert.Equal(t, 1.0, low.Best())
	assert.Equal(t, 3.0, low.Worst())
	// Median must not reorder the stored samples.
	assert.Equal(t, []float64{3, 1, 2}, low.Data())
}

func TestStatsEmpty(t *testing.T) {
	s := New("fps", Higher)
	sum := s.Summarize()
	assert.Equal(t, Summary{}, sum)
	for _, v := range []float64{s.Average(), s.Min(), s.Max(), s.StdDev(), s.Median()} {
		assert.False(t, math.IsNaN(v))
	}
}

func TestSlice(t *testing.T) {
	s, err := FromSamples([]int64{10, 20, 30, 40}, []float64{1, 2, 3, 4}, "fps", Higher)
	require.NoError(t, err)

	for _, test := range []struct {
		name       string
		start, end int64
		wantTS     []int64
	}{
		{"inner", 20, 40, []int64{20, 30}},
		{"open end", 15, 1000, []int64{20, 30, 40}},
		{"before start", 0, 25, []int64{10, 20}},
		{"empty range snaps back", 41, 100, []int64{10, 20, 30, 40}},
		{"gap snaps back", 21, 29, []int64{10, 20, 30, 40}},
		{"equal bounds", 20, 20, []int64{10, 20, 30, 40}},
	} {
		t.Run(test.name, func(t *testing.T) {
			got := s.Slice(test.start, test.end)
			assert.Equal(t, test.wantTS, got.Timestamps())
			assert.Equal(t, len(test.wantTS), got.Count())
		})
	}

	// Slicing never modifies the source.
	assert.Equal(t, 4, s.Count())
}

func TestParseBetter(t *testing.T) {
	for in, want := range map[string]Better{
		"HIGHER":        Higher,
		"lower":         Lower,
		"Better.HIGHER": Higher,
		" Better.LOWER": Lower,
	} {
		got, err := ParseBetter(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseBetter("sideways")
	assert.Error(t, err)
	assert.Equal(t, "HIGHER", Higher.String())
}
