// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package series

import (
	"math"

	"github.com/aclements/go-moremath/stats"
)

// The statistics below return 0 for an empty series.

func (s *TimeSeries) sample() stats.Sample {
	return stats.Sample{Xs: s.data}
}

// Average returns the arithmetic mean of the samples.
func (s *TimeSeries) Average() float64 {
	if len(s.data) == 0 {
		return 0
	}
	return s.sample().Mean()
}

// Min returns the smallest sample.
func (s *TimeSeries) Min() float64 {
	if len(s.data) == 0 {
		return 0
	}
	lo, _ := s.sample().Bounds()
	return lo
}

// Max returns the largest sample.
func (s *TimeSeries) Max() float64 {
	if len(s.data) == 0 {
		return 0
	}
	_, hi := s.sample().Bounds()
	return hi
}

// Best returns Max for a Higher series and Min for a Lower one.
func (s *TimeSeries) Best() float64 {
	if s.better == Lower {
		return s.Min()
	}
	return s.Max()
}

// Worst is the opposite of Best.
func (s *TimeSeries) Worst() float64 {
	if s.better == Lower {
		return s.Max()
	}
	return s.Min()
}

// StdDev returns the population standard deviation of the samples.
func (s *TimeSeries) StdDev() float64 {
	n := len(s.data)
	if n < 2 {
		return 0
	}
	// stats.Variance is the sample variance; rescale to the
	// population form reported by the viewers.
	v := stats.Variance(s.data) * float64(n-1) / float64(n)
	return math.Sqrt(v)
}

// Median returns the 50th percentile of the samples.
func (s *TimeSeries) Median() float64 {
	if len(s.data) == 0 {
		return 0
	}
	sm := stats.Sample{Xs: s.Data()}
	return sm.Sort().Quantile(0.5)
}

// A Summary holds the descriptive statistics of one series.
type Summary struct {
	Count                    int
	Average, Min, Max        float64
	Best, Worst, StdDev, Med float64
}

// Summarize computes all statistics of s at once.
func (s *TimeSeries) Summarize() Summary {
	return Summary{
		Count:   s.Count(),
		Average: s.Average(),
		Min:     s.Min(),
		Max:     s.Max(),
		Best:    s.Best(),
		Worst:   s.Worst(),
		StdDev:  s.StdDev(),
		Med:     s.Median(),
	}
}
