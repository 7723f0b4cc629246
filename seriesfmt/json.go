// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package seriesfmt

import (
	"io"

	jsoniter "github.com/json-iterator/go"

	"github.com/socperf/socperf/series"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// A Record is the JSON form of one series. Timestamps is omitted for
// an unindexed series.
type Record struct {
	Name       string    `json:"name"`
	Unit       string    `json:"unit"`
	Better     string    `json:"better"`
	Timestamps []int64   `json:"timestamps,omitempty"`
	Data       []float64 `json:"data"`
}

// NewRecord returns the JSON form of s.
func NewRecord(name string, s *series.TimeSeries) Record {
	data := s.Data()
	if data == nil {
		data = []float64{}
	}
	return Record{
		Name:       name,
		Unit:       s.Unit(),
		Better:     s.Better().String(),
		Timestamps: s.RawTimestamps(),
		Data:       data,
	}
}

// Series reconstructs the series of r.
func (r Record) Series() (*series.TimeSeries, error) {
	better, err := series.ParseBetter(r.Better)
	if err != nil {
		return nil, err
	}
	return series.FromSamples(r.Timestamps, r.Data, r.Unit, better)
}

// WriteJSON writes st as a JSON array of records in name order.
func WriteJSON(w io.Writer, st *series.Store) error {
	recs := make([]Record, 0, st.Len())
	st.Each(func(name string, s *series.TimeSeries) {
		recs = append(recs, NewRecord(name, s))
	})
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(recs)
}

// ReadJSON reads a store written by WriteJSON.
func ReadJSON(r io.Reader) (*series.Store, error) {
	var recs []Record
	if err := json.NewDecoder(r).Decode(&recs); err != nil {
		return nil, err
	}
	st := series.NewStore()
	for _, rec := range recs {
		s, err := rec.Series()
		if err != nil {
			return nil, err
		}
		st.Set(rec.Name, s)
	}
	return st, nil
}
