// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package bwdump reads the DDR bandwidth dumps recorded next to the
// test transcripts.
//
// Two formats exist. The chip dump is binary: a header of eight
// little-endian uint64 words followed by pairs of little-endian uint32
// read and write counters, one pair per sampling interval. Each
// counter tick is a 32-byte bus beat. The perf dump is a CSV file with
// the columns time_s,size,unit,event,interval_ns.
package bwdump

import (
	"bufio"
	"encoding/binary"
	"encoding/csv"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/socperf/socperf/series"
	"github.com/socperf/socperf/units"
)

// Magic is the first header word of a chip dump.
const Magic uint64 = 0x2B1A3D4C99630F7A

// beatBytes is the number of bytes moved per counter tick.
const beatBytes = 32

// Series names of a decoded dump.
const (
	ReadName  = "bw.read"
	WriteName = "bw.write"
)

var (
	ErrBadMagic    = errors.New("invalid bandwidth dump magic")
	ErrBadInterval = errors.New("sampling interval must be positive")
)

// A Header describes a chip dump.
type Header struct {
	Magic      uint64
	StartNs    uint64
	EndNs      uint64
	IntervalMs uint64
	Count      uint64
	AvgMBps    uint64
	Reserved   [2]uint64
}

// Options control decoding.
type Options struct {
	// Unit is the byte prefix of the decoded bandwidth, such as "GB"
	// for GB/s. It defaults to GB.
	Unit string

	// NoHeader decodes a chip dump without header, sampled every
	// IntervalMs milliseconds from StartNs on. The counters then run
	// to the end of the input.
	NoHeader   bool
	IntervalMs uint64
	StartNs    uint64
}

func (o Options) unit() string {
	if o.Unit == "" {
		return "GB"
	}
	return o.Unit
}

// A Dump is a decoded bandwidth dump.
type Dump struct {
	Header Header
	Read   *series.TimeSeries
	Write  *series.TimeSeries
}

// Store returns the read and write series of d in a new store.
func (d *Dump) Store() *series.Store {
	st := series.NewStore()
	st.Set(ReadName, d.Read)
	st.Set(WriteName, d.Write)
	return st
}

// ReadChip decodes a binary chip dump.
func ReadChip(r io.Reader, opts Options) (*Dump, error) {
	br := bufio.NewReader(r)
	var h Header
	if opts.NoHeader {
		h = Header{StartNs: opts.StartNs, IntervalMs: opts.IntervalMs, Count: math.MaxUint64}
	} else {
		if err := binary.Read(br, binary.LittleEndian, &h); err != nil {
			return nil, errors.Wrap(err, "reading header")
		}
		if h.Magic != Magic {
			return nil, errors.Wrapf(ErrBadMagic, "%#x", h.Magic)
		}
	}
	if h.IntervalMs == 0 {
		return nil, ErrBadInterval
	}
	log.Debugf("bwdump: start %d ns, end %d ns, interval %d ms, count %d, avg %d MB/s",
		h.StartNs, h.EndNs, h.IntervalMs, h.Count, h.AvgMBps)

	unit := opts.unit()
	// bytes per second = ticks * beatBytes * 1000 / IntervalMs
	div := units.ByteScale(unit) * float64(h.IntervalMs)
	step := int64(time.Duration(h.IntervalMs) * time.Millisecond)

	rd := series.New(unit+"/s", series.Higher)
	wr := series.New(unit+"/s", series.Higher)
	var pair [2]uint32
	for i := uint64(0); i < h.Count; i++ {
		if err := binary.Read(br, binary.LittleEndian, &pair); err != nil {
			if err == io.EOF || err == io.ErrUnexpectedEOF {
				break
			}
			return nil, err
		}
		ts := int64(h.StartNs) + int64(i)*step
		rd.AddOne(ts, float64(pair[0])*beatBytes*1000/div)
		wr.AddOne(ts, float64(pair[1])*beatBytes*1000/div)
	}
	if !opts.NoHeader && uint64(rd.Count()) < h.Count {
		log.Warnf("bwdump: header announces %d samples, found %d", h.Count, rd.Count())
	}
	if opts.NoHeader {
		h.Count = uint64(rd.Count())
	}
	return &Dump{Header: h, Read: rd, Write: wr}, nil
}

// ReadPerf decodes a perf bandwidth CSV dump. Events whose name
// contains "read" are summed into the read series and events whose
// name contains "write" into the write series. Lines starting with #
// are comments.
func ReadPerf(r io.Reader, opts Options) (*Dump, error) {
	cr := csv.NewReader(r)
	cr.Comment = '#'
	cr.FieldsPerRecord = -1

	unit := opts.unit()
	var times []int64
	index := make(map[int64]int)
	var rdData, wrData []float64
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		line, _ := cr.FieldPos(0)
		if len(rec) < 5 {
			return nil, errors.Errorf("line %d: want 5 fields, have %d", line, len(rec))
		}
		var vals [3]float64
		for i, col := range []int{0, 1, 4} {
			v, err := strconv.ParseFloat(strings.TrimSpace(rec[col]), 64)
			if err != nil {
				return nil, errors.Wrapf(err, "line %d", line)
			}
			vals[i] = v
		}
		sec, size, intervalNs := vals[0], vals[1], vals[2]
		if intervalNs <= 0 {
			return nil, errors.Wrapf(ErrBadInterval, "line %d", line)
		}
		ts := int64(math.Round(sec * 1e9))
		i, ok := index[ts]
		if !ok {
			i = len(times)
			index[ts] = i
			times = append(times, ts)
			rdData = append(rdData, 0)
			wrData = append(wrData, 0)
		}
		bw := units.ConvertBytes(size/(intervalNs/1e9), rec[2], unit)
		switch name := rec[3]; {
		case strings.Contains(name, "read"):
			rdData[i] += bw
		case strings.Contains(name, "write"):
			wrData[i] += bw
		}
	}

	rd, err := series.FromSamples(times, rdData, unit+"/s", series.Higher)
	if err != nil {
		return nil, err
	}
	wr, err := series.FromSamples(times, wrData, unit+"/s", series.Higher)
	if err != nil {
		return nil, err
	}
	h := Header{Count: uint64(len(times))}
	if len(times) > 0 {
		h.StartNs, h.EndNs = uint64(times[0]), uint64(times[len(times)-1])
	}
	return &Dump{Header: h, Read: rd, Write: wr}, nil
}
