// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package scenario

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/socperf/socperf/series"
	"github.com/socperf/socperf/units"
)

var (
	mpstatHeaderRe = regexp.MustCompile(`%idle`)
	mpstatRowRe    = regexp.MustCompile(`^(\d{2}:\d{2}:\d{2})(?:\s+[AP]M)?\s+(all|\d+)((?:\s+-?\d+(?:\.\d+)?){9,10})\s*$`)

	// perfRe matches the CSV output of "perf stat -I <ms> -x,":
	// time,count,unit,event,run time,run pct,metric value,metric unit
	perfRe = regexp.MustCompile(`^\s*(\d+(?:\.\d+)?),([^,]*),([^,]*),([^,]+),([^,]*),([^,]*),([^,]*),([^,]*)$`)
)

const (
	perfPrefix    = "a720.PNC.perf."
	perfNotCount  = "<not counted>"
	perfNotSupp   = "<not supported>"
	perfIPCUnit   = "insn per cycle"
	perfCPUsUnit  = "CPUs utilized"
	busAccessRead = "bus_access_rd"
	busAccessWr   = "bus_access_wr"
	cacheMiss     = "cache_miss"
)

func mpstatOpen(p *parser) bool { return p.mpstat }

func (p *parser) mpstatHeader(m []string) error {
	p.mpstat = true
	return nil
}

func (p *parser) mpstatRow(m []string) error {
	cpu := m[2]
	if cpu == "all" {
		p.mpstatAll++
	}
	// The first samples cover the start of the test and are
	// discarded, together with the per-cpu rows that follow them.
	if p.mpstatAll <= p.imp.cfg.Importer.MpstatWarmup {
		return nil
	}
	cols := strings.Fields(m[3])
	idle, err := strconv.ParseFloat(cols[len(cols)-1], 64)
	if err != nil {
		return err
	}
	return p.add("a720.linux."+cpu+".cpu_utilization", units.Pct, series.Lower, p.ts, 100-idle)
}

func (p *parser) perf(m []string) error {
	count := strings.TrimSpace(m[2])
	if count == perfNotCount || count == perfNotSupp {
		return nil
	}
	sec, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return err
	}
	ts := p.perfTimestamp(int64(math.Round(sec * 1e9)))

	event := perfEvent(m[4])
	metricUnit := strings.TrimSpace(m[8])
	metric := strings.TrimSpace(m[7])

	switch metricUnit {
	case perfIPCUnit:
		v, err := strconv.ParseFloat(metric, 64)
		if err != nil {
			return err
		}
		return p.add(perfPrefix+"ipc", units.IPC, series.Higher, ts, v)
	case perfCPUsUnit:
		v, err := strconv.ParseFloat(metric, 64)
		if err != nil {
			return err
		}
		return p.add(perfPrefix+"cpus", units.Count, series.Higher, ts, v)
	}

	if factor, ok := units.PerfRate(metricUnit); ok {
		v, err := strconv.ParseFloat(metric, 64)
		if err != nil {
			return err
		}
		v *= factor
		switch {
		case event == busAccessRead || event == busAccessWr:
			unit := units.MPerS
			if beat := p.imp.cfg.Bus.BeatSize; beat > 0 {
				v *= beat
				unit = units.MBps
			}
			return p.add(perfPrefix+event, unit, series.Higher, ts, v)
		case event == cacheMiss || event == "cache_misses":
			return p.add(perfPrefix+cacheMiss, units.MPerS, series.Higher, ts, v)
		case p.imp.cfg.Importer.Perf.WithRawCounter:
			return p.add(perfPrefix+event, units.MPerS, series.Higher, ts, v)
		}
		return nil
	}

	if !p.imp.cfg.Importer.Perf.WithRawCounter {
		return nil
	}
	v, err := strconv.ParseFloat(count, 64)
	if err != nil {
		return err
	}
	return p.add(perfPrefix+event, units.Count, series.Higher, ts, v)
}

// perfTimestamp turns a perf interval time into a timestamp. In a
// timestamped transcript the first perf line anchors interval zero to
// the transcript clock.
func (p *parser) perfTimestamp(interval int64) int64 {
	if !p.perfAnchored && p.ts != series.NoTimestamp {
		p.perfBase = p.ts - interval
		p.perfAnchored = true
	}
	if p.perfAnchored {
		return p.perfBase + interval
	}
	return interval
}

// perfEvent normalizes a perf event name such as
// "armv8_pmuv3/bus_access_rd/" or "cache-misses:u".
func perfEvent(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.LastIndexByte(strings.TrimSuffix(s, "/"), '/'); i >= 0 {
		s = strings.TrimSuffix(s[i+1:], "/")
	}
	if i := strings.IndexByte(s, ':'); i >= 0 {
		s = s[:i]
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			return r
		}
		return '_'
	}, strings.ToLower(s))
}
