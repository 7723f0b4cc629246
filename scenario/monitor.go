// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package scenario

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/socperf/socperf/series"
	"github.com/socperf/socperf/units"
)

// A bandwidth-monitor block starts with an "**Average Bandwidth**" or
// "**Full Bandwidth**" header and ends at an empty line or the next
// header. It holds single values such as
//
//	CPU read: 1200 MB/s
//
// sub-blocks introduced by "Limit Request:" or "Channel Bandwidth:",
// and tables such as
//
//	device id read_bw(MB/s) write_bw(MB/s) latency(ns)
//	ddr    0  1000          800            120
//
// Every observation of a block carries the header's timestamp.
var (
	monitorHeaderRe = regexp.MustCompile(`\*\*(Average|Full) Bandwidth\*\*`)
	monitorSubRe    = regexp.MustCompile(`^(Limit Request|Channel Bandwidth):?$`)
	monitorTableRe  = regexp.MustCompile(`(?i)^\s*device\s+id\s+(.+)$`)
	monitorRowRe    = regexp.MustCompile(`^\s*([A-Za-z][\w-]*)\s+(\d+)((?:\s+-?\d+(?:\.\d+)?)+)\s*$`)
	monitorLimitRe  = regexp.MustCompile(`^([A-Za-z][\w ]*?):\s+(\d+)$`)
	monitorValueRe  = regexp.MustCompile(`^([A-Za-z][\w ]*?)(?:[ _](read|write|total))?:\s+(\d+(?:\.\d+)?)\s*([KMG]B)/s`)
)

const (
	subLimitRequest    = "Limit Request"
	subChannelBW       = "Channel Bandwidth"
	cpuMonitorDevice   = "a720.PNC"
	cpuMonitorPrefix   = "a720."
	camMonitorPrefix   = "cam"
	defaultValueSuffix = "total"
)

type monitorColumn struct {
	name   string
	unit   string
	better series.Better
}

type monitorState struct {
	open bool
	ts   int64
	sub  string
	// cols is non-nil while a table is open.
	cols []monitorColumn
	// skipTable consumes the rows of a table that is not recorded.
	skipTable bool
}

func (m *monitorState) close() {
	*m = monitorState{}
}

func monitorOpen(p *parser) bool    { return p.monitor.open }
func monitorInTable(p *parser) bool { return p.monitor.open && p.monitor.cols != nil }
func monitorInLimit(p *parser) bool { return p.monitor.open && p.monitor.sub == subLimitRequest }

func (p *parser) monitorHeader(m []string) error {
	p.monitor = monitorState{open: true, ts: p.ts}
	return nil
}

func (p *parser) monitorSub(m []string) error {
	p.monitor.sub = m[1]
	p.monitor.cols = nil
	p.monitor.skipTable = false
	return nil
}

func (p *parser) monitorTable(m []string) error {
	var cols []monitorColumn
	for _, f := range splitColumns(m[1]) {
		name, unit := units.SplitColumn(f)
		better := series.Higher
		if units.IsLatency(name, unit) {
			better = series.Lower
		}
		cols = append(cols, monitorColumn{name, unit, better})
	}
	p.monitor.cols = cols
	p.monitor.skipTable = p.monitor.sub == subChannelBW && !p.imp.cfg.Importer.Monitor.WithChannelBW
	return nil
}

// splitColumns splits table headings on white space, keeping a unit in
// parentheses with its name even if separated by spaces.
func splitColumns(s string) []string {
	var out []string
	for _, f := range strings.Fields(s) {
		if strings.HasPrefix(f, "(") && len(out) > 0 {
			out[len(out)-1] += f
			continue
		}
		out = append(out, f)
	}
	return out
}

func (p *parser) monitorRow(m []string) error {
	if p.monitor.skipTable {
		return nil
	}
	vals := strings.Fields(m[3])
	if len(vals) != len(p.monitor.cols) {
		return errors.Errorf("monitor row has %d values, header has %d columns", len(vals), len(p.monitor.cols))
	}
	dev := strings.ToLower(m[1])
	var prefix string
	if dev == "cpu" {
		prefix = cpuMonitorPrefix + m[2]
	} else {
		prefix = dev + "." + m[2]
	}
	for i, col := range p.monitor.cols {
		v, err := strconv.ParseFloat(vals[i], 64)
		if err != nil {
			return err
		}
		if err := p.add(prefix+".monitor."+col.name, col.unit, col.better, p.monitor.ts, v); err != nil {
			return err
		}
	}
	return nil
}

func (p *parser) monitorLimit(m []string) error {
	if !p.imp.cfg.Importer.Monitor.WithLimitReq {
		return nil
	}
	v, err := strconv.ParseFloat(m[2], 64)
	if err != nil {
		return err
	}
	return p.add(monitorDevice(m[1])+".monitor.limit_req", units.Count, series.Lower, p.monitor.ts, v)
}

func (p *parser) monitorValue(m []string) error {
	dev := monitorDevice(m[1])
	suffix := m[2]
	if suffix == "" {
		suffix = defaultValueSuffix
	}
	key := dev + ".monitor." + suffix + "_bw"

	if strings.HasPrefix(dev, camMonitorPrefix) {
		// The firmware prints every cam reading twice.
		n := p.camSeen[key]
		p.camSeen[key] = n + 1
		if n%2 != 0 {
			return nil
		}
	}

	v, err := strconv.ParseFloat(m[3], 64)
	if err != nil {
		return err
	}
	return p.add(key, m[4]+"/s", series.Higher, p.monitor.ts, v)
}

// monitorDevice normalizes the device name of a monitor line.
func monitorDevice(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "cpu" {
		return cpuMonitorDevice
	}
	if rest, ok := strings.CutPrefix(name, "cpu "); ok {
		return cpuMonitorPrefix + strings.Join(strings.Fields(rest), "_")
	}
	return strings.Join(strings.Fields(name), "_")
}
