// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package scenario

import (
	"regexp"
	"strings"

	"github.com/pkg/errors"

	"github.com/socperf/socperf/series"
	"github.com/socperf/socperf/transcript"
)

// A rule recognizes one kind of line.
type rule struct {
	name string
	re   *regexp.Regexp
	// when, if non-nil, must hold for the rule to be tried.
	when func(p *parser) bool
	// handle consumes the submatches of re.
	handle func(p *parser, m []string) error
	// next lets later rules see a line this rule matched.
	next bool
}

// rules is the ordered recognizer list. Order matters: the first rule
// that matches consumes the line unless it sets next.
var rules []rule

func init() {
	rules = []rule{
		// A monitor header opens a block. The lines of the block are
		// matched last, so other tools printing inside it keep their
		// own recognizers.
		{name: "monitor header", re: monitorHeaderRe, handle: (*parser).monitorHeader},

		// Accelerators.
		{name: "vpu frame", re: vpuFrameRe, handle: (*parser).vpuFrameMarker},
		{name: "vpu cycle", re: vpuCycleRe, when: vpuFirstFrame, handle: (*parser).vpuCycle},
		{name: "bpu fps", re: bpuFPSRe, handle: (*parser).bpuFPS, next: true},
		{name: "bpu bw", re: bpuBWRe, when: bpuModelSet, handle: (*parser).bpuBW},
		{name: "bpu split bw", re: bpuSplitRe, when: bpuModelSet, handle: (*parser).bpuSplit},
		{name: "vdsp core", re: vdspCoreRe, handle: (*parser).vdspProcessor},
		{name: "vdsp bw", re: vdspBWRe, when: vdspCoreSet, handle: (*parser).vdspBW},

		// Linux tools.
		{name: "mpstat header", re: mpstatHeaderRe, handle: (*parser).mpstatHeader},
		{name: "mpstat row", re: mpstatRowRe, when: mpstatOpen, handle: (*parser).mpstatRow},
		{name: "perf", re: perfRe, handle: (*parser).perf},

		// Camera and display.
		{name: "isp header", re: ispHeaderRe, handle: (*parser).ispHeader},
		{name: "isp fps", re: ispFPSRe, when: ispModuleSet, handle: (*parser).ispFPS},
		{name: "dpu", re: dpuRe, handle: (*parser).dpu},

		// CPU and GPU micro benchmarks.
		{name: "memcpy", re: memcpyRe, handle: (*parser).memcpy},
		{name: "gpu frame interval", re: gpuIntervalRe, handle: (*parser).gpuInterval},
		{name: "clpeak header", re: clpeakHeaderRe, handle: (*parser).clpeakHeader},
		{name: "clpeak float", re: clpeakFloatRe, when: clpeakOpen, handle: (*parser).clpeakFloat},

		// Bandwidth monitor block contents.
		{name: "monitor sub-block", re: monitorSubRe, when: monitorOpen, handle: (*parser).monitorSub},
		{name: "monitor table header", re: monitorTableRe, when: monitorOpen, handle: (*parser).monitorTable},
		{name: "monitor table row", re: monitorRowRe, when: monitorInTable, handle: (*parser).monitorRow},
		{name: "monitor limit request", re: monitorLimitRe, when: monitorInLimit, handle: (*parser).monitorLimit},
		{name: "monitor value", re: monitorValueRe, when: monitorOpen, handle: (*parser).monitorValue},
	}
}

// parser holds the state carried between the lines of one transcript.
type parser struct {
	imp  *Importer
	path string

	ts     int64 // timestamp of the current line
	lastTs int64 // last timestamp seen

	bpuModel string
	bpuIdx   int
	bpuTs    int64 // timestamp of the last fps line

	vpuFrame int // -1 if no frame marker was seen
	vdspCore string

	ispModule string
	ispIdx    string

	monitor monitorState
	// camSeen counts single-value cam monitor readings per key.
	camSeen map[string]int

	mpstat    bool // inside mpstat output
	mpstatAll int  // "all" rows seen

	perfAnchored bool
	perfBase     int64

	clpeak bool
}

func newParser(imp *Importer, path string) *parser {
	return &parser{
		imp:      imp,
		path:     path,
		ts:       series.NoTimestamp,
		lastTs:   series.NoTimestamp,
		bpuTs:    series.NoTimestamp,
		vpuFrame: -1,
		camSeen:  make(map[string]int),
	}
}

// dispatch offers line to the rules in order. It reports whether any
// rule matched.
func (p *parser) dispatch(line transcript.Line) (bool, error) {
	p.ts = line.Timestamp
	if p.ts != series.NoTimestamp {
		p.lastTs = p.ts
	}
	text := line.Text
	if strings.TrimSpace(text) == "" {
		p.monitor.close()
		return false, nil
	}

	matched := false
	for i := range rules {
		r := &rules[i]
		if r.when != nil && !r.when(p) {
			continue
		}
		m := r.re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		matched = true
		if err := r.handle(p, m); err != nil {
			return true, err
		}
		if !r.next {
			break
		}
	}
	return matched, nil
}

// add appends one observation, creating the series if needed.
func (p *parser) add(key, unit string, better series.Better, ts int64, v float64) error {
	if ts != series.NoTimestamp {
		ts += int64(p.imp.opts.Offset)
	}
	s := p.imp.store.Ensure(key, unit, better)
	return errors.Wrapf(s.AddOne(ts, v), "series %s", key)
}
