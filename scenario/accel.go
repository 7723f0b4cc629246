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

var (
	vpuFrameRe = regexp.MustCompile(`Start testing frame (\d+)`)
	vpuCycleRe = regexp.MustCompile(`Core id:\s*(\d+).*cycles this frame\s*,\s*(\d+)`)

	bpuFPSRe   = regexp.MustCompile(`BPU model\[([^\]]*)\].*fps\[(\d+(?:\.\d+)?)\]`)
	bpuBWRe    = regexp.MustCompile(`bw\(r\+w\)\[(\d+(?:\.\d+)?)\+(\d+(?:\.\d+)?)\]`)
	bpuSplitRe = regexp.MustCompile(`read_bw\[(\d+(?:\.\d+)?)\].*write_bw\[(\d+(?:\.\d+)?)\]`)

	vdspCoreRe = regexp.MustCompile(`VDSP Chip_Vi test function, Processor ID: \[(\d+)\]`)
	vdspBWRe   = regexp.MustCompile(`DDR (R/W|Copy) Bandwidth: (\S+) MB/s`)

	ispHeaderRe = regexp.MustCompile(`(?:\x1b)?(?:\[0m)?([a-z]+)(\d+) pipe info:`)
	ispFPSRe    = regexp.MustCompile(`^\s*fps:\s*(\d+(?:\.\d+)?)(?:.*overflow:\s*(\d+(?:\.\d+)?)%?)?`)

	dpuRe = regexp.MustCompile(`DPU\[([\w-]+)\]\s+fps:\s*([\d.]+),\s*bw:\s*([\d.]+)\s*MB/s,\s*underflow:\s*([\d.]+)%`)

	memcpyRe       = regexp.MustCompile(`memcpy core (\d+):\s*(\d+(?:\.\d+)?)\s*MB/s`)
	gpuIntervalRe  = regexp.MustCompile(`frame interval diff:\s*(0[xX][0-9a-fA-F]+|\d+)`)
	clpeakHeaderRe = regexp.MustCompile(`Global memory bandwidth \(GBPS\)`)
	clpeakFloatRe  = regexp.MustCompile(`^\s*float\s*:\s*(\d+(?:\.\d+)?)`)
)

// vpuCores names the video codec cores by id.
var vpuCores = map[string]string{
	"0": "0.jdec",
	"1": "1.jenc",
	"2": "2.vdec",
	"3": "3.venc0",
	"4": "4.venc1",
}

// displays maps display names to series name prefixes.
var displays = map[string]string{
	"dpu":       "dpu",
	"disp0":     "dpu.0",
	"disp1":     "dpu.1",
	"disp0-wb0": "dpu.0.composer.0",
	"disp0-wb1": "dpu.0.composer.1",
	"disp1-wb0": "dpu.1.composer.0",
	"disp1-wb1": "dpu.1.composer.1",
}

// VDSP copy tests report the bandwidth of one direction.
const vdspCopyFactor = 2

func vpuFirstFrame(p *parser) bool { return p.vpuFrame == 1 }
func bpuModelSet(p *parser) bool   { return p.bpuModel != "" }
func vdspCoreSet(p *parser) bool   { return p.vdspCore != "" }
func ispModuleSet(p *parser) bool  { return p.ispModule != "" }
func clpeakOpen(p *parser) bool    { return p.clpeak }

func (p *parser) vpuFrameMarker(m []string) error {
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return err
	}
	p.vpuFrame = n
	return nil
}

func (p *parser) vpuCycle(m []string) error {
	name, ok := vpuCores[m[1]]
	if !ok {
		name = m[1]
	}
	v, err := strconv.ParseFloat(m[2], 64)
	if err != nil {
		return err
	}
	return p.add("vpu."+name+".cycle", units.Cycle, series.Lower, p.ts, v)
}

func (p *parser) bpuFPS(m []string) error {
	model := strings.Join(strings.Fields(m[1]), "_")
	if model == "" {
		return errors.New("empty BPU model name")
	}
	p.bpuModel = model
	p.bpuTs = p.ts
	v, err := strconv.ParseFloat(m[2], 64)
	if err != nil {
		return err
	}
	return p.add(p.bpuKey("fps"), units.FPS, series.Higher, p.ts, v)
}

func (p *parser) bpuKey(metric string) string {
	return "bpu." + strconv.Itoa(p.bpuIdx) + "." + p.bpuModel + "." + metric
}

// bpuBWTs returns the timestamp of a bandwidth line. The bandwidth of a
// model follows its fps line and usually carries no timestamp itself.
func (p *parser) bpuBWTs() int64 {
	if p.ts != series.NoTimestamp {
		return p.ts
	}
	return p.bpuTs
}

func (p *parser) bpuBW(m []string) error {
	r, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return err
	}
	w, err := strconv.ParseFloat(m[2], 64)
	if err != nil {
		return err
	}
	return p.add(p.bpuKey("bw"), units.MBps, series.Higher, p.bpuBWTs(), r+w)
}

func (p *parser) bpuSplit(m []string) error {
	r, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return err
	}
	w, err := strconv.ParseFloat(m[2], 64)
	if err != nil {
		return err
	}
	ts := p.bpuBWTs()
	if err := p.add(p.bpuKey("read_bw"), units.MBps, series.Higher, ts, r); err != nil {
		return err
	}
	if err := p.add(p.bpuKey("write_bw"), units.MBps, series.Higher, ts, w); err != nil {
		return err
	}
	p.bpuIdx++
	return nil
}

func (p *parser) vdspProcessor(m []string) error {
	p.vdspCore = m[1]
	return nil
}

func (p *parser) vdspBW(m []string) error {
	v, err := strconv.ParseFloat(m[2], 64)
	if err != nil {
		return err
	}
	if m[1] == "Copy" {
		v *= vdspCopyFactor
	}
	return p.add("vdsp."+p.vdspCore+".copy_rw", units.MBps, series.Higher, p.ts, v)
}

func (p *parser) ispHeader(m []string) error {
	p.ispModule, p.ispIdx = m[1], m[2]
	return nil
}

func (p *parser) ispFPS(m []string) error {
	prefix := "cam." + p.ispModule + "." + p.ispIdx
	p.ispModule, p.ispIdx = "", ""

	fps, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return err
	}
	if err := p.add(prefix+".fps", units.FPS, series.Higher, p.ts, fps); err != nil {
		return err
	}
	if m[2] == "" {
		return nil
	}
	overflow, err := strconv.ParseFloat(m[2], 64)
	if err != nil {
		return err
	}
	return p.add(prefix+".overflow", units.Pct, series.Higher, p.ts, overflow)
}

func (p *parser) dpu(m []string) error {
	prefix, ok := displays[strings.ToLower(m[1])]
	if !ok {
		return fatalf("unknown display %q", m[1])
	}
	var vals [3]float64
	for i := range vals {
		v, err := strconv.ParseFloat(m[i+2], 64)
		if err != nil {
			return err
		}
		vals[i] = v
	}
	if err := p.add(prefix+".fps", units.FPS, series.Higher, p.ts, vals[0]); err != nil {
		return err
	}
	if err := p.add(prefix+".bw", units.MBps, series.Higher, p.ts, vals[1]); err != nil {
		return err
	}
	return p.add(prefix+".underflow", units.Pct, series.Lower, p.ts, vals[2])
}

func (p *parser) memcpy(m []string) error {
	v, err := strconv.ParseFloat(m[2], 64)
	if err != nil {
		return err
	}
	return p.add("a720."+m[1]+".memcpy", units.MBps, series.Higher, p.ts, v)
}

func (p *parser) gpuInterval(m []string) error {
	var interval int64
	var err error
	if s := m[1]; strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		interval, err = strconv.ParseInt(s[2:], 16, 64)
	} else {
		interval, err = strconv.ParseInt(s, 10, 64)
	}
	if err != nil {
		return err
	}
	if interval <= 0 {
		return errors.Errorf("frame interval %d", interval)
	}
	return p.add("gpua.fps", units.FPS, series.Higher, p.ts, 1e9/float64(interval))
}

func (p *parser) clpeakHeader(m []string) error {
	p.clpeak = true
	return nil
}

func (p *parser) clpeakFloat(m []string) error {
	p.clpeak = false
	gbps, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return err
	}
	return p.add("gpua.clpeak.float.bw", units.MBps, series.Higher, p.ts, gbps*1024)
}
