// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package aggregate

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/socperf/socperf/config"
	"github.com/socperf/socperf/series"
)

// An Op is what a Rule does with the series it matches.
type Op int

const (
	// OpSum folds the matched series into Dest.
	OpSum Op = iota
	// OpAvg folds the matched series into Dest and divides by their
	// number.
	OpAvg
	// OpScale multiplies each matched series by Operand into Dest.
	OpScale
	// OpDrop deletes the matched series.
	OpDrop
)

func (op Op) String() string {
	switch op {
	case OpSum:
		return "sum"
	case OpAvg:
		return "avg"
	case OpScale:
		return "scale"
	case OpDrop:
		return "drop"
	}
	return fmt.Sprintf("Op(%d)", int(op))
}

// A Rule derives series from the series whose names match Match and do
// not match Exclude.
//
// Dest may refer to submatches of Match as $1, ${2} and so on. Matched
// series are grouped by their expanded Dest, and every group with at
// least MinCount members becomes one derived series.
type Rule struct {
	Name    string
	Op      Op
	Match   *regexp.Regexp
	Exclude *regexp.Regexp
	Dest    string

	// MinCount is the smallest group that produces a series. Zero
	// means one.
	MinCount int

	// Operand is the second factor of OpScale.
	Operand string

	// Requires lists series that must all exist for the rule to
	// run. Unless lists series whose existence skips the rule.
	Requires []string
	Unless   []string

	// DropSources deletes the matched series of every group that
	// produced a result.
	DropSources bool
}

// A Result reports what one rule did.
type Result struct {
	Rule    string
	Created []string
	Dropped []string
	Skipped []string // groups that could not be combined
}

// Recipe returns the derivation rules for cfg, in the order they must
// run. Later rules consume series produced by earlier ones.
func Recipe(cfg *config.Config) []Rule {
	if cfg == nil {
		cfg = config.Default()
	}
	rules := []Rule{
		{
			Name:     "device total",
			Op:       OpSum,
			Match:    regexp.MustCompile(`^(.+)\.monitor\.(?:read_bw|write_bw)$`),
			Dest:     "$1.monitor.total_bw(r+w)",
			MinCount: 2,
		},
		{
			Name:    "ddr sum",
			Op:      OpSum,
			Match:   regexp.MustCompile(`^[^.]+(?:\.[A-Za-z][^.]*)?\.monitor\.(read_bw|write_bw)$`),
			Exclude: regexp.MustCompile(`^ddr`),
			Dest:    "ddr.monitor.sum_$1",
		},
		{
			Name:  "a720 sum",
			Op:    OpSum,
			Match: regexp.MustCompile(`^a720\.[^.]+\.monitor\.(read_bw|write_bw|total_bw)$`),
			Dest:  "a720.monitor.sum_$1",
		},
		{
			Name:  "family sum",
			Op:    OpSum,
			Match: regexp.MustCompile(`^(cam|bpu|dpu|gpua|vpu)\.\d+\.monitor\.(read_bw|write_bw)$`),
			Dest:  "$1.monitor.sum_$2",
		},
		{
			Name:     "family total",
			Op:       OpSum,
			Match:    regexp.MustCompile(`^(cam|bpu|dpu|gpua|vpu)\.monitor\.sum_(?:read_bw|write_bw)$`),
			Dest:     "$1.monitor.sum_total_bw",
			MinCount: 2,
		},
		{
			Name:     "ddr partitions",
			Op:       OpSum,
			Match:    regexp.MustCompile(`^ddr_(?:adas|cabit)\.monitor\.(read_bw|write_bw|total_bw\(r\+w\))$`),
			Dest:     "ddr.monitor.$1",
			MinCount: 2,
			Unless:   []string{"ddr.monitor.total_bw(r+w)"},
		},
		{
			Name:  "ddr adas channels",
			Op:    OpSum,
			Match: regexp.MustCompile(`^ddr\.\d*[13579]\.monitor\.total_bw$`),
			Dest:  "ddr.adas.monitor.sum_total_bw",
		},
		{
			Name:  "ddr ivi channels",
			Op:    OpSum,
			Match: regexp.MustCompile(`^ddr\.\d*[02468]\.monitor\.total_bw$`),
			Dest:  "ddr.ivi.monitor.sum_total_bw",
		},
	}

	groups := cfg.Importer.Linux.CPUs
	for _, name := range groups.Names() {
		rules = append(rules, Rule{
			Name:  "cpu group " + name,
			Op:    OpAvg,
			Match: cpuGroupRe(groups[name]),
			Dest:  "a720." + name + ".cpu_utilization",
		})
	}
	if !cfg.Importer.Linux.KeepRawCPUUtilization {
		rules = append(rules, Rule{
			Name:  "drop raw cpu utilization",
			Op:    OpDrop,
			Match: regexp.MustCompile(`^a720\.linux\.\d+\.cpu_utilization$`),
		})
	}

	rules = append(rules,
		Rule{
			Name:        "perf cluster totals",
			Op:          OpScale,
			Match:       regexp.MustCompile(`^a720\.PNC\.perf\.(ipc|bus_access_rd|bus_access_wr)$`),
			Dest:        "a720.PNC.perf.${1}_total",
			Operand:     "a720.PNC.perf.cpus",
			DropSources: true,
		},
		Rule{
			Name:  "drop perf cpus",
			Op:    OpDrop,
			Match: regexp.MustCompile(`^a720\.PNC\.perf\.cpus$`),
		},
		Rule{
			Name:     "cluster sum",
			Op:       OpSum,
			Match:    regexp.MustCompile(`^a720\.(?:b0|b1)\.monitor\.(read_bw|write_bw|total_bw)$`),
			Dest:     "a720.PNC.monitor.sum_$1",
			Requires: []string{"a720.PNC.cpu_utilization"},
		},
	)
	return rules
}

// cpuGroupRe matches the raw utilization series of the given cores.
func cpuGroupRe(ids config.CPUGroup) *regexp.Regexp {
	alts := make([]string, len(ids))
	for i, id := range ids {
		alts[i] = strconv.Itoa(id)
	}
	if len(alts) == 0 {
		// Matches nothing.
		return regexp.MustCompile(`^\b$`)
	}
	return regexp.MustCompile(`^a720\.linux\.(?:` + strings.Join(alts, "|") + `)\.cpu_utilization$`)
}

// Run applies Recipe(cfg) to st. The rules run at most once per store:
// Run reports false and does nothing if st was already aggregated.
func Run(st *series.Store, cfg *config.Config) bool {
	if !st.MarkAggregated() {
		return false
	}
	for _, r := range Recipe(cfg) {
		res := Apply(st, r)
		for _, name := range res.Created {
			log.Debugf("aggregate %s: created %s", r.Name, name)
		}
		for _, name := range res.Skipped {
			log.Warnf("aggregate %s: skipped %s", r.Name, name)
		}
	}
	return true
}

// Apply runs a single rule on st.
func Apply(st *series.Store, r Rule) Result {
	res := Result{Rule: r.Name}
	for _, name := range r.Requires {
		if !st.Has(name) {
			return res
		}
	}
	for _, name := range r.Unless {
		if st.Has(name) {
			return res
		}
	}

	match := func(name string) bool {
		return r.Match.MatchString(name) && (r.Exclude == nil || !r.Exclude.MatchString(name))
	}
	if r.Op == OpDrop {
		for _, name := range st.MatchFunc(match) {
			st.Delete(name)
			res.Dropped = append(res.Dropped, name)
		}
		return res
	}

	groups := make(map[string][]string)
	for _, name := range st.MatchFunc(match) {
		dest := expand(r.Match, r.Dest, name)
		groups[dest] = append(groups[dest], name)
	}
	dests := make([]string, 0, len(groups))
	for d := range groups {
		dests = append(dests, d)
	}
	sort.Strings(dests)

	minCount := r.MinCount
	if minCount < 1 {
		minCount = 1
	}
	for _, dest := range dests {
		names := groups[dest]
		if len(names) < minCount || st.Has(dest) {
			continue
		}
		var err error
		switch r.Op {
		case OpSum, OpAvg:
			err = foldInto(st, names, dest, r.Op == OpAvg)
		case OpScale:
			if len(names) != 1 {
				err = errors.Errorf("%d series map to %s", len(names), dest)
				break
			}
			err = Multiply(st, names[0], r.Operand, dest)
		default:
			err = errors.Errorf("unknown op %v", r.Op)
		}
		if err != nil {
			res.Skipped = append(res.Skipped, fmt.Sprintf("%s: %v", dest, err))
			continue
		}
		res.Created = append(res.Created, dest)
		if r.DropSources {
			for _, name := range names {
				st.Delete(name)
				res.Dropped = append(res.Dropped, name)
			}
		}
	}
	return res
}

func foldInto(st *series.Store, names []string, dest string, avg bool) error {
	in := make(map[string]bool, len(names))
	for _, n := range names {
		in[n] = true
	}
	match := func(name string) bool { return in[name] }
	var n int
	if avg {
		n = AvgFunc(st, match, dest)
	} else {
		n = SumFunc(st, match, dest)
	}
	if n == 0 {
		return errors.Errorf("nothing folded into %s", dest)
	}
	return nil
}

// expand substitutes the submatches of re in name into template.
func expand(re *regexp.Regexp, template, name string) string {
	m := re.FindStringSubmatchIndex(name)
	return string(re.ExpandString(nil, template, name, m))
}
