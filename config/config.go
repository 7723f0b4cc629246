// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package config defines the knobs consumed by the transcript
// importers, the aggregation stage and the output writers.
package config

import (
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Config is the full configuration of socperf.
type Config struct {
	Bus      BusConfig      `yaml:"bus"`
	Importer ImporterConfig `yaml:"importer"`
	Plot     PlotConfig     `yaml:"plot"`
	Log      LogConfig      `yaml:"log"`
}

// BusConfig describes the memory bus of the SoC.
type BusConfig struct {
	// BeatSize is the number of bytes moved per bus access. When
	// positive, perf bus-access counters are converted to MB/s.
	BeatSize float64 `yaml:"beat_size"`
}

// ImporterConfig controls the transcript importers.
type ImporterConfig struct {
	// PrintLog logs every reconstructed transcript line.
	PrintLog bool `yaml:"print_log"`
	// MpstatWarmup is the number of leading mpstat "all" rows to
	// discard.
	MpstatWarmup int           `yaml:"mpstat_warmup"`
	Perf         PerfConfig    `yaml:"perf"`
	Monitor      MonitorConfig `yaml:"monitor"`
	Linux        LinuxConfig   `yaml:"linux"`
}

// PerfConfig controls the perf stat recognizer.
type PerfConfig struct {
	// WithRawCounter keeps perf events that have no derived metric.
	WithRawCounter bool `yaml:"with_raw_counter"`
}

// MonitorConfig selects the optional bandwidth monitor tables.
type MonitorConfig struct {
	WithLimitReq  bool `yaml:"with_limit_req"`
	WithChannelBW bool `yaml:"with_channel_bw"`
}

// LinuxConfig controls the mpstat recognizer and the CPU groups
// averaged by the aggregation stage.
type LinuxConfig struct {
	// KeepRawCPUUtilization keeps the per-core utilization series
	// after they have been averaged into groups.
	KeepRawCPUUtilization bool      `yaml:"keep_raw_cpu_utilization"`
	CPUs                  CPUGroups `yaml:"cpus"`
}

// PlotConfig controls the PNG and HTML charts.
type PlotConfig struct {
	// Marker draws a glyph at every sample.
	Marker bool `yaml:"marker"`
	// MovingAverageWindow, if > 1, overlays a moving average with
	// this many samples.
	MovingAverageWindow int `yaml:"moving_average_window"`
	// HideOriginalSeries draws only the moving average.
	HideOriginalSeries bool `yaml:"hide_original_series"`
}

// LogConfig controls logging. An empty File logs to stderr.
type LogConfig struct {
	Level     string `yaml:"level"`
	File      string `yaml:"file"`
	MaxSizeMB int    `yaml:"max_size_mb"`
}

// A CPUGroup is a list of core ids. In YAML it is either a sequence of
// integers or a string of ids separated by "|", such as "0|1|2".
type CPUGroup []int

// UnmarshalYAML accepts a sequence of ids or a "|" separated string.
func (g *CPUGroup) UnmarshalYAML(n *yaml.Node) error {
	switch n.Kind {
	case yaml.SequenceNode:
		var ids []int
		if err := n.Decode(&ids); err != nil {
			return err
		}
		*g = ids
		return nil
	case yaml.ScalarNode:
		ids, err := ParseCPUGroup(n.Value)
		if err != nil {
			return errors.Wrapf(err, "line %d", n.Line)
		}
		*g = ids
		return nil
	}
	return errors.Errorf("line %d: cpu group must be a list or a \"|\" separated string", n.Line)
}

// ParseCPUGroup parses a "|" separated list of core ids.
func ParseCPUGroup(s string) (CPUGroup, error) {
	var ids CPUGroup
	for _, f := range strings.Split(s, "|") {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		id, err := strconv.Atoi(f)
		if err != nil {
			return nil, errors.Errorf("bad core id %q", f)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// CPUGroups maps a group name to its cores. A cpus mapping in a config
// file replaces the default groups rather than extending them.
type CPUGroups map[string]CPUGroup

// UnmarshalYAML decodes a mapping of group names to CPUGroups.
func (gs *CPUGroups) UnmarshalYAML(n *yaml.Node) error {
	m := make(map[string]CPUGroup)
	if err := n.Decode(&m); err != nil {
		return err
	}
	*gs = m
	return nil
}

// Names returns the group names in sorted order.
func (gs CPUGroups) Names() []string {
	names := make([]string, 0, len(gs))
	for k := range gs {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Importer: ImporterConfig{
			MpstatWarmup: 2,
			Monitor: MonitorConfig{
				WithChannelBW: true,
			},
			Linux: LinuxConfig{
				CPUs: CPUGroups{
					"PNC":    {0, 1, 2, 3, 4, 5, 6, 7},
					"CLPEAK": {8, 9, 10, 11},
				},
			},
		},
		Log: LogConfig{
			Level:     "info",
			MaxSizeMB: 64,
		},
	}
}

// Load reads the YAML file at path on top of Default.
func Load(path string) (*Config, error) {
	cfg := Default()
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open config")
	}
	defer file.Close()

	d := yaml.NewDecoder(file)
	d.KnownFields(true)
	if err := d.Decode(cfg); err != nil && err != io.EOF {
		return nil, errors.Wrapf(err, "parse config %s", path)
	}
	if cfg.Importer.MpstatWarmup < 0 {
		return nil, errors.Errorf("%s: mpstat_warmup must not be negative", path)
	}
	return cfg, nil
}
