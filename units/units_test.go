// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package units

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassOf(t *testing.T) {
	test := func(unit string, cls Class) {
		t.Helper()
		assert.Equal(t, cls, ClassOf(unit), unit)
	}
	test("MB/s", Binary)
	test("KB/s", Binary)
	test("GiB/s", Binary)
	test("bytes/op", Binary)
	test("fps", Decimal)
	test("%", Decimal)
	test("M/sec", Decimal)
	test("ns", Decimal)
	test("", Decimal)
}

func TestPerfRate(t *testing.T) {
	for unit, want := range map[string]float64{
		"K/sec": 1.0 / 1024,
		"M/sec": 1,
		"G/sec": 1024,
		"/sec":  1.0 / (1024 * 1024),
	} {
		got, ok := PerfRate(unit)
		assert.True(t, ok, unit)
		assert.Equal(t, want, got, unit)
	}
	_, ok := PerfRate("insn per cycle")
	assert.False(t, ok)
}

func TestByteScale(t *testing.T) {
	assert.Equal(t, 1024.0, ByteScale("KB"))
	assert.Equal(t, float64(1<<30), ByteScale("GiB"))
	assert.Equal(t, 1.0, ByteScale("widgets"))
	assert.Equal(t, 2048.0, ConvertBytes(2, "GB", "MB"))
}

func TestTidyBytes(t *testing.T) {
	for _, test := range []struct {
		v      float64
		unit   string
		factor float64
		tidy   string
	}{
		{1536, "MB/s", 1.0 / 1024, "GB/s"},
		{2048, "KB/s", 1.0 / 1024, "MB/s"},
		{0.5, "GB/s", 1024, "MB/s"},
		{512, "MB/s", 1, "MB/s"},
		{-2048, "MB/s", 1.0 / 1024, "GB/s"},
		{3 << 20, "bytes/op", 1.0 / (1 << 20), "MB/op"},
		{1234.5, "fps", 1, "fps"},
		{0, "MB/s", 1, "MB/s"},
	} {
		factor, tidy := TidyBytes(test.v, test.unit)
		assert.Equal(t, test.factor, factor, "%v %s", test.v, test.unit)
		assert.Equal(t, test.tidy, tidy, "%v %s", test.v, test.unit)
	}
}

func TestSplitColumn(t *testing.T) {
	for _, test := range []struct {
		in, name, unit string
	}{
		{"read_bw(MB/s)", "read_bw", "MB/s"},
		{"Latency (ns)", "latency", "ns"},
		{"rd cnt", "rd_cnt", ""},
	} {
		name, unit := SplitColumn(test.in)
		assert.Equal(t, test.name, name, test.in)
		assert.Equal(t, test.unit, unit, test.in)
	}
}

func TestIsLatency(t *testing.T) {
	assert.True(t, IsLatency("latency", ""))
	assert.True(t, IsLatency("rd_lat_max", "cycle"))
	assert.True(t, IsLatency("delay", "ns"))
	assert.False(t, IsLatency("read_bw", "MB/s"))
}

func TestKey(t *testing.T) {
	assert.Equal(t, "cpu_0", Key(" CPU  0 "))
	assert.Equal(t, "r_w", Key("R/W"))
	assert.Equal(t, "", Key("   "))
}
