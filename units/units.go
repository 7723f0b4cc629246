// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package units knows the measurement units printed by SoC test tools
// and the factors that convert between them.
//
// Rates printed by perf are normalized onto M/sec. Byte quantities use
// binary prefixes: 1 MB is 1024 KB.
package units

import (
	"fmt"
	"math"
	"strings"
	"unicode"
)

// Units of the series produced by the importers.
const (
	MBps  = "MB/s"
	FPS   = "fps"
	Pct   = "%"
	Count = "count"
	IPC   = "ipc"
	Cycle = "cycle"
	NS    = "ns"
	MPerS = "M/sec"
)

// A Class specifies what class of unit prefixes are in use.
type Class int

const (
	// Decimal values scale by powers of 1000.
	Decimal Class = iota
	// Binary values scale by powers of 1024.
	Binary
)

func (c Class) String() string {
	switch c {
	case Decimal:
		return "Decimal"
	case Binary:
		return "Binary"
	}
	return fmt.Sprintf("Class(%d)", int(c))
}

// ClassOf returns the Class of unit. A unit with a byte measure in the
// numerator, such as "MB/s", is Binary. Everything else is Decimal.
func ClassOf(unit string) Class {
	num, _, _ := strings.Cut(unit, "/")
	num = strings.TrimSpace(num)
	if _, ok := byteFactors[num]; ok && num != "" {
		return Binary
	}
	if num == "bytes" {
		return Binary
	}
	return Decimal
}

var byteFactors = map[string]float64{
	"B":   1,
	"KB":  1 << 10,
	"KiB": 1 << 10,
	"MB":  1 << 20,
	"MiB": 1 << 20,
	"GB":  1 << 30,
	"GiB": 1 << 30,
	"TB":  1 << 40,
	"TiB": 1 << 40,
}

// ByteScale returns the number of bytes in one prefix unit, such as
// 1024 for "KB". Unknown prefixes scale by 1.
func ByteScale(prefix string) float64 {
	if f, ok := byteFactors[strings.TrimSpace(prefix)]; ok {
		return f
	}
	return 1
}

// ConvertBytes converts v from one byte prefix unit to another.
func ConvertBytes(v float64, from, to string) float64 {
	return v * ByteScale(from) / ByteScale(to)
}

// bytePrefixes are the prefixes TidyBytes chooses from, smallest first.
var bytePrefixes = []string{"B", "KB", "MB", "GB", "TB"}

// TidyBytes picks the byte prefix that brings v, measured in unit, into
// [1, 1024). It returns the factor that converts values from unit to
// the new unit, and the new unit. Units that are not Binary, and zero
// or non-finite values, are returned with a factor of 1.
func TidyBytes(v float64, unit string) (factor float64, tidy string) {
	if ClassOf(unit) != Binary || v == 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return 1, unit
	}
	num, rest, hasRest := strings.Cut(unit, "/")
	num = strings.TrimSpace(num)
	if num == "bytes" {
		num = "B"
	}
	abs := math.Abs(v) * ByteScale(num)
	best := bytePrefixes[0]
	for _, p := range bytePrefixes[1:] {
		if abs < ByteScale(p) {
			break
		}
		best = p
	}
	tidy = best
	if hasRest {
		tidy += "/" + rest
	}
	return ConvertBytes(1, num, best), tidy
}

// perfRates maps perf's rate units onto multipliers to M/sec.
var perfRates = map[string]float64{
	"/sec":  1.0 / (1 << 20),
	"K/sec": 1.0 / (1 << 10),
	"M/sec": 1,
	"G/sec": 1 << 10,
}

// PerfRate returns the factor that converts a value printed in the
// given perf rate unit to M/sec. ok is false if unit is not a rate.
func PerfRate(unit string) (factor float64, ok bool) {
	factor, ok = perfRates[strings.TrimSpace(unit)]
	return
}

// IsLatency reports whether a monitor column with the given name and
// unit measures latency, where lower values are better.
func IsLatency(name, unit string) bool {
	return strings.EqualFold(strings.TrimSpace(unit), NS) ||
		strings.Contains(strings.ToLower(name), "lat")
}

// SplitColumn splits a table column heading of the form "name(unit)"
// into its parts. A heading without parentheses has no unit.
func SplitColumn(col string) (name, unit string) {
	col = strings.TrimSpace(col)
	i := strings.IndexByte(col, '(')
	if i < 0 || !strings.HasSuffix(col, ")") {
		return Key(col), ""
	}
	return Key(col[:i]), strings.TrimSpace(col[i+1 : len(col)-1])
}

// Key normalizes s for use as a series name component: lower case,
// with runs of spaces and slashes replaced by a single underscore.
func Key(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	var b strings.Builder
	sep := false
	for _, r := range s {
		if unicode.IsSpace(r) || r == '/' {
			sep = true
			continue
		}
		if sep && b.Len() > 0 {
			b.WriteByte('_')
		}
		sep = false
		b.WriteRune(r)
	}
	return b.String()
}
