// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package transcript reassembles logical log lines from the console
// captures of SoC test runs.
//
// A transcript is either plain text or a serial sniffer capture in
// which every received fragment is framed as "RX> payload". In a
// framed capture, fragments that do not end in the literal escape
// `\n` are joined with the following fragment, and a leading
// "[<integer>]" on the reassembled line is its timestamp.
package transcript

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode"

	log "github.com/sirupsen/logrus"

	"github.com/socperf/socperf/series"
)

// A Mode is the framing of a transcript.
type Mode int

const (
	// Plain transcripts hold one logical line per raw line.
	Plain Mode = iota
	// Framed transcripts are serial sniffer captures with
	// TX>/RX> markers.
	Framed
)

func (m Mode) String() string {
	switch m {
	case Plain:
		return "plain"
	case Framed:
		return "framed"
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// A Line is one logical line of a transcript.
type Line struct {
	Text string
	// Timestamp is series.NoTimestamp if the line carries none.
	Timestamp int64
	// Number is the raw line number of the last fragment.
	Number int
}

const (
	// detectLines is how many raw lines are examined to detect the
	// transcript mode.
	detectLines = 10
	// maxLineSize bounds a single raw line.
	maxLineSize = 4 << 20

	rxMarker      = "RX> "
	lineEnd       = `\n`
	carriageRet   = `\r`
	noisePrefix   = "Erroneous data"
	maxEndEscapes = 2
)

// A Reader reads logical lines from a transcript.
//
// Its API is modeled on bufio.Scanner. To construct a new Reader,
// either call NewReader, or call Reset on a zeroed Reader.
type Reader struct {
	s        *bufio.Scanner
	err      error
	fileName string

	mode     Mode
	detected bool
	peek     []string // raw lines read during mode detection
	raw      int      // raw lines consumed

	pending    strings.Builder
	hasPending bool
	eof        bool

	line    Line
	skipped int
	dropped int
}

// NewReader constructs a reader for the transcript in r. fileName is
// used in error messages; it is purely diagnostic.
func NewReader(r io.Reader, fileName string) *Reader {
	reader := new(Reader)
	reader.Reset(r, fileName)
	return reader
}

// Reset resets the reader to begin reading from a new input.
func (r *Reader) Reset(ior io.Reader, fileName string) {
	r.s = bufio.NewScanner(ior)
	r.s.Buffer(make([]byte, 0, 64<<10), maxLineSize)
	if fileName == "" {
		fileName = "<unknown>"
	}
	r.fileName = fileName
	r.err = nil
	r.mode = Plain
	r.detected = false
	r.peek = r.peek[:0]
	r.raw = 0
	r.pending.Reset()
	r.hasPending = false
	r.eof = false
	r.line = Line{}
	r.skipped = 0
	r.dropped = 0
}

// detect buffers up to detectLines raw lines and decides the mode.
func (r *Reader) detect() {
	r.detected = true
	for len(r.peek) < detectLines && r.s.Scan() {
		r.peek = append(r.peek, r.s.Text())
	}
	for _, l := range r.peek {
		if isFramed(l) {
			r.mode = Framed
			break
		}
	}
	log.Debugf("transcript %s: %s mode", r.fileName, r.mode)
}

// isFramed reports whether l holds "TX>" followed later by "RX>".
func isFramed(l string) bool {
	i := strings.Index(l, "TX>")
	return i >= 0 && strings.Contains(l[i+3:], "RX>")
}

// nextRaw returns the next raw line.
func (r *Reader) nextRaw() (string, bool) {
	if len(r.peek) > 0 {
		l := r.peek[0]
		r.peek = r.peek[1:]
		r.raw++
		return l, true
	}
	if r.s.Scan() {
		r.raw++
		return r.s.Text(), true
	}
	return "", false
}

// Scan advances the reader to the next logical line and reports
// whether a line was read. The caller should use the Line method to get
// the line. If Scan reaches EOF or an I/O error occurs, it returns
// false, in which case the caller should use the Err method to check
// for errors.
func (r *Reader) Scan() bool {
	if r.err != nil || r.eof {
		return false
	}
	if !r.detected {
		r.detect()
	}

	for {
		raw, ok := r.nextRaw()
		if !ok {
			break
		}
		if r.mode == Plain {
			r.line = Line{
				Text:      strings.TrimRightFunc(raw, unicode.IsSpace),
				Timestamp: series.NoTimestamp,
				Number:    r.raw,
			}
			return true
		}

		i := strings.Index(raw, rxMarker)
		if i < 0 {
			r.skipped++
			log.Debugf("%s:%d: skipping unframed line", r.fileName, r.raw)
			continue
		}
		payload := raw[i+len(rxMarker):]
		if strings.HasPrefix(payload, noisePrefix) {
			r.dropped++
			continue
		}
		r.pending.WriteString(payload)
		r.hasPending = true
		if !strings.HasSuffix(strings.TrimRightFunc(payload, unicode.IsSpace), lineEnd) {
			continue
		}
		r.emit()
		return true
	}

	r.eof = true
	if err := r.s.Err(); err != nil {
		r.err = fmt.Errorf("%s:%d: %w", r.fileName, r.raw, err)
		return false
	}
	if r.hasPending {
		r.emit()
		return true
	}
	return false
}

// emit turns the pending fragments into the current line.
func (r *Reader) emit() {
	text := r.pending.String()
	r.pending.Reset()
	r.hasPending = false

	text = strings.TrimRightFunc(text, unicode.IsSpace)
	for n := 0; n < maxEndEscapes; n++ {
		if strings.HasSuffix(text, lineEnd) {
			text = strings.TrimSuffix(text, lineEnd)
		} else if strings.HasSuffix(text, carriageRet) {
			text = strings.TrimSuffix(text, carriageRet)
		} else {
			break
		}
	}
	text = strings.TrimRightFunc(text, unicode.IsSpace)
	text, ts := splitTimestamp(text)
	r.line = Line{Text: text, Timestamp: ts, Number: r.raw}
}

// splitTimestamp parses and removes a leading "[<integer>]".
func splitTimestamp(text string) (string, int64) {
	if len(text) < 3 || text[0] != '[' {
		return text, series.NoTimestamp
	}
	end := strings.IndexByte(text, ']')
	if end < 2 {
		return text, series.NoTimestamp
	}
	ts, err := strconv.ParseInt(text[1:end], 10, 64)
	if err != nil || ts < 0 {
		return text, series.NoTimestamp
	}
	return text[end+1:], ts
}

// Line returns the line that was just read by Scan.
func (r *Reader) Line() Line {
	return r.line
}

// Err returns the first non-EOF I/O error that was encountered by the
// Reader.
func (r *Reader) Err() error {
	return r.err
}

// Mode returns the detected mode. It is Plain until the first call to
// Scan.
func (r *Reader) Mode() Mode {
	return r.mode
}

// Skipped returns the number of raw lines in a framed transcript that
// carried no RX payload.
func (r *Reader) Skipped() int {
	return r.skipped
}

// Dropped returns the number of fragments discarded as transport
// noise.
func (r *Reader) Dropped() int {
	return r.dropped
}

// FileName returns the name passed to NewReader or Reset.
func (r *Reader) FileName() string {
	return r.fileName
}
