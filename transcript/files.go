// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package transcript

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// A Files reads logical lines from a sequence of transcripts.
//
// Each transcript gets a fresh Reader, so framing and pending
// fragments never carry from one file to the next.
type Files struct {
	// Paths is the list of files to read. Entries containing glob
	// metacharacters are expanded with filepath.Glob.
	Paths []string

	// AllowStdin indicates that the path "-" should be treated as
	// stdin.
	AllowStdin bool

	// inputs is the sequence of remaining inputs, or nil if this
	// Files has not started yet.
	inputs []string

	reader  Reader
	file    *os.File
	path    string
	isStdin bool
	started bool // reader holds the current file
	err     error
}

// init does first-use initialization of f.
func (f *Files) init() error {
	f.inputs = []string{}
	for _, p := range f.Paths {
		if f.AllowStdin && p == "-" {
			f.inputs = append(f.inputs, p)
			continue
		}
		matches, err := filepath.Glob(p)
		if err != nil {
			return errors.Wrapf(err, "bad pattern %q", p)
		}
		if len(matches) == 0 {
			// Let Open report the missing file.
			matches = []string{p}
		}
		f.inputs = append(f.inputs, matches...)
	}
	return nil
}

// Next advances to the next file and reports whether there is one.
// After Next returns true, Scan reads lines from that file until it
// returns false.
func (f *Files) Next() bool {
	if f.err != nil {
		return false
	}
	if f.inputs == nil {
		if err := f.init(); err != nil {
			f.err = err
			return false
		}
	}
	f.close()
	if len(f.inputs) == 0 {
		return false
	}
	path := f.inputs[0]
	f.inputs = f.inputs[1:]

	if f.AllowStdin && path == "-" {
		f.isStdin, f.file = true, os.Stdin
	} else {
		file, err := os.Open(path)
		if err != nil {
			f.err = err
			return false
		}
		f.isStdin, f.file = false, file
	}
	f.path = path
	f.started = true
	f.reader.Reset(f.file, path)
	return true
}

// Scan advances to the next logical line of the current file.
func (f *Files) Scan() bool {
	if f.err != nil || !f.started {
		return false
	}
	if f.reader.Scan() {
		return true
	}
	if err := f.reader.Err(); err != nil {
		f.err = err
	}
	return false
}

// Line returns the line that was just read by Scan.
func (f *Files) Line() Line {
	return f.reader.Line()
}

// Path returns the path of the current file.
func (f *Files) Path() string {
	return f.path
}

// Reader returns the reader of the current file.
func (f *Files) Reader() *Reader {
	return &f.reader
}

// Err returns the error that stopped Next or Scan, if any.
func (f *Files) Err() error {
	return f.err
}

// Close releases the current file.
func (f *Files) Close() error {
	f.close()
	return nil
}

func (f *Files) close() {
	if f.file != nil && !f.isStdin {
		f.file.Close()
	}
	f.file = nil
	f.started = false
}
