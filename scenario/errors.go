// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package scenario

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/socperf/socperf/series"
)

// A LineError records a line that matched a recognizer but could not
// be turned into observations. Line errors are logged and the import
// continues.
type LineError struct {
	Path      string
	Line      int
	Timestamp int64 // last timestamp seen before the line
	Text      string
	Err       error
}

func (e *LineError) Error() string {
	return fmt.Sprintf("%s:%d: %v", e.Path, e.Line, e.Err)
}

func (e *LineError) Unwrap() error { return e.Err }

// A FatalError stops the import of a transcript. It is returned when a
// line names something that cannot be mapped to a series without
// guessing, such as an unknown display.
type FatalError struct {
	Path string
	Line int
	Msg  string
}

func (e *FatalError) Error() string {
	return fmt.Sprintf("%s:%d: %s", e.Path, e.Line, e.Msg)
}

// fatalf returns a FatalError without position. The dispatcher fills
// in the position.
func fatalf(format string, args ...interface{}) *FatalError {
	return &FatalError{Msg: fmt.Sprintf(format, args...)}
}

// isFatal reports whether err must stop the import.
func isFatal(err error) bool {
	var fe *FatalError
	return errors.As(err, &fe) || errors.Is(err, series.ErrMissingTimestamp)
}
