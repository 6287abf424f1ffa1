// Package logsink is the process-wide log sink shared by every component
// in the enclave image.
//
// A sink renders each record as a single line on its writer:
//
//	INFO     2021-03-04 10:11:12.345 | pkg/supervisor/supervisor.go:88 process started
//
// The level is left-aligned in eight columns and the timestamp is local
// time with millisecond precision. Every record must carry its source
// file and line; Emit panics on a record without them.
//
// Exactly one sink is active per process. Init installs it; later calls
// leave the installed sink in place and only log a trace record.
package logsink

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"time"
)

// TimeLayout is the timestamp layout of a rendered record.
const TimeLayout = "2006-01-02 15:04:05.000"

// ErrMissingLocation is the panic value (wrapped) for a record emitted
// without a source file or line.
var ErrMissingLocation = errors.New("log record has no source location")

// Record is one log call. It is rendered immediately and not retained.
type Record struct {
	Level   Level
	Time    time.Time
	File    string
	Line    int
	Message string
}

// Sink writes rendered records to a writer. Writes are unbuffered.
type Sink struct {
	mu  sync.Mutex // held only for the duration of a single Write
	w   io.Writer
	now func() time.Time
}

// New returns a sink writing to w. It is not installed globally; see Init.
func New(w io.Writer) *Sink {
	return &Sink{w: w, now: time.Now}
}

// Enabled admits every level. Filtering happens only through the
// package threshold (SetMaxLevel).
func (s *Sink) Enabled(Level) bool { return true }

// Flush is a no-op: the sink holds no buffer.
func (s *Sink) Flush() {}

// Emit renders r and writes it as one line. A record with an empty File
// or a non-positive Line panics.
func (s *Sink) Emit(r Record) {
	if !s.Enabled(r.Level) {
		return
	}
	if r.File == "" || r.Line <= 0 {
		panic(fmt.Errorf("%w: %s %q", ErrMissingLocation, r.Level, r.Message))
	}
	if r.Time.IsZero() {
		r.Time = s.now()
	}
	line := Format(r)

	s.mu.Lock()
	_, _ = io.WriteString(s.w, line)
	s.mu.Unlock()
}

// Format renders r in the sink layout, including the trailing newline.
// It does not check the source location.
func Format(r Record) string {
	return fmt.Sprintf("%-8s %s | %s:%d %s\n",
		r.Level,
		r.Time.Local().Format(TimeLayout),
		r.File,
		r.Line,
		r.Message,
	)
}
