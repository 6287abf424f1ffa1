package logsink

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"
	"sync/atomic"
)

var (
	active   atomic.Pointer[Sink]
	maxLevel atomic.Int64
)

func init() {
	maxLevel.Store(int64(levelOff))
}

// Init installs a sink writing to stderr as the process sink.
func Init() {
	InitWriter(os.Stderr)
}

// InitWriter installs a sink writing to w. The first call wins and opens
// the threshold to Trace. Later calls, concurrent or not, change nothing
// and only emit a trace record through the sink already installed.
func InitWriter(w io.Writer) {
	if !active.CompareAndSwap(nil, New(w)) {
		Trace("logger already initialized")
		return
	}
	SetMaxLevel(LevelTrace)
}

// Active returns the installed sink, or nil before Init.
func Active() *Sink {
	return active.Load()
}

// SetMaxLevel sets the most verbose level that passes the threshold.
func SetMaxLevel(l Level) {
	maxLevel.Store(int64(l))
}

// MaxLevel returns the current threshold. Before Init no level passes.
func MaxLevel() Level {
	return Level(maxLevel.Load())
}

func levelAllowed(l Level) bool {
	threshold := MaxLevel()
	return threshold != levelOff && l >= threshold
}

// Logger returns a *slog.Logger writing through the installed sink. Before
// Init it discards everything.
func Logger() *slog.Logger {
	s := active.Load()
	if s == nil {
		return slog.New(slog.DiscardHandler)
	}
	return slog.New(s.Handler())
}

// Trace, Debug, Info, Warn and Error format a message and emit it through
// the installed sink, tagged with the caller's file and line.
func Trace(format string, args ...any) { logf(LevelTrace, format, args...) }
func Debug(format string, args ...any) { logf(LevelDebug, format, args...) }
func Info(format string, args ...any)  { logf(LevelInfo, format, args...) }
func Warn(format string, args ...any)  { logf(LevelWarn, format, args...) }
func Error(format string, args ...any) { logf(LevelError, format, args...) }

// logf must be called directly by the exported helper so that the caller
// sits two frames up.
func logf(l Level, format string, args ...any) {
	s := active.Load()
	if s == nil || !levelAllowed(l) {
		return
	}
	_, file, line, _ := runtime.Caller(2)
	s.Emit(Record{
		Level:   l,
		Time:    s.now(),
		File:    file,
		Line:    line,
		Message: fmt.Sprintf(format, args...),
	})
}
