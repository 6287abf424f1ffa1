package logsink

import (
	"context"
	"log/slog"
	"runtime"
	"strconv"
	"strings"
)

// Handler adapts the sink to slog so components can take a *slog.Logger.
// The source location comes from the record's PC; a record built without
// one (PC == 0) reaches Emit without a location and panics.
func (s *Sink) Handler() slog.Handler {
	return &handler{sink: s}
}

type handler struct {
	sink   *Sink
	prefix string // group path, "a.b."
	attrs  string // pre-rendered " k=v" pairs from WithAttrs
}

// Enabled applies the package threshold only to the installed sink. A
// handler on a sink that was never installed admits every level.
func (h *handler) Enabled(_ context.Context, l slog.Level) bool {
	if active.Load() != h.sink {
		return true
	}
	return levelAllowed(FromSlog(l))
}

func (h *handler) Handle(_ context.Context, r slog.Record) error {
	var file string
	var line int
	if r.PC != 0 {
		frame, _ := runtime.CallersFrames([]uintptr{r.PC}).Next()
		file, line = frame.File, frame.Line
	}

	var b strings.Builder
	b.WriteString(r.Message)
	b.WriteString(h.attrs)
	r.Attrs(func(a slog.Attr) bool {
		appendAttr(&b, h.prefix, a)
		return true
	})

	h.sink.Emit(Record{
		Level:   FromSlog(r.Level),
		Time:    r.Time,
		File:    file,
		Line:    line,
		Message: b.String(),
	})
	return nil
}

func (h *handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	var b strings.Builder
	b.WriteString(h.attrs)
	for _, a := range attrs {
		appendAttr(&b, h.prefix, a)
	}
	return &handler{sink: h.sink, prefix: h.prefix, attrs: b.String()}
}

func (h *handler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	return &handler{sink: h.sink, prefix: h.prefix + name + ".", attrs: h.attrs}
}

func appendAttr(b *strings.Builder, prefix string, a slog.Attr) {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return
	}
	if a.Value.Kind() == slog.KindGroup {
		p := prefix
		if a.Key != "" {
			p += a.Key + "."
		}
		for _, ga := range a.Value.Group() {
			appendAttr(b, p, ga)
		}
		return
	}
	b.WriteByte(' ')
	b.WriteString(prefix)
	b.WriteString(a.Key)
	b.WriteByte('=')
	b.WriteString(quoteValue(a.Value.String()))
}

func quoteValue(s string) string {
	if s == "" || strings.ContainsAny(s, " =\"\t\n") {
		return strconv.Quote(s)
	}
	return s
}
