package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"
)

// Logger interface and implementations
type Logger interface {
	Infof(component string, format string, args ...interface{})
	Errorf(component string, format string, args ...interface{})
}

type NoopLogger struct{}

func (NoopLogger) Infof(component, format string, args ...interface{})  {}
func (NoopLogger) Errorf(component, format string, args ...interface{}) {}

type FileLogger struct{ w io.Writer }

func NewFileLogger(w io.Writer) FileLogger { return FileLogger{w: w} }
func (l FileLogger) Infof(component string, format string, args ...interface{}) {
	writeLog(l.w, "INFO", component, format, args...)
}
func (l FileLogger) Errorf(component string, format string, args ...interface{}) {
	writeLog(l.w, "ERROR", component, format, args...)
}

func writeLog(w io.Writer, level, component, format string, args ...interface{}) {
	timestamp := time.Now().Format(time.RFC3339)
	msg := fmt.Sprintf(format, args...)
	_, _ = io.WriteString(w, timestamp+" ["+level+"] "+component+": "+msg+"\n")
}

// NewSlog returns a *slog.Logger whose records end up in l under the given
// component. Warnings and errors go to Errorf, everything else to Infof.
func NewSlog(l Logger, component string) *slog.Logger {
	return slog.New(&slogBridge{logger: l, component: component})
}

type slogBridge struct {
	logger    Logger
	component string
	group     string
	attrs     []slog.Attr
}

func (h *slogBridge) Enabled(context.Context, slog.Level) bool {
	_, noop := h.logger.(NoopLogger)
	return !noop
}

func (h *slogBridge) Handle(_ context.Context, r slog.Record) error {
	var b strings.Builder
	b.WriteString(r.Message)
	for _, a := range h.attrs {
		writeAttr(&b, a)
	}
	r.Attrs(func(a slog.Attr) bool {
		writeAttr(&b, h.qualify(a))
		return true
	})

	if r.Level >= slog.LevelWarn {
		h.logger.Errorf(h.component, "%s", b.String())
	} else {
		h.logger.Infof(h.component, "%s", b.String())
	}
	return nil
}

func (h *slogBridge) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := *h
	next.attrs = append([]slog.Attr(nil), h.attrs...)
	for _, a := range attrs {
		next.attrs = append(next.attrs, h.qualify(a))
	}
	return &next
}

// qualify prefixes the key with the open group.
func (h *slogBridge) qualify(a slog.Attr) slog.Attr {
	if h.group != "" && a.Key != "" {
		a.Key = h.group + "." + a.Key
	}
	return a
}

func writeAttr(b *strings.Builder, a slog.Attr) {
	if a.Equal(slog.Attr{}) {
		return
	}
	b.WriteByte(' ')
	b.WriteString(a.Key)
	b.WriteByte('=')
	b.WriteString(a.Value.Resolve().String())
}

func (h *slogBridge) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	next := *h
	if next.group != "" {
		next.group += "." + name
	} else {
		next.group = name
	}
	return &next
}
