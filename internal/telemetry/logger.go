// Package telemetry configures structured logging for svcwiki runs.
package telemetry

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
)

// LoggerOptions controls InitLogger.
type LoggerOptions struct {
	Debug   bool
	LogFile string
	// Output receives the primary JSON stream. Defaults to stderr so that
	// report output on stdout stays clean.
	Output io.Writer
	// Attrs are attached to every record, e.g. the run ID.
	Attrs []slog.Attr
}

// InitLogger configures the default logger with optional file output. The
// returned function closes the log file, if any.
func InitLogger(opts LoggerOptions) func() {
	level := slog.LevelInfo
	if opts.Debug {
		level = slog.LevelDebug
	}
	out := opts.Output
	if out == nil {
		out = os.Stderr
	}

	handlers := []slog.Handler{slog.NewJSONHandler(out, &slog.HandlerOptions{Level: level})}
	closeFn := func() {}

	if opts.LogFile != "" {
		f, err := os.OpenFile(opts.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err == nil {
			handlers = append(handlers, slog.NewJSONHandler(f, &slog.HandlerOptions{Level: level}))
			closeFn = func() { _ = f.Close() }
		} else {
			fmt.Fprintf(out, "failed to open log file %s: %v\n", opts.LogFile, err)
		}
	}

	var handler slog.Handler = handlers[0]
	if len(handlers) > 1 {
		handler = &multiHandler{handlers: handlers}
	}
	if len(opts.Attrs) > 0 {
		handler = handler.WithAttrs(opts.Attrs)
	}

	slog.SetDefault(slog.New(handler))
	return closeFn
}

// multiHandler fans a record out to several handlers.
type multiHandler struct {
	handlers []slog.Handler
}

func (m *multiHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range m.handlers {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (m *multiHandler) Handle(ctx context.Context, record slog.Record) error {
	for _, h := range m.handlers {
		if !h.Enabled(ctx, record.Level) {
			continue
		}
		if err := h.Handle(ctx, record.Clone()); err != nil {
			return err
		}
	}
	return nil
}

func (m *multiHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	out := make([]slog.Handler, len(m.handlers))
	for i, h := range m.handlers {
		out[i] = h.WithAttrs(attrs)
	}
	return &multiHandler{handlers: out}
}

func (m *multiHandler) WithGroup(name string) slog.Handler {
	out := make([]slog.Handler, len(m.handlers))
	for i, h := range m.handlers {
		out[i] = h.WithGroup(name)
	}
	return &multiHandler{handlers: out}
}

// LogError logs an error message with its error attribute.
func LogError(msg string, err error, args ...any) {
	slog.Error(msg, append(args, "error", err)...)
}
