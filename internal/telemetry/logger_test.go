package telemetry

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Mock handler to inspect log records
type mockHandler struct {
	mu      sync.Mutex
	records []slog.Record
	attrs   []slog.Attr
	group   string
	enabled bool
}

func (h *mockHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.enabled
}

func (h *mockHandler) Handle(ctx context.Context, record slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.records = append(h.records, record)
	return nil
}

func (h *mockHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &mockHandler{enabled: h.enabled, attrs: append(h.attrs, attrs...), group: h.group}
}

func (h *mockHandler) WithGroup(name string) slog.Handler {
	return &mockHandler{enabled: h.enabled, attrs: h.attrs, group: name}
}

func (h *mockHandler) getRecords() []slog.Record {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.records
}

func TestMultiHandler(t *testing.T) {
	h1 := &mockHandler{enabled: true}
	h2 := &mockHandler{enabled: false}
	multi := &multiHandler{handlers: []slog.Handler{h1, h2}}

	t.Run("Enabled", func(t *testing.T) {
		assert.True(t, multi.Enabled(context.Background(), slog.LevelInfo))
	})

	t.Run("Handle skips disabled handlers", func(t *testing.T) {
		record := slog.NewRecord(time.Now(), slog.LevelInfo, "publish page", 0)
		require.NoError(t, multi.Handle(context.Background(), record))
		assert.Len(t, h1.getRecords(), 1)
		assert.Empty(t, h2.getRecords())
		assert.Equal(t, "publish page", h1.getRecords()[0].Message)
	})

	t.Run("WithAttrs", func(t *testing.T) {
		attrs := []slog.Attr{slog.String("run_id", "r1")}
		next, ok := multi.WithAttrs(attrs).(*multiHandler)
		require.True(t, ok)
		for _, h := range next.handlers {
			assert.Equal(t, attrs, h.(*mockHandler).attrs)
		}
	})

	t.Run("WithGroup", func(t *testing.T) {
		next, ok := multi.WithGroup("wiki").(*multiHandler)
		require.True(t, ok)
		for _, h := range next.handlers {
			assert.Equal(t, "wiki", h.(*mockHandler).group)
		}
	})
}

func TestInitLogger(t *testing.T) {
	original := slog.Default()
	t.Cleanup(func() { slog.SetDefault(original) })

	t.Run("Debug with run attribute", func(t *testing.T) {
		var buf bytes.Buffer
		closeFn := InitLogger(LoggerOptions{
			Debug:  true,
			Output: &buf,
			Attrs:  []slog.Attr{slog.String("run_id", "abc")},
		})
		defer closeFn()

		slog.Debug("fetching service", "url", "http://c/services/1")

		var line map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
		assert.Equal(t, "fetching service", line["msg"])
		assert.Equal(t, "DEBUG", line["level"])
		assert.Equal(t, "abc", line["run_id"])
	})

	t.Run("Info level hides debug", func(t *testing.T) {
		var buf bytes.Buffer
		InitLogger(LoggerOptions{Output: &buf})()
		slog.Debug("hidden")
		assert.Empty(t, buf.String())
	})

	t.Run("File logging", func(t *testing.T) {
		var buf bytes.Buffer
		path := filepath.Join(t.TempDir(), "svcwiki.log")
		closeFn := InitLogger(LoggerOptions{Output: &buf, LogFile: path})
		slog.Info("file message")
		closeFn()

		content, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(content), "file message")
		assert.Contains(t, buf.String(), "file message")
	})

	t.Run("File error", func(t *testing.T) {
		var buf bytes.Buffer
		path := filepath.Join(t.TempDir(), "missing", "svcwiki.log")
		InitLogger(LoggerOptions{Output: &buf, LogFile: path})()
		assert.Contains(t, buf.String(), "failed to open log file")
	})
}

func TestLogError(t *testing.T) {
	original := slog.Default()
	t.Cleanup(func() { slog.SetDefault(original) })

	var buf bytes.Buffer
	InitLogger(LoggerOptions{Output: &buf})
	LogError("store page failed", assert.AnError, "title", "Service - BLAST")

	assert.Contains(t, buf.String(), `"error":"assert.AnError general error for testing"`)
	assert.Contains(t, buf.String(), `"title":"Service - BLAST"`)
}
