package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/uniedit/orgauth/internal/utils/requestctx"
)

func TestNew(t *testing.T) {
	t.Run("creates with default config", func(t *testing.T) {
		l := New(nil)
		assert.NotNil(t, l.Logger)
	})

	t.Run("json format", func(t *testing.T) {
		buf := &bytes.Buffer{}
		l := New(&Config{Level: "info", Format: "json", Output: buf})
		l.With("key", "value").Info("test message")

		var entry map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
		assert.Equal(t, "value", entry["key"])
		assert.Equal(t, "test message", entry["msg"])
	})

	t.Run("text format", func(t *testing.T) {
		buf := &bytes.Buffer{}
		l := New(&Config{Level: "info", Format: "text", Output: buf})
		l.Info("test message")

		assert.Contains(t, buf.String(), "test message")
		assert.False(t, strings.HasPrefix(buf.String(), "{"))
	})

	t.Run("level filters", func(t *testing.T) {
		buf := &bytes.Buffer{}
		l := New(&Config{Level: "warn", Format: "json", Output: buf})
		l.Info("dropped")
		assert.Empty(t, buf.String())
	})
}

func TestLogger_RequestID(t *testing.T) {
	buf := &bytes.Buffer{}
	l := New(&Config{Level: "info", Format: "json", Output: buf})

	ctx := requestctx.WithRequestID(context.Background(), "req-42")
	l.With("component", "test").InfoContext(ctx, "handled")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "req-42", entry["request_id"])
	assert.Equal(t, "test", entry["component"])
}

func TestLogger_Context(t *testing.T) {
	t.Run("ContextWithLogger and FromContext", func(t *testing.T) {
		l := New(&Config{Output: &bytes.Buffer{}})
		ctx := ContextWithLogger(context.Background(), l)
		assert.Equal(t, l, FromContext(ctx))
	})

	t.Run("FromContext returns default when not set", func(t *testing.T) {
		assert.NotNil(t, FromContext(context.Background()))
	})
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"debug", "DEBUG"},
		{"INFO", "INFO"},
		{"warning", "WARN"},
		{"error", "ERROR"},
		{"unknown", "INFO"},
		{"", "INFO"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, parseLevel(tt.input).String())
		})
	}
}

func TestNewZapLogger(t *testing.T) {
	t.Run("json", func(t *testing.T) {
		buf := &bytes.Buffer{}
		l, err := NewZapLogger(&Config{Level: "debug", Format: "json", Output: buf})
		require.NoError(t, err)

		l.Debug("invitation created", zap.String("invitation_id", "abc"))

		var entry map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
		assert.Equal(t, "invitation created", entry["msg"])
		assert.Equal(t, "abc", entry["invitation_id"])
		assert.Equal(t, "debug", entry["level"])
	})

	t.Run("level filters", func(t *testing.T) {
		buf := &bytes.Buffer{}
		l, err := NewZapLogger(&Config{Level: "error", Output: buf})
		require.NoError(t, err)

		l.Warn("dropped")
		assert.Empty(t, buf.String())
	})

	t.Run("text", func(t *testing.T) {
		buf := &bytes.Buffer{}
		l, err := NewZapLogger(&Config{Level: "info", Format: "text", Output: buf})
		require.NoError(t, err)

		l.Info("hello")
		assert.Contains(t, buf.String(), "INFO")
		assert.Contains(t, buf.String(), "hello")
	})
}
