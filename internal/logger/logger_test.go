package logger

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew_FormatFromEnvironment(t *testing.T) {
	tests := []struct {
		environment string
		wantJSON    bool
	}{
		{"production", true},
		{"staging", false},
		{"development", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.environment, func(t *testing.T) {
			var buf bytes.Buffer
			New(Config{Writer: &buf, Environment: tt.environment}).Info("hello")

			if tt.wantJSON {
				assert.Contains(t, buf.String(), `"msg":"hello"`)
			} else {
				assert.Contains(t, buf.String(), "INF")
				assert.Contains(t, buf.String(), "hello")
			}
		})
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"DEBUG":   slog.LevelDebug,
		"info":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"bogus":   slog.LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), in)
	}

	assert.True(t, ValidLevel(" Warn "))
	assert.False(t, ValidLevel("bogus"))
}

func TestPrettyHandler_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Writer: &buf, Format: formatPretty, Level: slog.LevelWarn})

	log.Info("quiet")
	log.Warn("loud")

	assert.NotContains(t, buf.String(), "quiet")
	assert.Contains(t, buf.String(), "WRN")
	assert.Contains(t, buf.String(), "loud")
}

func TestPrettyHandler_AttrsAndGroups(t *testing.T) {
	var buf bytes.Buffer
	h := NewPrettyHandler(&buf, nil)
	log := slog.New(h).With("recipe_id", 7).WithGroup("http").With("status", 201)

	log.Info("created", "path", "/api/v1/recipes")

	out := buf.String()
	assert.Contains(t, out, "recipe_id=7")
	assert.Contains(t, out, "http.status=201")
	assert.Contains(t, out, "http.path=/api/v1/recipes")
}

func TestPrettyHandler_QuotesSpaces(t *testing.T) {
	var buf bytes.Buffer
	slog.New(NewPrettyHandler(&buf, nil)).Info("search", "q", "tomato soup")

	assert.Contains(t, buf.String(), `q="tomato soup"`)
}

func TestLogger_Helpers(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Writer: &buf, Format: formatJSON})

	log.WithError(errors.New("disk full")).WithFields(map[string]any{"driver": "fs"}).Error("upload failed")

	assert.Contains(t, buf.String(), `"error":"disk full"`)
	assert.Contains(t, buf.String(), `"driver":"fs"`)
}

func TestContext(t *testing.T) {
	fallback := Discard().Logger
	assert.Same(t, fallback, FromContext(context.Background(), fallback))

	reqLog := slog.New(slog.DiscardHandler)
	ctx := IntoContext(context.Background(), reqLog)
	assert.Same(t, reqLog, FromContext(ctx, fallback))
}

func TestFormatLevel(t *testing.T) {
	label, _ := formatLevel(slog.LevelError + 4)
	assert.Equal(t, "ERR", label)
	label, _ = formatLevel(slog.LevelDebug)
	assert.Equal(t, "DBG", label)
}
