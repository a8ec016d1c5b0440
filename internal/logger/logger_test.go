package logger

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zapcore.Level
	}{
		{"debug", zapcore.DebugLevel},
		{"INFO", zapcore.InfoLevel},
		{"warning", zapcore.WarnLevel},
		{"error", zapcore.ErrorLevel},
		{"nonsense", zapcore.InfoLevel},
		{"", zapcore.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLevel(tt.in))
		})
	}
}

func TestNew_FileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	log := New(Config{Level: "debug", Format: "json", Output: path})
	require.NotNil(t, log)

	log.Debug("hello")
	require.NoError(t, log.Sync())
	assert.FileExists(t, path)
}

func TestForEnvironment(t *testing.T) {
	tests := []struct {
		name       string
		env        string
		level      string
		format     string
		wantFormat string
		wantLevel  string
	}{
		{"production defaults to json", "production", "warn", "", "json", "warn"},
		{"development defaults to console", "development", "", "", "console", "info"},
		{"format overrides production", "production", "", "console", "console", "info"},
		{"format overrides development", "development", "debug", "JSON", "json", "debug"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := ForEnvironment(tt.env, tt.level, tt.format)
			assert.Equal(t, tt.wantFormat, cfg.Format)
			assert.Equal(t, tt.wantLevel, cfg.Level)
		})
	}

	assert.NotNil(t, NewForEnvironment("production", "warn", ""))
}
