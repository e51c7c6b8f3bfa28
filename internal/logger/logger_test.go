package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger(t *testing.T) {
	tests := []struct {
		name      string
		level     slog.Level
		format    string
		checkFunc func(t *testing.T, output string)
	}{
		{
			name:   "Text logger at info level",
			level:  slog.LevelInfo,
			format: "text",
			checkFunc: func(t *testing.T, output string) {
				assert.Contains(t, output, "level=INFO")
				assert.Contains(t, output, `msg="test message"`)
			},
		},
		{
			name:   "JSON logger at debug level",
			level:  slog.LevelDebug,
			format: "json",
			checkFunc: func(t *testing.T, output string) {
				var logEntry map[string]any
				require.NoError(t, json.Unmarshal([]byte(output), &logEntry))
				assert.Equal(t, "DEBUG", logEntry["level"])
				assert.Equal(t, "test message", logEntry["msg"])
			},
		},
		{
			name:   "Unknown format falls back to text",
			level:  slog.LevelInfo,
			format: "fancy",
			checkFunc: func(t *testing.T, output string) {
				assert.Contains(t, output, "level=INFO")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			log := NewLogger(tt.level, tt.format, &buf)

			if tt.level == slog.LevelDebug {
				log.Debug("test message")
			} else {
				log.Info("test message")
			}

			tt.checkFunc(t, buf.String())
		})
	}
}

func TestNewLoggerSuppressesBelowLevel(t *testing.T) {
	var buf bytes.Buffer
	log := NewLogger(slog.LevelWarn, "text", &buf)

	log.Info("quiet")
	log.Warn("loud")

	assert.NotContains(t, buf.String(), "quiet")
	assert.Contains(t, buf.String(), "loud")
}
