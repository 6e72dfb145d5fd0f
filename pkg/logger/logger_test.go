package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/killallgit/stagewise/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want LogLevel
	}{
		{"debug", LevelDebug},
		{"INFO", LevelInfo},
		{"warning", LevelWarn},
		{"error", LevelError},
		{"bogus", LevelInfo},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLevel(tt.in))
		})
	}
}

func TestComponentLogger(t *testing.T) {
	t.Cleanup(func() { SetDefault(nil) })

	t.Run("no-op without default logger", func(t *testing.T) {
		SetDefault(nil)
		assert.NotPanics(t, func() {
			WithComponent("prompt_chain").Debug("ignored %d", 1)
		})
	})

	t.Run("prefixes component and filters by level", func(t *testing.T) {
		var buf bytes.Buffer
		SetDefault(NewWriter(LevelInfo, &buf))

		log := WithComponent("prompt_registry")
		log.Debug("hidden")
		log.Info("resolved %s", "launch_execute")

		out := buf.String()
		assert.NotContains(t, out, "hidden")
		assert.Contains(t, out, "[INFO] [prompt_registry] resolved launch_execute")
	})
}

func TestInit(t *testing.T) {
	t.Cleanup(func() { Close() })

	logPath := filepath.Join(t.TempDir(), "logs", "stagewise.log")
	err := Init(config.LoggingConfig{File: logPath, Level: "debug"})
	require.NoError(t, err)

	Debug("hello %s", "world")
	require.NoError(t, Close())

	content, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Contains(t, string(content), "[DEBUG] hello world")
}
