package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/oy3o/objcodec/internal/config"
)

func TestFileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "demo.log")
	log, err := New(config.LogConfig{Level: "warn", Format: "json", Outputs: []string{path}})
	require.NoError(t, err)

	log.Info("dropped")
	log.Warn("kept", zap.String("file", "objcodec-main.bin"))
	require.NoError(t, log.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "dropped")
	assert.Contains(t, string(data), `"msg":"kept"`)
	assert.Contains(t, string(data), `"file":"objcodec-main.bin"`)
}

func TestRotatedFileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rotated.log")
	log, err := New(config.LogConfig{
		Level:    "debug",
		Outputs:  []string{path},
		Rotation: config.RotationConfig{Enable: true, MaxSizeMB: 1},
	})
	require.NoError(t, err)

	log.Debug("registered type")
	_ = log.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "registered type")
}

func TestLevels(t *testing.T) {
	cases := map[string]zapcore.Level{
		"debug":   zap.DebugLevel,
		"INFO":    zap.InfoLevel,
		"warning": zap.WarnLevel,
		"error":   zap.ErrorLevel,
		"":        zap.InfoLevel,
	}
	for level, want := range cases {
		log, err := New(config.LogConfig{Level: level, Outputs: []string{"stderr"}})
		require.NoError(t, err)
		assert.True(t, log.Core().Enabled(want), level)
		if want > zap.DebugLevel {
			assert.False(t, log.Core().Enabled(want-1), level)
		}
	}
}
