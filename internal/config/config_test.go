package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `{
		"files": {"main": "main.bin", "test": "catalog.bin"},
		"store": {"dir": "/tmp/objs", "sync": true},
		"log": {
			"level": "debug",
			"format": "json",
			"outputs": ["stderr", "logs/demo.log"],
			"rotation": {"enable": true, "max_size_mb": 5, "compress": true}
		}
	}`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, FilesConfig{Main: "main.bin", Test: "catalog.bin"}, cfg.Files)
	assert.Equal(t, StoreConfig{Dir: "/tmp/objs", Sync: true}, cfg.Store)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, []string{"stderr", "logs/demo.log"}, cfg.Log.Outputs)
	assert.True(t, cfg.Log.Rotation.Enable)
	assert.True(t, cfg.Log.Rotation.Compress)
	assert.Equal(t, 5, cfg.Log.Rotation.MaxSizeMB)
	assert.Equal(t, 3, cfg.Log.Rotation.MaxBackups, "unset keys keep defaults")
}

func TestLoadEnvOverrides(t *testing.T) {
	path := writeConfig(t, `{"files": {"main": "main.bin"}}`)
	t.Setenv("OBJCODEC_FILES_MAIN", "from-env.bin")
	t.Setenv("OBJCODEC_LOG_LEVEL", "warn")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env.bin", cfg.Files.Main)
	assert.Equal(t, "objcodec-test.bin", cfg.Files.Test)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoadPathFromEnv(t *testing.T) {
	path := writeConfig(t, `{"files": {"test": "env-path.bin"}}`)
	t.Setenv("OBJCODEC_CONFIG", path)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "env-path.bin", cfg.Files.Test)
}

func TestLoadMissingDefaultIsFine(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("OBJCODEC_CONFIG", "")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadErrors(t *testing.T) {
	t.Run("MissingExplicitFile", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.json"))
		assert.Error(t, err)
	})

	t.Run("InvalidLevel", func(t *testing.T) {
		_, err := Load(writeConfig(t, `{"log": {"level": "loud"}}`))
		assert.ErrorContains(t, err, "log.level")
	})

	t.Run("EmptyMainFile", func(t *testing.T) {
		_, err := Load(writeConfig(t, `{"files": {"main": " "}}`))
		assert.ErrorContains(t, err, "files.main")
	})

	t.Run("BadJSON", func(t *testing.T) {
		_, err := Load(writeConfig(t, `{"files": `))
		assert.Error(t, err)
	})
}
