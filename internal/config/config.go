// Package config loads the demo configuration with viper.
package config

import (
	"os"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/spf13/viper"
)

// DefaultPath is used when no path is given and OBJCODEC_CONFIG is unset.
const DefaultPath = "config/config.json"

type Config struct {
	Files FilesConfig `mapstructure:"files"`
	Store StoreConfig `mapstructure:"store"`
	Log   LogConfig   `mapstructure:"log"`
}

// FilesConfig names the files the demo writes to.
type FilesConfig struct {
	// Main receives each scenario's output in turn.
	Main string `mapstructure:"main"`
	// Test receives the catalog of sample objects read by the dump command.
	Test string `mapstructure:"test"`
}

type StoreConfig struct {
	Dir  string `mapstructure:"dir"`
	Sync bool   `mapstructure:"sync"`
}

// LogConfig defines logger settings.
type LogConfig struct {
	// Level: debug, info, warn, error
	Level string `mapstructure:"level"`
	// Format: console or json
	Format string `mapstructure:"format"`
	// Outputs: stdout, stderr, or file paths
	Outputs     []string       `mapstructure:"outputs"`
	Rotation    RotationConfig `mapstructure:"rotation"`
	Development bool           `mapstructure:"development"`
}

// RotationConfig controls rotation of file outputs.
type RotationConfig struct {
	Enable     bool `mapstructure:"enable"`
	MaxSizeMB  int  `mapstructure:"max_size_mb"`
	MaxBackups int  `mapstructure:"max_backups"`
	MaxAgeDays int  `mapstructure:"max_age_days"`
	Compress   bool `mapstructure:"compress"`
}

func Default() *Config {
	return &Config{
		Files: FilesConfig{
			Main: "objcodec-main.bin",
			Test: "objcodec-test.bin",
		},
		Store: StoreConfig{Dir: "data/objstore"},
		Log: LogConfig{
			Level:   "info",
			Format:  "console",
			Outputs: []string{"stdout"},
			Rotation: RotationConfig{
				MaxSizeMB:  50,
				MaxBackups: 3,
				MaxAgeDays: 28,
			},
		},
	}
}

// Load reads the configuration at path. An empty path falls back to
// OBJCODEC_CONFIG and then DefaultPath; a missing default file is not an error.
// Environment variables prefixed OBJCODEC_ override file values,
// e.g. OBJCODEC_FILES_MAIN or OBJCODEC_LOG_LEVEL.
func Load(path string) (*Config, error) {
	cfg := Default()

	v := viper.New()
	v.SetEnvPrefix("OBJCODEC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	v.SetDefault("files.main", cfg.Files.Main)
	v.SetDefault("files.test", cfg.Files.Test)
	v.SetDefault("store.dir", cfg.Store.Dir)
	v.SetDefault("store.sync", cfg.Store.Sync)
	v.SetDefault("log.level", cfg.Log.Level)
	v.SetDefault("log.format", cfg.Log.Format)
	v.SetDefault("log.outputs", cfg.Log.Outputs)
	v.SetDefault("log.development", cfg.Log.Development)
	v.SetDefault("log.rotation.enable", cfg.Log.Rotation.Enable)
	v.SetDefault("log.rotation.max_size_mb", cfg.Log.Rotation.MaxSizeMB)
	v.SetDefault("log.rotation.max_backups", cfg.Log.Rotation.MaxBackups)
	v.SetDefault("log.rotation.max_age_days", cfg.Log.Rotation.MaxAgeDays)
	v.SetDefault("log.rotation.compress", cfg.Log.Rotation.Compress)

	explicit := path != ""
	if !explicit {
		if env := os.Getenv("OBJCODEC_CONFIG"); env != "" {
			path, explicit = env, true
		} else {
			path = DefaultPath
		}
	}
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		if explicit || !os.IsNotExist(err) {
			return nil, errors.Wrapf(err, "read config %s", path)
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.Wrap(err, "decode config")
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch strings.ToLower(strings.TrimSpace(c.Log.Level)) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return errors.Newf("invalid log.level: %q", c.Log.Level)
	}
	if strings.TrimSpace(c.Files.Main) == "" {
		return errors.New("files.main must be set")
	}
	if strings.TrimSpace(c.Files.Test) == "" {
		return errors.New("files.test must be set")
	}
	if c.Log.Format == "" {
		c.Log.Format = "console"
	}
	if len(c.Log.Outputs) == 0 {
		c.Log.Outputs = []string{"stdout"}
	}
	return nil
}
