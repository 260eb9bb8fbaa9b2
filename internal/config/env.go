package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// envConfig holds raw TASKBOARD_* values. Nil fields were not set.
type envConfig struct {
	StorageBackend *string `env:"TASKBOARD_STORAGE_BACKEND"`
	StoragePath    *string `env:"TASKBOARD_STORAGE_PATH"`
	StorageKey     *string `env:"TASKBOARD_STORAGE_KEY"`
	IDScheme       *string `env:"TASKBOARD_ID_SCHEME"`
	Theme          *string `env:"TASKBOARD_THEME"`
	DarkMode       *bool   `env:"TASKBOARD_DARK_MODE"`
	HookCommand    *string `env:"TASKBOARD_HOOK"`
	LogDir         *string `env:"TASKBOARD_LOG_DIR"`
	LogLevel       *string `env:"TASKBOARD_LOG_LEVEL"`
	LogFormat      *string `env:"TASKBOARD_LOG_FORMAT"`
	LogTimestamps  *bool   `env:"TASKBOARD_LOG_TIMESTAMPS"`
	LogCaller      *bool   `env:"TASKBOARD_LOG_CALLER"`
}

// loadFromEnv overrides config from environment variables.
// If sources is non-nil, it tracks the source of each value.
func loadFromEnv(cfg *Config, sources map[string]ConfigSource) error {
	var raw envConfig
	if err := env.Parse(&raw); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}

	setString := func(field string, target *string, value *string) {
		if value == nil {
			return
		}
		*target = *value
		if sources != nil {
			sources[field] = SourceEnv
		}
	}
	setBool := func(field string, target *bool, value *bool) {
		if value == nil {
			return
		}
		*target = *value
		if sources != nil {
			sources[field] = SourceEnv
		}
	}

	setString("storage_backend", &cfg.StorageBackend, raw.StorageBackend)
	setString("storage_path", &cfg.StoragePath, raw.StoragePath)
	setString("storage_key", &cfg.StorageKey, raw.StorageKey)
	setString("id_scheme", &cfg.IDScheme, raw.IDScheme)
	setString("theme", &cfg.Theme, raw.Theme)
	setBool("dark_mode", &cfg.DarkMode, raw.DarkMode)
	setString("hook_command", &cfg.HookCommand, raw.HookCommand)
	setString("log_dir", &cfg.LogDir, raw.LogDir)
	setString("log_level", &cfg.LogLevel, raw.LogLevel)
	setString("log_format", &cfg.LogFormat, raw.LogFormat)
	setBool("log_timestamps", &cfg.LogTimestamps, raw.LogTimestamps)
	setBool("log_caller", &cfg.LogCaller, raw.LogCaller)
	return nil
}
