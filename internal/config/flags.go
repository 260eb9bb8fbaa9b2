package config

import (
	"flag"
)

// flagToField maps flag names to config field names.
var flagToField = map[string]string{
	"storage":        "storage_backend",
	"storage-path":   "storage_path",
	"key":            "storage_key",
	"id-scheme":      "id_scheme",
	"theme":          "theme",
	"dark":           "dark_mode",
	"hook":           "hook_command",
	"log-dir":        "log_dir",
	"log-level":      "log_level",
	"log-format":     "log_format",
	"log-timestamps": "log_timestamps",
	"log-caller":     "log_caller",
}

// parseFlags defines and parses CLI flags, writing values straight into cfg.
// If sources is non-nil, every flag set on the command line is recorded.
func parseFlags(cfg *Config, fs *flag.FlagSet, args []string, sources map[string]ConfigSource) error {
	if fs == nil {
		fs = flag.NewFlagSet("taskboard", flag.ContinueOnError)
	}

	// Storage
	fs.StringVar(&cfg.StorageBackend, "storage", cfg.StorageBackend, "Storage backend (file, sqlite, bolt, memory)")
	fs.StringVar(&cfg.StoragePath, "storage-path", cfg.StoragePath, "Storage directory or database file")
	fs.StringVar(&cfg.StorageKey, "key", cfg.StorageKey, "Storage key holding the task list")
	fs.StringVar(&cfg.IDScheme, "id-scheme", cfg.IDScheme, "Task id scheme (uuid, sequence)")

	// Presentation
	fs.StringVar(&cfg.Theme, "theme", cfg.Theme, "Theme (default, sunset, forest, ocean, candy)")
	fs.BoolVar(&cfg.DarkMode, "dark", cfg.DarkMode, "Start in dark mode")

	// Hooks
	fs.StringVar(&cfg.HookCommand, "hook", cfg.HookCommand, "Hook command to run after each change")

	// Logging
	fs.StringVar(&cfg.LogDir, "log-dir", cfg.LogDir, "Log directory")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level (debug, info, warn, error)")
	fs.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "Log format (text, json, logfmt)")
	fs.BoolVar(&cfg.LogTimestamps, "log-timestamps", cfg.LogTimestamps, "Show timestamps in logs")
	fs.BoolVar(&cfg.LogCaller, "log-caller", cfg.LogCaller, "Show caller location in logs")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if sources != nil {
		fs.Visit(func(f *flag.Flag) {
			if field, ok := flagToField[f.Name]; ok {
				sources[field] = SourceFlag
			}
		})
	}
	return nil
}
