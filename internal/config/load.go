package config

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/nibzard/taskboard/internal/logging"
	"github.com/nibzard/taskboard/internal/statedir"
	"github.com/nibzard/taskboard/internal/storage"
	"github.com/nibzard/taskboard/internal/theme"
	"github.com/nibzard/taskboard/internal/todo"
)

// Load loads configuration from multiple sources in priority order:
// 1. Defaults
// 2. User config file (~/.taskboard/taskboard.toml or OS-specific config dir)
// 3. Project config file (taskboard.toml or .taskboard.toml in current directory)
// 4. Environment variables
// 5. CLI flags
func Load(fs *flag.FlagSet, args []string) (*Config, error) {
	cws, err := LoadWithSources(fs, args)
	if err != nil {
		return nil, err
	}
	return cws.Config, nil
}

// LoadWithSources loads configuration and tracks the source of each value.
// Returns ConfigWithSources containing the config and a map of field names to their sources.
func LoadWithSources(fs *flag.FlagSet, args []string) (*ConfigWithSources, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("getting working directory: %w", err)
	}
	return loadWithSources(fs, args, findUserConfigFile(), findProjectConfigFile(wd), wd)
}

func loadWithSources(fs *flag.FlagSet, args []string, userFile, projectFile, projectRoot string) (*ConfigWithSources, error) {
	sources := make(map[string]ConfigSource)
	cfg := &Config{ProjectRoot: projectRoot}
	var files []string

	// 1. Set defaults (all fields start with default source)
	setDefaults(cfg)
	for _, field := range configFields() {
		sources[field] = SourceDefault
	}

	// 2. User config file
	if userFile != "" {
		if err := loadConfigFile(cfg, userFile, sources, SourceUserFile); err != nil {
			return nil, fmt.Errorf("loading user config file %s: %w", userFile, err)
		}
		files = append(files, userFile)
	}

	// 3. Project config file (overrides user config)
	if projectFile != "" {
		if err := loadConfigFile(cfg, projectFile, sources, SourceProjFile); err != nil {
			return nil, fmt.Errorf("loading project config file %s: %w", projectFile, err)
		}
		files = append(files, projectFile)
	}

	// 4. Environment
	if err := loadFromEnv(cfg, sources); err != nil {
		return nil, err
	}

	// 5. CLI flags (they override everything)
	if err := parseFlags(cfg, fs, args, sources); err != nil {
		return nil, fmt.Errorf("parsing flags: %w", err)
	}

	// 6. Derived values and validation
	if err := finalizeConfig(cfg); err != nil {
		return nil, fmt.Errorf("finalizing config: %w", err)
	}

	return &ConfigWithSources{
		Config:  cfg,
		Sources: sources,
		Files:   files,
	}, nil
}

// loadConfigFile decodes a TOML file over cfg. Only keys present in the file
// change values, and each is recorded with source.
func loadConfigFile(cfg *Config, path string, sources map[string]ConfigSource, source ConfigSource) error {
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return fmt.Errorf("unknown config key %q", undecoded[0].String())
	}
	for _, field := range configFields() {
		if md.IsDefined(field) {
			sources[field] = source
		}
	}
	return nil
}

// finalizeConfig normalizes names, expands paths and rejects invalid values.
func finalizeConfig(cfg *Config) error {
	backend, ok := storage.NormalizeBackend(cfg.StorageBackend)
	if !ok {
		return fmt.Errorf("%w %q", storage.ErrUnknownBackend, cfg.StorageBackend)
	}
	cfg.StorageBackend = backend

	if cfg.StorageKey == "" {
		cfg.StorageKey = DefaultStorageKey
	}
	if err := storage.ValidateKey(cfg.StorageKey); err != nil {
		return err
	}

	if _, err := todo.NewIDGenerator(cfg.IDScheme); err != nil {
		return err
	}
	name, err := theme.ParseName(cfg.Theme)
	if err != nil {
		return err
	}
	cfg.Theme = string(name)

	if _, err := logging.ParseOptions(cfg.LogLevel, cfg.LogFormat, cfg.LogTimestamps, cfg.LogCaller); err != nil {
		return err
	}

	cfg.LogDir = expandPath(cfg.LogDir)
	cfg.StoragePath = expandPath(cfg.StoragePath)
	if cfg.StoragePath == "" && backend != storage.BackendMemory {
		base, err := statedir.Home()
		if err != nil {
			return err
		}
		cfg.StoragePath = statedir.StoragePath(base, backend)
	}
	if cfg.StoragePath != "" && !filepath.IsAbs(cfg.StoragePath) && cfg.ProjectRoot != "" {
		cfg.StoragePath = filepath.Join(cfg.ProjectRoot, cfg.StoragePath)
	}
	return nil
}

// LoggingOptions returns the logger options described by the config.
func (c *Config) LoggingOptions() logging.Options {
	opts, err := logging.ParseOptions(c.LogLevel, c.LogFormat, c.LogTimestamps, c.LogCaller)
	if err != nil {
		return logging.DefaultOptions()
	}
	return opts
}
