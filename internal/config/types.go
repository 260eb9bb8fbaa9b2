package config

// ConfigSource represents where a configuration value came from.
type ConfigSource string

const (
	SourceDefault  ConfigSource = "default"
	SourceUserFile ConfigSource = "user file"
	SourceProjFile ConfigSource = "project file"
	SourceEnv      ConfigSource = "environment"
	SourceFlag     ConfigSource = "flag"
)

// ConfigWithSources holds configuration along with source information for each field.
type ConfigWithSources struct {
	Config  *Config
	Sources map[string]ConfigSource
	// Files lists the config files that were read, lowest precedence first.
	Files []string
}

// Default values.
const (
	DefaultStorageBackend = "file"
	DefaultStorageKey     = "todos"
	DefaultIDScheme       = "uuid"
	DefaultTheme          = "default"
	DefaultLogDir         = "~/.taskboard/logs"
	DefaultLogLevel       = "info"
	DefaultLogFormat      = "text"
)

// Config holds the full configuration for taskboard.
type Config struct {
	// Storage
	StorageBackend string `toml:"storage_backend"`
	// StoragePath is a directory for the file backend and a database file
	// for sqlite and bolt. Empty selects a location under ~/.taskboard.
	StoragePath string `toml:"storage_path"`
	StorageKey  string `toml:"storage_key"`
	IDScheme    string `toml:"id_scheme"`

	// Presentation
	Theme    string `toml:"theme"`
	DarkMode bool   `toml:"dark_mode"`

	// Hooks
	HookCommand string `toml:"hook_command"`

	// Logging configuration
	LogDir        string `toml:"log_dir"`
	LogLevel      string `toml:"log_level"`
	LogFormat     string `toml:"log_format"`
	LogTimestamps bool   `toml:"log_timestamps"`
	LogCaller     bool   `toml:"log_caller"`

	// Project root (computed)
	ProjectRoot string `toml:"-"`
}

// configFields returns the list of configurable field names for source tracking.
func configFields() []string {
	return []string{
		"storage_backend",
		"storage_path",
		"storage_key",
		"id_scheme",
		"theme",
		"dark_mode",
		"hook_command",
		"log_dir",
		"log_level",
		"log_format",
		"log_timestamps",
		"log_caller",
	}
}

// Fields returns the configurable field names in display order.
func Fields() []string {
	return configFields()
}

// Value returns the current value of field formatted for display.
func (c *Config) Value(field string) string {
	switch field {
	case "storage_backend":
		return c.StorageBackend
	case "storage_path":
		return c.StoragePath
	case "storage_key":
		return c.StorageKey
	case "id_scheme":
		return c.IDScheme
	case "theme":
		return c.Theme
	case "dark_mode":
		return boolString(c.DarkMode)
	case "hook_command":
		return c.HookCommand
	case "log_dir":
		return c.LogDir
	case "log_level":
		return c.LogLevel
	case "log_format":
		return c.LogFormat
	case "log_timestamps":
		return boolString(c.LogTimestamps)
	case "log_caller":
		return boolString(c.LogCaller)
	}
	return ""
}

func boolString(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
