package config

// ExampleConfig returns an example configuration showing all available options.
func ExampleConfig() string {
	return `# taskboard configuration file
# Values can be overridden by TASKBOARD_* environment variables or CLI flags

# Storage backend: file, sqlite, bolt or memory
storage_backend = "file"

# Directory (file backend) or database file (sqlite, bolt).
# Defaults to a location under ~/.taskboard.
# storage_path = "~/.taskboard/data"

# Key the task list is stored under
storage_key = "todos"

# Task id scheme: uuid or sequence
id_scheme = "uuid"

# Theme: default, sunset, forest, ocean or candy
theme = "default"
dark_mode = false

# Command run after each change as: <cmd> <op> <task-id> <storage-path>
# hook_command = "/path/to/hook.sh"

# Logging
log_dir = "~/.taskboard/logs"
log_level = "info"
log_format = "text"
log_timestamps = false
log_caller = false
`
}
