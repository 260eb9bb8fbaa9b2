package cmd

import (
	"fmt"
	"strings"

	"github.com/nibzard/taskboard/internal/config"
	"github.com/nibzard/taskboard/internal/storage"
	"github.com/nibzard/taskboard/internal/theme"
)

var completionCommands = []string{
	"tui", "add", "ls", "toggle", "rm", "edit", "priority", "category",
	"categories", "export", "doctor", "tail", "completion", "version", "help",
}

// completionCommand prints a completion script for shell.
func completionCommand(cfg *config.Config, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: taskboard completion <bash|zsh|fish>")
	}

	commands := strings.Join(completionCommands, " ")
	backends := strings.Join(storage.Backends(), " ")
	themeNames := make([]string, 0, len(theme.Names()))
	for _, name := range theme.Names() {
		themeNames = append(themeNames, string(name))
	}
	themes := strings.Join(themeNames, " ")

	switch strings.ToLower(args[0]) {
	case "bash":
		fmt.Printf(bashCompletion, commands, backends, themes)
	case "zsh":
		fmt.Printf(zshCompletion, commands, backends, themes)
	case "fish":
		fmt.Printf(fishCompletion, commands, backends, themes)
	default:
		return fmt.Errorf("unsupported shell %q (expected bash|zsh|fish)", args[0])
	}
	return nil
}

const bashCompletion = `# taskboard bash completion
_taskboard() {
    local cur prev
    cur="${COMP_WORDS[COMP_CWORD]}"
    prev="${COMP_WORDS[COMP_CWORD-1]}"
    case "$prev" in
        -storage) COMPREPLY=($(compgen -W "%[2]s" -- "$cur")); return ;;
        -theme) COMPREPLY=($(compgen -W "%[3]s" -- "$cur")); return ;;
        -priority|-p|priority) COMPREPLY=($(compgen -W "low medium high" -- "$cur")); return ;;
    esac
    COMPREPLY=($(compgen -W "%[1]s" -- "$cur"))
}
complete -F _taskboard taskboard
`

const zshCompletion = `#compdef taskboard
# taskboard zsh completion
_taskboard() {
    local -a commands
    commands=(%[1]s)
    _arguments \
        '-storage[storage backend]:backend:(%[2]s)' \
        '-theme[theme]:theme:(%[3]s)' \
        '1:command:($commands)' \
        '*::arg:->args'
}
_taskboard "$@"
`

const fishCompletion = `# taskboard fish completion
complete -c taskboard -f -n '__fish_use_subcommand' -a '%[1]s'
complete -c taskboard -o storage -x -a '%[2]s'
complete -c taskboard -o theme -x -a '%[3]s'
complete -c taskboard -o priority -x -a 'low medium high'
`
