package utils

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
)

// CommandPath resolves a command name or path to an executable file.
// Names without a path separator are looked up on PATH.
func CommandPath(command string) (string, error) {
	command = strings.TrimSpace(command)
	if command == "" {
		return "", fmt.Errorf("command is empty")
	}
	if !strings.ContainsAny(command, `/\`) {
		path, err := exec.LookPath(command)
		if err != nil {
			return "", fmt.Errorf("command %q not found on PATH", command)
		}
		return path, nil
	}
	info, err := os.Stat(command)
	if err != nil {
		return "", fmt.Errorf("stat command: %w", err)
	}
	if !IsExecutable(command, info) {
		return "", fmt.Errorf("command %q is not executable", command)
	}
	return command, nil
}

// IsExecutable reports whether the file described by info can be run.
// On Windows the extension decides, using PATHEXT.
func IsExecutable(path string, info os.FileInfo) bool {
	if info == nil || info.IsDir() {
		return false
	}
	if runtime.GOOS == "windows" {
		ext := strings.ToLower(filepath.Ext(path))
		return ext != "" && windowsExecutableExtensions()[ext]
	}
	return info.Mode().Perm()&0111 != 0
}

// windowsExecutableExtensions parses PATHEXT into a set of lowercase
// extensions with a leading dot.
func windowsExecutableExtensions() map[string]bool {
	exts := map[string]bool{}
	pathext := os.Getenv("PATHEXT")
	if pathext == "" {
		pathext = ".COM;.EXE;.BAT;.CMD"
	}
	for _, ext := range SplitAndTrim(pathext, ";") {
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		exts[strings.ToLower(ext)] = true
	}
	return exts
}
