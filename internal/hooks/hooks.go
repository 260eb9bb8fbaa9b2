// Package hooks invokes an external command after each task change.
package hooks

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"

	"github.com/charmbracelet/log"

	"github.com/nibzard/taskboard/internal/store"
	"github.com/nibzard/taskboard/internal/utils"
)

// Options configures a hook invocation.
type Options struct {
	Command     string
	Op          string
	TaskID      string
	StoragePath string
	WorkDir     string
	// Stdout and Stderr default to the process streams.
	Stdout io.Writer
	Stderr io.Writer
}

// Result captures the outcome of a hook invocation.
type Result struct {
	Ran      bool
	Command  []string
	ExitCode int
}

// Invoke runs `<command> <op> <task-id> <storage-path>`.
// An empty command is not run.
func Invoke(ctx context.Context, opts Options) (Result, error) {
	if opts.Command == "" {
		return Result{}, nil
	}
	if opts.Op == "" {
		return Result{}, fmt.Errorf("hook op is required")
	}

	path, err := utils.CommandPath(opts.Command)
	if err != nil {
		return Result{}, fmt.Errorf("resolve hook command: %w", err)
	}

	if ctx == nil {
		ctx = context.Background()
	}

	args := []string{opts.Op, opts.TaskID, opts.StoragePath}
	cmd := exec.CommandContext(ctx, path, args...)
	if opts.WorkDir != "" {
		cmd.Dir = opts.WorkDir
	}
	cmd.Stdout = opts.Stdout
	if cmd.Stdout == nil {
		cmd.Stdout = os.Stdout
	}
	cmd.Stderr = opts.Stderr
	if cmd.Stderr == nil {
		cmd.Stderr = os.Stderr
	}

	err = cmd.Run()
	result := Result{
		Ran:      true,
		Command:  cmd.Args,
		ExitCode: exitCodeFromError(err),
	}
	if err != nil {
		return result, fmt.Errorf("hook command failed: %w", err)
	}
	return result, nil
}

// Subscriber adapts Invoke into a store subscriber. base supplies the
// command, storage path and streams; op and task id come from each change.
// Failures are logged and never reach the store.
func Subscriber(ctx context.Context, base Options, logger *log.Logger) func(store.Change) {
	return func(c store.Change) {
		opts := base
		opts.Op = string(c.Op)
		opts.TaskID = c.TaskID
		result, err := Invoke(ctx, opts)
		if err != nil {
			if logger != nil {
				logger.Error("hook failed", "op", c.Op, "id", c.TaskID, "exit", result.ExitCode, "err", err)
			}
			return
		}
		if result.Ran && logger != nil {
			logger.Debug("hook ran", "op", c.Op, "id", c.TaskID)
		}
	}
}

func exitCodeFromError(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}
