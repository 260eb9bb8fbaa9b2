// Package hooks provides tests for external change hook invocation.
package hooks

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/nibzard/taskboard/internal/store"
	"github.com/nibzard/taskboard/internal/todo"
)

// writeScript creates an executable hook script. body is shell on Unix and
// batch on Windows.
func writeScript(t *testing.T, unix, windows string) string {
	t.Helper()
	dir := t.TempDir()
	if runtime.GOOS == "windows" {
		path := filepath.Join(dir, "hook.bat")
		if err := os.WriteFile(path, []byte("@echo off\n"+windows), 0644); err != nil {
			t.Fatal(err)
		}
		return path
	}
	path := filepath.Join(dir, "hook.sh")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+unix), 0755); err != nil {
		t.Fatal(err)
	}
	return path
}

// TestInvoke tests the Invoke function with various scenarios.
func TestInvoke(t *testing.T) {
	t.Run("empty command returns success without running", func(t *testing.T) {
		result, err := Invoke(context.Background(), Options{Op: "add", TaskID: "T1"})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if result.Ran {
			t.Error("expected Ran to be false")
		}
	})

	t.Run("missing op returns error", func(t *testing.T) {
		result, err := Invoke(context.Background(), Options{Command: "echo"})
		if err == nil {
			t.Fatal("expected error for missing op, got nil")
		}
		if result.Ran {
			t.Error("expected Ran to be false")
		}
	})

	t.Run("missing command file returns error", func(t *testing.T) {
		result, err := Invoke(context.Background(), Options{
			Command: filepath.Join(t.TempDir(), "nope.sh"),
			Op:      "add",
		})
		if err == nil {
			t.Fatal("expected error for missing command, got nil")
		}
		if result.Ran {
			t.Error("expected Ran to be false")
		}
	})

	t.Run("non-executable file returns error", func(t *testing.T) {
		if runtime.GOOS == "windows" {
			t.Skip("permission bits are not used on Windows")
		}
		path := filepath.Join(t.TempDir(), "hook.sh")
		if err := os.WriteFile(path, []byte("#!/bin/sh\nexit 0"), 0644); err != nil {
			t.Fatal(err)
		}
		_, err := Invoke(context.Background(), Options{Command: path, Op: "add"})
		if err == nil || !strings.Contains(err.Error(), "not executable") {
			t.Errorf("expected not executable error, got %v", err)
		}
	})
}

// TestInvokeSuccessfulHook tests a successful hook invocation and its arguments.
func TestInvokeSuccessfulHook(t *testing.T) {
	hook := writeScript(t, `echo "$1 $2 $3"`, "echo %1 %2 %3")

	var stdout bytes.Buffer
	result, err := Invoke(context.Background(), Options{
		Command:     hook,
		Op:          "toggle",
		TaskID:      "T001",
		StoragePath: "/tmp/data",
		Stdout:      &stdout,
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !result.Ran {
		t.Error("expected Ran to be true")
	}
	if result.ExitCode != 0 {
		t.Errorf("expected ExitCode 0, got %d", result.ExitCode)
	}
	if len(result.Command) != 4 || result.Command[1] != "toggle" || result.Command[2] != "T001" {
		t.Errorf("unexpected command args %v", result.Command)
	}
	if got := strings.TrimSpace(stdout.String()); got != "toggle T001 /tmp/data" {
		t.Errorf("hook output = %q", got)
	}
}

// TestInvokeHookFailure tests a hook that returns non-zero exit code.
func TestInvokeHookFailure(t *testing.T) {
	hook := writeScript(t, "exit 42", "exit /b 42")

	result, err := Invoke(context.Background(), Options{Command: hook, Op: "delete", TaskID: "T002"})
	if err == nil {
		t.Fatal("expected error for failed hook, got nil")
	}
	if !result.Ran {
		t.Error("expected Ran to be true")
	}
	if result.ExitCode != 42 {
		t.Errorf("expected ExitCode 42, got %d", result.ExitCode)
	}
}

// TestInvokeWithWorkDir tests hook invocation with a custom working directory.
func TestInvokeWithWorkDir(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("pwd output differs on Windows")
	}
	workDir := t.TempDir()
	hook := writeScript(t, "pwd", "cd")

	var stdout bytes.Buffer
	result, err := Invoke(context.Background(), Options{
		Command: hook,
		Op:      "edit",
		WorkDir: workDir,
		Stdout:  &stdout,
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !result.Ran {
		t.Error("expected Ran to be true")
	}
	got, _ := filepath.EvalSymlinks(strings.TrimSpace(stdout.String()))
	want, _ := filepath.EvalSymlinks(workDir)
	if got != want {
		t.Errorf("hook ran in %q, want %q", got, want)
	}
}

// TestInvokeWithContextCancellation tests that a cancelled context stops a slow hook.
func TestInvokeWithContextCancellation(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("process kill timing differs on Windows")
	}
	hook := writeScript(t, "exec sleep 10", "")

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	start := time.Now()
	result, err := Invoke(ctx, Options{Command: hook, Op: "add"})
	if err == nil {
		t.Fatal("expected error for cancelled hook")
	}
	if !result.Ran {
		t.Error("expected Ran to be true")
	}
	if time.Since(start) > 5*time.Second {
		t.Error("hook was not killed on cancellation")
	}
}

// TestSubscriber tests that store changes drive the hook.
func TestSubscriber(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses a shell script")
	}
	out := filepath.Join(t.TempDir(), "calls.txt")
	hook := writeScript(t, `echo "$1 $2" >> "`+out+`"`, "")

	s := store.New(context.Background(), store.Options{})
	var logBuf bytes.Buffer
	logger := log.New(&logBuf)
	s.Subscribe(Subscriber(context.Background(), Options{Command: hook, StoragePath: "mem"}, logger))

	task, _ := s.Add(todo.Draft{Text: "Buy milk"})
	s.ToggleComplete(task.ID)
	s.ToggleComplete("missing")

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("hook did not run: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	want := []string{"add " + task.ID, "toggle " + task.ID}
	if len(lines) != len(want) {
		t.Fatalf("hook calls = %q, want %q", lines, want)
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("call %d = %q, want %q", i, lines[i], want[i])
		}
	}
}

// TestSubscriberLogsFailure tests that a failing hook is logged and not fatal.
func TestSubscriberLogsFailure(t *testing.T) {
	hook := writeScript(t, "exit 3", "exit /b 3")

	var logBuf bytes.Buffer
	logger := log.New(&logBuf)
	sub := Subscriber(context.Background(), Options{Command: hook}, logger)
	sub(store.Change{Op: store.OpDelete, TaskID: "T9"})

	if !strings.Contains(logBuf.String(), "hook failed") {
		t.Errorf("expected failure to be logged, got %q", logBuf.String())
	}
}
