// Package logging provides tests for logger construction, run logs and tail output.
package logging

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    log.Level
		wantErr bool
	}{
		{"debug", log.DebugLevel, false},
		{"INFO", log.InfoLevel, false},
		{"", log.InfoLevel, false},
		{"warning", log.WarnLevel, false},
		{"error", log.ErrorLevel, false},
		{"verbose", log.InfoLevel, true},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseLevel(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestParseFormatter(t *testing.T) {
	tests := []struct {
		in      string
		want    log.Formatter
		wantErr bool
	}{
		{"", log.TextFormatter, false},
		{"Text", log.TextFormatter, false},
		{"json", log.JSONFormatter, false},
		{"logfmt", log.LogfmtFormatter, false},
		{"xml", log.TextFormatter, true},
	}
	for _, tt := range tests {
		got, err := ParseFormatter(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseFormatter(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("ParseFormatter(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNewRespectsLevelAndFormat(t *testing.T) {
	opts, err := ParseOptions("warn", "json", false, false)
	if err != nil {
		t.Fatalf("ParseOptions: %v", err)
	}

	var buf bytes.Buffer
	logger := New(&buf, opts)
	logger.Info("hidden")
	logger.Warn("save failed", "key", "todos")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info message should be filtered at warn level: %q", out)
	}
	if !strings.Contains(out, `"msg":"save failed"`) || !strings.Contains(out, `"key":"todos"`) {
		t.Errorf("expected JSON warn line with key field, got %q", out)
	}
}

func TestParseOptionsRejectsBadInput(t *testing.T) {
	if _, err := ParseOptions("loud", "text", false, false); err == nil {
		t.Error("expected error for bad level")
	}
	if _, err := ParseOptions("info", "yaml", false, false); err == nil {
		t.Error("expected error for bad format")
	}
}

func TestNewRunLogger(t *testing.T) {
	t.Run("creates per-store directory and file", func(t *testing.T) {
		base := filepath.Join(t.TempDir(), "logs", "nested")
		store := filepath.Join(t.TempDir(), "data")

		r, err := NewRunLogger(base, store)
		if err != nil {
			t.Fatalf("NewRunLogger: %v", err)
		}
		defer r.Close()

		if r.RunID == "" {
			t.Error("expected RunID to be set")
		}
		if !strings.HasPrefix(r.Dir, base) {
			t.Errorf("Dir %q should live under %q", r.Dir, base)
		}
		if !strings.HasPrefix(filepath.Base(r.Dir), "data-") {
			t.Errorf("Dir %q should be named after the store", r.Dir)
		}
		if _, err := os.Stat(r.LogPath); err != nil {
			t.Errorf("log file not created: %v", err)
		}
	})

	t.Run("empty base dir returns error", func(t *testing.T) {
		if _, err := NewRunLogger("", "data"); err == nil {
			t.Fatal("expected error for empty base dir")
		}
	})

	t.Run("writer feeds the log file", func(t *testing.T) {
		r, err := NewRunLogger(t.TempDir(), "data")
		if err != nil {
			t.Fatalf("NewRunLogger: %v", err)
		}
		logger := New(r.Writer(), DefaultOptions())
		logger.Info("hello from tui")
		if err := r.Close(); err != nil {
			t.Fatalf("Close: %v", err)
		}
		data, err := os.ReadFile(r.LogPath)
		if err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(string(data), "hello from tui") {
			t.Errorf("log file missing message: %q", data)
		}
	})
}

func TestRunLoggerCloseNil(t *testing.T) {
	var r *RunLogger
	if err := r.Close(); err != nil {
		t.Errorf("Close on nil: %v", err)
	}
}

func TestFindLogDirIsStablePerStore(t *testing.T) {
	base := t.TempDir()
	a1, err := FindLogDir(base, "/tmp/a/data")
	if err != nil {
		t.Fatal(err)
	}
	a2, _ := FindLogDir(base, "/tmp/a/data")
	b, _ := FindLogDir(base, "/tmp/b/data")
	if a1 != a2 {
		t.Errorf("same store should map to same dir: %q vs %q", a1, a2)
	}
	if a1 == b {
		t.Errorf("different stores should map to different dirs: %q", a1)
	}
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"data", "data"},
		{"taskboard.db", "taskboard.db"},
		{"my tasks!", "my_tasks"},
		{"", "store"},
		{"///", "store"},
	}
	for _, tt := range tests {
		if got := slugify(tt.in); got != tt.want {
			t.Errorf("slugify(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestHashPath(t *testing.T) {
	h := hashPath("/tmp/data")
	if len(h) != 8 {
		t.Errorf("hash length = %d, want 8", len(h))
	}
	if h != hashPath("/tmp/data") {
		t.Error("hash should be deterministic")
	}
}

func TestFindLatestLog(t *testing.T) {
	t.Run("missing dir", func(t *testing.T) {
		got, err := FindLatestLog(filepath.Join(t.TempDir(), "missing"))
		if err != nil || got != "" {
			t.Errorf("got (%q, %v), want empty", got, err)
		}
	})

	t.Run("picks newest log file", func(t *testing.T) {
		dir := t.TempDir()
		older := filepath.Join(dir, "20240101-000000-1.log")
		newer := filepath.Join(dir, "20240102-000000-2.log")
		other := filepath.Join(dir, "notes.txt")
		for _, p := range []string{older, newer, other} {
			if err := os.WriteFile(p, []byte("x\n"), 0644); err != nil {
				t.Fatal(err)
			}
		}
		past := time.Now().Add(-time.Hour)
		if err := os.Chtimes(older, past, past); err != nil {
			t.Fatal(err)
		}

		got, err := FindLatestLog(dir)
		if err != nil {
			t.Fatalf("FindLatestLog: %v", err)
		}
		if got != newer {
			t.Errorf("got %q, want %q", got, newer)
		}
	})
}

func TestTailLog(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "run.log")
	content := "one\ntwo\nthree\nfour\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		n    int
		want string
	}{
		{"all lines", 0, content},
		{"last two", 2, "three\nfour\n"},
		{"more than available", 10, content},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := TailLog(context.Background(), &buf, path, tt.n, false); err != nil {
				t.Fatalf("TailLog: %v", err)
			}
			if buf.String() != tt.want {
				t.Errorf("got %q, want %q", buf.String(), tt.want)
			}
		})
	}

	t.Run("follow stops with context", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(context.Background(), 250*time.Millisecond)
		defer cancel()
		var buf bytes.Buffer
		if err := TailLog(ctx, &buf, path, 1, true); err != nil {
			t.Fatalf("TailLog follow: %v", err)
		}
		if buf.String() != "four\n" {
			t.Errorf("got %q, want %q", buf.String(), "four\n")
		}
	})

	t.Run("missing file", func(t *testing.T) {
		var buf bytes.Buffer
		if err := TailLog(context.Background(), &buf, filepath.Join(dir, "missing.log"), 0, false); err == nil {
			t.Error("expected error for missing file")
		}
	})
}
