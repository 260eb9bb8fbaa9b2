package utils

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func TestWindowsExecutableExtensions(t *testing.T) {
	tests := []struct {
		name     string
		pathext  string
		wantExts map[string]bool
	}{
		{
			name:    "default PATHEXT",
			pathext: "",
			wantExts: map[string]bool{
				".com": true,
				".exe": true,
				".bat": true,
				".cmd": true,
			},
		},
		{
			name:    "custom PATHEXT without dots",
			pathext: "COM; exe ;PS1",
			wantExts: map[string]bool{
				".com": true,
				".exe": true,
				".ps1": true,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("PATHEXT", tt.pathext)
			got := windowsExecutableExtensions()
			if len(got) != len(tt.wantExts) {
				t.Fatalf("got %d extensions, want %d: %v", len(got), len(tt.wantExts), got)
			}
			for ext := range tt.wantExts {
				if !got[ext] {
					t.Errorf("missing extension %q", ext)
				}
			}
		})
	}
}

func TestCommandPath(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("permission bits are not used on windows")
	}

	tmpDir := t.TempDir()
	script := filepath.Join(tmpDir, "hook.sh")
	if err := os.WriteFile(script, []byte("#!/bin/sh\nexit 0\n"), 0755); err != nil {
		t.Fatal(err)
	}
	plain := filepath.Join(tmpDir, "notes.txt")
	if err := os.WriteFile(plain, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	t.Run("executable path", func(t *testing.T) {
		got, err := CommandPath(script)
		if err != nil {
			t.Fatalf("CommandPath: %v", err)
		}
		if got != script {
			t.Errorf("got %q, want %q", got, script)
		}
	})

	t.Run("non executable path", func(t *testing.T) {
		if _, err := CommandPath(plain); err == nil {
			t.Error("expected error for non-executable file")
		}
	})

	t.Run("missing path", func(t *testing.T) {
		if _, err := CommandPath(filepath.Join(tmpDir, "missing")); err == nil {
			t.Error("expected error for missing file")
		}
	})

	t.Run("empty", func(t *testing.T) {
		if _, err := CommandPath("  "); err == nil {
			t.Error("expected error for empty command")
		}
	})

	t.Run("directory", func(t *testing.T) {
		if _, err := CommandPath(tmpDir + "/"); err == nil {
			t.Error("expected error for directory")
		}
	})
}
