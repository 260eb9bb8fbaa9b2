package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/nibzard/taskboard/internal/config"
	"github.com/nibzard/taskboard/internal/logging"
	"github.com/nibzard/taskboard/internal/storage"
	"github.com/nibzard/taskboard/internal/todo"
	"github.com/nibzard/taskboard/internal/utils"
)

// doctorCommand reports where the config came from and checks storage,
// the stored payload, the log directory and the hook command.
func doctorCommand(ctx context.Context, cws *config.ConfigWithSources, args []string) error {
	fs := flag.NewFlagSet("taskboard doctor", flag.ContinueOnError)
	verbose := fs.Bool("v", false, "Verbose output")
	schemaPath := fs.String("schema", "", "Validate against this JSON Schema instead of the built-in one")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if len(fs.Args()) > 0 {
		return fmt.Errorf("unexpected arguments: %v", fs.Args())
	}
	cfg := cws.Config

	fmt.Println("Taskboard Doctor")
	fmt.Println("================")
	fmt.Println()

	allOK := true

	// Config
	fmt.Println("Config:")
	if len(cws.Files) == 0 {
		fmt.Println("  Files: (none)")
	}
	for _, file := range cws.Files {
		fmt.Printf("  File: %s\n", file)
	}
	for _, field := range config.Fields() {
		value := cfg.Value(field)
		if value == "" {
			value = `""`
		}
		fmt.Printf("  %s = %s (%s)\n", field, value, cws.Sources[field])
	}
	fmt.Println()

	// Storage
	if cfg.StoragePath == "" {
		fmt.Printf("Storage: %s\n", cfg.StorageBackend)
	} else {
		fmt.Printf("Storage: %s at %s\n", cfg.StorageBackend, cfg.StoragePath)
	}
	kv, err := storage.Open(cfg.StorageBackend, cfg.StoragePath)
	if err != nil {
		fmt.Printf("  ❌ Error: %v\n", err)
		allOK = false
	} else {
		defer kv.Close()
		fmt.Println("  ✅ OK")
		if *verbose {
			if keys, err := kv.Keys(ctx); err != nil {
				fmt.Printf("  ❌ Keys: %v\n", err)
				allOK = false
			} else {
				fmt.Printf("  Keys: %s\n", strings.Join(keys, ", "))
			}
		}
		if !checkPayload(ctx, kv, cfg.StorageKey, *schemaPath, *verbose) {
			allOK = false
		}
	}
	fmt.Println()

	// Log directory
	logDir, err := logging.FindLogDir(cfg.LogDir, cfg.StoragePath)
	if err != nil {
		fmt.Printf("Log directory: %s\n", cfg.LogDir)
		fmt.Printf("  ❌ Error: %v\n", err)
		allOK = false
	} else {
		fmt.Printf("Log directory: %s\n", logDir)
		if _, err := os.Stat(logDir); err != nil {
			if os.IsNotExist(err) {
				fmt.Println("  ⚠️  Not found (created when the TUI starts)")
			} else {
				fmt.Printf("  ❌ Error: %v\n", err)
				allOK = false
			}
		} else {
			fmt.Println("  ✅ OK")
		}
	}
	fmt.Println()

	// Hook
	if cfg.HookCommand != "" {
		fmt.Printf("Hook command: %s\n", cfg.HookCommand)
		if path, err := utils.CommandPath(cfg.HookCommand); err != nil {
			fmt.Printf("  ❌ %v\n", err)
			allOK = false
		} else {
			fmt.Printf("  ✅ OK (%s)\n", path)
		}
		fmt.Println()
	}

	if allOK {
		fmt.Println("✅ All checks passed!")
		return nil
	}
	fmt.Println("⚠️  Some checks failed. Taskboard may not function correctly.")
	return fmt.Errorf("doctor checks failed")
}

// checkPayload validates the value stored under key.
func checkPayload(ctx context.Context, kv storage.KV, key, schemaPath string, verbose bool) bool {
	fmt.Printf("Key: %s\n", key)
	raw, ok, err := kv.Get(ctx, key)
	if err != nil {
		fmt.Printf("  ❌ Read error: %v\n", err)
		return false
	}
	if !ok {
		fmt.Println("  ⚠️  No saved tasks yet")
		return true
	}

	result := todo.Validate([]byte(raw), todo.ValidationOptions{SchemaPath: schemaPath})
	for _, w := range result.Warnings {
		fmt.Printf("  ⚠️  %s\n", w)
	}
	if !result.Valid {
		fmt.Println("  ❌ Validation failed (the TUI will start empty):")
		for _, e := range result.Errors {
			fmt.Printf("     - %v\n", e)
		}
		return false
	}

	list, err := todo.Decode([]byte(raw))
	if err != nil {
		fmt.Printf("  ❌ Decode error: %v\n", err)
		return false
	}
	counts := list.Counts()
	fmt.Printf("  ✅ Valid (%d tasks, %d done)\n", counts.Total, counts.Completed)
	if verbose {
		for _, p := range todo.Priorities() {
			fmt.Printf("     %s: %d\n", p, counts.ByPriority[p])
		}
		categories := list.Categories()
		if len(categories) > 0 {
			fmt.Printf("     Categories: %s\n", strings.Join(categories, ", "))
		}
	}
	return true
}
