// Package cmd implements the CLI command structure for taskboard.
package cmd

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/nibzard/taskboard/internal/config"
	"github.com/nibzard/taskboard/internal/hooks"
	"github.com/nibzard/taskboard/internal/logging"
	"github.com/nibzard/taskboard/internal/persist"
	"github.com/nibzard/taskboard/internal/storage"
	"github.com/nibzard/taskboard/internal/store"
	"github.com/nibzard/taskboard/internal/theme"
	"github.com/nibzard/taskboard/internal/todo"
	"github.com/nibzard/taskboard/internal/ui"
	"github.com/nibzard/taskboard/internal/utils"
)

// Version is set via ldflags at build time.
var Version = "dev"

// Run executes the taskboard CLI.
func Run(ctx context.Context, args []string) error {
	// Create a flag set for global options
	fs := flag.NewFlagSet("taskboard", flag.ContinueOnError)
	fs.Usage = func() {
		printUsage(fs, os.Stderr)
	}
	help := fs.Bool("help", false, "Show help")
	fs.BoolVar(help, "h", false, "Show help")
	showVersion := fs.Bool("version", false, "Show version")
	fs.BoolVar(showVersion, "v", false, "Show version")

	// Global flags
	cws, err := config.LoadWithSources(fs, args)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	cfg := cws.Config
	if *help {
		printUsage(fs, os.Stdout)
		return nil
	}
	if *showVersion {
		return versionCommand()
	}

	// No args or a leading flag means the TUI.
	subcommand := "tui"
	remainingArgs := fs.Args()
	if len(remainingArgs) > 0 && !strings.HasPrefix(remainingArgs[0], "-") {
		subcommand = remainingArgs[0]
		remainingArgs = remainingArgs[1:]
	}

	switch subcommand {
	case "tui":
		return tuiCommand(ctx, cfg, remainingArgs)
	case "add":
		return addCommand(ctx, cfg, remainingArgs)
	case "ls", "list":
		return lsCommand(ctx, cfg, remainingArgs)
	case "toggle", "done":
		return toggleCommand(ctx, cfg, remainingArgs)
	case "rm", "delete":
		return rmCommand(ctx, cfg, remainingArgs)
	case "edit":
		return editCommand(ctx, cfg, remainingArgs)
	case "priority":
		return priorityCommand(ctx, cfg, remainingArgs)
	case "category":
		return categoryCommand(ctx, cfg, remainingArgs)
	case "categories":
		return categoriesCommand(ctx, cfg, remainingArgs)
	case "export":
		return exportCommand(ctx, cfg, remainingArgs)
	case "doctor":
		return doctorCommand(ctx, cws, remainingArgs)
	case "tail":
		return tailCommand(ctx, cfg, remainingArgs)
	case "completion":
		return completionCommand(cfg, remainingArgs)
	case "version", "--version", "-v":
		return versionCommand()
	case "help", "--help", "-h":
		printUsage(fs, os.Stdout)
		return nil
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", subcommand)
		printUsage(fs, os.Stderr)
		return fmt.Errorf("unknown command: %s", subcommand)
	}
}

// session is an open store backed by the configured storage.
type session struct {
	kv      storage.KV
	adapter *persist.Adapter
	tasks   *store.Store
	saveErr error
}

// openSession opens storage, loads the task list and attaches the hook
// command when one is configured. Hook output goes to hookOut.
func openSession(ctx context.Context, cfg *config.Config, logger *log.Logger, hookOut io.Writer, onSaveError func(error)) (*session, error) {
	kv, err := storage.Open(cfg.StorageBackend, cfg.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("opening %s storage: %w", cfg.StorageBackend, err)
	}
	adapter, err := persist.New(kv, cfg.StorageKey, logger)
	if err != nil {
		_ = kv.Close()
		return nil, fmt.Errorf("opening task list: %w", err)
	}
	ids, err := todo.NewIDGenerator(cfg.IDScheme)
	if err != nil {
		_ = kv.Close()
		return nil, err
	}

	s := &session{kv: kv, adapter: adapter}
	s.tasks = store.New(ctx, store.Options{
		Persister: adapter,
		IDs:       ids,
		Logger:    logger,
		OnSaveError: func(err error) {
			s.saveErr = err
			if onSaveError != nil {
				onSaveError(err)
			}
		},
	})

	if cfg.HookCommand != "" {
		s.tasks.Subscribe(hooks.Subscriber(ctx, hooks.Options{
			Command:     cfg.HookCommand,
			StoragePath: cfg.StoragePath,
			WorkDir:     cfg.ProjectRoot,
			Stdout:      hookOut,
			Stderr:      hookOut,
		}, logger))
	}
	return s, nil
}

// Close releases the storage backend.
func (s *session) Close() error {
	return s.kv.Close()
}

// mutate runs fn and turns a failed save into an error.
func (s *session) mutate(fn func() bool) (bool, error) {
	s.saveErr = nil
	changed := fn()
	if s.saveErr != nil {
		return changed, fmt.Errorf("saving tasks: %w", s.saveErr)
	}
	return changed, nil
}

// resolve maps an id or unique id prefix to a task.
func (s *session) resolve(prefix string) (todo.Task, error) {
	list := s.tasks.Snapshot()
	id, err := list.Resolve(prefix)
	if err != nil {
		return todo.Task{}, err
	}
	task, _ := list.Get(id)
	return task, nil
}

// cliLogger returns the logger used by non-interactive commands.
func cliLogger(cfg *config.Config) *log.Logger {
	return logging.New(os.Stderr, cfg.LoggingOptions())
}

// openCLISession opens a session that logs and runs hooks on the terminal.
func openCLISession(ctx context.Context, cfg *config.Config) (*session, error) {
	return openSession(ctx, cfg, cliLogger(cfg), os.Stderr, nil)
}

// tuiCommand launches the TUI. It logs to a per-run file because the
// terminal belongs to the UI.
func tuiCommand(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("taskboard tui", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if len(fs.Args()) > 0 {
		return fmt.Errorf("unexpected arguments: %v", fs.Args())
	}

	runLog, err := logging.NewRunLogger(cfg.LogDir, cfg.StoragePath)
	if err != nil {
		return fmt.Errorf("creating run log: %w", err)
	}
	defer runLog.Close()
	logger := logging.New(runLog.Writer(), cfg.LoggingOptions())
	logger.Info("starting tui", "storage", cfg.StorageBackend, "path", cfg.StoragePath, "key", cfg.StorageKey)

	saveErrs := &ui.SaveErrors{}
	s, err := openSession(ctx, cfg, logger, runLog.Writer(), saveErrs.Report)
	if err != nil {
		return err
	}
	defer s.Close()

	return ui.RunTUI(ctx, s.tasks,
		ui.WithTheme(theme.Name(cfg.Theme), cfg.DarkMode),
		ui.WithLogger(logger),
		ui.WithSaveErrors(saveErrs),
	)
}

// addCommand adds a task.
func addCommand(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("taskboard add", flag.ContinueOnError)
	priorityArg := fs.String("priority", string(todo.DefaultPriority), "Priority (low|medium|high)")
	fs.StringVar(priorityArg, "p", string(todo.DefaultPriority), "Priority (low|medium|high)")
	category := fs.String("category", "", "Category")
	fs.StringVar(category, "c", "", "Category")

	remaining, err := parseInterspersed(fs, args)
	if err != nil {
		return err
	}
	text := todo.NormalizeText(strings.Join(remaining, " "))
	if text == "" {
		return fmt.Errorf("task text is required")
	}
	priority, err := todo.ParsePriority(*priorityArg)
	if err != nil {
		return err
	}

	s, err := openCLISession(ctx, cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	var task todo.Task
	added, err := s.mutate(func() bool {
		var ok bool
		task, ok = s.tasks.Add(todo.Draft{Text: text, Priority: priority, Category: *category})
		return ok
	})
	if !added {
		return fmt.Errorf("task was not added")
	}
	if err != nil {
		return err
	}
	fmt.Printf("Added %s: %s\n", task.ID, task.Text)
	return nil
}

// lsCommand lists tasks grouped by category.
func lsCommand(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("taskboard ls", flag.ContinueOnError)
	category := fs.String("category", "", "Only show these categories (comma-separated)")
	done := fs.Bool("done", false, "Only show completed tasks")
	pending := fs.Bool("pending", false, "Only show pending tasks")
	verbose := fs.Bool("v", false, "Show more details")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if len(fs.Args()) > 0 {
		return fmt.Errorf("unexpected arguments: %v", fs.Args())
	}
	if *done && *pending {
		return fmt.Errorf("-done and -pending are mutually exclusive")
	}

	s, err := openCLISession(ctx, cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	keep := func(t todo.Task) bool {
		if *done && !t.Completed {
			return false
		}
		if *pending && t.Completed {
			return false
		}
		return true
	}

	grouping := s.tasks.GroupByCategory()
	printed := 0
	filter := make(map[string]bool)
	for _, name := range utils.SplitAndTrim(*category, ",") {
		filter[todo.CategoryKey(name)] = true
	}
	for _, group := range grouping.Groups {
		if len(filter) > 0 && !filter[todo.CategoryKey(group.Category)] {
			continue
		}
		printed += printGroup(group.Category, group.Tasks, keep, *verbose)
	}
	if len(filter) == 0 {
		printed += printGroup("Uncategorized", grouping.Uncategorized, keep, *verbose)
	}
	if printed == 0 {
		fmt.Println("No tasks found.")
		return nil
	}

	counts := s.tasks.Snapshot().Counts()
	fmt.Printf("%d tasks, %d done, %d pending\n", counts.Total, counts.Completed, counts.Pending())
	return nil
}

// toggleCommand flips the completed flag of a task.
func toggleCommand(ctx context.Context, cfg *config.Config, args []string) error {
	return withTask(ctx, cfg, "toggle", args, func(s *session, task todo.Task) error {
		if _, err := s.mutate(func() bool { return s.tasks.ToggleComplete(task.ID) }); err != nil {
			return err
		}
		if task.Completed {
			fmt.Printf("Reopened %s: %s\n", task.ID, task.Text)
		} else {
			fmt.Printf("Completed %s: %s\n", task.ID, task.Text)
		}
		return nil
	})
}

// rmCommand deletes a task.
func rmCommand(ctx context.Context, cfg *config.Config, args []string) error {
	return withTask(ctx, cfg, "rm", args, func(s *session, task todo.Task) error {
		if _, err := s.mutate(func() bool { return s.tasks.Delete(task.ID) }); err != nil {
			return err
		}
		fmt.Printf("Deleted %s: %s\n", task.ID, task.Text)
		return nil
	})
}

// editCommand replaces the text of a task.
func editCommand(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: taskboard edit <id> <text>")
	}
	text := todo.NormalizeText(strings.Join(args[1:], " "))
	if text == "" {
		return fmt.Errorf("task text is required")
	}
	return withTask(ctx, cfg, "edit", args[:1], func(s *session, task todo.Task) error {
		changed, err := s.mutate(func() bool { return s.tasks.EditText(task.ID, text) })
		if err != nil {
			return err
		}
		if !changed {
			fmt.Printf("No change to %s\n", task.ID)
			return nil
		}
		fmt.Printf("Updated %s: %s\n", task.ID, text)
		return nil
	})
}

// priorityCommand sets the priority of a task.
func priorityCommand(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: taskboard priority <id> <low|medium|high>")
	}
	priority, err := todo.ParsePriority(args[1])
	if err != nil {
		return err
	}
	return withTask(ctx, cfg, "priority", args[:1], func(s *session, task todo.Task) error {
		changed, err := s.mutate(func() bool { return s.tasks.SetPriority(task.ID, priority) })
		if err != nil {
			return err
		}
		if !changed {
			fmt.Printf("No change to %s\n", task.ID)
			return nil
		}
		fmt.Printf("Set %s priority to %s\n", task.ID, priority)
		return nil
	})
}

// categoryCommand moves a task to a category, or out of every category
// when none is given.
func categoryCommand(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: taskboard category <id> [category]")
	}
	category := strings.Join(args[1:], " ")
	return withTask(ctx, cfg, "category", args[:1], func(s *session, task todo.Task) error {
		changed, err := s.mutate(func() bool { return s.tasks.SetCategory(task.ID, category) })
		if err != nil {
			return err
		}
		if !changed {
			fmt.Printf("No change to %s\n", task.ID)
			return nil
		}
		updated, _ := s.tasks.Snapshot().Get(task.ID)
		if updated.Category == "" {
			fmt.Printf("Moved %s to Uncategorized\n", task.ID)
		} else {
			fmt.Printf("Moved %s to %s\n", task.ID, updated.Category)
		}
		return nil
	})
}

// categoriesCommand prints the distinct categories in first-seen order.
func categoriesCommand(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) > 0 {
		return fmt.Errorf("unexpected arguments: %v", args)
	}
	s, err := openCLISession(ctx, cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	for _, category := range s.tasks.Categories() {
		fmt.Println(category)
	}
	return nil
}

// exportCommand prints the persisted payload.
func exportCommand(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) > 0 {
		return fmt.Errorf("unexpected arguments: %v", args)
	}
	s, err := openCLISession(ctx, cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	raw, ok, err := s.adapter.Raw(ctx)
	if err != nil {
		return fmt.Errorf("reading %s: %w", s.adapter.Key(), err)
	}
	if !ok {
		data, err := todo.Encode(todo.List{})
		if err != nil {
			return err
		}
		raw = string(data)
	}
	fmt.Print(raw)
	if !strings.HasSuffix(raw, "\n") {
		fmt.Println()
	}
	return nil
}

// tailCommand tails the latest TUI log for the configured store.
func tailCommand(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("taskboard tail", flag.ContinueOnError)
	follow := fs.Bool("f", false, "Follow the log (like tail -f)")
	fs.BoolVar(follow, "follow", false, "Follow the log (like tail -f)")
	n := fs.Int("n", 0, "Number of lines to show (0 = all)")

	if err := fs.Parse(args); err != nil {
		return err
	}

	logDir, err := logging.FindLogDir(cfg.LogDir, cfg.StoragePath)
	if err != nil {
		return fmt.Errorf("finding log directory: %w", err)
	}

	logPath, err := logging.FindLatestLog(logDir)
	if err != nil {
		return fmt.Errorf("finding latest log: %w", err)
	}

	if logPath == "" {
		fmt.Println("No log files found.")
		return nil
	}

	fmt.Printf("Tailing: %s\n", logPath)
	if *follow {
		fmt.Println("(Ctrl+C to stop)")
	}
	fmt.Println()

	return logging.TailLog(ctx, os.Stdout, logPath, *n, *follow)
}

// versionCommand prints version information.
func versionCommand() error {
	fmt.Printf("taskboard version %s\n", Version)
	return nil
}

// withTask resolves the single id argument and runs fn against it.
func withTask(ctx context.Context, cfg *config.Config, name string, args []string, fn func(*session, todo.Task) error) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: taskboard %s <id>", name)
	}
	s, err := openCLISession(ctx, cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	task, err := s.resolve(args[0])
	if err != nil {
		return err
	}
	return fn(s, task)
}

// parseInterspersed parses fs allowing flags after positional arguments.
// Arguments after "--" are always positional.
func parseInterspersed(fs *flag.FlagSet, args []string) ([]string, error) {
	var positional []string
	for {
		if err := fs.Parse(args); err != nil {
			return nil, err
		}
		rest := fs.Args()
		consumed := len(args) - len(rest)
		if consumed > 0 && args[consumed-1] == "--" {
			return append(positional, rest...), nil
		}
		if len(rest) == 0 {
			return positional, nil
		}
		positional = append(positional, rest[0])
		args = rest[1:]
	}
}

// printGroup prints the tasks of one group that pass keep and returns how
// many were printed.
func printGroup(label string, tasks []todo.Task, keep func(todo.Task) bool, verbose bool) int {
	var matching []todo.Task
	for _, t := range tasks {
		if keep(t) {
			matching = append(matching, t)
		}
	}
	if len(matching) == 0 {
		return 0
	}
	fmt.Printf("%s (%d):\n", label, len(matching))
	for _, t := range matching {
		printTask(t, verbose)
	}
	fmt.Println()
	return len(matching)
}

// printTask prints a single task.
func printTask(t todo.Task, verbose bool) {
	box := "[ ]"
	if t.Completed {
		box = "[x]"
	}
	fmt.Printf("  %s %s (%s) %s\n", box, t.ID, t.Priority, t.Text)
	if verbose {
		fmt.Printf("      Created: %s\n", t.CreatedAt.Local().Format("2006-01-02 15:04"))
	}
}

// printUsage prints the usage message.
func printUsage(fs *flag.FlagSet, w io.Writer) {
	fmt.Fprintln(w, "Taskboard - A categorized task list for the terminal")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  taskboard [options] [command]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  tui                         Launch terminal UI (default command)")
	fmt.Fprintln(w, "  add <text>                  Add a task")
	fmt.Fprintln(w, "  ls                          List tasks grouped by category")
	fmt.Fprintln(w, "  toggle <id>                 Mark a task done or not done")
	fmt.Fprintln(w, "  rm <id>                     Delete a task")
	fmt.Fprintln(w, "  edit <id> <text>            Replace the text of a task")
	fmt.Fprintln(w, "  priority <id> <priority>    Set priority (low|medium|high)")
	fmt.Fprintln(w, "  category <id> [category]    Set or clear the category of a task")
	fmt.Fprintln(w, "  categories                  List categories")
	fmt.Fprintln(w, "  export                      Print the stored task list as JSON")
	fmt.Fprintln(w, "  doctor                      Check config, storage and stored tasks")
	fmt.Fprintln(w, "  tail                        Tail the latest TUI log file")
	fmt.Fprintln(w, "  completion <shell>          Print a shell completion script")
	fmt.Fprintln(w, "  version                     Show version information")
	fmt.Fprintln(w, "  help                        Show this help message")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Ids may be shortened to any unique prefix.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Global Options:")
	fs.SetOutput(w)
	fs.PrintDefaults()
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Add Options:")
	fmt.Fprintln(w, "  -priority, -p string")
	fmt.Fprintln(w, "        Priority (low|medium|high) (default \"medium\")")
	fmt.Fprintln(w, "  -category, -c string")
	fmt.Fprintln(w, "        Category")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Ls Options:")
	fmt.Fprintln(w, "  -category string")
	fmt.Fprintln(w, "        Only show these categories (comma-separated)")
	fmt.Fprintln(w, "  -done | -pending")
	fmt.Fprintln(w, "        Only show completed or pending tasks")
	fmt.Fprintln(w, "  -v    Show more details")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Tail Options:")
	fmt.Fprintln(w, "  -f, --follow")
	fmt.Fprintln(w, "        Follow the log (like tail -f)")
	fmt.Fprintln(w, "  -n int")
	fmt.Fprintln(w, "        Number of lines to show (0 = all)")
}
