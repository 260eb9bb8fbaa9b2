// Package ui provides the terminal interface.
package ui

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/nibzard/taskboard/internal/logging"
	"github.com/nibzard/taskboard/internal/store"
	"github.com/nibzard/taskboard/internal/theme"
	"github.com/nibzard/taskboard/internal/todo"
)

// TUIOption configures the TUI behavior.
type TUIOption func(*tuiConfig)

// tuiConfig holds TUI configuration.
type tuiConfig struct {
	theme      theme.Name
	dark       bool
	logger     *log.Logger
	saveErrors *SaveErrors
}

// WithTheme selects the initial palette and mode.
func WithTheme(name theme.Name, dark bool) TUIOption {
	return func(c *tuiConfig) {
		c.theme = name
		c.dark = dark
	}
}

// WithLogger sets the logger. The TUI owns the terminal, so it should not
// write to stdout or stderr.
func WithLogger(logger *log.Logger) TUIOption {
	return func(c *tuiConfig) {
		c.logger = logger
	}
}

// WithSaveErrors shows persistence failures reported to errs.
func WithSaveErrors(errs *SaveErrors) TUIOption {
	return func(c *tuiConfig) {
		c.saveErrors = errs
	}
}

// SaveErrors collects persistence failures for display. Pass Report as the
// store's OnSaveError.
type SaveErrors struct {
	mu  sync.Mutex
	err error
}

// Report records err.
func (s *SaveErrors) Report(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

// Take returns and clears the last recorded error.
func (s *SaveErrors) Take() error {
	if s == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	err := s.err
	s.err = nil
	return err
}

// RunTUI starts the TUI over s.
func RunTUI(ctx context.Context, s *store.Store, opts ...TUIOption) error {
	if !IsTTY(os.Stdout) {
		return fmt.Errorf("tui requires a TTY")
	}
	model := newTUIModel(s, opts...)
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := program.Run()
	return err
}

type tuiMode int

const (
	modeList tuiMode = iota
	modeAdd
	modeEditText
	modeEditCategory
)

type formFocus int

const (
	focusText formFocus = iota
	focusCategory
	focusPriority
)

type tuiModel struct {
	store      *store.Store
	logger     *log.Logger
	saveErrors *SaveErrors

	themeName theme.Name
	dark      bool
	th        theme.Theme

	mode     tuiMode
	cursor   int
	showHelp bool
	flash    string
	flashErr bool
	width    int

	// Add form
	text     textarea.Model
	category textinput.Model
	priority todo.Priority
	focus    formFocus

	// Single-line edit of text or category
	input  textinput.Model
	editID string
}

func newTUIModel(s *store.Store, opts ...TUIOption) *tuiModel {
	c := &tuiConfig{theme: theme.Default}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = logging.Discard()
	}

	m := &tuiModel{
		store:      s,
		logger:     c.logger,
		saveErrors: c.saveErrors,
		themeName:  c.theme,
		dark:       c.dark,
		priority:   todo.DefaultPriority,
	}
	m.th = theme.New(m.themeName, m.dark)

	m.text = textarea.New()
	m.text.Placeholder = "What needs to be done?"
	m.text.ShowLineNumbers = false
	m.text.SetHeight(3)
	m.text.SetWidth(60)

	m.category = newCategoryInput("Category (optional)")
	m.input = textinput.New()
	return m
}

func newCategoryInput(placeholder string) textinput.Model {
	in := textinput.New()
	in.Placeholder = placeholder
	in.ShowSuggestions = true
	in.KeyMap.AcceptSuggestion = key.NewBinding(key.WithKeys("right"))
	return in
}

func (m *tuiModel) Init() tea.Cmd {
	return nil
}

func (m *tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		if msg.Width > 8 {
			m.text.SetWidth(min(msg.Width-4, 80))
		}
		return m, nil
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		switch m.mode {
		case modeAdd:
			return m.updateAdd(msg)
		case modeEditText, modeEditCategory:
			return m.updateEdit(msg)
		default:
			return m.updateList(msg)
		}
	}
	return m, nil
}

func (m *tuiModel) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showHelp {
		switch msg.String() {
		case "?", "h", "esc", "q":
			m.showHelp = false
		}
		return m, nil
	}

	m.flash = ""
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "?", "h":
		m.showHelp = true
	case "j", "down":
		m.moveCursor(1)
	case "k", "up":
		m.moveCursor(-1)
	case "g", "home":
		m.cursor = 0
	case "G", "end":
		m.cursor = max(0, len(m.rows())-1)
	case " ", "space", "x", "enter":
		if task, ok := m.selected(); ok {
			m.store.ToggleComplete(task.ID)
			m.afterChange()
		}
	case "a", "n":
		return m, m.openAdd()
	case "e":
		if task, ok := m.selected(); ok {
			return m, m.openEdit(modeEditText, task)
		}
	case "c":
		if task, ok := m.selected(); ok {
			return m, m.openEdit(modeEditCategory, task)
		}
	case "p":
		if task, ok := m.selected(); ok {
			m.store.SetPriority(task.ID, task.Priority.Next())
			m.afterChange()
		}
	case "1", "2", "3":
		if task, ok := m.selected(); ok {
			p := todo.Priorities()[msg.String()[0]-'1']
			m.store.SetPriority(task.ID, p)
			m.afterChange()
		}
	case "d", "delete":
		if task, ok := m.selected(); ok {
			if m.store.Delete(task.ID) {
				m.setFlash(fmt.Sprintf("Deleted %q", task.Text), false)
			}
			m.afterChange()
		}
	case "t":
		m.themeName = m.themeName.Next()
		m.th = theme.New(m.themeName, m.dark)
		m.setFlash("Theme: "+string(m.themeName), false)
	case "D":
		m.dark = !m.dark
		m.th = theme.New(m.themeName, m.dark)
		if m.dark {
			m.setFlash("Dark mode on", false)
		} else {
			m.setFlash("Dark mode off", false)
		}
	}
	return m, nil
}

func (m *tuiModel) updateAdd(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.closeForms()
		return m, nil
	case "tab", "shift+tab":
		step := 1
		if msg.String() == "shift+tab" {
			step = 2
		}
		return m, m.setFocus(formFocus((int(m.focus) + step) % 3))
	case "enter":
		m.submitAdd()
		return m, nil
	}

	var cmd tea.Cmd
	switch m.focus {
	case focusText:
		m.text, cmd = m.text.Update(msg)
	case focusCategory:
		m.category, cmd = m.category.Update(msg)
	case focusPriority:
		switch msg.String() {
		case "left", "h":
			m.priority = prevPriority(m.priority)
		case "right", "l", " ", "p":
			m.priority = m.priority.Next()
		case "1", "2", "3":
			m.priority = todo.Priorities()[msg.String()[0]-'1']
		}
	}
	return m, cmd
}

func (m *tuiModel) updateEdit(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.closeForms()
		return m, nil
	case "enter":
		value := m.input.Value()
		if m.mode == modeEditText {
			if todo.NormalizeText(value) == "" {
				m.setFlash("Task text cannot be empty", true)
				return m, nil
			}
			m.store.EditText(m.editID, value)
		} else {
			m.store.SetCategory(m.editID, value)
		}
		m.closeForms()
		m.afterChange()
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *tuiModel) openAdd() tea.Cmd {
	m.mode = modeAdd
	m.text.Reset()
	m.category = newCategoryInput("Category (optional)")
	m.category.SetSuggestions(m.store.Categories())
	m.priority = todo.DefaultPriority
	return m.setFocus(focusText)
}

func (m *tuiModel) openEdit(mode tuiMode, task todo.Task) tea.Cmd {
	m.mode = mode
	m.editID = task.ID
	if mode == modeEditCategory {
		m.input = newCategoryInput("Uncategorized")
		m.input.SetSuggestions(m.store.Categories())
		m.input.SetValue(task.Category)
	} else {
		m.input = textinput.New()
		m.input.SetValue(task.Text)
	}
	m.input.CursorEnd()
	return m.input.Focus()
}

func (m *tuiModel) setFocus(f formFocus) tea.Cmd {
	m.focus = f
	m.text.Blur()
	m.category.Blur()
	switch f {
	case focusText:
		return m.text.Focus()
	case focusCategory:
		return m.category.Focus()
	}
	return nil
}

func (m *tuiModel) submitAdd() {
	if todo.NormalizeText(m.text.Value()) == "" {
		m.setFlash("Task text cannot be empty", true)
		return
	}
	task, ok := m.store.Add(todo.Draft{
		Text:     m.text.Value(),
		Priority: m.priority,
		Category: m.category.Value(),
	})
	m.closeForms()
	if ok {
		m.selectID(task.ID)
		m.setFlash(fmt.Sprintf("Added %q", task.Text), false)
	}
	m.afterChange()
}

func (m *tuiModel) closeForms() {
	m.mode = modeList
	m.editID = ""
	m.text.Blur()
	m.category.Blur()
	m.input.Blur()
}

// afterChange clamps the cursor and surfaces save failures.
func (m *tuiModel) afterChange() {
	if n := len(m.rows()); m.cursor >= n {
		m.cursor = max(0, n-1)
	}
	if err := m.saveErrors.Take(); err != nil {
		m.setFlash("Could not save: "+err.Error(), true)
	}
}

func (m *tuiModel) setFlash(text string, isErr bool) {
	m.flash = text
	m.flashErr = isErr
}

func (m *tuiModel) moveCursor(delta int) {
	n := len(m.rows())
	if n == 0 {
		m.cursor = 0
		return
	}
	m.cursor = (m.cursor + delta + n) % n
}

// rows returns tasks in display order: named groups, then uncategorized.
func (m *tuiModel) rows() []todo.Task {
	g := m.store.GroupByCategory()
	rows := make([]todo.Task, 0, g.Len())
	for _, group := range g.Groups {
		rows = append(rows, group.Tasks...)
	}
	return append(rows, g.Uncategorized...)
}

func (m *tuiModel) selected() (todo.Task, bool) {
	rows := m.rows()
	if m.cursor < 0 || m.cursor >= len(rows) {
		return todo.Task{}, false
	}
	return rows[m.cursor], true
}

func (m *tuiModel) selectID(id string) {
	for i, t := range m.rows() {
		if t.ID == id {
			m.cursor = i
			return
		}
	}
}

func (m *tuiModel) View() string {
	var b strings.Builder
	m.writeTitle(&b)

	if m.showHelp {
		writeHelp(&b)
		m.writeFooter(&b)
		return b.String()
	}

	switch m.mode {
	case modeAdd:
		m.writeAddForm(&b)
	case modeEditText:
		b.WriteString(m.th.Category.Render("Edit task") + "\n\n")
		b.WriteString(m.input.View() + "\n\n")
		b.WriteString(m.th.Help.Render("enter save • esc cancel") + "\n")
	case modeEditCategory:
		b.WriteString(m.th.Category.Render("Set category") + "\n\n")
		b.WriteString(m.input.View() + "\n\n")
		b.WriteString(m.th.Help.Render("enter save • → accept suggestion • empty clears • esc cancel") + "\n")
	default:
		m.writeTasks(&b)
	}

	if m.flash != "" {
		style := m.th.Muted
		if m.flashErr {
			style = m.th.Error
		}
		b.WriteString("\n" + style.Render(m.flash) + "\n")
	}
	m.writeFooter(&b)
	return b.String()
}

func (m *tuiModel) writeTitle(b *strings.Builder) {
	b.WriteString(m.th.Title.Render("Taskboard") + "\n")
	counts := m.store.Snapshot().Counts()
	if counts.Total > 0 {
		b.WriteString(m.th.Muted.Render(fmt.Sprintf("%d tasks • %d done • %d pending",
			counts.Total, counts.Completed, counts.Pending())) + "\n")
	}
	b.WriteString("\n")
}

func (m *tuiModel) writeTasks(b *strings.Builder) {
	g := m.store.GroupByCategory()
	if g.Len() == 0 {
		b.WriteString(m.th.Empty.Render("Your task list is empty") + "\n")
		b.WriteString(m.th.Muted.Render("Add your first task to get started! Press a.") + "\n")
		return
	}

	row := 0
	writeGroup := func(title string, tasks []todo.Task) {
		b.WriteString(m.th.Category.Render(title) + "\n")
		for _, task := range tasks {
			b.WriteString(m.formatTask(task, row == m.cursor))
			b.WriteString("\n")
			row++
		}
		b.WriteString("\n")
	}
	for _, group := range g.Groups {
		writeGroup(group.Category, group.Tasks)
	}
	if len(g.Uncategorized) > 0 {
		writeGroup("Uncategorized", g.Uncategorized)
	}
}

func (m *tuiModel) formatTask(t todo.Task, selected bool) string {
	pointer := "  "
	if selected {
		pointer = m.th.Cursor.Render("> ")
	}
	check := "[ ]"
	text := m.th.Text.Render(firstLine(t.Text))
	if t.Completed {
		check = "[x]"
		text = m.th.Completed.Render(firstLine(t.Text))
	}
	return fmt.Sprintf("%s%s %s %s", pointer, check, text, m.th.Badge(t.Priority))
}

func (m *tuiModel) writeAddForm(b *strings.Builder) {
	b.WriteString(m.th.Category.Render("New task") + "\n\n")
	b.WriteString(m.text.View() + "\n\n")
	b.WriteString(m.category.View() + "\n\n")

	var badges []string
	for _, p := range todo.Priorities() {
		badge := m.th.Badge(p)
		if p == m.priority {
			badge = m.th.Cursor.Render("[") + badge + m.th.Cursor.Render("]")
		} else {
			badge = " " + badge + " "
		}
		badges = append(badges, badge)
	}
	label := "Priority: "
	if m.focus == focusPriority {
		label = m.th.Cursor.Render(label)
	}
	b.WriteString(label + lipgloss.JoinHorizontal(lipgloss.Top, badges...) + "\n\n")
	b.WriteString(m.th.Help.Render("tab next field • enter add • esc cancel") + "\n")
}

func writeHelp(b *strings.Builder) {
	b.WriteString("Keyboard Shortcuts\n\n")
	b.WriteString("  j/k, ↑/↓      Move\n")
	b.WriteString("  space, x      Toggle complete\n")
	b.WriteString("  a             Add task\n")
	b.WriteString("  e             Edit text\n")
	b.WriteString("  c             Set category\n")
	b.WriteString("  p             Cycle priority\n")
	b.WriteString("  1 / 2 / 3     Priority low / medium / high\n")
	b.WriteString("  d             Delete task\n")
	b.WriteString("  t             Next theme\n")
	b.WriteString("  D             Toggle dark mode\n")
	b.WriteString("  ?             Toggle this help screen\n")
	b.WriteString("  q, ctrl+c     Quit\n\n")
}

func (m *tuiModel) writeFooter(b *strings.Builder) {
	mode := "light"
	if m.dark {
		mode = "dark"
	}
	footer := fmt.Sprintf("Press ? for help | q to quit | theme %s (%s)", m.themeName, mode)
	b.WriteString("\n" + m.th.Help.Render(footer) + "\n")
}

func prevPriority(p todo.Priority) todo.Priority {
	return p.Next().Next()
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i] + " …"
	}
	return s
}

// IsTTY returns true if w is a terminal.
func IsTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}
