// Package theme holds the named color palettes of the terminal UI.
package theme

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/nibzard/taskboard/internal/todo"
)

// Name identifies a palette.
type Name string

const (
	Default Name = "default"
	Sunset  Name = "sunset"
	Forest  Name = "forest"
	Ocean   Name = "ocean"
	Candy   Name = "candy"
)

// Names returns every palette in menu order.
func Names() []Name {
	return []Name{Default, Sunset, Forest, Ocean, Candy}
}

// ParseName parses a palette name. The empty string selects Default.
func ParseName(s string) (Name, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return Default, nil
	}
	for _, n := range Names() {
		if string(n) == s {
			return n, nil
		}
	}
	return "", fmt.Errorf("unknown theme %q (expected default|sunset|forest|ocean|candy)", s)
}

// Next returns the palette after n, wrapping around.
func (n Name) Next() Name {
	names := Names()
	for i, name := range names {
		if name == n {
			return names[(i+1)%len(names)]
		}
	}
	return Default
}

// palette is the raw colors of one named theme.
type palette struct {
	background string
	accent     string
}

var palettes = map[Name]palette{
	Default: {background: "#ffffff", accent: "#9333ea"},
	Sunset:  {background: "#fff7ed", accent: "#f97316"},
	Forest:  {background: "#f0fdf4", accent: "#16a34a"},
	Ocean:   {background: "#eff6ff", accent: "#2563eb"},
	Candy:   {background: "#fdf2f8", accent: "#ec4899"},
}

// Dark mode shares one background across palettes.
const darkBackground = "#111827"

type badgeColors struct {
	lightBg, lightFg string
	darkBg, darkFg   string
}

var priorityColors = map[todo.Priority]badgeColors{
	todo.PriorityLow:    {"#dbeafe", "#1e40af", "#1e3a8a", "#93c5fd"},
	todo.PriorityMedium: {"#fef9c3", "#854d0e", "#713f12", "#fde047"},
	todo.PriorityHigh:   {"#fee2e2", "#991b1b", "#7f1d1d", "#fca5a5"},
}

// Theme is a resolved set of styles.
type Theme struct {
	Name Name
	Dark bool

	Background lipgloss.Color
	Accent     lipgloss.Color

	Title     lipgloss.Style
	Category  lipgloss.Style
	Text      lipgloss.Style
	Completed lipgloss.Style
	Cursor    lipgloss.Style
	Muted     lipgloss.Style
	Help      lipgloss.Style
	Error     lipgloss.Style
	Empty     lipgloss.Style

	priorities map[todo.Priority]lipgloss.Style
}

// New resolves palette name for light or dark mode. Unknown names fall
// back to Default.
func New(name Name, dark bool) Theme {
	p, ok := palettes[name]
	if !ok {
		name = Default
		p = palettes[Default]
	}

	bg := p.background
	text, muted, done := "#1f2937", "#4b5563", "#6b7280"
	accent := p.accent
	errColor := "#ef4444"
	if dark {
		bg = darkBackground
		text, muted, done = "#e5e7eb", "#9ca3af", "#9ca3af"
		accent = "#c084fc"
		errColor = "#f87171"
		if name != Default {
			accent = p.accent
		}
	}

	t := Theme{
		Name:       name,
		Dark:       dark,
		Background: lipgloss.Color(bg),
		Accent:     lipgloss.Color(accent),
		Title:      lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(accent)),
		Category:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(text)),
		Text:       lipgloss.NewStyle().Foreground(lipgloss.Color(text)),
		Completed:  lipgloss.NewStyle().Strikethrough(true).Faint(true).Foreground(lipgloss.Color(done)),
		Cursor:     lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(accent)),
		Muted:      lipgloss.NewStyle().Foreground(lipgloss.Color(muted)),
		Help:       lipgloss.NewStyle().Faint(true).Foreground(lipgloss.Color(muted)),
		Error:      lipgloss.NewStyle().Foreground(lipgloss.Color(errColor)),
		Empty:      lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(text)),
		priorities: make(map[todo.Priority]lipgloss.Style, len(priorityColors)),
	}
	for prio, c := range priorityColors {
		fg, bgc := c.lightFg, c.lightBg
		if dark {
			fg, bgc = c.darkFg, c.darkBg
		}
		t.priorities[prio] = lipgloss.NewStyle().
			Foreground(lipgloss.Color(fg)).
			Background(lipgloss.Color(bgc)).
			Padding(0, 1)
	}
	return t
}

// Priority returns the badge style for p.
func (t Theme) Priority(p todo.Priority) lipgloss.Style {
	if s, ok := t.priorities[p]; ok {
		return s
	}
	return t.Muted
}

// Badge renders the priority label of p.
func (t Theme) Badge(p todo.Priority) string {
	return t.Priority(p).Render(string(p))
}
