package todo

import (
	"strings"

	"golang.org/x/text/cases"
)

// NormalizeText trims surrounding whitespace from task text.
func NormalizeText(s string) string {
	return strings.TrimSpace(s)
}

// NormalizeCategory trims a category and collapses internal whitespace.
func NormalizeCategory(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// CategoryKey returns the identity of a category: its normalized,
// case-folded form. "Work", " work " and "WORK" share one key.
func CategoryKey(s string) string {
	// Casers are stateful; never share one between calls.
	return cases.Fold().String(NormalizeCategory(s))
}
