// Package format renders model answers, errors and expense listings for the
// terminal.
package format

import (
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"golang.org/x/term"
)

// DefaultWidth is used when the terminal size cannot be determined.
const DefaultWidth = 100

var (
	errorPrefixStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("1")) // red
	errorTextStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
)

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// Width returns the column count of the terminal behind f, or DefaultWidth.
func Width(f *os.File) int {
	if w, _, err := term.GetSize(int(f.Fd())); err == nil && w > 0 { //nolint:gosec // fd fits in int
		return w
	}
	return DefaultWidth
}

// Markdown renders markdown answers with glamour.
type Markdown struct {
	r *glamour.TermRenderer
}

// NewMarkdown creates a renderer wrapping at width. An empty style picks the
// style from the terminal background.
func NewMarkdown(width int, style string) (*Markdown, error) {
	if width <= 0 {
		width = DefaultWidth
	}

	styleOpt := glamour.WithAutoStyle()
	if style != "" {
		styleOpt = glamour.WithStandardStyle(style)
	}

	r, err := glamour.NewTermRenderer(styleOpt, glamour.WithWordWrap(width))
	if err != nil {
		return nil, err
	}

	return &Markdown{r: r}, nil
}

// Render converts text to terminal output, returning text unchanged if
// rendering fails.
func (m *Markdown) Render(text string) string {
	if m == nil || m.r == nil {
		return text
	}
	out, err := m.r.Render(text)
	if err != nil {
		return text
	}
	return strings.Trim(out, "\n")
}

// Error formats a top-level failure as "genprompt: <err>", colored when
// styled is set.
func Error(err error, styled bool) string {
	if !styled {
		return "genprompt: " + err.Error()
	}
	return errorPrefixStyle.Render("genprompt:") + " " + errorTextStyle.Render(err.Error())
}
