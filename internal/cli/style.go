package cli

import (
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// palette holds the ANSI-256 color values used throughout the CLI.
var (
	clrGreen  = lipgloss.Color("114")
	clrRed    = lipgloss.Color("203")
	clrYellow = lipgloss.Color("220")
	clrDim    = lipgloss.Color("245")
)

// styles wraps lipgloss renderers that respect TTY detection. When output
// is not a terminal (piped, redirected, --json), all styling is disabled
// and raw text is emitted.
type styles struct {
	enabled bool

	Bold    lipgloss.Style
	Dim     lipgloss.Style
	Key     lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
	Success lipgloss.Style
}

// newStyles creates a styles instance. Colors are enabled only when w
// points to a terminal file descriptor and jsonMode is false.
func newStyles(w io.Writer, jsonMode bool) styles {
	enabled := false
	if !jsonMode {
		if f, ok := w.(*os.File); ok {
			enabled = term.IsTerminal(int(f.Fd()))
		}
	}

	s := styles{enabled: enabled}
	if !enabled {
		plain := lipgloss.NewStyle()
		s.Bold, s.Dim, s.Key, s.Warning, s.Error, s.Success = plain, plain, plain, plain, plain, plain
		return s
	}

	s.Bold = lipgloss.NewStyle().Bold(true)
	s.Dim = lipgloss.NewStyle().Foreground(clrDim)
	s.Key = lipgloss.NewStyle().Foreground(clrDim)
	s.Warning = lipgloss.NewStyle().Foreground(clrYellow)
	s.Error = lipgloss.NewStyle().Foreground(clrRed).Bold(true)
	s.Success = lipgloss.NewStyle().Foreground(clrGreen)
	return s
}
