package format

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
)

// Renderer writes report lines, styling section headers when the writer is
// a terminal.
type Renderer struct {
	w      io.Writer
	header lipgloss.Style
}

// NewRenderer returns a Renderer for w. Colour support is detected from w,
// so a pipe or file gets plain text.
func NewRenderer(w io.Writer) *Renderer {
	r := lipgloss.NewRenderer(w)
	return &Renderer{
		w:      w,
		header: r.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
	}
}

// WriteLines writes each line followed by a newline.
func (r *Renderer) WriteLines(lines []string) error {
	for _, line := range lines {
		if IsHeader(line) {
			line = r.header.Render(line)
		}
		if _, err := fmt.Fprintln(r.w, line); err != nil {
			return err
		}
	}
	return nil
}
