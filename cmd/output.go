package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

// ── Unified output helpers ────────────────────────────────────────────────────
// Commands print through a printer bound to the command's stdout/stderr so
// that icons and indentation stay consistent and tests can capture output.
//
// Icon semantics:
//   ✓  success / healthy
//   ✗  error / failure          (written to stderr)
//   ⚠  warning
//   ○  skipped / not applicable
//   -  not found / missing
//   ~  neutral info / state change

type printer struct {
	out     io.Writer
	errOut  io.Writer
	heading lipgloss.Style
}

func newPrinter(cmd *cobra.Command) *printer {
	out := cmd.OutOrStdout()
	return &printer{
		out:     out,
		errOut:  cmd.ErrOrStderr(),
		heading: lipgloss.NewRenderer(out).NewStyle().Bold(true),
	}
}

// section prints a top-level section header, e.g. "=== skillsmp doctor ===".
func (p *printer) section(title string) {
	fmt.Fprintf(p.out, "\n%s\n", p.heading.Render("=== "+title+" ==="))
}

// group prints a check group label, e.g. "[ config.yaml ]".
func (p *printer) group(title string) {
	fmt.Fprintf(p.out, "[ %s ]\n", title)
}

func (p *printer) line(icon, name, msg string, w io.Writer) {
	if name == "" {
		fmt.Fprintf(w, "  %s  %s\n", icon, msg)
	} else {
		fmt.Fprintf(w, "  %s  [%s] %s\n", icon, name, msg)
	}
}

// ok prints a success line.
//
//	name = "" → "  ✓  msg"
//	name set  → "  ✓  [name] msg"
func (p *printer) ok(name, msg string) { p.line("✓", name, msg, p.out) }

// fail prints an error line to stderr.
func (p *printer) fail(name, msg string) { p.line("✗", name, msg, p.errOut) }

func (p *printer) warn(name, msg string) { p.line("⚠", name, msg, p.out) }

func (p *printer) skip(name, msg string) { p.line("○", name, msg, p.out) }

func (p *printer) miss(name, msg string) { p.line("-", name, msg, p.out) }

func (p *printer) info(name, msg string) { p.line("~", name, msg, p.out) }

// printf writes plain text to stdout.
func (p *printer) printf(format string, args ...any) {
	fmt.Fprintf(p.out, format, args...)
}

// writeJSON writes v as two-space indented JSON. Non-ASCII and HTML characters
// are written as-is.
func (p *printer) writeJSON(v any) error {
	enc := json.NewEncoder(p.out)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
