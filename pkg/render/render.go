// Package render formats a finding.Registry's findings for terminal output.
// It is a thin collaborator (spec.md 1's "output layers", out of scope in
// detail) that exercises the teacher's charmbracelet/lipgloss dependency
// for the "plain" formatter named in spec.md 6's --format flag; SARIF,
// JSON, and GitHub annotation formats are not implemented here.
package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"

	"github.com/wflint/wflint/pkg/finding"
	"github.com/wflint/wflint/pkg/mathutil"
	"github.com/wflint/wflint/pkg/stringutil"
)

// maxAnnotationWidth bounds how much of a location's annotation is printed
// inline, since a template-injection finding's annotation can quote an
// entire multi-line expression.
const maxAnnotationWidth = 160

var (
	severityStyles = map[finding.Severity]lipgloss.Style{
		finding.SeverityHigh:          lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9")),
		finding.SeverityMedium:        lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("214")),
		finding.SeverityLow:           lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
		finding.SeverityInformational: lipgloss.NewStyle().Foreground(lipgloss.Color("12")),
		finding.SeverityUnknown:       lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
	}
	identStyle    = lipgloss.NewStyle().Bold(true)
	locationStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
)

// Plain writes a human-readable rendering of findings to w, one block per
// finding: severity/confidence header, description, every visible
// location's presentation path and line/column, and the URL to the audit's
// documentation. Output is colorized with lipgloss only when color is true;
// Plain does not inspect w itself, so the caller decides, typically from
// IsTerminal on the output file's descriptor.
func Plain(w io.Writer, findings []*finding.Finding, color bool) error {
	for i, f := range findings {
		if i > 0 {
			if _, err := fmt.Fprintln(w); err != nil {
				return err
			}
		}
		if err := writeFinding(w, f, color); err != nil {
			return err
		}
	}
	return nil
}

// IsTerminal reports whether fd (typically an *os.File's Fd()) refers to a
// terminal, the gate Plain's caller uses to decide the color argument.
func IsTerminal(fd uintptr) bool {
	return isatty.IsTerminal(fd)
}

func writeFinding(w io.Writer, f *finding.Finding, color bool) error {
	header := fmt.Sprintf("%s[%s/%s]", strings.ToUpper(f.Determinations.Severity.String()[:1])+f.Determinations.Severity.String()[1:], f.Ident, f.Determinations.Confidence)
	if color {
		header = severityStyles[f.Determinations.Severity].Render(header)
	}
	if _, err := fmt.Fprintln(w, header); err != nil {
		return err
	}

	ident := f.Ident
	if color {
		ident = identStyle.Render(ident)
	}
	if _, err := fmt.Fprintf(w, "  %s: %s\n", ident, f.Desc); err != nil {
		return err
	}

	for _, loc := range f.VisibleLocations() {
		line := fmt.Sprintf("%s:%d:%d", loc.Symbolic.Key.SarifPath(), loc.Concrete.Line, loc.Concrete.Column)
		if color {
			line = locationStyle.Render(line)
		}
		ann := ""
		if loc.Symbolic.Annotation != "" {
			flat := strings.Join(strings.Fields(loc.Symbolic.Annotation), " ")
			ann = " — " + stringutil.Truncate(flat, mathutil.Min(len(flat), maxAnnotationWidth))
		}
		if _, err := fmt.Fprintf(w, "    --> %s%s\n", line, ann); err != nil {
			return err
		}
	}

	if f.URL != "" {
		if _, err := fmt.Fprintf(w, "    docs: %s\n", f.URL); err != nil {
			return err
		}
	}
	return nil
}
