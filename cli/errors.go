package cli

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/robinvdvleuten/moneybook/errors"
)

var errContextStyle = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#808080", Dark: "#808080"})

// ErrorRenderer renders errors with terminal styling. The message is
// highlighted, hints below it are dimmed.
type ErrorRenderer struct {
	formatter *errors.TextFormatter
}

// NewErrorRenderer creates a renderer printing dates with dateFormat.
func NewErrorRenderer(dateFormat string) *ErrorRenderer {
	return &ErrorRenderer{formatter: errors.NewTextFormatter(errors.WithDateFormat(dateFormat))}
}

// Render formats a single error.
func (r *ErrorRenderer) Render(err error) string {
	message, hint, found := strings.Cut(r.formatter.Format(err), "\n\n")

	var buf strings.Builder
	buf.WriteString(errorStyle.Render(message))
	if found {
		buf.WriteString("\n\n")
		for i, line := range strings.Split(hint, "\n") {
			if i > 0 {
				buf.WriteByte('\n')
			}
			buf.WriteString(errContextStyle.Render(line))
		}
	}
	return buf.String()
}

// RenderAll formats multiple errors, separating them with blank lines.
func (r *ErrorRenderer) RenderAll(errs []error) string {
	parts := make([]string, len(errs))
	for i, err := range errs {
		parts[i] = r.Render(err)
	}
	return strings.Join(parts, "\n\n")
}
