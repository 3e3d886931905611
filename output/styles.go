// Package output provides styling helpers for terminal output.
package output

import (
	"fmt"
	"io"
	"time"

	"github.com/muesli/termenv"
	"github.com/robinvdvleuten/moneybook/ledger"
)

// SlowOperation is the duration from which timings are highlighted.
const SlowOperation = 100 * time.Millisecond

// Styles provides styled output helpers for the CLI.
type Styles struct {
	output *termenv.Output
}

// NewStyles creates a new Styles instance for the given writer. Colors are
// only used when the writer supports them.
func NewStyles(w io.Writer) *Styles {
	return &Styles{
		output: termenv.NewOutput(w),
	}
}

// NewPlainStyles returns styles that never emit escape sequences.
func NewPlainStyles(w io.Writer) *Styles {
	return &Styles{
		output: termenv.NewOutput(w, termenv.WithProfile(termenv.Ascii)),
	}
}

func (s *Styles) color(text, color string) termenv.Style {
	return s.output.String(text).Foreground(s.output.Color(color))
}

// Success returns a styled success string (green + bold).
func (s *Styles) Success(text string) string {
	return s.color(text, "2").Bold().String()
}

// Error returns a styled error string (red + bold).
func (s *Styles) Error(text string) string {
	return s.color(text, "1").Bold().String()
}

// Warning returns a styled warning (yellow + bold).
func (s *Styles) Warning(text string) string {
	return s.color(text, "3").Bold().String()
}

// FilePath returns a styled file path (cyan).
func (s *Styles) FilePath(text string) string {
	return s.color(text, "6").String()
}

// Account returns a styled account name (yellow).
func (s *Styles) Account(text string) string {
	return s.color(text, "3").String()
}

// Amount styles an amount, negative amounts in red. Amounts in another
// currency than display are shown with their currency code.
func (s *Styles) Amount(a ledger.Amount, display string) string {
	text := a.Format(a.Currency != display)
	if a.Sign() < 0 {
		return s.color(text, "1").String()
	}
	return s.color(text, "5").String()
}

// Keyword returns a styled keyword (bold).
func (s *Styles) Keyword(text string) string {
	return s.output.String(text).Bold().String()
}

// Dim returns dimmed text (for secondary information).
func (s *Styles) Dim(text string) string {
	return s.output.String(text).Faint().String()
}

// Timing formats a duration, in milliseconds below a second. Slow operations
// are highlighted.
func (s *Styles) Timing(d time.Duration) string {
	text := FormatDuration(d)
	if d >= SlowOperation {
		return s.Warning(text)
	}
	return s.Dim(text)
}

// FormatDuration formats a duration as "12ms" or "1.25s".
func FormatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%.0fms", float64(d)/float64(time.Millisecond))
	}
	return fmt.Sprintf("%.2fs", float64(d)/float64(time.Second))
}

// Output returns the underlying termenv Output for advanced usage.
func (s *Styles) Output() *termenv.Output {
	return s.output
}
