// Package cli implements the moneybook command-line interface.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/robinvdvleuten/moneybook/config"
	"github.com/robinvdvleuten/moneybook/document"
	"github.com/robinvdvleuten/moneybook/logger"
	"github.com/robinvdvleuten/moneybook/output"
	"github.com/robinvdvleuten/moneybook/rates"
	"github.com/robinvdvleuten/moneybook/telemetry"
)

var (
	successSymbol = "✓"
	errorSymbol   = "✗"
	infoSymbol    = "→"

	successStyle = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#00D787", Dark: "#00D787"})
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#FF5F87", Dark: "#FF5F87"})
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#5FAFFF", Dark: "#5FAFFF"})
	pathStyle    = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#00D7D7", Dark: "#00D7D7"})
)

func printSuccess(w io.Writer, message string) {
	_, _ = fmt.Fprintf(w, "%s %s\n",
		successStyle.Render(successSymbol),
		message,
	)
}

func printError(w io.Writer, message string) {
	_, _ = fmt.Fprintf(w, "%s %s\n",
		errorStyle.Render(errorSymbol),
		errorStyle.Render(message),
	)
}

func printInfof(w io.Writer, format string, args ...interface{}) {
	formatted := fmt.Sprintf(format, args...)
	_, _ = fmt.Fprintf(w, "%s %s\n",
		infoStyle.Render(infoSymbol),
		formatted,
	)
}

// promptYesNo prompts the user with a yes/no question.
// Returns false by default if stdin is not a terminal.
func promptYesNo(question string) (bool, error) {
	if !isTerminal() {
		return false, nil
	}

	var confirm bool

	form := huh.NewConfirm().
		Title(question).
		WithButtonAlignment(lipgloss.Left).
		Value(&confirm)

	if err := form.Run(); err != nil {
		return false, fmt.Errorf("failed to read response: %w", err)
	}

	return confirm, nil
}

func isTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// session holds what every command needs: preferences, a logger and the
// telemetry collector when --telemetry is set.
type session struct {
	ctx    context.Context
	cfg    *config.Config
	logger *zap.Logger
	stdout io.Writer
	stderr io.Writer
	styles *output.Styles

	collector telemetry.Collector
	root      telemetry.Timer
}

func newSession(kctx *kong.Context, globals *Globals, operation string) (*session, error) {
	cfg, err := config.Load(globals.Config)
	if err != nil {
		return nil, err
	}

	s := &session{
		ctx:    context.Background(),
		cfg:    cfg,
		logger: logger.Nop(),
		stdout: kctx.Stdout,
		stderr: kctx.Stderr,
		styles: output.NewStyles(kctx.Stdout),
	}
	if globals.Verbose {
		s.logger = logger.New(cfg.LogEnv)
	}
	if globals.Telemetry {
		s.collector = telemetry.NewTimingCollector()
		s.ctx = telemetry.WithCollector(s.ctx, s.collector)
		s.root = s.collector.Start(operation)
	}
	return s, nil
}

// close ends the root timer, prints the telemetry report and flushes the logger.
func (s *session) close() {
	if s.collector != nil {
		s.root.End()
		_, _ = fmt.Fprintln(s.stderr)
		s.collector.Report(s.stderr, output.NewStyles(s.stderr))
	}
	_ = s.logger.Sync()
}

func (s *session) documentOptions() ([]document.Option, error) {
	opts := append(s.cfg.DocumentOptions(), document.WithLogger(s.logger))
	if s.cfg.RatesFile != "" {
		table, err := rates.LoadFile(s.cfg.RatesFile)
		if err != nil {
			return nil, err
		}
		opts = append(opts, document.WithRates(table))
	}
	return opts, nil
}

// open loads the document at path.
func (s *session) open(path string) (*document.Document, error) {
	opts, err := s.documentOptions()
	if err != nil {
		return nil, err
	}
	doc := document.New(s.ctx, opts...)
	if err := doc.LoadFromXML(s.ctx, path); err != nil {
		return nil, err
	}
	return doc, nil
}

// fail prints err and returns the error main turns into exit code 1.
func (s *session) fail(err error) error {
	renderer := NewErrorRenderer(s.cfg.DateFormat)
	_, _ = fmt.Fprintln(s.stderr, renderer.Render(err))
	return NewCommandError(1)
}
