package cli

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/alecthomas/kong"

	"github.com/robinvdvleuten/moneybook/document"
	"github.com/robinvdvleuten/moneybook/web"
)

type WebCmd struct {
	File     string `help:"Moneybook document to serve." arg:""`
	Port     int    `help:"Port to listen on." default:"8080"`
	Create   bool   `help:"Automatically create file if it doesn't exist (no confirmation prompt)." short:"c"`
	ReadOnly bool   `help:"Enable read-only mode (no write operations allowed)." short:"r"`
	NoWatch  bool   `help:"Do not reload the document when the file changes."`
}

func (cmd *WebCmd) Run(ctx *kong.Context, globals *Globals) error {
	s, err := newSession(ctx, globals, "web "+filepath.Base(cmd.File))
	if err != nil {
		return err
	}
	defer s.close()

	path, err := filepath.Abs(cmd.File)
	if err != nil {
		return fmt.Errorf("failed to resolve absolute path: %w", err)
	}

	opts, err := s.documentOptions()
	if err != nil {
		return s.fail(err)
	}

	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to access file: %w", err)
		}

		shouldCreate := cmd.Create
		if !shouldCreate {
			confirmed, err := promptYesNo(fmt.Sprintf("File %q does not exist. Create it?", path))
			if err != nil {
				return fmt.Errorf("failed to read confirmation: %w", err)
			}
			shouldCreate = confirmed
		}
		if !shouldCreate {
			return fmt.Errorf("file does not exist: %s", path)
		}

		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return fmt.Errorf("failed to create parent directory: %w", err)
		}
		if err := document.New(s.ctx, opts...).SaveToXML(s.ctx, path); err != nil {
			return s.fail(err)
		}
		printInfof(s.stdout, "Created empty document: %s", pathStyle.Render(path))
	}

	version := Version
	if version == "" {
		version = "dev"
	}
	commitSHA := CommitSHA
	if commitSHA == "" {
		commitSHA = "local"
	}

	server := web.NewWithVersion(cmd.Port, path, version, commitSHA, opts...)
	server.ReadOnly = cmd.ReadOnly
	server.WatchEnabled = !cmd.NoWatch
	server.Logger = s.logger

	printInfof(s.stdout, "Starting server on %s:%d", server.Host, cmd.Port)
	printInfof(s.stdout, "Serving document: %s", pathStyle.Render(path))
	if cmd.ReadOnly {
		printInfof(s.stdout, "Server running in READ-ONLY mode")
	}

	runCtx, stop := signal.NotifyContext(s.ctx, os.Interrupt)
	defer stop()

	return server.Start(runCtx)
}
