package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/alecthomas/kong"

	"github.com/robinvdvleuten/moneybook/document"
	"github.com/robinvdvleuten/moneybook/ledger"
)

type InitCmd struct {
	File     string   `help:"Document to create." arg:""`
	Force    bool     `help:"Overwrite an existing file without asking." short:"f"`
	Checking []string `help:"Asset accounts to start with." placeholder:"NAME"`
}

func (cmd *InitCmd) Run(ctx *kong.Context, globals *Globals) error {
	s, err := newSession(ctx, globals, "init "+filepath.Base(cmd.File))
	if err != nil {
		return err
	}
	defer s.close()

	path, err := filepath.Abs(cmd.File)
	if err != nil {
		return fmt.Errorf("failed to resolve absolute path: %w", err)
	}

	if _, err := os.Stat(path); err == nil && !cmd.Force {
		confirmed, err := promptYesNo(fmt.Sprintf("File %q already exists. Overwrite it?", path))
		if err != nil {
			return err
		}
		if !confirmed {
			return fmt.Errorf("file already exists: %s", path)
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create parent directory: %w", err)
	}

	opts, err := s.documentOptions()
	if err != nil {
		return s.fail(err)
	}
	doc := document.New(s.ctx, opts...)
	for _, name := range cmd.Checking {
		if err := doc.AddAccount(s.ctx, ledger.NewAccount(name, ledger.Asset, doc.DefaultCurrency())); err != nil {
			return s.fail(err)
		}
	}
	if err := doc.SaveToXML(s.ctx, path); err != nil {
		return s.fail(err)
	}

	printSuccess(s.stdout, fmt.Sprintf("Created %s", pathStyle.Render(path)))
	return nil
}
