package cli

import (
	"fmt"
	"path/filepath"

	"github.com/alecthomas/kong"
	"github.com/alecthomas/repr"

	"github.com/robinvdvleuten/moneybook/ledger"
)

// DoctorCmd provides doctor utilities for debugging moneybook documents.
type DoctorCmd struct {
	Dump DumpCmd `cmd:"" help:"Dump the entity graph of a document."`
}

// DumpCmd prints the loaded entities, or the cooked view with --cooked.
type DumpCmd struct {
	File   string `help:"Moneybook document." arg:"" type:"existingfile"`
	Cooked bool   `help:"Dump the cooked view of the current month instead of the stored entities."`
}

type entities struct {
	Groups       []*ledger.Group
	Accounts     []*ledger.Account
	Transactions []*ledger.Transaction
	Schedules    []*ledger.Schedule
	Budgets      []*ledger.Budget
}

// Run executes the dump command.
func (cmd *DumpCmd) Run(ctx *kong.Context, globals *Globals) error {
	s, err := newSession(ctx, globals, "dump "+filepath.Base(cmd.File))
	if err != nil {
		return err
	}
	defer s.close()

	doc, err := s.open(cmd.File)
	if err != nil {
		return s.fail(err)
	}

	var v any = entities{
		Groups:       doc.Groups(),
		Accounts:     doc.Accounts(),
		Transactions: doc.Transactions(),
		Schedules:    doc.Schedules(),
		Budgets:      doc.Budgets(),
	}
	if cmd.Cooked {
		v = doc.View().Transactions
	}
	_, _ = fmt.Fprintln(s.stdout, repr.String(v, repr.Indent("  ")))
	return nil
}
