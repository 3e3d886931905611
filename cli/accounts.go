package cli

import (
	"path/filepath"

	"github.com/alecthomas/kong"

	"github.com/robinvdvleuten/moneybook/document"
	"github.com/robinvdvleuten/moneybook/ledger"
)

type AccountsCmd struct {
	File   string `help:"Moneybook document." arg:"" type:"existingfile"`
	Period string `help:"Period the balances cover: week, month, year or running." default:"month" enum:"week,month,year,running"`
}

func (cmd *AccountsCmd) Run(ctx *kong.Context, globals *Globals) error {
	s, err := newSession(ctx, globals, "accounts "+filepath.Base(cmd.File))
	if err != nil {
		return err
	}
	defer s.close()

	doc, err := s.open(cmd.File)
	if err != nil {
		return s.fail(err)
	}
	rng, err := s.cfg.Period(cmd.Period, doc.Today())
	if err != nil {
		return s.fail(err)
	}
	doc.SetRange(s.ctx, rng)

	printAccounts(s, doc)
	return nil
}

// printAccounts lists every account by type, with its balance at the end of
// the view range and its change over the range.
func printAccounts(s *session, doc *document.Document) {
	groups := make(map[string]string)
	for _, g := range doc.Groups() {
		groups[g.ID] = g.Name
	}

	tbl := newTable("Type", "Group", "Account", "Balance", "Change").alignRight(3, 4)
	var accounts []*ledger.Account
	for _, typ := range []ledger.AccountType{ledger.Asset, ledger.Liability, ledger.Income, ledger.Expense} {
		for _, a := range doc.Accounts() {
			if a.Type != typ {
				continue
			}
			accounts = append(accounts, a)
			l := doc.View().Ledger(a.ID)
			tbl.add(typ.String(), groups[a.GroupID], a.DisplayName(),
				l.Ending.Format(a.Currency != doc.DefaultCurrency()),
				l.Delta.Format(false))
		}
	}
	tbl.style = func(row, col int, cell string) string {
		switch col {
		case 2:
			return s.styles.Account(cell)
		case 3, 4:
			l := doc.View().Ledger(accounts[row].ID)
			amount := l.Ending
			if col == 4 {
				amount = l.Delta
			}
			if amount.Sign() < 0 {
				return s.styles.Error(cell)
			}
		}
		return cell
	}

	printInfof(s.stdout, "%s", doc.Range())
	tbl.render(s.stdout)
}
