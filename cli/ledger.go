package cli

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/robinvdvleuten/moneybook/date"
	"github.com/robinvdvleuten/moneybook/document"
	"github.com/robinvdvleuten/moneybook/ledger"
	"github.com/robinvdvleuten/moneybook/output"
	"github.com/robinvdvleuten/moneybook/oven"
)

type LedgerCmd struct {
	File    string `help:"Moneybook document." arg:"" type:"existingfile"`
	Account string `help:"Account name or number." arg:""`
	From    string `help:"First day shown (YYYY-MM-DD or the configured date format)."`
	To      string `help:"Last day shown (YYYY-MM-DD or the configured date format)."`
	Period  string `help:"Period shown when --from and --to are not set: week, month, year or running." default:"month" enum:"week,month,year,running"`
}

func (cmd *LedgerCmd) Run(ctx *kong.Context, globals *Globals) error {
	s, err := newSession(ctx, globals, "ledger "+filepath.Base(cmd.File))
	if err != nil {
		return err
	}
	defer s.close()

	doc, err := s.open(cmd.File)
	if err != nil {
		return s.fail(err)
	}
	a, err := findAccount(doc, cmd.Account)
	if err != nil {
		return s.fail(err)
	}
	rng, err := resolveRange(s, doc.Today(), cmd.Period, cmd.From, cmd.To)
	if err != nil {
		return s.fail(err)
	}
	doc.SetRange(s.ctx, rng)

	printLedger(s.stdout, s.styles, doc, a.ID)
	return nil
}

// findAccount resolves an account by name, number or "number - name".
func findAccount(doc *document.Document, text string) (*ledger.Account, error) {
	if a := doc.AccountByName(text); a != nil {
		return a, nil
	}
	for _, a := range doc.Accounts() {
		if a.Number != "" && (a.Number == text || strings.EqualFold(a.DisplayName(), text)) {
			return a, nil
		}
	}
	return nil, &ledger.NotFoundError{Kind: ledger.KindAccount, ID: text}
}

// resolveRange picks the explicit --from/--to bounds, falling back to the
// named period around today for missing ones.
func resolveRange(s *session, today date.Date, period, from, to string) (date.Range, error) {
	rng, err := s.cfg.Period(period, today)
	if err != nil {
		return date.Range{}, err
	}
	if from != "" {
		if rng.From, err = parseDate(from, s.cfg.DateFormat, "from"); err != nil {
			return date.Range{}, err
		}
	}
	if to != "" {
		if rng.To, err = parseDate(to, s.cfg.DateFormat, "to"); err != nil {
			return date.Range{}, err
		}
	}
	if rng.To.Before(rng.From) {
		return date.Range{}, &ledger.InvalidInputError{Field: "to", Value: to, Err: fmt.Errorf("before %s", rng.From)}
	}
	return rng, nil
}

func parseDate(text, layout, field string) (date.Date, error) {
	if d, err := date.Parse(text); err == nil {
		return d, nil
	}
	d, err := date.ParseLayout(layout, text)
	if err != nil {
		return date.Date{}, &ledger.InvalidInputError{Field: field, Value: text}
	}
	return d, nil
}

// printLedger writes the entries of an account inside the view range, with
// the running balance after each entry.
func printLedger(w io.Writer, styles *output.Styles, doc *document.Document, accountID string) {
	view := doc.View()
	l := view.Ledger(accountID)
	a := l.Account
	layout := "2006-01-02"

	_, _ = fmt.Fprintf(w, "%s  %s\n", styles.Account(a.DisplayName()), styles.Dim(view.Range.String()))

	tbl := newTable("", "Date", "Description", "Transfer", "Increase", "Decrease", "Balance").alignRight(4, 5, 6)
	tbl.add("", "", "Previous balance", "", "", "", l.Previous.Format(false))

	kinds := []oven.Kind{oven.Real}
	for _, e := range l.Entries {
		kinds = append(kinds, e.Txn.Kind)

		value := e.Split.Amount
		if a.Type.IsCreditNormal() {
			value = value.Neg()
		}
		var increase, decrease string
		switch {
		case e.Foreign:
			increase = value.Format(true)
		case value.Sign() > 0:
			increase = value.Format(false)
		case value.Sign() < 0:
			decrease = value.Abs().Format(false)
		}

		tbl.add(marker(e), e.Txn.Date.Format(layout), e.Txn.Description, transferName(doc, e),
			increase, decrease, e.Balance.Format(false))
	}

	tbl.style = func(row, col int, cell string) string {
		switch {
		case kinds[row] != oven.Real:
			return styles.Dim(cell)
		case col == 6 && strings.HasPrefix(strings.TrimSpace(cell), "-"):
			return styles.Error(cell)
		}
		return cell
	}
	tbl.render(w)

	_, _ = fmt.Fprintf(w, "\n%s %s  %s %s  %s %s\n",
		styles.Keyword("Increase"), l.Increase.Format(false),
		styles.Keyword("Decrease"), l.Decrease.Format(false),
		styles.Keyword("Ending"), styles.Amount(l.Ending, a.Currency))
	if l.MixedCurrencies {
		_, _ = fmt.Fprintln(w, styles.Warning("entries in other currencies are left out of the balance"))
	}
}

// marker flags reconciled entries with R, schedule spawns with S and budget
// spawns with B.
func marker(e *oven.Entry) string {
	switch {
	case e.IsReconciled():
		return "R"
	case e.Txn.Kind == oven.Spawn:
		return "S"
	case e.Txn.Kind == oven.BudgetSpawn:
		return "B"
	}
	return ""
}

// transferName names the other side of an entry: the other account for two
// split transactions, empty for unassigned ones and "Split" otherwise.
func transferName(doc *document.Document, e *oven.Entry) string {
	splits := e.Txn.Splits
	if len(splits) != 2 {
		return "Split"
	}
	other := splits[1-e.SplitIndex]
	if other.IsUnassigned() {
		return ""
	}
	if a := doc.Account(other.AccountID); a != nil {
		return a.DisplayName()
	}
	return ""
}
