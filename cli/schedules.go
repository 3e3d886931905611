package cli

import (
	"fmt"
	"path/filepath"

	"github.com/alecthomas/kong"

	"github.com/robinvdvleuten/moneybook/date"
	"github.com/robinvdvleuten/moneybook/document"
	"github.com/robinvdvleuten/moneybook/ledger"
)

type SchedulesCmd struct {
	File   string `help:"Moneybook document." arg:"" type:"existingfile"`
	Period string `help:"Period to list occurrences for: week, month, year or running." default:"running" enum:"week,month,year,running"`
}

func (cmd *SchedulesCmd) Run(ctx *kong.Context, globals *Globals) error {
	s, err := newSession(ctx, globals, "schedules "+filepath.Base(cmd.File))
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

	printSchedules(s, doc, rng)
	return nil
}

func printSchedules(s *session, doc *document.Document, rng date.Range) {
	name := func(id string) string {
		if a := doc.Account(id); a != nil {
			return a.DisplayName()
		}
		return ""
	}

	schedules := newTable("Description", "Repeat", "Start", "Stop", "Next", "Amount").alignRight(5)
	for _, sc := range doc.Schedules() {
		next := ""
		for _, d := range doc.Occurrences(sc.ID, rng) {
			if !d.Before(doc.Today()) && !sc.IsDeleted(d) {
				next = d.String()
				break
			}
		}
		schedules.add(sc.Template.Description, repeatText(sc.Rule), sc.Rule.Start.String(),
			stopText(sc.Rule), next, sc.Template.Amount().Format(true))
	}

	budgets := newTable("Account", "Target", "Repeat", "Start", "Amount").alignRight(4)
	for _, b := range doc.Budgets() {
		budgets.add(name(b.AccountID), name(b.TargetID), repeatText(b.Rule), b.Rule.Start.String(), b.Amount.Format(true))
	}

	printInfof(s.stdout, "%s", s.styles.Keyword("Schedules"))
	schedules.render(s.stdout)
	_, _ = fmt.Fprintln(s.stdout)
	printInfof(s.stdout, "%s", s.styles.Keyword("Budgets"))
	budgets.render(s.stdout)
}

// repeatText renders a rule as "monthly" or "every 2 weekly".
func repeatText(r ledger.Recurrence) string {
	if r.Every > 1 {
		return fmt.Sprintf("every %d %s", r.Every, r.Type)
	}
	return r.Type.String()
}

func stopText(r ledger.Recurrence) string {
	switch {
	case !r.Stop.IsZero():
		return r.Stop.String()
	case r.Count > 0:
		return fmt.Sprintf("after %d", r.Count)
	}
	return ""
}
