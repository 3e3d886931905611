// Package oven derives everything the book doesn't store: schedule and budget
// spawns, running balances, previous balances and footer totals for a date range.
//
// Cooking is a pure function of the book, the range and today's date. The
// returned View shares nothing with the book, so it can be read while the book
// keeps changing.
package oven

import (
	"context"
	"strings"

	"github.com/robinvdvleuten/moneybook/date"
	"github.com/robinvdvleuten/moneybook/ledger"
	"github.com/robinvdvleuten/moneybook/rates"
	"github.com/robinvdvleuten/moneybook/telemetry"
	"golang.org/x/exp/slices"
)

// Kind tells where a cooked transaction comes from.
type Kind int

const (
	// Real transactions are stored in the book.
	Real Kind = iota
	// Spawn transactions are occurrences of a schedule.
	Spawn
	// BudgetSpawn transactions hold what remains of a budget period.
	BudgetSpawn
)

func (k Kind) String() string {
	switch k {
	case Spawn:
		return "spawn"
	case BudgetSpawn:
		return "budget"
	default:
		return "real"
	}
}

// Cooked is a transaction as it appears in the view.
type Cooked struct {
	*ledger.Transaction
	Kind Kind
	// Materialized is set on schedule spawns that have an override exception.
	Materialized bool
	// BudgetID is set on budget spawns.
	BudgetID string
	// Index is the position of real transactions in the book, -1 otherwise.
	Index int
}

type options struct {
	today date.Date
	rates rates.Source
}

// Option configures a cook pass.
type Option func(*options)

// WithToday sets the date budgets are evaluated against. Defaults to date.Today.
func WithToday(d date.Date) Option { return func(o *options) { o.today = d } }

// WithRates sets the source used to convert foreign spending into budget currencies.
func WithRates(src rates.Source) Option { return func(o *options) { o.rates = src } }

// Cook derives the view of book for rng.
func Cook(ctx context.Context, book *ledger.Book, rng date.Range, opts ...Option) *View {
	o := options{today: date.Today()}
	for _, opt := range opts {
		opt(&o)
	}

	collector := telemetry.FromContext(ctx)
	timer := collector.Start("cook " + rng.String())
	defer timer.End()

	spawnTimer := timer.Child("spawn schedules")
	txns := collect(book, rng.To)
	spawnTimer.Count(len(book.Schedules()), "schedules")
	spawnTimer.Count(countKind(txns, Spawn), "spawns")
	spawnTimer.End()

	budgetTimer := timer.Child("spawn budgets")
	budgeted := spawnBudgets(book, txns, rng.To, o)
	txns = append(txns, budgeted...)
	budgetTimer.Count(len(budgeted), "budget spawns")
	budgetTimer.End()

	sortCooked(txns)

	balanceTimer := timer.Child("balances")
	v := newView(rng, o.today)
	v.fill(book, txns)
	balanceTimer.Count(len(v.order), "accounts")
	balanceTimer.Count(v.entries(), "entries")
	balanceTimer.End()

	timer.Count(len(v.Transactions), "transactions in range")
	return v
}

func countKind(txns []*Cooked, kind Kind) int {
	n := 0
	for _, t := range txns {
		if t.Kind == kind {
			n++
		}
	}
	return n
}

// collect returns the real transactions and schedule spawns dated on or before until.
func collect(book *ledger.Book, until date.Date) []*Cooked {
	var out []*Cooked
	for i, t := range book.Transactions() {
		if t.Date.After(until) {
			continue
		}
		out = append(out, &Cooked{Transaction: t.Clone(), Kind: Real, Index: i})
	}
	for _, s := range book.Schedules() {
		for _, t := range s.Spawns(until) {
			out = append(out, &Cooked{
				Transaction:  t,
				Kind:         Spawn,
				Materialized: s.IsMaterialized(t.RecurrenceDate),
				Index:        -1,
			})
		}
	}
	return out
}

// sortCooked orders by date, then position, then real before spawned, then book
// order, then id.
func sortCooked(txns []*Cooked) {
	slices.SortStableFunc(txns, func(a, b *Cooked) int {
		if c := a.Date.Compare(b.Date); c != 0 {
			return c
		}
		if a.Position != b.Position {
			return a.Position - b.Position
		}
		if a.Kind != b.Kind {
			return int(a.Kind) - int(b.Kind)
		}
		if a.Index != b.Index {
			return a.Index - b.Index
		}
		return strings.Compare(a.ID, b.ID)
	})
}
