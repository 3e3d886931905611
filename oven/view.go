package oven

import (
	"github.com/robinvdvleuten/moneybook/date"
	"github.com/robinvdvleuten/moneybook/ledger"
	"github.com/shopspring/decimal"
)

// Entry is one split of a cooked transaction as seen from its account.
type Entry struct {
	Txn        *Cooked
	SplitIndex int
	Split      ledger.Split

	// Balance is the running balance after this entry. It only aggregates
	// amounts in the account currency. Credit normal accounts (liabilities,
	// income) are shown positive.
	Balance ledger.Amount
	// ReconciledBalance only counts reconciled entries.
	ReconciledBalance ledger.Amount

	// Foreign is set when the split is in another currency than the account.
	Foreign bool
}

// IsReconciled reports whether the split carries a reconciliation date.
func (e *Entry) IsReconciled() bool { return e.Split.IsReconciled() }

// AccountLedger is the cooked state of one account for the view range.
type AccountLedger struct {
	Account *ledger.Account

	// Previous is the balance carried into the range.
	Previous ledger.Amount
	Entries  []*Entry
	Ending   ledger.Amount

	Increase ledger.Amount
	Decrease ledger.Amount
	Delta    ledger.Amount

	// MixedCurrencies is set when entries in other currencies were left out
	// of the balances. Amounts of such ledgers are shown with their currency.
	MixedCurrencies bool
}

// CanReconcile reports whether an entry of this account may be reconciled.
// Only balance sheet entries in the account currency are, and never budget spawns.
func (l *AccountLedger) CanReconcile(e *Entry) bool {
	return l.Account.Type.IsBalanceSheet() && e.Txn.Kind != BudgetSpawn && !e.Foreign
}

// Find returns the entry of transaction id, or nil.
func (l *AccountLedger) Find(id string) *Entry {
	for _, e := range l.Entries {
		if e.Txn.ID == id {
			return e
		}
	}
	return nil
}

// View is the result of a cook pass.
type View struct {
	Range date.Range
	Today date.Date

	// Transactions holds every cooked transaction dated inside the range, sorted.
	Transactions []*Cooked

	ledgers map[string]*AccountLedger
	order   []string
	byID    map[string]*Cooked
}

func newView(rng date.Range, today date.Date) *View {
	return &View{
		Range:   rng,
		Today:   today,
		ledgers: make(map[string]*AccountLedger),
		byID:    make(map[string]*Cooked),
	}
}

// Ledger returns the cooked state of an account, or nil for unknown ids.
func (v *View) Ledger(accountID string) *AccountLedger { return v.ledgers[accountID] }

// Ledgers returns every account ledger in book order.
func (v *View) Ledgers() []*AccountLedger {
	out := make([]*AccountLedger, len(v.order))
	for i, id := range v.order {
		out[i] = v.ledgers[id]
	}
	return out
}

// Transaction returns the cooked transaction with id, including spawns outside the range.
func (v *View) Transaction(id string) *Cooked { return v.byID[id] }

// Spawns returns the schedule spawns inside the range.
func (v *View) Spawns() []*Cooked {
	var out []*Cooked
	for _, t := range v.Transactions {
		if t.Kind == Spawn {
			out = append(out, t)
		}
	}
	return out
}

// entries counts the ledger lines of every account.
func (v *View) entries() int {
	n := 0
	for _, l := range v.ledgers {
		n += len(l.Entries)
	}
	return n
}

func (v *View) fill(book *ledger.Book, txns []*Cooked) {
	for _, a := range book.Accounts() {
		v.order = append(v.order, a.ID)
		v.ledgers[a.ID] = &AccountLedger{
			Account:  a.Clone(),
			Previous: ledger.Zero(a.Currency),
			Ending:   ledger.Zero(a.Currency),
			Increase: ledger.Zero(a.Currency),
			Decrease: ledger.Zero(a.Currency),
			Delta:    ledger.Zero(a.Currency),
		}
	}

	balances := make(map[string]decimal.Decimal, len(v.ledgers))
	reconciled := make(map[string]decimal.Decimal, len(v.ledgers))

	for _, t := range txns {
		v.byID[t.ID] = t
		inRange := !t.Date.Before(v.Range.From)
		if inRange {
			v.Transactions = append(v.Transactions, t)
		}

		for i, s := range t.Splits {
			l := v.ledgers[s.AccountID]
			if l == nil {
				continue
			}
			cur := l.Account.Currency
			foreign := !s.Amount.IsZero() && s.Amount.Currency != cur && s.Amount.Currency != ""
			value := s.Amount.Value
			if foreign {
				l.MixedCurrencies = true
				value = decimal.Zero
			}
			if l.Account.Type.IsCreditNormal() {
				value = value.Neg()
			}

			balances[s.AccountID] = balances[s.AccountID].Add(value)
			if s.IsReconciled() {
				reconciled[s.AccountID] = reconciled[s.AccountID].Add(value)
			}

			if !inRange {
				l.Previous = ledger.NewAmount(balances[s.AccountID], cur)
				continue
			}
			switch value.Sign() {
			case 1:
				l.Increase = ledger.NewAmount(l.Increase.Value.Add(value), cur)
			case -1:
				l.Decrease = ledger.NewAmount(l.Decrease.Value.Sub(value), cur)
			}
			l.Entries = append(l.Entries, &Entry{
				Txn:               t,
				SplitIndex:        i,
				Split:             s,
				Balance:           ledger.NewAmount(balances[s.AccountID], cur),
				ReconciledBalance: ledger.NewAmount(reconciled[s.AccountID], cur),
				Foreign:           foreign,
			})
		}
	}

	for id, l := range v.ledgers {
		l.Ending = ledger.NewAmount(balances[id], l.Account.Currency)
		l.Delta = ledger.NewAmount(l.Increase.Value.Sub(l.Decrease.Value), l.Account.Currency)
	}
}
