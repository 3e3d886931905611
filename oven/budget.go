package oven

import (
	"github.com/robinvdvleuten/moneybook/date"
	"github.com/robinvdvleuten/moneybook/ledger"
	"github.com/robinvdvleuten/moneybook/rates"
	"github.com/shopspring/decimal"
)

// BudgetDescription is the description of budget spawns.
const BudgetDescription = "Budget"

// BudgetSpawnID returns the id of the spawn of budgetID for the period starting on d.
func BudgetSpawnID(budgetID string, d date.Date) string {
	return "budget:" + ledger.SpawnID(budgetID, d)
}

// spawnBudgets creates one spawn per budget period that ends today or later.
// The spawn holds the planned amount minus what was already spent (or earned)
// in the period, floored at zero, and is dated on the last day of the period.
func spawnBudgets(book *ledger.Book, txns []*Cooked, until date.Date, o options) []*Cooked {
	var out []*Cooked
	for _, b := range book.Budgets() {
		account := book.Account(b.AccountID)
		if account == nil {
			continue
		}
		for start := range b.Rule.Occurrences(until) {
			period := b.Rule.Period(start)
			if period.To.Before(o.today) || period.To.After(until) {
				continue
			}
			remaining := b.Amount.Value.Sub(actual(txns, account, b.Amount.Currency, period, o))
			if remaining.Sign() <= 0 {
				continue
			}
			out = append(out, budgetSpawn(b, account, start, period, remaining))
		}
	}
	return out
}

// actual sums the postings to account within period, in the budget currency,
// signed so that spending on an expense and earning on an income are positive.
func actual(txns []*Cooked, account *ledger.Account, currency string, period date.Range, o options) decimal.Decimal {
	total := decimal.Zero
	for _, t := range txns {
		if !period.Contains(t.Date) {
			continue
		}
		for _, s := range t.Splits {
			if s.AccountID != account.ID || s.Amount.IsZero() {
				continue
			}
			value, ok := convert(s.Amount, currency, t.Date, o.rates)
			if !ok {
				continue
			}
			total = total.Add(value)
		}
	}
	if account.Type.IsCreditNormal() {
		return total.Neg()
	}
	return total
}

func budgetSpawn(b *ledger.Budget, account *ledger.Account, start date.Date, period date.Range, remaining decimal.Decimal) *Cooked {
	value := remaining
	if account.Type.IsCreditNormal() {
		value = value.Neg()
	}
	amount := ledger.NewAmount(value, b.Amount.Currency)
	t := &ledger.Transaction{
		ID:             BudgetSpawnID(b.ID, start),
		Date:           period.To,
		Description:    BudgetDescription,
		Notes:          b.Notes,
		RecurrenceDate: start,
		Splits: []ledger.Split{
			{AccountID: b.AccountID, Amount: amount},
			{AccountID: b.TargetID, Amount: amount.Neg()},
		},
	}
	return &Cooked{Transaction: t, Kind: BudgetSpawn, BudgetID: b.ID, Index: -1}
}

// convert expresses a in currency. The second result is false when a is in
// another currency and no rate is available, in which case zero is returned.
func convert(a ledger.Amount, currency string, on date.Date, src rates.Source) (decimal.Decimal, bool) {
	if a.IsZero() || a.Currency == currency || a.Currency == "" {
		return a.Value, true
	}
	if src == nil {
		return decimal.Zero, false
	}
	rate, err := src.Rate(a.Currency, currency, on)
	if err != nil {
		return decimal.Zero, false
	}
	return a.Convert(currency, rate).Value, true
}
