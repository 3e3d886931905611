package ledger

import (
	"slices"

	"github.com/robinvdvleuten/moneybook/date"
	"github.com/robinvdvleuten/moneybook/rates"
	"github.com/shopspring/decimal"
)

// Split is one leg of a transaction. An empty AccountID means the split is
// unassigned: it still carries an amount but posts to no account.
type Split struct {
	AccountID          string
	Amount             Amount
	Memo               string
	ReconciliationDate date.Date
}

// IsUnassigned reports whether the split posts to no account.
func (s Split) IsUnassigned() bool { return s.AccountID == "" }

// IsReconciled reports whether the split carries a reconciliation date.
func (s Split) IsReconciled() bool { return !s.ReconciliationDate.IsZero() }

// Equal reports whether both splits hold the same state.
func (s Split) Equal(o Split) bool {
	return s.AccountID == o.AccountID &&
		s.Amount.Equal(o.Amount) &&
		s.Memo == o.Memo &&
		s.ReconciliationDate == o.ReconciliationDate
}

// Transaction is a dated, balanced set of splits.
type Transaction struct {
	ID          string
	Date        date.Date
	Description string
	Payee       string
	CheckNumber string
	Notes       string

	// Position orders transactions that share a date.
	Position int

	Splits []Split

	// ScheduleID and RecurrenceDate are set on spawns and on overrides of a
	// schedule occurrence.
	ScheduleID     string
	RecurrenceDate date.Date
}

// NewTransaction returns an empty transaction with a fresh id and two unassigned splits.
func NewTransaction(on date.Date) *Transaction {
	return &Transaction{ID: NewID(), Date: on, Splits: make([]Split, 2)}
}

func (t *Transaction) EntityID() string { return t.ID }

// Clone returns a deep copy of the transaction.
func (t *Transaction) Clone() *Transaction {
	c := *t
	c.Splits = slices.Clone(t.Splits)
	return &c
}

// Equal reports whether both transactions hold the same state.
func (t *Transaction) Equal(o *Transaction) bool {
	if t == nil || o == nil {
		return t == o
	}
	return t.ID == o.ID &&
		t.Date == o.Date &&
		t.Description == o.Description &&
		t.Payee == o.Payee &&
		t.CheckNumber == o.CheckNumber &&
		t.Notes == o.Notes &&
		t.Position == o.Position &&
		t.ScheduleID == o.ScheduleID &&
		t.RecurrenceDate == o.RecurrenceDate &&
		slices.EqualFunc(t.Splits, o.Splits, Split.Equal)
}

// IsSpawn reports whether the transaction belongs to a schedule occurrence.
func (t *Transaction) IsSpawn() bool { return t.ScheduleID != "" }

// Affects reports whether a split of the transaction posts to accountID.
func (t *Transaction) Affects(accountID string) bool {
	return slices.ContainsFunc(t.Splits, func(s Split) bool { return s.AccountID == accountID })
}

// AccountIDs returns the distinct accounts the transaction posts to, in split order.
func (t *Transaction) AccountIDs() []string {
	var ids []string
	for _, s := range t.Splits {
		if s.AccountID != "" && !slices.Contains(ids, s.AccountID) {
			ids = append(ids, s.AccountID)
		}
	}
	return ids
}

// IsFullyUnassigned reports whether no split posts to an account.
func (t *Transaction) IsFullyUnassigned() bool {
	return !slices.ContainsFunc(t.Splits, func(s Split) bool { return !s.IsUnassigned() })
}

// Amount returns the sum of the positive split amounts in the first currency used.
func (t *Transaction) Amount() Amount {
	var total Amount
	for _, s := range t.Splits {
		if s.Amount.Sign() <= 0 {
			continue
		}
		if next, err := total.Add(s.Amount); err == nil {
			total = next
		}
	}
	return total
}

// ReassignAccount moves the splits posting to from onto to. An empty to unassigns them.
func (t *Transaction) ReassignAccount(from, to string) bool {
	changed := false
	for i := range t.Splits {
		if t.Splits[i].AccountID == from {
			t.Splits[i].AccountID = to
			changed = true
		}
	}
	return changed
}

// SetSplits replaces the splits and balances the transaction.
//
// A transaction always keeps at least two splits. When the splits don't sum to
// zero, the difference is absorbed by the single unassigned split, which is
// created if missing. With several unassigned splits the imbalance is ambiguous
// and an ImbalancedError is returned, leaving the transaction untouched.
//
// Splits in other currencies are converted with src on the transaction date.
// Without src, or without a known rate, a multi-currency transaction is accepted
// as is.
func (t *Transaction) SetSplits(splits []Split, src rates.Source) error {
	balanced := slices.Clone(splits)
	for len(balanced) < 2 {
		balanced = append(balanced, Split{})
	}

	imbalance, ok := imbalanceOf(balanced, t.Date, src)
	if ok && !imbalance.IsZero() {
		var unassigned []int
		for i, s := range balanced {
			if s.IsUnassigned() {
				unassigned = append(unassigned, i)
			}
		}
		switch len(unassigned) {
		case 0:
			balanced = append(balanced, Split{Amount: imbalance.Neg()})
		case 1:
			i := unassigned[0]
			current := inCurrency(balanced[i].Amount, imbalance.Currency, t.Date, src)
			balanced[i].Amount = NewAmount(current.Value.Sub(imbalance.Value), imbalance.Currency)
		default:
			return &ImbalancedError{Date: t.Date, Imbalance: imbalance, Unassigned: len(unassigned)}
		}
	}

	t.Splits = balanced
	return nil
}

// Imbalance returns the amount by which the splits don't sum to zero, in the
// currency of the first non-zero split. The second result is false when the
// imbalance can't be determined because of missing rates.
func (t *Transaction) Imbalance(src rates.Source) (Amount, bool) {
	return imbalanceOf(t.Splits, t.Date, src)
}

func imbalanceOf(splits []Split, on date.Date, src rates.Source) (Amount, bool) {
	sums := getBalanceMap()
	defer putBalanceMap(sums)

	var order []string
	for _, s := range splits {
		if s.Amount.IsZero() {
			continue
		}
		if _, ok := sums[s.Amount.Currency]; !ok {
			order = append(order, s.Amount.Currency)
		}
		sums[s.Amount.Currency] = sums[s.Amount.Currency].Add(s.Amount.Value)
	}

	switch len(order) {
	case 0:
		return Amount{}, true
	case 1:
		return NewAmount(sums[order[0]], order[0]), true
	}

	if src == nil {
		return Amount{}, false
	}
	ref := order[0]
	total := sums[ref]
	for _, cur := range order[1:] {
		rate, err := src.Rate(cur, ref, on)
		if err != nil {
			return Amount{}, false
		}
		total = total.Add(sums[cur].Mul(rate))
	}
	if AmountEqual(total, decimal.Zero, ToleranceFor(ref)) {
		return Zero(ref), true
	}
	return NewAmount(total, ref).Round(), true
}

// inCurrency converts a to currency when possible. Zero and unconvertible
// amounts are returned as zero in currency.
func inCurrency(a Amount, currency string, on date.Date, src rates.Source) Amount {
	switch {
	case a.IsZero():
		return Zero(currency)
	case a.Currency == currency:
		return a
	case src == nil:
		return Zero(currency)
	}
	rate, err := src.Rate(a.Currency, currency, on)
	if err != nil {
		return Zero(currency)
	}
	return a.Convert(currency, rate)
}

// Unreconcile clears reconciliation dates that an edit from before to t made
// stale. A split loses its date when its account or amount changed, or when the
// transaction moved to a date before the reconciliation date. Other splits keep
// theirs. Splits are matched by position.
func (t *Transaction) Unreconcile(before *Transaction) {
	for i := range t.Splits {
		s := &t.Splits[i]
		if !s.IsReconciled() {
			continue
		}
		if t.Date != before.Date && t.Date.Before(s.ReconciliationDate) {
			s.ReconciliationDate = date.Date{}
			continue
		}
		if i < len(before.Splits) {
			old := before.Splits[i]
			if old.AccountID != s.AccountID || !old.Amount.Equal(s.Amount) {
				s.ReconciliationDate = date.Date{}
			}
		}
	}
}

// ClearReconciliation removes every reconciliation date.
func (t *Transaction) ClearReconciliation() {
	for i := range t.Splits {
		t.Splits[i].ReconciliationDate = date.Date{}
	}
}
