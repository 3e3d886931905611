package ledger

// Budget plans an amount per period for an income or expense account. Budgets
// never post to accounts; the oven turns them into virtual spawns holding what
// remains of the planned amount.
type Budget struct {
	ID        string
	AccountID string
	// TargetID is the balance sheet account the spawns are shown against. Empty
	// means the spawns only appear in the budgeted account.
	TargetID string
	Amount   Amount
	Rule     Recurrence
	Notes    string
}

// NewBudget returns a budget with a fresh id.
func NewBudget(accountID string, amount Amount, rule Recurrence) *Budget {
	return &Budget{ID: NewID(), AccountID: accountID, Amount: amount, Rule: rule}
}

func (b *Budget) EntityID() string { return b.ID }

// Clone returns a copy of the budget.
func (b *Budget) Clone() *Budget {
	c := *b
	return &c
}

// Equal reports whether both budgets hold the same state.
func (b *Budget) Equal(o *Budget) bool {
	return b.ID == o.ID &&
		b.AccountID == o.AccountID &&
		b.TargetID == o.TargetID &&
		b.Amount.Equal(o.Amount) &&
		b.Rule == o.Rule &&
		b.Notes == o.Notes
}
