package document

import (
	"context"
	"strings"

	"github.com/robinvdvleuten/moneybook/ledger"
)

// AddAccount adds a new account. A blank currency uses the default currency.
func (d *Document) AddAccount(ctx context.Context, a *ledger.Account) error {
	a = a.Clone()
	if a.ID == "" {
		a.ID = ledger.NewID()
	}
	if a.Currency == "" {
		a.Currency = d.defaultCurrency
	}
	return d.record(ctx, DescAddAccount, nil, func() error {
		return d.book.AddAccount(a)
	})
}

// ChangeAccount replaces an account: rename, renumber, change type or currency,
// move in or out of a group. An account whose type changes leaves a group of the
// old type.
func (d *Document) ChangeAccount(ctx context.Context, a *ledger.Account) error {
	old := d.book.Account(a.ID)
	if old == nil {
		return &ledger.NotFoundError{Kind: ledger.KindAccount, ID: a.ID}
	}
	a = a.Clone()
	if a.Type != old.Type && a.GroupID == old.GroupID {
		a.GroupID = ""
	}
	return d.record(ctx, DescChangeAccount, nil, func() error {
		return d.book.UpdateAccount(a)
	})
}

// Removal selects what happens to the postings of a deleted account.
type Removal int

const (
	// Unbind turns the splits of the account into unassigned splits.
	Unbind Removal = iota
	// Reassign moves the splits to another account.
	Reassign
	// DeleteTransactions deletes every transaction posting to the account.
	DeleteTransactions
)

// DeleteAccount removes an account. Its splits are unbound, reassigned to
// reassignTo, or deleted along with their transactions depending on removal.
// Transactions left without any assigned split are deleted. Budgets of the
// account are deleted and schedules stop posting to it.
func (d *Document) DeleteAccount(ctx context.Context, id string, removal Removal, reassignTo string) error {
	if d.book.Account(id) == nil {
		return &ledger.NotFoundError{Kind: ledger.KindAccount, ID: id}
	}
	target := ""
	if removal == Reassign {
		if d.book.Account(reassignTo) == nil || reassignTo == id {
			return &ledger.NotFoundError{Kind: ledger.KindAccount, ID: reassignTo}
		}
		target = reassignTo
	}

	return d.record(ctx, DescRemoveAccount, nil, func() error {
		for _, t := range d.book.Transactions() {
			if !t.Affects(id) {
				continue
			}
			if removal == DeleteTransactions {
				if err := d.book.RemoveTransaction(t.ID); err != nil {
					return err
				}
				continue
			}
			changed := t.Clone()
			changed.ReassignAccount(id, target)
			if changed.IsFullyUnassigned() {
				if err := d.book.RemoveTransaction(t.ID); err != nil {
					return err
				}
				continue
			}
			if err := d.book.UpdateTransaction(changed); err != nil {
				return err
			}
		}

		for _, s := range d.book.Schedules() {
			if !s.Affects(id) {
				continue
			}
			changed := s.Clone()
			changed.ReassignAccount(id, target)
			if err := d.book.UpdateSchedule(changed); err != nil {
				return err
			}
		}

		for _, b := range d.book.Budgets() {
			switch {
			case b.AccountID == id:
				if err := d.book.RemoveBudget(b.ID); err != nil {
					return err
				}
			case b.TargetID == id:
				changed := b.Clone()
				changed.TargetID = target
				if err := d.book.UpdateBudget(changed); err != nil {
					return err
				}
			}
		}

		if err := d.book.RemoveAccount(id); err != nil {
			return err
		}
		return d.removeOrphans()
	})
}

// AddGroup adds a new account group.
func (d *Document) AddGroup(ctx context.Context, g *ledger.Group) error {
	g = g.Clone()
	if g.ID == "" {
		g.ID = ledger.NewID()
	}
	return d.record(ctx, DescAddGroup, nil, func() error {
		return d.book.AddGroup(g)
	})
}

// ChangeGroup renames a group.
func (d *Document) ChangeGroup(ctx context.Context, g *ledger.Group) error {
	g = g.Clone()
	return d.record(ctx, DescChangeGroup, nil, func() error {
		return d.book.UpdateGroup(g)
	})
}

// DeleteGroup removes a group. Its accounts stay, ungrouped.
func (d *Document) DeleteGroup(ctx context.Context, id string) error {
	return d.record(ctx, DescRemoveGroup, nil, func() error {
		return d.book.RemoveGroup(id)
	})
}

// lookupAccount resolves an account number, a name, or a "number - name" display name.
func (d *Document) lookupAccount(text string) *ledger.Account {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if a := d.book.AccountByNumber(text); a != nil {
		return a
	}
	if number, name := ledger.SplitDisplayName(text); number != "" {
		if a := d.book.AccountByNumber(number); a != nil {
			return a
		}
		return d.book.AccountByName(name)
	}
	return d.book.AccountByName(text)
}

// resolveTransfer returns the id of the account named text, creating it when
// it doesn't exist yet. Money flowing in creates an income account, money
// flowing out an expense account. Must run inside a record.
func (d *Document) resolveTransfer(text string, flowsIn bool, currency string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", nil
	}
	if a := d.lookupAccount(text); a != nil {
		return a.ID, nil
	}

	typ := ledger.Expense
	if flowsIn {
		typ = ledger.Income
	}
	_, name := ledger.SplitDisplayName(text)
	a := ledger.NewAccount(name, typ, currency)
	a.AutoCreated = true
	if err := d.book.AddAccount(a); err != nil {
		return "", err
	}
	return a.ID, nil
}

// removeOrphans deletes auto-created accounts nothing refers to anymore.
// Must run inside a record.
func (d *Document) removeOrphans() error {
	for _, a := range d.book.Accounts() {
		if !a.AutoCreated || d.isReferenced(a.ID) {
			continue
		}
		if err := d.book.RemoveAccount(a.ID); err != nil {
			return err
		}
	}
	return nil
}

func (d *Document) isReferenced(accountID string) bool {
	for _, t := range d.book.Transactions() {
		if t.Affects(accountID) {
			return true
		}
	}
	for _, s := range d.book.Schedules() {
		if s.Affects(accountID) {
			return true
		}
	}
	for _, b := range d.book.Budgets() {
		if b.AccountID == accountID || b.TargetID == accountID {
			return true
		}
	}
	return false
}
