package document

import (
	"context"
	"slices"

	"github.com/robinvdvleuten/moneybook/date"
	"github.com/robinvdvleuten/moneybook/ledger"
	"github.com/robinvdvleuten/moneybook/oven"
)

// Scope selects what an edit of a schedule spawn applies to.
type Scope int

const (
	// ScopeLocal only changes the edited occurrence.
	ScopeLocal Scope = iota
	// ScopeGlobal changes the schedule, so every occurrence without an exception follows.
	ScopeGlobal
)

func (s Scope) String() string {
	if s == ScopeGlobal {
		return "global"
	}
	return "local"
}

// AddTransaction adds a transaction, balancing its splits first.
func (d *Document) AddTransaction(ctx context.Context, t *ledger.Transaction) error {
	t = t.Clone()
	if t.ID == "" {
		t.ID = ledger.NewID()
	}
	t.ScheduleID = ""
	t.RecurrenceDate = date.Date{}
	if err := t.SetSplits(t.Splits, d.rates); err != nil {
		return err
	}
	return d.record(ctx, DescAddTransaction, nil, func() error {
		return d.book.AddTransaction(t, -1)
	})
}

// ChangeTransaction replaces a transaction. For schedule spawns, scope decides
// whether only this occurrence or the whole schedule changes. Reconciliation
// dates made stale by the edit are cleared.
func (d *Document) ChangeTransaction(ctx context.Context, t *ledger.Transaction, scope Scope) error {
	return d.record(ctx, DescChangeTransaction, nil, func() error {
		return d.changeTransaction(t, scope)
	})
}

func (d *Document) changeTransaction(t *ledger.Transaction, scope Scope) error {
	t = t.Clone()
	if err := t.SetSplits(t.Splits, d.rates); err != nil {
		return err
	}

	if s, on, ok := d.spawnOf(t.ID); ok {
		if err := d.changeSpawn(s, on, t, scope); err != nil {
			return err
		}
		return d.removeOrphans()
	}

	old := d.book.Transaction(t.ID)
	if old == nil {
		return &ledger.NotFoundError{Kind: ledger.KindTransaction, ID: t.ID}
	}
	t.Unreconcile(old)
	if err := d.book.UpdateTransaction(t); err != nil {
		return err
	}
	return d.removeOrphans()
}

func (d *Document) changeSpawn(s *ledger.Schedule, on date.Date, t *ledger.Transaction, scope Scope) error {
	s = s.Clone()
	if prev := s.Spawn(on); prev != nil {
		t.Unreconcile(prev)
	}
	t.RecurrenceDate = on

	if scope == ScopeGlobal {
		delete(s.Exceptions, on)
		s.ChangeGlobally(t)
		// reconciliation never lives on the template
		if hasReconciled(t) {
			s.Override(t.Date, t)
		}
	} else {
		s.Override(on, t)
	}
	return d.book.UpdateSchedule(s)
}

func hasReconciled(t *ledger.Transaction) bool {
	return slices.ContainsFunc(t.Splits, ledger.Split.IsReconciled)
}

// spawnOf resolves a spawn id to its schedule and recurrence date.
func (d *Document) spawnOf(id string) (*ledger.Schedule, date.Date, bool) {
	sid, on, ok := ledger.ParseSpawnID(id)
	if !ok {
		return nil, date.Date{}, false
	}
	s := d.book.Schedule(sid)
	if s == nil {
		return nil, date.Date{}, false
	}
	return s, on, true
}

// findTransaction returns a real transaction or the current state of a spawn.
func (d *Document) findTransaction(id string) (*ledger.Transaction, error) {
	if s, on, ok := d.spawnOf(id); ok {
		if t := s.Spawn(on); t != nil {
			return t, nil
		}
	} else if t := d.book.Transaction(id); t != nil {
		return t.Clone(), nil
	}
	return nil, &ledger.NotFoundError{Kind: ledger.KindTransaction, ID: id}
}

// DeleteTransactions removes transactions. Deleting a spawn with local scope
// suppresses that occurrence; with global scope the schedule stops before it.
// Auto-created accounts left unused are removed as well.
func (d *Document) DeleteTransactions(ctx context.Context, ids []string, scope Scope) error {
	return d.record(ctx, DescRemoveTransaction, nil, func() error {
		for _, id := range ids {
			if s, on, ok := d.spawnOf(id); ok {
				if err := d.deleteSpawn(s, on, scope); err != nil {
					return err
				}
				continue
			}
			if err := d.book.RemoveTransaction(id); err != nil {
				return err
			}
		}
		return d.removeOrphans()
	})
}

func (d *Document) deleteSpawn(s *ledger.Schedule, on date.Date, scope Scope) error {
	if scope == ScopeGlobal && !on.After(s.Rule.Start) {
		return d.book.RemoveSchedule(s.ID)
	}
	s = s.Clone()
	if scope == ScopeGlobal {
		s.StopBefore(on)
	} else {
		s.Delete(on)
	}
	return d.book.UpdateSchedule(s)
}

// DuplicateTransactions copies transactions, spawns included, as new real
// transactions placed right after their originals. Copies are unreconciled.
// It returns the ids of the copies.
func (d *Document) DuplicateTransactions(ctx context.Context, ids []string) ([]string, error) {
	var created []string
	err := d.record(ctx, DescDuplicateTransaction, nil, func() error {
		created = created[:0]
		for _, id := range ids {
			src, err := d.findTransaction(id)
			if err != nil {
				return err
			}
			dup := src.Clone()
			dup.ID = ledger.NewID()
			dup.ScheduleID = ""
			dup.RecurrenceDate = date.Date{}
			dup.ClearReconciliation()

			at := -1
			if i := d.book.TransactionIndex(id); i >= 0 {
				at = i + 1
			}
			if err := d.book.AddTransaction(dup, at); err != nil {
				return err
			}
			created = append(created, dup.ID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// MoveTransaction reorders a transaction among those of the same date, putting
// it right before beforeID. An empty beforeID moves it last.
func (d *Document) MoveTransaction(ctx context.Context, id, beforeID string) error {
	t := d.book.Transaction(id)
	if t == nil {
		return &ledger.NotFoundError{Kind: ledger.KindTransaction, ID: id}
	}

	var siblings []*ledger.Transaction
	for _, other := range d.book.Transactions() {
		if other.Date == t.Date && other.ID != id {
			siblings = append(siblings, other)
		}
	}
	slices.SortStableFunc(siblings, func(a, b *ledger.Transaction) int { return a.Position - b.Position })

	at := len(siblings)
	if beforeID != "" {
		at = slices.IndexFunc(siblings, func(o *ledger.Transaction) bool { return o.ID == beforeID })
		if at < 0 {
			return &ledger.InvalidInputError{Field: "move target", Value: beforeID}
		}
	}
	order := slices.Insert(siblings, at, t)

	return d.record(ctx, DescMoveTransaction, nil, func() error {
		for i, o := range order {
			if o.Position == i {
				continue
			}
			moved := o.Clone()
			moved.Position = i
			if err := d.book.UpdateTransaction(moved); err != nil {
				return err
			}
		}
		return nil
	})
}

// MassEdit holds the fields a mass edit sets. Nil fields are left alone.
// Amount and Transfer only apply to transactions with two splits.
type MassEdit struct {
	Date        *date.Date
	Description *string
	Payee       *string
	CheckNumber *string
	Transfer    *string
	Amount      *ledger.Amount
}

// MassEdit applies the same field values to several transactions as one
// action. Spawns get local overrides.
func (d *Document) MassEdit(ctx context.Context, ids []string, edit MassEdit) error {
	return d.record(ctx, DescMassEdit, nil, func() error {
		for _, id := range ids {
			t, err := d.findTransaction(id)
			if err != nil {
				return err
			}
			if edit.Date != nil {
				t.Date = *edit.Date
			}
			if edit.Description != nil {
				t.Description = *edit.Description
			}
			if edit.Payee != nil {
				t.Payee = *edit.Payee
			}
			if edit.CheckNumber != nil {
				t.CheckNumber = *edit.CheckNumber
			}
			if len(t.Splits) == 2 {
				if edit.Amount != nil {
					t.Splits[0].Amount = *edit.Amount
					t.Splits[1].Amount = edit.Amount.Neg()
				}
				if edit.Transfer != nil {
					amount := t.Splits[0].Amount
					transfer, err := d.resolveTransfer(*edit.Transfer, amount.Sign() > 0, amount.Currency)
					if err != nil {
						return err
					}
					t.Splits[1].AccountID = transfer
				}
			}
			if err := d.changeTransaction(t, ScopeLocal); err != nil {
				return err
			}
		}
		return nil
	})
}

// ToggleReconciliation flips the reconciliation of the entries of ids in the
// ledger of accountID. When any reconcilable entry is unreconciled, all of them
// get reconciled on their transaction date; otherwise all are unreconciled.
// Entries that can't be reconciled are skipped. Spawns are materialized.
func (d *Document) ToggleReconciliation(ctx context.Context, accountID string, ids []string) error {
	l := d.view.Ledger(accountID)
	if l == nil {
		return &ledger.NotFoundError{Kind: ledger.KindAccount, ID: accountID}
	}

	var entries []*oven.Entry
	for _, id := range ids {
		if e := l.Find(id); e != nil && l.CanReconcile(e) {
			entries = append(entries, e)
		}
	}
	if len(entries) == 0 {
		return nil
	}
	reconcile := slices.ContainsFunc(entries, func(e *oven.Entry) bool { return !e.IsReconciled() })

	return d.record(ctx, DescChangeReconciliation, nil, func() error {
		for _, e := range entries {
			if e.IsReconciled() == reconcile {
				continue
			}
			t, err := d.findTransaction(e.Txn.ID)
			if err != nil {
				return err
			}
			if e.SplitIndex >= len(t.Splits) {
				continue
			}
			var on date.Date
			if reconcile {
				on = t.Date
			}
			t.Splits[e.SplitIndex].ReconciliationDate = on
			if err := d.changeTransaction(t, ScopeLocal); err != nil {
				return err
			}
		}
		return nil
	})
}
