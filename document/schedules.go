package document

import (
	"context"

	"github.com/robinvdvleuten/moneybook/date"
	"github.com/robinvdvleuten/moneybook/ledger"
)

// AddSchedule adds a recurring transaction.
func (d *Document) AddSchedule(ctx context.Context, s *ledger.Schedule) error {
	s = s.Clone()
	if s.ID == "" {
		s.ID = ledger.NewID()
	}
	s.SetTemplate(s.Template)
	if err := s.Template.SetSplits(s.Template.Splits, d.rates); err != nil {
		return err
	}
	return d.record(ctx, DescAddSchedule, nil, func() error {
		return d.book.AddSchedule(s)
	})
}

// ChangeSchedule replaces a schedule, rule and template included. Exceptions
// are taken from s as given.
func (d *Document) ChangeSchedule(ctx context.Context, s *ledger.Schedule) error {
	s = s.Clone()
	s.SetTemplate(s.Template)
	if err := s.Template.SetSplits(s.Template.Splits, d.rates); err != nil {
		return err
	}
	return d.record(ctx, DescChangeSchedule, nil, func() error {
		if err := d.book.UpdateSchedule(s); err != nil {
			return err
		}
		return d.removeOrphans()
	})
}

// DeleteSchedule removes a schedule with all its occurrences.
func (d *Document) DeleteSchedule(ctx context.Context, id string) error {
	return d.record(ctx, DescRemoveSchedule, nil, func() error {
		if err := d.book.RemoveSchedule(id); err != nil {
			return err
		}
		return d.removeOrphans()
	})
}

// ScheduleFromTransaction turns a real transaction into the template of a new
// schedule starting on its date. The transaction itself is removed, its first
// occurrence takes its place.
func (d *Document) ScheduleFromTransaction(ctx context.Context, id string, typ ledger.RepeatType, every int) (*ledger.Schedule, error) {
	t := d.book.Transaction(id)
	if t == nil {
		return nil, &ledger.NotFoundError{Kind: ledger.KindTransaction, ID: id}
	}
	s := ledger.NewSchedule(t, ledger.Recurrence{Start: t.Date, Type: typ, Every: every})
	if err := s.Rule.Validate(); err != nil {
		return nil, err
	}

	err := d.record(ctx, DescAddSchedule, nil, func() error {
		if err := d.book.RemoveTransaction(id); err != nil {
			return err
		}
		return d.book.AddSchedule(s)
	})
	if err != nil {
		return nil, err
	}
	return s.Clone(), nil
}

// AddBudget adds a budget for an income or expense account.
func (d *Document) AddBudget(ctx context.Context, b *ledger.Budget) error {
	b = b.Clone()
	if b.ID == "" {
		b.ID = ledger.NewID()
	}
	return d.record(ctx, DescAddBudget, nil, func() error {
		return d.book.AddBudget(b)
	})
}

// ChangeBudget replaces a budget.
func (d *Document) ChangeBudget(ctx context.Context, b *ledger.Budget) error {
	b = b.Clone()
	return d.record(ctx, DescChangeBudget, nil, func() error {
		return d.book.UpdateBudget(b)
	})
}

// DeleteBudget removes a budget.
func (d *Document) DeleteBudget(ctx context.Context, id string) error {
	return d.record(ctx, DescRemoveBudget, nil, func() error {
		return d.book.RemoveBudget(id)
	})
}

// Budget returns a copy of the budget with id, or nil.
func (d *Document) Budget(id string) *ledger.Budget { return cloneOne(d.book.Budget(id)) }

// Occurrences lists the dates a schedule spawns on within rng, deleted
// occurrences included.
func (d *Document) Occurrences(id string, rng date.Range) []date.Date {
	s := d.book.Schedule(id)
	if s == nil {
		return nil
	}
	return s.Rule.Between(rng)
}
