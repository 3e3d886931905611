package undo

import (
	"context"
	"errors"
	"testing"

	"github.com/alecthomas/assert/v2"
	"github.com/robinvdvleuten/moneybook/date"
	"github.com/robinvdvleuten/moneybook/ledger"
)

func setup(t *testing.T) (*ledger.Book, *Log, *ledger.Account) {
	t.Helper()
	book := ledger.NewBook()
	checking := ledger.NewAccount("Checking", ledger.Asset, "USD")
	assert.NoError(t, book.AddAccount(checking))
	return book, New(book), checking
}

func addTransaction(book *ledger.Book, accountID string, on string) func() error {
	return func() error {
		txn := ledger.NewTransaction(date.MustParse(on))
		if err := txn.SetSplits([]ledger.Split{{AccountID: accountID, Amount: ledger.MustParseAmount("42 USD")}}, nil); err != nil {
			return err
		}
		return book.AddTransaction(txn, -1)
	}
}

func TestUndoRedoRoundTrip(t *testing.T) {
	ctx := context.Background()
	book, log, checking := setup(t)
	assert.NoError(t, addTransaction(book, checking.ID, "2008-06-19")())

	before := book.Clone()
	recorded, err := log.Record(ctx, "Mass edit", nil, func() error {
		renamed := checking.Clone()
		renamed.Name = "Savings"
		if err := book.UpdateAccount(renamed); err != nil {
			return err
		}
		txn := book.Transactions()[0].Clone()
		txn.Description = "changed"
		if err := book.UpdateTransaction(txn); err != nil {
			return err
		}
		return addTransaction(book, checking.ID, "2008-06-20")()
	})
	assert.NoError(t, err)
	assert.True(t, recorded)
	after := book.Clone()

	_, err = log.Undo(ctx)
	assert.NoError(t, err)
	assert.True(t, book.Equal(before))

	_, err = log.Redo(ctx)
	assert.NoError(t, err)
	assert.True(t, book.Equal(after))
}

func TestUndoRedoAddTransaction(t *testing.T) {
	ctx := context.Background()
	book, log, checking := setup(t)

	for _, on := range []string{"2008-06-19", "2008-06-20"} {
		_, err := log.Record(ctx, "Add transaction", nil, addTransaction(book, checking.ID, on))
		assert.NoError(t, err)
	}
	assert.Equal(t, 2, len(book.Transactions()))

	_, err := log.Undo(ctx)
	assert.NoError(t, err)
	assert.Equal(t, 1, len(book.Transactions()))
	assert.Equal(t, date.MustParse("2008-06-19"), book.Transactions()[0].Date)

	_, err = log.Redo(ctx)
	assert.NoError(t, err)
	assert.Equal(t, 2, len(book.Transactions()))
}

func TestFailedActionIsRolledBack(t *testing.T) {
	ctx := context.Background()
	book, log, checking := setup(t)
	other := ledger.NewAccount("Other", ledger.Asset, "USD")
	_, err := log.Record(ctx, "Add account", nil, func() error { return book.AddAccount(other) })
	assert.NoError(t, err)

	before := book.Clone()
	recorded, err := log.Record(ctx, "Change account", nil, func() error {
		if err := addTransaction(book, checking.ID, "2008-06-19")(); err != nil {
			return err
		}
		renamed := other.Clone()
		renamed.Name = "checking"
		return book.UpdateAccount(renamed)
	})

	var dup *ledger.DuplicateNameError
	assert.True(t, errors.As(err, &dup))
	assert.False(t, recorded)
	assert.True(t, book.Equal(before))
	assert.Equal(t, "Add account", log.UndoDescription())
}

func TestNoOpIsNotRecorded(t *testing.T) {
	ctx := context.Background()
	book, log, checking := setup(t)

	recorded, err := log.Record(ctx, "Change account", nil, func() error {
		return book.UpdateAccount(checking.Clone())
	})
	assert.NoError(t, err)
	assert.False(t, recorded)
	assert.False(t, log.CanUndo())
}

func TestRecordTruncatesRedoBranch(t *testing.T) {
	ctx := context.Background()
	book, log, checking := setup(t)

	_, err := log.Record(ctx, "Add transaction", nil, addTransaction(book, checking.ID, "2008-06-19"))
	assert.NoError(t, err)
	_, err = log.Undo(ctx)
	assert.NoError(t, err)
	assert.True(t, log.CanRedo())
	assert.Equal(t, "Add transaction", log.RedoDescription())

	_, err = log.Record(ctx, "Add account", nil, func() error {
		return book.AddAccount(ledger.NewAccount("Other", ledger.Asset, "USD"))
	})
	assert.NoError(t, err)
	assert.False(t, log.CanRedo())
	assert.Equal(t, "", log.RedoDescription())
	assert.Equal(t, 1, len(log.History()))
}

func TestBoundaries(t *testing.T) {
	ctx := context.Background()
	_, log, _ := setup(t)

	_, err := log.Undo(ctx)
	assert.IsError(t, err, ErrNothingToUndo)
	_, err = log.Redo(ctx)
	assert.IsError(t, err, ErrNothingToRedo)
	assert.Zero(t, log.Current())
	assert.Equal(t, "", log.UndoDescription())
}

func TestExplicitRefsAreCaptured(t *testing.T) {
	ctx := context.Background()
	book, log, checking := setup(t)

	ref := ledger.Ref{Kind: ledger.KindAccount, ID: checking.ID}
	_, err := log.Record(ctx, "Change account", []ledger.Ref{ref}, func() error {
		renamed := checking.Clone()
		renamed.Name = "Savings"
		return book.UpdateAccount(renamed)
	})
	assert.NoError(t, err)
	assert.Equal(t, []ledger.Ref{ref}, log.Current().Refs())
}

func TestRemoveHookRunsBeforeRestore(t *testing.T) {
	ctx := context.Background()
	book := ledger.NewBook()

	var seen []ledger.Ref
	var presentDuringHook bool
	log := New(book, WithRemoveHook(func(refs []ledger.Ref) {
		seen = refs
		presentDuringHook = book.Account(refs[0].ID) != nil
	}))

	a := ledger.NewAccount("Checking", ledger.Asset, "USD")
	_, err := log.Record(ctx, "Add account", nil, func() error { return book.AddAccount(a) })
	assert.NoError(t, err)

	_, err = log.Undo(ctx)
	assert.NoError(t, err)
	assert.Equal(t, []ledger.Ref{{Kind: ledger.KindAccount, ID: a.ID}}, seen)
	assert.True(t, presentDuringHook)
	assert.Zero(t, book.Account(a.ID))
}

func TestHistoryAndCurrent(t *testing.T) {
	ctx := context.Background()
	book, log, checking := setup(t)

	_, err := log.Record(ctx, "Add transaction", nil, addTransaction(book, checking.ID, "2008-06-19"))
	assert.NoError(t, err)
	first := log.Current()
	_, err = log.Record(ctx, "Add transaction", nil, addTransaction(book, checking.ID, "2008-06-20"))
	assert.NoError(t, err)
	assert.NotEqual(t, first, log.Current())

	_, err = log.Undo(ctx)
	assert.NoError(t, err)
	assert.Equal(t, first, log.Current())

	history := log.History()
	assert.Equal(t, 2, len(history))
	assert.True(t, history[0].Applied)
	assert.False(t, history[1].Applied)
	assert.True(t, history[0].Generation < history[1].Generation)

	log.Reset()
	assert.False(t, log.CanUndo())
	assert.False(t, log.CanRedo())
}
