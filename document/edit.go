package document

import (
	"context"
	"strings"

	"github.com/robinvdvleuten/moneybook/date"
	"github.com/robinvdvleuten/moneybook/ledger"
)

// Edit is an edit session on one entry of an account ledger. Setters take text
// as typed by a user. A setter that can't parse its input returns an
// InvalidInputError and leaves the field as it was; the session stays usable.
// Nothing reaches the document before Commit.
type Edit struct {
	doc     *Document
	account *ledger.Account
	txn     *ledger.Transaction
	isNew   bool
	entry   int

	amount   ledger.Amount
	transfer string
	scope    Scope
}

// NewEdit starts a session for a new transaction on accountID dated on.
func (d *Document) NewEdit(accountID string, on date.Date) (*Edit, error) {
	a := d.book.Account(accountID)
	if a == nil {
		return nil, &ledger.NotFoundError{Kind: ledger.KindAccount, ID: accountID}
	}
	return &Edit{
		doc:     d,
		account: a,
		txn:     ledger.NewTransaction(on),
		isNew:   true,
		amount:  ledger.Zero(a.Currency),
	}, nil
}

// EditTransaction starts a session on the entry of txnID in the ledger of
// accountID. Spawns are edited too; SetScope decides how the edit applies.
func (d *Document) EditTransaction(accountID, txnID string) (*Edit, error) {
	a := d.book.Account(accountID)
	if a == nil {
		return nil, &ledger.NotFoundError{Kind: ledger.KindAccount, ID: accountID}
	}
	t, err := d.findTransaction(txnID)
	if err != nil {
		return nil, err
	}
	e := &Edit{doc: d, account: a, txn: t, entry: -1}
	for i, s := range t.Splits {
		if s.AccountID == accountID {
			e.entry = i
			break
		}
	}
	if e.entry < 0 {
		return nil, &ledger.NotFoundError{Kind: ledger.KindTransaction, ID: txnID}
	}
	e.amount = t.Splits[e.entry].Amount
	if other := e.other(); other >= 0 {
		if b := d.book.Account(t.Splits[other].AccountID); b != nil {
			e.transfer = b.DisplayName()
		}
	}
	return e, nil
}

// other returns the index of the transfer split, or -1 when the transaction
// isn't a simple two split transfer.
func (e *Edit) other() int {
	if len(e.txn.Splits) != 2 {
		return -1
	}
	return 1 - e.entry
}

func (e *Edit) Date() date.Date { return e.txn.Date }

func (e *Edit) Description() string { return e.txn.Description }

func (e *Edit) Transfer() string { return e.transfer }

// Amount returns the amount posted to the edited account.
func (e *Edit) Amount() ledger.Amount { return e.amount }

// ReconciliationDate returns the reconciliation date of the edited entry.
func (e *Edit) ReconciliationDate() date.Date {
	if e.isNew {
		return date.Date{}
	}
	return e.txn.Splits[e.entry].ReconciliationDate
}

func (e *Edit) SetDate(text string) error {
	d, err := date.ParseLayout(e.doc.dateFormat, text)
	if err != nil {
		return &ledger.InvalidInputError{Field: "date", Value: text, Err: err}
	}
	e.txn.Date = d
	return nil
}

func (e *Edit) SetDescription(text string) { e.txn.Description = text }

func (e *Edit) SetPayee(text string) { e.txn.Payee = text }

func (e *Edit) SetCheckNumber(text string) { e.txn.CheckNumber = text }

func (e *Edit) SetNotes(text string) { e.txn.Notes = text }

// SetIncrease sets the amount increasing the account balance.
func (e *Edit) SetIncrease(text string) error { return e.setAmount(text, false) }

// SetDecrease sets the amount decreasing the account balance.
func (e *Edit) SetDecrease(text string) error { return e.setAmount(text, true) }

func (e *Edit) setAmount(text string, decrease bool) error {
	a, err := ledger.ParseAmount(text, e.account.Currency, e.doc.autoDecimalPlace)
	if err != nil {
		return err
	}
	a = a.Abs()
	// credit normal accounts grow with credits
	if decrease != e.account.Type.IsCreditNormal() {
		a = a.Neg()
	}
	e.amount = a
	return nil
}

// SetTransfer names the account on the other side. Unknown names create an
// account on Commit.
func (e *Edit) SetTransfer(text string) { e.transfer = strings.TrimSpace(text) }

// SetReconciliationDate reconciles the entry. Text that isn't a date clears it.
func (e *Edit) SetReconciliationDate(text string) {
	if e.isNew {
		return
	}
	d, err := date.ParseLayout(e.doc.dateFormat, text)
	if err != nil {
		d = date.Date{}
	}
	e.txn.Splits[e.entry].ReconciliationDate = d
}

// SetScope decides whether committing an edited spawn changes only this
// occurrence or the whole schedule.
func (e *Edit) SetScope(scope Scope) { e.scope = scope }

// Commit writes the session to the document as one action. Transfer accounts
// that don't exist yet are created within the same action.
func (e *Edit) Commit(ctx context.Context) error {
	d := e.doc
	t := e.txn.Clone()

	if e.isNew {
		return d.record(ctx, DescAddTransaction, nil, func() error {
			transfer, err := d.resolveTransfer(e.transfer, e.amount.Sign() > 0, e.amount.Currency)
			if err != nil {
				return err
			}
			t.Splits = []ledger.Split{
				{AccountID: e.account.ID, Amount: e.amount},
				{AccountID: transfer, Amount: e.amount.Neg()},
			}
			if err := t.SetSplits(t.Splits, d.rates); err != nil {
				return err
			}
			return d.book.AddTransaction(t, -1)
		})
	}

	return d.record(ctx, DescChangeTransaction, nil, func() error {
		t.Splits[e.entry].Amount = e.amount
		if other := e.other(); other >= 0 {
			transfer, err := d.resolveTransfer(e.transfer, e.amount.Sign() > 0, e.amount.Currency)
			if err != nil {
				return err
			}
			t.Splits[other].AccountID = transfer
			if t.Splits[other].Amount.Currency == e.amount.Currency || t.Splits[other].Amount.IsZero() {
				t.Splits[other].Amount = e.amount.Neg()
			}
		}
		return d.changeTransaction(t, e.scope)
	})
}
