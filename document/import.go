package document

import (
	"context"

	"github.com/robinvdvleuten/moneybook/date"
	"github.com/robinvdvleuten/moneybook/ledger"
	"go.uber.org/zap"
)

// Batch is a set of entities coming from another source. Account ids in the
// batch only need to be consistent within the batch itself.
type Batch struct {
	Accounts     []*ledger.Account
	Transactions []*ledger.Transaction
}

// ImportResult counts what an import did.
type ImportResult struct {
	AccountsCreated int `json:"accounts_created"`
	AccountsReused  int `json:"accounts_reused"`
	Transactions    int `json:"transactions"`
}

// Import merges a batch into the document as a single "Import" action.
// Accounts whose name already exists are reused, the others are added. Every
// imported transaction gets a fresh id.
func (d *Document) Import(ctx context.Context, b Batch) (ImportResult, error) {
	var res ImportResult
	err := d.record(ctx, DescImport, nil, func() error {
		res = ImportResult{}
		ids := make(map[string]string, len(b.Accounts))

		for _, a := range b.Accounts {
			if existing := d.book.AccountByName(a.Name); existing != nil {
				ids[a.ID] = existing.ID
				res.AccountsReused++
				continue
			}
			created := a.Clone()
			created.ID = ledger.NewID()
			created.GroupID = ""
			if created.Currency == "" {
				created.Currency = d.defaultCurrency
			}
			if err := d.book.AddAccount(created); err != nil {
				return err
			}
			ids[a.ID] = created.ID
			res.AccountsCreated++
		}

		for _, t := range b.Transactions {
			imported := t.Clone()
			imported.ID = ledger.NewID()
			imported.ScheduleID = ""
			imported.RecurrenceDate = date.Date{}
			for i, s := range imported.Splits {
				if s.AccountID == "" {
					continue
				}
				id, ok := ids[s.AccountID]
				if !ok {
					return &ledger.NotFoundError{Kind: ledger.KindAccount, ID: s.AccountID}
				}
				imported.Splits[i].AccountID = id
			}
			if err := imported.SetSplits(imported.Splits, d.rates); err != nil {
				return err
			}
			if err := d.book.AddTransaction(imported, -1); err != nil {
				return err
			}
			res.Transactions++
		}
		return nil
	})
	if err != nil {
		return ImportResult{}, err
	}
	d.logger.Info("import done",
		zap.Int("accounts_created", res.AccountsCreated),
		zap.Int("accounts_reused", res.AccountsReused),
		zap.Int("transactions", res.Transactions))
	return res, nil
}
