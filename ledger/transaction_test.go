package ledger

import (
	"errors"
	"testing"

	"github.com/alecthomas/assert/v2"
	"github.com/robinvdvleuten/moneybook/date"
	"github.com/robinvdvleuten/moneybook/rates"
	"github.com/shopspring/decimal"
)

func split(account, amount string) Split {
	return Split{AccountID: account, Amount: MustParseAmount(amount)}
}

func TestSetSplitsBalancing(t *testing.T) {
	tests := []struct {
		name   string
		splits []Split
		want   []Split
	}{
		{
			name:   "single split is padded and balanced",
			splits: []Split{split("a", "42 USD")},
			want:   []Split{split("a", "42 USD"), split("", "-42 USD")},
		},
		{
			name:   "balanced splits are kept",
			splits: []Split{split("a", "42 USD"), split("b", "-42 USD")},
			want:   []Split{split("a", "42 USD"), split("b", "-42 USD")},
		},
		{
			name:   "imbalance without unassigned split adds one",
			splits: []Split{split("a", "42 USD"), split("b", "-40 USD")},
			want:   []Split{split("a", "42 USD"), split("b", "-40 USD"), split("", "-2 USD")},
		},
		{
			name:   "unassigned split absorbs the imbalance",
			splits: []Split{split("a", "42 USD"), split("", "-10 USD"), split("b", "-2 USD")},
			want:   []Split{split("a", "42 USD"), split("", "-40 USD"), split("b", "-2 USD")},
		},
		{
			name:   "empty transaction",
			splits: nil,
			want:   []Split{{}, {}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			txn := NewTransaction(date.MustParse("2008-06-19"))
			assert.NoError(t, txn.SetSplits(tt.splits, nil))
			assert.Equal(t, len(tt.want), len(txn.Splits))
			for i := range tt.want {
				assert.True(t, tt.want[i].Equal(txn.Splits[i]), "split %d: got %+v", i, txn.Splits[i])
			}
		})
	}
}

func TestSetSplitsAmbiguousImbalance(t *testing.T) {
	txn := NewTransaction(date.MustParse("2008-06-19"))
	before := txn.Clone()

	err := txn.SetSplits([]Split{split("a", "42 USD"), {}, {}}, nil)

	var imbalanced *ImbalancedError
	assert.True(t, errors.As(err, &imbalanced))
	assert.True(t, errors.Is(err, ErrValidation))
	assert.Equal(t, 2, imbalanced.Unassigned)
	assert.True(t, before.Equal(txn))
}

func TestSetSplitsMultiCurrency(t *testing.T) {
	on := date.MustParse("2008-06-19")

	t.Run("accepted without rates", func(t *testing.T) {
		txn := NewTransaction(on)
		assert.NoError(t, txn.SetSplits([]Split{split("a", "100 USD"), split("b", "-80 EUR")}, nil))
		assert.Equal(t, 2, len(txn.Splits))
	})

	table := rates.NewTable()
	table.Set("EUR", "USD", on, decimal.RequireFromString("1.25"))

	t.Run("balanced through rates", func(t *testing.T) {
		txn := NewTransaction(on)
		assert.NoError(t, txn.SetSplits([]Split{split("a", "100 USD"), split("b", "-80 EUR")}, table))
		assert.Equal(t, 2, len(txn.Splits))
	})

	t.Run("imbalance in first currency", func(t *testing.T) {
		txn := NewTransaction(on)
		assert.NoError(t, txn.SetSplits([]Split{split("a", "100 USD"), split("b", "-70 EUR"), {}}, table))
		assert.True(t, txn.Splits[2].Amount.Equal(MustParseAmount("-12.5 USD")), "got %s", txn.Splits[2].Amount)
	})
}

func TestUnreconcile(t *testing.T) {
	recdate := date.MustParse("2008-06-19")
	before := NewTransaction(recdate)
	before.Splits = []Split{split("a", "42 USD"), split("b", "-42 USD")}
	before.Splits[0].ReconciliationDate = recdate
	before.Splits[1].ReconciliationDate = recdate

	t.Run("date moved before reconciliation date", func(t *testing.T) {
		after := before.Clone()
		after.Date = date.MustParse("2008-06-18")
		after.Unreconcile(before)
		assert.False(t, after.Splits[0].IsReconciled())
		assert.False(t, after.Splits[1].IsReconciled())
	})

	t.Run("date moved later keeps reconciliation", func(t *testing.T) {
		after := before.Clone()
		after.Date = date.MustParse("2008-06-20")
		after.Unreconcile(before)
		assert.True(t, after.Splits[0].IsReconciled())
	})

	t.Run("amount change only affects that split", func(t *testing.T) {
		after := before.Clone()
		after.Splits[0].Amount = MustParseAmount("43 USD")
		after.Unreconcile(before)
		assert.False(t, after.Splits[0].IsReconciled())
		assert.True(t, after.Splits[1].IsReconciled())
	})

	t.Run("account change", func(t *testing.T) {
		after := before.Clone()
		after.Splits[1].AccountID = "c"
		after.Unreconcile(before)
		assert.True(t, after.Splits[0].IsReconciled())
		assert.False(t, after.Splits[1].IsReconciled())
	})

	t.Run("description change keeps reconciliation", func(t *testing.T) {
		after := before.Clone()
		after.Description = "changed"
		after.Unreconcile(before)
		assert.True(t, after.Splits[0].IsReconciled())
		assert.True(t, after.Splits[1].IsReconciled())
	})
}

func TestTransactionHelpers(t *testing.T) {
	txn := NewTransaction(date.MustParse("2008-06-19"))
	txn.Splits = []Split{split("a", "42 USD"), split("b", "-30 USD"), split("a", "-12 USD")}

	assert.Equal(t, []string{"a", "b"}, txn.AccountIDs())
	assert.True(t, txn.Affects("b"))
	assert.True(t, txn.Amount().Equal(MustParseAmount("42 USD")))

	assert.True(t, txn.ReassignAccount("a", ""))
	assert.False(t, txn.Affects("a"))
	assert.False(t, txn.IsFullyUnassigned())
	txn.ReassignAccount("b", "")
	assert.True(t, txn.IsFullyUnassigned())
}

func TestTransactionCloneIsDeep(t *testing.T) {
	txn := NewTransaction(date.MustParse("2008-06-19"))
	txn.Splits = []Split{split("a", "42 USD"), split("b", "-42 USD")}

	c := txn.Clone()
	c.Splits[0].Memo = "changed"
	assert.Equal(t, "", txn.Splits[0].Memo)
	assert.False(t, c.Equal(txn))
}
