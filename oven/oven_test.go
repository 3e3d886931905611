package oven

import (
	"bytes"
	"context"
	"testing"

	"github.com/alecthomas/assert/v2"
	"github.com/robinvdvleuten/moneybook/date"
	"github.com/robinvdvleuten/moneybook/ledger"
	"github.com/robinvdvleuten/moneybook/rates"
	"github.com/robinvdvleuten/moneybook/telemetry"
	"github.com/shopspring/decimal"
)

type fixture struct {
	book     *ledger.Book
	checking *ledger.Account
	card     *ledger.Account
	food     *ledger.Account
	salary   *ledger.Account
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		book:     ledger.NewBook(),
		checking: ledger.NewAccount("Checking", ledger.Asset, "USD"),
		card:     ledger.NewAccount("Visa", ledger.Liability, "USD"),
		food:     ledger.NewAccount("Food", ledger.Expense, "USD"),
		salary:   ledger.NewAccount("Salary", ledger.Income, "USD"),
	}
	for _, a := range []*ledger.Account{f.checking, f.card, f.food, f.salary} {
		assert.NoError(t, f.book.AddAccount(a))
	}
	return f
}

func (f *fixture) add(t *testing.T, on string, from, to *ledger.Account, amount string) *ledger.Transaction {
	t.Helper()
	txn := ledger.NewTransaction(date.MustParse(on))
	a := usd(amount)
	assert.NoError(t, txn.SetSplits([]ledger.Split{
		{AccountID: to.ID, Amount: a},
		{AccountID: from.ID, Amount: a.Neg()},
	}, nil))
	assert.NoError(t, f.book.AddTransaction(txn, -1))
	return txn
}

func (f *fixture) daily(t *testing.T, start string, amount string) *ledger.Schedule {
	t.Helper()
	tmpl := ledger.NewTransaction(date.MustParse(start))
	a := usd(amount)
	tmpl.Splits = []ledger.Split{{AccountID: f.food.ID, Amount: a}, {AccountID: f.checking.ID, Amount: a.Neg()}}
	s := ledger.NewSchedule(tmpl, ledger.Recurrence{Start: date.MustParse(start), Type: ledger.Daily, Every: 1})
	assert.NoError(t, f.book.AddSchedule(s))
	return s
}

func rng(from, to string) date.Range {
	return date.NewRange(date.MustParse(from), date.MustParse(to))
}

func usd(s string) ledger.Amount { return ledger.MustParseAmount(s + " USD") }

func assertAmount(t *testing.T, want string, got ledger.Amount) {
	t.Helper()
	assert.True(t, usd(want).Equal(got), "want %s USD, got %s", want, got)
}

func TestDailyScheduleSpawns(t *testing.T) {
	f := newFixture(t)
	f.daily(t, "2008-01-01", "100")

	v := Cook(context.Background(), f.book, rng("2008-01-01", "2008-01-05"))

	spawns := v.Spawns()
	assert.Equal(t, 5, len(spawns))
	for _, s := range spawns {
		assert.False(t, s.Materialized)
		assertAmount(t, "100", s.Amount())
	}
}

func TestCookReportsCounts(t *testing.T) {
	f := newFixture(t)
	f.daily(t, "2008-01-01", "100")
	f.add(t, "2008-01-02", f.salary, f.checking, "20")

	collector := telemetry.NewTimingCollector()
	ctx := telemetry.WithCollector(context.Background(), collector)
	Cook(ctx, f.book, rng("2008-01-01", "2008-01-05"))

	var buf bytes.Buffer
	collector.Report(&buf, nil)
	assert.Contains(t, buf.String(), "cook 2008-01-01..2008-01-05: ")
	assert.Contains(t, buf.String(), "(6 transactions in range)")
	assert.Contains(t, buf.String(), "spawn schedules: ")
	assert.Contains(t, buf.String(), "(1 schedules, 5 spawns)")
	assert.Contains(t, buf.String(), "(4 accounts, 12 entries)")
}

func TestOverrideMovedIntoRange(t *testing.T) {
	f := newFixture(t)
	s := f.daily(t, "2008-01-01", "100").Clone()

	d8 := date.MustParse("2008-01-08")
	moved := s.Spawn(d8)
	moved.Date = date.MustParse("2008-01-03")
	moved.Splits[0].Amount = usd("50")
	moved.Splits[1].Amount = usd("-50")
	s.Override(d8, moved)
	assert.NoError(t, f.book.UpdateSchedule(s))

	v := Cook(context.Background(), f.book, rng("2008-01-01", "2008-01-05"))
	assert.Equal(t, 6, len(v.Spawns()))

	spawn := v.Transaction(ledger.SpawnID(s.ID, d8))
	assert.NotZero(t, spawn)
	assert.True(t, spawn.Materialized)
	assert.Equal(t, date.MustParse("2008-01-03"), spawn.Date)
	assertAmount(t, "550", v.Ledger(f.food.ID).Ending)
}

func TestSpawnsBeforeRangeCountTowardsPrevious(t *testing.T) {
	f := newFixture(t)
	f.daily(t, "2008-01-01", "100")

	v := Cook(context.Background(), f.book, rng("2008-01-03", "2008-01-05"))
	food := v.Ledger(f.food.ID)
	assertAmount(t, "200", food.Previous)
	assert.Equal(t, 3, len(food.Entries))
	assertAmount(t, "500", food.Ending)
	assert.NotZero(t, v.Transaction(ledger.SpawnID(f.book.Schedules()[0].ID, date.MustParse("2008-01-01"))))
}

func TestRunningBalances(t *testing.T) {
	f := newFixture(t)
	f.add(t, "2008-01-15", f.salary, f.checking, "100")
	f.add(t, "2008-02-10", f.checking, f.food, "30")
	f.add(t, "2008-02-20", f.salary, f.checking, "50")
	f.add(t, "2008-03-01", f.salary, f.checking, "1000")

	v := Cook(context.Background(), f.book, date.MonthRange(date.MustParse("2008-02-01")))

	checking := v.Ledger(f.checking.ID)
	assertAmount(t, "100", checking.Previous)
	assert.Equal(t, 2, len(checking.Entries))
	assertAmount(t, "70", checking.Entries[0].Balance)
	assertAmount(t, "120", checking.Entries[1].Balance)
	assertAmount(t, "50", checking.Increase)
	assertAmount(t, "30", checking.Decrease)
	assertAmount(t, "20", checking.Delta)
	assertAmount(t, "120", checking.Ending)

	salary := v.Ledger(f.salary.ID)
	assertAmount(t, "100", salary.Previous)
	assertAmount(t, "150", salary.Ending)
	assertAmount(t, "50", salary.Increase)

	assert.Equal(t, 2, len(v.Transactions))
}

func TestLiabilityBalanceIsPositive(t *testing.T) {
	f := newFixture(t)
	f.add(t, "2008-01-10", f.card, f.food, "50")

	v := Cook(context.Background(), f.book, date.MonthRange(date.MustParse("2008-01-01")))
	card := v.Ledger(f.card.ID)
	assertAmount(t, "50", card.Ending)
	assertAmount(t, "50", card.Increase)
}

func TestSortingByPosition(t *testing.T) {
	f := newFixture(t)
	second := f.add(t, "2008-01-10", f.salary, f.checking, "2")
	first := f.add(t, "2008-01-10", f.salary, f.checking, "1")

	moved := first.Clone()
	moved.Position = -1
	assert.NoError(t, f.book.UpdateTransaction(moved))

	v := Cook(context.Background(), f.book, date.MonthRange(date.MustParse("2008-01-01")))
	assert.Equal(t, first.ID, v.Transactions[0].ID)
	assert.Equal(t, second.ID, v.Transactions[1].ID)
}

func TestBudgetSpawns(t *testing.T) {
	f := newFixture(t)
	budget := ledger.NewBudget(f.food.ID, usd("100"), ledger.Recurrence{
		Start: date.MustParse("2008-01-01"), Type: ledger.Monthly, Every: 1,
	})
	budget.TargetID = f.checking.ID
	assert.NoError(t, f.book.AddBudget(budget))
	f.add(t, "2008-01-10", f.checking, f.food, "30")

	t.Run("remaining amount at period end", func(t *testing.T) {
		v := Cook(context.Background(), f.book, rng("2008-01-01", "2008-02-29"), WithToday(date.MustParse("2008-01-15")))

		var spawns []*Cooked
		for _, txn := range v.Transactions {
			if txn.Kind == BudgetSpawn {
				spawns = append(spawns, txn)
			}
		}
		assert.Equal(t, 2, len(spawns))
		assert.Equal(t, date.MustParse("2008-01-31"), spawns[0].Date)
		assertAmount(t, "70", spawns[0].Amount())
		assert.Equal(t, date.MustParse("2008-02-29"), spawns[1].Date)
		assertAmount(t, "100", spawns[1].Amount())

		checking := v.Ledger(f.checking.ID)
		assertAmount(t, "-200", checking.Ending)
		last := checking.Entries[len(checking.Entries)-1]
		assert.False(t, checking.CanReconcile(last))
	})

	t.Run("past periods are skipped", func(t *testing.T) {
		v := Cook(context.Background(), f.book, rng("2008-01-01", "2008-02-29"), WithToday(date.MustParse("2008-02-01")))
		count := 0
		for _, txn := range v.Transactions {
			if txn.Kind == BudgetSpawn {
				count++
				assert.Equal(t, date.MustParse("2008-02-29"), txn.Date)
			}
		}
		assert.Equal(t, 1, count)
	})

	t.Run("overspent period spawns nothing", func(t *testing.T) {
		f.add(t, "2008-01-20", f.checking, f.food, "80")
		v := Cook(context.Background(), f.book, rng("2008-01-01", "2008-01-31"), WithToday(date.MustParse("2008-01-15")))
		for _, txn := range v.Transactions {
			assert.NotEqual(t, BudgetSpawn, txn.Kind)
		}
	})
}

func TestCanReconcile(t *testing.T) {
	f := newFixture(t)
	f.add(t, "2008-01-10", f.salary, f.checking, "100")

	euro := ledger.NewTransaction(date.MustParse("2008-01-11"))
	euro.Splits = []ledger.Split{
		{AccountID: f.checking.ID, Amount: ledger.MustParseAmount("10 EUR")},
		{AccountID: f.salary.ID, Amount: ledger.MustParseAmount("-10 EUR")},
	}
	assert.NoError(t, f.book.AddTransaction(euro, -1))

	v := Cook(context.Background(), f.book, date.MonthRange(date.MustParse("2008-01-01")))
	checking := v.Ledger(f.checking.ID)
	assert.True(t, checking.CanReconcile(checking.Entries[0]))
	assert.True(t, checking.Entries[1].Foreign)
	assert.False(t, checking.CanReconcile(checking.Entries[1]))
	assert.True(t, checking.MixedCurrencies)
	assertAmount(t, "100", checking.Ending)

	salary := v.Ledger(f.salary.ID)
	assert.False(t, salary.CanReconcile(salary.Entries[0]))
}

func TestForeignAmountsStayOutOfBalances(t *testing.T) {
	f := newFixture(t)
	euro := ledger.NewTransaction(date.MustParse("2008-01-11"))
	euro.Splits = []ledger.Split{
		{AccountID: f.checking.ID, Amount: ledger.MustParseAmount("10 EUR")},
		{AccountID: f.salary.ID, Amount: ledger.MustParseAmount("-10 EUR")},
	}
	assert.NoError(t, f.book.AddTransaction(euro, -1))

	table := rates.NewTable()
	table.Set("EUR", "USD", date.MustParse("2008-01-01"), decimal.RequireFromString("1.5"))

	v := Cook(context.Background(), f.book, date.MonthRange(date.MustParse("2008-01-01")), WithRates(table))
	checking := v.Ledger(f.checking.ID)
	assert.True(t, checking.MixedCurrencies)
	assert.Equal(t, 1, len(checking.Entries))
	assertAmount(t, "0", checking.Ending)
}

func TestBudgetConvertsForeignSpending(t *testing.T) {
	f := newFixture(t)
	budget := ledger.NewBudget(f.food.ID, usd("100"), ledger.Recurrence{
		Start: date.MustParse("2008-01-01"), Type: ledger.Monthly, Every: 1,
	})
	assert.NoError(t, f.book.AddBudget(budget))

	euro := ledger.NewTransaction(date.MustParse("2008-01-11"))
	euro.Splits = []ledger.Split{
		{AccountID: f.food.ID, Amount: ledger.MustParseAmount("20 EUR")},
		{AccountID: f.checking.ID, Amount: ledger.MustParseAmount("-20 EUR")},
	}
	assert.NoError(t, f.book.AddTransaction(euro, -1))

	table := rates.NewTable()
	table.Set("EUR", "USD", date.MustParse("2008-01-01"), decimal.RequireFromString("1.5"))

	v := Cook(context.Background(), f.book, date.MonthRange(date.MustParse("2008-01-01")),
		WithRates(table), WithToday(date.MustParse("2008-01-15")))
	spawn := v.Transaction(BudgetSpawnID(budget.ID, date.MustParse("2008-01-01")))
	assert.NotZero(t, spawn)
	assertAmount(t, "70", spawn.Amount())
	assert.Equal(t, "", spawn.Splits[1].AccountID)
}

func TestReconciledBalance(t *testing.T) {
	f := newFixture(t)
	txn := f.add(t, "2008-01-10", f.salary, f.checking, "100")
	f.add(t, "2008-01-11", f.salary, f.checking, "20")

	reconciled := txn.Clone()
	reconciled.Splits[0].ReconciliationDate = date.MustParse("2008-01-10")
	assert.NoError(t, f.book.UpdateTransaction(reconciled))

	v := Cook(context.Background(), f.book, date.MonthRange(date.MustParse("2008-01-01")))
	checking := v.Ledger(f.checking.ID)
	assert.True(t, checking.Entries[0].IsReconciled())
	assertAmount(t, "100", checking.Entries[1].ReconciledBalance)
	assertAmount(t, "120", checking.Entries[1].Balance)
	assert.Equal(t, checking.Entries[1], checking.Find(checking.Entries[1].Txn.ID))
}
