// Large Moneybook Document Generator
//
// This tool generates a large moneybook document for performance testing and
// profiling. It creates realistic transactions, schedules and budgets to
// stress-test loading, cooking and undo snapshots.
//
// Usage:
//
//	go run main.go > large.moneybook
//	go run main.go 200000 > large.moneybook  # Specify the number of transactions
package main

import (
	"context"
	"fmt"
	"math/rand/v2"
	"os"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/robinvdvleuten/moneybook/date"
	"github.com/robinvdvleuten/moneybook/document"
	"github.com/robinvdvleuten/moneybook/ledger"
)

const defaultTransactions = 50_000

var (
	accounts = []struct {
		name string
		typ  ledger.AccountType
	}{
		{"Checking", ledger.Asset},
		{"Savings", ledger.Asset},
		{"Brokerage Cash", ledger.Asset},
		{"Visa", ledger.Liability},
		{"Amex", ledger.Liability},
		{"Salary", ledger.Income},
		{"Bonus", ledger.Income},
		{"Dividends", ledger.Income},
		{"Groceries", ledger.Expense},
		{"Restaurant", ledger.Expense},
		{"Rent", ledger.Expense},
		{"Utilities", ledger.Expense},
		{"Gas", ledger.Expense},
		{"Transit", ledger.Expense},
		{"Clothing", ledger.Expense},
		{"Electronics", ledger.Expense},
		{"Entertainment", ledger.Expense},
		{"Medical", ledger.Expense},
		{"Taxes", ledger.Expense},
	}

	payees = []string{
		"Whole Foods", "Safeway", "Trader Joe's", "Costco",
		"Shell Gas", "Chevron", "BART", "Uber",
		"Landlord", "PG&E", "Comcast", "AT&T",
		"Amazon", "Target", "Best Buy", "Apple Store",
		"Netflix", "Spotify", "AMC Theaters",
		"Employer Inc", "Fidelity", "Vanguard",
	}

	descriptions = []string{
		"Grocery shopping", "Fuel purchase", "Rent payment",
		"Salary deposit", "Utility bill", "Online purchase",
		"Restaurant dinner", "Coffee", "Monthly subscription",
		"Medical appointment", "Dividend payment", "Tax payment",
	}
)

func main() {
	count := defaultTransactions
	if len(os.Args) > 1 {
		if n, err := strconv.Atoi(os.Args[1]); err == nil {
			count = n
		}
	}

	ctx := context.Background()
	doc := document.New(ctx)
	rng := rand.New(rand.NewPCG(2008, 6))

	batch := generate(rng, count)
	result, err := doc.Import(ctx, batch)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if err := addRecurring(ctx, doc); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if err := doc.Save(os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	fmt.Fprintf(os.Stderr, "Generated %d accounts and %d transactions\n", result.AccountsCreated, result.Transactions)
}

// generate builds count transactions between a balance sheet account and a
// random other account, a few days apart starting 2015-01-01.
func generate(rng *rand.Rand, count int) document.Batch {
	var b document.Batch
	for _, a := range accounts {
		b.Accounts = append(b.Accounts, ledger.NewAccount(a.name, a.typ, "USD"))
	}

	on := date.New(2015, 1, 1)
	for i := 0; i < count; i++ {
		if rng.IntN(4) == 0 {
			on = on.AddDays(1)
		}

		from := b.Accounts[rng.IntN(5)]
		to := b.Accounts[rng.IntN(len(b.Accounts))]
		for to.ID == from.ID {
			to = b.Accounts[rng.IntN(len(b.Accounts))]
		}

		amount := ledger.NewAmount(decimal.New(rng.Int64N(500_00)+1, -2), "USD")
		txn := ledger.NewTransaction(on)
		txn.Description = descriptions[rng.IntN(len(descriptions))]
		txn.Payee = payees[rng.IntN(len(payees))]
		if rng.IntN(10) == 0 {
			txn.CheckNumber = strconv.Itoa(1000 + i)
		}
		txn.Splits = []ledger.Split{
			{AccountID: to.ID, Amount: amount},
			{AccountID: from.ID, Amount: amount.Neg()},
		}
		if rng.IntN(3) == 0 {
			txn.Splits[1].ReconciliationDate = on
		}
		b.Transactions = append(b.Transactions, txn)
	}
	return b
}

// addRecurring adds a monthly rent schedule, a biweekly salary schedule and
// a monthly groceries budget.
func addRecurring(ctx context.Context, doc *document.Document) error {
	byName := func(name string) string { return doc.AccountByName(name).ID }
	start := date.New(2015, 1, 1)

	recurring := []struct {
		description string
		from, to    string
		amount      string
		rule        ledger.Recurrence
	}{
		{"Rent payment", "Checking", "Rent", "1450", ledger.Recurrence{Start: start, Type: ledger.Monthly, Every: 1}},
		{"Salary deposit", "Salary", "Checking", "2300", ledger.Recurrence{Start: start.AddDays(4), Type: ledger.Weekly, Every: 2}},
	}
	for _, r := range recurring {
		amount := ledger.MustParseAmount(r.amount + " USD")
		template := ledger.NewTransaction(r.rule.Start)
		template.Description = r.description
		template.Splits = []ledger.Split{
			{AccountID: byName(r.to), Amount: amount},
			{AccountID: byName(r.from), Amount: amount.Neg()},
		}
		if err := doc.AddSchedule(ctx, ledger.NewSchedule(template, r.rule)); err != nil {
			return err
		}
	}

	budget := ledger.NewBudget(byName("Groceries"), ledger.MustParseAmount("600 USD"),
		ledger.Recurrence{Start: start, Type: ledger.Monthly, Every: 1})
	budget.TargetID = byName("Checking")
	return doc.AddBudget(ctx, budget)
}
