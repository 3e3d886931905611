package cli

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alecthomas/assert/v2"
	"github.com/alecthomas/kong"

	"github.com/robinvdvleuten/moneybook/date"
	"github.com/robinvdvleuten/moneybook/document"
	"github.com/robinvdvleuten/moneybook/ledger"
)

// run executes the command line args and returns what it printed.
func run(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()

	var cli Commands
	var out, errOut bytes.Buffer
	parser, err := kong.New(&cli,
		kong.Name("moneybook"),
		kong.Writers(&out, &errOut),
		kong.Bind(&cli.Globals),
		kong.Exit(func(int) { t.Fatalf("unexpected exit for %v", args) }),
	)
	assert.NoError(t, err)

	ctx, err := parser.Parse(args)
	assert.NoError(t, err)
	err = ctx.Run()
	return out.String(), errOut.String(), err
}

// writeBook saves a document with a numbered checking account, a groceries
// account, one purchase and a weekly rent schedule.
func writeBook(t *testing.T) string {
	t.Helper()
	ctx := context.Background()
	doc := document.New(ctx, document.WithToday(date.New(2008, 6, 20)))

	checking := ledger.NewAccount("Checking", ledger.Asset, "USD")
	checking.Number = "1000"
	assert.NoError(t, doc.AddAccount(ctx, checking))
	groceries := ledger.NewAccount("Groceries", ledger.Expense, "USD")
	assert.NoError(t, doc.AddAccount(ctx, groceries))

	amount := ledger.MustParseAmount("42 USD")
	txn := ledger.NewTransaction(date.New(2008, 6, 19))
	txn.Description = "Shopping"
	txn.Splits = []ledger.Split{
		{AccountID: groceries.ID, Amount: amount},
		{AccountID: checking.ID, Amount: amount.Neg()},
	}
	assert.NoError(t, doc.AddTransaction(ctx, txn))

	rent := ledger.NewTransaction(date.New(2008, 6, 2))
	rent.Description = "Rent"
	rent.Splits = []ledger.Split{
		{AccountID: groceries.ID, Amount: ledger.MustParseAmount("100 USD")},
		{AccountID: checking.ID, Amount: ledger.MustParseAmount("-100 USD")},
	}
	schedule := ledger.NewSchedule(rent, ledger.Recurrence{Start: date.New(2008, 6, 2), Type: ledger.Weekly, Every: 2})
	assert.NoError(t, doc.AddSchedule(ctx, schedule))

	path := filepath.Join(t.TempDir(), "book.moneybook")
	assert.NoError(t, doc.SaveToXML(ctx, path))
	return path
}

func TestInitCmd(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "new.moneybook")

	stdout, _, err := run(t, "init", path, "--checking", "Checking", "--checking", "Savings")
	assert.NoError(t, err)
	assert.Contains(t, stdout, "Created")

	doc := document.New(context.Background())
	assert.NoError(t, doc.LoadFromXML(context.Background(), path))
	assert.Equal(t, 2, len(doc.Accounts()))
	assert.Equal(t, ledger.Asset, doc.AccountByName("Savings").Type)

	t.Run("RefusesToOverwriteWithoutTerminal", func(t *testing.T) {
		_, _, err := run(t, "init", path)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "already exists")
	})

	t.Run("ForceOverwrites", func(t *testing.T) {
		_, _, err := run(t, "init", path, "--force")
		assert.NoError(t, err)
		assert.NoError(t, doc.LoadFromXML(context.Background(), path))
		assert.Equal(t, 0, len(doc.Accounts()))
	})
}

func TestAccountsCmd(t *testing.T) {
	stdout, _, err := run(t, "accounts", writeBook(t), "--period", "year")
	assert.NoError(t, err)

	lines := strings.Split(stdout, "\n")
	assert.Contains(t, lines[1], "Account")
	assert.Contains(t, stdout, "1000 - Checking")
	assert.Contains(t, stdout, "Groceries")
	assert.True(t, strings.Index(stdout, "Checking") < strings.Index(stdout, "Groceries"))
}

func TestLedgerCmd(t *testing.T) {
	path := writeBook(t)

	t.Run("ByName", func(t *testing.T) {
		stdout, _, err := run(t, "ledger", path, "Checking", "--from", "2008-06-01", "--to", "2008-06-30")
		assert.NoError(t, err)
		assert.Contains(t, stdout, "Previous balance")
		assert.Contains(t, stdout, "Shopping")
		assert.Contains(t, stdout, "Groceries")
		assert.Contains(t, stdout, "42.00")
		// spawns on 06-02, 06-16 and 06-30
		assert.Equal(t, 3, strings.Count(stdout, "Rent"))
		assert.Contains(t, stdout, "-342.00")
	})

	t.Run("ByNumberWithDateFormat", func(t *testing.T) {
		stdout, _, err := run(t, "ledger", path, "1000", "--from", "19/06/2008", "--to", "19/06/2008")
		assert.NoError(t, err)
		assert.Contains(t, stdout, "Shopping")
		assert.NotContains(t, stdout, "Rent")
		assert.Contains(t, stdout, "2008-06-19..2008-06-19")
	})

	t.Run("UnknownAccount", func(t *testing.T) {
		_, stderr, err := run(t, "ledger", path, "Savings")
		var cmdErr *CommandError
		assert.True(t, errors.As(err, &cmdErr))
		assert.Equal(t, 1, cmdErr.ExitCode())
		assert.Contains(t, stderr, `account "Savings" not found`)
	})

	t.Run("InvalidDate", func(t *testing.T) {
		_, stderr, err := run(t, "ledger", path, "Checking", "--from", "someday")
		assert.Error(t, err)
		assert.Contains(t, stderr, "check the from field")
	})

	t.Run("Telemetry", func(t *testing.T) {
		_, stderr, err := run(t, "--telemetry", "ledger", path, "Checking", "--from", "2008-06-01", "--to", "2008-06-30")
		assert.NoError(t, err)
		assert.Contains(t, stderr, "ledger book.moneybook")
		assert.Contains(t, stderr, "cook")
	})
}

func TestSchedulesCmd(t *testing.T) {
	stdout, _, err := run(t, "schedules", writeBook(t))
	assert.NoError(t, err)
	assert.Contains(t, stdout, "Rent")
	assert.Contains(t, stdout, "every 2 weekly")
	assert.Contains(t, stdout, "2008-06-02")
	assert.Contains(t, stdout, "USD 100.00")
	assert.Contains(t, stdout, "Budgets")
}

func TestDoctorDumpCmd(t *testing.T) {
	path := writeBook(t)

	stdout, _, err := run(t, "doctor", "dump", path)
	assert.NoError(t, err)
	assert.Contains(t, stdout, `"Checking"`)
	assert.Contains(t, stdout, `"Shopping"`)

	stdout, _, err = run(t, "doctor", "dump", path, "--cooked")
	assert.NoError(t, err)
	assert.Contains(t, stdout, "oven.Cooked")
}

func TestMissingFile(t *testing.T) {
	var cli Commands
	parser, err := kong.New(&cli, kong.Bind(&cli.Globals), kong.Writers(&bytes.Buffer{}, &bytes.Buffer{}))
	assert.NoError(t, err)

	_, err = parser.Parse([]string{"accounts", filepath.Join(t.TempDir(), "missing.moneybook")})
	assert.Error(t, err)
}

func TestConfigFlag(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "moneybook.yaml")
	assert.NoError(t, os.WriteFile(cfgPath, []byte("date_format: \"2006/01/02\"\n"), 0o600))

	stdout, _, err := run(t, "--config", cfgPath, "ledger", writeBook(t), "Checking", "--from", "2008/06/19", "--to", "2008/06/19")
	assert.NoError(t, err)
	assert.Contains(t, stdout, "Shopping")
}

func TestResolveRange(t *testing.T) {
	path := writeBook(t)
	_, _, err := run(t, "ledger", path, "Checking", "--from", "2008-07-01", "--to", "2008-06-01")
	assert.Error(t, err)
}
