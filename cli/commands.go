package cli

var (
	Version   = ""
	CommitSHA = ""
)

// Globals defines global flags available to all commands.
type Globals struct {
	Telemetry bool   `help:"Show timing telemetry for operations."`
	Verbose   bool   `help:"Log document activity to stderr." short:"v"`
	Config    string `help:"YAML configuration file." type:"path" env:"MONEYBOOK_CONFIG"`
}

type Commands struct {
	Globals

	Init      InitCmd      `cmd:"" help:"Create a new moneybook document."`
	Accounts  AccountsCmd  `cmd:"" help:"List accounts with their balances."`
	Ledger    LedgerCmd    `cmd:"" help:"Show the entries of an account."`
	Schedules SchedulesCmd `cmd:"" help:"List schedules and budgets."`
	Doctor    DoctorCmd    `cmd:"" help:"Doctor utilities for debugging moneybook documents."`
	Watch     WatchCmd     `cmd:"" help:"Show an account ledger and refresh it whenever the file changes."`
	Web       WebCmd       `cmd:"" help:"Start a web server."`
}
