// Package document ties the ledger, the undo log and the oven together.
//
// A Document owns the entity graph. Every public mutation runs inside an undo
// log record with a fixed description, and every change (including undo and
// redo) is followed by a new cook pass and a notification to subscribers.
//
// A Document is not safe for concurrent use. Hosts serving several goroutines
// must serialize access themselves.
package document

import (
	"context"

	"github.com/robinvdvleuten/moneybook/date"
	"github.com/robinvdvleuten/moneybook/ledger"
	"github.com/robinvdvleuten/moneybook/oven"
	"github.com/robinvdvleuten/moneybook/rates"
	"github.com/robinvdvleuten/moneybook/undo"
	"go.uber.org/zap"
)

// Action descriptions.
const (
	DescAddAccount           = "Add account"
	DescChangeAccount        = "Change account"
	DescRemoveAccount        = "Remove account"
	DescAddGroup             = "Add group"
	DescChangeGroup          = "Change group"
	DescRemoveGroup          = "Remove group"
	DescAddTransaction       = "Add transaction"
	DescChangeTransaction    = "Change transaction"
	DescRemoveTransaction    = "Remove transaction"
	DescDuplicateTransaction = "Duplicate transaction"
	DescMoveTransaction      = "Move transaction"
	DescMassEdit             = "Mass edit"
	DescChangeReconciliation = "Change reconciliation"
	DescAddSchedule          = "Add schedule"
	DescChangeSchedule       = "Change schedule"
	DescRemoveSchedule       = "Remove schedule"
	DescAddBudget            = "Add budget"
	DescChangeBudget         = "Change budget"
	DescRemoveBudget         = "Remove budget"
	DescImport               = "Import"
)

// Document is a single bookkeeping document.
type Document struct {
	book *ledger.Book
	log  *undo.Log
	view *oven.View

	rng   date.Range
	today date.Date
	rates rates.Source

	defaultCurrency  string
	dateFormat       string
	autoDecimalPlace bool

	savePoint *undo.Action
	path      string

	logger    *zap.Logger
	listeners map[int]func(Event)
	nextID    int
}

// Option configures a Document.
type Option func(*Document)

// WithRates sets the exchange rate source used for balancing and budgets.
func WithRates(src rates.Source) Option {
	return func(d *Document) { d.rates = src }
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger *zap.Logger) Option {
	return func(d *Document) { d.logger = logger }
}

// WithRange sets the initial date range of the view. Defaults to the current month.
func WithRange(rng date.Range) Option {
	return func(d *Document) { d.rng = rng }
}

// WithToday pins the date budgets are evaluated against.
func WithToday(today date.Date) Option {
	return func(d *Document) { d.today = today }
}

// WithDefaultCurrency sets the currency of amounts typed without one. Defaults to USD.
func WithDefaultCurrency(currency string) Option {
	return func(d *Document) { d.defaultCurrency = currency }
}

// WithDateFormat sets the layout dates are typed in. Defaults to "02/01/2006".
func WithDateFormat(layout string) Option {
	return func(d *Document) { d.dateFormat = layout }
}

// WithAutoDecimalPlace makes typed amounts without a decimal point use the
// currency fraction digits, so "1234" is 12.34.
func WithAutoDecimalPlace(enabled bool) Option {
	return func(d *Document) { d.autoDecimalPlace = enabled }
}

// New returns an empty document.
func New(ctx context.Context, opts ...Option) *Document {
	d := &Document{
		book:            ledger.NewBook(),
		defaultCurrency: "USD",
		dateFormat:      "02/01/2006",
		logger:          zap.NewNop(),
		listeners:       make(map[int]func(Event)),
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.today.IsZero() {
		d.today = date.Today()
	}
	if d.rng.From.IsZero() {
		d.rng = date.MonthRange(d.today)
	}
	d.log = d.newLog()
	d.cook(ctx)
	return d
}

func (d *Document) newLog() *undo.Log {
	return undo.New(d.book,
		undo.WithLogger(d.logger),
		undo.WithRemoveHook(func(refs []ledger.Ref) {
			d.notify(Event{Kind: EventRemoving, Refs: refs})
		}))
}

func (d *Document) cook(ctx context.Context) {
	opts := []oven.Option{oven.WithToday(d.today)}
	if d.rates != nil {
		opts = append(opts, oven.WithRates(d.rates))
	}
	d.view = oven.Cook(ctx, d.book, d.rng, opts...)
}

// record runs fn as one undoable action. When something changed, the view is
// recooked and subscribers are notified.
func (d *Document) record(ctx context.Context, description string, affected []ledger.Ref, fn func() error) error {
	recorded, err := d.log.Record(ctx, description, affected, fn)
	if err != nil {
		return err
	}
	if !recorded {
		d.logger.Debug("no-op action discarded", zap.String("description", description))
		return nil
	}
	d.cook(ctx)
	d.notify(Event{Kind: EventChanged, Description: description, Refs: d.log.Current().Refs()})
	return nil
}

// View returns the current cooked view.
func (d *Document) View() *oven.View { return d.view }

// Range returns the date range of the view.
func (d *Document) Range() date.Range { return d.rng }

// SetRange changes the date range of the view and recooks.
func (d *Document) SetRange(ctx context.Context, rng date.Range) {
	if rng == d.rng {
		return
	}
	d.rng = rng
	d.cook(ctx)
	d.notify(Event{Kind: EventRangeChanged})
}

// Today returns the date budgets are evaluated against.
func (d *Document) Today() date.Date { return d.today }

// DefaultCurrency returns the currency of amounts typed without one.
func (d *Document) DefaultCurrency() string { return d.defaultCurrency }

// Path returns the file the document was last loaded from or saved to.
func (d *Document) Path() string { return d.path }

// Undo reverts the last action.
func (d *Document) Undo(ctx context.Context) error {
	a, err := d.log.Undo(ctx)
	if err != nil {
		return err
	}
	d.cook(ctx)
	d.notify(Event{Kind: EventChanged, Description: a.Description, Refs: a.Refs()})
	return nil
}

// Redo reapplies the last undone action.
func (d *Document) Redo(ctx context.Context) error {
	a, err := d.log.Redo(ctx)
	if err != nil {
		return err
	}
	d.cook(ctx)
	d.notify(Event{Kind: EventChanged, Description: a.Description, Refs: a.Refs()})
	return nil
}

func (d *Document) CanUndo() bool { return d.log.CanUndo() }

func (d *Document) CanRedo() bool { return d.log.CanRedo() }

func (d *Document) UndoDescription() string { return d.log.UndoDescription() }

func (d *Document) RedoDescription() string { return d.log.RedoDescription() }

// History lists the undo history, oldest first.
func (d *Document) History() []undo.Entry { return d.log.History() }

// IsDirty reports whether the document moved away from its last save point,
// by recording, undoing or redoing.
func (d *Document) IsDirty() bool { return d.log.Current() != d.savePoint }

// MarkSaved makes the current state the save point.
func (d *Document) MarkSaved() { d.savePoint = d.log.Current() }

// Read access. Returned entities are copies.

func (d *Document) Accounts() []*ledger.Account { return cloneAll(d.book.Accounts()) }

func (d *Document) Account(id string) *ledger.Account { return cloneOne(d.book.Account(id)) }

// AccountByName resolves a name, a number or a "number - name" display name.
func (d *Document) AccountByName(name string) *ledger.Account {
	return cloneOne(d.lookupAccount(name))
}

func (d *Document) Groups() []*ledger.Group { return cloneAll(d.book.Groups()) }

func (d *Document) Transactions() []*ledger.Transaction { return cloneAll(d.book.Transactions()) }

func (d *Document) Transaction(id string) *ledger.Transaction {
	return cloneOne(d.book.Transaction(id))
}

func (d *Document) Schedules() []*ledger.Schedule { return cloneAll(d.book.Schedules()) }

func (d *Document) Schedule(id string) *ledger.Schedule { return cloneOne(d.book.Schedule(id)) }

func (d *Document) Budgets() []*ledger.Budget { return cloneAll(d.book.Budgets()) }

// Snapshot returns a deep copy of the entity graph.
func (d *Document) Snapshot() *ledger.Book { return d.book.Clone() }

type cloner[T any] interface {
	*T
	Clone() *T
}

func cloneOne[T any, P cloner[T]](p P) P {
	if p == nil {
		return nil
	}
	return P(p.Clone())
}

func cloneAll[T any, P cloner[T]](items []P) []P {
	out := make([]P, len(items))
	for i, p := range items {
		out[i] = P(p.Clone())
	}
	return out
}
