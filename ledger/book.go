package ledger

import (
	"fmt"
	"slices"
	"strings"
)

// Kind identifies an entity collection of a Book.
type Kind int

const (
	KindAccount Kind = iota
	KindGroup
	KindTransaction
	KindSchedule
	KindBudget
)

var kindNames = [...]string{"account", "group", "transaction", "schedule", "budget"}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// Ref points at one entity of a Book.
type Ref struct {
	Kind Kind
	ID   string
}

func (r Ref) String() string { return r.Kind.String() + ":" + r.ID }

// Book is the entity graph: accounts, groups, transactions, schedules and budgets.
//
// Every mutating method reports the refs it is about to change to the watcher
// installed with Watch before changing anything. Entities returned by getters
// are owned by the book and must not be modified; clone them, modify the clone
// and pass it back through an Update method.
type Book struct {
	accounts     collection[Account, *Account]
	groups       collection[Group, *Group]
	transactions collection[Transaction, *Transaction]
	schedules    collection[Schedule, *Schedule]
	budgets      collection[Budget, *Budget]

	watch func(Ref)
}

// NewBook returns an empty book.
func NewBook() *Book {
	b := &Book{}
	b.accounts.reindex(0)
	b.groups.reindex(0)
	b.transactions.reindex(0)
	b.schedules.reindex(0)
	b.budgets.reindex(0)
	return b
}

// Watch installs fn to be called with every ref about to be mutated. The
// returned function removes it again. Only one watcher is active at a time.
func (b *Book) Watch(fn func(Ref)) (stop func()) {
	prev := b.watch
	b.watch = fn
	return func() { b.watch = prev }
}

func (b *Book) touch(kind Kind, id string) {
	if b.watch != nil {
		b.watch(Ref{Kind: kind, ID: id})
	}
}

// Clone returns a deep copy of the book without its watcher.
func (b *Book) Clone() *Book {
	return &Book{
		accounts:     b.accounts.clone(),
		groups:       b.groups.clone(),
		transactions: b.transactions.clone(),
		schedules:    b.schedules.clone(),
		budgets:      b.budgets.clone(),
	}
}

// Equal reports whether both books hold the same entities in the same order.
func (b *Book) Equal(o *Book) bool {
	return b.accounts.equal(&o.accounts) &&
		b.groups.equal(&o.groups) &&
		b.transactions.equal(&o.transactions) &&
		b.schedules.equal(&o.schedules) &&
		b.budgets.equal(&o.budgets)
}

// Accounts

func (b *Book) Accounts() []*Account { return b.accounts.all() }

func (b *Book) Account(id string) *Account { return b.accounts.get(id) }

// AccountByName finds an account by name, ignoring case.
func (b *Book) AccountByName(name string) *Account {
	key := normalizeName(name)
	for _, a := range b.accounts.items {
		if normalizeName(a.Name) == key {
			return a
		}
	}
	return nil
}

// AccountByNumber finds an account by its account number.
func (b *Book) AccountByNumber(number string) *Account {
	if number == "" {
		return nil
	}
	for _, a := range b.accounts.items {
		if a.Number == number {
			return a
		}
	}
	return nil
}

func (b *Book) checkAccount(a *Account) error {
	if strings.TrimSpace(a.Name) == "" {
		return &InvalidInputError{Field: "account name", Value: a.Name}
	}
	if other := b.AccountByName(a.Name); other != nil && other.ID != a.ID {
		return &DuplicateNameError{Kind: KindAccount, Name: a.Name}
	}
	if a.GroupID != "" {
		g := b.groups.get(a.GroupID)
		if g == nil {
			return &NotFoundError{Kind: KindGroup, ID: a.GroupID}
		}
		if g.Type != a.Type {
			return &GroupTypeMismatchError{Account: a.Name, Group: g.Name, Expected: a.Type, GroupType: g.Type}
		}
	}
	return nil
}

// AddAccount appends an account. Names are unique, ignoring case.
func (b *Book) AddAccount(a *Account) error {
	if err := b.checkAccount(a); err != nil {
		return err
	}
	b.touch(KindAccount, a.ID)
	b.accounts.insert(a, -1)
	return nil
}

// UpdateAccount replaces the account with the same id.
func (b *Book) UpdateAccount(a *Account) error {
	if b.accounts.get(a.ID) == nil {
		return &NotFoundError{Kind: KindAccount, ID: a.ID}
	}
	if err := b.checkAccount(a); err != nil {
		return err
	}
	b.touch(KindAccount, a.ID)
	b.accounts.replace(a)
	return nil
}

// RemoveAccount removes an account. Splits posting to it are left alone.
func (b *Book) RemoveAccount(id string) error {
	if b.accounts.get(id) == nil {
		return &NotFoundError{Kind: KindAccount, ID: id}
	}
	b.touch(KindAccount, id)
	b.accounts.remove(id)
	return nil
}

// Groups

func (b *Book) Groups() []*Group { return b.groups.all() }

func (b *Book) Group(id string) *Group { return b.groups.get(id) }

// GroupByName finds a group of type typ by name, ignoring case.
func (b *Book) GroupByName(name string, typ AccountType) *Group {
	key := normalizeName(name)
	for _, g := range b.groups.items {
		if g.Type == typ && normalizeName(g.Name) == key {
			return g
		}
	}
	return nil
}

func (b *Book) checkGroup(g *Group) error {
	if strings.TrimSpace(g.Name) == "" {
		return &InvalidInputError{Field: "group name", Value: g.Name}
	}
	if other := b.GroupByName(g.Name, g.Type); other != nil && other.ID != g.ID {
		return &DuplicateNameError{Kind: KindGroup, Name: g.Name}
	}
	return nil
}

// AddGroup appends a group. Names are unique per account type.
func (b *Book) AddGroup(g *Group) error {
	if err := b.checkGroup(g); err != nil {
		return err
	}
	b.touch(KindGroup, g.ID)
	b.groups.insert(g, -1)
	return nil
}

// UpdateGroup replaces the group with the same id. The type of a group is fixed.
func (b *Book) UpdateGroup(g *Group) error {
	old := b.groups.get(g.ID)
	if old == nil {
		return &NotFoundError{Kind: KindGroup, ID: g.ID}
	}
	if old.Type != g.Type {
		return &GroupTypeMismatchError{Group: g.Name, Expected: old.Type, GroupType: g.Type}
	}
	if err := b.checkGroup(g); err != nil {
		return err
	}
	b.touch(KindGroup, g.ID)
	b.groups.replace(g)
	return nil
}

// RemoveGroup removes a group and moves its accounts out of it.
func (b *Book) RemoveGroup(id string) error {
	if b.groups.get(id) == nil {
		return &NotFoundError{Kind: KindGroup, ID: id}
	}
	for _, a := range b.accounts.items {
		if a.GroupID == id {
			b.touch(KindAccount, a.ID)
			ungrouped := a.Clone()
			ungrouped.GroupID = ""
			b.accounts.replace(ungrouped)
		}
	}
	b.touch(KindGroup, id)
	b.groups.remove(id)
	return nil
}

// Transactions

// Transactions returns the real transactions in book order.
func (b *Book) Transactions() []*Transaction { return b.transactions.all() }

func (b *Book) Transaction(id string) *Transaction { return b.transactions.get(id) }

// TransactionIndex returns the book order position of a transaction, or -1.
func (b *Book) TransactionIndex(id string) int {
	if i, ok := b.transactions.position(id); ok {
		return i
	}
	return -1
}

// AddTransaction inserts a transaction at index at, appending when at is -1.
func (b *Book) AddTransaction(t *Transaction, at int) error {
	if b.transactions.get(t.ID) != nil {
		return fmt.Errorf("transaction %q already exists", t.ID)
	}
	b.touch(KindTransaction, t.ID)
	b.transactions.insert(t, at)
	return nil
}

// UpdateTransaction replaces the transaction with the same id.
func (b *Book) UpdateTransaction(t *Transaction) error {
	if b.transactions.get(t.ID) == nil {
		return &NotFoundError{Kind: KindTransaction, ID: t.ID}
	}
	b.touch(KindTransaction, t.ID)
	b.transactions.replace(t)
	return nil
}

// RemoveTransaction removes a transaction.
func (b *Book) RemoveTransaction(id string) error {
	if b.transactions.get(id) == nil {
		return &NotFoundError{Kind: KindTransaction, ID: id}
	}
	b.touch(KindTransaction, id)
	b.transactions.remove(id)
	return nil
}

// Schedules

func (b *Book) Schedules() []*Schedule { return b.schedules.all() }

func (b *Book) Schedule(id string) *Schedule { return b.schedules.get(id) }

// AddSchedule appends a schedule.
func (b *Book) AddSchedule(s *Schedule) error {
	if err := s.Rule.Validate(); err != nil {
		return err
	}
	b.touch(KindSchedule, s.ID)
	b.schedules.insert(s, -1)
	return nil
}

// UpdateSchedule replaces the schedule with the same id.
func (b *Book) UpdateSchedule(s *Schedule) error {
	if b.schedules.get(s.ID) == nil {
		return &NotFoundError{Kind: KindSchedule, ID: s.ID}
	}
	if err := s.Rule.Validate(); err != nil {
		return err
	}
	b.touch(KindSchedule, s.ID)
	b.schedules.replace(s)
	return nil
}

// RemoveSchedule removes a schedule together with its exceptions.
func (b *Book) RemoveSchedule(id string) error {
	if b.schedules.get(id) == nil {
		return &NotFoundError{Kind: KindSchedule, ID: id}
	}
	b.touch(KindSchedule, id)
	b.schedules.remove(id)
	return nil
}

// Budgets

func (b *Book) Budgets() []*Budget { return b.budgets.all() }

func (b *Book) Budget(id string) *Budget { return b.budgets.get(id) }

func (b *Book) checkBudget(bg *Budget) error {
	a := b.accounts.get(bg.AccountID)
	if a == nil {
		return &NotFoundError{Kind: KindAccount, ID: bg.AccountID}
	}
	if a.Type.IsBalanceSheet() {
		return &InvalidInputError{Field: "budget account", Value: a.Name}
	}
	if bg.TargetID != "" {
		target := b.accounts.get(bg.TargetID)
		if target == nil {
			return &NotFoundError{Kind: KindAccount, ID: bg.TargetID}
		}
		if !target.Type.IsBalanceSheet() {
			return &InvalidInputError{Field: "budget target", Value: target.Name}
		}
	}
	return bg.Rule.Validate()
}

// AddBudget appends a budget. Budgets only apply to income and expense accounts.
func (b *Book) AddBudget(bg *Budget) error {
	if err := b.checkBudget(bg); err != nil {
		return err
	}
	b.touch(KindBudget, bg.ID)
	b.budgets.insert(bg, -1)
	return nil
}

// UpdateBudget replaces the budget with the same id.
func (b *Book) UpdateBudget(bg *Budget) error {
	if b.budgets.get(bg.ID) == nil {
		return &NotFoundError{Kind: KindBudget, ID: bg.ID}
	}
	if err := b.checkBudget(bg); err != nil {
		return err
	}
	b.touch(KindBudget, bg.ID)
	b.budgets.replace(bg)
	return nil
}

// RemoveBudget removes a budget.
func (b *Book) RemoveBudget(id string) error {
	if b.budgets.get(id) == nil {
		return &NotFoundError{Kind: KindBudget, ID: id}
	}
	b.touch(KindBudget, id)
	b.budgets.remove(id)
	return nil
}

// Refs returns a ref for every entity of the book.
func (b *Book) Refs() []Ref {
	var refs []Ref
	for _, a := range b.accounts.items {
		refs = append(refs, Ref{KindAccount, a.ID})
	}
	for _, g := range b.groups.items {
		refs = append(refs, Ref{KindGroup, g.ID})
	}
	for _, t := range b.transactions.items {
		refs = append(refs, Ref{KindTransaction, t.ID})
	}
	for _, s := range b.schedules.items {
		refs = append(refs, Ref{KindSchedule, s.ID})
	}
	for _, bg := range b.budgets.items {
		refs = append(refs, Ref{KindBudget, bg.ID})
	}
	return refs
}

// AccountsOfType returns the accounts of one type in book order.
func (b *Book) AccountsOfType(typ AccountType) []*Account {
	return slices.DeleteFunc(b.accounts.all(), func(a *Account) bool { return a.Type != typ })
}
