package ledger

import (
	"fmt"
	"strings"
)

// AccountType classifies an account. Asset and Liability accounts are balance
// sheet accounts, Income and Expense accounts are income statement accounts.
type AccountType int

const (
	Asset AccountType = iota
	Liability
	Income
	Expense
)

var accountTypeNames = [...]string{"asset", "liability", "income", "expense"}

func (t AccountType) String() string {
	if t < 0 || int(t) >= len(accountTypeNames) {
		return fmt.Sprintf("AccountType(%d)", int(t))
	}
	return accountTypeNames[t]
}

// ParseAccountType parses "asset", "liability", "income" or "expense".
func ParseAccountType(s string) (AccountType, error) {
	for i, name := range accountTypeNames {
		if strings.EqualFold(name, s) {
			return AccountType(i), nil
		}
	}
	return 0, &InvalidInputError{Field: "account type", Value: s}
}

// MarshalText implements encoding.TextMarshaler.
func (t AccountType) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *AccountType) UnmarshalText(text []byte) error {
	parsed, err := ParseAccountType(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// IsBalanceSheet reports whether the type is Asset or Liability.
func (t AccountType) IsBalanceSheet() bool { return t == Asset || t == Liability }

// IsCreditNormal reports whether increases of this type are credits (negative amounts).
func (t AccountType) IsCreditNormal() bool { return t == Liability || t == Income }

// Account is a named bucket that splits post amounts into.
type Account struct {
	ID       string
	Name     string
	Type     AccountType
	Currency string
	Number   string
	Notes    string
	GroupID  string

	// AutoCreated accounts were created by typing an unknown name into a split.
	// They are removed again once no transaction references them.
	AutoCreated bool
}

// NewAccount returns an account with a fresh id.
func NewAccount(name string, typ AccountType, currency string) *Account {
	return &Account{ID: NewID(), Name: name, Type: typ, Currency: strings.ToUpper(currency)}
}

func (a *Account) EntityID() string { return a.ID }

// Clone returns a copy of the account.
func (a *Account) Clone() *Account {
	c := *a
	return &c
}

// Equal reports whether both accounts hold the same state.
func (a *Account) Equal(b *Account) bool { return *a == *b }

// DisplayName returns "number - name" for numbered accounts and the plain name otherwise.
func (a *Account) DisplayName() string {
	if a.Number == "" {
		return a.Name
	}
	return a.Number + " - " + a.Name
}

// Group is a named, typed folder for accounts.
type Group struct {
	ID   string
	Name string
	Type AccountType
}

// NewGroup returns a group with a fresh id.
func NewGroup(name string, typ AccountType) *Group {
	return &Group{ID: NewID(), Name: name, Type: typ}
}

func (g *Group) EntityID() string { return g.ID }

// Clone returns a copy of the group.
func (g *Group) Clone() *Group {
	c := *g
	return &c
}

// Equal reports whether both groups hold the same state.
func (g *Group) Equal(o *Group) bool { return *g == *o }

// normalizeName is the key used for case-insensitive name uniqueness.
func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// SplitDisplayName parses "4241 - name" into its number and name parts.
// Text without the separator is returned as a name.
func SplitDisplayName(text string) (number, name string) {
	text = strings.TrimSpace(text)
	if before, after, ok := strings.Cut(text, " - "); ok && isDigits(before) {
		return before, strings.TrimSpace(after)
	}
	return "", text
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
