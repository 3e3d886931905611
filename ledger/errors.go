package ledger

import (
	"errors"
	"fmt"

	"github.com/robinvdvleuten/moneybook/date"
)

// Error categories. Every typed error below matches exactly one of them with errors.Is.
var (
	ErrValidation   = errors.New("validation failed")
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
)

// DuplicateNameError is returned when an account or group name is already taken.
type DuplicateNameError struct {
	Kind Kind
	Name string
}

func (e *DuplicateNameError) Error() string {
	return fmt.Sprintf("%s name %q is already in use", e.Kind, e.Name)
}

func (e *DuplicateNameError) Is(target error) bool { return target == ErrValidation }

func (e *DuplicateNameError) GetName() string { return e.Name }

// ImbalancedError is returned when a transaction doesn't balance and there is more
// than one unassigned split that could absorb the difference.
type ImbalancedError struct {
	Date       date.Date
	Imbalance  Amount
	Unassigned int
}

func (e *ImbalancedError) Error() string {
	return fmt.Sprintf("transaction does not balance (%s off, %d unassigned splits)",
		e.Imbalance, e.Unassigned)
}

func (e *ImbalancedError) Is(target error) bool { return target == ErrValidation }

func (e *ImbalancedError) GetDate() date.Date { return e.Date }

// CurrencyMismatchError is returned when amounts of different currencies are combined.
type CurrencyMismatchError struct {
	Left, Right string
}

func (e *CurrencyMismatchError) Error() string {
	return fmt.Sprintf("cannot combine %s and %s amounts", e.Left, e.Right)
}

func (e *CurrencyMismatchError) Is(target error) bool { return target == ErrValidation }

// GroupTypeMismatchError is returned when an account is put into a group of another type.
type GroupTypeMismatchError struct {
	Account   string
	Group     string
	Expected  AccountType
	GroupType AccountType
}

func (e *GroupTypeMismatchError) Error() string {
	return fmt.Sprintf("cannot put %s account %q into %s group %q",
		e.Expected, e.Account, e.GroupType, e.Group)
}

func (e *GroupTypeMismatchError) Is(target error) bool { return target == ErrValidation }

// NotFoundError is returned when an id doesn't resolve to an entity.
type NotFoundError struct {
	Kind Kind
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.ID)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// InvalidInputError is returned when a field value can't be parsed.
type InvalidInputError struct {
	Field string
	Value string
	Err   error
}

func (e *InvalidInputError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid %s %q: %v", e.Field, e.Value, e.Err)
	}
	return fmt.Sprintf("invalid %s %q", e.Field, e.Value)
}

func (e *InvalidInputError) Is(target error) bool { return target == ErrInvalidInput }

func (e *InvalidInputError) Unwrap() error { return e.Err }

func (e *InvalidInputError) GetField() string { return e.Field }
