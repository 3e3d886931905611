package ledger

import (
	"fmt"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// Amount is a currency tagged decimal value.
//
// The zero Amount has no currency and is compatible with every currency, so that
// "nothing" can be added to anything without a conversion step.
type Amount struct {
	Value    decimal.Decimal
	Currency string
}

// NewAmount creates an amount in the given currency.
func NewAmount(value decimal.Decimal, currency string) Amount {
	return Amount{Value: value, Currency: strings.ToUpper(currency)}
}

// Zero returns a zero amount tagged with currency.
func Zero(currency string) Amount { return NewAmount(decimal.Zero, currency) }

// MustParseAmount parses "42.00 USD" style text and panics on error or when
// the text carries no currency code.
// Use only in tests or when you're certain the amount is valid
func MustParseAmount(s string) Amount {
	a, err := ParseAmount(s, "", false)
	if err != nil {
		panic(err)
	}
	if a.Currency == "" {
		panic(&InvalidInputError{Field: "currency", Value: s})
	}
	return a
}

// IsZero reports whether the value is zero, whatever the currency.
func (a Amount) IsZero() bool { return a.Value.IsZero() }

// Sign returns -1, 0 or +1.
func (a Amount) Sign() int { return a.Value.Sign() }

// Neg returns the negated amount.
func (a Amount) Neg() Amount { return Amount{Value: a.Value.Neg(), Currency: a.Currency} }

// Abs returns the absolute amount.
func (a Amount) Abs() Amount { return Amount{Value: a.Value.Abs(), Currency: a.Currency} }

// Add returns a+b. Both amounts must share a currency unless one of them is zero.
func (a Amount) Add(b Amount) (Amount, error) {
	cur, err := commonCurrency(a, b)
	if err != nil {
		return Amount{}, err
	}
	return Amount{Value: a.Value.Add(b.Value), Currency: cur}, nil
}

// Sub returns a-b with the same currency rules as Add.
func (a Amount) Sub(b Amount) (Amount, error) { return a.Add(b.Neg()) }

// Equal reports whether both amounts hold the same value in the same currency.
// Zero amounts are equal regardless of their currency.
func (a Amount) Equal(b Amount) bool {
	if a.IsZero() && b.IsZero() {
		return true
	}
	return a.Currency == b.Currency && a.Value.Equal(b.Value)
}

// Convert returns the amount expressed in currency to, given the rate from
// a.Currency to to.
func (a Amount) Convert(to string, rate decimal.Decimal) Amount {
	if a.Currency == to {
		return a
	}
	return NewAmount(a.Value.Mul(rate), to).Round()
}

// Round rounds the value to the number of fraction digits of its currency.
func (a Amount) Round() Amount {
	return Amount{Value: a.Value.Round(int32(Fraction(a.Currency))), Currency: a.Currency}
}

// String formats the amount as "42.00 USD".
func (a Amount) String() string {
	if a.Currency == "" {
		return a.Format(false)
	}
	return a.Format(false) + " " + a.Currency
}

// Format formats the value with its currency fraction digits. With withCurrency,
// the currency code is prefixed: "EUR 42.00".
func (a Amount) Format(withCurrency bool) string {
	s := a.Value.StringFixed(int32(Fraction(a.Currency)))
	if withCurrency && a.Currency != "" {
		return a.Currency + " " + s
	}
	return s
}

func commonCurrency(a, b Amount) (string, error) {
	switch {
	case a.Currency == b.Currency:
		return a.Currency, nil
	case a.IsZero():
		return b.Currency, nil
	case b.IsZero():
		return a.Currency, nil
	default:
		return "", &CurrencyMismatchError{Left: a.Currency, Right: b.Currency}
	}
}

// Fraction returns the number of fraction digits used by a currency.
// Unknown and empty currencies use 2.
func Fraction(currency string) int {
	if currency == "" {
		return 2
	}
	// money.New never returns a nil currency, even for unknown codes
	return money.New(0, currency).Currency().Fraction
}

// IsKnownCurrency reports whether code is an ISO 4217 currency known to go-money.
func IsKnownCurrency(code string) bool {
	return money.GetCurrency(strings.ToUpper(code)) != nil
}

// ParseAmount parses user input such as "42", "-12.50", "EUR 42", "42 EUR" or
// "1,234.56". An empty string is a zero amount. Values without an explicit
// currency use defaultCurrency. With autoDecimal, input without a decimal point
// is shifted by the currency fraction digits ("1234" is 12.34).
func ParseAmount(s string, defaultCurrency string, autoDecimal bool) (Amount, error) {
	text := strings.TrimSpace(s)
	currency := strings.ToUpper(defaultCurrency)
	if text == "" {
		return Zero(currency), nil
	}

	fields := strings.Fields(text)
	switch len(fields) {
	case 1:
	case 2:
		switch {
		case isCurrencyCode(fields[0]):
			currency, text = strings.ToUpper(fields[0]), fields[1]
		case isCurrencyCode(fields[1]):
			currency, text = strings.ToUpper(fields[1]), fields[0]
		default:
			return Amount{}, &InvalidInputError{Field: "amount", Value: s}
		}
	default:
		return Amount{}, &InvalidInputError{Field: "amount", Value: s}
	}

	text = strings.ReplaceAll(text, ",", "")
	value, err := decimal.NewFromString(text)
	if err != nil {
		return Amount{}, &InvalidInputError{Field: "amount", Value: s, Err: err}
	}
	if autoDecimal && !strings.Contains(text, ".") {
		value = value.Shift(-int32(Fraction(currency)))
	}
	return NewAmount(value, currency), nil
}

func isCurrencyCode(s string) bool {
	if len(s) != 3 {
		return false
	}
	for _, r := range s {
		if (r < 'A' || r > 'Z') && (r < 'a' || r > 'z') {
			return false
		}
	}
	return true
}

// ToleranceFor returns half of the smallest unit of a currency. Converted sums
// within that tolerance of zero are considered balanced.
func ToleranceFor(currency string) decimal.Decimal {
	return decimal.New(5, -int32(Fraction(currency))-1)
}

// AmountEqual checks if two values are equal within tolerance
func AmountEqual(a, b decimal.Decimal, tolerance decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThanOrEqual(tolerance)
}

// Sum adds amounts of a single currency. It fails on the first mismatch.
func Sum(amounts ...Amount) (Amount, error) {
	var total Amount
	for _, a := range amounts {
		next, err := total.Add(a)
		if err != nil {
			return Amount{}, fmt.Errorf("sum: %w", err)
		}
		total = next
	}
	return total, nil
}
