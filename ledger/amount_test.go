package ledger

import (
	"errors"
	"testing"

	"github.com/alecthomas/assert/v2"
	"github.com/shopspring/decimal"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		input       string
		currency    string
		autoDecimal bool
		want        string
		wantCur     string
		wantErr     bool
	}{
		{input: "42", currency: "USD", want: "42", wantCur: "USD"},
		{input: "-12.50", currency: "USD", want: "-12.5", wantCur: "USD"},
		{input: "EUR 42", currency: "USD", want: "42", wantCur: "EUR"},
		{input: "42 eur", currency: "USD", want: "42", wantCur: "EUR"},
		{input: "1,234.56", currency: "CAD", want: "1234.56", wantCur: "CAD"},
		{input: "", currency: "USD", want: "0", wantCur: "USD"},
		{input: "1234", currency: "USD", autoDecimal: true, want: "12.34", wantCur: "USD"},
		{input: "12.5", currency: "USD", autoDecimal: true, want: "12.5", wantCur: "USD"},
		{input: "1234", currency: "JPY", autoDecimal: true, want: "1234", wantCur: "JPY"},
		{input: "abc", currency: "USD", wantErr: true},
		{input: "12 34 56", currency: "USD", wantErr: true},
		{input: "12 dollars", currency: "USD", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseAmount(tt.input, tt.currency, tt.autoDecimal)
			if tt.wantErr {
				assert.Error(t, err)
				assert.True(t, errors.Is(err, ErrInvalidInput))
				return
			}
			assert.NoError(t, err)
			assert.True(t, got.Value.Equal(decimal.RequireFromString(tt.want)), "got %s", got)
			assert.Equal(t, tt.wantCur, got.Currency)
		})
	}
}

func TestAmountFormat(t *testing.T) {
	assert.Equal(t, "EUR 42.00", MustParseAmount("42 EUR").Format(true))
	assert.Equal(t, "42.00", MustParseAmount("42 EUR").Format(false))
	assert.Equal(t, "JPY 1234", MustParseAmount("1234 JPY").Format(true))
	assert.Equal(t, "-3.50 USD", MustParseAmount("-3.5 USD").String())
}

func TestAmountAdd(t *testing.T) {
	sum, err := MustParseAmount("40 USD").Add(MustParseAmount("2 USD"))
	assert.NoError(t, err)
	assert.True(t, sum.Equal(MustParseAmount("42 USD")))

	sum, err = Amount{}.Add(MustParseAmount("42 EUR"))
	assert.NoError(t, err)
	assert.Equal(t, "EUR", sum.Currency)

	_, err = MustParseAmount("1 USD").Add(MustParseAmount("1 EUR"))
	var mismatch *CurrencyMismatchError
	assert.True(t, errors.As(err, &mismatch))
	assert.True(t, errors.Is(err, ErrValidation))
}

func TestAmountWithoutCurrencyDoesNotMix(t *testing.T) {
	bare, err := ParseAmount("100", "", false)
	assert.NoError(t, err)

	for _, other := range []Amount{MustParseAmount("5 EUR"), MustParseAmount("5 USD")} {
		_, err := bare.Add(other)
		var mismatch *CurrencyMismatchError
		assert.True(t, errors.As(err, &mismatch), "adding %s", other)

		_, err = other.Add(bare)
		assert.True(t, errors.As(err, &mismatch), "adding to %s", other)
	}

	sum, err := bare.Add(Zero("EUR"))
	assert.NoError(t, err)
	assert.Equal(t, "", sum.Currency)
}

func TestMustParseAmountRequiresCurrency(t *testing.T) {
	assert.Panics(t, func() { MustParseAmount("100") })
	assert.Equal(t, "EUR", MustParseAmount("100 EUR").Currency)
}

func TestAmountEqualIgnoresCurrencyOfZero(t *testing.T) {
	assert.True(t, Zero("USD").Equal(Zero("EUR")))
	assert.True(t, Amount{}.Equal(Zero("USD")))
	assert.False(t, MustParseAmount("1 USD").Equal(MustParseAmount("1 EUR")))
}

func TestAmountConvert(t *testing.T) {
	got := MustParseAmount("10 EUR").Convert("USD", decimal.RequireFromString("1.4729"))
	assert.Equal(t, "14.73 USD", got.String())
}

func TestToleranceFor(t *testing.T) {
	assert.Equal(t, "0.005", ToleranceFor("USD").String())
	assert.Equal(t, "0.5", ToleranceFor("JPY").String())
}

func TestSum(t *testing.T) {
	total, err := Sum(MustParseAmount("1 USD"), MustParseAmount("2 USD"), Amount{})
	assert.NoError(t, err)
	assert.True(t, total.Equal(MustParseAmount("3 USD")))

	_, err = Sum(MustParseAmount("1 USD"), MustParseAmount("2 EUR"))
	assert.Error(t, err)
}
