package ledger

import (
	"testing"

	"github.com/alecthomas/assert/v2"
	"github.com/robinvdvleuten/moneybook/date"
)

func dates(strs ...string) []date.Date {
	out := make([]date.Date, len(strs))
	for i, s := range strs {
		out[i] = date.MustParse(s)
	}
	return out
}

func TestRecurrenceBetween(t *testing.T) {
	tests := []struct {
		name string
		rule Recurrence
		from string
		to   string
		want []date.Date
	}{
		{
			name: "daily",
			rule: Recurrence{Start: date.MustParse("2008-01-01"), Type: Daily, Every: 1},
			from: "2008-01-01", to: "2008-01-05",
			want: dates("2008-01-01", "2008-01-02", "2008-01-03", "2008-01-04", "2008-01-05"),
		},
		{
			name: "every other week",
			rule: Recurrence{Start: date.MustParse("2008-01-01"), Type: Weekly, Every: 2},
			from: "2008-01-01", to: "2008-02-01",
			want: dates("2008-01-01", "2008-01-15", "2008-01-29"),
		},
		{
			name: "monthly clamps without drifting",
			rule: Recurrence{Start: date.MustParse("2008-01-31"), Type: Monthly, Every: 1},
			from: "2008-01-01", to: "2008-04-30",
			want: dates("2008-01-31", "2008-02-29", "2008-03-31", "2008-04-30"),
		},
		{
			name: "yearly on leap day",
			rule: Recurrence{Start: date.MustParse("2008-02-29"), Type: Yearly, Every: 1},
			from: "2008-01-01", to: "2012-12-31",
			want: dates("2008-02-29", "2009-02-28", "2010-02-28", "2011-02-28", "2012-02-29"),
		},
		{
			name: "third tuesday of the month",
			rule: Recurrence{Start: date.MustParse("2008-01-15"), Type: WeekdayOfMonth, Every: 1},
			from: "2008-01-01", to: "2008-03-31",
			want: dates("2008-01-15", "2008-02-19", "2008-03-18"),
		},
		{
			name: "fifth monday skips short months",
			rule: Recurrence{Start: date.MustParse("2008-03-31"), Type: WeekdayOfMonth, Every: 1},
			from: "2008-03-01", to: "2008-06-30",
			want: dates("2008-03-31", "2008-06-30"),
		},
		{
			name: "last tuesday of the month",
			rule: Recurrence{Start: date.MustParse("2008-01-29"), Type: LastWeekdayOfMonth, Every: 1},
			from: "2008-01-01", to: "2008-03-31",
			want: dates("2008-01-29", "2008-02-26", "2008-03-25"),
		},
		{
			name: "range starting after the start",
			rule: Recurrence{Start: date.MustParse("2008-01-01"), Type: Daily, Every: 1},
			from: "2008-01-04", to: "2008-01-05",
			want: dates("2008-01-04", "2008-01-05"),
		},
		{
			name: "stop date",
			rule: Recurrence{Start: date.MustParse("2008-01-01"), Type: Daily, Every: 1, Stop: date.MustParse("2008-01-02")},
			from: "2008-01-01", to: "2008-01-05",
			want: dates("2008-01-01", "2008-01-02"),
		},
		{
			name: "count",
			rule: Recurrence{Start: date.MustParse("2008-01-01"), Type: Daily, Every: 1, Count: 3},
			from: "2008-01-02", to: "2008-01-05",
			want: dates("2008-01-02", "2008-01-03"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.rule.Between(date.NewRange(date.MustParse(tt.from), date.MustParse(tt.to)))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRecurrenceValidate(t *testing.T) {
	start := date.MustParse("2008-01-01")
	assert.NoError(t, Recurrence{Start: start, Every: 1}.Validate())
	assert.Error(t, Recurrence{Every: 1}.Validate())
	assert.Error(t, Recurrence{Start: start}.Validate())
	assert.Error(t, Recurrence{Start: start, Every: 1, Stop: date.MustParse("2007-12-31")}.Validate())
}

func TestRecurrenceIncludes(t *testing.T) {
	rule := Recurrence{Start: date.MustParse("2008-01-01"), Type: Weekly, Every: 1}
	assert.True(t, rule.Includes(date.MustParse("2008-01-08")))
	assert.False(t, rule.Includes(date.MustParse("2008-01-09")))
	assert.False(t, rule.Includes(date.MustParse("2007-12-25")))
}

func TestRecurrencePeriod(t *testing.T) {
	rule := Recurrence{Start: date.MustParse("2008-01-31"), Type: Monthly, Every: 1}
	got := rule.Period(date.MustParse("2008-01-31"))
	assert.Equal(t, date.NewRange(date.MustParse("2008-01-31"), date.MustParse("2008-02-28")), got)

	monthly := Recurrence{Start: date.MustParse("2008-01-01"), Type: Monthly, Every: 1}
	assert.Equal(t, date.MonthRange(date.MustParse("2008-02-01")), monthly.Period(date.MustParse("2008-02-01")))
}

func TestParseRepeatType(t *testing.T) {
	for _, typ := range []RepeatType{Daily, Weekly, Monthly, Yearly, WeekdayOfMonth, LastWeekdayOfMonth} {
		got, err := ParseRepeatType(typ.String())
		assert.NoError(t, err)
		assert.Equal(t, typ, got)
	}
	_, err := ParseRepeatType("hourly")
	assert.Error(t, err)
}
