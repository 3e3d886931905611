package date

import (
	"testing"
	"time"

	"github.com/alecthomas/assert/v2"
)

func TestParse(t *testing.T) {
	tests := []struct {
		input   string
		want    Date
		wantErr bool
	}{
		{"2008-06-19", New(2008, time.June, 19), false},
		{"2008-6-9", New(2008, time.June, 9), false},
		{"19/06/2008", Date{}, true},
		{"", Date{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := Parse(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseLayout(t *testing.T) {
	d, err := ParseLayout("02/01/2006", "19/6/2008")
	assert.NoError(t, err)
	assert.Equal(t, MustParse("2008-06-19"), d)

	_, err = ParseLayout("02/01/2006", "foo")
	assert.Error(t, err)
}

func TestAddMonthsClampsToMonthEnd(t *testing.T) {
	tests := []struct {
		from   string
		months int
		want   string
	}{
		{"2008-01-31", 1, "2008-02-29"},
		{"2009-01-31", 1, "2009-02-28"},
		{"2008-01-31", 3, "2008-04-30"},
		{"2008-12-15", 1, "2009-01-15"},
		{"2008-03-31", -1, "2008-02-29"},
	}

	for _, tt := range tests {
		t.Run(tt.from, func(t *testing.T) {
			assert.Equal(t, MustParse(tt.want), MustParse(tt.from).AddMonths(tt.months))
		})
	}
}

func TestCompare(t *testing.T) {
	a := MustParse("2008-06-19")
	b := MustParse("2008-06-20")
	assert.True(t, a.Before(b))
	assert.True(t, b.After(a))
	assert.Equal(t, 0, a.Compare(MustParse("2008-6-19")))
	assert.Equal(t, 1, b.DaysSince(a))
}

func TestZeroDate(t *testing.T) {
	var d Date
	assert.True(t, d.IsZero())
	assert.Equal(t, "", d.String())

	text, err := d.MarshalText()
	assert.NoError(t, err)
	assert.Equal(t, "", string(text))

	var back Date
	assert.NoError(t, back.UnmarshalText([]byte("2008-01-02")))
	assert.Equal(t, MustParse("2008-01-02"), back)
}

func TestRange(t *testing.T) {
	r := MonthRange(MustParse("2008-02-13"))
	assert.Equal(t, MustParse("2008-02-01"), r.From)
	assert.Equal(t, MustParse("2008-02-29"), r.To)
	assert.True(t, r.Contains(MustParse("2008-02-29")))
	assert.False(t, r.Contains(MustParse("2008-03-01")))
	assert.Equal(t, MonthRange(MustParse("2008-03-01")), r.Next())
	assert.Equal(t, MonthRange(MustParse("2008-01-01")), r.Prev())

	days := NewRange(MustParse("2008-01-01"), MustParse("2008-01-05"))
	assert.Equal(t, 5, days.Days())
	assert.Equal(t, NewRange(MustParse("2008-01-06"), MustParse("2008-01-10")), days.Next())
}

func TestRunningYear(t *testing.T) {
	r := RunningYear(MustParse("2008-06-15"), 2)
	assert.Equal(t, MustParse("2007-09-01"), r.From)
	assert.Equal(t, MustParse("2008-08-31"), r.To)
}

func TestWeekRange(t *testing.T) {
	sunday := MustParse("2008-06-15")

	r := WeekRange(sunday, time.Monday)
	assert.Equal(t, MustParse("2008-06-09"), r.From)
	assert.Equal(t, MustParse("2008-06-15"), r.To)

	r = WeekRange(sunday, time.Sunday)
	assert.Equal(t, MustParse("2008-06-15"), r.From)
	assert.Equal(t, 7, r.Days())
}
