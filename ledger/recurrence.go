package ledger

import (
	"fmt"
	"iter"
	"strings"
	"time"

	"github.com/robinvdvleuten/moneybook/date"
)

// RepeatType is the unit a recurrence steps by.
type RepeatType int

const (
	Daily RepeatType = iota
	Weekly
	Monthly
	Yearly
	// WeekdayOfMonth repeats on the same weekday of the same week of the month,
	// such as the third Tuesday. Months without that week are skipped.
	WeekdayOfMonth
	// LastWeekdayOfMonth repeats on the last occurrence of the start weekday.
	LastWeekdayOfMonth
)

// maxSteps bounds searches for the next occurrence.
const maxSteps = 100_000

var repeatTypeNames = [...]string{"daily", "weekly", "monthly", "yearly", "weekday_of_month", "last_weekday_of_month"}

func (r RepeatType) String() string {
	if r < 0 || int(r) >= len(repeatTypeNames) {
		return fmt.Sprintf("RepeatType(%d)", int(r))
	}
	return repeatTypeNames[r]
}

// ParseRepeatType parses the names returned by RepeatType.String.
func ParseRepeatType(s string) (RepeatType, error) {
	for i, name := range repeatTypeNames {
		if strings.EqualFold(name, s) {
			return RepeatType(i), nil
		}
	}
	return 0, &InvalidInputError{Field: "repeat type", Value: s}
}

func (r RepeatType) MarshalText() ([]byte, error) { return []byte(r.String()), nil }

func (r *RepeatType) UnmarshalText(text []byte) error {
	parsed, err := ParseRepeatType(string(text))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// Recurrence describes the occurrence dates of a schedule or budget.
type Recurrence struct {
	Start date.Date
	Type  RepeatType
	Every int

	// Stop is the last day an occurrence may fall on. Zero means no stop date.
	Stop date.Date
	// Count caps the number of occurrences. Zero means unlimited.
	Count int
}

// Validate checks that the recurrence can produce occurrences.
func (r Recurrence) Validate() error {
	if r.Start.IsZero() {
		return &InvalidInputError{Field: "start date", Value: ""}
	}
	if r.Every < 1 {
		return &InvalidInputError{Field: "repeat every", Value: fmt.Sprint(r.Every)}
	}
	if !r.Stop.IsZero() && r.Stop.Before(r.Start) {
		return &InvalidInputError{Field: "stop date", Value: r.Stop.String()}
	}
	return nil
}

// nth returns the date of step n counted from Start. Computing every step from
// Start keeps month end clamping from drifting (Jan 31, Feb 29, Mar 31).
// The second result is false for steps that fall on no day, such as a fifth
// Monday in a month with four.
func (r Recurrence) nth(n int) (date.Date, bool) {
	every := max(r.Every, 1)
	switch r.Type {
	case Daily:
		return r.Start.AddDays(n * every), true
	case Weekly:
		return r.Start.AddDays(7 * n * every), true
	case Monthly:
		return r.Start.AddMonths(n * every), true
	case Yearly:
		return r.Start.AddYears(n * every), true
	case WeekdayOfMonth:
		month := date.New(r.Start.Year(), r.Start.Month(), 1).AddMonths(n * every)
		week := (r.Start.Day() - 1) / 7
		d := firstWeekday(month, r.Start.Weekday()).AddDays(7 * week)
		return d, d.Month() == month.Month()
	case LastWeekdayOfMonth:
		month := date.New(r.Start.Year(), r.Start.Month(), 1).AddMonths(n * every)
		last := date.New(month.Year(), month.Month(), date.DaysIn(month.Year(), month.Month()))
		offset := (int(last.Weekday()) - int(r.Start.Weekday()) + 7) % 7
		return last.AddDays(-offset), true
	}
	return date.Date{}, false
}

func firstWeekday(month date.Date, wd time.Weekday) date.Date {
	offset := (int(wd) - int(month.Weekday()) + 7) % 7
	return month.AddDays(offset)
}

// Occurrences yields the occurrence dates from Start through until, in order.
func (r Recurrence) Occurrences(until date.Date) iter.Seq[date.Date] {
	return func(yield func(date.Date) bool) {
		if r.Start.IsZero() {
			return
		}
		end := until
		if !r.Stop.IsZero() && r.Stop.Before(end) {
			end = r.Stop
		}
		produced := 0
		for n := 0; ; n++ {
			d, ok := r.nth(n)
			if d.After(end) {
				return
			}
			if !ok || d.Before(r.Start) {
				continue
			}
			if r.Count > 0 && produced >= r.Count {
				return
			}
			produced++
			if !yield(d) {
				return
			}
		}
	}
}

// Between returns the occurrences that fall inside rng.
func (r Recurrence) Between(rng date.Range) []date.Date {
	var out []date.Date
	for d := range r.Occurrences(rng.To) {
		if !d.Before(rng.From) {
			out = append(out, d)
		}
	}
	return out
}

// Includes reports whether d is an occurrence date.
func (r Recurrence) Includes(d date.Date) bool {
	for o := range r.Occurrences(d) {
		if o == d {
			return true
		}
	}
	return false
}

// Shift moves Start by days while keeping the same pattern.
func (r Recurrence) Shift(days int) Recurrence {
	r.Start = r.Start.AddDays(days)
	return r
}

// Period returns the period starting at occurrence d and ending the day before
// the next occurrence.
func (r Recurrence) Period(d date.Date) date.Range {
	for n := 0; n < maxSteps; n++ {
		if next, ok := r.nth(n); ok && next.After(d) {
			return date.NewRange(d, next.AddDays(-1))
		}
	}
	return date.NewRange(d, d)
}
