package date

import (
	"fmt"
	"time"
)

// Range is an inclusive range of days.
type Range struct{ From, To Date }

// NewRange returns the range [from, to].
func NewRange(from, to Date) Range { return Range{From: from, To: to} }

// MonthRange returns the calendar month containing d.
func MonthRange(d Date) Range {
	from := New(d.y, d.m, 1)
	return Range{From: from, To: New(d.y, d.m, DaysIn(d.y, d.m))}
}

// YearRange returns the calendar year containing d.
func YearRange(d Date) Range {
	return Range{From: New(d.y, time.January, 1), To: New(d.y, time.December, 31)}
}

// WeekRange returns the week containing d, starting on first.
func WeekRange(d Date, first time.Weekday) Range {
	back := (int(d.Weekday()) - int(first) + 7) % 7
	from := d.AddDays(-back)
	return Range{From: from, To: from.AddDays(6)}
}

// RunningYear returns the twelve months ending aheadMonths after the month of d.
func RunningYear(d Date, aheadMonths int) Range {
	end := MonthRange(New(d.y, d.m, 1).AddMonths(aheadMonths)).To
	return Range{From: New(end.y, end.m, 1).AddMonths(-11), To: end}
}

// Contains reports whether d is inside the range, boundaries included.
func (r Range) Contains(d Date) bool { return !d.Before(r.From) && !d.After(r.To) }

// Days returns the number of days covered by the range.
func (r Range) Days() int { return r.To.DaysSince(r.From) + 1 }

// Prev returns the range of the same length right before r.
func (r Range) Prev() Range {
	if r == MonthRange(r.From) {
		return MonthRange(r.From.AddMonths(-1))
	}
	n := r.Days()
	return Range{From: r.From.AddDays(-n), To: r.From.AddDays(-1)}
}

// Next returns the range of the same length right after r.
func (r Range) Next() Range {
	if r == MonthRange(r.From) {
		return MonthRange(r.From.AddMonths(1))
	}
	n := r.Days()
	return Range{From: r.To.AddDays(1), To: r.To.AddDays(n)}
}

func (r Range) String() string { return fmt.Sprintf("%s..%s", r.From, r.To) }
