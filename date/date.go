// Package date provides a day-granularity calendar date and inclusive date ranges.
//
// Dates are plain comparable values, which makes them safe to use as map keys and
// to copy into undo snapshots without aliasing.
package date

import (
	"fmt"
	"time"
)

// ISOFormat is the layout used to persist dates.
const ISOFormat = "2006-01-02"

// permissive ISO layout, accepts 2008-6-9
const readISOFormat = "2006-1-2"

// Date represents a calendar day. The zero value means "no date".
type Date struct {
	y int
	m time.Month
	d int
}

// New returns a normalized Date for the given year, month, and day.
// Out of range values roll over the way time.Date does.
func New(year int, month time.Month, day int) Date {
	y, m, d := time.Date(year, month, day, 0, 0, 0, 0, time.UTC).Date()
	return Date{y, m, d}
}

// FromTime truncates t to its calendar day.
func FromTime(t time.Time) Date { return New(t.Date()) }

// Today returns the current local date.
func Today() Date { return FromTime(time.Now()) }

// Parse parses an ISO date. It accepts single digit months and days.
func Parse(str string) (Date, error) {
	t, err := time.Parse(readISOFormat, str)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", str)
	}
	return FromTime(t), nil
}

// ParseLayout parses str with a time layout such as "02/01/2006".
// Single digit days and months are accepted for the common layouts.
func ParseLayout(layout, str string) (Date, error) {
	t, err := time.Parse(layout, str)
	if err != nil {
		loose := looseLayout(layout)
		if loose == layout {
			return Date{}, fmt.Errorf("invalid date %q, expected %s", str, layout)
		}
		t, err = time.Parse(loose, str)
		if err != nil {
			return Date{}, fmt.Errorf("invalid date %q, expected %s", str, layout)
		}
	}
	return FromTime(t), nil
}

func looseLayout(layout string) string {
	switch layout {
	case "02/01/2006":
		return "2/1/2006"
	case "01/02/2006":
		return "1/2/2006"
	case ISOFormat:
		return readISOFormat
	default:
		return layout
	}
}

// MustParse is like Parse but panics on error.
func MustParse(str string) Date {
	d, err := Parse(str)
	if err != nil {
		panic(err.Error())
	}
	return d
}

func (d Date) time() time.Time { return time.Date(d.y, d.m, d.d, 0, 0, 0, 0, time.UTC) }

// Time returns midnight UTC of the day.
func (d Date) Time() time.Time { return d.time() }

// IsZero reports whether d is the zero value.
func (d Date) IsZero() bool { return d == Date{} }

func (d Date) Year() int { return d.y }

func (d Date) Month() time.Month { return d.m }

func (d Date) Day() int { return d.d }

// Weekday returns the day of the week for the date.
func (d Date) Weekday() time.Weekday { return d.time().Weekday() }

// Before reports whether d is before x.
func (d Date) Before(x Date) bool { return d.Compare(x) < 0 }

// After reports whether d is after x.
func (d Date) After(x Date) bool { return d.Compare(x) > 0 }

// Compare returns -1, 0 or +1.
func (d Date) Compare(x Date) int {
	switch {
	case d.y != x.y:
		return cmpInt(d.y, x.y)
	case d.m != x.m:
		return cmpInt(int(d.m), int(x.m))
	default:
		return cmpInt(d.d, x.d)
	}
}

func cmpInt(a, b int) int {
	if a < b {
		return -1
	}
	if a > b {
		return 1
	}
	return 0
}

// AddDays returns d shifted by n days.
func (d Date) AddDays(n int) Date { return New(d.y, d.m, d.d+n) }

// AddMonths returns d shifted by n months. The day is clamped to the last day of
// the target month, so Jan 31 + 1 month is Feb 28 (or 29).
func (d Date) AddMonths(n int) Date {
	first := New(d.y, d.m+time.Month(n), 1)
	day := d.d
	if last := DaysIn(first.y, first.m); day > last {
		day = last
	}
	return Date{first.y, first.m, day}
}

// AddYears returns d shifted by n years with the same clamping as AddMonths.
func (d Date) AddYears(n int) Date { return d.AddMonths(12 * n) }

// DaysSince returns the number of days from x to d.
func (d Date) DaysSince(x Date) int {
	return int(d.time().Sub(x.time()).Hours() / 24)
}

// DaysIn returns the number of days in the month.
func DaysIn(year int, month time.Month) int {
	return New(year, month+1, 0).d
}

// String formats the date as YYYY-MM-DD, or "" for the zero date.
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.time().Format(ISOFormat)
}

// Format formats the date with a time layout.
func (d Date) Format(layout string) string {
	if d.IsZero() {
		return ""
	}
	return d.time().Format(layout)
}

// MarshalText implements encoding.TextMarshaler.
func (d Date) MarshalText() ([]byte, error) { return []byte(d.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler. Empty text is the zero date.
func (d *Date) UnmarshalText(text []byte) error {
	if len(text) == 0 {
		*d = Date{}
		return nil
	}
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Min returns the earliest of a and b.
func Min(a, b Date) Date {
	if a.Before(b) {
		return a
	}
	return b
}

// Max returns the latest of a and b.
func Max(a, b Date) Date {
	if a.After(b) {
		return a
	}
	return b
}
