// Package rates provides currency exchange rates for converting amounts
// between currencies on a given day.
package rates

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/robinvdvleuten/moneybook/date"
	"github.com/shopspring/decimal"
)

// Source returns the rate to convert one unit of from into to on a day.
type Source interface {
	Rate(from, to string, on date.Date) (decimal.Decimal, error)
}

// RateNotFoundError is returned when no rate is known for a currency pair.
type RateNotFoundError struct {
	From, To string
	Date     date.Date
}

func (e *RateNotFoundError) Error() string {
	return fmt.Sprintf("%s: no exchange rate from %s to %s", e.Date, e.From, e.To)
}

type pair struct{ from, to string }

type entry struct {
	on   date.Date
	rate decimal.Decimal
}

// Table is an in-memory Source. It is safe for concurrent use.
//
// A lookup uses the latest rate on or before the requested day, falling back to
// the earliest known rate for days before any entry. The inverse of a known pair
// is derived when the pair itself is missing.
type Table struct {
	mu    sync.RWMutex
	rates map[pair][]entry
}

// NewTable returns an empty table.
func NewTable() *Table {
	return &Table{rates: make(map[pair][]entry)}
}

// Set records the rate of from to to on a day, replacing an existing entry for that day.
func (t *Table) Set(from, to string, on date.Date, rate decimal.Decimal) {
	t.mu.Lock()
	defer t.mu.Unlock()

	p := pair{strings.ToUpper(from), strings.ToUpper(to)}
	entries := t.rates[p]
	i := sort.Search(len(entries), func(i int) bool { return !entries[i].on.Before(on) })
	if i < len(entries) && entries[i].on == on {
		entries[i].rate = rate
		return
	}
	entries = append(entries, entry{})
	copy(entries[i+1:], entries[i:])
	entries[i] = entry{on: on, rate: rate}
	t.rates[p] = entries
}

// Len returns the number of entries in the table.
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()

	n := 0
	for _, entries := range t.rates {
		n += len(entries)
	}
	return n
}

// Rate implements Source.
func (t *Table) Rate(from, to string, on date.Date) (decimal.Decimal, error) {
	from, to = strings.ToUpper(from), strings.ToUpper(to)
	if from == to {
		return decimal.NewFromInt(1), nil
	}

	t.mu.RLock()
	defer t.mu.RUnlock()

	if rate, ok := lookup(t.rates[pair{from, to}], on); ok {
		return rate, nil
	}
	if rate, ok := lookup(t.rates[pair{to, from}], on); ok && !rate.IsZero() {
		return decimal.NewFromInt(1).DivRound(rate, 16), nil
	}
	return decimal.Zero, &RateNotFoundError{From: from, To: to, Date: on}
}

func lookup(entries []entry, on date.Date) (decimal.Decimal, bool) {
	if len(entries) == 0 {
		return decimal.Zero, false
	}
	i := sort.Search(len(entries), func(i int) bool { return entries[i].on.After(on) })
	if i == 0 {
		return entries[0].rate, true
	}
	return entries[i-1].rate, true
}
