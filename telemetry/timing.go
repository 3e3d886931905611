package telemetry

import (
	"io"
	"slices"
	"sync"
	"time"

	"github.com/robinvdvleuten/moneybook/output"
)

// TimingCollector keeps every timer in a tree and prints it on Report.
type TimingCollector struct {
	mu    sync.Mutex
	roots []*span
	// open holds the started timers that did not end yet, innermost last.
	open []*span
}

type tally struct {
	n    int
	unit string
}

type span struct {
	name     string
	start    time.Time
	elapsed  time.Duration
	tallies  []tally
	children []*span
}

func NewTimingCollector() *TimingCollector {
	return &TimingCollector{}
}

func (c *TimingCollector) Start(name string) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := &span{name: name, start: time.Now()}
	if n := len(c.open); n > 0 {
		parent := c.open[n-1]
		parent.children = append(parent.children, s)
	} else {
		c.roots = append(c.roots, s)
	}
	c.open = append(c.open, s)
	return &timingTimer{c: c, s: s}
}

// Report prints one tree per top-level timer.
func (c *TimingCollector) Report(w io.Writer, styles *output.Styles) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, root := range c.roots {
		formatTimingTree(w, root, styles)
	}
}

type timingTimer struct {
	c *TimingCollector
	s *span
}

func (t *timingTimer) End() {
	t.c.mu.Lock()
	defer t.c.mu.Unlock()

	t.s.elapsed = time.Since(t.s.start)
	if i := slices.Index(t.c.open, t.s); i >= 0 {
		t.c.open = slices.Delete(t.c.open, i, i+1)
	}
}

// Child nests under t even when t is not the innermost open timer. Children
// are not pushed on the open stack, so Start keeps nesting under whatever
// the collector opened last.
func (t *timingTimer) Child(name string) Timer {
	t.c.mu.Lock()
	defer t.c.mu.Unlock()

	s := &span{name: name, start: time.Now()}
	t.s.children = append(t.s.children, s)
	return &timingTimer{c: t.c, s: s}
}

func (t *timingTimer) Count(n int, unit string) {
	t.c.mu.Lock()
	defer t.c.mu.Unlock()

	for i := range t.s.tallies {
		if t.s.tallies[i].unit == unit {
			t.s.tallies[i].n += n
			return
		}
	}
	t.s.tallies = append(t.s.tallies, tally{n: n, unit: unit})
}
