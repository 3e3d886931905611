package telemetry

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/robinvdvleuten/moneybook/output"
)

// group is the report line of one or more sibling spans sharing a name. A
// document cooks after every action, so a command easily runs dozens of
// identical passes.
type group struct {
	name     string
	times    int
	elapsed  time.Duration
	tallies  []tally
	children []*span
}

func groupSpans(spans []*span) []*group {
	var out []*group
	byName := make(map[string]*group)
	for _, s := range spans {
		g := byName[s.name]
		if g == nil {
			g = &group{name: s.name}
			byName[s.name] = g
			out = append(out, g)
		}
		g.times++
		g.elapsed += s.elapsed
		g.children = append(g.children, s.children...)
		for _, t := range s.tallies {
			g.add(t)
		}
	}
	return out
}

func (g *group) add(t tally) {
	for i := range g.tallies {
		if g.tallies[i].unit == t.unit {
			g.tallies[i].n += t.n
			return
		}
	}
	g.tallies = append(g.tallies, t)
}

// suffix renders " ×3 (120 spawns, 4 accounts)".
func (g *group) suffix() string {
	var b strings.Builder
	if g.times > 1 {
		fmt.Fprintf(&b, " ×%d", g.times)
	}
	if len(g.tallies) > 0 {
		parts := make([]string, len(g.tallies))
		for i, t := range g.tallies {
			parts[i] = fmt.Sprintf("%d %s", t.n, t.unit)
		}
		fmt.Fprintf(&b, " (%s)", strings.Join(parts, ", "))
	}
	return b.String()
}

// formatTimingTree writes the tree below root:
//
//	ledger book.moneybook: 12ms
//	├─ load book.moneybook: 8ms
//	│  └─ cook 2008-06-01..2008-06-30: 4ms (3 spawns, 2 accounts)
//	└─ cook 2008-06-01..2008-06-30: 3ms
func formatTimingTree(w io.Writer, root *span, styles *output.Styles) {
	g := groupSpans([]*span{root})[0]
	if styles != nil {
		_, _ = fmt.Fprintf(w, "%s: %s%s\n", styles.Keyword(g.name), styles.Timing(g.elapsed), styles.Dim(g.suffix()))
	} else {
		_, _ = fmt.Fprintf(w, "%s: %s%s\n", g.name, output.FormatDuration(g.elapsed), g.suffix())
	}
	formatChildren(w, g.children, "", styles)
}

func formatChildren(w io.Writer, spans []*span, prefix string, styles *output.Styles) {
	groups := groupSpans(spans)
	for i, g := range groups {
		branch, extension := "├─ ", "│  "
		if i == len(groups)-1 {
			branch, extension = "└─ ", "   "
		}

		if styles != nil {
			_, _ = fmt.Fprintf(w, "%s%s: %s%s\n", styles.Dim(prefix+branch), g.name, styles.Timing(g.elapsed), styles.Dim(g.suffix()))
		} else {
			_, _ = fmt.Fprintf(w, "%s%s%s: %s%s\n", prefix, branch, g.name, output.FormatDuration(g.elapsed), g.suffix())
		}
		formatChildren(w, g.children, prefix+extension, styles)
	}
}
