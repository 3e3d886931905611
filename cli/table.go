package cli

import (
	"io"
	"strings"

	"github.com/mattn/go-runewidth"
)

// table aligns plain text cells in columns. Styling is applied after padding
// so escape sequences never count towards the column width.
type table struct {
	headers []string
	rows    [][]string
	// right marks right-aligned columns.
	right []bool
	// style, when set, decorates a padded cell.
	style func(row, col int, cell string) string
}

func newTable(headers ...string) *table {
	return &table{headers: headers, right: make([]bool, len(headers))}
}

func (t *table) alignRight(cols ...int) *table {
	for _, c := range cols {
		t.right[c] = true
	}
	return t
}

func (t *table) add(cells ...string) {
	t.rows = append(t.rows, cells)
}

func (t *table) widths() []int {
	widths := make([]int, len(t.headers))
	for i, h := range t.headers {
		widths[i] = runewidth.StringWidth(h)
	}
	for _, row := range t.rows {
		for i, cell := range row {
			if i < len(widths) {
				widths[i] = max(widths[i], runewidth.StringWidth(cell))
			}
		}
	}
	return widths
}

func (t *table) pad(cell string, col, width int) string {
	if t.right[col] {
		return runewidth.FillLeft(cell, width)
	}
	return runewidth.FillRight(cell, width)
}

func (t *table) render(w io.Writer) {
	widths := t.widths()

	line := func(row int, cells []string) {
		parts := make([]string, len(widths))
		for i := range widths {
			var cell string
			if i < len(cells) {
				cell = cells[i]
			}
			padded := t.pad(cell, i, widths[i])
			if row >= 0 && t.style != nil {
				padded = t.style(row, i, padded)
			}
			parts[i] = padded
		}
		_, _ = io.WriteString(w, strings.TrimRight(strings.Join(parts, "  "), " ")+"\n")
	}

	line(-1, t.headers)
	rule := make([]string, len(widths))
	for i, n := range widths {
		rule[i] = strings.Repeat("─", n)
	}
	line(-1, rule)
	for i, row := range t.rows {
		line(i, row)
	}
}
