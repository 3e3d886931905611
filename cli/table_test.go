package cli

import (
	"strings"
	"testing"

	"github.com/alecthomas/assert/v2"
)

func TestTableRender(t *testing.T) {
	tbl := newTable("Name", "Balance").alignRight(1)
	tbl.add("Checking", "100.00")
	tbl.add("Café", "-5.00")

	var buf strings.Builder
	tbl.render(&buf)

	assert.Equal(t, strings.Join([]string{
		"Name      Balance",
		"────────  ───────",
		"Checking   100.00",
		"Café        -5.00",
	}, "\n")+"\n", buf.String())
}

func TestTableWideRunes(t *testing.T) {
	tbl := newTable("A", "B")
	tbl.add("日本", "x")

	var buf strings.Builder
	tbl.render(&buf)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Equal(t, "日本  x", lines[2])
	assert.Equal(t, "A     B", lines[0])
}

func TestTableStyle(t *testing.T) {
	tbl := newTable("A")
	tbl.add("x")
	tbl.style = func(row, col int, cell string) string { return "[" + cell + "]" }

	var buf strings.Builder
	tbl.render(&buf)
	assert.Contains(t, buf.String(), "[x]")
	assert.Contains(t, buf.String(), "A\n")
}
