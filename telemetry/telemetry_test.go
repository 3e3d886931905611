package telemetry

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/alecthomas/assert/v2"
	"github.com/robinvdvleuten/moneybook/output"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func report(c Collector) []string {
	var buf bytes.Buffer
	c.Report(&buf, nil)
	return strings.Split(strings.TrimSpace(buf.String()), "\n")
}

func TestFromContextWithoutCollector(t *testing.T) {
	collector := FromContext(context.Background())

	timer := collector.Start("load book.moneybook")
	timer.Count(3, "accounts")
	timer.Child("cook").End()
	timer.End()

	var buf bytes.Buffer
	collector.Report(&buf, nil)
	assert.Equal(t, 0, buf.Len())
}

func TestFromContext(t *testing.T) {
	collector := NewTimingCollector()
	ctx := WithCollector(context.Background(), collector)
	got, ok := FromContext(ctx).(*TimingCollector)
	assert.True(t, ok)
	assert.True(t, got == collector)
}

func TestTimingCollectorTree(t *testing.T) {
	collector := NewTimingCollector()

	root := collector.Start("load book.moneybook")
	root.Count(2, "accounts")
	cook := root.Child("cook 2008-06-01..2008-06-30")
	spawns := cook.Child("spawn schedules")
	spawns.Count(3, "spawns")
	spawns.End()
	cook.Child("balances").End()
	cook.End()
	root.Child("notify").End()
	root.End()

	lines := report(collector)
	assert.Equal(t, 5, len(lines))
	assert.True(t, strings.HasPrefix(lines[0], "load book.moneybook: "))
	assert.True(t, strings.HasSuffix(lines[0], "ms (2 accounts)"), "got %q", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "├─ cook 2008-06-01..2008-06-30: "))
	assert.True(t, strings.HasPrefix(lines[2], "│  ├─ spawn schedules: "))
	assert.True(t, strings.HasSuffix(lines[2], "(3 spawns)"))
	assert.True(t, strings.HasPrefix(lines[3], "│  └─ balances: "))
	assert.True(t, strings.HasPrefix(lines[4], "└─ notify: "))
}

func TestTimingCollectorMergesRepeatedPasses(t *testing.T) {
	collector := NewTimingCollector()

	root := collector.Start("import")
	for range 3 {
		cook := collector.Start("cook 2008-06-01..2008-06-30")
		balances := cook.Child("balances")
		balances.Count(2, "entries")
		balances.End()
		cook.End()
	}
	root.End()

	lines := report(collector)
	assert.Equal(t, 3, len(lines))
	assert.True(t, strings.HasPrefix(lines[1], "└─ cook 2008-06-01..2008-06-30: "))
	assert.True(t, strings.HasSuffix(lines[1], " ×3"), "got %q", lines[1])
	assert.True(t, strings.HasSuffix(lines[2], " ×3 (6 entries)"), "got %q", lines[2])
}

func TestTimingCollectorNestsSequentialStarts(t *testing.T) {
	collector := NewTimingCollector()

	outer := collector.Start("record")
	inner := collector.Start("cook")
	inner.End()
	outer.End()
	collector.Start("save book.moneybook").End()

	var buf bytes.Buffer
	collector.Report(&buf, output.NewPlainStyles(&buf))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Equal(t, 3, len(lines))
	assert.True(t, strings.HasPrefix(lines[1], "└─ cook: "))
	assert.True(t, strings.HasPrefix(lines[2], "save book.moneybook: "))
}

func TestTimingCollectorCountsSameUnitOnce(t *testing.T) {
	collector := NewTimingCollector()

	timer := collector.Start("import")
	timer.Count(2, "transactions")
	timer.Count(3, "transactions")
	timer.End()

	assert.True(t, strings.HasSuffix(report(collector)[0], "(5 transactions)"))
}

func TestTimingCollectorEmptyReport(t *testing.T) {
	var buf bytes.Buffer
	NewTimingCollector().Report(&buf, nil)
	assert.Equal(t, "", buf.String())
}

func TestLogCollector(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	collector := NewLogCollector(zap.New(core))

	timer := collector.Start("cook")
	balances := timer.Child("balances")
	balances.Count(4, "entries")
	balances.End()
	timer.End()

	entries := logs.FilterMessage("timing").All()
	assert.Equal(t, 2, len(entries))
	assert.Equal(t, "cook > balances", entries[0].ContextMap()["operation"])
	assert.Equal(t, any(int64(4)), entries[0].ContextMap()["entries"])
	assert.Equal(t, "cook", entries[1].ContextMap()["operation"])
}
