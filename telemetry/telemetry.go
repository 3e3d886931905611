// Package telemetry times document operations.
//
// Loading, saving, recording an action and cooking a view each open a Timer
// taken from the Collector in the context. Timers nest, and a timer can count
// what it went through ("120 spawns", "4 accounts"), so a report shows where
// a slow command spent its time and on how much data.
//
//	collector := telemetry.NewTimingCollector()
//	ctx := telemetry.WithCollector(context.Background(), collector)
//
//	doc := document.New(ctx)
//	_ = doc.LoadFromXML(ctx, "book.moneybook")
//
//	collector.Report(os.Stderr, output.NewStyles(os.Stderr))
//
// Without a collector in the context every timer is a no-op.
package telemetry

import (
	"context"
	"io"

	"github.com/robinvdvleuten/moneybook/output"
)

type contextKey struct{}

// Collector hands out timers and reports what they measured.
type Collector interface {
	// Start opens a timer. It nests under the innermost timer of the same
	// collector that is still open.
	Start(name string) Timer

	// Report writes the measurements to w. Styles may be nil.
	Report(w io.Writer, styles *output.Styles)
}

// Timer measures one operation.
type Timer interface {
	// End closes the timer.
	End()

	// Child opens a timer nested under this one.
	Child(name string) Timer

	// Count records that the operation went through n items of unit, e.g.
	// Count(12, "spawns").
	Count(n int, unit string)
}

// WithCollector returns a context carrying collector.
func WithCollector(ctx context.Context, collector Collector) context.Context {
	return context.WithValue(ctx, contextKey{}, collector)
}

// FromContext returns the collector of ctx, or one that discards everything.
func FromContext(ctx context.Context) Collector {
	if collector, ok := ctx.Value(contextKey{}).(Collector); ok {
		return collector
	}
	return discard{}
}
