package telemetry

import (
	"io"
	"strings"
	"sync"
	"time"

	"github.com/robinvdvleuten/moneybook/output"
	"go.uber.org/zap"
)

// LogCollector writes every finished timer to a zap logger at debug level.
// Long running hosts such as the web server use it instead of a report.
type LogCollector struct {
	logger *zap.Logger
}

// NewLogCollector returns a collector logging to logger.
func NewLogCollector(logger *zap.Logger) *LogCollector {
	return &LogCollector{logger: logger}
}

func (c *LogCollector) Start(name string) Timer {
	return &logTimer{logger: c.logger, path: []string{name}, start: time.Now()}
}

// Report does nothing, timings were logged as they ended.
func (c *LogCollector) Report(w io.Writer, styles *output.Styles) {}

type logTimer struct {
	logger *zap.Logger
	path   []string
	start  time.Time

	mu     sync.Mutex
	counts []zap.Field
}

// End logs the operation with its counts, one field per unit.
func (t *logTimer) End() {
	t.mu.Lock()
	fields := append([]zap.Field{
		zap.String("operation", strings.Join(t.path, " > ")),
		zap.Duration("duration", time.Since(t.start)),
	}, t.counts...)
	t.mu.Unlock()

	t.logger.Debug("timing", fields...)
}

func (t *logTimer) Child(name string) Timer {
	path := append(t.path[:len(t.path):len(t.path)], name)
	return &logTimer{logger: t.logger, path: path, start: time.Now()}
}

func (t *logTimer) Count(n int, unit string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.counts = append(t.counts, zap.Int(unit, n))
}
