package stm

import (
	"log/slog"
	"os"
	"time"
)

type config struct {
	logger        *slog.Logger
	metrics       *Metrics
	sweepInterval time.Duration
}

func defaultConfig() config {
	return config{
		logger:        slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn})),
		sweepInterval: 5 * time.Second,
	}
}

// Option is a functional option for New.
type Option func(*config)

// WithLogger sets a custom slog.Logger; the default writes warnings and
// above to stderr as text.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) { c.logger = l }
}

// WithMetrics attaches a Metrics instance (see NewMetrics) so the
// executor and commit protocol report commits, conflicts, retries,
// aborts, failures, and parked-waiter counts.
func WithMetrics(m *Metrics) Option {
	return func(c *config) { c.metrics = m }
}

// WithGCInterval sets the interval of the background idle-waiter sweep,
// which evicts waiters whose owning attempt was cancelled before a write
// ever fired them (see sweep.go runSweep). Named for continuity with
// the collection it was adapted from; it no longer collects versions,
// since this runtime has none.
func WithGCInterval(d time.Duration) Option {
	return func(c *config) { c.sweepInterval = d }
}
