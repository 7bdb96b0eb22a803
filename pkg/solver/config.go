// Package solver runs a network.Network's fixed-period tick loop on its own
// goroutine: start/stop lifecycle, time-factor scaling, and the optional
// metrics/publisher/switch-exporter collaborators named as out-of-scope
// external interfaces (spec §1, §6).
package solver

import (
	"log"
	"time"

	"github.com/edp1096/elecsim/internal/consts"
)

// Config holds a Driver's tunable behavior, assembled via functional
// options mirroring the teacher's small-constructor-parameter pattern
// (analysis.NewTransient) generalized to the options idiom used elsewhere
// in the retrieved corpus (katalvlaran/lvlath/core.GraphOption).
type Config struct {
	period     time.Duration
	timeFactor float64
	depthLimit int
	logger     *log.Logger
	metrics    *Metrics
}

// Option configures a Driver at construction time.
type Option func(*Config)

// WithPeriod overrides the default tick period (spec §4.2: "default 50ms").
func WithPeriod(d time.Duration) Option {
	return func(c *Config) { c.period = d }
}

// WithTimeFactor scales wall-clock dt passed to Network.Tick: 2.0 runs the
// simulation twice as fast as real time, 0.5 half as fast. 0 or negative
// is treated as 1.
func WithTimeFactor(f float64) Option {
	return func(c *Config) { c.timeFactor = f }
}

// WithDepthLimit overrides the paint/integrate recursion bound of the
// already-built network; New applies it before the first Tick.
func WithDepthLimit(n int) Option {
	return func(c *Config) { c.depthLimit = n }
}

// WithLogger attaches a diagnostic logger for driver-level events; the
// driver writes to it only when a tick returns a fatal error and the loop
// terminates. Independent of the network's own per-network logger
// (network.WithLogger).
func WithLogger(l *log.Logger) Option {
	return func(c *Config) { c.logger = l }
}

// WithMetrics registers the driver's prometheus collectors against reg.
// Omitting this option leaves metrics collection off entirely.
func WithMetrics(reg Registerer) Option {
	return func(c *Config) { c.metrics = newMetrics(reg) }
}

func newConfig(opts ...Option) Config {
	c := Config{
		period:     consts.DefaultTickPeriodMS * time.Millisecond,
		timeFactor: 1,
	}
	for _, opt := range opts {
		opt(&c)
	}
	if c.timeFactor <= 0 {
		c.timeFactor = 1
	}
	return c
}
