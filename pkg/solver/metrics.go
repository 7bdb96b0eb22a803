package solver

import "github.com/prometheus/client_golang/prometheus"

// Registerer is the subset of prometheus.Registerer a Driver needs; it lets
// callers pass prometheus.DefaultRegisterer or a scoped *prometheus.Registry
// without this package importing the concrete default.
type Registerer interface {
	MustRegister(...prometheus.Collector)
}

// Metrics holds the Driver's prometheus collectors, built with direct
// New*+MustRegister calls (the idiom observed in the retrieved pack's
// prometheus-instrumented code; no promauto usage appears anywhere in it).
type Metrics struct {
	tickDuration prometheus.Histogram
	trips        prometheus.Counter
	paintedNodes prometheus.Gauge
	visitedNodes prometheus.Gauge
}

func newMetrics(reg Registerer) *Metrics {
	m := &Metrics{
		tickDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "elecsim_tick_duration_seconds",
			Help:    "Wall-clock time spent executing one Network.Tick call.",
			Buckets: prometheus.DefBuckets,
		}),
		trips: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "elecsim_cb_trips_total",
			Help: "Number of breaker/fuse closed-to-open transitions observed across all ticks, auto-trips and commanded opens alike.",
		}),
		paintedNodes: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "elecsim_painted_nodes",
			Help: "Components with a non-zero published input voltage as of the last tick.",
		}),
		visitedNodes: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "elecsim_visited_nodes",
			Help: "Total component count in the last-built network.",
		}),
	}
	reg.MustRegister(m.tickDuration, m.trips, m.paintedNodes, m.visitedNodes)
	return m
}
