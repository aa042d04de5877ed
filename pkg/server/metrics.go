package server

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics are the server's prometheus collectors.
type Metrics struct {
	Ticks          prometheus.Counter
	Passes         *prometheus.CounterVec
	PassDuration   *prometheus.HistogramVec
	DroppedLinks   prometheus.Counter
	TruncatedNodes prometheus.Counter
	Reloads        prometheus.Counter
	Sessions       prometheus.Gauge
}

// NewMetrics registers the collectors with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Ticks: f.NewCounter(prometheus.CounterOpts{
			Name: "relmap_force_ticks_total",
			Help: "Force layout ticks run across all sessions.",
		}),
		Passes: f.NewCounterVec(prometheus.CounterOpts{
			Name: "relmap_layout_passes_total",
			Help: "Layout passes started, by layout.",
		}, []string{"layout"}),
		PassDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "relmap_layout_pass_duration_seconds",
			Help:    "Time to build and solve one bubble layout or start one force layout.",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 14),
		}, []string{"layout"}),
		DroppedLinks: f.NewCounter(prometheus.CounterOpts{
			Name: "relmap_dropped_links_total",
			Help: "Links dropped because an endpoint was missing.",
		}),
		TruncatedNodes: f.NewCounter(prometheus.CounterOpts{
			Name: "relmap_truncated_nodes_total",
			Help: "Nodes left out of a layout pass by the node cap.",
		}),
		Reloads: f.NewCounter(prometheus.CounterOpts{
			Name: "relmap_graph_reloads_total",
			Help: "Times the served graph was replaced.",
		}),
		Sessions: f.NewGauge(prometheus.GaugeOpts{
			Name: "relmap_active_sessions",
			Help: "Open live layout sessions.",
		}),
	}
}

func (m *Metrics) observePass(layout string, started time.Time) {
	m.Passes.WithLabelValues(layout).Inc()
	m.PassDuration.WithLabelValues(layout).Observe(time.Since(started).Seconds())
}
