package metrics

import "github.com/prometheus/client_golang/prometheus"

// Eviction reasons.
const (
	EvictionQueueFull = "queue_full"
	EvictionClosed    = "closed"
)

// BroadcastMetrics holds Prometheus metrics for the subscriber registry.
type BroadcastMetrics struct {
	ActiveSubscribers prometheus.Gauge
	FanoutsTotal      prometheus.Counter
	DeliveriesTotal   prometheus.Counter
	EvictionsTotal    *prometheus.CounterVec
	FanoutDuration    prometheus.Histogram
}

// NewBroadcastMetrics creates and registers broadcast metrics on the given registry.
func NewBroadcastMetrics(reg prometheus.Registerer) *BroadcastMetrics {
	m := &BroadcastMetrics{
		ActiveSubscribers: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "broadcast",
			Name:      "active_subscribers",
			Help:      "Number of subscribers currently registered.",
		}),
		FanoutsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "broadcast",
			Name:      "fanouts_total",
			Help:      "Total number of fan-out operations.",
		}),
		DeliveriesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "broadcast",
			Name:      "deliveries_total",
			Help:      "Total number of frames handed to subscriber queues.",
		}),
		EvictionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "broadcast",
			Name:      "evictions_total",
			Help:      "Total number of subscribers removed after a failed send.",
		}, []string{"reason"}),
		FanoutDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "broadcast",
			Name:      "fanout_duration_seconds",
			Help:      "Time spent enqueuing one message for every subscriber.",
			Buckets:   []float64{.00005, .0001, .0005, .001, .005, .01, .05, .1},
		}),
	}

	reg.MustRegister(m.ActiveSubscribers, m.FanoutsTotal, m.DeliveriesTotal, m.EvictionsTotal, m.FanoutDuration)
	return m
}
