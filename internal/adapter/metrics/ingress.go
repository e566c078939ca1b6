package metrics

import "github.com/prometheus/client_golang/prometheus"

// Submission results.
const (
	SubmissionAccepted = "accepted"
	SubmissionRejected = "rejected"
)

// IngressMetrics holds Prometheus metrics for publisher submissions.
type IngressMetrics struct {
	SubmissionsTotal *prometheus.CounterVec
	Recipients       prometheus.Histogram
}

// NewIngressMetrics creates and registers ingress metrics on the given registry.
func NewIngressMetrics(reg prometheus.Registerer) *IngressMetrics {
	m := &IngressMetrics{
		SubmissionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingress",
			Name:      "submissions_total",
			Help:      "Total number of submissions by result.",
		}, []string{"result"}),
		Recipients: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "ingress",
			Name:      "recipients",
			Help:      "Number of subscribers each accepted submission was fanned out to.",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
		}),
	}

	reg.MustRegister(m.SubmissionsTotal, m.Recipients)
	return m
}
