package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"custom-id-generator/internal/customid"
	"custom-id-generator/internal/inventory"
)

const namespace = "customid"

type Metrics struct {
	generated *prometheus.CounterVec
	failures  *prometheus.CounterVec
	attempts  prometheus.Histogram
	duration  prometheus.Histogram
}

func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		generated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "generated_total",
			Help:      "Custom ids issued, by inventory.",
		}, []string{"inventory"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "failures_total",
			Help:      "Failed id generations, by reason.",
		}, []string{"reason"}),
		attempts: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "attempts",
			Help:      "Compositions needed per issued id.",
			Buckets:   []float64{1, 2, 3, 4, 5, 10},
		}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "generate_seconds",
			Help:      "Time spent issuing one id.",
			Buckets:   prometheus.DefBuckets,
		}),
	}

	reg.MustRegister(m.generated, m.failures, m.attempts, m.duration)

	return m
}

func (m *Metrics) ObserveSuccess(inventoryID string, attempts int, took time.Duration) {
	m.generated.WithLabelValues(inventoryID).Inc()
	m.attempts.Observe(float64(attempts))
	m.duration.Observe(took.Seconds())
}

func (m *Metrics) ObserveFailure(err error, took time.Duration) {
	m.failures.WithLabelValues(Reason(err)).Inc()
	m.duration.Observe(took.Seconds())
}

// Reason maps an issuing error to a low cardinality label value.
func Reason(err error) string {
	switch {
	case errors.Is(err, customid.ErrInvalidTemplate):
		return "invalid_template"
	case errors.Is(err, customid.ErrSequenceAllocationFailed):
		return "sequence_allocation_failed"
	case errors.Is(err, customid.ErrUniquenessExhausted):
		return "uniqueness_exhausted"
	case errors.Is(err, inventory.ErrInventoryNotFound):
		return "not_found"
	case errors.Is(err, inventory.ErrForbidden):
		return "forbidden"
	default:
		return "internal"
	}
}
