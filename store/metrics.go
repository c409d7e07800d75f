package store

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Operation outcome labels.
const (
	resultOK      = "ok"
	resultMissing = "missing"
	resultCorrupt = "corrupt"
	resultError   = "error"
)

// Metrics records store activity. A nil *Metrics records nothing.
type Metrics struct {
	operations *prometheus.CounterVec
	recipes    prometheus.Gauge
}

// NewMetrics registers the store collectors with reg. A nil reg leaves
// them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		operations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "recipebox",
			Subsystem: "store",
			Name:      "operations_total",
			Help:      "Recipe store operations by operation and result.",
		}, []string{"op", "result"}),
		recipes: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "recipebox",
			Subsystem: "store",
			Name:      "recipes",
			Help:      "Recipes in the collection after the last successful read or write.",
		}),
	}
}

func (m *Metrics) observe(op, result string) {
	if m == nil {
		return
	}
	m.operations.WithLabelValues(op, result).Inc()
}

func (m *Metrics) size(n int) {
	if m == nil {
		return
	}
	m.recipes.Set(float64(n))
}
