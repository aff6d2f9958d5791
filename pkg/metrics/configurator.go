package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	ResultSuccess = "success"
	ResultFailure = "failure"

	OutcomeLoaded     = "loaded"
	OutcomeNotFound   = "not_found"
	OutcomeFailed     = "failed"
	OutcomeSuperseded = "superseded"
)

// ConfiguratorMetrics records draft persistence, order submission and catalog loads.
type ConfiguratorMetrics struct {
	draftsSaved     *prometheus.CounterVec
	ordersSubmitted *prometheus.CounterVec
	catalogLoad     *prometheus.HistogramVec
}

// NewConfiguratorMetrics registers the configurator metrics on the provided registerer.
func NewConfiguratorMetrics(reg prometheus.Registerer) *ConfiguratorMetrics {
	if reg == nil {
		return &ConfiguratorMetrics{}
	}
	draftsSaved := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "drafts_saved_total",
		Help: "Configuration draft save attempts by result.",
	}, []string{"result"})
	ordersSubmitted := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "orders_submitted_total",
		Help: "Order submission attempts by result.",
	}, []string{"result"})
	catalogLoad := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "catalog_load_duration_seconds",
		Help:    "Duration of per-model catalog loads in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"outcome"})
	reg.MustRegister(draftsSaved, ordersSubmitted, catalogLoad)
	return &ConfiguratorMetrics{
		draftsSaved:     draftsSaved,
		ordersSubmitted: ordersSubmitted,
		catalogLoad:     catalogLoad,
	}
}

// DraftSaved counts a draft save attempt.
func (m *ConfiguratorMetrics) DraftSaved(result string) {
	if m == nil || m.draftsSaved == nil {
		return
	}
	m.draftsSaved.WithLabelValues(normalizeLabel(result)).Inc()
}

// OrderSubmitted counts an order submission attempt.
func (m *ConfiguratorMetrics) OrderSubmitted(result string) {
	if m == nil || m.ordersSubmitted == nil {
		return
	}
	m.ordersSubmitted.WithLabelValues(normalizeLabel(result)).Inc()
}

// ObserveCatalogLoad records how long a catalog load took.
func (m *ConfiguratorMetrics) ObserveCatalogLoad(outcome string, duration time.Duration) {
	if m == nil || m.catalogLoad == nil {
		return
	}
	m.catalogLoad.WithLabelValues(normalizeLabel(outcome)).Observe(duration.Seconds())
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
