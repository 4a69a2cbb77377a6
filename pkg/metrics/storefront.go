package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// StorefrontMetrics records client-side remote calls, guest migrations,
// catalog fallbacks and local storage decode failures.
type StorefrontMetrics struct {
	remoteDuration *prometheus.HistogramVec
	remoteCalls    *prometheus.CounterVec
	migratedItems  *prometheus.CounterVec
	fallbacks      *prometheus.CounterVec
	corruptKeys    *prometheus.CounterVec
}

// NewStorefrontMetrics registers the storefront metrics on the provided registerer.
// A nil registerer yields a no-op collector.
func NewStorefrontMetrics(reg prometheus.Registerer) *StorefrontMetrics {
	if reg == nil {
		return &StorefrontMetrics{}
	}
	remoteDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "storefront_remote_call_duration_seconds",
		Help:    "Duration of storefront API calls in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})
	remoteCalls := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_remote_calls_total",
		Help: "Storefront API calls by operation and outcome.",
	}, []string{"operation", "outcome"})
	migratedItems := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_guest_migration_items_total",
		Help: "Guest cart and wishlist entries moved into an account on sign-in.",
	}, []string{"collection", "outcome"})
	fallbacks := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_catalog_fallbacks_total",
		Help: "Catalog reads served by the fallback source.",
	}, []string{"operation"})
	corruptKeys := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_local_corrupt_values_total",
		Help: "Local storage values that failed to decode and were treated as empty.",
	}, []string{"key"})
	reg.MustRegister(remoteDuration, remoteCalls, migratedItems, fallbacks, corruptKeys)
	return &StorefrontMetrics{
		remoteDuration: remoteDuration,
		remoteCalls:    remoteCalls,
		migratedItems:  migratedItems,
		fallbacks:      fallbacks,
		corruptKeys:    corruptKeys,
	}
}

// ObserveRemoteCall records duration and outcome of one API call.
func (m *StorefrontMetrics) ObserveRemoteCall(operation string, duration time.Duration, err error) {
	if m == nil || m.remoteCalls == nil {
		return
	}
	op := normalizeLabel(operation)
	m.remoteDuration.WithLabelValues(op).Observe(duration.Seconds())
	m.remoteCalls.WithLabelValues(op, outcome(err)).Inc()
}

// IncMigratedItem counts one guest entry migration attempt.
func (m *StorefrontMetrics) IncMigratedItem(collection string, err error) {
	if m == nil || m.migratedItems == nil {
		return
	}
	m.migratedItems.WithLabelValues(normalizeLabel(collection), outcome(err)).Inc()
}

// IncCatalogFallback counts a catalog read answered by the fallback source.
func (m *StorefrontMetrics) IncCatalogFallback(operation string) {
	if m == nil || m.fallbacks == nil {
		return
	}
	m.fallbacks.WithLabelValues(normalizeLabel(operation)).Inc()
}

// IncCorruptLocalValue counts a local value that could not be decoded.
func (m *StorefrontMetrics) IncCorruptLocalValue(key string) {
	if m == nil || m.corruptKeys == nil {
		return
	}
	m.corruptKeys.WithLabelValues(normalizeLabel(key)).Inc()
}

func outcome(err error) string {
	if err != nil {
		return OutcomeFailure
	}
	return OutcomeSuccess
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
