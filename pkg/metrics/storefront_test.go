package metrics

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestStorefrontMetricsExportsCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewStorefrontMetrics(reg)

	m.ObserveRemoteCall("add_to_cart", 120*time.Millisecond, nil)
	m.ObserveRemoteCall("add_to_cart", 80*time.Millisecond, errors.New("down"))
	m.IncMigratedItem("cart", nil)
	m.IncMigratedItem("cart", nil)
	m.IncMigratedItem("wishlist", errors.New("gone"))
	m.IncCatalogFallback("")
	m.IncCorruptLocalValue("cart")

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	assertCounter(t, mfs, "storefront_remote_calls_total", map[string]string{"operation": "add_to_cart", "outcome": OutcomeSuccess}, 1)
	assertCounter(t, mfs, "storefront_remote_calls_total", map[string]string{"operation": "add_to_cart", "outcome": OutcomeFailure}, 1)
	assertCounter(t, mfs, "storefront_guest_migration_items_total", map[string]string{"collection": "cart", "outcome": OutcomeSuccess}, 2)
	assertCounter(t, mfs, "storefront_guest_migration_items_total", map[string]string{"collection": "wishlist", "outcome": OutcomeFailure}, 1)
	assertCounter(t, mfs, "storefront_catalog_fallbacks_total", map[string]string{"operation": "unknown"}, 1)
	assertCounter(t, mfs, "storefront_local_corrupt_values_total", map[string]string{"key": "cart"}, 1)

	sum, err := fetchHistogramSum(mfs, "storefront_remote_call_duration_seconds", "operation", "add_to_cart")
	if err != nil {
		t.Fatalf("fetch duration: %v", err)
	}
	if sum <= 0 {
		t.Fatalf("expected duration sum > 0, got %f", sum)
	}
}

func TestNilRegistererIsNoop(t *testing.T) {
	m := NewStorefrontMetrics(nil)
	m.ObserveRemoteCall("get_cart", time.Second, nil)
	m.IncMigratedItem("cart", nil)
	m.IncCatalogFallback("products")
	m.IncCorruptLocalValue("wishlist")

	var nilMetrics *StorefrontMetrics
	nilMetrics.ObserveRemoteCall("get_cart", time.Second, nil)
}

func assertCounter(t *testing.T, mfs []*dto.MetricFamily, name string, labels map[string]string, want float64) {
	t.Helper()
	got, err := fetchCounterValue(mfs, name, labels)
	if err != nil {
		t.Fatalf("fetch %s: %v", name, err)
	}
	if got != want {
		t.Fatalf("%s%v expected %f got %f", name, labels, want, got)
	}
}

func fetchCounterValue(mfs []*dto.MetricFamily, name string, labels map[string]string) (float64, error) {
	for _, mf := range mfs {
		if mf.GetName() != name {
			continue
		}
		for _, metric := range mf.Metric {
			if labelsMatch(metric.Label, labels) && metric.Counter != nil {
				return metric.Counter.GetValue(), nil
			}
		}
	}
	return 0, fmt.Errorf("metric %s%v not found", name, labels)
}

func fetchHistogramSum(mfs []*dto.MetricFamily, name, labelName, labelValue string) (float64, error) {
	for _, mf := range mfs {
		if mf.GetName() != name {
			continue
		}
		for _, metric := range mf.Metric {
			if labelsMatch(metric.Label, map[string]string{labelName: labelValue}) && metric.Histogram != nil {
				return metric.Histogram.GetSampleSum(), nil
			}
		}
	}
	return 0, fmt.Errorf("histogram %s not found", name)
}

func labelsMatch(pairs []*dto.LabelPair, want map[string]string) bool {
	matched := 0
	for _, pair := range pairs {
		if v, ok := want[pair.GetName()]; ok {
			if v != pair.GetValue() {
				return false
			}
			matched++
		}
	}
	return matched == len(want)
}
