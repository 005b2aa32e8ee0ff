package metrics

import (
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestHTTPMetricsExportsCountersAndHistogram(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewHTTPMetrics(reg)
	metrics.Observe("GET", "/items/{id}", 200, 250*time.Millisecond)
	metrics.Observe("GET", "/items/{id}", 404, 10*time.Millisecond)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	if got, err := fetchCounterValue(mfs, "http_requests_total", "status", "200"); err != nil {
		t.Fatalf("fetch ok counter: %v", err)
	} else if got != 1 {
		t.Fatalf("expected 200 count=1, got %f", got)
	}

	if got, err := fetchCounterValue(mfs, "http_requests_total", "status", "404"); err != nil {
		t.Fatalf("fetch not-found counter: %v", err)
	} else if got != 1 {
		t.Fatalf("expected 404 count=1, got %f", got)
	}

	if got, err := fetchHistogramSum(mfs, "http_request_duration_seconds", "route", "/items/{id}"); err != nil {
		t.Fatalf("fetch duration: %v", err)
	} else if got <= 0.25 {
		t.Fatalf("expected duration sum > 0.25, got %f", got)
	}
}

func TestShopMetricsCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewShopMetrics(reg)
	metrics.IncOrderCreated()
	metrics.IncOrderCreated()
	metrics.IncOrderCanceled()
	metrics.IncOrderStatus("shipped")
	metrics.IncReviewAdded()

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	created := findMetricFamily(mfs, "orders_created_total")
	if created == nil || created.GetMetric()[0].GetCounter().GetValue() != 2 {
		t.Fatalf("expected orders_created_total=2, got %v", created)
	}
	if got, err := fetchCounterValue(mfs, "order_status_updates_total", "status", "shipped"); err != nil {
		t.Fatalf("fetch status counter: %v", err)
	} else if got != 1 {
		t.Fatalf("expected shipped=1, got %f", got)
	}
}

func TestNilMetricsAreNoops(t *testing.T) {
	var httpMetrics *HTTPMetrics
	httpMetrics.Observe("GET", "/", 200, time.Millisecond)
	NewHTTPMetrics(nil).Observe("GET", "/", 200, time.Millisecond)

	var shop *ShopMetrics
	shop.IncOrderCreated()
	NewShopMetrics(nil).IncReviewAdded()
}

func fetchCounterValue(mfs []*dto.MetricFamily, name, label, value string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if matchesLabel(metric.GetLabel(), label, value) {
			return metric.GetCounter().GetValue(), nil
		}
	}
	return 0, fmt.Errorf("metric %q missing label %s=%s", name, label, value)
}

func fetchHistogramSum(mfs []*dto.MetricFamily, name, label, value string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if matchesLabel(metric.GetLabel(), label, value) {
			return metric.GetHistogram().GetSampleSum(), nil
		}
	}
	return 0, fmt.Errorf("histogram %q missing label %s=%s", name, label, value)
}

func findMetricFamily(mfs []*dto.MetricFamily, name string) *dto.MetricFamily {
	for _, mf := range mfs {
		if mf.GetName() == name {
			return mf
		}
	}
	return nil
}

func matchesLabel(labels []*dto.LabelPair, name, value string) bool {
	for _, label := range labels {
		if label.GetName() == name && label.GetValue() == value {
			return true
		}
	}
	return false
}
