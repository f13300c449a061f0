package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func gatherCounter(t *testing.T, reg *prometheus.Registry, name string) *dto.MetricFamily {
	t.Helper()
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather error: %v", err)
	}
	for _, family := range families {
		if family.GetName() == name {
			return family
		}
	}
	return nil
}

func TestObserveRecordsRequest(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewHTTPMetrics(reg)

	m.Observe("GET", "/api/subscriptions", 200, 15*time.Millisecond)
	m.Observe("GET", "/api/subscriptions", 200, 5*time.Millisecond)

	family := gatherCounter(t, reg, "http_requests_total")
	if family == nil {
		t.Fatal("expected http_requests_total family")
	}
	if got := family.GetMetric()[0].GetCounter().GetValue(); got != 2 {
		t.Fatalf("expected 2 requests recorded, got %v", got)
	}
}

func TestObserveDefaultsRouteLabel(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewHTTPMetrics(reg)

	m.Observe("GET", "", 404, time.Millisecond)

	family := gatherCounter(t, reg, "http_requests_total")
	if family == nil {
		t.Fatal("expected http_requests_total family")
	}
	found := false
	for _, label := range family.GetMetric()[0].GetLabel() {
		if label.GetName() == "route" && label.GetValue() == "unmatched" {
			found = true
		}
	}
	if !found {
		t.Fatal("expected unmatched route label")
	}
}

func TestNilRegistererIsSafe(t *testing.T) {
	m := NewHTTPMetrics(nil)
	m.Observe("GET", "/", 200, time.Millisecond)

	var none *HTTPMetrics
	none.Observe("GET", "/", 200, time.Millisecond)
}
