package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func TestBackendMetricsObserve(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewBackendMetrics(reg)
	m.ObserveRequest("citas", "GET", 200, 0.05)
	m.ObserveRequest("caja", "POST", 409, 0.12)
}

func TestBackendMetricsTransportFailure(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewBackendMetrics(reg)
	m.ObserveRequest("pacientes", "GET", 0, 1.2)
}

func TestBackendMetricsNilSafe(t *testing.T) {
	var m *BackendMetrics
	m.ObserveRequest("citas", "GET", 200, 0.05)
}
