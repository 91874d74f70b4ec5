package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// BackendMetrics exposes counters/histograms for calls against the clinic backend API.
type BackendMetrics struct {
	requestsTotal  *prometheus.CounterVec
	requestLatency *prometheus.HistogramVec
}

func NewBackendMetrics(reg prometheus.Registerer) *BackendMetrics {
	m := &BackendMetrics{
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clinicadmin",
			Subsystem: "backend",
			Name:      "requests_total",
			Help:      "Total requests issued to the backend API",
		}, []string{"resource", "method", "status"}),
		requestLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "clinicadmin",
			Subsystem: "backend",
			Name:      "request_latency_seconds",
			Help:      "Latency of backend API requests",
			Buckets:   prometheus.DefBuckets,
		}, []string{"resource", "method"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.requestsTotal, m.requestLatency)
	return m
}

// ObserveRequest records one backend call. A status of 0 means the request
// never produced an HTTP response (transport failure).
func (m *BackendMetrics) ObserveRequest(resource, method string, status int, seconds float64) {
	if m == nil {
		return
	}
	label := "error"
	if status > 0 {
		label = strconv.Itoa(status)
	}
	m.requestsTotal.WithLabelValues(resource, method, label).Inc()
	m.requestLatency.WithLabelValues(resource, method).Observe(seconds)
}
