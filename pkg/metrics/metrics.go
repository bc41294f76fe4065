package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ClientMetrics counts outbound CRM API calls. One counter per endpoint and
// status (an HTTP status code or "error" for transport failures) plus a
// latency histogram per endpoint.
type ClientMetrics struct {
	Requests  *prometheus.CounterVec
	LatencyMS *prometheus.HistogramVec
}

// NewClientMetrics registers client metrics with reg, or the default
// registerer when reg is nil.
func NewClientMetrics(reg prometheus.Registerer) *ClientMetrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tablecrm",
		Subsystem: "client",
		Name:      "api_requests_total",
		Help:      "Total number of CRM API requests.",
	}, []string{"endpoint", "status"})
	latency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "tablecrm",
		Subsystem: "client",
		Name:      "api_request_duration_ms",
		Help:      "CRM API request latency in milliseconds.",
		Buckets:   []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
	}, []string{"endpoint"})

	reg.MustRegister(requests, latency)
	return &ClientMetrics{Requests: requests, LatencyMS: latency}
}

func (m *ClientMetrics) Observe(endpoint, status string, d time.Duration) {
	m.Requests.WithLabelValues(endpoint, status).Inc()
	m.LatencyMS.WithLabelValues(endpoint).Observe(float64(d.Milliseconds()))
}

// ServerMetrics instruments the crmdev fixture server.
type ServerMetrics struct {
	Requests  *prometheus.CounterVec
	LatencyMS *prometheus.HistogramVec
}

func NewServerMetrics(reg prometheus.Registerer) *ServerMetrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tablecrm",
		Subsystem: "crmdev",
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests.",
	}, []string{"handler", "status"})
	latency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "tablecrm",
		Subsystem: "crmdev",
		Name:      "http_request_duration_ms",
		Help:      "HTTP request latency in milliseconds.",
		Buckets:   []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
	}, []string{"handler"})

	reg.MustRegister(requests, latency)
	return &ServerMetrics{Requests: requests, LatencyMS: latency}
}

func (m *ServerMetrics) Observe(handler, status string, d time.Duration) {
	m.Requests.WithLabelValues(handler, status).Inc()
	m.LatencyMS.WithLabelValues(handler).Observe(float64(d.Milliseconds()))
}

func Handler() http.Handler {
	return promhttp.Handler()
}
