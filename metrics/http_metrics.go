package metrics

import (
	"strings"

	"github.com/prometheus/client_golang/prometheus"
)

var HTTPLatencyBuckets = []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10}

// HTTPMetrics is fed by the API request middleware and error handler.
type HTTPMetrics struct {
	RequestsTotal    *prometheus.CounterVec
	RequestDuration  *prometheus.HistogramVec
	RequestsInFlight prometheus.Gauge
	ErrorsTotal      *prometheus.CounterVec
}

func NewHTTPMetrics() *HTTPMetrics {
	return &HTTPMetrics{
		RequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "storefront_http_requests_total",
			Help:        "Requests served by method, route group and status class",
			ConstLabels: constLabels(),
		}, []string{"method", "handler", "status_class"}),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "storefront_http_request_duration_seconds",
			Help:        "Request latency by method and route group",
			Buckets:     HTTPLatencyBuckets,
			ConstLabels: constLabels(),
		}, []string{"method", "handler"}),
		RequestsInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "storefront_http_requests_in_flight",
			Help:        "Requests currently being served",
			ConstLabels: constLabels(),
		}),
		ErrorsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "storefront_http_errors_total",
			Help:        "Failed requests by route group and error kind",
			ConstLabels: constLabels(),
		}, []string{"handler", "error_type"}),
	}
}

func (h *HTTPMetrics) Register(reg *prometheus.Registry) {
	reg.MustRegister(h.RequestsTotal, h.RequestDuration, h.RequestsInFlight, h.ErrorsTotal)
}

var statusClasses = [...]string{"other", "1xx", "2xx", "3xx", "4xx", "5xx"}

// GetStatusClass maps a status code to "2xx".."5xx". 1xx and anything
// outside 100-599 are reported as "other".
func GetStatusClass(code int) string {
	class := code / 100
	if class < 2 || class >= len(statusClasses) {
		return "other"
	}
	return statusClasses[class]
}

// GetHandlerPattern reduces a request path to its route group, e.g.
// /api/nfts/12 becomes "nfts", keeping label cardinality bounded.
func GetHandlerPattern(path string) string {
	switch {
	case path == "" || path == "/":
		return "root"
	case path == "/health":
		return "health"
	case strings.HasPrefix(path, "/swagger"):
		return "swagger"
	case strings.HasPrefix(path, "/api/"):
		group, _, _ := strings.Cut(strings.TrimPrefix(path, "/api/"), "/")
		if group == "" {
			return "api"
		}
		return group
	default:
		return "other"
	}
}
