package metrics

import "github.com/prometheus/client_golang/prometheus"

// ErrorMetrics counts failures per component. Component health is a 0/1
// gauge flipped by long running loops such as the indexer.
type ErrorMetrics struct {
	PanicsTotal     *prometheus.CounterVec
	ErrorsTotal     *prometheus.CounterVec
	ComponentHealth *prometheus.GaugeVec
}

func NewErrorMetrics() *ErrorMetrics {
	counter := func(name, help string, labels ...string) *prometheus.CounterVec {
		return prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "storefront_" + name,
			Help:        help,
			ConstLabels: constLabels(),
		}, labels)
	}
	return &ErrorMetrics{
		PanicsTotal: counter("panics_total", "Recovered panics by component", "component"),
		ErrorsTotal: counter("errors_total", "Errors by component and type", "component", "error_type"),
		ComponentHealth: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name:        "storefront_component_health",
			Help:        "1 when the component's last run succeeded, 0 otherwise",
			ConstLabels: constLabels(),
		}, []string{"component"}),
	}
}

func (e *ErrorMetrics) Register(reg *prometheus.Registry) {
	reg.MustRegister(e.PanicsTotal, e.ErrorsTotal, e.ComponentHealth)
}

func TrackPanic(component string) {
	GetMetrics().Error.PanicsTotal.WithLabelValues(component).Inc()
	TrackError(component, "panic")
}

// TrackError counts an error. errorType is a short snake_case reason such
// as "db_error" or "storage_error".
func TrackError(component, errorType string) {
	GetMetrics().Error.ErrorsTotal.WithLabelValues(component, errorType).Inc()
}

func SetComponentHealth(component string, healthy bool) {
	gauge := GetMetrics().Error.ComponentHealth.WithLabelValues(component)
	if healthy {
		gauge.Set(1)
		return
	}
	gauge.Set(0)
}
