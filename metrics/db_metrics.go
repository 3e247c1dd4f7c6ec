package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	DBLatencyBuckets = []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1}
	RowCountBuckets  = []float64{1, 10, 50, 100, 500, 1000, 5000}
)

// DatabaseMetrics covers the connection pool, fed by DBStatsUpdater, and
// per statement timings, fed by the gorm metrics plugin.
type DatabaseMetrics struct {
	ConnectionsActive       prometheus.Gauge
	ConnectionsIdle         prometheus.Gauge
	ConnectionsMaxOpen      prometheus.Gauge
	ConnectionsWaitCount    prometheus.Counter
	ConnectionsWaitDuration prometheus.Histogram
	QueriesTotal            *prometheus.CounterVec
	QueryDuration           *prometheus.HistogramVec
	RowsAffected            *prometheus.HistogramVec
}

func NewDatabaseMetrics() *DatabaseMetrics {
	gauge := func(name, help string) prometheus.Gauge {
		return prometheus.NewGauge(prometheus.GaugeOpts{Name: "storefront_db_" + name, Help: help, ConstLabels: constLabels()})
	}
	return &DatabaseMetrics{
		ConnectionsActive:  gauge("connections_active", "Connections currently in use"),
		ConnectionsIdle:    gauge("connections_idle", "Idle connections in the pool"),
		ConnectionsMaxOpen: gauge("connections_max_open", "Configured connection limit"),
		ConnectionsWaitCount: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "storefront_db_connections_wait_count_total",
			Help:        "Times a query had to wait for a free connection",
			ConstLabels: constLabels(),
		}),
		ConnectionsWaitDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:        "storefront_db_connections_wait_duration_seconds",
			Help:        "Time spent waiting for a free connection between two samples",
			Buckets:     prometheus.DefBuckets,
			ConstLabels: constLabels(),
		}),
		QueriesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "storefront_db_queries_total",
			Help:        "Statements executed by operation and outcome",
			ConstLabels: constLabels(),
		}, []string{"operation", "status"}),
		QueryDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "storefront_db_query_duration_seconds",
			Help:        "Statement latency by operation and table",
			Buckets:     DBLatencyBuckets,
			ConstLabels: constLabels(),
		}, []string{"operation", "table"}),
		RowsAffected: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "storefront_db_rows_affected",
			Help:        "Rows written per statement",
			Buckets:     RowCountBuckets,
			ConstLabels: constLabels(),
		}, []string{"operation"}),
	}
}

func (d *DatabaseMetrics) Register(reg *prometheus.Registry) {
	reg.MustRegister(
		d.ConnectionsActive,
		d.ConnectionsIdle,
		d.ConnectionsMaxOpen,
		d.ConnectionsWaitCount,
		d.ConnectionsWaitDuration,
		d.QueriesTotal,
		d.QueryDuration,
		d.RowsAffected,
	)
}

func DBQueriesTotal() *prometheus.CounterVec {
	return GetMetrics().Database.QueriesTotal
}

func DBQueryDuration() *prometheus.HistogramVec {
	return GetMetrics().Database.QueryDuration
}

func DBRowsAffected() *prometheus.HistogramVec {
	return GetMetrics().Database.RowsAffected
}
