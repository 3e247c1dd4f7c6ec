package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	RPCLatencyBuckets = []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10}
)

// ChainMetrics groups JSON-RPC metrics
type ChainMetrics struct {
	RPCRequestsTotal  *prometheus.CounterVec
	RPCLatency        *prometheus.HistogramVec
	EndpointRotations prometheus.Counter
	EndpointHealth    *prometheus.GaugeVec
	TransactionsSent  *prometheus.CounterVec
	LatestChainHeight prometheus.Gauge
}

// NewChainMetrics creates and returns chain metrics
func NewChainMetrics() *ChainMetrics {
	return &ChainMetrics{
		RPCRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name:        "storefront_rpc_requests_total",
				Help:        "Total number of JSON-RPC requests",
				ConstLabels: constLabels(),
			},
			[]string{"method", "status"},
		),
		RPCLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:        "storefront_rpc_latency_seconds",
				Help:        "JSON-RPC request latency in seconds",
				Buckets:     RPCLatencyBuckets,
				ConstLabels: constLabels(),
			},
			[]string{"method"},
		),
		EndpointRotations: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name:        "storefront_rpc_endpoint_rotations_total",
				Help:        "Number of times the JSON-RPC endpoint was rotated after failures",
				ConstLabels: constLabels(),
			},
		),
		EndpointHealth: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name:        "storefront_rpc_endpoint_healthy",
				Help:        "Health of each JSON-RPC endpoint (1=healthy, 0=unhealthy)",
				ConstLabels: constLabels(),
			},
			[]string{"endpoint"},
		),
		TransactionsSent: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name:        "storefront_transactions_sent_total",
				Help:        "Total number of transactions submitted",
				ConstLabels: constLabels(),
			},
			[]string{"method", "status"},
		),
		LatestChainHeight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name:        "storefront_chain_height",
				Help:        "Latest block number reported by the chain",
				ConstLabels: constLabels(),
			},
		),
	}
}

// Register registers all chain metrics with the given registry
func (c *ChainMetrics) Register(reg *prometheus.Registry) {
	reg.MustRegister(
		c.RPCRequestsTotal,
		c.RPCLatency,
		c.EndpointRotations,
		c.EndpointHealth,
		c.TransactionsSent,
		c.LatestChainHeight,
	)
}
