package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	IndexerLatencyBuckets = []float64{0.1, 0.5, 1, 2.5, 5, 10, 30}
	SigningLatencyBuckets = []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10}
)

// StorefrontMetrics groups minting and indexing metrics
type StorefrontMetrics struct {
	VouchersIssuedTotal   *prometheus.CounterVec
	VoucherFailuresTotal  *prometheus.CounterVec
	VoucherDuration       prometheus.Histogram
	VouchersRedeemedTotal prometheus.Counter
	UploadsTotal          *prometheus.CounterVec
	UploadBytes           prometheus.Counter

	NftEventsTotal      *prometheus.CounterVec
	IndexedBlockHeight  prometheus.Gauge
	OnchainMintedCount  prometheus.Gauge
	BatchProcessingTime *prometheus.HistogramVec
	ProcessingErrors    *prometheus.CounterVec
}

// NewStorefrontMetrics creates and returns storefront metrics
func NewStorefrontMetrics() *StorefrontMetrics {
	return &StorefrontMetrics{
		VouchersIssuedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name:        "storefront_vouchers_issued_total",
				Help:        "Total number of signed mint vouchers issued",
				ConstLabels: constLabels(),
			},
			[]string{"contract_type"},
		),
		VoucherFailuresTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name:        "storefront_voucher_failures_total",
				Help:        "Total number of rejected or failed voucher requests",
				ConstLabels: constLabels(),
			},
			[]string{"reason"}, // validation, signer, storage, database
		),
		VoucherDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:        "storefront_voucher_duration_seconds",
				Help:        "Time spent producing a signed voucher, metadata upload included",
				Buckets:     SigningLatencyBuckets,
				ConstLabels: constLabels(),
			},
		),
		VouchersRedeemedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name:        "storefront_vouchers_redeemed_total",
				Help:        "Total number of vouchers observed as redeemed on chain",
				ConstLabels: constLabels(),
			},
		),
		UploadsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name:        "storefront_uploads_total",
				Help:        "Total number of files uploaded to storage",
				ConstLabels: constLabels(),
			},
			[]string{"kind", "status"}, // kind: image, metadata
		),
		UploadBytes: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name:        "storefront_upload_bytes_total",
				Help:        "Total number of bytes uploaded to storage",
				ConstLabels: constLabels(),
			},
		),
		NftEventsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name:        "storefront_nft_events_total",
				Help:        "Total number of collection events indexed",
				ConstLabels: constLabels(),
			},
			[]string{"event"}, // mint, transfer, burn, mint_with_signature
		),
		IndexedBlockHeight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name:        "storefront_indexed_block_height",
				Help:        "Last block height fully indexed",
				ConstLabels: constLabels(),
			},
		),
		OnchainMintedCount: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name:        "storefront_onchain_minted_count",
				Help:        "Tokens minted according to the collection contract",
				ConstLabels: constLabels(),
			},
		),
		BatchProcessingTime: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:        "storefront_batch_processing_duration_seconds",
				Help:        "Time spent processing an indexer block range",
				Buckets:     IndexerLatencyBuckets,
				ConstLabels: constLabels(),
			},
			[]string{"stage"}, // "filter", "fetch", "store"
		),
		ProcessingErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name:        "storefront_processing_errors_total",
				Help:        "Total number of indexer processing errors",
				ConstLabels: constLabels(),
			},
			[]string{"stage", "error_type"},
		),
	}
}

// Register registers all storefront metrics with the given registry
func (s *StorefrontMetrics) Register(reg *prometheus.Registry) {
	reg.MustRegister(
		s.VouchersIssuedTotal,
		s.VoucherFailuresTotal,
		s.VoucherDuration,
		s.VouchersRedeemedTotal,
		s.UploadsTotal,
		s.UploadBytes,
		s.NftEventsTotal,
		s.IndexedBlockHeight,
		s.OnchainMintedCount,
		s.BatchProcessingTime,
		s.ProcessingErrors,
	)
}
