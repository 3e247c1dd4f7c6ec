package metrics

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/JWebSmart/Nft-marketplace/config"
)

// Metrics holds every collector group exported by the storefront.
type Metrics struct {
	HTTP        *HTTPMetrics
	Database    *DatabaseMetrics
	Chain       *ChainMetrics
	ExternalAPI *ExternalAPIMetrics
	Storefront  *StorefrontMetrics
	Error       *ErrorMetrics
}

type group interface {
	Register(reg *prometheus.Registry)
}

var (
	registry *prometheus.Registry
	metrics  *Metrics
	initOnce sync.Once

	// chainIdLabel is attached to every collector as a const label.
	chainIdLabel string
)

func constLabels() prometheus.Labels {
	if chainIdLabel == "" {
		return nil
	}
	return prometheus.Labels{"chain_id": chainIdLabel}
}

// Init builds the registry. Only the first call has any effect.
func Init(chainId int64) {
	initOnce.Do(func() {
		if chainId > 0 {
			chainIdLabel = strconv.FormatInt(chainId, 10)
		}
		registry = prometheus.NewRegistry()
		metrics = &Metrics{
			HTTP:        NewHTTPMetrics(),
			Database:    NewDatabaseMetrics(),
			Chain:       NewChainMetrics(),
			ExternalAPI: NewExternalAPIMetrics(),
			Storefront:  NewStorefrontMetrics(),
			Error:       NewErrorMetrics(),
		}
		for _, g := range []group{metrics.HTTP, metrics.Database, metrics.Chain, metrics.ExternalAPI, metrics.Storefront, metrics.Error} {
			g.Register(registry)
		}
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	})
}

// GetMetrics returns the process metrics, initializing an unlabelled
// registry when Init has not run yet.
func GetMetrics() *Metrics {
	Init(0)
	return metrics
}

func Registry() *prometheus.Registry {
	Init(0)
	return registry
}

// Server exposes the registry on METRICS_PORT/METRICS_PATH.
type Server struct {
	server *http.Server
	logger *slog.Logger
	cfg    *config.MetricsConfig
}

func NewServer(cfg *config.Config, logger *slog.Logger) *Server {
	metricsCfg := cfg.GetMetricsConfig()
	if metricsCfg == nil {
		metricsCfg = &config.MetricsConfig{}
	}
	Init(cfg.GetChainId())

	mux := http.NewServeMux()
	mux.Handle(metricsCfg.Path, promhttp.HandlerFor(registry, promhttp.HandlerOpts{EnableOpenMetrics: true}))

	return &Server{
		server: &http.Server{
			Addr:              ":" + metricsCfg.Port,
			Handler:           mux,
			ReadHeaderTimeout: 3 * time.Second,
		},
		logger: logger.With("component", "metrics"),
		cfg:    metricsCfg,
	}
}

// Start blocks until the server is shut down. It returns immediately when
// metrics are disabled.
func (s *Server) Start() error {
	if !s.cfg.Enabled {
		s.logger.Info("metrics server disabled")
		return nil
	}
	s.logger.Info("starting metrics server", slog.String("addr", s.server.Addr), slog.String("path", s.cfg.Path))
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops the server and the pool statistics updater.
func (s *Server) Shutdown(ctx context.Context) error {
	StopDBStatsUpdater()
	if !s.cfg.Enabled {
		return nil
	}
	s.logger.Info("shutting down metrics server")
	return s.server.Shutdown(ctx)
}
