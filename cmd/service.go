package cmd

import (
	"context"
	"log/slog"
	"time"

	"github.com/JWebSmart/Nft-marketplace/config"
	"github.com/JWebSmart/Nft-marketplace/metrics"
	"github.com/JWebSmart/Nft-marketplace/mq"
	"github.com/JWebSmart/Nft-marketplace/orm"
	"github.com/JWebSmart/Nft-marketplace/sentry_integration"
)

const shutdownTimeout = 10 * time.Second

type eventPublisher interface {
	Publish(event mq.Event) error
}

func initSentry(cfg *config.Config, logger *slog.Logger) {
	sentryCfg := cfg.GetSentryConfig()
	if sentryCfg == nil {
		return
	}
	if err := sentry_integration.Init(sentryCfg, config.Version); err != nil {
		logger.Warn("failed to initialize sentry", slog.Any("error", err))
	}
}

// startMetrics serves the prometheus registry in the background when enabled.
func startMetrics(cfg *config.Config, logger *slog.Logger) *metrics.Server {
	server := metrics.NewServer(cfg, logger)
	go func() {
		if err := server.Start(); err != nil {
			logger.Error("metrics server stopped", slog.Any("error", err))
		}
	}()
	return server
}

func stopMetrics(server *metrics.Server, logger *slog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Warn("metrics shutdown failed", slog.Any("error", err))
	}
}

// openDatabase connects, applies pending migrations when DB_AUTO_MIGRATE is
// set and starts pool statistics collection.
func openDatabase(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*orm.Database, error) {
	db, err := orm.OpenDB(cfg.GetDBConfig(), logger)
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	metrics.StartDBStatsUpdater(db, logger)
	return db, nil
}

// newPublisher returns a nil publisher when the event stream is disabled.
func newPublisher(cfg *config.Config, logger *slog.Logger) (eventPublisher, func(), error) {
	mqCfg := cfg.GetRabbitMQConfig()
	if mqCfg == nil {
		return nil, func() {}, nil
	}

	producer, err := mq.NewProducer(*mqCfg)
	if err != nil {
		return nil, nil, err
	}
	if err := producer.DeclareStream(mqCfg.Stream, mqCfg.Partitions); err != nil {
		_ = producer.Close()
		return nil, nil, err
	}
	logger.Info("publishing storefront events", slog.String("stream", mqCfg.Stream))

	return producer, func() {
		if err := producer.Close(); err != nil {
			logger.Warn("failed to close event producer", slog.Any("error", err))
		}
	}, nil
}
