package metrics

import (
	"context"
	"database/sql"
	"log/slog"
	"sync"
	"time"
)

const dbStatsInterval = 10 * time.Second

type DBStatsProvider interface {
	GetDBStats() (*sql.DBStats, error)
}

var (
	dbStatsMu      sync.Mutex
	dbStatsUpdater *DBStatsUpdater
)

// DBStatsUpdater samples sql.DBStats on an interval and exports the pool
// gauges. Wait counters are cumulative in sql.DBStats, so only the growth
// since the previous sample is added.
type DBStatsUpdater struct {
	provider DBStatsProvider
	logger   *slog.Logger
	metrics  *DatabaseMetrics
	cancel   context.CancelFunc
	done     chan struct{}

	prevWaitCount    int64
	prevWaitDuration time.Duration
}

func NewDBStatsUpdater(provider DBStatsProvider, logger *slog.Logger, metrics *DatabaseMetrics) *DBStatsUpdater {
	return &DBStatsUpdater{
		provider: provider,
		logger:   logger.With("component", "db_stats"),
		metrics:  metrics,
	}
}

func (u *DBStatsUpdater) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	u.cancel = cancel
	u.done = make(chan struct{})
	u.collect()
	go u.run(ctx)
}

func (u *DBStatsUpdater) Stop() {
	if u.cancel == nil {
		return
	}
	u.cancel()
	<-u.done
}

func (u *DBStatsUpdater) run(ctx context.Context) {
	defer close(u.done)
	ticker := time.NewTicker(dbStatsInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			u.collect()
		case <-ctx.Done():
			return
		}
	}
}

func (u *DBStatsUpdater) collect() {
	stats, err := u.provider.GetDBStats()
	if err != nil {
		u.logger.Error("failed to read database stats", slog.Any("error", err))
		return
	}

	u.metrics.ConnectionsActive.Set(float64(stats.InUse))
	u.metrics.ConnectionsIdle.Set(float64(stats.Idle))
	u.metrics.ConnectionsMaxOpen.Set(float64(stats.MaxOpenConnections))

	if delta := stats.WaitCount - u.prevWaitCount; delta > 0 {
		u.metrics.ConnectionsWaitCount.Add(float64(delta))
	}
	if delta := stats.WaitDuration - u.prevWaitDuration; delta > 0 {
		u.metrics.ConnectionsWaitDuration.Observe(delta.Seconds())
	}
	u.prevWaitCount = stats.WaitCount
	u.prevWaitDuration = stats.WaitDuration
}

// StartDBStatsUpdater starts the process wide updater once.
func StartDBStatsUpdater(provider DBStatsProvider, logger *slog.Logger) {
	dbStatsMu.Lock()
	defer dbStatsMu.Unlock()
	if dbStatsUpdater != nil {
		return
	}
	dbStatsUpdater = NewDBStatsUpdater(provider, logger, GetMetrics().Database)
	dbStatsUpdater.Start()
}

func StopDBStatsUpdater() {
	dbStatsMu.Lock()
	defer dbStatsMu.Unlock()
	if dbStatsUpdater != nil {
		dbStatsUpdater.Stop()
		dbStatsUpdater = nil
	}
}
