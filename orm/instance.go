package orm

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"os"

	"ariga.io/atlas-go-sdk/atlasexec"
	"github.com/jackc/pgx/v5/pgconn"
	sloggorm "github.com/orandin/slog-gorm"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/schema"

	"github.com/JWebSmart/Nft-marketplace/orm/config"
	"github.com/JWebSmart/Nft-marketplace/orm/plugins"
	"github.com/JWebSmart/Nft-marketplace/types"
)

const (
	uniqueViolationCode = "23505"
	defaultBatchSize    = 100
)

var (
	UpdateAllWhenConflict = clause.OnConflict{UpdateAll: true}
	DoNothingWhenConflict = clause.OnConflict{DoNothing: true}
)

// Database wraps the gorm handle with the settings it was opened with.
type Database struct {
	*gorm.DB
	config *config.Config
	logger *slog.Logger
}

// NewGormConfig is the gorm setup shared by the live database and test mocks:
// singular table names and batched inserts.
func NewGormConfig(batchSize int) *gorm.Config {
	if batchSize < 1 {
		batchSize = defaultBatchSize
	}
	return &gorm.Config{
		NamingStrategy:  schema.NamingStrategy{SingularTable: true},
		CreateBatchSize: batchSize,
	}
}

// Wrap adopts an already opened gorm handle.
func Wrap(db *gorm.DB, cfg *config.Config, logger *slog.Logger) *Database {
	if logger == nil {
		logger = slog.Default()
	}
	return &Database{DB: db, config: cfg, logger: logger.With("component", "orm")}
}

func OpenDB(cfg *config.Config, logger *slog.Logger) (*Database, error) {
	gormCfg := NewGormConfig(cfg.BatchSize)
	gormCfg.PrepareStmt = true
	gormCfg.Logger = sloggorm.New(sloggorm.WithHandler(logger.Handler()))

	instance, err := gorm.Open(postgres.Open(cfg.DSN), gormCfg)
	if err != nil {
		return nil, types.NewDatabaseError("connect", err)
	}
	sqlDB, err := instance.DB()
	if err != nil {
		return nil, types.NewDatabaseError("connect", err)
	}
	sqlDB.SetMaxOpenConns(cfg.MaxConns)
	sqlDB.SetMaxIdleConns(cfg.IdleConns)

	if err := instance.Use(plugins.NewMetricsPlugin()); err != nil {
		return nil, err
	}
	return Wrap(instance, cfg, logger), nil
}

// Migrate applies the atlas migration directory when DB_AUTO_MIGRATE is set.
func (d Database) Migrate(ctx context.Context) error {
	if d.config == nil || !d.config.AutoMigrate {
		return nil
	}

	workDir, err := atlasexec.NewWorkingDir(atlasexec.WithMigrations(os.DirFS(d.config.MigrationDir)))
	if err != nil {
		return err
	}
	defer func() { _ = workDir.Close() }()

	client, err := atlasexec.NewClient(workDir.Path(), "atlas")
	if err != nil {
		return err
	}
	res, err := client.MigrateApply(ctx, &atlasexec.MigrateApplyParams{URL: d.config.DSN})
	if err != nil {
		return types.NewDatabaseError("apply migrations", err)
	}
	d.logger.Info("database migrated",
		slog.Int("applied", len(res.Applied)),
		slog.String("version", res.Target))
	return nil
}

func (d Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (d Database) GetBatchSize() int {
	if d.config == nil || d.config.BatchSize < 1 {
		return defaultBatchSize
	}
	return d.config.BatchSize
}

// GetDBStats feeds the pool gauges in the metrics package.
func (d Database) GetDBStats() (*sql.DBStats, error) {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return nil, err
	}
	stats := sqlDB.Stats()
	return &stats, nil
}

// IsUniqueViolation reports whether err is a postgres unique constraint violation.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode
}
