package testutil

import (
	"github.com/DATA-DOG/go-sqlmock"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/JWebSmart/Nft-marketplace/orm"
)

// NewMockDB returns a Database backed by sqlmock. Expected queries are
// matched as regular expressions.
func NewMockDB() (*orm.Database, sqlmock.Sqlmock, error) {
	sqlDB, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		return nil, nil, err
	}

	gormCfg := orm.NewGormConfig(0)
	gormCfg.Logger = logger.Discard
	instance, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), gormCfg)
	if err != nil {
		return nil, nil, err
	}
	return orm.Wrap(instance, nil, nil), mock, nil
}
