package db

import (
	"fmt"
	"time"

	"Gin_postgres_redis_record_loans/clock"
	"Gin_postgres_redis_record_loans/models"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// GormConfig is shared by the Postgres connection and the test dialector so
// both translate constraint errors and read time from the same clock.
func GormConfig(clk clock.Clock, log logrus.FieldLogger) *gorm.Config {
	return &gorm.Config{
		TranslateError: true,
		NowFunc:        clk.Now,
		Logger: logger.New(log, logger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
	}
}

func ConnectDB(dsn string, clk clock.Clock, log logrus.FieldLogger) (*gorm.DB, error) {
	conn, err := gorm.Open(postgres.Open(dsn), GormConfig(clk, log))
	if err != nil {
		return nil, errors.Wrap(err, "open postgres")
	}
	log.Info("database connected")
	return conn, nil
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.Record{}, &models.Request{}, &models.RequestItem{}, &models.Loan{}); err != nil {
		return errors.Wrap(err, "auto migrate")
	}

	// 同一档案最多一条“进行中”的借阅（pending/ready/delivered）
	if err := db.Exec(fmt.Sprintf(`
	  CREATE UNIQUE INDEX IF NOT EXISTS %s_one_active_per_record
	  ON %s (record_id)
	  WHERE active;
	`, models.LoanTable, models.LoanTable)).Error; err != nil {
		return errors.Wrap(err, "create active loan index")
	}
	return nil
}
