// Package database opens the Postgres connection that stores query history.
package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	appLogger "github.com/PinsaraPerera/intellihack-backend/internal/pkg/logger"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const dbModule = "DATABASE"

// PoolConfig bounds the sql.DB connection pool.
type PoolConfig struct {
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
}

func DefaultPoolConfig() PoolConfig {
	return PoolConfig{
		MaxIdleConns:    10,
		MaxOpenConns:    50,
		ConnMaxLifetime: time.Hour,
	}
}

// gormLogger forwards GORM's logs to the application logger. Only slow and failed
// statements are logged; successful ones are dropped unless the level is Info.
type gormLogger struct {
	log           appLogger.ILogger
	level         logger.LogLevel
	slowThreshold time.Duration
}

func NewGormLogger(log appLogger.ILogger, level logger.LogLevel) logger.Interface {
	return &gormLogger{log: log, level: level, slowThreshold: time.Second}
}

func (l *gormLogger) LogMode(level logger.LogLevel) logger.Interface {
	clone := *l
	clone.level = level
	return &clone
}

func (l *gormLogger) Info(_ context.Context, msg string, args ...interface{}) {
	if l.level >= logger.Info {
		l.log.Info(dbModule, fmt.Sprintf(msg, args...), nil)
	}
}

func (l *gormLogger) Warn(_ context.Context, msg string, args ...interface{}) {
	if l.level >= logger.Warn {
		l.log.Warn(dbModule, fmt.Sprintf(msg, args...), nil)
	}
}

func (l *gormLogger) Error(_ context.Context, msg string, args ...interface{}) {
	if l.level >= logger.Error {
		l.log.Error(dbModule, fmt.Sprintf(msg, args...), nil)
	}
}

func (l *gormLogger) Trace(_ context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.level <= logger.Silent {
		return
	}
	elapsed := time.Since(begin)

	switch {
	case err != nil && l.level >= logger.Error && !errors.Is(err, gorm.ErrRecordNotFound):
		sql, rows := fc()
		l.log.Error(dbModule, "Query failed", map[string]interface{}{
			"sql": sql, "rows": rows, "elapsed_ms": elapsed.Milliseconds(), "error": err.Error(),
		})
	case elapsed > l.slowThreshold && l.level >= logger.Warn:
		sql, rows := fc()
		l.log.Warn(dbModule, "Slow query", map[string]interface{}{
			"sql": sql, "rows": rows, "elapsed_ms": elapsed.Milliseconds(),
		})
	case l.level >= logger.Info:
		sql, rows := fc()
		l.log.Debug(dbModule, "Query", map[string]interface{}{
			"sql": sql, "rows": rows, "elapsed_ms": elapsed.Milliseconds(),
		})
	}
}

// NewGormDBFromDSN opens Postgres with the default pool. A nil log falls back to GORM's stdout logger.
func NewGormDBFromDSN(dsn string, log appLogger.ILogger) (*gorm.DB, error) {
	cfg := &gorm.Config{}
	if log != nil {
		cfg.Logger = NewGormLogger(log, logger.Warn)
	}

	db, err := gorm.Open(postgres.Open(dsn), cfg)
	if err != nil {
		return nil, err
	}

	if err := configureConnectionPool(db, DefaultPoolConfig()); err != nil {
		return nil, err
	}
	return db, nil
}

func configureConnectionPool(db *gorm.DB, pool PoolConfig) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	sqlDB.SetMaxIdleConns(pool.MaxIdleConns)
	sqlDB.SetMaxOpenConns(pool.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(pool.ConnMaxLifetime)
	return nil
}
