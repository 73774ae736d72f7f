package database

import (
	"context"
	"errors"
	"testing"
	"time"

	appLogger "github.com/PinsaraPerera/intellihack-backend/internal/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func observed(level logger.LogLevel) (logger.Interface, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return NewGormLogger(appLogger.NewFromZap(zap.New(core)), level), logs
}

func TestGormLoggerTrace(t *testing.T) {
	l, logs := observed(logger.Warn)
	sql := func() (string, int64) { return "SELECT 1", 1 }
	ctx := context.Background()

	l.Trace(ctx, time.Now(), sql, nil)
	assert.Zero(t, logs.Len())

	l.Trace(ctx, time.Now(), sql, gorm.ErrRecordNotFound)
	assert.Zero(t, logs.Len())

	l.Trace(ctx, time.Now(), sql, errors.New("relation does not exist"))
	l.Trace(ctx, time.Now().Add(-2*time.Second), sql, nil)

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "Query failed", entries[0].Message)
	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
	assert.Equal(t, "Slow query", entries[1].Message)
}

func TestGormLoggerLogModeSilences(t *testing.T) {
	l, logs := observed(logger.Info)
	silent := l.LogMode(logger.Silent)

	silent.Trace(context.Background(), time.Now(), func() (string, int64) { return "SELECT 1", 1 }, errors.New("boom"))
	silent.Error(context.Background(), "ignored %d", 1)
	assert.Zero(t, logs.Len())

	l.Info(context.Background(), "migrated %s", "queries")
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "migrated queries", logs.All()[0].Message)
}
