package logger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// maxSQLLength caps logged statements; bulk inserts of fee items get long.
const maxSQLLength = 1024

// QueryObserver receives the duration of every traced statement.
type QueryObserver func(elapsed time.Duration, failed bool)

// GormLogger routes GORM query logs through the global slog logger.
// Missing rows are expected on lookups and are not reported as errors.
type GormLogger struct {
	LogLevel      gormlogger.LogLevel
	SlowThreshold time.Duration
	Observe       QueryObserver
}

func NewGormLogger(logLevel gormlogger.LogLevel, slowThreshold time.Duration, observe QueryObserver) *GormLogger {
	return &GormLogger{
		LogLevel:      logLevel,
		SlowThreshold: slowThreshold,
		Observe:       observe,
	}
}

func (l *GormLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	clone := *l
	clone.LogLevel = level
	return &clone
}

func (l *GormLogger) Info(ctx context.Context, msg string, data ...interface{}) {
	if l.LogLevel >= gormlogger.Info {
		Log.InfoContext(ctx, fmt.Sprintf(msg, data...))
	}
}

func (l *GormLogger) Warn(ctx context.Context, msg string, data ...interface{}) {
	if l.LogLevel >= gormlogger.Warn {
		Log.WarnContext(ctx, fmt.Sprintf(msg, data...))
	}
}

func (l *GormLogger) Error(ctx context.Context, msg string, data ...interface{}) {
	if l.LogLevel >= gormlogger.Error {
		Log.ErrorContext(ctx, fmt.Sprintf(msg, data...))
	}
}

func (l *GormLogger) Trace(ctx context.Context, begin time.Time, fc func() (sql string, rowsAffected int64), err error) {
	elapsed := time.Since(begin)
	failed := err != nil && !errors.Is(err, gorm.ErrRecordNotFound)
	if l.Observe != nil {
		l.Observe(elapsed, failed)
	}
	if l.LogLevel <= gormlogger.Silent {
		return
	}

	slow := l.SlowThreshold != 0 && elapsed > l.SlowThreshold
	switch {
	case failed && l.LogLevel >= gormlogger.Error:
	case slow && l.LogLevel >= gormlogger.Warn:
	case l.LogLevel >= gormlogger.Info:
	default:
		return
	}

	sql, rows := fc()
	if len(sql) > maxSQLLength {
		sql = sql[:maxSQLLength] + "..."
	}
	fields := []any{
		slog.String("sql", sql),
		slog.Int64("rows", rows),
		slog.Duration("elapsed", elapsed),
	}

	switch {
	case failed && l.LogLevel >= gormlogger.Error:
		fields = append(fields, slog.String("error", err.Error()))
		Log.ErrorContext(ctx, "SQL error", fields...)
	case slow && l.LogLevel >= gormlogger.Warn:
		fields = append(fields, slog.Duration("threshold", l.SlowThreshold))
		Log.WarnContext(ctx, "Slow SQL", fields...)
	default:
		Log.DebugContext(ctx, "SQL", fields...)
	}
}
