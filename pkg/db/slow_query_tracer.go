package db

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"rfpflow/pkg/metrics"
)

type ctxKey int

const (
	queryStartKey ctxKey = iota
	querySQLKey
)

// SlowQueryTracer logs and counts queries slower than the threshold.
type SlowQueryTracer struct {
	logger        *zap.Logger
	slowThreshold time.Duration
}

func NewSlowQueryTracer(logger *zap.Logger, slowThreshold time.Duration) *SlowQueryTracer {
	if slowThreshold == 0 {
		slowThreshold = 100 * time.Millisecond
	}
	return &SlowQueryTracer{
		logger:        logger,
		slowThreshold: slowThreshold,
	}
}

func (t *SlowQueryTracer) TraceQueryStart(ctx context.Context, conn *pgx.Conn, data pgx.TraceQueryStartData) context.Context {
	ctx = context.WithValue(ctx, queryStartKey, time.Now())
	ctx = context.WithValue(ctx, querySQLKey, data.SQL)
	return ctx
}

func (t *SlowQueryTracer) TraceQueryEnd(ctx context.Context, conn *pgx.Conn, data pgx.TraceQueryEndData) {
	start, ok := ctx.Value(queryStartKey).(time.Time)
	if !ok {
		return
	}

	took := time.Since(start)
	if took <= t.slowThreshold {
		return
	}

	sql, _ := ctx.Value(querySQLKey).(string)
	if sql == "" {
		sql = "unknown"
	}
	if len(sql) > 200 {
		sql = sql[:200] + "..."
	}

	t.logger.Warn("slow-query",
		zap.String("sql", sql),
		zap.Duration("took", took),
		zap.String("command_tag", data.CommandTag.String()),
	)
	metrics.IncrementSlowQuery()
}
