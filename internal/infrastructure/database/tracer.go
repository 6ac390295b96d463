package database

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

type traceKey struct{}

type traceStart struct {
	at  time.Time
	sql string
}

// SlowQueryTracer logs queries that take longer than Threshold.
type SlowQueryTracer struct {
	Threshold time.Duration
	Logger    zerolog.Logger
	now       func() time.Time
}

// NewSlowQueryTracer builds a pgx.QueryTracer.
func NewSlowQueryTracer(threshold time.Duration, logger zerolog.Logger) *SlowQueryTracer {
	return &SlowQueryTracer{Threshold: threshold, Logger: logger, now: time.Now}
}

func (t *SlowQueryTracer) TraceQueryStart(ctx context.Context, _ *pgx.Conn, data pgx.TraceQueryStartData) context.Context {
	return context.WithValue(ctx, traceKey{}, traceStart{at: t.now(), sql: data.SQL})
}

func (t *SlowQueryTracer) TraceQueryEnd(ctx context.Context, _ *pgx.Conn, data pgx.TraceQueryEndData) {
	start, ok := ctx.Value(traceKey{}).(traceStart)
	if !ok {
		return
	}
	elapsed := t.now().Sub(start.at)
	if elapsed < t.Threshold {
		return
	}
	ev := t.Logger.Warn()
	if data.Err != nil {
		ev = ev.Err(data.Err)
	}
	ev.Dur("duration", elapsed).
		Str("sql", compactSQL(start.sql)).
		Str("command", data.CommandTag.String()).
		Msg("slow query")
}

func compactSQL(sql string) string {
	out := make([]byte, 0, len(sql))
	space := false
	for i := 0; i < len(sql); i++ {
		c := sql[i]
		if c == ' ' || c == '\n' || c == '\t' || c == '\r' {
			space = true
			continue
		}
		if space && len(out) > 0 {
			out = append(out, ' ')
		}
		space = false
		out = append(out, c)
	}
	if len(out) > 500 {
		out = append(out[:500], "..."...)
	}
	return string(out)
}
