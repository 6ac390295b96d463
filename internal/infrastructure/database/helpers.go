package database

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// Close closes the pool. Safe to call more than once.
func (db *PostgresDB) Close() error {
	if db.Pool == nil {
		return nil
	}
	log.Info().Msg("[DATABASE] closing connection pool")
	db.Pool.Close()
	db.Pool = nil
	return nil
}

// PoolStats is a snapshot of pool usage.
type PoolStats struct {
	AcquireCount         int64
	AcquireDuration      time.Duration
	AcquiredConns        int32
	CanceledAcquireCount int64
	IdleConns            int32
	MaxConns             int32
	TotalConns           int32
}

// AvgAcquire is the mean time spent waiting for a connection.
func (s PoolStats) AvgAcquire() time.Duration {
	if s.AcquireCount == 0 {
		return 0
	}
	return s.AcquireDuration / time.Duration(s.AcquireCount)
}

// Utilization is the share of MaxConns currently acquired, in percent.
func (s PoolStats) Utilization() float64 {
	if s.MaxConns == 0 {
		return 0
	}
	return float64(s.AcquiredConns) / float64(s.MaxConns) * 100
}

// Stats snapshots the pool; ok is false before Connect.
func (db *PostgresDB) Stats() (PoolStats, bool) {
	if db.Pool == nil {
		return PoolStats{}, false
	}
	raw := db.Pool.Stat()
	return PoolStats{
		AcquireCount:         raw.AcquireCount(),
		AcquireDuration:      raw.AcquireDuration(),
		AcquiredConns:        raw.AcquiredConns(),
		CanceledAcquireCount: raw.CanceledAcquireCount(),
		IdleConns:            raw.IdleConns(),
		MaxConns:             raw.MaxConns(),
		TotalConns:           raw.TotalConns(),
	}, true
}

// MonitorPoolHealth logs pool pressure every interval until ctx is done.
func (db *PostgresDB) MonitorPoolHealth(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			stats, ok := db.Stats()
			if !ok {
				continue
			}
			if u := stats.Utilization(); u > 80 {
				log.Warn().Float64("utilization_pct", u).Int32("acquired", stats.AcquiredConns).Msg("[MONITOR] high pool utilization")
			}
			if avg := stats.AvgAcquire(); avg > 100*time.Millisecond {
				log.Warn().Dur("avg_acquire", avg).Msg("[MONITOR] high acquire latency")
			}
		case <-ctx.Done():
			return
		}
	}
}
