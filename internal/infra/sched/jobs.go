// Package sched holds the periodic jobs the scheduler runs.
package sched

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"promo-bot/internal/infra/metrics"
	"promo-bot/internal/infra/scheduler"
	"promo-bot/internal/usecase"
)

// PoolCounts is the subset of pgxpool.Stat the pool gauge reads.
type PoolCounts interface {
	TotalConns() int32
	IdleConns() int32
	AcquiredConns() int32
	MaxConns() int32
}

// ExpiryReport builds the job that reports expired-but-active users to admins.
func ExpiryReport(spec string, uc usecase.ExpiryReportUseCase, logger *zerolog.Logger) scheduler.Job {
	l := logger.With().Str("component", "ExpiryReportJob").Logger()
	return scheduler.Job{
		Name:    "expiry_report",
		Spec:    spec,
		Timeout: 5 * time.Minute,
		Run: func(ctx context.Context) error {
			n, err := uc.Report(ctx, time.Now().UTC())
			if err != nil {
				return err
			}
			if n > 0 {
				l.Info().Int("expired_active", n).Msg("expiry report sent")
			}
			return nil
		},
	}
}

// PoolStats builds the job that publishes database pool gauges.
func PoolStats(spec string, stat func() PoolCounts) scheduler.Job {
	return scheduler.Job{
		Name:    "db_pool_stats",
		Spec:    spec,
		Timeout: 5 * time.Second,
		Run: func(ctx context.Context) error {
			s := stat()
			metrics.SetDBPoolStats(s.TotalConns(), s.IdleConns(), s.AcquiredConns(), s.MaxConns())
			return nil
		},
	}
}
