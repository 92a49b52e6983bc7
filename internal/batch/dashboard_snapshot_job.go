package batch

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"loan-admin/internal/domain/analytics"
)

type Refresher interface {
	Refresh(ctx context.Context) (*analytics.Dashboard, error)
}

// DashboardSnapshotJob recomputes the portfolio dashboard so reads are served
// from the cache and the portfolio gauges stay current between requests.
type DashboardSnapshotJob struct {
	refresher Refresher
	logger    *slog.Logger
}

func NewDashboardSnapshotJob(refresher Refresher, logger *slog.Logger) *DashboardSnapshotJob {
	if refresher == nil || logger == nil {
		panic("DashboardSnapshotJob dependencies cannot be nil")
	}
	return &DashboardSnapshotJob{
		refresher: refresher,
		logger:    logger.With("job", "DashboardSnapshot"),
	}
}

func (j *DashboardSnapshotJob) Run(ctx context.Context) error {
	startTime := time.Now()
	j.logger.InfoContext(ctx, "Starting dashboard snapshot job.")

	d, err := j.refresher.Refresh(ctx)
	if err != nil {
		j.logger.ErrorContext(ctx, "Dashboard snapshot failed", slog.Any("error", err), slog.Duration("duration", time.Since(startTime)))
		return fmt.Errorf("dashboard snapshot failed: %w", err)
	}

	j.logger.InfoContext(ctx, "Dashboard snapshot job finished.",
		slog.Duration("duration", time.Since(startTime)),
		slog.Int64("active_loans", d.ActiveLoans),
		slog.Int64("overdue_loans", d.OverdueLoans),
		slog.String("outstanding", d.TotalOutstandingAmount.StringFixed(2)),
	)
	return nil
}
