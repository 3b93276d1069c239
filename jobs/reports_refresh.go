package jobs

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/salonos/salonos/internal/reports"
)

// ReportsRefreshJob drops stale cached summaries so the next read recomputes.
// A payload without a date is the nightly sweep: every salon that settled a
// receipt yesterday gets its summary refreshed.
type ReportsRefreshJob struct {
	service *reports.Service
	pool    *pgxpool.Pool
	logger  *slog.Logger
	now     func() time.Time
}

// NewReportsRefreshJob constructs the job.
func NewReportsRefreshJob(service *reports.Service, pool *pgxpool.Pool, logger *slog.Logger) *ReportsRefreshJob {
	return &ReportsRefreshJob{service: service, pool: pool, logger: logger, now: time.Now}
}

// Handle processes TaskTypeReportsRefresh tasks.
func (j *ReportsRefreshJob) Handle(ctx context.Context, t *asynq.Task) error {
	var payload ReportsRefreshPayload
	if len(t.Payload()) > 0 {
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}
	}
	if payload.Date == "" {
		return j.sweepYesterday(ctx)
	}
	return j.refresh(ctx, payload.SalonID, payload.Date)
}

func (j *ReportsRefreshJob) sweepYesterday(ctx context.Context) error {
	now := j.now().UTC()
	from := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, -1)
	to := from.AddDate(0, 0, 1)
	date := from.Format("2006-01-02")

	rows, err := j.pool.Query(ctx, `SELECT DISTINCT salon_id FROM receipts
WHERE processed_at >= $1 AND processed_at < $2`, from, to)
	if err != nil {
		return err
	}
	defer rows.Close()
	var salonIDs []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return err
		}
		salonIDs = append(salonIDs, id)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	for _, id := range salonIDs {
		if err := j.refresh(ctx, id, date); err != nil {
			return err
		}
	}
	j.logger.Info("daily summary sweep", slog.String("date", date), slog.Int("salons", len(salonIDs)))
	return nil
}

func (j *ReportsRefreshJob) refresh(ctx context.Context, salonID int64, date string) error {
	if err := j.service.Refresh(ctx, salonID, date); err != nil {
		j.logger.Warn("refresh daily summary",
			slog.Int64("salon_id", salonID), slog.String("date", date), slog.Any("error", err))
		return err
	}
	return nil
}
