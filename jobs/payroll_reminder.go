package jobs

import (
	"context"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PayrollReminderJob reports cycles stuck in processed, waiting on approval.
type PayrollReminderJob struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// NewPayrollReminderJob constructs the job.
func NewPayrollReminderJob(pool *pgxpool.Pool, logger *slog.Logger) *PayrollReminderJob {
	return &PayrollReminderJob{pool: pool, logger: logger}
}

// Handle processes TaskTypePayrollReminder tasks.
func (j *PayrollReminderJob) Handle(ctx context.Context, _ *asynq.Task) error {
	rows, err := j.pool.Query(ctx, `SELECT id, salon_id, processed_at
FROM payroll_cycles WHERE status = 'processed' ORDER BY processed_at`)
	if err != nil {
		return err
	}
	defer rows.Close()

	var waiting int
	for rows.Next() {
		var cycleID, salonID int64
		var processedAt time.Time
		if err := rows.Scan(&cycleID, &salonID, &processedAt); err != nil {
			return err
		}
		waiting++
		j.logger.Info("payroll cycle awaiting approval",
			slog.Int64("cycle_id", cycleID), slog.Int64("salon_id", salonID))
	}
	if err := rows.Err(); err != nil {
		return err
	}
	if waiting == 0 {
		j.logger.Info("no payroll cycles awaiting approval")
	}
	return nil
}
