// Package jobs hosts background work: receipt notifications, report cache
// refresh, and the monthly payroll approval reminder.
package jobs

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskTypeReceiptEmail is the task type for sending a receipt to the client.
	TaskTypeReceiptEmail = "receipt:email"
	// TaskTypeReportsRefresh recomputes a cached daily settlement summary.
	TaskTypeReportsRefresh = "reports:refresh_daily"
	// TaskTypePayrollReminder nudges approvers about processed cycles.
	TaskTypePayrollReminder = "payroll:approval_reminder"
)

// ReceiptEmailPayload describes the receipt notification to deliver.
type ReceiptEmailPayload struct {
	TransactionID string `json:"transaction_id"`
	SalonID       int64  `json:"salon_id"`
	ClientName    string `json:"client_name"`
	ClientPhone   string `json:"client_phone"`
	Total         string `json:"total"`
}

// NewReceiptEmailTask constructs an Asynq task.
func NewReceiptEmailTask(payload ReceiptEmailPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeReceiptEmail, data), nil
}

// ReceiptEmailJob delivers receipt notifications.
type ReceiptEmailJob struct {
	logger *slog.Logger
}

// NewReceiptEmailJob constructs the job.
func NewReceiptEmailJob(logger *slog.Logger) *ReceiptEmailJob {
	return &ReceiptEmailJob{logger: logger}
}

// Handle processes TaskTypeReceiptEmail tasks.
func (j *ReceiptEmailJob) Handle(ctx context.Context, t *asynq.Task) error {
	var payload ReceiptEmailPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	// TODO: deliver via the SMS gateway once provider credentials land.
	j.logger.Info("receipt notification",
		slog.String("transaction_id", payload.TransactionID),
		slog.String("client", payload.ClientName),
		slog.String("total", payload.Total))
	return nil
}

// ReportsRefreshPayload scopes a summary refresh to one salon-day.
type ReportsRefreshPayload struct {
	SalonID int64  `json:"salon_id"`
	Date    string `json:"date"`
}

// NewReportsRefreshTask constructs an Asynq task.
func NewReportsRefreshTask(payload ReportsRefreshPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeReportsRefresh, data), nil
}
