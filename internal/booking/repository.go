package booking

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/salonos/salonos/internal/money"
)

// CompleteForCheckout transitions a booking to completed/paid and records
// the settled amount. The status-guarded UPDATE is the serialization point
// for concurrent checkouts against the same booking: of two simultaneous
// calls, at most one matches the guard and the other observes
// ErrAlreadyCompleted. Runs inside the caller's settlement transaction.
func CompleteForCheckout(ctx context.Context, tx pgx.Tx, bookingID, salonID int64, total money.Paisa, at time.Time) error {
	tag, err := tx.Exec(ctx, `UPDATE bookings
SET status = $1, payment_status = $2, final_amount_paisa = $3, updated_at = $4
WHERE id = $5 AND salon_id = $6 AND status NOT IN ($7, $8)`,
		StatusCompleted, PaymentPaid, total, at, bookingID, salonID, StatusCompleted, StatusCancelled)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 1 {
		return nil
	}

	var status Status
	err = tx.QueryRow(ctx, `SELECT status FROM bookings WHERE id = $1 AND salon_id = $2`,
		bookingID, salonID).Scan(&status)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	return ErrAlreadyCompleted
}
