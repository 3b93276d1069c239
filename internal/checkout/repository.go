package checkout

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/salonos/salonos/internal/booking"
	"github.com/salonos/salonos/internal/catalog"
	"github.com/salonos/salonos/internal/money"
	"github.com/salonos/salonos/internal/platform/db"
)

// Repository defines receipt persistence.
type Repository interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	GetReceipt(ctx context.Context, transactionID string) (Receipt, error)
}

// TxRepository defines the writes that make up one settlement. Both run in
// the same transaction: a receipt is never committed for a checkout whose
// booking completion failed.
type TxRepository interface {
	InsertReceipt(ctx context.Context, r Receipt) error
	CompleteBooking(ctx context.Context, bookingID, salonID int64, total money.Paisa, at time.Time) error
}

var _ Repository = (*pgRepository)(nil)
var _ TxRepository = (*pgTxRepository)(nil)

type pgRepository struct {
	pool *pgxpool.Pool
}

type pgTxRepository struct {
	tx pgx.Tx
}

// NewRepository returns a Postgres-backed receipt store.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &pgRepository{pool: pool}
}

func (r *pgRepository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &pgTxRepository{tx: tx})
	})
}

func (r *pgRepository) GetReceipt(ctx context.Context, transactionID string) (Receipt, error) {
	var rec Receipt
	var discountType, discountCode, discountReason *string
	var discountValue *float64
	err := r.pool.QueryRow(ctx, `SELECT transaction_id, salon_id, subtotal_paisa, discount_paisa,
discount_type, discount_value, discount_code, discount_reason,
tax_paisa, tip_paisa, total_paisa, payment_method, booking_id,
client_name, client_phone, notes, digest, processed_by, processed_at
FROM receipts WHERE transaction_id = $1`, transactionID).Scan(
		&rec.TransactionID, &rec.SalonID, &rec.SubtotalPaisa, &rec.DiscountPaisa,
		&discountType, &discountValue, &discountCode, &discountReason,
		&rec.TaxPaisa, &rec.TipPaisa, &rec.TotalPaisa, &rec.PaymentMethod, &rec.BookingID,
		&rec.ClientName, &rec.ClientPhone, &rec.Notes, &rec.Digest, &rec.ProcessedBy, &rec.ProcessedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Receipt{}, ErrReceiptNotFound
	}
	if err != nil {
		return Receipt{}, err
	}
	if discountType != nil {
		rec.DiscountDetails = &Discount{Type: DiscountType(*discountType)}
		if discountValue != nil {
			rec.DiscountDetails.Value = *discountValue
		}
		if discountCode != nil {
			rec.DiscountDetails.Code = *discountCode
		}
		if discountReason != nil {
			rec.DiscountDetails.Reason = *discountReason
		}
	}

	rows, err := r.pool.Query(ctx, `SELECT item_id, name, unit_price_paisa, quantity
FROM receipt_items WHERE transaction_id = $1 ORDER BY line_order`, transactionID)
	if err != nil {
		return Receipt{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var it catalog.ResolvedLineItem
		if err := rows.Scan(&it.ItemID, &it.Name, &it.UnitPricePaisa, &it.Quantity); err != nil {
			return Receipt{}, err
		}
		rec.Items = append(rec.Items, it)
	}
	return rec, rows.Err()
}

func (t *pgTxRepository) InsertReceipt(ctx context.Context, r Receipt) error {
	var discountType, discountCode, discountReason *string
	var discountValue *float64
	if r.DiscountDetails != nil {
		dt := string(r.DiscountDetails.Type)
		discountType = &dt
		discountValue = &r.DiscountDetails.Value
		if r.DiscountDetails.Code != "" {
			discountCode = &r.DiscountDetails.Code
		}
		if r.DiscountDetails.Reason != "" {
			discountReason = &r.DiscountDetails.Reason
		}
	}
	_, err := t.tx.Exec(ctx, `INSERT INTO receipts (transaction_id, salon_id, subtotal_paisa, discount_paisa,
discount_type, discount_value, discount_code, discount_reason,
tax_paisa, tip_paisa, total_paisa, payment_method, booking_id,
client_name, client_phone, notes, digest, processed_by, processed_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19)`,
		r.TransactionID, r.SalonID, r.SubtotalPaisa, r.DiscountPaisa,
		discountType, discountValue, discountCode, discountReason,
		r.TaxPaisa, r.TipPaisa, r.TotalPaisa, r.PaymentMethod, r.BookingID,
		r.ClientName, r.ClientPhone, r.Notes, r.Digest, r.ProcessedBy, r.ProcessedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicateTransaction
		}
		return err
	}
	for i, it := range r.Items {
		if _, err := t.tx.Exec(ctx, `INSERT INTO receipt_items (transaction_id, item_id, name, unit_price_paisa, quantity, line_order)
VALUES ($1,$2,$3,$4,$5,$6)`, r.TransactionID, it.ItemID, it.Name, it.UnitPricePaisa, it.Quantity, i+1); err != nil {
			return err
		}
	}
	return nil
}

func (t *pgTxRepository) CompleteBooking(ctx context.Context, bookingID, salonID int64, total money.Paisa, at time.Time) error {
	return booking.CompleteForCheckout(ctx, t.tx, bookingID, salonID, total, at)
}
