package reports

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository reads settlement aggregates for one reporting window.
type Repository interface {
	Totals(ctx context.Context, salonID int64, from, to time.Time) (Totals, error)
	ByPaymentMethod(ctx context.Context, salonID int64, from, to time.Time) (map[string]MethodTotals, error)
	TopServices(ctx context.Context, salonID int64, from, to time.Time, limit int) ([]ServiceTotal, error)
}

var _ Repository = (*pgRepository)(nil)

type pgRepository struct {
	pool *pgxpool.Pool
}

// NewRepository returns a Postgres-backed report reader.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &pgRepository{pool: pool}
}

func (r *pgRepository) Totals(ctx context.Context, salonID int64, from, to time.Time) (Totals, error) {
	var t Totals
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*),
COALESCE(SUM(subtotal_paisa), 0), COALESCE(SUM(discount_paisa), 0),
COALESCE(SUM(tax_paisa), 0), COALESCE(SUM(tip_paisa), 0), COALESCE(SUM(total_paisa), 0)
FROM receipts WHERE salon_id = $1 AND processed_at >= $2 AND processed_at < $3`,
		salonID, from, to).Scan(&t.ReceiptCount, &t.SubtotalPaisa, &t.DiscountPaisa, &t.TaxPaisa, &t.TipPaisa, &t.TotalPaisa)
	return t, err
}

func (r *pgRepository) ByPaymentMethod(ctx context.Context, salonID int64, from, to time.Time) (map[string]MethodTotals, error) {
	rows, err := r.pool.Query(ctx, `SELECT payment_method, COUNT(*), COALESCE(SUM(total_paisa), 0)
FROM receipts WHERE salon_id = $1 AND processed_at >= $2 AND processed_at < $3
GROUP BY payment_method`, salonID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	byMethod := make(map[string]MethodTotals)
	for rows.Next() {
		var method string
		var mt MethodTotals
		if err := rows.Scan(&method, &mt.ReceiptCount, &mt.TotalPaisa); err != nil {
			return nil, err
		}
		byMethod[method] = mt
	}
	return byMethod, rows.Err()
}

func (r *pgRepository) TopServices(ctx context.Context, salonID int64, from, to time.Time, limit int) ([]ServiceTotal, error) {
	rows, err := r.pool.Query(ctx, `SELECT ri.item_id, ri.name,
SUM(ri.quantity), SUM(ri.unit_price_paisa * ri.quantity)
FROM receipt_items ri
JOIN receipts rc ON rc.transaction_id = ri.transaction_id
WHERE rc.salon_id = $1 AND rc.processed_at >= $2 AND rc.processed_at < $3
GROUP BY ri.item_id, ri.name
ORDER BY SUM(ri.unit_price_paisa * ri.quantity) DESC
LIMIT $4`, salonID, from, to, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var top []ServiceTotal
	for rows.Next() {
		var st ServiceTotal
		if err := rows.Scan(&st.ItemID, &st.Name, &st.Quantity, &st.RevenuePaisa); err != nil {
			return nil, err
		}
		top = append(top, st)
	}
	return top, rows.Err()
}
