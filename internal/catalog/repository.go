package catalog

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository reads the service catalog. The settlement engine never writes
// catalog rows; the catalog is owned by the management product.
type Repository interface {
	ListActiveBySalon(ctx context.Context, salonID int64) ([]ServiceItem, error)
}

type pgRepository struct {
	pool *pgxpool.Pool
}

// NewRepository returns a Postgres-backed catalog reader.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &pgRepository{pool: pool}
}

func (r *pgRepository) ListActiveBySalon(ctx context.Context, salonID int64) ([]ServiceItem, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, salon_id, name, price_paisa, duration_min, active
FROM service_items WHERE salon_id = $1 AND active ORDER BY id`, salonID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []ServiceItem
	for rows.Next() {
		var it ServiceItem
		if err := rows.Scan(&it.ID, &it.SalonID, &it.Name, &it.PricePaisa, &it.DurationMin, &it.Active); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}
