package payroll

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/salonos/salonos/internal/platform/db"
)

// Repository defines payroll persistence.
type Repository interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	GetCycle(ctx context.Context, id int64) (Cycle, error)
	GetEntry(ctx context.Context, id int64) (Entry, error)
	ListEntries(ctx context.Context, cycleID int64) ([]Entry, error)
}

// TxRepository defines the writes of one lifecycle transition. The cycle
// row lock taken by GetCycleForUpdate serializes concurrent transitions.
type TxRepository interface {
	GetCycleForUpdate(ctx context.Context, id int64) (Cycle, error)
	GetEntryForUpdate(ctx context.Context, id int64) (Entry, error)
	UpdateCycleStatus(ctx context.Context, id int64, status CycleStatus, actorID int64, at time.Time) error
	InsertEntry(ctx context.Context, e Entry) (int64, error)
	CascadeEntriesPaid(ctx context.Context, cycleID int64, at time.Time) (int64, error)
	MarkEntryPaid(ctx context.Context, entryID int64, at time.Time) error
}

// CompensationSource reads upstream staff compensation for a cycle period.
type CompensationSource interface {
	ListForPeriod(ctx context.Context, salonID int64, periodStart, periodEnd time.Time) ([]StaffCompensation, error)
}

var _ Repository = (*pgRepository)(nil)
var _ TxRepository = (*pgTxRepository)(nil)

type pgRepository struct {
	pool *pgxpool.Pool
}

type pgTxRepository struct {
	tx pgx.Tx
}

// NewRepository returns a Postgres-backed payroll store.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &pgRepository{pool: pool}
}

func (r *pgRepository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &pgTxRepository{tx: tx})
	})
}

const cycleColumns = `id, salon_id, period_start, period_end, status,
processed_by, processed_at, approved_by, approved_at, paid_by, paid_at`

func scanCycle(row pgx.Row) (Cycle, error) {
	var c Cycle
	err := row.Scan(&c.ID, &c.SalonID, &c.PeriodStart, &c.PeriodEnd, &c.Status,
		&c.ProcessedBy, &c.ProcessedAt, &c.ApprovedBy, &c.ApprovedAt, &c.PaidBy, &c.PaidAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Cycle{}, ErrCycleNotFound
	}
	return c, err
}

const entryColumns = `id, cycle_id, staff_id,
base_salary_paisa, allowances_paisa, commission_paisa, tips_paisa, bonuses_paisa,
tds_paisa, pf_paisa, esi_paisa, professional_tax_paisa, loan_recovery_paisa, advances_paisa, other_deductions_paisa,
gross_paisa, deductions_paisa, net_payable_paisa, payment_status, paid_at`

func scanEntry(row pgx.Row) (Entry, error) {
	var e Entry
	err := row.Scan(&e.ID, &e.CycleID, &e.StaffID,
		&e.Earnings.BaseSalary, &e.Earnings.Allowances, &e.Earnings.CommissionEarnings, &e.Earnings.TipsReceived, &e.Earnings.Bonuses,
		&e.Deductions.TDS, &e.Deductions.PF, &e.Deductions.ESI, &e.Deductions.ProfessionalTax, &e.Deductions.LoanRecovery, &e.Deductions.Advances, &e.Deductions.Other,
		&e.GrossPaisa, &e.DeductionsPaisa, &e.NetPayablePaisa, &e.PaymentStatus, &e.PaidAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Entry{}, ErrEntryNotFound
	}
	return e, err
}

func (r *pgRepository) GetCycle(ctx context.Context, id int64) (Cycle, error) {
	return scanCycle(r.pool.QueryRow(ctx, `SELECT `+cycleColumns+` FROM payroll_cycles WHERE id = $1`, id))
}

func (r *pgRepository) GetEntry(ctx context.Context, id int64) (Entry, error) {
	return scanEntry(r.pool.QueryRow(ctx, `SELECT `+entryColumns+` FROM payroll_entries WHERE id = $1`, id))
}

func (r *pgRepository) ListEntries(ctx context.Context, cycleID int64) ([]Entry, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+entryColumns+` FROM payroll_entries WHERE cycle_id = $1 ORDER BY staff_id`, cycleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var entries []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (t *pgTxRepository) GetCycleForUpdate(ctx context.Context, id int64) (Cycle, error) {
	return scanCycle(t.tx.QueryRow(ctx, `SELECT `+cycleColumns+` FROM payroll_cycles WHERE id = $1 FOR UPDATE`, id))
}

func (t *pgTxRepository) GetEntryForUpdate(ctx context.Context, id int64) (Entry, error) {
	return scanEntry(t.tx.QueryRow(ctx, `SELECT `+entryColumns+` FROM payroll_entries WHERE id = $1 FOR UPDATE`, id))
}

func (t *pgTxRepository) UpdateCycleStatus(ctx context.Context, id int64, status CycleStatus, actorID int64, at time.Time) error {
	var stampCols string
	switch status {
	case StatusProcessed:
		stampCols = `processed_by = $2, processed_at = $3`
	case StatusApproved:
		stampCols = `approved_by = $2, approved_at = $3`
	case StatusPaid:
		stampCols = `paid_by = $2, paid_at = $3`
	default:
		return errors.New("payroll: unsupported status update")
	}
	tag, err := t.tx.Exec(ctx, `UPDATE payroll_cycles SET status = $4, `+stampCols+` WHERE id = $1`, id, actorID, at, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrCycleNotFound
	}
	return nil
}

func (t *pgTxRepository) InsertEntry(ctx context.Context, e Entry) (int64, error) {
	var id int64
	err := t.tx.QueryRow(ctx, `INSERT INTO payroll_entries (cycle_id, staff_id,
base_salary_paisa, allowances_paisa, commission_paisa, tips_paisa, bonuses_paisa,
tds_paisa, pf_paisa, esi_paisa, professional_tax_paisa, loan_recovery_paisa, advances_paisa, other_deductions_paisa,
gross_paisa, deductions_paisa, net_payable_paisa, payment_status)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18)
RETURNING id`,
		e.CycleID, e.StaffID,
		e.Earnings.BaseSalary, e.Earnings.Allowances, e.Earnings.CommissionEarnings, e.Earnings.TipsReceived, e.Earnings.Bonuses,
		e.Deductions.TDS, e.Deductions.PF, e.Deductions.ESI, e.Deductions.ProfessionalTax, e.Deductions.LoanRecovery, e.Deductions.Advances, e.Deductions.Other,
		e.GrossPaisa, e.DeductionsPaisa, e.NetPayablePaisa, e.PaymentStatus).Scan(&id)
	return id, err
}

// CascadeEntriesPaid settles every still-pending entry when the cycle is
// paid as a whole. Entries already paid individually keep their own paid_at.
func (t *pgTxRepository) CascadeEntriesPaid(ctx context.Context, cycleID int64, at time.Time) (int64, error) {
	tag, err := t.tx.Exec(ctx, `UPDATE payroll_entries SET payment_status = $1, paid_at = $2
WHERE cycle_id = $3 AND payment_status = $4`, EntryPaid, at, cycleID, EntryPending)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (t *pgTxRepository) MarkEntryPaid(ctx context.Context, entryID int64, at time.Time) error {
	tag, err := t.tx.Exec(ctx, `UPDATE payroll_entries SET payment_status = $1, paid_at = $2
WHERE id = $3 AND payment_status = $4`, EntryPaid, at, entryID, EntryPending)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrAlreadyPaid
	}
	return nil
}

// pgCompensationSource reads staff_compensation maintained by the HR module.
type pgCompensationSource struct {
	pool *pgxpool.Pool
}

// NewCompensationSource returns the Postgres-backed compensation reader.
func NewCompensationSource(pool *pgxpool.Pool) CompensationSource {
	return &pgCompensationSource{pool: pool}
}

func (s *pgCompensationSource) ListForPeriod(ctx context.Context, salonID int64, periodStart, periodEnd time.Time) ([]StaffCompensation, error) {
	rows, err := s.pool.Query(ctx, `SELECT staff_id,
base_salary_paisa, allowances_paisa, commission_paisa, tips_paisa, bonuses_paisa,
tds_paisa, pf_paisa, esi_paisa, professional_tax_paisa, loan_recovery_paisa, advances_paisa, other_deductions_paisa
FROM staff_compensation
WHERE salon_id = $1 AND effective_from <= $2 AND (effective_to IS NULL OR effective_to >= $3)
ORDER BY staff_id`, salonID, periodEnd, periodStart)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var comps []StaffCompensation
	for rows.Next() {
		var c StaffCompensation
		if err := rows.Scan(&c.StaffID,
			&c.Earnings.BaseSalary, &c.Earnings.Allowances, &c.Earnings.CommissionEarnings, &c.Earnings.TipsReceived, &c.Earnings.Bonuses,
			&c.Deductions.TDS, &c.Deductions.PF, &c.Deductions.ESI, &c.Deductions.ProfessionalTax, &c.Deductions.LoanRecovery, &c.Deductions.Advances, &c.Deductions.Other); err != nil {
			return nil, err
		}
		comps = append(comps, c)
	}
	return comps, rows.Err()
}
