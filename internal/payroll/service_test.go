package payroll

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/salonos/salonos/internal/money"
)

type memPayrollRepo struct {
	cycles  map[int64]*Cycle
	entries map[int64]*Entry
	nextID  int64
}

func newMemPayrollRepo() *memPayrollRepo {
	return &memPayrollRepo{
		cycles:  make(map[int64]*Cycle),
		entries: make(map[int64]*Entry),
		nextID:  1,
	}
}

func (m *memPayrollRepo) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return fn(ctx, (*memPayrollTx)(m))
}

func (m *memPayrollRepo) GetCycle(_ context.Context, id int64) (Cycle, error) {
	c, ok := m.cycles[id]
	if !ok {
		return Cycle{}, ErrCycleNotFound
	}
	return *c, nil
}

func (m *memPayrollRepo) GetEntry(_ context.Context, id int64) (Entry, error) {
	e, ok := m.entries[id]
	if !ok {
		return Entry{}, ErrEntryNotFound
	}
	return *e, nil
}

func (m *memPayrollRepo) ListEntries(_ context.Context, cycleID int64) ([]Entry, error) {
	var out []Entry
	for _, e := range m.entries {
		if e.CycleID == cycleID {
			out = append(out, *e)
		}
	}
	return out, nil
}

type memPayrollTx memPayrollRepo

func (t *memPayrollTx) GetCycleForUpdate(ctx context.Context, id int64) (Cycle, error) {
	return (*memPayrollRepo)(t).GetCycle(ctx, id)
}

func (t *memPayrollTx) GetEntryForUpdate(ctx context.Context, id int64) (Entry, error) {
	return (*memPayrollRepo)(t).GetEntry(ctx, id)
}

func (t *memPayrollTx) UpdateCycleStatus(_ context.Context, id int64, status CycleStatus, actorID int64, at time.Time) error {
	c, ok := t.cycles[id]
	if !ok {
		return ErrCycleNotFound
	}
	c.Status = status
	switch status {
	case StatusProcessed:
		c.ProcessedBy, c.ProcessedAt = &actorID, &at
	case StatusApproved:
		c.ApprovedBy, c.ApprovedAt = &actorID, &at
	case StatusPaid:
		c.PaidBy, c.PaidAt = &actorID, &at
	}
	return nil
}

func (t *memPayrollTx) InsertEntry(_ context.Context, e Entry) (int64, error) {
	id := t.nextID
	t.nextID++
	e.ID = id
	t.entries[id] = &e
	return id, nil
}

func (t *memPayrollTx) CascadeEntriesPaid(_ context.Context, cycleID int64, at time.Time) (int64, error) {
	var n int64
	for _, e := range t.entries {
		if e.CycleID == cycleID && e.PaymentStatus == EntryPending {
			e.PaymentStatus = EntryPaid
			e.PaidAt = &at
			n++
		}
	}
	return n, nil
}

func (t *memPayrollTx) MarkEntryPaid(_ context.Context, entryID int64, at time.Time) error {
	e, ok := t.entries[entryID]
	if !ok || e.PaymentStatus != EntryPending {
		return ErrAlreadyPaid
	}
	e.PaymentStatus = EntryPaid
	e.PaidAt = &at
	return nil
}

type stubCompensation struct {
	comps []StaffCompensation
}

func (s *stubCompensation) ListForPeriod(context.Context, int64, time.Time, time.Time) ([]StaffCompensation, error) {
	return s.comps, nil
}

func defaultComps() []StaffCompensation {
	return []StaffCompensation{
		{
			StaffID:    1,
			Earnings:   Earnings{BaseSalary: 2000000, CommissionEarnings: 300000},
			Deductions: Deductions{TDS: 100000, PF: 144000},
		},
		{
			StaffID:  2,
			Earnings: Earnings{BaseSalary: 1500000, TipsReceived: 50000},
		},
	}
}

func newPayrollService(repo *memPayrollRepo, comps []StaffCompensation) *Service {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := NewService(repo, &stubCompensation{comps: comps}, nil, nil, nil, logger)
	return svc.WithNow(func() time.Time { return time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC) })
}

func seedCycle(repo *memPayrollRepo, status CycleStatus) int64 {
	id := repo.nextID
	repo.nextID++
	repo.cycles[id] = &Cycle{
		ID:          id,
		SalonID:     7,
		PeriodStart: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		PeriodEnd:   time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC),
		Status:      status,
	}
	return id
}

func TestCycleFullLifecycle(t *testing.T) {
	repo := newMemPayrollRepo()
	svc := newPayrollService(repo, defaultComps())
	cycleID := seedCycle(repo, StatusDraft)
	ctx := context.Background()

	cycle, entries, err := svc.ProcessCycle(ctx, cycleID, 42)
	require.NoError(t, err)
	require.Equal(t, StatusProcessed, cycle.Status)
	require.Len(t, entries, 2)
	require.Equal(t, money.Paisa(2056000), entries[0].NetPayablePaisa)
	require.Equal(t, money.Paisa(1550000), entries[1].NetPayablePaisa)
	require.Equal(t, EntryPending, entries[0].PaymentStatus)

	cycle, err = svc.Approve(ctx, cycleID, 43)
	require.NoError(t, err)
	require.Equal(t, StatusApproved, cycle.Status)
	require.Equal(t, int64(43), *cycle.ApprovedBy)

	cycle, err = svc.Pay(ctx, cycleID, 44)
	require.NoError(t, err)
	require.Equal(t, StatusPaid, cycle.Status)

	stored, err := repo.ListEntries(ctx, cycleID)
	require.NoError(t, err)
	for _, e := range stored {
		require.Equal(t, EntryPaid, e.PaymentStatus, "paying the cycle cascades to entries")
		require.NotNil(t, e.PaidAt)
	}
}

func TestCycleTransitionsAreForwardOnly(t *testing.T) {
	cases := []struct {
		name     string
		status   CycleStatus
		op       string
		required CycleStatus
	}{
		{"approve draft", StatusDraft, "approve", StatusProcessed},
		{"pay draft", StatusDraft, "pay", StatusApproved},
		{"pay processed", StatusProcessed, "pay", StatusApproved},
		{"process processed", StatusProcessed, "process", StatusDraft},
		{"process approved", StatusApproved, "process", StatusDraft},
		{"approve approved", StatusApproved, "approve", StatusProcessed},
		{"process paid", StatusPaid, "process", StatusDraft},
		{"approve paid", StatusPaid, "approve", StatusProcessed},
		{"pay paid", StatusPaid, "pay", StatusApproved},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			repo := newMemPayrollRepo()
			svc := newPayrollService(repo, defaultComps())
			cycleID := seedCycle(repo, tc.status)
			ctx := context.Background()

			var err error
			switch tc.op {
			case "process":
				_, _, err = svc.ProcessCycle(ctx, cycleID, 42)
			case "approve":
				_, err = svc.Approve(ctx, cycleID, 42)
			case "pay":
				_, err = svc.Pay(ctx, cycleID, 42)
			}

			var invalid *InvalidTransitionError
			require.ErrorAs(t, err, &invalid)
			require.Equal(t, tc.status, invalid.Current)
			require.Equal(t, tc.required, invalid.Required)
			require.Equal(t, tc.status, repo.cycles[cycleID].Status, "status unchanged after rejected transition")
		})
	}
}

func TestProcessCycleNegativeNetAborts(t *testing.T) {
	repo := newMemPayrollRepo()
	comps := defaultComps()
	comps = append(comps, StaffCompensation{
		StaffID:    3,
		Earnings:   Earnings{BaseSalary: 100000},
		Deductions: Deductions{LoanRecovery: 500000},
	})
	svc := newPayrollService(repo, comps)
	cycleID := seedCycle(repo, StatusDraft)

	var negative *NegativeNetPayableError
	_, _, err := svc.ProcessCycle(context.Background(), cycleID, 42)
	require.ErrorAs(t, err, &negative)
	require.Equal(t, int64(3), negative.StaffID)
	require.Equal(t, StatusDraft, repo.cycles[cycleID].Status)
}

func TestProcessCycleNoCompensation(t *testing.T) {
	repo := newMemPayrollRepo()
	svc := newPayrollService(repo, nil)
	cycleID := seedCycle(repo, StatusDraft)

	_, _, err := svc.ProcessCycle(context.Background(), cycleID, 42)
	require.ErrorIs(t, err, ErrNoCompensation)
}

func TestPayEntryRequiresApprovedCycle(t *testing.T) {
	repo := newMemPayrollRepo()
	svc := newPayrollService(repo, defaultComps())
	cycleID := seedCycle(repo, StatusDraft)
	ctx := context.Background()

	_, entries, err := svc.ProcessCycle(ctx, cycleID, 42)
	require.NoError(t, err)

	var invalid *InvalidTransitionError
	_, err = svc.PayEntry(ctx, entries[0].ID, 42)
	require.ErrorAs(t, err, &invalid)
	require.Equal(t, StatusProcessed, invalid.Current)
	require.Equal(t, StatusApproved, invalid.Required)
	require.Equal(t, EntryPending, repo.entries[entries[0].ID].PaymentStatus)
}

func TestPayEntryThenCascadeSkipsIt(t *testing.T) {
	repo := newMemPayrollRepo()
	svc := newPayrollService(repo, defaultComps())
	cycleID := seedCycle(repo, StatusDraft)
	ctx := context.Background()

	_, entries, err := svc.ProcessCycle(ctx, cycleID, 42)
	require.NoError(t, err)
	_, err = svc.Approve(ctx, cycleID, 43)
	require.NoError(t, err)

	paid, err := svc.PayEntry(ctx, entries[0].ID, 44)
	require.NoError(t, err)
	require.Equal(t, EntryPaid, paid.PaymentStatus)
	require.NotNil(t, paid.PaidAt)
	earlyPaidAt := *repo.entries[entries[0].ID].PaidAt

	_, err = svc.PayEntry(ctx, entries[0].ID, 44)
	require.ErrorIs(t, err, ErrAlreadyPaid)

	_, err = svc.Pay(ctx, cycleID, 44)
	require.NoError(t, err)
	require.Equal(t, earlyPaidAt, *repo.entries[entries[0].ID].PaidAt, "cascade keeps the original paid_at")
	require.Equal(t, EntryPaid, repo.entries[entries[1].ID].PaymentStatus)
}

func TestGetPayslip(t *testing.T) {
	repo := newMemPayrollRepo()
	svc := newPayrollService(repo, defaultComps())
	cycleID := seedCycle(repo, StatusDraft)
	ctx := context.Background()

	_, entries, err := svc.ProcessCycle(ctx, cycleID, 42)
	require.NoError(t, err)

	slip, err := svc.GetPayslip(ctx, entries[0].ID)
	require.NoError(t, err)
	require.Equal(t, entries[0].StaffID, slip.Entry.StaffID)
	require.Equal(t, cycleID, slip.Cycle.ID)
	require.Equal(t, "₹20,560.00", slip.Formatted.NetPayable)

	_, err = svc.GetPayslip(ctx, 999)
	require.ErrorIs(t, err, ErrEntryNotFound)
}
