package payroll

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/salonos/salonos/internal/observability"
	"github.com/salonos/salonos/internal/shared"
)

// Service orchestrates the payroll cycle lifecycle. Every transition takes
// the cycle row lock first, so two racing actors serialize and the loser
// observes the already-advanced status.
type Service struct {
	repo      Repository
	comp      CompensationSource
	approvals *shared.ApprovalRecorder
	audit     *shared.AuditLogger
	metrics   *observability.Metrics
	logger    *slog.Logger
	now       func() time.Time
}

// NewService constructs a Service instance.
func NewService(repo Repository, comp CompensationSource, approvals *shared.ApprovalRecorder, audit *shared.AuditLogger, metrics *observability.Metrics, logger *slog.Logger) *Service {
	return &Service{
		repo:      repo,
		comp:      comp,
		approvals: approvals,
		audit:     audit,
		metrics:   metrics,
		logger:    logger,
		now:       time.Now,
	}
}

// WithNow overrides the clock for deterministic tests.
func (s *Service) WithNow(now func() time.Time) *Service {
	s.now = now
	return s
}

// ProcessCycle materializes entries from compensation records and moves the
// cycle from draft to processed. Amounts are frozen here; later stages only
// change status. Any aggregation failure aborts the whole cycle.
func (s *Service) ProcessCycle(ctx context.Context, cycleID, actorID int64) (Cycle, []Entry, error) {
	now := s.now()
	var cycle Cycle
	var entries []Entry
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		var err error
		cycle, err = tx.GetCycleForUpdate(ctx, cycleID)
		if err != nil {
			return err
		}
		if cycle.Status != StatusDraft {
			return &InvalidTransitionError{Current: cycle.Status, Required: StatusDraft}
		}
		comps, err := s.comp.ListForPeriod(ctx, cycle.SalonID, cycle.PeriodStart, cycle.PeriodEnd)
		if err != nil {
			return err
		}
		if len(comps) == 0 {
			return ErrNoCompensation
		}
		for _, c := range comps {
			gross, deductions, net, err := Aggregate(c)
			if err != nil {
				return err
			}
			e := Entry{
				CycleID:         cycleID,
				StaffID:         c.StaffID,
				Earnings:        c.Earnings,
				Deductions:      c.Deductions,
				GrossPaisa:      gross,
				DeductionsPaisa: deductions,
				NetPayablePaisa: net,
				PaymentStatus:   EntryPending,
			}
			e.ID, err = tx.InsertEntry(ctx, e)
			if err != nil {
				return err
			}
			entries = append(entries, e)
		}
		return tx.UpdateCycleStatus(ctx, cycleID, StatusProcessed, actorID, now)
	})
	if err != nil {
		return Cycle{}, nil, err
	}

	cycle.Status = StatusProcessed
	cycle.ProcessedBy = &actorID
	cycle.ProcessedAt = &now
	s.afterTransition(ctx, cycle, actorID, shared.ApprovalProcess, now)
	return cycle, entries, nil
}

// Approve moves a processed cycle to approved.
func (s *Service) Approve(ctx context.Context, cycleID, actorID int64) (Cycle, error) {
	cycle, err := s.transition(ctx, cycleID, actorID, StatusProcessed, StatusApproved, nil)
	if err != nil {
		return Cycle{}, err
	}
	now := *cycle.ApprovedAt
	s.afterTransition(ctx, cycle, actorID, shared.ApprovalApprove, now)
	return cycle, nil
}

// Pay moves an approved cycle to paid and cascades payment to every entry
// still pending. Paid is terminal.
func (s *Service) Pay(ctx context.Context, cycleID, actorID int64) (Cycle, error) {
	var cascaded int64
	cycle, err := s.transition(ctx, cycleID, actorID, StatusApproved, StatusPaid, func(ctx context.Context, tx TxRepository, at time.Time) error {
		var err error
		cascaded, err = tx.CascadeEntriesPaid(ctx, cycleID, at)
		return err
	})
	if err != nil {
		return Cycle{}, err
	}
	s.logger.Info("payroll cycle paid",
		slog.Int64("cycle_id", cycleID), slog.Int64("entries_cascaded", cascaded))
	s.afterTransition(ctx, cycle, actorID, shared.ApprovalPay, *cycle.PaidAt)
	return cycle, nil
}

// PayEntry settles a single entry ahead of the cycle-wide payout. The
// cycle must already be approved; a processed cycle rejects the payment.
func (s *Service) PayEntry(ctx context.Context, entryID, actorID int64) (Entry, error) {
	now := s.now()
	var entry Entry
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		var err error
		entry, err = tx.GetEntryForUpdate(ctx, entryID)
		if err != nil {
			return err
		}
		if entry.PaymentStatus == EntryPaid {
			return ErrAlreadyPaid
		}
		cycle, err := tx.GetCycleForUpdate(ctx, entry.CycleID)
		if err != nil {
			return err
		}
		if cycle.Status != StatusApproved {
			return &InvalidTransitionError{Current: cycle.Status, Required: StatusApproved}
		}
		return tx.MarkEntryPaid(ctx, entryID, now)
	})
	if err != nil {
		return Entry{}, err
	}

	entry.PaymentStatus = EntryPaid
	entry.PaidAt = &now
	s.recordAudit(ctx, actorID, "payroll.entry.pay", "payroll_entry", strconv.FormatInt(entryID, 10), map[string]any{
		"cycle_id":          entry.CycleID,
		"staff_id":          entry.StaffID,
		"net_payable_paisa": entry.NetPayablePaisa,
	}, now)
	return entry, nil
}

// GetCycle returns a cycle with its entries.
func (s *Service) GetCycle(ctx context.Context, cycleID int64) (Cycle, []Entry, error) {
	cycle, err := s.repo.GetCycle(ctx, cycleID)
	if err != nil {
		return Cycle{}, nil, err
	}
	entries, err := s.repo.ListEntries(ctx, cycleID)
	if err != nil {
		return Cycle{}, nil, err
	}
	return cycle, entries, nil
}

// Payslip is the rendered view of one entry.
type Payslip struct {
	Entry     Entry       `json:"entry"`
	Cycle     Cycle       `json:"cycle"`
	Formatted PayslipView `json:"formatted"`
}

// PayslipView carries display amounts in Indian notation.
type PayslipView struct {
	Gross      string `json:"gross"`
	Deductions string `json:"deductions"`
	NetPayable string `json:"net_payable"`
}

// GetPayslip returns the payslip for one entry.
func (s *Service) GetPayslip(ctx context.Context, entryID int64) (Payslip, error) {
	entry, err := s.repo.GetEntry(ctx, entryID)
	if err != nil {
		return Payslip{}, err
	}
	cycle, err := s.repo.GetCycle(ctx, entry.CycleID)
	if err != nil {
		return Payslip{}, err
	}
	return Payslip{
		Entry: entry,
		Cycle: cycle,
		Formatted: PayslipView{
			Gross:      entry.GrossPaisa.FormatINR(),
			Deductions: entry.DeductionsPaisa.FormatINR(),
			NetPayable: entry.NetPayablePaisa.FormatINR(),
		},
	}, nil
}

// transition advances a cycle one step, running extra inside the same
// transaction after the status check passes.
func (s *Service) transition(ctx context.Context, cycleID, actorID int64, from, to CycleStatus, extra func(context.Context, TxRepository, time.Time) error) (Cycle, error) {
	now := s.now()
	var cycle Cycle
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		var err error
		cycle, err = tx.GetCycleForUpdate(ctx, cycleID)
		if err != nil {
			return err
		}
		if cycle.Status != from {
			return &InvalidTransitionError{Current: cycle.Status, Required: from}
		}
		if extra != nil {
			if err := extra(ctx, tx, now); err != nil {
				return err
			}
		}
		return tx.UpdateCycleStatus(ctx, cycleID, to, actorID, now)
	})
	if err != nil {
		return Cycle{}, err
	}

	cycle.Status = to
	switch to {
	case StatusApproved:
		cycle.ApprovedBy, cycle.ApprovedAt = &actorID, &now
	case StatusPaid:
		cycle.PaidBy, cycle.PaidAt = &actorID, &now
	}
	return cycle, nil
}

func (s *Service) afterTransition(ctx context.Context, cycle Cycle, actorID int64, action shared.ApprovalAction, at time.Time) {
	s.metrics.PayrollTransition(string(cycle.Status))
	if s.approvals != nil {
		if err := s.approvals.Record(ctx, shared.ApprovalLog{
			Module:  "payroll",
			RefID:   cycle.ID,
			ActorID: actorID,
			Action:  action,
			At:      at,
		}); err != nil {
			s.logger.Warn("record payroll approval",
				slog.Int64("cycle_id", cycle.ID), slog.Any("error", err))
		}
	}
	s.recordAudit(ctx, actorID, "payroll."+string(action), "payroll_cycle", strconv.FormatInt(cycle.ID, 10), map[string]any{
		"salon_id": cycle.SalonID,
		"status":   cycle.Status,
	}, at)
}

func (s *Service) recordAudit(ctx context.Context, actorID int64, action, entity, entityID string, meta map[string]any, at time.Time) {
	if s.audit == nil {
		return
	}
	if err := s.audit.Record(ctx, shared.AuditLog{
		ActorID:  actorID,
		Action:   action,
		Entity:   entity,
		EntityID: entityID,
		Meta:     meta,
		At:       at,
	}); err != nil {
		s.logger.Warn("record payroll audit", slog.String("action", action), slog.Any("error", err))
	}
}
