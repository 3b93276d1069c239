// Package payroll manages monthly payroll cycles for a salon: materializing
// per-staff entries from compensation records and walking each cycle through
// its forward-only lifecycle.
package payroll

import (
	"errors"
	"fmt"
	"time"

	"github.com/salonos/salonos/internal/money"
)

// CycleStatus enumerates payroll cycle lifecycle stages. Transitions move
// strictly forward: draft, processed, approved, paid.
type CycleStatus string

const (
	StatusDraft     CycleStatus = "draft"
	StatusProcessed CycleStatus = "processed"
	StatusApproved  CycleStatus = "approved"
	StatusPaid      CycleStatus = "paid"
)

// EntryPaymentStatus tracks disbursement of a single entry.
type EntryPaymentStatus string

const (
	EntryPending EntryPaymentStatus = "pending"
	EntryPaid    EntryPaymentStatus = "paid"
)

// Earnings itemizes what a staff member earned in one cycle.
type Earnings struct {
	BaseSalary         money.Paisa `json:"base_salary_paisa"`
	Allowances         money.Paisa `json:"allowances_paisa"`
	CommissionEarnings money.Paisa `json:"commission_earnings_paisa"`
	TipsReceived       money.Paisa `json:"tips_received_paisa"`
	Bonuses            money.Paisa `json:"bonuses_paisa"`
}

// Deductions itemizes what is withheld from one entry.
type Deductions struct {
	TDS             money.Paisa `json:"tds_paisa"`
	PF              money.Paisa `json:"pf_paisa"`
	ESI             money.Paisa `json:"esi_paisa"`
	ProfessionalTax money.Paisa `json:"professional_tax_paisa"`
	LoanRecovery    money.Paisa `json:"loan_recovery_paisa"`
	Advances        money.Paisa `json:"advances_paisa"`
	Other           money.Paisa `json:"other_paisa"`
}

// Cycle is one salon-month payroll run.
type Cycle struct {
	ID          int64       `json:"id"`
	SalonID     int64       `json:"salon_id"`
	PeriodStart time.Time   `json:"period_start"`
	PeriodEnd   time.Time   `json:"period_end"`
	Status      CycleStatus `json:"status"`
	ProcessedBy *int64      `json:"processed_by,omitempty"`
	ProcessedAt *time.Time  `json:"processed_at,omitempty"`
	ApprovedBy  *int64      `json:"approved_by,omitempty"`
	ApprovedAt  *time.Time  `json:"approved_at,omitempty"`
	PaidBy      *int64      `json:"paid_by,omitempty"`
	PaidAt      *time.Time  `json:"paid_at,omitempty"`
}

// Entry is one staff member's line in a cycle. Amounts are frozen at
// processing time; approval and payment never recompute them.
type Entry struct {
	ID              int64              `json:"id"`
	CycleID         int64              `json:"cycle_id"`
	StaffID         int64              `json:"staff_id"`
	Earnings        Earnings           `json:"earnings"`
	Deductions      Deductions         `json:"deductions"`
	GrossPaisa      money.Paisa        `json:"gross_paisa"`
	DeductionsPaisa money.Paisa        `json:"deductions_paisa"`
	NetPayablePaisa money.Paisa        `json:"net_payable_paisa"`
	PaymentStatus   EntryPaymentStatus `json:"payment_status"`
	PaidAt          *time.Time         `json:"paid_at,omitempty"`
}

// StaffCompensation is the upstream record an entry is aggregated from.
type StaffCompensation struct {
	StaffID    int64
	Earnings   Earnings
	Deductions Deductions
}

var (
	// ErrCycleNotFound indicates no cycle with the requested id.
	ErrCycleNotFound = errors.New("payroll: cycle not found")
	// ErrEntryNotFound indicates no entry with the requested id.
	ErrEntryNotFound = errors.New("payroll: entry not found")
	// ErrAlreadyPaid guards double disbursement of one entry.
	ErrAlreadyPaid = errors.New("payroll: entry already paid")
	// ErrNoCompensation indicates a cycle with no staff to pay.
	ErrNoCompensation = errors.New("payroll: no compensation records for cycle period")
)

// InvalidTransitionError reports a lifecycle operation attempted out of
// order, naming both the actual and the required status.
type InvalidTransitionError struct {
	Current  CycleStatus
	Required CycleStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("payroll: cycle is %s, operation requires %s", e.Current, e.Required)
}

// NegativeNetPayableError rejects an entry whose deductions exceed earnings.
type NegativeNetPayableError struct {
	StaffID    int64
	Gross      money.Paisa
	Deductions money.Paisa
}

func (e *NegativeNetPayableError) Error() string {
	return fmt.Sprintf("payroll: staff %d deductions %d exceed gross %d", e.StaffID, e.Deductions, e.Gross)
}
