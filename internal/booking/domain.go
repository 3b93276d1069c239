// Package booking holds the engine's write port into the booking store.
// Bookings are owned by the scheduling product; checkout performs exactly
// one write against them, completing a booking as part of settlement.
package booking

import (
	"errors"
	"time"

	"github.com/salonos/salonos/internal/money"
)

// Status enumerates booking lifecycle states.
type Status string

const (
	StatusPending    Status = "pending"
	StatusConfirmed  Status = "confirmed"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
	StatusNoShow     Status = "no_show"
)

// PaymentStatus enumerates booking payment markers.
type PaymentStatus string

const (
	PaymentUnpaid PaymentStatus = "unpaid"
	PaymentPaid   PaymentStatus = "paid"
)

// Booking mirrors the externally owned booking row.
type Booking struct {
	ID               int64
	SalonID          int64
	ClientName       string
	StaffID          int64
	Status           Status
	PaymentStatus    PaymentStatus
	FinalAmountPaisa money.Paisa
	ScheduledAt      time.Time
	UpdatedAt        time.Time
}

var (
	// ErrNotFound indicates the booking id does not exist in this salon.
	ErrNotFound = errors.New("booking: not found")
	// ErrAlreadyCompleted indicates the booking was completed or cancelled
	// before this checkout reached it.
	ErrAlreadyCompleted = errors.New("booking: already completed")
)
