// Package checkout implements the settlement pipeline that turns a cart of
// verified service line items into an immutable receipt, and synchronizes a
// linked booking in the same unit of work.
package checkout

import (
	"errors"
	"fmt"
	"time"

	"github.com/salonos/salonos/internal/catalog"
	"github.com/salonos/salonos/internal/money"
)

// ItemType for a checkout line. Only services settle through this engine;
// retail product lines are rejected rather than silently dropped.
const ItemTypeService = "service"

// PaymentMethod tags how the client paid. Split-payment reconciliation is
// out of scope; the tag is recorded as-is.
type PaymentMethod string

const (
	PaymentCash      PaymentMethod = "cash"
	PaymentCard      PaymentMethod = "card"
	PaymentUPI       PaymentMethod = "upi"
	PaymentWallet    PaymentMethod = "wallet"
	PaymentSavedCard PaymentMethod = "savedCard"
	PaymentSplit     PaymentMethod = "split"
)

// Valid reports whether the payment method is one of the accepted tags.
func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCash, PaymentCard, PaymentUPI, PaymentWallet, PaymentSavedCard, PaymentSplit:
		return true
	}
	return false
}

// DiscountType selects between percentage and fixed-amount discounts.
type DiscountType string

const (
	DiscountPercentage DiscountType = "percentage"
	DiscountFixed      DiscountType = "fixed"
)

// Discount is an optional reduction applied to the subtotal. Percentage
// values are 0..100; fixed values are rupees, capped at the subtotal.
type Discount struct {
	Type   DiscountType `json:"type"`
	Value  float64      `json:"value"`
	Code   string       `json:"code,omitempty"`
	Reason string       `json:"reason,omitempty"`
}

// Receipt is the immutable output of one settled checkout. Corrections
// require a new receipt (refund), never an edit.
type Receipt struct {
	TransactionID   string                     `json:"transaction_id"`
	SalonID         int64                      `json:"salon_id"`
	Items           []catalog.ResolvedLineItem `json:"items"`
	SubtotalPaisa   money.Paisa                `json:"subtotal_paisa"`
	DiscountPaisa   money.Paisa                `json:"discount_paisa"`
	DiscountDetails *Discount                  `json:"discount_details,omitempty"`
	TaxPaisa        money.Paisa                `json:"tax_paisa"`
	TipPaisa        money.Paisa                `json:"tip_paisa"`
	TotalPaisa      money.Paisa                `json:"total_paisa"`
	PaymentMethod   PaymentMethod              `json:"payment_method"`
	BookingID       *int64                     `json:"booking_id,omitempty"`
	ClientName      string                     `json:"client_name"`
	ClientPhone     string                     `json:"client_phone"`
	Notes           string                     `json:"notes,omitempty"`
	Digest          string                     `json:"digest"`
	ProcessedBy     int64                      `json:"processed_by"`
	ProcessedAt     time.Time                  `json:"processed_at"`
}

// ItemInput is one untrusted line from the checkout payload.
type ItemInput struct {
	ID       int64
	Type     string
	Quantity int
}

// CheckoutInput carries a validated checkout request into the service.
type CheckoutInput struct {
	SalonID       int64
	StaffID       int64
	BookingID     *int64
	ClientName    string
	ClientPhone   string
	Items         []ItemInput
	PaymentMethod PaymentMethod
	Discount      *Discount
	TipRupees     float64
	Notes         string
}

var (
	// ErrEmptyCart rejects a checkout with no line items.
	ErrEmptyCart = errors.New("checkout: cart is empty")
	// ErrNegativeTip rejects a negative tip amount.
	ErrNegativeTip = errors.New("checkout: tip cannot be negative")
	// ErrReceiptNotFound indicates no receipt for the transaction id.
	ErrReceiptNotFound = errors.New("checkout: receipt not found")
	// ErrDuplicateTransaction indicates a transaction id collision on insert.
	ErrDuplicateTransaction = errors.New("checkout: duplicate transaction id")
)

// UnsupportedItemTypeError rejects non-service line items.
type UnsupportedItemTypeError struct {
	ItemID int64
	Type   string
}

func (e *UnsupportedItemTypeError) Error() string {
	return fmt.Sprintf("checkout: item %d has unsupported type %q, only services can be settled", e.ItemID, e.Type)
}

// DiscountError reports an out-of-range discount before pricing runs.
type DiscountError struct {
	Type   DiscountType
	Value  float64
	Reason string
}

func (e *DiscountError) Error() string {
	return fmt.Sprintf("checkout: invalid %s discount %v: %s", e.Type, e.Value, e.Reason)
}

// PaymentMethodError reports an unrecognized payment tag.
type PaymentMethodError struct {
	Method PaymentMethod
}

func (e *PaymentMethodError) Error() string {
	return fmt.Sprintf("checkout: unsupported payment method %q", e.Method)
}
