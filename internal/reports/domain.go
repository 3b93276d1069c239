// Package reports builds settlement summaries over persisted receipts.
package reports

import (
	"errors"
	"time"

	"github.com/salonos/salonos/internal/money"
)

// MethodTotals aggregates receipts under one payment method.
type MethodTotals struct {
	ReceiptCount int64       `json:"receipt_count"`
	TotalPaisa   money.Paisa `json:"total_paisa"`
}

// ServiceTotal ranks one service by settled revenue.
type ServiceTotal struct {
	ItemID       int64       `json:"item_id"`
	Name         string      `json:"name"`
	Quantity     int64       `json:"quantity"`
	RevenuePaisa money.Paisa `json:"revenue_paisa"`
}

// Totals holds the monetary rollup of one reporting window.
type Totals struct {
	ReceiptCount  int64       `json:"receipt_count"`
	SubtotalPaisa money.Paisa `json:"subtotal_paisa"`
	DiscountPaisa money.Paisa `json:"discount_paisa"`
	TaxPaisa      money.Paisa `json:"tax_paisa"`
	TipPaisa      money.Paisa `json:"tip_paisa"`
	TotalPaisa    money.Paisa `json:"total_paisa"`
}

// DailySummary is the settlement report for one salon-day.
type DailySummary struct {
	SalonID     int64                   `json:"salon_id"`
	Date        string                  `json:"date"`
	Totals      Totals                  `json:"totals"`
	ByMethod    map[string]MethodTotals `json:"by_payment_method"`
	TopServices []ServiceTotal          `json:"top_services"`
	Formatted   FormattedTotals         `json:"formatted"`
}

// FormattedTotals carries display amounts in Indian notation.
type FormattedTotals struct {
	Subtotal string `json:"subtotal"`
	Discount string `json:"discount"`
	Tax      string `json:"tax"`
	Tip      string `json:"tip"`
	Total    string `json:"total"`
}

// ErrInvalidDate rejects a malformed report date.
var ErrInvalidDate = errors.New("reports: date must be YYYY-MM-DD")

// DayBounds returns the half-open UTC window for one report date.
func DayBounds(date string) (time.Time, time.Time, error) {
	day, err := time.Parse("2006-01-02", date)
	if err != nil {
		return time.Time{}, time.Time{}, ErrInvalidDate
	}
	return day, day.AddDate(0, 0, 1), nil
}
