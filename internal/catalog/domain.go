// Package catalog resolves untrusted checkout line items against the
// salon's service catalog. Prices never come from the client payload; the
// resolver substitutes the stored price after confirming membership.
package catalog

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/salonos/salonos/internal/money"
)

// Quantity bounds accepted for a single line item.
const (
	MinQuantity = 1
	MaxQuantity = 100
)

// ServiceItem is one active catalog entry.
type ServiceItem struct {
	ID          int64       `json:"id"`
	SalonID     int64       `json:"salon_id"`
	Name        string      `json:"name"`
	PricePaisa  money.Paisa `json:"price_paisa"`
	DurationMin int         `json:"duration_min"`
	Active      bool        `json:"active"`
}

// ItemRequest is an untrusted (id, quantity) pair from a checkout payload.
type ItemRequest struct {
	ItemID   int64
	Quantity int
}

// ResolvedLineItem is a line item after authoritative price substitution.
type ResolvedLineItem struct {
	ItemID         int64       `json:"item_id"`
	Name           string      `json:"name"`
	UnitPricePaisa money.Paisa `json:"unit_price_paisa"`
	Quantity       int         `json:"quantity"`
}

// ErrNoItems is returned when a resolution request carries no items.
var ErrNoItems = errors.New("catalog: no items requested")

// ItemsNotFoundError names every requested id absent from the salon's
// active catalog. Resolution is all-or-nothing: one miss rejects the set.
type ItemsNotFoundError struct {
	IDs []int64
}

func (e *ItemsNotFoundError) Error() string {
	ids := make([]string, len(e.IDs))
	for i, id := range e.IDs {
		ids[i] = strconv.FormatInt(id, 10)
	}
	return "catalog: items not found: " + strings.Join(ids, ", ")
}

// QuantityError reports an out-of-range quantity before any lookup runs.
type QuantityError struct {
	ItemID   int64
	Quantity int
}

func (e *QuantityError) Error() string {
	return fmt.Sprintf("catalog: item %d quantity %d out of range [%d,%d]",
		e.ItemID, e.Quantity, MinQuantity, MaxQuantity)
}
