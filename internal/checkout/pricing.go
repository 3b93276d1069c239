package checkout

import (
	"github.com/salonos/salonos/internal/catalog"
	"github.com/salonos/salonos/internal/money"
)

// PricingConfig carries the configured flat tax rate and tip ceiling.
type PricingConfig struct {
	TaxRateBps int
	TipCeiling money.Paisa
}

// Quote holds the monetary outcome of one pricing run. Given the same
// resolved items, discount and tip, every field is deterministic.
type Quote struct {
	Subtotal      money.Paisa
	Discount      money.Paisa
	AfterDiscount money.Paisa
	Tax           money.Paisa
	Tip           money.Paisa
	Total         money.Paisa
}

// Price composes the settlement amounts in fixed stage order:
// subtotal, discount, tax on the discounted amount, tip, total.
// Stages never reorder; each stage consumes the previous stage's output.
func Price(items []catalog.ResolvedLineItem, discount *Discount, tipRupees float64, cfg PricingConfig) (Quote, error) {
	if len(items) == 0 {
		return Quote{}, ErrEmptyCart
	}
	if tipRupees < 0 {
		return Quote{}, ErrNegativeTip
	}
	if err := validateDiscount(discount); err != nil {
		return Quote{}, err
	}

	var q Quote
	for _, it := range items {
		q.Subtotal = q.Subtotal.Add(it.UnitPricePaisa * money.Paisa(it.Quantity))
	}

	if discount != nil {
		switch discount.Type {
		case DiscountPercentage:
			q.Discount = money.PercentOf(q.Subtotal, discount.Value)
		case DiscountFixed:
			q.Discount = money.FromRupees(discount.Value).CapAt(q.Subtotal)
		}
	}

	q.AfterDiscount = q.Subtotal.Sub(q.Discount)
	q.Tax = money.TaxOn(q.AfterDiscount, cfg.TaxRateBps)
	q.Tip = money.FromRupees(tipRupees).CapAt(cfg.TipCeiling)
	q.Total = q.AfterDiscount.Add(q.Tax).Add(q.Tip)
	return q, nil
}

func validateDiscount(d *Discount) error {
	if d == nil {
		return nil
	}
	switch d.Type {
	case DiscountPercentage:
		if d.Value < 0 || d.Value > 100 {
			return &DiscountError{Type: d.Type, Value: d.Value, Reason: "percentage must be between 0 and 100"}
		}
	case DiscountFixed:
		if d.Value < 0 {
			return &DiscountError{Type: d.Type, Value: d.Value, Reason: "fixed amount cannot be negative"}
		}
	default:
		return &DiscountError{Type: d.Type, Value: d.Value, Reason: "unknown discount type"}
	}
	return nil
}
