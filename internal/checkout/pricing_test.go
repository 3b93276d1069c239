package checkout

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/salonos/salonos/internal/catalog"
	"github.com/salonos/salonos/internal/money"
)

func testPricingConfig() PricingConfig {
	return PricingConfig{TaxRateBps: 1800, TipCeiling: money.FromRupees(100000)}
}

func lines(items ...catalog.ResolvedLineItem) []catalog.ResolvedLineItem {
	return items
}

func TestPricePercentageDiscount(t *testing.T) {
	items := lines(
		catalog.ResolvedLineItem{ItemID: 1, Name: "Haircut", UnitPricePaisa: 30000, Quantity: 1},
		catalog.ResolvedLineItem{ItemID: 2, Name: "Beard Trim", UnitPricePaisa: 10000, Quantity: 2},
	)
	q, err := Price(items, &Discount{Type: DiscountPercentage, Value: 20}, 0, testPricingConfig())
	require.NoError(t, err)
	require.Equal(t, money.Paisa(50000), q.Subtotal)
	require.Equal(t, money.Paisa(10000), q.Discount)
	require.Equal(t, money.Paisa(40000), q.AfterDiscount)
	require.Equal(t, money.Paisa(7200), q.Tax)
	require.Equal(t, money.Paisa(0), q.Tip)
	require.Equal(t, money.Paisa(47200), q.Total)
}

func TestPriceFixedDiscountCappedAtSubtotal(t *testing.T) {
	items := lines(catalog.ResolvedLineItem{ItemID: 1, Name: "Kids Cut", UnitPricePaisa: 50000, Quantity: 1})

	q, err := Price(items, &Discount{Type: DiscountFixed, Value: 1000}, 50, testPricingConfig())
	require.NoError(t, err)
	require.Equal(t, money.Paisa(50000), q.Subtotal)
	require.Equal(t, money.Paisa(50000), q.Discount)
	require.Equal(t, money.Paisa(0), q.AfterDiscount)
	require.Equal(t, money.Paisa(0), q.Tax)
	require.Equal(t, money.Paisa(5000), q.Tip)
	require.Equal(t, money.Paisa(5000), q.Total, "total collapses to the tip alone")
}

func TestPriceNoDiscountNoTip(t *testing.T) {
	items := lines(catalog.ResolvedLineItem{ItemID: 9, Name: "Facial", UnitPricePaisa: 120000, Quantity: 1})

	q, err := Price(items, nil, 0, testPricingConfig())
	require.NoError(t, err)
	require.Equal(t, money.Paisa(120000), q.Subtotal)
	require.Equal(t, money.Paisa(0), q.Discount)
	require.Equal(t, money.Paisa(21600), q.Tax)
	require.Equal(t, money.Paisa(141600), q.Total)
}

func TestPriceTipCeiling(t *testing.T) {
	items := lines(catalog.ResolvedLineItem{ItemID: 1, Name: "Spa Day", UnitPricePaisa: 500000, Quantity: 1})

	q, err := Price(items, nil, 150000, testPricingConfig())
	require.NoError(t, err)
	require.Equal(t, money.FromRupees(100000), q.Tip)
}

func TestPriceOverflowScaleInputsStayNonNegative(t *testing.T) {
	cfg := testPricingConfig()
	items := lines(catalog.ResolvedLineItem{ItemID: 1, Name: "Haircut", UnitPricePaisa: 35000, Quantity: 1})

	q, err := Price(items, nil, 1e18, cfg)
	require.NoError(t, err)
	require.Equal(t, cfg.TipCeiling, q.Tip)
	require.Equal(t, q.AfterDiscount.Add(q.Tax).Add(q.Tip), q.Total)
	require.True(t, q.Total > 0)

	q, err = Price(items, &Discount{Type: DiscountFixed, Value: 1e18}, 0, cfg)
	require.NoError(t, err)
	require.Equal(t, q.Subtotal, q.Discount, "discount cannot exceed the subtotal")
	require.Equal(t, money.Paisa(0), q.AfterDiscount)
	require.Equal(t, money.Paisa(0), q.Tax)
	require.Equal(t, money.Paisa(0), q.Total)
}

func TestPriceDeterministic(t *testing.T) {
	items := lines(
		catalog.ResolvedLineItem{ItemID: 3, Name: "Colour", UnitPricePaisa: 99900, Quantity: 1},
		catalog.ResolvedLineItem{ItemID: 4, Name: "Wash", UnitPricePaisa: 15000, Quantity: 3},
	)
	d := &Discount{Type: DiscountPercentage, Value: 12.5}

	first, err := Price(items, d, 250, testPricingConfig())
	require.NoError(t, err)
	second, err := Price(items, d, 250, testPricingConfig())
	require.NoError(t, err)
	require.Equal(t, first, second)
}

func TestPriceRejectsBadInput(t *testing.T) {
	cfg := testPricingConfig()
	items := lines(catalog.ResolvedLineItem{ItemID: 1, Name: "Haircut", UnitPricePaisa: 30000, Quantity: 1})

	_, err := Price(nil, nil, 0, cfg)
	require.ErrorIs(t, err, ErrEmptyCart)

	_, err = Price(items, nil, -1, cfg)
	require.ErrorIs(t, err, ErrNegativeTip)

	var discountErr *DiscountError
	_, err = Price(items, &Discount{Type: DiscountPercentage, Value: 120}, 0, cfg)
	require.ErrorAs(t, err, &discountErr)

	_, err = Price(items, &Discount{Type: DiscountFixed, Value: -5}, 0, cfg)
	require.ErrorAs(t, err, &discountErr)

	_, err = Price(items, &Discount{Type: "loyalty", Value: 10}, 0, cfg)
	require.ErrorAs(t, err, &discountErr)
}

func TestPriceZeroPercentDiscount(t *testing.T) {
	items := lines(catalog.ResolvedLineItem{ItemID: 1, Name: "Haircut", UnitPricePaisa: 30000, Quantity: 1})

	q, err := Price(items, &Discount{Type: DiscountPercentage, Value: 0}, 0, testPricingConfig())
	require.NoError(t, err)
	require.Equal(t, money.Paisa(0), q.Discount)
	require.Equal(t, q.Subtotal, q.AfterDiscount)
}
