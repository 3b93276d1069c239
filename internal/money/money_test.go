package money

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSubFloorsAtZero(t *testing.T) {
	require.Equal(t, Paisa(300), Paisa(500).Sub(200))
	require.Equal(t, Paisa(0), Paisa(500).Sub(500))
	require.Equal(t, Paisa(0), Paisa(500).Sub(900))
}

func TestCapAt(t *testing.T) {
	require.Equal(t, Paisa(100), Paisa(250).CapAt(100))
	require.Equal(t, Paisa(50), Paisa(50).CapAt(100))
}

func TestFromRupeesRoundsHalfUp(t *testing.T) {
	require.Equal(t, Paisa(10000), FromRupees(100))
	require.Equal(t, Paisa(10050), FromRupees(100.50))
	// 100.005 rupees sits exactly on the half-paisa boundary.
	require.Equal(t, Paisa(10001), FromRupees(100.005))
	require.Equal(t, Paisa(10000), FromRupees(100.004))
}

func TestFromRupeesSaturates(t *testing.T) {
	// Overflow-scale rupee amounts clamp to the int64 ceiling instead of
	// wrapping negative through the float conversion.
	require.Equal(t, Paisa(math.MaxInt64), FromRupees(1e18))
	require.Equal(t, Paisa(math.MaxInt64), FromRupees(math.MaxFloat64))
	require.Equal(t, Paisa(0), FromRupees(-1))
	require.True(t, FromRupees(1e18) > 0)
}

func TestPercentOf(t *testing.T) {
	require.Equal(t, Paisa(10000), PercentOf(50000, 20))
	require.Equal(t, Paisa(50000), PercentOf(50000, 100))
	require.Equal(t, Paisa(0), PercentOf(50000, 0))
	// 12.5% of 999 paisa = 124.875, rounds up to 125.
	require.Equal(t, Paisa(125), PercentOf(999, 12.5))
	// Exact half rounds up: 1% of 50 paisa = 0.5.
	require.Equal(t, Paisa(1), PercentOf(50, 1))
}

func TestTaxOn(t *testing.T) {
	require.Equal(t, Paisa(7200), TaxOn(40000, 1800))
	require.Equal(t, Paisa(0), TaxOn(0, 1800))
	// 18% of 3 paisa = 0.54, rounds up to 1.
	require.Equal(t, Paisa(1), TaxOn(3, 1800))
	// Exact half: 5% of 10 = 0.5 -> 1.
	require.Equal(t, Paisa(1), TaxOn(10, 500))
}

func TestFormatINR(t *testing.T) {
	require.Equal(t, "₹1,234.00", Paisa(123400).FormatINR())
	require.Equal(t, "₹0.00", Paisa(0).FormatINR())
	// Indian grouping: lakhs split after the first three digits.
	require.Equal(t, "₹1,23,456.78", Paisa(12345678).FormatINR())
}
