// Package money implements integer minor-unit (paisa) currency arithmetic.
// One rupee is 100 paisa. Every amount inside the settlement engine is a
// Paisa value; floating-point rupees appear only at declared input
// boundaries (tips, fixed discount values) and at display formatting.
package money

import "math"

// Paisa is a non-negative count of minor currency units.
type Paisa int64

// PaisaPerRupee is the minor-unit scale.
const PaisaPerRupee = 100

// Add returns p + q.
func (p Paisa) Add(q Paisa) Paisa {
	return p + q
}

// Sub returns p - q floored at zero; a deduction can never drive an
// amount negative.
func (p Paisa) Sub(q Paisa) Paisa {
	if q >= p {
		return 0
	}
	return p - q
}

// CapAt returns p bounded above by ceiling.
func (p Paisa) CapAt(ceiling Paisa) Paisa {
	if p > ceiling {
		return ceiling
	}
	return p
}

// Rupees converts to a floating rupee value. Display and logging only.
func (p Paisa) Rupees() float64 {
	return float64(p) / PaisaPerRupee
}

// FromRupees converts a rupee amount to paisa, rounding half up to the
// nearest paisa. The result saturates at the int64 bounds so an
// overflow-scale input can never wrap negative.
func FromRupees(r float64) Paisa {
	if r <= 0 {
		return 0
	}
	v := math.Floor(r*PaisaPerRupee + 0.5)
	if v >= math.MaxInt64 {
		return math.MaxInt64
	}
	return Paisa(v)
}

// PercentOf returns pct percent of p, rounded half up.
func PercentOf(p Paisa, pct float64) Paisa {
	return Paisa(math.Floor(float64(p)*pct/100 + 0.5))
}

// TaxOn applies a basis-point rate to p, rounded half up. Integer
// arithmetic keeps the result exact for any amount.
func TaxOn(p Paisa, rateBps int) Paisa {
	return (p*Paisa(rateBps) + 5000) / 10000
}
