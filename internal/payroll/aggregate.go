package payroll

import "github.com/salonos/salonos/internal/money"

// Total sums all earning heads.
func (e Earnings) Total() money.Paisa {
	return e.BaseSalary + e.Allowances + e.CommissionEarnings + e.TipsReceived + e.Bonuses
}

// Total sums all deduction heads.
func (d Deductions) Total() money.Paisa {
	return d.TDS + d.PF + d.ESI + d.ProfessionalTax + d.LoanRecovery + d.Advances + d.Other
}

// Aggregate builds an entry's frozen amounts from a compensation record.
// A net payable below zero is a data error upstream, never clamped here.
func Aggregate(c StaffCompensation) (gross, deductions, net money.Paisa, err error) {
	gross = c.Earnings.Total()
	deductions = c.Deductions.Total()
	net = gross - deductions
	if net < 0 {
		return 0, 0, 0, &NegativeNetPayableError{StaffID: c.StaffID, Gross: gross, Deductions: deductions}
	}
	return gross, deductions, net, nil
}
