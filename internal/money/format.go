package money

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// inr formats numbers with Indian digit grouping (₹1,23,456.00).
var inr = message.NewPrinter(language.MustParse("en-IN"))

// FormatINR renders the amount as a display rupee string, e.g. "₹1,234.00".
func (p Paisa) FormatINR() string {
	return inr.Sprintf("₹%.2f", p.Rupees())
}
