// Package pricing computes order totals the way checkout presents them:
// discount = round(subtotal × percent / 100), total = subtotal − discount +
// shipping. Shipping is fixed at zero in the current design. Decimal
// arithmetic keeps the money math out of binary floats.
package pricing

import "github.com/shopspring/decimal"

// Shipping is the flat shipping charge applied to every order.
const Shipping = 0

// Quote is a priced order summary.
type Quote struct {
	Subtotal        float64 `json:"subtotal"`
	DiscountPercent float64 `json:"discountPercent"`
	DiscountAmount  float64 `json:"discountAmount"`
	Shipping        float64 `json:"shipping"`
	Total           float64 `json:"total"`
}

// NewQuote prices a subtotal with a percentage discount. A discountPercent of
// 0 means no code was applied and the total equals the subtotal. The discount
// amount is rounded to the nearest whole unit.
func NewQuote(subtotal, discountPercent float64) Quote {
	s := decimal.NewFromFloat(subtotal)
	p := decimal.NewFromFloat(discountPercent)

	discount := s.Mul(p).Div(decimal.NewFromInt(100)).Round(0)
	total := s.Sub(discount).Add(decimal.NewFromInt(Shipping))

	return Quote{
		Subtotal:        subtotal,
		DiscountPercent: discountPercent,
		DiscountAmount:  discount.InexactFloat64(),
		Shipping:        Shipping,
		Total:           total.InexactFloat64(),
	}
}
