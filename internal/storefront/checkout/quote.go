package checkout

import (
	"math"

	"github.com/Skotchmaster/pharmacy_shop/internal/storefront/cart"
)

const (
	FreeShippingOver = 50.0
	ShippingFee      = 5.99
	TaxRate          = 0.08
)

type Totals struct {
	Subtotal float64 `json:"subtotal"`
	Shipping float64 `json:"shipping"`
	Tax      float64 `json:"tax"`
	Total    float64 `json:"total"`
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}

// Quote prices the lines: free shipping above FreeShippingOver, TaxRate on the
// subtotal, every amount rounded to cents. An empty cart costs nothing.
func Quote(lines []cart.Line) Totals {
	if len(lines) == 0 {
		return Totals{}
	}
	var sum float64
	for _, l := range lines {
		sum += l.Subtotal()
	}

	t := Totals{Subtotal: roundCents(sum), Shipping: ShippingFee}
	if t.Subtotal > FreeShippingOver {
		t.Shipping = 0
	}
	t.Tax = roundCents(t.Subtotal * TaxRate)
	t.Total = roundCents(t.Subtotal + t.Shipping + t.Tax)
	return t
}
