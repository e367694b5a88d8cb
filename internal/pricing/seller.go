package pricing

import "strings"

type factorRule struct {
	match  []string
	factor float64
}

var sellerRules = []factorRule{
	{[]string{"apple"}, 1.00},
	{[]string{"amazon"}, 0.95},
	{[]string{"walmart"}, 0.92},
	{[]string{"target"}, 0.96},
	{[]string{"best buy"}, 0.98},
	{[]string{"costco"}, 0.90},
	{[]string{"stockx"}, 1.15},
	{[]string{"goat"}, 1.12},
	{[]string{"ebay"}, 0.85},
	{[]string{"verizon", "at&t", "t-mobile"}, 1.05},
}

// SellerFactor returns the multiplier applied to a base price for seller.
func (e *Estimator) SellerFactor(seller string) float64 {
	return lookupFactor(e.sellers, seller, DefaultSellerRatio)
}

// AdjustForSeller scales basePrice by the seller's factor, rounded half-up.
func (e *Estimator) AdjustForSeller(basePrice int, seller string) int {
	return roundHalfUp(float64(basePrice) * e.SellerFactor(seller))
}

func lookupFactor(rules []factorRule, name string, def float64) float64 {
	n := normalize(name)
	if n == "" {
		return def
	}
	for _, r := range rules {
		for _, m := range r.match {
			if strings.Contains(n, m) {
				return r.factor
			}
		}
	}
	return def
}
