package pricing

import "strings"

type priceRule struct {
	match []string
	price int
}

// catalogRules must stay most-specific-first: "iphone 15 pro max" before
// "iphone 15 pro" before "iphone 15".
var catalogRules = []priceRule{
	{[]string{"iphone 15 pro max"}, 1199},
	{[]string{"iphone 15 pro"}, 999},
	{[]string{"iphone 15 plus"}, 899},
	{[]string{"iphone 15"}, 799},
	{[]string{"iphone 14 pro"}, 899},
	{[]string{"iphone 14"}, 699},
	{[]string{"iphone 13"}, 599},
	{[]string{"iphone 12"}, 499},
	{[]string{"samsung galaxy s24 ultra"}, 1199},
	{[]string{"samsung galaxy s24"}, 899},
	{[]string{"samsung galaxy s23"}, 699},
	{[]string{"jordan 4 retro"}, 320},
	{[]string{"jordan 1 retro"}, 280},
	{[]string{"jordan 3"}, 300},
	{[]string{"jordan 11"}, 350},
	{[]string{"jordan"}, 250},
	{[]string{"yeezy 350"}, 220},
	{[]string{"yeezy 700"}, 300},
	{[]string{"yeezy"}, 250},
	{[]string{"air max 90"}, 120},
	{[]string{"air max 97"}, 160},
	{[]string{"air max"}, 130},
	{[]string{"playstation 5", "ps5"}, 499},
	{[]string{"xbox series x"}, 499},
	{[]string{"nintendo switch oled"}, 349},
	{[]string{"nintendo switch"}, 299},
	{[]string{"macbook pro 16"}, 2499},
	{[]string{"macbook pro 14"}, 1999},
	{[]string{"macbook air m3"}, 1299},
	{[]string{"macbook air"}, 1099},
	{[]string{"ipad pro 12.9"}, 1099},
	{[]string{"ipad pro 11"}, 799},
	{[]string{"ipad pro"}, 799},
	{[]string{"ipad air"}, 599},
	{[]string{"ipad"}, 329},
	{[]string{"airpods pro 2"}, 249},
	{[]string{"airpods max"}, 549},
	{[]string{"airpods pro"}, 199},
	{[]string{"airpods"}, 179},
	{[]string{"taylor swift", "concert"}, 450},
}

// EstimateBasePrice returns the seller-independent reference price in USD.
// Unknown products get DefaultBasePrice.
func (e *Estimator) EstimateBasePrice(product string) int {
	p := normalize(product)
	if p == "" {
		return DefaultBasePrice
	}
	for _, r := range e.catalog {
		for _, m := range r.match {
			if strings.Contains(p, m) {
				return r.price
			}
		}
	}
	return DefaultBasePrice
}
