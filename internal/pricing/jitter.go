package pricing

// ApplyMarketJitter perturbs price by a uniform factor in
// [-JitterSpread, +JitterSpread] and never drops below JitterFloor*price.
// Non-positive prices are returned unchanged.
func (e *Estimator) ApplyMarketJitter(price int) int {
	if price <= 0 {
		return price
	}
	u := (e.rnd.Float64()*2 - 1) * JitterSpread
	out := roundHalfUp(float64(price) * (1 + u))
	if floor := roundHalfUp(float64(price) * JitterFloor); out < floor {
		return floor
	}
	return out
}
