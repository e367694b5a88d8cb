package pricing

var powerRules = []factorRule{
	{[]string{"costco"}, 0.10},
	{[]string{"walmart"}, 0.08},
	{[]string{"best buy"}, 0.06},
	{[]string{"amazon"}, 0.05},
	{[]string{"apple"}, 0.02},
}

// Negotiation is the outcome of one simulated phone negotiation.
type Negotiation struct {
	OriginalPrice   int
	NegotiatedPrice int
	Savings         int
	SavingsPercent  int
	Power           float64
}

// NegotiationPower is the fraction a call is assumed to extract from seller.
func (e *Estimator) NegotiationPower(seller string) float64 {
	return lookupFactor(e.powers, seller, DefaultPower)
}

func (e *Estimator) Negotiate(price int, seller string) Negotiation {
	p := e.NegotiationPower(seller)
	negotiated := roundHalfUp(float64(price) * (1 - p))
	n := Negotiation{
		OriginalPrice:   price,
		NegotiatedPrice: negotiated,
		Savings:         price - negotiated,
		Power:           p,
	}
	if price > 0 {
		n.SavingsPercent = roundHalfUp(100 * float64(n.Savings) / float64(price))
	}
	return n
}
