// Package pricing holds the deterministic price and negotiation estimator.
//
// Every lookup table lives here, once, in most-specific-first order. The
// estimator is total: unrecognised products and sellers fall back to
// documented defaults and no function returns an error.
package pricing

import (
	"math"
	"math/rand/v2"
	"strings"

	"dealfinder/internal/domain"
)

const (
	DefaultBasePrice   = 299
	DefaultSellerRatio = 0.94
	DefaultPower       = 0.05

	// JitterSpread is the half-width of the uniform market jitter.
	JitterSpread = 0.05
	// JitterFloor is the lowest fraction of the input price jitter may produce.
	JitterFloor = 0.85
)

// Rand is the random source used for market jitter. Float64 must return a
// value in [0, 1).
type Rand interface {
	Float64() float64
}

type globalRand struct{}

func (globalRand) Float64() float64 { return rand.Float64() }

type Estimator struct {
	catalog []priceRule
	sellers []factorRule
	powers  []factorRule
	rnd     Rand
}

type Option func(*Estimator)

// WithRand replaces the jitter source. Tests use it to pin exact outputs.
func WithRand(r Rand) Option {
	return func(e *Estimator) {
		if r != nil {
			e.rnd = r
		}
	}
}

func New(opts ...Option) *Estimator {
	e := &Estimator{
		catalog: catalogRules,
		sellers: sellerRules,
		powers:  powerRules,
		rnd:     globalRand{},
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Default is shared by callers that don't need a custom random source.
var Default = New()

func EstimateBasePrice(product string) int { return Default.EstimateBasePrice(product) }

func AdjustForSeller(basePrice int, seller string) int {
	return Default.AdjustForSeller(basePrice, seller)
}

func ApplyMarketJitter(price int) int { return Default.ApplyMarketJitter(price) }

func Negotiate(price int, seller string) Negotiation { return Default.Negotiate(price, seller) }

// Quote runs the full chain for one product and seller.
func (e *Estimator) Quote(product, seller string, jitter bool) domain.PriceQuote {
	base := e.EstimateBasePrice(product)
	quoted := e.AdjustForSeller(base, seller)
	if jitter {
		quoted = e.ApplyMarketJitter(quoted)
	}
	n := e.Negotiate(quoted, seller)
	return domain.PriceQuote{
		Seller:          seller,
		BasePrice:       base,
		QuotedPrice:     quoted,
		NegotiatedPrice: n.NegotiatedPrice,
	}
}

// roundHalfUp rounds to the nearest integer, ties away from zero.
func roundHalfUp(x float64) int {
	return int(math.Round(x))
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
