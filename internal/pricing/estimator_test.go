package pricing_test

import (
	"math"
	"math/rand/v2"
	"sync"
	"testing"

	"dealfinder/internal/pricing"
)

type fixedRand float64

func (f fixedRand) Float64() float64 { return float64(f) }

func TestEstimateBasePrice_KnownProducts(t *testing.T) {
	cases := []struct {
		product string
		want    int
	}{
		{"iPhone 15 Pro", 999},
		{"iPhone 15 Pro Max", 1199},
		{"iphone 15 plus", 899},
		{"iPhone 15", 799},
		{"iPhone 14 Pro", 899},
		{"Apple iPhone 14 128GB", 699},
		{"Air Jordan 4 Retro", 320},
		{"Air Jordan 1 Retro High", 280},
		{"Jordan 11 Concord", 350},
		{"Air Jordan 5", 250},
		{"Samsung Galaxy S24 Ultra", 1199},
		{"Samsung Galaxy S24", 899},
		{"Yeezy 350 V2", 220},
		{"Nike Air Max 97", 160},
		{"Sony PS5 Slim", 499},
		{"PlayStation 5 Console", 499},
		{"Nintendo Switch OLED", 349},
		{"Nintendo Switch Lite", 299},
		{"MacBook Pro 16", 2499},
		{"MacBook Air M3", 1299},
		{"iPad Pro 12.9", 1099},
		{"iPad Pro", 799},
		{"iPad Mini", 329},
		{"AirPods Pro 2", 249},
		{"AirPods Max", 549},
		{"AirPods Pro", 199},
		{"AirPods 3", 179},
		{"Taylor Swift Eras Tour", 450},
		{"  IPHONE 15 PRO  ", 999},
	}
	for _, tc := range cases {
		if got := pricing.EstimateBasePrice(tc.product); got != tc.want {
			t.Errorf("EstimateBasePrice(%q) = %d, want %d", tc.product, got, tc.want)
		}
	}
}

func TestEstimateBasePrice_UnknownFallsBackToDefault(t *testing.T) {
	for _, p := range []string{"qqzz", "", "   ", "garden hose"} {
		if got := pricing.EstimateBasePrice(p); got != pricing.DefaultBasePrice {
			t.Errorf("EstimateBasePrice(%q) = %d, want default %d", p, got, pricing.DefaultBasePrice)
		}
	}
}

func TestEstimateBasePrice_IsPure(t *testing.T) {
	e := pricing.New()
	for _, p := range []string{"iPhone 15 Pro", "qqzz", "Air Max"} {
		if a, b := e.EstimateBasePrice(p), e.EstimateBasePrice(p); a != b {
			t.Fatalf("EstimateBasePrice(%q) not stable: %d vs %d", p, a, b)
		}
	}
}

func TestAdjustForSeller(t *testing.T) {
	for _, base := range []int{0, 1, 99, 999, 1199, 2499} {
		if got := pricing.AdjustForSeller(base, "Apple"); got != base {
			t.Errorf("Apple factor must be 1.0: AdjustForSeller(%d) = %d", base, got)
		}
	}

	cases := []struct {
		base   int
		seller string
		want   int
	}{
		{1000, "Costco", 900},
		{1000, "costco wholesale", 900},
		{999, "Amazon", 949},
		{1000, "Walmart", 920},
		{1000, "Target", 960},
		{1000, "Best Buy", 980},
		{1000, "StockX", 1150},
		{1000, "GOAT", 1120},
		{1000, "eBay", 850},
		{1000, "Verizon", 1050},
		{1000, "AT&T", 1050},
		{1000, "T-Mobile", 1050},
		{1000, "Corner Shop", 940},
		{1000, "", 940},
		{999, "Apple Store", 999},
	}
	for _, tc := range cases {
		if got := pricing.AdjustForSeller(tc.base, tc.seller); got != tc.want {
			t.Errorf("AdjustForSeller(%d, %q) = %d, want %d", tc.base, tc.seller, got, tc.want)
		}
	}
}

func TestNegotiate(t *testing.T) {
	got := pricing.Negotiate(1000, "Costco")
	if got.NegotiatedPrice != 900 || got.Savings != 100 || got.SavingsPercent != 10 {
		t.Fatalf("Negotiate(1000, Costco) = %+v", got)
	}

	cases := []struct {
		seller string
		power  float64
		price  int
	}{
		{"Walmart", 0.08, 920},
		{"Best Buy", 0.06, 940},
		{"Amazon", 0.05, 950},
		{"Apple Store", 0.02, 980},
		{"Flight Club", 0.05, 950},
	}
	for _, tc := range cases {
		n := pricing.Negotiate(1000, tc.seller)
		if n.Power != tc.power || n.NegotiatedPrice != tc.price {
			t.Errorf("Negotiate(1000, %q) = %+v, want power %.2f price %d", tc.seller, n, tc.power, tc.price)
		}
	}

	if z := pricing.Negotiate(0, "Costco"); z.NegotiatedPrice != 0 || z.SavingsPercent != 0 {
		t.Fatalf("Negotiate(0) = %+v", z)
	}
}

func TestApplyMarketJitter_StaysInBounds(t *testing.T) {
	e := pricing.New(pricing.WithRand(rand.New(rand.NewPCG(1, 2))))
	for _, price := range []int{1, 7, 50, 179, 949, 2499} {
		lo := int(math.Round(float64(price) * pricing.JitterFloor))
		hi := int(math.Round(float64(price) * (1 + pricing.JitterSpread)))
		for i := 0; i < 500; i++ {
			got := e.ApplyMarketJitter(price)
			if got < lo || got > hi {
				t.Fatalf("jitter(%d) = %d outside [%d, %d]", price, got, lo, hi)
			}
		}
	}
}

func TestApplyMarketJitter_InjectedSource(t *testing.T) {
	cases := []struct {
		r    float64
		want int
	}{
		{0.5, 1000}, // u = 0
		{0.0, 950},  // u = -0.05
		{0.75, 1025},
	}
	for _, tc := range cases {
		e := pricing.New(pricing.WithRand(fixedRand(tc.r)))
		if got := e.ApplyMarketJitter(1000); got != tc.want {
			t.Errorf("jitter with r=%.2f = %d, want %d", tc.r, got, tc.want)
		}
	}

	e := pricing.New(pricing.WithRand(fixedRand(0)))
	for _, p := range []int{0, -5} {
		if got := e.ApplyMarketJitter(p); got != p {
			t.Errorf("jitter(%d) = %d, want unchanged", p, got)
		}
	}
}

func TestQuote_EndToEnd(t *testing.T) {
	e := pricing.New()
	q := e.Quote("iPhone 15 Pro", "Amazon", false)
	if q.BasePrice != 999 || q.QuotedPrice != 949 || q.NegotiatedPrice != 902 {
		t.Fatalf("unexpected quote: %+v", q)
	}
	n := e.Negotiate(q.QuotedPrice, "Amazon")
	if n.Savings != 47 || n.SavingsPercent != 5 {
		t.Fatalf("unexpected negotiation: %+v", n)
	}
}

func TestQuote_WithJitterKeepsOrdering(t *testing.T) {
	e := pricing.New(pricing.WithRand(fixedRand(0.999)))
	q := e.Quote("MacBook Pro 14", "Best Buy", true)
	if q.NegotiatedPrice > q.QuotedPrice {
		t.Fatalf("negotiated above quoted: %+v", q)
	}
	if float64(q.QuotedPrice) > float64(q.BasePrice)*1.15 {
		t.Fatalf("quoted above premium band: %+v", q)
	}
}

func TestEstimator_ConcurrentUse(t *testing.T) {
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				_ = pricing.Default.Quote("Air Jordan 4 Retro", "StockX", true)
			}
		}()
	}
	wg.Wait()
}
