package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"dealfinder/internal/adapters/observability"
	"dealfinder/internal/catalog"
	"dealfinder/internal/domain"
	"dealfinder/internal/pricing"
)

const maxOffers = 6

type SearchService struct {
	search   domain.SearchClient // nil means demo mode
	cache    domain.Cache
	cacheTTL time.Duration
	est      *pricing.Estimator
	now      func() time.Time
}

func NewSearchService(sc domain.SearchClient, c domain.Cache, ttl time.Duration, est *pricing.Estimator) *SearchService {
	if est == nil {
		est = pricing.Default
	}
	return &SearchService{search: sc, cache: c, cacheTTL: ttl, est: est, now: time.Now}
}

// FindSellers returns priced offers for product. Search failures never
// surface: the curated seller list is used instead.
func (s *SearchService) FindSellers(ctx context.Context, product string) (domain.SearchResult, error) {
	product = strings.TrimSpace(product)
	if err := catalog.Validate(product); err != nil {
		return domain.SearchResult{}, err
	}

	key := "search:" + strings.ToLower(product)
	var cached domain.SearchResult
	if s.cache != nil {
		if ok, _ := s.cache.Get(ctx, key, &cached); ok {
			return cached, nil
		}
	}

	res, ok := s.searchLive(ctx, product)
	if !ok {
		res = s.fallback(product)
	}

	if s.cache != nil {
		_ = s.cache.Set(ctx, key, res, int(s.cacheTTL.Seconds()))
	}
	return res, nil
}

func (s *SearchService) searchLive(ctx context.Context, product string) (domain.SearchResult, bool) {
	if s.search == nil {
		observability.ObserveFallback("search", "unconfigured", nil)
		return domain.SearchResult{}, false
	}
	query := product + " buy online store price"
	hits, err := s.search.Search(ctx, query)
	if err != nil {
		observability.ObserveFallback("search", "error", err)
		return domain.SearchResult{}, false
	}

	seen := make(map[string]bool, len(hits))
	offers := make([]domain.Offer, 0, maxOffers)
	for _, h := range hits {
		seller, ok := catalog.FromSearchHit(h)
		if !ok || seen[strings.ToLower(seller.Name)] {
			continue
		}
		seen[strings.ToLower(seller.Name)] = true
		listed, _ := catalog.ParsePrice(h.Price)
		offers = append(offers, s.offer(product, seller, listed))
		if len(offers) == maxOffers {
			break
		}
	}
	if len(offers) == 0 {
		observability.ObserveFallback("search", "empty", nil)
		return domain.SearchResult{}, false
	}

	log.Info().Str("product", product).Int("sellers", len(offers)).Msg("live search ok")
	return domain.SearchResult{
		Product:   product,
		Query:     query,
		Offers:    offers,
		Message:   fmt.Sprintf("Found %d sellers from live search", len(offers)),
		Timestamp: s.now().UTC(),
	}, true
}

func (s *SearchService) fallback(product string) domain.SearchResult {
	sellers := catalog.SellersFor(product)
	offers := make([]domain.Offer, 0, len(sellers))
	for _, seller := range sellers {
		offers = append(offers, s.offer(product, seller, 0))
	}
	return domain.SearchResult{
		Product:   product,
		Query:     product + " buy online",
		Offers:    offers,
		Demo:      true,
		Message:   fmt.Sprintf("Found %d verified sellers", len(offers)),
		Timestamp: s.now().UTC(),
	}
}

// offer prices seller for product. A listed price from a shopping result is
// kept when it is within 30% of the estimate.
func (s *SearchService) offer(product string, seller domain.Seller, listed int) domain.Offer {
	original := s.est.AdjustForSeller(s.est.EstimateBasePrice(product), seller.Name)
	price := s.est.ApplyMarketJitter(original)
	if listed > 0 && abs(listed-original)*10 < original*3 {
		price = listed
	}
	return domain.Offer{
		Seller:        seller,
		ProductURL:    catalog.ProductURL(seller, product),
		Price:         price,
		OriginalPrice: original,
		InStock:       true,
		LastUpdated:   s.now().UTC(),
	}
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
