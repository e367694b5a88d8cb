package app

import (
	"time"

	"github.com/samber/lo"

	"dealfinder/internal/domain"
)

type DealSummary struct {
	Product      string
	Deals        []domain.Deal
	Best         domain.Deal
	TotalSavings int
	GeneratedAt  time.Time
}

// Summarize picks the cheapest deal and totals the savings. Ties keep the
// first deal.
func Summarize(product string, deals []domain.Deal, at time.Time) DealSummary {
	return DealSummary{
		Product: product,
		Deals:   deals,
		Best: lo.MinBy(deals, func(a, b domain.Deal) bool {
			return a.FinalPrice < b.FinalPrice
		}),
		TotalSavings: lo.SumBy(deals, func(d domain.Deal) int { return d.Savings() }),
		GeneratedAt:  at.UTC(),
	}
}
