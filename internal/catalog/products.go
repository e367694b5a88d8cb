package catalog

import (
	"fmt"
	"strings"
)

const minProductLen = 3

var categories = []string{
	"iphone", "samsung", "phone", "jordan", "nike", "adidas", "sneaker", "shoe",
	"playstation", "ps5", "xbox", "nintendo", "macbook", "ipad", "airpods",
	"laptop", "computer", "tablet", "watch", "headphones", "camera", "tv", "monitor",
	"yeezy", "concert",
}

type InvalidProductError struct {
	Product     string
	Reason      string
	Suggestions []string
}

func (e *InvalidProductError) Error() string {
	return fmt.Sprintf("product %q is not available: %s", e.Product, e.Reason)
}

// Validate applies the minimum-length and category-keyword checks.
func Validate(product string) error {
	p := strings.ToLower(strings.TrimSpace(product))
	if len(p) < minProductLen {
		return &InvalidProductError{
			Product:     product,
			Reason:      "name too short",
			Suggestions: []string{"iPhone 15 Pro", "Air Jordan 4", "PlayStation 5", "MacBook Pro", "Samsung Galaxy S24"},
		}
	}
	for _, c := range categories {
		if strings.Contains(p, c) {
			return nil
		}
	}
	return &InvalidProductError{
		Product: product,
		Reason:  "unknown category",
		Suggestions: []string{
			"iPhone 15 Pro Max", "Samsung Galaxy S24 Ultra", "Air Jordan 4 Black Cat",
			"PlayStation 5 Console", "MacBook Pro M3", "Nike Air Max 90",
		},
	}
}

// Suggestions lists similar products for a query that found no sellers.
func Suggestions(product string) []string {
	p := strings.ToLower(product)
	switch {
	case strings.Contains(p, "phone"):
		return []string{"iPhone 15 Pro", "iPhone 15", "Samsung Galaxy S24", "Google Pixel 8"}
	case strings.Contains(p, "jordan") || strings.Contains(p, "sneaker"):
		return []string{"Air Jordan 4 Black Cat", "Air Jordan 1 Retro", "Nike Air Max 90", "Adidas Ultraboost"}
	case strings.Contains(p, "gaming") || strings.Contains(p, "console"):
		return []string{"PlayStation 5", "Xbox Series X", "Nintendo Switch OLED", "Steam Deck"}
	case strings.Contains(p, "laptop") || strings.Contains(p, "computer"):
		return []string{"MacBook Pro M3", "MacBook Air", "Dell XPS 13", "HP Spectre x360"}
	default:
		return []string{"iPhone 15 Pro", "Air Jordan 4", "PlayStation 5", "MacBook Pro", "Samsung Galaxy S24"}
	}
}
