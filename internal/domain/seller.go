package domain

import "time"

type Seller struct {
	Name     string  `json:"name" validate:"required"`
	Website  string  `json:"website"`
	Phone    string  `json:"phone"`
	Delivery string  `json:"delivery"`
	Rating   float64 `json:"rating,omitempty"`
	Reviews  int     `json:"reviews,omitempty"`
	Source   string  `json:"source,omitempty"` // enhanced_database|google_search|google_shopping
}

// PriceQuote is recomputed per request and never stored.
type PriceQuote struct {
	Seller          string `json:"seller"`
	BasePrice       int    `json:"basePrice"`
	QuotedPrice     int    `json:"quotedPrice"`
	NegotiatedPrice int    `json:"negotiatedPrice"`
}

// Offer is a seller as returned by a search, priced for one product.
type Offer struct {
	Seller
	ProductURL    string    `json:"productUrl"`
	Price         int       `json:"price" validate:"gte=0"`
	OriginalPrice int       `json:"originalPrice"`
	InStock       bool      `json:"inStock"`
	LastUpdated   time.Time `json:"lastUpdated"`
}

type Deal struct {
	SellerName     string `json:"sellerName" validate:"required"`
	Phone          string `json:"phone,omitempty"`
	Website        string `json:"website,omitempty"`
	OriginalPrice  int    `json:"originalPrice" validate:"gte=0"`
	FinalPrice     int    `json:"finalPrice" validate:"gte=0"`
	Delivery       string `json:"delivery,omitempty"`
	SavingsPercent int    `json:"savingsPercent"`
}

func (d Deal) Savings() int { return d.OriginalPrice - d.FinalPrice }

type SearchHit struct {
	Title   string `json:"title"`
	Link    string `json:"link"`
	Snippet string `json:"snippet,omitempty"`
	Price   string `json:"price,omitempty"`
	Source  string `json:"source,omitempty"`
	Kind    string `json:"kind"` // organic|shopping
}

type SearchResult struct {
	Product   string    `json:"product"`
	Query     string    `json:"searchQuery"`
	Offers    []Offer   `json:"sellers"`
	Demo      bool      `json:"demo"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}
