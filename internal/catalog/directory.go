// Package catalog is the static seller directory plus the product
// validation used before any search runs.
package catalog

import (
	"net/url"
	"regexp"
	"strings"

	"dealfinder/internal/domain"
)

type entry struct {
	domain.Seller
	aliases []string // lowercase substrings that identify this seller
	search  string   // product search URL prefix; the query is appended escaped
}

var directory = []entry{
	{domain.Seller{Name: "Apple Store", Website: "apple.com", Phone: "+1-800-275-2273", Delivery: "1-2 days", Rating: 4.8, Reviews: 50000},
		[]string{"apple"}, "https://apple.com/search/"},
	{domain.Seller{Name: "Amazon", Website: "amazon.com", Phone: "+1-888-280-4331", Delivery: "1-2 days", Rating: 4.6, Reviews: 125000},
		[]string{"amazon"}, "https://amazon.com/s?k="},
	{domain.Seller{Name: "Best Buy", Website: "bestbuy.com", Phone: "+1-888-237-8289", Delivery: "2-3 days", Rating: 4.4, Reviews: 75000},
		[]string{"best buy", "bestbuy"}, "https://bestbuy.com/site/searchpage.jsp?st="},
	{domain.Seller{Name: "Walmart", Website: "walmart.com", Phone: "+1-800-925-6278", Delivery: "2-4 days", Rating: 4.2, Reviews: 110000},
		[]string{"walmart"}, "https://walmart.com/search?q="},
	{domain.Seller{Name: "Target", Website: "target.com", Phone: "+1-800-591-3869", Delivery: "2-3 days", Rating: 4.5, Reviews: 92000},
		[]string{"target"}, "https://target.com/s?searchTerm="},
	{domain.Seller{Name: "Costco", Website: "costco.com", Phone: "+1-800-774-2678", Delivery: "3-5 days", Rating: 4.7, Reviews: 65000},
		[]string{"costco"}, "https://costco.com/CatalogSearch?keyword="},
	{domain.Seller{Name: "Verizon", Website: "verizon.com", Phone: "+1-800-922-0204", Delivery: "1-3 days", Rating: 4.1, Reviews: 40000},
		[]string{"verizon"}, "https://verizon.com/search/?q="},
	{domain.Seller{Name: "AT&T", Website: "att.com", Phone: "+1-800-331-0500", Delivery: "1-3 days", Rating: 4.0, Reviews: 38000},
		[]string{"at&t", "att.com"}, "https://att.com/search/?q="},
	{domain.Seller{Name: "T-Mobile", Website: "t-mobile.com", Phone: "+1-877-746-0909", Delivery: "1-2 days", Rating: 4.2, Reviews: 36000},
		[]string{"t-mobile"}, "https://t-mobile.com/search?q="},
	{domain.Seller{Name: "StockX", Website: "stockx.com", Phone: "+1-313-800-7625", Delivery: "7-10 days", Rating: 4.3, Reviews: 80000},
		[]string{"stockx"}, "https://stockx.com/search?s="},
	{domain.Seller{Name: "GOAT", Website: "goat.com", Phone: "+1-855-466-8822", Delivery: "5-7 days", Rating: 4.4, Reviews: 60000},
		[]string{"goat"}, "https://goat.com/search?query="},
	{domain.Seller{Name: "Flight Club", Website: "flightclub.com", Phone: "+1-888-937-3624", Delivery: "3-5 days", Rating: 4.5, Reviews: 12000},
		[]string{"flight club", "flightclub"}, "https://flightclub.com/catalogsearch/result?q="},
	{domain.Seller{Name: "Stadium Goods", Website: "stadiumgoods.com", Phone: "+1-646-559-4635", Delivery: "2-3 days", Rating: 4.5, Reviews: 9000},
		[]string{"stadium goods", "stadiumgoods"}, "https://stadiumgoods.com/search?q="},
	{domain.Seller{Name: "eBay", Website: "ebay.com", Phone: "+1-866-540-3229", Delivery: "3-7 days", Rating: 4.1, Reviews: 200000},
		[]string{"ebay"}, "https://ebay.com/sch/i.html?_nkw="},
	{domain.Seller{Name: "Newegg", Website: "newegg.com", Phone: "+1-800-390-1119", Delivery: "2-5 days", Rating: 4.3, Reviews: 30000},
		[]string{"newegg"}, "https://newegg.com/p/pl?d="},
	{domain.Seller{Name: "B&H Photo", Website: "bhphotovideo.com", Phone: "+1-800-606-6969", Delivery: "2-4 days", Rating: 4.7, Reviews: 25000},
		[]string{"b&h", "bhphotovideo"}, "https://bhphotovideo.com/c/search?q="},
	{domain.Seller{Name: "Sam's Club", Website: "samsclub.com", Phone: "+1-888-746-7726", Delivery: "3-5 days", Rating: 4.4, Reviews: 20000},
		[]string{"sam's club", "samsclub"}, "https://samsclub.com/s/"},
}

const DefaultDelivery = "3-5 days"

func find(name string) (entry, bool) {
	n := strings.ToLower(strings.TrimSpace(name))
	if n == "" {
		return entry{}, false
	}
	for _, e := range directory {
		for _, a := range e.aliases {
			if strings.Contains(n, a) {
				return e, true
			}
		}
	}
	return entry{}, false
}

// Lookup returns the directory record for a seller name (substring match).
func Lookup(name string) (domain.Seller, bool) {
	e, ok := find(name)
	if !ok {
		return domain.Seller{}, false
	}
	s := e.Seller
	s.Source = "enhanced_database"
	return s, true
}

// Delivery estimates delivery time for any seller name.
func Delivery(name string) string {
	if e, ok := find(name); ok {
		return e.Delivery
	}
	return DefaultDelivery
}

// ProductURL builds a stable product search link for seller.
func ProductURL(s domain.Seller, product string) string {
	q := url.QueryEscape(product)
	if e, ok := find(s.Name); ok {
		if strings.HasSuffix(e.search, "/") {
			return e.search + url.PathEscape(product)
		}
		return e.search + q
	}
	site := s.Website
	if site == "" {
		site = slugRe.ReplaceAllString(strings.ToLower(s.Name), "") + ".com"
	}
	return "https://" + site + "/search?q=" + q
}

var slugRe = regexp.MustCompile(`[^a-z0-9]+`)

var (
	phoneSellers   = []string{"Apple Store", "Amazon", "Best Buy", "Verizon", "T-Mobile"}
	sneakerSellers = []string{"StockX", "GOAT", "Flight Club", "Stadium Goods", "eBay"}
	generalSellers = []string{"Amazon", "Best Buy", "Target", "Walmart", "Costco"}
)

// SellersFor returns the curated fallback sellers for a product category.
func SellersFor(product string) []domain.Seller {
	p := strings.ToLower(product)
	names := generalSellers
	switch {
	case strings.Contains(p, "iphone") || strings.Contains(p, "phone") || strings.Contains(p, "galaxy"):
		names = phoneSellers
	case strings.Contains(p, "jordan") || strings.Contains(p, "sneaker") ||
		strings.Contains(p, "yeezy") || strings.Contains(p, "air max"):
		names = sneakerSellers
	}
	out := make([]domain.Seller, 0, len(names))
	for _, n := range names {
		if s, ok := Lookup(n); ok {
			out = append(out, s)
		}
	}
	return out
}
