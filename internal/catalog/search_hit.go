package catalog

import (
	"math"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"dealfinder/internal/domain"
)

// FromSearchHit turns a search result into a seller. Hits that name no
// business are dropped.
func FromSearchHit(h domain.SearchHit) (domain.Seller, bool) {
	name := strings.TrimSpace(h.Source)
	if name == "" {
		name = BusinessName(h.Title, h.Link)
	}
	if name == "" {
		return domain.Seller{}, false
	}
	source := "google_search"
	if h.Kind == "shopping" {
		source = "google_shopping"
	}
	if s, ok := Lookup(name); ok {
		s.Source = source
		return s, true
	}
	return domain.Seller{
		Name:     name,
		Website:  Hostname(h.Link),
		Delivery: Delivery(name),
		Source:   source,
	}, true
}

// BusinessName prefers a known retailer from the URL host, then the first
// host label, then the first two words of the title.
func BusinessName(title, link string) string {
	if host := Hostname(link); host != "" {
		if e, ok := find(host); ok {
			return e.Name
		}
		label := strings.SplitN(host, ".", 2)[0]
		if label != "" {
			return strings.ToUpper(label[:1]) + label[1:]
		}
	}
	cleaned := strings.TrimSpace(titleCut.ReplaceAllString(title, ""))
	words := strings.Fields(cleaned)
	if len(words) > 2 {
		words = words[:2]
	}
	return strings.Join(words, " ")
}

var titleCut = regexp.MustCompile(`[|•-].*`)

func Hostname(link string) string {
	u, err := url.Parse(strings.TrimSpace(link))
	if err != nil || u.Host == "" {
		return ""
	}
	return strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
}

var priceRe = regexp.MustCompile(`\$\s?([\d,]+(?:\.\d+)?)`)

// ParsePrice extracts the first dollar amount from text, rounded to whole
// dollars. ok is false when no amount is present.
func ParsePrice(text string) (int, bool) {
	m := priceRe.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}
	return dollars(m[1])
}

// FinalPrice extracts the last dollar amount from text, which in a call
// transcript is the closing offer.
func FinalPrice(text string) (int, bool) {
	all := priceRe.FindAllStringSubmatch(text, -1)
	if len(all) == 0 {
		return 0, false
	}
	return dollars(all[len(all)-1][1])
}

// MaxPrice is the largest amount accepted from text. Anything bigger is
// noise and reported as no price.
const MaxPrice = 10_000_000

func dollars(s string) (int, bool) {
	f, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
	if err != nil || f > MaxPrice {
		return 0, false
	}
	return int(math.Round(f)), true
}
