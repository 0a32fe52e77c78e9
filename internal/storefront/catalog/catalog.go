// Package catalog narrows the full product list on the client. Filters are
// ANDed and the source order is preserved.
package catalog

import (
	"strings"

	"github.com/Skotchmaster/pharmacy_shop/internal/apperr"
	"github.com/Skotchmaster/pharmacy_shop/internal/models"
)

const CategoryAll = "all"

type PriceBucket string

const (
	PriceAll     PriceBucket = "all"
	PriceUnder50 PriceBucket = "under50"
	Price50To100 PriceBucket = "50to100"
	PriceOver100 PriceBucket = "over100"
)

func ParsePriceBucket(s string) (PriceBucket, error) {
	switch b := PriceBucket(strings.ToLower(strings.TrimSpace(s))); b {
	case "":
		return PriceAll, nil
	case PriceAll, PriceUnder50, Price50To100, PriceOver100:
		return b, nil
	default:
		return "", apperr.Newf(apperr.ErrValidation, "Unknown price range %q (want all, under50, 50to100 or over100)", s)
	}
}

// Contains reports whether price falls in the bucket. 50 and 100 belong to 50to100.
func (b PriceBucket) Contains(price float64) bool {
	switch b {
	case PriceUnder50:
		return price < 50
	case Price50To100:
		return price >= 50 && price <= 100
	case PriceOver100:
		return price > 100
	default:
		return true
	}
}

type Filter struct {
	Search   string
	Category string
	Price    PriceBucket
}

// Matches case-insensitively against brand, generic or type.
func Matches(p models.Product, term string) bool {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return true
	}
	return strings.Contains(strings.ToLower(p.Brand), term) ||
		strings.Contains(strings.ToLower(p.Generic), term) ||
		strings.Contains(strings.ToLower(p.Type), term)
}

func InCategory(p models.Product, category string) bool {
	return category == "" || category == CategoryAll || p.Type == category
}

func (f Filter) Match(p models.Product) bool {
	return Matches(p, f.Search) && InCategory(p, f.Category) && f.Price.Contains(p.Price)
}

func (f Filter) Apply(products []models.Product) []models.Product {
	out := make([]models.Product, 0, len(products))
	for _, p := range products {
		if f.Match(p) {
			out = append(out, p)
		}
	}
	return out
}

func Search(products []models.Product, term string) []models.Product {
	return Filter{Search: term}.Apply(products)
}

func FilterByCategory(products []models.Product, category string) []models.Product {
	return Filter{Category: category}.Apply(products)
}

func FilterByPrice(products []models.Product, bucket PriceBucket) []models.Product {
	return Filter{Price: bucket}.Apply(products)
}

// Categories lists "all" followed by each product type in first-seen order.
func Categories(products []models.Product) []string {
	seen := make(map[string]struct{}, len(products))
	out := []string{CategoryAll}
	for _, p := range products {
		if _, ok := seen[p.Type]; ok || p.Type == "" {
			continue
		}
		seen[p.Type] = struct{}{}
		out = append(out, p.Type)
	}
	return out
}
