// Package catalog filters an already-fetched product list for the storefront
// side navigation and computes its facet counts. Everything here is pure.
package catalog

import (
	"cmp"
	"slices"
	"strings"

	"github.com/ikkim/shopadmin-backend/internal/app/model"
	"github.com/shopspring/decimal"
)

type SortOrder string

const (
	SortNewest    SortOrder = "newest"
	SortPriceAsc  SortOrder = "price_asc"
	SortPriceDesc SortOrder = "price_desc"
	SortName      SortOrder = "name"
)

// Filter is the set of active storefront filters. Zero values mean "any".
// Values within one dimension are OR-ed; dimensions are AND-ed.
type Filter struct {
	// TaxonomyNodeIDs is the selected category expanded to its descendants.
	TaxonomyNodeIDs []uint
	Brands          []string
	MinPrice        *decimal.Decimal
	MaxPrice        *decimal.Decimal
	InStockOnly     bool
	Attributes      map[string][]string
	Search          string
	Sort            SortOrder
}

// dimension identifies one facet so it can be left out when counting.
type dimension int

const (
	dimNone dimension = iota
	dimCategory
	dimBrand
	dimAttribute
)

// Apply returns the products matching f, sorted by f.Sort. The input slice
// is not modified.
func Apply(products []model.Product, f Filter) []model.Product {
	out := make([]model.Product, 0, len(products))
	for _, p := range products {
		if matches(&p, &f, dimNone, "") {
			out = append(out, p)
		}
	}
	sortProducts(out, f.Sort)
	return out
}

func matches(p *model.Product, f *Filter, skip dimension, skipAttr string) bool {
	if !p.Active {
		return false
	}
	if skip != dimCategory && len(f.TaxonomyNodeIDs) > 0 {
		if p.TaxonomyNodeID == nil || !slices.Contains(f.TaxonomyNodeIDs, *p.TaxonomyNodeID) {
			return false
		}
	}
	if skip != dimBrand && len(f.Brands) > 0 && !containsFold(f.Brands, p.Brand) {
		return false
	}
	if f.MinPrice != nil && p.Price.LessThan(*f.MinPrice) {
		return false
	}
	if f.MaxPrice != nil && p.Price.GreaterThan(*f.MaxPrice) {
		return false
	}
	if f.InStockOnly && p.StockQuantity <= 0 {
		return false
	}
	attrs := p.Attributes.Data()
	for name, wanted := range f.Attributes {
		if len(wanted) == 0 || (skip == dimAttribute && name == skipAttr) {
			continue
		}
		if !containsFold(wanted, attrs[name]) {
			return false
		}
	}
	if q := strings.TrimSpace(f.Search); q != "" {
		q = strings.ToLower(q)
		if !strings.Contains(strings.ToLower(p.Name), q) &&
			!strings.Contains(strings.ToLower(p.Description), q) &&
			!strings.Contains(strings.ToLower(p.Brand), q) {
			return false
		}
	}
	return true
}

func containsFold(values []string, v string) bool {
	if v == "" {
		return false
	}
	for _, w := range values {
		if strings.EqualFold(strings.TrimSpace(w), v) {
			return true
		}
	}
	return false
}

func sortProducts(products []model.Product, order SortOrder) {
	switch order {
	case SortPriceAsc:
		slices.SortStableFunc(products, func(a, b model.Product) int {
			return cmp.Or(a.Price.Cmp(b.Price), cmp.Compare(a.ID, b.ID))
		})
	case SortPriceDesc:
		slices.SortStableFunc(products, func(a, b model.Product) int {
			return cmp.Or(b.Price.Cmp(a.Price), cmp.Compare(a.ID, b.ID))
		})
	case SortName:
		slices.SortStableFunc(products, func(a, b model.Product) int {
			return cmp.Or(cmp.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name)), cmp.Compare(a.ID, b.ID))
		})
	default:
		slices.SortStableFunc(products, func(a, b model.Product) int {
			return cmp.Or(b.CreatedAt.Compare(a.CreatedAt), cmp.Compare(b.ID, a.ID))
		})
	}
}
