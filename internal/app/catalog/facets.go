package catalog

import (
	"cmp"
	"slices"

	"github.com/ikkim/shopadmin-backend/internal/app/model"
	"github.com/shopspring/decimal"
)

// FacetValue is one selectable value with the number of products it would yield.
type FacetValue struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// PriceRange spans the prices of the matching products.
type PriceRange struct {
	Min decimal.Decimal `json:"min"`
	Max decimal.Decimal `json:"max"`
}

// Facets are the side navigation counts. Each dimension is counted against
// the products matching every other active filter, so selecting a brand
// does not hide the other brands.
type Facets struct {
	Categories map[uint]int            `json:"categories"`
	Brands     []FacetValue            `json:"brands"`
	Attributes map[string][]FacetValue `json:"attributes"`
	Price      *PriceRange             `json:"price,omitempty"`
	Total      int                     `json:"total"`
}

// ComputeFacets counts facet values for products under f.
func ComputeFacets(products []model.Product, f Filter) Facets {
	facets := Facets{
		Categories: make(map[uint]int),
		Attributes: make(map[string][]FacetValue),
	}

	brands := make(map[string]int)
	attrCounts := make(map[string]map[string]int)

	for i := range products {
		p := &products[i]

		if matches(p, &f, dimNone, "") {
			facets.Total++
			if facets.Price == nil {
				facets.Price = &PriceRange{Min: p.Price, Max: p.Price}
			} else {
				facets.Price.Min = decimal.Min(facets.Price.Min, p.Price)
				facets.Price.Max = decimal.Max(facets.Price.Max, p.Price)
			}
		}
		if p.TaxonomyNodeID != nil && matches(p, &f, dimCategory, "") {
			facets.Categories[*p.TaxonomyNodeID]++
		}
		if p.Brand != "" && matches(p, &f, dimBrand, "") {
			brands[p.Brand]++
		}
		for name, value := range p.Attributes.Data() {
			if value == "" || !matches(p, &f, dimAttribute, name) {
				continue
			}
			if attrCounts[name] == nil {
				attrCounts[name] = make(map[string]int)
			}
			attrCounts[name][value]++
		}
	}

	facets.Brands = sortedValues(brands)
	for name, counts := range attrCounts {
		facets.Attributes[name] = sortedValues(counts)
	}
	return facets
}

func sortedValues(counts map[string]int) []FacetValue {
	out := make([]FacetValue, 0, len(counts))
	for v, n := range counts {
		out = append(out, FacetValue{Value: v, Count: n})
	}
	slices.SortFunc(out, func(a, b FacetValue) int {
		return cmp.Or(cmp.Compare(b.Count, a.Count), cmp.Compare(a.Value, b.Value))
	})
	return out
}
