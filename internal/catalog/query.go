package catalog

import (
	"sort"
	"strings"

	"github.com/angelmondragon/craftbazaar/pkg/enums"
	"github.com/angelmondragon/craftbazaar/pkg/pricing"
	"github.com/angelmondragon/craftbazaar/pkg/types"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// NameLocale orders product names for the name sort.
var NameLocale = language.MustParse("en-IN")

// Query filters and orders products for a listing. The input is never
// modified and every returned product is a deep copy. Unknown filter
// tokens pass everything and unknown sort keys keep the input order.
func Query(products []types.Product, spec types.QuerySpec) []types.Product {
	term := strings.ToLower(strings.TrimSpace(spec.Term))

	out := make([]types.Product, 0, len(products))
	for _, p := range products {
		if !p.Valid() {
			continue
		}
		if term != "" && !matchesTerm(p, term) {
			continue
		}
		if !matchesFilter(p, spec.Filter) {
			continue
		}
		out = append(out, p.Clone())
	}

	sortProducts(out, spec.Sort)
	return out
}

// DiscountPercent is the single rounding rule for displayed discounts.
func DiscountPercent(price, original int64) int {
	return pricing.DiscountPercent(price, original)
}

func matchesTerm(p types.Product, term string) bool {
	return strings.Contains(strings.ToLower(p.Name), term) ||
		strings.Contains(strings.ToLower(p.Category.String()), term)
}

func matchesFilter(p types.Product, filter enums.CatalogFilter) bool {
	switch filter {
	case "", enums.CatalogFilterAll:
		return true
	case enums.CatalogFilterPremium:
		return p.IsPremium
	case enums.CatalogFilterNew:
		return p.IsNew
	case enums.CatalogFilterSale:
		return p.OriginalPrice != nil
	case enums.CatalogFilterInStock:
		return p.InStock
	}
	if category, ok := filter.Category(); ok {
		return p.Category == category
	}
	return true
}

func sortProducts(items []types.Product, key enums.CatalogSort) {
	switch key {
	case enums.CatalogSortPriceAsc:
		sort.SliceStable(items, func(i, j int) bool { return items[i].Price < items[j].Price })
	case enums.CatalogSortPriceDesc:
		sort.SliceStable(items, func(i, j int) bool { return items[i].Price > items[j].Price })
	case enums.CatalogSortRating:
		sort.SliceStable(items, func(i, j int) bool { return items[i].Rating > items[j].Rating })
	case enums.CatalogSortNewest:
		// new-flag partition; there is no creation timestamp to sort on
		sort.SliceStable(items, func(i, j int) bool { return items[i].IsNew && !items[j].IsNew })
	case enums.CatalogSortName:
		// collators keep scratch buffers, so each call gets its own
		c := collate.New(NameLocale)
		sort.SliceStable(items, func(i, j int) bool {
			return c.CompareString(items[i].Name, items[j].Name) < 0
		})
	}
}
