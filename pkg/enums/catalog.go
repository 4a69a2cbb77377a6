package enums

import (
	"fmt"
	"strings"
)

// CatalogFilter is the listing filter token: "all", a category, or a product flag.
type CatalogFilter string

const (
	CatalogFilterAll     CatalogFilter = "all"
	CatalogFilterPremium CatalogFilter = "premium"
	CatalogFilterNew     CatalogFilter = "new"
	CatalogFilterSale    CatalogFilter = "sale"
	CatalogFilterInStock CatalogFilter = "in-stock"
)

var flagCatalogFilters = []CatalogFilter{
	CatalogFilterAll,
	CatalogFilterPremium,
	CatalogFilterNew,
	CatalogFilterSale,
	CatalogFilterInStock,
}

// CategoryFilter builds the filter token restricting to a single category.
func CategoryFilter(category ProductCategory) CatalogFilter {
	return CatalogFilter(category)
}

// String implements fmt.Stringer.
func (f CatalogFilter) String() string {
	return string(f)
}

// Category returns the category the token restricts to, if it is a category token.
func (f CatalogFilter) Category() (ProductCategory, bool) {
	category := ProductCategory(f)
	return category, category.IsValid()
}

// IsValid reports whether the value is a known CatalogFilter.
func (f CatalogFilter) IsValid() bool {
	for _, candidate := range flagCatalogFilters {
		if candidate == f {
			return true
		}
	}
	_, ok := f.Category()
	return ok
}

// ParseCatalogFilter converts raw input into a CatalogFilter. Empty input means "all".
func ParseCatalogFilter(value string) (CatalogFilter, error) {
	normalized := CatalogFilter(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return CatalogFilterAll, nil
	}
	if normalized.IsValid() {
		return normalized, nil
	}
	return "", fmt.Errorf("invalid catalog filter %q", value)
}

// CatalogSort selects the ordering applied to a listing.
type CatalogSort string

const (
	CatalogSortFeatured  CatalogSort = "featured"
	CatalogSortPriceAsc  CatalogSort = "price-asc"
	CatalogSortPriceDesc CatalogSort = "price-desc"
	CatalogSortRating    CatalogSort = "rating"
	CatalogSortNewest    CatalogSort = "newest"
	CatalogSortName      CatalogSort = "name"
)

var validCatalogSorts = []CatalogSort{
	CatalogSortFeatured,
	CatalogSortPriceAsc,
	CatalogSortPriceDesc,
	CatalogSortRating,
	CatalogSortNewest,
	CatalogSortName,
}

// String implements fmt.Stringer.
func (s CatalogSort) String() string {
	return string(s)
}

// IsValid reports whether the value is a known CatalogSort.
func (s CatalogSort) IsValid() bool {
	for _, candidate := range validCatalogSorts {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseCatalogSort converts raw input into a CatalogSort. Empty input means "featured".
func ParseCatalogSort(value string) (CatalogSort, error) {
	normalized := CatalogSort(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return CatalogSortFeatured, nil
	}
	if normalized.IsValid() {
		return normalized, nil
	}
	return "", fmt.Errorf("invalid catalog sort %q", value)
}
