package enums

import "fmt"

// ProductCategory represents the fixed craft categories the catalog is organised by.
type ProductCategory string

const (
	ProductCategoryPottery   ProductCategory = "pottery"
	ProductCategoryTextiles  ProductCategory = "textiles"
	ProductCategoryWoodcraft ProductCategory = "woodcraft"
	ProductCategoryJewelry   ProductCategory = "jewelry"
	ProductCategoryHomeDecor ProductCategory = "home-decor"
	ProductCategoryPaintings ProductCategory = "paintings"
)

var validProductCategories = []ProductCategory{
	ProductCategoryPottery,
	ProductCategoryTextiles,
	ProductCategoryWoodcraft,
	ProductCategoryJewelry,
	ProductCategoryHomeDecor,
	ProductCategoryPaintings,
}

// ProductCategories returns the known categories in display order.
func ProductCategories() []ProductCategory {
	return append([]ProductCategory(nil), validProductCategories...)
}

// String implements fmt.Stringer.
func (c ProductCategory) String() string {
	return string(c)
}

// IsValid reports whether the value is a known ProductCategory.
func (c ProductCategory) IsValid() bool {
	for _, candidate := range validProductCategories {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseProductCategory converts raw input into a ProductCategory.
func ParseProductCategory(value string) (ProductCategory, error) {
	for _, candidate := range validProductCategories {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid product category %q", value)
}
