package types

import (
	"maps"
	"slices"

	"github.com/angelmondragon/craftbazaar/pkg/enums"
	"github.com/angelmondragon/craftbazaar/pkg/pricing"
)

// DefaultLowStockThreshold applies when a product carries a stock count but no threshold.
const DefaultLowStockThreshold = 5

// Product is a catalog entry as served by the storefront API.
type Product struct {
	ID                string                `json:"id" yaml:"id"`
	Name              string                `json:"name" yaml:"name"`
	Price             int64                 `json:"price" yaml:"price"`
	OriginalPrice     *int64                `json:"originalPrice,omitempty" yaml:"originalPrice,omitempty"`
	Image             string                `json:"image" yaml:"image"`
	Images            []string              `json:"images,omitempty" yaml:"images,omitempty"`
	Category          enums.ProductCategory `json:"category" yaml:"category"`
	Rating            float64               `json:"rating" yaml:"rating"`
	Reviews           int                   `json:"reviews" yaml:"reviews"`
	IsPremium         bool                  `json:"isPremium" yaml:"isPremium"`
	IsNew             bool                  `json:"isNew" yaml:"isNew"`
	InStock           bool                  `json:"inStock" yaml:"inStock"`
	StockCount        *int                  `json:"stockCount,omitempty" yaml:"stockCount,omitempty"`
	LowStockThreshold *int                  `json:"lowStockThreshold,omitempty" yaml:"lowStockThreshold,omitempty"`
	Description       string                `json:"description,omitempty" yaml:"description,omitempty"`
	Features          []string              `json:"features,omitempty" yaml:"features,omitempty"`
	Specifications    map[string]string     `json:"specifications,omitempty" yaml:"specifications,omitempty"`
}

// Clone returns a copy that shares no memory with p.
func (p Product) Clone() Product {
	p.OriginalPrice = cloneInt64(p.OriginalPrice)
	p.StockCount = cloneInt(p.StockCount)
	p.LowStockThreshold = cloneInt(p.LowStockThreshold)
	p.Images = slices.Clone(p.Images)
	p.Features = slices.Clone(p.Features)
	p.Specifications = maps.Clone(p.Specifications)
	return p
}

func cloneInt64(v *int64) *int64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func cloneInt(v *int) *int {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

// Valid reports whether the record carries the fields every listing relies on.
func (p Product) Valid() bool {
	return p.ID != "" && p.Image != ""
}

// HasDiscount reports whether an original price above the current price exists.
func (p Product) HasDiscount() bool {
	return p.OriginalPrice != nil && *p.OriginalPrice > p.Price
}

// DiscountPercent returns the rounded discount shown on listing cards.
func (p Product) DiscountPercent() int {
	if p.OriginalPrice == nil {
		return 0
	}
	return pricing.DiscountPercent(p.Price, *p.OriginalPrice)
}

// IsLowStock reports whether a tracked stock count is at or below its threshold.
func (p Product) IsLowStock() bool {
	if !p.InStock || p.StockCount == nil {
		return false
	}
	threshold := DefaultLowStockThreshold
	if p.LowStockThreshold != nil {
		threshold = *p.LowStockThreshold
	}
	return *p.StockCount <= threshold
}

// ProductFilter narrows a remote catalog fetch.
type ProductFilter struct {
	Category enums.ProductCategory
	Limit    int
}
