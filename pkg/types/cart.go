package types

import (
	"github.com/angelmondragon/craftbazaar/pkg/enums"
	"github.com/angelmondragon/craftbazaar/pkg/pricing"
	"github.com/shopspring/decimal"
)

// CartLine is one product in the cart together with the display snapshot
// captured when it was added.
type CartLine struct {
	ProductID     string                `json:"productId"`
	Quantity      int                   `json:"quantity"`
	Name          string                `json:"name"`
	Price         int64                 `json:"price"`
	Image         string                `json:"image"`
	Category      enums.ProductCategory `json:"category,omitempty"`
	OriginalPrice *int64                `json:"originalPrice,omitempty"`
}

// NewCartLine snapshots the product display fields for a cart line.
func NewCartLine(p Product, quantity int) CartLine {
	return CartLine{
		ProductID:     p.ID,
		Quantity:      quantity,
		Name:          p.Name,
		Price:         p.Price,
		Image:         p.Image,
		Category:      p.Category,
		OriginalPrice: cloneInt64(p.OriginalPrice),
	}
}

// LineTotal is price times quantity.
func (l CartLine) LineTotal() decimal.Decimal {
	return pricing.LineTotal(l.Price, l.Quantity)
}

// WishlistEntry is a saved product with its display snapshot.
type WishlistEntry struct {
	ProductID     string                `json:"productId"`
	Name          string                `json:"name"`
	Price         int64                 `json:"price"`
	Image         string                `json:"image"`
	Category      enums.ProductCategory `json:"category,omitempty"`
	OriginalPrice *int64                `json:"originalPrice,omitempty"`
}

// NewWishlistEntry snapshots the product display fields for a wishlist entry.
func NewWishlistEntry(p Product) WishlistEntry {
	return WishlistEntry{
		ProductID:     p.ID,
		Name:          p.Name,
		Price:         p.Price,
		Image:         p.Image,
		Category:      p.Category,
		OriginalPrice: cloneInt64(p.OriginalPrice),
	}
}

// CloneCart returns a deep copy of the provided lines.
func CloneCart(lines []CartLine) []CartLine {
	out := make([]CartLine, len(lines))
	for i, line := range lines {
		line.OriginalPrice = cloneInt64(line.OriginalPrice)
		out[i] = line
	}
	return out
}

// CloneWishlist returns a deep copy of the provided entries.
func CloneWishlist(entries []WishlistEntry) []WishlistEntry {
	out := make([]WishlistEntry, len(entries))
	for i, entry := range entries {
		entry.OriginalPrice = cloneInt64(entry.OriginalPrice)
		out[i] = entry
	}
	return out
}
