package catalog

import (
	"github.com/angelmondragon/craftbazaar/pkg/pagination"
	"github.com/angelmondragon/craftbazaar/pkg/types"
)

// DefaultRelatedLimit is how many related products a detail page shows.
const DefaultRelatedLimit = 4

// Page cuts one page out of query results.
func Page(items []types.Product, page, perPage int) ([]types.Product, pagination.Meta) {
	return pagination.Slice(items, pagination.Params{Page: page, PerPage: perPage})
}

// Related returns other valid products of the same category in catalog order.
func Related(products []types.Product, product types.Product, limit int) []types.Product {
	if limit <= 0 {
		limit = DefaultRelatedLimit
	}
	out := make([]types.Product, 0, limit)
	for _, p := range products {
		if len(out) == limit {
			break
		}
		if !p.Valid() || p.ID == product.ID || p.Category != product.Category {
			continue
		}
		out = append(out, p)
	}
	return out
}
