package types

import "github.com/angelmondragon/craftbazaar/pkg/enums"

// QuerySpec describes one listing view: free text, filter token and ordering.
type QuerySpec struct {
	Term   string
	Filter enums.CatalogFilter
	Sort   enums.CatalogSort
}
