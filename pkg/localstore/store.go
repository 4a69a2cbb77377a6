package localstore

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get when no value is stored under the key.
var ErrNotFound = errors.New("localstore: key not found")

// Keys persisted for a guest shopper.
const (
	KeyCart               = "cart"
	KeyWishlist           = "wishlist"
	KeyAdminAuthenticated = "adminAuthenticated"
	KeyContactInfo        = "contactInfo"
	KeyRecentSearches     = "recentSearches"
)

// GuestKeys lists every key a guest session may write.
func GuestKeys() []string {
	return []string{KeyCart, KeyWishlist, KeyAdminAuthenticated, KeyContactInfo, KeyRecentSearches}
}

// Store is a string key-value store that survives restarts of the client.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Del(ctx context.Context, keys ...string) error
}
