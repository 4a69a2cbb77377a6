package clientstate

import (
	"context"

	"github.com/angelmondragon/craftbazaar/pkg/types"
)

// Reader is the read side of the remote API a sync policy may use.
type Reader interface {
	GetCart(ctx context.Context) ([]types.CartLine, error)
	GetWishlist(ctx context.Context) ([]types.WishlistEntry, error)
}

// SyncPolicy decides what in-memory state follows a successful remote write.
type SyncPolicy interface {
	AfterCartWrite(ctx context.Context, api Reader) ([]types.CartLine, error)
	AfterWishlistWrite(ctx context.Context, api Reader) ([]types.WishlistEntry, error)
}

// WriteThenReload discards local state after every remote write and reloads
// the authoritative collection from the server.
type WriteThenReload struct{}

func (WriteThenReload) AfterCartWrite(ctx context.Context, api Reader) ([]types.CartLine, error) {
	return api.GetCart(ctx)
}

func (WriteThenReload) AfterWishlistWrite(ctx context.Context, api Reader) ([]types.WishlistEntry, error) {
	return api.GetWishlist(ctx)
}
