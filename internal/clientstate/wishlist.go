package clientstate

import (
	"context"
	"fmt"
	"strings"

	pkgerrors "github.com/angelmondragon/craftbazaar/pkg/errors"
	"github.com/angelmondragon/craftbazaar/pkg/types"
)

// AddToWishlist saves a product. Products already saved are left alone and
// no remote call is made for them.
func (s *Store) AddToWishlist(ctx context.Context, entry types.WishlistEntry) error {
	entry.ProductID = strings.TrimSpace(entry.ProductID)
	if entry.ProductID == "" {
		return s.fail(ctx, "add to wishlist", pkgerrors.New(pkgerrors.CodeValidation, "product id is required"))
	}
	if s.IsInWishlist(entry.ProductID) {
		return nil
	}
	ctx = s.logg.WithProductID(ctx, entry.ProductID)

	gen, remote, err := s.authenticated(ctx)
	if err != nil {
		return s.fail(ctx, "add to wishlist", err)
	}
	if remote {
		err := s.remoteWishlistWrite(ctx, gen, "wishlist:add:"+entry.ProductID, func(ctx context.Context) error {
			return s.api.AddToWishlist(ctx, entry.ProductID)
		})
		if err != nil {
			return s.fail(ctx, "add to wishlist", err)
		}
	} else {
		err := s.guestWishlistWrite(ctx, func(list []types.WishlistEntry) []types.WishlistEntry {
			return append(list, entry)
		})
		if err != nil {
			return s.fail(ctx, "save your wishlist", err)
		}
	}
	s.notify(ctx, LevelSuccess, fmt.Sprintf("%s added to wishlist", displayName(entry.Name)))
	return nil
}

// RemoveFromWishlist drops a product. Unknown ids are ignored.
func (s *Store) RemoveFromWishlist(ctx context.Context, productID string) error {
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return nil
	}
	ctx = s.logg.WithProductID(ctx, productID)

	gen, remote, err := s.authenticated(ctx)
	if err != nil {
		return s.fail(ctx, "remove from wishlist", err)
	}
	if remote {
		err := s.remoteWishlistWrite(ctx, gen, "wishlist:remove:"+productID, func(ctx context.Context) error {
			return s.api.RemoveFromWishlist(ctx, productID)
		})
		if err != nil {
			return s.fail(ctx, "remove from wishlist", err)
		}
	} else {
		if !s.IsInWishlist(productID) {
			return nil
		}
		err := s.guestWishlistWrite(ctx, func(list []types.WishlistEntry) []types.WishlistEntry {
			out := list[:0]
			for _, e := range list {
				if e.ProductID != productID {
					out = append(out, e)
				}
			}
			return out
		})
		if err != nil {
			return s.fail(ctx, "save your wishlist", err)
		}
	}
	s.notify(ctx, LevelInfo, "Removed from wishlist")
	return nil
}

func (s *Store) remoteWishlistWrite(ctx context.Context, gen uint64, key string, write func(context.Context) error) error {
	_, err, shared := s.inflight.Do(key, func() (any, error) {
		ctx := context.WithoutCancel(ctx)
		s.wishlistWrites.Lock()
		defer s.wishlistWrites.Unlock()

		if err := write(ctx); err != nil {
			return nil, err
		}
		entries, err := s.policy.AfterWishlistWrite(ctx, s.api)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeOf(err), err, "reload wishlist")
		}
		s.replaceWishlist(ctx, gen, entries)
		return nil, nil
	})
	if shared {
		s.logg.Debug(s.logg.WithSessionGeneration(s.logg.WithField(ctx, "inflight_key", key), gen), "joined in-flight wishlist write")
	}
	if err != nil {
		s.handleRemoteAuthFailure(ctx, gen, err)
	}
	return err
}

func (s *Store) guestWishlistWrite(ctx context.Context, mutate func([]types.WishlistEntry) []types.WishlistEntry) error {
	s.mu.Lock()
	s.setWishlistLocked(mutate(types.CloneWishlist(s.wishlist)))
	snapshot := types.CloneWishlist(s.wishlist)
	s.mu.Unlock()

	return s.local.SaveWishlist(ctx, snapshot)
}
