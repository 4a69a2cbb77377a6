package clientstate

import (
	"context"
	"fmt"
	"strings"

	pkgerrors "github.com/angelmondragon/craftbazaar/pkg/errors"
	"github.com/angelmondragon/craftbazaar/pkg/types"
)

// AddToCart adds line.Quantity of a product, merging into an existing line.
func (s *Store) AddToCart(ctx context.Context, line types.CartLine) error {
	line.ProductID = strings.TrimSpace(line.ProductID)
	if line.ProductID == "" {
		return s.fail(ctx, "add to cart", pkgerrors.New(pkgerrors.CodeValidation, "product id is required"))
	}
	if line.Quantity <= 0 {
		return s.fail(ctx, "add to cart", pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive"))
	}
	ctx = s.logg.WithProductID(ctx, line.ProductID)

	gen, remote, err := s.authenticated(ctx)
	if err != nil {
		return s.fail(ctx, "add to cart", err)
	}
	if remote {
		key := fmt.Sprintf("cart:add:%s:%d", line.ProductID, line.Quantity)
		err := s.remoteCartWrite(ctx, gen, key, func(ctx context.Context) error {
			return s.api.AddToCart(ctx, line.ProductID, line.Quantity)
		})
		if err != nil {
			return s.fail(ctx, "add to cart", err)
		}
		s.notify(ctx, LevelSuccess, fmt.Sprintf("%s added to cart", displayName(line.Name)))
		return nil
	}

	err = s.guestCartWrite(ctx, func(cart []types.CartLine) []types.CartLine {
		for i := range cart {
			if cart[i].ProductID == line.ProductID {
				cart[i].Quantity += line.Quantity
				return cart
			}
		}
		return append(cart, line)
	})
	if err != nil {
		return s.fail(ctx, "save your cart", err)
	}
	s.notify(ctx, LevelSuccess, fmt.Sprintf("%s added to cart", displayName(line.Name)))
	return nil
}

// UpdateCartQuantity sets the quantity of a line; quantity <= 0 removes it.
// Unknown product ids are ignored. Signed in, the server decides what is
// unknown.
func (s *Store) UpdateCartQuantity(ctx context.Context, productID string, quantity int) error {
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return s.fail(ctx, "update cart", pkgerrors.New(pkgerrors.CodeValidation, "product id is required"))
	}
	if quantity < 0 {
		quantity = 0
	}
	ctx = s.logg.WithProductID(ctx, productID)

	gen, remote, err := s.authenticated(ctx)
	if err != nil {
		return s.fail(ctx, "update cart", err)
	}
	if remote {
		key := fmt.Sprintf("cart:update:%s:%d", productID, quantity)
		err := s.remoteCartWrite(ctx, gen, key, func(ctx context.Context) error {
			return s.api.UpdateCartItem(ctx, productID, quantity)
		})
		if pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
			s.logg.Debug(ctx, "cart line not on server")
			return nil
		}
		if err != nil {
			return s.fail(ctx, "update cart", err)
		}
		return nil
	}

	if !s.inCart(productID) {
		return nil
	}

	err = s.guestCartWrite(ctx, func(cart []types.CartLine) []types.CartLine {
		out := cart[:0]
		for _, existing := range cart {
			if existing.ProductID == productID {
				if quantity == 0 {
					continue
				}
				existing.Quantity = quantity
			}
			out = append(out, existing)
		}
		return out
	})
	if err != nil {
		return s.fail(ctx, "save your cart", err)
	}
	return nil
}

func (s *Store) RemoveFromCart(ctx context.Context, productID string) error {
	return s.UpdateCartQuantity(ctx, productID, 0)
}

// ClearCart empties the cart on whichever backend is authoritative.
func (s *Store) ClearCart(ctx context.Context) error {
	gen, remote, err := s.authenticated(ctx)
	if err != nil {
		return s.fail(ctx, "clear cart", err)
	}
	if remote {
		if err := s.remoteCartWrite(ctx, gen, "cart:clear", func(ctx context.Context) error {
			return s.api.ClearCart(ctx)
		}); err != nil {
			return s.fail(ctx, "clear cart", err)
		}
		return nil
	}

	if err := s.guestCartWrite(ctx, func([]types.CartLine) []types.CartLine {
		return []types.CartLine{}
	}); err != nil {
		return s.fail(ctx, "save your cart", err)
	}
	return nil
}

func (s *Store) inCart(productID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, line := range s.cart {
		if line.ProductID == productID {
			return true
		}
	}
	return false
}

// remoteCartWrite runs write and the sync policy once per key at a time.
// Concurrent callers with the same key share the outcome of the first;
// different keys queue behind each other. The shared work ignores the
// cancellation of whichever caller started it.
func (s *Store) remoteCartWrite(ctx context.Context, gen uint64, key string, write func(context.Context) error) error {
	_, err, shared := s.inflight.Do(key, func() (any, error) {
		ctx := context.WithoutCancel(ctx)
		s.cartWrites.Lock()
		defer s.cartWrites.Unlock()

		if err := write(ctx); err != nil {
			return nil, err
		}
		lines, err := s.policy.AfterCartWrite(ctx, s.api)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeOf(err), err, "reload cart")
		}
		s.replaceCart(ctx, gen, lines)
		return nil, nil
	})
	if shared {
		s.logg.Debug(s.logg.WithSessionGeneration(s.logg.WithField(ctx, "inflight_key", key), gen), "joined in-flight cart write")
	}
	if err != nil {
		s.handleRemoteAuthFailure(ctx, gen, err)
	}
	return err
}

// guestCartWrite applies mutate to a copy of the cart, installs it and
// persists the full array locally. Memory keeps the change even when the
// local write fails.
func (s *Store) guestCartWrite(ctx context.Context, mutate func([]types.CartLine) []types.CartLine) error {
	s.mu.Lock()
	next := mergeCartLines(mutate(types.CloneCart(s.cart)))
	s.cart = next
	snapshot := types.CloneCart(next)
	s.mu.Unlock()

	return s.local.SaveCart(ctx, snapshot)
}

func displayName(name string) string {
	if strings.TrimSpace(name) == "" {
		return "Item"
	}
	return name
}
