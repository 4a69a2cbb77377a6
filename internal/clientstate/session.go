package clientstate

import (
	"context"
	"fmt"
	"strings"

	"github.com/angelmondragon/craftbazaar/pkg/auth"
	pkgerrors "github.com/angelmondragon/craftbazaar/pkg/errors"
	"github.com/angelmondragon/craftbazaar/pkg/types"
	"go.uber.org/multierr"
)

const (
	collectionCart     = "cart"
	collectionWishlist = "wishlist"
)

// SignIn authenticates against the remote API and moves any guest cart and
// wishlist into the account. On failure the store is left as it was.
func (s *Store) SignIn(ctx context.Context, email, password string) error {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return s.fail(ctx, "sign in", pkgerrors.New(pkgerrors.CodeValidation, "email and password are required"))
	}

	payload, err := s.api.SignIn(ctx, email, password)
	if err != nil {
		return s.fail(ctx, "sign in", asUnauthorized(err, "sign in failed"))
	}

	identity := s.identityFrom(payload, email)
	gen := s.begin(identity)
	ctx = s.logg.WithUserID(ctx, identity.UserID)
	s.logg.Info(ctx, "signed in")

	s.migrate(ctx, gen)

	s.notify(ctx, LevelSuccess, fmt.Sprintf("Welcome back, %s", displayUser(identity)))
	return nil
}

// SignUp registers an account. The shopper still has to sign in afterwards.
func (s *Store) SignUp(ctx context.Context, email, password, name string) error {
	email = strings.TrimSpace(email)
	name = strings.TrimSpace(name)
	if email == "" || password == "" || name == "" {
		return s.fail(ctx, "create your account", pkgerrors.New(pkgerrors.CodeValidation, "name, email and password are required"))
	}
	if _, err := s.api.SignUp(ctx, email, password, name); err != nil {
		return s.fail(ctx, "create your account", err)
	}
	s.notify(ctx, LevelSuccess, "Account created, please sign in")
	return nil
}

// SignOut drops the identity and empties memory. Local guest data is not
// restored; responses still in flight for the old session are discarded.
func (s *Store) SignOut(ctx context.Context) {
	identity, _, ok := s.session()
	s.end()
	if ok {
		s.logg.Info(s.logg.WithUserID(ctx, identity.UserID), "signed out")
	}
	s.notify(ctx, LevelInfo, "Signed out")
}

// AdminSignIn authenticates an administrator and sets the local admin flag.
// The shopper session is not affected.
func (s *Store) AdminSignIn(ctx context.Context, email, password string) error {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return s.fail(ctx, "sign in as admin", pkgerrors.New(pkgerrors.CodeValidation, "email and password are required"))
	}
	if _, err := s.api.AdminSignIn(ctx, email, password); err != nil {
		if !pkgerrors.IsCode(err, pkgerrors.CodeForbidden) {
			err = asUnauthorized(err, "admin sign in failed")
		}
		return s.fail(ctx, "sign in as admin", err)
	}
	if err := s.local.SetAdminAuthenticated(ctx, true); err != nil {
		return s.fail(ctx, "remember admin sign in", err)
	}
	s.notify(ctx, LevelSuccess, "Signed in as admin")
	return nil
}

func (s *Store) AdminSignOut(ctx context.Context) error {
	if err := s.local.SetAdminAuthenticated(ctx, false); err != nil {
		return s.fail(ctx, "sign out admin", err)
	}
	return nil
}

func (s *Store) IsAdmin(ctx context.Context) bool {
	return s.local.AdminAuthenticated(ctx)
}

// authenticated reports whether writes go to the remote API. An identity
// whose token expired ends the session and yields an UNAUTHORIZED error.
func (s *Store) authenticated(ctx context.Context) (uint64, bool, error) {
	identity, gen, ok := s.session()
	if !ok {
		return gen, false, nil
	}
	if identity.Expired(s.now()) {
		s.expire(ctx, gen)
		return gen, false, pkgerrors.New(pkgerrors.CodeUnauthorized, "session expired, please sign in again")
	}
	return gen, true, nil
}

// handleRemoteAuthFailure ends the session when the server rejects it.
func (s *Store) handleRemoteAuthFailure(ctx context.Context, gen uint64, err error) {
	if pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized) {
		s.expire(ctx, gen)
	}
}

func (s *Store) expire(ctx context.Context, gen uint64) {
	s.mu.Lock()
	if gen != s.generation || s.identity == nil {
		s.mu.Unlock()
		return
	}
	userID := s.identity.UserID
	s.resetLocked(nil)
	s.mu.Unlock()

	s.api.SetToken("")
	s.logg.Warn(s.logg.WithSessionGeneration(s.logg.WithUserID(ctx, userID), gen), "session expired")
	s.notify(ctx, LevelWarning, "Your session has expired, please sign in again")
}

func (s *Store) identityFrom(payload *types.SignInPayload, email string) types.SessionIdentity {
	identity := types.SessionIdentity{Email: email}
	if payload != nil {
		identity.UserID = payload.User.ID
		identity.Name = payload.User.Name
		identity.Token = payload.Token
		if payload.User.Email != "" {
			identity.Email = payload.User.Email
		}
	}
	if identity.Token != "" {
		identity.ExpiresAt = auth.TokenExpiry(identity.Token)
	}
	return identity
}

// begin installs identity with empty collections and returns the new generation.
func (s *Store) begin(identity types.SessionIdentity) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetLocked(&identity)
	return s.generation
}

func (s *Store) end() {
	s.mu.Lock()
	s.resetLocked(nil)
	s.mu.Unlock()
	s.api.SetToken("")
}

func (s *Store) resetLocked(identity *types.SessionIdentity) {
	s.identity = identity
	s.generation++
	s.cart = []types.CartLine{}
	s.setWishlistLocked(nil)
}

// migrate replays the guest collections against the account one item at a
// time, drops the local copies and reloads both collections from the server.
func (s *Store) migrate(ctx context.Context, gen uint64) {
	cart := s.local.Cart(ctx)
	wishlist := s.local.Wishlist(ctx)

	var errs error
	for _, line := range cart {
		err := s.api.AddToCart(ctx, line.ProductID, line.Quantity)
		s.metrics.IncMigratedItem(collectionCart, err)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("cart %s: %w", line.ProductID, err))
		}
	}
	for _, entry := range wishlist {
		err := s.api.AddToWishlist(ctx, entry.ProductID)
		s.metrics.IncMigratedItem(collectionWishlist, err)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("wishlist %s: %w", entry.ProductID, err))
		}
	}
	if errs != nil {
		failed := multierr.Errors(errs)
		s.logg.Warn(s.logg.WithError(s.logg.WithField(ctx, "failed_items", len(failed)), errs), "guest migration incomplete")
	}
	if len(cart)+len(wishlist) > 0 {
		s.logg.Info(s.logg.WithFields(ctx, map[string]any{
			"cart_items":     len(cart),
			"wishlist_items": len(wishlist),
		}), "guest data migrated")
	}

	if err := s.local.DeleteCollections(ctx); err != nil {
		s.logg.Warn(s.logg.WithFields(ctx, pkgerrors.Dump(err).Fields()), "failed to delete guest collections")
	}

	if err := s.reloadCart(ctx, gen); err != nil {
		s.fail(ctx, "load your cart", err)
	}
	if err := s.reloadWishlist(ctx, gen); err != nil {
		s.fail(ctx, "load your wishlist", err)
	}
}

func asUnauthorized(err error, msg string) error {
	switch pkgerrors.CodeOf(err) {
	case pkgerrors.CodeUnauthorized:
		return err
	case pkgerrors.CodeValidation, pkgerrors.CodeNotFound, pkgerrors.CodeForbidden:
		typed := pkgerrors.As(err)
		if typed != nil && typed.Message() != "" {
			msg = typed.Message()
		}
	}
	return pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, msg)
}

func displayUser(identity types.SessionIdentity) string {
	if identity.Name != "" {
		return identity.Name
	}
	return identity.Email
}
