package clientstate

import (
	"context"
	"sync"
	"time"

	pkgerrors "github.com/angelmondragon/craftbazaar/pkg/errors"
	"github.com/angelmondragon/craftbazaar/pkg/localstore"
	"github.com/angelmondragon/craftbazaar/pkg/logger"
	"github.com/angelmondragon/craftbazaar/pkg/metrics"
	"github.com/angelmondragon/craftbazaar/pkg/types"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"
)

// API is the remote storefront surface the store writes through when a
// shopper is signed in.
type API interface {
	Reader
	AddToCart(ctx context.Context, productID string, quantity int) error
	UpdateCartItem(ctx context.Context, productID string, quantity int) error
	ClearCart(ctx context.Context) error
	AddToWishlist(ctx context.Context, productID string) error
	RemoveFromWishlist(ctx context.Context, productID string) error
	SignIn(ctx context.Context, email, password string) (*types.SignInPayload, error)
	SignUp(ctx context.Context, email, password, name string) (*types.User, error)
	AdminSignIn(ctx context.Context, email, password string) (*types.SignInPayload, error)
	SetToken(token string)
}

// StoreParams groups dependencies for the client state store.
type StoreParams struct {
	API      API
	Local    *localstore.Guest
	Logger   *logger.Logger
	Metrics  *metrics.StorefrontMetrics
	Notifier Notifier
	Policy   SyncPolicy
	Now      func() time.Time
}

// Store owns the shopper's cart and wishlist for the lifetime of a session.
// Without a session identity it persists to local storage; with one the
// remote API is authoritative. Safe for concurrent use.
type Store struct {
	api      API
	local    *localstore.Guest
	logg     *logger.Logger
	metrics  *metrics.StorefrontMetrics
	notifier Notifier
	policy   SyncPolicy
	now      func() time.Time

	inflight singleflight.Group
	// Distinct writes to the same collection run one after another so
	// each reload observes every earlier write.
	cartWrites     sync.Mutex
	wishlistWrites sync.Mutex

	mu            sync.RWMutex
	identity      *types.SessionIdentity
	generation    uint64
	cart          []types.CartLine
	wishlist      []types.WishlistEntry
	wishlistIndex map[string]struct{}
}

func NewStore(params StoreParams) (*Store, error) {
	if params.API == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "storefront api is required")
	}
	if params.Local == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "local guest store is required")
	}
	logg := params.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	notifier := params.Notifier
	if notifier == nil {
		notifier = LogNotifier{Logger: logg}
	}
	policy := params.Policy
	if policy == nil {
		policy = WriteThenReload{}
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}

	return &Store{
		api:           params.API,
		local:         params.Local,
		logg:          logg,
		metrics:       params.Metrics,
		notifier:      notifier,
		policy:        policy,
		now:           now,
		cart:          []types.CartLine{},
		wishlist:      []types.WishlistEntry{},
		wishlistIndex: map[string]struct{}{},
	}, nil
}

// Restore loads the guest collections from local storage. Signed-in stores
// reload from the remote API instead.
func (s *Store) Restore(ctx context.Context) error {
	if _, gen, ok := s.session(); ok {
		cartErr := s.reloadCart(ctx, gen)
		wishErr := s.reloadWishlist(ctx, gen)
		if cartErr != nil {
			return cartErr
		}
		return wishErr
	}

	cart := s.local.Cart(ctx)
	wishlist := s.local.Wishlist(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.identity != nil {
		return nil
	}
	s.cart = mergeCartLines(cart)
	s.setWishlistLocked(wishlist)
	return nil
}

// Identity returns the active session, if any.
func (s *Store) Identity() (types.SessionIdentity, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.identity == nil {
		return types.SessionIdentity{}, false
	}
	return *s.identity, true
}

// Cart returns a copy of the cart lines.
func (s *Store) Cart() []types.CartLine {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return types.CloneCart(s.cart)
}

// Wishlist returns a copy of the wishlist entries.
func (s *Store) Wishlist() []types.WishlistEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return types.CloneWishlist(s.wishlist)
}

func (s *Store) IsInWishlist(productID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.wishlistIndex[productID]
	return ok
}

// TotalCartItems sums line quantities. Never negative.
func (s *Store) TotalCartItems() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	total := 0
	for _, line := range s.cart {
		if line.Quantity > 0 {
			total += line.Quantity
		}
	}
	return total
}

func (s *Store) CartSubtotal() decimal.Decimal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	total := decimal.Zero
	for _, line := range s.cart {
		if line.Quantity > 0 {
			total = total.Add(line.LineTotal())
		}
	}
	return total
}

// session reports the identity and generation. An identity whose token has
// expired is treated as present so callers can surface the expiry.
func (s *Store) session() (types.SessionIdentity, uint64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.identity == nil {
		return types.SessionIdentity{}, s.generation, false
	}
	return *s.identity, s.generation, true
}

// replaceCart installs remote state unless the session changed meanwhile.
func (s *Store) replaceCart(ctx context.Context, gen uint64, lines []types.CartLine) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.generation {
		s.logg.Debug(s.logg.WithSessionGeneration(ctx, gen), "discarding stale cart response")
		return false
	}
	s.cart = mergeCartLines(lines)
	return true
}

func (s *Store) replaceWishlist(ctx context.Context, gen uint64, entries []types.WishlistEntry) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.generation {
		s.logg.Debug(s.logg.WithSessionGeneration(ctx, gen), "discarding stale wishlist response")
		return false
	}
	s.setWishlistLocked(entries)
	return true
}

func (s *Store) setWishlistLocked(entries []types.WishlistEntry) {
	list := make([]types.WishlistEntry, 0, len(entries))
	index := make(map[string]struct{}, len(entries))
	for _, entry := range entries {
		if entry.ProductID == "" {
			continue
		}
		if _, dup := index[entry.ProductID]; dup {
			continue
		}
		index[entry.ProductID] = struct{}{}
		list = append(list, entry)
	}
	s.wishlist = types.CloneWishlist(list)
	s.wishlistIndex = index
}

// mergeCartLines copies lines, folding duplicates of a product into one line
// and dropping non-positive quantities.
func mergeCartLines(lines []types.CartLine) []types.CartLine {
	out := make([]types.CartLine, 0, len(lines))
	pos := make(map[string]int, len(lines))
	for _, line := range types.CloneCart(lines) {
		if line.ProductID == "" || line.Quantity <= 0 {
			continue
		}
		if i, ok := pos[line.ProductID]; ok {
			out[i].Quantity += line.Quantity
			continue
		}
		pos[line.ProductID] = len(out)
		out = append(out, line)
	}
	return out
}

func (s *Store) reloadCart(ctx context.Context, gen uint64) error {
	lines, err := s.api.GetCart(ctx)
	if err != nil {
		return err
	}
	s.replaceCart(ctx, gen, lines)
	return nil
}

func (s *Store) reloadWishlist(ctx context.Context, gen uint64) error {
	entries, err := s.api.GetWishlist(ctx)
	if err != nil {
		return err
	}
	s.replaceWishlist(ctx, gen, entries)
	return nil
}

func (s *Store) notify(ctx context.Context, level Level, message string) {
	s.notifier.Notify(ctx, Notification{Level: level, Message: message})
}

// fail logs err, tells the shopper and returns err unchanged.
func (s *Store) fail(ctx context.Context, action string, err error) error {
	s.logg.Warn(s.logg.WithFields(ctx, pkgerrors.Dump(err).Fields()), action+" failed")
	s.notifier.Notify(ctx, Notification{
		Level:   LevelError,
		Message: userMessage(action, err),
		Code:    pkgerrors.CodeOf(err),
	})
	return err
}
