package localstore

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"

	pkgerrors "github.com/angelmondragon/craftbazaar/pkg/errors"
	"github.com/angelmondragon/craftbazaar/pkg/logger"
	"github.com/angelmondragon/craftbazaar/pkg/metrics"
	"github.com/angelmondragon/craftbazaar/pkg/types"
)

// MaxRecentSearches caps the stored search history.
const MaxRecentSearches = 5

// Guest reads and writes the typed guest values held in a Store.
// Reads never fail: missing or unreadable values degrade to their zero value.
type Guest struct {
	store   Store
	logg    *logger.Logger
	metrics *metrics.StorefrontMetrics
}

func NewGuest(store Store, logg *logger.Logger, m *metrics.StorefrontMetrics) (*Guest, error) {
	if store == nil {
		return nil, errors.New("local store is required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &Guest{store: store, logg: logg, metrics: m}, nil
}

func (g *Guest) Cart(ctx context.Context) []types.CartLine {
	var lines []types.CartLine
	if !g.read(ctx, KeyCart, &lines) {
		return []types.CartLine{}
	}
	valid := make([]types.CartLine, 0, len(lines))
	for _, line := range lines {
		if line.ProductID == "" || line.Quantity <= 0 {
			continue
		}
		valid = append(valid, line)
	}
	return valid
}

func (g *Guest) SaveCart(ctx context.Context, lines []types.CartLine) error {
	if lines == nil {
		lines = []types.CartLine{}
	}
	return g.write(ctx, KeyCart, lines)
}

func (g *Guest) ClearCart(ctx context.Context) error {
	return g.SaveCart(ctx, nil)
}

func (g *Guest) Wishlist(ctx context.Context) []types.WishlistEntry {
	var entries []types.WishlistEntry
	if !g.read(ctx, KeyWishlist, &entries) {
		return []types.WishlistEntry{}
	}
	seen := make(map[string]struct{}, len(entries))
	valid := make([]types.WishlistEntry, 0, len(entries))
	for _, entry := range entries {
		if entry.ProductID == "" {
			continue
		}
		if _, dup := seen[entry.ProductID]; dup {
			continue
		}
		seen[entry.ProductID] = struct{}{}
		valid = append(valid, entry)
	}
	return valid
}

func (g *Guest) SaveWishlist(ctx context.Context, entries []types.WishlistEntry) error {
	if entries == nil {
		entries = []types.WishlistEntry{}
	}
	return g.write(ctx, KeyWishlist, entries)
}

func (g *Guest) ClearWishlist(ctx context.Context) error {
	return g.SaveWishlist(ctx, nil)
}

// DeleteCollections removes the cart and wishlist keys entirely.
func (g *Guest) DeleteCollections(ctx context.Context) error {
	if err := g.store.Del(ctx, KeyCart, KeyWishlist); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete guest collections")
	}
	return nil
}

func (g *Guest) AdminAuthenticated(ctx context.Context) bool {
	raw, ok := g.raw(ctx, KeyAdminAuthenticated)
	if !ok {
		return false
	}
	flag, err := strconv.ParseBool(strings.TrimSpace(raw))
	if err != nil {
		g.corrupt(ctx, KeyAdminAuthenticated, err)
		return false
	}
	return flag
}

func (g *Guest) SetAdminAuthenticated(ctx context.Context, authenticated bool) error {
	if !authenticated {
		if err := g.store.Del(ctx, KeyAdminAuthenticated); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear admin flag")
		}
		return nil
	}
	if err := g.store.Set(ctx, KeyAdminAuthenticated, "true"); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "set admin flag")
	}
	return nil
}

func (g *Guest) ContactInfo(ctx context.Context) (types.ContactInfo, bool) {
	var info types.ContactInfo
	if !g.read(ctx, KeyContactInfo, &info) {
		return types.ContactInfo{}, false
	}
	return info, true
}

func (g *Guest) SaveContactInfo(ctx context.Context, info types.ContactInfo) error {
	return g.write(ctx, KeyContactInfo, info)
}

func (g *Guest) RecentSearches(ctx context.Context) []string {
	var terms []string
	if !g.read(ctx, KeyRecentSearches, &terms) {
		return []string{}
	}
	if len(terms) > MaxRecentSearches {
		terms = terms[:MaxRecentSearches]
	}
	return terms
}

// RecordSearch puts term at the front of the history, dropping any earlier
// occurrence regardless of case. Blank terms are ignored.
func (g *Guest) RecordSearch(ctx context.Context, term string) ([]string, error) {
	term = strings.TrimSpace(term)
	current := g.RecentSearches(ctx)
	if term == "" {
		return current, nil
	}

	next := make([]string, 0, MaxRecentSearches)
	next = append(next, term)
	for _, existing := range current {
		if strings.EqualFold(existing, term) {
			continue
		}
		if len(next) == MaxRecentSearches {
			break
		}
		next = append(next, existing)
	}
	if err := g.write(ctx, KeyRecentSearches, next); err != nil {
		return current, err
	}
	return next, nil
}

func (g *Guest) ClearRecentSearches(ctx context.Context) error {
	if err := g.store.Del(ctx, KeyRecentSearches); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear recent searches")
	}
	return nil
}

func (g *Guest) raw(ctx context.Context, key string) (string, bool) {
	value, err := g.store.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return "", false
	}
	if err != nil {
		g.logg.Warn(g.logg.WithError(g.logg.WithField(ctx, "key", key), err), "local store read failed")
		return "", false
	}
	return value, true
}

func (g *Guest) read(ctx context.Context, key string, dst any) bool {
	value, ok := g.raw(ctx, key)
	if !ok {
		return false
	}
	if err := json.Unmarshal([]byte(value), dst); err != nil {
		g.corrupt(ctx, key, err)
		return false
	}
	return true
}

func (g *Guest) corrupt(ctx context.Context, key string, err error) {
	g.metrics.IncCorruptLocalValue(key)
	g.logg.Warn(g.logg.WithError(g.logg.WithField(ctx, "key", key), err), "discarding unreadable local value")
}

func (g *Guest) write(ctx context.Context, key string, value any) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode local value")
	}
	if err := g.store.Set(ctx, key, string(payload)); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist local value")
	}
	return nil
}
