package localstore

import (
	"context"
	"errors"
	"testing"

	"github.com/angelmondragon/craftbazaar/pkg/enums"
	"github.com/angelmondragon/craftbazaar/pkg/metrics"
	"github.com/angelmondragon/craftbazaar/pkg/types"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newGuest(t *testing.T) (*Guest, *Memory) {
	t.Helper()
	mem := NewMemory()
	g, err := NewGuest(mem, nil, nil)
	require.NoError(t, err)
	return g, mem
}

func TestGuestCartRoundTrip(t *testing.T) {
	ctx := context.Background()
	g, _ := newGuest(t)

	assert.Empty(t, g.Cart(ctx))

	lines := []types.CartLine{
		{ProductID: "p1", Quantity: 2, Name: "Blue Pottery Vase", Price: 2499, Category: enums.ProductCategoryPottery},
		{ProductID: "p2", Quantity: 1, Name: "Pashmina Shawl", Price: 12999},
	}
	require.NoError(t, g.SaveCart(ctx, lines))
	assert.Equal(t, lines, g.Cart(ctx))

	require.NoError(t, g.ClearCart(ctx))
	assert.Empty(t, g.Cart(ctx))
}

func TestGuestCartDropsInvalidLines(t *testing.T) {
	ctx := context.Background()
	g, mem := newGuest(t)
	require.NoError(t, mem.Set(ctx, KeyCart, `[{"productId":"p1","quantity":0},{"productId":"","quantity":2},{"productId":"p2","quantity":3}]`))

	cart := g.Cart(ctx)
	require.Len(t, cart, 1)
	assert.Equal(t, "p2", cart[0].ProductID)
}

func TestGuestWishlistDeduplicates(t *testing.T) {
	ctx := context.Background()
	g, mem := newGuest(t)
	require.NoError(t, mem.Set(ctx, KeyWishlist, `[{"productId":"p1"},{"productId":"p1"},{"productId":"p3"}]`))

	list := g.Wishlist(ctx)
	require.Len(t, list, 2)
	assert.Equal(t, "p1", list[0].ProductID)
	assert.Equal(t, "p3", list[1].ProductID)
}

func TestGuestCorruptValuesDegradeToEmpty(t *testing.T) {
	ctx := context.Background()
	reg := prometheus.NewRegistry()
	mem := NewMemory()
	g, err := NewGuest(mem, nil, metrics.NewStorefrontMetrics(reg))
	require.NoError(t, err)

	require.NoError(t, mem.Set(ctx, KeyCart, `{not json`))
	require.NoError(t, mem.Set(ctx, KeyWishlist, `"a string"`))
	require.NoError(t, mem.Set(ctx, KeyAdminAuthenticated, `maybe`))

	assert.Empty(t, g.Cart(ctx))
	assert.Empty(t, g.Wishlist(ctx))
	assert.False(t, g.AdminAuthenticated(ctx))

	mfs, err := reg.Gather()
	require.NoError(t, err)
	var total float64
	for _, mf := range mfs {
		if mf.GetName() != "storefront_local_corrupt_values_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			total += m.GetCounter().GetValue()
		}
	}
	assert.Equal(t, float64(3), total)
}

type failingStore struct{ *Memory }

func (f *failingStore) Get(context.Context, string) (string, error) {
	return "", errors.New("disk unplugged")
}

func (f *failingStore) Set(context.Context, string, string) error {
	return errors.New("disk unplugged")
}

func TestGuestReadErrorsDegradeAndWriteErrorsSurface(t *testing.T) {
	ctx := context.Background()
	g, err := NewGuest(&failingStore{Memory: NewMemory()}, nil, nil)
	require.NoError(t, err)

	assert.Empty(t, g.Cart(ctx))
	assert.Empty(t, g.RecentSearches(ctx))
	assert.Error(t, g.SaveCart(ctx, []types.CartLine{{ProductID: "p1", Quantity: 1}}))
}

func TestGuestAdminFlag(t *testing.T) {
	ctx := context.Background()
	g, mem := newGuest(t)

	assert.False(t, g.AdminAuthenticated(ctx))
	require.NoError(t, g.SetAdminAuthenticated(ctx, true))
	assert.True(t, g.AdminAuthenticated(ctx))

	require.NoError(t, g.SetAdminAuthenticated(ctx, false))
	assert.False(t, g.AdminAuthenticated(ctx))
	_, err := mem.Get(ctx, KeyAdminAuthenticated)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGuestContactInfo(t *testing.T) {
	ctx := context.Background()
	g, _ := newGuest(t)

	_, ok := g.ContactInfo(ctx)
	assert.False(t, ok)

	info := types.ContactInfo{Name: "Asha", Email: "asha@example.com", City: "Jaipur", PostalCode: "302001"}
	require.NoError(t, g.SaveContactInfo(ctx, info))
	got, ok := g.ContactInfo(ctx)
	require.True(t, ok)
	assert.Equal(t, info, got)
}

func TestGuestRecordSearch(t *testing.T) {
	ctx := context.Background()
	g, _ := newGuest(t)

	for _, term := range []string{"vase", "shawl", "  ", "Lamp", "rug", "bowl", "VASE"} {
		_, err := g.RecordSearch(ctx, term)
		require.NoError(t, err)
	}
	assert.Equal(t, []string{"VASE", "bowl", "rug", "Lamp", "shawl"}, g.RecentSearches(ctx))

	_, err := g.RecordSearch(ctx, "mirror")
	require.NoError(t, err)
	assert.Equal(t, []string{"mirror", "VASE", "bowl", "rug", "Lamp"}, g.RecentSearches(ctx))

	require.NoError(t, g.ClearRecentSearches(ctx))
	assert.Empty(t, g.RecentSearches(ctx))
}

func TestGuestDeleteCollectionsKeepsOtherKeys(t *testing.T) {
	ctx := context.Background()
	g, mem := newGuest(t)

	require.NoError(t, g.SaveCart(ctx, []types.CartLine{{ProductID: "p1", Quantity: 1}}))
	require.NoError(t, g.SaveWishlist(ctx, []types.WishlistEntry{{ProductID: "p2"}}))
	require.NoError(t, g.SetAdminAuthenticated(ctx, true))

	require.NoError(t, g.DeleteCollections(ctx))
	assert.Equal(t, 1, mem.Len())
	assert.True(t, g.AdminAuthenticated(ctx))
}
