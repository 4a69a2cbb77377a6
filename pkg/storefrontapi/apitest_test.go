package storefrontapi_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/angelmondragon/craftbazaar/pkg/enums"
	pkgerrors "github.com/angelmondragon/craftbazaar/pkg/errors"
	"github.com/angelmondragon/craftbazaar/pkg/storefrontapi"
	"github.com/angelmondragon/craftbazaar/pkg/storefrontapi/apitest"
	"github.com/angelmondragon/craftbazaar/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBackend(t *testing.T, opts apitest.Options) (*apitest.Server, *storefrontapi.Client) {
	t.Helper()
	if opts.Products == nil {
		opts.Products = apitest.SampleProducts()
	}
	backend := apitest.New(opts)
	srv := httptest.NewServer(backend)
	t.Cleanup(srv.Close)

	client, err := storefrontapi.NewClient(srv.URL, storefrontapi.WithTimeout(5*time.Second), storefrontapi.WithRetry(2, time.Millisecond))
	require.NoError(t, err)
	return backend, client
}

func TestCartLifecycleAgainstBackend(t *testing.T) {
	ctx := context.Background()
	backend, client := newBackend(t, apitest.Options{})
	user := backend.AddUser("asha@example.com", "terracotta42", "Asha", false)

	_, err := client.GetCart(ctx)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized), "cart requires a session: %v", err)

	payload, err := client.SignIn(ctx, "Asha@Example.com", "terracotta42")
	require.NoError(t, err)
	assert.Equal(t, user.ID, payload.User.ID)
	assert.NotEmpty(t, client.Token())

	require.NoError(t, client.AddToCart(ctx, "blue-pottery-vase", 1))
	require.NoError(t, client.AddToCart(ctx, "blue-pottery-vase", 2))
	require.NoError(t, client.AddToCart(ctx, "sheesham-bowl", 1))

	lines, err := client.GetCart(ctx)
	require.NoError(t, err)
	require.Len(t, lines, 2)
	assert.Equal(t, 3, lines[0].Quantity)
	assert.Equal(t, "Blue Pottery Vase", lines[0].Name)

	require.NoError(t, client.UpdateCartItem(ctx, "sheesham-bowl", 0))
	lines, err = client.GetCart(ctx)
	require.NoError(t, err)
	require.Len(t, lines, 1)

	err = client.UpdateCartItem(ctx, "sheesham-bowl", 2)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))

	err = client.AddToCart(ctx, "kundan-earrings", 1)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConflict), "out of stock should conflict: %v", err)

	require.NoError(t, client.ClearCart(ctx))
	assert.Empty(t, backend.Cart(user.ID))
}

func TestWishlistAgainstBackend(t *testing.T) {
	ctx := context.Background()
	backend, client := newBackend(t, apitest.Options{})
	user := backend.AddUser("ravi@example.com", "sandalwood7", "Ravi", false)
	_, err := client.SignIn(ctx, "ravi@example.com", "sandalwood7")
	require.NoError(t, err)

	require.NoError(t, client.AddToWishlist(ctx, "pashmina-shawl"))
	require.NoError(t, client.AddToWishlist(ctx, "pashmina-shawl"))
	require.NoError(t, client.AddToWishlist(ctx, "madhubani-print"))

	entries, err := client.GetWishlist(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	require.NoError(t, client.RemoveFromWishlist(ctx, "pashmina-shawl"))
	require.NoError(t, client.RemoveFromWishlist(ctx, "pashmina-shawl"))
	assert.Len(t, backend.Wishlist(user.ID), 1)

	err = client.AddToWishlist(ctx, "does-not-exist")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestSignInFailures(t *testing.T) {
	ctx := context.Background()
	backend, client := newBackend(t, apitest.Options{})
	backend.AddUser("asha@example.com", "terracotta42", "Asha", false)

	_, err := client.SignIn(ctx, "asha@example.com", "wrong-password")
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized), "got %v", err)
	assert.Empty(t, client.Token())

	_, err = client.AdminSignIn(ctx, "asha@example.com", "terracotta42")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeForbidden), "non-admins are forbidden: %v", err)

	_, err = client.SignIn(ctx, "not-an-email", "x")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation), "got %v", err)
}

func TestSignUpThenSignIn(t *testing.T) {
	ctx := context.Background()
	_, client := newBackend(t, apitest.Options{})

	user, err := client.SignUp(ctx, "meera@example.com", "blockprint9", "Meera")
	require.NoError(t, err)
	assert.Equal(t, "meera@example.com", user.Email)
	assert.Empty(t, client.Token(), "sign-up must not sign in")

	_, err = client.SignUp(ctx, "meera@example.com", "blockprint9", "Meera")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConflict))

	_, err = client.SignUp(ctx, "weak@example.com", "short", "Weak")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	_, err = client.SignIn(ctx, "meera@example.com", "blockprint9")
	require.NoError(t, err)
}

func TestCookieOnlySessions(t *testing.T) {
	ctx := context.Background()
	backend, client := newBackend(t, apitest.Options{CookieOnly: true})
	backend.AddUser("asha@example.com", "terracotta42", "Asha", false)

	payload, err := client.SignIn(ctx, "asha@example.com", "terracotta42")
	require.NoError(t, err)
	assert.Empty(t, payload.Token)

	require.NoError(t, client.AddToCart(ctx, "sheesham-bowl", 1))
	lines, err := client.GetCart(ctx)
	require.NoError(t, err)
	assert.Len(t, lines, 1)

	client.SetToken("")
	_, err = client.GetCart(ctx)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized), "clearing the session drops cookies: %v", err)
}

func TestProductsAndFaultInjection(t *testing.T) {
	ctx := context.Background()
	backend, client := newBackend(t, apitest.Options{})

	pottery, err := client.GetProducts(ctx, types.ProductFilter{Category: enums.ProductCategoryPottery})
	require.NoError(t, err)
	require.Len(t, pottery, 1)

	limited, err := client.GetProducts(ctx, types.ProductFilter{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, limited, 2)

	product, err := client.GetProduct(ctx, "pashmina-shawl")
	require.NoError(t, err)
	assert.Equal(t, 19, product.DiscountPercent())

	backend.Fail(storefrontapi.OpGetProduct, http.StatusServiceUnavailable, "maintenance", 1)
	_, err = client.GetProduct(ctx, "pashmina-shawl")
	require.NoError(t, err, "one transient failure is absorbed by the retry")
	assert.Equal(t, 3, backend.Calls(storefrontapi.OpGetProduct))

	backend.Fail(storefrontapi.OpGetProducts, http.StatusServiceUnavailable, "maintenance", 5)
	_, err = client.GetProducts(ctx, types.ProductFilter{})
	assert.True(t, pkgerrors.IsRetryable(err))
}
