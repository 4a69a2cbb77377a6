package catalog

import (
	"testing"

	"github.com/angelmondragon/craftbazaar/pkg/enums"
	"github.com/angelmondragon/craftbazaar/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func int64Ptr(v int64) *int64 { return &v }

func product(id string, price int64) types.Product {
	return types.Product{ID: id, Name: id, Price: price, Image: "/" + id + ".jpg", Category: enums.ProductCategoryPottery, InStock: true}
}

func ids(products []types.Product) []string {
	out := make([]string, 0, len(products))
	for _, p := range products {
		out = append(out, p.ID)
	}
	return out
}

func TestQueryDropsInvalidProductsFirst(t *testing.T) {
	products := []types.Product{
		product("ok", 10),
		{ID: "", Name: "no id", Image: "/x.jpg"},
		{ID: "no-image", Name: "no image"},
	}
	assert.Equal(t, []string{"ok"}, ids(Query(products, types.QuerySpec{})))
	assert.Empty(t, Query(products, types.QuerySpec{Term: "image"}))
}

func TestQueryTextFilterMatchesNameOrCategory(t *testing.T) {
	vase := product("vase", 10)
	vase.Name = "Blue Pottery Vase"
	shawl := product("shawl", 20)
	shawl.Name = "Pashmina Shawl"
	shawl.Category = enums.ProductCategoryTextiles

	products := []types.Product{vase, shawl}
	assert.Equal(t, []string{"vase"}, ids(Query(products, types.QuerySpec{Term: "  VASE "})))
	assert.Equal(t, []string{"shawl"}, ids(Query(products, types.QuerySpec{Term: "textile"})))
	assert.Equal(t, []string{"vase"}, ids(Query(products, types.QuerySpec{Term: "pot"})))
	assert.Empty(t, Query(products, types.QuerySpec{Term: "lamp"}))
}

func TestQueryPremiumFilterPreservesOrder(t *testing.T) {
	var products []types.Product
	for i, premium := range []bool{true, false, true, false, true} {
		p := product(string(rune('a'+i)), int64(100*(5-i)))
		p.IsPremium = premium
		products = append(products, p)
	}

	got := Query(products, types.QuerySpec{Filter: enums.CatalogFilterPremium})
	assert.Equal(t, []string{"a", "c", "e"}, ids(got))
}

func TestQueryFlagAndCategoryFilters(t *testing.T) {
	sale := product("sale", 10)
	sale.OriginalPrice = int64Ptr(10)
	fresh := product("fresh", 20)
	fresh.IsNew = true
	soldOut := product("sold-out", 30)
	soldOut.InStock = false
	soldOut.Category = enums.ProductCategoryJewelry

	products := []types.Product{sale, fresh, soldOut}

	assert.Equal(t, []string{"sale"}, ids(Query(products, types.QuerySpec{Filter: enums.CatalogFilterSale})))
	assert.Equal(t, []string{"fresh"}, ids(Query(products, types.QuerySpec{Filter: enums.CatalogFilterNew})))
	assert.Equal(t, []string{"sale", "fresh"}, ids(Query(products, types.QuerySpec{Filter: enums.CatalogFilterInStock})))
	assert.Equal(t, []string{"sold-out"}, ids(Query(products, types.QuerySpec{Filter: enums.CategoryFilter(enums.ProductCategoryJewelry)})))
	assert.Len(t, Query(products, types.QuerySpec{Filter: enums.CatalogFilterAll}), 3)
	assert.Len(t, Query(products, types.QuerySpec{Filter: "mystery"}), 3)
}

func TestQueryPriceSorts(t *testing.T) {
	products := []types.Product{product("a", 3999), product("b", 1599), product("c", 12999)}

	asc := Query(products, types.QuerySpec{Sort: enums.CatalogSortPriceAsc})
	assert.Equal(t, []int64{1599, 3999, 12999}, prices(asc))

	desc := Query(products, types.QuerySpec{Sort: enums.CatalogSortPriceDesc})
	assert.Equal(t, []int64{12999, 3999, 1599}, prices(desc))
}

func prices(products []types.Product) []int64 {
	out := make([]int64, 0, len(products))
	for _, p := range products {
		out = append(out, p.Price)
	}
	return out
}

func TestQueryRatingSortIsStable(t *testing.T) {
	a, b, c, d := product("a", 1), product("b", 1), product("c", 1), product("d", 1)
	a.Rating, b.Rating, c.Rating, d.Rating = 4.5, 4.8, 4.5, 4.8

	got := Query([]types.Product{a, b, c, d}, types.QuerySpec{Sort: enums.CatalogSortRating})
	assert.Equal(t, []string{"b", "d", "a", "c"}, ids(got))
}

func TestQueryNewestPartitionsByFlag(t *testing.T) {
	a, b, c, d := product("a", 1), product("b", 1), product("c", 1), product("d", 1)
	b.IsNew, d.IsNew = true, true

	got := Query([]types.Product{a, b, c, d}, types.QuerySpec{Sort: enums.CatalogSortNewest})
	assert.Equal(t, []string{"b", "d", "a", "c"}, ids(got))
}

func TestQueryNameSortIsLocaleAware(t *testing.T) {
	names := []string{"zari Clutch", "Árbol Print", "banjara Bag", "Agate Ring"}
	var products []types.Product
	for _, name := range names {
		p := product(name, 1)
		p.Name = name
		products = append(products, p)
	}

	got := Query(products, types.QuerySpec{Sort: enums.CatalogSortName})
	assert.Equal(t, []string{"Agate Ring", "Árbol Print", "banjara Bag", "zari Clutch"}, ids(got))
}

func TestQueryIsDeterministicAndDoesNotAlias(t *testing.T) {
	products := []types.Product{product("a", 3), product("b", 1), product("c", 2)}
	spec := types.QuerySpec{Sort: enums.CatalogSortPriceAsc}

	first := Query(products, spec)
	second := Query(products, spec)
	require.Equal(t, first, second)

	first[0].Name = "mutated"
	assert.Equal(t, "a", products[0].Name)
	assert.Equal(t, []string{"a", "b", "c"}, ids(products), "input order must be untouched")

	featured := Query(products, types.QuerySpec{})
	featured[0].ID = "changed"
	assert.Equal(t, "a", products[0].ID)
}

func TestQueryResultDoesNotShareProductFields(t *testing.T) {
	p := product("a", 300)
	p.OriginalPrice = int64Ptr(400)
	p.Images = []string{"/a-1.jpg"}
	p.Features = []string{"hand thrown"}
	p.Specifications = map[string]string{"material": "clay"}
	products := []types.Product{p}

	got := Query(products, types.QuerySpec{})
	require.Len(t, got, 1)
	*got[0].OriginalPrice = 1
	got[0].Images[0] = "/other.jpg"
	got[0].Features[0] = "machine made"
	got[0].Specifications["material"] = "plastic"

	assert.Equal(t, int64(400), *products[0].OriginalPrice)
	assert.Equal(t, []string{"/a-1.jpg"}, products[0].Images)
	assert.Equal(t, []string{"hand thrown"}, products[0].Features)
	assert.Equal(t, "clay", products[0].Specifications["material"])
}

func TestDiscountPercentRounding(t *testing.T) {
	assert.Equal(t, 19, DiscountPercent(12999, 15999))
	assert.Equal(t, 0, DiscountPercent(100, 100))
	assert.Equal(t, 0, DiscountPercent(100, 0))
	assert.Equal(t, 50, DiscountPercent(50, 100))
}

func TestPageAndRelated(t *testing.T) {
	var products []types.Product
	for i := 0; i < 5; i++ {
		products = append(products, product(string(rune('a'+i)), int64(i)))
	}
	products[4].Category = enums.ProductCategoryTextiles

	page, meta := Page(products, 2, 2)
	assert.Equal(t, []string{"c", "d"}, ids(page))
	assert.Equal(t, 3, meta.TotalPages)
	assert.True(t, meta.HasNext)

	related := Related(products, products[0], 2)
	assert.Equal(t, []string{"b", "c"}, ids(related))
	assert.Empty(t, Related(products, products[4], 0))
}
