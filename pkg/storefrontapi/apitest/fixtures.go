package apitest

import (
	"github.com/angelmondragon/craftbazaar/pkg/enums"
	"github.com/angelmondragon/craftbazaar/pkg/types"
)

// SampleProducts is a small catalog covering every listing flag.
func SampleProducts() []types.Product {
	price := func(v int64) *int64 { return &v }
	count := func(v int) *int { return &v }
	return []types.Product{
		{ID: "blue-pottery-vase", Name: "Blue Pottery Vase", Price: 2499, OriginalPrice: price(2999), Image: "/img/vase.jpg", Category: enums.ProductCategoryPottery, Rating: 4.6, Reviews: 38, IsNew: true, InStock: true, StockCount: count(4)},
		{ID: "pashmina-shawl", Name: "Pashmina Shawl", Price: 12999, OriginalPrice: price(15999), Image: "/img/shawl.jpg", Category: enums.ProductCategoryTextiles, Rating: 4.9, Reviews: 112, IsPremium: true, InStock: true},
		{ID: "sheesham-bowl", Name: "Sheesham Wood Bowl", Price: 899, Image: "/img/bowl.jpg", Category: enums.ProductCategoryWoodcraft, Rating: 4.2, Reviews: 17, InStock: true},
		{ID: "kundan-earrings", Name: "Kundan Earrings", Price: 3499, Image: "/img/earrings.jpg", Category: enums.ProductCategoryJewelry, Rating: 4.4, Reviews: 54, IsPremium: true, InStock: false},
		{ID: "madhubani-print", Name: "Madhubani Print", Price: 5999, OriginalPrice: price(6999), Image: "/img/madhubani.jpg", Category: enums.ProductCategoryPaintings, Rating: 4.8, Reviews: 23, IsNew: true, InStock: true},
	}
}
