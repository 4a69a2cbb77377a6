package types

import "encoding/json"

// Envelope is the response shape shared by every storefront API route.
type Envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// CartPayload is the data of a getCart response.
type CartPayload struct {
	Cart struct {
		Items []CartLine `json:"items"`
	} `json:"cart"`
}

// WishlistPayload is the data of a getWishlist response.
type WishlistPayload struct {
	Wishlist struct {
		Items []WishlistEntry `json:"items"`
	} `json:"wishlist"`
}

// SignInPayload is the data of a signIn response. Token is optional.
type SignInPayload struct {
	User  User   `json:"user"`
	Token string `json:"token,omitempty"`
}

// ProductsPayload is the data of a getProducts response.
type ProductsPayload struct {
	Products []Product `json:"products"`
}

// ProductPayload is the data of a getProduct response.
type ProductPayload struct {
	Product Product `json:"product"`
}
