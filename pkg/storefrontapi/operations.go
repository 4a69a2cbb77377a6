package storefrontapi

// Operation names label metrics, logs and fault injection in the fake backend.
const (
	OpGetCart            = "get_cart"
	OpAddToCart          = "add_to_cart"
	OpUpdateCartItem     = "update_cart_item"
	OpClearCart          = "clear_cart"
	OpGetWishlist        = "get_wishlist"
	OpAddToWishlist      = "add_to_wishlist"
	OpRemoveFromWishlist = "remove_from_wishlist"
	OpSignIn             = "sign_in"
	OpSignUp             = "sign_up"
	OpAdminSignIn        = "admin_sign_in"
	OpGetProducts        = "get_products"
	OpGetProduct         = "get_product"
)
