package storefront

import "fmt"

const (
	PathCart             = "/api/cart/"
	PathCartProducts     = "/api/get_cart_products/"
	PathCartWeight       = "/api/cart/weight/"
	PathNormalizeAddress = "/api/normalize-address/"
	PathPostalShipping   = "/api/calculate-shipping/"
	PathPickupShipping   = "/api/calculate-cdek-shipping/"
	PathProcessPayment   = "/api/process_payment/"
	PathProducts         = "/api/product/"
)

const StatusSuccess = "success"

// CartItemPath is the add-to-cart endpoint for a product
func CartItemPath(productID string) string {
	return fmt.Sprintf("/api/cart/%s/", productID)
}

// CartRemovePath is the remove-from-cart endpoint for a product
func CartRemovePath(productID string) string {
	return fmt.Sprintf("/api/cart/remove/%s/", productID)
}
