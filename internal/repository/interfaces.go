package repository

import (
	"context"

	"github.com/voshodshop/cartengine/internal/storefront"
)

// CartRepository defines cart data access methods
type CartRepository interface {
	GetCartProducts(ctx context.Context) (*storefront.CartProductsResponse, error)
	GetCartSummary(ctx context.Context) (*storefront.CartSummaryResponse, error)
	GetWeight(ctx context.Context) (*storefront.CartWeightResponse, error)
	AddItem(ctx context.Context, productID string) error
	RemoveItem(ctx context.Context, productID string) error
}

// AddressRepository defines address normalization access
type AddressRepository interface {
	Normalize(ctx context.Context, rawAddress string) (*storefront.NormalizeAddressResponse, error)
}

// ShippingRepository defines carrier quote access. Application-level error envelopes are
// returned as responses, not errors.
type ShippingRepository interface {
	QuotePostal(ctx context.Context, parcel storefront.PostalParcel) (*storefront.ShippingQuoteResponse, error)
	QuotePickup(ctx context.Context, query storefront.PickupQuery) (*storefront.ShippingQuoteResponse, error)
}

// PaymentRepository defines payment submission. A stock shortfall is reported as
// *errors.ErrShortfall alongside the decoded response.
type PaymentRepository interface {
	Submit(ctx context.Context, req storefront.PaymentRequest) (*storefront.PaymentResponse, error)
}

// ProductRepository defines catalog access
type ProductRepository interface {
	List(ctx context.Context) ([]storefront.ProductResponse, error)
}

// Repositories aggregates all repositories
type Repositories struct {
	Cart     CartRepository
	Address  AddressRepository
	Shipping ShippingRepository
	Payment  PaymentRepository
	Product  ProductRepository
}
