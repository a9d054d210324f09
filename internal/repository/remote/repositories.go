package remote

import (
	"go.uber.org/zap"

	"github.com/voshodshop/cartengine/internal/repository"
	"github.com/voshodshop/cartengine/internal/storefront"
)

// NewRepositories creates a new set of storefront-backed repositories
func NewRepositories(client *storefront.Client, logger *zap.Logger) *repository.Repositories {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &repository.Repositories{
		Cart:     NewCartRepository(client, logger),
		Address:  NewAddressRepository(client, logger),
		Shipping: NewShippingRepository(client, logger),
		Payment:  NewPaymentRepository(client, logger),
		Product:  NewProductRepository(client, logger),
	}
}
