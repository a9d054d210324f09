package service

import (
	"go.uber.org/zap"

	"github.com/voshodshop/cartengine/internal/config"
	"github.com/voshodshop/cartengine/internal/repository"
	"github.com/voshodshop/cartengine/internal/session"
)

// Services aggregates the components that operate on one session
type Services struct {
	Session  *session.Session
	Cart     *CartService
	Address  *AddressService
	Shipping *ShippingService
	Payment  *PaymentService
	Catalog  *CatalogService
}

// NewServices wires all components to the same session
func NewServices(cfg config.ShippingConfig, repos *repository.Repositories, sess *session.Session, logger *zap.Logger) *Services {
	if logger == nil {
		logger = zap.NewNop()
	}
	shipping := NewShippingService(cfg, repos, sess, logger.Named("shipping"))
	return &Services{
		Session:  sess,
		Cart:     NewCartService(cfg, repos, sess, logger.Named("cart")),
		Address:  NewAddressService(repos, sess, logger.Named("address")),
		Shipping: shipping,
		Payment:  NewPaymentService(repos, sess, shipping, logger.Named("payment")),
		Catalog:  NewCatalogService(repos, logger.Named("catalog")),
	}
}
