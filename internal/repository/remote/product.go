package remote

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/voshodshop/cartengine/internal/storefront"
)

type productRepository struct {
	client *storefront.Client
	logger *zap.Logger
}

// NewProductRepository creates a new catalog repository
func NewProductRepository(client *storefront.Client, logger *zap.Logger) *productRepository {
	return &productRepository{
		client: client,
		logger: logger,
	}
}

func (r *productRepository) List(ctx context.Context) ([]storefront.ProductResponse, error) {
	var out []storefront.ProductResponse
	if err := r.client.DoJSON(ctx, http.MethodGet, storefront.PathProducts, nil, nil, &out); err != nil {
		r.logger.Error("Failed to list products", zap.Error(err))
		return nil, err
	}
	return out, nil
}
