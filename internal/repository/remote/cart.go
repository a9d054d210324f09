package remote

import (
	"context"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/voshodshop/cartengine/internal/storefront"
	apperrors "github.com/voshodshop/cartengine/pkg/errors"
)

type cartRepository struct {
	client *storefront.Client
	logger *zap.Logger
}

// NewCartRepository creates a new cart repository
func NewCartRepository(client *storefront.Client, logger *zap.Logger) *cartRepository {
	return &cartRepository{
		client: client,
		logger: logger,
	}
}

func (r *cartRepository) GetCartProducts(ctx context.Context) (*storefront.CartProductsResponse, error) {
	var out storefront.CartProductsResponse
	if err := r.client.DoJSON(ctx, http.MethodGet, storefront.PathCartProducts, nil, nil, &out); err != nil {
		return nil, err
	}
	if out.Status != "" && !out.OK() {
		return nil, &apperrors.ErrTransport{Op: "GET " + storefront.PathCartProducts, Err: errors.New(statusMessage(out.Envelope))}
	}
	return &out, nil
}

func (r *cartRepository) GetCartSummary(ctx context.Context) (*storefront.CartSummaryResponse, error) {
	var out storefront.CartSummaryResponse
	if err := r.client.DoJSON(ctx, http.MethodGet, storefront.PathCart, nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *cartRepository) GetWeight(ctx context.Context) (*storefront.CartWeightResponse, error) {
	var out storefront.CartWeightResponse
	if err := r.client.DoJSON(ctx, http.MethodGet, storefront.PathCartWeight, nil, nil, &out); err != nil {
		return nil, err
	}
	if out.Status != "" && !out.OK() {
		return nil, &apperrors.ErrTransport{Op: "GET " + storefront.PathCartWeight, Err: errors.New(statusMessage(out.Envelope))}
	}
	return &out, nil
}

func (r *cartRepository) AddItem(ctx context.Context, productID string) error {
	_, err := r.client.Do(ctx, http.MethodPost, storefront.CartItemPath(productID), nil, nil)
	if err != nil {
		var terr *apperrors.ErrTransport
		if errors.As(err, &terr) && terr.StatusCode == http.StatusNotFound {
			return &apperrors.ErrNotFound{Resource: "product", ID: productID}
		}
		r.logger.Error("Failed to add item to cart", zap.String("product_id", productID), zap.Error(err))
		return err
	}
	return nil
}

func (r *cartRepository) RemoveItem(ctx context.Context, productID string) error {
	_, err := r.client.Do(ctx, http.MethodDelete, storefront.CartRemovePath(productID), nil, nil)
	if err != nil {
		var terr *apperrors.ErrTransport
		if errors.As(err, &terr) && terr.StatusCode == http.StatusNotFound {
			return &apperrors.ErrNotFound{Resource: "cart item", ID: productID}
		}
		r.logger.Error("Failed to remove item from cart", zap.String("product_id", productID), zap.Error(err))
		return err
	}
	return nil
}

func statusMessage(e storefront.Envelope) string {
	if e.Message != "" {
		return e.Message
	}
	return "status " + e.Status
}
