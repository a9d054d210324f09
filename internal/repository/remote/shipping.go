package remote

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"go.uber.org/zap"

	"github.com/voshodshop/cartengine/internal/storefront"
)

type shippingRepository struct {
	client *storefront.Client
	logger *zap.Logger
}

// NewShippingRepository creates a new shipping quote repository
func NewShippingRepository(client *storefront.Client, logger *zap.Logger) *shippingRepository {
	return &shippingRepository{
		client: client,
		logger: logger,
	}
}

func (r *shippingRepository) QuotePostal(ctx context.Context, parcel storefront.PostalParcel) (*storefront.ShippingQuoteResponse, error) {
	var out storefront.ShippingQuoteResponse
	err := r.client.DoJSON(ctx, http.MethodPost, storefront.PathPostalShipping, nil, parcel, &out)
	return r.quoteResult(&out, err)
}

func (r *shippingRepository) QuotePickup(ctx context.Context, q storefront.PickupQuery) (*storefront.ShippingQuoteResponse, error) {
	params := url.Values{}
	params.Set("city_code", q.CityCode)
	params.Set("city_name", q.CityName)
	params.Set("address", q.Address)
	params.Set("weight", strconv.Itoa(q.Weight))

	var out storefront.ShippingQuoteResponse
	err := r.client.DoJSON(ctx, http.MethodGet, storefront.PathPickupShipping, params, nil, &out)
	return r.quoteResult(&out, err)
}

// quoteResult turns an error envelope on a non-2xx answer into a regular response
func (r *shippingRepository) quoteResult(out *storefront.ShippingQuoteResponse, err error) (*storefront.ShippingQuoteResponse, error) {
	if err == nil {
		return out, nil
	}
	var env storefront.ShippingQuoteResponse
	if storefront.DecodeErrorBody(err, &env) && env.Status != "" {
		r.logger.Debug("Shipping quote returned error envelope", zap.String("message", env.Message))
		return &env, nil
	}
	return nil, err
}
