package remote

import (
	"context"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/voshodshop/cartengine/internal/storefront"
	apperrors "github.com/voshodshop/cartengine/pkg/errors"
)

type addressRepository struct {
	client *storefront.Client
	logger *zap.Logger
}

// NewAddressRepository creates a new address normalization repository
func NewAddressRepository(client *storefront.Client, logger *zap.Logger) *addressRepository {
	return &addressRepository{
		client: client,
		logger: logger,
	}
}

func (r *addressRepository) Normalize(ctx context.Context, rawAddress string) (*storefront.NormalizeAddressResponse, error) {
	var out storefront.NormalizeAddressResponse
	req := storefront.NormalizeAddressRequest{Address: rawAddress}
	if err := r.client.DoJSON(ctx, http.MethodPost, storefront.PathNormalizeAddress, nil, req, &out); err != nil {
		var env storefront.Envelope
		if storefront.DecodeErrorBody(err, &env) && env.Message != "" {
			return nil, &apperrors.ErrTransport{Op: "POST " + storefront.PathNormalizeAddress, Err: errors.New(env.Message)}
		}
		return nil, err
	}
	if out.Status != "" && !out.OK() {
		return nil, &apperrors.ErrTransport{Op: "POST " + storefront.PathNormalizeAddress, Err: errors.New(statusMessage(out.Envelope))}
	}
	return &out, nil
}
