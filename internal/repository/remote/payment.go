package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"

	"github.com/spf13/cast"
	"go.uber.org/zap"

	"github.com/voshodshop/cartengine/internal/storefront"
	apperrors "github.com/voshodshop/cartengine/pkg/errors"
)

type paymentRepository struct {
	client *storefront.Client
	logger *zap.Logger
}

// NewPaymentRepository creates a new payment repository
func NewPaymentRepository(client *storefront.Client, logger *zap.Logger) *paymentRepository {
	return &paymentRepository{
		client: client,
		logger: logger,
	}
}

func (r *paymentRepository) Submit(ctx context.Context, req storefront.PaymentRequest) (*storefront.PaymentResponse, error) {
	var out storefront.PaymentResponse
	err := r.client.DoJSON(ctx, http.MethodPost, storefront.PathProcessPayment, nil, req, &out)
	if err != nil {
		// stock shortfalls and other business errors come back as 4xx/5xx with an envelope
		if !storefront.DecodeErrorBody(err, &out) || out.Status == "" {
			return nil, err
		}
	}

	if len(out.InsufficientItems) > 0 {
		items := InsufficientItemIDs(out.InsufficientItems)
		r.logger.Info("Payment rejected for insufficient stock", zap.Strings("items", items))
		return &out, &apperrors.ErrShortfall{Items: items, Message: out.Message}
	}
	return &out, nil
}

// InsufficientItemIDs extracts line identifiers in order. Entries may be bare ids or objects
// with an id field; entries without an id are skipped.
func InsufficientItemIDs(raw []json.RawMessage) []string {
	ids := make([]string, 0, len(raw))
	for _, entry := range raw {
		var v interface{}
		dec := json.NewDecoder(bytes.NewReader(entry))
		dec.UseNumber()
		if err := dec.Decode(&v); err != nil {
			continue
		}
		if obj, ok := v.(map[string]interface{}); ok {
			v = obj["id"]
		}
		if v == nil {
			continue
		}
		id, err := cast.ToStringE(v)
		if err != nil || id == "" {
			continue
		}
		ids = append(ids, id)
	}
	return ids
}
