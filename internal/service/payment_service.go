package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/voshodshop/cartengine/internal/domain"
	"github.com/voshodshop/cartengine/internal/repository"
	"github.com/voshodshop/cartengine/internal/session"
	"github.com/voshodshop/cartengine/internal/storefront"
	apperrors "github.com/voshodshop/cartengine/pkg/errors"
)

const (
	defaultCustomerName   = "Гость"
	msgPaymentFailed      = "Не удалось оформить заказ. Попробуйте ещё раз."
	msgInsufficientStock  = "Некоторых товаров нет в нужном количестве"
	msgPaymentNotAccepted = "Платёж не принят"
)

type PaymentService struct {
	repos    *repository.Repositories
	session  *session.Session
	shipping *ShippingService
	logger   *zap.Logger
}

// NewPaymentService creates a new payment coordinator
func NewPaymentService(repos *repository.Repositories, sess *session.Session, shipping *ShippingService, logger *zap.Logger) *PaymentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PaymentService{
		repos:    repos,
		session:  sess,
		shipping: shipping,
		logger:   logger,
	}
}

// Submit places the order for the current cart. When no shipping cost is known yet but a postal
// index is, one shipping calculation runs first; its outcome does not block submission.
// Submit never fails: errors are reported in the outcome.
func (s *PaymentService) Submit(ctx context.Context, customer domain.CustomerData) domain.PaymentOutcome {
	outcome := s.submit(ctx, customer)
	if outcome.InsufficientItems == nil {
		outcome.InsufficientItems = []string{}
	}
	return outcome
}

func (s *PaymentService) submit(ctx context.Context, customer domain.CustomerData) domain.PaymentOutcome {
	state := s.session.Shipping()
	if !state.HasCost() && state.PostalIndex != "" {
		quote := s.shipping.Calculate(ctx)
		s.logger.Debug("Shipping calculated before payment",
			zap.String("outcome", string(quote.Outcome)),
			zap.String("cost", quote.Cost.String()),
		)
	}

	req := BuildPaymentRequest(s.session.Snapshot(), customer)
	resp, err := s.repos.Payment.Submit(ctx, req)

	var shortfall *apperrors.ErrShortfall
	switch {
	case errors.As(err, &shortfall):
		msg := shortfall.Message
		if msg == "" {
			msg = msgInsufficientStock
		}
		return domain.PaymentOutcome{
			Status:            domain.PaymentStatusError,
			Message:           msg,
			InsufficientItems: shortfall.Items,
		}

	case err != nil:
		s.logger.Error("Payment submission failed", zap.Error(err))
		return domain.PaymentOutcome{Status: domain.PaymentStatusError, Message: msgPaymentFailed}

	case resp == nil:
		return domain.PaymentOutcome{Status: domain.PaymentStatusError, Message: msgPaymentFailed}

	case !resp.OK():
		msg := resp.Message
		if msg == "" {
			msg = msgPaymentNotAccepted
		}
		s.logger.Warn("Payment rejected", zap.String("status", resp.Status), zap.String("message", resp.Message))
		return domain.PaymentOutcome{Status: domain.PaymentStatusError, Message: msg}
	}

	s.session.ResetAfterPayment()
	s.logger.Info("Order placed",
		zap.String("order_id", string(resp.OrderID)),
		zap.Stringer("session_id", s.session.ID()),
	)
	return domain.PaymentOutcome{
		Status:     domain.PaymentStatusSuccess,
		Message:    resp.Message,
		OrderID:    string(resp.OrderID),
		PaymentURL: resp.PaymentURL,
	}
}

// BuildPaymentRequest merges customer fields with the session's shipping selection and totals
func BuildPaymentRequest(snap domain.Snapshot, customer domain.CustomerData) storefront.PaymentRequest {
	name := strings.TrimSpace(customer.Name)
	if name == "" {
		name = defaultCustomerName
	}

	req := storefront.PaymentRequest{
		CustomerName:      name,
		CustomerEmail:     strings.TrimSpace(customer.Email),
		CustomerPhone:     strings.TrimSpace(customer.Phone),
		DeliveryAddress:   strings.TrimSpace(customer.Address),
		DeliveryComment:   strings.TrimSpace(customer.Comment),
		DeliveryMethod:    string(snap.Shipping.Method),
		ShippingCost:      snap.Shipping.Cost.StringFixed(2),
		PostalCode:        snap.Shipping.PostalIndex,
		TotalWithShipping: snap.TotalWithShipping().StringFixed(2),
	}
	if snap.Shipping.Method == domain.DeliveryMethodPickupPoint {
		req.DeliveryCity = snap.Shipping.City.Name
		req.CDEKCityCode = snap.Shipping.City.Code
		req.CDEKPickupPoint = snap.Shipping.PickupPoint.Address
	}
	return req
}
