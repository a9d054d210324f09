package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/voshodshop/cartengine/internal/config"
	"github.com/voshodshop/cartengine/internal/domain"
	"github.com/voshodshop/cartengine/internal/repository"
	"github.com/voshodshop/cartengine/internal/session"
	"github.com/voshodshop/cartengine/internal/storefront"
	apperrors "github.com/voshodshop/cartengine/pkg/errors"
)

// Fixed parcel descriptor sent to the postal carrier
const (
	parcelSideCm   = 20
	mailCategory   = "ORDINARY"
	mailTypeParcel = "POSTAL_PARCEL"
)

const (
	reasonEmptyCart  = "empty cart"
	reasonTimedOut   = "shipping calculation timed out"
	reasonNoCost     = "shipping cost missing from response"
	reasonSuperseded = "calculation superseded"
)

type ShippingService struct {
	repos   *repository.Repositories
	session *session.Session
	cfg     config.ShippingConfig
	logger  *zap.Logger
}

// NewShippingService creates a new shipping calculator. Zero config values fall back to defaults.
func NewShippingService(cfg config.ShippingConfig, repos *repository.Repositories, sess *session.Session, logger *zap.Logger) *ShippingService {
	if logger == nil {
		logger = zap.NewNop()
	}
	defaults := config.DefaultShippingConfig()
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaults.Timeout
	}
	if !cfg.FallbackCost.IsPositive() {
		cfg.FallbackCost = defaults.FallbackCost
	}
	if cfg.MinWeightGrams < 1 {
		cfg.MinWeightGrams = defaults.MinWeightGrams
	}
	return &ShippingService{
		repos:   repos,
		session: sess,
		cfg:     cfg,
		logger:  logger,
	}
}

// quoteResult is what one carrier call produced before it is recorded in the session
type quoteResult struct {
	outcome      domain.QuoteOutcome
	cost         decimal.Decimal
	deliveryTime string
	reason       string
}

// Calculate runs one shipping calculation for the current session state and records its result.
// It never fails: every path ends in a resolved or fallback quote. A call made while another
// calculation is in flight does nothing and returns a skipped outcome.
func (s *ShippingService) Calculate(ctx context.Context) domain.ShippingQuote {
	id, in, ok := s.session.BeginCalculation()
	if !ok {
		s.logger.Debug("Shipping calculation already in flight, skipping")
		return domain.ShippingQuote{Outcome: domain.QuoteOutcomeSkipped}
	}
	defer s.session.EndCalculation(id)

	log := s.logger.With(zap.Stringer("attempt_id", id), zap.String("method", string(in.Method)))
	res := s.run(ctx, log, in)

	if !s.session.Settle(id, res.cost, res.deliveryTime, settledError(res)) {
		log.Debug("Shipping result dropped, attempt no longer active")
		return domain.ShippingQuote{Outcome: domain.QuoteOutcomeSkipped, Reason: reasonSuperseded, AttemptID: id}
	}

	if res.outcome == domain.QuoteOutcomeFallback {
		log.Warn("Shipping fell back to fixed cost",
			zap.String("cost", res.cost.String()),
			zap.String("reason", res.reason),
		)
	} else {
		log.Debug("Shipping resolved", zap.String("cost", res.cost.String()))
	}

	return domain.ShippingQuote{
		Outcome:      res.outcome,
		Cost:         res.cost,
		DeliveryTime: res.deliveryTime,
		Reason:       res.reason,
		AttemptID:    id,
	}
}

// run checks preconditions and races the carrier call against the calculation timeout
func (s *ShippingService) run(ctx context.Context, log *zap.Logger, in session.ShippingInputs) quoteResult {
	if in.ItemCount == 0 {
		return s.fallback(reasonEmptyCart)
	}

	weight := in.Weight
	if weight <= 0 {
		weight = s.cfg.MinWeightGrams
	}

	call, err := s.prepare(in, weight)
	if err != nil {
		return s.fallback(err.Error())
	}

	done := make(chan quoteResult, 1)
	// the carrier call is abandoned, not cancelled, when the timer wins
	callCtx := context.WithoutCancel(ctx)
	go func() {
		resp, err := call(callCtx)
		done <- s.interpret(resp, err)
	}()

	timer := time.NewTimer(s.cfg.Timeout)
	defer timer.Stop()

	select {
	case res := <-done:
		return res
	case <-timer.C:
		log.Warn("Shipping calculation timed out", zap.Duration("timeout", s.cfg.Timeout))
		return s.fallback(reasonTimedOut)
	case <-ctx.Done():
		return s.fallback(fmt.Sprintf("shipping calculation aborted: %v", ctx.Err()))
	}
}

type carrierCall func(ctx context.Context) (*storefront.ShippingQuoteResponse, error)

// prepare validates the carrier inputs and builds the request for the selected method
func (s *ShippingService) prepare(in session.ShippingInputs, weight int) (carrierCall, error) {
	mass := weight
	if mass < 1 {
		mass = 1
	}

	switch in.Method {
	case domain.DeliveryMethodPostalIndex:
		if !postalIndexPattern.MatchString(in.PostalIndex) {
			return nil, &apperrors.ErrValidation{
				Message: "postal index must be exactly 6 digits",
				Fields:  map[string]string{"postal_index": in.PostalIndex},
			}
		}
		parcel := storefront.PostalParcel{
			Index:        in.PostalIndex,
			Mass:         mass,
			Dimension:    storefront.ParcelDimension{Length: parcelSideCm, Width: parcelSideCm, Height: parcelSideCm},
			MailCategory: mailCategory,
			MailType:     mailTypeParcel,
			Fragile:      true,
		}
		return func(ctx context.Context) (*storefront.ShippingQuoteResponse, error) {
			return s.repos.Shipping.QuotePostal(ctx, parcel)
		}, nil

	case domain.DeliveryMethodPickupPoint:
		if in.City.Code == "" || in.PickupPoint.Address == "" {
			return nil, &apperrors.ErrValidation{
				Message: "city and pickup point must be selected",
				Fields: map[string]string{
					"city_code":    in.City.Code,
					"pickup_point": in.PickupPoint.Address,
				},
			}
		}
		query := storefront.PickupQuery{
			CityCode: in.City.Code,
			CityName: in.City.Name,
			Address:  in.PickupPoint.Address,
			Weight:   mass,
		}
		return func(ctx context.Context) (*storefront.ShippingQuoteResponse, error) {
			return s.repos.Shipping.QuotePickup(ctx, query)
		}, nil

	default:
		return nil, &apperrors.ErrValidation{Message: fmt.Sprintf("unknown delivery method %q", in.Method)}
	}
}

// interpret maps a carrier answer to a quote. Only a success status with a positive cost resolves.
func (s *ShippingService) interpret(resp *storefront.ShippingQuoteResponse, err error) quoteResult {
	if err != nil {
		var terr *apperrors.ErrTransport
		if errors.As(err, &terr) {
			return s.fallback("shipping service unavailable: " + err.Error())
		}
		return s.fallback("shipping quote failed: " + err.Error())
	}
	if resp == nil {
		return s.fallback(reasonNoCost)
	}
	if !resp.OK() {
		msg := resp.Message
		if msg == "" {
			msg = fmt.Sprintf("shipping service returned status %q", resp.Status)
		}
		return s.fallback(msg)
	}
	if !resp.ShippingCost.Valid || !resp.ShippingCost.Decimal.IsPositive() {
		return s.fallback(reasonNoCost)
	}
	return quoteResult{
		outcome:      domain.QuoteOutcomeResolved,
		cost:         resp.ShippingCost.Decimal,
		deliveryTime: string(resp.DeliveryTime),
	}
}

func (s *ShippingService) fallback(reason string) quoteResult {
	return quoteResult{
		outcome: domain.QuoteOutcomeFallback,
		cost:    s.cfg.FallbackCost,
		reason:  reason,
	}
}

func settledError(res quoteResult) string {
	if res.outcome == domain.QuoteOutcomeFallback {
		return res.reason
	}
	return ""
}

// SelectMethod switches the carrier, discarding any computed quote
func (s *ShippingService) SelectMethod(method domain.DeliveryMethod) error {
	if !method.IsValid() {
		return &apperrors.ErrValidation{
			Message: fmt.Sprintf("unknown delivery method %q", method),
			Fields:  map[string]string{"method": string(method)},
		}
	}
	s.session.SetDeliveryMethod(method)
	s.logger.Debug("Delivery method selected", zap.String("method", string(method)))
	return nil
}
