package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"sort"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/voshodshop/cartengine/internal/config"
	"github.com/voshodshop/cartengine/internal/domain"
	"github.com/voshodshop/cartengine/internal/repository"
	"github.com/voshodshop/cartengine/internal/session"
	"github.com/voshodshop/cartengine/internal/storefront"
)

type CartService struct {
	repos     *repository.Repositories
	session   *session.Session
	minWeight int
	logger    *zap.Logger
}

// NewCartService creates a new cart service
func NewCartService(cfg config.ShippingConfig, repos *repository.Repositories, sess *session.Session, logger *zap.Logger) *CartService {
	if logger == nil {
		logger = zap.NewNop()
	}
	minWeight := cfg.MinWeightGrams
	if minWeight < 1 {
		minWeight = config.DefaultShippingConfig().MinWeightGrams
	}
	return &CartService{
		repos:     repos,
		session:   sess,
		minWeight: minWeight,
		logger:    logger,
	}
}

// FetchItems replaces the cart with the storefront's view of it. On failure the cart is reset
// to empty and the error recorded.
func (s *CartService) FetchItems(ctx context.Context) (domain.CartAggregate, error) {
	resp, err := s.repos.Cart.GetCartProducts(ctx)
	return s.applyItems(resp, err)
}

// FetchWeight refreshes the cart weight in grams
func (s *CartService) FetchWeight(ctx context.Context) (int, error) {
	resp, err := s.repos.Cart.GetWeight(ctx)
	return s.applyWeight(resp, err)
}

// FetchSummary returns the total quantity shown on the cart badge
func (s *CartService) FetchSummary(ctx context.Context) (int, error) {
	resp, err := s.repos.Cart.GetCartSummary(ctx)
	if err != nil {
		s.logger.Warn("Failed to fetch cart summary", zap.Error(err))
		return 0, err
	}
	if resp.TotalQuantity.Valid {
		return resp.TotalQuantity.Int, nil
	}
	return summaryQuantity(resp.Cart), nil
}

// Refresh fetches lines and weight in parallel and applies them in that order
func (s *CartService) Refresh(ctx context.Context) (domain.CartAggregate, error) {
	var (
		itemsResp  *storefront.CartProductsResponse
		itemsErr   error
		weightResp *storefront.CartWeightResponse
		weightErr  error
		g          errgroup.Group
	)
	g.Go(func() error {
		itemsResp, itemsErr = s.repos.Cart.GetCartProducts(ctx)
		return nil
	})
	g.Go(func() error {
		weightResp, weightErr = s.repos.Cart.GetWeight(ctx)
		return nil
	})
	_ = g.Wait()

	cart, err := s.applyItems(itemsResp, itemsErr)
	if err != nil {
		return cart, err
	}
	if _, err := s.applyWeight(weightResp, weightErr); err != nil {
		return s.session.Cart(), err
	}
	return s.session.Cart(), nil
}

// AddItem adds one unit of productID and re-reads the cart from the storefront
func (s *CartService) AddItem(ctx context.Context, productID string) (domain.CartAggregate, error) {
	mutErr := s.repos.Cart.AddItem(ctx, productID)
	cart, err := s.Refresh(ctx)
	return cart, errors.Join(mutErr, err)
}

// RemoveItem removes productID and re-reads the cart from the storefront
func (s *CartService) RemoveItem(ctx context.Context, productID string) (domain.CartAggregate, error) {
	mutErr := s.repos.Cart.RemoveItem(ctx, productID)
	cart, err := s.Refresh(ctx)
	return cart, errors.Join(mutErr, err)
}

func (s *CartService) applyItems(resp *storefront.CartProductsResponse, err error) (domain.CartAggregate, error) {
	if err != nil {
		s.logger.Warn("Failed to fetch cart, resetting to empty", zap.Error(err))
		s.session.SetCart(domain.CartAggregate{}, err.Error())
		return domain.CartAggregate{}, err
	}

	cart := BuildCartAggregate(resp)
	cart.TotalWeight = s.floorWeight(s.session.Cart().TotalWeight, len(cart.Items))
	s.session.SetCart(cart, "")

	s.logger.Debug("Cart fetched",
		zap.Int("lines", len(cart.Items)),
		zap.Int("quantity", cart.TotalQuantity),
		zap.String("total_price", cart.TotalPrice.StringFixed(2)),
	)
	return cart, nil
}

func (s *CartService) applyWeight(resp *storefront.CartWeightResponse, err error) (int, error) {
	lines := len(s.session.Cart().Items)
	if err != nil {
		s.logger.Warn("Failed to fetch cart weight", zap.Error(err))
		weight := s.floorWeight(s.session.Cart().TotalWeight, lines)
		s.session.SetWeight(weight)
		return weight, err
	}

	grams := 0
	if resp.TotalWeight.Valid {
		grams = int(resp.TotalWeight.Decimal.Ceil().IntPart())
	}
	weight := s.floorWeight(grams, lines)
	s.session.SetWeight(weight)
	return weight, nil
}

// floorWeight keeps weight zero for an empty cart and at least minWeight otherwise
func (s *CartService) floorWeight(grams, lines int) int {
	if lines == 0 {
		return 0
	}
	if grams <= 0 {
		return s.minWeight
	}
	return grams
}

// BuildCartAggregate converts a cart detail response into the domain aggregate.
// Line totals come from the server; total, then item_total, then zero.
func BuildCartAggregate(resp *storefront.CartProductsResponse) domain.CartAggregate {
	cart := domain.CartAggregate{Items: []domain.CartItem{}}
	if resp == nil {
		return cart
	}

	sumPrice := decimal.Zero
	sumQuantity := 0
	for _, p := range resp.CartProducts {
		if !p.Quantity.Valid || p.Quantity.Int <= 0 {
			continue
		}
		total := p.Total.Or(p.ItemTotal.Or(decimal.Zero))
		cart.Items = append(cart.Items, domain.CartItem{
			ID:       string(p.ID),
			Name:     p.Name,
			Price:    p.Price.Or(decimal.Zero),
			Quantity: p.Quantity.Int,
			Total:    total,
			ImageURL: p.ImageURL,
		})
		sumPrice = sumPrice.Add(total)
		sumQuantity += p.Quantity.Int
	}

	if len(cart.Items) == 0 {
		return cart
	}
	cart.TotalPrice = resp.TotalPrice.Or(sumPrice)
	cart.TotalQuantity = sumQuantity
	if resp.TotalQuantity.Valid && resp.TotalQuantity.Int > 0 {
		cart.TotalQuantity = resp.TotalQuantity.Int
	}
	return cart
}

// summaryQuantity sums quantities of a cart summary that is either a list of lines or an object
// keyed by product id
func summaryQuantity(raw json.RawMessage) int {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return 0
	}

	type line struct {
		Quantity storefront.FlexInt `json:"quantity"`
	}

	var list []line
	if err := json.Unmarshal(raw, &list); err == nil {
		total := 0
		for _, l := range list {
			total += l.Quantity.Int
		}
		return total
	}

	var keyed map[string]line
	if err := json.Unmarshal(raw, &keyed); err != nil {
		return 0
	}
	keys := make([]string, 0, len(keyed))
	for k := range keyed {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	total := 0
	for _, k := range keys {
		total += keyed[k].Quantity.Int
	}
	return total
}
