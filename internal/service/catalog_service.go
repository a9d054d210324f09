package service

import (
	"context"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/voshodshop/cartengine/internal/domain"
	"github.com/voshodshop/cartengine/internal/repository"
)

type CatalogService struct {
	repos  *repository.Repositories
	logger *zap.Logger
}

func NewCatalogService(repos *repository.Repositories, logger *zap.Logger) *CatalogService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CatalogService{
		repos:  repos,
		logger: logger,
	}
}

// ListProducts returns the storefront catalog with numbers coerced
func (s *CatalogService) ListProducts(ctx context.Context) ([]domain.Product, error) {
	raw, err := s.repos.Product.List(ctx)
	if err != nil {
		return nil, err
	}

	products := make([]domain.Product, 0, len(raw))
	for _, p := range raw {
		if p.ID == "" {
			continue
		}
		products = append(products, domain.Product{
			ID:          string(p.ID),
			Name:        p.Name,
			Description: p.Description,
			Price:       p.Price.Or(decimal.Zero),
			Size:        p.Size,
			Weight:      p.Weight.Or(decimal.Zero),
			ImageURL:    p.Image,
			Stock:       p.Stock.Int,
		})
	}

	s.logger.Debug("Catalog fetched", zap.Int("products", len(products)))
	return products, nil
}
