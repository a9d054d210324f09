package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voshodshop/cartengine/internal/storefront"
	apperrors "github.com/voshodshop/cartengine/pkg/errors"
)

func TestListProducts(t *testing.T) {
	f := newFixture(t)
	f.product.products = *decode[[]storefront.ProductResponse](t, `[
		{"id": 1, "name": "Кружка", "price": "500.00", "weight": "350", "image": "/media/1.jpg", "stock": "12"},
		{"id": null, "name": "broken"},
		{"id": "2", "name": "Блокнот", "price": 120}
	]`)

	products, err := f.svcs.Catalog.ListProducts(context.Background())
	require.NoError(t, err)

	require.Len(t, products, 2)
	assert.Equal(t, "1", products[0].ID)
	assert.Equal(t, "500.00", products[0].Price.StringFixed(2))
	assert.Equal(t, "350", products[0].Weight.String())
	assert.Equal(t, "/media/1.jpg", products[0].ImageURL)
	assert.Equal(t, 12, products[0].Stock)
	assert.Equal(t, "2", products[1].ID)
	assert.Zero(t, products[1].Stock)
}

func TestListProductsError(t *testing.T) {
	f := newFixture(t)
	f.product.err = &apperrors.ErrTransport{Op: "GET /api/product/", StatusCode: 500}

	_, err := f.svcs.Catalog.ListProducts(context.Background())
	assert.Error(t, err)
}
