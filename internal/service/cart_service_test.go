package service

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voshodshop/cartengine/internal/storefront"
	apperrors "github.com/voshodshop/cartengine/pkg/errors"
)

const cartProductsBody = `{
	"status": "success",
	"cart_products": [
		{"id": 7, "name": "Кружка", "price": "500.00", "quantity": "2", "item_total": "900.00"},
		{"id": "9", "name": "Блокнот", "price": 120, "quantity": 1, "total": "120"},
		{"id": 11, "name": "Без цены", "quantity": 1},
		{"id": 12, "name": "Удалён", "price": 10, "quantity": 0, "total": 0}
	],
	"total_price": "1020.00",
	"total_quantity": 4
}`

func TestFetchItemsCoercesNumbers(t *testing.T) {
	f := newFixture(t)
	f.cart.products = decode[storefront.CartProductsResponse](t, cartProductsBody)

	cart, err := f.svcs.Cart.FetchItems(context.Background())
	require.NoError(t, err)

	require.Len(t, cart.Items, 3, "zero-quantity lines are dropped")
	assert.Equal(t, "7", cart.Items[0].ID)
	assert.Equal(t, 2, cart.Items[0].Quantity)
	assert.Equal(t, "500.00", cart.Items[0].Price.StringFixed(2))
	assert.Equal(t, "900.00", cart.Items[0].Total.StringFixed(2), "item_total used when total is absent")
	assert.Equal(t, "120.00", cart.Items[1].Total.StringFixed(2))
	assert.True(t, cart.Items[2].Total.IsZero())
	assert.Equal(t, "1020.00", cart.TotalPrice.StringFixed(2))
	assert.Equal(t, 4, cart.TotalQuantity)

	assert.Equal(t, cart.Items, f.session.Cart().Items)
	assert.Empty(t, f.session.Snapshot().CartError)
}

func TestBuildCartAggregateSumsWhenTotalsMissing(t *testing.T) {
	resp := decode[storefront.CartProductsResponse](t, `{
		"status": "success",
		"cart_products": [
			{"id": 1, "price": "100", "quantity": "3", "total": "300"},
			{"id": 2, "price": "50", "quantity": 1, "item_total": 50}
		]
	}`)

	cart := BuildCartAggregate(resp)

	assert.Equal(t, "350", cart.TotalPrice.String())
	assert.Equal(t, 4, cart.TotalQuantity)
}

func TestFetchItemsFailureResetsCart(t *testing.T) {
	f := newFixture(t)
	f.seedCart(400)
	f.cart.productsErr = &apperrors.ErrTransport{Op: "GET /api/get_cart_products/", StatusCode: 502}

	cart, err := f.svcs.Cart.FetchItems(context.Background())

	require.Error(t, err)
	assert.Empty(t, cart.Items)
	snap := f.session.Snapshot()
	assert.Empty(t, snap.Cart.Items)
	assert.True(t, snap.Cart.TotalPrice.IsZero())
	assert.Zero(t, snap.Cart.TotalWeight)
	assert.NotEmpty(t, snap.CartError)
}

func TestFetchWeightFloor(t *testing.T) {
	tests := []struct {
		name   string
		seeded bool
		body   string
		want   int
	}{
		{name: "zero weight with items", seeded: true, body: `{"status":"success","total_weight":0}`, want: 100},
		{name: "negative weight with items", seeded: true, body: `{"status":"success","total_weight":"-5"}`, want: 100},
		{name: "missing weight with items", seeded: true, body: `{"status":"success"}`, want: 100},
		{name: "fractional grams round up", seeded: true, body: `{"status":"success","total_weight":"250.2"}`, want: 251},
		{name: "heavy cart", seeded: true, body: `{"status":"success","total_weight":1500}`, want: 1500},
		{name: "empty cart stays zero", body: `{"status":"success","total_weight":0}`, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			if tt.seeded {
				f.seedCart(0)
			}
			f.cart.weight = decode[storefront.CartWeightResponse](t, tt.body)

			weight, err := f.svcs.Cart.FetchWeight(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tt.want, weight)
			assert.Equal(t, tt.want, f.session.Cart().TotalWeight)
		})
	}
}

func TestFetchWeightFailureKeepsFloor(t *testing.T) {
	f := newFixture(t)
	f.seedCart(0)
	f.cart.weightErr = &apperrors.ErrTransport{Op: "GET /api/cart/weight/", StatusCode: 500}

	weight, err := f.svcs.Cart.FetchWeight(context.Background())

	require.Error(t, err)
	assert.Equal(t, 100, weight)
	assert.Equal(t, 100, f.session.Cart().TotalWeight)
}

func TestRefreshAppliesWeightFloorToNewItems(t *testing.T) {
	f := newFixture(t)
	f.cart.products = decode[storefront.CartProductsResponse](t, cartProductsBody)
	f.cart.weight = decode[storefront.CartWeightResponse](t, `{"status":"success","total_weight":0}`)

	cart, err := f.svcs.Cart.Refresh(context.Background())
	require.NoError(t, err)

	assert.Len(t, cart.Items, 3)
	assert.Equal(t, 100, cart.TotalWeight)
}

func TestMutationsAlwaysRefetch(t *testing.T) {
	t.Run("add", func(t *testing.T) {
		f := newFixture(t)
		f.cart.products = decode[storefront.CartProductsResponse](t, cartProductsBody)
		f.cart.weight = decode[storefront.CartWeightResponse](t, `{"status":"success","total_weight":700}`)

		cart, err := f.svcs.Cart.AddItem(context.Background(), "7")
		require.NoError(t, err)

		assert.Equal(t, []string{"7"}, f.cart.added)
		assert.Equal(t, 1, f.cart.productCalls)
		assert.Equal(t, 4, cart.TotalQuantity, "quantities come from the server, not from local arithmetic")
		assert.Equal(t, 700, cart.TotalWeight)
	})

	t.Run("failed remove still refetches", func(t *testing.T) {
		f := newFixture(t)
		f.cart.removeErr = &apperrors.ErrNotFound{Resource: "cart item", ID: "99"}
		f.cart.products = decode[storefront.CartProductsResponse](t, cartProductsBody)
		f.cart.weight = decode[storefront.CartWeightResponse](t, `{"status":"success","total_weight":700}`)

		cart, err := f.svcs.Cart.RemoveItem(context.Background(), "99")

		var nf *apperrors.ErrNotFound
		require.ErrorAs(t, err, &nf)
		assert.Equal(t, []string{"99"}, f.cart.removed)
		assert.Equal(t, 1, f.cart.productCalls)
		assert.Len(t, cart.Items, 3)
	})
}

func TestFetchSummary(t *testing.T) {
	tests := []struct {
		name string
		body string
		want int
	}{
		{name: "explicit total", body: `{"cart":[],"total_quantity":"5"}`, want: 5},
		{name: "list of lines", body: `{"cart":[{"id":1,"quantity":2},{"id":2,"quantity":"3"}]}`, want: 5},
		{name: "object keyed by id", body: `{"cart":{"1":{"quantity":2},"2":{"quantity":1}}}`, want: 3},
		{name: "no cart", body: `{}`, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.cart.summary = decode[storefront.CartSummaryResponse](t, tt.body)

			got, err := f.svcs.Cart.FetchSummary(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSummaryQuantityIgnoresGarbage(t *testing.T) {
	assert.Zero(t, summaryQuantity(json.RawMessage(`"nope"`)))
	assert.Zero(t, summaryQuantity(nil))
}
