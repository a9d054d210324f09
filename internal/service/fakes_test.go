package service

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/voshodshop/cartengine/internal/config"
	"github.com/voshodshop/cartengine/internal/domain"
	"github.com/voshodshop/cartengine/internal/repository"
	"github.com/voshodshop/cartengine/internal/session"
	"github.com/voshodshop/cartengine/internal/storefront"
)

func decode[T any](t *testing.T, body string) *T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal([]byte(body), &out))
	return &out
}

type fakeCartRepo struct {
	mu           sync.Mutex
	products     *storefront.CartProductsResponse
	productsErr  error
	weight       *storefront.CartWeightResponse
	weightErr    error
	summary      *storefront.CartSummaryResponse
	summaryErr   error
	addErr       error
	removeErr    error
	productCalls int
	added        []string
	removed      []string
}

func (f *fakeCartRepo) GetCartProducts(ctx context.Context) (*storefront.CartProductsResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.productCalls++
	return f.products, f.productsErr
}

func (f *fakeCartRepo) GetCartSummary(ctx context.Context) (*storefront.CartSummaryResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.summary, f.summaryErr
}

func (f *fakeCartRepo) GetWeight(ctx context.Context) (*storefront.CartWeightResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.weight, f.weightErr
}

func (f *fakeCartRepo) AddItem(ctx context.Context, productID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.added = append(f.added, productID)
	return f.addErr
}

func (f *fakeCartRepo) RemoveItem(ctx context.Context, productID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.removed = append(f.removed, productID)
	return f.removeErr
}

type fakeAddressRepo struct {
	mu   sync.Mutex
	resp *storefront.NormalizeAddressResponse
	err  error
	sent []string
}

func (f *fakeAddressRepo) Normalize(ctx context.Context, rawAddress string) (*storefront.NormalizeAddressResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, rawAddress)
	return f.resp, f.err
}

// fakeShippingRepo optionally blocks each quote until release is closed
type fakeShippingRepo struct {
	mu         sync.Mutex
	resp       *storefront.ShippingQuoteResponse
	err        error
	release    chan struct{}
	calls      int
	lastParcel storefront.PostalParcel
	lastQuery  storefront.PickupQuery
}

func (f *fakeShippingRepo) QuotePostal(ctx context.Context, parcel storefront.PostalParcel) (*storefront.ShippingQuoteResponse, error) {
	f.mu.Lock()
	f.calls++
	f.lastParcel = parcel
	release := f.release
	f.mu.Unlock()
	return f.answer(release)
}

func (f *fakeShippingRepo) QuotePickup(ctx context.Context, query storefront.PickupQuery) (*storefront.ShippingQuoteResponse, error) {
	f.mu.Lock()
	f.calls++
	f.lastQuery = query
	release := f.release
	f.mu.Unlock()
	return f.answer(release)
}

func (f *fakeShippingRepo) answer(release chan struct{}) (*storefront.ShippingQuoteResponse, error) {
	if release != nil {
		<-release
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.resp, f.err
}

func (f *fakeShippingRepo) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakePaymentRepo struct {
	mu      sync.Mutex
	resp    *storefront.PaymentResponse
	err     error
	calls   int
	lastReq storefront.PaymentRequest
}

func (f *fakePaymentRepo) Submit(ctx context.Context, req storefront.PaymentRequest) (*storefront.PaymentResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.lastReq = req
	return f.resp, f.err
}

type fakeProductRepo struct {
	products []storefront.ProductResponse
	err      error
}

func (f *fakeProductRepo) List(ctx context.Context) ([]storefront.ProductResponse, error) {
	return f.products, f.err
}

type fixture struct {
	svcs     *Services
	session  *session.Session
	cart     *fakeCartRepo
	address  *fakeAddressRepo
	shipping *fakeShippingRepo
	payment  *fakePaymentRepo
	product  *fakeProductRepo
}

func newFixture(t *testing.T) *fixture {
	return newFixtureWithTimeout(t, time.Second)
}

func newFixtureWithTimeout(t *testing.T, timeout time.Duration) *fixture {
	t.Helper()
	f := &fixture{
		session:  session.New(),
		cart:     &fakeCartRepo{},
		address:  &fakeAddressRepo{},
		shipping: &fakeShippingRepo{},
		payment:  &fakePaymentRepo{},
		product:  &fakeProductRepo{},
	}
	repos := &repository.Repositories{
		Cart:     f.cart,
		Address:  f.address,
		Shipping: f.shipping,
		Payment:  f.payment,
		Product:  f.product,
	}
	cfg := config.DefaultShippingConfig()
	cfg.Timeout = timeout
	f.svcs = NewServices(cfg, repos, f.session, zaptest.NewLogger(t))
	return f
}

// seedCart puts a one-line cart worth 1000 into the session
func (f *fixture) seedCart(weight int) {
	f.session.SetCart(domain.CartAggregate{
		Items: []domain.CartItem{{
			ID:       "p1",
			Name:     "Кружка",
			Price:    decimal.NewFromInt(500),
			Quantity: 2,
			Total:    decimal.NewFromInt(1000),
		}},
		TotalPrice:    decimal.NewFromInt(1000),
		TotalQuantity: 2,
		TotalWeight:   weight,
	}, "")
}
