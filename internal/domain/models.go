package domain

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CartItem is one line of the cart as reported by the storefront
type CartItem struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity"`
	// Total is server-authoritative and may differ from Price*Quantity when discounts apply
	Total    decimal.Decimal `json:"total"`
	ImageURL string          `json:"image_url,omitempty"`
}

// CartAggregate is the whole cart with its totals. Weight is in grams.
type CartAggregate struct {
	Items         []CartItem      `json:"items"`
	TotalPrice    decimal.Decimal `json:"total_price"`
	TotalQuantity int             `json:"total_quantity"`
	TotalWeight   int             `json:"total_weight"`
}

// IsEmpty reports whether the cart has no lines
func (a CartAggregate) IsEmpty() bool {
	return len(a.Items) == 0
}

// Clone returns a copy that does not share the items slice
func (a CartAggregate) Clone() CartAggregate {
	out := a
	if a.Items != nil {
		out.Items = make([]CartItem, len(a.Items))
		copy(out.Items, a.Items)
	}
	return out
}

// City is a pickup-carrier city
type City struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// PickupPoint is a pickup-carrier location inside a city
type PickupPoint struct {
	Address string `json:"address"`
}

// ShippingState holds the selected delivery method and the last computed quote.
// A zero Cost means no quote has been computed yet.
type ShippingState struct {
	Method       DeliveryMethod  `json:"method"`
	PostalIndex  string          `json:"postal_index,omitempty"`
	City         City            `json:"city"`
	PickupPoint  PickupPoint     `json:"pickup_point"`
	Cost         decimal.Decimal `json:"cost"`
	DeliveryTime string          `json:"delivery_time,omitempty"`
	Error        string          `json:"error,omitempty"`
	Calculating  bool            `json:"calculating"`
	Loading      bool            `json:"loading"`
}

// HasCost reports whether a quote (real or fallback) is present
func (s ShippingState) HasCost() bool {
	return s.Cost.IsPositive()
}

// Snapshot is a consistent copy of the session state
type Snapshot struct {
	SessionID uuid.UUID     `json:"session_id"`
	Cart      CartAggregate `json:"cart"`
	CartError string        `json:"cart_error,omitempty"`
	Shipping  ShippingState `json:"shipping"`
}

// TotalWithShipping is the cart total plus the current shipping cost
func (s Snapshot) TotalWithShipping() decimal.Decimal {
	return s.Cart.TotalPrice.Add(s.Shipping.Cost)
}

// NormalizedAddress is an address as cleaned by the normalization service
type NormalizedAddress struct {
	Index    string `json:"index,omitempty"`
	Region   string `json:"region,omitempty"`
	Place    string `json:"place,omitempty"`
	Location string `json:"location,omitempty"`
	Street   string `json:"street,omitempty"`
	House    string `json:"house,omitempty"`
	Building string `json:"building,omitempty"`
	Corpus   string `json:"corpus,omitempty"`
	Room     string `json:"room,omitempty"`
}

// CustomerData is what the buyer fills in at checkout
type CustomerData struct {
	Name    string `json:"customer_name"`
	Email   string `json:"customer_email"`
	Phone   string `json:"customer_phone"`
	Address string `json:"delivery_address"`
	Comment string `json:"delivery_comment"`
}

// PaymentOutcome is the result of a payment submission
type PaymentOutcome struct {
	Status            PaymentStatus `json:"status"`
	Message           string        `json:"message"`
	InsufficientItems []string      `json:"insufficient_items"`
	OrderID           string        `json:"order_id,omitempty"`
	PaymentURL        string        `json:"payment_url,omitempty"`
}

// ShippingQuote is the terminal result of one shipping calculation
type ShippingQuote struct {
	Outcome      QuoteOutcome    `json:"outcome"`
	Cost         decimal.Decimal `json:"cost"`
	DeliveryTime string          `json:"delivery_time,omitempty"`
	Reason       string          `json:"reason,omitempty"`
	AttemptID    uuid.UUID       `json:"attempt_id"`
}

// Product is a catalog entry
type Product struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Price       decimal.Decimal `json:"price"`
	Size        string          `json:"size,omitempty"`
	Weight      decimal.Decimal `json:"weight"`
	ImageURL    string          `json:"image_url,omitempty"`
	Stock       int             `json:"stock"`
}
