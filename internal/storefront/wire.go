package storefront

import "encoding/json"

// Envelope is the status/message pair every storefront response carries
type Envelope struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

func (e Envelope) OK() bool {
	return e.Status == StatusSuccess
}

// CartProduct is one line of GET /api/get_cart_products/
type CartProduct struct {
	ID        FlexString  `json:"id"`
	Name      string      `json:"name"`
	Price     FlexDecimal `json:"price"`
	Quantity  FlexInt     `json:"quantity"`
	Total     FlexDecimal `json:"total"`
	ItemTotal FlexDecimal `json:"item_total"`
	ImageURL  string      `json:"image_url"`
}

type CartProductsResponse struct {
	Envelope
	CartProducts  []CartProduct `json:"cart_products"`
	TotalPrice    FlexDecimal   `json:"total_price"`
	TotalQuantity FlexInt       `json:"total_quantity"`
}

// CartSummaryResponse is GET /api/cart/. Cart is either a list of lines or an object keyed by
// product id, so it is kept raw.
type CartSummaryResponse struct {
	Cart          json.RawMessage `json:"cart"`
	TotalQuantity FlexInt         `json:"total_quantity"`
}

type CartWeightResponse struct {
	Envelope
	TotalWeight FlexDecimal `json:"total_weight"`
}

type NormalizeAddressRequest struct {
	Address string `json:"address"`
}

// NormalizeAddressResponse keeps normalized_address raw because its shape varies
type NormalizeAddressResponse struct {
	Envelope
	NormalizedAddress json.RawMessage `json:"normalized_address"`
}

type ParcelDimension struct {
	Length int `json:"length"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// PostalParcel is the body of POST /api/calculate-shipping/
type PostalParcel struct {
	Index        string          `json:"index"`
	Mass         int             `json:"mass"`
	Dimension    ParcelDimension `json:"dimension"`
	MailCategory string          `json:"mail-category"`
	MailType     string          `json:"mail-type"`
	Fragile      bool            `json:"fragile"`
}

// PickupQuery is the query of GET /api/calculate-cdek-shipping/
type PickupQuery struct {
	CityCode string
	CityName string
	Address  string
	Weight   int
}

type ShippingQuoteResponse struct {
	Envelope
	ShippingCost FlexDecimal `json:"shipping_cost"`
	DeliveryTime FlexString  `json:"delivery_time"`
}

// PaymentRequest is the body of POST /api/process_payment/
type PaymentRequest struct {
	CustomerName      string `json:"customer_name"`
	CustomerEmail     string `json:"customer_email"`
	CustomerPhone     string `json:"customer_phone"`
	DeliveryAddress   string `json:"delivery_address,omitempty"`
	DeliveryComment   string `json:"delivery_comment,omitempty"`
	DeliveryMethod    string `json:"delivery_method"`
	ShippingCost      string `json:"shipping_cost"`
	PostalCode        string `json:"postal_code,omitempty"`
	TotalWithShipping string `json:"total_with_shipping"`
	DeliveryCity      string `json:"delivery_city,omitempty"`
	CDEKCityCode      string `json:"cdek_city_code,omitempty"`
	CDEKPickupPoint   string `json:"cdek_pickup_point,omitempty"`
}

// PaymentResponse may list unavailable lines as bare ids or as {id,name,available,requested}
type PaymentResponse struct {
	Envelope
	OrderID           FlexString        `json:"order_id"`
	PaymentURL        string            `json:"confirmation_url"`
	InsufficientItems []json.RawMessage `json:"insufficient_items"`
}

type ProductResponse struct {
	ID          FlexString  `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Price       FlexDecimal `json:"price"`
	Size        string      `json:"size"`
	Weight      FlexDecimal `json:"weight"`
	Image       string      `json:"image"`
	Stock       FlexInt     `json:"stock"`
}
