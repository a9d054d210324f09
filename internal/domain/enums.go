package domain

// DeliveryMethod selects the carrier used for the shipping quote
type DeliveryMethod string

const (
	DeliveryMethodPostalIndex DeliveryMethod = "pochta_russia"
	DeliveryMethodPickupPoint DeliveryMethod = "cdek"
)

// IsValid checks if the delivery method is known
func (m DeliveryMethod) IsValid() bool {
	switch m {
	case DeliveryMethodPostalIndex, DeliveryMethodPickupPoint:
		return true
	default:
		return false
	}
}

// PaymentStatus is the terminal status of a payment submission
type PaymentStatus string

const (
	PaymentStatusSuccess PaymentStatus = "success"
	PaymentStatusError   PaymentStatus = "error"
)

// QuoteOutcome describes how a shipping calculation ended
type QuoteOutcome string

const (
	QuoteOutcomeResolved QuoteOutcome = "resolved"
	QuoteOutcomeFallback QuoteOutcome = "fallback"
	// QuoteOutcomeSkipped means another calculation was already in flight
	QuoteOutcomeSkipped QuoteOutcome = "skipped"
)
