// Package session holds the mutable cart and shipping state of one storefront session.
//
// All mutation goes through Session methods; readers get copies via Snapshot. The shipping
// calculation is tracked as an attempt tagged with a uuid so that a result arriving after the
// attempt was finalized or invalidated is dropped.
package session

import (
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/voshodshop/cartengine/internal/domain"
)

// ShippingInputs is the state a shipping calculation reads when it starts
type ShippingInputs struct {
	ItemCount   int
	Weight      int
	Method      domain.DeliveryMethod
	PostalIndex string
	City        domain.City
	PickupPoint domain.PickupPoint
}

type attempt struct {
	id      uuid.UUID
	settled bool
}

type Session struct {
	id uuid.UUID

	mu        sync.Mutex
	cart      domain.CartAggregate
	cartError string
	shipping  domain.ShippingState
	active    *attempt

	subMu       sync.Mutex
	subscribers map[int]func(domain.Snapshot)
	nextSub     int
}

// New creates an empty session with the postal carrier selected
func New() *Session {
	return &Session{
		id:          uuid.New(),
		shipping:    domain.ShippingState{Method: domain.DeliveryMethodPostalIndex},
		subscribers: make(map[int]func(domain.Snapshot)),
	}
}

func (s *Session) ID() uuid.UUID {
	return s.id
}

// Snapshot returns a copy of the whole state
func (s *Session) Snapshot() domain.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Session) snapshotLocked() domain.Snapshot {
	return domain.Snapshot{
		SessionID: s.id,
		Cart:      s.cart.Clone(),
		CartError: s.cartError,
		Shipping:  s.shipping,
	}
}

func (s *Session) Cart() domain.CartAggregate {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart.Clone()
}

func (s *Session) Shipping() domain.ShippingState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.shipping
}

// Subscribe registers fn to be called with a fresh snapshot after every change.
// The returned function removes the subscription.
func (s *Session) Subscribe(fn func(domain.Snapshot)) func() {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	id := s.nextSub
	s.nextSub++
	s.subscribers[id] = fn
	return func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		delete(s.subscribers, id)
	}
}

// update runs fn under the state lock and notifies subscribers when fn reports a change
func (s *Session) update(fn func() bool) bool {
	s.mu.Lock()
	changed := fn()
	var snap domain.Snapshot
	if changed {
		snap = s.snapshotLocked()
	}
	s.mu.Unlock()

	if changed {
		s.notify(snap)
	}
	return changed
}

func (s *Session) notify(snap domain.Snapshot) {
	s.subMu.Lock()
	fns := make([]func(domain.Snapshot), 0, len(s.subscribers))
	for _, fn := range s.subscribers {
		fns = append(fns, fn)
	}
	s.subMu.Unlock()

	for _, fn := range fns {
		fn(snap)
	}
}

// SetCart replaces the cart wholesale and records the fetch error, if any
func (s *Session) SetCart(cart domain.CartAggregate, cartError string) {
	cart = cart.Clone()
	s.update(func() bool {
		s.cart = cart
		s.cartError = cartError
		return true
	})
}

// SetWeight replaces the cart weight in grams
func (s *Session) SetWeight(grams int) {
	s.update(func() bool {
		s.cart.TotalWeight = grams
		return true
	})
}

// SetDeliveryMethod switches the carrier. Any computed quote and error are discarded and an
// in-flight calculation is abandoned.
func (s *Session) SetDeliveryMethod(method domain.DeliveryMethod) {
	s.update(func() bool {
		s.shipping.Method = method
		s.clearQuoteLocked()
		s.abandonLocked()
		return true
	})
}

// SetPostalIndex stores the postal index with surrounding whitespace removed
func (s *Session) SetPostalIndex(index string) {
	index = strings.TrimSpace(index)
	s.update(func() bool {
		if s.shipping.PostalIndex == index {
			return false
		}
		s.shipping.PostalIndex = index
		return true
	})
}

// SelectCity sets the pickup city; a different city drops the selected pickup point
func (s *Session) SelectCity(city domain.City) {
	s.update(func() bool {
		if s.shipping.City == city {
			return false
		}
		if s.shipping.City.Code != city.Code {
			s.shipping.PickupPoint = domain.PickupPoint{}
		}
		s.shipping.City = city
		return true
	})
}

func (s *Session) SelectPickupPoint(point domain.PickupPoint) {
	s.update(func() bool {
		if s.shipping.PickupPoint == point {
			return false
		}
		s.shipping.PickupPoint = point
		return true
	})
}

// BeginCalculation starts a new shipping attempt. ok is false when one is already running,
// in which case nothing changes.
func (s *Session) BeginCalculation() (id uuid.UUID, in ShippingInputs, ok bool) {
	s.update(func() bool {
		if s.shipping.Calculating {
			return false
		}
		id = uuid.New()
		s.active = &attempt{id: id}
		s.shipping.Calculating = true
		s.shipping.Loading = true
		s.shipping.Error = ""
		in = ShippingInputs{
			ItemCount:   len(s.cart.Items),
			Weight:      s.cart.TotalWeight,
			Method:      s.shipping.Method,
			PostalIndex: s.shipping.PostalIndex,
			City:        s.shipping.City,
			PickupPoint: s.shipping.PickupPoint,
		}
		ok = true
		return true
	})
	return id, in, ok
}

// Settle records the result of attempt id. Only the first result for the active attempt is
// kept; it returns false when the result was dropped.
func (s *Session) Settle(id uuid.UUID, cost decimal.Decimal, deliveryTime, errMsg string) bool {
	return s.update(func() bool {
		if s.active == nil || s.active.id != id || s.active.settled {
			return false
		}
		s.active.settled = true
		s.shipping.Cost = cost
		s.shipping.DeliveryTime = deliveryTime
		s.shipping.Error = errMsg
		return true
	})
}

// EndCalculation clears the in-flight flags if id is still the active attempt
func (s *Session) EndCalculation(id uuid.UUID) {
	s.update(func() bool {
		if s.active == nil || s.active.id != id {
			return false
		}
		s.abandonLocked()
		return true
	})
}

// ResetAfterPayment empties the cart and forgets the quote and postal index once an order is placed
func (s *Session) ResetAfterPayment() {
	s.update(func() bool {
		s.cart = domain.CartAggregate{}
		s.cartError = ""
		s.shipping.PostalIndex = ""
		s.clearQuoteLocked()
		s.abandonLocked()
		return true
	})
}

func (s *Session) clearQuoteLocked() {
	s.shipping.Cost = decimal.Zero
	s.shipping.DeliveryTime = ""
	s.shipping.Error = ""
}

func (s *Session) abandonLocked() {
	s.active = nil
	s.shipping.Calculating = false
	s.shipping.Loading = false
}
