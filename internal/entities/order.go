package entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderConfirmed OrderStatus = "confirmed"
	OrderShipped   OrderStatus = "shipped"
	OrderDelivered OrderStatus = "delivered"
	OrderCancelled OrderStatus = "cancelled"
)

// orderTransitions is the full transition table. Delivered and
// cancelled are terminal.
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderPending:   {OrderConfirmed, OrderCancelled},
	OrderConfirmed: {OrderShipped, OrderCancelled},
	OrderShipped:   {OrderDelivered, OrderCancelled},
	OrderDelivered: {},
	OrderCancelled: {},
}

func (s OrderStatus) Valid() bool {
	_, ok := orderTransitions[s]
	return ok
}

func (s OrderStatus) IsTerminal() bool {
	return s.Valid() && len(orderTransitions[s]) == 0
}

func (s OrderStatus) CanTransitionTo(to OrderStatus) bool {
	for _, next := range orderTransitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

type PaymentMethod string

const (
	MethodCOD   PaymentMethod = "cod"
	MethodCash  PaymentMethod = "cash"
	MethodDummy PaymentMethod = "dummy"
	MethodCard  PaymentMethod = "card"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case MethodCOD, MethodCash, MethodDummy, MethodCard:
		return true
	}
	return false
}

// ViaGateway reports whether confirmation arrives asynchronously from
// the payment gateway. Every other method completes immediately.
func (m PaymentMethod) ViaGateway() bool {
	return m == MethodCard
}

// OrderItem is a snapshot: price is frozen at order time and never
// follows later catalog changes.
type OrderItem struct {
	ProductID uuid.UUID
	Quantity  int
	Price     decimal.Decimal
}

func (i OrderItem) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

type Order struct {
	ID                  uuid.UUID
	CustomerID          uuid.UUID
	Items               []OrderItem
	TotalPrice          decimal.Decimal
	Status              OrderStatus
	AssignedDelivererID *uuid.UUID
	GatewaySessionID    string
	ShippingAddress     string
	PaymentMethod       PaymentMethod
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// ItemsTotal recomputes the total from the stored lines. It must equal
// TotalPrice for any persisted order.
func (o Order) ItemsTotal() decimal.Decimal {
	total := decimal.Zero
	for _, it := range o.Items {
		total = total.Add(it.Subtotal())
	}
	return total
}

// ContainsProduct reports whether any line references one of ids.
func (o Order) ContainsProduct(ids map[uuid.UUID]struct{}) bool {
	for _, it := range o.Items {
		if _, ok := ids[it.ProductID]; ok {
			return true
		}
	}
	return false
}
