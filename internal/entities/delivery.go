package entities

import (
	"time"

	"github.com/google/uuid"
)

type DeliveryStatus string

const (
	DeliveryPending   DeliveryStatus = "pending"
	DeliveryInTransit DeliveryStatus = "in-transit"
	DeliveryDelivered DeliveryStatus = "delivered"
)

// Any of the three values may be set from any other; only the order
// machine enforces strict transitions.
func (s DeliveryStatus) Valid() bool {
	switch s {
	case DeliveryPending, DeliveryInTransit, DeliveryDelivered:
		return true
	}
	return false
}

// Delivery is unique per order; reassignment updates the row in place.
type Delivery struct {
	ID           uuid.UUID
	OrderID      uuid.UUID
	DelivererID  uuid.UUID
	Status       DeliveryStatus
	DeliveryTime *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
