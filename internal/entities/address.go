package entities

import (
	"time"

	"github.com/google/uuid"
)

// Address is one entry in a customer's address book. At most one
// address per customer is the default shipping target.
type Address struct {
	ID         uuid.UUID
	CustomerID uuid.UUID
	Label      string
	Street     string
	City       string
	PostalCode string
	Country    string
	IsDefault  bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
