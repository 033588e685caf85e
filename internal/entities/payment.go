package entities

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
	PaymentFailed    PaymentStatus = "failed"
	PaymentRefunded  PaymentStatus = "refunded"
)

// Payment is one-to-one with an order; Amount always equals the
// order's total price.
type Payment struct {
	ID            uuid.UUID
	OrderID       uuid.UUID
	CustomerID    uuid.UUID
	Amount        decimal.Decimal
	Method        PaymentMethod
	Status        PaymentStatus
	TransactionID string
	PaidAt        *time.Time
	CreatedAt     time.Time
}

// NewTransactionID generates a local transaction reference for
// non-gateway methods. Card payments get theirs from the gateway.
func NewTransactionID() string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:9])
	return fmt.Sprintf("TXN%d%s", time.Now().UnixMilli(), suffix)
}
