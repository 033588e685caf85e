package entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CartItem freezes the unit price at the moment the product was added.
type CartItem struct {
	ProductID uuid.UUID
	Quantity  int
	Price     decimal.Decimal
}

type Cart struct {
	ID         uuid.UUID
	CustomerID uuid.UUID
	Items      []CartItem
	TotalPrice decimal.Decimal
	UpdatedAt  time.Time
}

// Recalculate recomputes the derived total. Must be called after any
// change to the item list.
func (c *Cart) Recalculate() {
	total := decimal.Zero
	for _, it := range c.Items {
		total = total.Add(it.Price.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	c.TotalPrice = total
}

// ItemIndex returns the position of the line for productID, or -1.
func (c *Cart) ItemIndex(productID uuid.UUID) int {
	for i, it := range c.Items {
		if it.ProductID == productID {
			return i
		}
	}
	return -1
}

// RemoveItem deletes the line for productID and recalculates the total.
func (c *Cart) RemoveItem(productID uuid.UUID) bool {
	i := c.ItemIndex(productID)
	if i < 0 {
		return false
	}
	c.Items = append(c.Items[:i], c.Items[i+1:]...)
	c.Recalculate()
	return true
}

// Clear drops all lines. The cart row itself survives checkout.
func (c *Cart) Clear() {
	c.Items = nil
	c.TotalPrice = decimal.Zero
}
