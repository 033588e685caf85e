package entities

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const MaxProductImages = 5

type Category struct {
	ID          uuid.UUID
	Name        string
	Description string
	CreatedAt   time.Time
}

type Product struct {
	ID           uuid.UUID
	SellerID     uuid.UUID
	Name         string
	Description  string
	Price        decimal.Decimal
	Stock        int
	CategoryID   *uuid.UUID
	Rating       float64
	Images       []string
	PrimaryImage int
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Validate checks the invariants that cannot be expressed as request
// validation tags: non-negative price and stock, bounded image list,
// primary image index within it.
func (p Product) Validate() error {
	if p.Price.IsNegative() {
		return fmt.Errorf("%w: price must not be negative", ErrInvalidProduct)
	}
	if p.Stock < 0 {
		return fmt.Errorf("%w: stock must not be negative", ErrInvalidProduct)
	}
	if len(p.Images) > MaxProductImages {
		return fmt.Errorf("%w: at most %d images allowed", ErrInvalidProduct, MaxProductImages)
	}
	if p.PrimaryImage < 0 || (len(p.Images) > 0 && p.PrimaryImage >= len(p.Images)) {
		return fmt.Errorf("%w: primary image index out of range", ErrInvalidProduct)
	}
	if p.PrimaryImage > 0 && len(p.Images) == 0 {
		return fmt.Errorf("%w: primary image index out of range", ErrInvalidProduct)
	}
	return nil
}
