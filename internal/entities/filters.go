package entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

type Page struct {
	Page  int
	Limit int
}

func (p Page) Normalize() Page {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 {
		p.Limit = defaultPageLimit
	}
	if p.Limit > maxPageLimit {
		p.Limit = maxPageLimit
	}
	return p
}

func (p Page) Offset() uint64 {
	return uint64((p.Page - 1) * p.Limit)
}

type ProductFilter struct {
	SellerID     *uuid.UUID
	CategoryID   *uuid.UUID
	MinPrice     *decimal.Decimal
	MaxPrice     *decimal.Decimal
	MinRating    *float64
	MaxRating    *float64
	Availability string // inStock | outOfStock
	StockStatus  string // low | inStock | outOfStock
	Search       string
	Sort         string
	Page         Page
}

type OrderFilter struct {
	CustomerID    *uuid.UUID
	SellerID      *uuid.UUID
	DelivererID   *uuid.UUID
	Status        *OrderStatus
	MinTotalPrice *decimal.Decimal
	MaxTotalPrice *decimal.Decimal
	StartDate     *time.Time
	EndDate       *time.Time
	Search        string
	Sort          string
	Page          Page
}

type ProfileFilter struct {
	Status *ApprovalStatus
	Search string
	Sort   string
	Page   Page
}

type UserFilter struct {
	Role     *Role
	IsActive *bool
	Search   string
	Sort     string
	Page     Page
}

type SellerSales struct {
	SellerID   uuid.UUID
	ShopName   string
	TotalSales decimal.Decimal
}

type AnalyticsSummary struct {
	TotalOrders     int
	CompletedOrders int
	TotalSales      decimal.Decimal
	SalesBySeller   []SellerSales
}
