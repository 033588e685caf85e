package repo

import (
	"database/sql"
	"time"

	"github.com/kirillov6/marketplace-service/internal/entities"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

type User struct {
	ID           uuid.UUID `db:"id"`
	Email        string    `db:"email"`
	PasswordHash string    `db:"password_hash"`
	Role         string    `db:"role"`
	IsActive     bool      `db:"is_active"`
	CreatedAt    time.Time `db:"created_at"`
}

func UserToEntity(u User) entities.User {
	return entities.User{
		ID:           u.ID,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		Role:         entities.Role(u.Role),
		IsActive:     u.IsActive,
		CreatedAt:    u.CreatedAt,
	}
}

type Customer struct {
	ID         uuid.UUID      `db:"id"`
	UserID     uuid.UUID      `db:"user_id"`
	FullName   string         `db:"full_name"`
	Phone      string         `db:"phone"`
	Address    string         `db:"address"`
	Status     string         `db:"status"`
	Reason     sql.NullString `db:"reason"`
	VerifiedAt sql.NullTime   `db:"verified_at"`
	CreatedAt  time.Time      `db:"created_at"`
}

func CustomerToEntity(c Customer) entities.Customer {
	return entities.Customer{
		ID:         c.ID,
		UserID:     c.UserID,
		FullName:   c.FullName,
		Phone:      c.Phone,
		Address:    c.Address,
		Status:     entities.ApprovalStatus(c.Status),
		Reason:     nullStringToString(c.Reason),
		VerifiedAt: nullTimeToPtr(c.VerifiedAt),
		CreatedAt:  c.CreatedAt,
	}
}

type Seller struct {
	ID         uuid.UUID      `db:"id"`
	UserID     uuid.UUID      `db:"user_id"`
	ShopName   string         `db:"shop_name"`
	Documents  pq.StringArray `db:"documents"`
	Status     string         `db:"status"`
	Reason     sql.NullString `db:"reason"`
	VerifiedAt sql.NullTime   `db:"verified_at"`
	CreatedAt  time.Time      `db:"created_at"`
}

func SellerToEntity(s Seller) entities.Seller {
	return entities.Seller{
		ID:         s.ID,
		UserID:     s.UserID,
		ShopName:   s.ShopName,
		Documents:  s.Documents,
		Status:     entities.ApprovalStatus(s.Status),
		Reason:     nullStringToString(s.Reason),
		VerifiedAt: nullTimeToPtr(s.VerifiedAt),
		CreatedAt:  s.CreatedAt,
	}
}

type Deliverer struct {
	ID            uuid.UUID      `db:"id"`
	UserID        uuid.UUID      `db:"user_id"`
	FullName      string         `db:"full_name"`
	LicenseNumber string         `db:"license_number"`
	NIC           string         `db:"nic"`
	Status        string         `db:"status"`
	Reason        sql.NullString `db:"reason"`
	VerifiedAt    sql.NullTime   `db:"verified_at"`
	CreatedAt     time.Time      `db:"created_at"`
}

func DelivererToEntity(d Deliverer) entities.Deliverer {
	return entities.Deliverer{
		ID:            d.ID,
		UserID:        d.UserID,
		FullName:      d.FullName,
		LicenseNumber: d.LicenseNumber,
		NIC:           d.NIC,
		Status:        entities.ApprovalStatus(d.Status),
		Reason:        nullStringToString(d.Reason),
		VerifiedAt:    nullTimeToPtr(d.VerifiedAt),
		CreatedAt:     d.CreatedAt,
	}
}

type Address struct {
	ID         uuid.UUID `db:"id"`
	CustomerID uuid.UUID `db:"customer_id"`
	Label      string    `db:"label"`
	Street     string    `db:"street"`
	City       string    `db:"city"`
	PostalCode string    `db:"postal_code"`
	Country    string    `db:"country"`
	IsDefault  bool      `db:"is_default"`
	CreatedAt  time.Time `db:"created_at"`
	UpdatedAt  time.Time `db:"updated_at"`
}

func AddressToEntity(a Address) entities.Address {
	return entities.Address{
		ID:         a.ID,
		CustomerID: a.CustomerID,
		Label:      a.Label,
		Street:     a.Street,
		City:       a.City,
		PostalCode: a.PostalCode,
		Country:    a.Country,
		IsDefault:  a.IsDefault,
		CreatedAt:  a.CreatedAt,
		UpdatedAt:  a.UpdatedAt,
	}
}

type Category struct {
	ID          uuid.UUID      `db:"id"`
	Name        string         `db:"name"`
	Description sql.NullString `db:"description"`
	CreatedAt   time.Time      `db:"created_at"`
}

func CategoryToEntity(c Category) entities.Category {
	return entities.Category{
		ID:          c.ID,
		Name:        c.Name,
		Description: nullStringToString(c.Description),
		CreatedAt:   c.CreatedAt,
	}
}

type Product struct {
	ID           uuid.UUID       `db:"id"`
	SellerID     uuid.UUID       `db:"seller_id"`
	Name         string          `db:"name"`
	Description  sql.NullString  `db:"description"`
	Price        decimal.Decimal `db:"price"`
	Stock        int             `db:"stock"`
	CategoryID   uuid.NullUUID   `db:"category_id"`
	Rating       float64         `db:"rating"`
	Images       pq.StringArray  `db:"images"`
	PrimaryImage int             `db:"primary_image"`
	CreatedAt    time.Time       `db:"created_at"`
	UpdatedAt    time.Time       `db:"updated_at"`
}

func ProductToEntity(p Product) entities.Product {
	return entities.Product{
		ID:           p.ID,
		SellerID:     p.SellerID,
		Name:         p.Name,
		Description:  nullStringToString(p.Description),
		Price:        p.Price,
		Stock:        p.Stock,
		CategoryID:   nullUUIDToPtr(p.CategoryID),
		Rating:       p.Rating,
		Images:       p.Images,
		PrimaryImage: p.PrimaryImage,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}

type Cart struct {
	ID         uuid.UUID       `db:"id"`
	CustomerID uuid.UUID       `db:"customer_id"`
	TotalPrice decimal.Decimal `db:"total_price"`
	UpdatedAt  time.Time       `db:"updated_at"`
}

type CartItem struct {
	CartID    uuid.UUID       `db:"cart_id"`
	ProductID uuid.UUID       `db:"product_id"`
	Quantity  int             `db:"quantity"`
	Price     decimal.Decimal `db:"price"`
	AddedAt   time.Time       `db:"added_at"`
}

func CartToEntity(c Cart, items []CartItem) entities.Cart {
	cart := entities.Cart{
		ID:         c.ID,
		CustomerID: c.CustomerID,
		TotalPrice: c.TotalPrice,
		UpdatedAt:  c.UpdatedAt,
	}
	for _, it := range items {
		cart.Items = append(cart.Items, entities.CartItem{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			Price:     it.Price,
		})
	}
	return cart
}

type Order struct {
	ID                  uuid.UUID       `db:"id"`
	CustomerID          uuid.UUID       `db:"customer_id"`
	TotalPrice          decimal.Decimal `db:"total_price"`
	Status              string          `db:"status"`
	AssignedDelivererID uuid.NullUUID   `db:"assigned_deliverer_id"`
	GatewaySessionID    sql.NullString  `db:"gateway_session_id"`
	ShippingAddress     sql.NullString  `db:"shipping_address"`
	PaymentMethod       string          `db:"payment_method"`
	CreatedAt           time.Time       `db:"created_at"`
	UpdatedAt           time.Time       `db:"updated_at"`
}

type OrderItem struct {
	OrderID   uuid.UUID       `db:"order_id"`
	ProductID uuid.UUID       `db:"product_id"`
	Quantity  int             `db:"quantity"`
	Price     decimal.Decimal `db:"price"`
}

func OrderToEntity(o Order, items []OrderItem) entities.Order {
	order := entities.Order{
		ID:                  o.ID,
		CustomerID:          o.CustomerID,
		TotalPrice:          o.TotalPrice,
		Status:              entities.OrderStatus(o.Status),
		AssignedDelivererID: nullUUIDToPtr(o.AssignedDelivererID),
		GatewaySessionID:    nullStringToString(o.GatewaySessionID),
		ShippingAddress:     nullStringToString(o.ShippingAddress),
		PaymentMethod:       entities.PaymentMethod(o.PaymentMethod),
		CreatedAt:           o.CreatedAt,
		UpdatedAt:           o.UpdatedAt,
	}
	for _, it := range items {
		order.Items = append(order.Items, entities.OrderItem{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			Price:     it.Price,
		})
	}
	return order
}

type Payment struct {
	ID            uuid.UUID       `db:"id"`
	OrderID       uuid.UUID       `db:"order_id"`
	CustomerID    uuid.UUID       `db:"customer_id"`
	Amount        decimal.Decimal `db:"amount"`
	Method        string          `db:"method"`
	Status        string          `db:"status"`
	TransactionID string          `db:"transaction_id"`
	PaidAt        sql.NullTime    `db:"paid_at"`
	CreatedAt     time.Time       `db:"created_at"`
}

func PaymentToEntity(p Payment) entities.Payment {
	return entities.Payment{
		ID:            p.ID,
		OrderID:       p.OrderID,
		CustomerID:    p.CustomerID,
		Amount:        p.Amount,
		Method:        entities.PaymentMethod(p.Method),
		Status:        entities.PaymentStatus(p.Status),
		TransactionID: p.TransactionID,
		PaidAt:        nullTimeToPtr(p.PaidAt),
		CreatedAt:     p.CreatedAt,
	}
}

type Delivery struct {
	ID           uuid.UUID    `db:"id"`
	OrderID      uuid.UUID    `db:"order_id"`
	DelivererID  uuid.UUID    `db:"deliverer_id"`
	Status       string       `db:"status"`
	DeliveryTime sql.NullTime `db:"delivery_time"`
	CreatedAt    time.Time    `db:"created_at"`
	UpdatedAt    time.Time    `db:"updated_at"`
}

func DeliveryToEntity(d Delivery) entities.Delivery {
	return entities.Delivery{
		ID:           d.ID,
		OrderID:      d.OrderID,
		DelivererID:  d.DelivererID,
		Status:       entities.DeliveryStatus(d.Status),
		DeliveryTime: nullTimeToPtr(d.DeliveryTime),
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func nullStringToString(ns sql.NullString) string {
	if ns.Valid {
		return ns.String
	}
	return ""
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func nullTimeToPtr(nt sql.NullTime) *time.Time {
	if nt.Valid {
		t := nt.Time
		return &t
	}
	return nil
}

func nullUUID(id *uuid.UUID) uuid.NullUUID {
	if id == nil {
		return uuid.NullUUID{}
	}
	return uuid.NullUUID{UUID: *id, Valid: true}
}

func nullUUIDToPtr(nu uuid.NullUUID) *uuid.UUID {
	if nu.Valid {
		id := nu.UUID
		return &id
	}
	return nil
}
