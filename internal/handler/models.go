package handler

import (
	"time"

	"github.com/kirillov6/marketplace-service/internal/entities"

	"github.com/google/uuid"
)

type User struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

func UserEntityToJSON(u entities.User) User {
	return User{
		ID:        u.ID,
		Email:     u.Email,
		Role:      string(u.Role),
		CreatedAt: u.CreatedAt,
	}
}

type AuthResponse struct {
	User  User   `json:"user"`
	Token string `json:"token"`
}

type Seller struct {
	ID         uuid.UUID  `json:"id"`
	UserID     uuid.UUID  `json:"user_id"`
	ShopName   string     `json:"shop_name"`
	Documents  []string   `json:"documents,omitempty"`
	Status     string     `json:"status"`
	Reason     string     `json:"reason,omitempty"`
	VerifiedAt *time.Time `json:"verified_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

func SellerEntityToJSON(s entities.Seller) Seller {
	return Seller{
		ID:         s.ID,
		UserID:     s.UserID,
		ShopName:   s.ShopName,
		Documents:  s.Documents,
		Status:     string(s.Status),
		Reason:     s.Reason,
		VerifiedAt: s.VerifiedAt,
		CreatedAt:  s.CreatedAt,
	}
}

type Deliverer struct {
	ID            uuid.UUID  `json:"id"`
	UserID        uuid.UUID  `json:"user_id"`
	FullName      string     `json:"full_name"`
	LicenseNumber string     `json:"license_number"`
	NIC           string     `json:"nic"`
	Status        string     `json:"status"`
	Reason        string     `json:"reason,omitempty"`
	VerifiedAt    *time.Time `json:"verified_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

func DelivererEntityToJSON(d entities.Deliverer) Deliverer {
	return Deliverer{
		ID:            d.ID,
		UserID:        d.UserID,
		FullName:      d.FullName,
		LicenseNumber: d.LicenseNumber,
		NIC:           d.NIC,
		Status:        string(d.Status),
		Reason:        d.Reason,
		VerifiedAt:    d.VerifiedAt,
		CreatedAt:     d.CreatedAt,
	}
}

type Customer struct {
	ID         uuid.UUID  `json:"id"`
	UserID     uuid.UUID  `json:"user_id"`
	FullName   string     `json:"full_name"`
	Phone      string     `json:"phone"`
	Address    string     `json:"address"`
	Status     string     `json:"status"`
	Reason     string     `json:"reason,omitempty"`
	VerifiedAt *time.Time `json:"verified_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

func CustomerEntityToJSON(c entities.Customer) Customer {
	return Customer{
		ID:         c.ID,
		UserID:     c.UserID,
		FullName:   c.FullName,
		Phone:      c.Phone,
		Address:    c.Address,
		Status:     string(c.Status),
		Reason:     c.Reason,
		VerifiedAt: c.VerifiedAt,
		CreatedAt:  c.CreatedAt,
	}
}

// UserAccount is the admin directory row: the user plus whichever role
// profile it carries.
type UserAccount struct {
	ID        uuid.UUID  `json:"id"`
	Email     string     `json:"email"`
	Role      string     `json:"role"`
	IsActive  bool       `json:"is_active"`
	CreatedAt time.Time  `json:"created_at"`
	Customer  *Customer  `json:"customer,omitempty"`
	Seller    *Seller    `json:"seller,omitempty"`
	Deliverer *Deliverer `json:"deliverer,omitempty"`
}

func UserAccountEntityToJSON(a entities.UserAccount) UserAccount {
	account := UserAccount{
		ID:        a.User.ID,
		Email:     a.User.Email,
		Role:      string(a.User.Role),
		IsActive:  a.User.IsActive,
		CreatedAt: a.User.CreatedAt,
	}
	if a.Customer != nil {
		customer := CustomerEntityToJSON(*a.Customer)
		account.Customer = &customer
	}
	if a.Seller != nil {
		seller := SellerEntityToJSON(*a.Seller)
		account.Seller = &seller
	}
	if a.Deliverer != nil {
		deliverer := DelivererEntityToJSON(*a.Deliverer)
		account.Deliverer = &deliverer
	}
	return account
}

type Address struct {
	ID         uuid.UUID `json:"id"`
	Label      string    `json:"label,omitempty"`
	Street     string    `json:"street"`
	City       string    `json:"city"`
	PostalCode string    `json:"postal_code"`
	Country    string    `json:"country"`
	IsDefault  bool      `json:"is_default"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func AddressEntityToJSON(a entities.Address) Address {
	return Address{
		ID:         a.ID,
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

func addressesToJSON(addresses []entities.Address) []Address {
	items := make([]Address, 0, len(addresses))
	for _, a := range addresses {
		items = append(items, AddressEntityToJSON(a))
	}
	return items
}

type Category struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

func CategoryEntityToJSON(c entities.Category) Category {
	return Category{
		ID:          c.ID,
		Name:        c.Name,
		Description: c.Description,
		CreatedAt:   c.CreatedAt,
	}
}

type Product struct {
	ID           uuid.UUID  `json:"id"`
	SellerID     uuid.UUID  `json:"seller_id"`
	Name         string     `json:"name"`
	Description  string     `json:"description,omitempty"`
	Price        string     `json:"price"`
	Stock        int        `json:"stock"`
	CategoryID   *uuid.UUID `json:"category_id,omitempty"`
	Rating       float64    `json:"rating"`
	Images       []string   `json:"images,omitempty"`
	PrimaryImage int        `json:"primary_image"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

func ProductEntityToJSON(p entities.Product) Product {
	return Product{
		ID:           p.ID,
		SellerID:     p.SellerID,
		Name:         p.Name,
		Description:  p.Description,
		Price:        p.Price.StringFixed(2),
		Stock:        p.Stock,
		CategoryID:   p.CategoryID,
		Rating:       p.Rating,
		Images:       p.Images,
		PrimaryImage: p.PrimaryImage,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}

type CartItem struct {
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int       `json:"quantity"`
	Price     string    `json:"price"`
}

type Cart struct {
	ID         uuid.UUID  `json:"id"`
	CustomerID uuid.UUID  `json:"customer_id"`
	Items      []CartItem `json:"items"`
	TotalPrice string     `json:"total_price"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

func CartEntityToJSON(c entities.Cart) Cart {
	items := make([]CartItem, 0, len(c.Items))
	for _, it := range c.Items {
		items = append(items, CartItem{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			Price:     it.Price.StringFixed(2),
		})
	}
	return Cart{
		ID:         c.ID,
		CustomerID: c.CustomerID,
		Items:      items,
		TotalPrice: c.TotalPrice.StringFixed(2),
		UpdatedAt:  c.UpdatedAt,
	}
}

type OrderItem struct {
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int       `json:"quantity"`
	Price     string    `json:"price"`
	Subtotal  string    `json:"subtotal"`
}

type Order struct {
	ID                  uuid.UUID  `json:"id"`
	CustomerID          uuid.UUID  `json:"customer_id"`
	Items               []OrderItem `json:"items"`
	TotalPrice          string     `json:"total_price"`
	Status              string     `json:"status"`
	AssignedDelivererID *uuid.UUID `json:"assigned_deliverer_id,omitempty"`
	ShippingAddress     string     `json:"shipping_address"`
	PaymentMethod       string     `json:"payment_method"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
}

func OrderEntityToJSON(o entities.Order) Order {
	items := make([]OrderItem, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, OrderItem{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			Price:     it.Price.StringFixed(2),
			Subtotal:  it.Subtotal().StringFixed(2),
		})
	}
	return Order{
		ID:                  o.ID,
		CustomerID:          o.CustomerID,
		Items:               items,
		TotalPrice:          o.TotalPrice.StringFixed(2),
		Status:              string(o.Status),
		AssignedDelivererID: o.AssignedDelivererID,
		ShippingAddress:     o.ShippingAddress,
		PaymentMethod:       string(o.PaymentMethod),
		CreatedAt:           o.CreatedAt,
		UpdatedAt:           o.UpdatedAt,
	}
}

type Payment struct {
	ID            uuid.UUID  `json:"id"`
	OrderID       uuid.UUID  `json:"order_id"`
	Amount        string     `json:"amount"`
	Method        string     `json:"method"`
	Status        string     `json:"status"`
	TransactionID string     `json:"transaction_id,omitempty"`
	PaidAt        *time.Time `json:"paid_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

func PaymentEntityToJSON(p entities.Payment) Payment {
	return Payment{
		ID:            p.ID,
		OrderID:       p.OrderID,
		Amount:        p.Amount.StringFixed(2),
		Method:        string(p.Method),
		Status:        string(p.Status),
		TransactionID: p.TransactionID,
		PaidAt:        p.PaidAt,
		CreatedAt:     p.CreatedAt,
	}
}

type Delivery struct {
	ID           uuid.UUID  `json:"id"`
	OrderID      uuid.UUID  `json:"order_id"`
	DelivererID  uuid.UUID  `json:"deliverer_id"`
	Status       string     `json:"status"`
	DeliveryTime *time.Time `json:"delivery_time,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

func DeliveryEntityToJSON(d entities.Delivery) Delivery {
	return Delivery{
		ID:           d.ID,
		OrderID:      d.OrderID,
		DelivererID:  d.DelivererID,
		Status:       string(d.Status),
		DeliveryTime: d.DeliveryTime,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
}

// Paginated wraps list responses with the total row count.
type Paginated struct {
	Items any `json:"items"`
	Total int `json:"total"`
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

func NewPaginated(items any, total int, page entities.Page) Paginated {
	page = page.Normalize()
	return Paginated{Items: items, Total: total, Page: page.Page, Limit: page.Limit}
}

type SellerSales struct {
	SellerID   uuid.UUID `json:"seller_id"`
	ShopName   string    `json:"shop_name"`
	TotalSales string    `json:"total_sales"`
}

type AnalyticsSummary struct {
	TotalOrders     int           `json:"total_orders"`
	CompletedOrders int           `json:"completed_orders"`
	TotalSales      string        `json:"total_sales"`
	SalesBySeller   []SellerSales `json:"sales_by_seller"`
}

func AnalyticsEntityToJSON(a entities.AnalyticsSummary) AnalyticsSummary {
	sellers := make([]SellerSales, 0, len(a.SalesBySeller))
	for _, s := range a.SalesBySeller {
		sellers = append(sellers, SellerSales{
			SellerID:   s.SellerID,
			ShopName:   s.ShopName,
			TotalSales: s.TotalSales.StringFixed(2),
		})
	}
	return AnalyticsSummary{
		TotalOrders:     a.TotalOrders,
		CompletedOrders: a.CompletedOrders,
		TotalSales:      a.TotalSales.StringFixed(2),
		SalesBySeller:   sellers,
	}
}
