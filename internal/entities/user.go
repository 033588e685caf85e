package entities

import (
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleCustomer  Role = "customer"
	RoleSeller    Role = "seller"
	RoleDeliverer Role = "deliverer"
	RoleAdmin     Role = "admin"
)

type User struct {
	ID           uuid.UUID
	Email        string
	PasswordHash string
	Role         Role
	IsActive     bool
	CreatedAt    time.Time
}

// ApprovalStatus gates seller and deliverer profiles. Customers are
// approved on registration.
type ApprovalStatus string

const (
	ApprovalPending  ApprovalStatus = "pending"
	ApprovalApproved ApprovalStatus = "approved"
	ApprovalRejected ApprovalStatus = "rejected"
)

type Customer struct {
	ID         uuid.UUID
	UserID     uuid.UUID
	FullName   string
	Phone      string
	Address    string
	Status     ApprovalStatus
	Reason     string
	VerifiedAt *time.Time
	CreatedAt  time.Time
}

type Seller struct {
	ID         uuid.UUID
	UserID     uuid.UUID
	ShopName   string
	Documents  []string
	Status     ApprovalStatus
	Reason     string
	VerifiedAt *time.Time
	CreatedAt  time.Time
}

// UserAccount pairs a user row with its role profile for the admin
// directory views. Admins have no profile.
type UserAccount struct {
	User      User
	Customer  *Customer
	Seller    *Seller
	Deliverer *Deliverer
}

type Deliverer struct {
	ID            uuid.UUID
	UserID        uuid.UUID
	FullName      string
	LicenseNumber string
	NIC           string
	Status        ApprovalStatus
	Reason        string
	VerifiedAt    *time.Time
	CreatedAt     time.Time
}
