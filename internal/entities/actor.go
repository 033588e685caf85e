package entities

import (
	"bytes"
	"encoding/gob"

	"github.com/google/uuid"
)

// Actor is the authenticated caller with its role profile resolved
// once per request. Handlers ask the actor what it may do instead of
// branching on role strings.
type Actor struct {
	User      User
	Customer  *Customer
	Seller    *Seller
	Deliverer *Deliverer
}

func (a Actor) IsAdmin() bool {
	return a.User.Role == RoleAdmin
}

// ApprovedSeller reports whether the actor is a seller cleared to
// transact.
func (a Actor) ApprovedSeller() bool {
	return a.Seller != nil && a.Seller.Status == ApprovalApproved
}

func (a Actor) ApprovedDeliverer() bool {
	return a.Deliverer != nil && a.Deliverer.Status == ApprovalApproved
}

// CanCancelOrder: customers cancel their own pending orders; admins
// cancel anything non-terminal.
func (a Actor) CanCancelOrder(o Order) bool {
	if a.IsAdmin() {
		return !o.Status.IsTerminal()
	}
	return a.Customer != nil && o.CustomerID == a.Customer.ID && o.Status == OrderPending
}

// CanConfirmOrder: sellers confirm pending orders containing at least
// one of their products; sellsInOrder carries that precomputed fact.
func (a Actor) CanConfirmOrder(o Order, sellsInOrder bool) bool {
	if a.IsAdmin() {
		return o.Status == OrderPending
	}
	return a.ApprovedSeller() && sellsInOrder && o.Status == OrderPending
}

func (a Actor) CanAssignDeliverer(o Order) bool {
	return a.IsAdmin() && !o.Status.IsTerminal()
}

// CanViewOrder: owner, admin, a seller with a line in it, or the
// assigned deliverer.
func (a Actor) CanViewOrder(o Order, sellsInOrder bool) bool {
	if a.IsAdmin() || sellsInOrder {
		return true
	}
	if a.Customer != nil && o.CustomerID == a.Customer.ID {
		return true
	}
	if a.Deliverer != nil && o.AssignedDelivererID != nil && *o.AssignedDelivererID == a.Deliverer.ID {
		return true
	}
	return false
}

func (a Actor) CanUpdateDelivery(d Delivery) bool {
	return a.Deliverer != nil && d.DelivererID == a.Deliverer.ID
}

// CustomerID is the profile id, or uuid.Nil when the actor has no
// customer profile.
func (a Actor) CustomerID() uuid.UUID {
	if a.Customer == nil {
		return uuid.Nil
	}
	return a.Customer.ID
}

func (a *Actor) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(a); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (a *Actor) Unmarshal(data []byte) error {
	return gob.NewDecoder(bytes.NewBuffer(data)).Decode(a)
}

func init() {
	gob.Register(Actor{})
}
