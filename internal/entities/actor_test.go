package entities_test

import (
	"testing"

	"github.com/kirillov6/marketplace-service/internal/entities"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActor_CanCancelOrder(t *testing.T) {
	customer := entities.Customer{ID: uuid.New()}
	owner := entities.Actor{User: entities.User{Role: entities.RoleCustomer}, Customer: &customer}
	admin := entities.Actor{User: entities.User{Role: entities.RoleAdmin}}

	own := entities.Order{CustomerID: customer.ID, Status: entities.OrderPending}
	assert.True(t, owner.CanCancelOrder(own))

	own.Status = entities.OrderConfirmed
	assert.False(t, owner.CanCancelOrder(own), "customers only cancel pending orders")
	assert.True(t, admin.CanCancelOrder(own))

	own.Status = entities.OrderDelivered
	assert.False(t, admin.CanCancelOrder(own), "terminal orders stay put")

	foreign := entities.Order{CustomerID: uuid.New(), Status: entities.OrderPending}
	assert.False(t, owner.CanCancelOrder(foreign))
}

func TestActor_CanConfirmOrder(t *testing.T) {
	seller := entities.Seller{ID: uuid.New(), Status: entities.ApprovalApproved}
	actor := entities.Actor{User: entities.User{Role: entities.RoleSeller}, Seller: &seller}

	order := entities.Order{Status: entities.OrderPending}
	assert.True(t, actor.CanConfirmOrder(order, true))
	assert.False(t, actor.CanConfirmOrder(order, false))

	seller.Status = entities.ApprovalPending
	pending := entities.Actor{User: entities.User{Role: entities.RoleSeller}, Seller: &seller}
	assert.False(t, pending.CanConfirmOrder(order, true))
}

func TestActor_CanViewOrder(t *testing.T) {
	delivererID := uuid.New()
	deliverer := entities.Deliverer{ID: delivererID, Status: entities.ApprovalApproved}
	actor := entities.Actor{User: entities.User{Role: entities.RoleDeliverer}, Deliverer: &deliverer}

	order := entities.Order{CustomerID: uuid.New(), Status: entities.OrderShipped}
	assert.False(t, actor.CanViewOrder(order, false))

	order.AssignedDelivererID = &delivererID
	assert.True(t, actor.CanViewOrder(order, false))
}

func TestActor_MarshalRoundTrip(t *testing.T) {
	customer := entities.Customer{ID: uuid.New(), FullName: "Alice"}
	actor := entities.Actor{
		User:     entities.User{ID: uuid.New(), Email: "alice@example.com", Role: entities.RoleCustomer},
		Customer: &customer,
	}

	data, err := actor.Marshal()
	require.NoError(t, err)

	var got entities.Actor
	require.NoError(t, got.Unmarshal(data))
	assert.Equal(t, actor.User.ID, got.User.ID)
	require.NotNil(t, got.Customer)
	assert.Equal(t, "Alice", got.Customer.FullName)
}
