package entities_test

import (
	"testing"

	"github.com/kirillov6/marketplace-service/internal/entities"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestOrderStatus_Transitions(t *testing.T) {
	testCases := []struct {
		from entities.OrderStatus
		to   entities.OrderStatus
		want bool
	}{
		{entities.OrderPending, entities.OrderConfirmed, true},
		{entities.OrderPending, entities.OrderCancelled, true},
		{entities.OrderPending, entities.OrderShipped, false},
		{entities.OrderPending, entities.OrderDelivered, false},
		{entities.OrderConfirmed, entities.OrderShipped, true},
		{entities.OrderConfirmed, entities.OrderCancelled, true},
		{entities.OrderConfirmed, entities.OrderPending, false},
		{entities.OrderShipped, entities.OrderDelivered, true},
		{entities.OrderShipped, entities.OrderCancelled, true},
		{entities.OrderDelivered, entities.OrderCancelled, false},
		{entities.OrderCancelled, entities.OrderPending, false},
	}

	for _, tc := range testCases {
		assert.Equal(t, tc.want, tc.from.CanTransitionTo(tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestOrderStatus_Terminal(t *testing.T) {
	assert.True(t, entities.OrderDelivered.IsTerminal())
	assert.True(t, entities.OrderCancelled.IsTerminal())
	assert.False(t, entities.OrderPending.IsTerminal())
	assert.False(t, entities.OrderShipped.IsTerminal())
	assert.False(t, entities.OrderStatus("bogus").IsTerminal())
}

func TestPaymentMethod(t *testing.T) {
	assert.True(t, entities.MethodCard.ViaGateway())
	assert.False(t, entities.MethodCOD.ViaGateway())
	assert.False(t, entities.MethodCash.ViaGateway())
	assert.True(t, entities.MethodDummy.Valid())
	assert.False(t, entities.PaymentMethod("barter").Valid())
}

func TestOrder_ItemsTotal(t *testing.T) {
	order := entities.Order{
		Items: []entities.OrderItem{
			{ProductID: uuid.New(), Quantity: 2, Price: decimal.RequireFromString("10.50")},
			{ProductID: uuid.New(), Quantity: 1, Price: decimal.RequireFromString("0.99")},
		},
	}
	assert.Equal(t, "21.99", order.ItemsTotal().StringFixed(2))
}
