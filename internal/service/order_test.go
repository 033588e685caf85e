package service_test

import (
	"context"
	"strings"
	"testing"

	"github.com/kirillov6/marketplace-service/internal/entities"
	"github.com/kirillov6/marketplace-service/internal/service"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type orderWorld struct {
	products   *fakeProductRepo
	orders     *fakeOrderRepo
	carts      *fakeCartRepo
	payments   *fakePaymentRepo
	deliveries *fakeDeliveryRepo
	profiles   *fakeProfileRepo
	publisher  *fakePublisher

	svc interface {
		Checkout(ctx context.Context, actor entities.Actor, p service.CheckoutParams) (entities.Order, entities.Payment, error)
		GetOrder(ctx context.Context, actor entities.Actor, id uuid.UUID) (entities.Order, error)
		ListOrders(ctx context.Context, actor entities.Actor, filter entities.OrderFilter) ([]entities.Order, int, error)
		UpdateOrder(ctx context.Context, actor entities.Actor, id uuid.UUID, p service.UpdateOrderParams) (entities.Order, error)
	}

	seller    entities.Seller
	customer  entities.Customer
	deliverer entities.Deliverer
	product   entities.Product
}

func newOrderWorld(t *testing.T) *orderWorld {
	t.Helper()

	w := &orderWorld{
		products:   newFakeProductRepo(),
		carts:      newFakeCartRepo(),
		payments:   newFakePaymentRepo(),
		deliveries: newFakeDeliveryRepo(),
		profiles:   newFakeProfileRepo(),
		publisher:  &fakePublisher{},
	}
	w.orders = newFakeOrderRepo(w.products)

	w.seller = entities.Seller{ID: uuid.New(), UserID: uuid.New(), ShopName: "shop", Status: entities.ApprovalApproved}
	w.customer = entities.Customer{ID: uuid.New(), UserID: uuid.New(), Address: "home"}
	w.deliverer = entities.Deliverer{ID: uuid.New(), UserID: uuid.New(), Status: entities.ApprovalApproved}
	w.profiles.sellers[w.seller.ID] = w.seller
	w.profiles.customers[w.customer.ID] = w.customer
	w.profiles.deliverers[w.deliverer.ID] = w.deliverer

	w.product = entities.Product{
		ID:       uuid.New(),
		SellerID: w.seller.ID,
		Name:     "widget",
		Price:    decimal.RequireFromString("25.50"),
		Stock:    10,
	}
	w.products.products[w.product.ID] = w.product

	w.svc = service.NewOrderService(
		testLogger(), fakeTxManager{},
		w.orders, w.products, w.carts, w.payments, w.deliveries,
		w.profiles, w.profiles, w.publisher,
	)
	return w
}

func (w *orderWorld) customerActor() entities.Actor {
	c := w.customer
	return entities.Actor{User: entities.User{ID: c.UserID, Role: entities.RoleCustomer, IsActive: true}, Customer: &c}
}

func (w *orderWorld) sellerActor() entities.Actor {
	s := w.seller
	return entities.Actor{User: entities.User{ID: s.UserID, Role: entities.RoleSeller, IsActive: true}, Seller: &s}
}

func adminActor() entities.Actor {
	return entities.Actor{User: entities.User{ID: uuid.New(), Role: entities.RoleAdmin, IsActive: true}}
}

func (w *orderWorld) checkoutCOD(t *testing.T, qty int) entities.Order {
	t.Helper()
	order, _, err := w.svc.Checkout(context.Background(), w.customerActor(), service.CheckoutParams{
		Lines:         []service.CheckoutLine{{ProductID: w.product.ID, Quantity: qty}},
		PaymentMethod: entities.MethodCOD,
	})
	require.NoError(t, err)
	return order
}

func TestOrderService_Checkout(t *testing.T) {
	t.Run("cod order completes payment immediately", func(t *testing.T) {
		w := newOrderWorld(t)

		order, payment, err := w.svc.Checkout(context.Background(), w.customerActor(), service.CheckoutParams{
			Lines:         []service.CheckoutLine{{ProductID: w.product.ID, Quantity: 3}},
			PaymentMethod: entities.MethodCOD,
		})
		require.NoError(t, err)

		assert.Equal(t, entities.OrderPending, order.Status)
		assert.Equal(t, "76.50", order.TotalPrice.StringFixed(2))
		assert.Equal(t, "home", order.ShippingAddress)

		assert.Equal(t, entities.PaymentCompleted, payment.Status)
		assert.True(t, strings.HasPrefix(payment.TransactionID, "TXN"))
		assert.NotNil(t, payment.PaidAt)

		assert.Equal(t, 7, w.products.products[w.product.ID].Stock)

		require.Len(t, w.publisher.events, 1)
		assert.Equal(t, "created", w.publisher.events[0].kind)
	})

	t.Run("insufficient stock leaves nothing behind", func(t *testing.T) {
		w := newOrderWorld(t)

		_, _, err := w.svc.Checkout(context.Background(), w.customerActor(), service.CheckoutParams{
			Lines:         []service.CheckoutLine{{ProductID: w.product.ID, Quantity: 11}},
			PaymentMethod: entities.MethodCOD,
		})
		require.ErrorIs(t, err, entities.ErrInsufficientStock)

		assert.Equal(t, 10, w.products.products[w.product.ID].Stock)
		assert.Empty(t, w.orders.orders)
		assert.Empty(t, w.payments.payments)
	})

	t.Run("unapproved seller makes product unavailable", func(t *testing.T) {
		w := newOrderWorld(t)
		s := w.seller
		s.Status = entities.ApprovalPending
		w.profiles.sellers[s.ID] = s

		_, _, err := w.svc.Checkout(context.Background(), w.customerActor(), service.CheckoutParams{
			Lines:         []service.CheckoutLine{{ProductID: w.product.ID, Quantity: 1}},
			PaymentMethod: entities.MethodCash,
		})
		require.ErrorIs(t, err, entities.ErrProductUnavailable)
	})

	t.Run("from cart re-prices and clears the cart", func(t *testing.T) {
		w := newOrderWorld(t)

		stale := decimal.RequireFromString("1.00")
		w.carts.carts[w.customer.ID] = entities.Cart{
			ID:         uuid.New(),
			CustomerID: w.customer.ID,
			Items:      []entities.CartItem{{ProductID: w.product.ID, Quantity: 2, Price: stale}},
		}

		order, _, err := w.svc.Checkout(context.Background(), w.customerActor(), service.CheckoutParams{
			FromCart:      true,
			PaymentMethod: entities.MethodDummy,
		})
		require.NoError(t, err)

		// catalog price wins over the stale cart snapshot
		assert.Equal(t, "51.00", order.TotalPrice.StringFixed(2))
		assert.Empty(t, w.carts.carts[w.customer.ID].Items)
	})

	t.Run("empty order rejected", func(t *testing.T) {
		w := newOrderWorld(t)

		_, _, err := w.svc.Checkout(context.Background(), w.customerActor(), service.CheckoutParams{
			PaymentMethod: entities.MethodCOD,
		})
		require.ErrorIs(t, err, entities.ErrEmptyOrder)
	})

	t.Run("non-customer forbidden", func(t *testing.T) {
		w := newOrderWorld(t)

		_, _, err := w.svc.Checkout(context.Background(), w.sellerActor(), service.CheckoutParams{
			Lines:         []service.CheckoutLine{{ProductID: w.product.ID, Quantity: 1}},
			PaymentMethod: entities.MethodCOD,
		})
		require.ErrorIs(t, err, entities.ErrForbidden)
	})
}

func TestOrderService_UpdateOrder_Cancel(t *testing.T) {
	t.Run("cancel restores stock", func(t *testing.T) {
		w := newOrderWorld(t)
		order := w.checkoutCOD(t, 4)
		require.Equal(t, 6, w.products.products[w.product.ID].Stock)

		cancelled := entities.OrderCancelled
		updated, err := w.svc.UpdateOrder(context.Background(), adminActor(), order.ID, service.UpdateOrderParams{Status: &cancelled})
		require.NoError(t, err)

		assert.Equal(t, entities.OrderCancelled, updated.Status)
		assert.Equal(t, 10, w.products.products[w.product.ID].Stock)
	})

	t.Run("double cancel rejected and stock restored once", func(t *testing.T) {
		w := newOrderWorld(t)
		order := w.checkoutCOD(t, 4)

		cancelled := entities.OrderCancelled
		_, err := w.svc.UpdateOrder(context.Background(), adminActor(), order.ID, service.UpdateOrderParams{Status: &cancelled})
		require.NoError(t, err)

		_, err = w.svc.UpdateOrder(context.Background(), adminActor(), order.ID, service.UpdateOrderParams{Status: &cancelled})
		require.ErrorIs(t, err, entities.ErrInvalidTransition)
		assert.Equal(t, 10, w.products.products[w.product.ID].Stock)
	})

	t.Run("customer cancels own pending order only", func(t *testing.T) {
		w := newOrderWorld(t)
		order := w.checkoutCOD(t, 1)

		stranger := entities.Customer{ID: uuid.New(), UserID: uuid.New()}
		strangerActor := entities.Actor{User: entities.User{ID: stranger.UserID, Role: entities.RoleCustomer, IsActive: true}, Customer: &stranger}

		cancelled := entities.OrderCancelled
		_, err := w.svc.UpdateOrder(context.Background(), strangerActor, order.ID, service.UpdateOrderParams{Status: &cancelled})
		require.ErrorIs(t, err, entities.ErrForbidden)

		_, err = w.svc.UpdateOrder(context.Background(), w.customerActor(), order.ID, service.UpdateOrderParams{Status: &cancelled})
		require.NoError(t, err)
	})
}

func TestOrderService_UpdateOrder_Transitions(t *testing.T) {
	t.Run("seller confirms order containing its product", func(t *testing.T) {
		w := newOrderWorld(t)
		order := w.checkoutCOD(t, 1)

		confirmed := entities.OrderConfirmed
		updated, err := w.svc.UpdateOrder(context.Background(), w.sellerActor(), order.ID, service.UpdateOrderParams{Status: &confirmed})
		require.NoError(t, err)
		assert.Equal(t, entities.OrderConfirmed, updated.Status)
	})

	t.Run("unrelated seller cannot confirm", func(t *testing.T) {
		w := newOrderWorld(t)
		order := w.checkoutCOD(t, 1)

		other := entities.Seller{ID: uuid.New(), UserID: uuid.New(), Status: entities.ApprovalApproved}
		w.profiles.sellers[other.ID] = other
		otherActor := entities.Actor{User: entities.User{ID: other.UserID, Role: entities.RoleSeller, IsActive: true}, Seller: &other}

		confirmed := entities.OrderConfirmed
		_, err := w.svc.UpdateOrder(context.Background(), otherActor, order.ID, service.UpdateOrderParams{Status: &confirmed})
		require.ErrorIs(t, err, entities.ErrForbidden)
	})

	t.Run("shipping requires an assigned deliverer", func(t *testing.T) {
		w := newOrderWorld(t)
		order := w.checkoutCOD(t, 1)

		confirmed := entities.OrderConfirmed
		_, err := w.svc.UpdateOrder(context.Background(), adminActor(), order.ID, service.UpdateOrderParams{Status: &confirmed})
		require.NoError(t, err)

		shipped := entities.OrderShipped
		_, err = w.svc.UpdateOrder(context.Background(), adminActor(), order.ID, service.UpdateOrderParams{Status: &shipped})
		require.ErrorIs(t, err, entities.ErrDelivererRequired)
	})

	t.Run("assign then ship marks delivery in transit", func(t *testing.T) {
		w := newOrderWorld(t)
		order := w.checkoutCOD(t, 1)

		confirmed := entities.OrderConfirmed
		_, err := w.svc.UpdateOrder(context.Background(), adminActor(), order.ID, service.UpdateOrderParams{Status: &confirmed})
		require.NoError(t, err)

		shipped := entities.OrderShipped
		updated, err := w.svc.UpdateOrder(context.Background(), adminActor(), order.ID, service.UpdateOrderParams{
			Status:      &shipped,
			DelivererID: &w.deliverer.ID,
		})
		require.NoError(t, err)
		assert.Equal(t, entities.OrderShipped, updated.Status)
		require.NotNil(t, updated.AssignedDelivererID)
		assert.Equal(t, w.deliverer.ID, *updated.AssignedDelivererID)

		delivery, err := w.deliveries.GetDeliveryByOrderID(context.Background(), order.ID)
		require.NoError(t, err)
		assert.Equal(t, entities.DeliveryInTransit, delivery.Status)
	})

	t.Run("reassignment on a shipped order keeps the delivery in transit", func(t *testing.T) {
		w := newOrderWorld(t)
		order := w.checkoutCOD(t, 1)

		confirmed := entities.OrderConfirmed
		_, err := w.svc.UpdateOrder(context.Background(), adminActor(), order.ID, service.UpdateOrderParams{
			Status:      &confirmed,
			DelivererID: &w.deliverer.ID,
		})
		require.NoError(t, err)

		shipped := entities.OrderShipped
		_, err = w.svc.UpdateOrder(context.Background(), adminActor(), order.ID, service.UpdateOrderParams{Status: &shipped})
		require.NoError(t, err)

		replacement := entities.Deliverer{ID: uuid.New(), UserID: uuid.New(), Status: entities.ApprovalApproved}
		w.profiles.deliverers[replacement.ID] = replacement

		updated, err := w.svc.UpdateOrder(context.Background(), adminActor(), order.ID, service.UpdateOrderParams{
			DelivererID: &replacement.ID,
		})
		require.NoError(t, err)
		require.NotNil(t, updated.AssignedDelivererID)
		assert.Equal(t, replacement.ID, *updated.AssignedDelivererID)

		delivery, err := w.deliveries.GetDeliveryByOrderID(context.Background(), order.ID)
		require.NoError(t, err)
		assert.Equal(t, entities.DeliveryInTransit, delivery.Status)
		assert.Equal(t, replacement.ID, delivery.DelivererID)
	})

	t.Run("only admins assign deliverers", func(t *testing.T) {
		w := newOrderWorld(t)
		order := w.checkoutCOD(t, 1)

		_, err := w.svc.UpdateOrder(context.Background(), w.customerActor(), order.ID, service.UpdateOrderParams{
			DelivererID: &w.deliverer.ID,
		})
		require.ErrorIs(t, err, entities.ErrForbidden)
	})

	t.Run("unknown status rejected", func(t *testing.T) {
		w := newOrderWorld(t)
		order := w.checkoutCOD(t, 1)

		bogus := entities.OrderStatus("teleported")
		_, err := w.svc.UpdateOrder(context.Background(), adminActor(), order.ID, service.UpdateOrderParams{Status: &bogus})
		require.ErrorIs(t, err, entities.ErrInvalidTransition)
	})
}

func TestOrderService_GetOrder_Visibility(t *testing.T) {
	w := newOrderWorld(t)
	order := w.checkoutCOD(t, 1)

	_, err := w.svc.GetOrder(context.Background(), w.customerActor(), order.ID)
	require.NoError(t, err)

	_, err = w.svc.GetOrder(context.Background(), w.sellerActor(), order.ID)
	require.NoError(t, err)

	_, err = w.svc.GetOrder(context.Background(), adminActor(), order.ID)
	require.NoError(t, err)

	stranger := entities.Customer{ID: uuid.New(), UserID: uuid.New()}
	strangerActor := entities.Actor{User: entities.User{ID: stranger.UserID, Role: entities.RoleCustomer, IsActive: true}, Customer: &stranger}
	_, err = w.svc.GetOrder(context.Background(), strangerActor, order.ID)
	require.ErrorIs(t, err, entities.ErrForbidden)
}

func TestOrderService_ListOrders_Scoping(t *testing.T) {
	w := newOrderWorld(t)
	w.checkoutCOD(t, 1)

	// customer filter gets forced to the caller's own id
	other := uuid.New()
	_, _, err := w.svc.ListOrders(context.Background(), w.customerActor(), entities.OrderFilter{CustomerID: &other})
	require.NoError(t, err)
	require.NotNil(t, w.orders.lastFilter.CustomerID)
	assert.Equal(t, w.customer.ID, *w.orders.lastFilter.CustomerID)

	_, _, err = w.svc.ListOrders(context.Background(), w.sellerActor(), entities.OrderFilter{})
	require.NoError(t, err)
	require.NotNil(t, w.orders.lastFilter.SellerID)
	assert.Equal(t, w.seller.ID, *w.orders.lastFilter.SellerID)
}
