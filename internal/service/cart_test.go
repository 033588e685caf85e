package service_test

import (
	"context"
	"testing"

	"github.com/kirillov6/marketplace-service/internal/entities"
	"github.com/kirillov6/marketplace-service/internal/service"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cartWorld struct {
	carts    *fakeCartRepo
	products *fakeProductRepo
	profiles *fakeProfileRepo
	svc      interface {
		GetCart(ctx context.Context, customerID uuid.UUID) (entities.Cart, error)
		AddItem(ctx context.Context, customerID, productID uuid.UUID, quantity int) (entities.Cart, error)
		UpdateItem(ctx context.Context, customerID, productID uuid.UUID, quantity int) (entities.Cart, error)
		RemoveItem(ctx context.Context, customerID, productID uuid.UUID) (entities.Cart, error)
		ClearCart(ctx context.Context, customerID uuid.UUID) (entities.Cart, error)
	}

	customerID uuid.UUID
	product    entities.Product
}

func newCartWorld(t *testing.T) *cartWorld {
	t.Helper()

	w := &cartWorld{
		carts:      newFakeCartRepo(),
		products:   newFakeProductRepo(),
		profiles:   newFakeProfileRepo(),
		customerID: uuid.New(),
	}

	seller := entities.Seller{ID: uuid.New(), Status: entities.ApprovalApproved}
	w.profiles.sellers[seller.ID] = seller

	w.product = entities.Product{
		ID:       uuid.New(),
		SellerID: seller.ID,
		Name:     "gadget",
		Price:    decimal.RequireFromString("9.99"),
		Stock:    5,
	}
	w.products.products[w.product.ID] = w.product

	w.svc = service.NewCartService(testLogger(), fakeTxManager{}, w.carts, w.products, w.profiles)
	return w
}

func TestCartService_AddItem(t *testing.T) {
	t.Run("creates cart lazily and freezes price", func(t *testing.T) {
		w := newCartWorld(t)

		cart, err := w.svc.AddItem(context.Background(), w.customerID, w.product.ID, 2)
		require.NoError(t, err)

		require.Len(t, cart.Items, 1)
		assert.Equal(t, 2, cart.Items[0].Quantity)
		assert.Equal(t, "9.99", cart.Items[0].Price.StringFixed(2))
		assert.Equal(t, "19.98", cart.TotalPrice.StringFixed(2))
	})

	t.Run("merges quantity into existing line", func(t *testing.T) {
		w := newCartWorld(t)

		_, err := w.svc.AddItem(context.Background(), w.customerID, w.product.ID, 2)
		require.NoError(t, err)
		cart, err := w.svc.AddItem(context.Background(), w.customerID, w.product.ID, 3)
		require.NoError(t, err)

		require.Len(t, cart.Items, 1)
		assert.Equal(t, 5, cart.Items[0].Quantity)
	})

	t.Run("merged quantity must fit stock", func(t *testing.T) {
		w := newCartWorld(t)

		_, err := w.svc.AddItem(context.Background(), w.customerID, w.product.ID, 3)
		require.NoError(t, err)
		_, err = w.svc.AddItem(context.Background(), w.customerID, w.product.ID, 3)
		require.ErrorIs(t, err, entities.ErrInsufficientStock)
	})

	t.Run("suspended shop is unavailable", func(t *testing.T) {
		w := newCartWorld(t)
		seller := w.profiles.sellers[w.product.SellerID]
		seller.Status = entities.ApprovalRejected
		w.profiles.sellers[seller.ID] = seller

		_, err := w.svc.AddItem(context.Background(), w.customerID, w.product.ID, 1)
		require.ErrorIs(t, err, entities.ErrProductUnavailable)
	})
}

func TestCartService_UpdateItem(t *testing.T) {
	t.Run("sets quantity and refreshes price", func(t *testing.T) {
		w := newCartWorld(t)
		_, err := w.svc.AddItem(context.Background(), w.customerID, w.product.ID, 1)
		require.NoError(t, err)

		// price change between add and update
		p := w.products.products[w.product.ID]
		p.Price = decimal.RequireFromString("12.00")
		w.products.products[p.ID] = p

		cart, err := w.svc.UpdateItem(context.Background(), w.customerID, w.product.ID, 4)
		require.NoError(t, err)
		assert.Equal(t, 4, cart.Items[0].Quantity)
		assert.Equal(t, "48.00", cart.TotalPrice.StringFixed(2))
	})

	t.Run("zero quantity removes the line", func(t *testing.T) {
		w := newCartWorld(t)
		_, err := w.svc.AddItem(context.Background(), w.customerID, w.product.ID, 2)
		require.NoError(t, err)

		cart, err := w.svc.UpdateItem(context.Background(), w.customerID, w.product.ID, 0)
		require.NoError(t, err)
		assert.Empty(t, cart.Items)
		assert.True(t, cart.TotalPrice.IsZero())
	})

	t.Run("missing line", func(t *testing.T) {
		w := newCartWorld(t)
		_, err := w.svc.AddItem(context.Background(), w.customerID, w.product.ID, 1)
		require.NoError(t, err)

		_, err = w.svc.UpdateItem(context.Background(), w.customerID, uuid.New(), 1)
		require.ErrorIs(t, err, entities.ErrCartItemNotFound)
	})
}

func TestCartService_RemoveAndClear(t *testing.T) {
	w := newCartWorld(t)
	_, err := w.svc.AddItem(context.Background(), w.customerID, w.product.ID, 2)
	require.NoError(t, err)

	_, err = w.svc.RemoveItem(context.Background(), w.customerID, uuid.New())
	require.ErrorIs(t, err, entities.ErrCartItemNotFound)

	cart, err := w.svc.RemoveItem(context.Background(), w.customerID, w.product.ID)
	require.NoError(t, err)
	assert.Empty(t, cart.Items)

	_, err = w.svc.AddItem(context.Background(), w.customerID, w.product.ID, 1)
	require.NoError(t, err)
	cart, err = w.svc.ClearCart(context.Background(), w.customerID)
	require.NoError(t, err)
	assert.Empty(t, cart.Items)
	assert.True(t, cart.TotalPrice.IsZero())
}
