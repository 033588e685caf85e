package service_test

import (
	"context"
	"testing"

	"github.com/kirillov6/marketplace-service/internal/entities"
	"github.com/kirillov6/marketplace-service/internal/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type addressWorld struct {
	addresses *fakeAddressRepo
	svc       interface {
		ListAddresses(ctx context.Context, customerID uuid.UUID) ([]entities.Address, error)
		AddAddress(ctx context.Context, customerID uuid.UUID, p service.AddAddressParams) ([]entities.Address, error)
		UpdateAddress(ctx context.Context, customerID, addressID uuid.UUID, p service.UpdateAddressParams) ([]entities.Address, error)
		DeleteAddress(ctx context.Context, customerID, addressID uuid.UUID) ([]entities.Address, error)
		SetDefaultAddress(ctx context.Context, customerID, addressID uuid.UUID) ([]entities.Address, error)
	}

	customerID uuid.UUID
}

func newAddressWorld(t *testing.T) *addressWorld {
	t.Helper()

	w := &addressWorld{
		addresses:  newFakeAddressRepo(),
		customerID: uuid.New(),
	}
	w.svc = service.NewAddressService(testLogger(), fakeTxManager{}, w.addresses)
	return w
}

func (w *addressWorld) add(t *testing.T, street string, isDefault bool) entities.Address {
	t.Helper()

	book, err := w.svc.AddAddress(context.Background(), w.customerID, service.AddAddressParams{
		Street:     street,
		City:       "Springfield",
		PostalCode: "10001",
		Country:    "US",
		IsDefault:  isDefault,
	})
	require.NoError(t, err)

	for _, a := range book {
		if a.Street == street {
			return a
		}
	}
	t.Fatalf("address %q not in book", street)
	return entities.Address{}
}

func TestAddressService_AddAddress(t *testing.T) {
	t.Run("first address becomes the default", func(t *testing.T) {
		w := newAddressWorld(t)

		first := w.add(t, "1 Elm St", false)
		assert.True(t, first.IsDefault)
	})

	t.Run("explicit default displaces the current one", func(t *testing.T) {
		w := newAddressWorld(t)
		w.add(t, "1 Elm St", false)
		w.add(t, "2 Oak Ave", true)

		book, err := w.svc.ListAddresses(context.Background(), w.customerID)
		require.NoError(t, err)
		require.Len(t, book, 2)
		assert.Equal(t, "2 Oak Ave", book[0].Street)
		assert.True(t, book[0].IsDefault)
		assert.False(t, book[1].IsDefault)
	})

	t.Run("non-default addition keeps the existing default", func(t *testing.T) {
		w := newAddressWorld(t)
		w.add(t, "1 Elm St", false)
		second := w.add(t, "2 Oak Ave", false)

		assert.False(t, second.IsDefault)
		book, err := w.svc.ListAddresses(context.Background(), w.customerID)
		require.NoError(t, err)
		assert.Equal(t, "1 Elm St", book[0].Street)
	})
}

func TestAddressService_UpdateAddress(t *testing.T) {
	t.Run("patches fields and can promote to default", func(t *testing.T) {
		w := newAddressWorld(t)
		w.add(t, "1 Elm St", false)
		second := w.add(t, "2 Oak Ave", false)

		street := "2 Oak Avenue"
		isDefault := true
		book, err := w.svc.UpdateAddress(context.Background(), w.customerID, second.ID, service.UpdateAddressParams{
			Street:    &street,
			IsDefault: &isDefault,
		})
		require.NoError(t, err)

		require.Len(t, book, 2)
		assert.Equal(t, "2 Oak Avenue", book[0].Street)
		assert.True(t, book[0].IsDefault)
		assert.False(t, book[1].IsDefault)
	})

	t.Run("another customer's address is not found", func(t *testing.T) {
		w := newAddressWorld(t)
		foreign := w.add(t, "1 Elm St", false)

		street := "hijacked"
		_, err := w.svc.UpdateAddress(context.Background(), uuid.New(), foreign.ID, service.UpdateAddressParams{
			Street: &street,
		})
		require.ErrorIs(t, err, entities.ErrAddressNotFound)
	})
}

func TestAddressService_DeleteAddress(t *testing.T) {
	t.Run("deleting the default promotes the oldest remaining", func(t *testing.T) {
		w := newAddressWorld(t)
		first := w.add(t, "1 Elm St", false)
		w.add(t, "2 Oak Ave", false)
		w.add(t, "3 Pine Rd", false)

		book, err := w.svc.DeleteAddress(context.Background(), w.customerID, first.ID)
		require.NoError(t, err)

		require.Len(t, book, 2)
		assert.Equal(t, "2 Oak Ave", book[0].Street)
		assert.True(t, book[0].IsDefault)
	})

	t.Run("deleting a non-default leaves the default alone", func(t *testing.T) {
		w := newAddressWorld(t)
		w.add(t, "1 Elm St", false)
		second := w.add(t, "2 Oak Ave", false)

		book, err := w.svc.DeleteAddress(context.Background(), w.customerID, second.ID)
		require.NoError(t, err)

		require.Len(t, book, 1)
		assert.Equal(t, "1 Elm St", book[0].Street)
		assert.True(t, book[0].IsDefault)
	})

	t.Run("another customer's address is not found", func(t *testing.T) {
		w := newAddressWorld(t)
		foreign := w.add(t, "1 Elm St", false)

		_, err := w.svc.DeleteAddress(context.Background(), uuid.New(), foreign.ID)
		require.ErrorIs(t, err, entities.ErrAddressNotFound)
	})
}

func TestAddressService_SetDefaultAddress(t *testing.T) {
	w := newAddressWorld(t)
	w.add(t, "1 Elm St", false)
	second := w.add(t, "2 Oak Ave", false)

	book, err := w.svc.SetDefaultAddress(context.Background(), w.customerID, second.ID)
	require.NoError(t, err)

	require.Len(t, book, 2)
	assert.Equal(t, "2 Oak Ave", book[0].Street)
	assert.True(t, book[0].IsDefault)
	assert.False(t, book[1].IsDefault)

	_, err = w.svc.SetDefaultAddress(context.Background(), uuid.New(), second.ID)
	require.ErrorIs(t, err, entities.ErrAddressNotFound)
}
