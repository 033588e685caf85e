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

type adminWorld struct {
	users    *fakeUserRepo
	profiles *fakeProfileRepo
	cache    *fakeCache
	svc      interface {
		ApproveSeller(ctx context.Context, id uuid.UUID) (entities.Seller, error)
		ListCustomers(ctx context.Context, filter entities.ProfileFilter) ([]entities.Customer, int, error)
		GetCustomer(ctx context.Context, id uuid.UUID) (entities.Customer, error)
		ListUsers(ctx context.Context, filter entities.UserFilter) ([]entities.UserAccount, int, error)
		GetUser(ctx context.Context, id uuid.UUID) (entities.UserAccount, error)
	}
}

func newAdminWorld(t *testing.T) *adminWorld {
	t.Helper()

	w := &adminWorld{
		users:    newFakeUserRepo(),
		profiles: newFakeProfileRepo(),
		cache:    newFakeCache(),
	}
	w.svc = service.NewAdminService(testLogger(), w.profiles, w.users, w.cache)
	return w
}

func (w *adminWorld) addUser(email string, role entities.Role) entities.User {
	u := entities.User{ID: uuid.New(), Email: email, Role: role, IsActive: true}
	w.users.users[u.ID] = u
	return u
}

func TestAdminService_UserDirectory(t *testing.T) {
	t.Run("pairs each user with its role profile", func(t *testing.T) {
		w := newAdminWorld(t)

		customerUser := w.addUser("alice@shop.test", entities.RoleCustomer)
		customer := entities.Customer{ID: uuid.New(), UserID: customerUser.ID, FullName: "Alice"}
		w.profiles.customers[customer.ID] = customer

		sellerUser := w.addUser("bob@shop.test", entities.RoleSeller)
		seller := entities.Seller{ID: uuid.New(), UserID: sellerUser.ID, ShopName: "Bob's"}
		w.profiles.sellers[seller.ID] = seller

		w.addUser("root@shop.test", entities.RoleAdmin)

		accounts, total, err := w.svc.ListUsers(context.Background(), entities.UserFilter{})
		require.NoError(t, err)
		assert.Equal(t, 3, total)
		require.Len(t, accounts, 3)

		byEmail := make(map[string]entities.UserAccount, len(accounts))
		for _, a := range accounts {
			byEmail[a.User.Email] = a
		}

		require.NotNil(t, byEmail["alice@shop.test"].Customer)
		assert.Equal(t, "Alice", byEmail["alice@shop.test"].Customer.FullName)
		require.NotNil(t, byEmail["bob@shop.test"].Seller)
		assert.Equal(t, "Bob's", byEmail["bob@shop.test"].Seller.ShopName)
		assert.Nil(t, byEmail["root@shop.test"].Customer)
		assert.Nil(t, byEmail["root@shop.test"].Seller)
		assert.Nil(t, byEmail["root@shop.test"].Deliverer)
	})

	t.Run("filters by role", func(t *testing.T) {
		w := newAdminWorld(t)
		w.addUser("alice@shop.test", entities.RoleCustomer)
		w.addUser("bob@shop.test", entities.RoleSeller)

		role := entities.RoleSeller
		accounts, total, err := w.svc.ListUsers(context.Background(), entities.UserFilter{Role: &role})
		require.NoError(t, err)
		assert.Equal(t, 1, total)
		require.Len(t, accounts, 1)
		assert.Equal(t, "bob@shop.test", accounts[0].User.Email)
	})

	t.Run("tolerates a user without a profile row", func(t *testing.T) {
		w := newAdminWorld(t)
		orphan := w.addUser("ghost@shop.test", entities.RoleCustomer)

		account, err := w.svc.GetUser(context.Background(), orphan.ID)
		require.NoError(t, err)
		assert.Equal(t, orphan.ID, account.User.ID)
		assert.Nil(t, account.Customer)
	})

	t.Run("unknown user", func(t *testing.T) {
		w := newAdminWorld(t)

		_, err := w.svc.GetUser(context.Background(), uuid.New())
		require.ErrorIs(t, err, entities.ErrUserNotFound)
	})
}

func TestAdminService_Customers(t *testing.T) {
	w := newAdminWorld(t)
	user := w.addUser("alice@shop.test", entities.RoleCustomer)
	customer := entities.Customer{ID: uuid.New(), UserID: user.ID, FullName: "Alice"}
	w.profiles.customers[customer.ID] = customer

	customers, total, err := w.svc.ListCustomers(context.Background(), entities.ProfileFilter{})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, customers, 1)

	got, err := w.svc.GetCustomer(context.Background(), customer.ID)
	require.NoError(t, err)
	assert.Equal(t, "Alice", got.FullName)

	_, err = w.svc.GetCustomer(context.Background(), uuid.New())
	require.ErrorIs(t, err, entities.ErrProfileNotFound)
}

func TestAdminService_ApprovalEvictsCachedActor(t *testing.T) {
	w := newAdminWorld(t)
	user := w.addUser("bob@shop.test", entities.RoleSeller)
	seller := entities.Seller{ID: uuid.New(), UserID: user.ID, Status: entities.ApprovalPending}
	w.profiles.sellers[seller.ID] = seller
	w.cache.Set(user.ID.String(), []byte("stale actor"))

	approved, err := w.svc.ApproveSeller(context.Background(), seller.ID)
	require.NoError(t, err)
	assert.Equal(t, entities.ApprovalApproved, approved.Status)

	_, cached := w.cache.Get(user.ID.String())
	assert.False(t, cached, "approval must drop the cached actor")
}
