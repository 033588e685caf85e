package service_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"time"

	"github.com/kirillov6/marketplace-service/internal/entities"
	"github.com/kirillov6/marketplace-service/internal/gateway"

	"github.com/google/uuid"
)

// The production mocks are generated; the fakes here are small
// in-memory implementations so tests can assert on state (stock left,
// cart contents) instead of call counts.

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeTxManager struct{}

func (fakeTxManager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeUserRepo struct {
	users map[uuid.UUID]entities.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[uuid.UUID]entities.User)}
}

func (f *fakeUserRepo) CreateUser(_ context.Context, u entities.User) error {
	for _, existing := range f.users {
		if existing.Email == u.Email {
			return entities.ErrEmailTaken
		}
	}
	f.users[u.ID] = u
	return nil
}

func (f *fakeUserRepo) GetUserByEmail(_ context.Context, email string) (entities.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return entities.User{}, entities.ErrUserNotFound
}

func (f *fakeUserRepo) GetUserByID(_ context.Context, id uuid.UUID) (entities.User, error) {
	u, ok := f.users[id]
	if !ok {
		return entities.User{}, entities.ErrUserNotFound
	}
	return u, nil
}

type fakeProfileRepo struct {
	customers  map[uuid.UUID]entities.Customer
	sellers    map[uuid.UUID]entities.Seller
	deliverers map[uuid.UUID]entities.Deliverer
}

func newFakeProfileRepo() *fakeProfileRepo {
	return &fakeProfileRepo{
		customers:  make(map[uuid.UUID]entities.Customer),
		sellers:    make(map[uuid.UUID]entities.Seller),
		deliverers: make(map[uuid.UUID]entities.Deliverer),
	}
}

func (f *fakeProfileRepo) CreateCustomer(_ context.Context, c entities.Customer) error {
	f.customers[c.ID] = c
	return nil
}

func (f *fakeProfileRepo) CreateSeller(_ context.Context, s entities.Seller) error {
	f.sellers[s.ID] = s
	return nil
}

func (f *fakeProfileRepo) CreateDeliverer(_ context.Context, d entities.Deliverer) error {
	f.deliverers[d.ID] = d
	return nil
}

func (f *fakeProfileRepo) GetCustomerByUserID(_ context.Context, userID uuid.UUID) (entities.Customer, error) {
	for _, c := range f.customers {
		if c.UserID == userID {
			return c, nil
		}
	}
	return entities.Customer{}, entities.ErrProfileNotFound
}

func (f *fakeProfileRepo) GetSellerByUserID(_ context.Context, userID uuid.UUID) (entities.Seller, error) {
	for _, s := range f.sellers {
		if s.UserID == userID {
			return s, nil
		}
	}
	return entities.Seller{}, entities.ErrProfileNotFound
}

func (f *fakeProfileRepo) GetDelivererByUserID(_ context.Context, userID uuid.UUID) (entities.Deliverer, error) {
	for _, d := range f.deliverers {
		if d.UserID == userID {
			return d, nil
		}
	}
	return entities.Deliverer{}, entities.ErrProfileNotFound
}

func (f *fakeProfileRepo) GetSellerByID(_ context.Context, id uuid.UUID) (entities.Seller, error) {
	s, ok := f.sellers[id]
	if !ok {
		return entities.Seller{}, entities.ErrProfileNotFound
	}
	return s, nil
}

func (f *fakeProfileRepo) GetDelivererByID(_ context.Context, id uuid.UUID) (entities.Deliverer, error) {
	d, ok := f.deliverers[id]
	if !ok {
		return entities.Deliverer{}, entities.ErrDelivererNotFound
	}
	return d, nil
}

func (f *fakeProfileRepo) GetCustomerByID(_ context.Context, id uuid.UUID) (entities.Customer, error) {
	c, ok := f.customers[id]
	if !ok {
		return entities.Customer{}, entities.ErrProfileNotFound
	}
	return c, nil
}

func (f *fakeProfileRepo) SetSellerApproval(_ context.Context, id uuid.UUID, status entities.ApprovalStatus, reason string, verifiedAt *time.Time) error {
	s, ok := f.sellers[id]
	if !ok {
		return entities.ErrProfileNotFound
	}
	s.Status = status
	s.Reason = reason
	s.VerifiedAt = verifiedAt
	f.sellers[id] = s
	return nil
}

func (f *fakeProfileRepo) SetDelivererApproval(_ context.Context, id uuid.UUID, status entities.ApprovalStatus, reason string, verifiedAt *time.Time) error {
	d, ok := f.deliverers[id]
	if !ok {
		return entities.ErrProfileNotFound
	}
	d.Status = status
	d.Reason = reason
	d.VerifiedAt = verifiedAt
	f.deliverers[id] = d
	return nil
}

func (f *fakeProfileRepo) ListSellers(_ context.Context, _ entities.ProfileFilter) ([]entities.Seller, int, error) {
	out := make([]entities.Seller, 0, len(f.sellers))
	for _, s := range f.sellers {
		out = append(out, s)
	}
	return out, len(out), nil
}

func (f *fakeProfileRepo) ListDeliverers(_ context.Context, _ entities.ProfileFilter) ([]entities.Deliverer, int, error) {
	out := make([]entities.Deliverer, 0, len(f.deliverers))
	for _, d := range f.deliverers {
		out = append(out, d)
	}
	return out, len(out), nil
}

func (f *fakeProfileRepo) ListCustomers(_ context.Context, _ entities.ProfileFilter) ([]entities.Customer, int, error) {
	out := make([]entities.Customer, 0, len(f.customers))
	for _, c := range f.customers {
		out = append(out, c)
	}
	return out, len(out), nil
}

func (f *fakeUserRepo) ListUsers(_ context.Context, filter entities.UserFilter) ([]entities.User, int, error) {
	var out []entities.User
	for _, u := range f.users {
		if filter.Role != nil && u.Role != *filter.Role {
			continue
		}
		if filter.IsActive != nil && u.IsActive != *filter.IsActive {
			continue
		}
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	return out, len(out), nil
}

type fakeAddressRepo struct {
	addresses []entities.Address
	seq       int
}

func newFakeAddressRepo() *fakeAddressRepo { return &fakeAddressRepo{} }

func (f *fakeAddressRepo) ListAddresses(_ context.Context, customerID uuid.UUID) ([]entities.Address, error) {
	var out []entities.Address
	for _, a := range f.addresses {
		if a.CustomerID == customerID {
			out = append(out, a)
		}
	}
	// default first, then oldest first, matching the query ordering
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].IsDefault != out[j].IsDefault {
			return out[i].IsDefault
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (f *fakeAddressRepo) GetAddressByID(_ context.Context, id uuid.UUID) (entities.Address, error) {
	for _, a := range f.addresses {
		if a.ID == id {
			return a, nil
		}
	}
	return entities.Address{}, entities.ErrAddressNotFound
}

func (f *fakeAddressRepo) CreateAddress(_ context.Context, a entities.Address) error {
	f.seq++
	a.CreatedAt = time.Unix(int64(f.seq), 0)
	f.addresses = append(f.addresses, a)
	return nil
}

func (f *fakeAddressRepo) UpdateAddress(_ context.Context, a entities.Address) error {
	for i, existing := range f.addresses {
		if existing.ID == a.ID {
			a.CreatedAt = existing.CreatedAt
			f.addresses[i] = a
			return nil
		}
	}
	return entities.ErrAddressNotFound
}

func (f *fakeAddressRepo) DeleteAddress(_ context.Context, id uuid.UUID) error {
	for i, a := range f.addresses {
		if a.ID == id {
			f.addresses = append(f.addresses[:i], f.addresses[i+1:]...)
			return nil
		}
	}
	return entities.ErrAddressNotFound
}

func (f *fakeAddressRepo) UnsetDefaultAddresses(_ context.Context, customerID uuid.UUID) error {
	for i, a := range f.addresses {
		if a.CustomerID == customerID {
			f.addresses[i].IsDefault = false
		}
	}
	return nil
}

func (f *fakeAddressRepo) SetDefaultAddress(_ context.Context, id uuid.UUID) error {
	for i, a := range f.addresses {
		if a.ID == id {
			f.addresses[i].IsDefault = true
			return nil
		}
	}
	return entities.ErrAddressNotFound
}

type fakeCache struct {
	data map[string][]byte
}

func newFakeCache() *fakeCache { return &fakeCache{data: make(map[string][]byte)} }

func (f *fakeCache) Get(key string) ([]byte, bool) {
	v, ok := f.data[key]
	return v, ok
}
func (f *fakeCache) Set(key string, value []byte) { f.data[key] = value }
func (f *fakeCache) Delete(key string)            { delete(f.data, key) }

type fakeProductRepo struct {
	products map[uuid.UUID]entities.Product
}

func newFakeProductRepo() *fakeProductRepo {
	return &fakeProductRepo{products: make(map[uuid.UUID]entities.Product)}
}

func (f *fakeProductRepo) CreateProduct(_ context.Context, p entities.Product) error {
	f.products[p.ID] = p
	return nil
}

func (f *fakeProductRepo) GetProductByID(_ context.Context, id uuid.UUID) (entities.Product, error) {
	p, ok := f.products[id]
	if !ok {
		return entities.Product{}, entities.ErrProductNotFound
	}
	return p, nil
}

func (f *fakeProductRepo) UpdateProduct(_ context.Context, p entities.Product) error {
	if _, ok := f.products[p.ID]; !ok {
		return entities.ErrProductNotFound
	}
	f.products[p.ID] = p
	return nil
}

func (f *fakeProductRepo) DeleteProduct(_ context.Context, id uuid.UUID) error {
	if _, ok := f.products[id]; !ok {
		return entities.ErrProductNotFound
	}
	delete(f.products, id)
	return nil
}

func (f *fakeProductRepo) DecrementStock(_ context.Context, id uuid.UUID, qty int) error {
	p, ok := f.products[id]
	if !ok {
		return entities.ErrProductNotFound
	}
	if p.Stock < qty {
		return fmt.Errorf("%w: %q", entities.ErrInsufficientStock, p.Name)
	}
	p.Stock -= qty
	f.products[id] = p
	return nil
}

func (f *fakeProductRepo) RestoreStock(_ context.Context, id uuid.UUID, qty int) error {
	p, ok := f.products[id]
	if !ok {
		return entities.ErrProductNotFound
	}
	p.Stock += qty
	f.products[id] = p
	return nil
}

func (f *fakeProductRepo) ListProducts(_ context.Context, _ entities.ProductFilter) ([]entities.Product, int, error) {
	out := make([]entities.Product, 0, len(f.products))
	for _, p := range f.products {
		out = append(out, p)
	}
	return out, len(out), nil
}

type fakeCartRepo struct {
	carts map[uuid.UUID]entities.Cart // keyed by customer id
}

func newFakeCartRepo() *fakeCartRepo {
	return &fakeCartRepo{carts: make(map[uuid.UUID]entities.Cart)}
}

func (f *fakeCartRepo) GetCartByCustomerID(_ context.Context, customerID uuid.UUID) (entities.Cart, error) {
	c, ok := f.carts[customerID]
	if !ok {
		return entities.Cart{}, entities.ErrCartNotFound
	}
	return c, nil
}

func (f *fakeCartRepo) CreateCart(_ context.Context, customerID uuid.UUID) (entities.Cart, error) {
	if c, ok := f.carts[customerID]; ok {
		return c, nil
	}
	c := entities.Cart{ID: uuid.New(), CustomerID: customerID}
	f.carts[customerID] = c
	return c, nil
}

func (f *fakeCartRepo) SaveCart(_ context.Context, cart entities.Cart) error {
	f.carts[cart.CustomerID] = cart
	return nil
}

type fakeOrderRepo struct {
	orders     map[uuid.UUID]entities.Order
	products   *fakeProductRepo
	lastFilter entities.OrderFilter
}

func newFakeOrderRepo(products *fakeProductRepo) *fakeOrderRepo {
	return &fakeOrderRepo{orders: make(map[uuid.UUID]entities.Order), products: products}
}

func (f *fakeOrderRepo) CreateOrder(_ context.Context, o entities.Order) error {
	f.orders[o.ID] = o
	return nil
}

func (f *fakeOrderRepo) GetOrderByID(_ context.Context, id uuid.UUID) (entities.Order, error) {
	o, ok := f.orders[id]
	if !ok {
		return entities.Order{}, entities.ErrOrderNotFound
	}
	return o, nil
}

func (f *fakeOrderRepo) ListOrders(_ context.Context, filter entities.OrderFilter) ([]entities.Order, int, error) {
	f.lastFilter = filter
	out := make([]entities.Order, 0, len(f.orders))
	for _, o := range f.orders {
		out = append(out, o)
	}
	return out, len(out), nil
}

func (f *fakeOrderRepo) UpdateOrderStatus(_ context.Context, id uuid.UUID, status entities.OrderStatus) error {
	o, ok := f.orders[id]
	if !ok {
		return entities.ErrOrderNotFound
	}
	o.Status = status
	f.orders[id] = o
	return nil
}

func (f *fakeOrderRepo) SetOrderDeliverer(_ context.Context, id, delivererID uuid.UUID) error {
	o, ok := f.orders[id]
	if !ok {
		return entities.ErrOrderNotFound
	}
	o.AssignedDelivererID = &delivererID
	f.orders[id] = o
	return nil
}

func (f *fakeOrderRepo) SetGatewaySession(_ context.Context, id uuid.UUID, sessionID string) error {
	o, ok := f.orders[id]
	if !ok {
		return entities.ErrOrderNotFound
	}
	o.GatewaySessionID = sessionID
	f.orders[id] = o
	return nil
}

func (f *fakeOrderRepo) ContainsSellerProduct(_ context.Context, orderID, sellerID uuid.UUID) (bool, error) {
	o, ok := f.orders[orderID]
	if !ok {
		return false, nil
	}
	for _, it := range o.Items {
		if p, ok := f.products.products[it.ProductID]; ok && p.SellerID == sellerID {
			return true, nil
		}
	}
	return false, nil
}

type fakePaymentRepo struct {
	payments map[uuid.UUID]entities.Payment // keyed by order id
}

func newFakePaymentRepo() *fakePaymentRepo {
	return &fakePaymentRepo{payments: make(map[uuid.UUID]entities.Payment)}
}

func (f *fakePaymentRepo) CreatePayment(_ context.Context, p entities.Payment) error {
	f.payments[p.OrderID] = p
	return nil
}

func (f *fakePaymentRepo) GetPaymentByOrderID(_ context.Context, orderID uuid.UUID) (entities.Payment, error) {
	p, ok := f.payments[orderID]
	if !ok {
		return entities.Payment{}, entities.ErrPaymentNotFound
	}
	return p, nil
}

func (f *fakePaymentRepo) CompletePayment(_ context.Context, orderID uuid.UUID, transactionID string, paidAt time.Time) (bool, error) {
	p, ok := f.payments[orderID]
	if !ok {
		return false, entities.ErrPaymentNotFound
	}
	if p.Status != entities.PaymentPending {
		return false, nil
	}
	p.Status = entities.PaymentCompleted
	p.TransactionID = transactionID
	p.PaidAt = &paidAt
	f.payments[orderID] = p
	return true, nil
}

func (f *fakePaymentRepo) SetPaymentStatus(_ context.Context, orderID uuid.UUID, status entities.PaymentStatus) error {
	p, ok := f.payments[orderID]
	if !ok {
		return entities.ErrPaymentNotFound
	}
	p.Status = status
	f.payments[orderID] = p
	return nil
}

type fakeDeliveryRepo struct {
	deliveries map[uuid.UUID]entities.Delivery // keyed by delivery id
}

func newFakeDeliveryRepo() *fakeDeliveryRepo {
	return &fakeDeliveryRepo{deliveries: make(map[uuid.UUID]entities.Delivery)}
}

func (f *fakeDeliveryRepo) GetDeliveryByID(_ context.Context, id uuid.UUID) (entities.Delivery, error) {
	d, ok := f.deliveries[id]
	if !ok {
		return entities.Delivery{}, entities.ErrDeliveryNotFound
	}
	return d, nil
}

func (f *fakeDeliveryRepo) GetDeliveryByOrderID(_ context.Context, orderID uuid.UUID) (entities.Delivery, error) {
	for _, d := range f.deliveries {
		if d.OrderID == orderID {
			return d, nil
		}
	}
	return entities.Delivery{}, entities.ErrDeliveryNotFound
}

func (f *fakeDeliveryRepo) ListDeliveriesByDeliverer(_ context.Context, delivererID uuid.UUID) ([]entities.Delivery, error) {
	var out []entities.Delivery
	for _, d := range f.deliveries {
		if d.DelivererID == delivererID {
			out = append(out, d)
		}
	}
	return out, nil
}

func (f *fakeDeliveryRepo) ListDeliveries(_ context.Context) ([]entities.Delivery, error) {
	var out []entities.Delivery
	for _, d := range f.deliveries {
		out = append(out, d)
	}
	return out, nil
}

func (f *fakeDeliveryRepo) UpsertDelivery(_ context.Context, d entities.Delivery) error {
	for id, existing := range f.deliveries {
		if existing.OrderID == d.OrderID {
			existing.DelivererID = d.DelivererID
			existing.Status = d.Status
			f.deliveries[id] = existing
			return nil
		}
	}
	f.deliveries[d.ID] = d
	return nil
}

func (f *fakeDeliveryRepo) UpdateDeliveryStatus(_ context.Context, id uuid.UUID, status entities.DeliveryStatus, deliveryTime *time.Time) error {
	d, ok := f.deliveries[id]
	if !ok {
		return entities.ErrDeliveryNotFound
	}
	d.Status = status
	d.DeliveryTime = deliveryTime
	f.deliveries[id] = d
	return nil
}

type publishedEvent struct {
	kind string
	o    entities.Order
	prev entities.OrderStatus
}

type fakePublisher struct {
	events []publishedEvent
}

func (f *fakePublisher) OrderCreated(_ context.Context, o entities.Order) error {
	f.events = append(f.events, publishedEvent{kind: "created", o: o})
	return nil
}

func (f *fakePublisher) OrderStatusChanged(_ context.Context, o entities.Order, prev entities.OrderStatus) error {
	f.events = append(f.events, publishedEvent{kind: "status", o: o, prev: prev})
	return nil
}

type fakeGatewayClient struct {
	session gateway.Session
	err     error
	calls   int
}

func (f *fakeGatewayClient) CreateCheckoutSession(_ context.Context, _ gateway.SessionParams) (gateway.Session, error) {
	f.calls++
	return f.session, f.err
}
