package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/kirillov6/marketplace-service/internal/entities"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type OrderRepo interface {
	CreateOrder(ctx context.Context, o entities.Order) error
	GetOrderByID(ctx context.Context, id uuid.UUID) (entities.Order, error)
	ListOrders(ctx context.Context, filter entities.OrderFilter) ([]entities.Order, int, error)
	UpdateOrderStatus(ctx context.Context, id uuid.UUID, status entities.OrderStatus) error
	SetOrderDeliverer(ctx context.Context, id, delivererID uuid.UUID) error
	ContainsSellerProduct(ctx context.Context, orderID, sellerID uuid.UUID) (bool, error)
}

type PaymentRepo interface {
	CreatePayment(ctx context.Context, p entities.Payment) error
	GetPaymentByOrderID(ctx context.Context, orderID uuid.UUID) (entities.Payment, error)
	CompletePayment(ctx context.Context, orderID uuid.UUID, transactionID string, paidAt time.Time) (bool, error)
	SetPaymentStatus(ctx context.Context, orderID uuid.UUID, status entities.PaymentStatus) error
}

type DeliveryRepo interface {
	GetDeliveryByID(ctx context.Context, id uuid.UUID) (entities.Delivery, error)
	GetDeliveryByOrderID(ctx context.Context, orderID uuid.UUID) (entities.Delivery, error)
	ListDeliveriesByDeliverer(ctx context.Context, delivererID uuid.UUID) ([]entities.Delivery, error)
	ListDeliveries(ctx context.Context) ([]entities.Delivery, error)
	UpsertDelivery(ctx context.Context, d entities.Delivery) error
	UpdateDeliveryStatus(ctx context.Context, id uuid.UUID, status entities.DeliveryStatus, deliveryTime *time.Time) error
}

type DelivererProvider interface {
	GetDelivererByID(ctx context.Context, id uuid.UUID) (entities.Deliverer, error)
}

type EventPublisher interface {
	OrderCreated(ctx context.Context, o entities.Order) error
	OrderStatusChanged(ctx context.Context, o entities.Order, prev entities.OrderStatus) error
}

type orderService struct {
	logger     *slog.Logger
	txManager  TxManager
	orders     OrderRepo
	products   ProductRepo
	carts      CartRepo
	payments   PaymentRepo
	deliveries DeliveryRepo
	sellers    SellerProvider
	deliverers DelivererProvider
	events     EventPublisher
}

func NewOrderService(
	logger *slog.Logger,
	txManager TxManager,
	orders OrderRepo,
	products ProductRepo,
	carts CartRepo,
	payments PaymentRepo,
	deliveries DeliveryRepo,
	sellers SellerProvider,
	deliverers DelivererProvider,
	events EventPublisher,
) *orderService {
	return &orderService{
		logger:     logger.With(slog.String("service", "order")),
		txManager:  txManager,
		orders:     orders,
		products:   products,
		carts:      carts,
		payments:   payments,
		deliveries: deliveries,
		sellers:    sellers,
		deliverers: deliverers,
		events:     events,
	}
}

type CheckoutLine struct {
	ProductID uuid.UUID
	Quantity  int
}

type CheckoutParams struct {
	FromCart        bool
	Lines           []CheckoutLine
	PaymentMethod   entities.PaymentMethod
	ShippingAddress string
}

// Checkout places an order atomically: lines are re-priced from the
// catalog, the order and its payment are created, and stock is
// decremented with a guard so two concurrent checkouts can never
// oversell. Non-gateway methods complete the payment immediately.
func (s *orderService) Checkout(ctx context.Context, actor entities.Actor, p CheckoutParams) (entities.Order, entities.Payment, error) {
	if actor.Customer == nil {
		return entities.Order{}, entities.Payment{}, entities.ErrForbidden
	}
	if !p.PaymentMethod.Valid() {
		return entities.Order{}, entities.Payment{}, fmt.Errorf("unknown payment method %q", p.PaymentMethod)
	}

	customer := *actor.Customer
	address := p.ShippingAddress
	if address == "" {
		address = customer.Address
	}

	var (
		order   entities.Order
		payment entities.Payment
	)

	err := s.txManager.Do(ctx, func(ctx context.Context) error {
		lines := p.Lines
		var cart entities.Cart
		if p.FromCart {
			var err error
			cart, err = s.carts.GetCartByCustomerID(ctx, customer.ID)
			if err != nil {
				return err
			}
			lines = lines[:0]
			for _, it := range cart.Items {
				lines = append(lines, CheckoutLine{ProductID: it.ProductID, Quantity: it.Quantity})
			}
		}
		if len(lines) == 0 {
			return entities.ErrEmptyOrder
		}

		items, total, err := priceLines(ctx, s.products, s.sellers, lines)
		if err != nil {
			return err
		}

		order = entities.Order{
			ID:              uuid.New(),
			CustomerID:      customer.ID,
			Items:           items,
			TotalPrice:      total,
			Status:          entities.OrderPending,
			ShippingAddress: address,
			PaymentMethod:   p.PaymentMethod,
		}
		if err := s.orders.CreateOrder(ctx, order); err != nil {
			return err
		}

		payment = entities.Payment{
			ID:         uuid.New(),
			OrderID:    order.ID,
			CustomerID: customer.ID,
			Amount:     total,
			Method:     p.PaymentMethod,
			Status:     entities.PaymentPending,
		}
		if !p.PaymentMethod.ViaGateway() {
			now := time.Now()
			payment.Status = entities.PaymentCompleted
			payment.TransactionID = entities.NewTransactionID()
			payment.PaidAt = &now
		}
		if err := s.payments.CreatePayment(ctx, payment); err != nil {
			return err
		}

		// the guarded update rolls everything back on a lost race
		for _, it := range items {
			if err := s.products.DecrementStock(ctx, it.ProductID, it.Quantity); err != nil {
				return err
			}
		}

		if p.FromCart {
			cart.Clear()
			return s.carts.SaveCart(ctx, cart)
		}
		return nil
	})
	if err != nil {
		return entities.Order{}, entities.Payment{}, err
	}

	if err := s.events.OrderCreated(ctx, order); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish order created", slog.Any("error", err))
	}

	s.logger.InfoContext(ctx, "order placed",
		slog.String("order_id", order.ID.String()),
		slog.String("customer_id", customer.ID.String()),
		slog.String("total", order.TotalPrice.String()),
	)
	return order, payment, nil
}

// priceLines resolves every line against the catalog: the product must
// exist, its seller must be approved, and the requested quantity must
// fit the current stock. Unit prices are frozen here. Shared by the
// direct checkout and the gateway session paths.
func priceLines(ctx context.Context, products ProductRepo, sellers SellerProvider, lines []CheckoutLine) ([]entities.OrderItem, decimal.Decimal, error) {
	items := make([]entities.OrderItem, 0, len(lines))
	total := decimal.Zero

	for _, line := range lines {
		if line.Quantity < 1 {
			return nil, decimal.Zero, fmt.Errorf("%w: quantity must be positive", entities.ErrInvalidProduct)
		}

		product, err := products.GetProductByID(ctx, line.ProductID)
		if err != nil {
			return nil, decimal.Zero, err
		}

		seller, err := sellers.GetSellerByID(ctx, product.SellerID)
		if err != nil {
			return nil, decimal.Zero, err
		}
		if seller.Status != entities.ApprovalApproved {
			return nil, decimal.Zero, fmt.Errorf("%w: %q", entities.ErrProductUnavailable, product.Name)
		}

		if line.Quantity > product.Stock {
			return nil, decimal.Zero, fmt.Errorf("%w: %d of %q available", entities.ErrInsufficientStock, product.Stock, product.Name)
		}

		item := entities.OrderItem{
			ProductID: product.ID,
			Quantity:  line.Quantity,
			Price:     product.Price,
		}
		items = append(items, item)
		total = total.Add(item.Subtotal())
	}
	return items, total, nil
}

func (s *orderService) GetOrder(ctx context.Context, actor entities.Actor, id uuid.UUID) (entities.Order, error) {
	order, err := s.orders.GetOrderByID(ctx, id)
	if err != nil {
		return entities.Order{}, err
	}

	sellsInOrder, err := s.sellsInOrder(ctx, actor, order.ID)
	if err != nil {
		return entities.Order{}, err
	}
	if !actor.CanViewOrder(order, sellsInOrder) {
		return entities.Order{}, entities.ErrForbidden
	}
	return order, nil
}

// ListOrders scopes the filter to what the actor may see. Admins pass
// the filter through untouched.
func (s *orderService) ListOrders(ctx context.Context, actor entities.Actor, filter entities.OrderFilter) ([]entities.Order, int, error) {
	switch {
	case actor.IsAdmin():
	case actor.Customer != nil:
		id := actor.Customer.ID
		filter.CustomerID = &id
	case actor.Seller != nil:
		id := actor.Seller.ID
		filter.SellerID = &id
	case actor.Deliverer != nil:
		id := actor.Deliverer.ID
		filter.DelivererID = &id
	default:
		return nil, 0, entities.ErrForbidden
	}

	filter.Page = filter.Page.Normalize()
	return s.orders.ListOrders(ctx, filter)
}

type UpdateOrderParams struct {
	Status      *entities.OrderStatus
	DelivererID *uuid.UUID
}

// UpdateOrder applies a deliverer assignment and/or a status
// transition in one transaction. Capability checks live on the actor;
// the transition table lives on the status type.
func (s *orderService) UpdateOrder(ctx context.Context, actor entities.Actor, id uuid.UUID, p UpdateOrderParams) (entities.Order, error) {
	var (
		order entities.Order
		prev  entities.OrderStatus
	)

	err := s.txManager.Do(ctx, func(ctx context.Context) error {
		var err error
		order, err = s.orders.GetOrderByID(ctx, id)
		if err != nil {
			return err
		}
		prev = order.Status

		if p.DelivererID != nil {
			if err := s.assignDeliverer(ctx, actor, &order, *p.DelivererID); err != nil {
				return err
			}
		}

		if p.Status != nil {
			if err := s.transition(ctx, actor, &order, *p.Status); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return entities.Order{}, err
	}

	if order.Status != prev {
		if err := s.events.OrderStatusChanged(ctx, order, prev); err != nil {
			s.logger.ErrorContext(ctx, "failed to publish status change", slog.Any("error", err))
		}
	}
	return order, nil
}

func (s *orderService) assignDeliverer(ctx context.Context, actor entities.Actor, order *entities.Order, delivererID uuid.UUID) error {
	if !actor.CanAssignDeliverer(*order) {
		return entities.ErrForbidden
	}

	deliverer, err := s.deliverers.GetDelivererByID(ctx, delivererID)
	if err != nil {
		return err
	}
	if deliverer.Status != entities.ApprovalApproved {
		return fmt.Errorf("%w: deliverer is %s", entities.ErrProfileNotApproved, deliverer.Status)
	}

	// reassignment is allowed until the delivery completes
	existing, err := s.deliveries.GetDeliveryByOrderID(ctx, order.ID)
	switch {
	case err == nil:
		if existing.Status == entities.DeliveryDelivered {
			return entities.ErrDeliveryCompleted
		}
	case !errors.Is(err, entities.ErrDeliveryNotFound):
		return err
	}

	if err := s.orders.SetOrderDeliverer(ctx, order.ID, deliverer.ID); err != nil {
		return err
	}
	// reassignment on a shipped order must not rewind the delivery
	status := entities.DeliveryPending
	if order.Status == entities.OrderShipped {
		status = entities.DeliveryInTransit
	}
	err = s.deliveries.UpsertDelivery(ctx, entities.Delivery{
		ID:          uuid.New(),
		OrderID:     order.ID,
		DelivererID: deliverer.ID,
		Status:      status,
	})
	if err != nil {
		return err
	}

	order.AssignedDelivererID = &deliverer.ID
	return nil
}

func (s *orderService) transition(ctx context.Context, actor entities.Actor, order *entities.Order, to entities.OrderStatus) error {
	if !to.Valid() {
		return fmt.Errorf("%w: unknown status %q", entities.ErrInvalidTransition, to)
	}
	if !order.Status.CanTransitionTo(to) {
		return fmt.Errorf("%w: %s -> %s", entities.ErrInvalidTransition, order.Status, to)
	}

	switch to {
	case entities.OrderCancelled:
		if !actor.CanCancelOrder(*order) {
			return entities.ErrForbidden
		}
		// cancellation releases every reserved unit
		for _, it := range order.Items {
			if err := s.products.RestoreStock(ctx, it.ProductID, it.Quantity); err != nil {
				return err
			}
		}

	case entities.OrderConfirmed:
		sellsInOrder, err := s.sellsInOrder(ctx, actor, order.ID)
		if err != nil {
			return err
		}
		if !actor.CanConfirmOrder(*order, sellsInOrder) {
			return entities.ErrForbidden
		}

	case entities.OrderShipped, entities.OrderDelivered:
		if !actor.IsAdmin() {
			return entities.ErrForbidden
		}
		if order.AssignedDelivererID == nil {
			return entities.ErrDelivererRequired
		}
	}

	if err := s.orders.UpdateOrderStatus(ctx, order.ID, to); err != nil {
		return err
	}

	if to == entities.OrderShipped {
		if err := s.markDelivery(ctx, order.ID, entities.DeliveryInTransit, nil); err != nil {
			return err
		}
	}
	if to == entities.OrderDelivered {
		now := time.Now()
		if err := s.markDelivery(ctx, order.ID, entities.DeliveryDelivered, &now); err != nil {
			return err
		}
	}

	order.Status = to
	return nil
}

func (s *orderService) markDelivery(ctx context.Context, orderID uuid.UUID, status entities.DeliveryStatus, deliveryTime *time.Time) error {
	delivery, err := s.deliveries.GetDeliveryByOrderID(ctx, orderID)
	if errors.Is(err, entities.ErrDeliveryNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	return s.deliveries.UpdateDeliveryStatus(ctx, delivery.ID, status, deliveryTime)
}

func (s *orderService) sellsInOrder(ctx context.Context, actor entities.Actor, orderID uuid.UUID) (bool, error) {
	if actor.Seller == nil {
		return false, nil
	}
	return s.orders.ContainsSellerProduct(ctx, orderID, actor.Seller.ID)
}
