package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/kirillov6/marketplace-service/internal/config"
	"github.com/kirillov6/marketplace-service/internal/entities"
	"github.com/kirillov6/marketplace-service/internal/gateway"

	"github.com/google/uuid"
)

type GatewayClient interface {
	CreateCheckoutSession(ctx context.Context, params gateway.SessionParams) (gateway.Session, error)
}

type OrderGatewayRepo interface {
	OrderRepo
	SetGatewaySession(ctx context.Context, id uuid.UUID, sessionID string) error
}

type paymentService struct {
	logger    *slog.Logger
	txManager TxManager
	orders    OrderGatewayRepo
	payments  PaymentRepo
	products  ProductRepo
	carts     CartRepo
	sellers   SellerProvider
	gateway   GatewayClient
	events    EventPublisher
	cfg       config.Gateway
}

func NewPaymentService(
	logger *slog.Logger,
	txManager TxManager,
	orders OrderGatewayRepo,
	payments PaymentRepo,
	products ProductRepo,
	carts CartRepo,
	sellers SellerProvider,
	gatewayClient GatewayClient,
	events EventPublisher,
	cfg config.Gateway,
) *paymentService {
	return &paymentService{
		logger:    logger.With(slog.String("service", "payment")),
		txManager: txManager,
		orders:    orders,
		payments:  payments,
		products:  products,
		carts:     carts,
		sellers:   sellers,
		gateway:   gatewayClient,
		events:    events,
		cfg:       cfg,
	}
}

func (s *paymentService) GetPaymentByOrder(ctx context.Context, actor entities.Actor, orderID uuid.UUID) (entities.Payment, error) {
	payment, err := s.payments.GetPaymentByOrderID(ctx, orderID)
	if err != nil {
		return entities.Payment{}, err
	}
	if !actor.IsAdmin() && payment.CustomerID != actor.CustomerID() {
		return entities.Payment{}, entities.ErrForbidden
	}
	return payment, nil
}

type CheckoutSessionResult struct {
	OrderID   uuid.UUID
	SessionID string
	URL       string
}

// CreateCheckoutSession places a pending card order and redirects the
// customer to the hosted payment page. Stock stays untouched until the
// gateway confirms the payment through the webhook.
func (s *paymentService) CreateCheckoutSession(ctx context.Context, actor entities.Actor, p CheckoutParams) (CheckoutSessionResult, error) {
	if actor.Customer == nil {
		return CheckoutSessionResult{}, entities.ErrForbidden
	}
	customer := *actor.Customer

	address := p.ShippingAddress
	if address == "" {
		address = customer.Address
	}

	var order entities.Order

	err := s.txManager.Do(ctx, func(ctx context.Context) error {
		lines := p.Lines
		if p.FromCart {
			cart, err := s.carts.GetCartByCustomerID(ctx, customer.ID)
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
			PaymentMethod:   entities.MethodCard,
		}
		if err := s.orders.CreateOrder(ctx, order); err != nil {
			return err
		}

		return s.payments.CreatePayment(ctx, entities.Payment{
			ID:         uuid.New(),
			OrderID:    order.ID,
			CustomerID: customer.ID,
			Amount:     total,
			Method:     entities.MethodCard,
			Status:     entities.PaymentPending,
		})
	})
	if err != nil {
		return CheckoutSessionResult{}, err
	}

	// network call stays outside the transaction; a gateway failure
	// leaves a pending order the customer can retry
	session, err := s.createSession(ctx, actor.User.Email, order)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to create gateway session",
			slog.String("order_id", order.ID.String()),
			slog.Any("error", err),
		)
		return CheckoutSessionResult{}, err
	}

	if err := s.orders.SetGatewaySession(ctx, order.ID, session.ID); err != nil {
		return CheckoutSessionResult{}, err
	}

	s.logger.InfoContext(ctx, "checkout session created",
		slog.String("order_id", order.ID.String()),
		slog.String("session_id", session.ID),
	)
	return CheckoutSessionResult{OrderID: order.ID, SessionID: session.ID, URL: session.URL}, nil
}

func (s *paymentService) createSession(ctx context.Context, email string, order entities.Order) (gateway.Session, error) {
	lineItems := make([]gateway.LineItem, 0, len(order.Items))
	for _, it := range order.Items {
		product, err := s.products.GetProductByID(ctx, it.ProductID)
		if err != nil {
			return gateway.Session{}, err
		}
		item := gateway.LineItem{
			Name:       product.Name,
			UnitAmount: it.Price.Shift(2).IntPart(),
			Quantity:   it.Quantity,
			Currency:   "usd",
		}
		if len(product.Images) > product.PrimaryImage {
			item.Image = product.Images[product.PrimaryImage]
		}
		lineItems = append(lineItems, item)
	}

	return s.gateway.CreateCheckoutSession(ctx, gateway.SessionParams{
		LineItems:         lineItems,
		SuccessURL:        s.cfg.SuccessURL,
		CancelURL:         s.cfg.CancelURL,
		ClientReferenceID: order.ID.String(),
		CustomerEmail:     email,
		Metadata:          map[string]string{"order_id": order.ID.String()},
	})
}

// HandleWebhook verifies the signature and completes the payment. The
// completion update is guarded on pending status, so replayed events
// are no-ops. Signature failures are the only errors the caller should
// surface to the gateway.
func (s *paymentService) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	event, err := gateway.ConstructEvent(payload, signature, s.cfg.WebhookSecret)
	if err != nil {
		return err
	}

	if event.Type != gateway.EventCheckoutCompleted {
		s.logger.DebugContext(ctx, "ignoring gateway event", slog.String("type", event.Type))
		return nil
	}

	orderID, err := uuid.Parse(event.Data.Object.ClientReferenceID)
	if err != nil {
		return fmt.Errorf("bad client reference %q: %w", event.Data.Object.ClientReferenceID, err)
	}

	var (
		order     entities.Order
		prev      entities.OrderStatus
		completed bool
	)

	err = s.txManager.Do(ctx, func(ctx context.Context) error {
		var err error
		completed, err = s.payments.CompletePayment(ctx, orderID, event.Data.Object.PaymentIntent, time.Now())
		if err != nil {
			return err
		}
		if !completed {
			return nil
		}

		order, err = s.orders.GetOrderByID(ctx, orderID)
		if err != nil {
			return err
		}
		prev = order.Status

		// stock was reserved only now that the money is in
		for _, it := range order.Items {
			if err := s.products.DecrementStock(ctx, it.ProductID, it.Quantity); err != nil {
				return err
			}
		}

		if !order.Status.CanTransitionTo(entities.OrderConfirmed) {
			return fmt.Errorf("%w: %s -> %s", entities.ErrInvalidTransition, order.Status, entities.OrderConfirmed)
		}
		if err := s.orders.UpdateOrderStatus(ctx, orderID, entities.OrderConfirmed); err != nil {
			return err
		}
		order.Status = entities.OrderConfirmed
		return nil
	})
	if err != nil {
		if errors.Is(err, entities.ErrInsufficientStock) {
			// money is captured but the goods are gone; flag for refund
			if ferr := s.payments.SetPaymentStatus(ctx, orderID, entities.PaymentFailed); ferr != nil {
				s.logger.ErrorContext(ctx, "failed to mark payment failed", slog.Any("error", ferr))
			}
		}
		return err
	}
	if !completed {
		s.logger.InfoContext(ctx, "webhook replay ignored", slog.String("order_id", orderID.String()))
		return nil
	}

	if err := s.events.OrderStatusChanged(ctx, order, prev); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish status change", slog.Any("error", err))
	}

	s.logger.InfoContext(ctx, "payment completed",
		slog.String("order_id", orderID.String()),
		slog.String("transaction_id", event.Data.Object.PaymentIntent),
	)
	return nil
}
