package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/kirillov6/marketplace-service/internal/entities"

	"github.com/google/uuid"
)

type deliveryService struct {
	logger     *slog.Logger
	txManager  TxManager
	deliveries DeliveryRepo
	orders     OrderRepo
	events     EventPublisher
}

func NewDeliveryService(logger *slog.Logger, txManager TxManager, deliveries DeliveryRepo, orders OrderRepo, events EventPublisher) *deliveryService {
	return &deliveryService{
		logger:     logger.With(slog.String("service", "delivery")),
		txManager:  txManager,
		deliveries: deliveries,
		orders:     orders,
		events:     events,
	}
}

// ListDeliveries returns the deliverer's own assignments; admins see
// every delivery.
func (s *deliveryService) ListDeliveries(ctx context.Context, actor entities.Actor) ([]entities.Delivery, error) {
	if actor.IsAdmin() {
		return s.deliveries.ListDeliveries(ctx)
	}
	if actor.Deliverer == nil {
		return nil, entities.ErrForbidden
	}
	return s.deliveries.ListDeliveriesByDeliverer(ctx, actor.Deliverer.ID)
}

func (s *deliveryService) GetDelivery(ctx context.Context, actor entities.Actor, id uuid.UUID) (entities.Delivery, error) {
	delivery, err := s.deliveries.GetDeliveryByID(ctx, id)
	if err != nil {
		return entities.Delivery{}, err
	}
	if !actor.IsAdmin() && !actor.CanUpdateDelivery(delivery) {
		return entities.Delivery{}, entities.ErrForbidden
	}
	return delivery, nil
}

// UpdateDeliveryStatus is the deliverer's side of the state machine.
// Completing the delivery stamps the time and forces the order to
// delivered, closing it out.
func (s *deliveryService) UpdateDeliveryStatus(ctx context.Context, actor entities.Actor, id uuid.UUID, status entities.DeliveryStatus) (entities.Delivery, error) {
	if !status.Valid() {
		return entities.Delivery{}, fmt.Errorf("%w: %q", entities.ErrInvalidDeliveryStatus, status)
	}

	var (
		delivery entities.Delivery
		order    entities.Order
		prev     entities.OrderStatus
	)

	err := s.txManager.Do(ctx, func(ctx context.Context) error {
		var err error
		delivery, err = s.deliveries.GetDeliveryByID(ctx, id)
		if err != nil {
			return err
		}
		if !actor.CanUpdateDelivery(delivery) {
			return entities.ErrForbidden
		}
		if delivery.Status == entities.DeliveryDelivered {
			return entities.ErrDeliveryCompleted
		}

		var deliveryTime *time.Time
		if status == entities.DeliveryDelivered {
			now := time.Now()
			deliveryTime = &now
		}
		if err := s.deliveries.UpdateDeliveryStatus(ctx, delivery.ID, status, deliveryTime); err != nil {
			return err
		}
		delivery.Status = status
		delivery.DeliveryTime = deliveryTime

		if status != entities.DeliveryDelivered {
			return nil
		}

		order, err = s.orders.GetOrderByID(ctx, delivery.OrderID)
		if err != nil {
			return err
		}
		prev = order.Status
		if order.Status == entities.OrderDelivered {
			return nil
		}
		if err := s.orders.UpdateOrderStatus(ctx, order.ID, entities.OrderDelivered); err != nil {
			return err
		}
		order.Status = entities.OrderDelivered
		return nil
	})
	if err != nil {
		return entities.Delivery{}, err
	}

	if order.Status == entities.OrderDelivered && prev != entities.OrderDelivered {
		if err := s.events.OrderStatusChanged(ctx, order, prev); err != nil {
			s.logger.ErrorContext(ctx, "failed to publish status change", slog.Any("error", err))
		}
	}
	return delivery, nil
}
