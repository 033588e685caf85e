package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/kirillov6/marketplace-service/internal/config"
	"github.com/kirillov6/marketplace-service/internal/entities"

	"github.com/segmentio/kafka-go"
)

const (
	TypeOrderCreated       = "order.created"
	TypeOrderStatusChanged = "order.status_changed"
)

// OrderEvent is the wire format consumed by downstream services
// (notifications, reporting).
type OrderEvent struct {
	Type       string    `json:"type"`
	OrderID    string    `json:"order_id"`
	CustomerID string    `json:"customer_id"`
	Status     string    `json:"status"`
	PrevStatus string    `json:"prev_status,omitempty"`
	TotalPrice string    `json:"total_price"`
	OccurredAt time.Time `json:"occurred_at"`
}

type Publisher struct {
	writer *kafka.Writer
}

func NewPublisher(cfg config.Kafka) *Publisher {
	return &Publisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(cfg.Brokers...),
			Topic:        cfg.Topic,
			Balancer:     &kafka.LeastBytes{},
			BatchTimeout: cfg.BatchTimeout,
		},
	}
}

func (p *Publisher) OrderCreated(ctx context.Context, o entities.Order) error {
	return p.publish(ctx, OrderEvent{
		Type:       TypeOrderCreated,
		OrderID:    o.ID.String(),
		CustomerID: o.CustomerID.String(),
		Status:     string(o.Status),
		TotalPrice: o.TotalPrice.String(),
		OccurredAt: time.Now().UTC(),
	})
}

func (p *Publisher) OrderStatusChanged(ctx context.Context, o entities.Order, prev entities.OrderStatus) error {
	return p.publish(ctx, OrderEvent{
		Type:       TypeOrderStatusChanged,
		OrderID:    o.ID.String(),
		CustomerID: o.CustomerID.String(),
		Status:     string(o.Status),
		PrevStatus: string(prev),
		TotalPrice: o.TotalPrice.String(),
		OccurredAt: time.Now().UTC(),
	})
}

func (p *Publisher) publish(ctx context.Context, event OrderEvent) error {
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	// Writer has its own retry internally
	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.OrderID),
		Value: value,
	})
	if err != nil {
		return fmt.Errorf("failed to write event: %w", err)
	}
	return nil
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}
