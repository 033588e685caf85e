package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/kirillov6/marketplace-service/internal/entities"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type deliveryRepo struct {
	base
}

func NewDeliveryRepo(db *sqlx.DB) *deliveryRepo {
	return &deliveryRepo{base: newBase(db)}
}

var deliveryColumns = []string{
	"id", "order_id", "deliverer_id", "status", "delivery_time", "created_at", "updated_at",
}

func (r *deliveryRepo) GetDeliveryByID(ctx context.Context, id uuid.UUID) (entities.Delivery, error) {
	return r.getDelivery(ctx, sq.Eq{"id": id})
}

func (r *deliveryRepo) GetDeliveryByOrderID(ctx context.Context, orderID uuid.UUID) (entities.Delivery, error) {
	return r.getDelivery(ctx, sq.Eq{"order_id": orderID})
}

func (r *deliveryRepo) getDelivery(ctx context.Context, pred sq.Eq) (entities.Delivery, error) {
	query, args := r.qb.Select(deliveryColumns...).
		From("deliveries").
		Where(pred).
		MustSql()

	var d Delivery
	err := r.getContext(ctx, &d, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return entities.Delivery{}, entities.ErrDeliveryNotFound
	}
	if err != nil {
		return entities.Delivery{}, fmt.Errorf("failed to get delivery: %w", err)
	}
	return DeliveryToEntity(d), nil
}

func (r *deliveryRepo) ListDeliveriesByDeliverer(ctx context.Context, delivererID uuid.UUID) ([]entities.Delivery, error) {
	return r.listDeliveries(ctx, sq.Eq{"deliverer_id": delivererID})
}

func (r *deliveryRepo) ListDeliveries(ctx context.Context) ([]entities.Delivery, error) {
	return r.listDeliveries(ctx, nil)
}

func (r *deliveryRepo) listDeliveries(ctx context.Context, pred sq.Eq) ([]entities.Delivery, error) {
	builder := r.qb.Select(deliveryColumns...).
		From("deliveries").
		OrderBy("created_at DESC")
	if pred != nil {
		builder = builder.Where(pred)
	}
	query, args := builder.MustSql()

	var deliveries []Delivery
	if err := r.selectContext(ctx, &deliveries, query, args...); err != nil {
		return nil, fmt.Errorf("failed to select deliveries: %w", err)
	}

	result := make([]entities.Delivery, 0, len(deliveries))
	for _, d := range deliveries {
		result = append(result, DeliveryToEntity(d))
	}
	return result, nil
}

// UpsertDelivery keeps the one-Delivery-per-order invariant:
// reassignment rewrites the existing row instead of inserting a
// second one.
func (r *deliveryRepo) UpsertDelivery(ctx context.Context, d entities.Delivery) error {
	query, args := r.qb.Insert("deliveries").
		Columns("id", "order_id", "deliverer_id", "status").
		Values(d.ID, d.OrderID, d.DelivererID, string(d.Status)).
		Suffix(`ON CONFLICT (order_id) DO UPDATE
			SET deliverer_id = EXCLUDED.deliverer_id,
			    status = EXCLUDED.status,
			    updated_at = now()`).
		MustSql()

	if _, err := r.execContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to upsert delivery: %w", err)
	}
	return nil
}

func (r *deliveryRepo) UpdateDeliveryStatus(ctx context.Context, id uuid.UUID, status entities.DeliveryStatus, deliveryTime *time.Time) error {
	query, args := r.qb.Update("deliveries").
		Set("status", string(status)).
		Set("delivery_time", nullTime(deliveryTime)).
		Set("updated_at", sq.Expr("now()")).
		Where(sq.Eq{"id": id}).
		MustSql()

	res, err := r.execContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update delivery status: %w", err)
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return entities.ErrDeliveryNotFound
	}
	return nil
}
