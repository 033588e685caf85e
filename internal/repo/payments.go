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

type paymentRepo struct {
	base
}

func NewPaymentRepo(db *sqlx.DB) *paymentRepo {
	return &paymentRepo{base: newBase(db)}
}

var paymentColumns = []string{
	"id", "order_id", "customer_id", "amount", "method", "status",
	"transaction_id", "paid_at", "created_at",
}

func (r *paymentRepo) CreatePayment(ctx context.Context, p entities.Payment) error {
	query, args := r.qb.Insert("payments").
		Columns("id", "order_id", "customer_id", "amount", "method", "status", "transaction_id", "paid_at").
		Values(p.ID, p.OrderID, p.CustomerID, p.Amount, string(p.Method), string(p.Status), p.TransactionID, nullTime(p.PaidAt)).
		MustSql()

	if _, err := r.execContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to create payment: %w", err)
	}
	return nil
}

func (r *paymentRepo) GetPaymentByOrderID(ctx context.Context, orderID uuid.UUID) (entities.Payment, error) {
	query, args := r.qb.Select(paymentColumns...).
		From("payments").
		Where(sq.Eq{"order_id": orderID}).
		MustSql()

	var p Payment
	err := r.getContext(ctx, &p, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return entities.Payment{}, entities.ErrPaymentNotFound
	}
	if err != nil {
		return entities.Payment{}, fmt.Errorf("failed to get payment: %w", err)
	}
	return PaymentToEntity(p), nil
}

// CompletePayment flips pending to completed. The status guard makes
// the operation idempotent: a replayed webhook event matches zero rows
// and reports false.
func (r *paymentRepo) CompletePayment(ctx context.Context, orderID uuid.UUID, transactionID string, paidAt time.Time) (bool, error) {
	query, args := r.qb.Update("payments").
		Set("status", string(entities.PaymentCompleted)).
		Set("transaction_id", transactionID).
		Set("paid_at", paidAt).
		Where(sq.And{
			sq.Eq{"order_id": orderID},
			sq.Eq{"status": string(entities.PaymentPending)},
		}).
		MustSql()

	res, err := r.execContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("failed to complete payment: %w", err)
	}
	rows, _ := res.RowsAffected()
	return rows > 0, nil
}

func (r *paymentRepo) SetPaymentStatus(ctx context.Context, orderID uuid.UUID, status entities.PaymentStatus) error {
	query, args := r.qb.Update("payments").
		Set("status", string(status)).
		Where(sq.Eq{"order_id": orderID}).
		MustSql()

	res, err := r.execContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to set payment status: %w", err)
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return entities.ErrPaymentNotFound
	}
	return nil
}
