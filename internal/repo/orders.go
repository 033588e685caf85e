package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/kirillov6/marketplace-service/internal/entities"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type orderRepo struct {
	base
}

func NewOrderRepo(db *sqlx.DB) *orderRepo {
	return &orderRepo{base: newBase(db)}
}

var orderColumns = []string{
	"id", "customer_id", "total_price", "status", "assigned_deliverer_id",
	"gateway_session_id", "shipping_address", "payment_method", "created_at", "updated_at",
}

func (r *orderRepo) CreateOrder(ctx context.Context, o entities.Order) error {
	query, args := r.qb.Insert("orders").
		Columns("id", "customer_id", "total_price", "status", "assigned_deliverer_id",
			"gateway_session_id", "shipping_address", "payment_method").
		Values(o.ID, o.CustomerID, o.TotalPrice, string(o.Status), nullUUID(o.AssignedDelivererID),
			nullString(o.GatewaySessionID), nullString(o.ShippingAddress), string(o.PaymentMethod)).
		MustSql()

	if _, err := r.execContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}

	if len(o.Items) == 0 {
		return nil
	}

	q := r.qb.Insert("order_items").Columns("order_id", "product_id", "quantity", "price")
	for _, it := range o.Items {
		q = q.Values(o.ID, it.ProductID, it.Quantity, it.Price)
	}
	query, args = q.MustSql()

	if _, err := r.execContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to create order items: %w", err)
	}
	return nil
}

func (r *orderRepo) GetOrderByID(ctx context.Context, id uuid.UUID) (entities.Order, error) {
	query, args := r.qb.Select(orderColumns...).
		From("orders").
		Where(sq.Eq{"id": id}).
		MustSql()

	var order Order
	err := r.getContext(ctx, &order, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return entities.Order{}, entities.ErrOrderNotFound
	}
	if err != nil {
		return entities.Order{}, fmt.Errorf("failed to get order: %w", err)
	}

	query, args = r.qb.Select("order_id", "product_id", "quantity", "price").
		From("order_items").
		Where(sq.Eq{"order_id": id}).
		MustSql()

	var items []OrderItem
	if err := r.selectContext(ctx, &items, query, args...); err != nil {
		return entities.Order{}, fmt.Errorf("failed to select order items: %w", err)
	}

	return OrderToEntity(order, items), nil
}

var orderSortColumns = map[string]string{
	"totalPrice": "total_price",
	"status":     "status",
	"createdAt":  "created_at",
	"updatedAt":  "updated_at",
}

func (r *orderRepo) ListOrders(ctx context.Context, filter entities.OrderFilter) ([]entities.Order, int, error) {
	pred := sq.And{}
	if filter.CustomerID != nil {
		pred = append(pred, sq.Eq{"customer_id": *filter.CustomerID})
	}
	if filter.SellerID != nil {
		pred = append(pred, sq.Expr(
			`EXISTS (SELECT 1 FROM order_items oi
				JOIN products p ON p.id = oi.product_id
				WHERE oi.order_id = orders.id AND p.seller_id = ?)`,
			*filter.SellerID,
		))
	}
	if filter.DelivererID != nil {
		pred = append(pred, sq.Eq{"assigned_deliverer_id": *filter.DelivererID})
	}
	if filter.Status != nil {
		pred = append(pred, sq.Eq{"status": string(*filter.Status)})
	}
	if filter.MinTotalPrice != nil {
		pred = append(pred, sq.GtOrEq{"total_price": *filter.MinTotalPrice})
	}
	if filter.MaxTotalPrice != nil {
		pred = append(pred, sq.LtOrEq{"total_price": *filter.MaxTotalPrice})
	}
	if filter.StartDate != nil {
		pred = append(pred, sq.GtOrEq{"created_at": *filter.StartDate})
	}
	if filter.EndDate != nil {
		pred = append(pred, sq.LtOrEq{"created_at": *filter.EndDate})
	}
	if filter.Search != "" {
		pred = append(pred, sq.Expr(
			`EXISTS (SELECT 1 FROM order_items oi
				JOIN products p ON p.id = oi.product_id
				WHERE oi.order_id = orders.id AND p.name ILIKE ?)`,
			"%"+filter.Search+"%",
		))
	}

	countQuery, countArgs := r.qb.Select("COUNT(*)").From("orders").Where(pred).MustSql()
	var total int
	if err := r.getContext(ctx, &total, countQuery, countArgs...); err != nil {
		return nil, 0, fmt.Errorf("failed to count orders: %w", err)
	}

	page := filter.Page.Normalize()
	query, args := r.qb.Select(orderColumns...).
		From("orders").
		Where(pred).
		OrderBy(orderByClauses(filter.Sort, orderSortColumns, "created_at DESC")...).
		Limit(uint64(page.Limit)).
		Offset(page.Offset()).
		MustSql()

	var orders []Order
	if err := r.selectContext(ctx, &orders, query, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to select orders: %w", err)
	}

	if len(orders) == 0 {
		return []entities.Order{}, total, nil
	}

	ids := make([]uuid.UUID, len(orders))
	for i, o := range orders {
		ids[i] = o.ID
	}

	query, args = r.qb.Select("order_id", "product_id", "quantity", "price").
		From("order_items").
		Where(sq.Eq{"order_id": ids}).
		MustSql()

	var items []OrderItem
	if err := r.selectContext(ctx, &items, query, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to select order items: %w", err)
	}
	itemsMap := make(map[uuid.UUID][]OrderItem, len(ids))
	for _, it := range items {
		itemsMap[it.OrderID] = append(itemsMap[it.OrderID], it)
	}

	result := make([]entities.Order, 0, len(orders))
	for _, o := range orders {
		result = append(result, OrderToEntity(o, itemsMap[o.ID]))
	}
	return result, total, nil
}

func (r *orderRepo) UpdateOrderStatus(ctx context.Context, id uuid.UUID, status entities.OrderStatus) error {
	query, args := r.qb.Update("orders").
		Set("status", string(status)).
		Set("updated_at", sq.Expr("now()")).
		Where(sq.Eq{"id": id}).
		MustSql()

	res, err := r.execContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update order status: %w", err)
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return entities.ErrOrderNotFound
	}
	return nil
}

func (r *orderRepo) SetOrderDeliverer(ctx context.Context, id, delivererID uuid.UUID) error {
	query, args := r.qb.Update("orders").
		Set("assigned_deliverer_id", delivererID).
		Set("updated_at", sq.Expr("now()")).
		Where(sq.Eq{"id": id}).
		MustSql()

	res, err := r.execContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to set order deliverer: %w", err)
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return entities.ErrOrderNotFound
	}
	return nil
}

func (r *orderRepo) SetGatewaySession(ctx context.Context, id uuid.UUID, sessionID string) error {
	query, args := r.qb.Update("orders").
		Set("gateway_session_id", sessionID).
		Set("updated_at", sq.Expr("now()")).
		Where(sq.Eq{"id": id}).
		MustSql()

	res, err := r.execContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to set gateway session: %w", err)
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return entities.ErrOrderNotFound
	}
	return nil
}

// ContainsSellerProduct reports whether any order line references a
// product owned by sellerID.
func (r *orderRepo) ContainsSellerProduct(ctx context.Context, orderID, sellerID uuid.UUID) (bool, error) {
	query, args := r.qb.Select("1").
		From("order_items oi").
		Join("products p ON p.id = oi.product_id").
		Where(sq.And{
			sq.Eq{"oi.order_id": orderID},
			sq.Eq{"p.seller_id": sellerID},
		}).
		Limit(1).
		MustSql()

	var one int
	err := r.getContext(ctx, &one, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check order seller: %w", err)
	}
	return true, nil
}
