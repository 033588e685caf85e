package repo

import (
	"context"
	"fmt"

	"github.com/kirillov6/marketplace-service/internal/entities"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

type analyticsRepo struct {
	base
}

func NewAnalyticsRepo(db *sqlx.DB) *analyticsRepo {
	return &analyticsRepo{base: newBase(db)}
}

func (r *analyticsRepo) CountOrders(ctx context.Context) (int, error) {
	query, args := r.qb.Select("COUNT(*)").From("orders").MustSql()

	var count int
	if err := r.getContext(ctx, &count, query, args...); err != nil {
		return 0, fmt.Errorf("failed to count orders: %w", err)
	}
	return count, nil
}

func (r *analyticsRepo) CountOrdersByStatus(ctx context.Context, status entities.OrderStatus) (int, error) {
	query, args := r.qb.Select("COUNT(*)").
		From("orders").
		Where(sq.Eq{"status": string(status)}).
		MustSql()

	var count int
	if err := r.getContext(ctx, &count, query, args...); err != nil {
		return 0, fmt.Errorf("failed to count orders by status: %w", err)
	}
	return count, nil
}

// TotalSales sums totals of delivered orders only.
func (r *analyticsRepo) TotalSales(ctx context.Context) (decimal.Decimal, error) {
	query, args := r.qb.Select("COALESCE(SUM(total_price), 0)").
		From("orders").
		Where(sq.Eq{"status": string(entities.OrderDelivered)}).
		MustSql()

	var total decimal.Decimal
	if err := r.getContext(ctx, &total, query, args...); err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum sales: %w", err)
	}
	return total, nil
}

type sellerSalesRow struct {
	SellerID   uuid.UUID       `db:"seller_id"`
	ShopName   string          `db:"shop_name"`
	TotalSales decimal.Decimal `db:"total_sales"`
}

func (r *analyticsRepo) SalesBySeller(ctx context.Context) ([]entities.SellerSales, error) {
	query, args := r.qb.Select(
		"p.seller_id AS seller_id",
		"s.shop_name AS shop_name",
		"SUM(oi.quantity * oi.price) AS total_sales",
	).
		From("order_items oi").
		Join("orders o ON o.id = oi.order_id").
		Join("products p ON p.id = oi.product_id").
		Join("sellers s ON s.id = p.seller_id").
		Where(sq.Eq{"o.status": string(entities.OrderDelivered)}).
		GroupBy("p.seller_id", "s.shop_name").
		OrderBy("total_sales DESC").
		MustSql()

	var rows []sellerSalesRow
	if err := r.selectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to select sales by seller: %w", err)
	}

	result := make([]entities.SellerSales, 0, len(rows))
	for _, row := range rows {
		result = append(result, entities.SellerSales{
			SellerID:   row.SellerID,
			ShopName:   row.ShopName,
			TotalSales: row.TotalSales,
		})
	}
	return result, nil
}
