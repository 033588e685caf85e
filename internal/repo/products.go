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
	"github.com/lib/pq"
)

const lowStockThreshold = 10

type productRepo struct {
	base
}

func NewProductRepo(db *sqlx.DB) *productRepo {
	return &productRepo{base: newBase(db)}
}

var productColumns = []string{
	"id", "seller_id", "name", "description", "price", "stock",
	"category_id", "rating", "images", "primary_image", "created_at", "updated_at",
}

func (r *productRepo) CreateProduct(ctx context.Context, p entities.Product) error {
	query, args := r.qb.Insert("products").
		Columns("id", "seller_id", "name", "description", "price", "stock",
			"category_id", "rating", "images", "primary_image").
		Values(p.ID, p.SellerID, p.Name, nullString(p.Description), p.Price, p.Stock,
			nullUUID(p.CategoryID), p.Rating, pq.StringArray(p.Images), p.PrimaryImage).
		MustSql()

	if _, err := r.execContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}
	return nil
}

func (r *productRepo) GetProductByID(ctx context.Context, id uuid.UUID) (entities.Product, error) {
	query, args := r.qb.Select(productColumns...).
		From("products").
		Where(sq.Eq{"id": id}).
		MustSql()

	var p Product
	err := r.getContext(ctx, &p, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return entities.Product{}, entities.ErrProductNotFound
	}
	if err != nil {
		return entities.Product{}, fmt.Errorf("failed to get product: %w", err)
	}
	return ProductToEntity(p), nil
}

func (r *productRepo) UpdateProduct(ctx context.Context, p entities.Product) error {
	query, args := r.qb.Update("products").
		Set("name", p.Name).
		Set("description", nullString(p.Description)).
		Set("price", p.Price).
		Set("stock", p.Stock).
		Set("category_id", nullUUID(p.CategoryID)).
		Set("rating", p.Rating).
		Set("images", pq.StringArray(p.Images)).
		Set("primary_image", p.PrimaryImage).
		Set("updated_at", sq.Expr("now()")).
		Where(sq.Eq{"id": p.ID}).
		MustSql()

	res, err := r.execContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update product: %w", err)
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return entities.ErrProductNotFound
	}
	return nil
}

func (r *productRepo) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	query, args := r.qb.Delete("products").
		Where(sq.Eq{"id": id}).
		MustSql()

	res, err := r.execContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return entities.ErrProductNotFound
	}
	return nil
}

// DecrementStock applies the atomic conditional decrement. Zero rows
// matched means the remaining stock is below qty; the caller treats
// that as ErrInsufficientStock and rolls back.
func (r *productRepo) DecrementStock(ctx context.Context, id uuid.UUID, qty int) error {
	query, args := r.qb.Update("products").
		Set("stock", sq.Expr("stock - ?", qty)).
		Set("updated_at", sq.Expr("now()")).
		Where(sq.And{
			sq.Eq{"id": id},
			sq.GtOrEq{"stock": qty},
		}).
		MustSql()

	res, err := r.execContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to decrement stock: %w", err)
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return entities.ErrInsufficientStock
	}
	return nil
}

// RestoreStock returns cancelled quantities to the counter.
func (r *productRepo) RestoreStock(ctx context.Context, id uuid.UUID, qty int) error {
	query, args := r.qb.Update("products").
		Set("stock", sq.Expr("stock + ?", qty)).
		Set("updated_at", sq.Expr("now()")).
		Where(sq.Eq{"id": id}).
		MustSql()

	if _, err := r.execContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to restore stock: %w", err)
	}
	return nil
}

var productSortColumns = map[string]string{
	"name":      "name",
	"price":     "price",
	"stock":     "stock",
	"rating":    "rating",
	"createdAt": "created_at",
	"updatedAt": "updated_at",
}

func (r *productRepo) ListProducts(ctx context.Context, filter entities.ProductFilter) ([]entities.Product, int, error) {
	pred := sq.And{}
	if filter.SellerID != nil {
		pred = append(pred, sq.Eq{"seller_id": *filter.SellerID})
	}
	if filter.CategoryID != nil {
		pred = append(pred, sq.Eq{"category_id": *filter.CategoryID})
	}
	if filter.MinPrice != nil {
		pred = append(pred, sq.GtOrEq{"price": *filter.MinPrice})
	}
	if filter.MaxPrice != nil {
		pred = append(pred, sq.LtOrEq{"price": *filter.MaxPrice})
	}
	if filter.MinRating != nil {
		pred = append(pred, sq.GtOrEq{"rating": *filter.MinRating})
	}
	if filter.MaxRating != nil {
		pred = append(pred, sq.LtOrEq{"rating": *filter.MaxRating})
	}
	switch filter.Availability {
	case "inStock":
		pred = append(pred, sq.Gt{"stock": 0})
	case "outOfStock":
		pred = append(pred, sq.Eq{"stock": 0})
	}
	switch filter.StockStatus {
	case "low":
		pred = append(pred, sq.LtOrEq{"stock": lowStockThreshold})
	case "inStock":
		pred = append(pred, sq.Gt{"stock": 0})
	case "outOfStock":
		pred = append(pred, sq.Eq{"stock": 0})
	}
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		pred = append(pred, sq.Or{
			sq.ILike{"name": like},
			sq.ILike{"description": like},
		})
	}

	countQuery, countArgs := r.qb.Select("COUNT(*)").From("products").Where(pred).MustSql()
	var total int
	if err := r.getContext(ctx, &total, countQuery, countArgs...); err != nil {
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}

	page := filter.Page.Normalize()
	query, args := r.qb.Select(productColumns...).
		From("products").
		Where(pred).
		OrderBy(orderByClauses(filter.Sort, productSortColumns, "updated_at DESC")...).
		Limit(uint64(page.Limit)).
		Offset(page.Offset()).
		MustSql()

	var products []Product
	if err := r.selectContext(ctx, &products, query, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to select products: %w", err)
	}

	result := make([]entities.Product, 0, len(products))
	for _, p := range products {
		result = append(result, ProductToEntity(p))
	}
	return result, total, nil
}
