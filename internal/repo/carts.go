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

type cartRepo struct {
	base
}

func NewCartRepo(db *sqlx.DB) *cartRepo {
	return &cartRepo{base: newBase(db)}
}

func (r *cartRepo) GetCartByCustomerID(ctx context.Context, customerID uuid.UUID) (entities.Cart, error) {
	query, args := r.qb.Select("id", "customer_id", "total_price", "updated_at").
		From("carts").
		Where(sq.Eq{"customer_id": customerID}).
		MustSql()

	var cart Cart
	err := r.getContext(ctx, &cart, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return entities.Cart{}, entities.ErrCartNotFound
	}
	if err != nil {
		return entities.Cart{}, fmt.Errorf("failed to get cart: %w", err)
	}

	query, args = r.qb.Select("cart_id", "product_id", "quantity", "price", "added_at").
		From("cart_items").
		Where(sq.Eq{"cart_id": cart.ID}).
		OrderBy("added_at ASC").
		MustSql()

	var items []CartItem
	if err := r.selectContext(ctx, &items, query, args...); err != nil {
		return entities.Cart{}, fmt.Errorf("failed to select cart items: %w", err)
	}

	return CartToEntity(cart, items), nil
}

func (r *cartRepo) CreateCart(ctx context.Context, customerID uuid.UUID) (entities.Cart, error) {
	cart := entities.Cart{
		ID:         uuid.New(),
		CustomerID: customerID,
	}

	query, args := r.qb.Insert("carts").
		Columns("id", "customer_id", "total_price").
		Values(cart.ID, cart.CustomerID, cart.TotalPrice).
		Suffix("ON CONFLICT (customer_id) DO NOTHING").
		MustSql()

	if _, err := r.execContext(ctx, query, args...); err != nil {
		return entities.Cart{}, fmt.Errorf("failed to create cart: %w", err)
	}

	// a concurrent request may have created the row first
	return r.GetCartByCustomerID(ctx, customerID)
}

// SaveCart replaces the line list and the derived total as one unit.
// Callers run it inside a transaction together with whatever mutation
// produced the new list.
func (r *cartRepo) SaveCart(ctx context.Context, cart entities.Cart) error {
	query, args := r.qb.Update("carts").
		Set("total_price", cart.TotalPrice).
		Set("updated_at", sq.Expr("now()")).
		Where(sq.Eq{"id": cart.ID}).
		MustSql()

	if _, err := r.execContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to update cart: %w", err)
	}

	query, args = r.qb.Delete("cart_items").
		Where(sq.Eq{"cart_id": cart.ID}).
		MustSql()

	if _, err := r.execContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to clear cart items: %w", err)
	}

	if len(cart.Items) == 0 {
		return nil
	}

	q := r.qb.Insert("cart_items").Columns("cart_id", "product_id", "quantity", "price")
	for _, it := range cart.Items {
		q = q.Values(cart.ID, it.ProductID, it.Quantity, it.Price)
	}
	query, args = q.MustSql()

	if _, err := r.execContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to save cart items: %w", err)
	}
	return nil
}
