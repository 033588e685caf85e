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

type addressRepo struct {
	base
}

func NewAddressRepo(db *sqlx.DB) *addressRepo {
	return &addressRepo{base: newBase(db)}
}

var addressColumns = []string{
	"id", "customer_id", "label", "street", "city", "postal_code",
	"country", "is_default", "created_at", "updated_at",
}

func (r *addressRepo) ListAddresses(ctx context.Context, customerID uuid.UUID) ([]entities.Address, error) {
	query, args := r.qb.Select(addressColumns...).
		From("addresses").
		Where(sq.Eq{"customer_id": customerID}).
		OrderBy("is_default DESC", "created_at ASC").
		MustSql()

	var addresses []Address
	if err := r.selectContext(ctx, &addresses, query, args...); err != nil {
		return nil, fmt.Errorf("failed to select addresses: %w", err)
	}

	result := make([]entities.Address, 0, len(addresses))
	for _, a := range addresses {
		result = append(result, AddressToEntity(a))
	}
	return result, nil
}

func (r *addressRepo) GetAddressByID(ctx context.Context, id uuid.UUID) (entities.Address, error) {
	query, args := r.qb.Select(addressColumns...).
		From("addresses").
		Where(sq.Eq{"id": id}).
		MustSql()

	var a Address
	err := r.getContext(ctx, &a, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return entities.Address{}, entities.ErrAddressNotFound
	}
	if err != nil {
		return entities.Address{}, fmt.Errorf("failed to get address: %w", err)
	}
	return AddressToEntity(a), nil
}

func (r *addressRepo) CreateAddress(ctx context.Context, a entities.Address) error {
	query, args := r.qb.Insert("addresses").
		Columns("id", "customer_id", "label", "street", "city", "postal_code", "country", "is_default").
		Values(a.ID, a.CustomerID, a.Label, a.Street, a.City, a.PostalCode, a.Country, a.IsDefault).
		MustSql()

	if _, err := r.execContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to create address: %w", err)
	}
	return nil
}

func (r *addressRepo) UpdateAddress(ctx context.Context, a entities.Address) error {
	query, args := r.qb.Update("addresses").
		Set("label", a.Label).
		Set("street", a.Street).
		Set("city", a.City).
		Set("postal_code", a.PostalCode).
		Set("country", a.Country).
		Set("is_default", a.IsDefault).
		Set("updated_at", sq.Expr("now()")).
		Where(sq.Eq{"id": a.ID}).
		MustSql()

	res, err := r.execContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update address: %w", err)
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return entities.ErrAddressNotFound
	}
	return nil
}

func (r *addressRepo) DeleteAddress(ctx context.Context, id uuid.UUID) error {
	query, args := r.qb.Delete("addresses").
		Where(sq.Eq{"id": id}).
		MustSql()

	res, err := r.execContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to delete address: %w", err)
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return entities.ErrAddressNotFound
	}
	return nil
}

// UnsetDefaultAddresses clears the default flag across the customer's
// book; callers mark the new default right after, inside the same
// transaction.
func (r *addressRepo) UnsetDefaultAddresses(ctx context.Context, customerID uuid.UUID) error {
	query, args := r.qb.Update("addresses").
		Set("is_default", false).
		Set("updated_at", sq.Expr("now()")).
		Where(sq.Eq{"customer_id": customerID, "is_default": true}).
		MustSql()

	if _, err := r.execContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to unset default addresses: %w", err)
	}
	return nil
}

func (r *addressRepo) SetDefaultAddress(ctx context.Context, id uuid.UUID) error {
	query, args := r.qb.Update("addresses").
		Set("is_default", true).
		Set("updated_at", sq.Expr("now()")).
		Where(sq.Eq{"id": id}).
		MustSql()

	res, err := r.execContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to set default address: %w", err)
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return entities.ErrAddressNotFound
	}
	return nil
}
