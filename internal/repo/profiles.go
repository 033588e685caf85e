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
	"github.com/lib/pq"
)

// profileRepo covers the three role-profile tables. They share the
// approval workflow, so the update paths are generic over the table
// name.
type profileRepo struct {
	base
}

func NewProfileRepo(db *sqlx.DB) *profileRepo {
	return &profileRepo{base: newBase(db)}
}

var (
	customerColumns  = []string{"id", "user_id", "full_name", "phone", "address", "status", "reason", "verified_at", "created_at"}
	sellerColumns    = []string{"id", "user_id", "shop_name", "documents", "status", "reason", "verified_at", "created_at"}
	delivererColumns = []string{"id", "user_id", "full_name", "license_number", "nic", "status", "reason", "verified_at", "created_at"}
)

func (r *profileRepo) CreateCustomer(ctx context.Context, c entities.Customer) error {
	query, args := r.qb.Insert("customers").
		Columns("id", "user_id", "full_name", "phone", "address", "status").
		Values(c.ID, c.UserID, c.FullName, c.Phone, c.Address, string(c.Status)).
		MustSql()

	if _, err := r.execContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to create customer: %w", err)
	}
	return nil
}

func (r *profileRepo) CreateSeller(ctx context.Context, s entities.Seller) error {
	query, args := r.qb.Insert("sellers").
		Columns("id", "user_id", "shop_name", "documents", "status").
		Values(s.ID, s.UserID, s.ShopName, pq.StringArray(s.Documents), string(s.Status)).
		MustSql()

	if _, err := r.execContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to create seller: %w", err)
	}
	return nil
}

func (r *profileRepo) CreateDeliverer(ctx context.Context, d entities.Deliverer) error {
	query, args := r.qb.Insert("deliverers").
		Columns("id", "user_id", "full_name", "license_number", "nic", "status").
		Values(d.ID, d.UserID, d.FullName, d.LicenseNumber, d.NIC, string(d.Status)).
		MustSql()

	if _, err := r.execContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to create deliverer: %w", err)
	}
	return nil
}

func (r *profileRepo) getCustomer(ctx context.Context, pred sq.Eq) (entities.Customer, error) {
	query, args := r.qb.Select(customerColumns...).From("customers").Where(pred).MustSql()

	var c Customer
	err := r.getContext(ctx, &c, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return entities.Customer{}, entities.ErrProfileNotFound
	}
	if err != nil {
		return entities.Customer{}, fmt.Errorf("failed to get customer: %w", err)
	}
	return CustomerToEntity(c), nil
}

func (r *profileRepo) GetCustomerByUserID(ctx context.Context, userID uuid.UUID) (entities.Customer, error) {
	return r.getCustomer(ctx, sq.Eq{"user_id": userID})
}

func (r *profileRepo) GetCustomerByID(ctx context.Context, id uuid.UUID) (entities.Customer, error) {
	return r.getCustomer(ctx, sq.Eq{"id": id})
}

func (r *profileRepo) getSeller(ctx context.Context, pred sq.Eq) (entities.Seller, error) {
	query, args := r.qb.Select(sellerColumns...).From("sellers").Where(pred).MustSql()

	var s Seller
	err := r.getContext(ctx, &s, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return entities.Seller{}, entities.ErrProfileNotFound
	}
	if err != nil {
		return entities.Seller{}, fmt.Errorf("failed to get seller: %w", err)
	}
	return SellerToEntity(s), nil
}

func (r *profileRepo) GetSellerByUserID(ctx context.Context, userID uuid.UUID) (entities.Seller, error) {
	return r.getSeller(ctx, sq.Eq{"user_id": userID})
}

func (r *profileRepo) GetSellerByID(ctx context.Context, id uuid.UUID) (entities.Seller, error) {
	return r.getSeller(ctx, sq.Eq{"id": id})
}

func (r *profileRepo) getDeliverer(ctx context.Context, pred sq.Eq) (entities.Deliverer, error) {
	query, args := r.qb.Select(delivererColumns...).From("deliverers").Where(pred).MustSql()

	var d Deliverer
	err := r.getContext(ctx, &d, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return entities.Deliverer{}, entities.ErrProfileNotFound
	}
	if err != nil {
		return entities.Deliverer{}, fmt.Errorf("failed to get deliverer: %w", err)
	}
	return DelivererToEntity(d), nil
}

func (r *profileRepo) GetDelivererByUserID(ctx context.Context, userID uuid.UUID) (entities.Deliverer, error) {
	return r.getDeliverer(ctx, sq.Eq{"user_id": userID})
}

func (r *profileRepo) GetDelivererByID(ctx context.Context, id uuid.UUID) (entities.Deliverer, error) {
	return r.getDeliverer(ctx, sq.Eq{"id": id})
}

func (r *profileRepo) setApproval(ctx context.Context, table string, id uuid.UUID, status entities.ApprovalStatus, reason string, verifiedAt *time.Time) error {
	query, args := r.qb.Update(table).
		Set("status", string(status)).
		Set("reason", nullString(reason)).
		Set("verified_at", nullTime(verifiedAt)).
		Where(sq.Eq{"id": id}).
		MustSql()

	res, err := r.execContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update %s status: %w", table, err)
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return entities.ErrProfileNotFound
	}
	return nil
}

func (r *profileRepo) SetSellerApproval(ctx context.Context, id uuid.UUID, status entities.ApprovalStatus, reason string, verifiedAt *time.Time) error {
	return r.setApproval(ctx, "sellers", id, status, reason, verifiedAt)
}

func (r *profileRepo) SetDelivererApproval(ctx context.Context, id uuid.UUID, status entities.ApprovalStatus, reason string, verifiedAt *time.Time) error {
	return r.setApproval(ctx, "deliverers", id, status, reason, verifiedAt)
}

var customerSortColumns = map[string]string{
	"fullName":  "full_name",
	"createdAt": "created_at",
}

func (r *profileRepo) ListCustomers(ctx context.Context, filter entities.ProfileFilter) ([]entities.Customer, int, error) {
	pred := sq.And{}
	if filter.Status != nil {
		pred = append(pred, sq.Eq{"status": string(*filter.Status)})
	}
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		pred = append(pred, sq.Or{
			sq.ILike{"full_name": like},
			sq.ILike{"phone": like},
			sq.ILike{"address": like},
		})
	}

	countQuery, countArgs := r.qb.Select("COUNT(*)").From("customers").Where(pred).MustSql()
	var total int
	if err := r.getContext(ctx, &total, countQuery, countArgs...); err != nil {
		return nil, 0, fmt.Errorf("failed to count customers: %w", err)
	}

	page := filter.Page.Normalize()
	query, args := r.qb.Select(customerColumns...).
		From("customers").
		Where(pred).
		OrderBy(orderByClauses(filter.Sort, customerSortColumns, "created_at DESC")...).
		Limit(uint64(page.Limit)).
		Offset(page.Offset()).
		MustSql()

	var customers []Customer
	if err := r.selectContext(ctx, &customers, query, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to select customers: %w", err)
	}

	result := make([]entities.Customer, 0, len(customers))
	for _, c := range customers {
		result = append(result, CustomerToEntity(c))
	}
	return result, total, nil
}

var sellerSortColumns = map[string]string{
	"shopName":  "shop_name",
	"status":    "status",
	"createdAt": "created_at",
}

func (r *profileRepo) ListSellers(ctx context.Context, filter entities.ProfileFilter) ([]entities.Seller, int, error) {
	pred := sq.And{}
	if filter.Status != nil {
		pred = append(pred, sq.Eq{"status": string(*filter.Status)})
	}
	if filter.Search != "" {
		pred = append(pred, sq.ILike{"shop_name": "%" + filter.Search + "%"})
	}

	countQuery, countArgs := r.qb.Select("COUNT(*)").From("sellers").Where(pred).MustSql()
	var total int
	if err := r.getContext(ctx, &total, countQuery, countArgs...); err != nil {
		return nil, 0, fmt.Errorf("failed to count sellers: %w", err)
	}

	page := filter.Page.Normalize()
	query, args := r.qb.Select(sellerColumns...).
		From("sellers").
		Where(pred).
		OrderBy(orderByClauses(filter.Sort, sellerSortColumns, "created_at DESC")...).
		Limit(uint64(page.Limit)).
		Offset(page.Offset()).
		MustSql()

	var sellers []Seller
	if err := r.selectContext(ctx, &sellers, query, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to select sellers: %w", err)
	}

	result := make([]entities.Seller, 0, len(sellers))
	for _, s := range sellers {
		result = append(result, SellerToEntity(s))
	}
	return result, total, nil
}

var delivererSortColumns = map[string]string{
	"fullName":  "full_name",
	"status":    "status",
	"createdAt": "created_at",
}

func (r *profileRepo) ListDeliverers(ctx context.Context, filter entities.ProfileFilter) ([]entities.Deliverer, int, error) {
	pred := sq.And{}
	if filter.Status != nil {
		pred = append(pred, sq.Eq{"status": string(*filter.Status)})
	}
	if filter.Search != "" {
		pred = append(pred, sq.ILike{"full_name": "%" + filter.Search + "%"})
	}

	countQuery, countArgs := r.qb.Select("COUNT(*)").From("deliverers").Where(pred).MustSql()
	var total int
	if err := r.getContext(ctx, &total, countQuery, countArgs...); err != nil {
		return nil, 0, fmt.Errorf("failed to count deliverers: %w", err)
	}

	page := filter.Page.Normalize()
	query, args := r.qb.Select(delivererColumns...).
		From("deliverers").
		Where(pred).
		OrderBy(orderByClauses(filter.Sort, delivererSortColumns, "created_at DESC")...).
		Limit(uint64(page.Limit)).
		Offset(page.Offset()).
		MustSql()

	var deliverers []Deliverer
	if err := r.selectContext(ctx, &deliverers, query, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to select deliverers: %w", err)
	}

	result := make([]entities.Deliverer, 0, len(deliverers))
	for _, d := range deliverers {
		result = append(result, DelivererToEntity(d))
	}
	return result, total, nil
}
