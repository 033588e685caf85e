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

const uniqueViolation = "23505"

type userRepo struct {
	base
}

func NewUserRepo(db *sqlx.DB) *userRepo {
	return &userRepo{base: newBase(db)}
}

var userColumns = []string{"id", "email", "password_hash", "role", "is_active", "created_at"}

func (r *userRepo) CreateUser(ctx context.Context, u entities.User) error {
	query, args := r.qb.Insert("users").
		Columns("id", "email", "password_hash", "role", "is_active").
		Values(u.ID, u.Email, u.PasswordHash, string(u.Role), u.IsActive).
		MustSql()

	if _, err := r.execContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return entities.ErrEmailTaken
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (r *userRepo) GetUserByEmail(ctx context.Context, email string) (entities.User, error) {
	query, args := r.qb.Select(userColumns...).
		From("users").
		Where(sq.Eq{"email": email}).
		MustSql()

	var user User
	err := r.getContext(ctx, &user, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return entities.User{}, entities.ErrUserNotFound
	}
	if err != nil {
		return entities.User{}, fmt.Errorf("failed to get user: %w", err)
	}
	return UserToEntity(user), nil
}

func (r *userRepo) GetUserByID(ctx context.Context, id uuid.UUID) (entities.User, error) {
	query, args := r.qb.Select(userColumns...).
		From("users").
		Where(sq.Eq{"id": id}).
		MustSql()

	var user User
	err := r.getContext(ctx, &user, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return entities.User{}, entities.ErrUserNotFound
	}
	if err != nil {
		return entities.User{}, fmt.Errorf("failed to get user: %w", err)
	}
	return UserToEntity(user), nil
}

var userSortColumns = map[string]string{
	"email":     "email",
	"role":      "role",
	"createdAt": "created_at",
}

func (r *userRepo) ListUsers(ctx context.Context, filter entities.UserFilter) ([]entities.User, int, error) {
	pred := sq.And{}
	if filter.Role != nil {
		pred = append(pred, sq.Eq{"role": string(*filter.Role)})
	}
	if filter.IsActive != nil {
		pred = append(pred, sq.Eq{"is_active": *filter.IsActive})
	}
	if filter.Search != "" {
		pred = append(pred, sq.ILike{"email": "%" + filter.Search + "%"})
	}

	countQuery, countArgs := r.qb.Select("COUNT(*)").From("users").Where(pred).MustSql()
	var total int
	if err := r.getContext(ctx, &total, countQuery, countArgs...); err != nil {
		return nil, 0, fmt.Errorf("failed to count users: %w", err)
	}

	page := filter.Page.Normalize()
	query, args := r.qb.Select(userColumns...).
		From("users").
		Where(pred).
		OrderBy(orderByClauses(filter.Sort, userSortColumns, "created_at DESC")...).
		Limit(uint64(page.Limit)).
		Offset(page.Offset()).
		MustSql()

	var users []User
	if err := r.selectContext(ctx, &users, query, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to select users: %w", err)
	}

	result := make([]entities.User, 0, len(users))
	for _, u := range users {
		result = append(result, UserToEntity(u))
	}
	return result, total, nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}
