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

type categoryRepo struct {
	base
}

func NewCategoryRepo(db *sqlx.DB) *categoryRepo {
	return &categoryRepo{base: newBase(db)}
}

var categoryColumns = []string{"id", "name", "description", "created_at"}

func (r *categoryRepo) CreateCategory(ctx context.Context, c entities.Category) error {
	query, args := r.qb.Insert("categories").
		Columns("id", "name", "description").
		Values(c.ID, c.Name, nullString(c.Description)).
		MustSql()

	if _, err := r.execContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return entities.ErrCategoryTaken
		}
		return fmt.Errorf("failed to create category: %w", err)
	}
	return nil
}

func (r *categoryRepo) GetCategoryByID(ctx context.Context, id uuid.UUID) (entities.Category, error) {
	query, args := r.qb.Select(categoryColumns...).
		From("categories").
		Where(sq.Eq{"id": id}).
		MustSql()

	var c Category
	err := r.getContext(ctx, &c, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return entities.Category{}, entities.ErrCategoryNotFound
	}
	if err != nil {
		return entities.Category{}, fmt.Errorf("failed to get category: %w", err)
	}
	return CategoryToEntity(c), nil
}

func (r *categoryRepo) ListCategories(ctx context.Context) ([]entities.Category, error) {
	query, args := r.qb.Select(categoryColumns...).
		From("categories").
		OrderBy("name ASC").
		MustSql()

	var categories []Category
	if err := r.selectContext(ctx, &categories, query, args...); err != nil {
		return nil, fmt.Errorf("failed to select categories: %w", err)
	}

	result := make([]entities.Category, 0, len(categories))
	for _, c := range categories {
		result = append(result, CategoryToEntity(c))
	}
	return result, nil
}

func (r *categoryRepo) UpdateCategory(ctx context.Context, c entities.Category) error {
	query, args := r.qb.Update("categories").
		Set("name", c.Name).
		Set("description", nullString(c.Description)).
		Where(sq.Eq{"id": c.ID}).
		MustSql()

	res, err := r.execContext(ctx, query, args...)
	if err != nil {
		if isUniqueViolation(err) {
			return entities.ErrCategoryTaken
		}
		return fmt.Errorf("failed to update category: %w", err)
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return entities.ErrCategoryNotFound
	}
	return nil
}

func (r *categoryRepo) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	query, args := r.qb.Delete("categories").
		Where(sq.Eq{"id": id}).
		MustSql()

	res, err := r.execContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return entities.ErrCategoryNotFound
	}
	return nil
}
