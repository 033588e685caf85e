package service

import (
	"context"
	"log/slog"

	"github.com/kirillov6/marketplace-service/internal/entities"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ProductRepo interface {
	CreateProduct(ctx context.Context, p entities.Product) error
	GetProductByID(ctx context.Context, id uuid.UUID) (entities.Product, error)
	UpdateProduct(ctx context.Context, p entities.Product) error
	DeleteProduct(ctx context.Context, id uuid.UUID) error
	DecrementStock(ctx context.Context, id uuid.UUID, qty int) error
	RestoreStock(ctx context.Context, id uuid.UUID, qty int) error
	ListProducts(ctx context.Context, filter entities.ProductFilter) ([]entities.Product, int, error)
}

type CategoryRepo interface {
	CreateCategory(ctx context.Context, c entities.Category) error
	GetCategoryByID(ctx context.Context, id uuid.UUID) (entities.Category, error)
	ListCategories(ctx context.Context) ([]entities.Category, error)
	UpdateCategory(ctx context.Context, c entities.Category) error
	DeleteCategory(ctx context.Context, id uuid.UUID) error
}

type catalogService struct {
	logger     *slog.Logger
	products   ProductRepo
	categories CategoryRepo
}

func NewCatalogService(logger *slog.Logger, products ProductRepo, categories CategoryRepo) *catalogService {
	return &catalogService{
		logger:     logger.With(slog.String("service", "catalog")),
		products:   products,
		categories: categories,
	}
}

type CreateProductParams struct {
	Name         string
	Description  string
	Price        decimal.Decimal
	Stock        int
	CategoryID   *uuid.UUID
	Images       []string
	PrimaryImage int
}

func (s *catalogService) CreateProduct(ctx context.Context, actor entities.Actor, p CreateProductParams) (entities.Product, error) {
	if !actor.ApprovedSeller() {
		return entities.Product{}, entities.ErrForbidden
	}

	if p.CategoryID != nil {
		if _, err := s.categories.GetCategoryByID(ctx, *p.CategoryID); err != nil {
			return entities.Product{}, err
		}
	}

	product := entities.Product{
		ID:           uuid.New(),
		SellerID:     actor.Seller.ID,
		Name:         p.Name,
		Description:  p.Description,
		Price:        p.Price,
		Stock:        p.Stock,
		CategoryID:   p.CategoryID,
		Images:       p.Images,
		PrimaryImage: p.PrimaryImage,
	}
	if err := product.Validate(); err != nil {
		return entities.Product{}, err
	}

	if err := s.products.CreateProduct(ctx, product); err != nil {
		return entities.Product{}, err
	}

	s.logger.InfoContext(ctx, "product created",
		slog.String("product_id", product.ID.String()),
		slog.String("seller_id", product.SellerID.String()),
	)
	return product, nil
}

// UpdateProductParams carries a partial update; nil fields keep their
// current value.
type UpdateProductParams struct {
	Name         *string
	Description  *string
	Price        *decimal.Decimal
	Stock        *int
	CategoryID   *uuid.UUID
	Images       *[]string
	PrimaryImage *int
}

func (s *catalogService) UpdateProduct(ctx context.Context, actor entities.Actor, id uuid.UUID, p UpdateProductParams) (entities.Product, error) {
	product, err := s.products.GetProductByID(ctx, id)
	if err != nil {
		return entities.Product{}, err
	}
	if !s.canManageProduct(actor, product) {
		return entities.Product{}, entities.ErrForbidden
	}

	if p.Name != nil {
		product.Name = *p.Name
	}
	if p.Description != nil {
		product.Description = *p.Description
	}
	if p.Price != nil {
		product.Price = *p.Price
	}
	if p.Stock != nil {
		product.Stock = *p.Stock
	}
	if p.CategoryID != nil {
		if _, err := s.categories.GetCategoryByID(ctx, *p.CategoryID); err != nil {
			return entities.Product{}, err
		}
		product.CategoryID = p.CategoryID
	}
	if p.Images != nil {
		product.Images = *p.Images
	}
	if p.PrimaryImage != nil {
		product.PrimaryImage = *p.PrimaryImage
	}

	if err := product.Validate(); err != nil {
		return entities.Product{}, err
	}
	if err := s.products.UpdateProduct(ctx, product); err != nil {
		return entities.Product{}, err
	}
	return product, nil
}

func (s *catalogService) DeleteProduct(ctx context.Context, actor entities.Actor, id uuid.UUID) error {
	product, err := s.products.GetProductByID(ctx, id)
	if err != nil {
		return err
	}
	if !s.canManageProduct(actor, product) {
		return entities.ErrForbidden
	}
	return s.products.DeleteProduct(ctx, id)
}

func (s *catalogService) canManageProduct(actor entities.Actor, p entities.Product) bool {
	if actor.IsAdmin() {
		return true
	}
	return actor.ApprovedSeller() && p.SellerID == actor.Seller.ID
}

func (s *catalogService) GetProduct(ctx context.Context, id uuid.UUID) (entities.Product, error) {
	return s.products.GetProductByID(ctx, id)
}

// ListProducts is public; when the caller is a seller asking for its
// own catalog the handler sets filter.SellerID.
func (s *catalogService) ListProducts(ctx context.Context, filter entities.ProductFilter) ([]entities.Product, int, error) {
	filter.Page = filter.Page.Normalize()
	return s.products.ListProducts(ctx, filter)
}

func (s *catalogService) CreateCategory(ctx context.Context, name, description string) (entities.Category, error) {
	category := entities.Category{
		ID:          uuid.New(),
		Name:        name,
		Description: description,
	}
	if err := s.categories.CreateCategory(ctx, category); err != nil {
		return entities.Category{}, err
	}
	return category, nil
}

func (s *catalogService) GetCategory(ctx context.Context, id uuid.UUID) (entities.Category, error) {
	return s.categories.GetCategoryByID(ctx, id)
}

func (s *catalogService) ListCategories(ctx context.Context) ([]entities.Category, error) {
	return s.categories.ListCategories(ctx)
}

func (s *catalogService) UpdateCategory(ctx context.Context, id uuid.UUID, name, description string) (entities.Category, error) {
	category, err := s.categories.GetCategoryByID(ctx, id)
	if err != nil {
		return entities.Category{}, err
	}
	if name != "" {
		category.Name = name
	}
	if description != "" {
		category.Description = description
	}
	if err := s.categories.UpdateCategory(ctx, category); err != nil {
		return entities.Category{}, err
	}
	return category, nil
}

func (s *catalogService) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	return s.categories.DeleteCategory(ctx, id)
}
