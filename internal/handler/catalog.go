package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/kirillov6/marketplace-service/internal/entities"
	"github.com/kirillov6/marketplace-service/internal/middleware"
	"github.com/kirillov6/marketplace-service/internal/service"
	"github.com/kirillov6/marketplace-service/pkg/utils"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type CatalogService interface {
	CreateProduct(ctx context.Context, actor entities.Actor, p service.CreateProductParams) (entities.Product, error)
	UpdateProduct(ctx context.Context, actor entities.Actor, id uuid.UUID, p service.UpdateProductParams) (entities.Product, error)
	DeleteProduct(ctx context.Context, actor entities.Actor, id uuid.UUID) error
	GetProduct(ctx context.Context, id uuid.UUID) (entities.Product, error)
	ListProducts(ctx context.Context, filter entities.ProductFilter) ([]entities.Product, int, error)

	CreateCategory(ctx context.Context, name, description string) (entities.Category, error)
	GetCategory(ctx context.Context, id uuid.UUID) (entities.Category, error)
	ListCategories(ctx context.Context) ([]entities.Category, error)
	UpdateCategory(ctx context.Context, id uuid.UUID, name, description string) (entities.Category, error)
	DeleteCategory(ctx context.Context, id uuid.UUID) error
}

type CatalogHandler struct {
	logger   *slog.Logger
	validate *validator.Validate
	svc      CatalogService
}

func NewCatalogHandler(logger *slog.Logger, svc CatalogService) *CatalogHandler {
	return &CatalogHandler{
		logger:   logger.With(slog.String("handler", "catalog")),
		validate: validator.New(),
		svc:      svc,
	}
}

func (h *CatalogHandler) InitPublic(r chi.Router) {
	r.Get("/products", h.ListProducts)
	r.Get("/products/{id}", h.GetProduct)
	r.Get("/categories", h.ListCategories)
	r.Get("/categories/{id}", h.GetCategory)
}

func (h *CatalogHandler) InitSeller(r chi.Router) {
	r.Post("/products", h.CreateProduct)
	r.Patch("/products/{id}", h.UpdateProduct)
	r.Delete("/products/{id}", h.DeleteProduct)
	r.Get("/seller/products", h.ListOwnProducts)
}

func (h *CatalogHandler) InitAdmin(r chi.Router) {
	r.Post("/categories", h.CreateCategory)
	r.Patch("/categories/{id}", h.UpdateCategory)
	r.Delete("/categories/{id}", h.DeleteCategory)
}

func productFilterFromQuery(r *http.Request) entities.ProductFilter {
	q := r.URL.Query()
	return entities.ProductFilter{
		CategoryID:   uuidQuery(r, "category_id"),
		MinPrice:     decimalQuery(r, "min_price"),
		MaxPrice:     decimalQuery(r, "max_price"),
		MinRating:    floatQuery(r, "min_rating"),
		MaxRating:    floatQuery(r, "max_rating"),
		Availability: q.Get("availability"),
		StockStatus:  q.Get("stock_status"),
		Search:       q.Get("search"),
		Sort:         q.Get("sort"),
		Page:         pageQuery(r),
	}
}

func (h *CatalogHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	filter := productFilterFromQuery(r)

	products, total, err := h.svc.ListProducts(ctx, filter)
	if err != nil {
		writeServiceError(ctx, h.logger, w, err)
		return
	}

	items := make([]Product, 0, len(products))
	for _, p := range products {
		items = append(items, ProductEntityToJSON(p))
	}
	utils.WriteData(w, NewPaginated(items, total, filter.Page), http.StatusOK)
}

// ListOwnProducts is the seller's view of its catalog, including
// products hidden from the public listing.
func (h *CatalogHandler) ListOwnProducts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, _ := middleware.ActorFromContext(ctx)
	if actor.Seller == nil {
		utils.WriteError(w, entities.ErrForbidden.Error(), http.StatusForbidden)
		return
	}

	filter := productFilterFromQuery(r)
	sellerID := actor.Seller.ID
	filter.SellerID = &sellerID

	products, total, err := h.svc.ListProducts(ctx, filter)
	if err != nil {
		writeServiceError(ctx, h.logger, w, err)
		return
	}

	items := make([]Product, 0, len(products))
	for _, p := range products {
		items = append(items, ProductEntityToJSON(p))
	}
	utils.WriteData(w, NewPaginated(items, total, filter.Page), http.StatusOK)
}

func (h *CatalogHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := uuidParam(r, "id")
	if err != nil {
		utils.WriteError(w, "invalid product id", http.StatusBadRequest)
		return
	}

	product, err := h.svc.GetProduct(ctx, id)
	if err != nil {
		writeServiceError(ctx, h.logger, w, err)
		return
	}
	utils.WriteData(w, ProductEntityToJSON(product), http.StatusOK)
}

type createProductRequest struct {
	Name         string     `json:"name" validate:"required"`
	Description  string     `json:"description"`
	Price        string     `json:"price" validate:"required"`
	Stock        int        `json:"stock" validate:"gte=0"`
	CategoryID   *uuid.UUID `json:"category_id"`
	Images       []string   `json:"images" validate:"max=5"`
	PrimaryImage int        `json:"primary_image" validate:"gte=0"`
}

func (h *CatalogHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, _ := middleware.ActorFromContext(ctx)

	var req createProductRequest
	if err := utils.DecodeBody(r, &req); err != nil {
		utils.WriteError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		utils.WriteValidationError(w, err)
		return
	}

	price, err := decimal.NewFromString(req.Price)
	if err != nil {
		utils.WriteError(w, "invalid price", http.StatusBadRequest)
		return
	}

	product, err := h.svc.CreateProduct(ctx, actor, service.CreateProductParams{
		Name:         req.Name,
		Description:  req.Description,
		Price:        price,
		Stock:        req.Stock,
		CategoryID:   req.CategoryID,
		Images:       req.Images,
		PrimaryImage: req.PrimaryImage,
	})
	if err != nil {
		writeServiceError(ctx, h.logger, w, err)
		return
	}
	utils.WriteData(w, ProductEntityToJSON(product), http.StatusCreated)
}

type updateProductRequest struct {
	Name         *string    `json:"name"`
	Description  *string    `json:"description"`
	Price        *string    `json:"price"`
	Stock        *int       `json:"stock"`
	CategoryID   *uuid.UUID `json:"category_id"`
	Images       *[]string  `json:"images"`
	PrimaryImage *int       `json:"primary_image"`
}

func (h *CatalogHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, _ := middleware.ActorFromContext(ctx)

	id, err := uuidParam(r, "id")
	if err != nil {
		utils.WriteError(w, "invalid product id", http.StatusBadRequest)
		return
	}

	var req updateProductRequest
	if err := utils.DecodeBody(r, &req); err != nil {
		utils.WriteError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	params := service.UpdateProductParams{
		Name:         req.Name,
		Description:  req.Description,
		Stock:        req.Stock,
		CategoryID:   req.CategoryID,
		Images:       req.Images,
		PrimaryImage: req.PrimaryImage,
	}
	if req.Price != nil {
		price, err := decimal.NewFromString(*req.Price)
		if err != nil {
			utils.WriteError(w, "invalid price", http.StatusBadRequest)
			return
		}
		params.Price = &price
	}

	product, err := h.svc.UpdateProduct(ctx, actor, id, params)
	if err != nil {
		writeServiceError(ctx, h.logger, w, err)
		return
	}
	utils.WriteData(w, ProductEntityToJSON(product), http.StatusOK)
}

func (h *CatalogHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, _ := middleware.ActorFromContext(ctx)

	id, err := uuidParam(r, "id")
	if err != nil {
		utils.WriteError(w, "invalid product id", http.StatusBadRequest)
		return
	}

	if err := h.svc.DeleteProduct(ctx, actor, id); err != nil {
		writeServiceError(ctx, h.logger, w, err)
		return
	}
	utils.WriteData(w, map[string]string{"status": "deleted"}, http.StatusOK)
}

func (h *CatalogHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	categories, err := h.svc.ListCategories(ctx)
	if err != nil {
		writeServiceError(ctx, h.logger, w, err)
		return
	}

	items := make([]Category, 0, len(categories))
	for _, c := range categories {
		items = append(items, CategoryEntityToJSON(c))
	}
	utils.WriteData(w, items, http.StatusOK)
}

func (h *CatalogHandler) GetCategory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := uuidParam(r, "id")
	if err != nil {
		utils.WriteError(w, "invalid category id", http.StatusBadRequest)
		return
	}

	category, err := h.svc.GetCategory(ctx, id)
	if err != nil {
		writeServiceError(ctx, h.logger, w, err)
		return
	}
	utils.WriteData(w, CategoryEntityToJSON(category), http.StatusOK)
}

type categoryRequest struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
}

func (h *CatalogHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req categoryRequest
	if err := utils.DecodeBody(r, &req); err != nil {
		utils.WriteError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		utils.WriteValidationError(w, err)
		return
	}

	category, err := h.svc.CreateCategory(ctx, req.Name, req.Description)
	if err != nil {
		writeServiceError(ctx, h.logger, w, err)
		return
	}
	utils.WriteData(w, CategoryEntityToJSON(category), http.StatusCreated)
}

func (h *CatalogHandler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := uuidParam(r, "id")
	if err != nil {
		utils.WriteError(w, "invalid category id", http.StatusBadRequest)
		return
	}

	var req categoryRequest
	if err := utils.DecodeBody(r, &req); err != nil {
		utils.WriteError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	category, err := h.svc.UpdateCategory(ctx, id, req.Name, req.Description)
	if err != nil {
		writeServiceError(ctx, h.logger, w, err)
		return
	}
	utils.WriteData(w, CategoryEntityToJSON(category), http.StatusOK)
}

func (h *CatalogHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := uuidParam(r, "id")
	if err != nil {
		utils.WriteError(w, "invalid category id", http.StatusBadRequest)
		return
	}

	if err := h.svc.DeleteCategory(ctx, id); err != nil {
		writeServiceError(ctx, h.logger, w, err)
		return
	}
	utils.WriteData(w, map[string]string{"status": "deleted"}, http.StatusOK)
}
