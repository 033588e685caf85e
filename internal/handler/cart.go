package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/kirillov6/marketplace-service/internal/entities"
	"github.com/kirillov6/marketplace-service/internal/middleware"
	"github.com/kirillov6/marketplace-service/pkg/utils"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

type CartService interface {
	GetCart(ctx context.Context, customerID uuid.UUID) (entities.Cart, error)
	AddItem(ctx context.Context, customerID, productID uuid.UUID, quantity int) (entities.Cart, error)
	UpdateItem(ctx context.Context, customerID, productID uuid.UUID, quantity int) (entities.Cart, error)
	RemoveItem(ctx context.Context, customerID, productID uuid.UUID) (entities.Cart, error)
	ClearCart(ctx context.Context, customerID uuid.UUID) (entities.Cart, error)
}

type CartHandler struct {
	logger   *slog.Logger
	validate *validator.Validate
	svc      CartService
}

func NewCartHandler(logger *slog.Logger, svc CartService) *CartHandler {
	return &CartHandler{
		logger:   logger.With(slog.String("handler", "cart")),
		validate: validator.New(),
		svc:      svc,
	}
}

func (h *CartHandler) Init(r chi.Router) {
	r.Get("/cart", h.GetCart)
	r.Post("/cart/items", h.AddItem)
	r.Patch("/cart/items/{product_id}", h.UpdateItem)
	r.Delete("/cart/items/{product_id}", h.RemoveItem)
	r.Delete("/cart", h.ClearCart)
}

// customerID pulls the customer profile off the authenticated actor;
// the whole cart subtree is customer-only.
func customerID(ctx context.Context) (uuid.UUID, bool) {
	actor, ok := middleware.ActorFromContext(ctx)
	if !ok || actor.Customer == nil {
		return uuid.Nil, false
	}
	return actor.Customer.ID, true
}

func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := customerID(ctx)
	if !ok {
		utils.WriteError(w, entities.ErrForbidden.Error(), http.StatusForbidden)
		return
	}

	cart, err := h.svc.GetCart(ctx, id)
	if err != nil {
		writeServiceError(ctx, h.logger, w, err)
		return
	}
	utils.WriteData(w, CartEntityToJSON(cart), http.StatusOK)
}

type addItemRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Quantity  int       `json:"quantity" validate:"required,gte=1"`
}

func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := customerID(ctx)
	if !ok {
		utils.WriteError(w, entities.ErrForbidden.Error(), http.StatusForbidden)
		return
	}

	var req addItemRequest
	if err := utils.DecodeBody(r, &req); err != nil {
		utils.WriteError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		utils.WriteValidationError(w, err)
		return
	}

	cart, err := h.svc.AddItem(ctx, id, req.ProductID, req.Quantity)
	if err != nil {
		writeServiceError(ctx, h.logger, w, err)
		return
	}
	utils.WriteData(w, CartEntityToJSON(cart), http.StatusOK)
}

type updateItemRequest struct {
	Quantity int `json:"quantity" validate:"gte=0"`
}

func (h *CartHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := customerID(ctx)
	if !ok {
		utils.WriteError(w, entities.ErrForbidden.Error(), http.StatusForbidden)
		return
	}

	productID, err := uuidParam(r, "product_id")
	if err != nil {
		utils.WriteError(w, "invalid product id", http.StatusBadRequest)
		return
	}

	var req updateItemRequest
	if err := utils.DecodeBody(r, &req); err != nil {
		utils.WriteError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		utils.WriteValidationError(w, err)
		return
	}

	cart, err := h.svc.UpdateItem(ctx, id, productID, req.Quantity)
	if err != nil {
		writeServiceError(ctx, h.logger, w, err)
		return
	}
	utils.WriteData(w, CartEntityToJSON(cart), http.StatusOK)
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := customerID(ctx)
	if !ok {
		utils.WriteError(w, entities.ErrForbidden.Error(), http.StatusForbidden)
		return
	}

	productID, err := uuidParam(r, "product_id")
	if err != nil {
		utils.WriteError(w, "invalid product id", http.StatusBadRequest)
		return
	}

	cart, err := h.svc.RemoveItem(ctx, id, productID)
	if err != nil {
		writeServiceError(ctx, h.logger, w, err)
		return
	}
	utils.WriteData(w, CartEntityToJSON(cart), http.StatusOK)
}

func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := customerID(ctx)
	if !ok {
		utils.WriteError(w, entities.ErrForbidden.Error(), http.StatusForbidden)
		return
	}

	cart, err := h.svc.ClearCart(ctx, id)
	if err != nil {
		writeServiceError(ctx, h.logger, w, err)
		return
	}
	utils.WriteData(w, CartEntityToJSON(cart), http.StatusOK)
}
