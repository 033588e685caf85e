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
)

type OrderService interface {
	Checkout(ctx context.Context, actor entities.Actor, p service.CheckoutParams) (entities.Order, entities.Payment, error)
	GetOrder(ctx context.Context, actor entities.Actor, id uuid.UUID) (entities.Order, error)
	ListOrders(ctx context.Context, actor entities.Actor, filter entities.OrderFilter) ([]entities.Order, int, error)
	UpdateOrder(ctx context.Context, actor entities.Actor, id uuid.UUID, p service.UpdateOrderParams) (entities.Order, error)
}

type OrderHandler struct {
	logger   *slog.Logger
	validate *validator.Validate
	svc      OrderService
}

func NewOrderHandler(logger *slog.Logger, svc OrderService) *OrderHandler {
	return &OrderHandler{
		logger:   logger.With(slog.String("handler", "orders")),
		validate: validator.New(),
		svc:      svc,
	}
}

func (h *OrderHandler) Init(r chi.Router) {
	r.Post("/orders", h.Checkout)
	r.Get("/orders", h.ListOrders)
	r.Get("/orders/{id}", h.GetOrder)
	r.Patch("/orders/{id}", h.UpdateOrder)
}

type checkoutItemRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Quantity  int       `json:"quantity" validate:"required,gte=1"`
}

type checkoutRequest struct {
	FromCart        bool                  `json:"from_cart"`
	Items           []checkoutItemRequest `json:"items" validate:"dive"`
	PaymentMethod   string                `json:"payment_method" validate:"required"`
	ShippingAddress string                `json:"shipping_address"`
}

func (h *OrderHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, _ := middleware.ActorFromContext(ctx)

	var req checkoutRequest
	if err := utils.DecodeBody(r, &req); err != nil {
		utils.WriteError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		utils.WriteValidationError(w, err)
		return
	}

	lines := make([]service.CheckoutLine, 0, len(req.Items))
	for _, it := range req.Items {
		lines = append(lines, service.CheckoutLine{ProductID: it.ProductID, Quantity: it.Quantity})
	}

	order, payment, err := h.svc.Checkout(ctx, actor, service.CheckoutParams{
		FromCart:        req.FromCart,
		Lines:           lines,
		PaymentMethod:   entities.PaymentMethod(req.PaymentMethod),
		ShippingAddress: req.ShippingAddress,
	})
	if err != nil {
		writeServiceError(ctx, h.logger, w, err)
		return
	}

	ordersPlaced.Inc()
	utils.WriteData(w, map[string]any{
		"order":   OrderEntityToJSON(order),
		"payment": PaymentEntityToJSON(payment),
	}, http.StatusCreated)
}

func orderFilterFromQuery(r *http.Request) entities.OrderFilter {
	q := r.URL.Query()
	filter := entities.OrderFilter{
		CustomerID:    uuidQuery(r, "customer_id"),
		MinTotalPrice: decimalQuery(r, "min_total"),
		MaxTotalPrice: decimalQuery(r, "max_total"),
		StartDate:     timeQuery(r, "start_date"),
		EndDate:       timeQuery(r, "end_date"),
		Search:        q.Get("search"),
		Sort:          q.Get("sort"),
		Page:          pageQuery(r),
	}
	if raw := q.Get("status"); raw != "" {
		status := entities.OrderStatus(raw)
		if status.Valid() {
			filter.Status = &status
		}
	}
	return filter
}

func (h *OrderHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, _ := middleware.ActorFromContext(ctx)

	filter := orderFilterFromQuery(r)
	orders, total, err := h.svc.ListOrders(ctx, actor, filter)
	if err != nil {
		writeServiceError(ctx, h.logger, w, err)
		return
	}

	items := make([]Order, 0, len(orders))
	for _, o := range orders {
		items = append(items, OrderEntityToJSON(o))
	}
	utils.WriteData(w, NewPaginated(items, total, filter.Page), http.StatusOK)
}

func (h *OrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, _ := middleware.ActorFromContext(ctx)

	id, err := uuidParam(r, "id")
	if err != nil {
		utils.WriteError(w, "invalid order id", http.StatusBadRequest)
		return
	}

	order, err := h.svc.GetOrder(ctx, actor, id)
	if err != nil {
		writeServiceError(ctx, h.logger, w, err)
		return
	}
	utils.WriteData(w, OrderEntityToJSON(order), http.StatusOK)
}

type updateOrderRequest struct {
	Status      *string    `json:"status"`
	DelivererID *uuid.UUID `json:"deliverer_id"`
}

func (h *OrderHandler) UpdateOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, _ := middleware.ActorFromContext(ctx)

	id, err := uuidParam(r, "id")
	if err != nil {
		utils.WriteError(w, "invalid order id", http.StatusBadRequest)
		return
	}

	var req updateOrderRequest
	if err := utils.DecodeBody(r, &req); err != nil {
		utils.WriteError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Status == nil && req.DelivererID == nil {
		utils.WriteError(w, "nothing to update", http.StatusBadRequest)
		return
	}

	params := service.UpdateOrderParams{DelivererID: req.DelivererID}
	if req.Status != nil {
		status := entities.OrderStatus(*req.Status)
		params.Status = &status
	}

	order, err := h.svc.UpdateOrder(ctx, actor, id, params)
	if err != nil {
		writeServiceError(ctx, h.logger, w, err)
		return
	}

	if params.Status != nil {
		orderTransitions.WithLabelValues(string(*params.Status)).Inc()
	}
	utils.WriteData(w, OrderEntityToJSON(order), http.StatusOK)
}
