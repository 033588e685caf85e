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

type DeliveryService interface {
	ListDeliveries(ctx context.Context, actor entities.Actor) ([]entities.Delivery, error)
	GetDelivery(ctx context.Context, actor entities.Actor, id uuid.UUID) (entities.Delivery, error)
	UpdateDeliveryStatus(ctx context.Context, actor entities.Actor, id uuid.UUID, status entities.DeliveryStatus) (entities.Delivery, error)
}

type DeliveryHandler struct {
	logger   *slog.Logger
	validate *validator.Validate
	svc      DeliveryService
}

func NewDeliveryHandler(logger *slog.Logger, svc DeliveryService) *DeliveryHandler {
	return &DeliveryHandler{
		logger:   logger.With(slog.String("handler", "deliveries")),
		validate: validator.New(),
		svc:      svc,
	}
}

func (h *DeliveryHandler) Init(r chi.Router) {
	r.Get("/deliveries", h.ListDeliveries)
	r.Get("/deliveries/{id}", h.GetDelivery)
	r.Patch("/deliveries/{id}", h.UpdateDeliveryStatus)
}

func (h *DeliveryHandler) ListDeliveries(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, _ := middleware.ActorFromContext(ctx)

	deliveries, err := h.svc.ListDeliveries(ctx, actor)
	if err != nil {
		writeServiceError(ctx, h.logger, w, err)
		return
	}

	items := make([]Delivery, 0, len(deliveries))
	for _, d := range deliveries {
		items = append(items, DeliveryEntityToJSON(d))
	}
	utils.WriteData(w, items, http.StatusOK)
}

func (h *DeliveryHandler) GetDelivery(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, _ := middleware.ActorFromContext(ctx)

	id, err := uuidParam(r, "id")
	if err != nil {
		utils.WriteError(w, "invalid delivery id", http.StatusBadRequest)
		return
	}

	delivery, err := h.svc.GetDelivery(ctx, actor, id)
	if err != nil {
		writeServiceError(ctx, h.logger, w, err)
		return
	}
	utils.WriteData(w, DeliveryEntityToJSON(delivery), http.StatusOK)
}

type updateDeliveryRequest struct {
	Status string `json:"status" validate:"required"`
}

func (h *DeliveryHandler) UpdateDeliveryStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, _ := middleware.ActorFromContext(ctx)

	id, err := uuidParam(r, "id")
	if err != nil {
		utils.WriteError(w, "invalid delivery id", http.StatusBadRequest)
		return
	}

	var req updateDeliveryRequest
	if err := utils.DecodeBody(r, &req); err != nil {
		utils.WriteError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		utils.WriteValidationError(w, err)
		return
	}

	delivery, err := h.svc.UpdateDeliveryStatus(ctx, actor, id, entities.DeliveryStatus(req.Status))
	if err != nil {
		writeServiceError(ctx, h.logger, w, err)
		return
	}
	utils.WriteData(w, DeliveryEntityToJSON(delivery), http.StatusOK)
}
