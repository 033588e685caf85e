package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/kirillov6/marketplace-service/internal/entities"
	"github.com/kirillov6/marketplace-service/internal/service"
	"github.com/kirillov6/marketplace-service/pkg/utils"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

type AddressService interface {
	ListAddresses(ctx context.Context, customerID uuid.UUID) ([]entities.Address, error)
	AddAddress(ctx context.Context, customerID uuid.UUID, p service.AddAddressParams) ([]entities.Address, error)
	UpdateAddress(ctx context.Context, customerID, addressID uuid.UUID, p service.UpdateAddressParams) ([]entities.Address, error)
	DeleteAddress(ctx context.Context, customerID, addressID uuid.UUID) ([]entities.Address, error)
	SetDefaultAddress(ctx context.Context, customerID, addressID uuid.UUID) ([]entities.Address, error)
}

type AddressHandler struct {
	logger   *slog.Logger
	validate *validator.Validate
	svc      AddressService
}

func NewAddressHandler(logger *slog.Logger, svc AddressService) *AddressHandler {
	return &AddressHandler{
		logger:   logger.With(slog.String("handler", "addresses")),
		validate: validator.New(),
		svc:      svc,
	}
}

func (h *AddressHandler) Init(r chi.Router) {
	r.Get("/profile/addresses", h.ListAddresses)
	r.Post("/profile/addresses", h.AddAddress)
	r.Patch("/profile/addresses/{id}", h.UpdateAddress)
	r.Delete("/profile/addresses/{id}", h.DeleteAddress)
	r.Post("/profile/addresses/{id}/default", h.SetDefaultAddress)
}

func (h *AddressHandler) ListAddresses(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := customerID(ctx)
	if !ok {
		utils.WriteError(w, entities.ErrForbidden.Error(), http.StatusForbidden)
		return
	}

	book, err := h.svc.ListAddresses(ctx, id)
	if err != nil {
		writeServiceError(ctx, h.logger, w, err)
		return
	}
	utils.WriteData(w, addressesToJSON(book), http.StatusOK)
}

type addAddressRequest struct {
	Label      string `json:"label"`
	Street     string `json:"street" validate:"required"`
	City       string `json:"city" validate:"required"`
	PostalCode string `json:"postal_code" validate:"required"`
	Country    string `json:"country" validate:"required"`
	IsDefault  bool   `json:"is_default"`
}

func (h *AddressHandler) AddAddress(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := customerID(ctx)
	if !ok {
		utils.WriteError(w, entities.ErrForbidden.Error(), http.StatusForbidden)
		return
	}

	var req addAddressRequest
	if err := utils.DecodeBody(r, &req); err != nil {
		utils.WriteError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		utils.WriteValidationError(w, err)
		return
	}

	book, err := h.svc.AddAddress(ctx, id, service.AddAddressParams{
		Label:      req.Label,
		Street:     req.Street,
		City:       req.City,
		PostalCode: req.PostalCode,
		Country:    req.Country,
		IsDefault:  req.IsDefault,
	})
	if err != nil {
		writeServiceError(ctx, h.logger, w, err)
		return
	}
	utils.WriteData(w, addressesToJSON(book), http.StatusCreated)
}

type updateAddressRequest struct {
	Label      *string `json:"label"`
	Street     *string `json:"street"`
	City       *string `json:"city"`
	PostalCode *string `json:"postal_code"`
	Country    *string `json:"country"`
	IsDefault  *bool   `json:"is_default"`
}

func (h *AddressHandler) UpdateAddress(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := customerID(ctx)
	if !ok {
		utils.WriteError(w, entities.ErrForbidden.Error(), http.StatusForbidden)
		return
	}

	addressID, err := uuidParam(r, "id")
	if err != nil {
		utils.WriteError(w, "invalid address id", http.StatusBadRequest)
		return
	}

	var req updateAddressRequest
	if err := utils.DecodeBody(r, &req); err != nil {
		utils.WriteError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	book, err := h.svc.UpdateAddress(ctx, id, addressID, service.UpdateAddressParams{
		Label:      req.Label,
		Street:     req.Street,
		City:       req.City,
		PostalCode: req.PostalCode,
		Country:    req.Country,
		IsDefault:  req.IsDefault,
	})
	if err != nil {
		writeServiceError(ctx, h.logger, w, err)
		return
	}
	utils.WriteData(w, addressesToJSON(book), http.StatusOK)
}

func (h *AddressHandler) DeleteAddress(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := customerID(ctx)
	if !ok {
		utils.WriteError(w, entities.ErrForbidden.Error(), http.StatusForbidden)
		return
	}

	addressID, err := uuidParam(r, "id")
	if err != nil {
		utils.WriteError(w, "invalid address id", http.StatusBadRequest)
		return
	}

	book, err := h.svc.DeleteAddress(ctx, id, addressID)
	if err != nil {
		writeServiceError(ctx, h.logger, w, err)
		return
	}
	utils.WriteData(w, addressesToJSON(book), http.StatusOK)
}

func (h *AddressHandler) SetDefaultAddress(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := customerID(ctx)
	if !ok {
		utils.WriteError(w, entities.ErrForbidden.Error(), http.StatusForbidden)
		return
	}

	addressID, err := uuidParam(r, "id")
	if err != nil {
		utils.WriteError(w, "invalid address id", http.StatusBadRequest)
		return
	}

	book, err := h.svc.SetDefaultAddress(ctx, id, addressID)
	if err != nil {
		writeServiceError(ctx, h.logger, w, err)
		return
	}
	utils.WriteData(w, addressesToJSON(book), http.StatusOK)
}
