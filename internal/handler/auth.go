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
)

type AuthService interface {
	RegisterCustomer(ctx context.Context, p service.RegisterCustomerParams) (entities.User, string, error)
	RegisterSeller(ctx context.Context, p service.RegisterSellerParams) error
	RegisterDeliverer(ctx context.Context, p service.RegisterDelivererParams) error
	Login(ctx context.Context, email, password string) (entities.User, string, error)
}

type AuthHandler struct {
	logger   *slog.Logger
	validate *validator.Validate
	svc      AuthService
}

func NewAuthHandler(logger *slog.Logger, svc AuthService) *AuthHandler {
	return &AuthHandler{
		logger:   logger.With(slog.String("handler", "auth")),
		validate: validator.New(),
		svc:      svc,
	}
}

func (h *AuthHandler) Init(r chi.Router) {
	r.Post("/auth/register/customer", h.RegisterCustomer)
	r.Post("/auth/register/seller", h.RegisterSeller)
	r.Post("/auth/register/deliverer", h.RegisterDeliverer)
	r.Post("/auth/login", h.Login)
}

type registerCustomerRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	FullName string `json:"full_name" validate:"required"`
	Phone    string `json:"phone" validate:"required"`
	Address  string `json:"address" validate:"required"`
}

func (h *AuthHandler) RegisterCustomer(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req registerCustomerRequest
	if err := utils.DecodeBody(r, &req); err != nil {
		utils.WriteError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		utils.WriteValidationError(w, err)
		return
	}

	user, token, err := h.svc.RegisterCustomer(ctx, service.RegisterCustomerParams{
		Email:    req.Email,
		Password: req.Password,
		FullName: req.FullName,
		Phone:    req.Phone,
		Address:  req.Address,
	})
	if err != nil {
		writeServiceError(ctx, h.logger, w, err)
		return
	}

	utils.WriteData(w, AuthResponse{User: UserEntityToJSON(user), Token: token}, http.StatusCreated)
}

type registerSellerRequest struct {
	Email     string   `json:"email" validate:"required,email"`
	Password  string   `json:"password" validate:"required,min=8"`
	ShopName  string   `json:"shop_name" validate:"required"`
	Documents []string `json:"documents" validate:"required,min=1"`
}

func (h *AuthHandler) RegisterSeller(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req registerSellerRequest
	if err := utils.DecodeBody(r, &req); err != nil {
		utils.WriteError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		utils.WriteValidationError(w, err)
		return
	}

	err := h.svc.RegisterSeller(ctx, service.RegisterSellerParams{
		Email:     req.Email,
		Password:  req.Password,
		ShopName:  req.ShopName,
		Documents: req.Documents,
	})
	if err != nil {
		writeServiceError(ctx, h.logger, w, err)
		return
	}

	utils.WriteData(w, map[string]string{"status": "pending approval"}, http.StatusAccepted)
}

type registerDelivererRequest struct {
	Email         string `json:"email" validate:"required,email"`
	Password      string `json:"password" validate:"required,min=8"`
	FullName      string `json:"full_name" validate:"required"`
	LicenseNumber string `json:"license_number" validate:"required"`
	NIC           string `json:"nic" validate:"required"`
}

func (h *AuthHandler) RegisterDeliverer(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req registerDelivererRequest
	if err := utils.DecodeBody(r, &req); err != nil {
		utils.WriteError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		utils.WriteValidationError(w, err)
		return
	}

	err := h.svc.RegisterDeliverer(ctx, service.RegisterDelivererParams{
		Email:         req.Email,
		Password:      req.Password,
		FullName:      req.FullName,
		LicenseNumber: req.LicenseNumber,
		NIC:           req.NIC,
	})
	if err != nil {
		writeServiceError(ctx, h.logger, w, err)
		return
	}

	utils.WriteData(w, map[string]string{"status": "pending approval"}, http.StatusAccepted)
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req loginRequest
	if err := utils.DecodeBody(r, &req); err != nil {
		utils.WriteError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		utils.WriteValidationError(w, err)
		return
	}

	user, token, err := h.svc.Login(ctx, req.Email, req.Password)
	if err != nil {
		writeServiceError(ctx, h.logger, w, err)
		return
	}

	utils.WriteData(w, AuthResponse{User: UserEntityToJSON(user), Token: token}, http.StatusOK)
}
