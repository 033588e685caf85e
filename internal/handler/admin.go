package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/kirillov6/marketplace-service/internal/entities"
	"github.com/kirillov6/marketplace-service/pkg/utils"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

type AdminService interface {
	ApproveSeller(ctx context.Context, id uuid.UUID) (entities.Seller, error)
	RejectSeller(ctx context.Context, id uuid.UUID, reason string) (entities.Seller, error)
	ApproveDeliverer(ctx context.Context, id uuid.UUID) (entities.Deliverer, error)
	RejectDeliverer(ctx context.Context, id uuid.UUID, reason string) (entities.Deliverer, error)
	ListSellers(ctx context.Context, filter entities.ProfileFilter) ([]entities.Seller, int, error)
	ListDeliverers(ctx context.Context, filter entities.ProfileFilter) ([]entities.Deliverer, int, error)
	ListCustomers(ctx context.Context, filter entities.ProfileFilter) ([]entities.Customer, int, error)
	GetCustomer(ctx context.Context, id uuid.UUID) (entities.Customer, error)
	ListUsers(ctx context.Context, filter entities.UserFilter) ([]entities.UserAccount, int, error)
	GetUser(ctx context.Context, id uuid.UUID) (entities.UserAccount, error)
}

type AnalyticsService interface {
	GetSummary(ctx context.Context) (entities.AnalyticsSummary, error)
}

type AdminHandler struct {
	logger    *slog.Logger
	validate  *validator.Validate
	svc       AdminService
	analytics AnalyticsService
}

func NewAdminHandler(logger *slog.Logger, svc AdminService, analytics AnalyticsService) *AdminHandler {
	return &AdminHandler{
		logger:    logger.With(slog.String("handler", "admin")),
		validate:  validator.New(),
		svc:       svc,
		analytics: analytics,
	}
}

func (h *AdminHandler) Init(r chi.Router) {
	r.Get("/admin/sellers", h.ListSellers)
	r.Post("/admin/sellers/{id}/approve", h.ApproveSeller)
	r.Post("/admin/sellers/{id}/reject", h.RejectSeller)
	r.Get("/admin/deliverers", h.ListDeliverers)
	r.Post("/admin/deliverers/{id}/approve", h.ApproveDeliverer)
	r.Post("/admin/deliverers/{id}/reject", h.RejectDeliverer)
	r.Get("/admin/customers", h.ListCustomers)
	r.Get("/admin/customers/{id}", h.GetCustomer)
	r.Get("/admin/users", h.ListUsers)
	r.Get("/admin/users/{id}", h.GetUser)
	r.Get("/admin/analytics", h.Analytics)
}

func profileFilterFromQuery(r *http.Request) entities.ProfileFilter {
	q := r.URL.Query()
	filter := entities.ProfileFilter{
		Search: q.Get("search"),
		Sort:   q.Get("sort"),
		Page:   pageQuery(r),
	}
	if raw := q.Get("status"); raw != "" {
		status := entities.ApprovalStatus(raw)
		filter.Status = &status
	}
	return filter
}

func (h *AdminHandler) ListSellers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	filter := profileFilterFromQuery(r)

	sellers, total, err := h.svc.ListSellers(ctx, filter)
	if err != nil {
		writeServiceError(ctx, h.logger, w, err)
		return
	}

	items := make([]Seller, 0, len(sellers))
	for _, s := range sellers {
		items = append(items, SellerEntityToJSON(s))
	}
	utils.WriteData(w, NewPaginated(items, total, filter.Page), http.StatusOK)
}

func (h *AdminHandler) ListDeliverers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	filter := profileFilterFromQuery(r)

	deliverers, total, err := h.svc.ListDeliverers(ctx, filter)
	if err != nil {
		writeServiceError(ctx, h.logger, w, err)
		return
	}

	items := make([]Deliverer, 0, len(deliverers))
	for _, d := range deliverers {
		items = append(items, DelivererEntityToJSON(d))
	}
	utils.WriteData(w, NewPaginated(items, total, filter.Page), http.StatusOK)
}

func (h *AdminHandler) ApproveSeller(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := uuidParam(r, "id")
	if err != nil {
		utils.WriteError(w, "invalid seller id", http.StatusBadRequest)
		return
	}

	seller, err := h.svc.ApproveSeller(ctx, id)
	if err != nil {
		writeServiceError(ctx, h.logger, w, err)
		return
	}
	utils.WriteData(w, SellerEntityToJSON(seller), http.StatusOK)
}

type rejectRequest struct {
	Reason string `json:"reason" validate:"required"`
}

func (h *AdminHandler) RejectSeller(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := uuidParam(r, "id")
	if err != nil {
		utils.WriteError(w, "invalid seller id", http.StatusBadRequest)
		return
	}

	var req rejectRequest
	if err := utils.DecodeBody(r, &req); err != nil {
		utils.WriteError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		utils.WriteValidationError(w, err)
		return
	}

	seller, err := h.svc.RejectSeller(ctx, id, req.Reason)
	if err != nil {
		writeServiceError(ctx, h.logger, w, err)
		return
	}
	utils.WriteData(w, SellerEntityToJSON(seller), http.StatusOK)
}

func (h *AdminHandler) ApproveDeliverer(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := uuidParam(r, "id")
	if err != nil {
		utils.WriteError(w, "invalid deliverer id", http.StatusBadRequest)
		return
	}

	deliverer, err := h.svc.ApproveDeliverer(ctx, id)
	if err != nil {
		writeServiceError(ctx, h.logger, w, err)
		return
	}
	utils.WriteData(w, DelivererEntityToJSON(deliverer), http.StatusOK)
}

func (h *AdminHandler) RejectDeliverer(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := uuidParam(r, "id")
	if err != nil {
		utils.WriteError(w, "invalid deliverer id", http.StatusBadRequest)
		return
	}

	var req rejectRequest
	if err := utils.DecodeBody(r, &req); err != nil {
		utils.WriteError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		utils.WriteValidationError(w, err)
		return
	}

	deliverer, err := h.svc.RejectDeliverer(ctx, id, req.Reason)
	if err != nil {
		writeServiceError(ctx, h.logger, w, err)
		return
	}
	utils.WriteData(w, DelivererEntityToJSON(deliverer), http.StatusOK)
}

func (h *AdminHandler) ListCustomers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	filter := profileFilterFromQuery(r)

	customers, total, err := h.svc.ListCustomers(ctx, filter)
	if err != nil {
		writeServiceError(ctx, h.logger, w, err)
		return
	}

	items := make([]Customer, 0, len(customers))
	for _, c := range customers {
		items = append(items, CustomerEntityToJSON(c))
	}
	utils.WriteData(w, NewPaginated(items, total, filter.Page), http.StatusOK)
}

func (h *AdminHandler) GetCustomer(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := uuidParam(r, "id")
	if err != nil {
		utils.WriteError(w, "invalid customer id", http.StatusBadRequest)
		return
	}

	customer, err := h.svc.GetCustomer(ctx, id)
	if err != nil {
		writeServiceError(ctx, h.logger, w, err)
		return
	}
	utils.WriteData(w, CustomerEntityToJSON(customer), http.StatusOK)
}

func userFilterFromQuery(r *http.Request) entities.UserFilter {
	q := r.URL.Query()
	filter := entities.UserFilter{
		Search: q.Get("search"),
		Sort:   q.Get("sort"),
		Page:   pageQuery(r),
	}
	if raw := q.Get("role"); raw != "" {
		role := entities.Role(raw)
		filter.Role = &role
	}
	if raw := q.Get("is_active"); raw != "" {
		if active, err := strconv.ParseBool(raw); err == nil {
			filter.IsActive = &active
		}
	}
	return filter
}

func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	filter := userFilterFromQuery(r)

	accounts, total, err := h.svc.ListUsers(ctx, filter)
	if err != nil {
		writeServiceError(ctx, h.logger, w, err)
		return
	}

	items := make([]UserAccount, 0, len(accounts))
	for _, a := range accounts {
		items = append(items, UserAccountEntityToJSON(a))
	}
	utils.WriteData(w, NewPaginated(items, total, filter.Page), http.StatusOK)
}

func (h *AdminHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := uuidParam(r, "id")
	if err != nil {
		utils.WriteError(w, "invalid user id", http.StatusBadRequest)
		return
	}

	account, err := h.svc.GetUser(ctx, id)
	if err != nil {
		writeServiceError(ctx, h.logger, w, err)
		return
	}
	utils.WriteData(w, UserAccountEntityToJSON(account), http.StatusOK)
}

func (h *AdminHandler) Analytics(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	summary, err := h.analytics.GetSummary(ctx)
	if err != nil {
		writeServiceError(ctx, h.logger, w, err)
		return
	}
	utils.WriteData(w, AnalyticsEntityToJSON(summary), http.StatusOK)
}
