package handler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/kirillov6/marketplace-service/internal/entities"
	"github.com/kirillov6/marketplace-service/internal/gateway"
	"github.com/kirillov6/marketplace-service/internal/middleware"
	"github.com/kirillov6/marketplace-service/internal/service"
	"github.com/kirillov6/marketplace-service/pkg/utils"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

const maxWebhookBody = 1 << 20

type PaymentService interface {
	GetPaymentByOrder(ctx context.Context, actor entities.Actor, orderID uuid.UUID) (entities.Payment, error)
	CreateCheckoutSession(ctx context.Context, actor entities.Actor, p service.CheckoutParams) (service.CheckoutSessionResult, error)
	HandleWebhook(ctx context.Context, payload []byte, signature string) error
}

type PaymentHandler struct {
	logger   *slog.Logger
	validate *validator.Validate
	svc      PaymentService
}

func NewPaymentHandler(logger *slog.Logger, svc PaymentService) *PaymentHandler {
	return &PaymentHandler{
		logger:   logger.With(slog.String("handler", "payments")),
		validate: validator.New(),
		svc:      svc,
	}
}

func (h *PaymentHandler) Init(r chi.Router) {
	r.Get("/orders/{id}/payment", h.GetPayment)
	r.Post("/payments/checkout-session", h.CreateCheckoutSession)
}

// InitWebhook is mounted outside the auth middleware; the gateway
// authenticates with the signature header instead of a token.
func (h *PaymentHandler) InitWebhook(r chi.Router) {
	r.Post("/payments/webhook", h.Webhook)
}

func (h *PaymentHandler) GetPayment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, _ := middleware.ActorFromContext(ctx)

	orderID, err := uuidParam(r, "id")
	if err != nil {
		utils.WriteError(w, "invalid order id", http.StatusBadRequest)
		return
	}

	payment, err := h.svc.GetPaymentByOrder(ctx, actor, orderID)
	if err != nil {
		writeServiceError(ctx, h.logger, w, err)
		return
	}
	utils.WriteData(w, PaymentEntityToJSON(payment), http.StatusOK)
}

type checkoutSessionRequest struct {
	FromCart        bool                  `json:"from_cart"`
	Items           []checkoutItemRequest `json:"items" validate:"dive"`
	ShippingAddress string                `json:"shipping_address"`
}

func (h *PaymentHandler) CreateCheckoutSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, _ := middleware.ActorFromContext(ctx)

	var req checkoutSessionRequest
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

	result, err := h.svc.CreateCheckoutSession(ctx, actor, service.CheckoutParams{
		FromCart:        req.FromCart,
		Lines:           lines,
		PaymentMethod:   entities.MethodCard,
		ShippingAddress: req.ShippingAddress,
	})
	if err != nil {
		writeServiceError(ctx, h.logger, w, err)
		return
	}

	utils.WriteData(w, map[string]string{
		"order_id":   result.OrderID.String(),
		"session_id": result.SessionID,
		"url":        result.URL,
	}, http.StatusCreated)
}

// Webhook acknowledges every verified delivery with 200 so the gateway
// does not retry; processing failures are logged and handled out of
// band. Only a bad signature earns a 400.
func (h *PaymentHandler) Webhook(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	payload, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		utils.WriteError(w, "failed to read body", http.StatusBadRequest)
		return
	}

	err = h.svc.HandleWebhook(ctx, payload, r.Header.Get(gateway.SignatureHeader))
	if errors.Is(err, gateway.ErrInvalidSignature) {
		webhooksRejected.Inc()
		utils.WriteError(w, gateway.ErrInvalidSignature.Error(), http.StatusBadRequest)
		return
	}
	if err != nil {
		h.logger.ErrorContext(ctx, "webhook processing failed", slog.Any("error", err))
	} else {
		paymentsCompleted.Inc()
	}

	utils.WriteData(w, map[string]bool{"received": true}, http.StatusOK)
}
