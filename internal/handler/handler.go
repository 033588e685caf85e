package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/kirillov6/marketplace-service/internal/entities"
	"github.com/kirillov6/marketplace-service/pkg/utils"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// statusOf maps domain sentinels to HTTP status codes; everything
// unmapped is a 500.
func statusOf(err error) (int, bool) {
	switch {
	case errors.Is(err, entities.ErrUserNotFound),
		errors.Is(err, entities.ErrProfileNotFound),
		errors.Is(err, entities.ErrCategoryNotFound),
		errors.Is(err, entities.ErrProductNotFound),
		errors.Is(err, entities.ErrCartNotFound),
		errors.Is(err, entities.ErrCartItemNotFound),
		errors.Is(err, entities.ErrOrderNotFound),
		errors.Is(err, entities.ErrDelivererNotFound),
		errors.Is(err, entities.ErrDeliveryNotFound),
		errors.Is(err, entities.ErrPaymentNotFound),
		errors.Is(err, entities.ErrAddressNotFound):
		return http.StatusNotFound, true

	case errors.Is(err, entities.ErrEmailTaken),
		errors.Is(err, entities.ErrCategoryTaken),
		errors.Is(err, entities.ErrRegistrationPending),
		errors.Is(err, entities.ErrInsufficientStock),
		errors.Is(err, entities.ErrInvalidTransition),
		errors.Is(err, entities.ErrDelivererRequired),
		errors.Is(err, entities.ErrDeliveryCompleted),
		errors.Is(err, entities.ErrPaymentAlreadyProcessed):
		return http.StatusConflict, true

	case errors.Is(err, entities.ErrInvalidProduct),
		errors.Is(err, entities.ErrProductUnavailable),
		errors.Is(err, entities.ErrEmptyOrder),
		errors.Is(err, entities.ErrInvalidDeliveryStatus):
		return http.StatusBadRequest, true

	case errors.Is(err, entities.ErrInvalidCredentials):
		return http.StatusUnauthorized, true

	case errors.Is(err, entities.ErrForbidden),
		errors.Is(err, entities.ErrAccountInactive),
		errors.Is(err, entities.ErrProfileNotApproved):
		return http.StatusForbidden, true
	}
	return 0, false
}

func writeServiceError(ctx context.Context, logger *slog.Logger, w http.ResponseWriter, err error) {
	if code, ok := statusOf(err); ok {
		utils.WriteError(w, err.Error(), code)
		return
	}
	logger.ErrorContext(ctx, "request failed", slog.Any("error", err))
	utils.WriteError(w, "internal server error", http.StatusInternalServerError)
}

func uuidParam(r *http.Request, name string) (uuid.UUID, error) {
	return uuid.Parse(chi.URLParam(r, name))
}

func pageQuery(r *http.Request) entities.Page {
	var page entities.Page
	page.Page, _ = strconv.Atoi(r.URL.Query().Get("page"))
	page.Limit, _ = strconv.Atoi(r.URL.Query().Get("limit"))
	return page.Normalize()
}

func decimalQuery(r *http.Request, name string) *decimal.Decimal {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return nil
	}
	return &d
}

func floatQuery(r *http.Request, name string) *float64 {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil
	}
	return &f
}

func uuidQuery(r *http.Request, name string) *uuid.UUID {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil
	}
	return &id
}

func timeQuery(r *http.Request, name string) *time.Time {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return &t
		}
	}
	return nil
}
