package handlers

import (
	"errors"
	"net/http"

	"github.com/diewo77/commerce-app/internal/httpx"
	"github.com/diewo77/commerce-app/internal/services"
)

// writeServiceError translates service error kinds to HTTP statuses. Details
// carry the wrapped message so clients see which rule fired.
func writeServiceError(w http.ResponseWriter, err error) {
	var stockErr *services.InsufficientStockError
	switch {
	case errors.As(err, &stockErr):
		httpx.JSONError(w, http.StatusBadRequest, "insufficient_stock", map[string]any{
			"product":   stockErr.ProductName,
			"available": stockErr.Available,
			"requested": stockErr.Requested,
		})
	case errors.Is(err, services.ErrNotFound):
		httpx.JSONError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, services.ErrInvalidOrder):
		httpx.JSONError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, services.ErrOrderStatus):
		httpx.JSONError(w, http.StatusConflict, "order_status_conflict", err.Error())
	case errors.Is(err, services.ErrInvalidPaymentStatus):
		httpx.JSONError(w, http.StatusConflict, "invalid_payment_status", err.Error())
	case errors.Is(err, services.ErrDuplicate):
		httpx.JSONError(w, http.StatusConflict, "duplicate_resource", err.Error())
	case errors.Is(err, services.ErrUnauthorized):
		httpx.JSONError(w, http.StatusUnauthorized, "invalid_credentials", nil)
	default:
		httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
	}
}
