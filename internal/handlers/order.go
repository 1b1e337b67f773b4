package handlers

import (
	"errors"
	"net/http"

	"github.com/diewo77/commerce-app/internal/httpx"
	"github.com/diewo77/commerce-app/internal/models"
	"github.com/diewo77/commerce-app/internal/services"
	"github.com/diewo77/commerce-app/internal/validation"
)

type OrderHandler struct {
	Svc *services.OrderService
}

func NewOrderHandler(svc *services.OrderService) *OrderHandler {
	return &OrderHandler{Svc: svc}
}

func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input struct {
		ClientID uint `json:"client_id"`
		Items    []struct {
			ProductID uint `json:"product_id"`
			Quantity  int  `json:"quantity"`
		} `json:"items"`
		PromoCode string `json:"promo_code"`
	}
	if err := httpx.Decode(r, &input); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	v := validation.Violations{}
	for _, it := range input.Items {
		validation.PositiveInt("quantity", it.Quantity, v)
	}
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	in := services.CreateOrderInput{ClientID: input.ClientID, PromoCode: input.PromoCode}
	for _, it := range input.Items {
		in.Items = append(in.Items, services.OrderItemInput{ProductID: it.ProductID, Quantity: it.Quantity})
	}
	order, err := h.Svc.CreateOrder(in)
	if err != nil {
		var stockErr *services.InsufficientStockError
		if errors.As(err, &stockErr) && order != nil {
			// The rejected order was persisted on purpose; expose it so the
			// caller can see the audit record.
			httpx.JSONError(w, http.StatusBadRequest, "insufficient_stock", map[string]any{
				"product":   stockErr.ProductName,
				"available": stockErr.Available,
				"requested": stockErr.Requested,
				"order":     order,
			})
			return
		}
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, order)
}

func (h *OrderHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.Svc.ConfirmOrder)
}

func (h *OrderHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.Svc.CancelOrder)
}

func (h *OrderHandler) Reject(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.Svc.RejectOrder)
}

func (h *OrderHandler) transition(w http.ResponseWriter, r *http.Request, op func(uint) (*models.Order, error)) {
	id, ok := pathID(r, "orderID")
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	order, err := op(id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, order)
}

func (h *OrderHandler) ListByClient(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	orders, err := h.Svc.GetOrdersByClient(id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": orders, "total": len(orders)})
}
