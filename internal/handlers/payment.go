package handlers

import (
	"net/http"
	"time"

	"github.com/diewo77/commerce-app/internal/httpx"
	"github.com/diewo77/commerce-app/internal/models"
	"github.com/diewo77/commerce-app/internal/services"
	"github.com/diewo77/commerce-app/internal/validation"
	"github.com/shopspring/decimal"
)

type PaymentHandler struct {
	Svc *services.PaymentService
}

func NewPaymentHandler(svc *services.PaymentService) *PaymentHandler {
	return &PaymentHandler{Svc: svc}
}

// paymentResponse mirrors the payment plus the order's balance after the
// operation, so callers never need a second read to know what is left.
type paymentResponse struct {
	*models.Payment
	RemainingAmount decimal.Decimal `json:"remaining_amount"`
}

func (h *PaymentHandler) Add(w http.ResponseWriter, r *http.Request) {
	orderID, ok := pathID(r, "orderID")
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	var input struct {
		Amount      decimal.Decimal `json:"amount"`
		PaymentType string          `json:"payment_type"`
		Reference   string          `json:"reference"`
		BankName    string          `json:"bank_name"`
		DueDate     *time.Time      `json:"due_date"`
	}
	if err := httpx.Decode(r, &input); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	v := validation.Violations{}
	validation.Required("payment_type", input.PaymentType, v)
	validation.PositiveDecimal("amount", input.Amount, v)
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	payment, remaining, err := h.Svc.AddPayment(orderID, services.AddPaymentInput{
		Amount:      input.Amount,
		PaymentType: models.PaymentType(input.PaymentType),
		Reference:   input.Reference,
		BankName:    input.BankName,
		DueDate:     input.DueDate,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, paymentResponse{Payment: payment, RemainingAmount: remaining})
}

func (h *PaymentHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	paymentID, ok := pathID(r, "paymentID")
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	var input struct {
		Status   string     `json:"status"`
		CashDate *time.Time `json:"cash_date"`
	}
	if err := httpx.Decode(r, &input); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	v := validation.Violations{}
	validation.Required("status", input.Status, v)
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	payment, remaining, err := h.Svc.UpdatePaymentStatus(paymentID, services.PaymentStatusUpdateInput{
		Status:   models.PaymentStatus(input.Status),
		CashDate: input.CashDate,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, paymentResponse{Payment: payment, RemainingAmount: remaining})
}
