package handlers

import (
	"net/http"
	"strconv"

	"github.com/diewo77/commerce-app/internal/httpx"
	"github.com/diewo77/commerce-app/internal/services"
	"github.com/diewo77/commerce-app/internal/validation"
	"github.com/shopspring/decimal"
)

type ProductHandler struct {
	Svc *services.ProductService
}

func NewProductHandler(svc *services.ProductService) *ProductHandler {
	return &ProductHandler{Svc: svc}
}

// pathID parses the {id} wildcard of the matched route.
func pathID(r *http.Request, name string) (uint, bool) {
	id64, err := strconv.ParseUint(r.PathValue(name), 10, 64)
	if err != nil || id64 == 0 {
		return 0, false
	}
	return uint(id64), true
}

func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Name          string          `json:"name"`
		Description   string          `json:"description"`
		UnitPrice     decimal.Decimal `json:"unit_price"`
		StockQuantity int             `json:"stock_quantity"`
	}
	if err := httpx.Decode(r, &input); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	v := validation.Violations{}
	validation.Required("name", input.Name, v)
	validation.Required("description", input.Description, v)
	validation.PositiveDecimal("unit_price", input.UnitPrice, v)
	validation.NonNegativeInt("stock_quantity", input.StockQuantity, v)
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	product, err := h.Svc.CreateProduct(services.ProductInput{
		Name:          input.Name,
		Description:   input.Description,
		UnitPrice:     input.UnitPrice,
		StockQuantity: input.StockQuantity,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, product)
}

func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	products, err := h.Svc.ListProducts()
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": products, "total": len(products)})
}

func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	product, err := h.Svc.GetProduct(id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, product)
}

func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	var input struct {
		Name          *string          `json:"name"`
		Description   *string          `json:"description"`
		UnitPrice     *decimal.Decimal `json:"unit_price"`
		StockQuantity *int             `json:"stock_quantity"`
	}
	if err := httpx.Decode(r, &input); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	v := validation.Violations{}
	if input.Name != nil {
		validation.Required("name", *input.Name, v)
	}
	if input.UnitPrice != nil {
		validation.PositiveDecimal("unit_price", *input.UnitPrice, v)
	}
	if input.StockQuantity != nil {
		validation.NonNegativeInt("stock_quantity", *input.StockQuantity, v)
	}
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	product, err := h.Svc.UpdateProduct(id, services.ProductUpdateInput{
		Name:          input.Name,
		Description:   input.Description,
		UnitPrice:     input.UnitPrice,
		StockQuantity: input.StockQuantity,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, product)
}

func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	product, err := h.Svc.DeleteProduct(id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, product)
}
