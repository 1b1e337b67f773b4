package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"testing"

	"github.com/diewo77/commerce-app/internal/models"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupAPITest(t *testing.T) (*httptest.Server, *http.Client, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(
		&models.User{}, &models.Client{}, &models.Product{},
		&models.Order{}, &models.OrderItem{}, &models.Payment{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	srv := httptest.NewServer(New(db, decimal.RequireFromString("0.20")))
	t.Cleanup(srv.Close)
	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("cookie jar: %v", err)
	}
	return srv, &http.Client{Jar: jar}, db
}

func doJSON(t *testing.T, client *http.Client, method, url string, body any, out any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req, err := http.NewRequest(method, url, &buf)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer resp.Body.Close()
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode %s %s response: %v", method, url, err)
		}
	}
	return resp
}

type orderResponse struct {
	ID              uint            `json:"id"`
	Status          string          `json:"status"`
	Subtotal        decimal.Decimal `json:"subtotal"`
	Discount        decimal.Decimal `json:"discount"`
	VAT             decimal.Decimal `json:"vat"`
	Total           decimal.Decimal `json:"total"`
	RemainingAmount decimal.Decimal `json:"remaining_amount"`
}

func TestAPIEndToEnd(t *testing.T) {
	srv, client, db := setupAPITest(t)

	// Health needs no session.
	if resp := doJSON(t, client, http.MethodGet, srv.URL+"/health", nil, nil); resp.StatusCode != http.StatusOK {
		t.Fatalf("health status = %d", resp.StatusCode)
	}
	if resp := doJSON(t, client, http.MethodGet, srv.URL+"/healthz", nil, nil); resp.StatusCode != http.StatusOK {
		t.Fatalf("healthz status = %d", resp.StatusCode)
	}

	// Everything under /api does.
	if resp := doJSON(t, client, http.MethodGet, srv.URL+"/api/products", nil, nil); resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("unauthenticated status = %d, want 401", resp.StatusCode)
	}

	var user struct {
		ID uint `json:"id"`
	}
	resp := doJSON(t, client, http.MethodPost, srv.URL+"/signup", map[string]any{
		"user_name": "vendeur",
		"email":     "vendeur@example.com",
		"password":  "pass-word-1",
	}, &user)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("signup status = %d", resp.StatusCode)
	}

	var product struct {
		ID uint `json:"id"`
	}
	resp = doJSON(t, client, http.MethodPost, srv.URL+"/api/products", map[string]any{
		"name":           "Clavier",
		"description":    "mechanical keyboard",
		"unit_price":     "100.00",
		"stock_quantity": 10,
	}, &product)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create product status = %d", resp.StatusCode)
	}

	var cl struct {
		ID uint `json:"id"`
	}
	resp = doJSON(t, client, http.MethodPost, srv.URL+"/api/clients", map[string]any{
		"full_name": "Awa Diallo",
		"email":     "awa@example.com",
		"phone":     "0611223344",
		"address":   "12 rue des Lilas",
	}, &cl)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create client status = %d", resp.StatusCode)
	}

	var order orderResponse
	resp = doJSON(t, client, http.MethodPost, srv.URL+"/api/orders", map[string]any{
		"client_id": cl.ID,
		"items":     []map[string]any{{"product_id": product.ID, "quantity": 5}},
	}, &order)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create order status = %d", resp.StatusCode)
	}
	if order.Status != "PENDING" {
		t.Fatalf("order status = %s, want PENDING", order.Status)
	}
	if !order.Total.Equal(decimal.NewFromInt(600)) {
		t.Fatalf("order total = %s, want 600", order.Total)
	}

	var confirmed orderResponse
	resp = doJSON(t, client, http.MethodPatch, srv.URL+fmt.Sprintf("/api/orders/%d/confirm", order.ID), nil, &confirmed)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("confirm status = %d", resp.StatusCode)
	}
	if confirmed.Status != "CONFIRMED" {
		t.Fatalf("status = %s, want CONFIRMED", confirmed.Status)
	}

	// Second confirm is a conflict.
	if resp := doJSON(t, client, http.MethodPatch, srv.URL+fmt.Sprintf("/api/orders/%d/confirm", order.ID), nil, nil); resp.StatusCode != http.StatusConflict {
		t.Fatalf("double confirm status = %d, want 409", resp.StatusCode)
	}

	// Payment routes are admin-only.
	if resp := doJSON(t, client, http.MethodPost, srv.URL+fmt.Sprintf("/api/orders/%d/payments", order.ID), map[string]any{
		"amount": "100.00", "payment_type": "CASH",
	}, nil); resp.StatusCode != http.StatusForbidden {
		t.Fatalf("payment as plain user status = %d, want 403", resp.StatusCode)
	}

	var listing struct {
		Total int             `json:"total"`
		Items []orderResponse `json:"items"`
	}
	resp = doJSON(t, client, http.MethodGet, srv.URL+fmt.Sprintf("/api/clients/%d/orders", cl.ID), nil, &listing)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("list orders status = %d", resp.StatusCode)
	}
	if listing.Total != 1 || len(listing.Items) != 1 {
		t.Fatalf("expected 1 order got total=%d items=%d", listing.Total, len(listing.Items))
	}

	// Stock went down with the confirmed order.
	var stocked models.Product
	if err := db.First(&stocked, product.ID).Error; err != nil {
		t.Fatalf("reload product: %v", err)
	}
	if stocked.StockQuantity != 5 {
		t.Fatalf("stock = %d, want 5", stocked.StockQuantity)
	}
}

func TestAPIPaymentFlowAsAdmin(t *testing.T) {
	srv, client, db := setupAPITest(t)

	resp := doJSON(t, client, http.MethodPost, srv.URL+"/signup", map[string]any{
		"user_name": "chef",
		"email":     "chef@example.com",
		"password":  "pass-word-1",
	}, nil)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("signup status = %d", resp.StatusCode)
	}
	// Promote out of band: there is no self-service admin signup.
	if err := db.Model(&models.User{}).Where("user_name = ?", "chef").
		Update("role", models.RoleAdmin).Error; err != nil {
		t.Fatalf("promote: %v", err)
	}

	var product, cl struct {
		ID uint `json:"id"`
	}
	doJSON(t, client, http.MethodPost, srv.URL+"/api/products", map[string]any{
		"name": "Ecran", "description": "27 inch display", "unit_price": "250.00", "stock_quantity": 4,
	}, &product)
	doJSON(t, client, http.MethodPost, srv.URL+"/api/clients", map[string]any{
		"full_name": "Omar Sy", "email": "omar@example.com", "phone": "06", "address": "rue A",
	}, &cl)

	var order orderResponse
	doJSON(t, client, http.MethodPost, srv.URL+"/api/orders", map[string]any{
		"client_id": cl.ID,
		"items":     []map[string]any{{"product_id": product.ID, "quantity": 2}},
	}, &order)

	var payment struct {
		ID              uint            `json:"id"`
		Status          string          `json:"status"`
		PaymentNumber   int             `json:"payment_number"`
		RemainingAmount decimal.Decimal `json:"remaining_amount"`
	}
	resp = doJSON(t, client, http.MethodPost, srv.URL+fmt.Sprintf("/api/orders/%d/payments", order.ID), map[string]any{
		"amount": "200.00", "payment_type": "CASH",
	}, &payment)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("add payment status = %d", resp.StatusCode)
	}
	if payment.Status != "CASHED" || payment.PaymentNumber != 1 {
		t.Fatalf("unexpected payment: %+v", payment)
	}
	if !payment.RemainingAmount.Equal(order.Total.Sub(decimal.NewFromInt(200))) {
		t.Fatalf("remaining = %s", payment.RemainingAmount)
	}

	var check struct {
		ID     uint   `json:"id"`
		Status string `json:"status"`
	}
	resp = doJSON(t, client, http.MethodPost, srv.URL+fmt.Sprintf("/api/orders/%d/payments", order.ID), map[string]any{
		"amount": "150.00", "payment_type": "CHECK", "bank_name": "BNP", "due_date": "2026-10-01T00:00:00Z",
	}, &check)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("add check status = %d", resp.StatusCode)
	}
	if check.Status != "PENDING" {
		t.Fatalf("check status = %s, want PENDING", check.Status)
	}

	var settled struct {
		Status          string          `json:"status"`
		RemainingAmount decimal.Decimal `json:"remaining_amount"`
	}
	resp = doJSON(t, client, http.MethodPatch, srv.URL+fmt.Sprintf("/api/payments/%d/status", check.ID), map[string]any{
		"status": "REJECTED",
	}, &settled)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("update payment status = %d", resp.StatusCode)
	}
	if settled.Status != "REJECTED" {
		t.Fatalf("status = %s, want REJECTED", settled.Status)
	}
	// The bounced check amount is back on the balance.
	if !settled.RemainingAmount.Equal(order.Total.Sub(decimal.NewFromInt(200))) {
		t.Fatalf("remaining after reject = %s", settled.RemainingAmount)
	}

	// Cash payments cannot be touched afterwards.
	if resp := doJSON(t, client, http.MethodPatch, srv.URL+fmt.Sprintf("/api/payments/%d/status", payment.ID), map[string]any{
		"status": "REJECTED",
	}, nil); resp.StatusCode != http.StatusConflict {
		t.Fatalf("update cash payment status = %d, want 409", resp.StatusCode)
	}
}

func TestAPIInsufficientStock(t *testing.T) {
	srv, client, _ := setupAPITest(t)

	doJSON(t, client, http.MethodPost, srv.URL+"/signup", map[string]any{
		"user_name": "u", "email": "u@example.com", "password": "pass-word-1",
	}, nil)

	var product, cl struct {
		ID uint `json:"id"`
	}
	doJSON(t, client, http.MethodPost, srv.URL+"/api/products", map[string]any{
		"name": "Rare", "description": "limited run", "unit_price": "10.00", "stock_quantity": 2,
	}, &product)
	doJSON(t, client, http.MethodPost, srv.URL+"/api/clients", map[string]any{
		"full_name": "C", "email": "c@example.com", "phone": "0", "address": "a",
	}, &cl)

	var body struct {
		Error   string `json:"error"`
		Details struct {
			Product   string        `json:"product"`
			Available int           `json:"available"`
			Requested int           `json:"requested"`
			Order     orderResponse `json:"order"`
		} `json:"details"`
	}
	resp := doJSON(t, client, http.MethodPost, srv.URL+"/api/orders", map[string]any{
		"client_id": cl.ID,
		"items":     []map[string]any{{"product_id": product.ID, "quantity": 5}},
	}, &body)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
	if body.Error != "insufficient_stock" {
		t.Fatalf("error = %q", body.Error)
	}
	if body.Details.Available != 2 || body.Details.Requested != 5 {
		t.Fatalf("unexpected details: %+v", body.Details)
	}
	// The audit record rides along in the error body.
	if body.Details.Order.Status != "REJECTED" {
		t.Fatalf("audit order status = %s, want REJECTED", body.Details.Order.Status)
	}
	if !body.Details.Order.Total.IsZero() {
		t.Fatalf("audit order total = %s, want 0", body.Details.Order.Total)
	}
}

func TestAPIValidationAndNotFound(t *testing.T) {
	srv, client, _ := setupAPITest(t)

	doJSON(t, client, http.MethodPost, srv.URL+"/signup", map[string]any{
		"user_name": "u", "email": "u@example.com", "password": "pass-word-1",
	}, nil)

	// Unknown ids are 404s.
	if resp := doJSON(t, client, http.MethodGet, srv.URL+"/api/products/999", nil, nil); resp.StatusCode != http.StatusNotFound {
		t.Fatalf("missing product status = %d, want 404", resp.StatusCode)
	}
	if resp := doJSON(t, client, http.MethodGet, srv.URL+"/api/clients/999/orders", nil, nil); resp.StatusCode != http.StatusNotFound {
		t.Fatalf("missing client orders status = %d, want 404", resp.StatusCode)
	}

	// Duplicate signup conflicts.
	if resp := doJSON(t, client, http.MethodPost, srv.URL+"/signup", map[string]any{
		"user_name": "u", "email": "u@example.com", "password": "pass-word-1",
	}, nil); resp.StatusCode != http.StatusConflict {
		t.Fatalf("duplicate signup status = %d, want 409", resp.StatusCode)
	}

	// Bad payloads are 400s with field violations.
	var out struct {
		Error   string            `json:"error"`
		Details map[string]string `json:"details"`
	}
	resp := doJSON(t, client, http.MethodPost, srv.URL+"/api/clients", map[string]any{
		"full_name": "", "email": "not-an-email", "phone": "0", "address": "a",
	}, &out)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("bad client status = %d, want 400", resp.StatusCode)
	}
	if out.Error != "validation_failed" {
		t.Fatalf("error = %q", out.Error)
	}
	if _, ok := out.Details["full_name"]; !ok {
		t.Fatalf("expected full_name violation, got %v", out.Details)
	}

	// After logout the session is gone.
	doJSON(t, client, http.MethodPost, srv.URL+"/logout", nil, nil)
	if resp := doJSON(t, client, http.MethodGet, srv.URL+"/api/products", nil, nil); resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("after logout status = %d, want 401", resp.StatusCode)
	}
}
