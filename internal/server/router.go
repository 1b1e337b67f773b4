package server

import (
	"context"
	"net/http"

	"github.com/diewo77/commerce-app/internal/auth"
	"github.com/diewo77/commerce-app/internal/handlers"
	"github.com/diewo77/commerce-app/internal/httpx"
	"github.com/diewo77/commerce-app/internal/models"
	"github.com/diewo77/commerce-app/internal/services"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// New constructs the root http.Handler with all routes and middlewares applied.
func New(db *gorm.DB, vatRate decimal.Decimal) http.Handler {
	mux := http.NewServeMux()

	// Resolve session user ids to roles so RequireAuth/RequireAdmin can check
	// the user still exists and whether payment routes are allowed.
	auth.SetRoleResolver(func(_ context.Context, uid uint) string {
		var user models.User
		if err := db.Select("role").First(&user, uid).Error; err != nil {
			return ""
		}
		return string(user.Role)
	})

	// --- Health endpoints ---
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		// Lightweight DB check (SELECT 1) – detailed errors stay out of the body
		if err := db.Exec("SELECT 1").Error; err != nil {
			httpx.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
			return
		}
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// Auth endpoints
	ah := handlers.NewAuthHandler(services.NewUserService(db))
	mux.HandleFunc("POST /signup", ah.Signup)
	mux.HandleFunc("POST /login", ah.Login)
	mux.HandleFunc("POST /logout", ah.Logout)

	authed := func(h http.HandlerFunc) http.Handler {
		return auth.RequireAuth(h)
	}
	adminOnly := func(h http.HandlerFunc) http.Handler {
		return auth.RequireAdmin(h)
	}

	// Product endpoints
	ph := handlers.NewProductHandler(services.NewProductService(db))
	mux.Handle("GET /api/products", authed(ph.List))
	mux.Handle("POST /api/products", authed(ph.Create))
	mux.Handle("GET /api/products/{id}", authed(ph.Get))
	mux.Handle("PUT /api/products/{id}", authed(ph.Update))
	mux.Handle("DELETE /api/products/{id}", authed(ph.Delete))

	// Client endpoints
	ch := handlers.NewClientHandler(services.NewClientService(db))
	mux.Handle("GET /api/clients", authed(ch.List))
	mux.Handle("POST /api/clients", authed(ch.Create))
	mux.Handle("GET /api/clients/{id}", authed(ch.Get))
	mux.Handle("PUT /api/clients/{id}", authed(ch.Update))
	mux.Handle("DELETE /api/clients/{id}", authed(ch.Deactivate))

	// Order endpoints
	oh := handlers.NewOrderHandler(services.NewOrderService(db, vatRate))
	mux.Handle("POST /api/orders", authed(oh.Create))
	mux.Handle("PATCH /api/orders/{orderID}/confirm", authed(oh.Confirm))
	mux.Handle("PATCH /api/orders/{orderID}/cancel", authed(oh.Cancel))
	mux.Handle("PATCH /api/orders/{orderID}/reject", authed(oh.Reject))
	mux.Handle("GET /api/clients/{id}/orders", authed(oh.ListByClient))

	// Payment endpoints are restricted to admins
	pay := handlers.NewPaymentHandler(services.NewPaymentService(db))
	mux.Handle("POST /api/orders/{orderID}/payments", adminOnly(pay.Add))
	mux.Handle("PATCH /api/payments/{paymentID}/status", adminOnly(pay.UpdateStatus))

	return auth.Middleware(mux)
}
