package handlers

import (
	"net/http"

	"github.com/diewo77/commerce-app/internal/auth"
	"github.com/diewo77/commerce-app/internal/httpx"
	"github.com/diewo77/commerce-app/internal/services"
	"github.com/diewo77/commerce-app/internal/validation"
)

type AuthHandler struct {
	Svc *services.UserService
}

func NewAuthHandler(svc *services.UserService) *AuthHandler {
	return &AuthHandler{Svc: svc}
}

func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var input struct {
		UserName string `json:"user_name"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := httpx.Decode(r, &input); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	v := validation.Violations{}
	validation.Required("user_name", input.UserName, v)
	validation.Required("email", input.Email, v)
	validation.Email("email", input.Email, v)
	validation.Required("password", input.Password, v)
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	user, err := h.Svc.Register(services.RegisterInput{
		UserName: input.UserName,
		Email:    input.Email,
		Password: input.Password,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	auth.CreateSession(w, user.ID)
	httpx.JSON(w, http.StatusCreated, user)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var input struct {
		UserName string `json:"user_name"`
		Password string `json:"password"`
	}
	if err := httpx.Decode(r, &input); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	user, err := h.Svc.Login(input.UserName, input.Password)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	auth.CreateSession(w, user.ID)
	httpx.JSON(w, http.StatusOK, user)
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	auth.ClearSession(w)
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "logged_out"})
}
