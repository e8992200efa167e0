package auth

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"postboard/internal/httpx"
)

// Handler exposes the auth service over HTTP.
type Handler struct {
	svc *Service
}

// NewHandler returns the auth HTTP handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// Routes mounts the auth endpoints on r. Credential endpoints go through
// the optional limit middleware; the confirmation link stays unthrottled.
func (h *Handler) Routes(r chi.Router, limit ...func(http.Handler) http.Handler) {
	r.With(limit...).Post("/register", h.register)
	r.With(limit...).Post("/token", h.login)
	r.Get("/confirm/{token}", h.confirm)
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (req credentialsRequest) validate() bool {
	return req.Email != "" && req.Password != ""
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := httpx.Decode(r, &req); err != nil || !req.validate() {
		httpx.Detail(w, http.StatusUnprocessableEntity, "Invalid request body")
		return
	}

	confirmationURL, err := h.svc.Register(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, ErrDuplicateUser) {
			// Historical status choice for this API, kept for compatibility.
			httpx.Detail(w, http.StatusNotFound, "A user with that email already exists.")
			return
		}
		httpx.Detail(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	httpx.JSON(w, http.StatusCreated, map[string]string{
		"detail":           "User created. Please confirm your email.",
		"confirmation_url": confirmationURL,
	})
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := httpx.Decode(r, &req); err != nil || !req.validate() {
		httpx.Detail(w, http.StatusUnprocessableEntity, "Invalid request body")
		return
	}

	token, err := h.svc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, ErrUnconfirmedUser):
			unauthorized(w, "User has not confirmed email")
		case errors.Is(err, ErrInvalidCredentials):
			unauthorized(w, detailInvalidCredentials)
		default:
			httpx.Detail(w, http.StatusInternalServerError, "Internal server error")
		}
		return
	}

	httpx.JSON(w, http.StatusCreated, map[string]string{
		"access_token": token,
		"token_type":   "bearer",
	})
}

func (h *Handler) confirm(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")

	if err := h.svc.Confirm(r.Context(), token); err != nil {
		switch {
		case errors.Is(err, ErrExpiredToken):
			unauthorized(w, detailExpiredToken)
		case errors.Is(err, ErrUserNotFound):
			unauthorized(w, detailUserNotFound)
		case errors.Is(err, ErrInvalidToken):
			unauthorized(w, "Invalid token")
		default:
			httpx.Detail(w, http.StatusInternalServerError, "Internal server error")
		}
		return
	}

	httpx.Detail(w, http.StatusOK, "User confirmed")
}
