package auth

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/tiendapos/tiendapos/internal/platform/httpx"
	"github.com/tiendapos/tiendapos/internal/shared"
	"github.com/tiendapos/tiendapos/internal/tenant"
)

// Handler wires registration, login and logout endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	sessions *shared.SessionManager
	validate *validator.Validate
}

// NewHandler constructs the auth handler.
func NewHandler(logger *slog.Logger, service *Service, sessions *shared.SessionManager, validate *validator.Validate) *Handler {
	return &Handler{logger: logger, service: service, sessions: sessions, validate: validate}
}

// MountRoutes registers auth routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/register", h.handleRegister)
	r.Post("/login", h.handleLogin)
	r.Post("/logout", h.handleLogout)
	r.Get("/me", h.handleMe)
}

type registerRequest struct {
	Username       string `json:"username" validate:"required,min=3,max=60"`
	Password       string `json:"password" validate:"required,min=6"`
	Email          string `json:"email" validate:"omitempty,email"`
	Phone          string `json:"phone" validate:"omitempty,max=30"`
	ActivationCode string `json:"activation_code" validate:"required"`
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type userResponse struct {
	Username  string `json:"username"`
	Email     string `json:"email,omitempty"`
	TenantKey string `json:"tenant_key"`
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusUnprocessableEntity, "validation failed", err.Error())
		return
	}

	user, err := h.service.Register(r.Context(), RegisterInput{
		Username:       req.Username,
		Password:       req.Password,
		Email:          req.Email,
		Phone:          req.Phone,
		ActivationCode: req.ActivationCode,
	})
	if err != nil {
		h.respondRegisterError(w, err)
		return
	}

	sess := shared.SessionFromContext(r.Context())
	if sess != nil {
		sess.SetUser(user.Username, user.TenantKey)
		if err := h.sessions.Commit(r.Context(), w, sess); err != nil {
			h.logger.Error("commit session", slog.Any("error", err))
			httpx.Problem(w, http.StatusInternalServerError, "internal error", "")
			return
		}
	}

	h.logger.Info("tenant registered",
		slog.String("username", user.Username),
		slog.String("tenant_key", user.TenantKey))
	httpx.JSON(w, http.StatusCreated, userResponse{
		Username:  user.Username,
		Email:     user.Email,
		TenantKey: user.TenantKey,
	})
}

func (h *Handler) respondRegisterError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, tenant.ErrUsernameTaken):
		httpx.Problem(w, http.StatusConflict, "username taken", err.Error())
	case errors.Is(err, tenant.ErrCodeInvalid):
		httpx.Problem(w, http.StatusUnprocessableEntity, "activation code rejected", err.Error())
	case errors.Is(err, tenant.ErrUnusableUsername), errors.Is(err, ErrWeakPassword), errors.Is(err, shared.ErrInvalidArgument):
		httpx.Problem(w, http.StatusBadRequest, "invalid registration", err.Error())
	default:
		h.logger.Error("register", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "internal error", "")
	}
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusUnprocessableEntity, "validation failed", err.Error())
		return
	}

	user, err := h.service.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		httpx.Problem(w, http.StatusUnauthorized, "invalid credentials", "")
		return
	}

	sess := shared.SessionFromContext(r.Context())
	if sess == nil {
		httpx.Problem(w, http.StatusInternalServerError, "internal error", "")
		return
	}
	sess.SetUser(user.Username, user.TenantKey)
	if err := h.sessions.Commit(r.Context(), w, sess); err != nil {
		h.logger.Error("commit session", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "internal error", "")
		return
	}

	h.logger.Info("login", slog.String("username", user.Username))
	httpx.JSON(w, http.StatusOK, userResponse{
		Username:  user.Username,
		Email:     user.Email,
		TenantKey: user.TenantKey,
	})
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	if sess != nil {
		h.sessions.Destroy(sess)
		if err := h.sessions.Commit(r.Context(), w, sess); err != nil {
			h.logger.Error("destroy session", slog.Any("error", err))
		}
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	if sess.Username() == "" {
		httpx.Problem(w, http.StatusUnauthorized, "not authenticated", "")
		return
	}
	httpx.JSON(w, http.StatusOK, userResponse{
		Username:  sess.Username(),
		TenantKey: sess.TenantKey(),
	})
}
