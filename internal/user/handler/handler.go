package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"leadflow/internal/identity"
	"leadflow/internal/platform/middleware"
	"leadflow/internal/user"
	dErrors "leadflow/pkg/domain-errors"
	"leadflow/pkg/platform/httputil"
)

// Service defines the account operations the handler needs.
type Service interface {
	Register(ctx context.Context, name, email, password, role string) (user.Profile, string, error)
	Login(ctx context.Context, email, password string) (user.Profile, string, error)
	Logout(ctx context.Context, credential string) error
	Get(ctx context.Context, id string) (user.Profile, error)
	List(ctx context.Context) ([]user.Profile, error)
}

// Handler exposes the auth and user admin endpoints.
type Handler struct {
	logger  *slog.Logger
	users   Service
	require func(http.Handler) http.Handler
}

// New creates a user Handler. requireAuth is the shared auth middleware so
// the protected subtree uses the same verifier as everything else.
func New(users Service, requireAuth func(http.Handler) http.Handler, logger *slog.Logger) *Handler {
	return &Handler{logger: logger, users: users, require: requireAuth}
}

// Register mounts the routes. The credential-issuing endpoints are the only
// ones reachable without a bearer token.
func (h *Handler) Register(r chi.Router) {
	r.Post("/api/auth/register", h.handleRegister)
	r.Post("/api/auth/login", h.handleLogin)

	r.Group(func(pr chi.Router) {
		pr.Use(h.require)
		pr.Post("/api/auth/logout", h.handleLogout)
		pr.Get("/api/users/me", h.handleMe)
		pr.With(middleware.RequireRoles(identity.RoleAdmin)).
			Get("/api/users", h.handleList)
		pr.With(middleware.RequireRoles(identity.RoleAdmin, identity.RoleManager)).
			Get("/api/users/{id}", h.handleGet)
	})
}

type credentialsRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type authResponse struct {
	User  user.Profile `json:"user"`
	Token string       `json:"token"`
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	profile, token, err := h.users.Register(r.Context(), req.Name, req.Email, req.Password, req.Role)
	if err != nil {
		h.logger.WarnContext(r.Context(), "register failed",
			"error", err,
			"request_id", middleware.GetRequestID(r.Context()),
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, authResponse{User: profile, Token: token})
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	profile, token, err := h.users.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, authResponse{User: profile, Token: token})
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	credential, _ := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if err := h.users.Logout(r.Context(), credential); err != nil {
		h.logger.ErrorContext(r.Context(), "logout failed",
			"error", err,
			"request_id", middleware.GetRequestID(r.Context()),
		)
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetIdentity(r.Context())
	if !ok {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, "authentication context error"))
		return
	}
	profile, err := h.users.Get(r.Context(), actor.ID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, profile)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	profiles, err := h.users.List(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, profiles)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	profile, err := h.users.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, profile)
}
