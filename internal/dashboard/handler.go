package dashboard

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"leadflow/internal/identity"
	"leadflow/internal/platform/middleware"
	"leadflow/pkg/platform/httputil"
)

// Handler exposes the dashboard endpoint to admins and managers.
type Handler struct {
	logger  *slog.Logger
	stats   *Service
	require func(http.Handler) http.Handler
}

func NewHandler(stats *Service, requireAuth func(http.Handler) http.Handler, logger *slog.Logger) *Handler {
	return &Handler{logger: logger, stats: stats, require: requireAuth}
}

// Register mounts the routes.
func (h *Handler) Register(r chi.Router) {
	r.Group(func(pr chi.Router) {
		pr.Use(h.require)
		pr.With(middleware.RequireRoles(identity.RoleAdmin, identity.RoleManager)).
			Get("/api/dashboard", h.handleStats)
	})
}

func (h *Handler) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.stats.Stats(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "dashboard stats failed",
			"error", err,
			"request_id", middleware.GetRequestID(r.Context()),
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, stats)
}
