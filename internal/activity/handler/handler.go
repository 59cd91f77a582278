package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"leadflow/internal/activity"
	"leadflow/internal/identity"
	"leadflow/internal/platform/middleware"
	dErrors "leadflow/pkg/domain-errors"
	"leadflow/pkg/platform/httputil"
)

// Service defines the activity operations the handler needs.
type Service interface {
	Create(ctx context.Context, actor identity.Identity, fields activity.CreateFields) (activity.Activity, error)
	ListByLead(ctx context.Context, actor identity.Identity, leadID string) ([]activity.Activity, error)
}

type Handler struct {
	logger     *slog.Logger
	activities Service
	require    func(http.Handler) http.Handler
}

func New(activities Service, requireAuth func(http.Handler) http.Handler, logger *slog.Logger) *Handler {
	return &Handler{logger: logger, activities: activities, require: requireAuth}
}

// Register mounts the routes.
func (h *Handler) Register(r chi.Router) {
	r.Group(func(pr chi.Router) {
		pr.Use(h.require)
		pr.Post("/api/activities", h.handleCreate)
		pr.Get("/api/activities/{leadId}", h.handleListByLead)
	})
}

type createRequest struct {
	LeadID string `json:"leadId"`
	Type   string `json:"type"`
	Note   string `json:"note"`
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetIdentity(r.Context())
	if !ok {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, "authentication context error"))
		return
	}

	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	created, err := h.activities.Create(r.Context(), actor, activity.CreateFields{
		LeadID: req.LeadID,
		Type:   activity.Type(req.Type),
		Note:   req.Note,
	})
	if err != nil {
		h.logger.WarnContext(r.Context(), "activity create failed",
			"error", err,
			"request_id", middleware.GetRequestID(r.Context()),
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, created)
}

func (h *Handler) handleListByLead(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetIdentity(r.Context())
	if !ok {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, "authentication context error"))
		return
	}

	activities, err := h.activities.ListByLead(r.Context(), actor, chi.URLParam(r, "leadId"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, activities)
}
