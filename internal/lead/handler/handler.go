package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"leadflow/internal/audit"
	"leadflow/internal/identity"
	"leadflow/internal/lead"
	"leadflow/internal/platform/middleware"
	dErrors "leadflow/pkg/domain-errors"
	"leadflow/pkg/platform/httputil"
)

// Service defines the lead lifecycle operations the handler needs.
type Service interface {
	Create(ctx context.Context, actor identity.Identity, fields lead.CreateFields) (lead.Lead, error)
	Update(ctx context.Context, actor identity.Identity, leadID string, fields lead.Fields) (lead.Lead, error)
	Remove(ctx context.Context, actor identity.Identity, leadID string) error
	Get(ctx context.Context, actor identity.Identity, leadID string) (lead.Lead, []audit.Entry, error)
	List(ctx context.Context, actor identity.Identity) ([]lead.Lead, error)
}

// Handler exposes the lead CRUD endpoints. Every route requires a verified
// identity; authorization beyond that lives in the service.
type Handler struct {
	logger  *slog.Logger
	leads   Service
	require func(http.Handler) http.Handler
}

func New(leads Service, requireAuth func(http.Handler) http.Handler, logger *slog.Logger) *Handler {
	return &Handler{logger: logger, leads: leads, require: requireAuth}
}

// Register mounts the routes.
func (h *Handler) Register(r chi.Router) {
	r.Group(func(pr chi.Router) {
		pr.Use(h.require)
		pr.Post("/api/leads", h.handleCreate)
		pr.Get("/api/leads", h.handleList)
		pr.Get("/api/leads/{id}", h.handleGet)
		pr.Put("/api/leads/{id}", h.handleUpdate)
		pr.Delete("/api/leads/{id}", h.handleDelete)
	})
}

type createRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Company string `json:"company"`
	Source  string `json:"source"`
}

type updateRequest struct {
	Name    *string `json:"name"`
	Email   *string `json:"email"`
	Phone   *string `json:"phone"`
	Company *string `json:"company"`
	Source  *string `json:"source"`
	Status  *string `json:"status"`
	OwnerID *string `json:"ownerId"`
}

func (r updateRequest) fields() lead.Fields {
	f := lead.Fields{
		Name:    r.Name,
		Email:   r.Email,
		Phone:   r.Phone,
		Company: r.Company,
		Source:  r.Source,
		OwnerID: r.OwnerID,
	}
	if r.Status != nil {
		s := lead.Status(*r.Status)
		f.Status = &s
	}
	return f
}

type leadWithHistory struct {
	lead.Lead
	History []audit.Entry `json:"history"`
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

	created, err := h.leads.Create(r.Context(), actor, lead.CreateFields{
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Company: req.Company,
		Source:  req.Source,
	})
	if err != nil {
		h.logger.WarnContext(r.Context(), "lead create failed",
			"error", err,
			"request_id", middleware.GetRequestID(r.Context()),
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, created)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetIdentity(r.Context())
	if !ok {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, "authentication context error"))
		return
	}

	leads, err := h.leads.List(r.Context(), actor)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, leads)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetIdentity(r.Context())
	if !ok {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, "authentication context error"))
		return
	}

	found, history, err := h.leads.Get(r.Context(), actor, chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, leadWithHistory{Lead: found, History: history})
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetIdentity(r.Context())
	if !ok {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, "authentication context error"))
		return
	}

	var req updateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	updated, err := h.leads.Update(r.Context(), actor, chi.URLParam(r, "id"), req.fields())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, updated)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetIdentity(r.Context())
	if !ok {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, "authentication context error"))
		return
	}

	if err := h.leads.Remove(r.Context(), actor, chi.URLParam(r, "id")); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
