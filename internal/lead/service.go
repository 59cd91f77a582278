package lead

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"leadflow/internal/audit"
	"leadflow/internal/identity"
	"leadflow/internal/platform/metrics"
	"leadflow/internal/realtime"
	dErrors "leadflow/pkg/domain-errors"
	"leadflow/pkg/platform/sentinel"
	"leadflow/pkg/platform/tx"
)

// Notifier receives notification intents derived from committed transitions.
// The realtime dispatcher implements it; delivery is best-effort and its
// failures never reach this service's callers.
type Notifier interface {
	Publish(ctx context.Context, intent realtime.Intent)
}

// Service is the authoritative lifecycle for leads. Every accepted transition
// produces exactly one audit entry, committed atomically with the mutation,
// and zero or one notification intent published only after the commit. A
// transition that fails to persist emits neither.
type Service struct {
	store    Store
	trail    *audit.Recorder
	notifier Notifier
	db       tx.Beginner
	logger   *slog.Logger
	metrics  *metrics.Metrics
	tracer   trace.Tracer
}

// NewService wires the lifecycle. db may be nil when the store is in-memory;
// mutations then run without a surrounding SQL transaction.
func NewService(store Store, trail *audit.Recorder, notifier Notifier, db tx.Beginner, logger *slog.Logger, m *metrics.Metrics) *Service {
	return &Service{
		store:    store,
		trail:    trail,
		notifier: notifier,
		db:       db,
		logger:   logger,
		metrics:  m,
		tracer:   otel.Tracer("leadflow/lead"),
	}
}

// Create opens a new lead owned by the actor and fans a newLead notification
// out to every manager and admin.
func (s *Service) Create(ctx context.Context, actor identity.Identity, fields CreateFields) (Lead, error) {
	ctx, span := s.tracer.Start(ctx, "lead.create")
	defer span.End()
	start := time.Now()
	defer s.metrics.ObserveTransition("create", start)

	if !actor.Role.Valid() {
		return Lead{}, dErrors.New(dErrors.CodeForbidden, "unknown role")
	}
	if strings.TrimSpace(fields.Name) == "" {
		return Lead{}, dErrors.New(dErrors.CodeValidation, "lead name is required")
	}

	l := Lead{
		ID:        uuid.NewString(),
		Name:      strings.TrimSpace(fields.Name),
		Email:     fields.Email,
		Phone:     fields.Phone,
		Company:   fields.Company,
		Source:    fields.Source,
		Status:    StatusNew,
		OwnerID:   actor.ID,
		Deleted:   false,
		CreatedAt: time.Now(),
	}

	err := tx.Run(ctx, s.db, func(ctx context.Context) error {
		if err := s.store.Insert(ctx, l); err != nil {
			return err
		}
		return s.trail.Record(ctx, audit.Entry{
			LeadID:  l.ID,
			Action:  audit.ActionCreated,
			ActorID: actor.ID,
			Meta:    map[string]any{"ownerId": l.OwnerID},
		})
	})
	if err != nil {
		return Lead{}, dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to create lead")
	}

	s.metrics.IncLeadsCreated()
	s.notifier.Publish(ctx, realtime.Intent{
		TargetRoles: []identity.Role{identity.RoleAdmin, identity.RoleManager},
		Event:       realtime.EventNewLead,
		Payload: map[string]any{
			"message": "New lead created by " + actor.Name,
			"leadId":  l.ID,
		},
	})
	return l, nil
}

// Update applies a partial update. Only the owner or an admin may mutate, and
// handing the lead to a new owner additionally notifies that owner.
func (s *Service) Update(ctx context.Context, actor identity.Identity, leadID string, fields Fields) (Lead, error) {
	ctx, span := s.tracer.Start(ctx, "lead.update")
	defer span.End()
	start := time.Now()
	defer s.metrics.ObserveTransition("update", start)

	existing, err := s.visibleForWrite(ctx, actor, leadID)
	if err != nil {
		return Lead{}, err
	}
	if fields.Empty() {
		return Lead{}, dErrors.New(dErrors.CodeValidation, "no fields to update")
	}
	if fields.Status != nil && !fields.Status.Valid() {
		return Lead{}, dErrors.New(dErrors.CodeValidation, "unknown status")
	}

	var updated Lead
	err = tx.Run(ctx, s.db, func(ctx context.Context) error {
		var err error
		updated, err = s.store.UpdatePartial(ctx, leadID, fields)
		if err != nil {
			return err
		}
		// Meta mirrors the submitted payload verbatim, not a diff.
		return s.trail.Record(ctx, audit.Entry{
			LeadID:  leadID,
			Action:  audit.ActionUpdated,
			ActorID: actor.ID,
			Meta:    fields.Meta(),
		})
	})
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return Lead{}, dErrors.New(dErrors.CodeNotFound, "lead not found")
		}
		return Lead{}, dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to update lead")
	}

	if fields.OwnerID != nil && *fields.OwnerID != existing.OwnerID {
		s.notifier.Publish(ctx, realtime.Intent{
			TargetIdentityID: *fields.OwnerID,
			Event:            realtime.EventLeadAssigned,
			Payload: map[string]any{
				"message": "A lead was assigned to you",
				"leadId":  updated.ID,
			},
		})
	}
	return updated, nil
}

// Remove tombstones a lead. Exactly one deleted transition can ever exist
// per lead: repeat calls see NotFound. Deletion is never broadcast.
func (s *Service) Remove(ctx context.Context, actor identity.Identity, leadID string) error {
	ctx, span := s.tracer.Start(ctx, "lead.remove")
	defer span.End()
	start := time.Now()
	defer s.metrics.ObserveTransition("remove", start)

	if _, err := s.visibleForWrite(ctx, actor, leadID); err != nil {
		return err
	}

	err := tx.Run(ctx, s.db, func(ctx context.Context) error {
		if err := s.store.Tombstone(ctx, leadID); err != nil {
			return err
		}
		return s.trail.Record(ctx, audit.Entry{
			LeadID:  leadID,
			Action:  audit.ActionDeleted,
			ActorID: actor.ID,
		})
	})
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "lead not found")
		}
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to delete lead")
	}
	return nil
}

// Get returns a single lead with its audit trail, newest entries first.
// Unlike list, an existing lead the actor cannot see yields Forbidden, so a
// caller can tell "exists, not yours" from "truly absent".
func (s *Service) Get(ctx context.Context, actor identity.Identity, leadID string) (Lead, []audit.Entry, error) {
	ctx, span := s.tracer.Start(ctx, "lead.get")
	defer span.End()

	l, err := s.visibleForWrite(ctx, actor, leadID)
	if err != nil {
		return Lead{}, nil, err
	}
	history, err := s.trail.ListByLead(ctx, leadID)
	if err != nil {
		return Lead{}, nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to load lead history")
	}
	return l, history, nil
}

// List returns the actor's visible leads, most recently created first.
// Admins see everything; everyone else is silently filtered to leads they
// own. Foreign leads are omitted, never an error, unlike Get.
func (s *Service) List(ctx context.Context, actor identity.Identity) ([]Lead, error) {
	ctx, span := s.tracer.Start(ctx, "lead.list")
	defer span.End()

	filter := ListFilter{}
	if !actor.IsAdmin() {
		filter.OwnerID = actor.ID
	}
	leads, err := s.store.List(ctx, filter)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to list leads")
	}
	return leads, nil
}

// visibleForWrite loads a lead and applies the shared owner-or-admin rule.
// Tombstoned leads are reported absent.
func (s *Service) visibleForWrite(ctx context.Context, actor identity.Identity, leadID string) (Lead, error) {
	l, err := s.store.FindByID(ctx, leadID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return Lead{}, dErrors.New(dErrors.CodeNotFound, "lead not found")
		}
		return Lead{}, dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to look up lead")
	}
	if l.Deleted {
		return Lead{}, dErrors.New(dErrors.CodeNotFound, "lead not found")
	}
	if !actor.IsAdmin() && l.OwnerID != actor.ID {
		return Lead{}, dErrors.New(dErrors.CodeForbidden, "not allowed")
	}
	return l, nil
}
