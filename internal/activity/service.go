package activity

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"leadflow/internal/identity"
	"leadflow/internal/lead"
	"leadflow/internal/realtime"
	dErrors "leadflow/pkg/domain-errors"
	"leadflow/pkg/platform/sentinel"
)

// LeadDirectory is the slice of the lead store the activity lifecycle needs
// to enforce visibility.
type LeadDirectory interface {
	FindByID(ctx context.Context, id string) (lead.Lead, error)
}

// Notifier publishes realtime intents. Delivery is best effort.
type Notifier interface {
	Publish(ctx context.Context, intent realtime.Intent)
}

// Service logs touchpoints against leads the actor is allowed to see.
type Service struct {
	store    Store
	leads    LeadDirectory
	notifier Notifier
	logger   *slog.Logger
}

func NewService(store Store, leads LeadDirectory, notifier Notifier, logger *slog.Logger) *Service {
	return &Service{store: store, leads: leads, notifier: notifier, logger: logger}
}

// Create logs an activity on a lead. The actor must own the lead or be an
// admin; a tombstoned or absent lead reads as not found either way.
func (s *Service) Create(ctx context.Context, actor identity.Identity, fields CreateFields) (Activity, error) {
	if fields.LeadID == "" {
		return Activity{}, dErrors.New(dErrors.CodeValidation, "leadId is required")
	}
	if !fields.Type.Valid() {
		return Activity{}, dErrors.Newf(dErrors.CodeValidation, "unknown activity type %q", fields.Type)
	}

	parent, err := s.leads.FindByID(ctx, fields.LeadID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return Activity{}, dErrors.New(dErrors.CodeNotFound, "lead not found")
		}
		return Activity{}, dErrors.Wrap(err, dErrors.CodeUnavailable, "activity store unavailable")
	}
	if parent.Deleted {
		return Activity{}, dErrors.New(dErrors.CodeNotFound, "lead not found")
	}
	if !actor.IsAdmin() && parent.OwnerID != actor.ID {
		return Activity{}, dErrors.New(dErrors.CodeForbidden, "lead belongs to another owner")
	}

	a := Activity{
		ID:        uuid.NewString(),
		LeadID:    fields.LeadID,
		UserID:    actor.ID,
		Type:      fields.Type,
		Note:      strings.TrimSpace(fields.Note),
		CreatedAt: time.Now().UTC(),
	}
	if err := s.store.Insert(ctx, a); err != nil {
		return Activity{}, dErrors.Wrap(err, dErrors.CodeUnavailable, "activity store unavailable")
	}

	s.notifier.Publish(ctx, realtime.Intent{
		TargetIdentityID: actor.ID,
		Event:            realtime.EventActivityCreated,
		Payload: map[string]any{
			"message":  "Activity logged",
			"activity": a,
		},
	})
	return a, nil
}

// ListByLead returns a lead's activities, newest first, under the same
// visibility rule as Create.
func (s *Service) ListByLead(ctx context.Context, actor identity.Identity, leadID string) ([]Activity, error) {
	parent, err := s.leads.FindByID(ctx, leadID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "lead not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "activity store unavailable")
	}
	if parent.Deleted {
		return nil, dErrors.New(dErrors.CodeNotFound, "lead not found")
	}
	if !actor.IsAdmin() && parent.OwnerID != actor.ID {
		return nil, dErrors.New(dErrors.CodeForbidden, "lead belongs to another owner")
	}

	activities, err := s.store.ListByLead(ctx, leadID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "activity store unavailable")
	}
	return activities, nil
}
