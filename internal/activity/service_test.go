package activity

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"leadflow/internal/identity"
	"leadflow/internal/lead"
	"leadflow/internal/platform/logger"
	"leadflow/internal/realtime"
	dErrors "leadflow/pkg/domain-errors"
)

type recordingNotifier struct {
	intents []realtime.Intent
}

func (r *recordingNotifier) Publish(_ context.Context, intent realtime.Intent) {
	r.intents = append(r.intents, intent)
}

var (
	owner = identity.Identity{ID: "user-1", Role: identity.RoleSales, Name: "Sam Sales"}
	other = identity.Identity{ID: "user-2", Role: identity.RoleSales, Name: "Sue Sales"}
	admin = identity.Identity{ID: "adm-1", Role: identity.RoleAdmin, Name: "Ada Admin"}
)

func newTestService(t *testing.T) (*Service, *lead.InMemoryStore, *recordingNotifier) {
	t.Helper()
	leads := lead.NewInMemoryStore()
	notifier := &recordingNotifier{}
	svc := NewService(NewInMemoryStore(), leads, notifier, logger.Discard())
	return svc, leads, notifier
}

func seedLead(t *testing.T, leads *lead.InMemoryStore, ownerID string, deleted bool) string {
	t.Helper()
	id := uuid.NewString()
	require.NoError(t, leads.Insert(context.Background(), lead.Lead{
		ID: id, Name: "Acme deal", Status: lead.StatusNew,
		OwnerID: ownerID, Deleted: deleted, CreatedAt: time.Now().UTC(),
	}))
	return id
}

func TestCreate_NotifiesActorOnly(t *testing.T) {
	svc, leads, notifier := newTestService(t)
	leadID := seedLead(t, leads, owner.ID, false)

	a, err := svc.Create(context.Background(), owner, CreateFields{LeadID: leadID, Type: TypeCall, Note: " left voicemail "})
	require.NoError(t, err)

	assert.Equal(t, owner.ID, a.UserID)
	assert.Equal(t, "left voicemail", a.Note)

	require.Len(t, notifier.intents, 1)
	intent := notifier.intents[0]
	assert.Equal(t, realtime.EventActivityCreated, intent.Event)
	assert.Equal(t, owner.ID, intent.TargetIdentityID, "only the actor's own channels hear about it")
	assert.Empty(t, intent.TargetRoles)
}

func TestCreate_UnknownTypeIsValidationError(t *testing.T) {
	svc, leads, notifier := newTestService(t)
	leadID := seedLead(t, leads, owner.ID, false)

	_, err := svc.Create(context.Background(), owner, CreateFields{LeadID: leadID, Type: "FAX"})
	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	assert.Empty(t, notifier.intents)
}

func TestCreate_VisibilityRules(t *testing.T) {
	svc, leads, _ := newTestService(t)
	leadID := seedLead(t, leads, owner.ID, false)
	goneID := seedLead(t, leads, owner.ID, true)

	_, err := svc.Create(context.Background(), other, CreateFields{LeadID: leadID, Type: TypeNote})
	assert.True(t, dErrors.HasCode(err, dErrors.CodeForbidden))

	_, err = svc.Create(context.Background(), owner, CreateFields{LeadID: goneID, Type: TypeNote})
	assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound), "tombstoned leads read as absent")

	_, err = svc.Create(context.Background(), owner, CreateFields{LeadID: uuid.NewString(), Type: TypeNote})
	assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))

	_, err = svc.Create(context.Background(), admin, CreateFields{LeadID: leadID, Type: TypeNote})
	assert.NoError(t, err, "admins can log on any live lead")
}

func TestListByLead_NewestFirst(t *testing.T) {
	svc, leads, _ := newTestService(t)
	leadID := seedLead(t, leads, owner.ID, false)

	first, err := svc.Create(context.Background(), owner, CreateFields{LeadID: leadID, Type: TypeCall})
	require.NoError(t, err)
	second, err := svc.Create(context.Background(), owner, CreateFields{LeadID: leadID, Type: TypeEmail})
	require.NoError(t, err)

	activities, err := svc.ListByLead(context.Background(), owner, leadID)
	require.NoError(t, err)
	require.Len(t, activities, 2)
	assert.Equal(t, second.ID, activities[0].ID)
	assert.Equal(t, first.ID, activities[1].ID)

	_, err = svc.ListByLead(context.Background(), other, leadID)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeForbidden))
}
