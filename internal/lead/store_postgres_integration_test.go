//go:build integration

package lead_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"leadflow/internal/audit"
	"leadflow/internal/lead"
	"leadflow/pkg/platform/sentinel"
	txcontext "leadflow/pkg/platform/tx"
	"leadflow/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *lead.PostgresStore
	trail    *audit.PostgresStore
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	mgr := containers.GetManager()
	s.postgres = mgr.GetPostgres(s.T())
	s.store = lead.NewPostgresStore(s.postgres.DB)
	s.trail = audit.NewPostgresStore(s.postgres.DB)
}

func (s *PostgresStoreSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateTables(context.Background(), "leads", "lead_history"))
}

func newTestLead(ownerID string) lead.Lead {
	return lead.Lead{
		ID:        uuid.NewString(),
		Name:      "Acme deal",
		Email:     "buyer@acme.test",
		Status:    lead.StatusNew,
		OwnerID:   ownerID,
		CreatedAt: time.Now().UTC().Truncate(time.Microsecond),
	}
}

func (s *PostgresStoreSuite) TestInsertAndFind() {
	ctx := context.Background()
	l := newTestLead(uuid.NewString())
	s.Require().NoError(s.store.Insert(ctx, l))

	found, err := s.store.FindByID(ctx, l.ID)
	s.Require().NoError(err)
	s.Equal(l.ID, found.ID)
	s.Equal(l.OwnerID, found.OwnerID)
	s.False(found.Deleted)

	_, err = s.store.FindByID(ctx, uuid.NewString())
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *PostgresStoreSuite) TestListExcludesTombstones() {
	ctx := context.Background()
	owner := uuid.NewString()
	live := newTestLead(owner)
	gone := newTestLead(owner)
	s.Require().NoError(s.store.Insert(ctx, live))
	s.Require().NoError(s.store.Insert(ctx, gone))
	s.Require().NoError(s.store.Tombstone(ctx, gone.ID))

	leads, err := s.store.List(ctx, lead.ListFilter{OwnerID: owner})
	s.Require().NoError(err)
	s.Require().Len(leads, 1)
	s.Equal(live.ID, leads[0].ID)

	// FindByID still sees the tombstone.
	found, err := s.store.FindByID(ctx, gone.ID)
	s.Require().NoError(err)
	s.True(found.Deleted)
}

func (s *PostgresStoreSuite) TestUpdatePartial() {
	ctx := context.Background()
	l := newTestLead(uuid.NewString())
	s.Require().NoError(s.store.Insert(ctx, l))

	company := "Acme Corp"
	status := lead.StatusQualified
	updated, err := s.store.UpdatePartial(ctx, l.ID, lead.Fields{Company: &company, Status: &status})
	s.Require().NoError(err)
	s.Equal("Acme Corp", updated.Company)
	s.Equal(lead.StatusQualified, updated.Status)
	s.Equal(l.Name, updated.Name)

	s.Require().NoError(s.store.Tombstone(ctx, l.ID))
	_, err = s.store.UpdatePartial(ctx, l.ID, lead.Fields{Company: &company})
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *PostgresStoreSuite) TestRepeatTombstoneIsNotFound() {
	ctx := context.Background()
	l := newTestLead(uuid.NewString())
	s.Require().NoError(s.store.Insert(ctx, l))

	s.Require().NoError(s.store.Tombstone(ctx, l.ID))
	s.ErrorIs(s.store.Tombstone(ctx, l.ID), sentinel.ErrNotFound)
}

// TestTransactionAtomicity verifies a lead mutation and its audit entry share
// one commit: a rollback leaves neither behind.
func (s *PostgresStoreSuite) TestTransactionAtomicity() {
	ctx := context.Background()
	l := newTestLead(uuid.NewString())

	err := txcontext.Run(ctx, s.postgres.DB, func(ctx context.Context) error {
		if err := s.store.Insert(ctx, l); err != nil {
			return err
		}
		return s.trail.Append(ctx, audit.Entry{
			ID: uuid.NewString(), LeadID: l.ID, Action: audit.ActionCreated,
			ActorID: l.OwnerID, Meta: map[string]any{"ownerId": l.OwnerID},
			CreatedAt: time.Now().UTC(),
		})
	})
	s.Require().NoError(err)

	history, err := s.trail.ListByLead(ctx, l.ID)
	s.Require().NoError(err)
	s.Len(history, 1)

	failed := newTestLead(uuid.NewString())
	err = txcontext.Run(ctx, s.postgres.DB, func(ctx context.Context) error {
		if err := s.store.Insert(ctx, failed); err != nil {
			return err
		}
		return context.Canceled
	})
	s.Require().Error(err)

	_, err = s.store.FindByID(ctx, failed.ID)
	s.ErrorIs(err, sentinel.ErrNotFound, "rolled back insert must not be visible")
}
