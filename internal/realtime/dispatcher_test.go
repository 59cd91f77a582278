package realtime

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"leadflow/internal/identity"
	"leadflow/internal/platform/logger"
	"leadflow/internal/platform/metrics"
)

type fakeDirectory struct {
	byRole map[identity.Role][]string
	err    error
}

func (f *fakeDirectory) IdentityIDsByRole(_ context.Context, roles ...identity.Role) ([]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []string
	for _, role := range roles {
		out = append(out, f.byRole[role]...)
	}
	return out, nil
}

func newTestDispatcher(directory RoleDirectory) (*Dispatcher, *Registry) {
	reg := NewRegistry(&metrics.Metrics{})
	return NewDispatcher(reg, directory, logger.Discard(), &metrics.Metrics{}), reg
}

func TestDispatcher_SingleTarget(t *testing.T) {
	d, reg := newTestDispatcher(&fakeDirectory{})
	ch := newFakeChannel("user-2")
	reg.Bind("user-2", ch)

	d.Publish(context.Background(), Intent{
		TargetIdentityID: "user-2",
		Event:            EventLeadAssigned,
		Payload:          map[string]any{"leadId": "lead-1"},
	})

	assert.Equal(t, []string{EventLeadAssigned}, ch.sent())
}

func TestDispatcher_RoleFanOut(t *testing.T) {
	directory := &fakeDirectory{byRole: map[identity.Role][]string{
		identity.RoleAdmin:   {"admin-1"},
		identity.RoleManager: {"mgr-1", "mgr-2"},
	}}
	d, reg := newTestDispatcher(directory)

	adminCh := newFakeChannel("admin-1")
	mgrCh := newFakeChannel("mgr-1")
	reg.Bind("admin-1", adminCh)
	reg.Bind("mgr-1", mgrCh)
	// mgr-2 has no bound channel: silently skipped.

	d.Publish(context.Background(), Intent{
		TargetRoles: []identity.Role{identity.RoleAdmin, identity.RoleManager},
		Event:       EventNewLead,
	})

	assert.Equal(t, []string{EventNewLead}, adminCh.sent())
	assert.Equal(t, []string{EventNewLead}, mgrCh.sent())
}

func TestDispatcher_NoBoundChannelIsSilentDrop(t *testing.T) {
	d, _ := newTestDispatcher(&fakeDirectory{})

	// Must not panic or error: absence of a recipient is an accepted outcome.
	d.Publish(context.Background(), Intent{TargetIdentityID: "nobody", Event: EventNewLead})
}

func TestDispatcher_SendFailureIsDropNotError(t *testing.T) {
	d, reg := newTestDispatcher(&fakeDirectory{})
	bad := newFakeChannel("user-1")
	bad.sendErr = errors.New("write failed")
	good := newFakeChannel("user-1")
	reg.Bind("user-1", bad)
	reg.Bind("user-1", good)

	d.Publish(context.Background(), Intent{TargetIdentityID: "user-1", Event: EventNewLead})

	assert.Empty(t, bad.sent())
	assert.Equal(t, []string{EventNewLead}, good.sent(), "a failing channel must not stop delivery to siblings")
}

// One intent drops at most once, even when several of the target's channels
// fail the send.
func TestDispatcher_DropCountsOncePerIntent(t *testing.T) {
	m := &metrics.Metrics{
		NotificationsDelivered: prometheus.NewCounter(prometheus.CounterOpts{Name: "delivered_test"}),
		NotificationsDropped:   prometheus.NewCounter(prometheus.CounterOpts{Name: "dropped_test"}),
	}
	reg := NewRegistry(&metrics.Metrics{})
	d := NewDispatcher(reg, &fakeDirectory{}, logger.Discard(), m)

	first := newFakeChannel("user-1")
	first.sendErr = errors.New("write failed")
	second := newFakeChannel("user-1")
	second.sendErr = errors.New("write failed")
	reg.Bind("user-1", first)
	reg.Bind("user-1", second)

	d.Publish(context.Background(), Intent{TargetIdentityID: "user-1", Event: EventNewLead})

	assert.Equal(t, float64(1), promtestutil.ToFloat64(m.NotificationsDropped))
	assert.Equal(t, float64(0), promtestutil.ToFloat64(m.NotificationsDelivered))
}

// A partial failure is a delivery, not a drop: the intent reached a channel.
func TestDispatcher_PartialFailureIsNotADrop(t *testing.T) {
	m := &metrics.Metrics{
		NotificationsDelivered: prometheus.NewCounter(prometheus.CounterOpts{Name: "delivered_test"}),
		NotificationsDropped:   prometheus.NewCounter(prometheus.CounterOpts{Name: "dropped_test"}),
	}
	reg := NewRegistry(&metrics.Metrics{})
	d := NewDispatcher(reg, &fakeDirectory{}, logger.Discard(), m)

	bad := newFakeChannel("user-1")
	bad.sendErr = errors.New("write failed")
	good := newFakeChannel("user-1")
	reg.Bind("user-1", bad)
	reg.Bind("user-1", good)

	d.Publish(context.Background(), Intent{TargetIdentityID: "user-1", Event: EventNewLead})

	assert.Equal(t, float64(0), promtestutil.ToFloat64(m.NotificationsDropped))
	assert.Equal(t, float64(1), promtestutil.ToFloat64(m.NotificationsDelivered))
}

func TestDispatcher_DirectoryFailureIsDrop(t *testing.T) {
	d, reg := newTestDispatcher(&fakeDirectory{err: errors.New("store down")})
	ch := newFakeChannel("admin-1")
	reg.Bind("admin-1", ch)

	d.Publish(context.Background(), Intent{
		TargetRoles: []identity.Role{identity.RoleAdmin},
		Event:       EventNewLead,
	})

	assert.Empty(t, ch.sent())
}
