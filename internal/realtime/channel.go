// Package realtime is the authenticated push fabric: the connection gate
// admits and binds channels, the registry tracks live bindings per identity,
// and the dispatcher delivers notification intents best-effort.
package realtime

import (
	"context"

	"leadflow/internal/identity"
)

// Channel is one live, addressable connection bound to a single identity.
// An identity may hold several channels at once (multiple devices).
type Channel interface {
	IdentityID() string
	// Send hands the event to the channel's own send primitive. It must not
	// block the caller beyond the hand-off.
	Send(ctx context.Context, event string, payload any) error
	// Close tears the connection down with a reason. Idempotent.
	Close(reason string)
}

// Intent is an ephemeral directive to notify one identity or a set of roles.
// It exists only between a committed lead transition and dispatch; it is
// never persisted.
type Intent struct {
	TargetIdentityID string
	TargetRoles      []identity.Role
	Event            string
	Payload          any
}

// Event names pushed over channels.
const (
	EventNewLead         = "newLead"
	EventLeadAssigned    = "leadAssigned"
	EventActivityCreated = "activityCreated"
)
