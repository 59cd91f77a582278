// Package audit is the append-only trail of lead transitions. Entries are
// never mutated or deleted; for each committed transition exactly one entry
// exists, in commit order.
package audit

import "time"

// Action names the lifecycle transition an entry records.
type Action string

const (
	ActionCreated  Action = "created"
	ActionUpdated  Action = "updated"
	ActionDeleted  Action = "deleted"
	ActionAssigned Action = "assigned"
)

// Entry is one recorded transition. Meta is an opaque snapshot of the fields
// the actor submitted, mirrored verbatim rather than diffed.
type Entry struct {
	ID        string         `json:"id"`
	LeadID    string         `json:"leadId"`
	Action    Action         `json:"action"`
	ActorID   string         `json:"actorId"`
	Meta      map[string]any `json:"meta,omitempty"`
	CreatedAt time.Time      `json:"createdAt"`
}
