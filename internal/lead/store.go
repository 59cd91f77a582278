package lead

import "context"

// ListFilter narrows List. A zero filter means every non-tombstoned lead.
type ListFilter struct {
	OwnerID string
}

// Store persists leads. FindByID sees through the tombstone so the lifecycle
// can distinguish "absent" from "deleted"; List never returns tombstoned
// leads. Implementations return sentinel errors for infrastructure facts.
type Store interface {
	Insert(ctx context.Context, l Lead) error
	FindByID(ctx context.Context, id string) (Lead, error)
	List(ctx context.Context, filter ListFilter) ([]Lead, error)
	UpdatePartial(ctx context.Context, id string, fields Fields) (Lead, error)
	Tombstone(ctx context.Context, id string) error
}
