package activity

import "context"

// Store persists activities. Activities are append-only; the lifecycle never
// edits or removes a logged touchpoint.
type Store interface {
	Insert(ctx context.Context, a Activity) error
	ListByLead(ctx context.Context, leadID string) ([]Activity, error)
	CountByType(ctx context.Context) (map[Type]int, error)
}
