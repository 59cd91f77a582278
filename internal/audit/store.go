package audit

import "context"

// Store persists the trail. Append-only: no update or delete operations
// exist on purpose.
type Store interface {
	Append(ctx context.Context, entry Entry) error
	ListByLead(ctx context.Context, leadID string) ([]Entry, error)
}
