package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Recorder captures structured audit entries. It is append-only and uses the
// storage layer for persistence so tests can swap sinks easily.
type Recorder struct {
	store Store
}

func NewRecorder(store Store) *Recorder {
	return &Recorder{store: store}
}

// Record stamps and appends one entry. Callers run it inside the same
// transaction as the lead mutation it describes.
func (r *Recorder) Record(ctx context.Context, entry Entry) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	return r.store.Append(ctx, entry)
}

// ListByLead returns a lead's trail, newest first.
func (r *Recorder) ListByLead(ctx context.Context, leadID string) ([]Entry, error) {
	return r.store.ListByLead(ctx, leadID)
}
