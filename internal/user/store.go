package user

import (
	"context"

	"leadflow/internal/identity"
)

// Store persists user accounts. Implementations return sentinel errors for
// infrastructure facts; the service translates them into domain errors.
type Store interface {
	Insert(ctx context.Context, u User) error
	FindByID(ctx context.Context, id string) (User, error)
	FindByEmail(ctx context.Context, email string) (User, error)
	List(ctx context.Context) ([]User, error)
	ListByRoles(ctx context.Context, roles ...identity.Role) ([]User, error)
}
