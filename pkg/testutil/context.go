package testutil

import (
	"net/http"

	"leadflow/internal/identity"
	"leadflow/internal/platform/middleware"
)

// WithIdentity adds an authenticated identity to the request context,
// simulating what the auth middleware does for verified requests.
func WithIdentity(req *http.Request, id identity.Identity) *http.Request {
	return req.WithContext(middleware.WithIdentity(req.Context(), id))
}

// AsRole builds a throwaway identity with the given role and injects it.
func AsRole(req *http.Request, userID string, role identity.Role) *http.Request {
	return WithIdentity(req, identity.Identity{ID: userID, Role: role})
}
