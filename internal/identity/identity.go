// Package identity defines the authenticated actor model and the credential
// verifier that produces it. An Identity is immutable for the lifetime of a
// request or a realtime connection.
package identity

import (
	"fmt"
	"strings"
)

// Role is the coarse permission level attached to an identity.
type Role string

const (
	RoleSales   Role = "SALES"
	RoleManager Role = "MANAGER"
	RoleAdmin   Role = "ADMIN"
)

// Valid reports whether the role is one of the known levels.
func (r Role) Valid() bool {
	switch r {
	case RoleSales, RoleManager, RoleAdmin:
		return true
	}
	return false
}

// ParseRole normalizes and validates a role string.
func ParseRole(raw string) (Role, error) {
	role := Role(strings.ToUpper(strings.TrimSpace(raw)))
	if !role.Valid() {
		return "", fmt.Errorf("unknown role %q", raw)
	}
	return role, nil
}

// Identity is the verified actor performing an operation.
type Identity struct {
	ID   string
	Role Role
	Name string
}

// IsAdmin reports whether the identity may bypass ownership checks.
func (i Identity) IsAdmin() bool { return i.Role == RoleAdmin }
