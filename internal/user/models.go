package user

import (
	"time"

	"leadflow/internal/identity"
)

// User is a registered account. PasswordHash never leaves this package.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         identity.Role
	CreatedAt    time.Time
}

// Profile is the client-visible projection of a User.
type Profile struct {
	ID    string        `json:"id"`
	Name  string        `json:"name"`
	Email string        `json:"email"`
	Role  identity.Role `json:"role"`
}

// ToProfile strips credentials from a User.
func (u User) ToProfile() Profile {
	return Profile{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role}
}

// Identity returns the actor view of this account.
func (u User) Identity() identity.Identity {
	return identity.Identity{ID: u.ID, Role: u.Role, Name: u.Name}
}
