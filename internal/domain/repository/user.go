package repository

import (
	"context"
	"time"
)

// Role is the authorization level attached to a user.
type Role string

const (
	RoleAdmin      Role = "ADMIN"
	RoleInstructor Role = "INSTRUCTOR"
	RoleStudent    Role = "STUDENT"
)

// ParseRole validates a role name. Empty input is not a role.
func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleAdmin, RoleInstructor, RoleStudent:
		return Role(s), true
	}
	return "", false
}

// User is an active, verified account. It only comes into existence by
// promoting a PendingUser.
type User struct {
	ID            string
	Email         string
	Name          string
	PasswordHash  string
	Role          Role
	EmailVerified bool
	// TokenVersion is bumped on every credential-invalidating event; tokens
	// minted for an older value are rejected.
	TokenVersion int
	Phone        *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// UserRepository covers the operations the auth flows perform on users.
type UserRepository interface {
	// GetUserByEmail returns ErrNotFound if no user owns email.
	GetUserByEmail(ctx context.Context, email string) (*User, error)

	// GetUserByID returns ErrNotFound if the id is unknown.
	GetUserByID(ctx context.Context, id string) (*User, error)

	// BumpTokenVersion increments the user's token version and returns the new value.
	BumpTokenVersion(ctx context.Context, id string) (int, error)

	// UpdatePassword stores a new hash and increments the token version in a
	// single write. Returns the new version.
	UpdatePassword(ctx context.Context, id, passwordHash string) (int, error)

	// UpdateRole is an administrative edit, not used by the auth flows.
	UpdateRole(ctx context.Context, email string, role Role) error
}
