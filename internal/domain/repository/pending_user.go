package repository

import (
	"context"
	"time"
)

// OTPState is the verification-code bookkeeping persisted on a pending row.
// Counters live in the store so every instance sees the same throttle.
type OTPState struct {
	// CodeHash is the hex SHA-256 of the current code; nil when no code was issued.
	CodeHash  *string
	ExpiresAt *time.Time
	// RequestCount counts resends inside the current window.
	RequestCount  int
	WindowStarted *time.Time
	LastSentAt    *time.Time
}

// PendingUser is a registration awaiting email verification.
type PendingUser struct {
	ID           string
	Email        string
	Name         string
	PasswordHash string
	Role         Role
	Phone        *string
	OTP          OTPState
	CreatedAt    time.Time
}

// PendingUserRepository covers pending registrations.
type PendingUserRepository interface {
	// CreatePending inserts p. Returns ErrEmailTaken if a user owns the email
	// and ErrPendingExists if a pending row already does.
	CreatePending(ctx context.Context, p *PendingUser) error

	// GetPendingByEmail returns ErrNotFound when there is no pending row.
	GetPendingByEmail(ctx context.Context, email string) (*PendingUser, error)

	// UpdatePendingOTP replaces the OTP state only if LastSentAt still equals
	// expectedLastSent (nil matches nil). Returns ErrConflict otherwise and
	// ErrNotFound if the row is gone.
	UpdatePendingOTP(ctx context.Context, id string, expectedLastSent *time.Time, st OTPState) error

	// PromotePending deletes the pending row identified by pendingID and
	// inserts u in the same transaction. Exactly one caller wins; the others
	// get ErrNotFound. ErrEmailTaken if a user with u.Email already exists.
	PromotePending(ctx context.Context, pendingID string, u *User) error
}

// Store is the full credential store.
type Store interface {
	UserRepository
	PendingUserRepository

	Ping(ctx context.Context) error
	Close() error
}
