// Package session implements the account lifecycle behind /api/auth:
// registration with email verification, password login, refresh rotation,
// logout and password change.
//
// Revocation is a single integer per user (the token version). Every token
// carries the version it was minted for; bumping it invalidates all of them.
package session

import (
	"context"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/dropDatabas3/lmsauth/internal/domain/repository"
	"github.com/dropDatabas3/lmsauth/internal/email"
	dto "github.com/dropDatabas3/lmsauth/internal/http/dto/auth"
	jwtx "github.com/dropDatabas3/lmsauth/internal/jwt"
	"github.com/dropDatabas3/lmsauth/internal/otp"
	"github.com/dropDatabas3/lmsauth/internal/security/password"
)

// Service is the session manager used by the auth controllers.
type Service interface {
	Register(ctx context.Context, in dto.RegisterRequest) (*dto.RegisterResult, error)
	VerifyOTP(ctx context.Context, in dto.VerifyOTPRequest) (*dto.SessionResult, error)
	ResendOTP(ctx context.Context, in dto.ResendOTPRequest) error
	Login(ctx context.Context, in dto.LoginRequest) (*dto.SessionResult, error)
	Refresh(ctx context.Context, refreshToken string) (*dto.SessionResult, error)
	// Logout never fails. It revokes the session of whichever token decodes.
	Logout(ctx context.Context, refreshToken, accessToken string)
	ChangePassword(ctx context.Context, userID string, in dto.ChangePasswordRequest) (*dto.SessionResult, error)
}

// Guard resolves an access token into the caller's identity.
type Guard interface {
	Authenticate(ctx context.Context, accessToken string) (*Identity, error)
}

// Identity is what the auth middleware puts on the request context.
type Identity struct {
	ID    string
	Email string
	Name  string
	Role  repository.Role
}

// PasswordHasher is satisfied by *password.Hasher.
type PasswordHasher interface {
	Hash(plain string) (string, error)
	Verify(plain, encoded string) bool
}

type Deps struct {
	Store    repository.Store
	Hasher   PasswordHasher
	Codec    *jwtx.Codec
	OTP      *otp.Issuer
	Notifier email.Notifier
	Ledger   RotationLedger
	Policy   password.Policy

	// SelfRegisterRoles are the roles a caller may pick at registration.
	// Defaults to STUDENT and INSTRUCTOR.
	SelfRegisterRoles []repository.Role

	Now   func() time.Time
	NewID func() string
}

// Manager implements Service and Guard.
type Manager struct {
	store    repository.Store
	hasher   PasswordHasher
	codec    *jwtx.Codec
	otp      *otp.Issuer
	notifier email.Notifier
	ledger   RotationLedger
	policy   password.Policy
	roles    map[repository.Role]bool
	now      func() time.Time
	newID    func() string

	users     singleflight.Group
	dummyHash string
}

// NewService wires the manager. The returned value implements both Service
// and Guard.
func NewService(d Deps) *Manager {
	m := &Manager{
		store:    d.Store,
		hasher:   d.Hasher,
		codec:    d.Codec,
		otp:      d.OTP,
		notifier: d.Notifier,
		ledger:   d.Ledger,
		policy:   d.Policy,
		roles:    map[repository.Role]bool{},
		now:      d.Now,
		newID:    d.NewID,
	}
	roles := d.SelfRegisterRoles
	if len(roles) == 0 {
		roles = []repository.Role{repository.RoleStudent, repository.RoleInstructor}
	}
	for _, r := range roles {
		m.roles[r] = true
	}
	if m.now == nil {
		m.now = time.Now
	}
	if m.newID == nil {
		m.newID = uuid.NewString
	}
	if m.notifier == nil {
		m.notifier = email.NopNotifier{}
	}
	if m.ledger == nil {
		m.ledger = nopLedger{}
	}
	// login against an unknown email still pays for one hash comparison
	if h, err := m.hasher.Hash("lmsauth-timing-equalizer"); err == nil {
		m.dummyHash = h
	}
	return m
}

var (
	_ Service = (*Manager)(nil)
	_ Guard   = (*Manager)(nil)
)
