package session

import (
	"context"
	"errors"
	"net/mail"
	"strings"

	"github.com/dropDatabas3/lmsauth/internal/domain/repository"
	dto "github.com/dropDatabas3/lmsauth/internal/http/dto/auth"
	"github.com/dropDatabas3/lmsauth/internal/metrics"
	"github.com/dropDatabas3/lmsauth/internal/observability/logger"
)

// Register records a pending registration and mails its verification code.
// No user exists until VerifyOTP succeeds.
func (m *Manager) Register(ctx context.Context, in dto.RegisterRequest) (res *dto.RegisterResult, err error) {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("session.register"),
		logger.Op("Register"),
	)
	defer func() { metrics.Outcome("register", outcome(err)) }()

	emailAddr := strings.TrimSpace(in.Email)
	name := strings.TrimSpace(in.Name)
	if emailAddr == "" || in.Password == "" || name == "" {
		return nil, ErrMissingFields
	}
	if !validEmail(emailAddr) {
		return nil, ErrInvalidEmail
	}

	role, err := m.selfRole(in.Role)
	if err != nil {
		return nil, err
	}
	if err := m.policy.Check(in.Password); err != nil {
		return nil, err
	}

	switch _, lookupErr := m.store.GetUserByEmail(ctx, emailAddr); {
	case lookupErr == nil:
		return nil, ErrEmailExists
	case !repository.IsNotFound(lookupErr):
		log.Error("user lookup failed", logger.Err(lookupErr))
		return nil, lookupErr
	}
	switch _, lookupErr := m.store.GetPendingByEmail(ctx, emailAddr); {
	case lookupErr == nil:
		return nil, ErrPendingExists
	case !repository.IsNotFound(lookupErr):
		log.Error("pending lookup failed", logger.Err(lookupErr))
		return nil, lookupErr
	}

	hash, err := m.hasher.Hash(in.Password)
	if err != nil {
		log.Error("password hash failed", logger.Err(err))
		return nil, err
	}

	p := &repository.PendingUser{
		ID:           m.newID(),
		Email:        emailAddr,
		Name:         name,
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    m.now(),
	}
	if in.PhoneNumber != "" {
		if phone, ok := NormalizePhone(in.PhoneNumber); ok {
			p.Phone = &phone
		} else {
			log.Debug("phone number dropped", logger.String("reason", "not_e164"))
		}
	}

	st, code, genErr := m.otp.Initial()
	if genErr != nil {
		// the row is still created; the client can ask for a resend
		log.Warn("initial code generation failed (soft)", logger.Err(genErr))
	} else {
		p.OTP = st
	}

	if err := m.store.CreatePending(ctx, p); err != nil {
		switch {
		case errors.Is(err, repository.ErrEmailTaken):
			return nil, ErrEmailExists
		case errors.Is(err, repository.ErrPendingExists):
			return nil, ErrPendingExists
		}
		log.Error("create pending failed", logger.Err(err))
		return nil, err
	}

	if code != "" {
		metrics.OTPIssued.WithLabelValues("initial").Inc()
		m.notifier.SendVerificationCode(ctx, p.Email, p.Name, code, m.otp.Policy().CodeTTL)
	}

	log.Info("registration pending", logger.Email(emailAddr), logger.Role(string(role)))
	return &dto.RegisterResult{Email: p.Email, CodeSent: code != ""}, nil
}

// selfRole resolves the requested role; empty means STUDENT. Roles outside
// Deps.SelfRegisterRoles (auth.register.allowed_roles in config) are refused,
// so ADMIN is only reachable through `lmsauthctl set-role` unless listed there.
func (m *Manager) selfRole(raw string) (repository.Role, error) {
	raw = strings.ToUpper(strings.TrimSpace(raw))
	if raw == "" {
		return repository.RoleStudent, nil
	}
	role, ok := repository.ParseRole(raw)
	if !ok {
		return "", ErrInvalidRole
	}
	if !m.roles[role] {
		return "", ErrRoleNotAllowed
	}
	return role, nil
}

func validEmail(s string) bool {
	a, err := mail.ParseAddress(s)
	return err == nil && a.Address == s
}
