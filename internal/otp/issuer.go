// Package otp issues, throttles and checks the 6-digit codes that prove
// control of a registration email.
//
// All bookkeeping is persisted on the pending registration row, so the
// throttle holds across instances. Only the code digest is stored.
package otp

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/dropDatabas3/lmsauth/internal/domain/repository"
	tokens "github.com/dropDatabas3/lmsauth/internal/security/token"
)

var (
	ErrNotFound     = errors.New("otp: no pending registration")
	ErrNoCodeIssued = errors.New("otp: no code issued")
	ErrMismatch     = errors.New("otp: code mismatch")
	ErrExpired      = errors.New("otp: code expired")

	// ErrTooManyRequests: resend before the minimum interval elapsed.
	ErrTooManyRequests = errors.New("otp: resend too soon")
	// ErrRateLimited: per-window cap reached.
	ErrRateLimited = errors.New("otp: resend limit reached")
)

// ThrottleError carries the wait time for a refused resend. It matches
// ErrTooManyRequests or ErrRateLimited with errors.Is.
type ThrottleError struct {
	Kind       error
	RetryAfter time.Duration
}

func (e *ThrottleError) Error() string {
	return fmt.Sprintf("%v (retry after %s)", e.Kind, e.RetryAfter)
}

func (e *ThrottleError) Unwrap() error { return e.Kind }

// RetryAfterSeconds rounds up so clients never retry early.
func (e *ThrottleError) RetryAfterSeconds() int {
	return int(math.Ceil(e.RetryAfter.Seconds()))
}

// Policy is the code lifetime and resend throttle.
type Policy struct {
	CodeLength   int
	CodeTTL      time.Duration
	MinInterval  time.Duration
	Window       time.Duration
	MaxPerWindow int
}

var DefaultPolicy = Policy{
	CodeLength:   6,
	CodeTTL:      10 * time.Minute,
	MinInterval:  60 * time.Second,
	Window:       60 * time.Minute,
	MaxPerWindow: 5,
}

// Store is the slice of the credential store the issuer needs.
type Store interface {
	GetPendingByEmail(ctx context.Context, email string) (*repository.PendingUser, error)
	UpdatePendingOTP(ctx context.Context, id string, expectedLastSent *time.Time, st repository.OTPState) error
}

// Issuer is safe for concurrent use; races between instances are settled by
// the store's compare-and-set on the last-sent timestamp.
type Issuer struct {
	store    Store
	policy   Policy
	now      func() time.Time
	generate func() (string, error)
}

// Option customizes an Issuer.
type Option func(*Issuer)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(i *Issuer) { i.now = now }
}

// WithGenerator overrides code generation.
func WithGenerator(gen func() (string, error)) Option {
	return func(i *Issuer) { i.generate = gen }
}

func NewIssuer(store Store, policy Policy, opts ...Option) *Issuer {
	if policy.CodeLength <= 0 {
		policy.CodeLength = DefaultPolicy.CodeLength
	}
	i := &Issuer{store: store, policy: policy, now: time.Now}
	i.generate = func() (string, error) { return tokens.NumericCode(i.policy.CodeLength) }
	for _, o := range opts {
		o(i)
	}
	return i
}

func (i *Issuer) Policy() Policy { return i.policy }

// Initial returns the OTP state for a brand new pending registration and the
// plaintext code to deliver. The registration send is not counted against
// the resend window, but it does start the minimum-interval clock.
func (i *Issuer) Initial() (repository.OTPState, string, error) {
	code, err := i.generate()
	if err != nil {
		return repository.OTPState{}, "", fmt.Errorf("otp: generate: %w", err)
	}
	now := i.now()
	return repository.OTPState{
		CodeHash:   ptr(tokens.SHA256Hex(code)),
		ExpiresAt:  ptr(now.Add(i.policy.CodeTTL)),
		LastSentAt: ptr(now),
	}, code, nil
}

// Resend applies the throttle to the pending registration for email, then
// replaces its code. It returns the pending row and the new plaintext code.
func (i *Issuer) Resend(ctx context.Context, email string) (*repository.PendingUser, string, error) {
	p, err := i.store.GetPendingByEmail(ctx, email)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, "", ErrNotFound
		}
		return nil, "", err
	}

	now := i.now()
	st := p.OTP

	if st.LastSentAt != nil {
		if elapsed := now.Sub(*st.LastSentAt); elapsed < i.policy.MinInterval {
			return nil, "", &ThrottleError{Kind: ErrTooManyRequests, RetryAfter: i.policy.MinInterval - elapsed}
		}
	}

	count := st.RequestCount
	windowStart := st.WindowStarted
	if windowStart == nil || now.Sub(*windowStart) >= i.policy.Window {
		windowStart = ptr(now)
		count = 0
	}
	if count >= i.policy.MaxPerWindow {
		return nil, "", &ThrottleError{Kind: ErrRateLimited, RetryAfter: windowStart.Add(i.policy.Window).Sub(now)}
	}

	code, err := i.generate()
	if err != nil {
		return nil, "", fmt.Errorf("otp: generate: %w", err)
	}
	next := repository.OTPState{
		CodeHash:      ptr(tokens.SHA256Hex(code)),
		ExpiresAt:     ptr(now.Add(i.policy.CodeTTL)),
		RequestCount:  count + 1,
		WindowStarted: windowStart,
		LastSentAt:    ptr(now),
	}

	switch err := i.store.UpdatePendingOTP(ctx, p.ID, st.LastSentAt, next); {
	case err == nil:
	case repository.IsConflict(err):
		// another instance sent a code between our read and write
		return nil, "", &ThrottleError{Kind: ErrTooManyRequests, RetryAfter: i.policy.MinInterval}
	case repository.IsNotFound(err):
		return nil, "", ErrNotFound
	default:
		return nil, "", err
	}

	p.OTP = next
	return p, code, nil
}

// Verify checks code against the pending registration for email. The code
// must match exactly and now must be strictly before the expiry.
func (i *Issuer) Verify(ctx context.Context, email, code string) (*repository.PendingUser, error) {
	p, err := i.store.GetPendingByEmail(ctx, email)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	st := p.OTP
	if st.CodeHash == nil || st.ExpiresAt == nil {
		return nil, ErrNoCodeIssued
	}
	if !tokens.EqualDigest(tokens.SHA256Hex(code), *st.CodeHash) {
		return nil, ErrMismatch
	}
	if !i.now().Before(*st.ExpiresAt) {
		return nil, ErrExpired
	}
	return p, nil
}

func ptr[T any](v T) *T { return &v }
