package otp_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/lmsauth/internal/domain/repository"
	"github.com/dropDatabas3/lmsauth/internal/otp"
	"github.com/dropDatabas3/lmsauth/internal/store/memory"
)

type fixture struct {
	store  *memory.Store
	issuer *otp.Issuer
	now    time.Time
	codes  []string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{store: memory.New(), now: time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)}
	seq := 0
	f.issuer = otp.NewIssuer(f.store, otp.DefaultPolicy,
		otp.WithClock(func() time.Time { return f.now }),
		otp.WithGenerator(func() (string, error) {
			seq++
			code := fmt.Sprintf("%06d", 123455+seq)
			f.codes = append(f.codes, code)
			return code, nil
		}),
	)
	return f
}

// register creates a pending row carrying the initial code.
func (f *fixture) register(t *testing.T, email string) string {
	t.Helper()
	st, code, err := f.issuer.Initial()
	require.NoError(t, err)
	require.NoError(t, f.store.CreatePending(context.Background(), &repository.PendingUser{
		ID: "p-" + email, Email: email, Name: "N", PasswordHash: "h", Role: repository.RoleStudent, OTP: st,
	}))
	return code
}

func (f *fixture) advance(d time.Duration) { f.now = f.now.Add(d) }

func TestVerifyExactMatch(t *testing.T) {
	f := newFixture(t)
	code := f.register(t, "a@x.io")
	require.Equal(t, "123456", code)
	ctx := context.Background()

	for _, wrong := range []string{"123457", "12345", "1234567", "023456", " 123456", ""} {
		_, err := f.issuer.Verify(ctx, "a@x.io", wrong)
		require.ErrorIs(t, err, otp.ErrMismatch, "code %q", wrong)
	}

	p, err := f.issuer.Verify(ctx, "a@x.io", "123456")
	require.NoError(t, err)
	require.Equal(t, "a@x.io", p.Email)
}

func TestVerifyExpiryBoundary(t *testing.T) {
	f := newFixture(t)
	code := f.register(t, "a@x.io")
	ctx := context.Background()

	f.advance(10*time.Minute - time.Nanosecond)
	_, err := f.issuer.Verify(ctx, "a@x.io", code)
	require.NoError(t, err, "one nanosecond before expiry is still valid")

	f.advance(time.Nanosecond)
	_, err = f.issuer.Verify(ctx, "a@x.io", code)
	require.ErrorIs(t, err, otp.ErrExpired, "exactly at expiry is expired")
}

func TestVerifyNotFoundAndNoCode(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.issuer.Verify(ctx, "ghost@x.io", "123456")
	require.ErrorIs(t, err, otp.ErrNotFound)

	require.NoError(t, f.store.CreatePending(ctx, &repository.PendingUser{ID: "p1", Email: "nocode@x.io"}))
	_, err = f.issuer.Verify(ctx, "nocode@x.io", "123456")
	require.ErrorIs(t, err, otp.ErrNoCodeIssued)
}

func TestResendMinimumInterval(t *testing.T) {
	f := newFixture(t)
	f.register(t, "a@x.io")
	ctx := context.Background()

	f.advance(20 * time.Second)
	_, _, err := f.issuer.Resend(ctx, "a@x.io")
	require.ErrorIs(t, err, otp.ErrTooManyRequests)

	var te *otp.ThrottleError
	require.True(t, errors.As(err, &te))
	require.Equal(t, 40*time.Second, te.RetryAfter)
	require.Equal(t, 40, te.RetryAfterSeconds())

	f.advance(40 * time.Second)
	_, code, err := f.issuer.Resend(ctx, "a@x.io")
	require.NoError(t, err)

	f.advance(time.Second)
	_, _, err = f.issuer.Resend(ctx, "a@x.io")
	require.ErrorIs(t, err, otp.ErrTooManyRequests, "second resend within 60s")
	require.True(t, errors.As(err, &te))
	require.Positive(t, te.RetryAfterSeconds())

	// the resent code replaced the initial one
	_, err = f.issuer.Verify(ctx, "a@x.io", "123456")
	require.ErrorIs(t, err, otp.ErrMismatch)
	_, err = f.issuer.Verify(ctx, "a@x.io", code)
	require.NoError(t, err)
}

func TestResendWindowCapAndReset(t *testing.T) {
	f := newFixture(t)
	f.register(t, "a@x.io")
	ctx := context.Background()

	var anchor time.Time
	for i := 1; i <= 5; i++ {
		f.advance(61 * time.Second)
		if i == 1 {
			anchor = f.now
		}
		p, _, err := f.issuer.Resend(ctx, "a@x.io")
		require.NoError(t, err, "resend %d", i)
		require.Equal(t, i, p.OTP.RequestCount)
		require.True(t, p.OTP.WindowStarted.Equal(anchor))
	}

	f.advance(61 * time.Second)
	_, _, err := f.issuer.Resend(ctx, "a@x.io")
	require.ErrorIs(t, err, otp.ErrRateLimited, "sixth resend in the window")
	var te *otp.ThrottleError
	require.True(t, errors.As(err, &te))
	require.Equal(t, anchor.Add(time.Hour).Sub(f.now), te.RetryAfter)

	f.now = anchor.Add(time.Hour)
	p, _, err := f.issuer.Resend(ctx, "a@x.io")
	require.NoError(t, err, "window elapsed since anchor")
	require.Equal(t, 1, p.OTP.RequestCount)
	require.True(t, p.OTP.WindowStarted.Equal(f.now))
}

func TestResendUnknownEmail(t *testing.T) {
	f := newFixture(t)
	_, _, err := f.issuer.Resend(context.Background(), "ghost@x.io")
	require.ErrorIs(t, err, otp.ErrNotFound)
}

// conflictStore simulates another instance writing between read and update.
type conflictStore struct{ *memory.Store }

func (conflictStore) UpdatePendingOTP(context.Context, string, *time.Time, repository.OTPState) error {
	return repository.ErrConflict
}

func TestResendLostRaceIsThrottled(t *testing.T) {
	f := newFixture(t)
	f.register(t, "a@x.io")
	f.advance(2 * time.Minute)

	issuer := otp.NewIssuer(conflictStore{f.store}, otp.DefaultPolicy, otp.WithClock(func() time.Time { return f.now }))
	_, _, err := issuer.Resend(context.Background(), "a@x.io")
	require.ErrorIs(t, err, otp.ErrTooManyRequests)
}
