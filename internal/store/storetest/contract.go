// Package storetest is the behavioral contract every repository.Store
// implementation must satisfy. Driver packages call Run from their tests.
package storetest

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/lmsauth/internal/domain/repository"
)

// Run executes the contract against stores built by newStore. Each subtest
// uses fresh emails, so one store may be shared across subtests.
func Run(t *testing.T, newStore func(t *testing.T) repository.Store) {
	t.Run("CreatePendingConflicts", func(t *testing.T) { testCreatePending(t, newStore(t)) })
	t.Run("PromoteExactlyOnce", func(t *testing.T) { testPromoteOnce(t, newStore(t)) })
	t.Run("OTPCompareAndSet", func(t *testing.T) { testOTPCAS(t, newStore(t)) })
	t.Run("TokenVersion", func(t *testing.T) { testTokenVersion(t, newStore(t)) })
	t.Run("UpdateRole", func(t *testing.T) { testUpdateRole(t, newStore(t)) })
}

func uniqueEmail() string { return uuid.NewString()[:8] + "@example.com" }

func newPending(email string) *repository.PendingUser {
	now := time.Now().UTC().Truncate(time.Microsecond)
	hash := "ab12"
	exp := now.Add(10 * time.Minute)
	return &repository.PendingUser{
		ID:           uuid.NewString(),
		Email:        email,
		Name:         "Pat",
		PasswordHash: "$argon2id$stub",
		Role:         repository.RoleStudent,
		OTP:          repository.OTPState{CodeHash: &hash, ExpiresAt: &exp, LastSentAt: &now},
	}
}

func userFrom(p *repository.PendingUser) *repository.User {
	now := time.Now().UTC()
	return &repository.User{
		ID:            uuid.NewString(),
		Email:         p.Email,
		Name:          p.Name,
		PasswordHash:  p.PasswordHash,
		Role:          p.Role,
		EmailVerified: true,
		Phone:         p.Phone,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

func promoted(t *testing.T, s repository.Store) *repository.User {
	t.Helper()
	ctx := context.Background()
	p := newPending(uniqueEmail())
	require.NoError(t, s.CreatePending(ctx, p))
	u := userFrom(p)
	require.NoError(t, s.PromotePending(ctx, p.ID, u))
	return u
}

func testCreatePending(t *testing.T, s repository.Store) {
	ctx := context.Background()
	phone := "+5511999990000"
	p := newPending(uniqueEmail())
	p.Phone = &phone
	require.NoError(t, s.CreatePending(ctx, p))

	got, err := s.GetPendingByEmail(ctx, p.Email)
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)
	require.NotNil(t, got.Phone)
	assert.Equal(t, phone, *got.Phone)
	require.NotNil(t, got.OTP.CodeHash)
	assert.Equal(t, *p.OTP.CodeHash, *got.OTP.CodeHash)

	dup := newPending(p.Email)
	assert.ErrorIs(t, s.CreatePending(ctx, dup), repository.ErrPendingExists)

	u := promoted(t, s)
	assert.ErrorIs(t, s.CreatePending(ctx, newPending(u.Email)), repository.ErrEmailTaken)

	_, err = s.GetPendingByEmail(ctx, uniqueEmail())
	assert.True(t, repository.IsNotFound(err))
}

func testPromoteOnce(t *testing.T, s repository.Store) {
	ctx := context.Background()
	p := newPending(uniqueEmail())
	require.NoError(t, s.CreatePending(ctx, p))

	const n = 8
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := s.PromotePending(ctx, p.ID, userFrom(p))
			if err == nil {
				mu.Lock()
				wins++
				mu.Unlock()
				return
			}
			assert.True(t, repository.IsNotFound(err), "loser got %v", err)
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, wins)

	u, err := s.GetUserByEmail(ctx, p.Email)
	require.NoError(t, err)
	assert.True(t, u.EmailVerified)
	assert.Equal(t, repository.RoleStudent, u.Role)
	_, err = s.GetPendingByEmail(ctx, p.Email)
	assert.True(t, repository.IsNotFound(err))
}

func testOTPCAS(t *testing.T, s repository.Store) {
	ctx := context.Background()
	p := newPending(uniqueEmail())
	require.NoError(t, s.CreatePending(ctx, p))
	cur, err := s.GetPendingByEmail(ctx, p.Email)
	require.NoError(t, err)

	next := cur.OTP
	sent := cur.OTP.LastSentAt.Add(time.Minute)
	next.LastSentAt = &sent
	next.RequestCount = 1

	require.NoError(t, s.UpdatePendingOTP(ctx, cur.ID, cur.OTP.LastSentAt, next))
	// the same expectation now loses
	assert.True(t, repository.IsConflict(s.UpdatePendingOTP(ctx, cur.ID, cur.OTP.LastSentAt, next)))
	assert.True(t, repository.IsNotFound(s.UpdatePendingOTP(ctx, uuid.NewString(), nil, next)))

	got, err := s.GetPendingByEmail(ctx, p.Email)
	require.NoError(t, err)
	assert.Equal(t, 1, got.OTP.RequestCount)
	assert.WithinDuration(t, sent, *got.OTP.LastSentAt, time.Millisecond)
}

func testTokenVersion(t *testing.T, s repository.Store) {
	ctx := context.Background()
	u := promoted(t, s)

	v, err := s.BumpTokenVersion(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, u.TokenVersion+1, v)

	v2, err := s.UpdatePassword(ctx, u.ID, "$argon2id$other")
	require.NoError(t, err)
	assert.Equal(t, v+1, v2)

	got, err := s.GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "$argon2id$other", got.PasswordHash)
	assert.Equal(t, v2, got.TokenVersion)

	_, err = s.BumpTokenVersion(ctx, uuid.NewString())
	assert.True(t, repository.IsNotFound(err))
}

func testUpdateRole(t *testing.T, s repository.Store) {
	ctx := context.Background()
	u := promoted(t, s)

	require.NoError(t, s.UpdateRole(ctx, u.Email, repository.RoleAdmin))
	got, err := s.GetUserByEmail(ctx, u.Email)
	require.NoError(t, err)
	assert.Equal(t, repository.RoleAdmin, got.Role)

	assert.True(t, repository.IsNotFound(s.UpdateRole(ctx, uniqueEmail(), repository.RoleAdmin)))
}
