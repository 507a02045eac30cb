// Package memory is an in-process credential store. It backs tests and the
// "memory" storage driver used in local development.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/dropDatabas3/lmsauth/internal/domain/repository"
)

// Store keeps users and pending registrations in maps guarded by one mutex,
// so every operation is linearizable like a row-locked database.
type Store struct {
	mu sync.Mutex

	users        map[string]*repository.User // by id
	usersByEmail map[string]string
	pending      map[string]*repository.PendingUser // by email

	now func() time.Time
}

var _ repository.Store = (*Store)(nil)

func New() *Store {
	return &Store{
		users:        make(map[string]*repository.User),
		usersByEmail: make(map[string]string),
		pending:      make(map[string]*repository.PendingUser),
		now:          time.Now,
	}
}

func (s *Store) Ping(context.Context) error { return nil }
func (s *Store) Close() error               { return nil }

func (s *Store) GetUserByEmail(_ context.Context, email string) (*repository.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.usersByEmail[email]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return cloneUser(s.users[id]), nil
}

func (s *Store) GetUserByID(_ context.Context, id string) (*repository.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return cloneUser(u), nil
}

func (s *Store) BumpTokenVersion(_ context.Context, id string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return 0, repository.ErrNotFound
	}
	u.TokenVersion++
	u.UpdatedAt = s.now()
	return u.TokenVersion, nil
}

func (s *Store) UpdatePassword(_ context.Context, id, passwordHash string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return 0, repository.ErrNotFound
	}
	u.PasswordHash = passwordHash
	u.TokenVersion++
	u.UpdatedAt = s.now()
	return u.TokenVersion, nil
}

func (s *Store) UpdateRole(_ context.Context, email string, role repository.Role) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.usersByEmail[email]
	if !ok {
		return repository.ErrNotFound
	}
	u := s.users[id]
	u.Role = role
	u.UpdatedAt = s.now()
	return nil
}

func (s *Store) CreatePending(_ context.Context, p *repository.PendingUser) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.usersByEmail[p.Email]; ok {
		return repository.ErrEmailTaken
	}
	if _, ok := s.pending[p.Email]; ok {
		return repository.ErrPendingExists
	}
	cp := clonePending(p)
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = s.now()
	}
	s.pending[p.Email] = cp
	return nil
}

func (s *Store) GetPendingByEmail(_ context.Context, email string) (*repository.PendingUser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.pending[email]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return clonePending(p), nil
}

func (s *Store) UpdatePendingOTP(_ context.Context, id string, expectedLastSent *time.Time, st repository.OTPState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.pendingByID(id)
	if p == nil {
		return repository.ErrNotFound
	}
	if !sameInstant(p.OTP.LastSentAt, expectedLastSent) {
		return repository.ErrConflict
	}
	p.OTP = cloneOTP(st)
	return nil
}

func (s *Store) PromotePending(_ context.Context, pendingID string, u *repository.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.pendingByID(pendingID)
	if p == nil {
		return repository.ErrNotFound
	}
	if _, ok := s.usersByEmail[u.Email]; ok {
		return repository.ErrEmailTaken
	}
	delete(s.pending, p.Email)

	cp := cloneUser(u)
	now := s.now()
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = now
	}
	cp.UpdatedAt = now
	s.users[cp.ID] = cp
	s.usersByEmail[cp.Email] = cp.ID
	return nil
}

func (s *Store) pendingByID(id string) *repository.PendingUser {
	for _, p := range s.pending {
		if p.ID == id {
			return p
		}
	}
	return nil
}

func sameInstant(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(*b)
}

func cloneUser(u *repository.User) *repository.User {
	cp := *u
	cp.Phone = cloneStr(u.Phone)
	return &cp
}

func clonePending(p *repository.PendingUser) *repository.PendingUser {
	cp := *p
	cp.Phone = cloneStr(p.Phone)
	cp.OTP = cloneOTP(p.OTP)
	return &cp
}

func cloneOTP(st repository.OTPState) repository.OTPState {
	return repository.OTPState{
		CodeHash:      cloneStr(st.CodeHash),
		ExpiresAt:     cloneTime(st.ExpiresAt),
		RequestCount:  st.RequestCount,
		WindowStarted: cloneTime(st.WindowStarted),
		LastSentAt:    cloneTime(st.LastSentAt),
	}
}

func cloneStr(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
