package session

import (
	"fmt"

	"github.com/dropDatabas3/lmsauth/internal/domain/repository"
	dto "github.com/dropDatabas3/lmsauth/internal/http/dto/auth"
	jwtx "github.com/dropDatabas3/lmsauth/internal/jwt"
)

// issue mints an access/refresh pair bound to u's current token version.
func (m *Manager) issue(u *repository.User) (*dto.SessionResult, error) {
	access, accessExp, err := m.codec.SignAccess(jwtx.Subject{
		ID:    u.ID,
		Email: u.Email,
		Name:  u.Name,
		Role:  string(u.Role),
	}, u.TokenVersion)
	if err != nil {
		return nil, fmt.Errorf("%w: access: %v", ErrTokenIssueFailed, err)
	}
	refresh, refreshExp, err := m.codec.SignRefresh(u.ID, u.TokenVersion)
	if err != nil {
		return nil, fmt.Errorf("%w: refresh: %v", ErrTokenIssueFailed, err)
	}
	return &dto.SessionResult{
		User:             toUserResponse(u),
		AccessToken:      access,
		AccessExpiresAt:  accessExp,
		RefreshToken:     refresh,
		RefreshExpiresAt: refreshExp,
	}, nil
}

func toUserResponse(u *repository.User) dto.UserResponse {
	out := dto.UserResponse{
		ID:            u.ID,
		Email:         u.Email,
		Name:          u.Name,
		Role:          string(u.Role),
		EmailVerified: u.EmailVerified,
		CreatedAt:     u.CreatedAt,
	}
	if u.Phone != nil {
		out.PhoneNumber = *u.Phone
	}
	return out
}
