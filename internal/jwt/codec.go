// Package jwt signs and verifies the HS256 access and refresh tokens.
//
// Both token types carry the user's token version ("tv"). Bumping the version
// on the user record is the only server-side revocation mechanism; the
// codec itself is stateless.
package jwt

import (
	"errors"
	"fmt"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"

	tokens "github.com/dropDatabas3/lmsauth/internal/security/token"
)

const (
	TypeAccess  = "access"
	TypeRefresh = "refresh"

	// MinSecretLen is the shortest HS256 secret accepted.
	MinSecretLen = 32
)

var (
	ErrMissingSecret = errors.New("jwt: signing secret is not configured")
	ErrWeakSecret    = fmt.Errorf("jwt: signing secret shorter than %d bytes", MinSecretLen)

	ErrMalformed        = errors.New("jwt: malformed token")
	ErrInvalidSignature = errors.New("jwt: invalid signature")
	ErrExpired          = errors.New("jwt: token expired")
	ErrWrongType        = errors.New("jwt: unexpected token type")
)

// Subject is the identity embedded in tokens.
type Subject struct {
	ID    string
	Email string
	Name  string
	Role  string
}

// Claims is the JWT payload for both token types. Refresh tokens omit the
// profile fields.
type Claims struct {
	jwtv5.RegisteredClaims
	Type         string `json:"typ"`
	TokenVersion int    `json:"tv"`
	Email        string `json:"email,omitempty"`
	Name         string `json:"name,omitempty"`
	Role         string `json:"role,omitempty"`
}

// Config configures a Codec.
type Config struct {
	Secret     []byte
	Issuer     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// Codec is safe for concurrent use.
type Codec struct {
	secret     []byte
	issuer     string
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

// NewCodec refuses to build without a strong secret; there is no default key.
func NewCodec(cfg Config) (*Codec, error) {
	if len(cfg.Secret) == 0 {
		return nil, ErrMissingSecret
	}
	if len(cfg.Secret) < MinSecretLen {
		return nil, ErrWeakSecret
	}
	c := &Codec{
		secret:     append([]byte(nil), cfg.Secret...),
		issuer:     cfg.Issuer,
		accessTTL:  cfg.AccessTTL,
		refreshTTL: cfg.RefreshTTL,
		now:        time.Now,
	}
	if c.accessTTL <= 0 {
		c.accessTTL = 15 * time.Minute
	}
	if c.refreshTTL <= 0 {
		c.refreshTTL = 7 * 24 * time.Hour
	}
	return c, nil
}

// WithClock returns a copy of c reading time from now.
func (c *Codec) WithClock(now func() time.Time) *Codec {
	cp := *c
	cp.now = now
	return &cp
}

func (c *Codec) AccessTTL() time.Duration  { return c.accessTTL }
func (c *Codec) RefreshTTL() time.Duration { return c.refreshTTL }

// SignAccess mints a short-lived access token.
func (c *Codec) SignAccess(sub Subject, tokenVersion int) (string, time.Time, error) {
	return c.sign(Claims{
		Type:         TypeAccess,
		TokenVersion: tokenVersion,
		Email:        sub.Email,
		Name:         sub.Name,
		Role:         sub.Role,
	}, sub.ID, c.accessTTL)
}

// SignRefresh mints a refresh token. Every call gets a fresh jti so a
// rotated token never repeats.
func (c *Codec) SignRefresh(userID string, tokenVersion int) (string, time.Time, error) {
	return c.sign(Claims{
		Type:         TypeRefresh,
		TokenVersion: tokenVersion,
	}, userID, c.refreshTTL)
}

func (c *Codec) sign(cl Claims, subject string, ttl time.Duration) (string, time.Time, error) {
	jti, err := tokens.GenerateOpaqueToken(16)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("jwt: jti: %w", err)
	}
	now := c.now()
	exp := now.Add(ttl)
	cl.RegisteredClaims = jwtv5.RegisteredClaims{
		Issuer:    c.issuer,
		Subject:   subject,
		ID:        jti,
		IssuedAt:  jwtv5.NewNumericDate(now),
		ExpiresAt: jwtv5.NewNumericDate(exp),
	}
	signed, err := jwtv5.NewWithClaims(jwtv5.SigningMethodHS256, cl).SignedString(c.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("jwt: sign: %w", err)
	}
	return signed, exp, nil
}

// VerifyAccess checks signature, expiry, issuer and type.
func (c *Codec) VerifyAccess(raw string) (*Claims, error) {
	return c.verify(raw, TypeAccess, true)
}

// VerifyRefresh checks signature, expiry, issuer and type.
func (c *Codec) VerifyRefresh(raw string) (*Claims, error) {
	return c.verify(raw, TypeRefresh, true)
}

// Decode checks the signature but ignores expiry, so logout can still
// identify the user behind a stale token. Forged tokens are rejected.
func (c *Codec) Decode(raw string) (*Claims, error) {
	return c.verify(raw, "", false)
}

func (c *Codec) verify(raw, wantType string, validateTime bool) (*Claims, error) {
	opts := []jwtv5.ParserOption{
		jwtv5.WithValidMethods([]string{jwtv5.SigningMethodHS256.Alg()}),
		jwtv5.WithTimeFunc(c.now),
	}
	if validateTime {
		opts = append(opts, jwtv5.WithExpirationRequired())
		if c.issuer != "" {
			opts = append(opts, jwtv5.WithIssuer(c.issuer))
		}
	} else {
		opts = append(opts, jwtv5.WithoutClaimsValidation())
	}

	var cl Claims
	_, err := jwtv5.ParseWithClaims(raw, &cl, func(*jwtv5.Token) (any, error) {
		return c.secret, nil
	}, opts...)
	if err != nil {
		return nil, classify(err)
	}
	if cl.Subject == "" {
		return nil, ErrMalformed
	}
	if wantType != "" && cl.Type != wantType {
		return nil, ErrWrongType
	}
	return &cl, nil
}

func classify(err error) error {
	switch {
	case errors.Is(err, jwtv5.ErrTokenExpired):
		return fmt.Errorf("%w: %v", ErrExpired, err)
	case errors.Is(err, jwtv5.ErrTokenSignatureInvalid), errors.Is(err, jwtv5.ErrTokenUnverifiable):
		return fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	default:
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
}
