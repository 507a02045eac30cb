package jwt_test

import (
	"errors"
	"strings"
	"testing"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"

	"github.com/dropDatabas3/lmsauth/internal/jwt"
)

var secret = []byte(strings.Repeat("k", 32))

func newCodec(t *testing.T, now *time.Time) *jwt.Codec {
	t.Helper()
	c, err := jwt.NewCodec(jwt.Config{Secret: secret, Issuer: "lmsauth", AccessTTL: 15 * time.Minute, RefreshTTL: 7 * 24 * time.Hour})
	if err != nil {
		t.Fatalf("new codec: %v", err)
	}
	return c.WithClock(func() time.Time { return *now })
}

func TestNewCodecRequiresSecret(t *testing.T) {
	if _, err := jwt.NewCodec(jwt.Config{}); !errors.Is(err, jwt.ErrMissingSecret) {
		t.Fatalf("want ErrMissingSecret, got %v", err)
	}
	if _, err := jwt.NewCodec(jwt.Config{Secret: []byte("short")}); !errors.Is(err, jwt.ErrWeakSecret) {
		t.Fatalf("want ErrWeakSecret, got %v", err)
	}
}

func TestAccessRoundTrip(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	c := newCodec(t, &now)

	raw, exp, err := c.SignAccess(jwt.Subject{ID: "u1", Email: "a@x.io", Name: "A", Role: "STUDENT"}, 3)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if !exp.Equal(now.Add(15 * time.Minute)) {
		t.Fatalf("unexpected exp %v", exp)
	}

	cl, err := c.VerifyAccess(raw)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if cl.Subject != "u1" || cl.Email != "a@x.io" || cl.Role != "STUDENT" || cl.TokenVersion != 3 {
		t.Fatalf("unexpected claims: %+v", cl)
	}
	if _, err := c.VerifyRefresh(raw); !errors.Is(err, jwt.ErrWrongType) {
		t.Fatalf("access token accepted as refresh: %v", err)
	}
}

func TestRefreshIsNeverReused(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	c := newCodec(t, &now)

	a, _, _ := c.SignRefresh("u1", 0)
	b, _, _ := c.SignRefresh("u1", 0)
	if a == b {
		t.Fatal("two refresh tokens minted in the same second must differ")
	}
	ca, _ := c.VerifyRefresh(a)
	cb, _ := c.VerifyRefresh(b)
	if ca.ID == "" || ca.ID == cb.ID {
		t.Fatalf("expected distinct jti, got %q and %q", ca.ID, cb.ID)
	}
}

func TestVerifyExpired(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	c := newCodec(t, &now)

	raw, _, _ := c.SignAccess(jwt.Subject{ID: "u1"}, 0)
	now = now.Add(16 * time.Minute)

	if _, err := c.VerifyAccess(raw); !errors.Is(err, jwt.ErrExpired) {
		t.Fatalf("want ErrExpired, got %v", err)
	}
	cl, err := c.Decode(raw)
	if err != nil {
		t.Fatalf("decode should ignore expiry: %v", err)
	}
	if cl.Subject != "u1" {
		t.Fatalf("unexpected subject %q", cl.Subject)
	}
}

func TestVerifyWrongSecret(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	c := newCodec(t, &now)

	other, _ := jwt.NewCodec(jwt.Config{Secret: []byte(strings.Repeat("z", 32)), Issuer: "lmsauth"})
	raw, _, _ := other.WithClock(func() time.Time { return now }).SignAccess(jwt.Subject{ID: "u1"}, 0)

	if _, err := c.VerifyAccess(raw); !errors.Is(err, jwt.ErrInvalidSignature) {
		t.Fatalf("want ErrInvalidSignature, got %v", err)
	}
	if _, err := c.Decode(raw); !errors.Is(err, jwt.ErrInvalidSignature) {
		t.Fatalf("decode must still check the signature, got %v", err)
	}
}

func TestVerifyMalformed(t *testing.T) {
	now := time.Now()
	c := newCodec(t, &now)
	for _, raw := range []string{"", "abc", "a.b.c"} {
		if _, err := c.VerifyAccess(raw); !errors.Is(err, jwt.ErrMalformed) {
			t.Fatalf("%q: want ErrMalformed, got %v", raw, err)
		}
	}
}

func TestVerifyRejectsOtherAlgorithms(t *testing.T) {
	now := time.Now()
	c := newCodec(t, &now)

	tok := jwtv5.NewWithClaims(jwtv5.SigningMethodHS512, jwt.Claims{
		RegisteredClaims: jwtv5.RegisteredClaims{
			Subject:   "u1",
			Issuer:    "lmsauth",
			ExpiresAt: jwtv5.NewNumericDate(now.Add(time.Hour)),
		},
		Type: jwt.TypeAccess,
	})
	raw, err := tok.SignedString(secret)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := c.VerifyAccess(raw); err == nil {
		t.Fatal("HS512 token must be rejected")
	}
}
