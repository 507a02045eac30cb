// Package helpers holds small HTTP utilities shared by controllers and
// middlewares.
package helpers

import (
	"net/http"
	"strings"
	"time"
)

// CookieConfig is the session cookie policy.
type CookieConfig struct {
	AccessName  string
	RefreshName string
	Domain      string
	SameSite    string // lax | strict | none
	Secure      bool
}

func ParseSameSite(s string) http.SameSite {
	switch strings.TrimSpace(strings.ToLower(s)) {
	case "strict":
		return http.SameSiteStrictMode
	case "none":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteLaxMode
	}
}

// BuildCookie returns an HttpOnly cookie scoped to "/" that lives for ttl.
func BuildCookie(name, value, domain, sameSite string, secure bool, ttl time.Duration) *http.Cookie {
	ck := &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: ParseSameSite(sameSite),
	}
	if strings.TrimSpace(domain) != "" {
		ck.Domain = domain
	}
	if ttl > 0 {
		ck.Expires = time.Now().Add(ttl).UTC()
		ck.MaxAge = int(ttl.Seconds())
	}
	return ck
}

// BuildDeletionCookie expires name immediately. Attributes must match the
// ones used to set it or browsers keep the original.
func BuildDeletionCookie(name, domain, sameSite string, secure bool) *http.Cookie {
	ck := &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: ParseSameSite(sameSite),
		Expires:  time.Unix(0, 0).UTC(),
		MaxAge:   -1,
	}
	if strings.TrimSpace(domain) != "" {
		ck.Domain = domain
	}
	return ck
}

// SetSessionCookies writes both session cookies, each living as long as its
// token.
func SetSessionCookies(w http.ResponseWriter, cfg CookieConfig, access string, accessTTL time.Duration, refresh string, refreshTTL time.Duration) {
	http.SetCookie(w, BuildCookie(cfg.AccessName, access, cfg.Domain, cfg.SameSite, cfg.Secure, accessTTL))
	http.SetCookie(w, BuildCookie(cfg.RefreshName, refresh, cfg.Domain, cfg.SameSite, cfg.Secure, refreshTTL))
}

func ClearSessionCookies(w http.ResponseWriter, cfg CookieConfig) {
	http.SetCookie(w, BuildDeletionCookie(cfg.AccessName, cfg.Domain, cfg.SameSite, cfg.Secure))
	http.SetCookie(w, BuildDeletionCookie(cfg.RefreshName, cfg.Domain, cfg.SameSite, cfg.Secure))
}

// CookieValue returns the named cookie's value or "".
func CookieValue(r *http.Request, name string) string {
	if c, err := r.Cookie(name); err == nil {
		return c.Value
	}
	return ""
}

// BearerToken extracts the token of an "Authorization: Bearer" header.
func BearerToken(r *http.Request) string {
	ah := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(ah) < 7 || !strings.EqualFold(ah[:7], "bearer ") {
		return ""
	}
	return strings.TrimSpace(ah[7:])
}
