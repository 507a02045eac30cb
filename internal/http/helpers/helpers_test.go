package helpers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httperrors "github.com/dropDatabas3/lmsauth/internal/http/errors"
)

func TestSessionCookies(t *testing.T) {
	cfg := CookieConfig{AccessName: "a", RefreshName: "r", Domain: "lms.example.com", SameSite: "strict", Secure: true}
	rec := httptest.NewRecorder()
	SetSessionCookies(rec, cfg, "acc", 15*time.Minute, "ref", 7*24*time.Hour)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 2)
	for _, c := range cookies {
		assert.True(t, c.HttpOnly)
		assert.True(t, c.Secure)
		assert.Equal(t, "/", c.Path)
		assert.Equal(t, "lms.example.com", c.Domain)
		assert.Equal(t, http.SameSiteStrictMode, c.SameSite)
	}
	assert.Equal(t, 900, cookies[0].MaxAge)
	assert.Equal(t, 7*24*3600, cookies[1].MaxAge)

	rec = httptest.NewRecorder()
	ClearSessionCookies(rec, cfg)
	for _, c := range rec.Result().Cookies() {
		assert.Empty(t, c.Value)
		assert.Equal(t, -1, c.MaxAge)
	}
}

func TestParseSameSite(t *testing.T) {
	assert.Equal(t, http.SameSiteNoneMode, ParseSameSite(" None "))
	assert.Equal(t, http.SameSiteLaxMode, ParseSameSite(""))
	assert.Equal(t, http.SameSiteLaxMode, ParseSameSite("bogus"))
}

func TestBearerToken(t *testing.T) {
	cases := map[string]string{
		"Bearer abc":   "abc",
		"bearer  abc ": "abc",
		"Basic abc":    "",
		"Bearer":       "",
		"":             "",
	}
	for header, want := range cases {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.Header.Set("Authorization", header)
		assert.Equal(t, want, BearerToken(r), header)
	}
}

func TestReadJSON(t *testing.T) {
	type body struct {
		Email string `json:"email"`
	}
	read := func(payload, ct string, allowEmpty bool) (body, error) {
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(payload))
		if ct != "" {
			r.Header.Set("Content-Type", ct)
		}
		var b body
		err := ReadJSON(httptest.NewRecorder(), r, &b, allowEmpty)
		return b, err
	}

	b, err := read(`{"email":"a@b.co"}`, "application/json", false)
	require.NoError(t, err)
	assert.Equal(t, "a@b.co", b.Email)

	_, err = read(`{"email":"a@b.co","x":1}`, "application/json", false)
	assert.Equal(t, "INVALID_JSON", err.(*httperrors.AppError).Code)

	_, err = read(`{"email":"a"}{"email":"b"}`, "", false)
	assert.Equal(t, "INVALID_JSON", err.(*httperrors.AppError).Code)

	_, err = read(`email=a`, "application/x-www-form-urlencoded", false)
	assert.Equal(t, "BAD_REQUEST", err.(*httperrors.AppError).Code)

	_, err = read("", "application/json", true)
	assert.NoError(t, err)
	_, err = read("", "application/json", false)
	assert.Error(t, err)

	big := `{"email":"` + strings.Repeat("x", MaxBodySize) + `"}`
	_, err = read(big, "application/json", false)
	assert.Equal(t, http.StatusRequestEntityTooLarge, err.(*httperrors.AppError).HTTPStatus)
}
