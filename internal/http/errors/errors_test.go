package errors

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteErrorEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, ErrPasswordTooWeak.WithDetail("min_length"))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "PASSWORD_TOO_WEAK", body["code"])
	assert.Equal(t, "min_length", body["detail"])
	assert.NotContains(t, body, "retryAfter")
	assert.Empty(t, rec.Header().Get("Retry-After"))
	assert.Empty(t, ErrPasswordTooWeak.Detail, "package values are never mutated")
}

func TestWriteErrorRetryAfterRoundsUp(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, ErrResendTooSoon.WithRetryAfter(41500*time.Millisecond))

	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "42", rec.Header().Get("Retry-After"))
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.EqualValues(t, 42, body["retryAfter"])
}

func TestWriteErrorHidesUnknownErrors(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, errors.New("pq: connection refused to 10.0.0.3"))

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "10.0.0.3")
}

func TestWithCauseUnwraps(t *testing.T) {
	cause := errors.New("boom")
	err := ErrInternalServerError.WithCause(cause)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "boom")
}
