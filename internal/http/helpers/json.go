package helpers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	httperrors "github.com/dropDatabas3/lmsauth/internal/http/errors"
)

const (
	MaxBodySize     = 64 * 1024
	ContentTypeJSON = "application/json; charset=utf-8"
)

// ReadJSON decodes a JSON body into v, rejecting unknown fields and bodies
// over MaxBodySize and trailing data. An empty body is allowed when allowEmpty is set.
// It returns an *AppError ready for WriteError.
func ReadJSON(w http.ResponseWriter, r *http.Request, v any, allowEmpty bool) error {
	if ct := r.Header.Get("Content-Type"); ct != "" && !strings.Contains(strings.ToLower(ct), "application/json") {
		return httperrors.ErrBadRequest.WithDetail("Content-Type must be application/json")
	}
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodySize)
	defer r.Body.Close()

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.Is(err, io.EOF) && allowEmpty:
			return nil
		case errors.As(err, &tooLarge):
			return httperrors.ErrBodyTooLarge
		}
		return httperrors.ErrInvalidJSON.WithCause(err)
	}
	if dec.More() {
		return httperrors.ErrInvalidJSON.WithDetail("trailing data after JSON object")
	}
	return nil
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", ContentTypeJSON)
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
