package session_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dropDatabas3/lmsauth/internal/http/services/session"
)

func TestNormalizePhone(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"+1 (555) 123-4567", "+15551234567", true},
		{"5551234567", "+5551234567", true},
		{"  +44.20.7946.0958 ", "+442079460958", true},
		{"123456", "", false},
		{"1234567890123456", "", false},
		{"555-CALL-NOW", "", false},
		{"55+51234567", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, ok := session.NormalizePhone(tc.in)
		assert.Equal(t, tc.ok, ok, tc.in)
		assert.Equal(t, tc.want, got, tc.in)
	}
}
