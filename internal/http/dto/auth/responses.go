package auth

import "time"

// UserResponse is the public view of a user. It never carries the password
// hash or the token version.
type UserResponse struct {
	ID            string    `json:"id"`
	Email         string    `json:"email"`
	Name          string    `json:"name"`
	Role          string    `json:"role"`
	PhoneNumber   string    `json:"phoneNumber,omitempty"`
	EmailVerified bool      `json:"emailVerified"`
	CreatedAt     time.Time `json:"createdAt,omitempty"`
}

// SessionResult is what the service hands the controller after any operation
// that mints a token pair. The controller decides the transport.
type SessionResult struct {
	User             UserResponse
	AccessToken      string
	AccessExpiresAt  time.Time
	RefreshToken     string
	RefreshExpiresAt time.Time
}

// SessionResponse is the body of login, refresh and verify-otp. Token fields
// are filled only when body transport is enabled.
type SessionResponse struct {
	OK           bool         `json:"ok,omitempty"`
	User         UserResponse `json:"user"`
	AccessToken  string       `json:"accessToken,omitempty"`
	RefreshToken string       `json:"refreshToken,omitempty"`
	ExpiresIn    int64        `json:"expiresIn,omitempty"`
}

type RegisterResult struct {
	Email string
	// CodeSent is false when the code could not be generated; the client
	// can ask for a resend.
	CodeSent bool
}

type RegisterResponse struct {
	Message string `json:"message"`
	Email   string `json:"email"`
}

type OKResponse struct {
	OK bool `json:"ok"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

// MeResponse is the authenticated identity.
type MeResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}
