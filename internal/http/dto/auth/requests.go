// Package auth holds the JSON bodies of the /api/auth endpoints.
package auth

// RegisterRequest is the body of POST /api/auth/register.
type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
	// Role defaults to STUDENT. ADMIN cannot be self-assigned.
	Role string `json:"role,omitempty"`
	// PhoneNumber is normalized to E.164; unusable values are dropped.
	PhoneNumber string `json:"phoneNumber,omitempty"`
}

type VerifyOTPRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

type ResendOTPRequest struct {
	Email string `json:"email"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RefreshRequest is only read when the refresh cookie is absent.
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken,omitempty"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
	ConfirmPassword string `json:"confirmPassword"`
}
