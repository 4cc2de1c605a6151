package models

import "time"

// LoginRequest is the payload of POST /api/auth/login. Identifier is either
// an e-mail address or a username; the presence of '@' disambiguates.
type LoginRequest struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

// LoginResponse is returned on a successful login.
type LoginResponse struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refreshToken"`
	User         User   `json:"user"`
	ExpiresIn    int64  `json:"expiresIn"`
}

// RegisterRequest is the payload of POST /api/auth/register. Either Password
// (plaintext, hashed server-side) or PasswordHash (pre-hashed by a trusted
// caller) must be supplied. Any caller-supplied role is ignored.
type RegisterRequest struct {
	Username     string `json:"username"`
	Email        string `json:"email"`
	Password     string `json:"password,omitempty"`
	PasswordHash string `json:"passwordHash,omitempty"`
	Role         string `json:"role,omitempty"`
}

// RegisterResponse is returned when a registration has been accepted and its
// verification code dispatched. It deliberately never carries a user object:
// no account exists until the code is verified.
type RegisterResponse struct {
	RequiresEmailVerification bool   `json:"requiresEmailVerification"`
	OtpSent                   bool   `json:"otpSent"`
	Email                     string `json:"email"`
}

// SendOtpRequest is the payload of POST /api/auth/send-otp.
type SendOtpRequest struct {
	Email   string     `json:"email"`
	Purpose OtpPurpose `json:"purpose"`
}

// VerifyOtpRequest is the payload of POST /api/auth/verify-otp and
// POST /api/auth/verify-forgot-password-otp.
type VerifyOtpRequest struct {
	Email   string     `json:"email"`
	Code    string     `json:"code"`
	Purpose OtpPurpose `json:"purpose,omitempty"`
}

// VerifyOtpResponse reports the outcome of a code verification. User is set
// only when the verification materialized a deferred registration.
type VerifyOtpResponse struct {
	Verified bool  `json:"verified"`
	User     *User `json:"user,omitempty"`
}

// RefreshRequest is the payload of POST /api/auth/refresh-token.
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// RefreshResponse carries the newly minted access token.
type RefreshResponse struct {
	Token     string `json:"token"`
	ExpiresIn int64  `json:"expiresIn"`
}

// LogoutRequest is the payload of POST /api/auth/logout. The refresh token is
// optional; when present the server clears the account's live session slot.
type LogoutRequest struct {
	RefreshToken string `json:"refreshToken,omitempty"`
}

// ForgotPasswordRequest is the payload of POST /api/auth/forgot-password.
type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

// ResetPasswordRequest is the payload of POST /api/auth/reset-password.
type ResetPasswordRequest struct {
	Email       string `json:"email"`
	Code        string `json:"code"`
	NewPassword string `json:"newPassword"`
}

// MessageResponse is a generic human-readable acknowledgement.
type MessageResponse struct {
	Message string `json:"message"`
}

// ErrorResponse is the uniform error body returned by all endpoints.
// RemainingAttempts and LockoutExpiry are present only on the login paths
// that produce them.
type ErrorResponse struct {
	Error             string     `json:"error"`
	RemainingAttempts *int       `json:"remainingAttempts,omitempty"`
	LockoutExpiry     *time.Time `json:"lockoutExpiry,omitempty"`
}
