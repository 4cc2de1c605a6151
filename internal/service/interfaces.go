package service

import (
	"context"

	"github.com/mkarpushin/store-identity/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/mock_services.go -package=mock

// AuthService is the credential verification engine. It owns the login
// state machine (lockout, counters, enumeration-resistant timing), refresh
// token rotation and logout.
type AuthService interface {
	// Login authenticates by e-mail or username plus password and returns
	// a full session: access token, refresh token and the sanitized user.
	//
	// Failure modes:
	//   - ErrInvalidDataProvided for blank or malformed input.
	//   - ErrInvalidCredentials for an unknown identifier; *WrongPasswordError
	//     (unwrapping to ErrInvalidCredentials) for a failed password check.
	//   - *LockedError while the brute-force lockout window is open.
	//   - ErrAccountInactive and *EmailNotVerifiedError for the account gates.
	//   - A wrapped storage error for infrastructure faults.
	Login(ctx context.Context, identifier, password string) (models.AuthSession, error)

	// Refresh exchanges a live refresh token for a new access token. The
	// presented token must verify, the account must be active, and the
	// token must literally match the account's single stored slot; a token
	// superseded by a later login is rejected even if unexpired.
	Refresh(ctx context.Context, refreshToken string) (models.Token, error)

	// Logout clears the account's refresh-token slot when the presented
	// token matches the stored one. It never fails the caller.
	Logout(ctx context.Context, userID int64, refreshToken string)

	// ParseAccessToken validates a raw access token and returns its parsed
	// form, or ErrTokenIsExpiredOrInvalid.
	ParseAccessToken(tokenString string) (models.Token, error)

	// GetUser returns the sanitized account for the given identifier.
	GetUser(ctx context.Context, userID int64) (models.User, error)
}

// TokenService mints and checks the signed tokens carried by sessions.
// Access and refresh tokens are signed with distinct secrets.
type TokenService interface {
	IssueAccessToken(user models.User) (models.Token, error)
	IssueRefreshToken(user models.User) (models.Token, error)

	// Parse validates a token of the given kind and returns its parsed form.
	Parse(tokenString string, kind models.TokenKind) (models.Token, error)

	// Verify is the forgiving form of Parse: any failure yields nil claims,
	// which callers treat uniformly as "unauthenticated".
	Verify(tokenString string, kind models.TokenKind) *models.TokenClaims
}

// RegistrationService is the deferred-registration workflow: register
// stages a pending payload in the OTP ledger, and only a successful code
// verification materializes the user row.
type RegistrationService interface {
	// Register validates the candidate fields, checks uniqueness, hashes
	// the password and issues an e-mail verification code carrying the
	// pending payload. It never writes a user row.
	Register(ctx context.Context, req models.RegisterRequest) (models.RegisterResponse, error)

	// SendOtp issues a fresh code for (email, purpose), carrying forward
	// any pending-registration payload from the latest ledger record.
	// Subject to the rolling rate limit.
	SendOtp(ctx context.Context, email string, purpose models.OtpPurpose) error

	// VerifyOtp consumes a code. On success it either confirms an existing
	// account's e-mail or materializes the pending registration.
	VerifyOtp(ctx context.Context, email, code string, purpose models.OtpPurpose) (models.VerifyOtpResponse, error)

	// PeekLatestCode returns the newest live code for (email, purpose).
	// Development aid for environments without a working mail sender.
	PeekLatestCode(ctx context.Context, email string, purpose models.OtpPurpose) (string, error)
}

// PasswordResetService is the forgot-password workflow.
type PasswordResetService interface {
	// ForgotPassword issues a reset code for an existing customer account.
	// An unknown address yields a nil error so responses stay generic.
	ForgotPassword(ctx context.Context, email string) error

	// VerifyResetOtp pre-checks a reset code without consuming it; the
	// record stays usable for the subsequent ResetPassword call.
	VerifyResetOtp(ctx context.Context, email, code string) error

	// ResetPassword re-validates the code, enforces password strength and
	// difference from the current password, persists the new hash, and
	// consumes the code only after the hash is stored.
	ResetPassword(ctx context.Context, email, code, newPassword string) error
}
