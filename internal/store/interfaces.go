package store

import (
	"context"
	"time"

	"github.com/mkarpushin/store-identity/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/store_mock.go -package=mock

// UserRepository is the data-access contract of the credential store. All
// lookups exclude soft-deleted rows.
type UserRepository interface {
	// CreateUser persists a new account row and returns it with
	// server-assigned fields populated.
	CreateUser(ctx context.Context, user models.User) (models.User, error)

	// FindUserByEmail retrieves the account with the given (lower-cased)
	// e-mail address. Returns ErrNoUserWasFound on a miss.
	FindUserByEmail(ctx context.Context, email string) (models.User, error)

	// FindUserByUsername retrieves the account with the given username.
	// Returns ErrNoUserWasFound on a miss.
	FindUserByUsername(ctx context.Context, username string) (models.User, error)

	// FindUserByID retrieves the account with the given identifier.
	// Returns ErrNoUserWasFound on a miss.
	FindUserByID(ctx context.Context, userID int64) (models.User, error)

	// RecordLoginFailure atomically increments the failed-attempt counter,
	// stamps the failure time, and returns the new counter value.
	RecordLoginFailure(ctx context.Context, userID int64, at time.Time) (int, error)

	// ResetLoginFailures zeroes the failed-attempt counter.
	ResetLoginFailures(ctx context.Context, userID int64) error

	// RecordLogin zeroes the failed-attempt counter and stamps a successful
	// login time.
	RecordLogin(ctx context.Context, userID int64, at time.Time) error

	// SaveRefreshToken replaces the account's single live refresh token.
	SaveRefreshToken(ctx context.Context, userID int64, token string, issuedAt time.Time) error

	// ClearRefreshToken empties the refresh-token slot, but only when the
	// stored value matches the presented token.
	ClearRefreshToken(ctx context.Context, userID int64, token string) error

	// UpdatePassword replaces the account's password hash.
	UpdatePassword(ctx context.Context, userID int64, passwordHash string) error

	// SetEmailVerified marks the account's e-mail address as confirmed.
	SetEmailVerified(ctx context.Context, userID int64) error
}

// OtpRepository is the data-access contract of the OTP ledger. Records are
// append-and-mutate only; nothing is ever deleted.
type OtpRepository interface {
	// CreateOtp persists a new ledger record and returns it with
	// server-assigned fields populated.
	CreateOtp(ctx context.Context, record models.OtpRecord) (models.OtpRecord, error)

	// FindActiveOtp retrieves the most recent unverified, unexpired record
	// matching (email, code, purpose). Returns ErrNoOtpWasFound on a miss.
	FindActiveOtp(ctx context.Context, email, code string, purpose models.OtpPurpose, now time.Time) (models.OtpRecord, error)

	// FindLatestOtp retrieves the most recent record for (email, purpose)
	// regardless of code, expiry or verification state.
	// Returns ErrNoOtpWasFound on a miss.
	FindLatestOtp(ctx context.Context, email string, purpose models.OtpPurpose) (models.OtpRecord, error)

	// IncrementAttempts adds one failed verification try to the record and
	// returns the new attempt count.
	IncrementAttempts(ctx context.Context, otpID int64) (int, error)

	// MarkVerified consumes the record, stamping the verification time.
	MarkVerified(ctx context.Context, otpID int64, at time.Time) error

	// CountRecentOtps counts ledger records issued for (email, purpose)
	// since the given instant. Drives the send rate limit.
	CountRecentOtps(ctx context.Context, email string, purpose models.OtpPurpose, since time.Time) (int, error)
}
