package models

import "time"

// OtpPurpose distinguishes what a one-time passcode is allowed to prove.
type OtpPurpose string

const (
	// OtpPurposeEmailVerification codes confirm control of an e-mail address
	// during registration or re-verification of an existing account.
	OtpPurposeEmailVerification OtpPurpose = "email_verification"

	// OtpPurposePasswordReset codes authorize a password reset.
	OtpPurposePasswordReset OtpPurpose = "password_reset"
)

// Valid reports whether p is one of the known purposes.
func (p OtpPurpose) Valid() bool {
	return p == OtpPurposeEmailVerification || p == OtpPurposePasswordReset
}

// PendingRegistration holds the full candidate account attached to a
// registration OTP. No user row exists until the code is verified; these
// fields are materialized into a User at that moment.
type PendingRegistration struct {
	Username     string `json:"username"`
	Email        string `json:"email"`
	PasswordHash string `json:"password_hash"`
	Role         Role   `json:"role"`
}

// OtpRecord is a one-time verification ticket persisted in the OTP ledger.
//
// Records are never deleted: expiry is enforced by comparing ExpiresAt to the
// current time at read time, and exhausted or verified records stay in the
// ledger as an audit trail.
type OtpRecord struct {
	// OtpID is the internal unique identifier of the record.
	OtpID int64 `json:"-"`

	// Email is the lower-cased address the code was sent to.
	Email string `json:"email"`

	// Code is the fixed-length numeric passcode.
	Code string `json:"-"`

	// UserID references an existing account when the code re-verifies or
	// resets it. Nil means the registration has not been materialized yet.
	UserID *int64 `json:"-"`

	// Purpose restricts what a successful verification is allowed to do.
	Purpose OtpPurpose `json:"purpose"`

	// PendingRegistration carries the candidate account fields for
	// registration codes. Required when UserID is nil.
	PendingRegistration *PendingRegistration `json:"-"`

	// ExpiresAt is the instant after which the code is no longer accepted.
	ExpiresAt time.Time `json:"expires_at"`

	// Verified is true once the code has been consumed. A verified record
	// can never be consumed again.
	Verified bool `json:"verified"`

	// Attempts counts failed verification tries against this record. Once it
	// reaches the configured ceiling the record is treated as exhausted.
	Attempts int `json:"-"`

	// CreatedAt is the timestamp the record was issued.
	CreatedAt time.Time `json:"created_at"`

	// VerifiedAt records when the code was consumed, if ever.
	VerifiedAt *time.Time `json:"-"`
}

// TableName returns the name of the database table
// associated with the OtpRecord model.
func (o OtpRecord) TableName() string {
	return "otps"
}

// Expired reports whether the record is past its expiry at the given instant.
func (o OtpRecord) Expired(now time.Time) bool {
	return !now.Before(o.ExpiresAt)
}

// Materialize builds the User row deferred behind a registration code.
// The role is forced to customer regardless of the stored payload, and the
// account starts active with a verified e-mail address.
func (p PendingRegistration) Materialize() User {
	return User{
		Username:      p.Username,
		Email:         p.Email,
		PasswordHash:  p.PasswordHash,
		Role:          RoleCustomer,
		IsActive:      true,
		EmailVerified: true,
	}
}
