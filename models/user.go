// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Mikhail Karpushin

package models

import "time"

// Role enumerates the access levels a storefront account can hold.
type Role string

const (
	// RoleAdmin marks back-office accounts with full administrative access.
	RoleAdmin Role = "admin"

	// RoleShipper marks accounts used by the shipping staff.
	RoleShipper Role = "shipper"

	// RoleCustomer is the default role for self-registered accounts.
	RoleCustomer Role = "customer"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleShipper, RoleCustomer:
		return true
	}
	return false
}

// User represents a storefront account used for authentication and
// authorization. It contains identity attributes, credential data, and the
// security counters driving the lockout policy.
// Sensitive fields must never be exposed outside trusted boundaries.
type User struct {
	// UserID is the internal unique identifier of the user.
	UserID int64 `json:"id"`

	// Username is the unique login name chosen at registration.
	Username string `json:"username"`

	// Email is the unique, lower-cased e-mail address of the account.
	Email string `json:"email"`

	// PasswordHash stores the bcrypt hash of the user's password.
	// This value MUST be a derived value, never plaintext.
	PasswordHash string `json:"-"`

	// Role determines the account's access level.
	Role Role `json:"role"`

	// IsActive is false for suspended or soft-disabled accounts.
	IsActive bool `json:"isActive"`

	// EmailVerified is true once the account's e-mail address has been
	// confirmed through the one-time-passcode flow.
	EmailVerified bool `json:"emailVerified"`

	// FailedLoginAttempts counts consecutive failed password checks.
	// Reset to zero on every successful login.
	FailedLoginAttempts int `json:"-"`

	// LastFailedLogin is the timestamp of the most recent failed password
	// check. Together with FailedLoginAttempts it drives the lockout window.
	LastFailedLogin *time.Time `json:"-"`

	// LastLogin is the timestamp of the most recent successful login.
	LastLogin *time.Time `json:"lastLogin,omitempty"`

	// RefreshToken is the single live refresh token issued to this account.
	// Each successful login replaces it; a superseded token is no longer
	// accepted even before its expiry.
	RefreshToken string `json:"-"`

	// RefreshTokenIssuedAt records when the live refresh token was minted.
	RefreshTokenIssuedAt *time.Time `json:"-"`

	// CreatedAt is the timestamp when the account row was created.
	CreatedAt time.Time `json:"createdAt"`

	// UpdatedAt is the timestamp of the last mutation of the row.
	UpdatedAt time.Time `json:"updatedAt"`

	// DeletedAt marks soft-deleted accounts. Soft-deleted rows are invisible
	// to every lookup used by the authentication flows.
	DeletedAt *time.Time `json:"-"`
}

// TableName returns the name of the database table
// associated with the User model.
func (u User) TableName() string {
	return "users"
}

// Sanitized returns a copy of the user safe to return to API clients:
// credential material and security counters are stripped.
func (u User) Sanitized() User {
	u.PasswordHash = ""
	u.RefreshToken = ""
	u.RefreshTokenIssuedAt = nil
	u.FailedLoginAttempts = 0
	u.LastFailedLogin = nil
	return u
}
