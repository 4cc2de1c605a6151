// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Mikhail Karpushin

package service

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrInvalidDataProvided = errors.New("invalid data provided")

	// ErrInvalidCredentials covers both "no such account" and "wrong
	// password" so the two cases stay indistinguishable to a caller.
	ErrInvalidCredentials = errors.New("invalid credentials")

	ErrAccountInactive = errors.New("account is inactive")

	ErrTokenIsExpiredOrInvalid = errors.New("token is expired or invalid")

	ErrEmailAlreadyRegistered    = errors.New("email is already registered")
	ErrUsernameAlreadyRegistered = errors.New("username is already registered")

	ErrUnknownEmail = errors.New("no account or pending registration for this email")

	ErrOtpInvalidOrExpired = errors.New("invalid or expired verification code")
	ErrTooManyOtpAttempts  = errors.New("too many verification attempts")
	ErrOtpRateLimited      = errors.New("too many verification codes requested")
	ErrMailDelivery        = errors.New("verification code delivery failed")

	ErrPasswordTooWeak = errors.New("password does not meet strength requirements")
	ErrPasswordReused  = errors.New("new password must differ from the current one")

	ErrRoleNotAllowed = errors.New("operation is not available for this account")
)

// LockedError reports a login rejected by the brute-force lockout. It
// carries the instant at which the lockout lapses.
type LockedError struct {
	LockoutExpiry time.Time
}

func (e *LockedError) Error() string {
	return fmt.Sprintf("account is locked until %s", e.LockoutExpiry.Format(time.RFC3339))
}

// WrongPasswordError is a failed password check. It unwraps to
// [ErrInvalidCredentials] so callers matching with errors.Is see the same
// error as a missing account; RemainingAttempts is the number of tries left
// before lockout, clamped at zero.
type WrongPasswordError struct {
	RemainingAttempts int
}

func (e *WrongPasswordError) Error() string {
	return ErrInvalidCredentials.Error()
}

func (e *WrongPasswordError) Unwrap() error {
	return ErrInvalidCredentials
}

// EmailNotVerifiedError is a login rejected because the account's e-mail
// address has not been confirmed. It carries the address so the caller can
// route the user to verification.
type EmailNotVerifiedError struct {
	Email string
}

func (e *EmailNotVerifiedError) Error() string {
	return "email address is not verified"
}
