// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Mikhail Karpushin

package store

import (
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/mkarpushin/store-identity/models"
)

const userColumns = `user_id, username, email, password_hash, role, is_active, email_verified,
    failed_login_attempts, last_failed_login, last_login, refresh_token, refresh_token_issued_at,
    created_at, updated_at, deleted_at`

const (
	createUser = `INSERT INTO users (username, email, password_hash, role, is_active, email_verified)
    VALUES ($1, $2, $3, $4, $5, $6)
    RETURNING ` + userColumns + `;`

	findUserByEmail = `SELECT ` + userColumns + `
    FROM users
    WHERE email = $1 AND deleted_at IS NULL;`

	findUserByUsername = `SELECT ` + userColumns + `
    FROM users
    WHERE username = $1 AND deleted_at IS NULL;`

	findUserByID = `SELECT ` + userColumns + `
    FROM users
    WHERE user_id = $1 AND deleted_at IS NULL;`

	recordLoginFailure = `UPDATE users
    SET failed_login_attempts = failed_login_attempts + 1, last_failed_login = $2, updated_at = NOW()
    WHERE user_id = $1 AND deleted_at IS NULL
    RETURNING failed_login_attempts;`

	resetLoginFailures = `UPDATE users
    SET failed_login_attempts = 0, updated_at = NOW()
    WHERE user_id = $1 AND deleted_at IS NULL;`

	recordLogin = `UPDATE users
    SET failed_login_attempts = 0, last_login = $2, updated_at = NOW()
    WHERE user_id = $1 AND deleted_at IS NULL;`

	saveRefreshToken = `UPDATE users
    SET refresh_token = $2, refresh_token_issued_at = $3, updated_at = NOW()
    WHERE user_id = $1 AND deleted_at IS NULL;`

	clearRefreshToken = `UPDATE users
    SET refresh_token = NULL, refresh_token_issued_at = NULL, updated_at = NOW()
    WHERE user_id = $1 AND refresh_token = $2 AND deleted_at IS NULL;`

	updatePassword = `UPDATE users
    SET password_hash = $2, updated_at = NOW()
    WHERE user_id = $1 AND deleted_at IS NULL;`

	setEmailVerified = `UPDATE users
    SET email_verified = TRUE, updated_at = NOW()
    WHERE user_id = $1 AND deleted_at IS NULL;`

	createOtp = `INSERT INTO otps (email, code, user_id, purpose, pending_registration, expires_at)
    VALUES ($1, $2, $3, $4, $5, $6)
    RETURNING otp_id, created_at;`

	incrementOtpAttempts = `UPDATE otps
    SET attempts = attempts + 1
    WHERE otp_id = $1
    RETURNING attempts;`

	markOtpVerified = `UPDATE otps
    SET verified = TRUE, verified_at = $2
    WHERE otp_id = $1 AND verified = FALSE;`
)

var otpColumns = []string{
	"otp_id",
	"email",
	"code",
	"user_id",
	"purpose",
	"pending_registration",
	"expires_at",
	"verified",
	"attempts",
	"created_at",
	"verified_at",
}

// psql builds ledger queries with PostgreSQL ($1, $2, ...) placeholders.
var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

// buildFindActiveOtpQuery selects the most recent unverified, unexpired
// ledger record matching (email, code, purpose). The most recent record is
// the canonical one when several codes are live for the same address.
func buildFindActiveOtpQuery(email, code string, purpose models.OtpPurpose, now time.Time) (string, []any, error) {
	return psql.Select(otpColumns...).
		From("otps").
		Where(squirrel.Eq{
			"email":    email,
			"code":     code,
			"purpose":  string(purpose),
			"verified": false,
		}).
		Where(squirrel.Gt{"expires_at": now}).
		OrderBy("created_at DESC").
		Limit(1).
		ToSql()
}

// buildFindLatestOtpQuery selects the most recent ledger record for
// (email, purpose) regardless of code, expiry or verification state.
func buildFindLatestOtpQuery(email string, purpose models.OtpPurpose) (string, []any, error) {
	return psql.Select(otpColumns...).
		From("otps").
		Where(squirrel.Eq{
			"email":   email,
			"purpose": string(purpose),
		}).
		OrderBy("created_at DESC").
		Limit(1).
		ToSql()
}

// buildCountRecentOtpsQuery counts ledger records issued for (email, purpose)
// within the rolling rate-limit window starting at since.
func buildCountRecentOtpsQuery(email string, purpose models.OtpPurpose, since time.Time) (string, []any, error) {
	return psql.Select("COUNT(*)").
		From("otps").
		Where(squirrel.Eq{
			"email":   email,
			"purpose": string(purpose),
		}).
		Where(squirrel.GtOrEq{"created_at": since}).
		ToSql()
}
