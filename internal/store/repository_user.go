// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Mikhail Karpushin

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/mkarpushin/store-identity/internal/logger"
	"github.com/mkarpushin/store-identity/models"
)

// userRepository is the PostgreSQL-backed implementation of [UserRepository].
// It handles account creation, lookup and the security-counter mutations
// against the "users" table.
//
// All methods obtain a context-scoped logger via [logger.FromContext] for
// structured, request-level tracing of database interactions.
type userRepository struct {
	logger *logger.Logger
	db     *DB
}

// NewUserRepository constructs a [UserRepository] backed by the provided
// database connection and logger.
func NewUserRepository(db *DB, logger *logger.Logger) UserRepository {
	logger.Debug().Msg("creating user repository")
	return &userRepository{
		db:     db,
		logger: logger,
	}
}

// scanUser reads a full users row into a [models.User]. The refresh-token
// slot is nullable in the schema and folded to an empty string here.
func scanUser(row *sql.Row) (models.User, error) {
	var user models.User
	var refreshToken sql.NullString

	err := row.Scan(
		&user.UserID,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&user.Role,
		&user.IsActive,
		&user.EmailVerified,
		&user.FailedLoginAttempts,
		&user.LastFailedLogin,
		&user.LastLogin,
		&refreshToken,
		&user.RefreshTokenIssuedAt,
		&user.CreatedAt,
		&user.UpdatedAt,
		&user.DeletedAt,
	)
	if err != nil {
		return models.User{}, err
	}

	user.RefreshToken = refreshToken.String

	return user, nil
}

// CreateUser persists a new account row and returns the fully populated
// [models.User] with server-assigned fields (UserID, CreatedAt, UpdatedAt).
//
// Error handling:
//   - PostgreSQL unique_violation (23505) on the e-mail constraint →
//     [ErrEmailAlreadyExists]; on the username constraint →
//     [ErrUsernameAlreadyExists].
//   - Any other driver-level error → wrapped as "unexpected DB error".
func (r *userRepository) CreateUser(ctx context.Context, user models.User) (models.User, error) {
	log := logger.FromContext(ctx)

	row := r.db.QueryRowContext(ctx, createUser,
		user.Username, user.Email, user.PasswordHash, user.Role, user.IsActive, user.EmailVerified)

	created, err := scanUser(row)
	if err != nil {
		log.Err(err).Str("func", "*userRepository.CreateUser").Str("email", user.Email).Msg("error: user creation failed")

		if postgresError(err) == pgerrcode.UniqueViolation {
			if postgresConstraint(err) == "users_username_key" {
				return models.User{}, ErrUsernameAlreadyExists
			}
			return models.User{}, ErrEmailAlreadyExists
		}

		return models.User{}, fmt.Errorf("unexpected DB error: %w", err)
	}

	return created, nil
}

// FindUserByEmail retrieves the account whose e-mail matches the given
// lower-cased address.
//
// Error handling:
//   - No matching row → [ErrNoUserWasFound].
//   - Any other driver-level error → wrapped as "unexpected DB error".
func (r *userRepository) FindUserByEmail(ctx context.Context, email string) (models.User, error) {
	return r.findUser(ctx, findUserByEmail, email)
}

// FindUserByUsername retrieves the account with the given username.
// Error handling matches [userRepository.FindUserByEmail].
func (r *userRepository) FindUserByUsername(ctx context.Context, username string) (models.User, error) {
	return r.findUser(ctx, findUserByUsername, username)
}

// FindUserByID retrieves the account with the given identifier.
// Error handling matches [userRepository.FindUserByEmail].
func (r *userRepository) FindUserByID(ctx context.Context, userID int64) (models.User, error) {
	return r.findUser(ctx, findUserByID, userID)
}

func (r *userRepository) findUser(ctx context.Context, query string, arg any) (models.User, error) {
	log := logger.FromContext(ctx)

	row := r.db.QueryRowContext(ctx, query, arg)

	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, ErrNoUserWasFound
		}

		log.Err(err).Str("func", "*userRepository.findUser").Msg("error: user lookup failed")
		return models.User{}, fmt.Errorf("unexpected DB error: %w", err)
	}

	return user, nil
}

// RecordLoginFailure increments the failed-attempt counter in a single
// UPDATE so that concurrent failures cannot lose increments, stamps the
// failure time, and returns the new counter value.
func (r *userRepository) RecordLoginFailure(ctx context.Context, userID int64, at time.Time) (int, error) {
	log := logger.FromContext(ctx)

	var attempts int
	row := r.db.QueryRowContext(ctx, recordLoginFailure, userID, at)
	if err := row.Scan(&attempts); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrNoUserWasFound
		}

		log.Err(err).Str("func", "*userRepository.RecordLoginFailure").Int64("user_id", userID).Msg("error: recording login failure")
		return 0, fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	return attempts, nil
}

// ResetLoginFailures zeroes the failed-attempt counter.
func (r *userRepository) ResetLoginFailures(ctx context.Context, userID int64) error {
	return r.execForUser(ctx, "*userRepository.ResetLoginFailures", resetLoginFailures, userID)
}

// RecordLogin zeroes the failed-attempt counter and stamps the successful
// login time in one statement.
func (r *userRepository) RecordLogin(ctx context.Context, userID int64, at time.Time) error {
	return r.execForUser(ctx, "*userRepository.RecordLogin", recordLogin, userID, at)
}

// SaveRefreshToken replaces the account's single live refresh-token slot.
// Whatever token was stored before is discarded.
func (r *userRepository) SaveRefreshToken(ctx context.Context, userID int64, token string, issuedAt time.Time) error {
	return r.execForUser(ctx, "*userRepository.SaveRefreshToken", saveRefreshToken, userID, token, issuedAt)
}

// ClearRefreshToken empties the refresh-token slot when the stored value
// matches the presented token. A mismatch affects zero rows and returns
// [ErrNothingWasUpdated].
func (r *userRepository) ClearRefreshToken(ctx context.Context, userID int64, token string) error {
	return r.execForUser(ctx, "*userRepository.ClearRefreshToken", clearRefreshToken, userID, token)
}

// UpdatePassword replaces the account's password hash.
func (r *userRepository) UpdatePassword(ctx context.Context, userID int64, passwordHash string) error {
	return r.execForUser(ctx, "*userRepository.UpdatePassword", updatePassword, userID, passwordHash)
}

// SetEmailVerified marks the account's e-mail address as confirmed.
func (r *userRepository) SetEmailVerified(ctx context.Context, userID int64) error {
	return r.execForUser(ctx, "*userRepository.SetEmailVerified", setEmailVerified, userID)
}

// execForUser runs a single-row UPDATE against the users table and maps a
// zero-row result to [ErrNothingWasUpdated].
func (r *userRepository) execForUser(ctx context.Context, funcName, query string, args ...any) error {
	log := logger.FromContext(ctx)

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		log.Err(err).Str("func", funcName).Msg("error: executing statement")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		log.Err(err).Str("func", funcName).Msg("error: reading affected rows")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	if affected == 0 {
		return ErrNothingWasUpdated
	}

	return nil
}
