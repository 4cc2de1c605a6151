// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Mikhail Karpushin

package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mkarpushin/store-identity/internal/config"
	"github.com/mkarpushin/store-identity/internal/logger"
	"github.com/mkarpushin/store-identity/internal/store"
	"github.com/mkarpushin/store-identity/internal/utils"
	"github.com/mkarpushin/store-identity/models"
)

// authService is the concrete implementation of [AuthService]. It
// orchestrates the login state machine against a [store.UserRepository] and
// mints sessions through a [TokenService].
type authService struct {
	userRepository store.UserRepository
	tokens         TokenService

	// maxLoginAttempts and lockoutDuration parameterize the brute-force
	// lockout.
	maxLoginAttempts int
	lockoutDuration  time.Duration

	// notFoundDelay and storageFaultDelay are the minimum response times
	// for the unknown-account / wrong-password path and the storage-fault
	// path. Uniform timing keeps the two account states indistinguishable
	// to an outside observer.
	notFoundDelay     time.Duration
	storageFaultDelay time.Duration

	logger *logger.Logger
}

// NewAuthService constructs an [AuthService] wired to the given repository
// and token service and populated with security parameters from cfg.
//
// The returned service is safe for concurrent use; all state is read-only
// after construction.
func NewAuthService(userRepository store.UserRepository, tokens TokenService, cfg config.Auth, logger *logger.Logger) AuthService {
	return &authService{
		userRepository:    userRepository,
		tokens:            tokens,
		maxLoginAttempts:  cfg.MaxLoginAttempts,
		lockoutDuration:   cfg.LockoutDuration,
		notFoundDelay:     cfg.NotFoundDelay,
		storageFaultDelay: cfg.StorageFaultDelay,
		logger:            logger,
	}
}

// Login authenticates a user by identifier plus password.
//
// The identifier is treated as an e-mail address when it contains '@' and
// as a username otherwise. The checks run in a fixed order, each a possible
// exit point: input validation, account lookup, lockout window, active and
// verified gates, password check. A passed check never re-runs.
//
// On success the failed-attempt counter is reset, the login time stamped,
// and a fresh token pair minted; the refresh token replaces whatever token
// the account held before. Failure to persist the refresh token is logged
// but does not fail the login: the session is already verified, so
// availability wins over slot consistency.
func (a *authService) Login(ctx context.Context, identifier, password string) (models.AuthSession, error) {
	log := logger.FromContext(ctx)
	start := time.Now()

	identifier = strings.TrimSpace(identifier)
	if identifier == "" || password == "" {
		return models.AuthSession{}, ErrInvalidDataProvided
	}

	var user models.User
	var err error
	if strings.Contains(identifier, "@") {
		email := normalizeEmail(identifier)
		if !validEmail(email) {
			return models.AuthSession{}, ErrInvalidDataProvided
		}
		user, err = a.userRepository.FindUserByEmail(ctx, email)
	} else {
		user, err = a.userRepository.FindUserByUsername(ctx, identifier)
	}
	if err != nil {
		if errors.Is(err, store.ErrNoUserWasFound) {
			a.holdUntil(start, a.notFoundDelay)
			return models.AuthSession{}, ErrInvalidCredentials
		}

		log.Err(err).Str("func", "*authService.Login").Msg("user lookup failed")
		a.holdUntil(start, a.storageFaultDelay)
		return models.AuthSession{}, fmt.Errorf("user lookup failed: %w", err)
	}

	now := time.Now()

	if user.FailedLoginAttempts >= a.maxLoginAttempts && user.LastFailedLogin != nil {
		lockoutExpiry := user.LastFailedLogin.Add(a.lockoutDuration)
		if now.Before(lockoutExpiry) {
			return models.AuthSession{}, &LockedError{LockoutExpiry: lockoutExpiry}
		}

		// lockout window has lapsed, counter starts over
		if err := a.userRepository.ResetLoginFailures(ctx, user.UserID); err != nil {
			log.Err(err).Str("func", "*authService.Login").Int64("user_id", user.UserID).Msg("resetting expired lockout failed")
			return models.AuthSession{}, fmt.Errorf("resetting expired lockout failed: %w", err)
		}
		user.FailedLoginAttempts = 0
	}

	if !user.IsActive {
		return models.AuthSession{}, ErrAccountInactive
	}

	if !user.EmailVerified {
		return models.AuthSession{}, &EmailNotVerifiedError{Email: user.Email}
	}

	if !utils.VerifyPassword(password, user.PasswordHash) {
		attempts, ferr := a.userRepository.RecordLoginFailure(ctx, user.UserID, now)
		if ferr != nil {
			log.Err(ferr).Str("func", "*authService.Login").Int64("user_id", user.UserID).Msg("recording login failure failed")
			attempts = user.FailedLoginAttempts + 1
		}

		remaining := a.maxLoginAttempts - attempts
		if remaining < 0 {
			remaining = 0
		}

		a.holdUntil(start, a.notFoundDelay)
		return models.AuthSession{}, &WrongPasswordError{RemainingAttempts: remaining}
	}

	if err := a.userRepository.RecordLogin(ctx, user.UserID, now); err != nil {
		log.Err(err).Str("func", "*authService.Login").Int64("user_id", user.UserID).Msg("recording login failed")
		return models.AuthSession{}, fmt.Errorf("recording login failed: %w", err)
	}
	user.FailedLoginAttempts = 0
	user.LastLogin = &now

	accessToken, err := a.tokens.IssueAccessToken(user)
	if err != nil {
		return models.AuthSession{}, err
	}

	refreshToken, err := a.tokens.IssueRefreshToken(user)
	if err != nil {
		return models.AuthSession{}, err
	}

	// token-save failure is swallowed: the credentials already checked out
	if err := a.userRepository.SaveRefreshToken(ctx, user.UserID, refreshToken.SignedString, now); err != nil {
		log.Err(err).Str("func", "*authService.Login").Int64("user_id", user.UserID).Msg("refresh token persistence failed, session continues")
	}

	return models.AuthSession{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         user.Sanitized(),
	}, nil
}

// Refresh exchanges a refresh token for a fresh access token. The refresh
// token itself is not rotated here; rotation happens only on login.
func (a *authService) Refresh(ctx context.Context, refreshToken string) (models.Token, error) {
	log := logger.FromContext(ctx)

	if refreshToken == "" {
		return models.Token{}, ErrInvalidDataProvided
	}

	token, err := a.tokens.Parse(refreshToken, models.TokenKindRefresh)
	if err != nil {
		return models.Token{}, ErrTokenIsExpiredOrInvalid
	}

	userID, err := token.GetUserID()
	if err != nil {
		return models.Token{}, ErrTokenIsExpiredOrInvalid
	}

	user, err := a.userRepository.FindUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNoUserWasFound) {
			return models.Token{}, ErrTokenIsExpiredOrInvalid
		}

		log.Err(err).Str("func", "*authService.Refresh").Int64("user_id", userID).Msg("user lookup failed")
		return models.Token{}, fmt.Errorf("user lookup failed: %w", err)
	}

	if !user.IsActive {
		return models.Token{}, ErrAccountInactive
	}

	// a token superseded by a later login no longer matches the slot
	if user.RefreshToken != refreshToken {
		return models.Token{}, ErrTokenIsExpiredOrInvalid
	}

	return a.tokens.IssueAccessToken(user)
}

// Logout clears the refresh-token slot. The clear is best effort: a
// mismatch or storage fault is logged and the logout still succeeds.
func (a *authService) Logout(ctx context.Context, userID int64, refreshToken string) {
	log := logger.FromContext(ctx)

	if refreshToken == "" {
		return
	}

	if err := a.userRepository.ClearRefreshToken(ctx, userID, refreshToken); err != nil {
		log.Warn().Err(err).Str("func", "*authService.Logout").Int64("user_id", userID).Msg("clearing refresh token failed")
	}
}

// ParseAccessToken validates a raw access token for the auth middleware.
func (a *authService) ParseAccessToken(tokenString string) (models.Token, error) {
	return a.tokens.Parse(tokenString, models.TokenKindAccess)
}

// GetUser returns the sanitized account record for the given identifier.
func (a *authService) GetUser(ctx context.Context, userID int64) (models.User, error) {
	log := logger.FromContext(ctx)

	user, err := a.userRepository.FindUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNoUserWasFound) {
			return models.User{}, ErrInvalidCredentials
		}

		log.Err(err).Str("func", "*authService.GetUser").Int64("user_id", userID).Msg("user lookup failed")
		return models.User{}, fmt.Errorf("user lookup failed: %w", err)
	}

	return user.Sanitized(), nil
}

// holdUntil blocks until at least d has elapsed since start, flattening the
// timing difference between code paths that reach the same outcome.
func (a *authService) holdUntil(start time.Time, d time.Duration) {
	if remaining := d - time.Since(start); remaining > 0 {
		time.Sleep(remaining)
	}
}
