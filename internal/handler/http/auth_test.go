// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Mikhail Karpushin

package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkarpushin/store-identity/internal/service"
	"github.com/mkarpushin/store-identity/internal/store"
	"github.com/mkarpushin/store-identity/internal/utils"
	"github.com/mkarpushin/store-identity/models"
)

func newHandlerWithAuth(auth service.AuthService) *Handler {
	return newTestHandler(&service.Services{AuthService: auth})
}

// ─────────────────────────────────────────────
// login
// ─────────────────────────────────────────────

func TestLogin_Success(t *testing.T) {
	auth := &mockAuthService{
		loginFn: func(_ context.Context, identifier, password string) (models.AuthSession, error) {
			assert.Equal(t, "john@example.com", identifier)
			assert.Equal(t, "secret", password)
			return models.AuthSession{
				AccessToken:  models.Token{SignedString: "access.jwt"},
				RefreshToken: models.Token{SignedString: "refresh.jwt"},
				User:         sessionUser,
			}, nil
		},
	}

	h := newHandlerWithAuth(auth)
	req := postJSON(t, "/api/auth/login", models.LoginRequest{Identifier: "john@example.com", Password: "secret"})
	rec := httptest.NewRecorder()

	h.login(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp models.LoginResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "access.jwt", resp.Token)
	assert.Equal(t, "refresh.jwt", resp.RefreshToken)
	assert.Equal(t, int64(3600), resp.ExpiresIn)
	assert.Equal(t, int64(7), resp.User.UserID)
}

func TestLogin_InvalidJSON(t *testing.T) {
	h := newHandlerWithAuth(&mockAuthService{})
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader("{not json"))
	req = injectNopLogger(req)
	rec := httptest.NewRecorder()

	h.login(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLogin_WrongPasswordCarriesRemainingAttempts(t *testing.T) {
	auth := &mockAuthService{
		loginFn: func(_ context.Context, _, _ string) (models.AuthSession, error) {
			return models.AuthSession{}, &service.WrongPasswordError{RemainingAttempts: 2}
		},
	}

	h := newHandlerWithAuth(auth)
	req := postJSON(t, "/api/auth/login", models.LoginRequest{Identifier: "john", Password: "nope"})
	rec := httptest.NewRecorder()

	h.login(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)

	resp := decodeErrorResponse(t, rec)
	assert.Equal(t, service.ErrInvalidCredentials.Error(), resp.Error)
	require.NotNil(t, resp.RemainingAttempts)
	assert.Equal(t, 2, *resp.RemainingAttempts)
	assert.Nil(t, resp.LockoutExpiry)
}

func TestLogin_LockedCarriesExpiry(t *testing.T) {
	expiry := time.Now().Add(30 * time.Minute).UTC()
	auth := &mockAuthService{
		loginFn: func(_ context.Context, _, _ string) (models.AuthSession, error) {
			return models.AuthSession{}, &service.LockedError{LockoutExpiry: expiry}
		},
	}

	h := newHandlerWithAuth(auth)
	req := postJSON(t, "/api/auth/login", models.LoginRequest{Identifier: "john", Password: "nope"})
	rec := httptest.NewRecorder()

	h.login(rec, req)

	require.Equal(t, http.StatusLocked, rec.Code)

	resp := decodeErrorResponse(t, rec)
	require.NotNil(t, resp.LockoutExpiry)
	assert.WithinDuration(t, expiry, *resp.LockoutExpiry, time.Second)
	assert.Nil(t, resp.RemainingAttempts)
}

func TestLogin_InactiveAccount(t *testing.T) {
	auth := &mockAuthService{
		loginFn: func(_ context.Context, _, _ string) (models.AuthSession, error) {
			return models.AuthSession{}, service.ErrAccountInactive
		},
	}

	h := newHandlerWithAuth(auth)
	req := postJSON(t, "/api/auth/login", models.LoginRequest{Identifier: "john", Password: "secret"})
	rec := httptest.NewRecorder()

	h.login(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestLogin_EmailNotVerified(t *testing.T) {
	auth := &mockAuthService{
		loginFn: func(_ context.Context, _, _ string) (models.AuthSession, error) {
			return models.AuthSession{}, &service.EmailNotVerifiedError{Email: "john@example.com"}
		},
	}

	h := newHandlerWithAuth(auth)
	req := postJSON(t, "/api/auth/login", models.LoginRequest{Identifier: "john@example.com", Password: "secret"})
	rec := httptest.NewRecorder()

	h.login(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

// TestLogin_StorageFaultHidesDetail verifies that infrastructure errors are
// never echoed back to the client.
func TestLogin_StorageFaultHidesDetail(t *testing.T) {
	auth := &mockAuthService{
		loginFn: func(_ context.Context, _, _ string) (models.AuthSession, error) {
			return models.AuthSession{}, fmt.Errorf("%w: connection refused", store.ErrExecutingQuery)
		},
	}

	h := newHandlerWithAuth(auth)
	req := postJSON(t, "/api/auth/login", models.LoginRequest{Identifier: "john", Password: "secret"})
	rec := httptest.NewRecorder()

	h.login(rec, req)

	require.Equal(t, http.StatusInternalServerError, rec.Code)

	resp := decodeErrorResponse(t, rec)
	assert.Equal(t, http.StatusText(http.StatusInternalServerError), resp.Error)
	assert.NotContains(t, rec.Body.String(), "connection refused")
}

// ─────────────────────────────────────────────
// refreshToken
// ─────────────────────────────────────────────

func TestRefreshToken_Success(t *testing.T) {
	auth := &mockAuthService{
		refreshFn: func(_ context.Context, refreshToken string) (models.Token, error) {
			assert.Equal(t, "refresh.jwt", refreshToken)
			return models.Token{SignedString: "fresh.access.jwt"}, nil
		},
	}

	h := newHandlerWithAuth(auth)
	req := postJSON(t, "/api/auth/refresh-token", models.RefreshRequest{RefreshToken: "refresh.jwt"})
	rec := httptest.NewRecorder()

	h.refreshToken(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp models.RefreshResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "fresh.access.jwt", resp.Token)
	assert.Equal(t, int64(3600), resp.ExpiresIn)
}

func TestRefreshToken_Invalid(t *testing.T) {
	auth := &mockAuthService{
		refreshFn: func(_ context.Context, _ string) (models.Token, error) {
			return models.Token{}, service.ErrTokenIsExpiredOrInvalid
		},
	}

	h := newHandlerWithAuth(auth)
	req := postJSON(t, "/api/auth/refresh-token", models.RefreshRequest{RefreshToken: "stale.jwt"})
	rec := httptest.NewRecorder()

	h.refreshToken(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

// ─────────────────────────────────────────────
// logout
// ─────────────────────────────────────────────

func TestLogout_Success(t *testing.T) {
	var gotUserID int64
	var gotToken string
	auth := &mockAuthService{
		logoutFn: func(_ context.Context, userID int64, refreshToken string) {
			gotUserID = userID
			gotToken = refreshToken
		},
	}

	h := newHandlerWithAuth(auth)
	req := postJSON(t, "/api/auth/logout", models.LogoutRequest{RefreshToken: "refresh.jwt"})
	req = req.WithContext(context.WithValue(req.Context(), utils.UserIDCtxKey, int64(7)))
	rec := httptest.NewRecorder()

	h.logout(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(7), gotUserID)
	assert.Equal(t, "refresh.jwt", gotToken)

	var resp models.MessageResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "logged out", resp.Message)
}

func TestLogout_WithoutBody(t *testing.T) {
	var gotToken string
	auth := &mockAuthService{
		logoutFn: func(_ context.Context, _ int64, refreshToken string) {
			gotToken = refreshToken
		},
	}

	h := newHandlerWithAuth(auth)
	req := httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil)
	req = injectNopLogger(req)
	req = req.WithContext(context.WithValue(req.Context(), utils.UserIDCtxKey, int64(7)))
	rec := httptest.NewRecorder()

	h.logout(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, gotToken)
}

func TestLogout_NoUserInContext(t *testing.T) {
	h := newHandlerWithAuth(&mockAuthService{})
	req := postJSON(t, "/api/auth/logout", models.LogoutRequest{})
	rec := httptest.NewRecorder()

	h.logout(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// ─────────────────────────────────────────────
// me
// ─────────────────────────────────────────────

func TestMe_Success(t *testing.T) {
	auth := &mockAuthService{
		getUserFn: func(_ context.Context, userID int64) (models.User, error) {
			assert.Equal(t, int64(7), userID)
			return sessionUser, nil
		},
	}

	h := newHandlerWithAuth(auth)
	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req = injectNopLogger(req)
	req = req.WithContext(context.WithValue(req.Context(), utils.UserIDCtxKey, int64(7)))
	rec := httptest.NewRecorder()

	h.me(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var user models.User
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &user))
	assert.Equal(t, "john", user.Username)
}

func TestMe_UserGone(t *testing.T) {
	auth := &mockAuthService{
		getUserFn: func(_ context.Context, _ int64) (models.User, error) {
			return models.User{}, store.ErrNoUserWasFound
		},
	}

	h := newHandlerWithAuth(auth)
	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req = injectNopLogger(req)
	req = req.WithContext(context.WithValue(req.Context(), utils.UserIDCtxKey, int64(404)))
	rec := httptest.NewRecorder()

	h.me(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
