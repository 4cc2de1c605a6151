// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Mikhail Karpushin

package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mkarpushin/store-identity/internal/logger"
	"github.com/mkarpushin/store-identity/internal/service"
	"github.com/mkarpushin/store-identity/models"
)

// ─────────────────────────────────────────────
// Mock AuthService
// ─────────────────────────────────────────────

// mockAuthService implements service.AuthService for unit tests.
// Each method field can be overridden per test case.
type mockAuthService struct {
	loginFn            func(ctx context.Context, identifier, password string) (models.AuthSession, error)
	refreshFn          func(ctx context.Context, refreshToken string) (models.Token, error)
	logoutFn           func(ctx context.Context, userID int64, refreshToken string)
	parseAccessTokenFn func(tokenString string) (models.Token, error)
	getUserFn          func(ctx context.Context, userID int64) (models.User, error)
}

func (m *mockAuthService) Login(ctx context.Context, identifier, password string) (models.AuthSession, error) {
	return m.loginFn(ctx, identifier, password)
}

func (m *mockAuthService) Refresh(ctx context.Context, refreshToken string) (models.Token, error) {
	return m.refreshFn(ctx, refreshToken)
}

func (m *mockAuthService) Logout(ctx context.Context, userID int64, refreshToken string) {
	if m.logoutFn != nil {
		m.logoutFn(ctx, userID, refreshToken)
	}
}

func (m *mockAuthService) ParseAccessToken(tokenString string) (models.Token, error) {
	return m.parseAccessTokenFn(tokenString)
}

func (m *mockAuthService) GetUser(ctx context.Context, userID int64) (models.User, error) {
	return m.getUserFn(ctx, userID)
}

// ─────────────────────────────────────────────
// Mock RegistrationService
// ─────────────────────────────────────────────

type mockRegistrationService struct {
	registerFn       func(ctx context.Context, req models.RegisterRequest) (models.RegisterResponse, error)
	sendOtpFn        func(ctx context.Context, email string, purpose models.OtpPurpose) error
	verifyOtpFn      func(ctx context.Context, email, code string, purpose models.OtpPurpose) (models.VerifyOtpResponse, error)
	peekLatestCodeFn func(ctx context.Context, email string, purpose models.OtpPurpose) (string, error)
}

func (m *mockRegistrationService) Register(ctx context.Context, req models.RegisterRequest) (models.RegisterResponse, error) {
	return m.registerFn(ctx, req)
}

func (m *mockRegistrationService) SendOtp(ctx context.Context, email string, purpose models.OtpPurpose) error {
	return m.sendOtpFn(ctx, email, purpose)
}

func (m *mockRegistrationService) VerifyOtp(ctx context.Context, email, code string, purpose models.OtpPurpose) (models.VerifyOtpResponse, error) {
	return m.verifyOtpFn(ctx, email, code, purpose)
}

func (m *mockRegistrationService) PeekLatestCode(ctx context.Context, email string, purpose models.OtpPurpose) (string, error) {
	return m.peekLatestCodeFn(ctx, email, purpose)
}

// ─────────────────────────────────────────────
// Mock PasswordResetService
// ─────────────────────────────────────────────

type mockPasswordResetService struct {
	forgotPasswordFn func(ctx context.Context, email string) error
	verifyResetOtpFn func(ctx context.Context, email, code string) error
	resetPasswordFn  func(ctx context.Context, email, code, newPassword string) error
}

func (m *mockPasswordResetService) ForgotPassword(ctx context.Context, email string) error {
	return m.forgotPasswordFn(ctx, email)
}

func (m *mockPasswordResetService) VerifyResetOtp(ctx context.Context, email, code string) error {
	return m.verifyResetOtpFn(ctx, email, code)
}

func (m *mockPasswordResetService) ResetPassword(ctx context.Context, email, code, newPassword string) error {
	return m.resetPasswordFn(ctx, email, code, newPassword)
}

// ─────────────────────────────────────────────
// Helpers
// ─────────────────────────────────────────────

// newTestHandler builds a Handler wired to the given service mocks, with a
// one-hour access token lifetime and development endpoints enabled.
func newTestHandler(svcs *service.Services) *Handler {
	return &Handler{
		services:            svcs,
		accessTokenDuration: time.Hour,
		production:          false,
		version:             "test",
		logger:              logger.Nop(),
	}
}

// injectNopLogger attaches a nop logger to the request context so handlers
// that call logger.FromRequest stay quiet during tests.
func injectNopLogger(r *http.Request) *http.Request {
	nop := logger.Nop()
	ctx := nop.Logger.WithContext(r.Context())
	return r.WithContext(ctx)
}

// postJSON builds a POST request with the given payload marshalled as JSON.
func postJSON(t *testing.T, target string, payload any) *http.Request {
	t.Helper()
	b, err := json.Marshal(payload)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, target, bytes.NewReader(b))
	return injectNopLogger(req)
}

// decodeErrorResponse unmarshals the recorded body into an ErrorResponse.
func decodeErrorResponse(t *testing.T, rec *httptest.ResponseRecorder) models.ErrorResponse {
	t.Helper()
	var resp models.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

// sessionUser is a convenience fixture used across multiple tests.
var sessionUser = models.User{
	UserID:        7,
	Username:      "john",
	Email:         "john@example.com",
	Role:          models.RoleCustomer,
	IsActive:      true,
	EmailVerified: true,
}
