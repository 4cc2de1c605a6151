// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Mikhail Karpushin

package store

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/mkarpushin/store-identity/internal/logger"
	"github.com/mkarpushin/store-identity/models"
)

func newTestOtpRepo(t *testing.T) (*otpRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	l := logger.Nop()
	repo := &otpRepository{
		db:     &DB{DB: db, logger: l},
		logger: l,
	}
	return repo, mock, db
}

func otpRow(id int64, email, code string, purpose models.OtpPurpose, payload []byte, expiresAt time.Time) *sqlmock.Rows {
	return sqlmock.NewRows(otpColumns).
		AddRow(id, email, code, nil, string(purpose), payload, expiresAt, false, 0, time.Now(), nil)
}

func TestCreateOtp_Success(t *testing.T) {
	repo, mock, db := newTestOtpRepo(t)
	defer db.Close()

	expiresAt := time.Now().Add(10 * time.Minute)
	record := models.OtpRecord{
		Email:   "john@example.com",
		Code:    "482913",
		Purpose: models.OtpPurposeEmailVerification,
		PendingRegistration: &models.PendingRegistration{
			Username:     "john",
			Email:        "john@example.com",
			PasswordHash: "$2a$10$hash",
			Role:         models.RoleCustomer,
		},
		ExpiresAt: expiresAt,
	}

	mock.ExpectQuery("INSERT INTO otps").
		WithArgs(record.Email, record.Code, nil, record.Purpose, sqlmock.AnyArg(), expiresAt).
		WillReturnRows(sqlmock.NewRows([]string{"otp_id", "created_at"}).AddRow(42, time.Now()))

	created, err := repo.CreateOtp(context.Background(), record)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created.OtpID != 42 {
		t.Errorf("expected OtpID=42, got %d", created.OtpID)
	}
	if created.PendingRegistration == nil || created.PendingRegistration.Username != "john" {
		t.Error("expected pending registration payload to be preserved")
	}
}

func TestCreateOtp_NoPayload(t *testing.T) {
	repo, mock, db := newTestOtpRepo(t)
	defer db.Close()

	userID := int64(7)
	expiresAt := time.Now().Add(10 * time.Minute)
	record := models.OtpRecord{
		Email:     "john@example.com",
		Code:      "115877",
		UserID:    &userID,
		Purpose:   models.OtpPurposePasswordReset,
		ExpiresAt: expiresAt,
	}

	mock.ExpectQuery("INSERT INTO otps").
		WithArgs(record.Email, record.Code, &userID, record.Purpose, []byte(nil), expiresAt).
		WillReturnRows(sqlmock.NewRows([]string{"otp_id", "created_at"}).AddRow(43, time.Now()))

	created, err := repo.CreateOtp(context.Background(), record)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created.OtpID != 43 {
		t.Errorf("expected OtpID=43, got %d", created.OtpID)
	}
}

func TestFindActiveOtp_Success(t *testing.T) {
	repo, mock, db := newTestOtpRepo(t)
	defer db.Close()

	now := time.Now()
	payload := []byte(`{"username":"john","email":"john@example.com","password_hash":"$2a$10$hash","role":"customer"}`)

	mock.ExpectQuery("SELECT otp_id").
		WillReturnRows(otpRow(42, "john@example.com", "482913", models.OtpPurposeEmailVerification, payload, now.Add(5*time.Minute)))

	record, err := repo.FindActiveOtp(context.Background(), "john@example.com", "482913", models.OtpPurposeEmailVerification, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if record.OtpID != 42 {
		t.Errorf("expected OtpID=42, got %d", record.OtpID)
	}
	if record.PendingRegistration == nil {
		t.Fatal("expected pending registration payload")
	}
	if record.PendingRegistration.Role != models.RoleCustomer {
		t.Errorf("expected role customer, got %s", record.PendingRegistration.Role)
	}
}

func TestFindActiveOtp_NotFound(t *testing.T) {
	repo, mock, db := newTestOtpRepo(t)
	defer db.Close()

	mock.ExpectQuery("SELECT otp_id").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindActiveOtp(context.Background(), "john@example.com", "000000", models.OtpPurposeEmailVerification, time.Now())
	if !errors.Is(err, ErrNoOtpWasFound) {
		t.Fatalf("expected ErrNoOtpWasFound, got %v", err)
	}
}

func TestFindLatestOtp_Success(t *testing.T) {
	repo, mock, db := newTestOtpRepo(t)
	defer db.Close()

	mock.ExpectQuery("SELECT otp_id").
		WillReturnRows(otpRow(44, "john@example.com", "993210", models.OtpPurposePasswordReset, nil, time.Now().Add(time.Minute)))

	record, err := repo.FindLatestOtp(context.Background(), "john@example.com", models.OtpPurposePasswordReset)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if record.Code != "993210" {
		t.Errorf("expected code 993210, got %s", record.Code)
	}
	if record.PendingRegistration != nil {
		t.Error("expected no pending registration payload")
	}
}

func TestIncrementAttempts_ReturnsNewCount(t *testing.T) {
	repo, mock, db := newTestOtpRepo(t)
	defer db.Close()

	mock.ExpectQuery("UPDATE otps").
		WithArgs(int64(42)).
		WillReturnRows(sqlmock.NewRows([]string{"attempts"}).AddRow(4))

	attempts, err := repo.IncrementAttempts(context.Background(), 42)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if attempts != 4 {
		t.Errorf("expected attempts=4, got %d", attempts)
	}
}

func TestMarkVerified_Success(t *testing.T) {
	repo, mock, db := newTestOtpRepo(t)
	defer db.Close()

	now := time.Now()
	mock.ExpectExec("UPDATE otps").
		WithArgs(int64(42), now).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.MarkVerified(context.Background(), 42, now); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestMarkVerified_AlreadyVerified(t *testing.T) {
	repo, mock, db := newTestOtpRepo(t)
	defer db.Close()

	mock.ExpectExec("UPDATE otps").
		WithArgs(int64(42), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.MarkVerified(context.Background(), 42, time.Now())
	if !errors.Is(err, ErrNothingWasUpdated) {
		t.Fatalf("expected ErrNothingWasUpdated, got %v", err)
	}
}

func TestCountRecentOtps_Success(t *testing.T) {
	repo, mock, db := newTestOtpRepo(t)
	defer db.Close()

	mock.ExpectQuery("SELECT COUNT").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	count, err := repo.CountRecentOtps(context.Background(), "john@example.com", models.OtpPurposeEmailVerification, time.Now().Add(-10*time.Minute))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 3 {
		t.Errorf("expected count=3, got %d", count)
	}
}
