package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/mkarpushin/store-identity/internal/logger"
	"github.com/mkarpushin/store-identity/models"
)

// otpRepository is the PostgreSQL-backed implementation of [OtpRepository].
// It maintains the append-only OTP ledger in the "otps" table; records are
// mutated (attempt counts, verification flag) but never deleted, so the
// ledger doubles as an audit trail.
type otpRepository struct {
	logger *logger.Logger
	db     *DB
}

// NewOtpRepository constructs an [OtpRepository] backed by the provided
// database connection and logger.
func NewOtpRepository(db *DB, logger *logger.Logger) OtpRepository {
	logger.Debug().Msg("creating otp repository")
	return &otpRepository{
		db:     db,
		logger: logger,
	}
}

// CreateOtp persists a new ledger record. The pending-registration payload,
// when present, is stored as JSONB.
func (r *otpRepository) CreateOtp(ctx context.Context, record models.OtpRecord) (models.OtpRecord, error) {
	log := logger.FromContext(ctx)

	var payload []byte
	if record.PendingRegistration != nil {
		var err error
		payload, err = json.Marshal(record.PendingRegistration)
		if err != nil {
			log.Err(err).Str("func", "*otpRepository.CreateOtp").Msg("error: marshaling pending registration")
			return models.OtpRecord{}, fmt.Errorf("error marshaling pending registration: %w", err)
		}
	}

	row := r.db.QueryRowContext(ctx, createOtp,
		record.Email, record.Code, record.UserID, record.Purpose, payload, record.ExpiresAt)

	if err := row.Scan(&record.OtpID, &record.CreatedAt); err != nil {
		log.Err(err).Str("func", "*otpRepository.CreateOtp").Str("email", record.Email).Msg("error: otp creation failed")
		return models.OtpRecord{}, fmt.Errorf("unexpected DB error: %w", err)
	}

	return record, nil
}

// FindActiveOtp retrieves the most recent unverified, unexpired record
// matching (email, code, purpose).
func (r *otpRepository) FindActiveOtp(ctx context.Context, email, code string, purpose models.OtpPurpose, now time.Time) (models.OtpRecord, error) {
	query, args, err := buildFindActiveOtpQuery(email, code, purpose, now)
	if err != nil {
		return models.OtpRecord{}, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	return r.findOtp(ctx, query, args...)
}

// FindLatestOtp retrieves the most recent record for (email, purpose)
// regardless of code, expiry or verification state.
func (r *otpRepository) FindLatestOtp(ctx context.Context, email string, purpose models.OtpPurpose) (models.OtpRecord, error) {
	query, args, err := buildFindLatestOtpQuery(email, purpose)
	if err != nil {
		return models.OtpRecord{}, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	return r.findOtp(ctx, query, args...)
}

func (r *otpRepository) findOtp(ctx context.Context, query string, args ...any) (models.OtpRecord, error) {
	log := logger.FromContext(ctx)

	var record models.OtpRecord
	var payload []byte

	row := r.db.QueryRowContext(ctx, query, args...)
	err := row.Scan(
		&record.OtpID,
		&record.Email,
		&record.Code,
		&record.UserID,
		&record.Purpose,
		&payload,
		&record.ExpiresAt,
		&record.Verified,
		&record.Attempts,
		&record.CreatedAt,
		&record.VerifiedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.OtpRecord{}, ErrNoOtpWasFound
		}

		log.Err(err).Str("func", "*otpRepository.findOtp").Msg("error: otp lookup failed")
		return models.OtpRecord{}, fmt.Errorf("%w: %w", ErrScanningRow, err)
	}

	if len(payload) > 0 {
		var pending models.PendingRegistration
		if err := json.Unmarshal(payload, &pending); err != nil {
			log.Err(err).Str("func", "*otpRepository.findOtp").Int64("otp_id", record.OtpID).Msg("error: unmarshaling pending registration")
			return models.OtpRecord{}, fmt.Errorf("error unmarshaling pending registration: %w", err)
		}
		record.PendingRegistration = &pending
	}

	return record, nil
}

// IncrementAttempts adds one failed verification try to the record and
// returns the new attempt count.
func (r *otpRepository) IncrementAttempts(ctx context.Context, otpID int64) (int, error) {
	log := logger.FromContext(ctx)

	var attempts int
	row := r.db.QueryRowContext(ctx, incrementOtpAttempts, otpID)
	if err := row.Scan(&attempts); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrNoOtpWasFound
		}

		log.Err(err).Str("func", "*otpRepository.IncrementAttempts").Int64("otp_id", otpID).Msg("error: incrementing attempts")
		return 0, fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	return attempts, nil
}

// MarkVerified consumes the record. The statement refuses to touch records
// that are already verified, so a consumed code can never be replayed.
func (r *otpRepository) MarkVerified(ctx context.Context, otpID int64, at time.Time) error {
	log := logger.FromContext(ctx)

	result, err := r.db.ExecContext(ctx, markOtpVerified, otpID, at)
	if err != nil {
		log.Err(err).Str("func", "*otpRepository.MarkVerified").Int64("otp_id", otpID).Msg("error: marking otp verified")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		log.Err(err).Str("func", "*otpRepository.MarkVerified").Int64("otp_id", otpID).Msg("error: reading affected rows")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	if affected == 0 {
		return ErrNothingWasUpdated
	}

	return nil
}

// CountRecentOtps counts ledger records issued for (email, purpose) since
// the given instant.
func (r *otpRepository) CountRecentOtps(ctx context.Context, email string, purpose models.OtpPurpose, since time.Time) (int, error) {
	log := logger.FromContext(ctx)

	query, args, err := buildCountRecentOtpsQuery(email, purpose, since)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	var count int
	row := r.db.QueryRowContext(ctx, query, args...)
	if err := row.Scan(&count); err != nil {
		log.Err(err).Str("func", "*otpRepository.CountRecentOtps").Str("email", email).Msg("error: counting recent otps")
		return 0, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}

	return count, nil
}
