package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mkarpushin/store-identity/internal/logger"
	"github.com/mkarpushin/store-identity/internal/store"
	"github.com/mkarpushin/store-identity/internal/utils"
	"github.com/mkarpushin/store-identity/models"
)

// passwordResetService is the concrete implementation of
// [PasswordResetService]. Code issuance is delegated to the registration
// service so both workflows share one rate limit and one delivery path.
type passwordResetService struct {
	userRepository store.UserRepository
	otpRepository  store.OtpRepository
	otpSender      RegistrationService

	maxOtpAttempts int

	logger *logger.Logger
}

// NewPasswordResetService constructs a [PasswordResetService].
func NewPasswordResetService(userRepository store.UserRepository, otpRepository store.OtpRepository, otpSender RegistrationService, maxOtpAttempts int, logger *logger.Logger) PasswordResetService {
	return &passwordResetService{
		userRepository: userRepository,
		otpRepository:  otpRepository,
		otpSender:      otpSender,
		maxOtpAttempts: maxOtpAttempts,
		logger:         logger,
	}
}

// ForgotPassword issues a reset code for an existing customer account. An
// unknown address returns nil so the HTTP layer can answer with the same
// generic message either way.
func (s *passwordResetService) ForgotPassword(ctx context.Context, email string) error {
	log := logger.FromContext(ctx)

	email = normalizeEmail(email)
	if !validEmail(email) {
		return ErrInvalidDataProvided
	}

	user, err := s.userRepository.FindUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNoUserWasFound) {
			return nil
		}

		log.Err(err).Str("func", "*passwordResetService.ForgotPassword").Msg("user lookup failed")
		return fmt.Errorf("user lookup failed: %w", err)
	}

	if user.Role != models.RoleCustomer {
		return ErrRoleNotAllowed
	}

	return s.otpSender.SendOtp(ctx, email, models.OtpPurposePasswordReset)
}

// VerifyResetOtp pre-checks a reset code without consuming it. The record
// stays unverified so the subsequent [passwordResetService.ResetPassword]
// call performs the authoritative check.
func (s *passwordResetService) VerifyResetOtp(ctx context.Context, email, code string) error {
	_, err := s.findResetOtp(ctx, email, code)
	return err
}

// ResetPassword re-validates the code, enforces the password policy,
// rejects a password identical to the current one, persists the new hash
// and only then consumes the code. Marking the record verified last means
// a reset code can never be replayed after a successful reset, while a
// failed update leaves it usable for a legitimate retry.
func (s *passwordResetService) ResetPassword(ctx context.Context, email, code, newPassword string) error {
	log := logger.FromContext(ctx)

	record, err := s.findResetOtp(ctx, email, code)
	if err != nil {
		return err
	}

	if err := validatePasswordStrength(newPassword); err != nil {
		return err
	}

	if record.UserID == nil {
		return ErrOtpInvalidOrExpired
	}

	user, err := s.userRepository.FindUserByID(ctx, *record.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNoUserWasFound) {
			return ErrOtpInvalidOrExpired
		}

		log.Err(err).Str("func", "*passwordResetService.ResetPassword").Int64("user_id", *record.UserID).Msg("user lookup failed")
		return fmt.Errorf("user lookup failed: %w", err)
	}

	if utils.VerifyPassword(newPassword, user.PasswordHash) {
		return ErrPasswordReused
	}

	newHash, err := utils.HashPassword(newPassword)
	if err != nil {
		log.Err(err).Str("func", "*passwordResetService.ResetPassword").Msg("password hashing failed")
		return fmt.Errorf("password hashing failed: %w", err)
	}

	if err := s.userRepository.UpdatePassword(ctx, user.UserID, newHash); err != nil {
		log.Err(err).Str("func", "*passwordResetService.ResetPassword").Int64("user_id", user.UserID).Msg("persisting new password failed")
		return fmt.Errorf("persisting new password failed: %w", err)
	}

	if err := s.otpRepository.MarkVerified(ctx, record.OtpID, time.Now()); err != nil {
		// the password is already changed, the reset stands
		log.Warn().Err(err).Str("func", "*passwordResetService.ResetPassword").Int64("otp_id", record.OtpID).Msg("consuming reset otp failed")
	}

	return nil
}

// findResetOtp validates input and locates a live reset record, applying
// the same miss accounting and attempt ceiling as code verification.
func (s *passwordResetService) findResetOtp(ctx context.Context, email, code string) (models.OtpRecord, error) {
	log := logger.FromContext(ctx)

	email = normalizeEmail(email)
	if !validEmail(email) || code == "" {
		return models.OtpRecord{}, ErrInvalidDataProvided
	}

	record, err := s.otpRepository.FindActiveOtp(ctx, email, code, models.OtpPurposePasswordReset, time.Now())
	if err != nil {
		if errors.Is(err, store.ErrNoOtpWasFound) {
			s.chargeAttempt(ctx, email)
			return models.OtpRecord{}, ErrOtpInvalidOrExpired
		}

		log.Err(err).Str("func", "*passwordResetService.findResetOtp").Msg("ledger lookup failed")
		return models.OtpRecord{}, fmt.Errorf("ledger lookup failed: %w", err)
	}

	if record.Attempts >= s.maxOtpAttempts {
		return models.OtpRecord{}, ErrTooManyOtpAttempts
	}

	return record, nil
}

func (s *passwordResetService) chargeAttempt(ctx context.Context, email string) {
	log := logger.FromContext(ctx)

	latest, err := s.otpRepository.FindLatestOtp(ctx, email, models.OtpPurposePasswordReset)
	if err != nil {
		return
	}

	if _, err := s.otpRepository.IncrementAttempts(ctx, latest.OtpID); err != nil {
		log.Warn().Err(err).Str("func", "*passwordResetService.chargeAttempt").Int64("otp_id", latest.OtpID).Msg("charging attempt failed")
	}
}
