package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mkarpushin/store-identity/internal/config"
	"github.com/mkarpushin/store-identity/internal/logger"
	"github.com/mkarpushin/store-identity/internal/mailer"
	"github.com/mkarpushin/store-identity/internal/store"
	"github.com/mkarpushin/store-identity/internal/utils"
	"github.com/mkarpushin/store-identity/models"
)

// registrationService is the concrete implementation of
// [RegistrationService]. Registration is deferred: until the code is
// verified, the only trace of the candidate account is the
// pending-registration payload held in the OTP ledger, so an abandoned
// sign-up leaves no credential row behind.
type registrationService struct {
	userRepository store.UserRepository
	otpRepository  store.OtpRepository
	mail           mailer.MailSender

	// otpTTL bounds code lifetime; maxOtpAttempts is the per-record
	// verification ceiling; the rolling rate limit admits at most
	// rateLimitCeiling codes per (email, purpose) within rateLimitWindow.
	otpTTL           time.Duration
	maxOtpAttempts   int
	rateLimitWindow  time.Duration
	rateLimitCeiling int

	// production disables the development conveniences: the rate-limit
	// bypass, tolerated mail failures and the code peek.
	production bool

	logger *logger.Logger
}

// NewRegistrationService constructs a [RegistrationService] from the OTP
// configuration and the runtime environment name.
func NewRegistrationService(userRepository store.UserRepository, otpRepository store.OtpRepository, mail mailer.MailSender, cfg config.Otp, environment string, logger *logger.Logger) RegistrationService {
	return &registrationService{
		userRepository:   userRepository,
		otpRepository:    otpRepository,
		mail:             mail,
		otpTTL:           cfg.TTL,
		maxOtpAttempts:   cfg.MaxAttempts,
		rateLimitWindow:  cfg.RateLimitWindow,
		rateLimitCeiling: cfg.RateLimitCeiling,
		production:       environment == config.EnvProduction,
		logger:           logger,
	}
}

// Register stages a new account. It validates the candidate fields, checks
// e-mail and username uniqueness, hashes a plaintext password when one was
// given, and issues a verification code carrying the pending payload. The
// role is forced to customer no matter what the caller supplied, and no
// user row is written.
func (s *registrationService) Register(ctx context.Context, req models.RegisterRequest) (models.RegisterResponse, error) {
	log := logger.FromContext(ctx)

	email := normalizeEmail(req.Email)
	if !validEmail(email) || req.Username == "" {
		return models.RegisterResponse{}, ErrInvalidDataProvided
	}
	if req.Password == "" && req.PasswordHash == "" {
		return models.RegisterResponse{}, ErrInvalidDataProvided
	}

	passwordHash := req.PasswordHash
	if req.Password != "" {
		if err := validatePasswordStrength(req.Password); err != nil {
			return models.RegisterResponse{}, err
		}

		var err error
		passwordHash, err = utils.HashPassword(req.Password)
		if err != nil {
			log.Err(err).Str("func", "*registrationService.Register").Msg("password hashing failed")
			return models.RegisterResponse{}, fmt.Errorf("password hashing failed: %w", err)
		}
	}

	if _, err := s.userRepository.FindUserByEmail(ctx, email); err == nil {
		return models.RegisterResponse{}, ErrEmailAlreadyRegistered
	} else if !errors.Is(err, store.ErrNoUserWasFound) {
		log.Err(err).Str("func", "*registrationService.Register").Msg("email uniqueness check failed")
		return models.RegisterResponse{}, fmt.Errorf("email uniqueness check failed: %w", err)
	}

	if _, err := s.userRepository.FindUserByUsername(ctx, req.Username); err == nil {
		return models.RegisterResponse{}, ErrUsernameAlreadyRegistered
	} else if !errors.Is(err, store.ErrNoUserWasFound) {
		log.Err(err).Str("func", "*registrationService.Register").Msg("username uniqueness check failed")
		return models.RegisterResponse{}, fmt.Errorf("username uniqueness check failed: %w", err)
	}

	pending := &models.PendingRegistration{
		Username:     req.Username,
		Email:        email,
		PasswordHash: passwordHash,
		Role:         models.RoleCustomer,
	}

	if err := s.issueOtp(ctx, email, models.OtpPurposeEmailVerification, nil, pending); err != nil {
		return models.RegisterResponse{}, err
	}

	return models.RegisterResponse{
		RequiresEmailVerification: true,
		OtpSent:                   true,
		Email:                     email,
	}, nil
}

// SendOtp issues a fresh code for (email, purpose). For an existing
// account the record carries the user identifier; for a pending
// registration the payload is carried forward from the latest ledger
// record so the eventual verification can still materialize the account.
func (s *registrationService) SendOtp(ctx context.Context, email string, purpose models.OtpPurpose) error {
	log := logger.FromContext(ctx)

	email = normalizeEmail(email)
	if !validEmail(email) || !purpose.Valid() {
		return ErrInvalidDataProvided
	}

	var userID *int64
	var pending *models.PendingRegistration

	user, err := s.userRepository.FindUserByEmail(ctx, email)
	switch {
	case err == nil:
		userID = &user.UserID
	case errors.Is(err, store.ErrNoUserWasFound):
		latest, lerr := s.otpRepository.FindLatestOtp(ctx, email, purpose)
		if lerr != nil {
			if errors.Is(lerr, store.ErrNoOtpWasFound) {
				return ErrUnknownEmail
			}

			log.Err(lerr).Str("func", "*registrationService.SendOtp").Msg("ledger lookup failed")
			return fmt.Errorf("ledger lookup failed: %w", lerr)
		}
		if latest.PendingRegistration == nil {
			return ErrUnknownEmail
		}
		pending = latest.PendingRegistration
	default:
		log.Err(err).Str("func", "*registrationService.SendOtp").Msg("user lookup failed")
		return fmt.Errorf("user lookup failed: %w", err)
	}

	return s.issueOtp(ctx, email, purpose, userID, pending)
}

// issueOtp enforces the rolling rate limit, persists a fresh ledger record
// and hands the code to the mail sender. Outside production a delivery
// failure is tolerated; the code stays retrievable through the peek
// endpoint so a broken SMTP setup does not block development.
func (s *registrationService) issueOtp(ctx context.Context, email string, purpose models.OtpPurpose, userID *int64, pending *models.PendingRegistration) error {
	log := logger.FromContext(ctx)
	now := time.Now()

	if s.production {
		count, err := s.otpRepository.CountRecentOtps(ctx, email, purpose, now.Add(-s.rateLimitWindow))
		if err != nil {
			log.Err(err).Str("func", "*registrationService.issueOtp").Msg("rate limit check failed")
			return fmt.Errorf("rate limit check failed: %w", err)
		}
		if count >= s.rateLimitCeiling {
			return ErrOtpRateLimited
		}
	}

	code, err := generateOtpCode()
	if err != nil {
		log.Err(err).Str("func", "*registrationService.issueOtp").Msg("code generation failed")
		return fmt.Errorf("code generation failed: %w", err)
	}

	record := models.OtpRecord{
		Email:               email,
		Code:                code,
		UserID:              userID,
		Purpose:             purpose,
		PendingRegistration: pending,
		ExpiresAt:           now.Add(s.otpTTL),
	}

	if _, err := s.otpRepository.CreateOtp(ctx, record); err != nil {
		log.Err(err).Str("func", "*registrationService.issueOtp").Str("email", email).Msg("persisting otp failed")
		return fmt.Errorf("persisting otp failed: %w", err)
	}

	subject := "Your verification code"
	if purpose == models.OtpPurposePasswordReset {
		subject = "Your password reset code"
	}
	body := fmt.Sprintf("Your one-time code is %s. It expires in %d minutes.", code, int(s.otpTTL.Minutes()))

	if err := s.mail.Send(email, subject, body); err != nil {
		if s.production {
			log.Err(err).Str("func", "*registrationService.issueOtp").Str("email", email).Msg("mail delivery failed")
			return fmt.Errorf("%w: %w", ErrMailDelivery, err)
		}
		log.Warn().Err(err).Str("func", "*registrationService.issueOtp").Str("email", email).Msg("mail delivery failed, code retrievable via peek")
	}

	return nil
}

// VerifyOtp consumes a code. A miss charges an attempt to the latest
// ledger record for the address so the code space cannot be brute forced;
// a hit past the attempt ceiling is rejected without being consumed.
func (s *registrationService) VerifyOtp(ctx context.Context, email, code string, purpose models.OtpPurpose) (models.VerifyOtpResponse, error) {
	log := logger.FromContext(ctx)

	email = normalizeEmail(email)
	if !validEmail(email) || code == "" || !purpose.Valid() {
		return models.VerifyOtpResponse{}, ErrInvalidDataProvided
	}

	now := time.Now()

	record, err := s.otpRepository.FindActiveOtp(ctx, email, code, purpose, now)
	if err != nil {
		if errors.Is(err, store.ErrNoOtpWasFound) {
			s.chargeAttempt(ctx, email, purpose)
			return models.VerifyOtpResponse{}, ErrOtpInvalidOrExpired
		}

		log.Err(err).Str("func", "*registrationService.VerifyOtp").Msg("ledger lookup failed")
		return models.VerifyOtpResponse{}, fmt.Errorf("ledger lookup failed: %w", err)
	}

	if record.Attempts >= s.maxOtpAttempts {
		return models.VerifyOtpResponse{}, ErrTooManyOtpAttempts
	}

	if err := s.otpRepository.MarkVerified(ctx, record.OtpID, now); err != nil {
		if errors.Is(err, store.ErrNothingWasUpdated) {
			return models.VerifyOtpResponse{}, ErrOtpInvalidOrExpired
		}

		log.Err(err).Str("func", "*registrationService.VerifyOtp").Int64("otp_id", record.OtpID).Msg("consuming otp failed")
		return models.VerifyOtpResponse{}, fmt.Errorf("consuming otp failed: %w", err)
	}

	resp := models.VerifyOtpResponse{Verified: true}

	switch {
	case record.UserID != nil:
		if err := s.userRepository.SetEmailVerified(ctx, *record.UserID); err != nil {
			log.Err(err).Str("func", "*registrationService.VerifyOtp").Int64("user_id", *record.UserID).Msg("marking email verified failed")
			return models.VerifyOtpResponse{}, fmt.Errorf("marking email verified failed: %w", err)
		}
	case record.PendingRegistration != nil:
		created, err := s.userRepository.CreateUser(ctx, record.PendingRegistration.Materialize())
		if err != nil {
			log.Err(err).Str("func", "*registrationService.VerifyOtp").Str("email", email).Msg("materializing pending registration failed")
			return models.VerifyOtpResponse{}, fmt.Errorf("materializing pending registration failed: %w", err)
		}

		sanitized := created.Sanitized()
		resp.User = &sanitized
	}
	// no user and no payload: a stale resend-only record, verification
	// still succeeds with nothing further to do

	return resp, nil
}

// chargeAttempt increments the attempt counter on the latest ledger record
// for (email, purpose). Best effort; a failure never masks the caller's
// rejection.
func (s *registrationService) chargeAttempt(ctx context.Context, email string, purpose models.OtpPurpose) {
	log := logger.FromContext(ctx)

	latest, err := s.otpRepository.FindLatestOtp(ctx, email, purpose)
	if err != nil {
		return
	}

	if _, err := s.otpRepository.IncrementAttempts(ctx, latest.OtpID); err != nil {
		log.Warn().Err(err).Str("func", "*registrationService.chargeAttempt").Int64("otp_id", latest.OtpID).Msg("charging attempt failed")
	}
}

// PeekLatestCode returns the newest live code for (email, purpose).
// Disabled in production.
func (s *registrationService) PeekLatestCode(ctx context.Context, email string, purpose models.OtpPurpose) (string, error) {
	if s.production {
		return "", ErrOtpInvalidOrExpired
	}

	email = normalizeEmail(email)
	if !validEmail(email) || !purpose.Valid() {
		return "", ErrInvalidDataProvided
	}

	latest, err := s.otpRepository.FindLatestOtp(ctx, email, purpose)
	if err != nil {
		if errors.Is(err, store.ErrNoOtpWasFound) {
			return "", ErrOtpInvalidOrExpired
		}

		return "", fmt.Errorf("ledger lookup failed: %w", err)
	}

	if latest.Verified || latest.Expired(time.Now()) {
		return "", ErrOtpInvalidOrExpired
	}

	return latest.Code, nil
}
