package service

import (
	"github.com/mkarpushin/store-identity/internal/config"
	"github.com/mkarpushin/store-identity/internal/logger"
	"github.com/mkarpushin/store-identity/internal/mailer"
	"github.com/mkarpushin/store-identity/internal/store"
)

// Services aggregates every business-layer service behind one constructor
// so the HTTP handler takes a single dependency.
type Services struct {
	TokenService         TokenService
	AuthService          AuthService
	RegistrationService  RegistrationService
	PasswordResetService PasswordResetService
}

// NewServices wires the service graph on top of the repositories and the
// mail sender.
func NewServices(storages store.Storages, mail mailer.MailSender, cfg config.StructuredConfig, logger *logger.Logger) *Services {
	tokens := NewTokenService(cfg.Auth, logger)
	registration := NewRegistrationService(storages.UserRepository, storages.OtpRepository, mail, cfg.Otp, cfg.Environment, logger)

	return &Services{
		TokenService:         tokens,
		AuthService:          NewAuthService(storages.UserRepository, tokens, cfg.Auth, logger),
		RegistrationService:  registration,
		PasswordResetService: NewPasswordResetService(storages.UserRepository, storages.OtpRepository, registration, cfg.Otp.MaxAttempts, logger),
	}
}
